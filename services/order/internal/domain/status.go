package domain

import (
	"fmt"
	"strings"
)

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusConfirmed  Status = "CONFIRMED"
	StatusProcessing Status = "PROCESSING"
	StatusShipped    Status = "SHIPPED"
	StatusDelivered  Status = "DELIVERED"
	StatusCancelled  Status = "CANCELLED"
)

var statuses = []Status{
	StatusPending,
	StatusConfirmed,
	StatusProcessing,
	StatusShipped,
	StatusDelivered,
	StatusCancelled,
}

func Statuses() []Status {
	out := make([]Status, len(statuses))
	copy(out, statuses)
	return out
}

// ParseStatus accepts any letter case.
func ParseStatus(s string) (Status, error) {
	up := Status(strings.ToUpper(strings.TrimSpace(s)))
	for _, st := range statuses {
		if st == up {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

// Cancellable reports whether an order in s may move to CANCELLED.
func (s Status) Cancellable() bool {
	return s != StatusShipped && s != StatusDelivered
}
