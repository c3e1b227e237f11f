package domain

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventOrderCreated  EventType = "order_created"
	EventStatusChanged EventType = "order_status_changed"
	EventCancelled     EventType = "order_cancelled"
	EventDeleted       EventType = "order_deleted"
)

type Event struct {
	Type      EventType `json:"type"`
	OrderID   uuid.UUID `json:"orderID"`
	UserID    uuid.UUID `json:"userID"`
	Status    Status    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Details   string    `json:"details,omitempty"`
}

func NewEvent(t EventType, o *Order, at time.Time, details string) Event {
	return Event{
		Type:      t,
		OrderID:   o.ID,
		UserID:    o.UserID,
		Status:    o.Status,
		Timestamp: at,
		Details:   details,
	}
}
