package events

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/shop_orders/services/order/internal/domain"
)

type captured struct {
	topic, key string
	event      any
}

type fakeProducer struct{ got []captured }

func (f *fakeProducer) PublishEvent(_ context.Context, topic, key string, event any) error {
	f.got = append(f.got, captured{topic: topic, key: key, event: event})
	return nil
}

func TestKafkaPublisherKeysByOrder(t *testing.T) {
	fp := &fakeProducer{}
	p := NewKafkaPublisher(fp)

	o := domain.NewOrder(uuid.New(), time.Now())
	o.ID = uuid.New()
	ev := domain.NewEvent(domain.EventOrderCreated, o, time.Now(), "1 lines")

	require.NoError(t, p.Publish(context.Background(), ev))
	require.Len(t, fp.got, 1)
	require.Equal(t, "order_events", fp.got[0].topic)
	require.Equal(t, o.ID.String(), fp.got[0].key)
	require.Equal(t, ev, fp.got[0].event)
}

func TestLogPublisherNeverFails(t *testing.T) {
	o := domain.NewOrder(uuid.New(), time.Now())
	require.NoError(t, LogPublisher{}.Publish(context.Background(), domain.NewEvent(domain.EventDeleted, o, time.Now(), "")))
}
