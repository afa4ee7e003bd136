package events

import (
	"testing"
	"time"

	"github.com/sangkips/pos-api/internal/domain/event"
	"github.com/sangkips/pos-api/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusFiltersByType(t *testing.T) {
	bus := NewBus(4, logger.NewNop())
	kitchen := bus.Subscribe(0, event.KitchenStatusChanged)
	all := bus.Subscribe(0)
	defer kitchen.Close()
	defer all.Close()

	bus.Publish(event.Event{Type: event.StockAdjusted, OccurredAt: time.Now()})
	bus.Publish(event.Event{Type: event.KitchenStatusChanged, OccurredAt: time.Now()})

	got := <-kitchen.C()
	assert.Equal(t, event.KitchenStatusChanged, got.Type)
	assert.Len(t, kitchen.C(), 0)
	assert.Len(t, all.C(), 2)
}

func TestBusDropsWhenSubscriberIsFull(t *testing.T) {
	bus := NewBus(1, logger.NewNop())
	sub := bus.Subscribe(1)
	defer sub.Close()

	bus.Publish(event.Event{Type: event.StockAdjusted})
	bus.Publish(event.Event{Type: event.StockAdjusted})

	assert.Equal(t, uint64(1), bus.Dropped())
	assert.Len(t, sub.C(), 1)
}

func TestSubscriptionCloseIsIdempotent(t *testing.T) {
	bus := NewBus(1, logger.NewNop())
	sub := bus.Subscribe(0)
	require.Equal(t, 1, bus.Subscribers())

	sub.Close()
	sub.Close()

	assert.Equal(t, 0, bus.Subscribers())
	_, open := <-sub.C()
	assert.False(t, open)

	bus.Publish(event.Event{Type: event.OrderDeleted})
}
