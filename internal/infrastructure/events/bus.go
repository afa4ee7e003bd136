package events

import (
	"sync"
	"sync/atomic"

	"github.com/sangkips/pos-api/internal/domain/event"
	"github.com/sangkips/pos-api/pkg/logger"
	"github.com/sangkips/pos-api/pkg/metrics"
	"github.com/sirupsen/logrus"
)

// Bus fans events out to subscribers without ever blocking the publisher.
// A subscriber whose buffer is full misses the event.
type Bus struct {
	mu            sync.RWMutex
	subs          map[uint64]*Subscription
	nextID        uint64
	defaultBuffer int
	dropped       atomic.Uint64
	log           *logrus.Entry
}

// NewBus creates a bus whose subscriptions default to buffer slots
func NewBus(buffer int, log *logger.Logger) *Bus {
	if buffer <= 0 {
		buffer = 64
	}
	return &Bus{
		subs:          make(map[uint64]*Subscription),
		defaultBuffer: buffer,
		log:           log.Component("events"),
	}
}

// Subscription receives events of the requested types on C.
// An empty type list receives everything.
type Subscription struct {
	id    uint64
	ch    chan event.Event
	types map[event.Type]struct{}
	bus   *Bus
	once  sync.Once
}

// C is closed when the subscription is closed
func (s *Subscription) C() <-chan event.Event {
	return s.ch
}

func (s *Subscription) wants(t event.Type) bool {
	if len(s.types) == 0 {
		return true
	}
	_, ok := s.types[t]
	return ok
}

// Close detaches the subscription. It is safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.bus.mu.Lock()
		delete(s.bus.subs, s.id)
		s.bus.mu.Unlock()
		close(s.ch)
	})
}

// Subscribe registers a subscriber. buffer <= 0 uses the bus default.
func (b *Bus) Subscribe(buffer int, types ...event.Type) *Subscription {
	if buffer <= 0 {
		buffer = b.defaultBuffer
	}
	sub := &Subscription{
		ch:    make(chan event.Event, buffer),
		types: make(map[event.Type]struct{}, len(types)),
		bus:   b,
	}
	for _, t := range types {
		sub.types[t] = struct{}{}
	}

	b.mu.Lock()
	b.nextID++
	sub.id = b.nextID
	b.subs[sub.id] = sub
	b.mu.Unlock()
	return sub
}

// Publish implements event.Publisher
func (b *Bus) Publish(ev event.Event) {
	metrics.RecordEventPublished(string(ev.Type))

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs {
		if !sub.wants(ev.Type) {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
			b.dropped.Add(1)
			metrics.RecordEventDropped(string(ev.Type))
			b.log.WithFields(logrus.Fields{"type": ev.Type, "subscriber": sub.id}).Warn("subscriber buffer full, event dropped")
		}
	}
}

// Dropped returns how many deliveries were skipped
func (b *Bus) Dropped() uint64 {
	return b.dropped.Load()
}

// Subscribers returns the number of live subscriptions
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
