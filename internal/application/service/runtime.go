package service

import (
	"time"

	"github.com/sangkips/pos-api/internal/domain/event"
	"github.com/sangkips/pos-api/internal/domain/repository"
	"github.com/sangkips/pos-api/pkg/logger"
	"github.com/sangkips/pos-api/pkg/metrics"
)

// Runtime carries the collaborators every service shares
type Runtime struct {
	Tx     repository.Transactor
	Events event.Publisher
	Log    *logger.Logger
	Now    func() time.Time
}

func (rt Runtime) now() time.Time {
	if rt.Now == nil {
		return time.Now()
	}
	return rt.Now()
}

// publish hands committed events to the bus and counts them
func (rt Runtime) publish(rec *event.Recorder) {
	for _, ev := range rec.Events() {
		switch p := ev.Payload.(type) {
		case event.StockAdjustedPayload:
			metrics.RecordStockAdjustment(p.Reason, p.Delta)
		case event.KitchenStatusPayload:
			metrics.RecordKitchenTransition(p.Status.String())
		case event.OrderDeletedPayload:
			metrics.RecordOrderDeleted()
		}
	}
	if rt.Events == nil {
		rec.Flush(event.NopPublisher{})
		return
	}
	rec.Flush(rt.Events)
}
