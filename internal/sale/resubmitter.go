package sale

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Resubmitter drains the outbox on a fixed tick, re-posting parked sales to
// the backend. Delivery is at-least-once; the client reference lets the
// backend deduplicate.
type Resubmitter struct {
	tick    time.Duration
	outbox  *Outbox
	backend Backend
	log     *zap.Logger
}

func NewResubmitter(outbox *Outbox, backend Backend, tick time.Duration, log *zap.Logger) *Resubmitter {
	return &Resubmitter{
		tick:    tick,
		outbox:  outbox,
		backend: backend,
		log:     log,
	}
}

// Run loops until ctx is cancelled.
func (r *Resubmitter) Run(ctx context.Context) {
	ticker := time.NewTicker(r.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.resubmitPending(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (r *Resubmitter) resubmitPending(ctx context.Context) {
	pending, err := r.outbox.Pending()
	if err != nil {
		r.log.Error("failed to read sale outbox", zap.Error(err))
		return
	}

	for _, entry := range pending {
		receipt, errCreate := r.backend.CreateSale(ctx, entry.Sale)
		if errCreate != nil {
			r.log.Warn("parked sale resubmission failed",
				zap.String("client_ref", entry.ID),
				zap.Error(errCreate),
			)
			continue
		}

		if errMark := r.outbox.MarkSubmitted(entry.ID, receipt.ReceiptNumber); errMark != nil {
			r.log.Error("failed to mark parked sale submitted",
				zap.String("client_ref", entry.ID),
				zap.Error(errMark),
			)
			continue
		}
		r.log.Info("parked sale submitted",
			zap.String("client_ref", entry.ID),
			zap.String("receipt_number", receipt.ReceiptNumber),
		)
	}
}
