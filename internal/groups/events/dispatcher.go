package events

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aussiebroadwan/docket/pkg/idx"
	"github.com/aussiebroadwan/docket/pkg/slogx"
)

const DefaultTimeout = 5 * time.Second

// Dispatcher fans events out to its sinks on background goroutines.
type Dispatcher struct {
	sinks   []Sink
	timeout time.Duration
	logger  *slog.Logger

	wg sync.WaitGroup
}

// NewDispatcher returns a dispatcher delivering to sinks. A non-positive
// timeout falls back to DefaultTimeout.
func NewDispatcher(logger *slog.Logger, timeout time.Duration, sinks ...Sink) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Dispatcher{sinks: sinks, timeout: timeout, logger: logger}
}

// Emit schedules delivery and returns immediately. Deliveries keep the
// caller's context values but not its cancellation.
func (d *Dispatcher) Emit(ctx context.Context, e Event) {
	if e.ID == "" {
		e.ID = idx.New().String()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}

	base := context.WithoutCancel(ctx)
	for _, sink := range d.sinks {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()

			ctx, cancel := context.WithTimeout(base, d.timeout)
			defer cancel()

			if err := sink.Publish(ctx, e); err != nil {
				d.logger.Error("event delivery failed",
					slog.String("event_type", string(e.Type)),
					slog.String("group_id", e.GroupID),
					slogx.Err(err),
				)
			}
		}()
	}
}

// Wait blocks until every in-flight delivery has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
