package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/AlbertoOrlando/travel-journal-app/internal/observability"
)

// Dispatcher sends mail in the background. Failures are logged, never returned.
type Dispatcher struct {
	mailer  Mailer
	timeout time.Duration
	logger  *slog.Logger
	wg      sync.WaitGroup
}

func NewDispatcher(mailer Mailer, timeout time.Duration, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{mailer: mailer, timeout: timeout, logger: logger}
}

// SendAsync queues msg and returns immediately. The send is detached from
// ctx cancellation so it outlives the request, but keeps ctx values for logging.
func (d *Dispatcher) SendAsync(ctx context.Context, msg Message) {
	sendCtx := context.WithoutCancel(ctx)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				observability.MailDeliveries.WithLabelValues("error").Inc()
				d.logger.ErrorContext(sendCtx, "panic while sending email",
					slog.String("panic", fmt.Sprint(r)),
					slog.String("stack", string(debug.Stack())),
				)
			}
		}()

		ctx, cancel := context.WithTimeout(sendCtx, d.timeout)
		defer cancel()

		err := d.mailer.Send(ctx, msg)
		observability.MailDeliveries.WithLabelValues(observability.ResultLabel(err)).Inc()
		if err != nil {
			d.logger.WarnContext(ctx, "email delivery failed",
				slog.String("to", msg.To),
				slog.String("subject", msg.Subject),
				slog.String("error", err.Error()),
			)
			return
		}
		d.logger.InfoContext(ctx, "email sent", slog.String("to", msg.To), slog.String("subject", msg.Subject))
	}()
}

// Wait blocks until every queued send finished or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
