package notify

import (
	"context"

	"github.com/RichardKnop/machinery/v1/log"
)

// Dispatcher drains a notification channel into sinks. Sink failures are
// logged and never reach whoever emitted the notification.
type Dispatcher struct {
	in    <-chan Notification
	sinks []Sink
}

func NewDispatcher(in <-chan Notification, sinks ...Sink) *Dispatcher {
	return &Dispatcher{in: in, sinks: sinks}
}

// Run blocks until ctx is done or the channel is closed.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-d.in:
			if !ok {
				return
			}
			d.dispatch(ctx, n)
		}
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, n Notification) {
	for _, sink := range d.sinks {
		if err := sink.Push(ctx, n); err != nil {
			log.ERROR.Printf("Failed to push notification %s on %s: %s", n.ID, n.Topic, err)
		}
	}
}
