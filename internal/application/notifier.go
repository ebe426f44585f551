package application

import "context"

// Notifier surfaces cycle failures outside the log stream.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

type NoopNotifier struct{}

func (n *NoopNotifier) Notify(_ context.Context, _ string) error {
	return nil
}
