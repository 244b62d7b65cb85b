package shutdown

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// WithSignals returns a context cancelled on SIGINT/SIGTERM (or sigs, if given).
func WithSignals(parent context.Context, sigs ...os.Signal) (context.Context, context.CancelFunc) {
	if len(sigs) == 0 {
		sigs = []os.Signal{syscall.SIGINT, syscall.SIGTERM}
	}
	return signal.NotifyContext(parent, sigs...)
}

// Graceful calls stop and waits up to timeout for it to return. When the
// deadline passes first, force is called and Graceful returns false.
func Graceful(timeout time.Duration, stop func(ctx context.Context), force func()) bool {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	stopped := make(chan struct{})
	go func() {
		stop(ctx)
		close(stopped)
	}()

	select {
	case <-stopped:
		return true
	case <-ctx.Done():
		if force != nil {
			force()
		}
		return false
	}
}
