package signalbroker

import (
	"context"
	"os"
	"os/signal"

	"github.com/matt-FFFFFF/fanout/internal/ctxlog"
)

// forceExitCode is 128 plus SIGINT.
const forceExitCode = 130

var exitFunc = os.Exit

// Watch monitors the signal channel. The first signal cancels the context
// so the batch winds down and deferred cleanup runs. The second signal
// terminates the process without waiting.
func Watch(ctx context.Context, sigCh chan os.Signal, cancel context.CancelFunc) {
	cancelled := false

	for sig := range sigCh {
		if !cancelled {
			ctxlog.Logger(ctx).Info("watchdog", "detail", "received signal, stopping batch", "signal", sig.String())
			cancel()

			cancelled = true

			continue
		}

		ctxlog.Logger(ctx).Error("watchdog", "detail", "received second signal, exiting now", "signal", sig.String())
		signal.Stop(sigCh)
		exitFunc(forceExitCode)

		return
	}
}
