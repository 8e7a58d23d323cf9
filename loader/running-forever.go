package loader

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/natansdj/electives"
)

var (
	stopperMu sync.Mutex

	// List of stop function, run in reverse order of registration
	Stopper = []func(ctx context.Context) error{}
)

func AddStopper(stop func(ctx context.Context) error) {
	stopperMu.Lock()
	defer stopperMu.Unlock()

	Stopper = append(Stopper, stop)
}

// Hold the thread until SIGINT or SIGTERM
func WaitForExitSignal() os.Signal {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)

	sigTrigger := <-sig
	electives.LogI("Shutdown signal received [%s], running close procedures.", sigTrigger.String())

	return sigTrigger
}

// OnShutdown runs every stopper with ctx as the shared grace period and returns
// the process exit code: 0 when all of them stopped cleanly, 1 otherwise.
func OnShutdown(ctx context.Context) int {
	stopperMu.Lock()
	stoppers := Stopper
	Stopper = nil
	stopperMu.Unlock()

	var errs []error
	for i := len(stoppers) - 1; i >= 0; i-- {
		if err := stoppers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		electives.LogE("Shutdown finished with errors: %s", err.Error())
		return 1
	}

	electives.LogI("Shutdown complete.")
	return 0
}
