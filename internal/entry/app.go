package entry

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"
)

// Application carries the process-level scaffolding shared by every binary: a
// JSON logger tagged with the app name and a unique run id, and a context
// that cancels on SIGINT or SIGTERM.
type Application struct {
	logger *slog.Logger
	stop   context.CancelFunc
}

func NewApplication(name string) (*Application, context.Context) {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil)).With(
		"app", name,
		"run_id", uuid.NewString(),
	)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	return &Application{logger: logger, stop: stop}, ctx
}

func (a *Application) Log() *slog.Logger {
	return a.logger
}

// Stop releases the signal handler installed by NewApplication.
func (a *Application) Stop() {
	a.stop()
}

// Fail logs a fatal error and exits with a non-zero status.
func (a *Application) Fail(message string, err error) {
	a.logger.Error(message, "error", err)
	os.Exit(1)
}
