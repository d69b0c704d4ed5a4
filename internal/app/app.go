package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// Application holds all the components and manages the application lifecycle
type Application struct {
	ctx       context.Context
	cancel    context.CancelFunc
	container *Container
}

// NewApplication creates and fully initializes a new Application instance
func NewApplication(ctx context.Context, configPath string) (*Application, error) {
	appCtx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)

	container, err := NewContainer(appCtx, configPath)
	if err != nil {
		cancel()
		return nil, err
	}

	app := &Application{
		ctx:       appCtx,
		cancel:    cancel,
		container: container,
	}
	app.container.Logger().Info("Application initialized successfully")
	return app, nil
}

// Run serves HTTP until a shutdown signal arrives
func (app *Application) Run() error {
	return app.container.Server().Run(app.ctx)
}

// Shutdown gracefully shuts down all application components
func (app *Application) Shutdown() {
	app.container.Logger().Info("Starting application shutdown...")
	app.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.container.Shutdown(ctx); err != nil {
		app.container.Logger().Error("Shutdown finished with errors", zap.Error(err))
	}
}
