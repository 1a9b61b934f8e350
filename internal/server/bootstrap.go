// Package server runs the report web server: the interactive page, the JSON
// report endpoint and the chart image, wired together with fx.
package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/mrcode/nightscout-report/internal/models"
)

var dependencies = fx.Provide(
	tracerProvider,
	loggerProvider,
	clientProvider,
	reportServiceProvider,
	chartProvider,
	handlerProvider,
	echoProvider,
)

// Modules is the dependency graph without settings or an fx logger
var Modules = []fx.Option{
	dependencies,
}

// New creates the fx application serving reports with settings
func New(settings *models.Settings) *fx.App {
	opts := append([]fx.Option{}, Modules...)
	opts = append(opts,
		fx.Supply(settings),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
		fx.Invoke(startServer),
	)
	return fx.New(opts...)
}

// Components are the parts of the graph the server needs at start
type Components struct {
	fx.In

	Echo       *echo.Echo
	Settings   *models.Settings
	Logger     *zap.Logger
	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
}

func startServer(components Components) {
	e := components.Echo
	log := components.Logger
	addr := components.Settings.ListenAddr

	components.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("listening", zap.String("addr", addr))
				if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http listen and serve error", zap.Error(err))
					_ = components.Shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return e.Shutdown(ctx)
		},
	})
}
