package server

import (
	"context"

	"github.com/labstack/echo/v4"
	"go.elastic.co/apm"
	"go.elastic.co/apm/module/apmechov4"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/mrcode/nightscout-report/internal/chart"
	"github.com/mrcode/nightscout-report/internal/logger"
	"github.com/mrcode/nightscout-report/internal/models"
	"github.com/mrcode/nightscout-report/internal/nightscout"
	"github.com/mrcode/nightscout-report/internal/report"
)

func tracerProvider(lc fx.Lifecycle, settings *models.Settings) (*apm.Tracer, error) {
	tracer, err := logger.NewTracer(settings)
	if err != nil || tracer == nil {
		return tracer, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			tracer.Flush(ctx.Done())
			tracer.Close()
			return nil
		},
	})
	return tracer, nil
}

func loggerProvider(lc fx.Lifecycle, settings *models.Settings, tracer *apm.Tracer) (*zap.Logger, error) {
	log, err := logger.New(settings, tracer)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			// Flushes buffer if it exists
			_ = log.Sync()
			return nil
		},
	})
	return log, nil
}

func clientProvider(settings *models.Settings) *nightscout.Client {
	return nightscout.NewClientFromSettings(settings)
}

func reportServiceProvider(client *nightscout.Client, settings *models.Settings, log *zap.Logger) *report.Service {
	return report.NewService(client, settings.Location(), log.Named("report"))
}

func chartProvider(settings *models.Settings) *chart.Chart {
	return chart.New(settings)
}

func handlerProvider(reports *report.Service, client *nightscout.Client, renderer *chart.Chart, settings *models.Settings, log *zap.Logger) *Handler {
	return NewHandler(reports, client, renderer, settings, log)
}

func echoProvider(h *Handler, tracer *apm.Tracer, log *zap.Logger) *echo.Echo {
	return NewEcho(h, tracer, log.Named("http"))
}

// NewEcho creates the web server with middleware and routes
func NewEcho(h *Handler, tracer *apm.Tracer, log *zap.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(log)

	e.Use(recoverer(log))
	e.Use(requestID())

	// Adds elastic APM middleware to web server to capture requests
	if tracer != nil {
		e.Use(apmechov4.Middleware(apmechov4.WithTracer(tracer)))
	}

	// Middleware to provide more control over response status for APM transactions
	e.Use(filterError(log))
	e.Use(requestLogger(log))

	h.Register(e)
	return e
}
