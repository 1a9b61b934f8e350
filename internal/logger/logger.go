// Package logger sets up structured logging and the optional Elastic APM tracer
package logger

import (
	"context"
	"fmt"

	"go.elastic.co/apm"
	"go.elastic.co/apm/module/apmzap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mrcode/nightscout-report/internal/models"
)

// New builds the production JSON logger at the configured level. With a
// tracer, error logs are also reported to APM.
func New(settings *models.Settings, tracer *apm.Tracer) (*zap.Logger, error) {
	config := zap.NewProductionConfig()

	level, err := zapcore.ParseLevel(settings.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", settings.LogLevel, err)
	}
	config.Level = zap.NewAtomicLevelAt(level)

	var opts []zap.Option
	if tracer != nil {
		opts = append(opts, zap.WrapCore((&apmzap.Core{Tracer: tracer}).WrapCore))
	}

	log, err := config.Build(opts...)
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}

	return log.With(
		zap.String("app", settings.AppName),
		zap.String("env", settings.AppEnv),
	), nil
}

// NewTracer replaces the default APM tracer. It returns nil when APM is not
// active.
func NewTracer(settings *models.Settings) (*apm.Tracer, error) {
	// Close default Elastic APM tracer
	apm.DefaultTracer.Close()

	if !settings.APMActive {
		return nil, nil
	}

	// Remaining options come from the ELASTIC_APM_* environment variables
	tracer, err := apm.NewTracerOptions(apm.TracerOptions{
		ServiceName:        settings.AppName,
		ServiceEnvironment: settings.AppEnv,
	})
	if err != nil {
		return nil, fmt.Errorf("creating APM tracer: %w", err)
	}

	return tracer, nil
}

// CaptureError logs err and, when a transaction is in ctx, sends it to APM
func CaptureError(ctx context.Context, log *zap.Logger, err error) {
	log.Error(err.Error())
	if tx := apm.TransactionFromContext(ctx); tx != nil {
		apm.CaptureError(ctx, err).Send()
	}
}
