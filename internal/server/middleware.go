package server

import (
	"errors"
	"fmt"
	"net/http"
	"syscall"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/mrcode/nightscout-report/internal/logger"
)

const (
	// Utilizes a non-standard nginx code
	statusClosedConnection int = 499
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
}

// filterError turns a broken pipe into a 499 so APM does not record it as a failure.
// It must go after the Elastic APM middleware.
func filterError(log *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err != nil && errors.Is(err, syscall.EPIPE) {
				logger.CaptureError(c.Request().Context(), log, err)
				c.Response().Status = statusClosedConnection
				return nil
			}
			return err
		}
	}
}

func recoverer(log *zap.Logger) echo.MiddlewareFunc {
	return middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: func(_ echo.Context, err error, stack []byte) error {
			log.Error("panic recovered", zap.Error(err), zap.ByteString("stack", stack))
			return err
		},
	})
}

func requestID() echo.MiddlewareFunc {
	return middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	})
}

func requestLogger(log *zap.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", v.RequestID),
			}
			if v.Error != nil {
				log.Warn("request failed", append(fields, zap.Error(v.Error))...)
				return nil
			}
			log.Info("request", fields...)
			return nil
		},
	})
}

// errorHandler renders every error as {"error": message}
func errorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		message := err.Error()

		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			message = fmt.Sprint(he.Message)
		}

		if code >= http.StatusInternalServerError {
			logger.CaptureError(c.Request().Context(), log, err)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, ErrorResponse{Error: message})
		}
		if err != nil {
			log.Warn("writing error response", zap.Error(err))
		}
	}
}
