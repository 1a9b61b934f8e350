package server

import (
	"bytes"
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/mrcode/nightscout-report/internal/chart"
	"github.com/mrcode/nightscout-report/internal/models"
	"github.com/mrcode/nightscout-report/internal/render"
)

// ReportService builds a day's report
type ReportService interface {
	Report(ctx context.Context, date string) (*models.ReportData, error)
	Today() string
}

// StatusChecker reads the upstream server status
type StatusChecker interface {
	GetStatus(ctx context.Context) (*models.ServerStatus, error)
}

// Handler serves the report page and API
type Handler struct {
	reports  ReportService
	status   StatusChecker
	chart    *chart.Chart
	settings *models.Settings
	logger   *zap.Logger
}

// NewHandler creates the HTTP handlers
func NewHandler(reports ReportService, status StatusChecker, renderer *chart.Chart, settings *models.Settings, logger *zap.Logger) *Handler {
	return &Handler{
		reports:  reports,
		status:   status,
		chart:    renderer,
		settings: settings,
		logger:   logger,
	}
}

// Register adds the routes to e
func (h *Handler) Register(e *echo.Echo) {
	e.GET("/", h.Index)
	e.GET("/heartbeat", h.Heartbeat)

	api := e.Group("/api")
	api.GET("/report", h.Report)
	api.GET("/report/chart.png", h.Chart)
	api.GET("/status", h.Status)
}

// Index serves the interactive report page
func (h *Handler) Index(c echo.Context) error {
	var buf bytes.Buffer
	if err := render.WritePage(&buf, h.reports.Today(), h.settings); err != nil {
		return err
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}

// Report returns the report data for ?date=YYYY-MM-DD, today by default
func (h *Handler) Report(c echo.Context) error {
	data, err := h.report(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, data)
}

// Chart returns the day's glucose chart as PNG
func (h *Handler) Chart(c echo.Context) error {
	data, err := h.report(c)
	if err != nil {
		return err
	}

	img, err := h.chart.Render(data)
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "image/png", img)
}

func (h *Handler) report(c echo.Context) (*models.ReportData, error) {
	date := c.QueryParam("date")
	if date == "" {
		date = h.reports.Today()
	}
	return h.reports.Report(c.Request().Context(), date)
}

// Heartbeat function to assess service status. Immediately return 200
func (h *Handler) Heartbeat(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

// Status proxies the Nightscout server status
func (h *Handler) Status(c echo.Context) error {
	status, err := h.status.GetStatus(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error()).SetInternal(err)
	}
	return c.JSON(http.StatusOK, status)
}
