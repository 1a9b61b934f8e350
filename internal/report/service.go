package report

import (
	"context"
	"time"

	"go.elastic.co/apm"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mrcode/nightscout-report/internal/models"
)

// Fetcher reads one day's records from Nightscout
type Fetcher interface {
	GetEntriesBetween(ctx context.Context, from, to time.Time) ([]models.GlucoseEntry, error)
	GetTreatmentsBetween(ctx context.Context, from, to time.Time) ([]models.Treatment, error)
}

// Service builds reports from live Nightscout data
type Service struct {
	fetcher Fetcher
	loc     *time.Location
	logger  *zap.Logger
}

// NewService creates a report service for the patient's timezone
func NewService(fetcher Fetcher, loc *time.Location, logger *zap.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		fetcher: fetcher,
		loc:     loc,
		logger:  logger,
	}
}

// Location returns the timezone reports are built in
func (s *Service) Location() *time.Location {
	return s.loc
}

// Today returns the current date in the report timezone
func (s *Service) Today() string {
	return Today(s.loc)
}

// Report fetches and assembles the report for date (YYYY-MM-DD). Only an
// invalid date is an error; upstream failures produce an empty section.
func (s *Service) Report(ctx context.Context, date string) (*models.ReportData, error) {
	window, err := NewDayWindow(date, s.loc)
	if err != nil {
		return nil, err
	}

	entries, treatments := s.fetchDay(ctx, window)

	data := Build(window.Date, entries, treatments, s.loc)
	s.logger.Debug("report built",
		zap.String("date", window.Date),
		zap.Int("entries", len(entries)),
		zap.Int("treatments", len(treatments)),
		zap.Int("rows", len(data.Rows)),
	)

	return data, nil
}

// fetchDay reads both endpoints concurrently. A failed endpoint is logged and
// contributes an empty collection.
func (s *Service) fetchDay(ctx context.Context, window DayWindow) ([]models.GlucoseEntry, []models.Treatment) {
	span, ctx := apm.StartSpan(ctx, "nightscout.fetchDay", "external.nightscout")
	defer span.End()

	var (
		entries    []models.GlucoseEntry
		treatments []models.Treatment
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		result, err := s.fetcher.GetEntriesBetween(gctx, window.Start, window.End)
		if err != nil {
			s.logFetchFailure("entries", window, err)
			return nil
		}
		entries = result
		return nil
	})

	g.Go(func() error {
		result, err := s.fetcher.GetTreatmentsBetween(gctx, window.Start, window.End)
		if err != nil {
			s.logFetchFailure("treatments", window, err)
			return nil
		}
		treatments = result
		return nil
	})

	_ = g.Wait()

	if entries == nil {
		entries = []models.GlucoseEntry{}
	}
	if treatments == nil {
		treatments = []models.Treatment{}
	}

	return entries, treatments
}

func (s *Service) logFetchFailure(endpoint string, window DayWindow, err error) {
	s.logger.Warn("nightscout fetch failed, using empty data",
		zap.String("endpoint", endpoint),
		zap.String("date", window.Date),
		zap.Time("from", window.Start),
		zap.Time("to", window.End),
		zap.Error(err),
	)
}
