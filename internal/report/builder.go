// Package report assembles a day's glucose entries and treatments into the
// data behind the daily report: the chart series, one table row per
// treatment, and the day totals.
package report

import (
	"sort"
	"time"

	"github.com/mrcode/nightscout-report/internal/models"
)

// Build assembles the report for date from already fetched records. It never
// fails; unreadable fields show as placeholders.
func Build(date string, entries []models.GlucoseEntry, treatments []models.Treatment, loc *time.Location) *models.ReportData {
	if loc == nil {
		loc = time.UTC
	}

	series := BuildSeries(entries, loc)

	ordered := make([]*models.Treatment, len(treatments))
	for i := range treatments {
		ordered[i] = &treatments[i]
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Time().Before(ordered[j].Time())
	})

	assembler := newRowAssembler(entries, loc)
	rows := make([]models.ReportRow, 0, len(ordered))
	for _, t := range ordered {
		rows = append(rows, assembler.row(t))
	}

	return &models.ReportData{
		Date:               date,
		ChartTimeLabels:    series.Labels,
		ChartGlucoseValues: series.Values,
		Rows:               rows,
		DailySummary:       summarize(entries, assembler.totals),
	}
}
