// Package render writes the HTML report pages
package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/mrcode/nightscout-report/internal/models"
)

//go:embed templates/*.gohtml
var FS embed.FS

var templates = template.Must(template.New("report").ParseFS(FS, "templates/*.gohtml"))

// view is what the templates see
type view struct {
	Title         string
	Date          string
	Today         string
	NightscoutURL string
	TargetLow     int
	TargetHigh    int
	Data          *models.ReportData
}

func newView(settings *models.Settings) view {
	return view{
		Title:         "Nightscout daily report",
		NightscoutURL: settings.NightscoutURL,
		TargetLow:     settings.TargetLow,
		TargetHigh:    settings.TargetHigh,
	}
}

// WriteStaticReport writes a self-contained page for one day's report
func WriteStaticReport(w io.Writer, data *models.ReportData, settings *models.Settings) error {
	v := newView(settings)
	v.Title = fmt.Sprintf("Nightscout daily report %s", data.Date)
	v.Date = data.Date
	v.Data = data

	if err := templates.ExecuteTemplate(w, "static", v); err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}
	return nil
}

// WritePage writes the interactive page that loads reports from /api/report
func WritePage(w io.Writer, today string, settings *models.Settings) error {
	v := newView(settings)
	v.Today = today

	if err := templates.ExecuteTemplate(w, "page", v); err != nil {
		return fmt.Errorf("rendering page: %w", err)
	}
	return nil
}
