// Package notifications sends a desktop notification summarising a daily report
package notifications

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/gen2brain/beeep"

	"github.com/mrcode/nightscout-report/internal/models"
)

// Status constants
const (
	statusUrgentLow  = "urgent_low"
	statusLow        = "low"
	statusUrgentHigh = "urgent_high"
	statusHigh       = "high"
)

// Manager formats and sends report notifications
type Manager struct {
	settings *models.Settings
	notify   func(title, message string) error
	mu       sync.Mutex
}

// NewManager creates a new notification manager
func NewManager(settings *models.Settings) *Manager {
	return &Manager{
		settings: settings,
		notify:   sendNotification,
	}
}

// NotifyReport sends one notification with the day's summary
func (m *Manager) NotifyReport(data *models.ReportData) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	title, message := m.formatReport(data)
	if err := m.notify(title, message); err != nil {
		return fmt.Errorf("sending notification: %w", err)
	}
	return nil
}

// formatReport creates the notification title and message
func (m *Manager) formatReport(data *models.ReportData) (string, string) {
	if len(data.ChartGlucoseValues) == 0 && len(data.Rows) == 0 {
		return "Nightscout report " + data.Date, "No data for this day"
	}

	var title string
	switch m.settings.GetGlucoseStatus(data.AverageGlucose) {
	case statusUrgentLow:
		title = "⚠️ Very low average"
	case statusLow:
		title = "⬇️ Low average"
	case statusUrgentHigh:
		title = "⚠️ Very high average"
	case statusHigh:
		title = "⬆️ High average"
	default:
		title = "✅ In range"
	}
	title += " - " + data.Date

	message := fmt.Sprintf("Average %d mg/dL\nInsulin %s U, basal %s U\nCarbs %s g, TCIR %s",
		data.AverageGlucose,
		formatAmount(data.TotalBolusInsulin),
		formatAmount(data.TotalBasalInsulin),
		formatAmount(data.TotalCarbs),
		data.CarbToInsulinRatio,
	)

	return title, message
}

func formatAmount(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// sendNotification sends a system notification
func sendNotification(title, message string) error {
	// Use beeep for cross-platform notifications
	return beeep.Notify(title, message, "")
}
