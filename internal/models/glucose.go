// Package models contains data structures used throughout the application
package models

import (
	"math"
	"time"
)

// GlucoseEntry represents a single glucose reading from Nightscout
type GlucoseEntry struct {
	ID        string `json:"_id,omitempty"`
	SGV       Number `json:"sgv"`                  // Sensor glucose value in mg/dL, absent on mbg/cal entries
	Date      int64  `json:"date,omitempty"`       // Unix timestamp in milliseconds
	DateStr   string `json:"dateString,omitempty"` // ISO 8601, used when date is missing
	Direction string `json:"direction,omitempty"`  // Trend direction as string
	Delta     Number `json:"delta"`                // Change from previous reading
	Device    string `json:"device,omitempty"`
	Type      string `json:"type,omitempty"`
}

// Time returns the time of the glucose entry, or the zero time when neither
// date nor dateString can be read
func (g *GlucoseEntry) Time() time.Time {
	if g.Date > 0 {
		return time.UnixMilli(g.Date)
	}
	return parseTimestamp(g.DateStr)
}

// ValueMgDL returns the glucose value in mg/dL and whether the entry has one
func (g *GlucoseEntry) ValueMgDL() (int, bool) {
	f, ok := g.SGV.Float64()
	if !ok {
		return 0, false
	}
	return int(math.Round(f)), true
}

// TrendArrow returns the Unicode arrow character for the trend
func (g *GlucoseEntry) TrendArrow() string {
	return DirectionGlyph(g.Direction)
}

var directionGlyphs = map[string]string{
	"DoubleUp":          "⇈",
	"SingleUp":          "↑",
	"FortyFiveUp":       "↗",
	"Flat":              "→",
	"FortyFiveDown":     "↘",
	"SingleDown":        "↓",
	"DoubleDown":        "⇊",
	"NOT COMPUTABLE":    "?",
	"RATE OUT OF RANGE": "?",
}

// DirectionGlyph maps a Nightscout direction code to its arrow. Unknown codes
// map to the empty string.
func DirectionGlyph(direction string) string {
	return directionGlyphs[direction]
}

// parseTimestamp accepts the ISO 8601 variants uploaders produce
func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.000-0700", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// ServerStatus represents the Nightscout server status
type ServerStatus struct {
	Status     string         `json:"status"`
	Name       string         `json:"name"`
	Version    string         `json:"version"`
	ServerTime string         `json:"serverTime"`
	APIEnabled bool           `json:"apiEnabled"`
	Settings   ServerSettings `json:"settings,omitempty"`
}

// ServerSettings contains the Nightscout server settings the report cares about
type ServerSettings struct {
	Units      string     `json:"units"`
	TimeFormat int        `json:"timeFormat"`
	Language   string     `json:"language"`
	Thresholds Thresholds `json:"thresholds,omitempty"`
}

// Thresholds contains glucose threshold settings
type Thresholds struct {
	BGHigh         int `json:"bgHigh"`
	BGLow          int `json:"bgLow"`
	BGTargetTop    int `json:"bgTargetTop"`
	BGTargetBottom int `json:"bgTargetBottom"`
}
