package models

import "time"

// Treatment represents a treatment entry from Nightscout (insulin, carbs, etc.)
type Treatment struct {
	ID          string `json:"_id,omitempty"`
	EventType   string `json:"eventType,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
	Date        int64  `json:"date,omitempty"` // Unix timestamp in milliseconds, some uploaders only
	Insulin     Number `json:"insulin"`        // Units of insulin
	Carbs       Number `json:"carbs"`          // Grams of carbohydrates
	Glucose     Number `json:"glucose"`        // Blood glucose value if recorded
	GlucoseType string `json:"glucoseType,omitempty"`
	Units       string `json:"units,omitempty"`
	Notes       string `json:"notes,omitempty"`
	EnteredBy   string `json:"enteredBy,omitempty"`
}

// Time returns the time of the treatment, or the zero time when it cannot be read
func (t *Treatment) Time() time.Time {
	if parsed := parseTimestamp(t.CreatedAt); !parsed.IsZero() {
		return parsed
	}
	if t.Date > 0 {
		return time.UnixMilli(t.Date)
	}
	return time.Time{}
}

// HasManualGlucose returns true if the treatment records a measured glucose value
func (t *Treatment) HasManualGlucose() bool {
	return t.Glucose.Present()
}

// HasInsulin returns true if this treatment includes a readable insulin dose
func (t *Treatment) HasInsulin() bool {
	return t.Insulin.Valid
}

// HasCarbs returns true if this treatment includes a readable carbohydrate amount
func (t *Treatment) HasCarbs() bool {
	return t.Carbs.Valid
}
