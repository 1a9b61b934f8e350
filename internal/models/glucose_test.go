package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestGlucoseEntry_TrendArrow(t *testing.T) {
	tests := []struct {
		name      string
		direction string
		expected  string
	}{
		{"DoubleUp direction", "DoubleUp", "⇈"},
		{"SingleUp direction", "SingleUp", "↑"},
		{"FortyFiveUp direction", "FortyFiveUp", "↗"},
		{"Flat direction", "Flat", "→"},
		{"FortyFiveDown direction", "FortyFiveDown", "↘"},
		{"SingleDown direction", "SingleDown", "↓"},
		{"DoubleDown direction", "DoubleDown", "⇊"},
		{"NOT COMPUTABLE", "NOT COMPUTABLE", "?"},
		{"RATE OUT OF RANGE", "RATE OUT OF RANGE", "?"},
		{"Unknown direction", "Unknown", ""},
		{"NONE", "NONE", ""},
		{"Empty direction", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := &GlucoseEntry{Direction: tt.direction}
			result := entry.TrendArrow()
			if result != tt.expected {
				t.Errorf("TrendArrow() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestGlucoseEntry_ValueMgDL(t *testing.T) {
	entry := &GlucoseEntry{SGV: NumberOf(120)}
	value, ok := entry.ValueMgDL()
	if !ok || value != 120 {
		t.Errorf("ValueMgDL() = %d, %v, want 120, true", value, ok)
	}

	mbg := &GlucoseEntry{Type: "mbg"}
	if _, ok := mbg.ValueMgDL(); ok {
		t.Error("ValueMgDL() should report no value for an entry without sgv")
	}
}

func TestGlucoseEntry_Time(t *testing.T) {
	millis := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC).UnixMilli()

	tests := []struct {
		name     string
		entry    GlucoseEntry
		expected time.Time
	}{
		{"date millis", GlucoseEntry{Date: millis}, time.UnixMilli(millis)},
		{"dateString fallback", GlucoseEntry{DateStr: "2024-03-01T12:00:00.000Z"}, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)},
		{"offset dateString", GlucoseEntry{DateStr: "2024-03-01T21:00:00+09:00"}, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)},
		{"malformed", GlucoseEntry{DateStr: "yesterday"}, time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.entry.Time(); !got.Equal(tt.expected) {
				t.Errorf("Time() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGlucoseEntry_Unmarshal(t *testing.T) {
	body := `[
		{"_id": "a", "sgv": 132, "date": 1709294400000, "direction": "Flat", "delta": -2.4, "type": "sgv"},
		{"_id": "b", "mbg": 140, "date": 1709294460000, "type": "mbg"},
		{"_id": "c", "sgv": "128", "dateString": "2024-03-01T12:10:00.000Z", "delta": null}
	]`

	var entries []GlucoseEntry
	if err := json.Unmarshal([]byte(body), &entries); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("Got %d entries, want 3", len(entries))
	}

	if v, ok := entries[0].ValueMgDL(); !ok || v != 132 {
		t.Errorf("entries[0].ValueMgDL() = %d, %v, want 132, true", v, ok)
	}
	if d, ok := entries[0].Delta.Float64(); !ok || d != -2.4 {
		t.Errorf("entries[0].Delta = %v, %v, want -2.4, true", d, ok)
	}
	if _, ok := entries[1].ValueMgDL(); ok {
		t.Error("mbg entry should have no sgv value")
	}
	if v, ok := entries[2].ValueMgDL(); !ok || v != 128 {
		t.Errorf("entries[2].ValueMgDL() = %d, %v, want 128, true", v, ok)
	}
	if entries[2].Delta.Valid {
		t.Error("null delta should be invalid")
	}
}
