package report

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mrcode/nightscout-report/internal/annotation"
	"github.com/mrcode/nightscout-report/internal/models"
)

const measuredSuffix = " (measured)"

// totals accumulates the day's insulin and carbohydrate sums
type totals struct {
	bolus decimal.Decimal
	basal decimal.Decimal
	carbs decimal.Decimal
}

// rowAssembler turns treatments into table rows, folding each into the totals
type rowAssembler struct {
	entries []models.GlucoseEntry // unfiltered, upstream order
	loc     *time.Location
	totals  totals
}

func newRowAssembler(entries []models.GlucoseEntry, loc *time.Location) *rowAssembler {
	return &rowAssembler{entries: entries, loc: loc}
}

func (a *rowAssembler) row(t *models.Treatment) models.ReportRow {
	at := t.Time()
	timeLabel := models.Placeholder
	if !at.IsZero() {
		timeLabel = at.In(a.loc).Format(TimeLabelLayout)
	}

	if t.HasManualGlucose() {
		return models.ReportRow{
			Time:        timeLabel,
			Glucose:     t.Glucose.Raw + measuredSuffix,
			CIR:         models.Placeholder,
			Carbs:       models.Placeholder,
			Predicted:   models.Placeholder,
			Actual:      models.Placeholder,
			InsulinType: models.Placeholder,
			Food:        models.Placeholder,
			Measured:    true,
		}
	}

	glucose := models.Placeholder
	if !at.IsZero() {
		if nearest := nearestEntry(a.entries, at); nearest != nil {
			glucose = formatGlucose(nearest)
		}
	}

	note := annotation.Parse(t.Notes)
	a.accumulate(t, note)

	return models.ReportRow{
		Time:        timeLabel,
		Glucose:     glucose,
		CIR:         displayDecimal(note.CarbInsulinRatio),
		Carbs:       displayCarbs(t.Carbs),
		Predicted:   displayDecimal(note.PredictedInsulinUnits),
		Actual:      t.Insulin.Display(),
		InsulinType: displayText(note.InsulinType),
		Food:        displayFood(note.FoodItems),
	}
}

// accumulate adds basal or bolus insulin, never both, and carbs
func (a *rowAssembler) accumulate(t *models.Treatment, note annotation.Annotation) {
	basal := note.BasalDoseUnits
	switch {
	case note.HasBasalMarker() && basal.Valid && !basal.Decimal.IsZero():
		a.totals.basal = a.totals.basal.Add(basal.Decimal)
	case t.HasInsulin():
		a.totals.bolus = a.totals.bolus.Add(t.Insulin.Value)
	}

	if t.HasCarbs() {
		a.totals.carbs = a.totals.carbs.Add(t.Carbs.Value)
	}
}

// nearestEntry returns the entry closest in time to at. Ties keep the
// earlier entry in slice order; entries without a time are skipped.
func nearestEntry(entries []models.GlucoseEntry, at time.Time) *models.GlucoseEntry {
	var (
		best     *models.GlucoseEntry
		bestDiff time.Duration
	)

	for i := range entries {
		et := entries[i].Time()
		if et.IsZero() {
			continue
		}
		diff := et.Sub(at)
		if diff < 0 {
			diff = -diff
		}
		if best == nil || diff < bestDiff {
			best = &entries[i]
			bestDiff = diff
		}
	}

	return best
}

// formatGlucose renders "<value> (<delta>) <arrow>", e.g. "132 (+3) ↗"
func formatGlucose(e *models.GlucoseEntry) string {
	var b strings.Builder

	if value, ok := e.ValueMgDL(); ok {
		fmt.Fprintf(&b, "%d", value)
	} else {
		b.WriteString(models.Placeholder)
	}

	if delta, ok := e.Delta.Float64(); ok {
		rounded := int(math.RoundToEven(delta))
		if rounded > 0 {
			fmt.Fprintf(&b, " (+%d)", rounded)
		} else {
			fmt.Fprintf(&b, " (%d)", rounded)
		}
	}

	if glyph := e.TrendArrow(); glyph != "" {
		b.WriteString(" " + glyph)
	}

	return b.String()
}

func displayDecimal(d decimal.NullDecimal) string {
	if !d.Valid || d.Decimal.IsZero() {
		return models.Placeholder
	}
	return d.Decimal.String()
}

func displayCarbs(n models.Number) string {
	if !n.Present() {
		return models.Placeholder
	}
	return n.Raw + "g"
}

func displayText(s string) string {
	if s == "" {
		return models.Placeholder
	}
	return s
}

func displayFood(items []string) string {
	if len(items) == 0 {
		return models.Placeholder
	}
	return strings.Join(items, ", ")
}
