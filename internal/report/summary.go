package report

import (
	"github.com/shopspring/decimal"

	"github.com/mrcode/nightscout-report/internal/models"
)

// summarize derives the day statistics. The average covers every entry with a
// value, including ones left off the chart for lack of a readable time.
func summarize(entries []models.GlucoseEntry, t totals) models.DailySummary {
	return models.DailySummary{
		AverageGlucose:     averageGlucose(entries),
		TotalBolusInsulin:  t.bolus.InexactFloat64(),
		TotalBasalInsulin:  t.basal.InexactFloat64(),
		TotalCarbs:         t.carbs.InexactFloat64(),
		CarbToInsulinRatio: carbToInsulinRatio(t.carbs, t.bolus),
	}
}

func averageGlucose(entries []models.GlucoseEntry) int {
	sum := decimal.Zero
	count := 0
	for i := range entries {
		if !entries[i].SGV.Valid {
			continue
		}
		sum = sum.Add(entries[i].SGV.Value)
		count++
	}
	if count == 0 {
		return 0
	}
	return int(sum.Div(decimal.NewFromInt(int64(count))).RoundBank(0).IntPart())
}

// carbToInsulinRatio is total carbs over total bolus to one decimal
func carbToInsulinRatio(carbs, bolus decimal.Decimal) string {
	if bolus.Sign() <= 0 {
		return models.Placeholder
	}
	return carbs.Div(bolus).StringFixedBank(1)
}
