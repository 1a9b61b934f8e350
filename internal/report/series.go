package report

import (
	"sort"
	"time"

	"github.com/mrcode/nightscout-report/internal/models"
)

// TimeLabelLayout formats chart and table times
const TimeLabelLayout = "15:04"

// Series is the day's glucose trace in chronological order
type Series struct {
	Labels []string
	Values []int
}

// BuildSeries sorts entries by time and keeps those with a value. Entries
// whose time cannot be read are dropped.
func BuildSeries(entries []models.GlucoseEntry, loc *time.Location) Series {
	type point struct {
		at    time.Time
		value int
	}

	points := make([]point, 0, len(entries))
	for i := range entries {
		at := entries[i].Time()
		if at.IsZero() {
			continue
		}
		value, ok := entries[i].ValueMgDL()
		if !ok {
			continue
		}
		points = append(points, point{at: at, value: value})
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].at.Before(points[j].at)
	})

	series := Series{
		Labels: make([]string, len(points)),
		Values: make([]int, len(points)),
	}
	for i, p := range points {
		series.Labels[i] = p.at.In(loc).Format(TimeLabelLayout)
		series.Values[i] = p.value
	}

	return series
}
