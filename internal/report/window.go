package report

import (
	"fmt"
	"time"

	"github.com/mrcode/nightscout-report/internal/models"
)

// DayWindow is one local calendar day, [Start, End)
type DayWindow struct {
	Date  string
	Start time.Time
	End   time.Time
}

// NewDayWindow resolves a YYYY-MM-DD date in loc. End is the next local
// midnight, so days around DST changes are 23 or 25 hours long.
func NewDayWindow(date string, loc *time.Location) (DayWindow, error) {
	start, err := time.ParseInLocation(models.DateLayout, date, loc)
	if err != nil {
		return DayWindow{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD: %w", date, err)
	}

	return DayWindow{
		Date:  start.Format(models.DateLayout),
		Start: start,
		End:   start.AddDate(0, 0, 1),
	}, nil
}

// Today returns the current date in loc
func Today(loc *time.Location) string {
	return time.Now().In(loc).Format(models.DateLayout)
}
