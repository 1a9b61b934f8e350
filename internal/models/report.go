package models

// DateLayout is the calendar date format reports are requested with
const DateLayout = "2006-01-02"

// ReportRow is one table row of the daily report, one per treatment
type ReportRow struct {
	Time        string `json:"time"`
	Glucose     string `json:"bg"`
	CIR         string `json:"cir"`
	Carbs       string `json:"carbs"`
	Predicted   string `json:"predicted"`
	Actual      string `json:"actual"`
	InsulinType string `json:"type"`
	Food        string `json:"food"`
	Measured    bool   `json:"measured,omitempty"` // row shows a manual glucose check
}

// DailySummary holds the day-level statistics
type DailySummary struct {
	AverageGlucose     int     `json:"avg_bg"`
	TotalBolusInsulin  float64 `json:"total_insulin"`
	TotalBasalInsulin  float64 `json:"basal_insulin"`
	TotalCarbs         float64 `json:"total_carbs"`
	CarbToInsulinRatio string  `json:"tcir"`
}

// ReportData is everything a renderer needs for one day
type ReportData struct {
	Date               string      `json:"date"`
	ChartTimeLabels    []string    `json:"chart_times"`
	ChartGlucoseValues []int       `json:"chart_bgs"`
	Rows               []ReportRow `json:"table_data"`
	DailySummary
}
