// Package chart draws the day's glucose trace as a PNG image
package chart

import (
	"bytes"
	"fmt"
	"image/color"
	"image/png"
	"strconv"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/mrcode/nightscout-report/internal/models"
)

const (
	statusUrgentLow  = "urgent_low"
	statusUrgentHigh = "urgent_high"
	statusLow        = "low"
	statusHigh       = "high"

	maxGlucose   = 400
	minutesInDay = 24 * 60

	marginLeft   = 56.0
	marginRight  = 20.0
	marginTop    = 36.0
	marginBottom = 40.0
)

// Chart renders report series with the configured thresholds
type Chart struct {
	settings *models.Settings
	width    int
	height   int
}

// New creates a chart renderer with the default 960x320 size
func New(settings *models.Settings) *Chart {
	return &Chart{settings: settings, width: 960, height: 320}
}

// WithSize returns a copy rendering at the given size
func (c *Chart) WithSize(width, height int) *Chart {
	cp := *c
	cp.width = width
	cp.height = height
	return &cp
}

// Render draws the report's glucose series with the target band
func (c *Chart) Render(data *models.ReportData) ([]byte, error) {
	dc := gg.NewContext(c.width, c.height)
	dc.SetColor(color.White)
	dc.Clear()

	plotW := float64(c.width) - marginLeft - marginRight
	plotH := float64(c.height) - marginTop - marginBottom
	x := func(minute int) float64 {
		return marginLeft + plotW*float64(minute)/minutesInDay
	}
	y := func(mgdl int) float64 {
		if mgdl > maxGlucose {
			mgdl = maxGlucose
		}
		return marginTop + plotH*(1-float64(mgdl)/maxGlucose)
	}

	if err := loadFont(dc, 12); err != nil {
		return nil, fmt.Errorf("loading font: %w", err)
	}

	// Target band
	dc.SetRGBA(76.0/255, 175.0/255, 80.0/255, 0.1)
	dc.DrawRectangle(marginLeft, y(c.settings.TargetHigh), plotW, y(c.settings.TargetLow)-y(c.settings.TargetHigh))
	dc.Fill()

	c.drawAxes(dc, x, y, plotW)

	dc.SetDash(5, 5)
	dc.SetRGB255(0x4C, 0xAF, 0x50)
	dc.SetLineWidth(1.5)
	for _, limit := range []int{c.settings.TargetLow, c.settings.TargetHigh} {
		dc.DrawLine(marginLeft, y(limit), marginLeft+plotW, y(limit))
		dc.Stroke()
	}
	dc.SetDash()

	points := seriesPoints(data)
	if len(points) == 0 {
		dc.SetColor(color.Gray{Y: 0x66})
		dc.DrawStringAnchored("No data", marginLeft+plotW/2, marginTop+plotH/2, 0.5, 0.5)
	} else {
		dc.SetRGB255(0x66, 0x7E, 0xEA)
		dc.SetLineWidth(2)
		for i, p := range points {
			if i == 0 {
				dc.MoveTo(x(p.minute), y(p.value))
			} else {
				dc.LineTo(x(p.minute), y(p.value))
			}
		}
		dc.Stroke()

		for _, p := range points {
			r, g, b := parseHexColor(statusColor(c.settings.GetGlucoseStatus(p.value)))
			dc.SetRGB255(int(r), int(g), int(b))
			dc.DrawCircle(x(p.minute), y(p.value), 2.5)
			dc.Fill()
		}
	}

	if err := loadFont(dc, 16); err == nil {
		dc.SetColor(color.Black)
		dc.DrawStringAnchored("Glucose "+data.Date, float64(c.width)/2, marginTop/2, 0.5, 0.5)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, dc.Image()); err != nil {
		return nil, fmt.Errorf("encoding chart: %w", err)
	}

	return buf.Bytes(), nil
}

func (c *Chart) drawAxes(dc *gg.Context, x func(int) float64, y func(int) float64, plotW float64) {
	dc.SetLineWidth(1)

	for mgdl := 0; mgdl <= maxGlucose; mgdl += 100 {
		dc.SetColor(color.Gray{Y: 0xE0})
		dc.DrawLine(marginLeft, y(mgdl), marginLeft+plotW, y(mgdl))
		dc.Stroke()
		dc.SetColor(color.Gray{Y: 0x55})
		dc.DrawStringAnchored(strconv.Itoa(mgdl), marginLeft-8, y(mgdl), 1, 0.5)
	}

	bottom := y(0)
	for hour := 0; hour <= 24; hour += 3 {
		dc.SetColor(color.Gray{Y: 0x55})
		dc.DrawLine(x(hour*60), bottom, x(hour*60), bottom+4)
		dc.Stroke()
		dc.DrawStringAnchored(fmt.Sprintf("%02d:00", hour%24), x(hour*60), bottom+16, 0.5, 0.5)
	}
}

type point struct {
	minute int
	value  int
}

// seriesPoints pairs chart labels with values, skipping labels that are not HH:MM
func seriesPoints(data *models.ReportData) []point {
	n := len(data.ChartTimeLabels)
	if len(data.ChartGlucoseValues) < n {
		n = len(data.ChartGlucoseValues)
	}

	points := make([]point, 0, n)
	for i := 0; i < n; i++ {
		minute, ok := labelMinutes(data.ChartTimeLabels[i])
		if !ok {
			continue
		}
		points = append(points, point{minute: minute, value: data.ChartGlucoseValues[i]})
	}
	return points
}

func labelMinutes(label string) (int, bool) {
	hh, mm, found := strings.Cut(label, ":")
	if !found {
		return 0, false
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

// loadFont helper to load font safely
func loadFont(dc *gg.Context, size float64) error {
	font, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return err
	}
	face := truetype.NewFace(font, &truetype.Options{Size: size})
	dc.SetFontFace(face)
	return nil
}

// statusColor returns the point color for a glucose status
func statusColor(status string) string {
	switch status {
	case statusUrgentLow, statusUrgentHigh:
		return "#ef4444" // Red
	case statusLow:
		return "#f97316" // Orange
	case statusHigh:
		return "#facc15" // Yellow
	default:
		return "#4ade80" // Green
	}
}

// parseHexColor parses a hex color string to RGB values
func parseHexColor(hex string) (r, g, b byte) {
	if len(hex) == 7 && hex[0] == '#' {
		_, _ = fmt.Sscanf(hex, "#%02x%02x%02x", &r, &g, &b)
	}
	return
}
