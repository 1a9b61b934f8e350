// Package annotation extracts structured fields from the free-text notes
// attached to Nightscout treatments.
//
// A note is a few lines typed on a phone. The first line picks how the note is
// read; the remaining lines are food items:
//
//	Tore 10          basal dose of 10 units
//	B                glucose supplement taken
//	N                insulin type only
//	cir 18 2.9N      carb/insulin ratio 18, predicted 2.9 units of N
//	rice             anything else: every line is a food item
package annotation

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Food items prepended by the marker modes
const (
	BasalMarker             = "basal insulin"
	GlucoseSupplementMarker = "glucose supplement"
)

var basalPrefixes = []string{"Tore", "トレ"}

var ratioLabel = regexp.MustCompile(`(?i)cir`)

// Mode is the way a note's first line was read
type Mode int

const (
	ModeFallback Mode = iota
	ModeBasal
	ModeGlucoseSupplement
	ModeInsulinType
	ModeRatio
)

func (m Mode) String() string {
	switch m {
	case ModeBasal:
		return "basal"
	case ModeGlucoseSupplement:
		return "glucose_supplement"
	case ModeInsulinType:
		return "insulin_type"
	case ModeRatio:
		return "ratio"
	default:
		return "fallback"
	}
}

// Annotation holds what could be read from a note. Numeric fields are invalid
// when absent or unreadable.
type Annotation struct {
	Mode                  Mode
	CarbInsulinRatio      decimal.NullDecimal
	PredictedInsulinUnits decimal.NullDecimal
	BasalDoseUnits        decimal.NullDecimal
	InsulinType           string // "N", "F" or empty
	FoodItems             []string
}

// HasBasalMarker reports whether the food items carry the basal marker
func (a Annotation) HasBasalMarker() bool {
	for _, item := range a.FoodItems {
		if item == BasalMarker {
			return true
		}
	}
	return false
}

// builder reads a note whose first line selected its mode
type builder func(first string, rest []string) Annotation

// first match wins, in this order
var detectors = []struct {
	mode  Mode
	match func(first string) bool
	build builder
}{
	{ModeBasal, isBasal, buildBasal},
	{ModeGlucoseSupplement, isGlucoseSupplement, buildGlucoseSupplement},
	{ModeInsulinType, isInsulinType, buildInsulinType},
	{ModeRatio, isRatio, buildRatio},
}

// Parse reads a note. It never fails: unrecognised notes become a list of
// food items.
func Parse(note string) Annotation {
	lines := splitLines(note)
	if len(lines) == 0 {
		return Annotation{Mode: ModeFallback, FoodItems: []string{}}
	}

	first, rest := lines[0], lines[1:]
	for _, d := range detectors {
		if d.match(first) {
			a := d.build(first, rest)
			a.Mode = d.mode
			return a
		}
	}

	return Annotation{Mode: ModeFallback, FoodItems: foodLines(lines)}
}

func splitLines(note string) []string {
	note = strings.TrimSpace(note)
	if note == "" {
		return nil
	}
	lines := strings.Split(note, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return lines
}

// foodLines keeps the non-blank lines in order
func foodLines(lines []string) []string {
	items := make([]string, 0, len(lines))
	for _, line := range lines {
		if line != "" {
			items = append(items, line)
		}
	}
	return items
}

func withMarker(marker string, rest []string) []string {
	return append([]string{marker}, foodLines(rest)...)
}

func isBasal(first string) bool {
	for _, prefix := range basalPrefixes {
		if !strings.HasPrefix(first, prefix) {
			continue
		}
		r, _ := utf8.DecodeRuneInString(first[len(prefix):])
		if unicode.IsSpace(r) {
			return true
		}
	}
	return false
}

func buildBasal(first string, rest []string) Annotation {
	a := Annotation{FoodItems: withMarker(BasalMarker, rest)}
	if fields := strings.Fields(first); len(fields) >= 2 {
		a.BasalDoseUnits = parseDecimal(fields[1])
	}
	return a
}

func isGlucoseSupplement(first string) bool {
	return strings.EqualFold(first, "B")
}

func buildGlucoseSupplement(_ string, rest []string) Annotation {
	return Annotation{FoodItems: withMarker(GlucoseSupplementMarker, rest)}
}

func isInsulinType(first string) bool {
	return strings.EqualFold(first, "N") || strings.EqualFold(first, "F")
}

func buildInsulinType(first string, rest []string) Annotation {
	return Annotation{
		InsulinType: strings.ToUpper(first),
		FoodItems:   foodLines(rest),
	}
}

func ratioTokens(first string) []string {
	return strings.Fields(ratioLabel.ReplaceAllString(first, ""))
}

func isRatio(first string) bool {
	tokens := ratioTokens(first)
	return len(tokens) > 0 && parseDecimal(tokens[0]).Valid
}

func buildRatio(first string, rest []string) Annotation {
	tokens := ratioTokens(first)
	a := Annotation{
		CarbInsulinRatio: parseDecimal(tokens[0]),
		FoodItems:        foodLines(rest),
	}

	if len(tokens) >= 2 {
		dose := tokens[1]
		if last := strings.ToUpper(dose[len(dose)-1:]); last == "N" || last == "F" {
			a.InsulinType = last
			dose = dose[:len(dose)-1]
		}
		a.PredictedInsulinUnits = parseDecimal(dose)
	}

	return a
}

// parseDecimal reads a plain decimal number; NaN and infinities are not numbers here
func parseDecimal(s string) decimal.NullDecimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}
