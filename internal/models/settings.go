package models

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata" // zone database for hosts without zoneinfo

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Settings contains all application settings
type Settings struct {
	// Connection settings
	NightscoutURL string        `envconfig:"NIGHTSCOUT_URL" json:"nightscoutUrl"`
	APISecret     string        `envconfig:"NIGHTSCOUT_API_SECRET" json:"-"` // Plain API secret (will be hashed)
	Timezone      string        `envconfig:"NIGHTSCOUT_TIMEZONE" default:"Asia/Tokyo" json:"timezone"`
	Timeout       time.Duration `envconfig:"NIGHTSCOUT_TIMEOUT" default:"30s" json:"timeout"`
	FetchCount    int           `envconfig:"NIGHTSCOUT_FETCH_COUNT" default:"1000" json:"fetchCount"`
	RateLimit     int           `envconfig:"NIGHTSCOUT_RATE_LIMIT" default:"0" json:"rateLimit"` // requests per second, 0 = unlimited

	// Served mode
	ListenAddr string `envconfig:"REPORT_LISTEN_ADDR" default:":5000" json:"listenAddr"`

	// Glucose thresholds in mg/dL
	TargetLow  int `envconfig:"REPORT_TARGET_LOW" default:"70" json:"targetLow"`
	TargetHigh int `envconfig:"REPORT_TARGET_HIGH" default:"180" json:"targetHigh"`
	UrgentLow  int `envconfig:"REPORT_URGENT_LOW" default:"55" json:"urgentLow"`
	UrgentHigh int `envconfig:"REPORT_URGENT_HIGH" default:"250" json:"urgentHigh"`

	// Logging and APM
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info" json:"logLevel"`
	AppEnv    string `envconfig:"APP_ENV" default:"dev" json:"appEnv"`
	AppName   string `envconfig:"APP_NAME" default:"nightscout-report" json:"appName"`
	APMActive bool   `envconfig:"ELASTIC_APM_ACTIVE" default:"false" json:"apmActive"`

	location *time.Location
}

// DefaultSettings returns settings with default values
func DefaultSettings() *Settings {
	return &Settings{
		Timezone:   "Asia/Tokyo",
		Timeout:    30 * time.Second,
		FetchCount: 1000,
		ListenAddr: ":5000",

		TargetLow:  70,
		TargetHigh: 180,
		UrgentLow:  55,
		UrgentHigh: 250,

		LogLevel: "info",
		AppEnv:   "dev",
		AppName:  "nightscout-report",
	}
}

// LoadSettings reads an optional .env file, then the environment
func LoadSettings() (*Settings, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	settings := &Settings{}
	if err := envconfig.Process("", settings); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}

	return settings, nil
}

// Validate checks the settings and resolves the timezone
func (s *Settings) Validate() error {
	s.NightscoutURL = strings.TrimRight(strings.TrimSpace(s.NightscoutURL), "/")
	if !s.IsConfigured() {
		return errors.New("NIGHTSCOUT_URL is required")
	}

	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return fmt.Errorf("unknown timezone %q: %w", s.Timezone, err)
	}
	s.location = loc

	if !(s.UrgentLow < s.TargetLow && s.TargetLow < s.TargetHigh && s.TargetHigh < s.UrgentHigh) {
		return fmt.Errorf("thresholds must satisfy urgent low < target low < target high < urgent high (got %d/%d/%d/%d)",
			s.UrgentLow, s.TargetLow, s.TargetHigh, s.UrgentHigh)
	}

	if s.FetchCount <= 0 {
		return fmt.Errorf("fetch count must be positive (got %d)", s.FetchCount)
	}

	return nil
}

// Location returns the patient's timezone, UTC if it cannot be resolved
func (s *Settings) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	if loc, err := time.LoadLocation(s.Timezone); err == nil {
		return loc
	}
	return time.UTC
}

// IsConfigured returns true if minimum required settings are set
func (s *Settings) IsConfigured() bool {
	return s.NightscoutURL != ""
}

// GetGlucoseStatus returns the status string for a glucose value
func (s *Settings) GetGlucoseStatus(mgdl int) string {
	switch {
	case mgdl <= s.UrgentLow:
		return "urgent_low"
	case mgdl <= s.TargetLow:
		return "low"
	case mgdl >= s.UrgentHigh:
		return "urgent_high"
	case mgdl >= s.TargetHigh:
		return "high"
	default:
		return "normal"
	}
}
