// Package scenario defines the end-to-end scenarios run against the dashboard
// and the runner that executes them.
package scenario

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed scenarios.yaml
var defaultData []byte

var validate = validator.New()

// Data is the test data the scenarios run with.
type Data struct {
	Login         LoginData         `yaml:"login"`
	SensorTotals  SensorTotalsData  `yaml:"sensor_totals"`
	FeatureEvents FeatureEventsData `yaml:"feature_events"`
}

// LoginData holds the messages shown for missing credentials.
type LoginData struct {
	EmailRequired    string `yaml:"email_required" validate:"required"`
	PasswordRequired string `yaml:"password_required" validate:"required"`
}

// Report addresses one KPI report: a program and a side bar category/option.
type Report struct {
	Program  string `yaml:"program" validate:"required"`
	Category string `yaml:"category" validate:"required"`
	Option   string `yaml:"option" validate:"required"`
	// Title is the lowercase report name expected in the URL and heading.
	Title string `yaml:"title"`
}

// ColumnCheck lists the subheader options of one main column to verify.
type ColumnCheck struct {
	Column  string   `yaml:"column" validate:"required"`
	Options []string `yaml:"options" validate:"min=1,dive,required"`
}

type SensorTotalsData struct {
	Report  `yaml:",inline"`
	Columns []ColumnCheck `yaml:"columns" validate:"min=1,dive"`
}

type FeatureEventsData struct {
	Report     `yaml:",inline"`
	SortColumn string `yaml:"sort_column" validate:"required"`
	SortOption string `yaml:"sort_option" validate:"required"`
	Amount     int    `yaml:"amount" validate:"gte=0"`
	EventName  string `yaml:"event_name" validate:"required"`
}

// LoadData reads scenario data from path, or the embedded defaults when path is empty.
func LoadData(path string) (*Data, error) {
	raw := defaultData
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read scenario data: %w", err)
		}
		raw = b
	}
	return ParseData(raw)
}

// ParseData decodes and validates YAML scenario data.
func ParseData(raw []byte) (*Data, error) {
	var d Data
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("failed to decode scenario data: %w", err)
	}
	if err := validate.Struct(&d); err != nil {
		return nil, fmt.Errorf("invalid scenario data: %w", err)
	}
	return &d, nil
}
