package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/dagaz/internal/models"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Vault   VaultConfig       `yaml:"vault"`
	Journal JournalConfig     `yaml:"journal"`
	Index   IndexConfig       `yaml:"index"`
	Panel   PanelConfig       `yaml:"panel"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Vault.Validate(); err != nil {
		return err
	}
	if err := c.Journal.Validate(); err != nil {
		return err
	}
	if err := c.Index.Validate(); err != nil {
		return err
	}
	return c.Panel.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
}

// VaultConfig holds the path to the Markdown vault directory.
type VaultConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the vault configuration.
func (c *VaultConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// JournalConfig mirrors the vault's daily-note settings.
//
// DayEnd is an HH:mm clock time at which the logical day rolls over.
// A malformed value is not a validation error; the resolver falls back
// to 04:00 and logs a warning instead, so a typo never blanks the panel.
type JournalConfig struct {
	Enabled        bool   `yaml:"enabled"`
	FilenameFormat string `yaml:"filename_format"`
	Folder         string `yaml:"folder"`
	DayEnd         string `yaml:"day_end"`
}

// Validate validates the journal configuration.
func (c *JournalConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.FilenameFormat, validation.Required),
	)
}

// IndexConfig holds the page index database configuration.
type IndexConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the index configuration.
func (c *IndexConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// PanelConfig shapes the rendered panel: how many day columns to show
// and which fields and periods fill them.
type PanelConfig struct {
	DaysToShow     int                 `yaml:"days_to_show"`
	NoDataMessage  string              `yaml:"no_data_message"`
	ShowFieldNames bool                `yaml:"show_field_names"`
	Fields         []models.FieldSpec  `yaml:"fields"`
	Periods        []models.PeriodSpec `yaml:"periods"`
}

// Validate validates the panel configuration.
func (c *PanelConfig) Validate() error {
	// Normalise an empty message to the default so cells never render blank.
	if c.NoDataMessage == "" {
		c.NoDataMessage = "N/A"
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.DaysToShow, validation.Required, validation.Min(1), validation.Max(14)),
	); err != nil {
		return err
	}
	for i := range c.Fields {
		if err := validateField(&c.Fields[i]); err != nil {
			return fmt.Errorf("panel: field %d: %w", i+1, err)
		}
	}
	for i := range c.Periods {
		if err := validatePeriod(&c.Periods[i]); err != nil {
			return fmt.Errorf("panel: period %d: %w", i+1, err)
		}
	}
	return nil
}

func validateField(f *models.FieldSpec) error {
	kind, err := models.ParseKind(string(f.Kind))
	if err != nil {
		return err
	}
	// Normalise case so later comparisons can use the typed constants.
	f.Kind = kind

	if kind == models.KindLineBreak {
		return nil
	}
	if f.DisplayName == "" {
		return fmt.Errorf("kind %q needs a name", kind)
	}
	switch kind {
	case models.KindField:
		if f.TagName == "" {
			return fmt.Errorf("field %q needs a tag", f.DisplayName)
		}
	case models.KindScript:
		if f.Script == "" {
			return fmt.Errorf("field %q needs a script", f.DisplayName)
		}
	}
	return nil
}

func validatePeriod(p *models.PeriodSpec) error {
	unit, err := models.ParseUnit(string(p.Unit))
	if err != nil {
		return err
	}
	p.Unit = unit

	if p.Magnitude < 1 {
		return fmt.Errorf("period magnitude %d is not positive", p.Magnitude)
	}
	if p.Label == "" {
		return fmt.Errorf("period needs a label")
	}
	return nil
}

// NewDefaultConfig returns a new Config with sensible default values:
// a three day panel with a completed-task row and a rolling 30 day best.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
		},
		Vault: VaultConfig{
			Path: "./vault",
		},
		Journal: JournalConfig{
			Enabled:        true,
			FilenameFormat: "YYYY-MM-DD",
			DayEnd:         "04:00",
		},
		Index: IndexConfig{
			Path: "./dagaz.db",
		},
		Panel: PanelConfig{
			DaysToShow:    3,
			NoDataMessage: "N/A",
			Fields: []models.FieldSpec{
				{Kind: models.KindCompleted, DisplayName: "Tasks done"},
			},
			Periods: []models.PeriodSpec{
				{Magnitude: 30, Unit: models.UnitDays, Label: "30-day best"},
			},
		},
	}
}
