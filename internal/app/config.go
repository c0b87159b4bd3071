package app

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"atlaswifi/internal/filter"
	"atlaswifi/internal/selection"
)

// Default configuration constants
const (
	DefaultAttempts       = 1
	DefaultSorting        = "none"
	DefaultJournalMaxDays = 0 // keep everything
	MaxAttempts           = 255
)

// Config holds application configuration
type Config struct {
	ScanFile        string
	ConfigFile      string
	Filters         []string
	Sorting         string
	Attempts        int
	JournalDir      string
	JournalUTC      bool
	JournalMaxDays  int
	CheckParameters bool
	ReportErrors    bool
	Verbose         bool
	ShowVersion     bool
}

// DefaultConfig returns the configuration used when no flag or file sets a value
func DefaultConfig() Config {
	return Config{
		Sorting:         DefaultSorting,
		Attempts:        DefaultAttempts,
		JournalUTC:      true,
		JournalMaxDays:  DefaultJournalMaxDays,
		CheckParameters: true,
		ReportErrors:    true,
	}
}

// FileConfig is the YAML config file layout. Unset keys leave the current
// value alone.
type FileConfig struct {
	Filters         []string `yaml:"filters"`
	Sorting         *string  `yaml:"sorting"`
	Attempts        *int     `yaml:"attempts"`
	JournalDir      *string  `yaml:"journal_dir"`
	JournalUTC      *bool    `yaml:"journal_utc"`
	JournalMaxDays  *int     `yaml:"journal_max_days"`
	CheckParameters *bool    `yaml:"check_parameters"`
	ReportErrors    *bool    `yaml:"report_errors"`
}

// LoadFile reads a YAML config file
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config load failed (%s): %w", path, err)
	}

	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("config parse failed (%s): %w", path, err)
	}

	return &fc, nil
}

// Apply copies file values into cfg. Keys for which explicit(flag) reports
// true were given on the command line and win over the file.
func (fc *FileConfig) Apply(cfg *Config, explicit func(flag string) bool) {
	if explicit == nil {
		explicit = func(string) bool { return false }
	}

	if fc.Filters != nil && !explicit("filters") {
		cfg.Filters = fc.Filters
	}
	if fc.Sorting != nil && !explicit("sorting") {
		cfg.Sorting = *fc.Sorting
	}
	if fc.Attempts != nil && !explicit("attempts") {
		cfg.Attempts = *fc.Attempts
	}
	if fc.JournalDir != nil && !explicit("journal-dir") {
		cfg.JournalDir = *fc.JournalDir
	}
	if fc.JournalUTC != nil && !explicit("utc") {
		cfg.JournalUTC = *fc.JournalUTC
	}
	if fc.JournalMaxDays != nil && !explicit("journal-max-days") {
		cfg.JournalMaxDays = *fc.JournalMaxDays
	}
	if fc.CheckParameters != nil && !explicit("no-param-check") {
		cfg.CheckParameters = *fc.CheckParameters
	}
	if fc.ReportErrors != nil && !explicit("no-error-codes") {
		cfg.ReportErrors = *fc.ReportErrors
	}
}

// Validate checks configuration correctness without mutating it
func Validate(cfg Config) error {
	if cfg.ScanFile == "" {
		return fmt.Errorf("scan file is required")
	}
	if _, err := filter.Parse(cfg.Filters...); err != nil {
		return err
	}
	if _, err := selection.ParseSorting(cfg.Sorting); err != nil {
		return err
	}
	if cfg.Attempts < 1 || cfg.Attempts > MaxAttempts {
		return fmt.Errorf("attempts must be between 1 and %d, got %d", MaxAttempts, cfg.Attempts)
	}
	if cfg.JournalMaxDays < 0 {
		return fmt.Errorf("journal max days must not be negative, got %d", cfg.JournalMaxDays)
	}
	return nil
}
