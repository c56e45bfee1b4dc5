package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/Veraticus/fleet-ledger/internal/common"
)

// Configuration defaults.
const (
	EnvPrefix          = "LEDGER"
	DefaultTimezone    = "America/Sao_Paulo"
	DefaultReportLimit = 10
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "console"
)

// Settings is the resolved application configuration.
type Settings struct {
	Location     *time.Location
	DatabasePath string
	Timezone     string
	RulesFile    string
	LogLevel     string
	LogFormat    string
	ReportLimit  int
}

// DefaultDatabasePath returns $HOME/.local/share/ledger/ledger.db, or a file in
// the working directory when there is no home directory.
func DefaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "ledger.db"
	}
	return filepath.Join(home, ".local", "share", "ledger", "ledger.db")
}

// SetDefaults registers every key's default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", DefaultDatabasePath())
	v.SetDefault("timezone", DefaultTimezone)
	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.format", DefaultLogFormat)
	v.SetDefault("report.limit", DefaultReportLimit)
	v.SetDefault("rules.file", "")
}

// Load resolves Settings from v. Paths are expanded and the timezone is
// loaded so that callers never deal with an unknown location.
func Load(v *viper.Viper) (Settings, error) {
	s := Settings{
		DatabasePath: ExpandPath(v.GetString("database.path")),
		Timezone:     v.GetString("timezone"),
		RulesFile:    ExpandPath(v.GetString("rules.file")),
		LogLevel:     v.GetString("logging.level"),
		LogFormat:    v.GetString("logging.format"),
		ReportLimit:  v.GetInt("report.limit"),
	}

	if s.DatabasePath == "" {
		return Settings{}, fmt.Errorf("%w: database.path", common.ErrMissingConfig)
	}
	if s.Timezone == "" {
		s.Timezone = DefaultTimezone
	}

	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return Settings{}, fmt.Errorf("%w: timezone %q: %v", common.ErrInvalidConfig, s.Timezone, err)
	}
	s.Location = loc

	if s.ReportLimit < 0 {
		return Settings{}, fmt.Errorf("%w: report.limit must not be negative", common.ErrInvalidConfig)
	}

	return s, nil
}

// LoadEnvFile loads variables from .env style files into the process
// environment. Missing files are ignored; variables already set win.
func LoadEnvFile(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}
