// Package config resolves runtime configuration from an optional YAML file
// overlaid by environment variables. Environment values always win.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/example/room-booking/internal/booking"
)

// Config captures the runtime configuration of the booking service.
type Config struct {
	HTTPPort         int
	SQLiteDSN        string
	WorkStart        booking.TimeOfDay
	WorkEnd          booking.TimeOfDay
	ReportWindowDays int
}

type fileConfig struct {
	HTTPPort         int    `yaml:"http_port"`
	SQLiteDSN        string `yaml:"sqlite_dsn"`
	WorkStart        string `yaml:"work_start"`
	WorkEnd          string `yaml:"work_end"`
	ReportWindowDays int    `yaml:"report_window_days"`
}

// Load resolves configuration for the current process. The file named by
// ROOMBOOK_CONFIG_FILE is read when set; a missing default file is not an
// error. Individual environment variables override file values.
func Load() (Config, error) {
	return LoadFromFile(strings.TrimSpace(os.Getenv("ROOMBOOK_CONFIG_FILE")))
}

// LoadFromFile resolves configuration using the given YAML file as the base
// layer. An empty path skips the file layer entirely.
func LoadFromFile(path string) (Config, error) {
	cfg := Config{
		HTTPPort:         8080,
		SQLiteDSN:        "file:roombook.db?_foreign_keys=on",
		WorkStart:        booking.NewTimeOfDay(8, 0),
		WorkEnd:          booking.NewTimeOfDay(20, 0),
		ReportWindowDays: 30,
	}

	if path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("ROOMBOOK_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "ROOMBOOK_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("ROOMBOOK_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if startValue := strings.TrimSpace(os.Getenv("ROOMBOOK_WORK_START")); startValue != "" {
		start, err := booking.ParseTimeOfDay(startValue)
		if err != nil {
			invalid = append(invalid, "ROOMBOOK_WORK_START")
		} else {
			cfg.WorkStart = start
		}
	}

	if endValue := strings.TrimSpace(os.Getenv("ROOMBOOK_WORK_END")); endValue != "" {
		end, err := booking.ParseTimeOfDay(endValue)
		if err != nil {
			invalid = append(invalid, "ROOMBOOK_WORK_END")
		} else {
			cfg.WorkEnd = end
		}
	}

	if daysValue := strings.TrimSpace(os.Getenv("ROOMBOOK_REPORT_WINDOW_DAYS")); daysValue != "" {
		days, err := strconv.Atoi(daysValue)
		if err != nil || days <= 0 {
			invalid = append(invalid, "ROOMBOOK_REPORT_WINDOW_DAYS")
		} else {
			cfg.ReportWindowDays = days
		}
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}
	if cfg.WorkStart >= cfg.WorkEnd {
		return Config{}, fmt.Errorf("working hours are inverted: %s >= %s", cfg.WorkStart, cfg.WorkEnd)
	}

	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config file %s does not exist", path)
		}
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if fc.HTTPPort > 0 {
		cfg.HTTPPort = fc.HTTPPort
	}
	if dsn := strings.TrimSpace(fc.SQLiteDSN); dsn != "" {
		cfg.SQLiteDSN = dsn
	}
	if fc.WorkStart != "" {
		start, err := booking.ParseTimeOfDay(fc.WorkStart)
		if err != nil {
			return fmt.Errorf("config file %s: work_start: %w", path, err)
		}
		cfg.WorkStart = start
	}
	if fc.WorkEnd != "" {
		end, err := booking.ParseTimeOfDay(fc.WorkEnd)
		if err != nil {
			return fmt.Errorf("config file %s: work_end: %w", path, err)
		}
		cfg.WorkEnd = end
	}
	if fc.ReportWindowDays > 0 {
		cfg.ReportWindowDays = fc.ReportWindowDays
	}
	return nil
}
