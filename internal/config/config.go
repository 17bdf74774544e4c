// Package config loads console session options from a JSON file and
// environment variables. A missing file is not an error: loading
// returns the defaults.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/dshills/conline/internal/bus"
	"github.com/dshills/conline/internal/engine"
)

// Config holds the loadable session options.
type Config struct {
	// Prompt is the input row prompt.
	Prompt string

	// EchoCommitted reprints committed lines to scrollback.
	EchoCommitted bool

	// BusCapacity bounds the control bus.
	BusCapacity int

	// LogLevel is the minimum log level (debug, info, warn, error).
	LogLevel string

	// LogFile is where logs are written; empty means stderr.
	LogFile string
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Prompt:      engine.DefaultPrompt,
		BusCapacity: bus.DefaultCapacity,
		LogLevel:    "info",
	}
}

// Load reads path (JSON) over the defaults, then applies environment
// overrides. A missing or empty path yields defaults plus environment.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Absent config is fine.
		case err != nil:
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		default:
			if !gjson.ValidBytes(data) {
				return cfg, fmt.Errorf("config %s: invalid JSON", path)
			}
			applyJSON(&cfg, data)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyJSON(cfg *Config, data []byte) {
	if v := gjson.GetBytes(data, "prompt"); v.Exists() {
		cfg.Prompt = v.String()
	}
	if v := gjson.GetBytes(data, "echo_committed"); v.Exists() {
		cfg.EchoCommitted = v.Bool()
	}
	if v := gjson.GetBytes(data, "bus_capacity"); v.Exists() && v.Int() > 0 {
		cfg.BusCapacity = int(v.Int())
	}
	if v := gjson.GetBytes(data, "log.level"); v.Exists() {
		cfg.LogLevel = v.String()
	}
	if v := gjson.GetBytes(data, "log.file"); v.Exists() {
		cfg.LogFile = v.String()
	}
}

// applyEnv overrides from CONLINE_* variables.
func applyEnv(cfg *Config) {
	if v, ok := os.LookupEnv("CONLINE_PROMPT"); ok {
		cfg.Prompt = v
	}
	if v, ok := os.LookupEnv("CONLINE_ECHO_COMMITTED"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.EchoCommitted = b
		}
	}
	if v, ok := os.LookupEnv("CONLINE_BUS_CAPACITY"); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.BusCapacity = n
		}
	}
	if v, ok := os.LookupEnv("CONLINE_LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
	if v, ok := os.LookupEnv("CONLINE_LOG_FILE"); ok {
		cfg.LogFile = v
	}
}
