package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/bookauth/internal/flagx"
	"github.com/dmitrijs2005/bookauth/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer
// fields tell "absent" from "zero", so only keys present in the file
// override the defaults. RequestTimeout relies on timex.Duration and accepts
// "10s" or integer nanoseconds.
type JsonConfig struct {
	BaseURL        *string         `json:"base_url"`
	RequestTimeout *timex.Duration `json:"request_timeout"`
	DatabasePath   *string         `json:"database_path"`
	ProfilePath    *string         `json:"profile_path"`
	VerifyOnStart  *bool           `json:"verify_on_start"`
	VerifyAttempts *int            `json:"verify_attempts"`
	LogLevel       *string         `json:"log_level"`
	LogFormat      *string         `json:"log_format"`
}

// parseJson overlays Config with values loaded from the JSON file named by
// -c or -config in args. Without either flag it does nothing.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigFilePath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&cfg.BaseURL, jc.BaseURL)
	setString(&cfg.DatabasePath, jc.DatabasePath)
	setString(&cfg.ProfilePath, jc.ProfilePath)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.LogFormat, jc.LogFormat)
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.VerifyOnStart != nil {
		cfg.VerifyOnStart = *jc.VerifyOnStart
	}
	if jc.VerifyAttempts != nil {
		if *jc.VerifyAttempts < 1 {
			return fmt.Errorf("parse config %s: verify_attempts must be at least 1", path)
		}
		cfg.VerifyAttempts = *jc.VerifyAttempts
	}
	return nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
