package config

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/bookauth/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   backend API base URL
//	-t int      request timeout in seconds
//	-d string   SQLite file for the durable session
//	-p string   profile endpoint path
//	-v bool     verify a restored session on start (-v=false to skip)
//	-l string   log level
//	-f string   log format, text or json
//
// Only these flags are picked out of args (via flagx.FilterArgs), so other
// components may define their own.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-t", "-d", "-p", "-v", "-l", "-f"}, "-v")

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.BaseURL, "a", cfg.BaseURL, "backend API base URL")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "session database file")
	fs.StringVar(&cfg.ProfilePath, "p", cfg.ProfilePath, "profile endpoint path")
	fs.BoolVar(&cfg.VerifyOnStart, "v", cfg.VerifyOnStart, "verify restored session on start")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "f", cfg.LogFormat, "log format (text, json)")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	// -t has whole-second resolution, so it only replaces a value coming
	// from defaults or JSON when it was given explicitly.
	timeoutSet := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			timeoutSet = true
		}
	})
	if !timeoutSet {
		return nil
	}
	if *timeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %d", *timeout)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
	return nil
}
