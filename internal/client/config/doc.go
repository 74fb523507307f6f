// Package config loads runtime configuration for the client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   backend API base URL
//	-t int      request timeout (seconds)
//	-d string   session database file
//	-p string   profile endpoint path
//	-v bool     verify a restored session on start
//	-l string   log level
//	-f string   log format
//
// # JSON schema
//
// Only the keys present in the file override defaults. The timeout uses
// timex.Duration, so it can be a string like "10s" or integer nanoseconds:
//
//	{
//	  "base_url": "http://localhost:8000/api",
//	  "request_timeout": "10s",
//	  "database_path": "session.db",
//	  "profile_path": "/users/me",
//	  "verify_on_start": true,
//	  "verify_attempts": 3,
//	  "log_level": "debug",
//	  "log_format": "json"
//	}
//
// Note: This package does not read environment variables directly; use the
// JSON file or flags to configure values.
package config
