// Package config loads runtime configuration for the photo CLI client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the photo API (e.g. "http://localhost:3000/api")
//	-f string   path of the local session database
//	-t int      request timeout (seconds)
//
// # JSON schema
//
// Durations use timex.Duration, so values can be either strings like "30s"
// or integer nanoseconds:
//
//	{
//	  "server_url": "http://localhost:3000/api",
//	  "session_db": "photos-client.db",
//	  "request_timeout": "30s"
//	}
package config
