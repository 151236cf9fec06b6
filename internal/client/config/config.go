package config

import (
	"errors"
	"net/url"
	"time"
)

// Config holds runtime settings for the photo CLI.
type Config struct {
	ServerURL      string
	SessionDBPath  string
	RequestTimeout time.Duration
}

// LoadDefaults populates c with defaults pointing at a local server.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://localhost:3000/api"
	c.SessionDBPath = "photos-client.db"
	c.RequestTimeout = 30 * time.Second
}

// Validate checks that the server URL is absolute.
func (c *Config) Validate() error {
	u, err := url.Parse(c.ServerURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("server url must be absolute, e.g. http://localhost:3000/api")
	}
	if c.SessionDBPath == "" {
		return errors.New("session db path is required")
	}
	return nil
}

// LoadConfig applies defaults, then the JSON file, then flags. Later sources
// take precedence over earlier ones.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
