package config

import (
	"fmt"
	"os"
)

// Config holds everything the CLI needs to talk to the outside world. The
// ICS core itself takes no configuration; the product identifier and UID
// domain are fixed constants.
type Config struct {
	GraphTenantID     string
	GraphClientID     string
	GraphClientSecret string
	GraphAccessToken  string // alternative to the client-credentials triple
	SenderEmail       string

	CalDAVURL          string
	CalDAVUsername     string
	CalDAVPassword     string
	CalDAVCalendarPath string
}

// Load reads configuration from the environment. Either GRAPH_ACCESS_TOKEN
// or the full tenant/client/secret triple must be present, plus
// SENDER_EMAIL. CalDAV settings are optional.
func Load() (*Config, error) {
	cfg := &Config{
		GraphTenantID:      os.Getenv("GRAPH_TENANT_ID"),
		GraphClientID:      os.Getenv("GRAPH_CLIENT_ID"),
		GraphClientSecret:  os.Getenv("GRAPH_CLIENT_SECRET"),
		GraphAccessToken:   os.Getenv("GRAPH_ACCESS_TOKEN"),
		SenderEmail:        os.Getenv("SENDER_EMAIL"),
		CalDAVURL:          os.Getenv("CALDAV_URL"),
		CalDAVUsername:     os.Getenv("CALDAV_USERNAME"),
		CalDAVPassword:     os.Getenv("CALDAV_PASSWORD"),
		CalDAVCalendarPath: os.Getenv("CALDAV_CALENDAR_PATH"),
	}

	if cfg.SenderEmail == "" {
		return nil, fmt.Errorf("SENDER_EMAIL is required")
	}

	if cfg.GraphAccessToken == "" {
		if cfg.GraphTenantID == "" || cfg.GraphClientID == "" || cfg.GraphClientSecret == "" {
			return nil, fmt.Errorf("either GRAPH_ACCESS_TOKEN or GRAPH_TENANT_ID, GRAPH_CLIENT_ID and GRAPH_CLIENT_SECRET are required")
		}
	}

	return cfg, nil
}

// HasCalDAV returns true if a CalDAV mirror is configured.
func (c *Config) HasCalDAV() bool {
	return c.CalDAVURL != "" && c.CalDAVUsername != "" && c.CalDAVPassword != ""
}
