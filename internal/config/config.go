// Package config loads annokeeper settings. Sources are applied in order,
// later ones taking precedence: built-in defaults, a JSON or YAML config
// file, then ANNOKEEPER_* environment variables.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/annokeeper/internal/common"
)

// Config holds runtime settings for the engine and its collaborators.
type Config struct {
	// Instance is the card service tenant, e.g. "acme" for acme.domo.com.
	Instance string
	// BaseURL overrides the URL derived from Instance.
	BaseURL        string
	DeveloperToken string
	CardTimeout    time.Duration

	Warehouse WarehouseConfig

	JournalPath string

	Snapshots SnapshotConfig

	LogFormat string
	LogLevel  string

	// Concurrency bounds per-card parallelism. 1 keeps operations sequential.
	Concurrency int
}

type WarehouseConfig struct {
	// DSN, when set, wins over the individual connection fields.
	DSN          string
	Host         string
	Port         int
	User         string
	Password     string
	Database     string
	SSLMode      string
	Schema       string
	Table        string
	QueryTimeout time.Duration
	MaxOpenConns int
}

// SnapshotConfig enables definition snapshots when Bucket is set.
type SnapshotConfig struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	PathStyle bool
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.CardTimeout = 60 * time.Second
	c.Warehouse = WarehouseConfig{
		Host:         "localhost",
		Port:         5432,
		SSLMode:      "prefer",
		Schema:       "public",
		Table:        "annotations",
		QueryTimeout: 30 * time.Second,
		MaxOpenConns: 4,
	}
	c.JournalPath = "~/.annokeeper/journal.db"
	c.Snapshots.Region = "us-east-1"
	c.LogFormat = "text"
	c.LogLevel = "info"
	c.Concurrency = 1
}

// Load builds a Config from defaults, the optional file at path and the
// process environment.
func Load(path string) (*Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ConnString returns the warehouse connection string.
func (w WarehouseConfig) ConnString() string {
	if w.DSN != "" {
		return w.DSN
	}
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(w.Host, strconv.Itoa(w.Port)),
		Path:   "/" + w.Database,
	}
	if w.User != "" {
		u.User = url.UserPassword(w.User, w.Password)
	}
	if w.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {w.SSLMode}}.Encode()
	}
	return u.String()
}

// Validate checks the settings every engine operation depends on.
func (c *Config) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{common.ErrValidation}, args...)...))
	}

	if c.Instance == "" && c.BaseURL == "" {
		invalid("instance or base URL is required")
	}
	if c.BaseURL != "" {
		if u, err := url.Parse(c.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			invalid("base URL %q is not absolute", c.BaseURL)
		}
	}
	if c.DeveloperToken == "" {
		invalid("developer token is required")
	}
	if c.CardTimeout <= 0 {
		invalid("card timeout must be positive")
	}
	if c.Warehouse.DSN == "" && (c.Warehouse.Host == "" || c.Warehouse.Database == "") {
		invalid("warehouse DSN or host and database are required")
	}
	if c.Warehouse.Table == "" {
		invalid("warehouse table is required")
	}
	if c.Warehouse.QueryTimeout < 0 {
		invalid("warehouse query timeout must not be negative")
	}
	if c.Concurrency < 1 {
		invalid("concurrency must be at least 1")
	}
	switch c.LogFormat {
	case "json", "text", "zap":
	default:
		invalid("unknown log format %q", c.LogFormat)
	}
	if c.Snapshots.Bucket != "" && c.Snapshots.Region == "" {
		invalid("snapshot region is required when a bucket is set")
	}
	return errors.Join(errs...)
}
