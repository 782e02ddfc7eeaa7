package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/annokeeper/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is a DTO used exclusively for decoding config files. Durations
// use timex.Duration so they may be written as "60s" or integer nanoseconds.
// Zero values leave the current setting untouched.
type FileConfig struct {
	Instance       string         `json:"instance" yaml:"instance"`
	BaseURL        string         `json:"base_url" yaml:"base_url"`
	DeveloperToken string         `json:"developer_token" yaml:"developer_token"`
	CardTimeout    timex.Duration `json:"card_timeout" yaml:"card_timeout"`

	Warehouse struct {
		DSN          string         `json:"dsn" yaml:"dsn"`
		Host         string         `json:"host" yaml:"host"`
		Port         int            `json:"port" yaml:"port"`
		User         string         `json:"user" yaml:"user"`
		Password     string         `json:"password" yaml:"password"`
		Database     string         `json:"database" yaml:"database"`
		SSLMode      string         `json:"sslmode" yaml:"sslmode"`
		Schema       string         `json:"schema" yaml:"schema"`
		Table        string         `json:"table" yaml:"table"`
		QueryTimeout timex.Duration `json:"query_timeout" yaml:"query_timeout"`
		MaxOpenConns int            `json:"max_open_conns" yaml:"max_open_conns"`
	} `json:"warehouse" yaml:"warehouse"`

	JournalPath string `json:"journal_path" yaml:"journal_path"`

	Snapshots struct {
		Bucket    string `json:"bucket" yaml:"bucket"`
		Region    string `json:"region" yaml:"region"`
		Endpoint  string `json:"endpoint" yaml:"endpoint"`
		AccessKey string `json:"access_key" yaml:"access_key"`
		SecretKey string `json:"secret_key" yaml:"secret_key"`
		PathStyle bool   `json:"path_style" yaml:"path_style"`
	} `json:"snapshots" yaml:"snapshots"`

	LogFormat   string `json:"log_format" yaml:"log_format"`
	LogLevel    string `json:"log_level" yaml:"log_level"`
	Concurrency int    `json:"concurrency" yaml:"concurrency"`
}

// applyFile overlays c with the file at path. The format follows the
// extension: .yaml and .yml are YAML, anything else is JSON.
func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var fc FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&c.Instance, fc.Instance)
	setString(&c.BaseURL, fc.BaseURL)
	setString(&c.DeveloperToken, fc.DeveloperToken)
	if fc.CardTimeout.Duration != 0 {
		c.CardTimeout = fc.CardTimeout.Duration
	}

	w := &c.Warehouse
	setString(&w.DSN, fc.Warehouse.DSN)
	setString(&w.Host, fc.Warehouse.Host)
	setInt(&w.Port, fc.Warehouse.Port)
	setString(&w.User, fc.Warehouse.User)
	setString(&w.Password, fc.Warehouse.Password)
	setString(&w.Database, fc.Warehouse.Database)
	setString(&w.SSLMode, fc.Warehouse.SSLMode)
	setString(&w.Schema, fc.Warehouse.Schema)
	setString(&w.Table, fc.Warehouse.Table)
	if fc.Warehouse.QueryTimeout.Duration != 0 {
		w.QueryTimeout = fc.Warehouse.QueryTimeout.Duration
	}
	setInt(&w.MaxOpenConns, fc.Warehouse.MaxOpenConns)

	setString(&c.JournalPath, fc.JournalPath)

	s := &c.Snapshots
	setString(&s.Bucket, fc.Snapshots.Bucket)
	setString(&s.Region, fc.Snapshots.Region)
	setString(&s.Endpoint, fc.Snapshots.Endpoint)
	setString(&s.AccessKey, fc.Snapshots.AccessKey)
	setString(&s.SecretKey, fc.Snapshots.SecretKey)
	s.PathStyle = s.PathStyle || fc.Snapshots.PathStyle

	setString(&c.LogFormat, fc.LogFormat)
	setString(&c.LogLevel, fc.LogLevel)
	setInt(&c.Concurrency, fc.Concurrency)
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}
