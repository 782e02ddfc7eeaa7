package config

import (
	"fmt"
	"strconv"
	"time"
)

// EnvPrefix prefixes every environment variable read by the loader.
const EnvPrefix = "ANNOKEEPER_"

// applyEnv overlays c with ANNOKEEPER_* variables that are set.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"INSTANCE":            &c.Instance,
		"BASE_URL":            &c.BaseURL,
		"DEVELOPER_TOKEN":     &c.DeveloperToken,
		"WAREHOUSE_DSN":       &c.Warehouse.DSN,
		"WAREHOUSE_HOST":      &c.Warehouse.Host,
		"WAREHOUSE_USER":      &c.Warehouse.User,
		"WAREHOUSE_PASSWORD":  &c.Warehouse.Password,
		"WAREHOUSE_DATABASE":  &c.Warehouse.Database,
		"WAREHOUSE_SSLMODE":   &c.Warehouse.SSLMode,
		"WAREHOUSE_SCHEMA":    &c.Warehouse.Schema,
		"WAREHOUSE_TABLE":     &c.Warehouse.Table,
		"JOURNAL_PATH":        &c.JournalPath,
		"SNAPSHOT_BUCKET":     &c.Snapshots.Bucket,
		"SNAPSHOT_REGION":     &c.Snapshots.Region,
		"SNAPSHOT_ENDPOINT":   &c.Snapshots.Endpoint,
		"SNAPSHOT_ACCESS_KEY": &c.Snapshots.AccessKey,
		"SNAPSHOT_SECRET_KEY": &c.Snapshots.SecretKey,
		"LOG_FORMAT":          &c.LogFormat,
		"LOG_LEVEL":           &c.LogLevel,
	}
	for name, dst := range strs {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}

	ints := map[string]*int{
		"WAREHOUSE_PORT":           &c.Warehouse.Port,
		"WAREHOUSE_MAX_OPEN_CONNS": &c.Warehouse.MaxOpenConns,
		"CONCURRENCY":              &c.Concurrency,
	}
	for name, dst := range ints {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
		*dst = n
	}

	durations := map[string]*time.Duration{
		"CARD_TIMEOUT":            &c.CardTimeout,
		"WAREHOUSE_QUERY_TIMEOUT": &c.Warehouse.QueryTimeout,
	}
	for name, dst := range durations {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
		*dst = d
	}

	if v, ok := lookup(EnvPrefix + "SNAPSHOT_PATH_STYLE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sSNAPSHOT_PATH_STYLE: %w", EnvPrefix, err)
		}
		c.Snapshots.PathStyle = b
	}
	return nil
}
