// Package cli is the annokeeper command line front end. It stands in for the
// operator UI: every command builds its inputs, calls the engine or the
// directory, and renders the result.
package cli

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/dmitrijs2005/annokeeper/internal/cardservice"
	"github.com/dmitrijs2005/annokeeper/internal/config"
	"github.com/dmitrijs2005/annokeeper/internal/directory"
	"github.com/dmitrijs2005/annokeeper/internal/engine"
	"github.com/dmitrijs2005/annokeeper/internal/filex"
	"github.com/dmitrijs2005/annokeeper/internal/journal"
	"github.com/dmitrijs2005/annokeeper/internal/logging"
	"github.com/dmitrijs2005/annokeeper/internal/snapshots"
	"github.com/dmitrijs2005/annokeeper/internal/warehouse"
)

// App bundles what the commands operate on.
type App struct {
	engine  *engine.Engine
	dir     *directory.Directory
	journal journal.Repository
	closers []func() error
}

// NewApp wires the collaborators described by cfg. Logs go to stderr so they
// do not mix with command output.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	return newApp(ctx, cfg, os.Stderr)
}

func newApp(ctx context.Context, cfg *config.Config, logOut io.Writer) (app *App, err error) {
	log, err := logging.New(cfg.LogFormat, cfg.LogLevel, logOut)
	if err != nil {
		return nil, err
	}

	app = &App{}
	defer func() {
		if err != nil {
			_ = app.Close()
		}
	}()

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = cardservice.BaseURLForInstance(cfg.Instance)
	}
	cards := cardservice.NewHTTPClient(baseURL, cfg.DeveloperToken, cfg.CardTimeout)

	wh, err := warehouse.Open(ctx, warehouse.Settings{
		DSN:          cfg.Warehouse.ConnString(),
		Schema:       cfg.Warehouse.Schema,
		Table:        cfg.Warehouse.Table,
		QueryTimeout: cfg.Warehouse.QueryTimeout,
		MaxOpenConns: cfg.Warehouse.MaxOpenConns,
	})
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, wh.Close)

	opts := []engine.Option{
		engine.WithLogger(log),
		engine.WithConcurrency(cfg.Concurrency),
	}

	if cfg.JournalPath != "" {
		path, err := filex.ExpandHome(cfg.JournalPath)
		if err != nil {
			return nil, err
		}
		store, err := journal.Open(ctx, path)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, store.Close)
		app.journal = store.Entries()
		opts = append(opts, engine.WithJournal(app.journal))
	}

	if cfg.Snapshots.Bucket != "" {
		arch, err := snapshots.NewS3Archiver(ctx, snapshots.Settings{
			Bucket:    cfg.Snapshots.Bucket,
			Region:    cfg.Snapshots.Region,
			Endpoint:  cfg.Snapshots.Endpoint,
			AccessKey: cfg.Snapshots.AccessKey,
			SecretKey: cfg.Snapshots.SecretKey,
			PathStyle: cfg.Snapshots.PathStyle,
		})
		if err != nil {
			return nil, err
		}
		opts = append(opts, engine.WithArchiver(arch))
	}

	store := wh.Annotations()
	app.engine = engine.New(cards, store, opts...)
	app.dir = directory.New(store)
	return app, nil
}

// Close releases the warehouse pool and the journal.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
