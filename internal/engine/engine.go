// Package engine reconciles annotations between the card service and the
// warehouse. Every cross-store operation runs as explicit phases (card
// service first, warehouse second); each phase outcome is reported to the
// caller and written to the journal, and nothing is retried or rolled back.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/annokeeper/internal/cardservice"
	"github.com/dmitrijs2005/annokeeper/internal/journal"
	"github.com/dmitrijs2005/annokeeper/internal/logging"
	"github.com/dmitrijs2005/annokeeper/internal/snapshots"
	"github.com/dmitrijs2005/annokeeper/internal/warehouse"
	"golang.org/x/sync/errgroup"
)

// Phases of a cross-store operation.
const (
	PhaseFetch     = "fetch"
	PhaseSnapshot  = "snapshot"
	PhaseSave      = "save"
	PhaseResolve   = "resolve"
	PhaseWarehouse = "warehouse"
	PhaseSelect    = "select"
	PhaseValidate  = "validate"
)

// PhaseError names the phase and card a failure happened in.
type PhaseError struct {
	CardID *int64
	Phase  string
	Err    error
}

func (e *PhaseError) Error() string {
	if e.CardID != nil {
		return fmt.Sprintf("card %d: %s: %v", *e.CardID, e.Phase, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}

type Engine struct {
	cards       cardservice.Client
	store       warehouse.Repository
	log         logging.Logger
	journal     journal.Repository
	archiver    snapshots.Archiver
	now         func() time.Time
	concurrency int
}

type Option func(*Engine)

func WithLogger(l logging.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithJournal records every phase outcome in j.
func WithJournal(j journal.Repository) Option {
	return func(e *Engine) { e.journal = j }
}

// WithArchiver snapshots every fetched definition before it is overwritten.
func WithArchiver(a snapshots.Archiver) Option {
	return func(e *Engine) { e.archiver = a }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithConcurrency bounds how many cards are processed at once. Values below
// one keep processing sequential.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		if n < 1 {
			n = 1
		}
		e.concurrency = n
	}
}

func New(cards cardservice.Client, store warehouse.Repository, opts ...Option) *Engine {
	e := &Engine{
		cards:       cards,
		store:       store,
		log:         logging.Nop(),
		now:         time.Now,
		concurrency: 1,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// record writes a journal entry. Journal failures are logged, never returned.
func (e *Engine) record(ctx context.Context, entry journal.Entry) {
	if e.journal == nil {
		return
	}
	if err := e.journal.Record(ctx, entry); err != nil {
		e.log.Warn(ctx, "journal write failed", "operation_id", entry.OperationID, "phase", entry.Phase, "error", err)
	}
}

// forEach calls fn for 0..n-1 with at most e.concurrency calls in flight.
func (e *Engine) forEach(n int, fn func(i int)) {
	var g errgroup.Group
	g.SetLimit(e.concurrency)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			fn(i)
			return nil
		})
	}
	_ = g.Wait()
}

// uniqueIDs drops repeated card ids, keeping the first occurrence.
func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
