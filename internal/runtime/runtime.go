package runtime

import (
	"context"
	"errors"
	"time"

	"github.com/LeoDT/log-majin/internal/commit"
	cfgpkg "github.com/LeoDT/log-majin/internal/config"
	"github.com/LeoDT/log-majin/internal/history"
	"github.com/LeoDT/log-majin/internal/logstore"
	"github.com/LeoDT/log-majin/internal/pager"
	"github.com/LeoDT/log-majin/internal/revision"
	pebblestore "github.com/LeoDT/log-majin/internal/storage/pebble"
	"github.com/LeoDT/log-majin/internal/template"
	"github.com/LeoDT/log-majin/pkg/id"
	logpkg "github.com/LeoDT/log-majin/pkg/log"
)

// Options for building the Runtime.
type Options struct {
	DataDir       string
	Fsync         pebblestore.FsyncMode
	FsyncInterval time.Duration
	Config        cfgpkg.Config
	Logger        logpkg.Logger
}

// Runtime wires storage, config, and the stores for a single-node instance.
// It is the explicit store object passed to every operation: open on
// startup, close on shutdown, no process-wide state.
type Runtime struct {
	db        *pebblestore.DB
	config    cfgpkg.Config
	gen       *id.Generator
	logger    logpkg.Logger
	templates *template.Store
	logs      *logstore.Store
	revisions *revision.Store
	hist      *history.Store
	committer *commit.Service
}

// Open initializes the underlying storage and returns a Runtime.
func Open(opts Options) (*Runtime, error) {
	db, err := pebblestore.Open(pebblestore.Options{DataDir: opts.DataDir, Fsync: opts.Fsync, FsyncInterval: opts.FsyncInterval})
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = logpkg.NewLogger()
	}
	gen := id.NewGenerator()
	logs := logstore.NewStore(db)
	revisions := revision.NewStore(db, logs, gen, logger.WithComponent("revision"))
	hist := history.NewStore(db, opts.Config.HistoryCapacity)
	rt := &Runtime{
		db:        db,
		config:    opts.Config,
		gen:       gen,
		logger:    logger,
		templates: template.NewStore(db),
		logs:      logs,
		revisions: revisions,
		hist:      hist,
		committer: commit.NewWithLogger(db, logs, revisions, hist, gen, logger.WithComponent("commit")),
	}
	return rt, nil
}

// Close closes underlying resources.
func (r *Runtime) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// CheckHealth performs a simple health check.
func (r *Runtime) CheckHealth(ctx context.Context) error {
	if r.db == nil {
		return errors.New("db not open")
	}
	it, err := r.db.NewIter(nil)
	if err != nil {
		return err
	}
	return it.Close()
}

// Templates returns the template collection store.
func (r *Runtime) Templates() *template.Store { return r.templates }

// Logs returns the log store.
func (r *Runtime) Logs() *logstore.Store { return r.logs }

// Revisions returns the revision store.
func (r *Runtime) Revisions() *revision.Store { return r.revisions }

// History returns the input history store.
func (r *Runtime) History() *history.Store { return r.hist }

// Committer returns the commit orchestrator.
func (r *Runtime) Committer() *commit.Service { return r.committer }

// NewPager builds a pager over the log collection.
func (r *Runtime) NewPager(opts ...pager.Option) (*pager.Pager, error) {
	return pager.New(r.db, opts...)
}

// IDs returns the process ID generator.
func (r *Runtime) IDs() *id.Generator { return r.gen }

// Config returns the runtime configuration.
func (r *Runtime) Config() cfgpkg.Config { return r.config }

// DB exposes the underlying DB for advanced operations (internal use only).
func (r *Runtime) DB() *pebblestore.DB { return r.db }
