// Package deeprun provides a high-level façade over the execution engine
// and its storage, review and delegation subsystems. Most applications
// interact with this package by:
//  1. Creating a Runtime via New() (optionally overriding the defaults)
//  2. Starting runs with Run(), supplying decisions with Resume() whenever
//     a run suspends for review
//  3. Discarding threads once their conversation is over
//
// The façade delegates orchestration to engine.Engine while keeping setup
// and usage ergonomics concise. All defaults are safe for local development
// and testing; production deployments typically supply a badger-backed
// durable store and checkpoint store plus a structured logger.
package deeprun

import (
	"context"
	"fmt"

	"github.com/hupe1980/deeprun/backend"
	badgerbackend "github.com/hupe1980/deeprun/backend/badger"
	"github.com/hupe1980/deeprun/checkpoint"
	"github.com/hupe1980/deeprun/config"
	"github.com/hupe1980/deeprun/core"
	"github.com/hupe1980/deeprun/engine"
	"github.com/hupe1980/deeprun/interrupt"
	"github.com/hupe1980/deeprun/logging"
	"github.com/hupe1980/deeprun/model"
	"github.com/hupe1980/deeprun/subagent"
	"github.com/hupe1980/deeprun/tool"
)

// Options configures the Runtime instance.
type Options struct {
	// Model drives generation. Required.
	Model model.Model

	// Tools are registered in addition to the built-in filesystem tools.
	Tools []tool.Registration

	// Policy declares which tools suspend for human review.
	Policy *interrupt.Policy

	// SubAgents declares named delegated executors available via the task tool.
	SubAgents []subagent.Spec

	// SystemPrompt prefixes every root model request.
	SystemPrompt string

	// Durable serves the configured durable path prefix. Nil disables it
	// unless Config selects a badger checkpoint directory, in which case a
	// badger backend sharing that database is wired in.
	Durable core.Backend

	// Checkpoints overrides the checkpoint store selected by Config.
	Checkpoints core.CheckpointStore

	// Config tunes limits, paths and stores. Nil uses config.Default().
	Config *config.Config

	// Logger (defaults to a JSON slog logger if nil).
	Logger *logging.RuntimeLogger
}

// Runtime is the high-level façade aggregating the engine and its services.
type Runtime struct {
	engine  *engine.Engine
	threads *backend.ThreadRegistry
	store   core.CheckpointStore
	closers []func() error
}

// New creates a Runtime with optional overrides. Unset services are
// initialized per the configuration, in-memory by default.
func New(optFns ...func(o *Options)) (*Runtime, error) {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewSlogLogger(logLevel(opts.Config.LogLevel), opts.Config.LogFormat, false)
	}

	var closers []func() error

	store := opts.Checkpoints
	durable := opts.Durable
	if store == nil {
		switch opts.Config.Checkpoint.Backend {
		case "badger":
			dir := opts.Config.Checkpoint.Directory
			db, err := badgerbackend.New(dir, func(o *badgerbackend.Options) {
				o.InMemory = dir == ""
			})
			if err != nil {
				return nil, fmt.Errorf("open checkpoint database: %w", err)
			}
			closers = append(closers, db.Close)
			store = checkpoint.NewBadgerStore(db.DB())
			if durable == nil {
				durable = db
			}
		default:
			store = checkpoint.NewInMemoryStore()
		}
	}
	if durable == nil {
		durable = backend.NewMemoryStore()
	}

	registry := tool.NewRegistry()
	for _, t := range tool.FilesystemTools() {
		if err := registry.Register(t, nil); err != nil {
			return nil, err
		}
	}
	for _, reg := range opts.Tools {
		if err := registry.Register(reg.Tool, reg.Review); err != nil {
			return nil, err
		}
	}

	threads := backend.NewThreadRegistry(opts.Config.ThreadRetention.Std())

	eng, err := engine.New(func(o *engine.Options) {
		o.Model = opts.Model
		o.Registry = registry
		o.Policy = opts.Policy
		o.Checkpoints = store
		o.Threads = threads
		o.Durable = durable
		o.SubAgents = opts.SubAgents
		o.SystemPrompt = opts.SystemPrompt
		o.Config = opts.Config
		o.Logger = opts.Logger
	})
	if err != nil {
		return nil, err
	}

	return &Runtime{engine: eng, threads: threads, store: store, closers: closers}, nil
}

// Run starts a fresh run on the thread and blocks until it completes or
// suspends for review.
func (r *Runtime) Run(ctx context.Context, threadID, input string) (*engine.Outcome, error) {
	return r.engine.Run(ctx, threadID, input)
}

// Resume applies review decisions to a suspended thread and continues it.
func (r *Runtime) Resume(ctx context.Context, threadID string, decisions []core.Decision) (*engine.Outcome, error) {
	return r.engine.Resume(ctx, threadID, decisions)
}

// DiscardThread drops the thread's ephemeral content and any outstanding
// checkpoint. Durable content is untouched.
func (r *Runtime) DiscardThread(ctx context.Context, threadID string) error {
	r.threads.Discard(threadID)
	return r.store.Delete(ctx, threadID)
}

func logLevel(s string) logging.LogLevel {
	switch s {
	case "debug":
		return logging.LogLevelDebug
	case "warn":
		return logging.LogLevelWarn
	case "error":
		return logging.LogLevelError
	default:
		return logging.LogLevelInfo
	}
}

// Close releases owned resources (thread registry, owned databases).
func (r *Runtime) Close() error {
	r.threads.Close()
	var firstErr error
	for _, closeFn := range r.closers {
		if err := closeFn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
