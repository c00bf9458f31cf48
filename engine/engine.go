// Package engine implements the execution loop: model calls, tool dispatch,
// review suspension and resume, and subagent delegation. It composes the
// storage router per thread (ephemeral fallback plus the durable prefix)
// and owns nothing the caller did not hand it.
package engine

import (
	"fmt"

	"github.com/hupe1980/deeprun/backend"
	"github.com/hupe1980/deeprun/checkpoint"
	"github.com/hupe1980/deeprun/config"
	"github.com/hupe1980/deeprun/core"
	"github.com/hupe1980/deeprun/files"
	"github.com/hupe1980/deeprun/interrupt"
	"github.com/hupe1980/deeprun/logging"
	"github.com/hupe1980/deeprun/model"
	"github.com/hupe1980/deeprun/subagent"
	"github.com/hupe1980/deeprun/tool"
)

// Options configure engine construction. Absent fields get working defaults
// so a bare Options{Model: m} is a valid embedding.
type Options struct {
	// Model drives generation. Required.
	Model model.Model
	// Registry of callable tools. Nil builds one with the filesystem tools.
	Registry *tool.Registry
	// Policy declares which tools suspend for review. Nil protects nothing.
	Policy *interrupt.Policy
	// Checkpoints persists suspended continuation state. Nil uses in-memory.
	Checkpoints core.CheckpointStore
	// Threads owns per-thread ephemeral content. Nil builds one from Config.
	Threads *backend.ThreadRegistry
	// Durable serves the configured durable prefix. Nil disables the prefix.
	Durable core.Backend
	// SubAgents declares named delegated executors.
	SubAgents []subagent.Spec
	// SystemPrompt prefixes every model request of root runs.
	SystemPrompt string
	// Config tunes limits and paths. Nil uses config.Default().
	Config *config.Config
	// Logger for engine events. Nil builds a default JSON logger.
	Logger *logging.RuntimeLogger
}

// Engine drives runs to completion or suspension for the threads it serves.
// Safe for concurrent use across threads once constructed.
type Engine struct {
	mdl        model.Model
	registry   *tool.Registry
	policy     *interrupt.Policy
	controller *interrupt.Controller
	threads    *backend.ThreadRegistry
	durable    core.Backend
	pool       *subagent.Pool
	system     string
	cfg        *config.Config
	logger     *logging.RuntimeLogger
}

// New builds an engine from options.
func New(optFns ...func(o *Options)) (*Engine, error) {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Model == nil {
		return nil, fmt.Errorf("engine requires a model")
	}
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewLogger(nil)
	}
	if opts.Registry == nil {
		opts.Registry = tool.NewRegistry()
		for _, t := range tool.FilesystemTools() {
			if err := opts.Registry.Register(t, nil); err != nil {
				return nil, err
			}
		}
	}
	if opts.Checkpoints == nil {
		opts.Checkpoints = checkpoint.NewInMemoryStore()
	}
	if opts.Threads == nil {
		opts.Threads = backend.NewThreadRegistry(opts.Config.ThreadRetention.Std())
	}

	e := &Engine{
		mdl:        opts.Model,
		registry:   opts.Registry,
		policy:     opts.Policy,
		controller: interrupt.NewController(opts.Checkpoints, opts.Logger),
		threads:    opts.Threads,
		durable:    opts.Durable,
		system:     opts.SystemPrompt,
		cfg:        opts.Config,
		logger:     opts.Logger.WithComponent("engine"),
	}

	agents, err := e.compileSubAgents(opts.SubAgents)
	if err != nil {
		return nil, err
	}
	e.pool, err = subagent.NewPool(agents, func(o *subagent.Options) {
		o.MaxDepth = opts.Config.MaxDelegationDepth
		o.Timeout = opts.Config.SubagentTimeout.Std()
		o.Logger = opts.Logger
	})
	if err != nil {
		return nil, err
	}
	if len(agents) > 0 {
		if err := e.registry.Register(e.taskTool(), nil); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Threads exposes the thread registry for explicit lifecycle control.
func (e *Engine) Threads() *backend.ThreadRegistry { return e.threads }

// Checkpoints exposes the underlying suspension controller.
func (e *Engine) Checkpoints() *interrupt.Controller { return e.controller }

// fileSystem builds the per-thread capability layer: a composite router
// whose fallback is the thread's ephemeral space, with the durable backend
// bound under the configured prefix.
func (e *Engine) fileSystem(threadID string) core.FileSystem {
	router := backend.NewComposite(e.threads.Backend(threadID))
	if e.durable != nil {
		router.Register(e.cfg.DurablePrefix, e.durable)
	}
	return files.New(router, e.logger.WithComponent("files"))
}

// reviewFor resolves the effective review config for a tool: an explicit
// policy entry wins over the registry's per-tool default. Each delegation
// level passes its own policy overlay, so a subagent can tighten or relax
// review locally without touching the root policy.
func reviewFor(policy *interrupt.Policy, reg *tool.Registry, name string) (core.ReviewConfig, bool) {
	if rc, ok := policy.ConfigFor(name); ok {
		return rc, true
	}
	if registration, ok := reg.Get(name); ok && registration.Review != nil {
		return *registration.Review, true
	}
	return core.ReviewConfig{}, false
}
