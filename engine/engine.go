// Package engine implements the execution engine: the state machine that
// takes a frozen graph.Graph through validation, scheduling, buffer
// planning, and node-by-node kernel dispatch (§4.4, §5).
package engine

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/denseforge/denseforge/arena"
	"github.com/denseforge/denseforge/capability"
	"github.com/denseforge/denseforge/config"
	"github.com/denseforge/denseforge/graph"
)

// Engine owns one graph's compiled execution state: its arena, its
// per-node buffers, its trace, and the policy/mode pair that governs
// dispatch. It is single-threaded and non-reentrant — callers serialize
// their own access (§5).
type Engine struct {
	id     uuid.UUID
	log    *slog.Logger
	policy KernelPolicy
	mode   ExecutionMode
	caps   capability.Capabilities
	arch   capability.Architecture

	arena   *arena.Arena
	tracer  Tracer
	buffers []Buffer

	graph *graph.Graph
	state State
}

// Option configures an Engine at construction.
type Option func(*Engine)

// WithArenaBlockSize overrides the arena's block growth size. Defaults to
// config.ArenaBlockSize().
func WithArenaBlockSize(n int) Option {
	return func(e *Engine) {
		e.arena = arena.New(arena.Options{BlockSize: n})
	}
}

// WithLogger overrides the engine's structured logger. Defaults to
// slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// New constructs an Engine in the Fresh state with the given kernel policy
// and execution mode. Every engine instance carries a UUID used to
// correlate its log lines and trace events (mirroring the teacher's
// per-request/per-session instance-ID convention).
func New(policy KernelPolicy, mode ExecutionMode, opts ...Option) *Engine {
	e := &Engine{
		id:     uuid.New(),
		log:    slog.Default(),
		policy: policy,
		mode:   mode,
		caps:   capability.Probe(),
		arena:  arena.New(arena.Options{BlockSize: config.ArenaBlockSize()}),
		state:  Fresh,
	}
	e.arch = e.caps.Architecture
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.With("engine", e.id.String())
	return e
}

// ID returns the engine's correlation UUID.
func (e *Engine) ID() uuid.UUID { return e.id }

// State returns the engine's current lifecycle position.
func (e *Engine) State() State { return e.state }

// Tracer returns the engine's structured trace.
func (e *Engine) Tracer() *Tracer { return &e.tracer }

// ReadFloats decodes node's buffer as float32. This is the only way a
// caller outside the engine package reads a buffer's contents — it never
// returns the underlying arena bytes.
func (e *Engine) ReadFloats(node int) ([]float32, error) {
	b, err := e.GetBuffer(node)
	if err != nil {
		return nil, err
	}
	return b.Floats(e.arena), nil
}

// WriteFloats encodes values into node's buffer as float32. Callers should
// only target Input/Parameter nodes, and only between Compile and Execute
// (§5) — the engine does not itself enforce writability here, matching the
// spec's "caller-managed input/parameter mutation discipline".
func (e *Engine) WriteFloats(node int, values []float32) error {
	b, err := e.GetBuffer(node)
	if err != nil {
		return err
	}
	b.SetFloats(e.arena, values)
	return nil
}

// Compile runs phases 1-4 (Validate, mode gate, Schedule, Plan) over g and
// advances the engine from Fresh to Compiled. On any failure the engine's
// state is left at Fresh so a caller may fix the graph and retry.
func (e *Engine) Compile(g *graph.Graph) error {
	if e.state != Fresh {
		return &UsageError{Detail: fmt.Sprintf("Compile called in state %s, want Fresh", e.state)}
	}
	if !g.Frozen() {
		return &UsageError{Detail: "Compile called on a graph that has not been Frozen"}
	}

	e.tracer.Clear()

	if err := g.Validate(); err != nil {
		e.log.Error("graph validation failed", "error", err)
		return err
	}
	e.state = Validated

	if e.mode == Deployment {
		for _, n := range g.Nodes() {
			op, ok := n.AsOp()
			if !ok {
				continue
			}
			if !graph.LoweredWhitelist[op.Kind] {
				e.state = Fresh
				return &PolicyError{Node: n.Index, Detail: fmt.Sprintf("%s has no lowered form permitted under deployment mode", op.Kind)}
			}
		}
	}

	e.graph = g
	e.tracer.Record(GraphCompilation, -1, fmt.Sprintf("nodes=%d policy=%s mode=%s", g.Len(), e.policy, e.mode))

	if err := e.plan(g); err != nil {
		e.state = Fresh
		e.log.Error("buffer planning failed", "error", err)
		return err
	}

	e.state = Compiled
	e.log.Info("engine compiled", "nodes", g.Len())
	return nil
}

// Execute runs phase 5 (Run): every Op node, in schedule order, dispatches
// to a kernel and writes its result into its planned buffer. Input and
// Parameter node buffers must already hold caller-written data (via
// WriteFloats); Constant buffers were populated at Compile.
func (e *Engine) Execute() error {
	if e.state != Compiled {
		return &UsageError{Detail: fmt.Sprintf("Execute called in state %s, want Compiled", e.state)}
	}

	for _, n := range schedule(e.graph) {
		if _, ok := n.AsOp(); !ok {
			continue
		}
		if err := e.dispatchOp(n); err != nil {
			e.log.Error("node execution failed", "node", n.Index, "error", err)
			return err
		}
	}
	return nil
}

// Close resets the engine's arena. Reset keeps the arena's blocks, so their
// memory is reclaimed by the garbage collector once the Engine is no longer
// referenced. The engine must not be used again afterward.
func (e *Engine) Close() {
	e.arena.Reset()
}
