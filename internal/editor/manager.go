package editor

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/worldbuilder/internal/clipboard"
	"github.com/desertthunder/worldbuilder/internal/models"
	"github.com/desertthunder/worldbuilder/internal/shared"
	"github.com/desertthunder/worldbuilder/internal/tasks"
)

// MinBudget is the floor of every window budget.
const MinBudget = 1024

type state int

const (
	idle state = iota
	draining
)

func (s state) String() string {
	if s == draining {
		return "draining"
	}
	return "idle"
}

// Manager is the cooperative task scheduler. It is not safe for concurrent use: Push, Trigger and
// Tick must all be called from the host loop.
type Manager struct {
	config   shared.EditorConfig
	registry *tasks.Registry
	logger   *log.Logger
	metrics  Metrics
	rand     *rand.Rand
	budget   func() int

	state    state
	active   []*tasks.Instance
	index    map[*tasks.Instance]int
	sleeping []func(ctx context.Context)

	ops    int // budget of the current window
	window int // operations consumed in the current window
}

// Option configures a [Manager].
type Option func(*Manager)

func WithMetrics(m Metrics) Option {
	return func(mgr *Manager) { mgr.metrics = m }
}

// WithRand sets the source used to pick the next instance.
func WithRand(r *rand.Rand) Option {
	return func(mgr *Manager) { mgr.rand = r }
}

// NewManager creates an idle scheduler. A nil registry uses [tasks.NewDefaultRegistry].
func NewManager(config shared.EditorConfig, registry *tasks.Registry, logger *log.Logger, opts ...Option) *Manager {
	if registry == nil {
		registry = tasks.NewDefaultRegistry(tasks.Options{GenerateNewChunks: config.GenerateNewChunks})
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	m := &Manager{
		config:   config,
		registry: registry,
		logger:   shared.WithLogger(logger, "component", "editor"),
		metrics:  NoopMetrics(),
		rand:     rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		index:    make(map[*tasks.Instance]int),
	}
	m.budget = m.CalculateBudget
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Running reports whether a drive loop is active.
func (m *Manager) Running() bool { return m.state == draining }

// Active returns the number of instances in the active set.
func (m *Manager) Active() int { return len(m.active) }

// Pending returns the number of wake callbacks waiting for the next [Manager.Tick].
func (m *Manager) Pending() int { return len(m.sleeping) }

// CalculateBudget returns the per-window operation budget, never below [MinBudget].
func (m *Manager) CalculateBudget() int {
	return max(MinBudget, m.config.MaxOpsPerIteration/max(1, len(m.active)))
}

// BuildInstance constructs the edit desc requests through the registry.
func (m *Manager) BuildInstance(desc tasks.Descriptor) (*tasks.Instance, error) {
	t, err := m.registry.Build(desc)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s task: %w", desc.Kind, err)
	}
	inst := tasks.NewInstance(desc, t)
	m.logger.Debug("built task", "task", inst.Name(), "id", inst.ID, "estimated", t.Base().EstimatedOperations())
	return inst, nil
}

// BuildClipboard returns a clipboard anchored at origin on the configured backend.
func (m *Manager) BuildClipboard(origin models.BlockPos) (clipboard.Clipboard, error) {
	if !m.config.BufferClipboardOperations {
		return clipboard.NewInMemory(origin), nil
	}
	cb, err := clipboard.NewBuffered(origin, m.config.ClipboardDir, m.logger)
	if err != nil {
		return nil, err
	}
	m.logger.Debug("created clipboard store", "path", cb.Path())
	return cb, nil
}

// Push adds inst to the active set and starts the drive loop if it is idle.
//
// The first window runs before Push returns. Pushing an instance that is already active is a no-op.
func (m *Manager) Push(ctx context.Context, inst *tasks.Instance) {
	if _, ok := m.index[inst]; ok {
		m.logger.Warn("task already scheduled", "task", inst.Name(), "id", inst.ID)
		return
	}
	m.index[inst] = len(m.active)
	m.active = append(m.active, inst)
	m.metrics.IncTasksPushed(ctx, inst.Name())
	m.metrics.AddActiveTasks(ctx, 1)
	m.logger.Debug("pushed task", "task", inst.Name(), "id", inst.ID, "active", len(m.active))

	if m.state == idle {
		m.start(ctx)
	}
}

// Trigger pushes inst on behalf of a user. When display-progress-bar is enabled, presenter is
// registered on the instance first.
func (m *Manager) Trigger(ctx context.Context, inst *tasks.Instance, presenter tasks.Listener) {
	if m.config.DisplayProgressBar && presenter != nil {
		inst.RegisterListener(presenter)
	}
	m.Push(ctx, inst)
}

// Tick is the per-iteration hook. It wakes every drive loop continuation parked before the call,
// in the order they were parked.
func (m *Manager) Tick(ctx context.Context) {
	if len(m.sleeping) == 0 {
		return
	}
	queue := m.sleeping
	m.sleeping = nil
	for _, wake := range queue {
		wake(ctx)
	}
}

func (m *Manager) start(ctx context.Context) {
	if m.state == draining {
		panic(fmt.Errorf("%w: scheduler is already %s", shared.ErrDuplicateScheduler, m.state))
	}
	m.state = draining
	m.newWindow(ctx)
	m.drive(ctx)
}

func (m *Manager) newWindow(ctx context.Context) {
	m.ops = max(1, m.budget())
	m.window = 0
	m.metrics.RecordBudget(ctx, m.ops)
}

// drive runs turns until the window is spent or the active set is empty.
func (m *Manager) drive(ctx context.Context) {
	for len(m.active) > 0 {
		m.turn(ctx)
		if m.window < m.ops {
			continue
		}

		m.metrics.IncSuspensions(ctx)
		m.logger.Debug("window spent, suspending", "budget", m.ops, "active", len(m.active))
		m.sleeping = append(m.sleeping, func(ctx context.Context) {
			m.newWindow(ctx)
			m.drive(ctx)
		})
		return
	}
	m.state = idle
	m.logger.Debug("scheduler idle")
}

// turn polls one randomly picked instance until it finishes or the window budget is used up.
func (m *Manager) turn(ctx context.Context) {
	inst := m.active[m.rand.IntN(len(m.active))]

	var (
		limit = m.ops
		total int
		done  bool
		fail  error
	)
	for {
		n, ok, err := inst.Next(ctx)
		total += n
		if err != nil {
			done, fail = true, err
			break
		}
		if !ok {
			done = true
			break
		}
		limit--
		if limit <= 0 {
			break
		}
	}
	m.window += m.ops - limit

	if done {
		m.remove(ctx, inst)
	}
	if total > 0 {
		m.metrics.AddOperations(ctx, inst.Name(), total)
		inst.OnCompleteOperations(total)
	}
	if done {
		m.finish(ctx, inst, fail)
	}
}

func (m *Manager) finish(ctx context.Context, inst *tasks.Instance, fail error) {
	if fail != nil {
		m.metrics.IncTaskFailures(ctx, inst.Name())
		m.logger.Error("task failed", "task", inst.Name(), "id", inst.ID, "err", fail)
		inst.OnFailure(fail)
	}
	if err := inst.OnCompletion(ctx); err != nil {
		m.logger.Error("task completion failed", "task", inst.Name(), "id", inst.ID, "err", err)
	}
	m.metrics.IncTasksCompleted(ctx, inst.Name())

	base := inst.Task().Base()
	m.logger.Info("task completed", "task", inst.Name(), "id", inst.ID,
		"operations", base.CompletedOperations(), "estimated", base.EstimatedOperations())
}

// remove swaps inst out of the active set.
func (m *Manager) remove(ctx context.Context, inst *tasks.Instance) {
	i, ok := m.index[inst]
	if !ok {
		return
	}
	last := len(m.active) - 1
	m.active[i] = m.active[last]
	m.index[m.active[i]] = i
	m.active[last] = nil
	m.active = m.active[:last]
	delete(m.index, inst)
	m.metrics.AddActiveTasks(ctx, -1)
}
