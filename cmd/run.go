package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/worldbuilder/internal/clipboard"
	"github.com/desertthunder/worldbuilder/internal/editor"
	"github.com/desertthunder/worldbuilder/internal/formatter"
	"github.com/desertthunder/worldbuilder/internal/models"
	"github.com/desertthunder/worldbuilder/internal/repositories"
	"github.com/desertthunder/worldbuilder/internal/shared"
	"github.com/desertthunder/worldbuilder/internal/tasks"
	"github.com/desertthunder/worldbuilder/internal/ui"
	"github.com/desertthunder/worldbuilder/internal/world"
	"github.com/urfave/cli/v3"
	"golang.org/x/time/rate"
)

// presenterFunc returns the progress presenter for one instance.
type presenterFunc func(inst *tasks.Instance) tasks.Listener

// editPlan is the set of edits requested on the command line.
type editPlan struct {
	descriptors []tasks.Descriptor
	copySel     *models.Selection
	pasteAt     models.BlockPos
	exportPath  string
}

func (p *editPlan) empty() bool {
	return len(p.descriptors) == 0 && p.copySel == nil
}

func parsePlan(cmd *cli.Command, w *world.World) (*editPlan, error) {
	p := &editPlan{}
	for _, s := range cmd.StringSlice("set") {
		sel, block, err := parseSet(s)
		if err != nil {
			return nil, err
		}
		p.descriptors = append(p.descriptors, tasks.SetDescriptor(w, sel, block))
	}
	for _, s := range cmd.StringSlice("replace") {
		sel, match, block, err := parseReplace(s)
		if err != nil {
			return nil, err
		}
		p.descriptors = append(p.descriptors, tasks.ReplaceDescriptor(w, sel, match, block))
	}
	for _, s := range cmd.StringSlice("regen") {
		sel, err := parseSelection(s)
		if err != nil {
			return nil, err
		}
		p.descriptors = append(p.descriptors, tasks.RegenerateChunksDescriptor(w, sel))
	}
	if s := cmd.String("copy-paste"); s != "" {
		sel, origin, err := parseCopyPaste(s)
		if err != nil {
			return nil, err
		}
		p.copySel, p.pasteAt = sel, origin
	}
	if p.exportPath = cmd.String("export"); p.exportPath != "" && p.copySel == nil {
		return nil, fmt.Errorf("%w: --export requires --copy-paste", shared.ErrMissingArgument)
	}
	return p, nil
}

// Run schedules the requested edits and drives the scheduler until every edit has completed.
func (r *Runner) Run(ctx context.Context, cmd *cli.Command) error {
	tui := cmd.Bool("tui")
	if tui {
		fileLogger, err := shared.NewFileLogger("./tmp/wbx-tui.log")
		if err != nil {
			return fmt.Errorf("failed to create file logger: %w", err)
		}
		r.SetLogger(fileLogger)
	}

	w, closeWorld, err := r.openWorld(ctx, cmd.String("world"), cmd.Bool("memory"))
	if err != nil {
		return err
	}
	defer func() {
		if err := closeWorld(); err != nil {
			r.logger.Error("failed to close world", "error", err)
		}
	}()

	plan, err := parsePlan(cmd, w)
	if err != nil {
		return err
	}
	if plan.empty() {
		return fmt.Errorf("%w: one of --set, --replace, --regen or --copy-paste", shared.ErrMissingArgument)
	}

	metrics := r.metrics
	if cmd.Bool("metrics") {
		tel, err := editor.NewTelemetry()
		if err != nil {
			return err
		}
		defer func() {
			if err := r.reportMetrics(context.WithoutCancel(ctx), tel); err != nil {
				r.logger.Warn("failed to report metrics", "error", err)
			}
		}()
		metrics = tel.Metrics
	}

	mgr := editor.NewManager(r.config.Editor, nil, r.logger, editor.WithMetrics(metrics))
	drive := func(ctx context.Context, presenter presenterFunc) error {
		if plan.copySel == nil {
			return r.execute(ctx, mgr, w, plan, nil, presenter)
		}
		build := func() (clipboard.Clipboard, error) {
			lo, _ := plan.copySel.Bounds()
			return mgr.BuildClipboard(lo)
		}
		return clipboard.With(build, func(cb clipboard.Clipboard) error {
			if err := r.execute(ctx, mgr, w, plan, cb, presenter); err != nil {
				return err
			}
			if plan.exportPath == "" {
				return nil
			}
			if err := formatter.WriteExport(cb, plan.exportPath); err != nil {
				return err
			}
			r.logger.Info("exported clipboard", "path", plan.exportPath)
			return nil
		})
	}

	if tui {
		return r.runTUI(ctx, drive)
	}

	popup := ui.NewPopupListener(r.output)
	err = drive(ctx, func(*tasks.Instance) tasks.Listener { return popup })
	if perr := popup.Err(); perr != nil {
		r.logger.Warn("failed to write progress", "error", perr)
	}
	return err
}

// execute pushes every planned edit and runs the host loop until the scheduler is idle.
// Copy then paste run in sequence; the paste is scheduled when the copy completes.
func (r *Runner) execute(ctx context.Context, mgr *editor.Manager, w *world.World, plan *editPlan, cb clipboard.Clipboard, presenter presenterFunc) error {
	var failures []error
	tracker := tasks.ListenerFuncs{Fail: func(t *tasks.Task, err error) {
		failures = append(failures, fmt.Errorf("%s: %w", t.Name(), err))
	}}

	schedule := func(desc tasks.Descriptor, extra ...tasks.Listener) error {
		inst, err := mgr.BuildInstance(desc)
		if err != nil {
			return err
		}
		inst.RegisterListener(tracker)
		for _, l := range extra {
			inst.RegisterListener(l)
		}
		mgr.Trigger(ctx, inst, presenter(inst))
		return nil
	}

	for _, desc := range plan.descriptors {
		if err := schedule(desc); err != nil {
			return err
		}
	}

	if cb != nil {
		copyFailed := false
		chain := tasks.ListenerFuncs{
			Fail: func(*tasks.Task, error) { copyFailed = true },
			Complete: func(*tasks.Task) {
				if copyFailed {
					return
				}
				if err := schedule(tasks.PasteDescriptor(w, cb, plan.pasteAt)); err != nil {
					failures = append(failures, err)
				}
			},
		}
		if err := schedule(tasks.CopyDescriptor(w, plan.copySel, cb), chain); err != nil {
			return err
		}
	}

	iterations, err := r.hostLoop(ctx, mgr)
	if err != nil {
		return err
	}
	r.logger.Info("edits finished", "iterations", iterations, "failed", len(failures))
	return errors.Join(failures...)
}

// reportMetrics prints the scheduler metric totals and shuts the provider down.
func (r *Runner) reportMetrics(ctx context.Context, tel *editor.Telemetry) error {
	totals, err := tel.Totals(ctx)
	if err != nil {
		return errors.Join(err, tel.Shutdown(ctx))
	}
	r.writePlainHeader("Scheduler metrics")
	for _, total := range totals {
		if err := r.writePlain("%-22s %d\n", total.Name, total.Value); err != nil {
			return errors.Join(err, tel.Shutdown(ctx))
		}
	}
	return tel.Shutdown(ctx)
}

// hostLoop emits iteration signals at the configured rate while the scheduler has work.
func (r *Runner) hostLoop(ctx context.Context, mgr *editor.Manager) (int, error) {
	limiter := rate.NewLimiter(rate.Limit(r.config.Host.IterationsPerSecond), 1)
	iterations := 0
	for mgr.Running() {
		if err := limiter.Wait(ctx); err != nil {
			return iterations, fmt.Errorf("host loop stopped after %d iterations: %w", iterations, err)
		}
		mgr.Tick(ctx)
		iterations++
	}
	return iterations, nil
}

// openWorld opens name on the record store, registering it on first use. The returned func saves
// dirty chunks and releases the store.
func (r *Runner) openWorld(ctx context.Context, name string, memory bool) (*world.World, func() error, error) {
	if memory {
		return world.New(name, world.NewMemoryProvider(), r.logger), func() error { return nil }, nil
	}

	db, err := shared.OpenStore(r.config.Database)
	if err != nil {
		return nil, nil, err
	}
	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	worlds := repositories.NewWorldRepository(db)
	if _, err := worlds.FormatVersion(ctx, name); errors.Is(err, shared.ErrRecordNotFound) {
		r.logger.Info("registering world", "world", name)
		if err := worlds.Create(ctx, name, world.DefaultTagVersion); err != nil {
			db.Close()
			return nil, nil, err
		}
	} else if err != nil {
		db.Close()
		return nil, nil, err
	}

	provider, err := world.OpenRecordProvider(ctx, repositories.NewChunkRecordRepository(db), worlds, name)
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	w := world.New(name, provider, r.logger)
	closeWorld := func() error {
		return errors.Join(w.SaveChunks(context.WithoutCancel(ctx)), db.Close())
	}
	return w, closeWorld, nil
}
