package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/worldbuilder/internal/tasks"
	"github.com/desertthunder/worldbuilder/internal/ui"
)

// runTUI drives the edits on a separate goroutine while the interactive progress view renders.
//
// Quitting the view early cancels the host loop and waits for it to stop.
func (r *Runner) runTUI(ctx context.Context, drive func(context.Context, presenterFunc) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	updates := make(chan tasks.ProgressUpdate, 256)
	done := make(chan struct{})
	var runErr error

	go func() {
		defer close(done)
		runErr = drive(ctx, func(inst *tasks.Instance) tasks.Listener {
			return ui.NewChannelListener(updates, inst.ID)
		})
		close(updates)
	}()

	model := ui.NewModel(updates, func() error {
		<-done
		return runErr
	})
	if _, err := tea.NewProgram(model).Run(); err != nil {
		cancel()
		<-done
		return fmt.Errorf("error running TUI: %w", err)
	}

	cancel()
	<-done
	return runErr
}
