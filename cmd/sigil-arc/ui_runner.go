package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"sigil/internal/driver"
	"sigil/internal/ui"
)

type expandOutcome struct {
	outcome *driver.Outcome
	err     error
}

// runExpandWithUI drives ExpandFile under the bubbletea progress model.
// The pipeline runs on its own goroutine and streams per-function
// events into the model; the outcome is joined after the UI exits.
func runExpandWithUI(ctx context.Context, title string, items []string, inPath, outPath string, opts driver.Options) (*driver.Outcome, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan expandOutcome, 1)

	go func() {
		runOpts := opts
		runOpts.Progress = driver.ChannelSink{Ch: events}
		out, err := driver.ExpandFile(ctx, inPath, outPath, runOpts)
		outcomeCh <- expandOutcome{outcome: out, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, items, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	out := <-outcomeCh
	if uiErr != nil {
		return out.outcome, uiErr
	}
	return out.outcome, out.err
}
