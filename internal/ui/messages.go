package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/yildizm/qupid/internal/session"
	"github.com/yildizm/qupid/internal/upload"
)

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Millisecond*100, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// sessionResolvedMsg carries a settled attempt back to the update loop
type sessionResolvedMsg struct {
	outcome session.Outcome
}

// selectionChangedMsg replaces the selection with freshly discovered files
type selectionChangedMsg struct {
	files []*upload.File
	err   error
}

// SelectionChanged builds the message a directory watcher sends into a
// running program with tea.Program.Send.
func SelectionChanged(files []*upload.File, err error) tea.Msg {
	return selectionChangedMsg{files: files, err: err}
}

// executeAttempt runs the service call off the update loop. The attempt
// never touches controller state; its outcome comes back as a message.
func executeAttempt(ctx context.Context, attempt *session.Attempt) tea.Cmd {
	return func() tea.Msg {
		return sessionResolvedMsg{outcome: attempt.Execute(ctx)}
	}
}

// rescan re-runs discovery for the lab's paths
func rescan(fn func() ([]*upload.File, error)) tea.Cmd {
	return func() tea.Msg {
		files, err := fn()
		return selectionChangedMsg{files: files, err: err}
	}
}
