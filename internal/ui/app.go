// Package ui is the terminal front end: a landing view, the lab where the
// screenshot selection is prepared and a run is started, and the results view.
package ui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/yildizm/qupid/internal/presentation"
	"github.com/yildizm/qupid/internal/session"
	"github.com/yildizm/qupid/internal/ui/components"
	"github.com/yildizm/qupid/internal/upload"
)

// View represents the different UI views
type View int

const (
	ViewLanding View = iota
	ViewLab
	ViewResults
	ViewHelp
)

func (v View) String() string {
	switch v {
	case ViewLanding:
		return "landing"
	case ViewLab:
		return "lab"
	case ViewResults:
		return "results"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// viewFor maps a navigation route to its view
func viewFor(route session.Route) View {
	switch route {
	case session.RouteLab:
		return ViewLab
	case session.RouteResults:
		return ViewResults
	default:
		return ViewLanding
	}
}

// Options configure a Model
type Options struct {
	Controller *session.Controller
	Store      *upload.Store
	Presenter  *presentation.Model

	// Start is the route shown first
	Start session.Route
	// RunOnStart begins a session as soon as the program starts
	RunOnStart bool
	// AutoRun begins a session whenever the selection changes and no run is in flight
	AutoRun bool
	// Rescan re-resolves the selection's source paths; nil disables the rescan key
	Rescan func() ([]*upload.File, error)

	// Endpoint and Source are shown in the lab header
	Endpoint string
	Source   string

	Context context.Context
}

// Model is the bubbletea model. It owns the session controller: every
// Begin and Resolve happens inside Update.
type Model struct {
	ctx        context.Context
	controller *session.Controller
	store      *upload.Store
	presenter  *presentation.Model
	rescan     func() ([]*upload.File, error)
	autoRun    bool
	runOnStart bool
	endpoint   string
	source     string

	view     View
	prevView View
	width    int
	height   int
	ready    bool
	quitting bool

	spinner  *components.Spinner
	scroller *components.Scroller
	notice   string
}

// New creates the model and registers it as the controller's navigator
func New(opts Options) *Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	presenter := opts.Presenter
	if presenter == nil {
		presenter = presentation.NewModel()
	}

	m := &Model{
		ctx:        ctx,
		controller: opts.Controller,
		store:      opts.Store,
		presenter:  presenter,
		rescan:     opts.Rescan,
		autoRun:    opts.AutoRun,
		runOnStart: opts.RunOnStart,
		endpoint:   opts.Endpoint,
		source:     opts.Source,
		view:       viewFor(opts.Start),
		width:      80,
		height:     24,
		spinner:    components.NewSpinner(runningLabel),
		scroller:   components.NewScroller(16),
	}
	m.controller.SetNavigator(m)
	return m
}

// Navigate implements session.Navigator. It runs synchronously inside Update.
func (m *Model) Navigate(route session.Route) {
	m.view = viewFor(route)
	if m.view == ViewResults {
		m.scroller.Top()
	}
}

// CurrentView returns the view being shown
func (m *Model) CurrentView() View {
	return m.view
}

// Notice is the latest selection notice, if any
func (m *Model) Notice() string {
	return m.notice
}

// Init starts the spinner clock and, when asked to, the first run
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tick()}
	if m.runOnStart {
		cmds = append(cmds, m.run())
	}
	return tea.Batch(cmds...)
}

// Update handles messages and navigation
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowResize(msg)
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tickMsg:
		m.spinner.Tick()
		return m, tick()
	case sessionResolvedMsg:
		return m.handleResolved(msg)
	case selectionChangedMsg:
		return m.handleSelectionChanged(msg)
	}
	return m, nil
}

func (m *Model) handleWindowResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.ready = true
	m.scroller.SetHeight(max(m.height-10, 5))
	return m, nil
}

func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.quitting = true
		return m, tea.Quit
	case "?", "h":
		return m.toggleHelp()
	case "esc":
		return m.handleBack()
	}

	switch m.view {
	case ViewLanding:
		if msg.String() == "enter" || msg.String() == "l" {
			m.Navigate(session.RouteLab)
		}
	case ViewLab:
		return m.handleLabKey(msg.String())
	case ViewResults:
		return m.handleResultsKey(msg.String())
	case ViewHelp:
		return m.toggleHelp()
	}
	return m, nil
}

func (m *Model) handleLabKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "enter", " ":
		return m, m.run()
	case "c":
		m.store.Clear()
		m.notice = ""
	case "r":
		if m.rescan != nil {
			return m, rescan(m.rescan)
		}
	}
	return m, nil
}

func (m *Model) handleResultsKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "up", "k":
		m.scroller.ScrollUp(1)
	case "down", "j":
		m.scroller.ScrollDown(1)
	case "pgup", "b":
		m.scroller.ScrollUp(m.scroller.Height)
	case "pgdown", "f":
		m.scroller.ScrollDown(m.scroller.Height)
	case "home", "g":
		m.scroller.Top()
	case "enter":
		return m, m.run()
	case "l":
		m.Navigate(session.RouteLab)
	}
	return m, nil
}

func (m *Model) handleBack() (tea.Model, tea.Cmd) {
	switch m.view {
	case ViewHelp:
		m.view = m.prevView
	case ViewResults:
		m.Navigate(session.RouteLab)
	case ViewLab:
		m.Navigate(session.RouteLanding)
	}
	return m, nil
}

func (m *Model) toggleHelp() (tea.Model, tea.Cmd) {
	if m.view == ViewHelp {
		m.view = m.prevView
		return m, nil
	}
	m.prevView = m.view
	m.view = ViewHelp
	return m, nil
}

// run starts a session unless one is in flight. An empty selection leaves
// the inline message in the lab and issues nothing.
func (m *Model) run() tea.Cmd {
	if m.controller.Phase() == session.Submitting {
		return nil
	}
	attempt, err := m.controller.Begin()
	if err != nil {
		return nil
	}
	return executeAttempt(m.ctx, attempt)
}

func (m *Model) handleResolved(msg sessionResolvedMsg) (tea.Model, tea.Cmd) {
	if m.controller.Resolve(msg.outcome) {
		m.scroller.Top()
	}
	return m, nil
}

func (m *Model) handleSelectionChanged(msg selectionChangedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil && !errors.Is(msg.err, upload.ErrNoImages) {
		m.notice = "selection unchanged: " + msg.err.Error()
		return m, nil
	}

	dropped := m.store.Select(msg.files)
	m.notice = ""
	if dropped > 0 {
		m.notice = fmt.Sprintf("kept the newest %d screenshots, %d not selected", upload.MaxFiles, dropped)
	}

	if m.autoRun && !m.store.IsEmpty() && m.controller.Phase() != session.Submitting {
		return m, m.run()
	}
	return m, nil
}

// View renders the current view
func (m *Model) View() string {
	if m.quitting {
		return m.renderGoodbye()
	}

	switch m.view {
	case ViewLab:
		return m.renderLab()
	case ViewResults:
		return m.renderResults()
	case ViewHelp:
		return m.renderHelp()
	default:
		return m.renderLanding()
	}
}

// NewProgram wraps the model in a full-screen program
func NewProgram(m *Model, opts ...tea.ProgramOption) *tea.Program {
	return tea.NewProgram(m, append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)...)
}

// Run runs the TUI until the user quits
func Run(m *Model, opts ...tea.ProgramOption) error {
	_, err := NewProgram(m, opts...).Run()
	return err
}
