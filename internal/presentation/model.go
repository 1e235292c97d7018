package presentation

import (
	"errors"
	"sync"

	"github.com/yildizm/qupid/internal/qupid"
	"github.com/yildizm/qupid/internal/report"
	"github.com/yildizm/qupid/internal/session"
)

// Model caches the compiled report for the most recent report text so
// re-rendering an unchanged result does not recompile it.
type Model struct {
	mu       sync.Mutex
	text     string
	blocks   []report.Block
	cached   bool
	compiles int
}

// NewModel returns an empty model
func NewModel() *Model {
	return &Model{}
}

// Blocks returns the compiled report of result, using the placeholder when
// the result has no report.
func (m *Model) Blocks(result *qupid.ServerResult) []report.Block {
	text := ReportText(result)

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.cached || m.text != text {
		m.blocks = report.Compile(text)
		m.text = text
		m.cached = true
		m.compiles++
	}
	out := make([]report.Block, len(m.blocks))
	copy(out, m.blocks)
	return out
}

// PlotView describes the plot without its bytes
type PlotView struct {
	Available bool   `json:"available" yaml:"available"`
	Caption   string `json:"caption,omitempty" yaml:"caption,omitempty"`
	Width     int    `json:"width,omitempty" yaml:"width,omitempty"`
	Height    int    `json:"height,omitempty" yaml:"height,omitempty"`
	Error     string `json:"error,omitempty" yaml:"error,omitempty"`
}

// View is everything a renderer needs for the results page
type View struct {
	Phase       string         `json:"phase" yaml:"phase"`
	Submitting  bool           `json:"submitting" yaml:"submitting"`
	Error       string         `json:"error,omitempty" yaml:"error,omitempty"`
	ErrorKind   string         `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`
	HasResult   bool           `json:"has_result" yaml:"has_result"`
	HealthScore *float64       `json:"health_score,omitempty" yaml:"health_score,omitempty"`
	Coherent    bool           `json:"coherent" yaml:"coherent"`
	State       string         `json:"state" yaml:"state"`
	Summary     []Row          `json:"summary,omitempty" yaml:"summary,omitempty"`
	Sections    []Section      `json:"sections,omitempty" yaml:"sections,omitempty"`
	Extra       []Row          `json:"extra_params,omitempty" yaml:"extra_params,omitempty"`
	Report      []report.Block `json:"report" yaml:"report"`
	Plot        PlotView       `json:"plot" yaml:"plot"`

	plot *Plot
}

// DecodedPlot returns the decoded plot when one was available
func (v *View) DecodedPlot() *Plot {
	return v.plot
}

// ShowReport reports whether the report is shown; an error replaces it
func (v *View) ShowReport() bool {
	return v.Error == ""
}

// Build assembles the view for a session state. err is the session error, if any.
func (m *Model) Build(phase session.Phase, result *qupid.ServerResult, err error) *View {
	coherent := Coherent(result)
	v := &View{
		Phase:      phase.String(),
		Submitting: phase == session.Submitting,
		HasResult:  result != nil,
		Coherent:   coherent,
		State:      StateLabel(coherent),
		Summary:    Summary(result),
		Sections:   Sections(result),
		Extra:      ExtraParams(result),
		Report:     m.Blocks(result),
	}
	if result != nil {
		v.HealthScore = result.HealthScore
	}
	if err != nil {
		v.Error = qupid.Message(err)
		v.ErrorKind = string(qupid.KindOf(err))
	}

	plot, perr := DecodePlot(result)
	switch {
	case perr == nil:
		v.plot = plot
		v.Plot = PlotView{Available: true, Caption: plot.Caption, Width: plot.Width, Height: plot.Height}
	case !errors.Is(perr, ErrNoPlot):
		v.Plot = PlotView{Error: "plot unavailable"}
	}
	return v
}
