package formatter

import (
	"encoding/json"
	"time"

	"github.com/yildizm/qupid/internal/presentation"
	"github.com/yildizm/qupid/internal/report"
)

// jsonFormatter formats output as JSON
type jsonFormatter struct{}

// NewJSON creates a new JSON formatter
func NewJSON() Formatter {
	return &jsonFormatter{}
}

// JSONOutput is the document written by the json format
type JSONOutput struct {
	GeneratedAt time.Time              `json:"generated_at"`
	Endpoint    string                 `json:"endpoint,omitempty"`
	Files       []FileOutput           `json:"files"`
	Phase       string                 `json:"phase"`
	Error       *ErrorOutput           `json:"error,omitempty"`
	State       string                 `json:"state"`
	Coherent    bool                   `json:"coherent"`
	HealthScore *float64               `json:"health_score,omitempty"`
	Summary     []presentation.Row     `json:"summary,omitempty"`
	Sections    []presentation.Section `json:"sections,omitempty"`
	Extra       []presentation.Row     `json:"extra_params,omitempty"`
	Report      []report.Block         `json:"report,omitempty"`
	Plot        presentation.PlotView  `json:"plot"`
}

// FileOutput describes one submitted screenshot
type FileOutput struct {
	Name      string `json:"name"`
	MediaType string `json:"media_type"`
	Size      int64  `json:"size"`
}

// ErrorOutput describes a failed session
type ErrorOutput struct {
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
}

func (f *jsonFormatter) Format(r *Report) ([]byte, error) {
	if r == nil || r.View == nil {
		return nil, errNothingToFormat
	}
	v := r.View

	out := &JSONOutput{
		GeneratedAt: r.GeneratedAt,
		Endpoint:    r.Endpoint,
		Files:       make([]FileOutput, 0, len(r.Files)),
		Phase:       v.Phase,
		State:       v.State,
		Coherent:    v.Coherent,
		HealthScore: v.HealthScore,
		Summary:     v.Summary,
		Sections:    v.Sections,
		Extra:       v.Extra,
		Plot:        v.Plot,
	}
	if out.GeneratedAt.IsZero() {
		out.GeneratedAt = time.Now().UTC()
	}
	for _, file := range r.Files {
		out.Files = append(out.Files, FileOutput{Name: file.Name, MediaType: file.MediaType, Size: file.Size})
	}
	if v.ShowReport() {
		out.Report = v.Report
	} else {
		out.Error = &ErrorOutput{Kind: v.ErrorKind, Message: v.Error}
	}

	return json.MarshalIndent(out, "", "  ")
}
