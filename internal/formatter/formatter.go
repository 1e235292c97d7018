package formatter

import (
	"fmt"
	"time"

	"github.com/yildizm/qupid/internal/presentation"
	"github.com/yildizm/qupid/internal/upload"
)

// Report is everything the plain output modes render for one session
type Report struct {
	View        *presentation.View
	Files       []*upload.File
	Endpoint    string
	GeneratedAt time.Time
}

// Formatter defines the interface for output formatting
type Formatter interface {
	Format(report *Report) ([]byte, error)
}

// Formats lists the supported output formats
var Formats = []string{"text", "json", "markdown"}

// New returns the formatter for format
func New(format string, color bool) (Formatter, error) {
	switch format {
	case "", "text":
		return NewTerminal(color), nil
	case "json":
		return NewJSON(), nil
	case "markdown", "md":
		return NewMarkdown(), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s (use text, json or markdown)", format)
	}
}

var errNothingToFormat = fmt.Errorf("nothing to format")
