package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/yildizm/qupid/internal/presentation"
)

// markdownFormatter formats output as Markdown
type markdownFormatter struct{}

// NewMarkdown creates a new Markdown formatter
func NewMarkdown() Formatter {
	return &markdownFormatter{}
}

func (f *markdownFormatter) Format(r *Report) ([]byte, error) {
	if r == nil || r.View == nil {
		return nil, errNothingToFormat
	}
	v := r.View
	generated := r.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}

	var b strings.Builder
	b.WriteString("# Qupid Trajectory Report\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", generated.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "**state: %s**", v.State)
	if v.HealthScore != nil {
		fmt.Fprintf(&b, " (health score %s)", presentation.DisplayValue(*v.HealthScore))
	}
	b.WriteString("\n\n")

	if len(r.Files) > 0 {
		b.WriteString("## Screenshots\n\n")
		for _, file := range r.Files {
			fmt.Fprintf(&b, "- `%s` (%s, %s)\n", file.Name, file.MediaType, humanize.Bytes(uint64(max(file.Size, 0))))
		}
		b.WriteString("\n")
	}

	if len(v.Summary) > 0 {
		b.WriteString("## Summary\n\n")
		f.writeTable(&b, v.Summary)
	}

	if len(v.Sections) > 0 {
		b.WriteString("## Parameters\n\n")
		for _, section := range v.Sections {
			fmt.Fprintf(&b, "### %s\n\n", section.Title)
			f.writeTable(&b, section.Rows)
		}
	}
	if len(v.Extra) > 0 {
		b.WriteString("### other parameters\n\n")
		f.writeTable(&b, v.Extra)
	}

	switch {
	case v.Plot.Available:
		b.WriteString("## How to read the plot\n\n")
		b.WriteString(v.Plot.Caption + "\n\n")
	case v.Plot.Error != "":
		fmt.Fprintf(&b, "> %s\n\n", v.Plot.Error)
	}

	if !v.ShowReport() {
		b.WriteString("## Error\n\n")
		fmt.Fprintf(&b, "%s\n", v.Error)
		return []byte(b.String()), nil
	}

	b.WriteString("## Trajectory Report\n\n")
	for _, block := range v.Report {
		if block.HasHeading() {
			fmt.Fprintf(&b, "### %s\n\n", block.Heading)
		}
		b.WriteString(block.Text + "\n\n")
	}

	return []byte(strings.TrimRight(b.String(), "\n") + "\n"), nil
}

func (f *markdownFormatter) writeTable(b *strings.Builder, rows []presentation.Row) {
	b.WriteString("| | |\n|---|---|\n")
	for _, row := range rows {
		fmt.Fprintf(b, "| %s | %s |\n", escapeCell(row.Label), escapeCell(row.Value))
	}
	b.WriteString("\n")
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
