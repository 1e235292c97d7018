package formatter

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/yildizm/go-termfmt"
	"github.com/yildizm/qupid/internal/emoji"
	"github.com/yildizm/qupid/internal/presentation"
	"github.com/yildizm/qupid/internal/upload"
)

// terminalFormatter renders the results page as plain text using go-termfmt
type terminalFormatter struct {
	opts *termfmt.TerminalOptions
}

// NewTerminal creates a text formatter with optional color
func NewTerminal(color bool) Formatter {
	opts := termfmt.DefaultOptions()
	opts.Color = color
	opts.Emoji = !emoji.IsEmojiDisabled()
	return &terminalFormatter{opts: opts}
}

func (f *terminalFormatter) Format(report *Report) ([]byte, error) {
	if report == nil || report.View == nil {
		return nil, errNothingToFormat
	}
	v := report.View

	var b strings.Builder
	f.writeHeader(&b, v)
	f.writeSelection(&b, report.Files)

	if v.Submitting {
		b.WriteString(emoji.GetEmoji("zap") + " analyzing + evolving...\n\n")
	}

	if len(v.Summary) > 0 {
		f.writeSummary(&b, v.Summary)
	}
	for _, section := range v.Sections {
		f.writeSection(&b, section)
	}
	if len(v.Extra) > 0 {
		f.writeSection(&b, presentation.Section{Title: "other parameters", Rows: v.Extra})
	}

	f.writePlot(&b, v.Plot)

	if v.ShowReport() {
		f.writeReport(&b, v)
	} else {
		fmt.Fprintf(&b, "%s %s\n", emoji.GetEmoji("error"), v.Error)
	}

	return []byte(b.String()), nil
}

func (f *terminalFormatter) writeHeader(b *strings.Builder, v *presentation.View) {
	title := "qupid trajectory"
	b.WriteString("╭" + strings.Repeat("─", len(title)+2) + "╮\n")
	b.WriteString("│ " + title + " │\n")
	b.WriteString("╰" + strings.Repeat("─", len(title)+2) + "╯\n")

	badge := emoji.GetEmoji(v.State) + " state: " + v.State
	if v.HealthScore != nil {
		badge += fmt.Sprintf(" (health %s)", presentation.DisplayValue(*v.HealthScore))
	}
	b.WriteString(badge + "\n\n")
}

func (f *terminalFormatter) writeSelection(b *strings.Builder, files []*upload.File) {
	if len(files) == 0 {
		return
	}
	var total int64
	items := make([]termfmt.TreeItem, 0, len(files))
	for i, file := range files {
		total += file.Size
		items = append(items, termfmt.TreeItem{
			Label: file.Name,
			Value: humanize.Bytes(uint64(max(file.Size, 0))),
			Last:  i == len(files)-1,
		})
	}
	fmt.Fprintf(b, "%s selected: %d %s (%s)\n", emoji.GetEmoji("upload"), len(files),
		pluralize(len(files), "screenshot", "screenshots"), humanize.Bytes(uint64(max(total, 0))))
	b.WriteString(termfmt.TreeViewWithOptions(items, f.opts) + "\n\n")
}

func (f *terminalFormatter) writeSummary(b *strings.Builder, rows []presentation.Row) {
	items := make([]termfmt.TreeItem, 0, len(rows))
	for i, row := range rows {
		items = append(items, termfmt.TreeItem{Label: row.Label, Value: row.Value, Last: i == len(rows)-1})
	}
	b.WriteString(emoji.GetEmoji("user") + " summary\n")
	b.WriteString(termfmt.TreeViewWithOptions(items, f.opts) + "\n\n")
}

func (f *terminalFormatter) writeSection(b *strings.Builder, section presentation.Section) {
	items := make([]termfmt.TreeItem, 0, len(section.Rows))
	for i, row := range section.Rows {
		value := row.Value
		if frac, ok := barFraction(row); ok {
			value = termfmt.CreateConfidenceBar(frac, f.opts) + " " + row.Value
		}
		items = append(items, termfmt.TreeItem{Label: row.Label, Value: value, Last: i == len(section.Rows)-1})
	}
	b.WriteString(emoji.GetEmoji("params") + " " + section.Title + "\n")
	b.WriteString(termfmt.TreeViewWithOptions(items, f.opts) + "\n\n")
}

func (f *terminalFormatter) writePlot(b *strings.Builder, plot presentation.PlotView) {
	switch {
	case plot.Available:
		fmt.Fprintf(b, "%s plot %dx%d\n", emoji.GetEmoji("chart"), plot.Width, plot.Height)
		b.WriteString("how to read this: " + plot.Caption + "\n\n")
	case plot.Error != "":
		fmt.Fprintf(b, "%s %s\n\n", emoji.GetEmoji("warning"), plot.Error)
	}
}

func (f *terminalFormatter) writeReport(b *strings.Builder, v *presentation.View) {
	b.WriteString(emoji.GetEmoji("report") + " trajectory report\n")
	b.WriteString(strings.Repeat("─", 40) + "\n")
	for i, block := range v.Report {
		if block.HasHeading() {
			b.WriteString(string(block.Heading) + "\n")
		}
		b.WriteString(wrap(block.Text, 78) + "\n")
		if i < len(v.Report)-1 {
			b.WriteString("\n")
		}
	}
}

// wrap breaks text on word boundaries at width columns
func wrap(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	var (
		b    strings.Builder
		line int
	)
	for i, w := range words {
		if i > 0 {
			if line+1+len(w) > width {
				b.WriteString("\n")
				line = 0
			} else {
				b.WriteString(" ")
				line++
			}
		}
		b.WriteString(w)
		line += len(w)
	}
	return b.String()
}
