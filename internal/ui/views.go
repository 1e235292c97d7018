package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/yildizm/qupid/internal/emoji"
	"github.com/yildizm/qupid/internal/presentation"
	"github.com/yildizm/qupid/internal/qupid"
	"github.com/yildizm/qupid/internal/report"
	"github.com/yildizm/qupid/internal/session"
	"github.com/yildizm/qupid/internal/ui/components"
	"github.com/yildizm/qupid/internal/upload"
)

// Labels shown on the run control
const (
	runLabel     = "analyze & evolve quantum state"
	runningLabel = "analyzing + evolving..."
)

// FeedbackURL is the beta tester feedback form linked from the landing view
const FeedbackURL = "https://form.jotform.com/260442360762150"

const tagline = "qupid creates a unique lindbladian for your situationship"

func (m *Model) contentWidth() int {
	return max(min(m.width-8, 96), 40)
}

func (m *Model) place(content string) string {
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m *Model) renderLanding() string {
	styles := GetStyles()

	kicker := styles.Muted.Render("predict your situationship with quantum physics")
	title := styles.Title.Render(emoji.GetEmoji("atom") + " qupid.cloud")

	intro := styles.Body.Width(min(m.contentWidth(), 64)).Render(
		"qupid runs your relationship through a time-dependent quantum engine. " +
			"upload screenshots of your most recent text convos, and we evolve the state " +
			"forward to predict where it goes next.\n\n" +
			"are you ready to dive into the future of relationships?")

	enter := styles.Button.Render("enter the lab")
	feedback := styles.Muted.Render("beta tester feedback form: " + FeedbackURL)
	hint := styles.Muted.Render("enter: lab • ?: help • q: quit")

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		kicker,
		title,
		"",
		intro,
		"",
		enter,
		feedback,
		"",
		hint,
	)
	return m.place(styles.Box.Render(content))
}

func (m *Model) renderLab() string {
	styles := GetStyles()

	header := styles.Header.Render(emoji.GetEmoji("upload") + " the lab")
	var meta []string
	if m.endpoint != "" {
		meta = append(meta, emoji.GetEmoji("server")+" "+m.endpoint)
	}
	if m.source != "" {
		meta = append(meta, emoji.GetEmoji("folder")+" "+m.source)
	}

	lines := []string{header}
	if len(meta) > 0 {
		lines = append(lines, styles.Muted.Render(strings.Join(meta, "   ")))
	}
	lines = append(lines, "", m.renderSelection())

	if m.notice != "" {
		lines = append(lines, "", styles.Warning.Render(emoji.GetEmoji("warning")+" "+m.notice))
	}

	// only the empty-selection error is shown inline; run failures live on the results view
	if err := m.controller.Err(); err != nil && qupid.IsKind(err, qupid.KindNoFilesSelected) {
		lines = append(lines, "", styles.Error.Render(qupid.Message(err)))
	}

	lines = append(lines,
		"",
		m.renderRunButton(),
		"",
		styles.Muted.Render(emoji.GetEmoji("heart")+" "+tagline),
		"",
		styles.Muted.Render(m.labHint()),
	)

	return m.place(styles.Box.Width(m.contentWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, lines...)))
}

func (m *Model) labHint() string {
	parts := []string{"enter: run", "c: clear"}
	if m.rescan != nil {
		parts = append(parts, "r: rescan")
	}
	if m.controller.Result() != nil || m.controller.Phase() != session.Idle {
		parts = append(parts, "esc: back")
	}
	parts = append(parts, "?: help", "q: quit")
	return strings.Join(parts, " • ")
}

func (m *Model) renderSelection() string {
	styles := GetStyles()

	files := m.store.Files()
	if len(files) == 0 {
		return styles.Muted.Render("no screenshots selected")
	}

	lines := []string{
		styles.Subheader.Render(fmt.Sprintf("selected: %d screenshot(s)", len(files))) +
			styles.Muted.Render(fmt.Sprintf("  %s total", humanize.Bytes(uint64(max(m.store.TotalSize(), 0))))),
	}
	for i, f := range files {
		size := ""
		if f.Size > 0 {
			size = humanize.Bytes(uint64(f.Size))
		}
		when := ""
		if !f.ModTime.IsZero() {
			when = humanize.Time(f.ModTime)
		}
		lines = append(lines, fmt.Sprintf("  %2d. %s %s %s",
			i+1,
			emoji.GetEmoji("image"),
			f.Name,
			styles.Muted.Render(strings.TrimSpace(size+"  "+when))))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m *Model) renderRunButton() string {
	styles := GetStyles()
	if m.controller.Phase() == session.Submitting {
		return styles.ButtonDisabled.Render(m.spinner.Render())
	}
	return styles.Button.Render(emoji.GetEmoji("zap") + " " + runLabel)
}

func (m *Model) renderResults() string {
	styles := GetStyles()
	v := m.presenter.Build(m.controller.Phase(), m.controller.Result(), m.controller.Err())

	header := lipgloss.JoinHorizontal(lipgloss.Center,
		styles.Header.Render(emoji.GetEmoji("sparkles")+" results  "),
		m.renderBadge(v),
		"  "+m.renderHealth(v),
	)

	m.scroller.SetContent(m.resultsBody(v))

	footer := styles.Muted.Render("↑↓ scroll • enter: run again • esc: lab • ?: help • q: quit")
	content := lipgloss.JoinVertical(lipgloss.Left, header, "", m.scroller.Render(), "", footer)
	return m.place(styles.Panel.Width(m.contentWidth()).Render(content))
}

func (m *Model) renderBadge(v *presentation.View) string {
	styles := GetStyles()
	if v.Coherent {
		return styles.BadgeCoherent.Render(emoji.GetEmoji("coherent") + " state: " + v.State)
	}
	return styles.BadgeDecohered.Render(emoji.GetEmoji("decohered") + " state: " + v.State)
}

func (m *Model) renderHealth(v *presentation.View) string {
	styles := GetStyles()
	score := presentation.EmptyValue
	if v.HealthScore != nil {
		score = presentation.DisplayValue(*v.HealthScore)
	}
	return styles.Muted.Render("health score: ") + styles.Subheader.Render(score)
}

// resultsBody renders everything below the header as one scrollable block
func (m *Model) resultsBody(v *presentation.View) string {
	styles := GetStyles()
	width := m.contentWidth() - 4

	var lines []string
	if v.Submitting {
		lines = append(lines, styles.Info.Render(m.spinner.Render()), "")
	}

	if len(v.Summary) > 0 {
		for _, row := range v.Summary {
			lines = append(lines, fmt.Sprintf("%s %s", styles.Muted.Render(row.Label+":"), row.Value))
		}
		lines = append(lines, "")
	}

	if v.ShowReport() {
		lines = append(lines, styles.Subheader.Render(emoji.GetEmoji("report")+" trajectory report"))
		lines = append(lines, m.renderBlocks(v.Report, width)...)
	} else {
		lines = append(lines, styles.Error.Width(width).Render(emoji.GetEmoji("error")+" "+v.Error))
	}

	if len(v.Sections) > 0 {
		lines = append(lines, "", styles.Subheader.Render(emoji.GetEmoji("params")+" inferred parameters"))
		for _, section := range v.Sections {
			lines = append(lines, "", styles.Header.Render(section.Title))
			lines = append(lines, m.renderRows(section.Rows)...)
		}
	}
	if len(v.Extra) > 0 {
		lines = append(lines, "", styles.Header.Render("other parameters"))
		lines = append(lines, m.renderRows(v.Extra)...)
	}

	if v.HasResult {
		lines = append(lines, "", m.renderPlot(v.Plot, width))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderBlocks(blocks []report.Block, width int) []string {
	styles := GetStyles()
	out := make([]string, 0, len(blocks)*2)
	for _, b := range blocks {
		if b.HasHeading() {
			out = append(out, "", styles.Header.Render(b.Heading.Title()))
		}
		if b.Text != "" {
			out = append(out, styles.Body.Width(width).Render(b.Text))
		}
	}
	return out
}

func (m *Model) renderRows(rows []presentation.Row) []string {
	theme := GetTheme()
	gauge := components.NewGauge(20)
	gauge.Color = theme.Primary
	gauge.Plain = IsColorDisabled()

	out := make([]string, 0, len(rows))
	for _, row := range rows {
		gauge.Label = row.Label
		if n, ok := row.Number(); ok {
			out = append(out, gauge.Render(&n, row.Value))
			continue
		}
		out = append(out, fmt.Sprintf("%-28s %s", row.Label, row.Value))
	}
	return out
}

func (m *Model) renderPlot(plot presentation.PlotView, width int) string {
	styles := GetStyles()
	title := styles.Subheader.Render(emoji.GetEmoji("chart") + " trajectory plot")
	if !plot.Available {
		if plot.Error != "" {
			return lipgloss.JoinVertical(lipgloss.Left, title, styles.Warning.Render(plot.Error))
		}
		return lipgloss.JoinVertical(lipgloss.Left, title, styles.Muted.Render("no plot returned"))
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		styles.Muted.Render(fmt.Sprintf("%dx%d png, save it with --save-plot", plot.Width, plot.Height)),
		styles.Body.Width(width).Render(plot.Caption),
	)
}

func (m *Model) renderHelp() string {
	styles := GetStyles()

	sections := []struct {
		title string
		keys  [][2]string
	}{
		{"landing", [][2]string{{"enter", "enter the lab"}}},
		{"lab", [][2]string{
			{"enter", runLabel},
			{"c", "clear the selection"},
			{"r", "rescan the selected paths"},
			{"esc", "back to landing"},
		}},
		{"results", [][2]string{
			{"↑/↓ j/k", "scroll"},
			{"pgup/pgdown", "scroll a page"},
			{"enter", "run again with the same selection"},
			{"esc", "back to the lab"},
		}},
		{"anywhere", [][2]string{{"?", "toggle this help"}, {"q", "quit"}}},
	}

	lines := []string{styles.Title.Render(emoji.GetEmoji("help") + " help"), ""}
	for _, s := range sections {
		lines = append(lines, styles.Header.Render(s.title))
		for _, k := range s.keys {
			lines = append(lines, fmt.Sprintf("  %-14s %s", styles.Subheader.Render(k[0]), k[1]))
		}
		lines = append(lines, "")
	}
	lines = append(lines, styles.Muted.Render(fmt.Sprintf("up to %d png or jpeg screenshots per run", upload.MaxFiles)))

	return m.place(styles.Box.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)))
}

func (m *Model) renderGoodbye() string {
	styles := GetStyles()
	return styles.Success.Render("see you in the next timeline " + emoji.GetEmoji("heart")) + "\n"
}
