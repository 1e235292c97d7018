package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Scroller shows a window of pre-rendered lines with an offset
type Scroller struct {
	Height int
	offset int
	lines  []string
}

// NewScroller creates a scroller showing height lines at a time
func NewScroller(height int) *Scroller {
	return &Scroller{Height: height}
}

// SetContent replaces the content, keeping the offset when it is still valid
func (s *Scroller) SetContent(content string) {
	s.lines = strings.Split(content, "\n")
	s.clamp()
}

// SetHeight changes the window height
func (s *Scroller) SetHeight(height int) {
	s.Height = height
	s.clamp()
}

// Offset is the index of the first visible line
func (s *Scroller) Offset() int {
	return s.offset
}

// ScrollDown moves n lines down and reports whether it moved
func (s *Scroller) ScrollDown(n int) bool {
	before := s.offset
	s.offset += n
	s.clamp()
	return s.offset != before
}

// ScrollUp moves n lines up and reports whether it moved
func (s *Scroller) ScrollUp(n int) bool {
	before := s.offset
	s.offset -= n
	s.clamp()
	return s.offset != before
}

// Top resets the offset
func (s *Scroller) Top() {
	s.offset = 0
}

func (s *Scroller) maxOffset() int {
	if s.Height <= 0 {
		return 0
	}
	return max(0, len(s.lines)-s.Height)
}

func (s *Scroller) clamp() {
	s.offset = min(max(s.offset, 0), s.maxOffset())
}

// Render renders the visible window, with a position hint when the content overflows
func (s *Scroller) Render() string {
	if s.Height <= 0 || len(s.lines) <= s.Height {
		return strings.Join(s.lines, "\n")
	}

	end := min(len(s.lines), s.offset+s.Height)
	visible := strings.Join(s.lines[s.offset:end], "\n")

	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))
	hint := mutedStyle.Render(fmt.Sprintf("lines %d-%d of %d", s.offset+1, end, len(s.lines)))
	return visible + "\n" + hint
}
