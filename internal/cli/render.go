package cli

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"chronotrakr/internal/config"
)

var (
	colorHeader  = lipgloss.Color("#fe8019")
	colorDim     = lipgloss.Color("#928374")
	colorRunning = lipgloss.Color("#8ec07c")
	colorWarn    = lipgloss.Color("#fabd2f")
	colorClock   = lipgloss.Color("#83a598")
)

// Styles are the lipgloss styles used for command output. With colour
// disabled every style renders its input unchanged.
type Styles struct {
	Header  lipgloss.Style
	Dim     lipgloss.Style
	Running lipgloss.Style
	Warn    lipgloss.Style
	Clock   lipgloss.Style
	enabled bool
}

// NewStyles builds the styles for w according to mode
func NewStyles(mode string, w io.Writer) Styles {
	if !colorEnabled(mode, w) {
		plain := lipgloss.NewStyle()
		return Styles{Header: plain, Dim: plain, Running: plain, Warn: plain, Clock: plain}
	}

	r := lipgloss.NewRenderer(w)
	if strings.EqualFold(mode, config.ColorAlways) {
		r.SetColorProfile(termenv.ANSI256)
	}
	return Styles{
		Header:  r.NewStyle().Foreground(colorHeader).Bold(true),
		Dim:     r.NewStyle().Foreground(colorDim),
		Running: r.NewStyle().Foreground(colorRunning).Bold(true),
		Warn:    r.NewStyle().Foreground(colorWarn),
		Clock:   r.NewStyle().Foreground(colorClock).Bold(true),
		enabled: true,
	}
}

// Enabled reports whether output is coloured
func (s Styles) Enabled() bool {
	return s.enabled
}

func colorEnabled(mode string, w io.Writer) bool {
	switch strings.ToLower(mode) {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// RenderTable renders an aligned table with a header separator line.
// Column widths are measured on visible width so styled cells line up.
func (s Styles) RenderTable(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}

	cols := len(headers)
	widths := make([]int, cols)
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i := 0; i < cols && i < len(row); i++ {
			if w := lipgloss.Width(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	const colGap = 2
	var b strings.Builder

	writeRow := func(cells []string, style func(string) string) {
		for i := 0; i < cols; i++ {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			pad := widths[i] - lipgloss.Width(cell)
			b.WriteString(style(cell))
			if i < cols-1 {
				b.WriteString(strings.Repeat(" ", pad+colGap))
			}
		}
		b.WriteString("\n")
	}

	writeRow(headers, func(c string) string { return s.Header.Render(c) })

	for i, w := range widths {
		b.WriteString(s.Dim.Render(strings.Repeat("─", w)))
		if i < cols-1 {
			b.WriteString(strings.Repeat(" ", colGap))
		}
	}
	b.WriteString("\n")

	for _, row := range rows {
		writeRow(row, func(c string) string { return c })
	}
	return b.String()
}
