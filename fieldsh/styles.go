// =============================================================================
// styles.go - Terminal Styling
// =============================================================================
//
// Colors for the banner, prompt, replies and errors. Styling is skipped
// entirely in plain mode (--plain, plain = true in the config, or stdout
// not being a terminal) so piped output stays byte-for-byte clean.
//
// =============================================================================

package main

import (
	"github.com/charmbracelet/lipgloss"
)

// Color palette.
var (
	colorPrimary = lipgloss.Color("#8B5CF6") // Violet
	colorAccent  = lipgloss.Color("#06B6D4") // Cyan
	colorSuccess = lipgloss.Color("#10B981") // Emerald
	colorError   = lipgloss.Color("#EF4444") // Red
	colorMuted   = lipgloss.Color("#94A3B8") // Slate 400
)

// styles renders REPL output. The zero value is not useful; use newStyles.
type styles struct {
	plain bool

	title  lipgloss.Style
	prompt lipgloss.Style
	reply  lipgloss.Style
	failed lipgloss.Style
	muted  lipgloss.Style
}

// newStyles returns the REPL styles. With plain set every render is the
// identity function.
func newStyles(plain bool) styles {
	return styles{
		plain:  plain,
		title:  lipgloss.NewStyle().Foreground(colorPrimary).Bold(true),
		prompt: lipgloss.NewStyle().Foreground(colorAccent).Bold(true),
		reply:  lipgloss.NewStyle().Foreground(colorSuccess),
		failed: lipgloss.NewStyle().Foreground(colorError).Bold(true),
		muted:  lipgloss.NewStyle().Foreground(colorMuted).Italic(true),
	}
}

func (s styles) render(st lipgloss.Style, text string) string {
	if s.plain || text == "" {
		return text
	}
	return st.Render(text)
}

func (s styles) Title(text string) string  { return s.render(s.title, text) }
func (s styles) Prompt(text string) string { return s.render(s.prompt, text) }
func (s styles) Reply(text string) string  { return s.render(s.reply, text) }
func (s styles) Error(text string) string  { return s.render(s.failed, text) }
func (s styles) Muted(text string) string  { return s.render(s.muted, text) }
