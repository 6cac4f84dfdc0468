package style

import (
	"regexp"

	"github.com/charmbracelet/lipgloss"
)

// tagPattern matches an innermost tag pair. Content may hold escape
// sequences left by an earlier pass but no other bracket.
var tagPattern = regexp.MustCompile(`\[([a-z_]+)\]((?:[^\[]|\x1b\[)*?)\[/([a-z_]+)\]`)

// MarkupParser renders [tag]text[/tag] markup with lipgloss styles
type MarkupParser struct {
	styles map[string]lipgloss.Style
}

// NewMarkupParser creates a new markup parser with default styles
func NewMarkupParser() *MarkupParser {
	return &MarkupParser{
		styles: map[string]lipgloss.Style{
			"header":  Header,
			"success": Success,
			"error":   Error,
			"warning": Warning,
			"code":    Code,
			"path":    Path,
			"muted":   Muted,
			"bold":    lipgloss.NewStyle().Bold(true),

			"chunk":      lipgloss.NewStyle().Foreground(ChunkColor).Bold(true),
			"asset":      lipgloss.NewStyle().Foreground(AssetColor),
			"page":       lipgloss.NewStyle().Foreground(PageColor),
			"compressed": lipgloss.NewStyle().Foreground(CompressedColor),
		},
	}
}

// Render processes markup text and returns styled output. Nested tags are
// rendered innermost first; unknown tags are left as they are.
func (p *MarkupParser) Render(text string) string {
	for {
		changed := false
		text = tagPattern.ReplaceAllStringFunc(text, func(match string) string {
			m := tagPattern.FindStringSubmatch(match)
			style, ok := p.styles[m[1]]
			if !ok || m[1] != m[3] {
				return match
			}
			changed = true
			return style.Render(m[2])
		})
		if !changed {
			return text
		}
	}
}

// AddStyle allows adding custom styles
func (p *MarkupParser) AddStyle(tag string, style lipgloss.Style) {
	p.styles[tag] = style
}

var defaultParser = NewMarkupParser()

// Render is a convenience function using the default parser
func Render(text string) string {
	return defaultParser.Render(text)
}
