package levels

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Position is a location in level source. Line and Col are 1-based, Col
// counts runes.
type Position struct {
	Offset int `json:"offset"`
	Line   int `json:"line"`
	Col    int `json:"col"`
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Span covers [Start, End) of the source.
type Span struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Diagnostic is one problem found in a level file.
type Diagnostic struct {
	Source  string `json:"source"`
	Span    Span   `json:"span"`
	Token   string `json:"token,omitempty"`
	Message string `json:"message"`
	Label   string `json:"label,omitempty"`
	Help    string `json:"help,omitempty"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%s: %s", d.Source, d.Span.Start, d.Message)
}

// Render prints the diagnostic with the offending source line and a caret
// underline. text is the full source the diagnostic was produced from.
func (d Diagnostic) Render(text string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "error: %s\n", d.Message)
	fmt.Fprintf(&b, " --> %s:%s\n", d.Source, d.Span.Start)

	line, ok := sourceLine(text, d.Span.Start.Line)
	if ok {
		gutter := fmt.Sprintf("%d", d.Span.Start.Line)
		pad := strings.Repeat(" ", len(gutter))
		fmt.Fprintf(&b, "%s |\n", pad)
		fmt.Fprintf(&b, "%s | %s\n", gutter, strings.ReplaceAll(line, "\t", " "))

		width := 1
		if d.Span.End.Line == d.Span.Start.Line && d.Span.End.Col > d.Span.Start.Col {
			width = d.Span.End.Col - d.Span.Start.Col
		}
		lineLen := utf8.RuneCountInString(line)
		if d.Span.Start.Col-1+width > lineLen+1 {
			width = max(1, lineLen+1-(d.Span.Start.Col-1))
		}
		fmt.Fprintf(&b, "%s | %s%s", pad, strings.Repeat(" ", max(0, d.Span.Start.Col-1)), strings.Repeat("^", width))
		if d.Label != "" {
			fmt.Fprintf(&b, " %s", d.Label)
		}
		b.WriteString("\n")
	}
	if d.Help != "" {
		fmt.Fprintf(&b, "  = help: %s\n", d.Help)
	}
	return b.String()
}

func sourceLine(text string, n int) (string, bool) {
	if n < 1 {
		return "", false
	}
	for i := 1; ; i++ {
		idx := strings.IndexByte(text, '\n')
		if i == n {
			if idx < 0 {
				return strings.TrimSuffix(text, "\r"), true
			}
			return strings.TrimSuffix(text[:idx], "\r"), true
		}
		if idx < 0 {
			return "", false
		}
		text = text[idx+1:]
	}
}

// ParseError is returned by Parse and ParseDocument. It always holds at
// least one diagnostic.
type ParseError struct {
	Source      string
	Diagnostics []Diagnostic

	text string
}

func (e *ParseError) Error() string {
	if len(e.Diagnostics) == 0 {
		return fmt.Sprintf("levels: parse %s: invalid level", e.Source)
	}
	msg := fmt.Sprintf("levels: parse %s", e.Diagnostics[0])
	if n := len(e.Diagnostics) - 1; n > 0 {
		msg += fmt.Sprintf(" (and %d more)", n)
	}
	return msg
}

// Render renders every diagnostic against the source text.
func (e *ParseError) Render() string {
	var b strings.Builder
	for i, d := range e.Diagnostics {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(d.Render(e.text))
	}
	return b.String()
}

func newParseError(source, text string, diags ...Diagnostic) *ParseError {
	return &ParseError{Source: source, Diagnostics: diags, text: text}
}
