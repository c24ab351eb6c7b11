package parsing

import (
	"fmt"
	"strings"

	"github.com/NickyBoy89/propmigrate/nodeutil"
)

// SyntaxError reports the places where a file could not be parsed cleanly.
// The parser recovers from these, so the unit returned alongside the error is
// still usable, with the broken regions left opaque
type SyntaxError struct {
	Path     string
	Problems []nodeutil.Problem
}

func (e *SyntaxError) Error() string {
	if len(e.Problems) == 1 {
		return fmt.Sprintf("[SyntaxError] %s:%s", e.Path, describe(e.Problems[0]))
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[SyntaxError] %s: %d problem(s):", e.Path, len(e.Problems)))
	for _, problem := range e.Problems {
		sb.WriteString("\n- ")
		sb.WriteString(describe(problem))
	}
	return sb.String()
}

func describe(p nodeutil.Problem) string {
	if p.Missing {
		return fmt.Sprintf("%d:%d missing %q", p.Line, p.Column, p.Text)
	}
	text := p.Text
	if len(text) > 40 {
		text = text[:40] + "..."
	}
	return fmt.Sprintf("%d:%d unexpected %q", p.Line, p.Column, text)
}

// ConversionError is raised when a node is shaped differently than the
// converter expects
type ConversionError struct {
	Path string
	Msg  string
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("[ConversionError] %s: %s", e.Path, e.Msg)
}
