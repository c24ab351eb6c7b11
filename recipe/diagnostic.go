package recipe

import (
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
)

var (
	// ErrMissingSetOverload means that the wrapper type has no one-parameter
	// `set` method, so calls cannot be rewritten to use it
	ErrMissingSetOverload = errors.New("wrapper type has no single-parameter set method")
	// ErrUnsupportedPrimitive means that a primitive has no entry in the boxing
	// table. This is a defect in the table, and stops the run
	ErrUnsupportedPrimitive = errors.New("primitive type cannot be boxed")
)

// Severity ranks how much a diagnostic matters
type Severity int

const (
	Info Severity = iota
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

// Diagnostic is a problem found while running a recipe, that did not stop the run
type Diagnostic struct {
	Severity Severity
	// Recipe is the name of the recipe that reported the problem
	Recipe string
	Path   string
	// Type and Property name the property involved, if any
	Type     string
	Property string
	Message  string
}

func (d Diagnostic) String() string {
	var sb strings.Builder
	sb.WriteString(d.Path)
	sb.WriteString(": ")
	sb.WriteString(d.Severity.String())
	if d.Type != "" {
		sb.WriteString(": ")
		sb.WriteString(d.Type)
		if d.Property != "" {
			sb.WriteByte('.')
			sb.WriteString(d.Property)
		}
	}
	sb.WriteString(": ")
	sb.WriteString(d.Message)
	return sb.String()
}

func (d Diagnostic) log() {
	entry := log.WithFields(log.Fields{
		"recipe": d.Recipe,
		"path":   d.Path,
	})
	if d.Type != "" {
		entry = entry.WithField("type", d.Type)
	}
	if d.Property != "" {
		entry = entry.WithField("property", d.Property)
	}
	switch d.Severity {
	case Error:
		entry.Error(d.Message)
	case Warning:
		entry.Warn(d.Message)
	default:
		entry.Info(d.Message)
	}
}
