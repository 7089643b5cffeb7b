// Package diagnostics implements the structured diagnostic channel from
// spec.md §6: (severity, file, line, column, message) records, deduplicated
// and sorted by position, with an optional colourized terminal sink.
package diagnostics

import (
	"fmt"
	"sort"

	"github.com/ArmindoFlores/MineScript2/internal/token"
)

// Severity is one of error, warning, info (spec.md §6).
type Severity int

const (
	Info Severity = iota
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	default:
		return "info"
	}
}

// Code is a short mnemonic identifying an error/warning kind (spec.md §7).
type Code string

const (
	ErrNestedFunction       Code = "E001"
	ErrDuplicateFunction    Code = "E002"
	ErrRedefinition         Code = "E003"
	ErrBuiltinArity         Code = "E004"
	ErrUndeclaredVariable   Code = "E005"
	ErrTypeMismatch         Code = "E006"
	ErrNonIntIndex          Code = "E007"
	ErrAssignRuntimeToConst Code = "E008"
	ErrNotCompileTime       Code = "E009"
	ErrBreakOutsideLoop     Code = "E010"
	ErrReturnOutsideFn      Code = "E011"
	ErrCodeOutsideFunction  Code = "E012"
	ErrVoidReturnsValue     Code = "E013"
	ErrNonVoidMissingReturn Code = "E014"
	ErrPrintArgType         Code = "E015"
	ErrUndefinedFunction    Code = "E016"
	ErrSyntax               Code = "E017"

	WarnAlwaysFalse Code = "W001"
	WarnAlwaysTrue  Code = "W002"
)

// DiagnosticError is both a rich diagnostic record and a Go error, so it
// can be returned/wrapped through ordinary error-handling paths while still
// carrying the structured fields the CLI and tests need.
type DiagnosticError struct {
	Code     Code
	Severity Severity
	File     string
	Pos      token.Position
	Message  string
}

func New(code Code, sev Severity, file string, pos token.Position, format string, args ...interface{}) *DiagnosticError {
	return &DiagnosticError{
		Code:     code,
		Severity: sev,
		File:     file,
		Pos:      pos,
		Message:  fmt.Sprintf(format, args...),
	}
}

func (e *DiagnosticError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s: [%s] %s", e.File, e.Pos.Line, e.Pos.Column, e.Severity, e.Code, e.Message)
}

// IsError reports whether this diagnostic should abort compilation.
func (e *DiagnosticError) IsError() bool {
	return e.Severity == Error
}

// Sink accumulates diagnostics in emission order, deduplicating by
// position+code the way funvibe-funxy's walker.addError does, and can
// render them sorted for deterministic output.
type Sink struct {
	byKey map[string]*DiagnosticError
	order []string
}

func NewSink() *Sink {
	return &Sink{byKey: make(map[string]*DiagnosticError)}
}

func (s *Sink) Add(d *DiagnosticError) {
	key := fmt.Sprintf("%d:%d:%s", d.Pos.Line, d.Pos.Column, d.Code)
	if _, exists := s.byKey[key]; !exists {
		s.order = append(s.order, key)
	}
	s.byKey[key] = d
}

// HasErrors reports whether any error-severity diagnostic was recorded.
func (s *Sink) HasErrors() bool {
	for _, d := range s.byKey {
		if d.IsError() {
			return true
		}
	}
	return false
}

// All returns every diagnostic sorted by (line, column) for determinism.
func (s *Sink) All() []*DiagnosticError {
	result := make([]*DiagnosticError, 0, len(s.byKey))
	for _, key := range s.order {
		result = append(result, s.byKey[key])
	}
	sort.SliceStable(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.Pos.Line != b.Pos.Line {
			return a.Pos.Line < b.Pos.Line
		}
		return a.Pos.Column < b.Pos.Column
	})
	return result
}
