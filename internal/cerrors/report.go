package cerrors

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sunholo/checkercore/internal/ast"
)

// Fix is an optional suggested remedy attached to a Report.
type Fix struct {
	Suggestion string `json:"suggestion"`
}

// Report is the canonical structured error produced by the checker.
// Mirrors the teacher's internal/errors.Report shape (internal/errors/report.go).
type Report struct {
	Schema  string         `json:"schema"` // always "checkercore.error/v1"
	Code    string         `json:"code"`
	Phase   string         `json:"phase"` // "check" for every error this package produces
	Message string         `json:"message"`
	Span    *ast.Span      `json:"span,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
	Fix     *Fix           `json:"fix,omitempty"`
}

// ReportError wraps a Report as an error so it survives errors.As unwrapping.
type ReportError struct {
	Rep *Report
}

func (e *ReportError) Error() string {
	if e.Rep == nil {
		return "unknown checker error"
	}
	return e.Rep.Code + ": " + e.Rep.Message
}

// AsReport extracts a Report from an error chain.
func AsReport(err error) (*Report, bool) {
	var re *ReportError
	if errors.As(err, &re) {
		return re.Rep, true
	}
	return nil, false
}

// WrapReport wraps a Report as an error.
func WrapReport(r *Report) error {
	if r == nil {
		return nil
	}
	return &ReportError{Rep: r}
}

// New builds a Report for the given code at the given span.
func New(code string, span *ast.Span, message string, data map[string]any) *Report {
	return &Report{
		Schema:  "checkercore.error/v1",
		Code:    code,
		Phase:   "check",
		Message: message,
		Span:    span,
		Data:    data,
	}
}

// WithFix attaches a suggested fix and returns the same Report for chaining.
func (r *Report) WithFix(suggestion string) *Report {
	r.Fix = &Fix{Suggestion: suggestion}
	return r
}

// ToJSON renders the report deterministically.
func (r *Report) ToJSON(compact bool) (string, error) {
	var data []byte
	var err error
	if compact {
		data, err = json.Marshal(r)
	} else {
		data, err = json.MarshalIndent(r, "", "  ")
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (r *Report) String() string {
	if r.Span != nil {
		return fmt.Sprintf("%s: %s: %s", r.Span.Start.String(), r.Code, r.Message)
	}
	return fmt.Sprintf("%s: %s", r.Code, r.Message)
}
