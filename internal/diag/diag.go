// Package diag provides the error taxonomy shared by the encoder, the safe
// builder and the decoder: a small set of named codes (structural,
// reference and semantic), a range-carrying error type pairing a Code with
// an optional loc.Position, and a Handler that the decoder's LAX mode uses
// to record what it silently recovered from without making recovery itself
// a failure.
package diag

import (
	"fmt"

	"github.com/sourcemap-scopes/scopesmap/internal/loc"
)

// Code identifies the kind of problem a RangedError reports.
type Code int

const (
	_ Code = iota

	// Input-shape errors: always fatal, both encode and decode.
	ErrSourcesScopesLengthMismatch
	ErrMalformedVLQ

	// Structural errors: fatal for encoder/safe builder, STRICT-only for decode.
	ErrUnmatchedScopeEnd
	ErrUnmatchedRangeEnd
	ErrOrphanScopeVars
	ErrOrphanRangeBindings
	ErrOrphanSubRangeBinding
	ErrOrphanCallSite
	ErrUnclosedAtEOF

	// Reference errors: fatal for encoder/safe builder, STRICT-only for decode.
	ErrNameIndexOutOfRange
	ErrKindIndexOutOfRange
	ErrVariableIndexOutOfRange
	ErrBindingIndexOutOfRange
	ErrUnknownDefinitionScope

	// Semantic errors: always fatal, both modes and both builders.
	ErrSubRangeTiling
	ErrBindingsCountMismatch
	ErrValuesWithoutDefinitionScope
	ErrPositionOutOfOrder
	ErrDuplicateSubRangeVariable

	// Advisory: never fatal, recorded as an Info diagnostic only.
	WarnSuspiciousIdentifier
)

var codeNames = map[Code]string{
	ErrSourcesScopesLengthMismatch:  "sources/scopes length mismatch",
	ErrMalformedVLQ:                 "malformed VLQ",
	ErrUnmatchedScopeEnd:            "unmatched scope end",
	ErrUnmatchedRangeEnd:            "unmatched range end",
	ErrOrphanScopeVars:              "orphan scope variables item",
	ErrOrphanRangeBindings:          "orphan range bindings item",
	ErrOrphanSubRangeBinding:        "orphan sub-range binding item",
	ErrOrphanCallSite:               "orphan call site item",
	ErrUnclosedAtEOF:                "unclosed scope or range at end of input",
	ErrNameIndexOutOfRange:          "name index out of range of names",
	ErrKindIndexOutOfRange:          "kind index out of range of names",
	ErrVariableIndexOutOfRange:      "variable index out of range of names",
	ErrBindingIndexOutOfRange:       "binding index out of range of names",
	ErrUnknownDefinitionScope:       "unknown definition scope index",
	ErrSubRangeTiling:               "sub-range bindings do not tile their range",
	ErrBindingsCountMismatch:        "values length does not match scope variables length",
	ErrValuesWithoutDefinitionScope: "values set without a definition scope",
	ErrPositionOutOfOrder:           "position out of order",
	ErrDuplicateSubRangeVariable:    "duplicate sub-range binding for variable",
	WarnSuspiciousIdentifier:        "name does not look like a single identifier",
}

func (c Code) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return fmt.Sprintf("diag.Code(%d)", int(c))
}

// RangedError is a codec error optionally anchored to a position in
// generated or authored source: calling code can errors.As for a
// *RangedError to recover the Code and the Pos, rather than string-matching
// the message.
type RangedError struct {
	Code Code
	Text string
	Pos  *loc.Position
}

func (e *RangedError) Error() string {
	if e.Pos != nil {
		return fmt.Sprintf("%s at %d:%d: %s", e.Code, e.Pos.Line, e.Pos.Column, e.Text)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Text)
}

// New builds a RangedError with no position.
func New(code Code, text string) *RangedError {
	return &RangedError{Code: code, Text: text}
}

// Newf builds a RangedError with no position from a format string.
func Newf(code Code, format string, args ...interface{}) *RangedError {
	return &RangedError{Code: code, Text: fmt.Sprintf(format, args...)}
}

// At builds a RangedError anchored to pos.
func At(code Code, pos loc.Position, text string) *RangedError {
	return &RangedError{Code: code, Text: text, Pos: &pos}
}

// Severity classifies a diagnostic recorded by a Handler.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return "unknown"
	}
}

// Handler accumulates non-fatal diagnostics produced while decoding in LAX
// mode (or while the permissive builder notices something questionable).
// Unlike the encoder/safe-builder error path, nothing appended here aborts
// the operation in progress; Handler exists purely so a caller can ask
// "what did LAX silently paper over?" after the fact.
type Handler struct {
	warnings []*RangedError
	infos    []*RangedError
}

// NewHandler returns an empty Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// Warn records a recovered-from problem.
func (h *Handler) Warn(err *RangedError) {
	if h == nil || err == nil {
		return
	}
	h.warnings = append(h.warnings, err)
}

// Info records a purely informational observation (e.g. a lexically
// suspicious but not rejected variable name).
func (h *Handler) Info(err *RangedError) {
	if h == nil || err == nil {
		return
	}
	h.infos = append(h.infos, err)
}

// Warnings returns every warning recorded so far.
func (h *Handler) Warnings() []*RangedError {
	if h == nil {
		return nil
	}
	return h.warnings
}

// Infos returns every informational diagnostic recorded so far.
func (h *Handler) Infos() []*RangedError {
	if h == nil {
		return nil
	}
	return h.infos
}

// HasDiagnostics reports whether anything at all was recorded.
func (h *Handler) HasDiagnostics() bool {
	return h != nil && (len(h.warnings) > 0 || len(h.infos) > 0)
}
