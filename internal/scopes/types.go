// Package scopes holds the in-memory tree representation shared by the
// builder, encoder and decoder: OriginalScope/GeneratedRange nodes linked by
// parent back-references (as the source representation does), the tag
// table and per-tag flag bits that define the wire grammar, and the two
// differential state records (scope state, range state) that both the
// encoder and the decoder thread through a single top-level tree's worth of
// items. Keeping the state-record shapes and position codecs here, rather
// than duplicating them in the encoder and decoder packages, is the single
// source of truth the call-site cascading rule and the start/end
// compression rule both depend on.
package scopes

import "github.com/sourcemap-scopes/scopesmap/internal/loc"

// OriginalScope is one node of the authored-source lexical scope tree.
type OriginalScope struct {
	Start, End loc.Position

	Name    string
	HasName bool
	Kind    string
	HasKind bool

	IsStackFrame bool
	Variables    []string

	Children []*OriginalScope
	Parent   *OriginalScope

	// ID is assigned in pre-order as OSCOPE_START items are emitted or
	// parsed; it is how a GeneratedRange's definition scope is referenced
	// on the wire. -1 means "not yet numbered".
	ID int
}

// BindingKind discriminates the three-way Binding union.
type BindingKind int

const (
	// BindingUnavailable means the variable has no recoverable value in
	// the owning range.
	BindingUnavailable BindingKind = iota
	// BindingExpression means Expression holds a value good for the whole range.
	BindingExpression
	// BindingSubRanges means SubRanges tiles the owning range.
	BindingSubRanges
)

// Binding is the per-variable, per-range value: an expression, absence, or
// a sequence of SubRangeBinding tiling the range. Modeled as a
// discriminated union (not a length-1-means-atomic convention) because the
// wire format uses two different tags for the atomic and sub-range cases.
type Binding struct {
	Kind       BindingKind
	Expression string
	SubRanges  []SubRangeBinding
}

// SubRangeBinding is one tile of a sub-range Binding.
type SubRangeBinding struct {
	HasValue   bool
	Value      string
	From, To   loc.Position
}

// GeneratedRange is one node of the generated-code range tree.
type GeneratedRange struct {
	Start, End loc.Position

	OriginalScope *OriginalScope

	IsStackFrame bool
	IsHidden     bool

	CallSite    *loc.OriginalPosition
	HasCallSite bool

	// Values holds one Binding per variable of OriginalScope, in the same
	// order, or is empty when the range carries no value information.
	Values []Binding

	Children []*GeneratedRange
	Parent   *GeneratedRange
}

// ScopeInfo is the fully decoded/built tree pair: one top-level scope slot
// per source (nil entries are the null placeholders from spec §3), plus the
// flat ordered list of top-level generated ranges.
type ScopeInfo struct {
	Scopes []*OriginalScope
	Ranges []*GeneratedRange
}
