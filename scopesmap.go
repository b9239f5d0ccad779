// Package scopesmap implements the source-map scopes extension: a codec
// for recording an authored-source lexical scope tree, a generated-code
// range tree, inlined call sites and per-variable binding expressions
// inside the `scopes` field of a JSON source map.
package scopesmap

import (
	"github.com/sourcemap-scopes/scopesmap/internal/builder"
	"github.com/sourcemap-scopes/scopesmap/internal/decoder"
	"github.com/sourcemap-scopes/scopesmap/internal/diag"
	"github.com/sourcemap-scopes/scopesmap/internal/encoder"
	"github.com/sourcemap-scopes/scopesmap/internal/jsonmap"
	"github.com/sourcemap-scopes/scopesmap/internal/loc"
	"github.com/sourcemap-scopes/scopesmap/internal/scopes"
)

// Re-exported types so callers never need to import the internal packages
// directly.
type (
	Position          = loc.Position
	OriginalPosition  = loc.OriginalPosition
	OriginalScope     = scopes.OriginalScope
	GeneratedRange    = scopes.GeneratedRange
	Binding           = scopes.Binding
	BindingKind       = scopes.BindingKind
	SubRangeBinding   = scopes.SubRangeBinding
	ScopeInfo         = scopes.ScopeInfo
	ScopeInfoBuilder  = builder.ScopeInfoBuilder
	SafeScopeInfoBuilder = builder.SafeScopeInfoBuilder
	Mode              = decoder.Mode
	Handler           = diag.Handler
	RangedError       = diag.RangedError
)

const (
	BindingUnavailable = scopes.BindingUnavailable
	BindingExpression  = scopes.BindingExpression
	BindingSubRanges   = scopes.BindingSubRanges

	Strict = decoder.Strict
	Lax    = decoder.Lax
)

// NewScopeInfoBuilder returns a permissive builder for assembling a
// ScopeInfo by hand.
func NewScopeInfoBuilder() *ScopeInfoBuilder { return builder.NewScopeInfoBuilder() }

// NewSafeScopeInfoBuilder returns a validating builder for assembling a
// ScopeInfo by hand. diagnostics, if non-nil, collects advisory warnings
// (e.g. a variable name that doesn't look like a single identifier)
// without failing the build.
func NewSafeScopeInfoBuilder(diagnostics *Handler) *SafeScopeInfoBuilder {
	return builder.NewSafeScopeInfoBuilder(diagnostics)
}

// NewHandler returns an empty diagnostics handler for Decode's
// DecodeOptions.Diagnostics.
func NewHandler() *Handler { return diag.NewHandler() }

// Encode serializes info into m's `scopes` field, interning any new
// name/kind/variable/value strings into m.Names. info.Scopes must have the
// same length as m.Sources.
func Encode(info *ScopeInfo, m *jsonmap.SourceMapJSON) error {
	if len(info.Scopes) != len(m.Sources) {
		return diag.Newf(diag.ErrSourcesScopesLengthMismatch, "scope info has %d top-level scopes but the map has %d sources", len(info.Scopes), len(m.Sources))
	}
	names := scopes.NewNamesTable(m.Names)
	enc := encoder.New(names)
	s, err := enc.Encode(info)
	if err != nil {
		return err
	}
	m.Scopes = s
	m.Names = names.Names
	return nil
}

// DecodeOptions configures Decode.
type DecodeOptions struct {
	// Mode selects STRICT or LAX recovery. The zero value is Lax.
	Mode Mode
	// Diagnostics, if non-nil, accumulates what LAX mode silently
	// recovered from. Ignored in Strict mode.
	Diagnostics *Handler
}

// Decode parses m's `scopes` field into a ScopeInfo.
func Decode(m *jsonmap.SourceMapJSON, opts DecodeOptions) (*ScopeInfo, error) {
	names := scopes.NewNamesTable(m.Names)
	dec := decoder.New(names, decoder.Options{Mode: opts.Mode, Diagnostics: opts.Diagnostics})
	return dec.Decode(m.Scopes, len(m.Sources))
}

// DecodeIndex parses every section of an index source map, translating
// each section's generated-range positions by its offset before returning
// one ScopeInfo whose top-level scope slots and ranges are those of all
// sections concatenated in section order.
func DecodeIndex(m *jsonmap.IndexSourceMapJSON, opts DecodeOptions) (*ScopeInfo, error) {
	info := &ScopeInfo{}
	for i := range m.Sections {
		section := &m.Sections[i]
		sectionInfo, err := Decode(&section.Map, opts)
		if err != nil {
			return nil, err
		}
		for _, r := range sectionInfo.Ranges {
			offsetRangeTree(r, section.Offset)
			info.Ranges = append(info.Ranges, r)
		}
		info.Scopes = append(info.Scopes, sectionInfo.Scopes...)
	}
	return info, nil
}

func offsetRangeTree(r *GeneratedRange, offset Position) {
	if r == nil {
		return
	}
	r.Start = jsonmap.ApplyOffset(r.Start, offset)
	r.End = jsonmap.ApplyOffset(r.End, offset)
	for _, c := range r.Children {
		offsetRangeTree(c, offset)
	}
}
