package scopes

import (
	"strings"

	"github.com/sourcemap-scopes/scopesmap/internal/diag"
	"github.com/sourcemap-scopes/scopesmap/internal/loc"
	"github.com/sourcemap-scopes/scopesmap/internal/vlq"
)

// ScopeState is the differential state threaded through one top-level
// scope tree's worth of items. It is reset to zero at the start of each
// top-level scope (including null placeholders, which don't touch it).
type ScopeState struct {
	Line        uint32
	Column      uint32
	NameIdx     int64
	KindIdx     int64
	VariableIdx int64
}

// Reset zeroes the state, as happens at the start of each top-level scope.
func (s *ScopeState) Reset() { *s = ScopeState{} }

// RangeState is the differential state threaded through one top-level
// range tree's worth of items. It is reset to zero at the start of each
// top-level range.
type RangeState struct {
	Line   uint32
	Column uint32

	DefScopeIdx int64

	CallSiteSourceIdx int64
	CallSiteLine      int64
	CallSiteColumn    int64
}

// Reset zeroes the state, as happens at the start of each top-level range.
func (s *RangeState) Reset() { *s = RangeState{} }

// EncodeScopePosition appends the OSCOPE_START/OSCOPE_END position fields:
// an unsigned Δline against state.Line, then an absolute column. Column is
// never differentially encoded for scopes (state.Column is tracked only so
// callers can sanity-check it, per spec §4.4).
func EncodeScopePosition(sb *strings.Builder, state *ScopeState, pos loc.Position) error {
	dLine := int64(pos.Line) - int64(state.Line)
	if dLine < 0 {
		return diag.At(diag.ErrPositionOutOfOrder, pos, "scope position precedes previous position")
	}
	vlq.EncodeUnsigned(sb, uint64(dLine))
	vlq.EncodeUnsigned(sb, uint64(pos.Column))
	state.Line = pos.Line
	state.Column = pos.Column
	return nil
}

// DecodeScopePosition is the inverse of EncodeScopePosition.
func DecodeScopePosition(it *vlq.TokenIterator, state *ScopeState) (loc.Position, error) {
	dLine, err := it.NextUnsignedVLQ()
	if err != nil {
		return loc.Position{}, err
	}
	column, err := it.NextUnsignedVLQ()
	if err != nil {
		return loc.Position{}, err
	}
	state.Line = uint32(int64(state.Line) + int64(dLine))
	state.Column = uint32(column)
	return loc.Position{Line: state.Line, Column: state.Column}, nil
}

// EncodeRangePosition appends the GRANGE_START/GRANGE_END position fields,
// choosing the compressed one-VLQ form (Δcolumn against state.Column) when
// pos is on state.Line, or the two-VLQ form (Δline, absolute column)
// otherwise. It reports which form it used so GRANGE_START can fold that
// into its flags byte; GRANGE_END has no flags byte and instead recovers
// the same boolean on decode by checking whether a second VLQ remains in
// the item (see DecodeRangeEndPosition).
func EncodeRangePosition(sb *strings.Builder, state *RangeState, pos loc.Position) (hasLine bool, err error) {
	lineDelta := int64(pos.Line) - int64(state.Line)
	if lineDelta < 0 {
		return false, diag.At(diag.ErrPositionOutOfOrder, pos, "range position precedes previous position")
	}
	hasLine = lineDelta != 0
	if hasLine {
		vlq.EncodeUnsigned(sb, uint64(lineDelta))
		vlq.EncodeUnsigned(sb, uint64(pos.Column))
	} else {
		columnDelta := int64(pos.Column) - int64(state.Column)
		if columnDelta < 0 {
			return false, diag.At(diag.ErrPositionOutOfOrder, pos, "range position precedes previous position")
		}
		vlq.EncodeUnsigned(sb, uint64(columnDelta))
	}
	state.Line = pos.Line
	state.Column = pos.Column
	return hasLine, nil
}

// DecodeRangeStartColumn reads the column field of a GRANGE_START item given
// hasLine as already decided by the item's flags byte: absolute when
// hasLine, a Δcolumn against state.Column otherwise. The Δline field (if
// hasLine) must already have been read into state.Line by the caller.
func DecodeRangeStartColumn(it *vlq.TokenIterator, state *RangeState, hasLine bool) (loc.Position, error) {
	column, err := it.NextUnsignedVLQ()
	if err != nil {
		return loc.Position{}, err
	}
	if hasLine {
		state.Column = uint32(column)
	} else {
		state.Column = uint32(int64(state.Column) + int64(column))
	}
	return loc.Position{Line: state.Line, Column: state.Column}, nil
}

// DecodeRangeEndPosition is the inverse of EncodeRangePosition for
// GRANGE_END, which carries no flags byte: it reads one VLQ, and only
// interprets it as Δline (expecting a second, absolute-column VLQ to
// follow) if the item's cursor still has more characters left; otherwise
// the single VLQ read is the Δcolumn form.
func DecodeRangeEndPosition(it *vlq.TokenIterator, state *RangeState) (loc.Position, error) {
	v1, err := it.NextUnsignedVLQ()
	if err != nil {
		return loc.Position{}, err
	}
	if it.HasNext() {
		v2, err := it.NextUnsignedVLQ()
		if err != nil {
			return loc.Position{}, err
		}
		state.Line = uint32(int64(state.Line) + int64(v1))
		state.Column = uint32(v2)
	} else {
		state.Column = uint32(int64(state.Column) + int64(v1))
	}
	return loc.Position{Line: state.Line, Column: state.Column}, nil
}

// EncodeSubRangeToPosition appends a GRANGE_SUBRANGE_BINDING item's
// position fields: an unconditional unsigned Δline against state.Line
// (even when zero) followed by an absolute column. Unlike GRANGE_START/END,
// this tag never compresses to one VLQ.
func EncodeSubRangeToPosition(sb *strings.Builder, state *RangeState, pos loc.Position) error {
	dLine := int64(pos.Line) - int64(state.Line)
	if dLine < 0 {
		return diag.At(diag.ErrPositionOutOfOrder, pos, "sub-range position precedes previous position")
	}
	vlq.EncodeUnsigned(sb, uint64(dLine))
	vlq.EncodeUnsigned(sb, uint64(pos.Column))
	state.Line = pos.Line
	state.Column = pos.Column
	return nil
}

// DecodeSubRangeToPosition is the inverse of EncodeSubRangeToPosition.
func DecodeSubRangeToPosition(it *vlq.TokenIterator, state *RangeState) (loc.Position, error) {
	dLine, err := it.NextUnsignedVLQ()
	if err != nil {
		return loc.Position{}, err
	}
	column, err := it.NextUnsignedVLQ()
	if err != nil {
		return loc.Position{}, err
	}
	state.Line = uint32(int64(state.Line) + int64(dLine))
	state.Column = uint32(column)
	return loc.Position{Line: state.Line, Column: state.Column}, nil
}

// EncodeCallSite appends the GRANGE_CALLSITE triplet, cascading to absolute
// values for the later fields whenever an earlier differential in the
// triplet is nonzero (spec §4.4): a nonzero ΔsourceIndex makes both line and
// column absolute; otherwise a nonzero Δline makes column absolute;
// otherwise column is itself a plain delta.
func EncodeCallSite(sb *strings.Builder, state *RangeState, cs loc.OriginalPosition) {
	dSource := int64(cs.SourceIndex) - state.CallSiteSourceIdx
	vlq.EncodeSigned(sb, dSource)
	if dSource != 0 {
		vlq.EncodeSigned(sb, int64(cs.Line))
		vlq.EncodeSigned(sb, int64(cs.Column))
		state.CallSiteSourceIdx = int64(cs.SourceIndex)
		state.CallSiteLine = int64(cs.Line)
		state.CallSiteColumn = int64(cs.Column)
		return
	}

	dLine := int64(cs.Line) - state.CallSiteLine
	vlq.EncodeSigned(sb, dLine)
	if dLine != 0 {
		vlq.EncodeSigned(sb, int64(cs.Column))
		state.CallSiteLine = int64(cs.Line)
		state.CallSiteColumn = int64(cs.Column)
		return
	}

	dColumn := int64(cs.Column) - state.CallSiteColumn
	vlq.EncodeSigned(sb, dColumn)
	state.CallSiteColumn = int64(cs.Column)
}

// DecodeCallSite is the inverse of EncodeCallSite.
func DecodeCallSite(it *vlq.TokenIterator, state *RangeState) (loc.OriginalPosition, error) {
	dSource, err := it.NextSignedVLQ()
	if err != nil {
		return loc.OriginalPosition{}, err
	}
	lineField, err := it.NextSignedVLQ()
	if err != nil {
		return loc.OriginalPosition{}, err
	}
	columnField, err := it.NextSignedVLQ()
	if err != nil {
		return loc.OriginalPosition{}, err
	}

	if dSource != 0 {
		state.CallSiteSourceIdx += dSource
		state.CallSiteLine = lineField
		state.CallSiteColumn = columnField
	} else if lineField != 0 {
		state.CallSiteLine += lineField
		state.CallSiteColumn = columnField
	} else {
		state.CallSiteColumn += columnField
	}

	return loc.OriginalPosition{
		Position:    loc.Position{Line: uint32(state.CallSiteLine), Column: uint32(state.CallSiteColumn)},
		SourceIndex: uint32(state.CallSiteSourceIdx),
	}, nil
}
