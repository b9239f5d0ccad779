package builder

import (
	"github.com/sourcemap-scopes/scopesmap/internal/diag"
	"github.com/sourcemap-scopes/scopesmap/internal/ident"
	"github.com/sourcemap-scopes/scopesmap/internal/loc"
	"github.com/sourcemap-scopes/scopesmap/internal/scopes"
)

// SafeScopeInfoBuilder wraps ScopeInfoBuilder with the precondition checks
// the permissive builder skips, surfacing each violation as a
// *diag.RangedError the first time it happens rather than silently
// dropping the call. Once Err returns non-nil every further method is a
// no-op, so a caller can make an uninterrupted chain of calls and check
// the error once at the end.
type SafeScopeInfoBuilder struct {
	b           *ScopeInfoBuilder
	err         error
	diagnostics *diag.Handler
}

// NewSafeScopeInfoBuilder returns an empty validating builder. diagnostics,
// if non-nil, receives an info-level diagnostic for each variable name that
// doesn't lex as a single JS identifier; this never fails the build.
func NewSafeScopeInfoBuilder(diagnostics *diag.Handler) *SafeScopeInfoBuilder {
	return &SafeScopeInfoBuilder{b: NewScopeInfoBuilder(), diagnostics: diagnostics}
}

// Err returns the first precondition violation encountered, if any.
func (b *SafeScopeInfoBuilder) Err() error { return b.err }

func (b *SafeScopeInfoBuilder) fail(code diag.Code, pos loc.Position, text string) {
	if b.err == nil {
		b.err = diag.At(code, pos, text)
	}
}

func (b *SafeScopeInfoBuilder) failAt(code diag.Code, text string) {
	if b.err == nil {
		b.err = diag.New(code, text)
	}
}

// AddNullScope mirrors ScopeInfoBuilder.AddNullScope, rejecting it while a
// scope is open.
func (b *SafeScopeInfoBuilder) AddNullScope() *SafeScopeInfoBuilder {
	if b.err != nil {
		return b
	}
	if b.b.CurrentScope() != nil {
		b.failAt(diag.ErrUnmatchedScopeEnd, "cannot add a null scope while a scope is open")
		return b
	}
	b.b.AddNullScope()
	return b
}

// StartScope mirrors ScopeInfoBuilder.StartScope, rejecting a position that
// precedes the current scope's own start or its previous sibling's end.
func (b *SafeScopeInfoBuilder) StartScope(pos loc.Position) *SafeScopeInfoBuilder {
	if b.err != nil {
		return b
	}
	if parent := b.b.CurrentScope(); parent != nil {
		if loc.Less(pos, parent.Start) {
			b.fail(diag.ErrPositionOutOfOrder, pos, "child scope starts before its parent")
			return b
		}
		if n := len(parent.Children); n > 0 {
			if loc.Less(pos, parent.Children[n-1].End) {
				b.fail(diag.ErrPositionOutOfOrder, pos, "sibling scope starts before the previous sibling ends")
				return b
			}
		}
	}
	b.b.StartScope(pos)
	return b
}

// EndScope mirrors ScopeInfoBuilder.EndScope, rejecting a call with no open
// scope or an end position preceding the scope's own start.
func (b *SafeScopeInfoBuilder) EndScope(pos loc.Position) *SafeScopeInfoBuilder {
	if b.err != nil {
		return b
	}
	cur := b.b.CurrentScope()
	if cur == nil {
		b.fail(diag.ErrUnmatchedScopeEnd, pos, "no open scope to end")
		return b
	}
	if loc.Less(pos, cur.Start) {
		b.fail(diag.ErrPositionOutOfOrder, pos, "scope ends before it starts")
		return b
	}
	b.b.EndScope(pos)
	return b
}

// CurrentScope returns the innermost open scope, or nil.
func (b *SafeScopeInfoBuilder) CurrentScope() *scopes.OriginalScope { return b.b.CurrentScope() }

// LastScope returns the most recently closed top-level scope, or nil.
func (b *SafeScopeInfoBuilder) LastScope() *scopes.OriginalScope { return b.b.LastScope() }

// SetScopeName mirrors ScopeInfoBuilder.SetScopeName, rejecting it with no
// scope open.
func (b *SafeScopeInfoBuilder) SetScopeName(name string) *SafeScopeInfoBuilder {
	if b.err != nil {
		return b
	}
	if b.b.CurrentScope() == nil {
		b.failAt(diag.ErrUnmatchedScopeEnd, "no open scope to name")
		return b
	}
	b.b.SetScopeName(name)
	return b
}

// SetScopeKind mirrors ScopeInfoBuilder.SetScopeKind, rejecting it with no
// scope open.
func (b *SafeScopeInfoBuilder) SetScopeKind(kind string) *SafeScopeInfoBuilder {
	if b.err != nil {
		return b
	}
	if b.b.CurrentScope() == nil {
		b.failAt(diag.ErrUnmatchedScopeEnd, "no open scope to set kind on")
		return b
	}
	b.b.SetScopeKind(kind)
	return b
}

// SetScopeIsStackFrame mirrors ScopeInfoBuilder.SetScopeIsStackFrame,
// rejecting it with no scope open.
func (b *SafeScopeInfoBuilder) SetScopeIsStackFrame(v bool) *SafeScopeInfoBuilder {
	if b.err != nil {
		return b
	}
	if b.b.CurrentScope() == nil {
		b.failAt(diag.ErrUnmatchedScopeEnd, "no open scope to mark a stack frame")
		return b
	}
	b.b.SetScopeIsStackFrame(v)
	return b
}

// SetScopeVariables mirrors ScopeInfoBuilder.SetScopeVariables, rejecting
// it with no scope open.
func (b *SafeScopeInfoBuilder) SetScopeVariables(vars []string) *SafeScopeInfoBuilder {
	if b.err != nil {
		return b
	}
	if b.b.CurrentScope() == nil {
		b.failAt(diag.ErrUnmatchedScopeEnd, "no open scope to set variables on")
		return b
	}
	if b.diagnostics != nil {
		for _, v := range vars {
			if !ident.Looks(v) {
				b.diagnostics.Info(diag.Newf(diag.WarnSuspiciousIdentifier, "variable name %q does not look like a single identifier", v))
			}
		}
	}
	b.b.SetScopeVariables(vars)
	return b
}

// AddNullRange mirrors ScopeInfoBuilder.AddNullRange, rejecting it while a
// range is open.
func (b *SafeScopeInfoBuilder) AddNullRange() *SafeScopeInfoBuilder {
	if b.err != nil {
		return b
	}
	if b.b.CurrentRange() != nil {
		b.failAt(diag.ErrUnmatchedRangeEnd, "cannot add a null range while a range is open")
		return b
	}
	b.b.AddNullRange()
	return b
}

// StartRange mirrors ScopeInfoBuilder.StartRange, rejecting an out-of-order
// position the same way StartScope does.
func (b *SafeScopeInfoBuilder) StartRange(pos loc.Position) *SafeScopeInfoBuilder {
	if b.err != nil {
		return b
	}
	if parent := b.b.CurrentRange(); parent != nil {
		if loc.Less(pos, parent.Start) {
			b.fail(diag.ErrPositionOutOfOrder, pos, "child range starts before its parent")
			return b
		}
		if n := len(parent.Children); n > 0 {
			if loc.Less(pos, parent.Children[n-1].End) {
				b.fail(diag.ErrPositionOutOfOrder, pos, "sibling range starts before the previous sibling ends")
				return b
			}
		}
	}
	b.b.StartRange(pos)
	return b
}

// EndRange mirrors ScopeInfoBuilder.EndRange, rejecting a call with no open
// range or an end preceding the range's own start.
func (b *SafeScopeInfoBuilder) EndRange(pos loc.Position) *SafeScopeInfoBuilder {
	if b.err != nil {
		return b
	}
	cur := b.b.CurrentRange()
	if cur == nil {
		b.fail(diag.ErrUnmatchedRangeEnd, pos, "no open range to end")
		return b
	}
	if loc.Less(pos, cur.Start) {
		b.fail(diag.ErrPositionOutOfOrder, pos, "range ends before it starts")
		return b
	}
	b.b.EndRange(pos)
	return b
}

// CurrentRange returns the innermost open range, or nil.
func (b *SafeScopeInfoBuilder) CurrentRange() *scopes.GeneratedRange { return b.b.CurrentRange() }

// SetRangeDefinitionScope mirrors ScopeInfoBuilder.SetRangeDefinitionScope,
// rejecting it with no range open.
func (b *SafeScopeInfoBuilder) SetRangeDefinitionScope(s *scopes.OriginalScope) *SafeScopeInfoBuilder {
	if b.err != nil {
		return b
	}
	if b.b.CurrentRange() == nil {
		b.failAt(diag.ErrUnmatchedRangeEnd, "no open range to set a definition scope on")
		return b
	}
	b.b.SetRangeDefinitionScope(s)
	return b
}

// SetRangeIsStackFrame mirrors ScopeInfoBuilder.SetRangeIsStackFrame,
// rejecting it with no range open.
func (b *SafeScopeInfoBuilder) SetRangeIsStackFrame(v bool) *SafeScopeInfoBuilder {
	if b.err != nil {
		return b
	}
	if b.b.CurrentRange() == nil {
		b.failAt(diag.ErrUnmatchedRangeEnd, "no open range to mark a stack frame")
		return b
	}
	b.b.SetRangeIsStackFrame(v)
	return b
}

// SetRangeIsHidden mirrors ScopeInfoBuilder.SetRangeIsHidden, rejecting it
// with no range open.
func (b *SafeScopeInfoBuilder) SetRangeIsHidden(v bool) *SafeScopeInfoBuilder {
	if b.err != nil {
		return b
	}
	if b.b.CurrentRange() == nil {
		b.failAt(diag.ErrUnmatchedRangeEnd, "no open range to hide")
		return b
	}
	b.b.SetRangeIsHidden(v)
	return b
}

// SetRangeValues mirrors ScopeInfoBuilder.SetRangeValues, rejecting a call
// with no range open, no definition scope set yet, or a values length that
// does not match the definition scope's variable count.
func (b *SafeScopeInfoBuilder) SetRangeValues(values []scopes.Binding) *SafeScopeInfoBuilder {
	if b.err != nil {
		return b
	}
	cur := b.b.CurrentRange()
	if cur == nil {
		b.failAt(diag.ErrUnmatchedRangeEnd, "no open range to set values on")
		return b
	}
	if cur.OriginalScope == nil {
		b.failAt(diag.ErrValuesWithoutDefinitionScope, "cannot set values before a definition scope")
		return b
	}
	if len(values) != len(cur.OriginalScope.Variables) {
		b.failAt(diag.ErrBindingsCountMismatch, "values length does not match the definition scope's variable count")
		return b
	}
	for _, v := range values {
		if v.Kind != scopes.BindingSubRanges || len(v.SubRanges) == 0 {
			continue
		}
		prevTo := cur.Start
		for i, tile := range v.SubRanges {
			if i > 0 && loc.Less(tile.To, prevTo) {
				b.failAt(diag.ErrSubRangeTiling, "sub-range bindings are not in ascending order")
				return b
			}
			prevTo = tile.To
		}
		if last := v.SubRanges[len(v.SubRanges)-1]; !loc.LessOrEqual(last.To, cur.End) && cur.End != (loc.Position{}) {
			b.failAt(diag.ErrSubRangeTiling, "sub-range bindings extend past the end of the range")
			return b
		}
	}
	b.b.SetRangeValues(values)
	return b
}

// SetRangeCallSite mirrors ScopeInfoBuilder.SetRangeCallSite, rejecting a
// call with no range open or a range that is itself a stack frame (I6: a
// call site implies the range is an inlined callee, not the frame that
// made the call).
func (b *SafeScopeInfoBuilder) SetRangeCallSite(pos loc.OriginalPosition) *SafeScopeInfoBuilder {
	if b.err != nil {
		return b
	}
	cur := b.b.CurrentRange()
	if cur == nil {
		b.failAt(diag.ErrUnmatchedRangeEnd, "no open range to set a call site on")
		return b
	}
	if cur.IsStackFrame {
		b.failAt(diag.ErrOrphanCallSite, "a stack frame range cannot carry a call site")
		return b
	}
	b.b.SetRangeCallSite(pos)
	return b
}

// Build returns the assembled ScopeInfo, failing if any scope or range is
// still open.
func (b *SafeScopeInfoBuilder) Build() (*scopes.ScopeInfo, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.b.CurrentScope() != nil {
		return nil, diag.New(diag.ErrUnclosedAtEOF, "a scope is still open at build time")
	}
	if b.b.CurrentRange() != nil {
		return nil, diag.New(diag.ErrUnclosedAtEOF, "a range is still open at build time")
	}
	return b.b.Build(), nil
}
