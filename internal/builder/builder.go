// Package builder provides the two ways to construct a scopes.ScopeInfo by
// hand rather than decoding one off the wire: ScopeInfoBuilder, a permissive
// state machine that silently no-ops on a call that doesn't make sense in
// its current state, and (in safebuilder.go) SafeScopeInfoBuilder, a
// validating wrapper over it that turns the same situations into
// *diag.RangedError instead.
package builder

import (
	"github.com/sourcemap-scopes/scopesmap/internal/loc"
	"github.com/sourcemap-scopes/scopesmap/internal/scopes"
)

// ScopeInfoBuilder assembles a scopes.ScopeInfo one call at a time. Every
// method is chainable. Calls that violate a tree invariant (closing a scope
// that was never opened, setting a range's values before it has a
// definition scope, and so on) are silently ignored, mirroring the
// permissive half of the codec's two-builder design.
type ScopeInfoBuilder struct {
	info *scopes.ScopeInfo

	scopeStack []*scopes.OriginalScope
	rangeStack []*scopes.GeneratedRange
}

// NewScopeInfoBuilder returns an empty builder.
func NewScopeInfoBuilder() *ScopeInfoBuilder {
	return &ScopeInfoBuilder{info: &scopes.ScopeInfo{}}
}

// AddNullScope appends a null placeholder top-level scope slot, for a
// source with no recorded scope information.
func (b *ScopeInfoBuilder) AddNullScope() *ScopeInfoBuilder {
	if len(b.scopeStack) > 0 {
		return b
	}
	b.info.Scopes = append(b.info.Scopes, nil)
	return b
}

// StartScope opens a new OriginalScope at pos, nested under the current
// scope if one is open, or as a new top-level scope otherwise.
func (b *ScopeInfoBuilder) StartScope(pos loc.Position) *ScopeInfoBuilder {
	s := &scopes.OriginalScope{Start: pos, ID: -1}
	if len(b.scopeStack) > 0 {
		parent := b.scopeStack[len(b.scopeStack)-1]
		s.Parent = parent
		parent.Children = append(parent.Children, s)
	} else {
		b.info.Scopes = append(b.info.Scopes, s)
	}
	b.scopeStack = append(b.scopeStack, s)
	return b
}

// EndScope closes the innermost open scope. A call with none open is a
// no-op.
func (b *ScopeInfoBuilder) EndScope(pos loc.Position) *ScopeInfoBuilder {
	if len(b.scopeStack) == 0 {
		return b
	}
	cur := b.scopeStack[len(b.scopeStack)-1]
	cur.End = pos
	b.scopeStack = b.scopeStack[:len(b.scopeStack)-1]
	return b
}

// CurrentScope returns the innermost open scope, or nil.
func (b *ScopeInfoBuilder) CurrentScope() *scopes.OriginalScope {
	if len(b.scopeStack) == 0 {
		return nil
	}
	return b.scopeStack[len(b.scopeStack)-1]
}

// LastScope returns the most recently closed top-level scope, or nil if
// none has been closed yet.
func (b *ScopeInfoBuilder) LastScope() *scopes.OriginalScope {
	for i := len(b.info.Scopes) - 1; i >= 0; i-- {
		if b.info.Scopes[i] != nil {
			return b.info.Scopes[i]
		}
	}
	return nil
}

// SetScopeName sets the current scope's name. A no-op with no scope open.
func (b *ScopeInfoBuilder) SetScopeName(name string) *ScopeInfoBuilder {
	if cur := b.CurrentScope(); cur != nil {
		cur.HasName = true
		cur.Name = name
	}
	return b
}

// SetScopeKind sets the current scope's kind. A no-op with no scope open.
func (b *ScopeInfoBuilder) SetScopeKind(kind string) *ScopeInfoBuilder {
	if cur := b.CurrentScope(); cur != nil {
		cur.HasKind = true
		cur.Kind = kind
	}
	return b
}

// SetScopeIsStackFrame marks the current scope a stack frame. A no-op with
// no scope open.
func (b *ScopeInfoBuilder) SetScopeIsStackFrame(v bool) *ScopeInfoBuilder {
	if cur := b.CurrentScope(); cur != nil {
		cur.IsStackFrame = v
	}
	return b
}

// SetScopeVariables replaces the current scope's variable list. A no-op
// with no scope open.
func (b *ScopeInfoBuilder) SetScopeVariables(vars []string) *ScopeInfoBuilder {
	if cur := b.CurrentScope(); cur != nil {
		cur.Variables = append([]string(nil), vars...)
	}
	return b
}

// AddNullRange appends a top-level nil range slot.
func (b *ScopeInfoBuilder) AddNullRange() *ScopeInfoBuilder {
	if len(b.rangeStack) > 0 {
		return b
	}
	b.info.Ranges = append(b.info.Ranges, nil)
	return b
}

// StartRange opens a new GeneratedRange at pos.
func (b *ScopeInfoBuilder) StartRange(pos loc.Position) *ScopeInfoBuilder {
	r := &scopes.GeneratedRange{Start: pos}
	if len(b.rangeStack) > 0 {
		parent := b.rangeStack[len(b.rangeStack)-1]
		r.Parent = parent
		parent.Children = append(parent.Children, r)
	} else {
		b.info.Ranges = append(b.info.Ranges, r)
	}
	b.rangeStack = append(b.rangeStack, r)
	return b
}

// EndRange closes the innermost open range. A no-op with none open.
func (b *ScopeInfoBuilder) EndRange(pos loc.Position) *ScopeInfoBuilder {
	if len(b.rangeStack) == 0 {
		return b
	}
	cur := b.rangeStack[len(b.rangeStack)-1]
	cur.End = pos
	b.rangeStack = b.rangeStack[:len(b.rangeStack)-1]
	return b
}

// CurrentRange returns the innermost open range, or nil.
func (b *ScopeInfoBuilder) CurrentRange() *scopes.GeneratedRange {
	if len(b.rangeStack) == 0 {
		return nil
	}
	return b.rangeStack[len(b.rangeStack)-1]
}

// SetRangeDefinitionScope sets the current range's originating scope. A
// no-op with no range open.
func (b *ScopeInfoBuilder) SetRangeDefinitionScope(s *scopes.OriginalScope) *ScopeInfoBuilder {
	if cur := b.CurrentRange(); cur != nil {
		cur.OriginalScope = s
	}
	return b
}

// SetRangeIsStackFrame marks the current range a stack frame. A no-op with
// no range open.
func (b *ScopeInfoBuilder) SetRangeIsStackFrame(v bool) *ScopeInfoBuilder {
	if cur := b.CurrentRange(); cur != nil {
		cur.IsStackFrame = v
	}
	return b
}

// SetRangeIsHidden marks the current range hidden. A no-op with no range
// open.
func (b *ScopeInfoBuilder) SetRangeIsHidden(v bool) *ScopeInfoBuilder {
	if cur := b.CurrentRange(); cur != nil {
		cur.IsHidden = v
	}
	return b
}

// SetRangeValues replaces the current range's per-variable bindings. A
// no-op with no range open.
func (b *ScopeInfoBuilder) SetRangeValues(values []scopes.Binding) *ScopeInfoBuilder {
	if cur := b.CurrentRange(); cur != nil {
		cur.Values = append([]scopes.Binding(nil), values...)
	}
	return b
}

// SetRangeCallSite sets the current range's inlined call site. A no-op with
// no range open.
func (b *ScopeInfoBuilder) SetRangeCallSite(pos loc.OriginalPosition) *ScopeInfoBuilder {
	if cur := b.CurrentRange(); cur != nil {
		cur.CallSite = &pos
		cur.HasCallSite = true
	}
	return b
}

// Build returns the assembled ScopeInfo. Any scopes or ranges still open at
// this point are left unclosed in the returned tree (their End stays the
// zero Position); callers that want that treated as an error should use
// SafeScopeInfoBuilder.
func (b *ScopeInfoBuilder) Build() *scopes.ScopeInfo {
	return b.info
}
