// Package encoder serializes a scopes.ScopeInfo into the comma-delimited
// item string that becomes a source map's `scopes` field. It is a pure
// function of its input tree plus a names.NamesTable to intern strings
// into: it never mutates the tree it walks, beyond assigning each
// OriginalScope a pre-order ID for cross-referencing from ranges.
package encoder

import (
	"strings"

	"github.com/sourcemap-scopes/scopesmap/internal/diag"
	"github.com/sourcemap-scopes/scopesmap/internal/scopes"
	"github.com/sourcemap-scopes/scopesmap/internal/vlq"
)

// Encoder holds the bookkeeping a single Encode call needs: the shared
// names table and the scope-to-ID map used to resolve a range's
// definition scope back to the wire's integer reference.
type Encoder struct {
	names  *scopes.NamesTable
	idOf   map[*scopes.OriginalScope]int
	nextID int
}

// New returns an Encoder that interns strings into names.
func New(names *scopes.NamesTable) *Encoder {
	return &Encoder{names: names, idOf: make(map[*scopes.OriginalScope]int)}
}

// Encode serializes info, returning the joined item string for the
// `scopes` field.
func (e *Encoder) Encode(info *scopes.ScopeInfo) (string, error) {
	var items []string

	for _, top := range info.Scopes {
		if top == nil {
			items = append(items, "")
			continue
		}
		var state scopes.ScopeState
		sub, err := e.encodeScope(top, &state)
		if err != nil {
			return "", err
		}
		items = append(items, sub...)
	}

	for _, top := range info.Ranges {
		if top == nil {
			items = append(items, "")
			continue
		}
		var state scopes.RangeState
		sub, err := e.encodeRange(top, &state)
		if err != nil {
			return "", err
		}
		items = append(items, sub...)
	}

	return strings.Join(items, ","), nil
}

func (e *Encoder) encodeScope(s *scopes.OriginalScope, state *scopes.ScopeState) ([]string, error) {
	s.ID = e.nextID
	e.nextID++
	e.idOf[s] = s.ID

	var startItem strings.Builder
	vlq.EncodeUnsigned(&startItem, uint64(scopes.TagOriginalScopeStart))

	flags := uint64(0)
	if s.HasName {
		flags |= scopes.ScopeFlagHasName
	}
	if s.HasKind {
		flags |= scopes.ScopeFlagHasKind
	}
	if s.IsStackFrame {
		flags |= scopes.ScopeFlagIsStackFrame
	}
	vlq.EncodeUnsigned(&startItem, flags)

	if err := scopes.EncodeScopePosition(&startItem, state, s.Start); err != nil {
		return nil, err
	}

	if s.HasName {
		idx := int64(e.names.Intern(s.Name))
		vlq.EncodeSigned(&startItem, idx-state.NameIdx)
		state.NameIdx = idx
	}
	if s.HasKind {
		idx := int64(e.names.Intern(s.Kind))
		vlq.EncodeSigned(&startItem, idx-state.KindIdx)
		state.KindIdx = idx
	}

	items := []string{startItem.String()}

	if len(s.Variables) > 0 {
		var varsItem strings.Builder
		vlq.EncodeUnsigned(&varsItem, uint64(scopes.TagOriginalScopeVariables))
		for _, v := range s.Variables {
			idx := int64(e.names.Intern(v))
			vlq.EncodeSigned(&varsItem, idx-state.VariableIdx)
			state.VariableIdx = idx
		}
		items = append(items, varsItem.String())
	}

	for _, child := range s.Children {
		child.Parent = s
		sub, err := e.encodeScope(child, state)
		if err != nil {
			return nil, err
		}
		items = append(items, sub...)
	}

	var endItem strings.Builder
	vlq.EncodeUnsigned(&endItem, uint64(scopes.TagOriginalScopeEnd))
	if err := scopes.EncodeScopePosition(&endItem, state, s.End); err != nil {
		return nil, err
	}
	items = append(items, endItem.String())

	return items, nil
}

func (e *Encoder) encodeRange(r *scopes.GeneratedRange, state *scopes.RangeState) ([]string, error) {
	var startItem strings.Builder
	vlq.EncodeUnsigned(&startItem, uint64(scopes.TagGeneratedRangeStart))

	flags := uint64(0)
	if r.OriginalScope != nil {
		flags |= scopes.RangeFlagHasDefinition
	}
	if r.IsStackFrame {
		flags |= scopes.RangeFlagIsStackFrame
	}
	if r.IsHidden {
		flags |= scopes.RangeFlagIsHidden
	}
	if r.Start.Line != state.Line {
		flags |= scopes.RangeFlagHasLine
	}
	vlq.EncodeUnsigned(&startItem, flags)

	if _, err := scopes.EncodeRangePosition(&startItem, state, r.Start); err != nil {
		return nil, err
	}

	if r.OriginalScope != nil {
		id, ok := e.idOf[r.OriginalScope]
		if !ok {
			return nil, diag.Newf(diag.ErrUnknownDefinitionScope, "range's definition scope was not emitted in this scopes tree")
		}
		idx := int64(id)
		vlq.EncodeSigned(&startItem, idx-state.DefScopeIdx)
		state.DefScopeIdx = idx
	}

	items := []string{startItem.String()}

	if len(r.Values) > 0 {
		if r.OriginalScope == nil {
			return nil, diag.New(diag.ErrValuesWithoutDefinitionScope, "range has values but no definition scope")
		}
		if len(r.Values) != len(r.OriginalScope.Variables) {
			return nil, diag.Newf(diag.ErrBindingsCountMismatch, "range has %d values but definition scope has %d variables", len(r.Values), len(r.OriginalScope.Variables))
		}

		var bindingsItem strings.Builder
		vlq.EncodeUnsigned(&bindingsItem, uint64(scopes.TagGeneratedRangeBindings))
		var subItems []string

		for i, b := range r.Values {
			switch b.Kind {
			case scopes.BindingUnavailable:
				vlq.EncodeSigned(&bindingsItem, -1)
			case scopes.BindingExpression:
				idx := int64(e.names.Intern(b.Expression))
				vlq.EncodeSigned(&bindingsItem, idx)
			case scopes.BindingSubRanges:
				vlq.EncodeSigned(&bindingsItem, -1)
				for _, tile := range b.SubRanges {
					sub, err := e.encodeSubRange(i, tile, state)
					if err != nil {
						return nil, err
					}
					subItems = append(subItems, sub)
				}
			}
		}
		items = append(items, bindingsItem.String())
		items = append(items, subItems...)
	}

	if r.HasCallSite {
		var csItem strings.Builder
		vlq.EncodeUnsigned(&csItem, uint64(scopes.TagGeneratedRangeCallSite))
		scopes.EncodeCallSite(&csItem, state, *r.CallSite)
		items = append(items, csItem.String())
	}

	for _, child := range r.Children {
		child.Parent = r
		sub, err := e.encodeRange(child, state)
		if err != nil {
			return nil, err
		}
		items = append(items, sub...)
	}

	var endItem strings.Builder
	vlq.EncodeUnsigned(&endItem, uint64(scopes.TagGeneratedRangeEnd))
	if _, err := scopes.EncodeRangePosition(&endItem, state, r.End); err != nil {
		return nil, err
	}
	items = append(items, endItem.String())

	return items, nil
}

func (e *Encoder) encodeSubRange(varIdx int, tile scopes.SubRangeBinding, state *scopes.RangeState) (string, error) {
	var sb strings.Builder
	vlq.EncodeUnsigned(&sb, uint64(scopes.TagGeneratedRangeSubRange))
	vlq.EncodeUnsigned(&sb, uint64(varIdx))
	if tile.HasValue {
		idx := int64(e.names.Intern(tile.Value))
		vlq.EncodeSigned(&sb, idx)
	} else {
		vlq.EncodeSigned(&sb, -1)
	}
	if err := scopes.EncodeSubRangeToPosition(&sb, state, tile.To); err != nil {
		return "", err
	}
	return sb.String(), nil
}
