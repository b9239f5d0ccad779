// Package decoder parses a `scopes` field string back into a
// scopes.ScopeInfo. It supports two modes: STRICT, which reports every
// malformed, orphaned or out-of-range item as an error, and LAX, which
// recovers from the same problems by dropping what it cannot place and
// recording what it did through a diag.Handler.
package decoder

import (
	"strings"

	"github.com/sourcemap-scopes/scopesmap/internal/diag"
	"github.com/sourcemap-scopes/scopesmap/internal/scopes"
	"github.com/sourcemap-scopes/scopesmap/internal/vlq"
)

// Mode selects STRICT or LAX recovery behavior.
type Mode int

const (
	// Lax silently recovers from malformed, orphaned or out-of-range items.
	// It is the zero value so a zero Options{} decodes permissively, matching
	// the wire format's default.
	Lax Mode = iota
	// Strict rejects any malformed, orphaned or out-of-range item.
	Strict
)

// Options configures a Decode call.
type Options struct {
	Mode        Mode
	Diagnostics *diag.Handler
}

// Decoder holds the names table new items resolve against, plus the
// scope-ID-to-node map that accumulates as scope trees are decoded so that
// later range trees can resolve their definition-scope references.
type Decoder struct {
	names        *scopes.NamesTable
	opts         Options
	scopeByID    map[int]*scopes.OriginalScope
	nextScopeID  int
}

// New returns a Decoder that resolves name/kind/variable/value indices
// against names.
func New(names *scopes.NamesTable, opts Options) *Decoder {
	return &Decoder{names: names, opts: opts, scopeByID: make(map[int]*scopes.OriginalScope)}
}

// Decode parses s, the raw `scopes` field, into nScopes top-level scope
// slots (one per source, matching the surrounding map's sources array)
// followed by top-level ranges until the input is exhausted.
func (d *Decoder) Decode(s string, nScopes int) (*scopes.ScopeInfo, error) {
	items := strings.Split(s, ",")

	info := &scopes.ScopeInfo{}
	idx := 0

	for len(info.Scopes) < nScopes {
		if idx >= len(items) {
			if d.strict() {
				return nil, diag.New(diag.ErrSourcesScopesLengthMismatch, "fewer top-level scope items than sources")
			}
			for len(info.Scopes) < nScopes {
				info.Scopes = append(info.Scopes, nil)
			}
			break
		}
		top, consumed, err := d.decodeScopeTree(items, idx)
		if err != nil {
			return nil, err
		}
		info.Scopes = append(info.Scopes, top)
		idx = consumed
	}

	for idx < len(items) {
		top, consumed, err := d.decodeRangeTree(items, idx)
		if err != nil {
			return nil, err
		}
		if top != nil {
			info.Ranges = append(info.Ranges, top)
		}
		idx = consumed
	}

	return info, nil
}

func (d *Decoder) strict() bool { return d.opts.Mode == Strict }

func (d *Decoder) warn(code diag.Code, text string) {
	if d.opts.Diagnostics != nil {
		d.opts.Diagnostics.Warn(diag.New(code, text))
	}
}

// decodeScopeTree decodes one top-level scope slot, which is either an
// empty item (null placeholder) or a fully nested OSCOPE_START...OSCOPE_END
// run, and returns the index of the first item after it.
func (d *Decoder) decodeScopeTree(items []string, idx int) (*scopes.OriginalScope, int, error) {
	if items[idx] == "" {
		return nil, idx + 1, nil
	}

	var state scopes.ScopeState

	var stack []*scopes.OriginalScope
	var root *scopes.OriginalScope

	for idx < len(items) {
		item := items[idx]
		if item == "" {
			// An empty item inside a top-level tree only occurs once the
			// tree has fully closed; anything still open at that point is
			// an unclosed-at-EOF condition rather than a new placeholder.
			break
		}

		it := vlq.NewTokenIterator(item)
		rawTag, err := it.NextUnsignedVLQ()
		if err != nil {
			if d.strict() {
				return nil, 0, diag.New(diag.ErrMalformedVLQ, "malformed scope item")
			}
			d.warn(diag.ErrMalformedVLQ, "dropped malformed scope item")
			idx++
			continue
		}
		tag := scopes.Tag(rawTag)

		if isRangeTag(tag) {
			// A range tag here means this scope run ended without a
			// matching OSCOPE_END for every open scope.
			break
		}

		switch tag {
		case scopes.TagOriginalScopeStart:
			flags, err := it.NextUnsignedVLQ()
			if err != nil {
				return nil, 0, d.fail(diag.ErrMalformedVLQ, "malformed scope start item")
			}
			pos, err := scopes.DecodeScopePosition(it, &state)
			if err != nil {
				return nil, 0, d.fail(diag.ErrMalformedVLQ, "malformed scope start position")
			}
			s := &scopes.OriginalScope{Start: pos, ID: d.nextScopeID}
			d.scopeByID[d.nextScopeID] = s
			d.nextScopeID++
			if flags&scopes.ScopeFlagHasName != 0 {
				nameIdx, err := it.NextSignedVLQ()
				if err != nil {
					return nil, 0, d.fail(diag.ErrMalformedVLQ, "malformed scope name field")
				}
				state.NameIdx += nameIdx
				name, ok := d.names.At(state.NameIdx)
				if !ok {
					if d.strict() {
						return nil, 0, diag.New(diag.ErrNameIndexOutOfRange, "scope name index out of range")
					}
					d.warn(diag.ErrNameIndexOutOfRange, "scope name index out of range, substituting empty string")
					name = ""
				}
				s.HasName = true
				s.Name = name
			}
			if flags&scopes.ScopeFlagHasKind != 0 {
				kindIdx, err := it.NextSignedVLQ()
				if err != nil {
					return nil, 0, d.fail(diag.ErrMalformedVLQ, "malformed scope kind field")
				}
				state.KindIdx += kindIdx
				kind, ok := d.names.At(state.KindIdx)
				if !ok {
					if d.strict() {
						return nil, 0, diag.New(diag.ErrKindIndexOutOfRange, "scope kind index out of range")
					}
					d.warn(diag.ErrKindIndexOutOfRange, "scope kind index out of range, substituting empty string")
					kind = ""
				}
				s.HasKind = true
				s.Kind = kind
			}
			s.IsStackFrame = flags&scopes.ScopeFlagIsStackFrame != 0
			if err := it.DiscardRemainingVLQs(); err != nil {
				return nil, 0, d.fail(diag.ErrMalformedVLQ, "trailing garbage in scope start item")
			}

			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				s.Parent = parent
				parent.Children = append(parent.Children, s)
			} else if root == nil {
				root = s
			} else {
				// a second root-level OSCOPE_START before the first closed
				return nil, 0, d.fail(diag.ErrUnmatchedScopeEnd, "unexpected second top-level scope start")
			}
			stack = append(stack, s)

		case scopes.TagOriginalScopeVariables:
			if len(stack) == 0 {
				if d.strict() {
					return nil, 0, diag.New(diag.ErrOrphanScopeVars, "variables item with no open scope")
				}
				d.warn(diag.ErrOrphanScopeVars, "dropped orphan scope variables item")
				idx++
				continue
			}
			cur := stack[len(stack)-1]
			for it.HasNext() {
				varIdx, err := it.NextSignedVLQ()
				if err != nil {
					return nil, 0, d.fail(diag.ErrMalformedVLQ, "malformed variable index")
				}
				state.VariableIdx += varIdx
				name, ok := d.names.At(state.VariableIdx)
				if !ok {
					if d.strict() {
						return nil, 0, diag.New(diag.ErrVariableIndexOutOfRange, "variable index out of range")
					}
					d.warn(diag.ErrVariableIndexOutOfRange, "variable index out of range, substituting empty string")
					name = ""
				}
				cur.Variables = append(cur.Variables, name)
			}

		case scopes.TagOriginalScopeEnd:
			if len(stack) == 0 {
				if d.strict() {
					return nil, 0, diag.New(diag.ErrUnmatchedScopeEnd, "scope end with no open scope")
				}
				d.warn(diag.ErrUnmatchedScopeEnd, "dropped unmatched scope end")
				idx++
				continue
			}
			pos, err := scopes.DecodeScopePosition(it, &state)
			if err != nil {
				return nil, 0, d.fail(diag.ErrMalformedVLQ, "malformed scope end position")
			}
			if err := it.DiscardRemainingVLQs(); err != nil {
				return nil, 0, d.fail(diag.ErrMalformedVLQ, "trailing garbage in scope end item")
			}
			cur := stack[len(stack)-1]
			cur.End = pos
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				idx++
				return root, idx, nil
			}

		default:
			if err := it.DiscardRemainingVLQs(); err != nil {
				return nil, 0, d.fail(diag.ErrMalformedVLQ, "malformed unknown-tag item")
			}
		}
		idx++
	}

	if len(stack) > 0 {
		if d.strict() {
			return nil, 0, diag.New(diag.ErrUnclosedAtEOF, "scope left open at end of input")
		}
		d.warn(diag.ErrUnclosedAtEOF, "discarded unclosed trailing scope")
		return nil, idx, nil
	}

	return root, idx, nil
}

func (d *Decoder) fail(code diag.Code, text string) error {
	return diag.New(code, text)
}

func isRangeTag(tag scopes.Tag) bool {
	switch tag {
	case scopes.TagGeneratedRangeStart, scopes.TagGeneratedRangeEnd,
		scopes.TagGeneratedRangeBindings, scopes.TagGeneratedRangeSubRange,
		scopes.TagGeneratedRangeCallSite:
		return true
	default:
		return false
	}
}

// decodeRangeTree decodes one top-level generated range, including its
// full nested subtree, and returns the index of the first item after it.
func (d *Decoder) decodeRangeTree(items []string, idx int) (*scopes.GeneratedRange, int, error) {
	if items[idx] == "" {
		return nil, idx + 1, nil
	}

	var state scopes.RangeState
	var stack []*scopes.GeneratedRange
	var root *scopes.GeneratedRange

	for idx < len(items) {
		item := items[idx]
		if item == "" {
			idx++
			continue
		}

		it := vlq.NewTokenIterator(item)
		rawTag, err := it.NextUnsignedVLQ()
		if err != nil {
			if d.strict() {
				return nil, 0, diag.New(diag.ErrMalformedVLQ, "malformed range item")
			}
			d.warn(diag.ErrMalformedVLQ, "dropped malformed range item")
			idx++
			continue
		}
		tag := scopes.Tag(rawTag)

		switch tag {
		case scopes.TagGeneratedRangeStart:
			flags, err := it.NextUnsignedVLQ()
			if err != nil {
				return nil, 0, d.fail(diag.ErrMalformedVLQ, "malformed range start item")
			}
			hasLine := flags&scopes.RangeFlagHasLine != 0
			if hasLine {
				dLine, err := it.NextUnsignedVLQ()
				if err != nil {
					return nil, 0, d.fail(diag.ErrMalformedVLQ, "malformed range line field")
				}
				state.Line += uint32(dLine)
			}
			pos, err := scopes.DecodeRangeStartColumn(it, &state, hasLine)
			if err != nil {
				return nil, 0, d.fail(diag.ErrMalformedVLQ, "malformed range start column")
			}

			r := &scopes.GeneratedRange{Start: pos}
			r.IsStackFrame = flags&scopes.RangeFlagIsStackFrame != 0
			r.IsHidden = flags&scopes.RangeFlagIsHidden != 0

			if flags&scopes.RangeFlagHasDefinition != 0 {
				defIdx, err := it.NextSignedVLQ()
				if err != nil {
					return nil, 0, d.fail(diag.ErrMalformedVLQ, "malformed range definition field")
				}
				state.DefScopeIdx += defIdx
				if def, ok := d.scopeByID[int(state.DefScopeIdx)]; ok {
					r.OriginalScope = def
				} else if d.strict() {
					return nil, 0, diag.New(diag.ErrUnknownDefinitionScope, "definition scope index does not match any decoded scope")
				} else {
					d.warn(diag.ErrUnknownDefinitionScope, "dropped definition reference to unknown scope")
				}
			}
			if err := it.DiscardRemainingVLQs(); err != nil {
				return nil, 0, d.fail(diag.ErrMalformedVLQ, "trailing garbage in range start item")
			}

			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				r.Parent = parent
				parent.Children = append(parent.Children, r)
			} else if root == nil {
				root = r
			} else {
				return nil, 0, d.fail(diag.ErrUnmatchedRangeEnd, "unexpected second top-level range start")
			}
			stack = append(stack, r)

		case scopes.TagGeneratedRangeBindings:
			if len(stack) == 0 {
				if d.strict() {
					return nil, 0, diag.New(diag.ErrOrphanRangeBindings, "bindings item with no open range")
				}
				d.warn(diag.ErrOrphanRangeBindings, "dropped orphan range bindings item")
				idx++
				continue
			}
			cur := stack[len(stack)-1]
			for it.HasNext() {
				v, err := it.NextSignedVLQ()
				if err != nil {
					return nil, 0, d.fail(diag.ErrMalformedVLQ, "malformed binding field")
				}
				switch {
				case v == -1:
					cur.Values = append(cur.Values, scopes.Binding{Kind: scopes.BindingUnavailable})
				default:
					name, ok := d.names.At(v)
					if !ok {
						if d.strict() {
							return nil, 0, diag.New(diag.ErrBindingIndexOutOfRange, "binding value index out of range")
						}
						d.warn(diag.ErrBindingIndexOutOfRange, "binding value index out of range, substituting empty string")
						name = ""
					}
					cur.Values = append(cur.Values, scopes.Binding{Kind: scopes.BindingExpression, Expression: name})
				}
			}

		case scopes.TagGeneratedRangeSubRange:
			if len(stack) == 0 {
				if d.strict() {
					return nil, 0, diag.New(diag.ErrOrphanSubRangeBinding, "sub-range binding with no open range")
				}
				d.warn(diag.ErrOrphanSubRangeBinding, "dropped orphan sub-range binding item")
				idx++
				continue
			}
			cur := stack[len(stack)-1]
			varIdx, err := it.NextUnsignedVLQ()
			if err != nil {
				return nil, 0, d.fail(diag.ErrMalformedVLQ, "malformed sub-range variable index")
			}
			valIdx, err := it.NextSignedVLQ()
			if err != nil {
				return nil, 0, d.fail(diag.ErrMalformedVLQ, "malformed sub-range value field")
			}
			to, err := scopes.DecodeSubRangeToPosition(it, &state)
			if err != nil {
				return nil, 0, d.fail(diag.ErrMalformedVLQ, "malformed sub-range position")
			}
			if int(varIdx) >= len(cur.Values) {
				if d.strict() {
					return nil, 0, diag.New(diag.ErrOrphanSubRangeBinding, "sub-range binding with no pending variable")
				}
				d.warn(diag.ErrOrphanSubRangeBinding, "dropped sub-range binding with no pending variable")
				idx++
				continue
			}
			target := &cur.Values[varIdx]
			from := cur.Start
			if len(target.SubRanges) > 0 {
				from = target.SubRanges[len(target.SubRanges)-1].To
			}
			tile := scopes.SubRangeBinding{From: from, To: to}
			if valIdx != -1 {
				name, ok := d.names.At(valIdx)
				if !ok {
					if d.strict() {
						return nil, 0, diag.New(diag.ErrBindingIndexOutOfRange, "sub-range value index out of range")
					}
					d.warn(diag.ErrBindingIndexOutOfRange, "sub-range value index out of range, substituting empty string")
					name = ""
				}
				tile.HasValue = true
				tile.Value = name
			}
			if target.Kind != scopes.BindingSubRanges {
				target.Kind = scopes.BindingSubRanges
			}
			target.SubRanges = append(target.SubRanges, tile)

		case scopes.TagGeneratedRangeCallSite:
			if len(stack) == 0 {
				if d.strict() {
					return nil, 0, diag.New(diag.ErrOrphanCallSite, "call site with no open range")
				}
				d.warn(diag.ErrOrphanCallSite, "dropped orphan call site item")
				idx++
				continue
			}
			cur := stack[len(stack)-1]
			cs, err := scopes.DecodeCallSite(it, &state)
			if err != nil {
				return nil, 0, d.fail(diag.ErrMalformedVLQ, "malformed call site item")
			}
			cur.CallSite = &cs
			cur.HasCallSite = true

		case scopes.TagGeneratedRangeEnd:
			if len(stack) == 0 {
				if d.strict() {
					return nil, 0, diag.New(diag.ErrUnmatchedRangeEnd, "range end with no open range")
				}
				d.warn(diag.ErrUnmatchedRangeEnd, "dropped unmatched range end")
				idx++
				continue
			}
			pos, err := scopes.DecodeRangeEndPosition(it, &state)
			if err != nil {
				return nil, 0, d.fail(diag.ErrMalformedVLQ, "malformed range end position")
			}
			cur := stack[len(stack)-1]
			cur.End = pos
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				idx++
				return root, idx, nil
			}

		default:
			if err := it.DiscardRemainingVLQs(); err != nil {
				return nil, 0, d.fail(diag.ErrMalformedVLQ, "malformed unknown-tag item")
			}
		}
		idx++
	}

	if len(stack) > 0 {
		if d.strict() {
			return nil, 0, diag.New(diag.ErrUnclosedAtEOF, "range left open at end of input")
		}
		d.warn(diag.ErrUnclosedAtEOF, "discarded unclosed trailing range")
		return nil, idx, nil
	}

	return root, idx, nil
}
