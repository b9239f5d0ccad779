package encoder

import (
	"errors"
	"strings"
	"testing"

	"github.com/sourcemap-scopes/scopesmap/internal/decoder"
	"github.com/sourcemap-scopes/scopesmap/internal/diag"
	"github.com/sourcemap-scopes/scopesmap/internal/loc"
	"github.com/sourcemap-scopes/scopesmap/internal/scopes"
)

func TestEncodeNullTopLevelSlots(t *testing.T) {
	names := scopes.NewNamesTable(nil)
	enc := New(names)

	info := &scopes.ScopeInfo{Scopes: []*scopes.OriginalScope{nil}, Ranges: []*scopes.GeneratedRange{nil}}
	got, err := enc.Encode(info)
	if err != nil {
		t.Fatal(err)
	}
	if got != "," {
		t.Errorf("Encode(null scope, null range) = %q, want %q", got, ",")
	}
}

func TestEncodeScopeTreeStartsEndsAndRecurses(t *testing.T) {
	names := scopes.NewNamesTable(nil)
	enc := New(names)

	child := &scopes.OriginalScope{
		Start: loc.Position{Line: 1, Column: 2},
		End:   loc.Position{Line: 1, Column: 9},
	}
	root := &scopes.OriginalScope{
		Start:     loc.Position{Line: 0, Column: 0},
		End:       loc.Position{Line: 2, Column: 0},
		HasName:   true,
		Name:      "outer",
		HasKind:   true,
		Kind:      "function",
		Variables: []string{"a", "b"},
		Children:  []*scopes.OriginalScope{child},
	}

	info := &scopes.ScopeInfo{Scopes: []*scopes.OriginalScope{root}}
	got, err := enc.Encode(info)
	if err != nil {
		t.Fatal(err)
	}

	items := strings.Split(got, ",")
	// root start, variables, child start, child end, root end
	if len(items) != 5 {
		t.Fatalf("got %d items, want 5: %q", len(items), items)
	}
	if root.ID != 0 || child.ID != 1 {
		t.Errorf("scope IDs assigned in pre-order: root=%d child=%d, want 0,1", root.ID, child.ID)
	}
	if names.Len() != 4 {
		t.Errorf("names table has %d entries, want 4 (outer, function, a, b): %v", names.Len(), names.Names)
	}
}

func TestEncodeInternsNamesOnlyOnce(t *testing.T) {
	names := scopes.NewNamesTable(nil)
	enc := New(names)

	s1 := &scopes.OriginalScope{Start: loc.Position{}, End: loc.Position{Line: 1}, HasName: true, Name: "foo"}
	s2 := &scopes.OriginalScope{Start: loc.Position{Line: 2}, End: loc.Position{Line: 3}, HasName: true, Name: "foo"}

	info := &scopes.ScopeInfo{Scopes: []*scopes.OriginalScope{s1, s2}}
	if _, err := enc.Encode(info); err != nil {
		t.Fatal(err)
	}
	if names.Len() != 1 {
		t.Errorf("names table has %d entries, want 1 (deduplicated): %v", names.Len(), names.Names)
	}
}

func TestEncodeRangeUnknownDefinitionScope(t *testing.T) {
	names := scopes.NewNamesTable(nil)
	enc := New(names)

	foreignScope := &scopes.OriginalScope{ID: -1}
	r := &scopes.GeneratedRange{
		Start:         loc.Position{Line: 0, Column: 0},
		End:           loc.Position{Line: 0, Column: 5},
		OriginalScope: foreignScope,
	}

	info := &scopes.ScopeInfo{Ranges: []*scopes.GeneratedRange{r}}
	_, err := enc.Encode(info)
	if err == nil {
		t.Fatal("expected an error for a range referencing a scope never emitted by this encoder")
	}
	var rangedErr *diag.RangedError
	if !errors.As(err, &rangedErr) || rangedErr.Code != diag.ErrUnknownDefinitionScope {
		t.Errorf("got error %v, want diag.ErrUnknownDefinitionScope", err)
	}
}

func TestEncodeRangeValuesWithoutDefinitionScope(t *testing.T) {
	names := scopes.NewNamesTable(nil)
	enc := New(names)

	r := &scopes.GeneratedRange{
		Start:  loc.Position{Line: 0, Column: 0},
		End:    loc.Position{Line: 0, Column: 5},
		Values: []scopes.Binding{{Kind: scopes.BindingExpression, Expression: "x"}},
	}

	info := &scopes.ScopeInfo{Ranges: []*scopes.GeneratedRange{r}}
	_, err := enc.Encode(info)
	if err == nil {
		t.Fatal("expected an error for values set without a definition scope")
	}
	var rangedErr *diag.RangedError
	if !errors.As(err, &rangedErr) || rangedErr.Code != diag.ErrValuesWithoutDefinitionScope {
		t.Errorf("got error %v, want diag.ErrValuesWithoutDefinitionScope", err)
	}
}

func TestEncodeRangeBindingsCountMismatch(t *testing.T) {
	names := scopes.NewNamesTable(nil)
	enc := New(names)

	def := &scopes.OriginalScope{
		Start:     loc.Position{Line: 0, Column: 0},
		End:       loc.Position{Line: 5, Column: 0},
		Variables: []string{"a"},
	}
	r := &scopes.GeneratedRange{
		Start:         loc.Position{Line: 0, Column: 0},
		End:           loc.Position{Line: 0, Column: 5},
		OriginalScope: def,
		Values:        []scopes.Binding{{Kind: scopes.BindingExpression, Expression: "x"}, {Kind: scopes.BindingExpression, Expression: "y"}},
	}

	info := &scopes.ScopeInfo{Scopes: []*scopes.OriginalScope{def}, Ranges: []*scopes.GeneratedRange{r}}
	_, err := enc.Encode(info)
	if err == nil {
		t.Fatal("expected an error for a values/variables length mismatch")
	}
	var rangedErr *diag.RangedError
	if !errors.As(err, &rangedErr) || rangedErr.Code != diag.ErrBindingsCountMismatch {
		t.Errorf("got error %v, want diag.ErrBindingsCountMismatch", err)
	}
}

func TestEncodeScopePositionOutOfOrderPropagates(t *testing.T) {
	names := scopes.NewNamesTable(nil)
	enc := New(names)

	// End precedes Start: the encoder's own state-monotonicity check must
	// catch this rather than silently underflowing a VLQ delta.
	s := &scopes.OriginalScope{
		Start: loc.Position{Line: 5, Column: 0},
		End:   loc.Position{Line: 2, Column: 0},
	}
	info := &scopes.ScopeInfo{Scopes: []*scopes.OriginalScope{s}}
	_, err := enc.Encode(info)
	if err == nil {
		t.Fatal("expected an error for a backward scope end position")
	}
	var rangedErr *diag.RangedError
	if !errors.As(err, &rangedErr) || rangedErr.Code != diag.ErrPositionOutOfOrder {
		t.Errorf("got error %v, want diag.ErrPositionOutOfOrder", err)
	}
}

func TestEncodeRangeWithSubRangeBindings(t *testing.T) {
	names := scopes.NewNamesTable(nil)
	enc := New(names)

	def := &scopes.OriginalScope{
		Start:     loc.Position{Line: 0, Column: 0},
		End:       loc.Position{Line: 5, Column: 0},
		Variables: []string{"x"},
	}
	r := &scopes.GeneratedRange{
		Start:         loc.Position{Line: 0, Column: 0},
		End:           loc.Position{Line: 0, Column: 10},
		OriginalScope: def,
		Values: []scopes.Binding{{
			Kind: scopes.BindingSubRanges,
			SubRanges: []scopes.SubRangeBinding{
				{HasValue: true, Value: "1", To: loc.Position{Line: 0, Column: 3}},
				{HasValue: false, To: loc.Position{Line: 0, Column: 10}},
			},
		}},
	}

	info := &scopes.ScopeInfo{Scopes: []*scopes.OriginalScope{def}, Ranges: []*scopes.GeneratedRange{r}}
	got, err := enc.Encode(info)
	if err != nil {
		t.Fatal(err)
	}
	if got == "" {
		t.Fatal("expected non-empty encoded output")
	}
}

// TestEncodeSubRangeTargetsNonLastVariable guards against the sub-range
// item losing track of which variable it belongs to: with variables
// ["a", "b"] and only "a" carrying sub-ranges, the tiles must land on
// Values[0], not get appended to whatever happens to be the last binding.
func TestEncodeSubRangeTargetsNonLastVariable(t *testing.T) {
	names := scopes.NewNamesTable(nil)
	enc := New(names)

	def := &scopes.OriginalScope{
		Start:     loc.Position{Line: 0, Column: 0},
		End:       loc.Position{Line: 5, Column: 0},
		Variables: []string{"a", "b"},
	}
	r := &scopes.GeneratedRange{
		Start:         loc.Position{Line: 0, Column: 0},
		End:           loc.Position{Line: 0, Column: 10},
		OriginalScope: def,
		Values: []scopes.Binding{
			{
				Kind: scopes.BindingSubRanges,
				SubRanges: []scopes.SubRangeBinding{
					{HasValue: true, Value: "x", From: loc.Position{Line: 0, Column: 0}, To: loc.Position{Line: 0, Column: 4}},
					{HasValue: false, From: loc.Position{Line: 0, Column: 4}, To: loc.Position{Line: 0, Column: 10}},
				},
			},
			{Kind: scopes.BindingExpression, Expression: "e"},
		},
	}

	info := &scopes.ScopeInfo{Scopes: []*scopes.OriginalScope{def}, Ranges: []*scopes.GeneratedRange{r}}
	encoded, err := enc.Encode(info)
	if err != nil {
		t.Fatal(err)
	}

	dec := decoder.New(names, decoder.Options{Mode: decoder.Strict})
	decoded, err := dec.Decode(encoded, 1)
	if err != nil {
		t.Fatalf("decoding what we just encoded: %v", err)
	}

	gotRange := decoded.Ranges[0]
	if len(gotRange.Values) != 2 {
		t.Fatalf("got %d values, want 2", len(gotRange.Values))
	}
	subRanged := gotRange.Values[0]
	if subRanged.Kind != scopes.BindingSubRanges || len(subRanged.SubRanges) != 2 {
		t.Fatalf("Values[0] = %+v, want a 2-tile BindingSubRanges", subRanged)
	}
	plain := gotRange.Values[1]
	if plain.Kind != scopes.BindingExpression || plain.Expression != "e" {
		t.Errorf("Values[1] = %+v, want expression \"e\" untouched by the sibling's sub-ranges", plain)
	}
}
