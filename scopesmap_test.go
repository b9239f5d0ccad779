package scopesmap

import (
	"testing"

	"github.com/sourcemap-scopes/scopesmap/internal/jsonmap"
	"github.com/sourcemap-scopes/scopesmap/internal/test_utils"
)

func buildFixture(t *testing.T) *ScopeInfo {
	t.Helper()
	b := NewScopeInfoBuilder()
	b.StartScope(Position{Line: 0, Column: 0}).
		SetScopeName("Module").
		SetScopeKind("module").
		StartScope(Position{Line: 1, Column: 0}).
		SetScopeName("run").
		SetScopeKind("function").
		SetScopeVariables([]string{"a", "b"}).
		EndScope(Position{Line: 4, Column: 1}).
		EndScope(Position{Line: 5, Column: 0})

	def := b.LastScope().Children[0]

	b.StartRange(Position{Line: 1, Column: 0}).
		SetRangeDefinitionScope(def).
		SetRangeValues([]Binding{
			{Kind: BindingExpression, Expression: "1"},
			{Kind: BindingUnavailable},
		}).
		EndRange(Position{Line: 4, Column: 1})

	info := b.Build()
	return info
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	info := buildFixture(t)

	m := &jsonmap.SourceMapJSON{
		Version: 3,
		Sources: []string{"module.ts"},
	}
	if err := Encode(info, m); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if m.Scopes == "" {
		t.Fatal("Encode should have populated m.Scopes")
	}
	if len(m.Names) == 0 {
		t.Fatal("Encode should have interned names into m.Names")
	}

	got, err := Decode(m, DecodeOptions{Mode: Strict})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if len(got.Scopes) != 1 {
		t.Fatalf("got %d top-level scopes, want 1", len(got.Scopes))
	}
	module := got.Scopes[0]
	if module.Name != "Module" || module.Kind != "module" {
		t.Errorf("module = %+v", module)
	}
	if len(module.Children) != 1 {
		t.Fatalf("got %d children, want 1", len(module.Children))
	}
	run := module.Children[0]
	if run.Name != "run" || run.Kind != "function" {
		t.Errorf("run = %+v", run)
	}
	if diff := test_utils.ANSIDiff([]string{"a", "b"}, run.Variables); diff != "" {
		t.Errorf("run.Variables mismatch (-want +got):\n%s", diff)
	}

	if len(got.Ranges) != 1 {
		t.Fatalf("got %d top-level ranges, want 1", len(got.Ranges))
	}
	r := got.Ranges[0]
	if r.OriginalScope != run {
		t.Error("decoded range's OriginalScope should resolve to the decoded 'run' scope")
	}
	if len(r.Values) != 2 || r.Values[0].Expression != "1" || r.Values[1].Kind != BindingUnavailable {
		t.Errorf("r.Values = %+v", r.Values)
	}
}

func TestEncodeRejectsSourcesScopesLengthMismatch(t *testing.T) {
	info := &ScopeInfo{Scopes: []*OriginalScope{nil, nil}}
	m := &jsonmap.SourceMapJSON{Version: 3, Sources: []string{"only-one.ts"}}
	if err := Encode(info, m); err == nil {
		t.Fatal("expected an error when info.Scopes and m.Sources disagree in length")
	}
}

func TestDecodeIndexAppliesSectionOffsets(t *testing.T) {
	b1 := NewScopeInfoBuilder()
	b1.AddNullScope().StartRange(Position{Line: 0, Column: 0}).EndRange(Position{Line: 2, Column: 5})
	m1 := &jsonmap.SourceMapJSON{Version: 3, Sources: []string{"a.ts"}}
	if err := Encode(b1.Build(), m1); err != nil {
		t.Fatalf("Encode section 1: %v", err)
	}

	b2 := NewScopeInfoBuilder()
	b2.AddNullScope().StartRange(Position{Line: 0, Column: 0}).EndRange(Position{Line: 0, Column: 10})
	m2 := &jsonmap.SourceMapJSON{Version: 3, Sources: []string{"b.ts"}}
	if err := Encode(b2.Build(), m2); err != nil {
		t.Fatalf("Encode section 2: %v", err)
	}

	idx := &jsonmap.IndexSourceMapJSON{
		Version: 3,
		Sections: []jsonmap.Section{
			{Offset: Position{Line: 0, Column: 0}, Map: *m1},
			{Offset: Position{Line: 10, Column: 3}, Map: *m2},
		},
	}

	got, err := DecodeIndex(idx, DecodeOptions{Mode: Strict})
	if err != nil {
		t.Fatalf("DecodeIndex: %v", err)
	}
	if len(got.Ranges) != 2 {
		t.Fatalf("got %d ranges, want 2", len(got.Ranges))
	}

	// Section 1 has a zero offset: its range is untranslated.
	r1 := got.Ranges[0]
	if r1.Start != (Position{Line: 0, Column: 0}) || r1.End != (Position{Line: 2, Column: 5}) {
		t.Errorf("section 1 range = %+v, want untranslated", r1)
	}

	// Section 2's range starts on its own line 0, so it picks up both the
	// offset's line and column; per P7 only line-0 positions gain the
	// column component.
	r2 := got.Ranges[1]
	wantStart := Position{Line: 10, Column: 3}
	wantEnd := Position{Line: 10, Column: 13}
	if r2.Start != wantStart || r2.End != wantEnd {
		t.Errorf("section 2 range = {%+v, %+v}, want {%+v, %+v}", r2.Start, r2.End, wantStart, wantEnd)
	}
}

func TestEncodeScopesFieldSnapshot(t *testing.T) {
	info := buildFixture(t)
	m := &jsonmap.SourceMapJSON{Version: 3, Sources: []string{"module.ts"}}
	if err := Encode(info, m); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	test_utils.MakeSnapshot(&test_utils.SnapshotOptions{
		Testing:      t,
		TestCaseName: t.Name(),
		Input:        "Module { run(a, b) { ... } }",
		Output:       m.Scopes,
		Kind:         test_utils.ScopesOutput,
		FolderName:   "testdata/__snapshots__",
	})
}

func TestDecodeLaxDiagnosticsSurfaceThroughPublicAPI(t *testing.T) {
	m := &jsonmap.SourceMapJSON{
		Version: 3,
		Sources: []string{"a.ts"},
		Scopes:  "CAA", // an unmatched OSCOPE_END
	}
	h := NewHandler()
	_, err := Decode(m, DecodeOptions{Mode: Lax, Diagnostics: h})
	if err != nil {
		t.Fatalf("LAX mode should recover, got error: %v", err)
	}
	if !h.HasDiagnostics() {
		t.Error("expected a recorded diagnostic")
	}
}
