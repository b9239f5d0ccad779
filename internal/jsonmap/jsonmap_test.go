package jsonmap

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/sourcemap-scopes/scopesmap/internal/loc"
)

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	m := &SourceMapJSON{
		Version:  3,
		File:     "out.js",
		Sources:  []string{"a.ts", "b.ts"},
		Names:    []string{"foo", "bar"},
		Mappings: "AAAA",
		Scopes:   "BAAA,CAAA",
	}

	data, err := Marshal(m)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if diff := cmp.Diff(m, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestMarshalOmitsEmptyOptionalFields(t *testing.T) {
	m := &SourceMapJSON{Version: 3, Sources: []string{"a.ts"}, Names: nil, Mappings: ""}
	data, err := Marshal(m)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	s := string(data)
	for _, field := range []string{`"file"`, `"sourcesContent"`, `"scopes"`} {
		if strings.Contains(s, field) {
			t.Errorf("marshaled output should omit empty field %s, got %s", field, s)
		}
	}
}

func TestIndexMarshalUnmarshalRoundTrip(t *testing.T) {
	idx := &IndexSourceMapJSON{
		Version: 3,
		File:    "bundle.js",
		Sections: []Section{
			{
				Offset: loc.Position{Line: 0, Column: 0},
				Map: SourceMapJSON{
					Version:  3,
					Sources:  []string{"a.ts"},
					Names:    []string{"x"},
					Mappings: "AAAA",
					Scopes:   "BAAA",
				},
			},
			{
				Offset: loc.Position{Line: 10, Column: 5},
				Map: SourceMapJSON{
					Version:  3,
					Sources:  []string{"b.ts"},
					Names:    []string{"y"},
					Mappings: "AAAA",
				},
			},
		},
	}

	data, err := MarshalIndex(idx)
	if err != nil {
		t.Fatalf("MarshalIndex: %v", err)
	}
	got, err := UnmarshalIndex(data)
	if err != nil {
		t.Fatalf("UnmarshalIndex: %v", err)
	}
	if diff := cmp.Diff(idx, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyOffsetFirstLineGetsBothComponents(t *testing.T) {
	offset := loc.Position{Line: 10, Column: 7}
	got := ApplyOffset(loc.Position{Line: 0, Column: 3}, offset)
	want := loc.Position{Line: 10, Column: 10}
	if got != want {
		t.Errorf("ApplyOffset(line 0) = %+v, want %+v", got, want)
	}
}

func TestApplyOffsetOtherLinesOnlyShiftLine(t *testing.T) {
	offset := loc.Position{Line: 10, Column: 7}
	got := ApplyOffset(loc.Position{Line: 2, Column: 3}, offset)
	want := loc.Position{Line: 12, Column: 3}
	if got != want {
		t.Errorf("ApplyOffset(line > 0) = %+v, want %+v", got, want)
	}
}
