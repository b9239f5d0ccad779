// Package jsonmap defines the on-the-wire JSON shape of a source map
// carrying the scopes extension, and the section-recursion rule an index
// source map needs to apply before its sections' scopes fields can be
// decoded as if they were one flat map. Marshaling goes through
// go-json-experiment/json rather than the standard library's encoding/json,
// matching the codec already present in the surrounding module's dependency
// set.
package jsonmap

import (
	"github.com/go-json-experiment/json"

	"github.com/sourcemap-scopes/scopesmap/internal/loc"
)

// SourceMapJSON is a plain (non-indexed) source map, trimmed to the fields
// the scopes extension reads or writes; it is not a general-purpose source
// map model and does not preserve unrecognized top-level fields.
type SourceMapJSON struct {
	Version        int      `json:"version"`
	File           string   `json:"file,omitempty"`
	Sources        []string `json:"sources"`
	SourcesContent []string `json:"sourcesContent,omitempty"`
	Names          []string `json:"names"`
	Mappings       string   `json:"mappings"`
	Scopes         string   `json:"scopes,omitempty"`
}

// IndexSourceMapJSON is a source map built out of sections, each offsetting
// a nested map into the generated output.
type IndexSourceMapJSON struct {
	Version  int       `json:"version"`
	File     string    `json:"file,omitempty"`
	Sections []Section `json:"sections"`
}

// Section is one entry of an index map's sections array.
type Section struct {
	Offset loc.Position  `json:"offset"`
	Map    SourceMapJSON `json:"map"`
}

// Marshal serializes m.
func Marshal(m *SourceMapJSON) ([]byte, error) {
	return json.Marshal(m)
}

// Unmarshal parses data into a SourceMapJSON.
func Unmarshal(data []byte) (*SourceMapJSON, error) {
	var m SourceMapJSON
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// MarshalIndex serializes m.
func MarshalIndex(m *IndexSourceMapJSON) ([]byte, error) {
	return json.Marshal(m)
}

// UnmarshalIndex parses data into an IndexSourceMapJSON.
func UnmarshalIndex(data []byte) (*IndexSourceMapJSON, error) {
	var m IndexSourceMapJSON
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// ApplyOffset translates pos by a section's generatedOffset, per the rule
// that only positions on the section's own first line (line 0 within the
// section) pick up the offset's column as well as its line; every other
// line only shifts by the offset's line.
func ApplyOffset(pos loc.Position, offset loc.Position) loc.Position {
	if pos.Line == 0 {
		return loc.Position{Line: offset.Line, Column: pos.Column + offset.Column}
	}
	return loc.Position{Line: pos.Line + offset.Line, Column: pos.Column}
}
