// Command scopesmap-wasm exposes Encode/Decode to a host JavaScript runtime
// as global functions operating on plain JS objects shaped like
// jsonmap.SourceMapJSON.
package main

import (
	"syscall/js"

	"github.com/norunners/vert"

	"github.com/sourcemap-scopes/scopesmap"
	"github.com/sourcemap-scopes/scopesmap/internal/jsonmap"
)

func main() {
	js.Global().Set("__scopesmap_decode", js.FuncOf(jsDecode))
	js.Global().Set("__scopesmap_encode", js.FuncOf(jsEncode))
	<-make(chan bool)
}

func jsString(v js.Value) string {
	if v.IsUndefined() || v.IsNull() {
		return ""
	}
	return v.String()
}

// jsDecode(mapJSON string, lax bool) -> {scopes: object, warnings: []string, error: string}
func jsDecode(this js.Value, args []js.Value) interface{} {
	mapJSON := jsString(args[0])
	lax := len(args) > 1 && args[1].Truthy()

	m, err := jsonmap.Unmarshal([]byte(mapJSON))
	if err != nil {
		return errorResult(err)
	}

	mode := scopesmap.Strict
	if lax {
		mode = scopesmap.Lax
	}
	handler := scopesmap.NewHandler()
	info, err := scopesmap.Decode(m, scopesmap.DecodeOptions{Mode: mode, Diagnostics: handler})
	if err != nil {
		return errorResult(err)
	}

	warnings := make([]string, 0, len(handler.Warnings()))
	for _, w := range handler.Warnings() {
		warnings = append(warnings, w.Error())
	}

	return vert.ValueOf(map[string]interface{}{
		"scopes":   info,
		"warnings": warnings,
		"error":    nil,
	}).JSValue()
}

// jsEncode(scopeInfoJSON, mapJSON string) -> {map: object, error: string}
func jsEncode(this js.Value, args []js.Value) interface{} {
	mapJSON := jsString(args[0])
	m, err := jsonmap.Unmarshal([]byte(mapJSON))
	if err != nil {
		return errorResult(err)
	}

	var info scopesmap.ScopeInfo
	if err := vert.ValueOf(args[1]).AssignTo(&info); err != nil {
		return errorResult(err)
	}

	if err := scopesmap.Encode(&info, m); err != nil {
		return errorResult(err)
	}

	return vert.ValueOf(map[string]interface{}{
		"map":   m,
		"error": nil,
	}).JSValue()
}

func errorResult(err error) js.Value {
	return vert.ValueOf(map[string]interface{}{
		"error": err.Error(),
	}).JSValue()
}
