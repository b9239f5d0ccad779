// Package ident sanity-checks variable names recovered from a scopes
// extension: real toolchains intern arbitrary strings into the names
// table, but a name that a JS lexer can't read back as a single
// identifier token is usually a sign something upstream truncated or
// misencoded a field. This never rejects such a name, only flags it.
package ident

import (
	"github.com/dlclark/regexp2"
	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/js"
)

// asciiIdentifier is the common case: plain ASCII identifiers, which cover
// almost every name a real toolchain emits. Checking it first skips the
// full lexer for the overwhelming majority of names.
var asciiIdentifier = regexp2.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`, regexp2.None)

// Looks checks whether name lexes as exactly one JS identifier token, with
// nothing before or after it. Unicode identifiers and the rare name that
// merely looks ASCII-shaped but isn't fall through to the full lexer.
func Looks(name string) bool {
	if name == "" {
		return false
	}
	if ok, _ := asciiIdentifier.MatchString(name); ok {
		return true
	}
	l := js.NewLexer(parse.NewInputString(name))
	tt, text := l.Next()
	if tt != js.IdentifierToken || len(text) != len(name) {
		return false
	}
	if next, _ := l.Next(); next != js.ErrorToken {
		return false
	}
	return true
}
