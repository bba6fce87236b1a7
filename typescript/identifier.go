package typescript

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var reservedWords = func() map[string]bool {
	m := make(map[string]bool)
	for _, w := range strings.Fields(`
		break case catch class const continue debugger default delete do else
		enum export extends false finally for function if implements import in
		instanceof interface let new null package private protected public
		return static super switch this throw true try type typeof var void
		while with yield`) {
		m[w] = true
	}
	return m
}()

// escapeReservedWord appends an underscore to reserved words.
func escapeReservedWord(name string) string {
	if reservedWords[name] {
		return name + "_"
	}
	return name
}

func isIdentRune(r rune, first bool) bool {
	if r == '_' || r == '$' || unicode.IsLetter(r) {
		return true
	}
	return !first && unicode.IsDigit(r)
}

// needsQuoting reports whether name cannot be used as a bare identifier.
func needsQuoting(name string) bool {
	if name == "" || reservedWords[name] {
		return true
	}
	for i, r := range name {
		if !isIdentRune(r, i == 0) {
			return true
		}
	}
	return false
}

// sanitizeIdentifier makes name usable as a variable or function name.
func sanitizeIdentifier(name string) string {
	if name == "" {
		return "_"
	}
	var b strings.Builder
	for i, r := range name {
		switch {
		case isIdentRune(r, i == 0):
			b.WriteRune(r)
		case i == 0 && unicode.IsDigit(r):
			b.WriteByte('_')
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return escapeReservedWord(b.String())
}

// propertyKey returns name as an object key, quoted when needed.
// Reserved words are valid property names and stay bare.
func propertyKey(name string) string {
	if name != "" && !needsQuoting(name) || reservedWords[name] {
		return name
	}
	return strconv.Quote(name)
}

// lowerFirst lowercases the leading rune: "GetUser" becomes "getUser".
func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}
