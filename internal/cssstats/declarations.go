package cssstats

import "strings"

const (
	statementSeparator = ";"
	valueSeparator     = ":"

	// trimCutset is the whitespace removed around bodies, names and values.
	trimCutset = " \t\n\r\x00\x0B"
)

// Declaration is one name:value pair from a block body.
type Declaration struct {
	Property string
	Value    string
}

// SplitDeclarations breaks a block body into declarations.
//
// The body is split on ';' and empty segments are dropped, so a trailing
// separator is harmless. Each segment is split on its FIRST ':' only; the
// rest of the segment, colons included, is the value ("a:b:c" yields
// property "a" and value "b:c"). Segments without a ':' or with an empty
// property name are skipped silently. An empty value is kept.
func SplitDeclarations(body string) []Declaration {
	segments := strings.Split(trim(body), statementSeparator)
	decls := make([]Declaration, 0, len(segments))
	for _, segment := range segments {
		segment = trim(segment)
		if segment == "" {
			continue
		}
		name, value, found := strings.Cut(segment, valueSeparator)
		if !found {
			continue
		}
		name = trim(name)
		if name == "" {
			continue
		}
		decls = append(decls, Declaration{Property: name, Value: trim(value)})
	}
	return decls
}

func trim(s string) string {
	return strings.Trim(s, trimCutset)
}
