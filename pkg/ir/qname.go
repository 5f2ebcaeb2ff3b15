// Package ir defines the Schema, MIR, and PIR intermediate representations
// used by the wireforge compiler pipeline, along with the small supporting
// data types (qualified names, sizes, offsets, digests) that those
// representations are built from.
package ir

import (
	"strings"
	"unicode"
)

// reservedKeywords are identifiers forbidden for user names because they
// collide with keywords of common code-generation target languages, per
// the reserved identifier set.
var reservedKeywords = map[string]bool{
	"for": true, "while": true, "in": true, "auto": true, "const": true,
	"volatile": true, "def": true, "void": true, "not": true, "and": true,
	"or": true, "None": true, "return": true, "int": true, "long": true,
	"signed": true, "unsigned": true, "double": true, "float": true,
	"bool": true, "class": true, "struct": true, "public": true,
	"private": true, "protected": true, "final": true, "default": true,
	"new": true, "delete": true,
	// generator-reserved method names
	"parse": true, "build": true, "size_bytes": true, "serialize": true,
	"serialize_into": true,
}

// forbiddenSuffixes are suffixes reserved for compiler-generated names.
var forbiddenSuffixes = []string{"View", "Tag"}

// QName is an ordered sequence of identifier segments, e.g. "pkg.Inner.Field".
type QName struct {
	segments []string
}

// NewQName builds a QName from its dot-path segments.
func NewQName(segments ...string) QName {
	cp := make([]string, len(segments))
	copy(cp, segments)
	return QName{segments: cp}
}

// ParseQName parses a dot-path string into a QName. An empty string yields
// the empty QName.
func ParseQName(path string) QName {
	if path == "" {
		return QName{}
	}
	return QName{segments: strings.Split(path, ".")}
}

// Segments returns the underlying segment slice. Callers must not mutate it.
func (q QName) Segments() []string { return q.segments }

// String renders the QName as a dot-path.
func (q QName) String() string { return strings.Join(q.segments, ".") }

// IsEmpty reports whether the QName has no segments.
func (q QName) IsEmpty() bool { return len(q.segments) == 0 }

// Namespace returns the QName made of all but the last segment.
func (q QName) Namespace() QName {
	if len(q.segments) == 0 {
		return QName{}
	}
	return QName{segments: q.segments[:len(q.segments)-1]}
}

// Name returns the last segment, or "" if the QName is empty.
func (q QName) Name() string {
	if len(q.segments) == 0 {
		return ""
	}
	return q.segments[len(q.segments)-1]
}

// Append returns a new QName with an additional trailing segment.
func (q QName) Append(segment string) QName {
	out := make([]string, len(q.segments)+1)
	copy(out, q.segments)
	out[len(q.segments)] = segment
	return QName{segments: out}
}

// Prefix returns a new QName with the given namespace's segments prepended.
func (q QName) Prefix(namespace QName) QName {
	if namespace.IsEmpty() {
		return q
	}
	out := make([]string, 0, len(namespace.segments)+len(q.segments))
	out = append(out, namespace.segments...)
	out = append(out, q.segments...)
	return QName{segments: out}
}

// ReplaceName returns a new QName with its last segment replaced.
func (q QName) ReplaceName(name string) QName {
	if len(q.segments) == 0 {
		return QName{segments: []string{name}}
	}
	out := make([]string, len(q.segments))
	copy(out, q.segments)
	out[len(out)-1] = name
	return QName{segments: out}
}

// Equal reports structural equality between two QNames.
func (q QName) Equal(other QName) bool {
	if len(q.segments) != len(other.segments) {
		return false
	}
	for i := range q.segments {
		if q.segments[i] != other.segments[i] {
			return false
		}
	}
	return true
}

// IsValidIdentifier reports whether name satisfies the identifier rule:
// [A-Za-z][A-Za-z0-9_]*, no trailing underscore, not a reserved keyword,
// and without a forbidden suffix. A leading underscore is reserved for
// generators and a trailing underscore for compiler-synthesized names, so
// user-supplied identifiers may not start or end with one.
func IsValidIdentifier(name string) bool {
	if name == "" {
		return false
	}
	runes := []rune(name)
	if !unicode.IsLetter(runes[0]) || runes[0] > unicode.MaxASCII {
		return false
	}
	for _, r := range runes[1:] {
		if !(unicode.IsLetter(r) && r <= unicode.MaxASCII) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}
	if runes[0] == '_' {
		return false
	}
	if runes[len(runes)-1] == '_' {
		return false
	}
	if reservedKeywords[name] {
		return false
	}
	for _, suf := range forbiddenSuffixes {
		if len(name) > len(suf) && strings.HasSuffix(name, suf) {
			return false
		}
	}
	return true
}

// IsValidSynthesizedName reports whether name is a legal compiler-synthesized
// identifier: it must end with an underscore, the one mark forbidden on
// user-supplied names.
func IsValidSynthesizedName(name string) bool {
	return strings.HasSuffix(name, "_")
}
