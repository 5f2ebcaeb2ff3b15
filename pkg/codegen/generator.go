// Package codegen generates target-language code from a compiled PIR
// (pkg/ir.Protocol). Every generator walks the same closed Type/RootType
// variant family pkg/pirdata walks to produce its plain-data dump; codegen
// differs only in what it emits for each case.
package codegen

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/blockberries/wireforge/pkg/ir"
)

// Language represents a target code generation language.
type Language string

// LanguageGo is the sole code generator this module carries: an
// idiomatic-Go systems target that decodes into Go structs (no zero-copy
// views), complementing pkg/pirdata's
// plain-data walk of the same PIR. See DESIGN.md for why the teacher's
// TypeScript and Rust backends were dropped rather than retargeted, and why
// no generic runtime payload parser sits alongside it (spec.md Non-goals).
const LanguageGo Language = "go"

// Generator is the interface for code generators: every registered
// generator consumes the final PIR, never a pre-compile schema, since
// codegen only ever runs after a protocol has cleared the full compile
// pipeline.
type Generator interface {
	// Generate produces code for one compiled protocol.
	Generate(w io.Writer, proto ir.Protocol, options Options) error

	// Language returns the target language.
	Language() Language

	// FileExtension returns the file extension for generated files.
	FileExtension() string
}

// Options configures code generation.
type Options struct {
	// Package overrides the generated package name; defaults to the
	// protocol's own (sanitized) name.
	Package string

	// OutputPath is the base output directory.
	OutputPath string

	// GenerateMarshal generates Marshal/Unmarshal methods.
	GenerateMarshal bool

	// GenerateJSON generates JSON struct tags for generated fields.
	GenerateJSON bool

	// GenerateComments includes digest/layout doc comments on generated types.
	GenerateComments bool

	// TypePrefix adds a prefix to all generated type names.
	TypePrefix string

	// TypeSuffix adds a suffix to all generated type names.
	TypeSuffix string
}

// DefaultOptions returns the default code generation options.
func DefaultOptions() Options {
	return Options{
		GenerateMarshal:  true,
		GenerateJSON:     true,
		GenerateComments: true,
	}
}

// registry holds registered generators by language.
var registry = make(map[Language]Generator)

// Register registers a generator for a language.
func Register(gen Generator) {
	registry[gen.Language()] = gen
}

// Get returns the generator for a language.
func Get(lang Language) (Generator, bool) {
	gen, ok := registry[lang]
	return gen, ok
}

// Languages returns all registered languages.
func Languages() []Language {
	langs := make([]Language, 0, len(registry))
	for lang := range registry {
		langs = append(langs, lang)
	}
	return langs
}

// Helper functions for code generation

// titleCaser is used for converting strings to title case.
var titleCaser = cases.Title(language.English)

// ToPascalCase converts a string to PascalCase.
func ToPascalCase(s string) string {
	parts := splitName(s)
	for i, p := range parts {
		parts[i] = titleCaser.String(strings.ToLower(p))
	}
	return strings.Join(parts, "")
}

// ToCamelCase converts a string to camelCase.
func ToCamelCase(s string) string {
	pascal := ToPascalCase(s)
	if len(pascal) == 0 {
		return ""
	}
	return strings.ToLower(pascal[:1]) + pascal[1:]
}

// ToSnakeCase converts a string to snake_case.
func ToSnakeCase(s string) string {
	parts := splitName(s)
	for i, p := range parts {
		parts[i] = strings.ToLower(p)
	}
	return strings.Join(parts, "_")
}

// ToUpperSnakeCase converts a string to UPPER_SNAKE_CASE.
func ToUpperSnakeCase(s string) string {
	parts := splitName(s)
	for i, p := range parts {
		parts[i] = strings.ToUpper(p)
	}
	return strings.Join(parts, "_")
}

// ToKebabCase converts a string to kebab-case.
func ToKebabCase(s string) string {
	parts := splitName(s)
	for i, p := range parts {
		parts[i] = strings.ToLower(p)
	}
	return strings.Join(parts, "-")
}

// splitName splits a name into parts based on underscores and case transitions.
func splitName(s string) []string {
	if s == "" {
		return nil
	}

	var parts []string
	var current strings.Builder

	for i, r := range s {
		if r == '_' || r == '-' {
			if current.Len() > 0 {
				parts = append(parts, current.String())
				current.Reset()
			}
			continue
		}

		// Check for case transition
		if i > 0 && isUpper(r) && !isUpper(rune(s[i-1])) {
			if current.Len() > 0 {
				parts = append(parts, current.String())
				current.Reset()
			}
		}

		current.WriteRune(r)
	}

	if current.Len() > 0 {
		parts = append(parts, current.String())
	}

	return parts
}

func isUpper(r rune) bool {
	return r >= 'A' && r <= 'Z'
}

// Indent indents each line of s by the given number of tabs.
func Indent(s string, tabs int) string {
	indent := strings.Repeat("\t", tabs)
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = indent + line
		}
	}
	return strings.Join(lines, "\n")
}

// Comment wraps text as a comment with the given prefix.
func Comment(text, prefix string) string {
	if text == "" {
		return ""
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = prefix + " " + line
	}
	return strings.Join(lines, "\n")
}

// GoComment wraps text as a Go doc comment.
func GoComment(text string) string {
	return Comment(text, "//")
}

// GeneratorError represents a code generation error, anchored to the PIR
// type/field it was raised for rather than a source position — by the time
// codegen runs, the PIR carries no file/line information of its own.
type GeneratorError struct {
	Type    string
	Field   string
	Message string
}

func (e *GeneratorError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s.%s: %s", e.Type, e.Field, e.Message)
	}
	if e.Type != "" {
		return fmt.Sprintf("%s: %s", e.Type, e.Message)
	}
	return e.Message
}
