// Package extract builds a wireforge schema (pkg/schema.File) by reading
// annotated Go struct declarations: a second, optional schema producer
// alongside the .wfs lexer/parser, for projects that would rather keep
// their wire types expressed as tagged Go structs than a parallel schema
// file. Output is the same *schema.File object graph the parser produces,
// so it can be formatted back to .wfs source (schema.FormatFile) or lowered
// straight into an *ir.ProtocolSchema (schema.Lower) without a detour
// through text.
package extract

import (
	"fmt"
	"go/ast"
	"go/types"

	"golang.org/x/tools/go/packages"
)

// PackageLoader loads Go packages for analysis.
type PackageLoader struct {
	config *packages.Config
}

// NewPackageLoader creates a new package loader.
func NewPackageLoader() *PackageLoader {
	return &PackageLoader{
		config: &packages.Config{
			Mode: packages.NeedName |
				packages.NeedTypes |
				packages.NeedTypesInfo |
				packages.NeedSyntax |
				packages.NeedImports |
				packages.NeedDeps,
		},
	}
}

// Load loads packages matching the given patterns.
func (l *PackageLoader) Load(patterns []string) ([]*packages.Package, error) {
	pkgs, err := packages.Load(l.config, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}

	var errs []error
	packages.Visit(pkgs, nil, func(pkg *packages.Package) {
		for _, err := range pkg.Errors {
			errs = append(errs, err)
		}
	})
	if len(errs) > 0 {
		return nil, fmt.Errorf("package errors: %v", errs[0])
	}

	return pkgs, nil
}

// TypeInfo is one collected Go struct, destined to become a StructDecl.
type TypeInfo struct {
	Name       string
	Package    string
	PkgPath    string
	Doc        string
	Fields     []*FieldInfo
	GoType     types.Type
	Implements []string // qualified names of marker interfaces this type implements
	IsExported bool
}

// FieldInfo is one collected struct field, destined to become a FieldDecl.
type FieldInfo struct {
	Name   string
	GoType types.Type
	Tag    *StructTag
	Doc    string
}

// InterfaceInfo is a collected marker interface: wireforge has no interface
// concept of its own, but a Go marker interface (one with no methods; an
// interface with any method is not collected) is the idiomatic way a Go
// producer expresses "these structs are members of one variant" — so a
// detected interface becomes a VariantDecl, its implementers the members.
type InterfaceInfo struct {
	Name            string
	Package         string
	PkgPath         string
	Doc             string
	Implementations []*TypeInfo
}

// EnumInfo is a collected named integer type with a constant group,
// destined to become an EnumDecl.
type EnumInfo struct {
	Name    string
	Package string
	PkgPath string
	Doc     string
	Values  []*EnumValueInfo
	GoType  types.Type
}

// EnumValueInfo is one collected enum constant.
type EnumValueInfo struct {
	Name   string
	Number int64
	Doc    string
}

// StructTag is a parsed `wireforge:"..."` struct tag. wireforge's wire
// format has no field numbers or optional fields (every field is always
// present at a fixed offset), so the only things worth overriding from the
// tag are the field's schema name and, for integer/float fields, explicit
// big-endian byte order (Go's own int/float types carry no endianness).
type StructTag struct {
	Name      string
	BigEndian bool
	Skip      bool
}

func extractDoc(cg *ast.CommentGroup) string {
	if cg == nil {
		return ""
	}
	return cg.Text()
}
