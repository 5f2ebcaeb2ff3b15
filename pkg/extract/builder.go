package extract

import (
	"fmt"
	"go/types"
	"sort"
	"strings"

	"github.com/blockberries/wireforge/pkg/schema"
)

// SchemaBuilder converts collected Go type information into a *schema.File,
// the same AST a .wfs source file lowers to.
type SchemaBuilder struct {
	types      map[string]*TypeInfo
	interfaces map[string]*InterfaceInfo
	enums      map[string]*EnumInfo
	warnings   []string
}

// NewSchemaBuilder creates a new schema builder.
func NewSchemaBuilder(types map[string]*TypeInfo, interfaces map[string]*InterfaceInfo, enums map[string]*EnumInfo) *SchemaBuilder {
	return &SchemaBuilder{types: types, interfaces: interfaces, enums: enums}
}

// Warnings returns non-fatal notices accumulated while building (fields
// skipped for lack of a representable wire type, platform-dependent Go
// types, etc).
func (b *SchemaBuilder) Warnings() []string { return b.warnings }

func (b *SchemaBuilder) addWarning(msg string) { b.warnings = append(b.warnings, msg) }

// Build constructs a schema.File for the given protocol name from the
// collected types. Structs, enums, and marker-interface variants are each
// emitted in name-sorted order for deterministic output.
func (b *SchemaBuilder) Build(protocol string) (*schema.File, error) {
	file := &schema.File{Protocol: protocol}

	b.buildEnums(file)
	if err := b.buildStructs(file); err != nil {
		return nil, err
	}
	b.buildVariants(file)

	return file, nil
}

func (b *SchemaBuilder) buildEnums(file *schema.File) {
	names := sortedKeys(b.enums)
	for _, name := range names {
		enum := b.enums[name]
		decl := &schema.EnumDecl{
			Name:       enum.Name,
			Underlying: &schema.IntTypeExpr{Width: 4, Signed: false, Endianness: "le", Raw: "u32le"},
		}
		if enum.Doc != "" {
			decl.Comments = []*schema.Comment{{Text: enum.Doc, IsDoc: true}}
		}

		values := make([]*EnumValueInfo, len(enum.Values))
		copy(values, enum.Values)
		sort.Slice(values, func(i, j int) bool { return values[i].Number < values[j].Number })

		for _, v := range values {
			decl.Values = append(decl.Values, &schema.EnumValueDecl{Name: v.Name, Value: v.Number})
		}

		file.Enums = append(file.Enums, decl)
	}
}

func (b *SchemaBuilder) buildStructs(file *schema.File) error {
	names := sortedKeys(b.types)
	for _, name := range names {
		typ := b.types[name]
		decl := &schema.StructDecl{Name: typ.Name}
		if typ.Doc != "" {
			decl.Comments = []*schema.Comment{{Text: typ.Doc, IsDoc: true}}
		}

		for _, field := range typ.Fields {
			typeExpr, err := b.goTypeToTypeExpr(field.GoType, field.Tag != nil && field.Tag.BigEndian)
			if err != nil {
				b.addWarning(fmt.Sprintf("%s.%s: %v; field skipped", typ.Name, field.Name, err))
				continue
			}

			fieldName := toSnakeCase(field.Name)
			if field.Tag != nil && field.Tag.Name != "" {
				fieldName = field.Tag.Name
			}

			fieldDecl := &schema.FieldDecl{Name: fieldName, Type: typeExpr}
			if field.Doc != "" {
				fieldDecl.Comments = []*schema.Comment{{Text: field.Doc, IsDoc: true}}
			}
			decl.Fields = append(decl.Fields, fieldDecl)
		}

		file.Structs = append(file.Structs, decl)
	}
	return nil
}

// buildVariants turns each detected Go marker interface into a fixed-tag
// variant, tagging members from 0 in the order of Implementations (which the
// collector sorts by name; Build does not re-sort) — deterministic, but
// callers that need stable tags across re-extraction should pin them with
// an explicit conversion or hand-edit the emitted .wfs file afterward.
func (b *SchemaBuilder) buildVariants(file *schema.File) {
	names := sortedKeys(b.interfaces)
	for _, name := range names {
		iface := b.interfaces[name]
		if len(iface.Implementations) == 0 {
			continue
		}
		decl := &schema.VariantDecl{
			Name:    iface.Name,
			TagType: &schema.IntTypeExpr{Width: 1, Signed: false, Endianness: "le", Raw: "u8"},
		}
		if iface.Doc != "" {
			decl.Comments = []*schema.Comment{{Text: iface.Doc, IsDoc: true}}
		}
		for i, impl := range iface.Implementations {
			decl.Members = append(decl.Members, &schema.VariantMemberDecl{
				Tag:    int64(i),
				Struct: &schema.RefTypeExpr{Segments: []string{impl.Name}},
			})
		}
		file.Variants = append(file.Variants, decl)
	}
}

// goTypeToTypeExpr maps a Go field type to the wireforge type expression it
// best represents. Go's int/float types carry no endianness of their own,
// so every field defaults to little-endian unless its struct tag says
// otherwise (`wireforge:",be"`); Go also has no bounded-length sequence of
// its own, so a slice becomes an unbound sequence whose length field the
// type compiler injects (a u32le count), rather than trying to guess which
// sibling field the caller intends to hold the count.
func (b *SchemaBuilder) goTypeToTypeExpr(t types.Type, big bool) (schema.TypeExpr, error) {
	switch v := t.(type) {
	case *types.Pointer:
		return b.goTypeToTypeExpr(v.Elem(), big)
	case *types.Named:
		name := v.Obj().Name()
		pkgPath := ""
		if v.Obj().Pkg() != nil {
			pkgPath = v.Obj().Pkg().Path()
		}
		qualified := pkgPath + "." + name
		if _, ok := b.enums[qualified]; ok {
			return &schema.RefTypeExpr{Segments: []string{name}}, nil
		}
		if _, ok := b.types[qualified]; ok {
			return &schema.RefTypeExpr{Segments: []string{name}}, nil
		}
		if _, ok := b.interfaces[qualified]; ok {
			return &schema.RefTypeExpr{Segments: []string{name}}, nil
		}
		return b.goTypeToTypeExpr(v.Underlying(), big)
	case *types.Basic:
		if v.Kind() == types.String {
			return &schema.UnboundSeqTypeExpr{
				Inner:   &schema.IntTypeExpr{Width: 1, Signed: false, Endianness: "le", Raw: "u8"},
				LenType: &schema.IntTypeExpr{Width: 4, Signed: false, Endianness: "le", Raw: "u32le"},
			}, nil
		}
		return b.basicTypeExpr(v, big)
	case *types.Slice:
		inner, err := b.goTypeToTypeExpr(v.Elem(), big)
		if err != nil {
			return nil, err
		}
		return &schema.UnboundSeqTypeExpr{
			Inner:   inner,
			LenType: &schema.IntTypeExpr{Width: 4, Signed: false, Endianness: "le", Raw: "u32le"},
		}, nil
	case *types.Array:
		inner, err := b.goTypeToTypeExpr(v.Elem(), big)
		if err != nil {
			return nil, err
		}
		return &schema.ArrayTypeExpr{Inner: inner, Length: int(v.Len())}, nil
	default:
		return nil, fmt.Errorf("no wireforge representation for Go type %s", t.String())
	}
}

func (b *SchemaBuilder) basicTypeExpr(t *types.Basic, big bool) (schema.TypeExpr, error) {
	endianness := "le"
	if big {
		endianness = "be"
	}
	intExpr := func(width int, signed bool) *schema.IntTypeExpr {
		sign := "u"
		if signed {
			sign = "i"
		}
		return &schema.IntTypeExpr{Width: width, Signed: signed, Endianness: endianness, Raw: fmt.Sprintf("%s%d%s", sign, width*8, endianness)}
	}

	switch t.Kind() {
	case types.Bool, types.Uint8:
		return intExpr(1, false), nil
	case types.Int8:
		return intExpr(1, true), nil
	case types.Int16:
		return intExpr(2, true), nil
	case types.Uint16:
		return intExpr(2, false), nil
	case types.Int, types.Int32:
		if t.Kind() == types.Int {
			b.addWarning("type 'int' is platform-dependent; mapped to a 4-byte signed int, consider int32/int64 explicitly")
		}
		return intExpr(4, true), nil
	case types.Uint, types.Uint32:
		if t.Kind() == types.Uint {
			b.addWarning("type 'uint' is platform-dependent; mapped to a 4-byte unsigned int, consider uint32/uint64 explicitly")
		}
		return intExpr(4, false), nil
	case types.Int64:
		return intExpr(8, true), nil
	case types.Uint64:
		return intExpr(8, false), nil
	case types.Float32:
		return &schema.FloatTypeExpr{Width: 4, Endianness: endianness, Raw: "f32" + endianness}, nil
	case types.Float64:
		return &schema.FloatTypeExpr{Width: 8, Endianness: endianness, Raw: "f64" + endianness}, nil
	default:
		return nil, fmt.Errorf("no fixed-width wire representation for Go type %s", t.String())
	}
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// toSnakeCase converts CamelCase to snake_case, handling runs of uppercase
// letters (e.g. "HTTPServer" -> "http_server").
func toSnakeCase(s string) string {
	if s == "" {
		return ""
	}
	var result strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				prev := runes[i-1]
				isLowerPrev := prev >= 'a' && prev <= 'z'
				isUpperNext := i+1 < len(runes) && runes[i+1] >= 'a' && runes[i+1] <= 'z'
				if isLowerPrev || isUpperNext {
					result.WriteByte('_')
				}
			}
			result.WriteRune(r + 32)
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}
