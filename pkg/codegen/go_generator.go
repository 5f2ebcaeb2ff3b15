package codegen

import (
	"fmt"
	"io"
	"strings"

	"github.com/blockberries/wireforge/pkg/ir"
	"github.com/blockberries/wireforge/pkg/ir/intmodel"
)

// GoGenerator generates Go structs and fixed-width Marshal/Unmarshal methods
// from a compiled protocol: the systems-language target alongside
// pkg/pirdata's plain-data walk of the same PIR. Generated code decodes by
// copying into Go struct fields; it does not emit zero-copy views. Generated
// fields are laid out field-by-field exactly as the wire format describes
// (spec.md §3), with no per-field tag or length framing beyond what the
// schema itself declares.
type GoGenerator struct{}

// NewGoGenerator creates a new Go code generator.
func NewGoGenerator() *GoGenerator { return &GoGenerator{} }

// Language returns the target language.
func (g *GoGenerator) Language() Language { return LanguageGo }

// FileExtension returns the file extension for generated files.
func (g *GoGenerator) FileExtension() string { return ".go" }

// Generate produces Go code for a compiled protocol.
func (g *GoGenerator) Generate(w io.Writer, proto ir.Protocol, opts Options) error {
	ctx, err := newGoContext(proto, opts)
	if err != nil {
		return err
	}
	out, err := ctx.render()
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

// goContext holds the resolved, ordered view of a protocol's root types
// that rendering walks: structs/enums/variants split out up front, plus a
// precomputed map of which variants each struct implements, so the struct
// renderer can emit the right is{Variant}() stub methods without rescanning
// the variant list per struct.
type goContext struct {
	proto    ir.Protocol
	opts     Options
	structs  []*ir.Struct
	enums    []*ir.Enum
	variants []*ir.Variant

	implements map[string][]*ir.Variant // struct QName string -> variants it's a member of
}

func newGoContext(proto ir.Protocol, opts Options) (*goContext, error) {
	ctx := &goContext{proto: proto, opts: opts, implements: map[string][]*ir.Variant{}}
	for _, name := range proto.Types.Own {
		rt, ok := proto.Types.Lookup(name)
		if !ok {
			return nil, &GeneratorError{Type: name.String(), Message: "declared as own but missing from the type table"}
		}
		switch t := rt.(type) {
		case *ir.Struct:
			ctx.structs = append(ctx.structs, t)
		case *ir.Enum:
			ctx.enums = append(ctx.enums, t)
		case *ir.Variant:
			ctx.variants = append(ctx.variants, t)
		case *ir.HashVariant:
			return nil, &GeneratorError{Type: name.String(), Message: "hashvariant reached codegen unexpanded; hash-expand must run before Generate"}
		default:
			return nil, &GeneratorError{Type: name.String(), Message: fmt.Sprintf("unhandled root type %T", rt)}
		}
	}
	for _, v := range ctx.variants {
		for _, tag := range v.Tags {
			key := tag.Struct.String()
			ctx.implements[key] = append(ctx.implements[key], v)
		}
	}
	return ctx, nil
}

func (c *goContext) goPackage() string {
	if c.opts.Package != "" {
		return c.opts.Package
	}
	if name := c.proto.Name.Name(); name != "" {
		return ToSnakeCase(name)
	}
	return "generated"
}

// goTypeName renders a root type's Go identifier, qualifying it with its
// owning package when it belongs to a different protocol than the one
// being generated.
func (c *goContext) goTypeName(name ir.QName) string {
	base := c.opts.TypePrefix + ToPascalCase(name.Name()) + c.opts.TypeSuffix
	proto := name.Namespace().String()
	if proto != "" && proto != c.proto.Name.String() {
		return ToSnakeCase(proto) + "." + base
	}
	return base
}

func (c *goContext) lookupRoot(name ir.QName) ir.RootType {
	rt, _ := c.proto.Types.Lookup(name)
	return rt
}

func (c *goContext) findField(fields []ir.Field, name string) (ir.Field, bool) {
	for _, f := range fields {
		if f.Name == name {
			return f, true
		}
	}
	return ir.Field{}, false
}

func (c *goContext) render() (string, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "// Code generated by wireforge. DO NOT EDIT.\n// Protocol: %s\n\n", c.proto.Name.String())
	fmt.Fprintf(&b, "package %s\n\n", c.goPackage())
	b.WriteString("import (\n\t\"fmt\"\n\n\t\"github.com/blockberries/wireforge/internal/wire\"\n)\n\n")

	for _, e := range c.enums {
		c.renderEnum(&b, e)
	}
	for _, v := range c.variants {
		c.renderVariant(&b, v)
	}
	for _, s := range c.structs {
		if err := c.renderStruct(&b, s); err != nil {
			return "", err
		}
	}

	return b.String(), nil
}

func (c *goContext) renderEnum(b *strings.Builder, e *ir.Enum) {
	name := c.goTypeName(e.Name)
	underlying := goIntType(e.Underlying.Width, e.Underlying.Sign)

	if c.opts.GenerateComments {
		fmt.Fprintf(b, "// %s is an enum over %s.\n// digest: %s\n", name, underlying, e.Digest.ReprHash)
	}
	fmt.Fprintf(b, "type %s %s\n\n", name, underlying)

	fmt.Fprintf(b, "const (\n")
	for _, v := range e.Variants {
		fmt.Fprintf(b, "\t%s%s %s = %d\n", name, ToPascalCase(v.Name), name, v.Value)
	}
	fmt.Fprintf(b, ")\n\n")

	fmt.Fprintf(b, "func (e %s) String() string {\n\tswitch e {\n", name)
	for _, v := range e.Variants {
		fmt.Fprintf(b, "\tcase %s%s:\n\t\treturn %q\n", name, ToPascalCase(v.Name), v.Name)
	}
	fmt.Fprintf(b, "\tdefault:\n\t\treturn \"UNKNOWN\"\n\t}\n}\n\n")

	fmt.Fprintf(b, "func (e %s) IsValid() bool {\n", name)
	for _, r := range e.ValidRanges {
		fmt.Fprintf(b, "\tif int64(e) >= %d && int64(e) <= %d {\n\t\treturn true\n\t}\n", r.Start, r.End)
	}
	fmt.Fprintf(b, "\treturn false\n}\n\n")
}

// renderVariant emits a variant's interface type plus package-level
// encode/decode dispatch functions. The "ByTag" pair is used by fields
// whose tag lives in a sibling field (ir.DetachedVariantT); the plain pair
// reads/writes the tag inline, for fields whose type is a direct ir.RefT to
// the variant.
func (c *goContext) renderVariant(b *strings.Builder, v *ir.Variant) {
	name := c.goTypeName(v.Name)
	tagSuffix := wireSuffix(v.TagType.Width, v.TagType.Endianness)
	tagGoType := goIntType(v.TagType.Width, v.TagType.Sign)
	tagWidthBits := v.TagType.Width * 8

	if c.opts.GenerateComments {
		fmt.Fprintf(b, "// %s is a tagged union; see encode%s/decode%s for wire layout.\n// digest: %s\n", name, name, name, v.Digest.ReprHash)
	}
	fmt.Fprintf(b, "type %s interface {\n\tis%s()\n}\n\n", name, name)

	fmt.Fprintf(b, "func encode%s(buf []byte, v %s) []byte {\n\tswitch val := v.(type) {\n", name, name)
	for _, tag := range v.Tags {
		memberType := c.goTypeName(tag.Struct)
		fmt.Fprintf(b, "\tcase *%s:\n\t\tbuf = wire.Append%s(buf, uint%d(%s(%d)))\n\t\tbuf = val.encodeTo(buf)\n", memberType, tagSuffix, tagWidthBits, tagGoType, tag.Value)
	}
	fmt.Fprintf(b, "\t}\n\treturn buf\n}\n\n")

	fmt.Fprintf(b, "func encode%sByTag(buf []byte, v %s) []byte {\n\tswitch val := v.(type) {\n", name, name)
	for _, tag := range v.Tags {
		memberType := c.goTypeName(tag.Struct)
		fmt.Fprintf(b, "\tcase *%s:\n\t\tbuf = val.encodeTo(buf)\n", memberType)
	}
	fmt.Fprintf(b, "\t}\n\treturn buf\n}\n\n")

	fmt.Fprintf(b, "func decode%s(data []byte) (%s, int, error) {\n", name, name)
	fmt.Fprintf(b, "\ttag, err := wire.Decode%s(data)\n\tif err != nil {\n\t\treturn nil, 0, err\n\t}\n", tagSuffix)
	fmt.Fprintf(b, "\trest := data[wire.Width%d:]\n", tagWidthBits)
	fmt.Fprintf(b, "\tv, n, err := decode%sByTag(rest, int64(tag))\n\tif err != nil {\n\t\treturn nil, 0, err\n\t}\n", name)
	fmt.Fprintf(b, "\treturn v, wire.Width%d + n, nil\n}\n\n", tagWidthBits)

	fmt.Fprintf(b, "func decode%sByTag(data []byte, tag int64) (%s, int, error) {\n\tswitch tag {\n", name, name)
	for _, tag := range v.Tags {
		memberType := c.goTypeName(tag.Struct)
		fmt.Fprintf(b, "\tcase %d:\n\t\tvar m %s\n\t\tn, err := m.decodeFrom(data)\n\t\tif err != nil {\n\t\t\treturn nil, 0, err\n\t\t}\n\t\treturn &m, n, nil\n", tag.Value, memberType)
	}
	fmt.Fprintf(b, "\tdefault:\n\t\treturn nil, 0, fmt.Errorf(\"wireforge: unknown %s tag %%d\", tag)\n\t}\n}\n\n", name)
}

func (c *goContext) renderStruct(b *strings.Builder, s *ir.Struct) error {
	name := c.goTypeName(s.Name)

	if c.opts.GenerateComments {
		fmt.Fprintf(b, "// %s digest: %s\n", name, s.Digest.ReprHash)
	}
	fmt.Fprintf(b, "type %s struct {\n", name)
	for _, f := range s.Fields {
		goType, err := c.goFieldType(f.Type)
		if err != nil {
			return &GeneratorError{Type: s.Name.String(), Field: f.Name, Message: err.Error()}
		}
		tag := ""
		if c.opts.GenerateJSON {
			tag = fmt.Sprintf(" `json:\"%s\"`", ToSnakeCase(f.Name))
		}
		fmt.Fprintf(b, "\t%s %s%s\n", ToPascalCase(f.Name), goType, tag)
	}
	fmt.Fprintf(b, "}\n\n")

	for _, v := range c.implements[s.Name.String()] {
		fmt.Fprintf(b, "func (*%s) is%s() {}\n\n", name, c.goTypeName(v.Name))
	}

	if !c.opts.GenerateMarshal {
		return nil
	}

	fmt.Fprintf(b, "func (m *%s) MarshalWireforge() ([]byte, error) {\n\treturn m.encodeTo(nil), nil\n}\n\n", name)
	fmt.Fprintf(b, "func (m *%s) encodeTo(buf []byte) []byte {\n", name)
	for _, f := range s.Fields {
		if sync := c.autoSyncLength(s, f); sync != "" {
			fmt.Fprintf(b, "\t%s\n", sync)
		}
	}
	for _, f := range s.Fields {
		stmt, err := c.encodeField(f)
		if err != nil {
			return &GeneratorError{Type: s.Name.String(), Field: f.Name, Message: err.Error()}
		}
		fmt.Fprintf(b, "\t%s\n", stmt)
	}
	fmt.Fprintf(b, "\treturn buf\n}\n\n")

	fmt.Fprintf(b, "func (m *%s) UnmarshalWireforge(data []byte) error {\n\t_, err := m.decodeFrom(data)\n\treturn err\n}\n\n", name)
	fmt.Fprintf(b, "func (m *%s) decodeFrom(data []byte) (int, error) {\n\ttotal := 0\n\trest := data\n", name)
	for _, f := range s.Fields {
		stmt, err := c.decodeField(f)
		if err != nil {
			return &GeneratorError{Type: s.Name.String(), Field: f.Name, Message: err.Error()}
		}
		fmt.Fprintf(b, "%s\n", stmt)
	}
	fmt.Fprintf(b, "\treturn total, nil\n}\n\n")

	return nil
}

// autoSyncLength keeps a Vector/List(variable) field's length sibling in
// sync with the slice it actually holds, so callers only ever need to set
// the slice, not the redundant count field, before marshaling.
func (c *goContext) autoSyncLength(s *ir.Struct, f ir.Field) string {
	var lenField string
	switch t := f.Type.(type) {
	case ir.VectorT:
		lenField = t.LengthField
	case ir.ListT:
		if t.Length.Kind != ir.ListVariableLength {
			return ""
		}
		lenField = t.Length.FieldName
	default:
		return ""
	}
	sib, ok := c.findField(s.Fields, lenField)
	if !ok {
		return ""
	}
	it, ok := sib.Type.(ir.IntT)
	if !ok {
		return ""
	}
	castType := goIntType(it.Width, it.Sign)
	return fmt.Sprintf("m.%s = %s(len(m.%s))", ToPascalCase(lenField), castType, ToPascalCase(f.Name))
}

func goIntType(width int, sign intmodel.Sign) string {
	if sign == intmodel.Unsigned {
		return fmt.Sprintf("uint%d", width*8)
	}
	return fmt.Sprintf("int%d", width*8)
}

func goFloatType(width int) string { return fmt.Sprintf("float%d", width*8) }

// wireSuffix is the internal/wire Append/Decode function name (minus the
// Append/Decode verb), e.g. "Uint32LE". internal/wire only defines unsigned
// fixed-width primitives — a signed field reuses the unsigned primitive and
// gets its sign back from the Go-level intN(...) conversion the caller
// wraps around the raw value; a 1-byte value has no endianness suffix.
func wireSuffix(width int, endianness intmodel.Endianness) string {
	if width == 1 {
		return "Uint8"
	}
	end := "LE"
	if endianness == intmodel.Big {
		end = "BE"
	}
	return fmt.Sprintf("Uint%d%s", width*8, end)
}

func (c *goContext) goFieldType(t ir.Type) (string, error) {
	switch v := t.(type) {
	case ir.IntT:
		return goIntType(v.Width, v.Sign), nil
	case ir.FloatT:
		return goFloatType(v.Width), nil
	case ir.RefT:
		switch c.lookupRoot(v.Name).(type) {
		case *ir.Struct:
			return "*" + c.goTypeName(v.Name), nil
		case *ir.Enum:
			return c.goTypeName(v.Name), nil
		case *ir.Variant:
			return c.goTypeName(v.Name), nil
		default:
			return "", fmt.Errorf("reference to unresolved type %s", v.Name.String())
		}
	case ir.ArrayT:
		inner, err := c.goFieldType(v.Inner)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("[%d]%s", v.Length, inner), nil
	case ir.VectorT:
		inner, err := c.goFieldType(v.Inner)
		if err != nil {
			return "", err
		}
		return "[]" + inner, nil
	case ir.ListT:
		inner, err := c.goFieldType(v.Inner)
		if err != nil {
			return "", err
		}
		return "[]" + inner, nil
	case ir.DetachedVariantT:
		ref, ok := v.Variant.(ir.RefT)
		if !ok {
			return "", fmt.Errorf("detached variant field does not reference a named variant type")
		}
		return c.goTypeName(ref.Name), nil
	case ir.VirtualT:
		return c.goFieldType(v.Inner)
	default:
		return "", fmt.Errorf("unsupported field type %T", t)
	}
}

func (c *goContext) encodeField(f ir.Field) (string, error) {
	return c.encodeValue(f.Type, "m."+ToPascalCase(f.Name))
}

func (c *goContext) encodeValue(t ir.Type, accessor string) (string, error) {
	switch v := t.(type) {
	case ir.IntT:
		suffix := wireSuffix(v.Width, v.Endianness)
		unsignedCast := fmt.Sprintf("uint%d", v.Width*8)
		return fmt.Sprintf("buf = wire.Append%s(buf, %s(%s))", suffix, unsignedCast, accessor), nil
	case ir.FloatT:
		be := v.Endianness == intmodel.Big
		return fmt.Sprintf("buf = wire.AppendFloat%d(buf, %s, %t)", v.Width*8, accessor, be), nil
	case ir.RefT:
		switch rt := c.lookupRoot(v.Name).(type) {
		case *ir.Struct:
			return fmt.Sprintf("buf = %s.encodeTo(buf)", accessor), nil
		case *ir.Enum:
			suffix := wireSuffix(rt.Underlying.Width, rt.Underlying.Endianness)
			unsignedCast := fmt.Sprintf("uint%d", rt.Underlying.Width*8)
			return fmt.Sprintf("buf = wire.Append%s(buf, %s(%s))", suffix, unsignedCast, accessor), nil
		case *ir.Variant:
			return fmt.Sprintf("buf = encode%s(buf, %s)", c.goTypeName(v.Name), accessor), nil
		default:
			return "", fmt.Errorf("reference to unresolved type %s", v.Name.String())
		}
	case ir.ArrayT:
		inner, err := c.encodeValue(v.Inner, "elem")
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("for _, elem := range %s {\n\t\t%s\n\t}", accessor, inner), nil
	case ir.VectorT:
		inner, err := c.encodeValue(v.Inner, "elem")
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("for _, elem := range %s {\n\t\t%s\n\t}", accessor, inner), nil
	case ir.ListT:
		inner, err := c.encodeValue(v.Inner, "elem")
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("for _, elem := range %s {\n\t\t%s\n\t}", accessor, inner), nil
	case ir.DetachedVariantT:
		ref, ok := v.Variant.(ir.RefT)
		if !ok {
			return "", fmt.Errorf("detached variant does not reference a named variant type")
		}
		return fmt.Sprintf("buf = encode%sByTag(buf, %s)", c.goTypeName(ref.Name), accessor), nil
	case ir.VirtualT:
		return fmt.Sprintf("_ = %s // virtual field: contributes no wire bytes", accessor), nil
	default:
		return "", fmt.Errorf("unsupported field type %T", t)
	}
}

// decodeField emits the statements decoding one field from rest into the
// struct receiver, advancing rest and total in place.
func (c *goContext) decodeField(f ir.Field) (string, error) {
	return c.decodeValue(f.Type, "m."+ToPascalCase(f.Name))
}

// decodeEnumValue decodes an enum RefT: it reads the underlying int exactly
// like decodeValue's IntT case, then casts the result to the enum's Go type.
func (c *goContext) decodeEnumValue(enum *ir.Enum, accessor string) (string, error) {
	suffix := wireSuffix(enum.Underlying.Width, enum.Underlying.Endianness)
	width := enum.Underlying.Width * 8
	goType := c.goTypeName(enum.Name)
	return fmt.Sprintf(`	{
		v, err := wire.Decode%s(rest)
		if err != nil {
			return total, err
		}
		%s = %s(v)
		rest = rest[wire.Width%d:]
		total += wire.Width%d
	}`, suffix, accessor, goType, width, width), nil
}

func (c *goContext) decodeValue(t ir.Type, accessor string) (string, error) {
	switch v := t.(type) {
	case ir.IntT:
		suffix := wireSuffix(v.Width, v.Endianness)
		width := v.Width * 8
		goType := goIntType(v.Width, v.Sign)
		return fmt.Sprintf(`	{
		v, err := wire.Decode%s(rest)
		if err != nil {
			return total, err
		}
		%s = %s(v)
		rest = rest[wire.Width%d:]
		total += wire.Width%d
	}`, suffix, accessor, goType, width, width), nil
	case ir.FloatT:
		be := v.Endianness == intmodel.Big
		width := v.Width * 8
		return fmt.Sprintf(`	{
		v, err := wire.DecodeFloat%d(rest, %t)
		if err != nil {
			return total, err
		}
		%s = v
		rest = rest[wire.Width%d:]
		total += wire.Width%d
	}`, width, be, accessor, width, width), nil
	case ir.RefT:
		switch rt := c.lookupRoot(v.Name).(type) {
		case *ir.Struct:
			goType := c.goTypeName(v.Name)
			return fmt.Sprintf(`	{
		var sub %s
		n, err := sub.decodeFrom(rest)
		if err != nil {
			return total, err
		}
		%s = &sub
		rest = rest[n:]
		total += n
	}`, goType, accessor), nil
		case *ir.Variant:
			name := c.goTypeName(v.Name)
			return fmt.Sprintf(`	{
		val, n, err := decode%s(rest)
		if err != nil {
			return total, err
		}
		%s = val
		rest = rest[n:]
		total += n
	}`, name, accessor), nil
		case *ir.Enum:
			return c.decodeEnumValue(rt, accessor)
		default:
			return "", fmt.Errorf("reference to unresolved type %s", v.Name.String())
		}
	case ir.ArrayT:
		inner, err := c.goFieldType(v.Inner)
		if err != nil {
			return "", err
		}
		elemStmt, err := c.decodeValue(v.Inner, "elem")
		if err != nil {
			return "", err
		}
		return fmt.Sprintf(`	{
		%s = [%d]%s{}
		for i := 0; i < %d; i++ {
			var elem %s
%s
			%s[i] = elem
		}
	}`, accessor, v.Length, inner, v.Length, inner, elemStmt, accessor), nil
	case ir.VectorT:
		return c.decodeCountedSeq(v.Inner, accessor, "int(m."+ToPascalCase(v.LengthField)+")")
	case ir.ListT:
		count := fmt.Sprintf("%d", v.Length.FixedValue)
		if v.Length.Kind == ir.ListVariableLength {
			count = "int(m." + ToPascalCase(v.Length.FieldName) + ")"
		}
		return c.decodeCountedSeq(v.Inner, accessor, count)
	case ir.DetachedVariantT:
		ref, ok := v.Variant.(ir.RefT)
		if !ok {
			return "", fmt.Errorf("detached variant does not reference a named variant type")
		}
		name := c.goTypeName(ref.Name)
		return fmt.Sprintf(`	{
		val, n, err := decode%sByTag(rest, int64(m.%s))
		if err != nil {
			return total, err
		}
		%s = val
		rest = rest[n:]
		total += n
	}`, name, ToPascalCase(v.TagField), accessor), nil
	case ir.VirtualT:
		return fmt.Sprintf("\t_ = %s // virtual field: contributes no wire bytes", accessor), nil
	default:
		return "", fmt.Errorf("unsupported field type %T", t)
	}
}

func (c *goContext) decodeCountedSeq(inner ir.Type, accessor, countExpr string) (string, error) {
	innerType, err := c.goFieldType(inner)
	if err != nil {
		return "", err
	}
	elemStmt, err := c.decodeValue(inner, "elem")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`	{
		n := %s
		%s = make([]%s, n)
		for i := 0; i < n; i++ {
			var elem %s
%s
			%s[i] = elem
		}
	}`, countExpr, accessor, innerType, innerType, elemStmt, accessor), nil
}

func init() {
	Register(NewGoGenerator())
}
