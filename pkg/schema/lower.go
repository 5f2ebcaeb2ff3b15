package schema

import (
	"fmt"
	"strings"

	"github.com/blockberries/wireforge/pkg/ir"
	"github.com/blockberries/wireforge/pkg/ir/intmodel"
)

// LowerError is a syntactic/structural error found while lowering a parsed
// *File into the ingestion-facing object graph — distinct from a
// *ParseError (grammar) and from a *cerrors.CompileError (semantic,
// produced further downstream by pkg/compiler/ingest).
type LowerError struct {
	Position Position
	Message  string
}

func (e LowerError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.Position.Filename, e.Position.Line, e.Position.Column, e.Message)
}

// Lower converts a parsed *File into the *ir.ProtocolSchema object graph
// ingestion consumes (spec.md §6.1). imports maps each import alias (or,
// absent an explicit "as", the imported protocol's own name) to that
// protocol's own already-lowered schema.
func Lower(file *File, imports map[string]*ir.ProtocolSchema) (*ir.ProtocolSchema, []error) {
	lo := &lowerer{file: file, imports: imports, aliasToProtocol: map[string]string{}}
	for alias, ref := range imports {
		lo.aliasToProtocol[alias] = ref.Name
	}
	schema := lo.run()
	var errs []error
	for _, e := range lo.errs {
		errs = append(errs, e)
	}
	return schema, errs
}

type lowerer struct {
	file            *File
	imports         map[string]*ir.ProtocolSchema
	aliasToProtocol map[string]string
	errs            []LowerError
}

func (lo *lowerer) fail(pos Position, format string, args ...any) {
	lo.errs = append(lo.errs, LowerError{Position: pos, Message: fmt.Sprintf(format, args...)})
}

func (lo *lowerer) loc(pos Position) ir.SourceLoc {
	return ir.SourceLoc{File: pos.Filename, Line: pos.Line, Column: pos.Column}
}

// qname resolves a dotted reference against the current protocol and its
// imports: a single segment is local ("Color" -> thisProto.Color); a
// multi-segment reference's leading segment is tried as an import alias
// first ("base.Color" -> basesProtocol.Color), falling back to treating the
// whole path as already fully qualified.
func (lo *lowerer) qname(ref *RefTypeExpr) ir.QName {
	if len(ref.Segments) == 1 {
		return ir.NewQName(lo.file.Protocol, ref.Segments[0])
	}
	if proto, ok := lo.aliasToProtocol[ref.Segments[0]]; ok {
		segs := append([]string{proto}, ref.Segments[1:]...)
		return ir.NewQName(segs...)
	}
	return ir.ParseQName(strings.Join(ref.Segments, "."))
}

func (lo *lowerer) run() *ir.ProtocolSchema {
	schema := &ir.ProtocolSchema{
		Name:       lo.file.Protocol,
		References: map[string]*ir.ProtocolSchema{},
		Loc:        lo.loc(lo.file.Position),
	}

	for _, ref := range lo.imports {
		schema.References[ref.Name] = ref
	}

	for _, s := range lo.file.Structs {
		schema.Types = append(schema.Types, lo.lowerStruct(s))
	}
	for _, e := range lo.file.Enums {
		schema.Types = append(schema.Types, lo.lowerEnum(e))
	}
	for _, v := range lo.file.Variants {
		schema.Types = append(schema.Types, lo.lowerVariant(v))
	}
	for _, h := range lo.file.HashVariants {
		schema.Types = append(schema.Types, lo.lowerHashVariant(h))
	}
	for _, c := range lo.file.Constants {
		schema.Constants = append(schema.Constants, lo.lowerConst(c))
	}
	for _, c := range lo.file.Conversions {
		if conv, ok := lo.lowerConversion(c); ok {
			schema.Conversions = append(schema.Conversions, conv)
		}
	}
	if lo.file.FromPrior != nil {
		schema.FromPrior = &ir.ConversionsFromPrior{
			PriorProtocol: lo.file.FromPrior.PriorProtocol,
			Loc:           lo.loc(lo.file.FromPrior.Position),
		}
	}

	return schema
}

func (lo *lowerer) lowerStruct(s *StructDecl) *ir.StructDef {
	def := &ir.StructDef{
		Name:         ir.NewQName(lo.file.Protocol, s.Name),
		ProtocolName: lo.file.Protocol,
		Loc:          lo.loc(s.Position),
	}
	for _, f := range s.Fields {
		def.Fields = append(def.Fields, ir.SchemaField{
			Name: f.Name,
			Type: lo.lowerTypeExpr(f.Type),
			Loc:  lo.loc(f.Position),
		})
	}
	return def
}

func (lo *lowerer) lowerEnum(e *EnumDecl) *ir.EnumDef {
	def := &ir.EnumDef{
		Name:         ir.NewQName(lo.file.Protocol, e.Name),
		ProtocolName: lo.file.Protocol,
		Underlying:   lo.lowerIntType(e.Underlying),
		Loc:          lo.loc(e.Position),
	}
	for _, v := range e.Values {
		def.Variants = append(def.Variants, ir.EnumVariantDef{Name: v.Name, Value: v.Value, Loc: lo.loc(v.Position)})
	}
	return def
}

func (lo *lowerer) lowerVariant(v *VariantDecl) *ir.VariantDef {
	def := &ir.VariantDef{
		Name:         ir.NewQName(lo.file.Protocol, v.Name),
		ProtocolName: lo.file.Protocol,
		TagType:      lo.lowerIntType(v.TagType),
		Loc:          lo.loc(v.Position),
	}
	for _, m := range v.Members {
		def.Tags = append(def.Tags, ir.VariantTagDef{Struct: lo.qname(m.Struct), Value: m.Tag, Loc: lo.loc(m.Position)})
	}
	return def
}

func (lo *lowerer) lowerHashVariant(h *HashVariantDecl) *ir.HashVariantDef {
	def := &ir.HashVariantDef{
		Name:         ir.NewQName(lo.file.Protocol, h.Name),
		ProtocolName: lo.file.Protocol,
		TagType:      lo.lowerIntType(h.TagType),
		Loc:          lo.loc(h.Position),
	}
	for _, m := range h.Members {
		def.Members = append(def.Members, lo.qname(m))
	}
	return def
}

func (lo *lowerer) lowerConst(c *ConstDecl) ir.RootConstantDef {
	name := ir.NewQName(lo.file.Protocol, c.Name)
	loc := lo.loc(c.Position)
	if c.IsString {
		sv, ok := c.Value.(*StringValue)
		if !ok {
			lo.fail(c.Position, "constant %q declared as string must have a string value", c.Name)
			sv = &StringValue{}
		}
		return &ir.RootStringConstant{Name: name, ProtocolName: lo.file.Protocol, Value: sv.Value, Loc: loc}
	}
	iv, ok := c.Value.(*IntValue)
	if !ok {
		lo.fail(c.Position, "constant %q declared as an integer type must have an integer value", c.Name)
		iv = &IntValue{}
	}
	intType := ir.IntType{}
	if t, ok := c.Type.(*IntTypeExpr); ok {
		intType = lo.lowerIntType(t)
	}
	return &ir.RootIntConstant{Name: name, ProtocolName: lo.file.Protocol, Type: intType, Value: iv.Value, Loc: loc}
}

func (lo *lowerer) lowerConversion(c *ConversionDecl) (ir.ConversionDef, bool) {
	src := lo.qname(c.Src)
	target := lo.qname(c.Target)
	loc := lo.loc(c.Position)

	if c.NoConversion {
		return ir.ConversionDef{Kind: ir.ConversionNone, Src: src, Target: target, Loc: loc}, true
	}

	switch {
	case len(c.FieldConversions) > 0:
		mapping := make(map[string]ir.FieldConversionDef, len(c.FieldConversions))
		for _, fc := range c.FieldConversions {
			mapping[fc.TargetName] = lo.lowerFieldConversion(fc)
		}
		return ir.ConversionDef{Kind: ir.ConversionStruct, Src: src, Target: target, Loc: loc, StructMapping: mapping}, true
	case len(c.VariantMapping) > 0:
		var mapping []ir.VariantValueMappingDef
		for _, vm := range c.VariantMapping {
			entry := ir.VariantValueMappingDef{SrcStruct: lo.qname(vm.Src), HasTarget: vm.HasTarget, Loc: lo.loc(vm.Position)}
			if vm.HasTarget {
				entry.TargetStruct = lo.qname(vm.Target)
			}
			mapping = append(mapping, entry)
		}
		return ir.ConversionDef{Kind: ir.ConversionVariant, Src: src, Target: target, Loc: loc, VariantMapping: mapping}, true
	case len(c.EnumMapping) > 0:
		var mapping []ir.EnumValueMappingDef
		for _, em := range c.EnumMapping {
			mapping = append(mapping, ir.EnumValueMappingDef{Src: em.Src, Target: em.Target, HasTarget: em.HasTarget, Loc: lo.loc(em.Position)})
		}
		return ir.ConversionDef{Kind: ir.ConversionEnum, Src: src, Target: target, Loc: loc, EnumMapping: mapping}, true
	default:
		// An empty conversion body with no "none" marker — treat as an enum
		// conversion with no mapping entries declared (a degenerate but
		// syntactically legal case; ingestion/the conversion compiler will
		// report missing mappings if the target enum is non-empty).
		return ir.ConversionDef{Kind: ir.ConversionEnum, Src: src, Target: target, Loc: loc}, true
	}
}

func (lo *lowerer) lowerFieldConversion(fc *FieldConversionDecl) ir.FieldConversionDef {
	if !fc.IsDefault {
		return ir.FieldConversionDef{Kind: ir.FieldTransform, SrcField: fc.SrcField}
	}
	if fc.EnumDefault != nil {
		segs := fc.EnumDefault.Segments
		valueName := segs[len(segs)-1]
		enumRef := &RefTypeExpr{Position: fc.EnumDefault.Position, Segments: segs[:len(segs)-1]}
		return ir.FieldConversionDef{Kind: ir.FieldEnumDefault, EnumType: lo.qname(enumRef), EnumValue: valueName}
	}
	iv, ok := fc.DefaultVal.(*IntValue)
	if !ok {
		lo.fail(fc.Position, "field %q default must be an integer literal or an enum value", fc.TargetName)
		return ir.FieldConversionDef{Kind: ir.FieldIntDefault}
	}
	return ir.FieldConversionDef{Kind: ir.FieldIntDefault, IntValue: iv.Value}
}

func (lo *lowerer) lowerIntType(t *IntTypeExpr) ir.IntType {
	return ir.IntType{Width: t.Width, Sign: signFor(t.Signed), Endianness: endianFor(t.Endianness)}
}

func (lo *lowerer) lowerTypeExpr(t TypeExpr) ir.SchemaType {
	switch v := t.(type) {
	case *IntTypeExpr:
		return lo.lowerIntType(v)
	case *FloatTypeExpr:
		return ir.FloatType{Width: v.Width, Endianness: endianFor(v.Endianness)}
	case *RefTypeExpr:
		return ir.RefType{Name: lo.qname(v)}
	case *VectorTypeExpr:
		return ir.SeqType{
			Inner:  lo.lowerTypeExpr(v.Inner),
			Length: ir.SeqLength{Kind: ir.SeqLengthFieldPath, FieldPath: v.LenField},
		}
	case *ListTypeExpr:
		if v.HasFixed {
			return ir.SeqType{Inner: lo.lowerTypeExpr(v.Inner), Length: ir.SeqLength{Kind: ir.SeqLengthFixedInt, FixedValue: v.LenFixed}}
		}
		return ir.SeqType{Inner: lo.lowerTypeExpr(v.Inner), Length: ir.SeqLength{Kind: ir.SeqLengthFieldPath, FieldPath: v.LenField}}
	case *UnboundSeqTypeExpr:
		return ir.SeqType{Inner: lo.lowerTypeExpr(v.Inner), Length: ir.SeqLength{Kind: ir.SeqLengthIntType, IntType: lo.lowerIntType(v.LenType)}}
	case *ArrayTypeExpr:
		return ir.SeqType{Inner: lo.lowerTypeExpr(v.Inner), Length: ir.SeqLength{Kind: ir.SeqLengthFixedInt, FixedValue: v.Length}}
	case *DetachedTypeExpr:
		return ir.DetachedVariantType{Variant: lo.lowerTypeExpr(v.Variant), TagField: v.TagField}
	case *VirtualTypeExpr:
		return ir.VirtualType{Inner: lo.lowerTypeExpr(v.Inner)}
	default:
		lo.fail(t.Pos(), "unsupported type expression %T", t)
		return ir.IntType{}
	}
}

func signFor(signed bool) intmodel.Sign {
	if signed {
		return intmodel.Signed
	}
	return intmodel.Unsigned
}

func endianFor(suffix string) intmodel.Endianness {
	if suffix == "be" {
		return intmodel.Big
	}
	return intmodel.Little
}
