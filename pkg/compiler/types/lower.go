// Package types implements the type pipeline (spec.md §4.2): the thirteen
// ordered passes that lower a protocol's schema-level type declarations
// into fully-annotated PIR types.
package types

import (
	"github.com/blockberries/wireforge/pkg/compiler/cerrors"
	"github.com/blockberries/wireforge/pkg/compiler/ingest"
	"github.com/blockberries/wireforge/pkg/ir"
)

// pipeline holds the working state threaded through all thirteen passes.
// Root type instances are mutated in place as later passes fill in their
// Size/Offset/MasterField/Digest/Trivial annotations — mirroring the
// "annotated progressively" comments on ir.Struct/Enum/Variant/Field,
// rather than reallocating a fresh map per pass.
type pipeline struct {
	protocol string
	order    []ir.QName // leaves-first, this protocol's own types only
	types    map[string]ir.RootType
	external map[string]ir.RootType
	errs     cerrors.Errors
}

func (p *pipeline) addError(e *cerrors.CompileError) {
	p.errs = append(p.errs, e)
}

// lookup resolves a QName against this protocol's own working types first,
// then the externally-supplied (already-finalized) types.
func (p *pipeline) lookup(name ir.QName) (ir.RootType, bool) {
	if rt, ok := p.types[name.String()]; ok {
		return rt, true
	}
	rt, ok := p.external[name.String()]
	return rt, ok
}

// lower translates one schema root type definition to its MIR form. Field
// annotations (Offset, MasterField) and root-level annotations
// (Size/TailOffset/Trivial/Digest) start zero-valued.
func lowerRootType(def ir.RootTypeDef) ir.RootType {
	switch d := def.(type) {
	case *ir.StructDef:
		fields := make([]ir.Field, len(d.Fields))
		for i, f := range d.Fields {
			fields[i] = ir.Field{Name: f.Name, Type: lowerSchemaType(f.Type)}
		}
		return &ir.Struct{Name: d.Name, Protocol: d.ProtocolName, Fields: fields}
	case *ir.EnumDef:
		variants := make([]ir.EnumVariant, len(d.Variants))
		for i, v := range d.Variants {
			variants[i] = ir.EnumVariant{Name: v.Name, Value: v.Value}
		}
		return &ir.Enum{Name: d.Name, Protocol: d.ProtocolName, Underlying: d.Underlying, Variants: variants}
	case *ir.VariantDef:
		tags := make([]ir.VariantTag, len(d.Tags))
		for i, t := range d.Tags {
			tags[i] = ir.VariantTag{Struct: t.Struct, Value: t.Value}
		}
		return &ir.Variant{Name: d.Name, Protocol: d.ProtocolName, TagType: d.TagType, Tags: tags}
	case *ir.HashVariantDef:
		return &ir.HashVariant{Name: d.Name, Protocol: d.ProtocolName, TagType: d.TagType,
			Members: append([]ir.QName(nil), d.Members...)}
	default:
		return nil
	}
}

// lowerSchemaType translates one schema type expression to MIR, per
// spec.md §4.2 pass 1: a fixed-int-length Seq becomes SeqT(FixedLength); a
// field-path-length Seq becomes SeqT(VariableLength); an int-type-length
// Seq becomes the MIR-only UnboundSeqT awaiting seq-expand.
func lowerSchemaType(t ir.SchemaType) ir.Type {
	switch v := t.(type) {
	case ir.IntType:
		return ir.IntT{Width: v.Width, Sign: v.Sign, Endianness: v.Endianness}
	case ir.FloatType:
		return ir.FloatT{Width: v.Width, Endianness: v.Endianness}
	case ir.RefType:
		return ir.RefT{Name: v.Name}
	case ir.SeqType:
		inner := lowerSchemaType(v.Inner)
		switch v.Length.Kind {
		case ir.SeqLengthIntType:
			return ir.UnboundSeqT{Inner: inner, LengthType: v.Length.IntType}
		case ir.SeqLengthFieldPath:
			return ir.SeqT{Inner: inner, Length: ir.SeqLengthSpec{Kind: ir.SeqVariableLength, FieldName: v.Length.FieldPath}}
		default: // SeqLengthFixedInt
			return ir.SeqT{Inner: inner, Length: ir.SeqLengthSpec{Kind: ir.SeqFixedLength, FixedValue: v.Length.FixedValue}}
		}
	case ir.DetachedVariantType:
		return ir.DetachedVariantT{Variant: lowerSchemaType(v.Variant), TagField: v.TagField}
	case ir.VirtualType:
		return ir.VirtualT{Inner: lowerSchemaType(v.Inner)}
	default:
		return nil
	}
}

// lowerAll runs pass 1 over every type this protocol owns.
func lowerAll(def *ingest.ProtocolDef) map[string]ir.RootType {
	out := make(map[string]ir.RootType, len(def.Types))
	for key, schemaDef := range def.Types {
		out[key] = lowerRootType(schemaDef)
	}
	return out
}
