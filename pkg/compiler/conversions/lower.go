// Package conversions implements the conversion compiler (spec.md §4.4):
// lower, expand, resolve, dependency-graph, strength, and fuse passes over a
// protocol's declared conversions.
package conversions

import (
	"github.com/blockberries/wireforge/pkg/compiler/cerrors"
	"github.com/blockberries/wireforge/pkg/ir"
)

// builder holds the working state threaded through every pass: the local
// (this protocol's) conversion graph being built, the external graph
// (already-finalized conversions from other protocols, consulted but never
// mutated), the finalized PIR type map, and the accumulated diagnostics.
type builder struct {
	protocol string
	types    map[string]ir.RootType
	local    map[ir.ConversionKey]ir.RootConversion
	external map[ir.ConversionKey]ir.RootConversion
	errs     cerrors.Errors
}

func (b *builder) addError(e *cerrors.CompileError) {
	b.errs = append(b.errs, e)
}

// lookup resolves a ConversionKey against the local graph first, then the
// external one.
func (b *builder) lookup(key ir.ConversionKey) (ir.RootConversion, bool) {
	if rc, ok := b.local[key]; ok {
		return rc, true
	}
	rc, ok := b.external[key]
	return rc, ok
}

func (b *builder) lookupType(name ir.QName) (ir.RootType, bool) {
	rt, ok := b.types[name.String()]
	return rt, ok
}

// lowerAll is pass 1: translate each schema ConversionDef into its MIR form
// (the same ir.Conversion/RootConversion family used by the finalized PIR —
// see the design note in pkg/ir/conversions.go), verifying each side
// resolves to a root type of the expected kind for def.Kind.
func (b *builder) lowerAll(defs []ir.ConversionDef) {
	for _, def := range defs {
		key := ir.ConversionKey{Src: def.Src, Target: def.Target}
		rc := b.lowerOne(def)
		if rc != nil {
			b.local[key] = rc
		}
	}
}

func (b *builder) lowerOne(def ir.ConversionDef) ir.RootConversion {
	switch def.Kind {
	case ir.ConversionEnum:
		return b.lowerEnum(def)
	case ir.ConversionStruct:
		return b.lowerStruct(def)
	case ir.ConversionVariant:
		return b.lowerVariant(def)
	default:
		b.addError(cerrors.Internal(nil, "conversions: unexpected conversion kind %v for (%s, %s)", def.Kind, def.Src, def.Target))
		return nil
	}
}

func (b *builder) lowerEnum(def ir.ConversionDef) *ir.EnumConversion {
	src, target, ok := lookupPair[*ir.Enum](b, def, "enum")
	if !ok {
		return nil
	}
	mapping := make([]ir.EnumValueMapping, 0, len(def.EnumMapping))
	for _, m := range def.EnumMapping {
		if !hasVariant(src, m.Src) {
			b.addError(cerrors.At(cerrors.KindConversion, def.Src,
				"enum conversion (%s, %s): %q is not a variant of source enum %s", def.Src, def.Target, m.Src, def.Src))
			continue
		}
		if m.HasTarget && !hasVariant(target, m.Target) {
			b.addError(cerrors.At(cerrors.KindConversion, def.Src,
				"enum conversion (%s, %s): %q is not a variant of target enum %s", def.Src, def.Target, m.Target, def.Target))
			continue
		}
		mapping = append(mapping, ir.EnumValueMapping{Src: m.Src, Target: m.Target, HasTarget: m.HasTarget})
	}
	return &ir.EnumConversion{Src: def.Src, Target: def.Target, Mapping: mapping}
}

func (b *builder) lowerStruct(def ir.ConversionDef) *ir.StructConversion {
	src, target, ok := lookupPair[*ir.Struct](b, def, "struct")
	if !ok {
		return nil
	}
	mapping := make(map[string]ir.FieldConversion, len(def.StructMapping))
	for fname, fc := range def.StructMapping {
		if !hasField(target, fname) {
			b.addError(cerrors.At(cerrors.KindConversion, def.Src,
				"struct conversion (%s, %s): %q is not a field of target struct %s", def.Src, def.Target, fname, def.Target))
			continue
		}
		switch fc.Kind {
		case ir.FieldIntDefault:
			mapping[fname] = ir.IntDefaultFieldConversion{Type: fc.IntType, Value: fc.IntValue}
		case ir.FieldEnumDefault:
			mapping[fname] = ir.EnumDefaultFieldConversion{Type: fc.EnumType, Value: fc.EnumValue}
		case ir.FieldTransform:
			if !hasField(src, fc.SrcField) {
				b.addError(cerrors.At(cerrors.KindConversion, def.Src,
					"struct conversion (%s, %s): %q is not a field of source struct %s", def.Src, def.Target, fc.SrcField, def.Src))
				continue
			}
			mapping[fname] = ir.TransformFieldConversion{
				SrcField: fc.SrcField,
				Inner:    ir.UnresolvedConversion{SrcType: fieldType(src, fc.SrcField), TargetType: fieldType(target, fname)},
			}
		}
	}
	return &ir.StructConversion{Src: def.Src, Target: def.Target, Mapping: mapping, TargetFieldOrder: fieldOrder(target)}
}

func (b *builder) lowerVariant(def ir.ConversionDef) *ir.VariantConversion {
	src, target, ok := lookupPair[*ir.Variant](b, def, "variant")
	if !ok {
		return nil
	}
	mapping := make([]ir.VariantValueMapping, 0, len(def.VariantMapping))
	for _, m := range def.VariantMapping {
		if !hasTag(src, m.SrcStruct) {
			b.addError(cerrors.At(cerrors.KindConversion, def.Src,
				"variant conversion (%s, %s): %s is not a tag of source variant %s", def.Src, def.Target, m.SrcStruct, def.Src))
			continue
		}
		vvm := ir.VariantValueMapping{SrcStruct: m.SrcStruct, TargetStruct: m.TargetStruct, HasTarget: m.HasTarget}
		if m.HasTarget {
			if !hasTag(target, m.TargetStruct) {
				b.addError(cerrors.At(cerrors.KindConversion, def.Src,
					"variant conversion (%s, %s): %s is not a tag of target variant %s", def.Src, def.Target, m.TargetStruct, def.Target))
				continue
			}
			vvm.Inner = ir.UnresolvedConversion{SrcType: ir.RefT{Name: m.SrcStruct}, TargetType: ir.RefT{Name: m.TargetStruct}}
		}
		mapping = append(mapping, vvm)
	}
	return &ir.VariantConversion{Src: def.Src, Target: def.Target, Mapping: mapping}
}

func lookupPair[T ir.RootType](b *builder, def ir.ConversionDef, kind string) (T, T, bool) {
	var zero T
	srt, ok := b.lookupType(def.Src)
	if !ok {
		b.addError(cerrors.At(cerrors.KindConversion, def.Src, "conversion source %s is not a known type", def.Src))
		return zero, zero, false
	}
	trt, ok := b.lookupType(def.Target)
	if !ok {
		b.addError(cerrors.At(cerrors.KindConversion, def.Target, "conversion target %s is not a known type", def.Target))
		return zero, zero, false
	}
	s, ok := srt.(T)
	if !ok {
		b.addError(cerrors.At(cerrors.KindConversion, def.Src, "%s conversion source %s is not a %s", kind, def.Src, kind))
		return zero, zero, false
	}
	t, ok := trt.(T)
	if !ok {
		b.addError(cerrors.At(cerrors.KindConversion, def.Target, "%s conversion target %s is not a %s", kind, def.Target, kind))
		return zero, zero, false
	}
	return s, t, true
}

func hasVariant(e *ir.Enum, name string) bool {
	for _, v := range e.Variants {
		if v.Name == name {
			return true
		}
	}
	return false
}

func hasField(s *ir.Struct, name string) bool {
	_, ok := fieldByName(s, name)
	return ok
}

func fieldByName(s *ir.Struct, name string) (ir.Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return ir.Field{}, false
}

func fieldType(s *ir.Struct, name string) ir.Type {
	f, _ := fieldByName(s, name)
	return f.Type
}

func fieldOrder(s *ir.Struct) []string {
	out := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		out[i] = f.Name
	}
	return out
}

func hasTag(v *ir.Variant, name ir.QName) bool {
	for _, tag := range v.Tags {
		if tag.Struct.Equal(name) {
			return true
		}
	}
	return false
}

func tagValue(v *ir.Variant, name ir.QName) (int64, bool) {
	for _, tag := range v.Tags {
		if tag.Struct.Equal(name) {
			return tag.Value, true
		}
	}
	return 0, false
}

func enumValue(e *ir.Enum, name string) (int64, bool) {
	for _, v := range e.Variants {
		if v.Name == name {
			return v.Value, true
		}
	}
	return 0, false
}
