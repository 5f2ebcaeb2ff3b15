package conversions

import (
	"github.com/blockberries/wireforge/pkg/compiler/cerrors"
	"github.com/blockberries/wireforge/pkg/ir"
)

// expandAll is pass 2: fill in every unmapped entry of each locally-declared
// conversion with its implicit same-name (enum, struct) or same-typed/
// same-tag (variant) mapping, erroring when no implicit mapping exists.
func (b *builder) expandAll() {
	for key, rc := range b.local {
		b.local[key] = b.expandOne(rc)
	}
}

func (b *builder) expandOne(rc ir.RootConversion) ir.RootConversion {
	switch c := rc.(type) {
	case *ir.EnumConversion:
		return b.expandEnum(c)
	case *ir.StructConversion:
		return b.expandStruct(c)
	case *ir.VariantConversion:
		return b.expandVariant(c)
	default:
		b.addError(cerrors.Internal(nil, "conversions: unexpected lowered conversion kind %T", rc))
		return rc
	}
}

func (b *builder) expandEnum(conv *ir.EnumConversion) *ir.EnumConversion {
	src, ok := b.lookupType(conv.Src)
	srcEnum, srcOK := src.(*ir.Enum)
	target, ok2 := b.lookupType(conv.Target)
	targetEnum, targetOK := target.(*ir.Enum)
	if !ok || !ok2 || !srcOK || !targetOK {
		b.addError(cerrors.Internal(nil, "conversions: enum conversion (%s, %s) lost its types during expand", conv.Src, conv.Target))
		return conv
	}

	needed := make(map[string]bool, len(srcEnum.Variants))
	for _, v := range srcEnum.Variants {
		needed[v.Name] = true
	}
	for _, m := range conv.Mapping {
		delete(needed, m.Src)
	}

	mapping := append([]ir.EnumValueMapping(nil), conv.Mapping...)
	for _, name := range sortedVariantNames(srcEnum, needed) {
		if !hasVariant(targetEnum, name) {
			b.addError(cerrors.At(cerrors.KindConversion, conv.Src,
				"enum conversion (%s, %s): variant %q has no explicit or implicit mapping in target", conv.Src, conv.Target, name))
			continue
		}
		mapping = append(mapping, ir.EnumValueMapping{Src: name, Target: name, HasTarget: true})
	}
	conv.Mapping = mapping
	return conv
}

func (b *builder) expandStruct(conv *ir.StructConversion) *ir.StructConversion {
	src, ok := b.lookupType(conv.Src)
	srcStruct, srcOK := src.(*ir.Struct)
	target, ok2 := b.lookupType(conv.Target)
	targetStruct, targetOK := target.(*ir.Struct)
	if !ok || !ok2 || !srcOK || !targetOK {
		b.addError(cerrors.Internal(nil, "conversions: struct conversion (%s, %s) lost its types during expand", conv.Src, conv.Target))
		return conv
	}

	for _, f := range targetStruct.Fields {
		if _, already := conv.Mapping[f.Name]; already {
			continue
		}
		if !hasField(srcStruct, f.Name) {
			b.addError(cerrors.At(cerrors.KindConversion, conv.Src,
				"struct conversion (%s, %s): target field %q has no explicit or implicit mapping in source", conv.Src, conv.Target, f.Name))
			continue
		}
		conv.Mapping[f.Name] = ir.TransformFieldConversion{
			SrcField: f.Name,
			Inner:    ir.UnresolvedConversion{SrcType: fieldType(srcStruct, f.Name), TargetType: f.Type},
		}
	}
	return conv
}

func (b *builder) expandVariant(conv *ir.VariantConversion) *ir.VariantConversion {
	src, ok := b.lookupType(conv.Src)
	srcVariant, srcOK := src.(*ir.Variant)
	target, ok2 := b.lookupType(conv.Target)
	targetVariant, targetOK := target.(*ir.Variant)
	if !ok || !ok2 || !srcOK || !targetOK {
		b.addError(cerrors.Internal(nil, "conversions: variant conversion (%s, %s) lost its types during expand", conv.Src, conv.Target))
		return conv
	}

	needed := make(map[string]bool, len(srcVariant.Tags))
	for _, tag := range srcVariant.Tags {
		needed[tag.Struct.String()] = true
	}
	for _, m := range conv.Mapping {
		delete(needed, m.SrcStruct.String())
	}

	mapping := append([]ir.VariantValueMapping(nil), conv.Mapping...)
	for _, srcName := range sortedTagNames(srcVariant, needed) {
		srcTag := ir.ParseQName(srcName)
		var targetTag ir.QName
		if hasTag(targetVariant, srcTag) {
			targetTag = srcTag
		} else {
			value, _ := tagValue(srcVariant, srcTag)
			found, ok := tagByValue(targetVariant, value)
			if !ok {
				b.addError(cerrors.At(cerrors.KindConversion, conv.Src,
					"variant conversion (%s, %s): tag %s has no explicit, same-typed, or same-valued mapping in target", conv.Src, conv.Target, srcTag))
				continue
			}
			targetTag = found
		}
		mapping = append(mapping, ir.VariantValueMapping{
			SrcStruct:    srcTag,
			TargetStruct: targetTag,
			HasTarget:    true,
			Inner:        ir.UnresolvedConversion{SrcType: ir.RefT{Name: srcTag}, TargetType: ir.RefT{Name: targetTag}},
		})
	}
	conv.Mapping = mapping
	return conv
}

func tagByValue(v *ir.Variant, value int64) (ir.QName, bool) {
	for _, tag := range v.Tags {
		if tag.Value == value {
			return tag.Struct, true
		}
	}
	return ir.QName{}, false
}

func sortedVariantNames(e *ir.Enum, set map[string]bool) []string {
	var out []string
	for _, v := range e.Variants {
		if set[v.Name] {
			out = append(out, v.Name)
		}
	}
	return out
}

func sortedTagNames(v *ir.Variant, set map[string]bool) []string {
	var out []string
	for _, tag := range v.Tags {
		if set[tag.Struct.String()] {
			out = append(out, tag.Struct.String())
		}
	}
	return out
}
