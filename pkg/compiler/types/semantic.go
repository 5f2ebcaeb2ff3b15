package types

import (
	"github.com/blockberries/wireforge/pkg/compiler/cerrors"
	"github.com/blockberries/wireforge/pkg/ir"
	"github.com/blockberries/wireforge/pkg/ir/intmodel"
)

// checkDefinitionOrder is pass 2: walks references in the leaves-first
// order ingestion computed; a Ref to a name not yet in the defined set is
// an error. References to another protocol's types are treated as already
// defined if resolvable there.
func (p *pipeline) checkDefinitionOrder() {
	defined := make(map[string]bool)
	for _, name := range p.order {
		rt, ok := p.types[name.String()]
		if !ok {
			continue
		}
		for _, ref := range rootTypeRefs(rt) {
			if ref.Namespace().String() != p.protocol {
				if _, ok := p.external[ref.String()]; !ok {
					p.addError(cerrors.At(cerrors.KindDefinition, ref,
						"reference to undefined external type %q", ref))
				}
				continue
			}
			if !defined[ref.String()] {
				p.addError(cerrors.At(cerrors.KindDefinition, ref,
					"type %q used before definition", ref))
			}
		}
		defined[name.String()] = true
	}
}

// checkSemantics is pass 3.
func (p *pipeline) checkSemantics() {
	for _, name := range p.order {
		rt, ok := p.types[name.String()]
		if !ok {
			continue
		}
		switch d := rt.(type) {
		case *ir.Struct:
			for _, f := range d.Fields {
				p.checkFieldType(d, f.Name, f.Type, false)
			}
		case *ir.Variant:
			if len(d.Tags) == 0 {
				p.addError(cerrors.At(cerrors.KindSemantic, d.Name, "variant %q must have at least one tag", d.Name))
			}
			tagModel := intmodel.Int{Width: d.TagType.Width, Sign: d.TagType.Sign, Endianness: d.TagType.Endianness}
			for _, tag := range d.Tags {
				if !tagModel.Contains(tag.Value) {
					p.addError(cerrors.At(cerrors.KindSemantic, d.Name,
						"tag value %d for %q out of range of %v", tag.Value, tag.Struct, d.TagType))
				}
			}
		case *ir.HashVariant:
			if len(d.Members) == 0 {
				p.addError(cerrors.At(cerrors.KindSemantic, d.Name, "hash variant %q must have at least one member", d.Name))
			}
		case *ir.Enum:
			underModel := intmodel.Int{Width: d.Underlying.Width, Sign: d.Underlying.Sign, Endianness: d.Underlying.Endianness}
			for _, v := range d.Variants {
				if !underModel.Contains(v.Value) {
					p.addError(cerrors.At(cerrors.KindSemantic, d.Name,
						"enum value %d for %q out of range of %v", v.Value, v.Name, d.Underlying))
				}
			}
		}
	}
}

// checkFieldType validates one struct field's type expression, recursing
// into wrappers. insideVirtual tracks nested-Virtual rejection.
func (p *pipeline) checkFieldType(owner *ir.Struct, fieldName string, t ir.Type, insideVirtual bool) {
	switch v := t.(type) {
	case ir.IntT:
		if !intmodel.ValidWidth(v.Width) {
			p.addError(cerrors.At(cerrors.KindSemantic, owner.Name, "field %q: invalid int width %d", fieldName, v.Width))
		}
	case ir.FloatT:
		if !intmodel.ValidFloatWidth(v.Width) {
			p.addError(cerrors.At(cerrors.KindSemantic, owner.Name, "field %q: invalid float width %d", fieldName, v.Width))
		}
	case ir.UnboundSeqT:
		p.checkFieldType(owner, fieldName, v.Inner, insideVirtual)
	case ir.SeqT:
		if v.Length.Kind == ir.SeqFixedLength && v.Length.FixedValue <= 0 {
			p.addError(cerrors.At(cerrors.KindSemantic, owner.Name, "field %q: array length must be > 0", fieldName))
		}
		if v.Length.Kind == ir.SeqVariableLength {
			p.checkLengthField(owner, fieldName, v.Length.FieldName)
		}
		p.checkFieldType(owner, fieldName, v.Inner, insideVirtual)
	case ir.DetachedVariantT:
		p.checkTagField(owner, fieldName, v.TagField, v.Variant)
	case ir.VirtualT:
		if insideVirtual {
			p.addError(cerrors.At(cerrors.KindSemantic, owner.Name, "field %q: Virtual must not contain Virtual", fieldName))
			return
		}
		p.checkFieldType(owner, fieldName, v.Inner, true)
	}
}

func (p *pipeline) findField(owner *ir.Struct, name string) (ir.Field, bool) {
	for _, f := range owner.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return ir.Field{}, false
}

func (p *pipeline) checkLengthField(owner *ir.Struct, fieldName, lengthField string) {
	f, ok := p.findField(owner, lengthField)
	if !ok {
		p.addError(cerrors.At(cerrors.KindSemantic, owner.Name,
			"field %q: length field %q does not exist", fieldName, lengthField))
		return
	}
	if _, ok := f.Type.(ir.IntT); !ok {
		p.addError(cerrors.At(cerrors.KindSemantic, owner.Name,
			"field %q: length field %q must be an Int type", fieldName, lengthField))
	}
}

func (p *pipeline) checkTagField(owner *ir.Struct, fieldName, tagField string, variantType ir.Type) {
	ref, ok := variantType.(ir.RefT)
	if !ok {
		return
	}
	target, ok := p.lookup(ref.Name)
	if !ok {
		return // reported by checkDefinitionOrder
	}
	variant, ok := target.(*ir.Variant)
	if !ok {
		return
	}
	f, ok := p.findField(owner, tagField)
	if !ok {
		p.addError(cerrors.At(cerrors.KindSemantic, owner.Name,
			"field %q: tag field %q does not exist", fieldName, tagField))
		return
	}
	ft, ok := f.Type.(ir.IntT)
	if !ok || ft.Width != variant.TagType.Width || ft.Sign != variant.TagType.Sign {
		p.addError(cerrors.At(cerrors.KindSemantic, owner.Name,
			"field %q: tag field %q must have type %v", fieldName, tagField, variant.TagType))
	}
}
