package types

import "github.com/blockberries/wireforge/pkg/ir"

// reduceSeqs is pass 10: rewrite every SeqT into a concrete container based
// on its inner size and length kind.
func (p *pipeline) reduceSeqs() {
	for _, rt := range p.types {
		s, ok := rt.(*ir.Struct)
		if !ok {
			continue
		}
		for i := range s.Fields {
			s.Fields[i].Type = p.reduceType(s.Fields[i].Type)
		}
	}
}

func (p *pipeline) reduceType(t ir.Type) ir.Type {
	switch v := t.(type) {
	case ir.SeqT:
		inner := p.reduceType(v.Inner)
		innerSize := p.composeSize(inner)
		if innerSize.IsConstant() {
			if v.Length.Kind == ir.SeqFixedLength {
				return ir.ArrayT{Inner: inner, Length: v.Length.FixedValue}
			}
			return ir.VectorT{Inner: inner, LengthField: v.Length.FieldName}
		}
		kind := ir.ListFixedLength
		if v.Length.Kind == ir.SeqVariableLength {
			kind = ir.ListVariableLength
		}
		return ir.ListT{Inner: inner, Length: ir.ListLength{
			Kind: kind, FixedValue: v.Length.FixedValue, FieldName: v.Length.FieldName,
		}}
	case ir.DetachedVariantT:
		return ir.DetachedVariantT{Variant: p.reduceType(v.Variant), TagField: v.TagField}
	case ir.VirtualT:
		return ir.VirtualT{Inner: p.reduceType(v.Inner)}
	default:
		return t
	}
}

// computeTrivial is pass 11: Struct and Variant are never trivial, so it sets
// both flags to false. No triviality is computed or stored for fields or
// other type expressions; the trivial helper below is not called by it.
func (p *pipeline) computeTrivial() {
	for _, rt := range p.types {
		switch d := rt.(type) {
		case *ir.Struct:
			d.Trivial = false
		case *ir.Variant:
			d.Trivial = false
		}
	}
}

// trivial reports whether t's in-memory bytes match its wire bytes under
// matching endianness: true for primitives and arrays of trivial types,
// false for anything touching a Struct/Variant, a count-prefixed
// container, or a detached/virtual wrapper.
func (p *pipeline) trivial(t ir.Type) bool {
	switch v := t.(type) {
	case ir.IntT, ir.FloatT:
		return true
	case ir.RefT:
		target, ok := p.lookup(v.Name)
		if !ok {
			return false
		}
		_, isEnum := target.(*ir.Enum)
		return isEnum
	case ir.ArrayT:
		return p.trivial(v.Inner)
	default:
		return false
	}
}
