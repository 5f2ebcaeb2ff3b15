package types

import "github.com/blockberries/wireforge/pkg/ir"

// expandVariants is pass 4: for every struct field whose type is a
// reference to a Variant or HashVariant, inject a preceding
// "{fname}_injected_key_" tag field and rewrite the field to a
// DetachedVariant over it, preserving field order otherwise.
func (p *pipeline) expandVariants() {
	for _, rt := range p.types {
		s, ok := rt.(*ir.Struct)
		if !ok {
			continue
		}
		s.Fields = p.expandVariantFields(s.Fields)
	}
}

func (p *pipeline) expandVariantFields(fields []ir.Field) []ir.Field {
	out := make([]ir.Field, 0, len(fields))
	for _, f := range fields {
		tagType, isVariant := p.variantTagType(f.Type)
		if !isVariant {
			out = append(out, f)
			continue
		}
		injectedName := f.Name + "_injected_key_"
		out = append(out, ir.Field{Name: injectedName, Type: ir.IntT{Width: tagType.Width, Sign: tagType.Sign, Endianness: tagType.Endianness}})
		out = append(out, ir.Field{Name: f.Name, Type: ir.DetachedVariantT{Variant: f.Type, TagField: injectedName}})
	}
	return out
}

// variantTagType reports whether t is a bare reference to a Variant or
// HashVariant root type (a "VariantRef"), returning its tag type.
func (p *pipeline) variantTagType(t ir.Type) (ir.IntType, bool) {
	ref, ok := t.(ir.RefT)
	if !ok {
		return ir.IntType{}, false
	}
	target, ok := p.lookup(ref.Name)
	if !ok {
		return ir.IntType{}, false
	}
	switch v := target.(type) {
	case *ir.Variant:
		return v.TagType, true
	case *ir.HashVariant:
		return v.TagType, true
	default:
		return ir.IntType{}, false
	}
}

// expandSeqs is pass 5: for every struct field whose type is
// UnboundSeqT(inner, lengthType), inject a preceding
// "{fname}_injected_len_" length field and rewrite to
// SeqT(inner, VariableLength(injected)).
func (p *pipeline) expandSeqs() {
	for _, rt := range p.types {
		s, ok := rt.(*ir.Struct)
		if !ok {
			continue
		}
		out := make([]ir.Field, 0, len(s.Fields))
		for _, f := range s.Fields {
			unbound, ok := f.Type.(ir.UnboundSeqT)
			if !ok {
				out = append(out, f)
				continue
			}
			injectedName := f.Name + "_injected_len_"
			lt := unbound.LengthType
			out = append(out, ir.Field{Name: injectedName, Type: ir.IntT{Width: lt.Width, Sign: lt.Sign, Endianness: lt.Endianness}})
			out = append(out, ir.Field{Name: f.Name, Type: ir.SeqT{
				Inner:  unbound.Inner,
				Length: ir.SeqLengthSpec{Kind: ir.SeqVariableLength, FieldName: injectedName},
			}})
		}
		s.Fields = out
	}
}
