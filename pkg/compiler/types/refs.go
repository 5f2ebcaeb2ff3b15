package types

import "github.com/blockberries/wireforge/pkg/ir"

// collectTypeRefs walks a MIR type expression and returns every QName it
// references via RefT, recursing through Seq/Array/Vector/List/
// DetachedVariant/Virtual wrappers.
func collectTypeRefs(t ir.Type) []ir.QName {
	switch v := t.(type) {
	case ir.RefT:
		return []ir.QName{v.Name}
	case ir.UnboundSeqT:
		return collectTypeRefs(v.Inner)
	case ir.SeqT:
		return collectTypeRefs(v.Inner)
	case ir.ArrayT:
		return collectTypeRefs(v.Inner)
	case ir.VectorT:
		return collectTypeRefs(v.Inner)
	case ir.ListT:
		return collectTypeRefs(v.Inner)
	case ir.DetachedVariantT:
		return collectTypeRefs(v.Variant)
	case ir.VirtualT:
		return collectTypeRefs(v.Inner)
	default:
		return nil
	}
}

// rootTypeRefs returns every QName a root type references: struct field
// types, variant tag structs, and hash-variant members.
func rootTypeRefs(rt ir.RootType) []ir.QName {
	switch d := rt.(type) {
	case *ir.Struct:
		var refs []ir.QName
		for _, f := range d.Fields {
			refs = append(refs, collectTypeRefs(f.Type)...)
		}
		return refs
	case *ir.Variant:
		var refs []ir.QName
		for _, tag := range d.Tags {
			refs = append(refs, tag.Struct)
		}
		return refs
	case *ir.HashVariant:
		return append([]ir.QName(nil), d.Members...)
	case *ir.Enum:
		return nil
	default:
		return nil
	}
}
