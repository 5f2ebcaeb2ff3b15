package types

import (
	"github.com/blockberries/wireforge/pkg/compiler/cerrors"
	"github.com/blockberries/wireforge/pkg/ir"
)

// computeMasterFields is pass 6: a field whose type is
// Seq(_, VariableLength(ref)) or DetachedVariant(_, tag=ref) is a slave of
// ref; annotate the slave field's MasterField. A Seq whose inner
// transitively determines a field (i.e. contains its own nested
// master-determining wrapper) is rejected.
func (p *pipeline) computeMasterFields() {
	for _, rt := range p.types {
		s, ok := rt.(*ir.Struct)
		if !ok {
			continue
		}
		for i := range s.Fields {
			f := &s.Fields[i]
			switch v := f.Type.(type) {
			case ir.SeqT:
				if v.Length.Kind == ir.SeqVariableLength {
					f.MasterField = &ir.MasterField{MasterFieldName: v.Length.FieldName, KeyProperty: ir.KeySeqLength}
				}
				if determinesAnyField(v.Inner) {
					p.addError(cerrors.At(cerrors.KindSemantic, s.Name,
						"field %q: inner part of sequence cannot determine any fields", f.Name))
				}
			case ir.DetachedVariantT:
				f.MasterField = &ir.MasterField{MasterFieldName: v.TagField, KeyProperty: ir.KeyVariantTag}
			}
		}
	}
}

// determinesAnyField reports whether t (recursively) contains a
// Seq(VariableLength) or DetachedVariant wrapper, which would determine
// another field's value — illegal as a sequence's element type.
func determinesAnyField(t ir.Type) bool {
	switch v := t.(type) {
	case ir.SeqT:
		if v.Length.Kind == ir.SeqVariableLength {
			return true
		}
		return determinesAnyField(v.Inner)
	case ir.UnboundSeqT:
		return true // still unbound at this point would itself inject a field
	case ir.DetachedVariantT:
		return true
	case ir.VirtualT:
		return false // Virtual determines nothing
	default:
		return false
	}
}
