package types

import (
	"github.com/blockberries/wireforge/pkg/compiler/cerrors"
	"github.com/blockberries/wireforge/pkg/ir"
	"github.com/blockberries/wireforge/pkg/ir/ranges"
)

// computeSizeOffset is pass 8. Root types are processed in leaves-first
// order so a type's own size is ready by the time anything referencing it
// is composed.
func (p *pipeline) computeSizeOffset() {
	for _, name := range p.order {
		rt, ok := p.types[name.String()]
		if !ok {
			continue
		}
		switch d := rt.(type) {
		case *ir.Struct:
			p.layoutStruct(d)
		case *ir.Variant:
			p.layoutVariant(d)
		}
	}
}

func (p *pipeline) layoutStruct(s *ir.Struct) {
	offset := ir.ZeroOffset
	allConstant := true
	total := ir.ConstantSize(0)
	for i := range s.Fields {
		f := &s.Fields[i]
		f.Offset = offset
		size := p.composeSize(f.Type)
		if !size.IsConstant() {
			allConstant = false
		}
		total = total.Add(size)
		offset = offset.Add(f.Name, size)
	}
	s.TailOffset = offset
	if allConstant {
		s.Size = total
	} else {
		s.Size = ir.DynamicSize
	}
}

func (p *pipeline) layoutVariant(v *ir.Variant) {
	if len(v.Tags) == 0 {
		v.Size = ir.ConstantSize(0)
		return
	}
	var first ir.Size
	same := true
	for i, tag := range v.Tags {
		target, ok := p.lookup(tag.Struct)
		if !ok {
			same = false
			continue
		}
		sz := p.composeSize(ir.RefT{Name: target.RootName()})
		if i == 0 {
			first = sz
		} else if sz != first {
			same = false
		}
	}
	if same && first.IsConstant() {
		v.Size = first
	} else {
		v.Size = ir.DynamicSize
	}
}

// composeSize computes a type expression's size following the non-root
// composition rules in spec.md §4.2 (run both pre- and post- seq-reduce,
// since it is used during the size/offset pass and, unchanged, to size
// newly-reduced Array/Vector/List forms).
func (p *pipeline) composeSize(t ir.Type) ir.Size {
	switch v := t.(type) {
	case ir.IntT:
		return ir.ConstantSize(v.Width)
	case ir.FloatT:
		return ir.ConstantSize(v.Width)
	case ir.RefT:
		target, ok := p.lookup(v.Name)
		if !ok {
			p.addError(cerrors.Internal(nil, "composeSize: unresolved reference %q", v.Name))
			return ir.DynamicSize
		}
		return rootTypeSize(target)
	case ir.SeqT:
		inner := p.composeSize(v.Inner)
		if v.Length.Kind == ir.SeqFixedLength && inner.IsConstant() {
			return ir.ConstantSize(inner.Value * v.Length.FixedValue)
		}
		return ir.DynamicSize
	case ir.ArrayT:
		inner := p.composeSize(v.Inner)
		if inner.IsConstant() {
			return ir.ConstantSize(inner.Value * v.Length)
		}
		return ir.DynamicSize
	case ir.VectorT, ir.ListT:
		return ir.DynamicSize
	case ir.DetachedVariantT:
		return p.composeSize(v.Variant)
	case ir.VirtualT:
		return ir.ConstantSize(0)
	default:
		p.addError(cerrors.Internal(nil, "composeSize: unexpected type %T", t))
		return ir.DynamicSize
	}
}

func rootTypeSize(rt ir.RootType) ir.Size {
	switch d := rt.(type) {
	case *ir.Struct:
		return d.Size
	case *ir.Variant:
		return d.Size
	case *ir.Enum:
		return ir.ConstantSize(d.Underlying.Width)
	default:
		return ir.DynamicSize
	}
}

// computeEnumRanges is pass 9.
func (p *pipeline) computeEnumRanges() {
	for _, rt := range p.types {
		e, ok := rt.(*ir.Enum)
		if !ok {
			continue
		}
		values := make([]int64, len(e.Variants))
		for i, v := range e.Variants {
			values[i] = v.Value
		}
		e.ValidRanges = ranges.FindRanges(values)
	}
}
