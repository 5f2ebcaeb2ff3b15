package conversions

import (
	"github.com/blockberries/wireforge/pkg/compiler/cerrors"
	"github.com/blockberries/wireforge/pkg/ir"
)

// resolveAll is pass 3: replace every UnresolvedConversion reachable from a
// locally-declared root conversion with an IdentityConversion, a
// ConversionRef into the conversion graph, or (for two DetachedVariants) a
// recursively-resolved inner conversion.
func (b *builder) resolveAll() {
	for key, rc := range b.local {
		b.local[key] = b.resolveRoot(rc)
	}
}

func (b *builder) resolveRoot(rc ir.RootConversion) ir.RootConversion {
	switch c := rc.(type) {
	case *ir.EnumConversion:
		return c
	case *ir.StructConversion:
		for name, fc := range c.Mapping {
			if t, ok := fc.(ir.TransformFieldConversion); ok {
				t.Inner = b.resolveConversion(t.Inner)
				c.Mapping[name] = t
			}
		}
		return c
	case *ir.VariantConversion:
		for i, vvm := range c.Mapping {
			if vvm.HasTarget {
				vvm.Inner = b.resolveConversion(vvm.Inner)
				c.Mapping[i] = vvm
			}
		}
		return c
	default:
		b.addError(cerrors.Internal(nil, "conversions: unexpected root conversion kind %T", rc))
		return rc
	}
}

func (b *builder) resolveConversion(c ir.Conversion) ir.Conversion {
	u, ok := c.(ir.UnresolvedConversion)
	if !ok {
		return c
	}
	return b.resolveUnresolved(u)
}

func (b *builder) resolveUnresolved(u ir.UnresolvedConversion) ir.Conversion {
	if typesEqual(u.SrcType, u.TargetType) {
		return ir.IdentityConversion{Type: u.SrcType}
	}

	sr, sok := b.asRootType(u.SrcType)
	tr, tok := b.asRootType(u.TargetType)
	if sok && tok {
		key := ir.ConversionKey{Src: sr.RootName(), Target: tr.RootName()}
		if _, ok := b.lookup(key); !ok {
			b.addError(cerrors.At(cerrors.KindConversion, sr.RootName(),
				"no conversion found from %s to %s", sr.RootName(), tr.RootName()))
			return u
		}
		return ir.ConversionRef{Src: sr.RootName(), Target: tr.RootName()}
	}

	sdv, sdvOK := u.SrcType.(ir.DetachedVariantT)
	tdv, tdvOK := u.TargetType.(ir.DetachedVariantT)
	if sdvOK && tdvOK {
		return b.resolveUnresolved(ir.UnresolvedConversion{SrcType: sdv.Variant, TargetType: tdv.Variant})
	}

	b.addError(cerrors.New(cerrors.KindConversion, "no conversion found from %v to %v", u.SrcType, u.TargetType))
	return u
}

// asRootType reports whether t is a reference that resolves to a root type.
func (b *builder) asRootType(t ir.Type) (ir.RootType, bool) {
	ref, ok := t.(ir.RefT)
	if !ok {
		return nil, false
	}
	return b.lookupType(ref.Name)
}

// typesEqual is structural equality over the resolved Type family, used to
// decide whether an UnresolvedConversion collapses to an identity.
func typesEqual(x, y ir.Type) bool {
	switch a := x.(type) {
	case ir.IntT:
		b, ok := y.(ir.IntT)
		return ok && a == b
	case ir.FloatT:
		b, ok := y.(ir.FloatT)
		return ok && a == b
	case ir.RefT:
		b, ok := y.(ir.RefT)
		return ok && a.Name.Equal(b.Name)
	case ir.ArrayT:
		b, ok := y.(ir.ArrayT)
		return ok && a.Length == b.Length && typesEqual(a.Inner, b.Inner)
	case ir.VectorT:
		b, ok := y.(ir.VectorT)
		return ok && a.LengthField == b.LengthField && typesEqual(a.Inner, b.Inner)
	case ir.ListT:
		b, ok := y.(ir.ListT)
		return ok && a.Length == b.Length && typesEqual(a.Inner, b.Inner)
	case ir.DetachedVariantT:
		b, ok := y.(ir.DetachedVariantT)
		return ok && a.TagField == b.TagField && typesEqual(a.Variant, b.Variant)
	case ir.VirtualT:
		b, ok := y.(ir.VirtualT)
		return ok && typesEqual(a.Inner, b.Inner)
	default:
		return false
	}
}
