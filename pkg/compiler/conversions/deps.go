package conversions

import (
	"fmt"
	"strings"

	"github.com/blockberries/wireforge/pkg/compiler/cerrors"
	"github.com/blockberries/wireforge/pkg/ir"
	"github.com/blockberries/wireforge/pkg/ir/graph"
)

// buildDependencyGraph is pass 4: every conversion this protocol declares
// depends on every ConversionRef reachable from its field or variant-value
// conversions. Dependencies are resolved relative to the full (local +
// external) graph but only locally-declared conversions become vertices
// with outgoing edges — an external dependency is a leaf here, since it was
// already ordered and fused when its own protocol was compiled.
func (b *builder) buildDependencyGraph() *graph.Graph[ir.ConversionKey, struct{}] {
	g := graph.New[ir.ConversionKey, struct{}]()
	for key := range b.local {
		g.AddVertex(key)
	}
	for key, rc := range b.local {
		for _, dep := range dependenciesOf(rc) {
			g.Put(key, dep, struct{}{})
		}
	}
	return g
}

func dependenciesOf(rc ir.RootConversion) []ir.ConversionKey {
	var deps []ir.ConversionKey
	switch c := rc.(type) {
	case *ir.EnumConversion:
		// no nested conversions
	case *ir.StructConversion:
		for _, fname := range c.TargetFieldOrder {
			fc, ok := c.Mapping[fname]
			if !ok {
				continue
			}
			if t, ok := fc.(ir.TransformFieldConversion); ok {
				deps = append(deps, conversionDeps(t.Inner)...)
			}
		}
	case *ir.VariantConversion:
		for _, vvm := range c.Mapping {
			if vvm.HasTarget {
				deps = append(deps, conversionDeps(vvm.Inner)...)
			}
		}
	}
	return deps
}

func conversionDeps(c ir.Conversion) []ir.ConversionKey {
	if ref, ok := c.(ir.ConversionRef); ok {
		return []ir.ConversionKey{{Src: ref.Src, Target: ref.Target}}
	}
	return nil
}

// toposortLocal orders the local graph's vertices dependencies-first,
// reporting a conversion error (instead of a panic) on a cycle.
func (b *builder) toposortLocal(g *graph.Graph[ir.ConversionKey, struct{}]) []ir.ConversionKey {
	order, cycle := g.Toposort()
	if cycle != nil {
		names := make([]string, len(cycle.Unranked))
		for i, k := range cycle.Unranked {
			names[i] = fmt.Sprintf("%s->%s", k.Src, k.Target)
		}
		b.addError(cerrors.New(cerrors.KindConversion, "conversion dependency cycle among: %s", strings.Join(names, ", ")))
		return nil
	}
	return order
}
