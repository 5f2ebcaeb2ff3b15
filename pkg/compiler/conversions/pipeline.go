package conversions

import (
	"github.com/blockberries/wireforge/pkg/compiler/cerrors"
	"github.com/blockberries/wireforge/pkg/ir"
)

// Compile runs the six-pass conversion pipeline (spec.md §4.4) over one
// protocol's declared conversions. types is the finalized PIR type table
// (this protocol's own types plus every transitively-referenced protocol's);
// external is every already-fused conversion belonging to a prior protocol,
// consulted to resolve a ConversionRef that crosses a protocol boundary but
// never mutated or reordered here.
func Compile(protocol string, defs []ir.ConversionDef, types map[string]ir.RootType, external map[ir.ConversionKey]ir.RootConversion) (ir.ProtocolConversions, cerrors.Errors) {
	b := &builder{
		protocol: protocol,
		types:    types,
		local:    make(map[ir.ConversionKey]ir.RootConversion, len(defs)),
		external: external,
	}

	b.lowerAll(defs)
	if len(b.errs) > 0 {
		return ir.ProtocolConversions{}, b.errs
	}

	b.expandAll()
	if len(b.errs) > 0 {
		return ir.ProtocolConversions{}, b.errs
	}

	b.resolveAll()
	if len(b.errs) > 0 {
		return ir.ProtocolConversions{}, b.errs
	}

	g := b.buildDependencyGraph()
	order := b.toposortLocal(g)
	if len(b.errs) > 0 {
		return ir.ProtocolConversions{}, b.errs
	}

	b.computeStrengths()

	merged := make(map[ir.ConversionKey]ir.RootConversion, len(external)+len(b.local))
	for k, v := range external {
		merged[k] = v
	}
	for k, v := range b.local {
		merged[k] = v
	}

	own := make([]ir.ConversionKey, 0, len(b.local))
	for _, key := range order {
		if _, ok := b.local[key]; ok {
			own = append(own, key)
		}
	}

	return ir.ProtocolConversions{Graph: merged, Own: own}, b.errs
}
