// Package constants implements the constant compiler (spec.md §4.3):
// lowering schema-level constant declarations into their PIR form.
package constants

import (
	"github.com/blockberries/wireforge/pkg/ir"
)

// Compile lowers every constant declared by a protocol into its PIR form.
// An integer constant carries its Int type annotated with a Constant(width)
// size and the trivial flag set; a string constant's value is preserved
// verbatim.
func Compile(defs []ir.RootConstantDef) map[string]ir.RootConstant {
	out := make(map[string]ir.RootConstant, len(defs))
	for _, def := range defs {
		out[def.ConstName().String()] = lower(def)
	}
	return out
}

func lower(def ir.RootConstantDef) ir.RootConstant {
	switch d := def.(type) {
	case *ir.RootIntConstant:
		return &ir.IntConstant{
			Name:     d.Name,
			Protocol: d.ProtocolName,
			Type:     d.Type,
			Value:    d.Value,
			Size:     ir.ConstantSize(d.Type.Width),
			Trivial:  true,
		}
	case *ir.RootStringConstant:
		return &ir.StringConstant{
			Name:     d.Name,
			Protocol: d.ProtocolName,
			Value:    d.Value,
		}
	default:
		panic("constants: unknown RootConstantDef kind")
	}
}
