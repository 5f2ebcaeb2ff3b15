package types

import (
	"github.com/blockberries/wireforge/pkg/compiler/cerrors"
	"github.com/blockberries/wireforge/pkg/compiler/ingest"
	"github.com/blockberries/wireforge/pkg/ir"
)

// Compile runs the thirteen-pass type pipeline (spec.md §4.2) over one
// protocol's ingested type declarations. external supplies the
// already-finalized types of every transitively-referenced protocol,
// keyed by QName string, so Ref resolution and size/digest composition can
// see across protocol boundaries.
func Compile(def *ingest.ProtocolDef, external map[string]ir.RootType) (ir.ProtocolTypes, cerrors.Errors) {
	p := &pipeline{
		protocol: def.Name,
		order:    def.TypeOrder,
		types:    lowerAll(def),
		external: external,
	}

	p.checkDefinitionOrder()
	p.checkSemantics()
	if len(p.errs) > 0 {
		return ir.ProtocolTypes{}, p.errs
	}

	p.expandVariants()
	p.expandSeqs()
	p.computeMasterFields()
	p.computeDigestsAndExpandHash()
	if len(p.errs) > 0 {
		return ir.ProtocolTypes{}, p.errs
	}

	p.computeSizeOffset()
	p.computeEnumRanges()
	p.reduceSeqs()
	p.computeTrivial()

	own, externalProtocols := p.partition()

	merged := make(map[string]ir.RootType, len(p.types)+len(external))
	for k, v := range external {
		merged[k] = v
	}
	for k, v := range p.types {
		merged[k] = v
	}

	return ir.ProtocolTypes{
		Types:             merged,
		Own:               own,
		ExternalProtocols: externalProtocols,
	}, p.errs
}

// partition is pass 12: own types are exactly ingestion's leaves-first
// type_order (no root types are added or removed by expansion — variant-
// and seq-expand only inject struct fields, and hash-expand replaces a
// HashVariant in place under the same QName). External protocols are every
// referenced namespace outside this one.
func (p *pipeline) partition() ([]ir.QName, map[string]bool) {
	own := append([]ir.QName(nil), p.order...)
	external := make(map[string]bool)
	for _, rt := range p.types {
		for _, ref := range rootTypeRefs(rt) {
			ns := ref.Namespace().String()
			if ns != p.protocol {
				external[ns] = true
			}
		}
	}
	return own, external
}
