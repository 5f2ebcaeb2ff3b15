package ingest

import (
	"sort"

	"github.com/blockberries/wireforge/pkg/ir"
)

// sortedKeys returns a protocol-reference map's keys in deterministic
// order, so ingestion of referenced protocols (and any diagnostics it
// emits) doesn't depend on Go's randomized map iteration.
func sortedKeys(m map[string]*ir.ProtocolSchema) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// sortedTypeNames returns the declared type names of a type list in
// deterministic (name-string) order, for a reproducible type_order.
func sortedTypeNames(types []ir.RootTypeDef) []ir.QName {
	out := make([]ir.QName, len(types))
	for i, t := range types {
		out[i] = t.TypeName()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

func sortedStrings(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
