package nsprefix

import (
	"testing"

	"github.com/blockberries/wireforge/pkg/ir"
	"github.com/blockberries/wireforge/pkg/ir/intmodel"
)

func TestPrefixEmptyNamespaceIsNoop(t *testing.T) {
	proto := ir.Protocol{Name: ir.NewQName("v1")}
	out := Prefix(proto, ir.QName{})
	if !out.Name.Equal(proto.Name) {
		t.Fatalf("expected no-op, got %v", out.Name)
	}
}

func TestPrefixRewritesStructFieldsButNotMasterField(t *testing.T) {
	pairName := ir.NewQName("v1", "Pair")
	s := &ir.Struct{
		Name:     pairName,
		Protocol: "v1",
		Fields: []ir.Field{
			{Name: "len_", Type: ir.IntT{Width: 1, Sign: intmodel.Unsigned, Endianness: intmodel.Little}},
			{
				Name:        "payload",
				Type:        ir.VectorT{Inner: ir.RefT{Name: ir.NewQName("v1", "Item")}, LengthField: "len_"},
				MasterField: &ir.MasterField{MasterFieldName: "len_", KeyProperty: ir.KeySeqLength},
			},
		},
	}
	proto := ir.Protocol{
		Name: ir.NewQName("v1"),
		Types: ir.ProtocolTypes{
			Types: map[string]ir.RootType{pairName.String(): s},
			Own:   []ir.QName{pairName},
		},
	}

	out := Prefix(proto, ir.NewQName("apps", "demo"))

	wantName := ir.NewQName("apps", "demo", "v1", "Pair")
	prefixed, ok := out.Types.Types[wantName.String()]
	if !ok {
		t.Fatalf("expected prefixed struct at %s, got keys %v", wantName, keys(out.Types.Types))
	}
	ps := prefixed.(*ir.Struct)
	if ps.Protocol != "apps.demo.v1" {
		t.Fatalf("expected owning protocol apps.demo.v1, got %s", ps.Protocol)
	}
	vec, ok := ps.Fields[1].Type.(ir.VectorT)
	if !ok {
		t.Fatalf("expected field 1 to stay a VectorT, got %T", ps.Fields[1].Type)
	}
	ref, ok := vec.Inner.(ir.RefT)
	if !ok || !ref.Name.Equal(ir.NewQName("apps", "demo", "v1", "Item")) {
		t.Fatalf("expected vector inner ref prefixed to apps.demo.v1.Item, got %v", vec.Inner)
	}
	if vec.LengthField != "len_" {
		t.Fatalf("master-field length reference must stay a plain name, got %q", vec.LengthField)
	}
	if ps.Fields[1].MasterField == nil || ps.Fields[1].MasterField.MasterFieldName != "len_" {
		t.Fatalf("MasterField bookkeeping must stay a plain sibling name, got %+v", ps.Fields[1].MasterField)
	}
}

func keys(m map[string]ir.RootType) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
