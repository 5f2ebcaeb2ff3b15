package conversions

import (
	"testing"

	"github.com/blockberries/wireforge/pkg/compiler/ingest"
	"github.com/blockberries/wireforge/pkg/compiler/types"
	"github.com/blockberries/wireforge/pkg/ir"
	"github.com/blockberries/wireforge/pkg/ir/intmodel"
)

func u8() ir.IntType { return ir.IntType{Width: 1, Sign: intmodel.Unsigned, Endianness: intmodel.Little} }

func compileTypes(t *testing.T, schema *ir.ProtocolSchema) (*ingest.ProtocolDef, ir.ProtocolTypes) {
	t.Helper()

	external := map[string]ir.RootType{}
	for _, ref := range schema.References {
		refDef, errs := ingest.IngestProtocol(ref)
		if len(errs) != 0 {
			t.Fatalf("reference %q ingest errors: %v", ref.Name, errs)
		}
		refTypes, errs := types.Compile(refDef, map[string]ir.RootType{})
		if len(errs) != 0 {
			t.Fatalf("reference %q type-compile errors: %v", ref.Name, errs)
		}
		for k, v := range refTypes.Types {
			external[k] = v
		}
	}

	def, errs := ingest.IngestProtocol(schema)
	if len(errs) != 0 {
		t.Fatalf("ingest errors: %v", errs)
	}
	pt, errs := types.Compile(def, external)
	if len(errs) != 0 {
		t.Fatalf("type-compile errors: %v", errs)
	}
	return def, pt
}

func TestStructConversionSubstitutableViaImplicitMapping(t *testing.T) {
	pairV1 := ir.NewQName("v1", "Pair")
	pairV2 := ir.NewQName("v2", "Pair")
	structDef := func(name ir.QName, proto string) *ir.StructDef {
		return &ir.StructDef{Name: name, ProtocolName: proto, Fields: []ir.SchemaField{
			{Name: "a", Type: u8()},
			{Name: "b", Type: u8()},
		}}
	}
	schema := &ir.ProtocolSchema{
		Name: "v2",
		Types: []ir.RootTypeDef{
			structDef(pairV2, "v2"),
		},
		Conversions: []ir.ConversionDef{
			{Kind: ir.ConversionStruct, Src: pairV1, Target: pairV2, StructMapping: map[string]ir.FieldConversionDef{}},
		},
		References: map[string]*ir.ProtocolSchema{
			"v1": {Name: "v1", Types: []ir.RootTypeDef{structDef(pairV1, "v1")}},
		},
	}
	def, pt := compileTypes(t, schema)

	result, errs := Compile("v2", def.Conversions, pt.Types, map[ir.ConversionKey]ir.RootConversion{})
	if len(errs) != 0 {
		t.Fatalf("conversion-compile errors: %v", errs)
	}
	key := ir.ConversionKey{Src: pairV1, Target: pairV2}
	rc, ok := result.Graph[key]
	if !ok {
		t.Fatalf("expected conversion %v in graph", key)
	}
	if rc.Strength() != ir.StrengthSubstitutable {
		t.Fatalf("expected SUBSTITUTABLE, got %s", rc.Strength())
	}
	if len(result.Own) != 1 || result.Own[0] != key {
		t.Fatalf("expected Own=[%v], got %v", key, result.Own)
	}
}

func TestStructConversionTotalNotCompatibleOnFieldGrowth(t *testing.T) {
	small := ir.NewQName("v1", "Pair")
	big := ir.NewQName("v2", "Triple")
	schema := &ir.ProtocolSchema{
		Name: "v2",
		Types: []ir.RootTypeDef{
			&ir.StructDef{Name: big, ProtocolName: "v2", Fields: []ir.SchemaField{
				{Name: "a", Type: u8()},
				{Name: "b", Type: u8()},
			}},
		},
		Conversions: []ir.ConversionDef{
			{Kind: ir.ConversionStruct, Src: small, Target: big, StructMapping: map[string]ir.FieldConversionDef{
				"b": {Kind: ir.FieldIntDefault, IntType: u8(), IntValue: 5},
			}},
		},
		References: map[string]*ir.ProtocolSchema{
			"v1": {Name: "v1", Types: []ir.RootTypeDef{
				&ir.StructDef{Name: small, ProtocolName: "v1", Fields: []ir.SchemaField{{Name: "a", Type: u8()}}},
			}},
		},
	}
	def, pt := compileTypes(t, schema)

	result, errs := Compile("v2", def.Conversions, pt.Types, map[ir.ConversionKey]ir.RootConversion{})
	if len(errs) != 0 {
		t.Fatalf("conversion-compile errors: %v", errs)
	}
	key := ir.ConversionKey{Src: small, Target: big}
	rc := result.Graph[key]
	if rc.Strength() != ir.StrengthTotal {
		t.Fatalf("expected TOTAL (fewer source fields than target blocks Compatible), got %s", rc.Strength())
	}
}

func TestConversionDependencyCycleRejected(t *testing.T) {
	a := ir.NewQName("demo", "A")
	a2 := ir.NewQName("demo", "A2")
	bT := ir.NewQName("demo", "B")
	b2 := ir.NewQName("demo", "B2")

	schema := &ir.ProtocolSchema{
		Name: "demo",
		Types: []ir.RootTypeDef{
			&ir.StructDef{Name: a, ProtocolName: "demo", Fields: []ir.SchemaField{{Name: "f", Type: ir.RefType{Name: bT}}}},
			&ir.StructDef{Name: a2, ProtocolName: "demo", Fields: []ir.SchemaField{{Name: "f", Type: ir.RefType{Name: b2}}}},
			&ir.StructDef{Name: bT, ProtocolName: "demo", Fields: []ir.SchemaField{{Name: "g", Type: ir.RefType{Name: a}}}},
			&ir.StructDef{Name: b2, ProtocolName: "demo", Fields: []ir.SchemaField{{Name: "g", Type: ir.RefType{Name: a2}}}},
		},
		Conversions: []ir.ConversionDef{
			{Kind: ir.ConversionStruct, Src: a, Target: a2, StructMapping: map[string]ir.FieldConversionDef{}},
			{Kind: ir.ConversionStruct, Src: bT, Target: b2, StructMapping: map[string]ir.FieldConversionDef{}},
		},
	}
	def, pt := compileTypes(t, schema)

	_, errs := Compile("demo", def.Conversions, pt.Types, map[ir.ConversionKey]ir.RootConversion{})
	if len(errs) == 0 {
		t.Fatal("expected a dependency-cycle error")
	}
}
