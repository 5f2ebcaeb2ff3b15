package compiler

import (
	"context"
	"testing"

	"github.com/blockberries/wireforge/pkg/ir"
	"github.com/blockberries/wireforge/pkg/ir/intmodel"
)

func u8() ir.IntType { return ir.IntType{Width: 1, Sign: intmodel.Unsigned, Endianness: intmodel.Little} }

func simpleSchema(name string) *ir.ProtocolSchema {
	return &ir.ProtocolSchema{
		Name: name,
		Types: []ir.RootTypeDef{
			&ir.StructDef{Name: ir.NewQName(name, "Header"), ProtocolName: name, Fields: []ir.SchemaField{
				{Name: "version", Type: u8()},
			}},
		},
		Constants: []ir.RootConstantDef{
			&ir.RootIntConstant{Name: ir.NewQName(name, "MAGIC"), ProtocolName: name, Type: u8(), Value: 7},
		},
	}
}

func TestCompileProtocolNoReferences(t *testing.T) {
	proto, errs := CompileProtocol(simpleSchema("v1"), map[string]ir.RootType{}, map[ir.ConversionKey]ir.RootConversion{}, ir.QName{}, Options{})
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(proto.Types.Own) != 1 {
		t.Fatalf("expected one owned type, got %v", proto.Types.Own)
	}
	if _, ok := proto.Constants.Lookup(ir.NewQName("v1", "MAGIC")); !ok {
		t.Fatal("expected MAGIC constant in output")
	}
}

func TestCompileRecursesIntoReferences(t *testing.T) {
	v1 := simpleSchema("v1")
	v2 := &ir.ProtocolSchema{
		Name: "v2",
		Types: []ir.RootTypeDef{
			&ir.StructDef{Name: ir.NewQName("v2", "Header"), ProtocolName: "v2", Fields: []ir.SchemaField{
				{Name: "version", Type: u8()},
			}},
		},
		Conversions: []ir.ConversionDef{
			{Kind: ir.ConversionStruct, Src: ir.NewQName("v1", "Header"), Target: ir.NewQName("v2", "Header"), StructMapping: map[string]ir.FieldConversionDef{}},
		},
		References: map[string]*ir.ProtocolSchema{"v1": v1},
	}

	proto, errs := Compile(v2, ir.QName{}, Options{})
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if _, ok := proto.Types.Lookup(ir.NewQName("v1", "Header")); !ok {
		t.Fatal("expected referenced v1.Header to appear in the merged type table")
	}
	key := ir.ConversionKey{Src: ir.NewQName("v1", "Header"), Target: ir.NewQName("v2", "Header")}
	if _, ok := proto.Conversions.Lookup(key); !ok {
		t.Fatal("expected (v1.Header, v2.Header) conversion in the merged graph")
	}
}

func TestCompileWithNamespacePrefixesEverything(t *testing.T) {
	proto, errs := Compile(simpleSchema("v1"), ir.NewQName("apps", "demo"), Options{})
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	want := ir.NewQName("apps", "demo", "v1", "Header")
	if _, ok := proto.Types.Lookup(want); !ok {
		t.Fatalf("expected prefixed name %s in type table, got %v", want, keysOf(proto.Types.Types))
	}
}

func keysOf(m map[string]ir.RootType) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestCompileAllRunsIndependentSchemasConcurrently(t *testing.T) {
	schemas := []*ir.ProtocolSchema{simpleSchema("alpha"), simpleSchema("beta")}
	protos, err := CompileAll(context.Background(), schemas, ir.QName{}, Options{MaxParallel: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(protos) != 2 {
		t.Fatalf("expected 2 protocols, got %d", len(protos))
	}
	if !protos[0].Name.Equal(ir.NewQName("alpha")) || !protos[1].Name.Equal(ir.NewQName("beta")) {
		t.Fatalf("expected results in input order, got %v, %v", protos[0].Name, protos[1].Name)
	}
}
