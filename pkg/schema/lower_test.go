package schema

import (
	"testing"

	"github.com/blockberries/wireforge/pkg/ir"
	"github.com/blockberries/wireforge/pkg/ir/intmodel"
)

func TestLowerStructWithSeqTypes(t *testing.T) {
	file := mustParse(t, `protocol v1;
struct Msg {
  count: u16le;
  items: vector<u8, len: count>;
  fixed: array<u8, 4>;
  payload: seq<u8, len: u32be>;
}
`)
	schema, errs := Lower(file, nil)
	if len(errs) != 0 {
		t.Fatalf("unexpected lower errors: %v", errs)
	}
	if schema.Name != "v1" {
		t.Fatalf("expected protocol name v1, got %q", schema.Name)
	}
	if len(schema.Types) != 1 {
		t.Fatalf("expected 1 root type, got %d", len(schema.Types))
	}
	def, ok := schema.Types[0].(*ir.StructDef)
	if !ok {
		t.Fatalf("expected *ir.StructDef, got %T", schema.Types[0])
	}
	if def.Name.String() != "v1.Msg" {
		t.Fatalf("expected qname v1.Msg, got %s", def.Name.String())
	}

	vecField := def.Fields[1].Type.(ir.SeqType)
	if vecField.Length.Kind != ir.SeqLengthFieldPath || vecField.Length.FieldPath != "count" {
		t.Fatalf("unexpected vector lowering: %+v", vecField.Length)
	}

	arrField := def.Fields[2].Type.(ir.SeqType)
	if arrField.Length.Kind != ir.SeqLengthFixedInt || arrField.Length.FixedValue != 4 {
		t.Fatalf("unexpected array lowering: %+v", arrField.Length)
	}

	seqField := def.Fields[3].Type.(ir.SeqType)
	if seqField.Length.Kind != ir.SeqLengthIntType {
		t.Fatalf("unexpected seq lowering: %+v", seqField.Length)
	}
	if seqField.Length.IntType.Width != 4 || seqField.Length.IntType.Sign != intmodel.Unsigned || seqField.Length.IntType.Endianness != intmodel.Big {
		t.Fatalf("unexpected seq length int type: %+v", seqField.Length.IntType)
	}
}

func TestLowerEnumVariantHashVariant(t *testing.T) {
	file := mustParse(t, `protocol v1;
enum Color: u8 {
  RED = 0;
  BLUE = 1;
}
struct Circle { r: u32le; }
struct Square { s: u32le; }
variant Shape: u8 {
  0 -> Circle;
  1 -> Square;
}
hashvariant Event: u16le {
  members: Circle, Square;
}
`)
	schema, errs := Lower(file, nil)
	if len(errs) != 0 {
		t.Fatalf("unexpected lower errors: %v", errs)
	}

	var enumDef *ir.EnumDef
	var variantDef *ir.VariantDef
	var hashDef *ir.HashVariantDef
	for _, td := range schema.Types {
		switch v := td.(type) {
		case *ir.EnumDef:
			enumDef = v
		case *ir.VariantDef:
			variantDef = v
		case *ir.HashVariantDef:
			hashDef = v
		}
	}
	if enumDef == nil || len(enumDef.Variants) != 2 || enumDef.Variants[1].Name != "BLUE" {
		t.Fatalf("unexpected enum lowering: %+v", enumDef)
	}
	if variantDef == nil || len(variantDef.Tags) != 2 || variantDef.Tags[0].Struct.String() != "v1.Circle" {
		t.Fatalf("unexpected variant lowering: %+v", variantDef)
	}
	if hashDef == nil || len(hashDef.Members) != 2 || hashDef.Members[1].String() != "v1.Square" {
		t.Fatalf("unexpected hashvariant lowering: %+v", hashDef)
	}
}

func TestLowerConstants(t *testing.T) {
	file := mustParse(t, `protocol v1;
const Magic: u32be = 305419896;
const Name: string = "wireforge";
`)
	schema, errs := Lower(file, nil)
	if len(errs) != 0 {
		t.Fatalf("unexpected lower errors: %v", errs)
	}
	if len(schema.Constants) != 2 {
		t.Fatalf("expected 2 constants, got %d", len(schema.Constants))
	}
	intConst, ok := schema.Constants[0].(*ir.RootIntConstant)
	if !ok || intConst.Value != 305419896 {
		t.Fatalf("unexpected int constant: %+v", schema.Constants[0])
	}
	strConst, ok := schema.Constants[1].(*ir.RootStringConstant)
	if !ok || strConst.Value != "wireforge" {
		t.Fatalf("unexpected string constant: %+v", schema.Constants[1])
	}
}

func TestLowerImportedReference(t *testing.T) {
	v1 := &ir.ProtocolSchema{Name: "v1", References: map[string]*ir.ProtocolSchema{}}
	file := mustParse(t, `protocol v2;
import "v1.wfs" as base;
struct Wrapper {
  inner: base.Pair;
}
`)
	schema, errs := Lower(file, map[string]*ir.ProtocolSchema{"base": v1})
	if len(errs) != 0 {
		t.Fatalf("unexpected lower errors: %v", errs)
	}
	if _, ok := schema.References["v1"]; !ok {
		t.Fatalf("expected v1 in references, got %+v", schema.References)
	}
	def := schema.Types[0].(*ir.StructDef)
	ref := def.Fields[0].Type.(ir.RefType)
	if ref.Name.String() != "v1.Pair" {
		t.Fatalf("expected resolved reference v1.Pair, got %s", ref.Name.String())
	}
}

func TestLowerConversionKinds(t *testing.T) {
	file := mustParse(t, `protocol v2;
conversion v1.Pair -> Pair {
  field x = x;
  field y = default 7;
  field color = default Color.RED;
}
conversion v1.Color -> Color {
  value RED -> RED;
  value OBSOLETE -> ;
}
conversion v1.Shape -> Shape {
  member Circle -> Circle;
  member Square -> ;
}
conversion v1.Internal -> Internal none;
`)
	schema, errs := Lower(file, nil)
	if len(errs) != 0 {
		t.Fatalf("unexpected lower errors: %v", errs)
	}
	if len(schema.Conversions) != 4 {
		t.Fatalf("expected 4 conversions, got %d", len(schema.Conversions))
	}

	structConv := schema.Conversions[0]
	if structConv.Kind != ir.ConversionStruct {
		t.Fatalf("expected struct conversion kind, got %v", structConv.Kind)
	}
	if structConv.StructMapping["x"].Kind != ir.FieldTransform || structConv.StructMapping["x"].SrcField != "x" {
		t.Fatalf("unexpected x mapping: %+v", structConv.StructMapping["x"])
	}
	if structConv.StructMapping["y"].Kind != ir.FieldIntDefault || structConv.StructMapping["y"].IntValue != 7 {
		t.Fatalf("unexpected y mapping: %+v", structConv.StructMapping["y"])
	}
	if structConv.StructMapping["color"].Kind != ir.FieldEnumDefault || structConv.StructMapping["color"].EnumValue != "RED" {
		t.Fatalf("unexpected color mapping: %+v", structConv.StructMapping["color"])
	}

	enumConv := schema.Conversions[1]
	if enumConv.Kind != ir.ConversionEnum || len(enumConv.EnumMapping) != 2 {
		t.Fatalf("unexpected enum conversion: %+v", enumConv)
	}

	variantConv := schema.Conversions[2]
	if variantConv.Kind != ir.ConversionVariant || len(variantConv.VariantMapping) != 2 {
		t.Fatalf("unexpected variant conversion: %+v", variantConv)
	}

	noneConv := schema.Conversions[3]
	if noneConv.Kind != ir.ConversionNone {
		t.Fatalf("expected none conversion kind, got %v", noneConv.Kind)
	}
}

func TestLowerFromPrior(t *testing.T) {
	file := mustParse(t, `protocol v2;
from_prior "v1";
`)
	schema, errs := Lower(file, nil)
	if len(errs) != 0 {
		t.Fatalf("unexpected lower errors: %v", errs)
	}
	if schema.FromPrior == nil || schema.FromPrior.PriorProtocol != "v1" {
		t.Fatalf("unexpected from_prior lowering: %+v", schema.FromPrior)
	}
}
