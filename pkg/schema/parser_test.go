package schema

import "testing"

func mustParse(t *testing.T, src string) *File {
	t.Helper()
	file, errs := ParseFile("test.wfs", src)
	if len(errs) != 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	return file
}

func TestParseProtocolAndImport(t *testing.T) {
	file := mustParse(t, `protocol v2;
import "v1.wfs" as base;
`)
	if file.Protocol != "v2" {
		t.Fatalf("expected protocol v2, got %q", file.Protocol)
	}
	if len(file.Imports) != 1 || file.Imports[0].Path != "v1.wfs" || file.Imports[0].Alias != "base" {
		t.Fatalf("unexpected imports: %+v", file.Imports)
	}
}

func TestParseStructWithPrimitiveFields(t *testing.T) {
	file := mustParse(t, `protocol v1;
struct Pair {
  x: i32le;
  y: u16be;
}
`)
	if len(file.Structs) != 1 {
		t.Fatalf("expected 1 struct, got %d", len(file.Structs))
	}
	s := file.Structs[0]
	if s.Name != "Pair" || len(s.Fields) != 2 {
		t.Fatalf("unexpected struct: %+v", s)
	}
	xt, ok := s.Fields[0].Type.(*IntTypeExpr)
	if !ok || xt.Width != 4 || !xt.Signed || xt.Endianness != "le" {
		t.Fatalf("unexpected field x type: %#v", s.Fields[0].Type)
	}
	yt, ok := s.Fields[1].Type.(*IntTypeExpr)
	if !ok || yt.Width != 2 || yt.Signed || yt.Endianness != "be" {
		t.Fatalf("unexpected field y type: %#v", s.Fields[1].Type)
	}
}

func TestParseVectorListArrayTypes(t *testing.T) {
	file := mustParse(t, `protocol v1;
struct Msg {
  count: u16le;
  items: vector<u8, len: count>;
  tail: list<u8, len: 4>;
  fixed: array<u8, 8>;
}
`)
	fields := file.Structs[0].Fields
	vec, ok := fields[1].Type.(*VectorTypeExpr)
	if !ok || vec.LenField != "count" {
		t.Fatalf("unexpected vector type: %#v", fields[1].Type)
	}
	list, ok := fields[2].Type.(*ListTypeExpr)
	if !ok || !list.HasFixed || list.LenFixed != 4 {
		t.Fatalf("unexpected list type: %#v", fields[2].Type)
	}
	arr, ok := fields[3].Type.(*ArrayTypeExpr)
	if !ok || arr.Length != 8 {
		t.Fatalf("unexpected array type: %#v", fields[3].Type)
	}
}

func TestParseUnboundSeqType(t *testing.T) {
	file := mustParse(t, `protocol v1;
struct Msg {
  payload: seq<u8, len: u16le>;
}
`)
	seq, ok := file.Structs[0].Fields[0].Type.(*UnboundSeqTypeExpr)
	if !ok {
		t.Fatalf("expected UnboundSeqTypeExpr, got %#v", file.Structs[0].Fields[0].Type)
	}
	if seq.LenType.Width != 2 || seq.LenType.Signed {
		t.Fatalf("unexpected len type: %#v", seq.LenType)
	}
}

func TestParseDetachedAndVirtual(t *testing.T) {
	file := mustParse(t, `protocol v1;
struct Envelope {
  kind: u8;
  body: detached<Body, tag: kind>;
  note: virtual<u32le>;
}
`)
	det, ok := file.Structs[0].Fields[1].Type.(*DetachedTypeExpr)
	if !ok || det.TagField != "kind" {
		t.Fatalf("unexpected detached type: %#v", file.Structs[0].Fields[1].Type)
	}
	virt, ok := file.Structs[0].Fields[2].Type.(*VirtualTypeExpr)
	if !ok {
		t.Fatalf("unexpected virtual type: %#v", file.Structs[0].Fields[2].Type)
	}
	if _, ok := virt.Inner.(*IntTypeExpr); !ok {
		t.Fatalf("unexpected virtual inner: %#v", virt.Inner)
	}
}

func TestParseEnum(t *testing.T) {
	file := mustParse(t, `protocol v1;
enum Color: u8 {
  RED = 0;
  BLUE = 1;
}
`)
	e := file.Enums[0]
	if e.Name != "Color" || e.Underlying.Width != 1 || len(e.Values) != 2 {
		t.Fatalf("unexpected enum: %+v", e)
	}
	if e.Values[1].Name != "BLUE" || e.Values[1].Value != 1 {
		t.Fatalf("unexpected enum value: %+v", e.Values[1])
	}
}

func TestParseVariant(t *testing.T) {
	file := mustParse(t, `protocol v1;
variant Shape: u8 {
  0 -> Circle;
  1 -> Square;
}
`)
	v := file.Variants[0]
	if v.Name != "Shape" || len(v.Members) != 2 {
		t.Fatalf("unexpected variant: %+v", v)
	}
	if v.Members[0].Tag != 0 || v.Members[0].Struct.String() != "Circle" {
		t.Fatalf("unexpected variant member: %+v", v.Members[0])
	}
}

func TestParseHashVariant(t *testing.T) {
	file := mustParse(t, `protocol v1;
hashvariant Event: u16le {
  members: Login, Logout, Heartbeat;
}
`)
	h := file.HashVariants[0]
	if h.Name != "Event" || len(h.Members) != 3 {
		t.Fatalf("unexpected hashvariant: %+v", h)
	}
	if h.Members[2].String() != "Heartbeat" {
		t.Fatalf("unexpected member: %v", h.Members[2])
	}
}

func TestParseConstants(t *testing.T) {
	file := mustParse(t, `protocol v1;
const Magic: u32be = 305419896;
const Name: string = "wireforge";
`)
	if len(file.Constants) != 2 {
		t.Fatalf("expected 2 constants, got %d", len(file.Constants))
	}
	if file.Constants[0].IsString {
		t.Fatalf("expected Magic to be an int constant")
	}
	iv, ok := file.Constants[0].Value.(*IntValue)
	if !ok || iv.Value != 305419896 {
		t.Fatalf("unexpected Magic value: %#v", file.Constants[0].Value)
	}
	sv, ok := file.Constants[1].Value.(*StringValue)
	if !ok || sv.Value != "wireforge" {
		t.Fatalf("unexpected Name value: %#v", file.Constants[1].Value)
	}
}

func TestParseStructConversion(t *testing.T) {
	file := mustParse(t, `protocol v2;
conversion v1.Pair -> Pair {
  field x = x;
  field y = default 0;
  field color = default Color.RED;
}
`)
	c := file.Conversions[0]
	if c.Src.String() != "v1.Pair" || c.Target.String() != "Pair" {
		t.Fatalf("unexpected conversion header: %+v", c)
	}
	if len(c.FieldConversions) != 3 {
		t.Fatalf("expected 3 field conversions, got %d", len(c.FieldConversions))
	}
	if c.FieldConversions[0].SrcField != "x" {
		t.Fatalf("unexpected passthrough: %+v", c.FieldConversions[0])
	}
	if !c.FieldConversions[1].IsDefault {
		t.Fatalf("expected field y to be a default conversion")
	}
	if c.FieldConversions[2].EnumDefault == nil || c.FieldConversions[2].EnumDefault.String() != "Color.RED" {
		t.Fatalf("unexpected enum default: %+v", c.FieldConversions[2])
	}
}

func TestParseEnumConversion(t *testing.T) {
	file := mustParse(t, `protocol v2;
conversion v1.Color -> Color {
  value RED -> RED;
  value OBSOLETE -> ;
}
`)
	c := file.Conversions[0]
	if len(c.EnumMapping) != 2 {
		t.Fatalf("expected 2 enum mappings, got %d", len(c.EnumMapping))
	}
	if !c.EnumMapping[0].HasTarget || c.EnumMapping[0].Target != "RED" {
		t.Fatalf("unexpected mapping: %+v", c.EnumMapping[0])
	}
	if c.EnumMapping[1].HasTarget {
		t.Fatalf("expected a mapping-out, got %+v", c.EnumMapping[1])
	}
}

func TestParseVariantConversion(t *testing.T) {
	file := mustParse(t, `protocol v2;
conversion v1.Shape -> Shape {
  member Circle -> Circle;
  member Square -> ;
}
`)
	c := file.Conversions[0]
	if len(c.VariantMapping) != 2 {
		t.Fatalf("expected 2 variant mappings, got %d", len(c.VariantMapping))
	}
	if !c.VariantMapping[0].HasTarget || c.VariantMapping[0].Target.String() != "Circle" {
		t.Fatalf("unexpected mapping: %+v", c.VariantMapping[0])
	}
}

func TestParseNoConversion(t *testing.T) {
	file := mustParse(t, `protocol v2;
conversion v1.Internal -> v2.Internal none;
`)
	c := file.Conversions[0]
	if !c.NoConversion {
		t.Fatalf("expected NoConversion override")
	}
}

func TestParseFromPrior(t *testing.T) {
	file := mustParse(t, `protocol v2;
from_prior "v1";
`)
	if file.FromPrior == nil || file.FromPrior.PriorProtocol != "v1" {
		t.Fatalf("unexpected from_prior: %+v", file.FromPrior)
	}
}

func TestParseOption(t *testing.T) {
	file := mustParse(t, `protocol v1;
option wireforge_version = "v0.3.0";
`)
	if len(file.Options) != 1 || file.Options[0].Name != "wireforge_version" {
		t.Fatalf("unexpected options: %+v", file.Options)
	}
	sv, ok := file.Options[0].Value.(*StringValue)
	if !ok || sv.Value != "v0.3.0" {
		t.Fatalf("unexpected option value: %#v", file.Options[0].Value)
	}
}

func TestParseMissingProtocolIsError(t *testing.T) {
	_, errs := ParseFile("test.wfs", `struct Foo { x: u8; }`)
	if len(errs) == 0 {
		t.Fatalf("expected a parse error for a missing protocol declaration")
	}
}

func TestParseUnclosedStructRecoversViaSynchronize(t *testing.T) {
	file, errs := ParseFile("test.wfs", `protocol v1;
struct Foo {
  x: u8;

struct Bar {
  y: u8;
}
`)
	if len(errs) == 0 {
		t.Fatalf("expected a parse error for the unclosed struct")
	}
	if len(file.Structs) != 1 || file.Structs[0].Name != "Bar" {
		t.Fatalf("expected the parser to recover and parse Bar, got %+v", file.Structs)
	}
}
