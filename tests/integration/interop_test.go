// Package integration exercises the schema -> MIR -> PIR pipeline across
// protocol boundaries: a struct field referencing another protocol's type,
// and a declared struct conversion between two versions of a message.
// Both are things a single-protocol unit test never has to wire together.
package integration

import (
	"testing"

	"github.com/blockberries/wireforge/pkg/compiler"
	"github.com/blockberries/wireforge/pkg/ir"
	"github.com/blockberries/wireforge/pkg/schema"
)

const commonSchemaSrc = `
protocol common;

struct point {
	x: i32;
	y: i32;
}
`

const catalogSchemaSrc = `
protocol catalog;

import "common.wfs" as common;

struct item {
	id: u32le;
	location: common.point;
}
`

func mustLower(t *testing.T, name, src string, imports map[string]*ir.ProtocolSchema) *ir.ProtocolSchema {
	t.Helper()
	file, parseErrs := schema.ParseFile(name, src)
	if len(parseErrs) > 0 {
		t.Fatalf("parse %s: %v", name, parseErrs)
	}
	for _, v := range schema.Validate(file) {
		if v.Severity == schema.SeverityError {
			t.Fatalf("validate %s: %s", name, v.Message)
		}
	}
	protoSchema, lowerErrs := schema.Lower(file, imports)
	if len(lowerErrs) > 0 {
		t.Fatalf("lower %s: %v", name, lowerErrs)
	}
	return protoSchema
}

// TestCrossProtocolFieldReference compiles a protocol whose struct embeds a
// field typed by another, separately-compiled protocol, and checks that
// compiler.Compile resolves the reference by recursing into
// schema.References rather than requiring the caller to pre-flatten the
// type graph.
func TestCrossProtocolFieldReference(t *testing.T) {
	commonSchema := mustLower(t, "common.wfs", commonSchemaSrc, nil)
	catalogSchema := mustLower(t, "catalog.wfs", catalogSchemaSrc, map[string]*ir.ProtocolSchema{
		"common": commonSchema,
	})

	proto, errs := compiler.Compile(catalogSchema, ir.QName{}, compiler.Options{})
	if len(errs) > 0 {
		t.Fatalf("compile catalog: %v", errs)
	}

	itemName := ir.NewQName("catalog", "item")
	rt, ok := proto.Types.Lookup(itemName)
	if !ok {
		t.Fatalf("item struct not found in compiled catalog protocol")
	}
	item, ok := rt.(*ir.Struct)
	if !ok {
		t.Fatalf("catalog.item resolved to %T, want *ir.Struct", rt)
	}

	var location *ir.Field
	for i := range item.Fields {
		if item.Fields[i].Name == "location" {
			location = &item.Fields[i]
		}
	}
	if location == nil {
		t.Fatal("item has no location field")
	}
	ref, ok := location.Type.(ir.RefT)
	if !ok {
		t.Fatalf("location field type is %T, want ir.RefT", location.Type)
	}
	wantPoint := ir.NewQName("common", "point")
	if !ref.Name.Equal(wantPoint) {
		t.Errorf("location references %s, want %s", ref.Name, wantPoint)
	}

	// point is two i32 fields: 8 bytes, folded into item's own size.
	pointRT, ok := proto.Types.Lookup(wantPoint)
	if !ok {
		t.Fatal("common.point not present in catalog's compiled type table")
	}
	point := pointRT.(*ir.Struct)
	if !point.Size.IsConstant() || point.Size.Value != 8 {
		t.Errorf("point size = %+v, want constant 8 bytes", point.Size)
	}
	if !item.Size.IsConstant() || item.Size.Value != 4+8 {
		t.Errorf("item size = %+v, want constant 12 bytes (u32le id + point)", item.Size)
	}
}

const catalogVersionsSchemaSrc = `
protocol catalog_versions;

struct item_v1 {
	id: u32le;
	label: seq<u8, len: u32le>;
}

struct item_v2 {
	id: u32le;
	name: seq<u8, len: u32le>;
	priority: i32;
}

conversion item_v1 -> item_v2 {
	field id = id;
	field name = label;
	field priority = default 0;
}
`

// TestDeclaredStructConversion compiles a protocol declaring a struct
// conversion between two message versions and checks that the conversion
// compiler (spec.md §4.4) produces the expected field mapping: two renamed
// transforms and one literal default for the field item_v1 never had.
func TestDeclaredStructConversion(t *testing.T) {
	versionsSchema := mustLower(t, "catalog_versions.wfs", catalogVersionsSchemaSrc, nil)

	proto, errs := compiler.Compile(versionsSchema, ir.QName{}, compiler.Options{})
	if len(errs) > 0 {
		t.Fatalf("compile catalog_versions: %v", errs)
	}

	key := ir.ConversionKey{
		Src:    ir.NewQName("catalog_versions", "item_v1"),
		Target: ir.NewQName("catalog_versions", "item_v2"),
	}
	rc, ok := proto.Conversions.Graph[key]
	if !ok {
		t.Fatalf("no conversion registered for %s -> %s", key.Src, key.Target)
	}
	sc, ok := rc.(*ir.StructConversion)
	if !ok {
		t.Fatalf("conversion is %T, want *ir.StructConversion", rc)
	}

	idConv, ok := sc.Mapping["id"].(ir.TransformFieldConversion)
	if !ok || idConv.SrcField != "id" {
		t.Errorf("id mapping = %#v, want transform from source field %q", sc.Mapping["id"], "id")
	}

	nameConv, ok := sc.Mapping["name"].(ir.TransformFieldConversion)
	if !ok || nameConv.SrcField != "label" {
		t.Errorf("name mapping = %#v, want transform from source field %q", sc.Mapping["name"], "label")
	}

	priorityConv, ok := sc.Mapping["priority"].(ir.IntDefaultFieldConversion)
	if !ok || priorityConv.Value != 0 {
		t.Errorf("priority mapping = %#v, want int default 0", sc.Mapping["priority"])
	}

	found := false
	for _, k := range proto.Conversions.Own {
		if k == key {
			found = true
		}
	}
	if !found {
		t.Errorf("conversion %s -> %s missing from Conversions.Own", key.Src, key.Target)
	}
}
