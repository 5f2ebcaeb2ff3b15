package schema

import "testing"

func TestCheckCompatibilityFieldTypeChanged(t *testing.T) {
	old := mustParse(t, `protocol v1;
struct Pair { x: i32le; y: i32le; }
`)
	newer := mustParse(t, `protocol v1;
struct Pair { x: i64le; y: i32le; }
`)
	report := CheckCompatibility(old, newer)
	if report.IsCompatible() {
		t.Fatalf("expected a breaking change for a field type change")
	}
	if report.Breaking[0].Type != FieldTypeChanged {
		t.Fatalf("expected FieldTypeChanged, got %v", report.Breaking[0].Type)
	}
}

func TestCheckCompatibilityFieldRemoved(t *testing.T) {
	old := mustParse(t, `protocol v1;
struct Pair { x: i32le; y: i32le; }
`)
	newer := mustParse(t, `protocol v1;
struct Pair { x: i32le; }
`)
	report := CheckCompatibility(old, newer)
	if report.IsCompatible() {
		t.Fatalf("expected a breaking change for a removed field")
	}
	if report.Breaking[0].Type != FieldRemoved {
		t.Fatalf("expected FieldRemoved, got %v", report.Breaking[0].Type)
	}
}

func TestCheckCompatibilityFieldAddedIsWarningOnly(t *testing.T) {
	old := mustParse(t, `protocol v1;
struct Pair { x: i32le; }
`)
	newer := mustParse(t, `protocol v1;
struct Pair { x: i32le; y: i32le; }
`)
	report := CheckCompatibility(old, newer)
	if !report.IsCompatible() {
		t.Fatalf("expected no breaking changes for an added field, got %v", report.Breaking)
	}
	if len(report.Warnings) != 1 {
		t.Fatalf("expected 1 warning for an added field, got %v", report.Warnings)
	}
}

func TestCheckCompatibilityStructRemoved(t *testing.T) {
	old := mustParse(t, `protocol v1;
struct Pair { x: i32le; }
struct Triple { x: i32le; y: i32le; z: i32le; }
`)
	newer := mustParse(t, `protocol v1;
struct Pair { x: i32le; }
`)
	report := CheckCompatibility(old, newer)
	if report.IsCompatible() {
		t.Fatalf("expected a breaking change for a removed struct")
	}
	if report.Breaking[0].Type != StructRemoved {
		t.Fatalf("expected StructRemoved, got %v", report.Breaking[0].Type)
	}
}

func TestCheckCompatibilityEnumValueChangedAndRemoved(t *testing.T) {
	old := mustParse(t, `protocol v1;
enum Color: u8 {
  RED = 0;
  BLUE = 1;
}
`)
	newer := mustParse(t, `protocol v1;
enum Color: u8 {
  GREEN = 0;
}
`)
	report := CheckCompatibility(old, newer)
	var sawChanged, sawRemoved bool
	for _, b := range report.Breaking {
		if b.Type == EnumValueChanged {
			sawChanged = true
		}
		if b.Type == EnumValueRemoved {
			sawRemoved = true
		}
	}
	if !sawChanged || !sawRemoved {
		t.Fatalf("expected both a value change and a removal, got %v", report.Breaking)
	}
}

func TestCheckCompatibilityVariantTagReassignedAndMemberRemoved(t *testing.T) {
	old := mustParse(t, `protocol v1;
struct Circle { r: u32le; }
struct Square { s: u32le; }
variant Shape: u8 {
  0 -> Circle;
  1 -> Square;
}
`)
	newer := mustParse(t, `protocol v1;
struct Circle { r: u32le; }
struct Square { s: u32le; }
variant Shape: u8 {
  0 -> Square;
}
`)
	report := CheckCompatibility(old, newer)
	if report.IsCompatible() {
		t.Fatalf("expected breaking changes for a variant tag reassignment, got none")
	}
	var sawTagChanged, sawMemberRemoved bool
	for _, b := range report.Breaking {
		if b.Type == VariantTagChanged {
			sawTagChanged = true
		}
		if b.Type == VariantMemberRemoved {
			sawMemberRemoved = true
		}
	}
	if !sawTagChanged {
		t.Fatalf("expected a VariantTagChanged breaking change, got %v", report.Breaking)
	}
	if !sawMemberRemoved {
		t.Fatalf("expected a VariantMemberRemoved breaking change, got %v", report.Breaking)
	}
}

func TestCheckCompatibilityHashVariantMemberRemovedAndAdded(t *testing.T) {
	old := mustParse(t, `protocol v1;
struct Login { id: u32le; }
struct Logout { id: u32le; }
hashvariant Event: u16le {
  members: Login, Logout;
}
`)
	newer := mustParse(t, `protocol v1;
struct Login { id: u32le; }
struct Logout { id: u32le; }
struct Heartbeat { id: u32le; }
hashvariant Event: u16le {
  members: Login, Heartbeat;
}
`)
	report := CheckCompatibility(old, newer)
	if report.IsCompatible() {
		t.Fatalf("expected a breaking change for a removed hashvariant member")
	}
	if report.Breaking[0].Type != HashVariantMemberRemoved {
		t.Fatalf("expected HashVariantMemberRemoved, got %v", report.Breaking[0].Type)
	}
	if len(report.Warnings) != 1 {
		t.Fatalf("expected 1 warning for the added member, got %v", report.Warnings)
	}
}

func TestCheckCompatibilityIdenticalSchemasAreCompatible(t *testing.T) {
	src := `protocol v1;
struct Pair { x: i32le; y: i32le; }
`
	old := mustParse(t, src)
	newer := mustParse(t, src)
	report := CheckCompatibility(old, newer)
	if !report.IsCompatible() || len(report.Warnings) != 0 {
		t.Fatalf("expected a fully compatible report, got breaking=%v warnings=%v", report.Breaking, report.Warnings)
	}
}
