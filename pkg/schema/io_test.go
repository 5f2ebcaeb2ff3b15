package schema

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeSchema(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("failed to write fixture %s: %v", name, err)
	}
	return path
}

func TestLoaderLoadsSimpleSchema(t *testing.T) {
	dir := t.TempDir()
	path := writeSchema(t, dir, "pair.wfs", `protocol v1;
struct Pair {
  x: i32le;
  y: i32le;
}
`)
	loader := NewLoader()
	schema, errs := loader.LoadFile(path)
	if len(errs) != 0 {
		t.Fatalf("unexpected load errors: %v", errs)
	}
	if schema.Name != "v1" || len(schema.Types) != 1 {
		t.Fatalf("unexpected schema: %+v", schema)
	}
}

func TestLoaderResolvesImports(t *testing.T) {
	dir := t.TempDir()
	writeSchema(t, dir, "v1.wfs", `protocol v1;
struct Pair {
  x: i32le;
  y: i32le;
}
`)
	path := writeSchema(t, dir, "v2.wfs", `protocol v2;
import "v1.wfs" as base;
struct Wrapper {
  inner: base.Pair;
}
`)
	loader := NewLoader()
	schema, errs := loader.LoadFile(path)
	if len(errs) != 0 {
		t.Fatalf("unexpected load errors: %v", errs)
	}
	if _, ok := schema.References["v1"]; !ok {
		t.Fatalf("expected v1 reference, got %+v", schema.References)
	}
}

func TestLoaderDetectsCircularImport(t *testing.T) {
	dir := t.TempDir()
	writeSchema(t, dir, "a.wfs", `protocol a;
import "b.wfs" as b;
`)
	path := writeSchema(t, dir, "b.wfs", `protocol b;
import "a.wfs" as a;
`)
	loader := NewLoader()
	_, errs := loader.LoadFile(path)
	if len(errs) == 0 {
		t.Fatalf("expected a circular import error")
	}
	var found bool
	for _, e := range errs {
		if strings.Contains(e.Error(), "circular import") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a circular import message, got %v", errs)
	}
}

func TestLoaderMissingImportIsError(t *testing.T) {
	dir := t.TempDir()
	path := writeSchema(t, dir, "v2.wfs", `protocol v2;
import "missing.wfs" as base;
`)
	loader := NewLoader()
	_, errs := loader.LoadFile(path)
	if len(errs) == 0 {
		t.Fatalf("expected a missing-import error")
	}
	var found bool
	for _, e := range errs {
		if strings.Contains(e.Error(), "import not found") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an import-not-found message, got %v", errs)
	}
}

func TestLoaderVersionGateRejectsNewerSchema(t *testing.T) {
	dir := t.TempDir()
	path := writeSchema(t, dir, "future.wfs", `protocol v1;
option wireforge_version = "v99.0.0";
`)
	loader := NewLoader()
	_, errs := loader.LoadFile(path)
	if len(errs) == 0 {
		t.Fatalf("expected a version gate error")
	}
	var found bool
	for _, e := range errs {
		if strings.Contains(e.Error(), "schema requires wireforge") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a version mismatch message, got %v", errs)
	}
}

func TestLoaderVersionGateAcceptsOlderSchema(t *testing.T) {
	dir := t.TempDir()
	path := writeSchema(t, dir, "old.wfs", `protocol v1;
option wireforge_version = "v0.1.0";
struct Pair { x: u8; }
`)
	loader := NewLoader()
	_, errs := loader.LoadFile(path)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors for an older version gate: %v", errs)
	}
}

func TestLoaderVersionGateRejectsInvalidSemver(t *testing.T) {
	dir := t.TempDir()
	path := writeSchema(t, dir, "bad.wfs", `protocol v1;
option wireforge_version = "not-a-version";
`)
	loader := NewLoader()
	_, errs := loader.LoadFile(path)
	if len(errs) == 0 {
		t.Fatalf("expected an invalid semver error")
	}
}

func TestWriterRoundTripsCanonicalForm(t *testing.T) {
	file := mustParse(t, `protocol v1;
struct Pair {
  x: i32le;
  y: i32le;
}
`)
	out := FormatFile(file)
	reparsed, errs := ParseFile("out.wfs", out)
	if len(errs) != 0 {
		t.Fatalf("unexpected parse errors on round-trip: %v", errs)
	}
	if reparsed.Protocol != "v1" || len(reparsed.Structs) != 1 || reparsed.Structs[0].Name != "Pair" {
		t.Fatalf("unexpected round-tripped file: %+v", reparsed)
	}
	if len(reparsed.Structs[0].Fields) != 2 {
		t.Fatalf("expected 2 fields after round-trip, got %d", len(reparsed.Structs[0].Fields))
	}
}

func TestLoadAndValidateConvenienceFunction(t *testing.T) {
	dir := t.TempDir()
	path := writeSchema(t, dir, "pair.wfs", `protocol v1;
struct Pair { x: u8; }
`)
	schema, errs := LoadAndValidate(path)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if schema == nil || schema.Name != "v1" {
		t.Fatalf("unexpected schema: %+v", schema)
	}
}
