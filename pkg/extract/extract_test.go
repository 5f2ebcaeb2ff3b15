package extract

import (
	"go/types"
	"strings"
	"testing"
)

func TestToSnakeCase(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"ID", "id"},
		{"UserName", "user_name"},
		{"FirstName", "first_name"},
		{"HTTPRequest", "http_request"},
		{"HTTPServer", "http_server"},
		{"XMLParser", "xml_parser"},
		{"simple", "simple"},
		{"userID", "user_id"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := toSnakeCase(tt.input)
			if result != tt.expected {
				t.Errorf("toSnakeCase(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestMatchGlob(t *testing.T) {
	tests := []struct {
		pattern  string
		name     string
		expected bool
	}{
		{"User*", "User", true},
		{"User*", "UserInfo", true},
		{"User*", "Admin", false},
		{"*Info", "UserInfo", true},
		{"*Info", "User", false},
		{"*", "Anything", true},
		{"User", "User", true},
		{"User", "Admin", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"_"+tt.name, func(t *testing.T) {
			result := matchGlob(tt.pattern, tt.name)
			if result != tt.expected {
				t.Errorf("matchGlob(%q, %q) = %v, want %v", tt.pattern, tt.name, result, tt.expected)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg == nil {
		t.Fatal("DefaultConfig() returned nil")
	}
	if cfg.IncludePrivate {
		t.Error("IncludePrivate should be false by default")
	}
	if len(cfg.IncludePatterns) != 0 {
		t.Error("IncludePatterns should be empty by default")
	}
	if len(cfg.ExcludePatterns) != 0 {
		t.Error("ExcludePatterns should be empty by default")
	}
}

func TestSchemaBuilderBuildEmpty(t *testing.T) {
	types := make(map[string]*TypeInfo)
	interfaces := make(map[string]*InterfaceInfo)
	enums := make(map[string]*EnumInfo)

	builder := NewSchemaBuilder(types, interfaces, enums)
	file, err := builder.Build("testpackage")
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if file == nil {
		t.Fatal("Build() returned nil file")
	}
	if file.Protocol != "testpackage" {
		t.Errorf("Build() protocol = %q, want %q", file.Protocol, "testpackage")
	}
}

func TestExtractorConfig(t *testing.T) {
	cfg := &ExtractorConfig{
		Config:     DefaultConfig(),
		Patterns:   []string{"./..."},
		OutputPath: "test.wfs",
		Package:    "testpkg",
	}

	if cfg.Config == nil {
		t.Error("Config should not be nil")
	}
	if len(cfg.Patterns) != 1 {
		t.Error("Patterns should have one element")
	}
	if cfg.OutputPath != "test.wfs" {
		t.Error("OutputPath mismatch")
	}
	if cfg.Package != "testpkg" {
		t.Error("Package mismatch")
	}
}

// TestExtractToString tests extraction from the testdata package end to end.
func TestExtractToString(t *testing.T) {
	result, err := ExtractToString([]string{"github.com/blockberries/wireforge/pkg/extract/testdata"}, DefaultConfig())
	if err != nil {
		t.Fatalf("ExtractToString() error = %v", err)
	}
	if result == "" {
		t.Error("ExtractToString() returned empty string")
	}
	if !strings.Contains(result, "protocol") {
		t.Error("ExtractToString() result should contain a protocol declaration")
	}

	for _, want := range []string{"struct User", "struct Address", "enum Status", "enum Priority"} {
		if !strings.Contains(result, want) {
			t.Errorf("result should contain %q, got:\n%s", want, result)
		}
	}

	if strings.Contains(result, "privateType") {
		t.Error("result should NOT contain 'privateType' (unexported)")
	}
}

// TestExtractWithPrivate tests extraction including unexported types.
func TestExtractWithPrivate(t *testing.T) {
	cfg := &Config{IncludePrivate: true}
	result, err := ExtractToString([]string{"github.com/blockberries/wireforge/pkg/extract/testdata"}, cfg)
	if err != nil {
		t.Fatalf("ExtractToString() error = %v", err)
	}

	if !strings.Contains(result, "privateType") {
		t.Error("result should contain 'privateType' when IncludePrivate is true")
	}
}

// TestExtractWithPatterns tests extraction with include/exclude patterns.
func TestExtractWithPatterns(t *testing.T) {
	cfg := &Config{IncludePatterns: []string{"User*"}}
	result, err := ExtractToString([]string{"github.com/blockberries/wireforge/pkg/extract/testdata"}, cfg)
	if err != nil {
		t.Fatalf("ExtractToString() error = %v", err)
	}

	if !strings.Contains(result, "struct User") {
		t.Error("result should contain 'User'")
	}
	if strings.Contains(result, "struct Address") {
		t.Error("result should NOT contain 'Address' (not matching User* pattern)")
	}
}

// TestExtractWithExclude tests extraction with exclude patterns.
func TestExtractWithExclude(t *testing.T) {
	cfg := &Config{ExcludePatterns: []string{"Admin"}}
	result, err := ExtractToString([]string{"github.com/blockberries/wireforge/pkg/extract/testdata"}, cfg)
	if err != nil {
		t.Fatalf("ExtractToString() error = %v", err)
	}

	if strings.Contains(result, "struct Admin") {
		t.Error("result should NOT contain 'Admin' (excluded by pattern)")
	}
	if !strings.Contains(result, "struct User") {
		t.Error("result should contain 'User'")
	}
}

// TestExtractor tests the extractor directly and checks the resulting AST.
func TestExtractor(t *testing.T) {
	extractor := NewExtractor()
	cfg := &ExtractorConfig{
		Config:   DefaultConfig(),
		Patterns: []string{"github.com/blockberries/wireforge/pkg/extract/testdata"},
		Package:  "custompackage",
	}

	file, err := extractor.Extract(cfg)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if file == nil {
		t.Fatal("Extract() returned nil file")
	}
	if file.Protocol != "custompackage" {
		t.Errorf("Protocol = %q, want %q", file.Protocol, "custompackage")
	}
}

func TestUintAndIntBasedEnumDetection(t *testing.T) {
	result, err := ExtractToString([]string{"github.com/blockberries/wireforge/pkg/extract/testdata"}, DefaultConfig())
	if err != nil {
		t.Fatalf("ExtractToString() error = %v", err)
	}

	if !strings.Contains(result, "enum Status") {
		t.Error("result should contain 'Status' enum (int32-based)")
	}
	if !strings.Contains(result, "enum Priority") {
		t.Error("result should contain 'Priority' enum (uint8-based)")
	}
	if !strings.Contains(result, "StatusActive") || !strings.Contains(result, "StatusInactive") {
		t.Error("result should contain Status enum values")
	}
	if !strings.Contains(result, "PriorityLow") || !strings.Contains(result, "PriorityHigh") {
		t.Error("result should contain Priority enum values")
	}
}

func TestSchemaBuilderSkipsUnrepresentableField(t *testing.T) {
	// Metadata (a Go map) has no wire representation; Build should skip the
	// field and record a warning instead of failing extraction.
	result, err := ExtractToString([]string{"github.com/blockberries/wireforge/pkg/extract/testdata"}, DefaultConfig())
	if err != nil {
		t.Fatalf("ExtractToString() error = %v", err)
	}
	if strings.Contains(result, "metadata") {
		t.Error("result should NOT contain the unrepresentable 'metadata' field")
	}
}

func TestPlatformDependentTypeWarning(t *testing.T) {
	types := map[string]*TypeInfo{
		"pkg.Legacy": {
			Name: "Legacy",
			Fields: []*FieldInfo{
				{Name: "Count", GoType: types.Typ[types.Int]},
			},
		},
	}

	builder := NewSchemaBuilder(types, nil, nil)
	_, err := builder.Build("pkg")
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	warnings := builder.Warnings()
	found := false
	for _, w := range warnings {
		if strings.Contains(w, "platform-dependent") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a platform-dependent type warning, got: %v", warnings)
	}
}

func TestVariantFromMarkerInterface(t *testing.T) {
	dog := &TypeInfo{Name: "Dog"}
	cat := &TypeInfo{Name: "Cat"}
	interfaces := map[string]*InterfaceInfo{
		"pkg.Animal": {
			Name:            "Animal",
			Implementations: []*TypeInfo{cat, dog}, // name order, as the collector supplies it
		},
	}

	builder := NewSchemaBuilder(nil, interfaces, nil)
	file, err := builder.Build("pkg")
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if len(file.Variants) != 1 {
		t.Fatalf("expected 1 variant, got %d", len(file.Variants))
	}
	variant := file.Variants[0]
	if variant.Name != "Animal" {
		t.Errorf("variant name = %q, want %q", variant.Name, "Animal")
	}
	if len(variant.Members) != 2 {
		t.Fatalf("expected 2 variant members, got %d", len(variant.Members))
	}
	seen := map[string]int64{}
	for _, m := range variant.Members {
		seen[m.Struct.String()] = m.Tag
	}
	if _, ok := seen["Cat"]; !ok {
		t.Error("expected Cat as a variant member")
	}
	if _, ok := seen["Dog"]; !ok {
		t.Error("expected Dog as a variant member")
	}
}
