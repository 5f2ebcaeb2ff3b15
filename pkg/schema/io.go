package schema

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/blockberries/wireforge/pkg/ir"
)

// Version is the compiler's own semantic version, checked against any
// `option wireforge_version = "vX.Y.Z";` a schema declares.
const Version = "v0.4.0"

// Loader loads and resolves .wfs schema files, lowering each one (plus its
// transitive imports) into the *ir.ProtocolSchema object graph ingestion
// consumes.
type Loader struct {
	// SearchPaths are directories to search for imported schemas.
	SearchPaths []string

	files        map[string]*File
	loaded       map[string]*ir.ProtocolSchema
	loadedErrors map[string][]error
}

// NewLoader creates a new schema loader with the given search paths.
func NewLoader(searchPaths ...string) *Loader {
	return &Loader{
		SearchPaths:  searchPaths,
		files:        make(map[string]*File),
		loaded:       make(map[string]*ir.ProtocolSchema),
		loadedErrors: make(map[string][]error),
	}
}

// LoadFile loads a schema file and all its imports, lowering each into an
// *ir.ProtocolSchema.
func (l *Loader) LoadFile(path string) (*ir.ProtocolSchema, []error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, []error{fmt.Errorf("failed to resolve path: %w", err)}
	}
	return l.loadFileInternal(absPath, nil)
}

func (l *Loader) loadFileInternal(absPath string, importChain []string) (*ir.ProtocolSchema, []error) {
	for _, p := range importChain {
		if p == absPath {
			return nil, []error{fmt.Errorf("circular import detected: %s", strings.Join(append(importChain, absPath), " -> "))}
		}
	}

	if schema, ok := l.loaded[absPath]; ok {
		return schema, l.loadedErrors[absPath]
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		return nil, []error{fmt.Errorf("failed to read file %s: %w", absPath, err)}
	}

	file, parseErrors := ParseFile(absPath, string(content))
	var allErrors []error
	for _, e := range parseErrors {
		allErrors = append(allErrors, e)
	}
	if len(parseErrors) > 0 {
		l.loadedErrors[absPath] = allErrors
		return nil, allErrors
	}
	l.files[absPath] = file

	if err := l.checkVersion(file); err != nil {
		allErrors = append(allErrors, err)
	}

	for _, e := range Validate(file) {
		if e.Severity == SeverityError {
			allErrors = append(allErrors, e)
		}
	}

	baseDir := filepath.Dir(absPath)
	imports := make(map[string]*ir.ProtocolSchema)
	newChain := append(importChain, absPath)

	for _, imp := range file.Imports {
		importPath := l.resolveImportPath(imp.Path, baseDir)
		if importPath == "" {
			allErrors = append(allErrors, fmt.Errorf("%s:%d: import not found: %s", absPath, imp.Position.Line, imp.Path))
			continue
		}

		importedSchema, importErrors := l.loadFileInternal(importPath, newChain)
		allErrors = append(allErrors, importErrors...)
		if importedSchema != nil {
			key := imp.Alias
			if key == "" {
				key = importedSchema.Name
			}
			imports[key] = importedSchema
		}
	}

	if len(allErrors) > 0 {
		l.loadedErrors[absPath] = allErrors
		return nil, allErrors
	}

	schema, lowerErrs := Lower(file, imports)
	for _, e := range lowerErrs {
		allErrors = append(allErrors, e)
	}

	l.loaded[absPath] = schema
	l.loadedErrors[absPath] = allErrors
	return schema, allErrors
}

// checkVersion validates an optional `option wireforge_version = "vX.Y.Z";`
// schema-level option against the compiler's own Version: a schema asking
// for a newer compiler than this one is rejected rather than silently
// compiled against semantics it may not have.
func (l *Loader) checkVersion(file *File) error {
	for _, opt := range file.Options {
		if opt.Name != "wireforge_version" {
			continue
		}
		sv, ok := opt.Value.(*StringValue)
		if !ok {
			return fmt.Errorf("%s:%d: wireforge_version option must be a string", opt.Position.Filename, opt.Position.Line)
		}
		declared := sv.Value
		if !semver.IsValid(declared) {
			return fmt.Errorf("%s:%d: wireforge_version %q is not a valid semantic version", opt.Position.Filename, opt.Position.Line, declared)
		}
		if semver.Compare(declared, Version) > 0 {
			return fmt.Errorf("%s:%d: schema requires wireforge %s, this compiler is %s", opt.Position.Filename, opt.Position.Line, declared, Version)
		}
	}
	return nil
}

// resolveImportPath resolves an import path to an absolute file path.
func (l *Loader) resolveImportPath(importPath, baseDir string) string {
	candidate := filepath.Join(baseDir, importPath)
	if _, err := os.Stat(candidate); err == nil {
		absPath, _ := filepath.Abs(candidate)
		return absPath
	}

	for _, searchPath := range l.SearchPaths {
		candidate := filepath.Join(searchPath, importPath)
		if _, err := os.Stat(candidate); err == nil {
			absPath, _ := filepath.Abs(candidate)
			return absPath
		}
	}

	return ""
}

// GetSchema returns a loaded, lowered schema by its path.
func (l *Loader) GetSchema(path string) *ir.ProtocolSchema {
	absPath, _ := filepath.Abs(path)
	return l.loaded[absPath]
}

// GetFile returns the parsed (pre-lowering) *File for a loaded path, useful
// for tools (e.g. the compat diff) that want the surface syntax rather than
// the lowered object graph.
func (l *Loader) GetFile(path string) *File {
	absPath, _ := filepath.Abs(path)
	return l.files[absPath]
}

// AllSchemas returns all loaded schemas, keyed by absolute path.
func (l *Loader) AllSchemas() map[string]*ir.ProtocolSchema {
	result := make(map[string]*ir.ProtocolSchema, len(l.loaded))
	for k, v := range l.loaded {
		result[k] = v
	}
	return result
}

// Writer writes a parsed *File back to .wfs source, e.g. for a formatter.
type Writer struct {
	indent string
}

// NewWriter creates a new schema writer.
func NewWriter() *Writer {
	return &Writer{indent: "  "}
}

// SetIndent sets the indentation string (default is two spaces).
func (w *Writer) SetIndent(indent string) {
	w.indent = indent
}

// WriteFile writes a *File to out in canonical .wfs form.
func (w *Writer) WriteFile(out io.Writer, file *File) error {
	fmt.Fprintf(out, "protocol %s;\n\n", file.Protocol)

	for _, imp := range file.Imports {
		if imp.Alias != "" {
			fmt.Fprintf(out, "import %q as %s;\n", imp.Path, imp.Alias)
		} else {
			fmt.Fprintf(out, "import %q;\n", imp.Path)
		}
	}
	if len(file.Imports) > 0 {
		fmt.Fprintln(out)
	}

	for _, opt := range file.Options {
		fmt.Fprintf(out, "option %s = %s;\n", opt.Name, w.formatValue(opt.Value))
	}
	if len(file.Options) > 0 {
		fmt.Fprintln(out)
	}

	for _, s := range file.Structs {
		w.writeStruct(out, s)
		fmt.Fprintln(out)
	}
	for _, e := range file.Enums {
		w.writeEnum(out, e)
		fmt.Fprintln(out)
	}
	for _, v := range file.Variants {
		w.writeVariant(out, v)
		fmt.Fprintln(out)
	}
	for _, h := range file.HashVariants {
		w.writeHashVariant(out, h)
		fmt.Fprintln(out)
	}
	for _, c := range file.Constants {
		w.writeConst(out, c)
	}
	if len(file.Constants) > 0 {
		fmt.Fprintln(out)
	}
	for _, c := range file.Conversions {
		w.writeConversion(out, c)
		fmt.Fprintln(out)
	}
	if file.FromPrior != nil {
		fmt.Fprintf(out, "from_prior %q;\n", file.FromPrior.PriorProtocol)
	}

	return nil
}

func (w *Writer) writeDocComments(out io.Writer, comments []*Comment, prefix string) {
	for _, c := range comments {
		if c.IsDoc {
			fmt.Fprintf(out, "%s/// %s\n", prefix, c.Text)
		}
	}
}

func (w *Writer) writeStruct(out io.Writer, s *StructDecl) {
	w.writeDocComments(out, s.Comments, "")
	fmt.Fprintf(out, "struct %s {\n", s.Name)
	for _, f := range s.Fields {
		w.writeDocComments(out, f.Comments, w.indent)
		fmt.Fprintf(out, "%s%s: %s;\n", w.indent, f.Name, f.Type.String())
	}
	fmt.Fprintln(out, "}")
}

func (w *Writer) writeEnum(out io.Writer, e *EnumDecl) {
	w.writeDocComments(out, e.Comments, "")
	fmt.Fprintf(out, "enum %s: %s {\n", e.Name, e.Underlying.String())
	for _, v := range e.Values {
		w.writeDocComments(out, v.Comments, w.indent)
		fmt.Fprintf(out, "%s%s = %d;\n", w.indent, v.Name, v.Value)
	}
	fmt.Fprintln(out, "}")
}

func (w *Writer) writeVariant(out io.Writer, v *VariantDecl) {
	w.writeDocComments(out, v.Comments, "")
	fmt.Fprintf(out, "variant %s: %s {\n", v.Name, v.TagType.String())
	for _, m := range v.Members {
		w.writeDocComments(out, m.Comments, w.indent)
		fmt.Fprintf(out, "%s%d -> %s;\n", w.indent, m.Tag, m.Struct.String())
	}
	fmt.Fprintln(out, "}")
}

func (w *Writer) writeHashVariant(out io.Writer, h *HashVariantDecl) {
	w.writeDocComments(out, h.Comments, "")
	fmt.Fprintf(out, "hashvariant %s: %s {\n", h.Name, h.TagType.String())
	names := make([]string, len(h.Members))
	for i, m := range h.Members {
		names[i] = m.String()
	}
	fmt.Fprintf(out, "%smembers: %s;\n", w.indent, strings.Join(names, ", "))
	fmt.Fprintln(out, "}")
}

func (w *Writer) writeConst(out io.Writer, c *ConstDecl) {
	w.writeDocComments(out, c.Comments, "")
	typeStr := "string"
	if !c.IsString {
		typeStr = c.Type.String()
	}
	fmt.Fprintf(out, "const %s: %s = %s;\n", c.Name, typeStr, w.formatValue(c.Value))
}

func (w *Writer) writeConversion(out io.Writer, c *ConversionDecl) {
	w.writeDocComments(out, c.Comments, "")
	if c.NoConversion {
		fmt.Fprintf(out, "conversion %s -> %s none;\n", c.Src.String(), c.Target.String())
		return
	}
	fmt.Fprintf(out, "conversion %s -> %s {\n", c.Src.String(), c.Target.String())
	for _, fc := range c.FieldConversions {
		switch {
		case fc.EnumDefault != nil:
			fmt.Fprintf(out, "%sfield %s = default %s;\n", w.indent, fc.TargetName, fc.EnumDefault.String())
		case fc.IsDefault:
			fmt.Fprintf(out, "%sfield %s = default %s;\n", w.indent, fc.TargetName, w.formatValue(fc.DefaultVal))
		default:
			fmt.Fprintf(out, "%sfield %s = %s;\n", w.indent, fc.TargetName, fc.SrcField)
		}
	}
	for _, em := range c.EnumMapping {
		if em.HasTarget {
			fmt.Fprintf(out, "%svalue %s -> %s;\n", w.indent, em.Src, em.Target)
		} else {
			fmt.Fprintf(out, "%svalue %s -> ;\n", w.indent, em.Src)
		}
	}
	for _, vm := range c.VariantMapping {
		if vm.HasTarget {
			fmt.Fprintf(out, "%smember %s -> %s;\n", w.indent, vm.Src.String(), vm.Target.String())
		} else {
			fmt.Fprintf(out, "%smember %s -> ;\n", w.indent, vm.Src.String())
		}
	}
	fmt.Fprintln(out, "}")
}

func (w *Writer) formatValue(v Value) string {
	switch val := v.(type) {
	case *StringValue:
		return fmt.Sprintf("%q", val.Value)
	case *IntValue:
		return fmt.Sprintf("%d", val.Value)
	case *BoolValue:
		if val.Value {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", v)
	}
}

// WriteToFile writes a *File to disk in canonical .wfs form.
func WriteToFile(path string, file *File) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	writer := NewWriter()
	return writer.WriteFile(f, file)
}

// FormatFile returns a formatted string representation of a *File.
func FormatFile(file *File) string {
	var sb strings.Builder
	writer := NewWriter()
	_ = writer.WriteFile(&sb, file)
	return sb.String()
}

// LoadAndValidate is a convenience function that loads a schema file and
// returns its lowered object graph plus all errors (parse + validation +
// lowering).
func LoadAndValidate(path string, searchPaths ...string) (*ir.ProtocolSchema, []error) {
	loader := NewLoader(searchPaths...)
	return loader.LoadFile(path)
}
