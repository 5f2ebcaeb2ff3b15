package schema

import (
	"fmt"
	"sort"
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Position Position
	Message  string
	Severity Severity
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s: %s",
		e.Position.Filename, e.Position.Line, e.Position.Column,
		e.Severity, e.Message)
}

// Severity indicates the severity of a validation error.
type Severity int

const (
	// SeverityError is a fatal error that prevents lowering.
	SeverityError Severity = iota
	// SeverityWarning is a non-fatal issue.
	SeverityWarning
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// TypeDefKind indicates the kind of root type definition.
type TypeDefKind int

const (
	TypeDefStruct TypeDefKind = iota
	TypeDefEnum
	TypeDefVariant
	TypeDefHashVariant
)

func (k TypeDefKind) String() string {
	switch k {
	case TypeDefStruct:
		return "struct"
	case TypeDefEnum:
		return "enum"
	case TypeDefVariant:
		return "variant"
	case TypeDefHashVariant:
		return "hashvariant"
	default:
		return "unknown"
	}
}

// TypeDef records where and as what a root name was declared, for
// duplicate-name and dangling-reference checks.
type TypeDef struct {
	Name     string
	Kind     TypeDefKind
	Position Position
}

// Validator checks a parsed *File's structural well-formedness — duplicate
// names, dangling local references, and field-level shape constraints —
// ahead of Lower. It does not resolve cross-protocol imports or detect
// ODR/cycle violations; those are pkg/compiler/ingest's job once the
// object graph is assembled.
type Validator struct {
	file    *File
	errors  []ValidationError
	types   map[string]TypeDef
	aliases map[string]bool // known import aliases, for qualified-reference checks
}

// NewValidator creates a new validator for the given file.
func NewValidator(file *File) *Validator {
	return &Validator{
		file:    file,
		types:   make(map[string]TypeDef),
		aliases: make(map[string]bool),
	}
}

// Validate performs validation and returns any errors, sorted by position.
func (v *Validator) Validate() []ValidationError {
	v.errors = nil

	for _, imp := range v.file.Imports {
		alias := imp.Alias
		if alias == "" {
			alias = imp.Path
		}
		v.aliases[alias] = true
	}

	v.collectTypes()

	for _, s := range v.file.Structs {
		v.validateStruct(s)
	}
	for _, e := range v.file.Enums {
		v.validateEnum(e)
	}
	for _, vr := range v.file.Variants {
		v.validateVariant(vr)
	}
	for _, h := range v.file.HashVariants {
		v.validateHashVariant(h)
	}
	for _, c := range v.file.Constants {
		v.validateConst(c)
	}
	for _, c := range v.file.Conversions {
		v.validateConversion(c)
	}

	sort.Slice(v.errors, func(i, j int) bool {
		if v.errors[i].Position.Line != v.errors[j].Position.Line {
			return v.errors[i].Position.Line < v.errors[j].Position.Line
		}
		return v.errors[i].Position.Column < v.errors[j].Position.Column
	})

	return v.errors
}

func (v *Validator) collectTypes() {
	record := func(name string, kind TypeDefKind, pos Position) {
		if existing, ok := v.types[name]; ok {
			v.addError(pos, "duplicate type name %q (previously defined at %d:%d)",
				name, existing.Position.Line, existing.Position.Column)
			return
		}
		v.types[name] = TypeDef{Name: name, Kind: kind, Position: pos}
	}

	for _, s := range v.file.Structs {
		record(s.Name, TypeDefStruct, s.Position)
	}
	for _, e := range v.file.Enums {
		record(e.Name, TypeDefEnum, e.Position)
	}
	for _, vr := range v.file.Variants {
		record(vr.Name, TypeDefVariant, vr.Position)
	}
	for _, h := range v.file.HashVariants {
		record(h.Name, TypeDefHashVariant, h.Position)
	}
}

func (v *Validator) validateStruct(s *StructDecl) {
	seen := make(map[string]bool, len(s.Fields))
	for _, f := range s.Fields {
		if seen[f.Name] {
			v.addError(f.Position, "duplicate field name %q in struct %q", f.Name, s.Name)
		} else {
			seen[f.Name] = true
		}
		v.validateTypeExpr(f.Type, s, f.Name)
	}
}

func (v *Validator) validateEnum(e *EnumDecl) {
	valueNumbers := make(map[int64]string, len(e.Values))
	valueNames := make(map[string]bool, len(e.Values))

	for _, val := range e.Values {
		if existing, ok := valueNumbers[val.Value]; ok {
			v.addError(val.Position, "duplicate enum value %d (also used by %q)", val.Value, existing)
		} else {
			valueNumbers[val.Value] = val.Name
		}
		if valueNames[val.Name] {
			v.addError(val.Position, "duplicate enum value name %q", val.Name)
		} else {
			valueNames[val.Name] = true
		}
		if !e.Underlying.Signed && val.Value < 0 {
			v.addError(val.Position, "enum %q has an unsigned underlying type but value %q is negative", e.Name, val.Name)
		}
	}
}

func (v *Validator) validateVariant(vr *VariantDecl) {
	tags := make(map[int64]string, len(vr.Members))
	structs := make(map[string]bool, len(vr.Members))
	for _, m := range vr.Members {
		if existing, ok := tags[m.Tag]; ok {
			v.addError(m.Position, "duplicate variant tag %d (also used by %q)", m.Tag, existing)
		} else {
			tags[m.Tag] = m.Struct.String()
		}
		name := m.Struct.String()
		if structs[name] {
			v.addError(m.Position, "struct %q appears more than once in variant %q", name, vr.Name)
		} else {
			structs[name] = true
		}
		v.validateLocalStructRef(m.Struct)
	}
}

func (v *Validator) validateHashVariant(h *HashVariantDecl) {
	members := make(map[string]bool, len(h.Members))
	for _, m := range h.Members {
		name := m.String()
		if members[name] {
			v.addError(m.Position, "struct %q appears more than once in hashvariant %q", name, h.Name)
		} else {
			members[name] = true
		}
		v.validateLocalStructRef(m)
	}
}

func (v *Validator) validateConst(c *ConstDecl) {
	if c.IsString {
		if _, ok := c.Value.(*StringValue); !ok {
			v.addError(c.Position, "constant %q declared as string must have a string literal value", c.Name)
		}
		return
	}
	if _, ok := c.Value.(*IntValue); !ok {
		v.addError(c.Position, "constant %q must have an integer literal value", c.Name)
	}
}

func (v *Validator) validateConversion(c *ConversionDecl) {
	v.validateRef(c.Src)
	v.validateRef(c.Target)

	if c.NoConversion {
		return
	}

	kinds := 0
	if len(c.FieldConversions) > 0 {
		kinds++
	}
	if len(c.EnumMapping) > 0 {
		kinds++
	}
	if len(c.VariantMapping) > 0 {
		kinds++
	}
	if kinds > 1 {
		v.addError(c.Position, "conversion %s -> %s mixes field/value/member entries; a conversion body must use only one kind",
			c.Src.String(), c.Target.String())
	}

	seenFields := make(map[string]bool, len(c.FieldConversions))
	for _, fc := range c.FieldConversions {
		if seenFields[fc.TargetName] {
			v.addError(fc.Position, "duplicate field conversion for %q", fc.TargetName)
		} else {
			seenFields[fc.TargetName] = true
		}
	}
}

// validateTypeExpr recurses into a field's type expression, checking local
// (unqualified) references against the file's own declared types and
// qualified ones against the known import aliases. It does not look at
// len/tag sibling-field names; a detached variant's tag field is checked
// later by the type compiler's semantic pass (pkg/compiler/types), which has
// the fully assembled struct in hand.
func (v *Validator) validateTypeExpr(t TypeExpr, owner *StructDecl, fieldName string) {
	switch tt := t.(type) {
	case *RefTypeExpr:
		if len(tt.Segments) == 1 {
			if _, ok := v.types[tt.Segments[0]]; !ok {
				v.addError(tt.Position, "undefined type %q in field %s.%s", tt.Segments[0], owner.Name, fieldName)
			}
		} else if !v.aliases[tt.Segments[0]] {
			v.addError(tt.Position, "unknown import alias %q in field %s.%s", tt.Segments[0], owner.Name, fieldName)
		}
	case *VectorTypeExpr:
		v.validateTypeExpr(tt.Inner, owner, fieldName)
	case *ListTypeExpr:
		v.validateTypeExpr(tt.Inner, owner, fieldName)
	case *UnboundSeqTypeExpr:
		v.validateTypeExpr(tt.Inner, owner, fieldName)
	case *ArrayTypeExpr:
		if tt.Length < 0 {
			v.addError(tt.Position, "array length must be non-negative in field %s.%s", owner.Name, fieldName)
		}
		v.validateTypeExpr(tt.Inner, owner, fieldName)
	case *DetachedTypeExpr:
		v.validateTypeExpr(tt.Variant, owner, fieldName)
	case *VirtualTypeExpr:
		v.validateTypeExpr(tt.Inner, owner, fieldName)
	}
}

func (v *Validator) validateLocalStructRef(ref *RefTypeExpr) {
	if len(ref.Segments) != 1 {
		if !v.aliases[ref.Segments[0]] {
			v.addError(ref.Position, "unknown import alias %q", ref.Segments[0])
		}
		return
	}
	def, ok := v.types[ref.Segments[0]]
	if !ok {
		v.addError(ref.Position, "undefined type %q", ref.Segments[0])
		return
	}
	if def.Kind != TypeDefStruct {
		v.addError(ref.Position, "expected a struct, got %s %q", def.Kind, ref.Segments[0])
	}
}

func (v *Validator) validateRef(ref *RefTypeExpr) {
	if len(ref.Segments) != 1 {
		if !v.aliases[ref.Segments[0]] {
			v.addError(ref.Position, "unknown import alias %q", ref.Segments[0])
		}
		return
	}
	if _, ok := v.types[ref.Segments[0]]; !ok {
		v.addError(ref.Position, "undefined type %q", ref.Segments[0])
	}
}

func (v *Validator) addError(pos Position, format string, args ...any) {
	v.errors = append(v.errors, ValidationError{Position: pos, Message: fmt.Sprintf(format, args...), Severity: SeverityError})
}

func (v *Validator) addWarning(pos Position, format string, args ...any) {
	v.errors = append(v.errors, ValidationError{Position: pos, Message: fmt.Sprintf(format, args...), Severity: SeverityWarning})
}

// HasErrors returns true if there are any error-severity issues.
func (v *Validator) HasErrors() bool {
	for _, err := range v.errors {
		if err.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Errors returns only the error-severity issues.
func (v *Validator) Errors() []ValidationError {
	var errors []ValidationError
	for _, err := range v.errors {
		if err.Severity == SeverityError {
			errors = append(errors, err)
		}
	}
	return errors
}

// Warnings returns only the warning-severity issues.
func (v *Validator) Warnings() []ValidationError {
	var warnings []ValidationError
	for _, err := range v.errors {
		if err.Severity == SeverityWarning {
			warnings = append(warnings, err)
		}
	}
	return warnings
}

// Validate is a convenience function that validates a parsed file.
func Validate(file *File) []ValidationError {
	return NewValidator(file).Validate()
}
