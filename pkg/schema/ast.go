// Package schema provides a lexer, parser, and lowering pass for wireforge
// schema files (.wfs), the schema producer referenced by spec.md §6.1: it
// reads a protocol's surface syntax and emits the object graph
// (*ir.ProtocolSchema) that pkg/compiler/ingest consumes.
package schema

import "strconv"

// Position represents a position in source code.
type Position struct {
	Filename string
	Line     int
	Column   int
	Offset   int
}

// Node is the interface implemented by all AST nodes.
type Node interface {
	Pos() Position
	End() Position
}

// File represents one parsed .wfs file.
type File struct {
	Position     Position
	Protocol     string
	Imports      []*Import
	Options      []*Option
	Structs      []*StructDecl
	Enums        []*EnumDecl
	Variants     []*VariantDecl
	HashVariants []*HashVariantDecl
	Constants    []*ConstDecl
	Conversions  []*ConversionDecl
	FromPrior    *FromPriorDecl
	Comments     []*Comment
}

func (f *File) Pos() Position { return f.Position }
func (f *File) End() Position { return f.Position }

// Import imports a protocol from another .wfs file.
type Import struct {
	Position Position
	EndPos   Position
	Path     string
	Alias    string // defaults to the imported protocol's own name
}

func (i *Import) Pos() Position { return i.Position }
func (i *Import) End() Position { return i.EndPos }

// Option is a schema-level `option name = value;` declaration.
type Option struct {
	Position Position
	EndPos   Position
	Name     string
	Value    Value
}

func (o *Option) Pos() Position { return o.Position }
func (o *Option) End() Position { return o.EndPos }

// Value is an option or constant literal value.
type Value interface {
	Node
	valueNode()
}

// StringValue is a string literal value.
type StringValue struct {
	Position Position
	EndPos   Position
	Value    string
}

func (v *StringValue) Pos() Position { return v.Position }
func (v *StringValue) End() Position { return v.EndPos }
func (v *StringValue) valueNode()    {}

// IntValue is an integer literal value.
type IntValue struct {
	Position Position
	EndPos   Position
	Value    int64
}

func (v *IntValue) Pos() Position { return v.Position }
func (v *IntValue) End() Position { return v.EndPos }
func (v *IntValue) valueNode()    {}

// BoolValue is a boolean literal value.
type BoolValue struct {
	Position Position
	EndPos   Position
	Value    bool
}

func (v *BoolValue) Pos() Position { return v.Position }
func (v *BoolValue) End() Position { return v.EndPos }
func (v *BoolValue) valueNode()    {}

// TypeExpr is a field/conversion type expression.
type TypeExpr interface {
	Node
	typeExprNode()
	String() string
}

// IntTypeExpr names a fixed-width integer, e.g. "u8", "i32le", "u64be".
type IntTypeExpr struct {
	Position   Position
	EndPos     Position
	Width      int // in bytes: 1, 2, 4, 8
	Signed     bool
	Endianness string // "le" or "be"; zero value "" defaults to "le"
	Raw        string
}

func (t *IntTypeExpr) Pos() Position  { return t.Position }
func (t *IntTypeExpr) End() Position  { return t.EndPos }
func (t *IntTypeExpr) typeExprNode()  {}
func (t *IntTypeExpr) String() string { return t.Raw }

// FloatTypeExpr names a fixed-width float, e.g. "f32le", "f64be".
type FloatTypeExpr struct {
	Position   Position
	EndPos     Position
	Width      int // 4 or 8
	Endianness string
	Raw        string
}

func (t *FloatTypeExpr) Pos() Position  { return t.Position }
func (t *FloatTypeExpr) End() Position  { return t.EndPos }
func (t *FloatTypeExpr) typeExprNode()  {}
func (t *FloatTypeExpr) String() string { return t.Raw }

// RefTypeExpr is a (possibly dotted) reference to another root type.
type RefTypeExpr struct {
	Position Position
	EndPos   Position
	Segments []string
}

func (t *RefTypeExpr) Pos() Position { return t.Position }
func (t *RefTypeExpr) End() Position { return t.EndPos }
func (t *RefTypeExpr) typeExprNode() {}
func (t *RefTypeExpr) String() string {
	s := t.Segments[0]
	for _, seg := range t.Segments[1:] {
		s += "." + seg
	}
	return s
}

// VectorTypeExpr is `vector<Inner, len: fieldName>` — a variable-length
// sequence whose length lives in an already-declared sibling field.
type VectorTypeExpr struct {
	Position  Position
	EndPos    Position
	Inner     TypeExpr
	LenField  string
}

func (t *VectorTypeExpr) Pos() Position  { return t.Position }
func (t *VectorTypeExpr) End() Position  { return t.EndPos }
func (t *VectorTypeExpr) typeExprNode()  {}
func (t *VectorTypeExpr) String() string { return "vector<" + t.Inner.String() + ", len: " + t.LenField + ">" }

// ListTypeExpr is `list<Inner, len: N>` (fixed count) or
// `list<Inner, len: fieldName>` (sibling field). Any identifier after `len:`
// is taken as a field name; a length whose field the type compiler injects
// is written as a seq instead (see UnboundSeqTypeExpr).
type ListTypeExpr struct {
	Position Position
	EndPos   Position
	Inner    TypeExpr
	LenField string
	LenFixed int
	HasFixed bool
}

func (t *ListTypeExpr) Pos() Position  { return t.Position }
func (t *ListTypeExpr) End() Position  { return t.EndPos }
func (t *ListTypeExpr) typeExprNode()  {}
func (t *ListTypeExpr) String() string {
	if t.HasFixed {
		return "list<" + t.Inner.String() + ", len: " + strconv.Itoa(t.LenFixed) + ">"
	}
	return "list<" + t.Inner.String() + ", len: " + t.LenField + ">"
}

// UnboundSeqTypeExpr is `seq<Inner, len: u16le>` — a sequence whose length
// field the type compiler must inject, of the given unbound int type.
type UnboundSeqTypeExpr struct {
	Position Position
	EndPos   Position
	Inner    TypeExpr
	LenType  *IntTypeExpr
}

func (t *UnboundSeqTypeExpr) Pos() Position  { return t.Position }
func (t *UnboundSeqTypeExpr) End() Position  { return t.EndPos }
func (t *UnboundSeqTypeExpr) typeExprNode()  {}
func (t *UnboundSeqTypeExpr) String() string { return "seq<" + t.Inner.String() + ", len: " + t.LenType.String() + ">" }

// ArrayTypeExpr is `array<Inner, N>` — a fixed-length sequence.
type ArrayTypeExpr struct {
	Position Position
	EndPos   Position
	Inner    TypeExpr
	Length   int
}

func (t *ArrayTypeExpr) Pos() Position  { return t.Position }
func (t *ArrayTypeExpr) End() Position  { return t.EndPos }
func (t *ArrayTypeExpr) typeExprNode()  {}
func (t *ArrayTypeExpr) String() string { return "array<" + t.Inner.String() + ", " + strconv.Itoa(t.Length) + ">" }

// DetachedTypeExpr is `detached<Variant, tag: fieldName>` — a variant body
// whose tag lives in a sibling field rather than inline.
type DetachedTypeExpr struct {
	Position Position
	EndPos   Position
	Variant  TypeExpr
	TagField string
}

func (t *DetachedTypeExpr) Pos() Position  { return t.Position }
func (t *DetachedTypeExpr) End() Position  { return t.EndPos }
func (t *DetachedTypeExpr) typeExprNode()  {}
func (t *DetachedTypeExpr) String() string { return "detached<" + t.Variant.String() + ", tag: " + t.TagField + ">" }

// VirtualTypeExpr is `virtual<Inner>` — a type contributing zero wire bytes.
type VirtualTypeExpr struct {
	Position Position
	EndPos   Position
	Inner    TypeExpr
}

func (t *VirtualTypeExpr) Pos() Position  { return t.Position }
func (t *VirtualTypeExpr) End() Position  { return t.EndPos }
func (t *VirtualTypeExpr) typeExprNode()  {}
func (t *VirtualTypeExpr) String() string { return "virtual<" + t.Inner.String() + ">" }

// StructDecl is a `struct Name { ... }` declaration.
type StructDecl struct {
	Position Position
	EndPos   Position
	Name     string
	Fields   []*FieldDecl
	Comments []*Comment
}

func (d *StructDecl) Pos() Position { return d.Position }
func (d *StructDecl) End() Position { return d.EndPos }

// FieldDecl is one `name: Type;` field within a struct.
type FieldDecl struct {
	Position Position
	EndPos   Position
	Name     string
	Type     TypeExpr
	Comments []*Comment
}

func (f *FieldDecl) Pos() Position { return f.Position }
func (f *FieldDecl) End() Position { return f.EndPos }

// EnumDecl is an `enum Name: IntType { ... }` declaration.
type EnumDecl struct {
	Position   Position
	EndPos     Position
	Name       string
	Underlying *IntTypeExpr
	Values     []*EnumValueDecl
	Comments   []*Comment
}

func (d *EnumDecl) Pos() Position { return d.Position }
func (d *EnumDecl) End() Position { return d.EndPos }

// EnumValueDecl is one `Name = N;` enum member.
type EnumValueDecl struct {
	Position Position
	EndPos   Position
	Name     string
	Value    int64
	Comments []*Comment
}

func (v *EnumValueDecl) Pos() Position { return v.Position }
func (v *EnumValueDecl) End() Position { return v.EndPos }

// VariantDecl is a `variant Name: IntType { ... }` fixed-tag variant.
type VariantDecl struct {
	Position Position
	EndPos   Position
	Name     string
	TagType  *IntTypeExpr
	Members  []*VariantMemberDecl
	Comments []*Comment
}

func (d *VariantDecl) Pos() Position { return d.Position }
func (d *VariantDecl) End() Position { return d.EndPos }

// VariantMemberDecl is one `N -> StructName;` variant member.
type VariantMemberDecl struct {
	Position Position
	EndPos   Position
	Tag      int64
	Struct   *RefTypeExpr
	Comments []*Comment
}

func (m *VariantMemberDecl) Pos() Position { return m.Position }
func (m *VariantMemberDecl) End() Position { return m.EndPos }

// HashVariantDecl is a `hashvariant Name: IntType { members: A, B, C; }`
// declaration.
type HashVariantDecl struct {
	Position Position
	EndPos   Position
	Name     string
	TagType  *IntTypeExpr
	Members  []*RefTypeExpr
	Comments []*Comment
}

func (d *HashVariantDecl) Pos() Position { return d.Position }
func (d *HashVariantDecl) End() Position { return d.EndPos }

// ConstDecl is a `const Name: Type = value;` declaration.
type ConstDecl struct {
	Position Position
	EndPos   Position
	Name     string
	Type     TypeExpr // IntTypeExpr, or nil for a string constant
	IsString bool
	Value    Value
	Comments []*Comment
}

func (c *ConstDecl) Pos() Position { return c.Position }
func (c *ConstDecl) End() Position { return c.EndPos }

// ConversionDecl is a `conversion Src -> Target { ... }` declaration.
type ConversionDecl struct {
	Position Position
	EndPos   Position
	Src      *RefTypeExpr
	Target   *RefTypeExpr

	// Struct conversions.
	FieldConversions []*FieldConversionDecl

	// Enum conversions.
	EnumMapping []*EnumMappingDecl

	// Variant conversions.
	VariantMapping []*VariantMappingDecl

	// NoConversion marks an explicit override suppressing an implicit
	// ConversionsFromPrior mapping for this (Src, Target) pair.
	NoConversion bool

	Comments []*Comment
}

func (c *ConversionDecl) Pos() Position { return c.Position }
func (c *ConversionDecl) End() Position { return c.EndPos }

// FieldConversionDecl populates one target struct field.
//
//	field name = src_field;             // rename/passthrough
//	field name = default 7;             // FieldIntDefault
//	field name = default Color.RED;     // FieldEnumDefault
type FieldConversionDecl struct {
	Position   Position
	EndPos     Position
	TargetName string

	IsDefault   bool
	DefaultVal  Value  // IntValue for FieldIntDefault
	EnumDefault *RefTypeExpr // set instead of DefaultVal for FieldEnumDefault

	SrcField string // set when !IsDefault
}

func (f *FieldConversionDecl) Pos() Position { return f.Position }
func (f *FieldConversionDecl) End() Position { return f.EndPos }

// EnumMappingDecl maps one source enum variant to an optional target.
//
//	RED -> CRIMSON;
//	OBSOLETE -> ;    // mapping-out
type EnumMappingDecl struct {
	Position  Position
	EndPos    Position
	Src       string
	Target    string
	HasTarget bool
}

func (m *EnumMappingDecl) Pos() Position { return m.Position }
func (m *EnumMappingDecl) End() Position { return m.EndPos }

// VariantMappingDecl maps one source member struct to an optional target.
type VariantMappingDecl struct {
	Position  Position
	EndPos    Position
	Src       *RefTypeExpr
	Target    *RefTypeExpr
	HasTarget bool
}

func (m *VariantMappingDecl) Pos() Position { return m.Position }
func (m *VariantMappingDecl) End() Position { return m.EndPos }

// FromPriorDecl is a protocol-level `from_prior "protoName";` declaration.
type FromPriorDecl struct {
	Position      Position
	EndPos        Position
	PriorProtocol string
}

func (d *FromPriorDecl) Pos() Position { return d.Position }
func (d *FromPriorDecl) End() Position { return d.EndPos }

// Comment represents a comment in the schema.
type Comment struct {
	Position Position
	EndPos   Position
	Text     string
	IsDoc    bool // true for doc comments (///)
}

func (c *Comment) Pos() Position { return c.Position }
func (c *Comment) End() Position { return c.EndPos }
