package ir

import "github.com/blockberries/wireforge/pkg/ir/intmodel"

// SourceLoc is the optional source-location handle a schema producer may
// attach to any node, so errors can point back at user-authored text.
type SourceLoc struct {
	File   string
	Line   int
	Column int
}

// --- Schema type expressions (the object graph a producer hands ingestion) ---

// SchemaType is the sum of every type expression the schema producer may
// emit, per the schema producer contract.
type SchemaType interface {
	isSchemaType()
}

// IntType is a schema-level integer type reference.
type IntType struct {
	Width      int
	Sign       intmodel.Sign
	Endianness intmodel.Endianness
}

func (IntType) isSchemaType() {}

// FloatType is a schema-level float type reference.
type FloatType struct {
	Width      int
	Endianness intmodel.Endianness
}

func (FloatType) isSchemaType() {}

// RefType is a symbolic reference to a root type by qualified name,
// resolved by the type compiler's lower pass.
type RefType struct {
	Name QName
}

func (RefType) isSchemaType() {}

// SeqLengthKind distinguishes the three ways a schema Seq may declare its
// length.
type SeqLengthKind int

const (
	// SeqLengthFixedInt: a literal integer count (becomes Array/FixedLength).
	SeqLengthFixedInt SeqLengthKind = iota
	// SeqLengthFieldPath: a reference to a sibling struct field (becomes
	// Vector/VariableLength).
	SeqLengthFieldPath
	// SeqLengthIntType: an unbound int type; the type compiler injects a
	// length field of this type (becomes UnboundSeq, then seq-expanded).
	SeqLengthIntType
)

// SeqLength is the schema-level length declaration of a Seq.
type SeqLength struct {
	Kind       SeqLengthKind
	FixedValue int
	FieldPath  string
	IntType    IntType
}

// SeqType is a schema-level sequence: Seq(inner, length).
type SeqType struct {
	Inner  SchemaType
	Length SeqLength
}

func (SeqType) isSchemaType() {}

// DetachedVariantType is a variant body whose tag lives in a sibling field.
type DetachedVariantType struct {
	Variant  SchemaType // a RefType naming a VariantDef/HashVariantDef
	TagField string
}

func (DetachedVariantType) isSchemaType() {}

// VirtualType wraps a type that contributes zero wire bytes to its parent
// struct but is still parseable out-of-band and still contributes to the
// digest.
type VirtualType struct {
	Inner SchemaType
}

func (VirtualType) isSchemaType() {}

// --- Root type definitions ---

// RootTypeDef is the sum of the schema's root (named) type kinds.
type RootTypeDef interface {
	TypeName() QName
	Protocol() string
	Pos() SourceLoc
	isRootTypeDef()
}

// SchemaField is one field of a StructDef.
type SchemaField struct {
	Name string
	Type SchemaType
	Loc  SourceLoc
}

// StructDef is a schema-level struct definition.
type StructDef struct {
	Name         QName
	ProtocolName string
	Fields       []SchemaField
	Loc          SourceLoc
}

func (d *StructDef) TypeName() QName    { return d.Name }
func (d *StructDef) Protocol() string   { return d.ProtocolName }
func (d *StructDef) Pos() SourceLoc     { return d.Loc }
func (d *StructDef) isRootTypeDef()     {}

// EnumVariantDef is one named value of an EnumDef.
type EnumVariantDef struct {
	Name  string
	Value int64
	Loc   SourceLoc
}

// EnumDef is a schema-level enum definition.
type EnumDef struct {
	Name         QName
	ProtocolName string
	Underlying   IntType
	Variants     []EnumVariantDef
	Loc          SourceLoc
}

func (d *EnumDef) TypeName() QName  { return d.Name }
func (d *EnumDef) Protocol() string { return d.ProtocolName }
func (d *EnumDef) Pos() SourceLoc   { return d.Loc }
func (d *EnumDef) isRootTypeDef()   {}

// VariantTagDef binds a member struct to an explicit fixed tag value.
type VariantTagDef struct {
	Struct QName
	Value  int64
	Loc    SourceLoc
}

// VariantDef is a schema-level fixed-tag variant definition.
type VariantDef struct {
	Name         QName
	ProtocolName string
	TagType      IntType
	Tags         []VariantTagDef
	Loc          SourceLoc
}

func (d *VariantDef) TypeName() QName  { return d.Name }
func (d *VariantDef) Protocol() string { return d.ProtocolName }
func (d *VariantDef) Pos() SourceLoc   { return d.Loc }
func (d *VariantDef) isRootTypeDef()   {}

// HashVariantDef is a schema-level variant whose tags are derived from a
// truncation of each member's structural digest, assigned by the
// hash-expand pass.
type HashVariantDef struct {
	Name         QName
	ProtocolName string
	TagType      IntType
	Members      []QName
	Loc          SourceLoc
}

func (d *HashVariantDef) TypeName() QName  { return d.Name }
func (d *HashVariantDef) Protocol() string { return d.ProtocolName }
func (d *HashVariantDef) Pos() SourceLoc   { return d.Loc }
func (d *HashVariantDef) isRootTypeDef()   {}

// --- Root constant definitions ---

// RootConstantDef is the sum of the schema's root constant kinds.
type RootConstantDef interface {
	ConstName() QName
	Protocol() string
	Pos() SourceLoc
	isRootConstantDef()
}

// RootIntConstant is a schema-level integer constant.
type RootIntConstant struct {
	Name         QName
	ProtocolName string
	Type         IntType
	Value        int64
	Loc          SourceLoc
}

func (c *RootIntConstant) ConstName() QName { return c.Name }
func (c *RootIntConstant) Protocol() string { return c.ProtocolName }
func (c *RootIntConstant) Pos() SourceLoc   { return c.Loc }
func (c *RootIntConstant) isRootConstantDef() {}

// RootStringConstant is a schema-level string constant.
type RootStringConstant struct {
	Name         QName
	ProtocolName string
	Value        string
	Loc          SourceLoc
}

func (c *RootStringConstant) ConstName() QName  { return c.Name }
func (c *RootStringConstant) Protocol() string  { return c.ProtocolName }
func (c *RootStringConstant) Pos() SourceLoc    { return c.Loc }
func (c *RootStringConstant) isRootConstantDef() {}

// --- Schema-level conversions ---

// ConversionKind distinguishes the three conversion shapes plus the two
// sentinel/meta kinds (NoConversion override, ConversionsFromPrior marker).
type ConversionKind int

const (
	ConversionEnum ConversionKind = iota
	ConversionStruct
	ConversionVariant
	ConversionNone // explicit override: suppress an implicit ConversionsFromPrior mapping
)

// EnumValueMappingDef maps one source enum variant name to an optional
// target variant name; HasTarget=false marks a "mapping-out" (dropped value).
type EnumValueMappingDef struct {
	Src       string
	Target    string
	HasTarget bool
	Loc       SourceLoc
}

// FieldConversionKind distinguishes the three ways a struct conversion may
// populate a target field.
type FieldConversionKind int

const (
	FieldIntDefault FieldConversionKind = iota
	FieldEnumDefault
	FieldTransform
)

// FieldConversionDef describes how one target struct field is populated.
type FieldConversionDef struct {
	Kind FieldConversionKind

	// FieldIntDefault
	IntType  IntType
	IntValue int64

	// FieldEnumDefault
	EnumType  QName
	EnumValue string

	// FieldTransform
	SrcField string
}

// VariantValueMappingDef maps one source member struct to an optional
// target member struct.
type VariantValueMappingDef struct {
	SrcStruct    QName
	TargetStruct QName
	HasTarget    bool
	Loc          SourceLoc
}

// ConversionDef is a single schema-declared conversion between two root
// types, keyed implicitly by (Src, Target).
type ConversionDef struct {
	Kind   ConversionKind
	Src    QName
	Target QName
	Loc    SourceLoc

	EnumMapping    []EnumValueMappingDef          // Kind == ConversionEnum
	StructMapping  map[string]FieldConversionDef  // Kind == ConversionStruct, keyed by target field name
	VariantMapping []VariantValueMappingDef       // Kind == ConversionVariant
}

// ConversionsFromPrior is a protocol-level declaration requesting implicit
// conversions, in both directions, for every type name shared with a prior
// protocol, unless an explicit override (including ConversionNone) exists
// for that pair.
type ConversionsFromPrior struct {
	PriorProtocol string
	Loc           SourceLoc
}

// --- Protocol (ingestion input) ---

// ProtocolSchema is the raw object graph ingestion consumes for one
// protocol: its own declarations plus a map of transitively referenced
// protocols (already-parsed, by the producer) used to resolve external
// references.
type ProtocolSchema struct {
	Name        string
	Types       []RootTypeDef
	Constants   []RootConstantDef
	Conversions []ConversionDef
	FromPrior   *ConversionsFromPrior
	References  map[string]*ProtocolSchema
	Loc         SourceLoc
}
