package ir

import (
	"github.com/blockberries/wireforge/pkg/ir/intmodel"
	"github.com/blockberries/wireforge/pkg/ir/ranges"
)

// Type is the closed algebraic variant for resolved (post-lowering) types:
// it covers both the MIR shapes a lowered schema first takes and the PIR
// shapes later passes reduce them to. Unlike SchemaType, every reference
// inside a Type is guaranteed (once ingestion succeeds) to resolve within
// the owning protocol's type map — see RefT. Passes over Type are total
// pattern matches (Go type switches) rather than dynamic dispatch.
type Type interface {
	isType()
}

// IntT is a resolved primitive integer type.
type IntT struct {
	Width      int
	Sign       intmodel.Sign
	Endianness intmodel.Endianness
}

func (IntT) isType() {}

// FloatT is a resolved primitive float type.
type FloatT struct {
	Width      int
	Endianness intmodel.Endianness
}

func (FloatT) isType() {}

// RefT is a reference to a root type, resolved by qualified name against
// the owning protocol's (and, for external names, an imported protocol's)
// type map.
type RefT struct {
	Name QName
}

func (RefT) isType() {}

// UnboundSeqT is the MIR-only form produced by lowering a schema
// Seq(inner, IntType) before the seq-expand pass injects the length field
// and resolves it to a concrete FieldReference.
type UnboundSeqT struct {
	Inner      Type
	LengthType IntType
}

func (UnboundSeqT) isType() {}

// SeqLengthSpecKind distinguishes a sequence's length declaration.
type SeqLengthSpecKind int

const (
	SeqFixedLength    SeqLengthSpecKind = iota // a literal element count
	SeqVariableLength                          // a sibling field holds the count
)

// SeqLengthSpec is a MIR sequence's length, prior to seq-reduce deciding
// whether the sequence becomes an Array, Vector, or List.
type SeqLengthSpec struct {
	Kind       SeqLengthSpecKind
	FixedValue int
	FieldName  string // meaningful when Kind == SeqVariableLength
}

// SeqT is the MIR form of a sequence after variant/seq-expand but before
// seq-reduce decides its concrete container kind.
type SeqT struct {
	Inner  Type
	Length SeqLengthSpec
}

func (SeqT) isType() {}

// ArrayT is a PIR fixed-count sequence of constant-size elements.
type ArrayT struct {
	Inner  Type
	Length int
}

func (ArrayT) isType() {}

// VectorT is a PIR sequence whose count comes from a named sibling field,
// over constant-size elements (so each element's offset is computable, but
// the vector's own total size is dynamic).
type VectorT struct {
	Inner      Type
	LengthField string
}

func (VectorT) isType() {}

// ListLengthKind distinguishes a PIR List's length declaration.
type ListLengthKind int

const (
	ListFixedLength ListLengthKind = iota
	ListVariableLength
)

// ListLength is a PIR List's length, mirroring SeqLengthSpec but reserved
// for sequences over dynamically-sized elements.
type ListLength struct {
	Kind       ListLengthKind
	FixedValue int
	FieldName  string
}

// ListT is a PIR sequence over dynamically-sized elements.
type ListT struct {
	Inner  Type
	Length ListLength
}

func (ListT) isType() {}

// DetachedVariantT is a variant body whose discriminant tag lives in a
// sibling field referenced by name.
type DetachedVariantT struct {
	Variant  Type // a RefT naming a Variant root type
	TagField string
}

func (DetachedVariantT) isType() {}

// VirtualT wraps a type that occupies zero wire bytes in its parent but
// still contributes to the digest and can be parsed out-of-band.
type VirtualT struct {
	Inner Type
}

func (VirtualT) isType() {}

// --- Root type family: Struct / Enum / Variant / HashVariant ---

// MasterKeyProperty distinguishes what kind of value a master field
// determines for its slave field.
type MasterKeyProperty int

const (
	KeySeqLength MasterKeyProperty = iota
	KeyVariantTag
)

// MasterField records that a field's value is determined by another field:
// a sequence length, or a detached-variant tag.
type MasterField struct {
	MasterFieldName string
	KeyProperty     MasterKeyProperty
}

// Field is one member of a Struct, annotated progressively by the type
// pipeline: Offset and MasterField are unset (zero value) until the
// size/offset and master-field passes run.
type Field struct {
	Name        string
	Type        Type
	Offset      Offset
	MasterField *MasterField
}

// RootType is the sum of named (root) type kinds that flow through the
// compiler: Struct, Enum, Variant (always FixedVariant by the time a
// Protocol is emitted — see invariant iv), and the MIR-only HashVariant.
type RootType interface {
	RootName() QName
	RootProtocol() string
	isRootType()
}

// Struct is a resolved struct type, with its field layout annotated
// progressively (Size/TailOffset/Trivial/Digest start zero-valued and are
// filled in by the size/offset, trivial, and digest passes).
type Struct struct {
	Name       QName
	Protocol   string
	Fields     []Field
	TailOffset Offset
	Size       Size
	Trivial    bool
	Digest     Digest
}

func (s *Struct) RootName() QName     { return s.Name }
func (s *Struct) RootProtocol() string { return s.Protocol }
func (s *Struct) isRootType()          {}

// EnumVariant is one named, valued member of an Enum.
type EnumVariant struct {
	Name  string
	Value int64
}

// Enum is a resolved enum type.
type Enum struct {
	Name        QName
	Protocol    string
	Underlying  IntType
	Variants    []EnumVariant
	ValidRanges []ranges.Range
	Digest      Digest
}

func (e *Enum) RootName() QName      { return e.Name }
func (e *Enum) RootProtocol() string { return e.Protocol }
func (e *Enum) isRootType()          {}

// VariantTag binds a member struct to a fixed tag value.
type VariantTag struct {
	Struct QName
	Value  int64
}

// Variant is a resolved, fixed-tag variant type (a "FixedVariant" in the
// original's terms — by the time a Protocol is emitted, every Variant is
// this kind; see invariant iv).
type Variant struct {
	Name     QName
	Protocol string
	TagType  IntType
	Tags     []VariantTag
	Size     Size
	Trivial  bool
	Digest   Digest
}

func (v *Variant) RootName() QName      { return v.Name }
func (v *Variant) RootProtocol() string { return v.Protocol }
func (v *Variant) isRootType()          {}

// HashVariant is the MIR-only form of a variant whose tags are derived from
// each member struct's digest; the hash-expand pass replaces it with a
// Variant bearing computed fixed tags.
type HashVariant struct {
	Name     QName
	Protocol string
	TagType  IntType
	Members  []QName
}

func (h *HashVariant) RootName() QName      { return h.Name }
func (h *HashVariant) RootProtocol() string { return h.Protocol }
func (h *HashVariant) isRootType()          {}

// --- Constants ---

// RootConstant is the sum of constant kinds carried into the PIR.
type RootConstant interface {
	ConstantName() QName
	isRootConstant()
}

// IntConstant is a resolved integer constant, carrying its Int type and
// (once the constant compiler runs) a Constant(width) size and trivial
// flag, matching spec.md §4.3.
type IntConstant struct {
	Name     QName
	Protocol string
	Type     IntType
	Value    int64
	Size     Size
	Trivial  bool
}

func (c *IntConstant) ConstantName() QName { return c.Name }
func (c *IntConstant) isRootConstant()     {}

// StringConstant is a resolved string constant; its value is preserved
// verbatim from the schema.
type StringConstant struct {
	Name     QName
	Protocol string
	Value    string
}

func (c *StringConstant) ConstantName() QName { return c.Name }
func (c *StringConstant) isRootConstant()     {}
