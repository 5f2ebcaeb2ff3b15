package ir

// ConversionStrength is the four-level lattice describing how well a
// cross-version conversion preserves behavior and layout:
// PARTIAL ⊂ TOTAL ⊂ COMPATIBLE ⊂ SUBSTITUTABLE.
type ConversionStrength int

const (
	StrengthPartial ConversionStrength = iota
	StrengthTotal
	StrengthCompatible
	StrengthSubstitutable
)

func (s ConversionStrength) String() string {
	switch s {
	case StrengthPartial:
		return "PARTIAL"
	case StrengthTotal:
		return "TOTAL"
	case StrengthCompatible:
		return "COMPATIBLE"
	case StrengthSubstitutable:
		return "SUBSTITUTABLE"
	default:
		return "UNKNOWN"
	}
}

// AtLeast reports whether s is at least as strong as other in the lattice.
func (s ConversionStrength) AtLeast(other ConversionStrength) bool {
	return s >= other
}

// Conversion is the closed variant of conversion expressions. It is used
// both for MIR conversions mid-pipeline (where Strength is not yet
// meaningful) and for the final PIR conversions (where Strength has been
// computed) — see the design note in pkg/ir/mir.go about sharing one Type
// family across pipeline stages; the same reasoning applies here.
type Conversion interface {
	Strength() ConversionStrength
	isConversion()
}

// ConversionKey identifies a top-level (root-to-root) conversion.
type ConversionKey struct {
	Src, Target QName
}

// UnresolvedConversion is a MIR-only placeholder for a field or variant
// value's inner conversion, prior to the conversion compiler's resolve
// pass replacing it with an IdentityConversion or a ConversionRef (for two
// DetachedVariants, the one resolved between their inner variant types).
type UnresolvedConversion struct {
	SrcType, TargetType Type
}

func (UnresolvedConversion) Strength() ConversionStrength { return StrengthPartial }
func (UnresolvedConversion) isConversion()                {}

// IdentityConversion converts a type to itself; always SUBSTITUTABLE.
type IdentityConversion struct {
	Type Type
}

func (IdentityConversion) Strength() ConversionStrength { return StrengthSubstitutable }
func (IdentityConversion) isConversion()                {}

// ConversionRef is a late-bound pointer to a root conversion, resolved
// through the owning protocol's conversion graph by its (Src, Target) key.
// Strength returns ResolvedStrength, which the conversion compiler does not
// set, so it reports PARTIAL; the strength pass looks the referenced
// conversion up by key instead of calling it.
type ConversionRef struct {
	Src, Target     QName
	ResolvedStrength ConversionStrength
}

func (r ConversionRef) Strength() ConversionStrength { return r.ResolvedStrength }
func (ConversionRef) isConversion()                  {}

// EnumValueMapping maps one source enum variant to an optional target
// variant; HasTarget=false records an explicit mapping-out.
type EnumValueMapping struct {
	Src       string
	Target    string
	HasTarget bool
}

// EnumConversion converts between two enum types by variant name.
type EnumConversion struct {
	Src, Target QName
	Mapping     []EnumValueMapping
	StrengthVal ConversionStrength
}

func (c *EnumConversion) Strength() ConversionStrength { return c.StrengthVal }
func (*EnumConversion) isConversion()                  {}
func (c *EnumConversion) Key() ConversionKey            { return ConversionKey{c.Src, c.Target} }

// FieldConversion is the sum of ways a target struct field is populated by
// a StructConversion.
type FieldConversion interface {
	isFieldConversion()
}

// IntDefaultFieldConversion populates a target field with a fixed integer,
// independent of any source field. Always total.
type IntDefaultFieldConversion struct {
	Type  IntType
	Value int64
}

func (IntDefaultFieldConversion) isFieldConversion() {}

// EnumDefaultFieldConversion populates a target field with a fixed enum
// value. Always total.
type EnumDefaultFieldConversion struct {
	Type  QName
	Value string
}

func (EnumDefaultFieldConversion) isFieldConversion() {}

// TransformFieldConversion populates a target field by converting a named
// source field through Inner.
type TransformFieldConversion struct {
	SrcField string
	Inner    Conversion
}

func (TransformFieldConversion) isFieldConversion() {}

// StructConversion converts between two struct types, field by field.
// TargetFieldOrder preserves the target struct's declared field order,
// needed because Mapping (keyed by field name) has no inherent order but
// the Compatible/Substitutable predicates are positional.
type StructConversion struct {
	Src, Target      QName
	Mapping          map[string]FieldConversion
	TargetFieldOrder []string
	StrengthVal      ConversionStrength
}

func (c *StructConversion) Strength() ConversionStrength { return c.StrengthVal }
func (*StructConversion) isConversion()                  {}
func (c *StructConversion) Key() ConversionKey            { return ConversionKey{c.Src, c.Target} }

// VariantValueMapping maps one source member struct to an optional target
// member struct, with the inner conversion between their struct bodies.
type VariantValueMapping struct {
	SrcStruct    QName
	TargetStruct QName
	HasTarget    bool
	Inner        Conversion // meaningful only when HasTarget
}

// VariantConversion converts between two variant types by member struct.
type VariantConversion struct {
	Src, Target QName
	Mapping     []VariantValueMapping
	StrengthVal ConversionStrength
}

func (c *VariantConversion) Strength() ConversionStrength { return c.StrengthVal }
func (*VariantConversion) isConversion()                  {}
func (c *VariantConversion) Key() ConversionKey            { return ConversionKey{c.Src, c.Target} }

// RootConversion is the subset of Conversion kinds that can sit at the top
// level of a protocol's conversion graph (i.e. have their own Key).
type RootConversion interface {
	Conversion
	Key() ConversionKey
}
