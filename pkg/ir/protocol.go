package ir

// ProtocolTypes is the PIR's type table: every root type reachable from the
// protocol, keyed by its fully-qualified name string, plus the leaves-first
// declaration order of types owned by this protocol and the set of
// namespaces (protocol names) referenced externally.
type ProtocolTypes struct {
	Types             map[string]RootType
	Own               []QName
	ExternalProtocols map[string]bool
}

// Lookup resolves a QName against the type table.
func (t ProtocolTypes) Lookup(name QName) (RootType, bool) {
	rt, ok := t.Types[name.String()]
	return rt, ok
}

// ProtocolConstants is the PIR's constant table.
type ProtocolConstants struct {
	Constants map[string]RootConstant
}

// Lookup resolves a QName against the constant table.
func (c ProtocolConstants) Lookup(name QName) (RootConstant, bool) {
	rc, ok := c.Constants[name.String()]
	return rc, ok
}

// ProtocolConversions is the PIR's conversion table: the full dependency
// graph of root conversions, keyed by (src, target), plus the subset
// declared by this protocol in reverse-topological (dependencies-first)
// order, per spec.md §6.2.
type ProtocolConversions struct {
	Graph map[ConversionKey]RootConversion
	Own   []ConversionKey
}

// Lookup resolves a (src, target) pair against the conversion graph.
func (c ProtocolConversions) Lookup(key ConversionKey) (RootConversion, bool) {
	rc, ok := c.Graph[key]
	return rc, ok
}

// Protocol is the final Protocol Intermediate Representation handed to
// code generators: a namespace, its type table, constant table, and
// conversion table.
type Protocol struct {
	Name        QName
	Types       ProtocolTypes
	Constants   ProtocolConstants
	Conversions ProtocolConversions
}
