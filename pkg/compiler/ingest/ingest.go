// Package ingest implements the ingestion & validation stage (spec.md
// §4.1): it walks the raw schema object graph a producer hands in,
// enforces identifier/QName validity, the one-definition rule, acyclicity
// of type definitions, and cross-protocol conversion placement rules, and
// emits an ordered ProtocolDef ready for the type/constant/conversion
// compilers.
package ingest

import (
	"strings"

	"github.com/blockberries/wireforge/pkg/compiler/cerrors"
	"github.com/blockberries/wireforge/pkg/ir"
)

// ProtocolDef is ingestion's output: the schema's declarations, with types
// recorded in a leaves-first topological order, ready for the type
// compiler's own definition-order check.
type ProtocolDef struct {
	Name        string
	Types       map[string]ir.RootTypeDef
	TypeOrder   []ir.QName
	Constants   map[string]ir.RootConstantDef
	Conversions []ir.ConversionDef
}

// identityEntry is either a RootTypeDef or RootConstantDef, used to detect
// ODR violations across the shared type/constant namespace (see
// SPEC_FULL.md §C.4): a type and a constant can't share a QName either.
type identityEntry struct {
	typeDef  ir.RootTypeDef
	constDef ir.RootConstantDef
	loc      ir.SourceLoc
}

type ingester struct {
	pending    map[string]bool
	protocolID map[string]*ir.ProtocolSchema
	done       map[string]*ProtocolDef
	identity   map[string]identityEntry
	errors     cerrors.Errors
}

// IngestProtocol runs ingestion over a schema object graph for one
// protocol, recursively ingesting transitively referenced protocols to
// populate ODR and cycle-detection state. Returns the ProtocolDef, or a
// non-empty error list.
func IngestProtocol(schema *ir.ProtocolSchema) (*ProtocolDef, cerrors.Errors) {
	ing := &ingester{
		pending:    make(map[string]bool),
		protocolID: make(map[string]*ir.ProtocolSchema),
		done:       make(map[string]*ProtocolDef),
		identity:   make(map[string]identityEntry),
	}
	def := ing.ingest(schema)
	return def, ing.errors
}

func (ing *ingester) addError(e *cerrors.CompileError) {
	ing.errors = append(ing.errors, e)
}

func (ing *ingester) ingest(schema *ir.ProtocolSchema) *ProtocolDef {
	if prev, ok := ing.protocolID[schema.Name]; ok {
		if prev != schema {
			ing.addError(cerrors.At(cerrors.KindDefinition, ir.NewQName(schema.Name),
				"protocol %q defined by two different schema objects", schema.Name))
			return nil
		}
		if ing.pending[schema.Name] {
			ing.addError(cerrors.At(cerrors.KindDefinition, ir.NewQName(schema.Name),
				"cycle while type checking: protocol %q references itself transitively", schema.Name))
			return nil
		}
		return ing.done[schema.Name]
	}
	ing.protocolID[schema.Name] = schema
	ing.pending[schema.Name] = true
	defer delete(ing.pending, schema.Name)

	if strings.Contains(schema.Name, "_") {
		ing.addError(cerrors.At(cerrors.KindName, ir.NewQName(schema.Name),
			"protocol name %q must not contain '_'", schema.Name))
	}

	// Recursively ingest referenced protocols first so cross-protocol
	// conversion and ODR checks below have their state populated.
	refNames := sortedKeys(schema.References)
	for _, name := range refNames {
		ing.ingest(schema.References[name])
	}

	localTypes := make(map[string]ir.RootTypeDef)
	for _, t := range schema.Types {
		ing.checkIdentifier(t.TypeName(), t.Pos())
		ing.checkODRType(t)
		localTypes[t.TypeName().String()] = t
	}

	localConsts := make(map[string]ir.RootConstantDef)
	for _, c := range schema.Constants {
		ing.checkIdentifier(c.ConstName(), c.Pos())
		ing.checkODRConst(c)
		localConsts[c.ConstName().String()] = c
	}

	typeOrder := ing.buildTypeOrder(schema, localTypes)
	conversions := ing.checkConversions(schema)

	def := &ProtocolDef{
		Name:        schema.Name,
		Types:       localTypes,
		TypeOrder:   typeOrder,
		Constants:   localConsts,
		Conversions: conversions,
	}
	ing.done[schema.Name] = def
	return def
}

func (ing *ingester) checkIdentifier(name ir.QName, loc ir.SourceLoc) {
	if !ir.IsValidIdentifier(name.Name()) {
		ing.addError(cerrors.AtLoc(cerrors.KindName, name, loc,
			"invalid identifier %q", name.Name()))
	}
}

func (ing *ingester) checkODRType(t ir.RootTypeDef) {
	key := t.TypeName().String()
	if existing, ok := ing.identity[key]; ok {
		if existing.typeDef != t {
			ing.addError(cerrors.At(cerrors.KindDefinition, t.TypeName(),
				"multiple definitions of %q (previously defined at %s; also at %s)",
				t.TypeName(), locString(existing.loc), locString(t.Pos())))
		}
		return
	}
	ing.identity[key] = identityEntry{typeDef: t, loc: t.Pos()}
}

func (ing *ingester) checkODRConst(c ir.RootConstantDef) {
	key := c.ConstName().String()
	if existing, ok := ing.identity[key]; ok {
		if existing.constDef != c {
			ing.addError(cerrors.At(cerrors.KindDefinition, c.ConstName(),
				"multiple definitions of %q (previously defined at %s; also at %s)",
				c.ConstName(), locString(existing.loc), locString(c.Pos())))
		}
		return
	}
	ing.identity[key] = identityEntry{constDef: c, loc: c.Pos()}
}

func locString(loc ir.SourceLoc) string {
	if loc.File == "" {
		return "<unknown>"
	}
	return loc.File
}

// buildTypeOrder performs a postorder (leaves-first) DFS over each local
// type's referenced names, detecting genuine definition cycles (schema
// types are never legally self-recursive).
func (ing *ingester) buildTypeOrder(schema *ir.ProtocolSchema, localTypes map[string]ir.RootTypeDef) []ir.QName {
	visiting := make(map[string]bool)
	visited := make(map[string]bool)
	var order []ir.QName

	var visit func(name ir.QName)
	visit = func(name ir.QName) {
		key := name.String()
		if visited[key] {
			return
		}
		def, ok := localTypes[key]
		if !ok {
			return // external reference; ordered by its own protocol
		}
		if visiting[key] {
			ing.addError(cerrors.At(cerrors.KindDefinition, name,
				"cycle in type definitions involving %q", name))
			return
		}
		visiting[key] = true
		for _, ref := range collectTypeRefs(def) {
			visit(ref)
		}
		visiting[key] = false
		visited[key] = true
		order = append(order, name)
	}

	for _, name := range sortedTypeNames(schema.Types) {
		visit(name)
	}
	return order
}

func collectTypeRefs(def ir.RootTypeDef) []ir.QName {
	switch d := def.(type) {
	case *ir.StructDef:
		var refs []ir.QName
		for _, f := range d.Fields {
			refs = append(refs, collectSchemaTypeRefs(f.Type)...)
		}
		return refs
	case *ir.VariantDef:
		var refs []ir.QName
		for _, tag := range d.Tags {
			refs = append(refs, tag.Struct)
		}
		return refs
	case *ir.HashVariantDef:
		return append([]ir.QName(nil), d.Members...)
	case *ir.EnumDef:
		return nil
	default:
		return nil
	}
}

func collectSchemaTypeRefs(t ir.SchemaType) []ir.QName {
	switch v := t.(type) {
	case ir.RefType:
		return []ir.QName{v.Name}
	case ir.SeqType:
		return collectSchemaTypeRefs(v.Inner)
	case ir.DetachedVariantType:
		return collectSchemaTypeRefs(v.Variant)
	case ir.VirtualType:
		return collectSchemaTypeRefs(v.Inner)
	default:
		return nil
	}
}

// checkConversions validates explicitly-declared conversions and expands
// ConversionsFromPrior into synthesized implicit conversions.
func (ing *ingester) checkConversions(schema *ir.ProtocolSchema) []ir.ConversionDef {
	seen := make(map[ir.ConversionKey]bool)
	var out []ir.ConversionDef

	for _, c := range schema.Conversions {
		if c.Src.Equal(c.Target) {
			ing.addError(cerrors.At(cerrors.KindConversion, c.Src,
				"identity conversion is disallowed for %q", c.Src))
			continue
		}
		key := ir.ConversionKey{Src: c.Src, Target: c.Target}
		if seen[key] {
			ing.addError(cerrors.At(cerrors.KindConversion, c.Src,
				"duplicate conversion for (%s, %s)", c.Src, c.Target))
			continue
		}
		seen[key] = true

		if !inProtocol(c.Src, schema.Name) && !inProtocol(c.Target, schema.Name) {
			ing.addError(cerrors.At(cerrors.KindConversion, c.Src,
				"conversion (%s, %s) declared in protocol %q but neither side belongs to it",
				c.Src, c.Target, schema.Name))
			continue
		}
		if c.Kind != ir.ConversionNone {
			out = append(out, c)
		}
	}

	if schema.FromPrior != nil {
		prior, ok := schema.References[schema.FromPrior.PriorProtocol]
		if !ok {
			ing.addError(cerrors.At(cerrors.KindConversion, ir.NewQName(schema.Name),
				"ConversionsFromPrior references unknown prior protocol %q", schema.FromPrior.PriorProtocol))
			return out
		}
		out = append(out, ing.synthesizeFromPrior(schema, prior)...)
	}

	return out
}

func inProtocol(name ir.QName, protocol string) bool {
	return name.Namespace().String() == protocol
}

func (ing *ingester) synthesizeFromPrior(schema, prior *ir.ProtocolSchema) []ir.ConversionDef {
	priorByName := make(map[string]ir.RootTypeDef)
	for _, t := range prior.Types {
		priorByName[t.TypeName().Name()] = t
	}
	curByName := make(map[string]ir.RootTypeDef)
	for _, t := range schema.Types {
		curByName[t.TypeName().Name()] = t
	}

	// Explicit overrides (including ConversionNone) are matched by exact
	// (src, target) QName pair; we only need to know which pairs were
	// overridden, not their content.
	overridden := make(map[ir.ConversionKey]bool)
	for _, c := range schema.Conversions {
		overridden[ir.ConversionKey{Src: c.Src, Target: c.Target}] = true
	}

	var out []ir.ConversionDef
	for _, name := range sortedStrings(sharedNames(priorByName, curByName)) {
		priorDef := priorByName[name]
		curDef := curByName[name]
		kind, ok := matchingKind(priorDef, curDef)
		if !ok {
			ing.addError(cerrors.At(cerrors.KindConversion, curDef.TypeName(),
				"implicit conversion for %q requires matching kinds between %s and %s",
				name, prior.Name, schema.Name))
			continue
		}
		forward := ir.ConversionKey{Src: priorDef.TypeName(), Target: curDef.TypeName()}
		backward := ir.ConversionKey{Src: curDef.TypeName(), Target: priorDef.TypeName()}
		if !overridden[forward] {
			out = append(out, ir.ConversionDef{Kind: kind, Src: forward.Src, Target: forward.Target})
		}
		if !overridden[backward] {
			out = append(out, ir.ConversionDef{Kind: kind, Src: backward.Src, Target: backward.Target})
		}
	}
	return out
}

func matchingKind(a, b ir.RootTypeDef) (ir.ConversionKind, bool) {
	switch a.(type) {
	case *ir.StructDef:
		if _, ok := b.(*ir.StructDef); ok {
			return ir.ConversionStruct, true
		}
	case *ir.EnumDef:
		if _, ok := b.(*ir.EnumDef); ok {
			return ir.ConversionEnum, true
		}
	case *ir.VariantDef, *ir.HashVariantDef:
		switch b.(type) {
		case *ir.VariantDef, *ir.HashVariantDef:
			return ir.ConversionVariant, true
		}
	}
	return 0, false
}

func sharedNames(a, b map[string]ir.RootTypeDef) map[string]bool {
	out := make(map[string]bool)
	for name := range a {
		if _, ok := b[name]; ok {
			out[name] = true
		}
	}
	return out
}
