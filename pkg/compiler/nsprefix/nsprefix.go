// Package nsprefix implements the namespace-prefix pass (spec.md §4.5): the
// final compiler stage, applied once a protocol's types, constants, and
// conversions are fully resolved, rewriting every root QName under a
// caller-supplied namespace. An empty namespace is a no-op.
package nsprefix

import "github.com/blockberries/wireforge/pkg/ir"

// Prefix rewrites every root-type, constant, and conversion name in proto
// to live under namespace, leaving a caller's empty namespace untouched.
func Prefix(proto ir.Protocol, namespace ir.QName) ir.Protocol {
	if namespace.IsEmpty() {
		return proto
	}

	types := make(map[string]ir.RootType, len(proto.Types.Types))
	for _, rt := range proto.Types.Types {
		prefixed := prefixRootType(rt, namespace)
		types[prefixed.RootName().String()] = prefixed
	}
	own := make([]ir.QName, len(proto.Types.Own))
	for i, name := range proto.Types.Own {
		own[i] = name.Prefix(namespace)
	}
	external := make(map[string]bool, len(proto.Types.ExternalProtocols))
	for name := range proto.Types.ExternalProtocols {
		external[ir.ParseQName(name).Prefix(namespace).String()] = true
	}

	constants := make(map[string]ir.RootConstant, len(proto.Constants.Constants))
	for _, rc := range proto.Constants.Constants {
		prefixed := prefixConstant(rc, namespace)
		constants[prefixed.ConstantName().String()] = prefixed
	}

	graph := make(map[ir.ConversionKey]ir.RootConversion, len(proto.Conversions.Graph))
	for _, rc := range proto.Conversions.Graph {
		prefixed := prefixRootConversion(rc, namespace)
		graph[prefixed.Key()] = prefixed
	}
	ownConv := make([]ir.ConversionKey, len(proto.Conversions.Own))
	for i, key := range proto.Conversions.Own {
		ownConv[i] = ir.ConversionKey{Src: key.Src.Prefix(namespace), Target: key.Target.Prefix(namespace)}
	}

	return ir.Protocol{
		Name: proto.Name.Prefix(namespace),
		Types: ir.ProtocolTypes{
			Types:             types,
			Own:               own,
			ExternalProtocols: external,
		},
		Constants:   ir.ProtocolConstants{Constants: constants},
		Conversions: ir.ProtocolConversions{Graph: graph, Own: ownConv},
	}
}

// --- Types ---

func prefixType(t ir.Type, ns ir.QName) ir.Type {
	switch v := t.(type) {
	case ir.IntT:
		return v
	case ir.FloatT:
		return v
	case ir.RefT:
		return ir.RefT{Name: v.Name.Prefix(ns)}
	case ir.UnboundSeqT:
		v.Inner = prefixType(v.Inner, ns)
		return v
	case ir.SeqT:
		v.Inner = prefixType(v.Inner, ns)
		return v
	case ir.ArrayT:
		v.Inner = prefixType(v.Inner, ns)
		return v
	case ir.VectorT:
		v.Inner = prefixType(v.Inner, ns)
		return v
	case ir.ListT:
		v.Inner = prefixType(v.Inner, ns)
		return v
	case ir.DetachedVariantT:
		v.Variant = prefixType(v.Variant, ns)
		return v
	case ir.VirtualT:
		v.Inner = prefixType(v.Inner, ns)
		return v
	default:
		return t
	}
}

// prefixField rewrites a field's type but leaves MasterField alone: a
// master-field reference is always a plain sibling-field name, never a
// QName, so it is untouched by prefixing.
func prefixField(f ir.Field, ns ir.QName) ir.Field {
	f.Type = prefixType(f.Type, ns)
	return f
}

func prefixRootType(rt ir.RootType, ns ir.QName) ir.RootType {
	switch v := rt.(type) {
	case *ir.Struct:
		fields := make([]ir.Field, len(v.Fields))
		for i, f := range v.Fields {
			fields[i] = prefixField(f, ns)
		}
		return &ir.Struct{
			Name: v.Name.Prefix(ns), Protocol: ns.Append(v.Protocol).String(),
			Fields: fields, TailOffset: v.TailOffset, Size: v.Size, Trivial: v.Trivial, Digest: v.Digest,
		}
	case *ir.Enum:
		return &ir.Enum{
			Name: v.Name.Prefix(ns), Protocol: ns.Append(v.Protocol).String(),
			Underlying: v.Underlying, Variants: v.Variants, ValidRanges: v.ValidRanges, Digest: v.Digest,
		}
	case *ir.Variant:
		tags := make([]ir.VariantTag, len(v.Tags))
		for i, tag := range v.Tags {
			tags[i] = ir.VariantTag{Struct: tag.Struct.Prefix(ns), Value: tag.Value}
		}
		return &ir.Variant{
			Name: v.Name.Prefix(ns), Protocol: ns.Append(v.Protocol).String(),
			TagType: v.TagType, Tags: tags, Size: v.Size, Trivial: v.Trivial, Digest: v.Digest,
		}
	case *ir.HashVariant:
		members := make([]ir.QName, len(v.Members))
		for i, m := range v.Members {
			members[i] = m.Prefix(ns)
		}
		return &ir.HashVariant{
			Name: v.Name.Prefix(ns), Protocol: ns.Append(v.Protocol).String(),
			TagType: v.TagType, Members: members,
		}
	default:
		return rt
	}
}

// --- Constants ---

func prefixConstant(rc ir.RootConstant, ns ir.QName) ir.RootConstant {
	switch v := rc.(type) {
	case *ir.IntConstant:
		return &ir.IntConstant{
			Name: v.Name.Prefix(ns), Protocol: ns.Append(v.Protocol).String(),
			Type: v.Type, Value: v.Value, Size: v.Size, Trivial: v.Trivial,
		}
	case *ir.StringConstant:
		return &ir.StringConstant{Name: v.Name.Prefix(ns), Protocol: ns.Append(v.Protocol).String(), Value: v.Value}
	default:
		return rc
	}
}

// --- Conversions ---

func prefixConversion(c ir.Conversion, ns ir.QName) ir.Conversion {
	switch v := c.(type) {
	case ir.IdentityConversion:
		v.Type = prefixType(v.Type, ns)
		return v
	case ir.ConversionRef:
		v.Src = v.Src.Prefix(ns)
		v.Target = v.Target.Prefix(ns)
		return v
	case ir.UnresolvedConversion:
		v.SrcType = prefixType(v.SrcType, ns)
		v.TargetType = prefixType(v.TargetType, ns)
		return v
	default:
		return c
	}
}

func prefixFieldConversion(fc ir.FieldConversion, ns ir.QName) ir.FieldConversion {
	switch v := fc.(type) {
	case ir.IntDefaultFieldConversion:
		// Type is a plain IntType (width/sign/endianness): no QName to prefix.
		return v
	case ir.EnumDefaultFieldConversion:
		v.Type = v.Type.Prefix(ns)
		return v
	case ir.TransformFieldConversion:
		v.Inner = prefixConversion(v.Inner, ns)
		return v
	default:
		return fc
	}
}

func prefixRootConversion(rc ir.RootConversion, ns ir.QName) ir.RootConversion {
	switch v := rc.(type) {
	case *ir.EnumConversion:
		return &ir.EnumConversion{Src: v.Src.Prefix(ns), Target: v.Target.Prefix(ns), Mapping: v.Mapping, StrengthVal: v.StrengthVal}
	case *ir.StructConversion:
		mapping := make(map[string]ir.FieldConversion, len(v.Mapping))
		for fname, fc := range v.Mapping {
			mapping[fname] = prefixFieldConversion(fc, ns)
		}
		return &ir.StructConversion{
			Src: v.Src.Prefix(ns), Target: v.Target.Prefix(ns),
			Mapping: mapping, TargetFieldOrder: v.TargetFieldOrder, StrengthVal: v.StrengthVal,
		}
	case *ir.VariantConversion:
		mapping := make([]ir.VariantValueMapping, len(v.Mapping))
		for i, vvm := range v.Mapping {
			mapping[i] = ir.VariantValueMapping{
				SrcStruct: vvm.SrcStruct.Prefix(ns), TargetStruct: vvm.TargetStruct.Prefix(ns), HasTarget: vvm.HasTarget,
			}
			if vvm.HasTarget {
				mapping[i].Inner = prefixConversion(vvm.Inner, ns)
			}
		}
		return &ir.VariantConversion{Src: v.Src.Prefix(ns), Target: v.Target.Prefix(ns), Mapping: mapping, StrengthVal: v.StrengthVal}
	default:
		return rc
	}
}
