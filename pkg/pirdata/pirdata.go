// Package pirdata implements the IR-as-data output (spec.md §6.4): a
// generator-agnostic serialization of a compiled Protocol to a plain
// JSON-shaped document, for consumers that want the PIR without writing a
// Go-specific code generator against pkg/ir directly.
//
// Grounded on original_source/python/tako/generators/lsir/lsir.py, which
// serves the same role in the original (dump the PIR to a dict, then
// json.dump it) — ported from per-kind visitor classes to Go type
// switches, since that's how the rest of this compiler already dispatches
// over the closed Type/RootType/RootConstant/Conversion families.
package pirdata

import "github.com/blockberries/wireforge/pkg/ir"

// Document serializes a compiled Protocol into the §6.4 shape: every
// owned root type keyed by its unqualified name, every constant keyed the
// same way, and every owned conversion in dependencies-first order.
func Document(proto ir.Protocol) map[string]any {
	types := make(map[string]any, len(proto.Types.Own))
	for _, name := range proto.Types.Own {
		rt, ok := proto.Types.Lookup(name)
		if !ok {
			continue
		}
		types[name.Name()] = rootTypeDoc(rt)
	}

	constants := make(map[string]any, len(proto.Constants.Constants))
	for _, rc := range proto.Constants.Constants {
		constants[rc.ConstantName().Name()] = constantDoc(rc)
	}

	externalProtocols := make([]string, 0, len(proto.Types.ExternalProtocols))
	for name := range proto.Types.ExternalProtocols {
		externalProtocols = append(externalProtocols, name)
	}

	conversions := make([]any, 0, len(proto.Conversions.Own))
	for _, key := range proto.Conversions.Own {
		rc, ok := proto.Conversions.Lookup(key)
		if !ok {
			continue
		}
		conversions = append(conversions, rootConversionDoc(rc))
	}

	return map[string]any{
		"name":               proto.Name.String(),
		"external_protocols": externalProtocols,
		"constants":          constants,
		"types":              types,
		"conversions":        conversions,
	}
}

func sizeDoc(s ir.Size) map[string]any {
	if s.Kind == ir.SizeDynamic {
		return map[string]any{"kind": "Dynamic"}
	}
	return map[string]any{"kind": "Constant", "value": s.Value}
}

func offsetDoc(o ir.Offset) map[string]any {
	var base any
	if o.Base != "" {
		base = o.Base
	}
	return map[string]any{"base": base, "offset": o.Offset}
}

func digestDoc(d ir.Digest) map[string]any {
	return map[string]any{"repr_str": d.ReprStr, "repr_hash": d.ReprHash}
}

func fieldReferenceDoc(name string) map[string]any {
	return map[string]any{"reference": name}
}

// typeDoc serializes a (possibly non-root) type expression. Root-type
// references print as their bare RefT name: the document is not
// self-contained the way the §6.3 digest string is, since the root types
// it references are reachable from the enclosing Document's own "types".
func typeDoc(t ir.Type) map[string]any {
	switch v := t.(type) {
	case ir.IntT:
		return map[string]any{"kind": "Int", "width": v.Width, "sign": v.Sign.String(), "endianness": v.Endianness.String()}
	case ir.FloatT:
		return map[string]any{"kind": "Float", "width": v.Width, "endianness": v.Endianness.String()}
	case ir.RefT:
		return map[string]any{"kind": "Ref", "name": v.Name.String()}
	case ir.ArrayT:
		return map[string]any{"kind": "Array", "inner": typeDoc(v.Inner), "length": map[string]any{"fixed": v.Length}}
	case ir.VectorT:
		return map[string]any{"kind": "Vector", "inner": typeDoc(v.Inner), "length": fieldReferenceDoc(v.LengthField)}
	case ir.ListT:
		return map[string]any{"kind": "List", "inner": typeDoc(v.Inner), "length": listLengthDoc(v.Length)}
	case ir.DetachedVariantT:
		return map[string]any{"kind": "DetachedVariant", "variant": typeDoc(v.Variant), "tag": fieldReferenceDoc(v.TagField)}
	case ir.VirtualT:
		return map[string]any{"kind": "Virtual", "inner": typeDoc(v.Inner)}
	default:
		return map[string]any{"kind": "Unknown"}
	}
}

func listLengthDoc(l ir.ListLength) map[string]any {
	if l.Kind == ir.ListVariableLength {
		return fieldReferenceDoc(l.FieldName)
	}
	return map[string]any{"fixed": l.FixedValue}
}

func masterFieldDoc(mf *ir.MasterField) map[string]any {
	if mf == nil {
		return map[string]any{}
	}
	key := "SEQ_LENGTH"
	if mf.KeyProperty == ir.KeyVariantTag {
		key = "VARIANT_TAG"
	}
	return map[string]any{"name": mf.MasterFieldName, "key_property": key}
}

func fieldDoc(f ir.Field) map[string]any {
	return map[string]any{
		"type":         typeDoc(f.Type),
		"offset":       offsetDoc(f.Offset),
		"master_field": masterFieldDoc(f.MasterField),
	}
}

// rootTypeDoc serializes a root type's §6.4 envelope ({kind, size,
// trivial, digest, ...}) plus its kind-specific fields.
func rootTypeDoc(rt ir.RootType) map[string]any {
	switch v := rt.(type) {
	case *ir.Struct:
		fields := make(map[string]any, len(v.Fields))
		for _, f := range v.Fields {
			fields[f.Name] = fieldDoc(f)
		}
		return common("Struct", v.Size, v.Trivial, v.Digest, map[string]any{
			"fields":      fields,
			"tail_offset": offsetDoc(v.TailOffset),
		})
	case *ir.Variant:
		variants := make(map[string]any, len(v.Tags))
		for _, tag := range v.Tags {
			variants[tag.Struct.String()] = tag.Value
		}
		return common("Variant", v.Size, v.Trivial, v.Digest, map[string]any{
			"tag_type": typeDoc(ir.IntT(v.TagType)),
			"variants": variants,
		})
	case *ir.Enum:
		variants := make(map[string]any, len(v.Variants))
		for _, ev := range v.Variants {
			variants[ev.Name] = ev.Value
		}
		ranges := make([]any, len(v.ValidRanges))
		for i, r := range v.ValidRanges {
			ranges[i] = map[string]any{"start": r.Start, "end": r.End}
		}
		return common("Enum", trivialEnumSize(v), true, v.Digest, map[string]any{
			"underlying_type": typeDoc(ir.IntT(v.Underlying)),
			"variants":        variants,
			"valid_ranges":    ranges,
		})
	case *ir.HashVariant:
		members := make([]any, len(v.Members))
		for i, m := range v.Members {
			members[i] = m.String()
		}
		return map[string]any{"kind": "HashVariant", "members": members}
	default:
		return map[string]any{"kind": "Unknown"}
	}
}

// trivialEnumSize mirrors the original's treatment of an enum's size as
// its underlying integer's width: an Enum has no Size field of its own in
// this IR (it is always as wide as its underlying int), so this documents
// that width directly rather than inventing a placeholder.
func trivialEnumSize(e *ir.Enum) ir.Size {
	return ir.ConstantSize(e.Underlying.Width)
}

func common(kind string, size ir.Size, trivial bool, digest ir.Digest, extra map[string]any) map[string]any {
	doc := map[string]any{
		"kind":    kind,
		"size":    sizeDoc(size),
		"trivial": trivial,
		"digest":  digestDoc(digest),
	}
	for k, v := range extra {
		doc[k] = v
	}
	return doc
}

func constantDoc(rc ir.RootConstant) map[string]any {
	switch v := rc.(type) {
	case *ir.IntConstant:
		return map[string]any{"kind": "IntConstant", "type": typeDoc(ir.IntT(v.Type)), "value": v.Value}
	case *ir.StringConstant:
		return map[string]any{"kind": "StringConstant", "value": v.Value}
	default:
		return map[string]any{"kind": "Unknown"}
	}
}

func rootConversionDoc(rc ir.RootConversion) map[string]any {
	switch v := rc.(type) {
	case *ir.EnumConversion:
		mapping := make([]any, len(v.Mapping))
		for i, m := range v.Mapping {
			entry := map[string]any{"src": m.Src}
			if m.HasTarget {
				entry["target"] = m.Target
			} else {
				entry["target"] = nil
			}
			mapping[i] = entry
		}
		return conversionCommon("EnumConversion", v.Src, v.Target, v.Strength(), map[string]any{"mapping": mapping})
	case *ir.StructConversion:
		mapping := make(map[string]any, len(v.Mapping))
		for fname, fc := range v.Mapping {
			mapping[fname] = fieldConversionDoc(fc)
		}
		return conversionCommon("StructConversion", v.Src, v.Target, v.Strength(), map[string]any{"mapping": mapping})
	case *ir.VariantConversion:
		mapping := make([]any, len(v.Mapping))
		for i, vvm := range v.Mapping {
			entry := map[string]any{"src": vvm.SrcStruct.String()}
			if vvm.HasTarget {
				entry["target"] = vvm.TargetStruct.String()
				entry["conversion"] = conversionDoc(vvm.Inner)
			} else {
				entry["target"] = nil
			}
			mapping[i] = entry
		}
		return conversionCommon("VariantConversion", v.Src, v.Target, v.Strength(), map[string]any{"mapping": mapping})
	default:
		return map[string]any{"kind": "Unknown"}
	}
}

func conversionCommon(kind string, src, target ir.QName, strength ir.ConversionStrength, extra map[string]any) map[string]any {
	doc := map[string]any{
		"kind":     kind,
		"src":      src.String(),
		"target":   target.String(),
		"strength": strength.String(),
	}
	for k, v := range extra {
		doc[k] = v
	}
	return doc
}

func conversionDoc(c ir.Conversion) map[string]any {
	switch v := c.(type) {
	case ir.IdentityConversion:
		return map[string]any{"kind": "IdentityConversion", "type": typeDoc(v.Type)}
	case ir.ConversionRef:
		return map[string]any{"kind": "ConversionRef", "src": v.Src.String(), "target": v.Target.String()}
	case ir.UnresolvedConversion:
		return map[string]any{"kind": "UnresolvedConversion"}
	default:
		return map[string]any{"kind": "Unknown"}
	}
}

func fieldConversionDoc(fc ir.FieldConversion) map[string]any {
	switch v := fc.(type) {
	case ir.IntDefaultFieldConversion:
		return map[string]any{"kind": "IntDefaultFieldConversion", "type": typeDoc(ir.IntT(v.Type)), "value": v.Value}
	case ir.EnumDefaultFieldConversion:
		return map[string]any{"kind": "EnumDefaultFieldConversion", "type": v.Type.String(), "value": v.Value}
	case ir.TransformFieldConversion:
		return map[string]any{"kind": "TransformFieldConversion", "src_field": v.SrcField, "conversion": conversionDoc(v.Inner)}
	default:
		return map[string]any{"kind": "Unknown"}
	}
}
