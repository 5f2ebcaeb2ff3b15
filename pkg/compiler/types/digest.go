package types

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/blockberries/wireforge/pkg/compiler/cerrors"
	"github.com/blockberries/wireforge/pkg/ir"
)

// computeDigestsAndExpandHash is pass 7: compute every root type's
// canonical repr_str/repr_hash (spec.md §6.3), then replace each
// HashVariant with a FixedVariant whose tags are the truncation of each
// member's repr_hash, failing on truncated-tag collisions.
func (p *pipeline) computeDigestsAndExpandHash() {
	memo := make(map[string]string) // QName -> repr_str, memoized since repr_str is purely structural
	for _, name := range p.order {
		rt, ok := p.types[name.String()]
		if !ok {
			continue
		}
		reprStr := p.reprStrOf(rt, memo)
		reprHash := sha256Hex(reprStr)
		switch d := rt.(type) {
		case *ir.Struct:
			d.Digest = ir.Digest{ReprStr: reprStr, ReprHash: reprHash}
		case *ir.Enum:
			d.Digest = ir.Digest{ReprStr: reprStr, ReprHash: reprHash}
		case *ir.Variant:
			d.Digest = ir.Digest{ReprStr: reprStr, ReprHash: reprHash}
		case *ir.HashVariant:
			p.expandHashVariant(d, memo)
		}
	}
}

func sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// expandHashVariant replaces a HashVariant in the working type map with an
// equivalent *ir.Variant whose tags are derived from each member's
// repr_hash, truncated to tag_type.width*2 hex digits and parsed as a
// big-endian integer.
func (p *pipeline) expandHashVariant(hv *ir.HashVariant, memo map[string]string) {
	digitCount := hv.TagType.Width * 2
	tags := make([]ir.VariantTag, 0, len(hv.Members))
	seen := make(map[int64][]ir.QName)
	for _, member := range hv.Members {
		target, ok := p.lookup(member)
		if !ok {
			p.addError(cerrors.At(cerrors.KindSemantic, hv.Name, "hash variant %q: unknown member %q", hv.Name, member))
			continue
		}
		structDef, ok := target.(*ir.Struct)
		if !ok {
			p.addError(cerrors.At(cerrors.KindSemantic, hv.Name, "hash variant %q: member %q is not a struct", hv.Name, member))
			continue
		}
		reprStr := p.reprStrOf(structDef, memo)
		reprHash := sha256Hex(reprStr)
		if structDef.Digest.ReprHash == "" {
			structDef.Digest = ir.Digest{ReprStr: reprStr, ReprHash: reprHash}
		}
		short := reprHash[:digitCount]
		rawValue, _ := strconv.ParseUint(short, 16, 64)
		tagValue := int64(rawValue)
		seen[tagValue] = append(seen[tagValue], member)
		tags = append(tags, ir.VariantTag{Struct: member, Value: tagValue})
	}
	for tagValue, members := range seen {
		if len(members) > 1 {
			p.addError(cerrors.New(cerrors.KindHashCollision,
				"hash variant %q: members %v collide at truncated hash 0x%x", hv.Name, members, tagValue))
		}
	}
	variant := &ir.Variant{Name: hv.Name, Protocol: hv.Protocol, TagType: hv.TagType, Tags: tags}
	reprStr := p.reprStrOf(variant, memo)
	variant.Digest = ir.Digest{ReprStr: reprStr, ReprHash: sha256Hex(reprStr)}
	p.types[hv.Name.String()] = variant
}

// reprStrOf renders a root type's canonical repr_str per spec.md §6.3: no
// whitespace, no quotes, references fully expanded so the digest is
// self-contained.
func (p *pipeline) reprStrOf(rt ir.RootType, memo map[string]string) string {
	key := rt.RootName().String()
	if s, ok := memo[key]; ok {
		return s
	}
	var s string
	switch d := rt.(type) {
	case *ir.Struct:
		var b strings.Builder
		b.WriteString("Struct(name=")
		b.WriteString(d.Name.String())
		b.WriteString(",fields={")
		for i, f := range d.Fields {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(f.Name)
			b.WriteByte('=')
			b.WriteString(p.reprStrOfType(f.Type, memo))
		}
		b.WriteString("})")
		s = b.String()
	case *ir.Enum:
		sorted := append([]ir.EnumVariant(nil), d.Variants...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].Value < sorted[j].Value })
		var b strings.Builder
		b.WriteString("Enum(name=")
		b.WriteString(d.Name.String())
		b.WriteString(",underlying=")
		b.WriteString(reprStrOfInt(d.Underlying))
		b.WriteString(",variants={")
		for i, v := range sorted {
			if i > 0 {
				b.WriteByte(',')
			}
			fmt.Fprintf(&b, "%d=%s", v.Value, v.Name)
		}
		b.WriteString("})")
		s = b.String()
	case *ir.Variant:
		sorted := append([]ir.VariantTag(nil), d.Tags...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].Value < sorted[j].Value })
		var b strings.Builder
		b.WriteString("Variant(name=")
		b.WriteString(d.Name.String())
		b.WriteString(",tag_type=")
		b.WriteString(reprStrOfInt(d.TagType))
		b.WriteString(",variants={")
		for i, tag := range sorted {
			if i > 0 {
				b.WriteByte(',')
			}
			member, ok := p.lookup(tag.Struct)
			var memberStr string
			if ok {
				memberStr = p.reprStrOf(member, memo)
			} else {
				memberStr = tag.Struct.String()
			}
			fmt.Fprintf(&b, "%d=%s", tag.Value, memberStr)
		}
		b.WriteString("})")
		s = b.String()
	case *ir.HashVariant:
		// Pre-expansion form; only reached if something requests a
		// HashVariant's digest before pass 7 replaces it, which should not
		// happen given pass ordering.
		s = fmt.Sprintf("HashVariant(name=%s)", d.Name)
	default:
		s = ""
	}
	memo[key] = s
	return s
}

func (p *pipeline) reprStrOfType(t ir.Type, memo map[string]string) string {
	switch v := t.(type) {
	case ir.IntT:
		return reprStrOfInt(ir.IntType{Width: v.Width, Sign: v.Sign, Endianness: v.Endianness})
	case ir.FloatT:
		return fmt.Sprintf("Float(width=%d,endianness=%s)", v.Width, v.Endianness)
	case ir.RefT:
		target, ok := p.lookup(v.Name)
		if !ok {
			return v.Name.String()
		}
		return p.reprStrOf(target, memo)
	case ir.UnboundSeqT:
		return p.reprStrOfType(v.Inner, memo) // transient MIR form; never reached post seq-expand
	case ir.SeqT:
		inner := p.reprStrOfType(v.Inner, memo)
		if v.Length.Kind == ir.SeqFixedLength {
			return fmt.Sprintf("Seq(inner=%s,length=%d)", inner, v.Length.FixedValue)
		}
		return fmt.Sprintf("Seq(inner=%s,length=FieldReference(name=%s))", inner, v.Length.FieldName)
	case ir.ArrayT:
		return fmt.Sprintf("Seq(inner=%s,length=%d)", p.reprStrOfType(v.Inner, memo), v.Length)
	case ir.VectorT:
		return fmt.Sprintf("Seq(inner=%s,length=FieldReference(name=%s))", p.reprStrOfType(v.Inner, memo), v.LengthField)
	case ir.ListT:
		inner := p.reprStrOfType(v.Inner, memo)
		if v.Length.Kind == ir.ListFixedLength {
			return fmt.Sprintf("Seq(inner=%s,length=%d)", inner, v.Length.FixedValue)
		}
		return fmt.Sprintf("Seq(inner=%s,length=FieldReference(name=%s))", inner, v.Length.FieldName)
	case ir.DetachedVariantT:
		return fmt.Sprintf("DetachedVariant(variant=%s,tag=FieldReference(name=%s))", p.reprStrOfType(v.Variant, memo), v.TagField)
	case ir.VirtualT:
		return fmt.Sprintf("Virtual(inner=%s)", p.reprStrOfType(v.Inner, memo))
	default:
		return ""
	}
}

func reprStrOfInt(t ir.IntType) string {
	return fmt.Sprintf("Int(width=%d,sign=%s,endianness=%s)", t.Width, t.Sign, t.Endianness)
}
