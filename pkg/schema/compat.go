package schema

import (
	"fmt"
)

// BreakingChangeType indicates the kind of breaking change detected between
// two .wfs revisions of the same protocol.
type BreakingChangeType int

const (
	// FieldTypeChanged indicates a struct field's type expression changed.
	FieldTypeChanged BreakingChangeType = iota
	// FieldRemoved indicates a struct field was removed.
	FieldRemoved
	// FieldAdded indicates a struct field was added.
	FieldAdded
	// EnumValueChanged indicates an enum value number was reassigned to a
	// different name.
	EnumValueChanged
	// EnumValueRemoved indicates an enum value was removed.
	EnumValueRemoved
	// VariantTagChanged indicates a variant member's tag was reassigned.
	VariantTagChanged
	// VariantMemberRemoved indicates a variant lost a tagged member.
	VariantMemberRemoved
	// HashVariantMemberRemoved indicates a hashvariant lost a member.
	HashVariantMemberRemoved
	// StructRemoved indicates a struct was removed.
	StructRemoved
	// EnumRemoved indicates an enum was removed.
	EnumRemoved
	// VariantRemoved indicates a variant was removed.
	VariantRemoved
	// HashVariantRemoved indicates a hashvariant was removed.
	HashVariantRemoved
)

// String returns a human-readable description of the breaking change type.
func (t BreakingChangeType) String() string {
	switch t {
	case FieldTypeChanged:
		return "field type changed"
	case FieldRemoved:
		return "field removed"
	case FieldAdded:
		return "field added"
	case EnumValueChanged:
		return "enum value reassigned"
	case EnumValueRemoved:
		return "enum value removed"
	case VariantTagChanged:
		return "variant tag reassigned"
	case VariantMemberRemoved:
		return "variant member removed"
	case HashVariantMemberRemoved:
		return "hashvariant member removed"
	case StructRemoved:
		return "struct removed"
	case EnumRemoved:
		return "enum removed"
	case VariantRemoved:
		return "variant removed"
	case HashVariantRemoved:
		return "hashvariant removed"
	default:
		return "unknown breaking change"
	}
}

// BreakingChange represents an incompatible schema change between two .wfs
// revisions.
type BreakingChange struct {
	Type     BreakingChangeType
	Message  string
	Location string
}

func (b BreakingChange) Error() string {
	if b.Location != "" {
		return fmt.Sprintf("%s: %s at %s", b.Type, b.Message, b.Location)
	}
	return fmt.Sprintf("%s: %s", b.Type, b.Message)
}

// CompatibilityReport contains the results of a schema compatibility check.
type CompatibilityReport struct {
	Breaking []BreakingChange
	Warnings []string
}

// IsCompatible returns true if no breaking changes were detected.
func (r *CompatibilityReport) IsCompatible() bool {
	return len(r.Breaking) == 0
}

// CheckCompatibility compares two revisions of the same protocol's .wfs
// source and reports type/field/member changes that ConversionsFromPrior
// cannot paper over without an explicit conversion block, so producers know
// which (Src, Target) pairs need one. old is the prior revision, new is the
// proposed one.
func CheckCompatibility(old, new *File) *CompatibilityReport {
	report := &CompatibilityReport{}

	oldStructs := make(map[string]*StructDecl, len(old.Structs))
	for _, s := range old.Structs {
		oldStructs[s.Name] = s
	}
	newStructs := make(map[string]*StructDecl, len(new.Structs))
	for _, s := range new.Structs {
		newStructs[s.Name] = s
	}
	for name, oldS := range oldStructs {
		if newS, ok := newStructs[name]; ok {
			checkStructCompat(oldS, newS, report)
		} else {
			report.Breaking = append(report.Breaking, BreakingChange{Type: StructRemoved, Message: fmt.Sprintf("struct %q was removed", name), Location: name})
		}
	}

	oldEnums := make(map[string]*EnumDecl, len(old.Enums))
	for _, e := range old.Enums {
		oldEnums[e.Name] = e
	}
	newEnums := make(map[string]*EnumDecl, len(new.Enums))
	for _, e := range new.Enums {
		newEnums[e.Name] = e
	}
	for name, oldE := range oldEnums {
		if newE, ok := newEnums[name]; ok {
			checkEnumCompat(oldE, newE, report)
		} else {
			report.Breaking = append(report.Breaking, BreakingChange{Type: EnumRemoved, Message: fmt.Sprintf("enum %q was removed", name), Location: name})
		}
	}

	oldVariants := make(map[string]*VariantDecl, len(old.Variants))
	for _, v := range old.Variants {
		oldVariants[v.Name] = v
	}
	newVariants := make(map[string]*VariantDecl, len(new.Variants))
	for _, v := range new.Variants {
		newVariants[v.Name] = v
	}
	for name, oldV := range oldVariants {
		if newV, ok := newVariants[name]; ok {
			checkVariantCompat(oldV, newV, report)
		} else {
			report.Breaking = append(report.Breaking, BreakingChange{Type: VariantRemoved, Message: fmt.Sprintf("variant %q was removed", name), Location: name})
		}
	}

	oldHash := make(map[string]*HashVariantDecl, len(old.HashVariants))
	for _, h := range old.HashVariants {
		oldHash[h.Name] = h
	}
	newHash := make(map[string]*HashVariantDecl, len(new.HashVariants))
	for _, h := range new.HashVariants {
		newHash[h.Name] = h
	}
	for name, oldH := range oldHash {
		if newH, ok := newHash[name]; ok {
			checkHashVariantCompat(oldH, newH, report)
		} else {
			report.Breaking = append(report.Breaking, BreakingChange{Type: HashVariantRemoved, Message: fmt.Sprintf("hashvariant %q was removed", name), Location: name})
		}
	}

	return report
}

func checkStructCompat(oldS, newS *StructDecl, report *CompatibilityReport) {
	oldFields := make(map[string]*FieldDecl, len(oldS.Fields))
	for _, f := range oldS.Fields {
		oldFields[f.Name] = f
	}
	newFields := make(map[string]*FieldDecl, len(newS.Fields))
	for _, f := range newS.Fields {
		newFields[f.Name] = f
	}

	for name, oldF := range oldFields {
		if newF, ok := newFields[name]; ok {
			if oldF.Type.String() != newF.Type.String() {
				report.Breaking = append(report.Breaking, BreakingChange{
					Type:     FieldTypeChanged,
					Message:  fmt.Sprintf("field %q type changed from %s to %s", name, oldF.Type.String(), newF.Type.String()),
					Location: fmt.Sprintf("%s.%s", oldS.Name, name),
				})
			}
		} else {
			report.Breaking = append(report.Breaking, BreakingChange{
				Type:     FieldRemoved,
				Message:  fmt.Sprintf("field %q was removed", name),
				Location: fmt.Sprintf("%s.%s", oldS.Name, name),
			})
		}
	}
	for name := range newFields {
		if _, ok := oldFields[name]; !ok {
			report.Warnings = append(report.Warnings, fmt.Sprintf("field %s.%s was added — an explicit conversion block may be needed to populate it from prior data", newS.Name, name))
		}
	}
}

func checkEnumCompat(oldE, newE *EnumDecl, report *CompatibilityReport) {
	oldValues := make(map[int64]string, len(oldE.Values))
	for _, v := range oldE.Values {
		oldValues[v.Value] = v.Name
	}
	newValues := make(map[int64]string, len(newE.Values))
	for _, v := range newE.Values {
		newValues[v.Value] = v.Name
	}

	for num, oldName := range oldValues {
		if newName, ok := newValues[num]; ok {
			if oldName != newName {
				report.Breaking = append(report.Breaking, BreakingChange{
					Type:     EnumValueChanged,
					Message:  fmt.Sprintf("enum value %d changed from %q to %q", num, oldName, newName),
					Location: fmt.Sprintf("%s.%s", oldE.Name, oldName),
				})
			}
		} else {
			report.Breaking = append(report.Breaking, BreakingChange{
				Type:     EnumValueRemoved,
				Message:  fmt.Sprintf("enum value %q (%d) was removed", oldName, num),
				Location: fmt.Sprintf("%s.%s", oldE.Name, oldName),
			})
		}
	}
}

func checkVariantCompat(oldV, newV *VariantDecl, report *CompatibilityReport) {
	oldTags := make(map[int64]string, len(oldV.Members))
	for _, m := range oldV.Members {
		oldTags[m.Tag] = m.Struct.String()
	}
	newTags := make(map[int64]string, len(newV.Members))
	for _, m := range newV.Members {
		newTags[m.Tag] = m.Struct.String()
	}

	for tag, oldStruct := range oldTags {
		if newStruct, ok := newTags[tag]; ok {
			if oldStruct != newStruct {
				report.Breaking = append(report.Breaking, BreakingChange{
					Type:     VariantTagChanged,
					Message:  fmt.Sprintf("tag %d reassigned from %q to %q", tag, oldStruct, newStruct),
					Location: fmt.Sprintf("%s[%d]", oldV.Name, tag),
				})
			}
		} else {
			report.Breaking = append(report.Breaking, BreakingChange{
				Type:     VariantMemberRemoved,
				Message:  fmt.Sprintf("member %q (tag %d) was removed", oldStruct, tag),
				Location: fmt.Sprintf("%s[%d]", oldV.Name, tag),
			})
		}
	}
}

func checkHashVariantCompat(oldH, newH *HashVariantDecl, report *CompatibilityReport) {
	oldMembers := make(map[string]bool, len(oldH.Members))
	for _, m := range oldH.Members {
		oldMembers[m.String()] = true
	}
	newMembers := make(map[string]bool, len(newH.Members))
	for _, m := range newH.Members {
		newMembers[m.String()] = true
	}

	for name := range oldMembers {
		if !newMembers[name] {
			report.Breaking = append(report.Breaking, BreakingChange{
				Type:     HashVariantMemberRemoved,
				Message:  fmt.Sprintf("member %q was removed", name),
				Location: fmt.Sprintf("%s.%s", oldH.Name, name),
			})
		}
	}
	for name := range newMembers {
		if !oldMembers[name] {
			report.Warnings = append(report.Warnings, fmt.Sprintf("member %s.%s was added", newH.Name, name))
		}
	}
}
