package frame

import (
	"fmt"
	"strings"

	"github.com/ChrisMcGann/TAGKey/pkg/core"
)

// Kind is the physical kind of a data type.
type Kind int

const (
	KindBool Kind = iota
	KindInt
	KindFloat
	KindString
	KindStruct
	KindArray // fixed size
	KindList  // variable size
)

// DataType describes a column type. Struct and array types nest.
type DataType struct {
	Kind   Kind
	Fields []Field   // KindStruct
	Elem   *DataType // KindArray, KindList
	Size   int       // KindArray
}

// Field is a named column or struct member.
type Field struct {
	Name string
	Type DataType
}

// Schema is an ordered list of top-level columns.
type Schema []Field

var (
	Bool    = DataType{Kind: KindBool}
	Int64   = DataType{Kind: KindInt}
	Float64 = DataType{Kind: KindFloat}
	String  = DataType{Kind: KindString}

	DoubleBondType = StructOf(
		Field{Name: "Position", Type: Int64},
		Field{Name: "Isomerism", Type: Int64},
		Field{Name: "Conjugation", Type: Int64},
	)
	FattyAcidType = StructOf(
		Field{Name: "Carbon", Type: Int64},
		Field{Name: "Bonds", Type: ListOf(DoubleBondType)},
	)
	TriacylglycerolType = StructOf(
		Field{Name: "sn1", Type: FattyAcidType},
		Field{Name: "sn2", Type: FattyAcidType},
		Field{Name: "sn3", Type: FattyAcidType},
	)
)

// StructOf builds a struct type.
func StructOf(fields ...Field) DataType {
	return DataType{Kind: KindStruct, Fields: fields}
}

// ArrayOf builds a fixed-size array type.
func ArrayOf(elem DataType, size int) DataType {
	return DataType{Kind: KindArray, Elem: &elem, Size: size}
}

// ListOf builds a variable-size list type.
func ListOf(elem DataType) DataType {
	return DataType{Kind: KindList, Elem: &elem}
}

// ValueCellType is the {Mean, StandardDeviation, Sample} struct over r replicates.
func ValueCellType(r int) DataType {
	return cellOf(ArrayOf(Float64, r))
}

func cellOf(sample DataType) DataType {
	return StructOf(
		Field{Name: "Mean", Type: Float64},
		Field{Name: "StandardDeviation", Type: Float64},
		Field{Name: "Sample", Type: sample},
	)
}

// String renders the type, e.g. struct<Mean: f64, Sample: array<f64, 2>>.
func (t DataType) String() string {
	switch t.Kind {
	case KindBool:
		return "bool"
	case KindInt:
		return "i64"
	case KindFloat:
		return "f64"
	case KindString:
		return "str"
	case KindStruct:
		parts := make([]string, len(t.Fields))
		for i, f := range t.Fields {
			parts[i] = f.Name + ": " + f.Type.String()
		}
		return "struct<" + strings.Join(parts, ", ") + ">"
	case KindArray:
		return fmt.Sprintf("array<%s, %d>", t.Elem, t.Size)
	case KindList:
		return fmt.Sprintf("list<%s>", t.Elem)
	}
	return "unknown"
}

// Equal compares two types recursively.
func (t DataType) Equal(other DataType) bool {
	return len(mismatches("", t, other)) == 0
}

// Field returns the named field and whether it exists.
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Names returns the column names in order.
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, f := range s {
		names[i] = f.Name
	}
	return names
}

func (s Schema) String() string {
	return StructOf(s...).String()
}

// Validate checks that every expected field is present in got with an
// exactly matching type. Extra fields in got are allowed.
func Validate(expected, got Schema) error {
	var fields []string
	for _, want := range expected {
		have, ok := got.Field(want.Name)
		if !ok {
			fields = append(fields, want.Name+": missing")
			continue
		}
		fields = append(fields, mismatches(want.Name, want.Type, have.Type)...)
	}
	if len(fields) > 0 {
		return &core.SchemaMismatchError{
			Expected: expected.String(),
			Got:      got.String(),
			Fields:   fields,
		}
	}
	return nil
}

// mismatches lists the paths where got differs from want.
func mismatches(path string, want, got DataType) []string {
	if want.Kind != got.Kind {
		return []string{fmt.Sprintf("%s: expected %s, got %s", path, want, got)}
	}
	switch want.Kind {
	case KindStruct:
		var out []string
		gotSchema := Schema(got.Fields)
		for _, f := range want.Fields {
			g, ok := gotSchema.Field(f.Name)
			if !ok {
				out = append(out, path+"."+f.Name+": missing")
				continue
			}
			out = append(out, mismatches(path+"."+f.Name, f.Type, g.Type)...)
		}
		return out
	case KindArray:
		if want.Size != got.Size {
			return []string{fmt.Sprintf("%s: expected %s, got %s", path, want, got)}
		}
		return mismatches(path+"[]", *want.Elem, *got.Elem)
	case KindList:
		return mismatches(path+"[]", *want.Elem, *got.Elem)
	}
	return nil
}

// RawSchema is the declared schema of a raw sample frame for the given pool.
func RawSchema(pool Pool) Schema {
	return Schema{
		{Name: "Label", Type: String},
		{Name: "FattyAcid", Type: FattyAcidType},
		{Name: "sn123", Type: Float64},
		{Name: pool.String(), Type: Float64},
	}
}

// CalcSchema is the declared schema of a calculation frame over r replicates.
func CalcSchema(r int) Schema {
	cell := ValueCellType(r)
	return Schema{
		{Name: "Label", Type: String},
		{Name: "FattyAcid", Type: FattyAcidType},
		{Name: "sn123", Type: cell},
		{Name: "sn2", Type: cell},
		{Name: "sn13", Type: cell},
		{Name: "Factors", Type: StructOf(
			Field{Name: "Enrichment", Type: cell},
			Field{Name: "Selectivity", Type: cell},
		)},
		{Name: "Standard", Type: StructOf(
			Field{Name: "Factor", Type: ArrayOf(Float64, r)},
			Field{Name: "Mask", Type: Bool},
		)},
		{Name: "Threshold", Type: Bool},
	}
}

// CompSchema is the declared schema of a composition frame with n+1 levels.
func CompSchema(levels, r int) Schema {
	keys := make([]Field, levels)
	for i := range keys {
		keys[i] = Field{Name: fmt.Sprintf("Key%d", i), Type: String}
	}
	return Schema{
		{Name: "Threshold", Type: Bool},
		{Name: "Keys", Type: StructOf(keys...)},
		{Name: "Values", Type: ArrayOf(ValueCellType(r), levels)},
		{Name: "Species", Type: ListOf(StructOf(
			Field{Name: "Label", Type: StructOf(
				Field{Name: "sn1", Type: String},
				Field{Name: "sn2", Type: String},
				Field{Name: "sn3", Type: String},
			)},
			Field{Name: "Triacylglycerol", Type: TriacylglycerolType},
			Field{Name: "Value", Type: ValueCellType(r)},
			Field{Name: "Threshold", Type: Bool},
		))},
	}
}
