package schema

// FieldType enumerates the coercible value types a schema field can declare.
type FieldType string

const (
	TypeString FieldType = "string"
	TypeInt    FieldType = "int"
	TypeFloat  FieldType = "float"
	TypeBool   FieldType = "bool"
)

// Format names a well-known string shape checked on top of the base type.
type Format string

const (
	FormatNone  Format = ""
	FormatEmail Format = "email"
)

// Field declares one schema field and its constraints.
type Field struct {
	Name     string
	Type     FieldType
	Required bool
	Unique   bool
	Default  any
	MinLen   *int
	MaxLen   *int
	Min      *float64
	Max      *float64
	Enum     []string
	Format   Format
}

// Schema is the ordered field declaration for one resource type.
type Schema struct {
	Fields []Field
}

// Field returns the declaration for name, if any.
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// UniqueFields returns the fields declared unique within the collection.
func (s Schema) UniqueFields() []Field {
	var out []Field
	for _, f := range s.Fields {
		if f.Unique {
			out = append(out, f)
		}
	}
	return out
}

// IntPtr is a literal helper for schema declarations.
func IntPtr(v int) *int { return &v }

// FloatPtr is a literal helper for schema declarations.
func FloatPtr(v float64) *float64 { return &v }
