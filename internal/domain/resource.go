package domain

// Reserved document fields maintained by the CRUD service, never by callers.
const (
	FieldID        = "id"
	FieldCreatedAt = "created_at"
	FieldUpdatedAt = "updated_at"
)

// Document is the schemaless representation of one resource instance. The
// CRUD service owns the reserved fields; everything else is declared by the
// resource's schema.
type Document map[string]any

// Clone returns a shallow copy. Field values are scalars after validation,
// so a shallow copy is sufficient to isolate callers from store internals.
func (d Document) Clone() Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Key returns the document's id field, or "" when unset.
func (d Document) Key() string {
	id, _ := d[FieldID].(string)
	return id
}

// Reserved reports whether the field name is service-managed.
func Reserved(field string) bool {
	return field == FieldID || field == FieldCreatedAt || field == FieldUpdatedAt
}
