package resource

import (
	"fmt"

	"github.com/spec-kit/resource-api/internal/domain"
	"github.com/spec-kit/resource-api/internal/schema"
)

// Definition declares one resource type: its collection name, field schema,
// and access rules.
type Definition struct {
	// Name is the collection segment in the URL, e.g. "orders".
	Name   string
	Schema schema.Schema
	// PublicRead allows anonymous get/list. Writes always require a
	// principal.
	PublicRead bool
	// ReadPermission guards get/list when PublicRead is false. Empty means
	// any authenticated principal may read.
	ReadPermission domain.Permission
	// WritePermission guards create/replace/patch/delete. Empty defaults
	// to resource.write.
	WritePermission domain.Permission
}

func (d Definition) validate() error {
	if d.Name == "" {
		return fmt.Errorf("resource definition requires a name")
	}
	if len(d.Schema.Fields) == 0 {
		return fmt.Errorf("resource %q declares no fields", d.Name)
	}
	seen := make(map[string]struct{}, len(d.Schema.Fields))
	for _, f := range d.Schema.Fields {
		if f.Name == "" {
			return fmt.Errorf("resource %q has an unnamed field", d.Name)
		}
		if domain.Reserved(f.Name) {
			return fmt.Errorf("resource %q redeclares reserved field %q", d.Name, f.Name)
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("resource %q declares field %q twice", d.Name, f.Name)
		}
		seen[f.Name] = struct{}{}
	}
	return nil
}

func (d Definition) writePermission() domain.Permission {
	if d.WritePermission == "" {
		return domain.PermissionWrite
	}
	return d.WritePermission
}
