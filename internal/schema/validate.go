package schema

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/spec-kit/resource-api/internal/domain"
	"github.com/spec-kit/resource-api/pkg/util"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Validate checks a full payload against the schema: presence of required
// fields, type coercion, and declared constraints. All field errors are
// collected before returning so the caller gets a complete report at once.
// Unknown and reserved fields are rejected rather than silently dropped.
func Validate(s Schema, payload map[string]any) (domain.Document, []util.FieldError) {
	out := make(domain.Document, len(payload))
	var errs []util.FieldError

	for name := range payload {
		if domain.Reserved(name) {
			errs = append(errs, util.FieldError{Field: name, Message: "field is managed by the service"})
			continue
		}
		if _, ok := s.Field(name); !ok {
			errs = append(errs, util.FieldError{Field: name, Message: "unknown field"})
		}
	}

	for _, f := range s.Fields {
		raw, present := payload[f.Name]
		if !present {
			if f.Required {
				errs = append(errs, util.FieldError{Field: f.Name, Message: "required field is missing"})
			}
			continue
		}
		val, err := checkField(f, raw)
		if err != nil {
			errs = append(errs, *err)
			continue
		}
		out[f.Name] = val
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return out, nil
}

// ValidatePartial checks only the fields present in the payload, for PATCH
// semantics. Required-field presence is not enforced.
func ValidatePartial(s Schema, payload map[string]any) (domain.Document, []util.FieldError) {
	out := make(domain.Document, len(payload))
	var errs []util.FieldError

	for name, raw := range payload {
		if domain.Reserved(name) {
			errs = append(errs, util.FieldError{Field: name, Message: "field is managed by the service"})
			continue
		}
		f, ok := s.Field(name)
		if !ok {
			errs = append(errs, util.FieldError{Field: name, Message: "unknown field"})
			continue
		}
		val, err := checkField(f, raw)
		if err != nil {
			errs = append(errs, *err)
			continue
		}
		out[name] = val
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return out, nil
}

// ApplyDefaults fills every schema field absent from doc with its declared
// default (nil when none). This implements full-replace semantics: omitted
// fields revert to defaults instead of surviving from the previous version.
func ApplyDefaults(s Schema, doc domain.Document) domain.Document {
	for _, f := range s.Fields {
		if _, ok := doc[f.Name]; !ok {
			doc[f.Name] = f.Default
		}
	}
	return doc
}

func checkField(f Field, raw any) (any, *util.FieldError) {
	val, ok := coerce(f.Type, raw)
	if !ok {
		return nil, &util.FieldError{Field: f.Name, Message: fmt.Sprintf("expected %s", f.Type)}
	}

	switch f.Type {
	case TypeString:
		s := val.(string)
		if f.MinLen != nil && len(s) < *f.MinLen {
			return nil, &util.FieldError{Field: f.Name, Message: fmt.Sprintf("length must be at least %d", *f.MinLen)}
		}
		if f.MaxLen != nil && len(s) > *f.MaxLen {
			return nil, &util.FieldError{Field: f.Name, Message: fmt.Sprintf("length must be at most %d", *f.MaxLen)}
		}
		if len(f.Enum) > 0 && !contains(f.Enum, s) {
			return nil, &util.FieldError{Field: f.Name, Message: fmt.Sprintf("must be one of: %s", strings.Join(f.Enum, ", "))}
		}
		if f.Format == FormatEmail && !emailPattern.MatchString(s) {
			return nil, &util.FieldError{Field: f.Name, Message: "must be a valid email address"}
		}
	case TypeInt:
		n := float64(val.(int64))
		if f.Min != nil && n < *f.Min {
			return nil, &util.FieldError{Field: f.Name, Message: fmt.Sprintf("must be at least %v", *f.Min)}
		}
		if f.Max != nil && n > *f.Max {
			return nil, &util.FieldError{Field: f.Name, Message: fmt.Sprintf("must be at most %v", *f.Max)}
		}
	case TypeFloat:
		n := val.(float64)
		if f.Min != nil && n < *f.Min {
			return nil, &util.FieldError{Field: f.Name, Message: fmt.Sprintf("must be at least %v", *f.Min)}
		}
		if f.Max != nil && n > *f.Max {
			return nil, &util.FieldError{Field: f.Name, Message: fmt.Sprintf("must be at most %v", *f.Max)}
		}
	}

	return val, nil
}

// coerce normalizes a decoded JSON value to the declared field type.
// JSON numbers arrive as float64; ints must be integral to pass.
func coerce(t FieldType, raw any) (any, bool) {
	switch t {
	case TypeString:
		s, ok := raw.(string)
		return s, ok
	case TypeBool:
		b, ok := raw.(bool)
		return b, ok
	case TypeInt:
		switch v := raw.(type) {
		case int:
			return int64(v), true
		case int64:
			return v, true
		case float64:
			if v != math.Trunc(v) {
				return nil, false
			}
			return int64(v), true
		}
		return nil, false
	case TypeFloat:
		switch v := raw.(type) {
		case float64:
			return v, true
		case int:
			return float64(v), true
		case int64:
			return float64(v), true
		}
		return nil, false
	}
	return nil, false
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
