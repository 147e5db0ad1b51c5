package entities

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// FieldKind is the value type a catalog field accepts.
type FieldKind string

// Field kinds.
const (
	KindString      FieldKind = "string"
	KindStringArray FieldKind = "string_array"
	KindBool        FieldKind = "bool"
)

// Catalog field names.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldReleaseDate = "releaseDate"
	FieldDevelopers  = "developers"
	FieldPublishers  = "publishers"
	FieldGenres      = "genres"
	FieldPlatforms   = "platforms"
	FieldEngine      = "engine"
	FieldWebsite     = "website"
	FieldCoverImage  = "coverImage"
	FieldMultiplayer = "multiplayer"
	FieldEarlyAccess = "earlyAccess"
)

// Schema maps every correctable catalog field to its kind.
var Schema = map[string]FieldKind{
	FieldTitle:       KindString,
	FieldDescription: KindString,
	FieldReleaseDate: KindString,
	FieldDevelopers:  KindStringArray,
	FieldPublishers:  KindStringArray,
	FieldGenres:      KindStringArray,
	FieldPlatforms:   KindStringArray,
	FieldEngine:      KindString,
	FieldWebsite:     KindString,
	FieldCoverImage:  KindString,
	FieldMultiplayer: KindBool,
	FieldEarlyAccess: KindBool,
}

// RequiredFields must all be non-empty before a record is marked ready.
var RequiredFields = []string{FieldTitle, FieldReleaseDate, FieldDevelopers, FieldPublishers}

var releaseDateRegex = regexp.MustCompile(`^\d{4}(-(0[1-9]|1[0-2])(-(0[1-9]|[12]\d|3[01]))?)?$`)

// SchemaFieldNames returns the sorted field names.
func SchemaFieldNames() []string {
	names := make([]string, 0, len(Schema))
	for name := range Schema {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsClearValue reports whether v removes a field instead of setting it:
// nil, an empty (or blank) string, or an empty array.
func IsClearValue(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	case []string:
		return len(val) == 0
	case []any:
		return len(val) == 0
	default:
		return false
	}
}

// NormalizeValue checks v against the field's kind and returns it in canonical form
// (string, []string or bool). Clear values normalize to nil.
func NormalizeValue(field string, v any) (any, error) {
	kind, ok := Schema[field]
	if !ok {
		return nil, fmt.Errorf("%w: unknown field %q", ErrValidation, field)
	}
	if IsClearValue(v) {
		return nil, nil
	}

	switch kind {
	case KindString:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: field %q expects a string, got %T", ErrValidation, field, v)
		}
		s = strings.TrimSpace(s)
		if field == FieldReleaseDate && !releaseDateRegex.MatchString(s) {
			return nil, fmt.Errorf("%w: field %q must be YYYY, YYYY-MM or YYYY-MM-DD", ErrValidation, field)
		}
		return s, nil
	case KindStringArray:
		return normalizeStringArray(field, v)
	case KindBool:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("%w: field %q expects a boolean, got %T", ErrValidation, field, v)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("%w: field %q has unsupported kind %s", ErrValidation, field, kind)
	}
}

func normalizeStringArray(field string, v any) (any, error) {
	var raw []string
	switch val := v.(type) {
	case []string:
		raw = val
	case []any:
		raw = make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: field %q expects an array of strings, got element %T", ErrValidation, field, item)
			}
			raw = append(raw, s)
		}
	default:
		return nil, fmt.Errorf("%w: field %q expects an array of strings, got %T", ErrValidation, field, v)
	}

	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

// ValuesEqual compares two normalized field values.
func ValuesEqual(a, b any) bool {
	if IsClearValue(a) && IsClearValue(b) {
		return true
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case []string:
		bv, ok := b.([]string)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if av[i] != bv[i] {
				return false
			}
		}
		return true
	default:
		return false
	}
}
