package model

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var urlValidator = validator.New()

// field describes how one recipe key is checked, normalized, and assigned.
type field struct {
	key      string
	required bool
	// parse receives a present, non-nil raw value and returns the normalized
	// value, or a reason when the value is invalid. A nil result means absent.
	parse  func(raw any) (any, string)
	assign func(r *Recipe, v any)
}

var fields = []field{
	{
		key:      "title",
		required: true,
		parse:    parseNonEmptyString,
		assign:   func(r *Recipe, v any) { r.Title = v.(string) },
	},
	{
		key:      "ingredients",
		required: true,
		parse:    parseIngredients,
		assign:   func(r *Recipe, v any) { r.Ingredients = v.([]string) },
	},
	{
		key:      "instructions",
		required: true,
		parse:    parseNonEmptyString,
		assign:   func(r *Recipe, v any) { r.Instructions = v.(string) },
	},
	{
		key:      "prep_time",
		required: true,
		parse:    parseRequiredNumber,
		assign:   func(r *Recipe, v any) { r.PrepTime = v.(float64) },
	},
	{
		key:   "cook_time",
		parse: parseOptionalNumber,
		assign: func(r *Recipe, v any) {
			if v == nil {
				r.CookTime = nil
				return
			}
			n := v.(float64)
			r.CookTime = &n
		},
	},
	{
		key:   "image",
		parse: parseImage,
		assign: func(r *Recipe, v any) {
			if v == nil {
				r.Image = ""
				return
			}
			r.Image = v.(string)
		},
	},
	{
		key: "success",
		parse: func(raw any) (any, string) {
			b, ok := raw.(bool)
			if !ok {
				return nil, "must be a boolean"
			}
			return b, ""
		},
		assign: func(r *Recipe, v any) {
			if v == nil {
				r.Success = true
				return
			}
			r.Success = v.(bool)
		},
	},
	{
		key:   "id",
		parse: parseID,
		assign: func(r *Recipe, v any) {
			if v == nil {
				r.ID = ""
				return
			}
			r.ID = v.(string)
		},
	},
}

var knownKeys = func() map[string]bool {
	keys := make(map[string]bool, len(fields))
	for _, f := range fields {
		keys[f.key] = true
	}
	return keys
}()

// Validate checks input against the recipe schema and returns the normalized
// recipe. Accepted inputs are Recipe, *Recipe, map[string]any and raw JSON
// ([]byte or json.RawMessage). The returned error is a *SchemaError naming
// the first failing field.
func Validate(input any) (Recipe, error) {
	m, err := toFieldMap(input)
	if err != nil {
		return Recipe{}, err
	}

	var r Recipe
	for _, f := range fields {
		v, err := f.normalize(m)
		if err != nil {
			return Recipe{}, err
		}
		f.assign(&r, v)
	}
	r.Extra = extraFields(m)
	return r, nil
}

// IsValid reports whether input satisfies the recipe schema.
func IsValid(input any) bool {
	_, err := Validate(input)
	return err == nil
}

// ValidatePatch validates only the keys present in input. Required fields
// may not be cleared; "id" is ignored because the identifier is addressed
// separately.
func ValidatePatch(input map[string]any) (Patch, error) {
	p := make(Patch, len(input))
	for _, f := range fields {
		if f.key == "id" {
			continue
		}
		if _, ok := input[f.key]; !ok {
			continue
		}
		v, err := f.normalize(input)
		if err != nil {
			return nil, err
		}
		p[f.key] = v
	}
	for k, v := range input {
		if !knownKeys[k] {
			p[k] = v
		}
	}
	return p, nil
}

func (f field) normalize(m map[string]any) (any, error) {
	raw, ok := m[f.key]
	if !ok || raw == nil {
		if f.required {
			return nil, &SchemaError{Field: f.key, Reason: "is required"}
		}
		return nil, nil
	}
	v, reason := f.parse(raw)
	if reason != "" {
		return nil, &SchemaError{Field: f.key, Reason: reason}
	}
	if v == nil && f.required {
		return nil, &SchemaError{Field: f.key, Reason: "is required"}
	}
	return v, nil
}

func toFieldMap(input any) (map[string]any, error) {
	switch v := input.(type) {
	case Recipe:
		return v.Map(), nil
	case *Recipe:
		if v == nil {
			return nil, &SchemaError{Field: "recipe", Reason: "is required"}
		}
		return v.Map(), nil
	case map[string]any:
		return v, nil
	case json.RawMessage:
		return decodeFieldMap(v)
	case []byte:
		return decodeFieldMap(v)
	default:
		return nil, &SchemaError{Field: "recipe", Reason: fmt.Sprintf("unsupported input type %T", input)}
	}
}

func decodeFieldMap(data []byte) (map[string]any, error) {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil || m == nil {
		return nil, &SchemaError{Field: "recipe", Reason: "must be a JSON object"}
	}
	return m, nil
}

func extraFields(m map[string]any) map[string]any {
	var extra map[string]any
	for k, v := range m {
		if knownKeys[k] {
			continue
		}
		if extra == nil {
			extra = make(map[string]any)
		}
		extra[k] = v
	}
	return extra
}

func parseNonEmptyString(raw any) (any, string) {
	s, ok := raw.(string)
	if !ok {
		return nil, "must be a string"
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, "must not be empty"
	}
	return s, ""
}

func parseIngredients(raw any) (any, string) {
	var items []any
	switch v := raw.(type) {
	case []string:
		for _, s := range v {
			items = append(items, s)
		}
	case []any:
		items = v
	default:
		return nil, "must be a list of strings"
	}
	if len(items) == 0 {
		return nil, "must contain at least one ingredient"
	}

	out := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok || strings.TrimSpace(s) == "" {
			return nil, fmt.Sprintf("item %d must be a non-empty string", i)
		}
		out = append(out, strings.TrimSpace(s))
	}
	return out, ""
}

func parseRequiredNumber(raw any) (any, string) {
	return parseNumber(raw)
}

func parseOptionalNumber(raw any) (any, string) {
	if s, ok := raw.(string); ok && strings.TrimSpace(s) == "" {
		return nil, ""
	}
	return parseNumber(raw)
}

// parseNumber accepts JSON numbers and numeric strings.
func parseNumber(raw any) (any, string) {
	var n float64
	switch v := raw.(type) {
	case float64:
		n = v
	case float32:
		n = float64(v)
	case int:
		n = float64(v)
	case int32:
		n = float64(v)
	case int64:
		n = float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return nil, "must be a number"
		}
		n = f
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil, "must be a number"
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, "must be a number or numeric string"
		}
		n = f
	default:
		return nil, "must be a number"
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return nil, "must be a finite number"
	}
	if n < 0 {
		return nil, "must not be negative"
	}
	return n, ""
}

func parseImage(raw any) (any, string) {
	s, ok := raw.(string)
	if !ok {
		return nil, "must be a string"
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ""
	}
	if err := urlValidator.Var(s, "url"); err != nil {
		return nil, "must be a valid URL"
	}
	if u, err := url.Parse(s); err != nil || u.Host == "" {
		return nil, "must be a valid URL"
	}
	return s, ""
}

func parseID(raw any) (any, string) {
	switch v := raw.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, ""
		}
		return v, ""
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), ""
	case int:
		return strconv.Itoa(v), ""
	case int64:
		return strconv.FormatInt(v, 10), ""
	default:
		return nil, "must be a string"
	}
}
