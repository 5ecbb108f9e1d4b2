package model

import (
	"encoding/json"
	"strings"
)

// Recipe is the canonical, validated shape of a recipe. Values of this type
// obtained through Validate (or JSON decoding) always satisfy the schema.
type Recipe struct {
	ID           string
	Title        string
	Ingredients  []string
	Instructions string
	PrepTime     float64
	CookTime     *float64
	Image        string
	Success      bool
	// Extra keeps fields the schema does not know about so they survive a
	// round trip through storage.
	Extra map[string]any
}

// Patch is a validated partial recipe keyed by JSON field name. A nil value
// clears an optional field.
type Patch map[string]any

// Steps splits the instructions into non-empty lines.
func (r Recipe) Steps() []string {
	var steps []string
	for _, line := range strings.Split(r.Instructions, "\n") {
		if s := strings.TrimSpace(line); s != "" {
			steps = append(steps, s)
		}
	}
	return steps
}

// Map returns the recipe as a JSON-style field map, extra fields included.
func (r Recipe) Map() map[string]any {
	m := make(map[string]any, len(r.Extra)+8)
	for k, v := range r.Extra {
		m[k] = v
	}
	if r.ID != "" {
		m["id"] = r.ID
	}
	m["title"] = r.Title
	m["ingredients"] = append([]string(nil), r.Ingredients...)
	m["instructions"] = r.Instructions
	m["prep_time"] = r.PrepTime
	if r.CookTime != nil {
		m["cook_time"] = *r.CookTime
	}
	if r.Image != "" {
		m["image"] = r.Image
	}
	m["success"] = r.Success
	return m
}

// Apply merges a patch into the recipe and validates the merged result.
func (r Recipe) Apply(p Patch) (Recipe, error) {
	m := r.Map()
	for k, v := range p {
		if v == nil {
			delete(m, k)
			continue
		}
		m[k] = v
	}
	return Validate(m)
}

func (r Recipe) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Map())
}

// UnmarshalJSON decodes and validates a recipe, so a decoded Recipe is
// always a valid one.
func (r *Recipe) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return &SchemaError{Field: "recipe", Reason: "must be a JSON object"}
	}
	v, err := Validate(m)
	if err != nil {
		return err
	}
	*r = v
	return nil
}
