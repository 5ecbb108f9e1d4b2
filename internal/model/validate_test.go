package model

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPayload() map[string]any {
	return map[string]any{
		"title":        "Tomato Soup",
		"ingredients":  []any{"4 tomatoes", "1 onion"},
		"instructions": "Chop.\nSimmer.\n\nBlend.",
		"prep_time":    10.0,
		"cook_time":    "25",
		"image":        "https://example.com/soup.jpg",
	}
}

func TestValidate_NormalizesPayload(t *testing.T) {
	r, err := Validate(validPayload())
	require.NoError(t, err)

	assert.Equal(t, "Tomato Soup", r.Title)
	assert.Equal(t, []string{"4 tomatoes", "1 onion"}, r.Ingredients)
	assert.Equal(t, 10.0, r.PrepTime)
	require.NotNil(t, r.CookTime)
	assert.Equal(t, 25.0, *r.CookTime)
	assert.Equal(t, "https://example.com/soup.jpg", r.Image)
	assert.True(t, r.Success, "success defaults to true")
	assert.Empty(t, r.ID)
	assert.Nil(t, r.Extra)
	assert.Equal(t, []string{"Chop.", "Simmer.", "Blend."}, r.Steps())
}

func TestValidate_Idempotent(t *testing.T) {
	inputs := []map[string]any{
		validPayload(),
		{
			"id":           42.0,
			"title":        "  Pancakes ",
			"ingredients":  []any{" flour ", "milk"},
			"instructions": "Mix and fry",
			"prep_time":    "5",
			"success":      false,
			"source":       "https://example.com/pancakes",
		},
	}

	for _, in := range inputs {
		first, err := Validate(in)
		require.NoError(t, err)
		second, err := Validate(first)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	}
}

func TestValidate_PrepTimeCoercion(t *testing.T) {
	asString := validPayload()
	asString["prep_time"] = "12"
	asNumber := validPayload()
	asNumber["prep_time"] = 12

	a, err := Validate(asString)
	require.NoError(t, err)
	b, err := Validate(asNumber)
	require.NoError(t, err)

	assert.Equal(t, 12.0, a.PrepTime)
	assert.Equal(t, a.PrepTime, b.PrepTime)
}

func TestValidate_Image(t *testing.T) {
	empty := validPayload()
	empty["image"] = ""
	r, err := Validate(empty)
	require.NoError(t, err)
	assert.Empty(t, r.Image)
	_, present := r.Map()["image"]
	assert.False(t, present)

	bad := validPayload()
	bad["image"] = "not-a-url"
	_, err = Validate(bad)
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "image", schemaErr.Field)
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(m map[string]any)
		field string
	}{
		{"missing title", func(m map[string]any) { delete(m, "title") }, "title"},
		{"blank title", func(m map[string]any) { m["title"] = "   " }, "title"},
		{"empty ingredients", func(m map[string]any) { m["ingredients"] = []any{} }, "ingredients"},
		{"blank ingredient", func(m map[string]any) { m["ingredients"] = []any{"salt", ""} }, "ingredients"},
		{"ingredients not a list", func(m map[string]any) { m["ingredients"] = "salt" }, "ingredients"},
		{"empty instructions", func(m map[string]any) { m["instructions"] = "" }, "instructions"},
		{"missing prep time", func(m map[string]any) { delete(m, "prep_time") }, "prep_time"},
		{"non numeric prep time", func(m map[string]any) { m["prep_time"] = "ten" }, "prep_time"},
		{"negative cook time", func(m map[string]any) { m["cook_time"] = -1 }, "cook_time"},
		{"success not bool", func(m map[string]any) { m["success"] = "yes" }, "success"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validPayload()
			tt.edit(m)

			_, err := Validate(m)
			var schemaErr *SchemaError
			require.ErrorAs(t, err, &schemaErr)
			assert.Equal(t, tt.field, schemaErr.Field)
			assert.False(t, IsValid(m))
		})
	}
}

func TestValidate_FirstFailingField(t *testing.T) {
	_, err := Validate(map[string]any{"image": "nope"})
	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, "title", schemaErr.Field)
}

func TestValidate_PreservesUnknownFields(t *testing.T) {
	m := validPayload()
	m["servings"] = 4.0
	m["source"] = map[string]any{"site": "example.com"}

	r, err := Validate(m)
	require.NoError(t, err)
	assert.Equal(t, 4.0, r.Extra["servings"])

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var decoded Recipe
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, r, decoded)
}

func TestValidate_RawJSON(t *testing.T) {
	r, err := Validate([]byte(`{"title":"Tea","ingredients":["tea"],"instructions":"Steep","prep_time":"3","cook_time":null}`))
	require.NoError(t, err)
	assert.Equal(t, 3.0, r.PrepTime)
	assert.Nil(t, r.CookTime)

	_, err = Validate([]byte(`[1,2,3]`))
	assert.Error(t, err)

	var nilRecipe *Recipe
	assert.False(t, IsValid(nilRecipe))
	assert.False(t, IsValid(42))
}

func TestUnmarshalJSON_RejectsInvalid(t *testing.T) {
	var r Recipe
	err := json.Unmarshal([]byte(`{"title":"","ingredients":["x"],"instructions":"y","prep_time":1}`), &r)
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "title", schemaErr.Field)
}

func TestValidatePatch(t *testing.T) {
	p, err := ValidatePatch(map[string]any{"prep_time": "15", "image": "", "id": "ignored", "notes": "family"})
	require.NoError(t, err)
	assert.Equal(t, 15.0, p["prep_time"])
	assert.Contains(t, p, "image")
	assert.Nil(t, p["image"])
	assert.NotContains(t, p, "id")
	assert.Equal(t, "family", p["notes"])

	_, err = ValidatePatch(map[string]any{"title": nil})
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "title", schemaErr.Field)

	_, err = ValidatePatch(map[string]any{"ingredients": []any{}})
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "ingredients", schemaErr.Field)
}

func TestApply_RevalidatesMergedRecipe(t *testing.T) {
	base, err := Validate(validPayload())
	require.NoError(t, err)

	p, err := ValidatePatch(map[string]any{"prep_time": 20, "cook_time": nil})
	require.NoError(t, err)

	merged, err := base.Apply(p)
	require.NoError(t, err)
	assert.Equal(t, 20.0, merged.PrepTime)
	assert.Nil(t, merged.CookTime)
	assert.Equal(t, base.Title, merged.Title)

	broken := base
	broken.Ingredients = nil
	_, err = broken.Apply(p)
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "ingredients", schemaErr.Field)
}
