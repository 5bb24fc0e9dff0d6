package content

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// themeSchema is the structural contract for theme dataset files: a
// top-level object mapping theme keys to documents, each document an
// object limited to the known shape fields.
const themeSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": {
    "type": "object",
    "properties": {
      "title":        {"type": "string"},
      "title_en":     {"type": "string"},
      "summary":      {"type": "string"},
      "translations": {"type": "object", "additionalProperties": {"type": "string"}},
      "vocab":        {"type": "object", "additionalProperties": {"type": "string"}},
      "categories":   {"type": "object", "additionalProperties": {"type": "object", "additionalProperties": {"type": "string"}}},
      "topics":       {"type": "object", "additionalProperties": {"type": "object", "additionalProperties": {"type": "string"}}},
      "expressions": {
        "type": "object",
        "additionalProperties": {
          "type": "object",
          "properties": {
            "en": {"anyOf": [{"type": "string"}, {"type": "array", "items": {"type": "string"}}]},
            "fr": {"type": "string"}
          }
        }
      },
      "history":   {"type": "array", "items": {"type": "string"}},
      "fun_facts": {"type": "array", "items": {"type": "string"}},
      "martyrs":   {"type": "array", "items": {"type": "object"}},
      "recettes":  {"type": "array", "items": {"type": "object"}}
    },
    "additionalProperties": true
  }
}`

var compiledThemeSchema = gojsonschema.NewStringLoader(themeSchema)

// validateThemeDocument checks a raw theme dataset file against the
// schema before it is admitted into the catalog.
func validateThemeDocument(data []byte) error {
	result, err := gojsonschema.Validate(compiledThemeSchema, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("validating theme document: %w", err)
	}
	if !result.Valid() {
		errs := result.Errors()
		if len(errs) > 0 {
			return fmt.Errorf("theme document invalid: %s", errs[0])
		}
		return fmt.Errorf("theme document invalid")
	}
	return nil
}
