package program

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/claude/freeplans/internal/models"
)

const templateSchemaURL = "workout_template.json"

// templateSchema guards the invariants a stored template must hold.
const templateSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["id", "name", "equipment", "difficulty", "goals", "days_per_week", "schedule", "confidence", "method"],
  "properties": {
    "id": {"type": "string", "minLength": 36},
    "name": {"type": "string", "minLength": 1},
    "equipment": {"type": "array", "minItems": 1, "items": {"type": "string"}},
    "difficulty": {"enum": ["beginner", "intermediate", "advanced"]},
    "goals": {"type": "array", "minItems": 1, "items": {"type": "string"}},
    "days_per_week": {"type": "integer", "minimum": 1},
    "confidence": {"type": "number", "minimum": 0, "maximum": 1},
    "method": {"enum": ["section_parse", "keyword_scan", "fallback"]},
    "warnings": {"type": "array", "items": {"type": "string"}},
    "schedule": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["day_number", "label", "exercises"],
        "properties": {
          "day_number": {"type": "integer", "minimum": 1},
          "label": {"type": "string", "minLength": 1},
          "exercises": {
            "type": "array",
            "minItems": 1,
            "items": {
              "type": "object",
              "required": ["id", "name", "sets", "reps", "rest_seconds", "match_strategy"],
              "properties": {
                "name": {"type": "string", "minLength": 3, "maxLength": 50},
                "sets": {"type": "integer", "minimum": 1, "maximum": 20},
                "reps": {"type": "string", "minLength": 1},
                "rest_seconds": {"type": "integer", "minimum": 0},
                "match_strategy": {"type": "string", "minLength": 1}
              }
            }
          }
        }
      }
    }
  }
}`

var compiledTemplateSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(templateSchemaURL, strings.NewReader(templateSchema)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile(templateSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
})

// ValidateTemplate checks the JSON form of tpl against the template schema.
func ValidateTemplate(tpl *models.WorkoutTemplate) error {
	schema, err := compiledTemplateSchema()
	if err != nil {
		return err
	}
	b, err := json.Marshal(tpl)
	if err != nil {
		return fmt.Errorf("marshal template: %w", err)
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("unmarshal template: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("template does not match schema: %w", err)
	}
	return nil
}
