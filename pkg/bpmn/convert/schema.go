package convert

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/tallyfy/migrator/pkg/model"
)

// templateSchema is the shape the Tallyfy loader accepts. Converted
// templates are checked against it before anything leaves this package, so a
// table bug fails the conversion instead of the upload.
var templateSchema = map[string]any{
	"type":     "object",
	"required": []string{"title", "steps"},
	"properties": map[string]any{
		"title": map[string]any{
			"type":      "string",
			"minLength": 1,
		},
		"steps": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []string{"title", "type", "position"},
				"properties": map[string]any{
					"title": map[string]any{"type": "string", "minLength": 1},
					"type": map[string]any{
						"enum": []string{"task", "approve", "expiring", "email"},
					},
					"position": map[string]any{"type": "integer", "minimum": 1},
					"deadline": map[string]any{
						"type":     "object",
						"required": []string{"value", "unit"},
						"properties": map[string]any{
							"value": map[string]any{"type": "integer", "minimum": 0},
							"unit": map[string]any{
								"enum": []string{"minutes", "hours", "days", "weeks", "months"},
							},
						},
					},
				},
			},
		},
		"captures": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []string{"label", "type"},
				"properties": map[string]any{
					"label": map[string]any{"type": "string", "minLength": 1},
					"type": map[string]any{
						"enum": []string{
							"text", "textarea", "radio", "select", "multiselect",
							"date", "file", "table", "assignees_form",
						},
					},
				},
			},
		},
		"rules": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []string{"capture_ref", "operator", "action", "target_steps"},
				"properties": map[string]any{
					"capture_ref": map[string]any{"type": "string", "minLength": 1},
					"operator": map[string]any{
						"enum": []string{"equals", "not_equals", "contains", "greater_than"},
					},
					"action": map[string]any{"enum": []string{"show", "hide"}},
					"target_steps": map[string]any{
						"type":     "array",
						"minItems": 1,
						"items":    map[string]any{"type": "string"},
					},
				},
			},
		},
	},
}

// ValidateTemplate checks a template against the output schema.
func ValidateTemplate(template *model.Template) error {
	payload, err := json.Marshal(template)
	if err != nil {
		return fmt.Errorf("failed to serialize template: %w", err)
	}

	schemaLoader := gojsonschema.NewGoLoader(templateSchema)
	documentLoader := gojsonschema.NewBytesLoader(payload)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("failed to validate template: %w", err)
	}

	if !result.Valid() {
		var issues []string
		for _, issue := range result.Errors() {
			issues = append(issues, issue.String())
		}

		return fmt.Errorf("template schema validation failed: %s", strings.Join(issues, "; "))
	}

	return nil
}
