package llm

import (
	"fmt"
	"strings"
)

// PromptSchema describes the JSON document a prompt asks the model for.
type PromptSchema struct {
	Name        string        // Schema name (e.g., "LearningPath", "Quiz")
	Description string        // Task description placed before the structure
	Fields      []SchemaField // Expected output fields
	// ListKey asks for an object holding a JSON array of Fields-shaped
	// elements under this key instead of a single object.
	ListKey string
}

// SchemaField defines a single field in the output.
type SchemaField struct {
	Name        string // JSON field name
	Type        string // Type hint: "\"string\"", "[\"string\"]", ...
	Description string // Description for the LLM
	Required    bool   // Whether this field is required
}

// BuildJSONPrompt constructs a prompt that asks for JSON matching schema,
// followed by the caller's context lines.
func BuildJSONPrompt(schema PromptSchema, context string) string {
	var sb strings.Builder

	sb.WriteString(schema.Description)
	sb.WriteString("\n\n")

	if context != "" {
		sb.WriteString(context)
		sb.WriteString("\n\n")
	}

	if schema.ListKey != "" {
		sb.WriteString(fmt.Sprintf("Return ONLY a valid JSON object of the form {\"%s\": [...]} where every array element has this exact structure:\n{\n", schema.ListKey))
	} else {
		sb.WriteString("Return ONLY valid JSON matching this exact structure:\n{\n")
	}
	for i, field := range schema.Fields {
		typeHint := field.Type
		if typeHint == "" {
			typeHint = "\"string\""
		}
		requiredHint := ""
		if field.Required {
			requiredHint = " (required)"
		}
		sb.WriteString(fmt.Sprintf("  \"%s\": %s%s", field.Name, typeHint, requiredHint))
		if field.Description != "" {
			sb.WriteString(fmt.Sprintf(" // %s", field.Description))
		}
		if i < len(schema.Fields)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}\n\n")

	sb.WriteString("IMPORTANT:\n")
	sb.WriteString("- Return ONLY the JSON, no markdown, no explanation, no code blocks.\n")
	return sb.String()
}
