// ABOUTME: JSON Schema rendering of a Definition for tool-listing responses.
// ABOUTME: Produces the {"type":"object","properties":...,"required":...} shape MCP clients expect.

package schema

// JSONSchema renders the definition as a JSON Schema object suitable for
// direct marshaling in a tools/list response. Bounds map to minimum/maximum
// for integers and minLength/maxLength (minItems/maxItems for arrays)
// otherwise, mirroring how the fields are enforced.
func (d Definition) JSONSchema() map[string]any {
	properties := make(map[string]any, len(d.Fields))
	var required []string

	for _, f := range d.Fields {
		prop := map[string]any{"type": jsonType(f.Kind)}
		if f.Kind == StringArray {
			prop["items"] = map[string]any{"type": "string"}
		}
		if f.Description != "" {
			prop["description"] = f.Description
		}
		if f.Enum != nil {
			prop["enum"] = f.Enum
		}
		if f.Default != nil {
			prop["default"] = f.Default
		}
		if f.Min != nil {
			prop[boundKey(f.Kind, "min")] = *f.Min
		}
		if f.Max != nil {
			prop[boundKey(f.Kind, "max")] = *f.Max
		}
		properties[f.Name] = prop
		if f.Required {
			required = append(required, f.Name)
		}
	}

	out := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		out["required"] = required
	}
	return out
}

func jsonType(k Kind) string {
	if k == StringArray {
		return "array"
	}
	return string(k)
}

func boundKey(k Kind, side string) string {
	switch k {
	case Integer:
		if side == "min" {
			return "minimum"
		}
		return "maximum"
	case StringArray:
		if side == "min" {
			return "minItems"
		}
		return "maxItems"
	default:
		if side == "min" {
			return "minLength"
		}
		return "maxLength"
	}
}
