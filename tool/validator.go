package tool

import (
	"encoding/json"
	"fmt"
)

// Validator checks tool inputs against their schemas before execution.
// Model-produced inputs are untrusted; a schema violation is reported back
// to the model as a tool error instead of reaching the tool.
type Validator struct{}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateInput validates input against a tool's schema. Empty input is
// treated as an empty object, which passes unless the schema requires
// fields.
func (v *Validator) ValidateInput(schema Schema, input json.RawMessage) error {
	if schema.Type != "object" {
		return fmt.Errorf("schema type must be 'object', got '%s'", schema.Type)
	}

	inputMap := map[string]any{}
	if len(input) > 0 {
		if err := json.Unmarshal(input, &inputMap); err != nil {
			return fmt.Errorf("invalid JSON input: %w", err)
		}
	}

	for _, required := range schema.Required {
		if _, exists := inputMap[required]; !exists {
			return fmt.Errorf("missing required field: %s", required)
		}
	}

	for propName, propDef := range schema.Properties {
		value, exists := inputMap[propName]
		if !exists {
			continue // optional field not provided
		}
		if err := v.validateProperty(propName, propDef, value); err != nil {
			return err
		}
	}

	return nil
}

func (v *Validator) validateProperty(name string, def PropertyDef, value any) error {
	if value == nil {
		return nil // allow null values
	}

	if err := v.validateType(name, def.Type, value); err != nil {
		return err
	}

	if len(def.Enum) > 0 {
		strVal, ok := value.(string)
		if !ok {
			return fmt.Errorf("field '%s': expected string for enum validation, got %T", name, value)
		}
		valid := false
		for _, e := range def.Enum {
			if strVal == e {
				valid = true
				break
			}
		}
		if !valid {
			return fmt.Errorf("field '%s': value '%s' not in allowed values %v", name, strVal, def.Enum)
		}
	}

	if def.Type == "number" || def.Type == "integer" {
		if numVal, ok := value.(float64); ok {
			if def.Minimum != nil && numVal < *def.Minimum {
				return fmt.Errorf("field '%s': value %v is less than minimum %v", name, numVal, *def.Minimum)
			}
			if def.Maximum != nil && numVal > *def.Maximum {
				return fmt.Errorf("field '%s': value %v exceeds maximum %v", name, numVal, *def.Maximum)
			}
		}
	}

	if def.Type == "string" {
		if strVal, ok := value.(string); ok {
			if def.MinLength != nil && len(strVal) < *def.MinLength {
				return fmt.Errorf("field '%s': string length %d is less than minimum %d", name, len(strVal), *def.MinLength)
			}
			if def.MaxLength != nil && len(strVal) > *def.MaxLength {
				return fmt.Errorf("field '%s': string length %d exceeds maximum %d", name, len(strVal), *def.MaxLength)
			}
		}
	}

	if def.Type == "array" && def.Items != nil {
		if arr, ok := value.([]any); ok {
			for i, item := range arr {
				if err := v.validateProperty(fmt.Sprintf("%s[%d]", name, i), *def.Items, item); err != nil {
					return err
				}
			}
		}
	}

	if def.Type == "object" && def.Properties != nil {
		if obj, ok := value.(map[string]any); ok {
			for propName, propDef := range def.Properties {
				if propVal, exists := obj[propName]; exists {
					if err := v.validateProperty(fmt.Sprintf("%s.%s", name, propName), propDef, propVal); err != nil {
						return err
					}
				}
			}
		}
	}

	return nil
}

// validateType checks a decoded JSON value against the declared type. Values
// come from encoding/json, so numbers are always float64.
func (v *Validator) validateType(name string, expectedType string, value any) error {
	switch expectedType {
	case "string":
		if _, ok := value.(string); !ok {
			return fmt.Errorf("field '%s': expected string, got %T", name, value)
		}
	case "number":
		if _, ok := value.(float64); !ok {
			return fmt.Errorf("field '%s': expected number, got %T", name, value)
		}
	case "integer":
		numVal, ok := value.(float64)
		if !ok {
			return fmt.Errorf("field '%s': expected integer, got %T", name, value)
		}
		if numVal != float64(int64(numVal)) {
			return fmt.Errorf("field '%s': expected integer, got float %v", name, numVal)
		}
	case "boolean":
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("field '%s': expected boolean, got %T", name, value)
		}
	case "array":
		if _, ok := value.([]any); !ok {
			return fmt.Errorf("field '%s': expected array, got %T", name, value)
		}
	case "object":
		if _, ok := value.(map[string]any); !ok {
			return fmt.Errorf("field '%s': expected object, got %T", name, value)
		}
	}

	return nil
}
