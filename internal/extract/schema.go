package extract

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/ticketscan/ticketscan/constants"
)

// ResultSchema is the JSON Schema for a serialized ExtractionResult. It is
// the documented integration boundary for the confidence scale: every
// confidence in this document is a number in [0,1]; consumers using another
// scale must convert explicitly on their side.
func ResultSchema() map[string]any {
	confidence := map[string]any{"type": "number", "minimum": 0, "maximum": 1}
	scalarField := func(valueType string) map[string]any {
		return map[string]any{
			"type": "object",
			"properties": map[string]any{
				"value":      map[string]any{"type": valueType},
				"confidence": confidence,
				"raw_text":   map[string]any{"type": "string"},
			},
			"required":             []string{"value", "confidence"},
			"additionalProperties": false,
		}
	}
	amountField := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"value":      map[string]any{"type": "number", "minimum": 0},
			"currency":   map[string]any{"type": "string", "pattern": "^[A-Z]{3}$"},
			"confidence": confidence,
			"raw_text":   map[string]any{"type": "string"},
		},
		"required":             []string{"value", "currency", "confidence"},
		"additionalProperties": false,
	}
	dateField := scalarField("string")
	dateField["properties"].(map[string]any)["value"] = map[string]any{
		"type": "string", "pattern": `^\d{4}-\d{2}-\d{2}$`,
	}

	return map[string]any{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"type":    "object",
		"properties": map[string]any{
			"merchant_name":  scalarField("string"),
			"date":           dateField,
			"total_amount":   amountField,
			"subtotal":       amountField,
			"tax":            amountField,
			"payment_method": scalarField("string"),
			"receipt_number": scalarField("string"),
			"language":       map[string]any{"type": "string", "enum": []string{"fr", "en"}},
			"receipt_type":   map[string]any{"type": "string", "enum": constants.ReceiptTypesAsStrings()},
			"items": map[string]any{
				"type":     "array",
				"maxItems": maxItems,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"name":        map[string]any{"type": "string", "minLength": 2},
						"quantity":    map[string]any{"type": "number", "minimum": 0},
						"unit_price":  map[string]any{"type": "number", "minimum": 0},
						"total_price": map[string]any{"type": "number", "minimum": 0},
						"category":    map[string]any{"type": "string"},
					},
					"required":             []string{"name", "quantity", "total_price"},
					"additionalProperties": false,
				},
			},
			"summary": map[string]any{"type": "string", "maxLength": summaryMaxLen},
		},
		"required": []string{
			"merchant_name", "date", "total_amount", "payment_method",
			"receipt_number", "language", "receipt_type", "summary",
		},
		"additionalProperties": false,
	}
}

// ValidateResultJSON validates a serialized result document against
// ResultSchema.
func ValidateResultJSON(data []byte) error {
	b, err := json.Marshal(ResultSchema())
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("result.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("result.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal result: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("result does not match schema: %w", err)
	}
	return nil
}
