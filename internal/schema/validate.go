package schema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed grading_result.schema.json
var schemaJSON []byte

var (
	resultSchema *jsonschema.Schema
	validate     = validator.New(validator.WithRequiredStructEnabled())
)

func init() {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("grading_result.schema.json", bytes.NewReader(schemaJSON)); err != nil {
		panic(fmt.Sprintf("schema: add resource: %v", err))
	}
	resultSchema = compiler.MustCompile("grading_result.schema.json")
}

// JSONSchema returns the raw JSON Schema document for the grading result.
func JSONSchema() []byte {
	out := make([]byte, len(schemaJSON))
	copy(out, schemaJSON)
	return out
}

// Validate parses raw JSON and checks it against the grading result contract:
// first the JSON Schema (the strict wire contract), then the struct-level
// constraints. The returned result is normalized (version default, no nil
// lists). Any failure is returned as an error suitable for the repair loop.
func Validate(data []byte) (*GradingResult, error) {
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode grading json: %w", err)
	}

	if err := resultSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("grading result schema: %w", err)
	}

	var result GradingResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decode grading result: %w", err)
	}
	result.Normalize()

	if err := validate.Struct(&result); err != nil {
		return nil, fmt.Errorf("grading result constraints: %w", err)
	}

	return &result, nil
}
