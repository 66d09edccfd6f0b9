package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Wire shapes of the /generate_flashcard response, one per mode.
var responseSchemas = map[Mode]map[string]any{
	ModeFlashcard: {
		"type":     "object",
		"required": []string{"flashcards"},
		"properties": map[string]any{
			"flashcards": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items":    cardSchema("question", "answer"),
			},
		},
	},
	ModeExplain: {
		"type":     "object",
		"required": []string{"explanation"},
		"properties": map[string]any{
			"explanation": map[string]any{"type": "string", "minLength": 1},
		},
	},
	ModeLanguage: {
		"type":     "object",
		"required": []string{"flashcard"},
		"properties": map[string]any{
			"flashcard": cardSchema("word", "translation", "question", "answer"),
		},
	},
}

func cardSchema(keys ...string) map[string]any {
	props := map[string]any{}
	for _, k := range keys {
		props[k] = map[string]any{"type": "string"}
	}
	return map[string]any{
		"type":       "object",
		"required":   keys,
		"properties": props,
	}
}

var (
	compileOnce sync.Once
	compiled    map[Mode]*jsonschema.Schema
	compileErr  error
)

func compileSchemas() (map[Mode]*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiled = map[Mode]*jsonschema.Schema{}
		for mode, schemaMap := range responseSchemas {
			b, err := json.Marshal(schemaMap)
			if err != nil {
				compileErr = fmt.Errorf("marshal schema: %w", err)
				return
			}
			name := string(mode) + ".json"
			compiler := jsonschema.NewCompiler()
			if err := compiler.AddResource(name, bytes.NewReader(b)); err != nil {
				compileErr = fmt.Errorf("add schema: %w", err)
				return
			}
			schema, err := compiler.Compile(name)
			if err != nil {
				compileErr = fmt.Errorf("compile schema: %w", err)
				return
			}
			compiled[mode] = schema
		}
	})
	return compiled, compileErr
}

// ValidateWire checks a gateway response body against the shape for mode.
func ValidateWire(mode Mode, data []byte) error {
	schemas, err := compileSchemas()
	if err != nil {
		return err
	}
	schema, ok := schemas[mode]
	if !ok {
		return fmt.Errorf("unknown mode %q", mode)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
