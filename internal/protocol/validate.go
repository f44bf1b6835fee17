package protocol

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/generate.schema.json
var generateSchemaJSON string

var (
	generateSchemaOnce sync.Once
	generateSchema     *jsonschema.Schema
	generateSchemaErr  error
)

func compiledGenerateSchema() (*jsonschema.Schema, error) {
	generateSchemaOnce.Do(func() {
		generateSchema, generateSchemaErr = jsonschema.CompileString("generate.schema.json", generateSchemaJSON)
	})
	return generateSchema, generateSchemaErr
}

// DecodeGenerate checks raw against the GENERATE schema and decodes it.
func DecodeGenerate(raw []byte) (GenerateMsg, error) {
	var msg GenerateMsg
	s, err := compiledGenerateSchema()
	if err != nil {
		return msg, fmt.Errorf("compile generate schema: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return msg, err
	}
	if err := s.Validate(doc); err != nil {
		return msg, err
	}
	if err := json.Unmarshal(raw, &msg); err != nil {
		return msg, err
	}
	return msg, nil
}
