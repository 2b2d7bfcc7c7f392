package blocks

import (
	"fmt"
	"sync"

	"github.com/kaptinlin/jsonschema"
)

// tableSchema accepts any object whose optional "blocks" member is itself an
// object. Entry shapes are not constrained: unusable entries are skipped
// during resolution, not rejected here.
const tableSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "blocks": { "type": "object" }
  }
}`

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func loadSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiledSchema, schemaErr = compiler.Compile([]byte(tableSchema))
		if schemaErr != nil {
			schemaErr = fmt.Errorf("compile schema: %w", schemaErr)
		}
	})
	return compiledSchema, schemaErr
}

func validateSchema(data []byte) error {
	schema, err := loadSchema()
	if err != nil {
		return err
	}
	result := schema.ValidateJSON(data)
	if result.IsValid() {
		return nil
	}
	return fmt.Errorf("schema validation failed: %v", result.Errors)
}
