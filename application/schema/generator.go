// Package schema generates JSON schemas for bridge configuration files.
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/reglet-dev/xsd-bridge/domain/entities"
)

// ConfigSchemaID identifies the configuration file schema.
const ConfigSchemaID = "https://github.com/reglet-dev/xsd-bridge/schemas/config.json"

func reflector() *jsonschema.Reflector {
	// Nested structs are expanded inline rather than emitted as $defs.
	return &jsonschema.Reflector{ExpandedStruct: true}
}

func marshal(s *jsonschema.Schema) ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return data, nil
}

// GenerateSchema reflects v into a JSON schema (Draft 2020-12).
func GenerateSchema(v any) ([]byte, error) {
	return marshal(reflector().Reflect(v))
}

// ConfigSchema returns the JSON schema of the processor configuration file.
func ConfigSchema() ([]byte, error) {
	s := reflector().Reflect(&entities.ProcessorConfig{})
	s.ID = jsonschema.ID(ConfigSchemaID)
	s.Title = "xsdbridge configuration"
	return marshal(s)
}
