// Package parser loads bridge configuration files.
package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/reglet-dev/xsd-bridge/domain/entities"
	"github.com/reglet-dev/xsd-bridge/domain/ports"
	"gopkg.in/yaml.v3"
)

// YamlConfigParser implements ConfigParser for YAML.
type YamlConfigParser struct {
	strict bool
}

// ParserOption configures a YamlConfigParser.
type ParserOption func(*YamlConfigParser)

// WithStrict rejects keys that do not map to a configuration field.
func WithStrict(enabled bool) ParserOption {
	return func(p *YamlConfigParser) {
		p.strict = enabled
	}
}

// NewYamlConfigParser creates a new YamlConfigParser. Unknown keys are
// rejected unless WithStrict(false) is given.
func NewYamlConfigParser(opts ...ParserOption) ports.ConfigParser {
	p := &YamlConfigParser{strict: true}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse unmarshals YAML bytes into a ProcessorConfig struct. An empty
// document yields the zero configuration.
func (p *YamlConfigParser) Parse(data []byte) (*entities.ProcessorConfig, error) {
	var cfg entities.ProcessorConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(p.strict)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
