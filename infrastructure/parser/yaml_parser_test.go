package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/xsd-bridge/domain/entities"
)

func TestYamlConfigParser_Parse(t *testing.T) {
	data := []byte(`
cwd: /srv/docs
resources_dir: /srv/resources
output_file: report.xml
module: engines/xerces.wasm
max_request_size: 4096
parameters:
  strict:
    type: xs:boolean
    value: "true"
  limit:
    type: xs:integer
    value: "10"
properties:
  encoding: UTF-8
`)

	cfg, err := NewYamlConfigParser().Parse(data)
	require.NoError(t, err)

	assert.Equal(t, &entities.ProcessorConfig{
		Cwd:            "/srv/docs",
		ResourcesDir:   "/srv/resources",
		OutputFile:     "report.xml",
		Module:         "engines/xerces.wasm",
		MaxRequestSize: 4096,
		Parameters: map[string]entities.ParameterConfig{
			"strict": {Type: "xs:boolean", Value: "true"},
			"limit":  {Type: "xs:integer", Value: "10"},
		},
		Properties: map[string]string{"encoding": "UTF-8"},
	}, cfg)
}

func TestYamlConfigParser_Empty(t *testing.T) {
	cfg, err := NewYamlConfigParser().Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, &entities.ProcessorConfig{}, cfg)
}

func TestYamlConfigParser_UnknownKeys(t *testing.T) {
	data := []byte("cwd: /a\nworkdir: /b\n")

	_, err := NewYamlConfigParser().Parse(data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "workdir")

	cfg, err := NewYamlConfigParser(WithStrict(false)).Parse(data)
	require.NoError(t, err)
	assert.Equal(t, "/a", cfg.Cwd)
}

func TestYamlConfigParser_InvalidYAML(t *testing.T) {
	_, err := NewYamlConfigParser().Parse([]byte("parameters: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config")
}
