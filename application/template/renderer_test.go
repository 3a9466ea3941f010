package template_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/xsd-bridge/application/template"
)

func environ() []string {
	return []string{"XSD_HOME=/opt/xsd", "EMPTY=", "BROKEN"}
}

func TestGoTemplateEngine_Render(t *testing.T) {
	engine := template.NewGoTemplateEngine(template.WithEnviron(environ))

	t.Run("Environment And Vars", func(t *testing.T) {
		raw := []byte("resources_dir: {{.env.XSD_HOME}}/resources\ncwd: {{.vars.cwd}}\n")

		out, err := engine.Render(raw, map[string]any{"cwd": "/work"})
		require.NoError(t, err)
		assert.Equal(t, "resources_dir: /opt/xsd/resources\ncwd: /work\n", string(out))
	})

	t.Run("Plain Document Unchanged", func(t *testing.T) {
		raw := []byte("cwd: /work\n")
		out, err := engine.Render(raw, nil)
		require.NoError(t, err)
		assert.Equal(t, raw, out)
	})

	t.Run("Missing Key Fails", func(t *testing.T) {
		_, err := engine.Render([]byte(`cwd: "{{.env.MISSING}}"`), nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "map has no entry for key")
	})

	t.Run("Invalid Template Syntax", func(t *testing.T) {
		_, err := engine.Render([]byte(`cwd: "{{.env.XSD_HOME"`), nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse config template")
	})
}

func TestGoTemplateEngine_Lenient(t *testing.T) {
	engine := template.NewGoTemplateEngine(template.WithStrict(false), template.WithEnviron(environ))

	out, err := engine.Render([]byte(`cwd: "{{.env.MISSING}}{{.env.EMPTY}}"`), nil)
	require.NoError(t, err)
	assert.Equal(t, `cwd: "<no value>"`, string(out))
}
