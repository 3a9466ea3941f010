package ports

// TemplateEngine renders configuration files before they are parsed.
type TemplateEngine interface {
	// Render processes raw with the given variables, exposed to the template as {{.vars.key}}
	// and the process environment as {{.env.NAME}}.
	Render(raw []byte, vars map[string]any) ([]byte, error)
}
