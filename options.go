package bridge

// Option configures a SchemaValidator.
type Option func(*SchemaValidator)

// WithCwd sets the working directory passed with every call.
// When empty, the processor's working directory is used.
func WithCwd(dir string) Option {
	return func(v *SchemaValidator) {
		v.cwd = dir
	}
}

// WithOutputFile sets the file the validation report is written to.
func WithOutputFile(path string) Option {
	return func(v *SchemaValidator) {
		v.outputFile = path
	}
}
