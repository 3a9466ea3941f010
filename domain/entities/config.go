package entities

// ProcessorConfig is the file-level configuration of a bridge session.
// It is loaded from YAML, checked with struct-tag validation and can be
// exported as a JSON schema.
type ProcessorConfig struct {
	// Parameters are typed atomic values bound with SetParameter before each call.
	Parameters map[string]ParameterConfig `json:"parameters,omitempty" yaml:"parameters,omitempty" validate:"omitempty,dive,keys,required,endkeys"`

	// Properties are plain string options forwarded with every call.
	Properties map[string]string `json:"properties,omitempty" yaml:"properties,omitempty" validate:"omitempty,dive,keys,required,endkeys"`

	// Cwd is the working directory handed to the host with every call.
	Cwd string `json:"cwd,omitempty" yaml:"cwd,omitempty" jsonschema:"description=Working directory passed to the validation engine"`

	// ResourcesDir is forced into the "resources" property of validating calls.
	ResourcesDir string `json:"resources_dir,omitempty" yaml:"resources_dir,omitempty" jsonschema:"description=Directory holding engine resources"`

	// OutputFile receives the validation report when set.
	OutputFile string `json:"output_file,omitempty" yaml:"output_file,omitempty"`

	// Module is the path of the WASM validation engine.
	Module string `json:"module,omitempty" yaml:"module,omitempty" validate:"omitempty,endswith=.wasm"`

	// MaxRequestSize limits guest-to-host payloads in bytes.
	MaxRequestSize uint32 `json:"max_request_size,omitempty" yaml:"max_request_size,omitempty" validate:"omitempty,min=1024"`
}

// ParameterConfig is a typed atomic parameter value.
type ParameterConfig struct {
	// Type is the XML Schema built-in type name, e.g. "xs:string" or "xs:boolean".
	Type string `json:"type" yaml:"type" validate:"required,oneof=xs:string xs:boolean xs:integer xs:decimal xs:double xs:anyURI xs:QName" jsonschema:"enum=xs:string,enum=xs:boolean,enum=xs:integer,enum=xs:decimal,enum=xs:double,enum=xs:anyURI,enum=xs:QName"`

	// Value is the lexical form.
	Value string `json:"value" yaml:"value"`
}
