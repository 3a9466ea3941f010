package entities

// Host class names the bridge resolves.
const (
	ProcessorClassName = "xsdbridge/Processor"
	ValidatorClassName = "xsdbridge/SchemaValidator"
	NodeClassName      = "xsdbridge/Node"
)
