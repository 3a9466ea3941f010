package marshal

import "github.com/reglet-dev/xsd-bridge/domain/entities"

// EntryPoint is the fixed name and signature of a host operation.
type EntryPoint struct {
	Name      string
	Signature entities.Signature
}

// Returns reports whether the entry point produces a result handle.
func (e EntryPoint) Returns() bool {
	return e.Signature.Result != "" && e.Signature.Result != entities.KindVoid
}

func (e EntryPoint) String() string {
	return e.Name + e.Signature.String()
}

// The validator entry points.
var (
	RegisterSchemaFromFile = EntryPoint{
		Name: "registerSchema",
		Signature: entities.Sig(entities.KindVoid,
			entities.KindString, entities.KindString, entities.KindStringArray, entities.KindObjectArray),
	}
	RegisterSchemaFromString = EntryPoint{
		Name: "registerSchemaString",
		Signature: entities.Sig(entities.KindVoid,
			entities.KindString, entities.KindString, entities.KindStringArray, entities.KindObjectArray),
	}
	Validate = EntryPoint{
		Name: "validate",
		Signature: entities.Sig(entities.KindVoid,
			entities.KindString, entities.KindString, entities.KindString, entities.KindStringArray, entities.KindObjectArray),
	}
	ValidateToNode = EntryPoint{
		Name: "validateToNode",
		Signature: entities.Sig(entities.KindNode,
			entities.KindString, entities.KindString, entities.KindStringArray, entities.KindObjectArray),
	}
	GetValidationReport = EntryPoint{
		Name:      "getValidationReport",
		Signature: entities.Sig(entities.KindNode),
	}
)

// ValidatorEntryPoints lists every entry point a validator resolves at construction.
func ValidatorEntryPoints() []EntryPoint {
	return []EntryPoint{
		RegisterSchemaFromFile,
		RegisterSchemaFromString,
		Validate,
		ValidateToNode,
		GetValidationReport,
	}
}
