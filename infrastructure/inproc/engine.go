package inproc

import (
	"context"
	"fmt"
	"strings"

	"github.com/reglet-dev/xsd-bridge/domain/entities"
)

// SchemaRequest is what the validator class hands an Engine when compiling a schema.
type SchemaRequest struct {
	Cwd        string
	Source     string
	FromString bool
	Params     map[string]any
	Properties map[string]any
}

// ValidateRequest is what the validator class hands an Engine for each validation.
// Source is empty when the bound source node is to be validated.
type ValidateRequest struct {
	Cwd        string
	Source     string
	OutputFile string
	Params     map[string]any
	Properties map[string]any
}

// Outcome is the result of one validation. Document and Report become Node
// objects; either may be nil.
type Outcome struct {
	Document any
	Report   any
}

// Engine is a schema validation engine written in Go and hosted in-process.
type Engine interface {
	RegisterSchema(ctx context.Context, req SchemaRequest) error
	Validate(ctx context.Context, req ValidateRequest) (*Outcome, error)
}

// NodeValue is the Go value behind a Node object.
type NodeValue struct {
	Value any
}

func (n *NodeValue) String() string {
	switch v := n.Value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// processorObject is the Go value behind a Processor object.
type processorObject struct {
	licensed bool
}

// validatorObject is the Go value behind a SchemaValidator object.
type validatorObject struct {
	engine Engine
	report any
}

var (
	sigRegister       = entities.Sig(entities.KindVoid, entities.KindString, entities.KindString, entities.KindStringArray, entities.KindObjectArray)
	sigValidate       = entities.Sig(entities.KindVoid, entities.KindString, entities.KindString, entities.KindString, entities.KindStringArray, entities.KindObjectArray)
	sigValidateToNode = entities.Sig(entities.KindNode, entities.KindString, entities.KindString, entities.KindStringArray, entities.KindObjectArray)
	sigReport         = entities.Sig(entities.KindNode)
	sigToString       = entities.Sig(entities.KindString)
)

// EngineClasses declares the Processor, SchemaValidator and Node classes backed
// by Engine instances. newEngine is called once per validator object.
func EngineClasses(newEngine func() Engine) []*ClassDef {
	proc := NewClass(entities.ProcessorClassName).
		Constructor(entities.Sig(entities.KindVoid, entities.KindBool), func(_ context.Context, c *Call) (any, error) {
			a, _ := c.Object(0).(Atomic)
			return &processorObject{licensed: a.Lexical == "true"}, nil
		})

	validator := NewClass(entities.ValidatorClassName).
		Constructor(entities.Sig(entities.KindVoid, entities.KindProcessor), func(_ context.Context, c *Call) (any, error) {
			if _, ok := c.Object(0).(*processorObject); !ok {
				return nil, Throw(entities.CodeInvalidCall, "validator requires a processor")
			}
			return &validatorObject{engine: newEngine()}, nil
		}).
		Method("registerSchema", sigRegister, registerSchema(false)).
		Method("registerSchemaString", sigRegister, registerSchema(true)).
		Method("validate", sigValidate, func(ctx context.Context, c *Call) (any, error) {
			v := c.Receiver.(*validatorObject)
			cwd, _ := c.String(0)
			src, _ := c.String(1)
			out, _ := c.String(2)
			params, props := split(c.Pairs(3, 4))
			res, err := v.engine.Validate(ctx, ValidateRequest{Cwd: cwd, Source: src, OutputFile: out, Params: params, Properties: props})
			if err != nil {
				return nil, err
			}
			v.report = nil
			if res != nil {
				v.report = res.Report
			}
			return nil, nil
		}).
		Method("validateToNode", sigValidateToNode, func(ctx context.Context, c *Call) (any, error) {
			v := c.Receiver.(*validatorObject)
			cwd, _ := c.String(0)
			src, _ := c.String(1)
			params, props := split(c.Pairs(2, 3))
			res, err := v.engine.Validate(ctx, ValidateRequest{Cwd: cwd, Source: src, Params: params, Properties: props})
			if err != nil {
				return nil, err
			}
			if res == nil {
				v.report = nil
				return nil, nil
			}
			v.report = res.Report
			if res.Document == nil {
				return nil, nil
			}
			return &NodeValue{Value: res.Document}, nil
		}).
		Method("getValidationReport", sigReport, func(_ context.Context, c *Call) (any, error) {
			v := c.Receiver.(*validatorObject)
			if v.report == nil {
				return nil, nil
			}
			return &NodeValue{Value: v.report}, nil
		})

	node := NewClass(entities.NodeClassName).
		Method("toString", sigToString, func(_ context.Context, c *Call) (any, error) {
			n, ok := c.Receiver.(*NodeValue)
			if !ok {
				return nil, Throwf(entities.CodeInvalidCall, "receiver is a %T, not a node", c.Receiver)
			}
			return n.String(), nil
		})

	return []*ClassDef{proc, validator, node}
}

func registerSchema(fromString bool) Method {
	return func(ctx context.Context, c *Call) (any, error) {
		v := c.Receiver.(*validatorObject)
		cwd, _ := c.String(0)
		src, _ := c.String(1)
		params, props := split(c.Pairs(2, 3))
		return nil, v.engine.RegisterSchema(ctx, SchemaRequest{
			Cwd: cwd, Source: src, FromString: fromString, Params: params, Properties: props,
		})
	}
}

// split separates "param:"-prefixed entries from properties.
func split(pairs map[string]any) (params, props map[string]any) {
	params = make(map[string]any)
	props = make(map[string]any)
	for k, v := range pairs {
		if name, ok := strings.CutPrefix(k, paramPrefix); ok {
			params[name] = v
			continue
		}
		props[k] = v
	}
	return params, props
}

const paramPrefix = "param:"
