package inproc

import (
	"context"
	"fmt"

	"github.com/reglet-dev/xsd-bridge/domain/entities"
)

// Method implements a host entry point in Go. Returning an error raises a host
// exception; returning nil yields the null handle.
type Method func(ctx context.Context, call *Call) (any, error)

// Middleware wraps a Method to add cross-cutting behavior.
// Middleware executes in FIFO order (first registered wraps first, onion model).
type Middleware func(next Method) Method

// ClassDef declares a host class: its constructors and instance methods.
type ClassDef struct {
	name    string
	ctors   map[string]Method
	methods map[string]Method
	errs    []error
}

// NewClass starts a class declaration.
func NewClass(name string) *ClassDef {
	return &ClassDef{
		name:    name,
		ctors:   make(map[string]Method),
		methods: make(map[string]Method),
	}
}

// Name returns the class name.
func (c *ClassDef) Name() string {
	return c.name
}

// Constructor declares a constructor. The value it returns becomes the new object.
func (c *ClassDef) Constructor(sig entities.Signature, fn Method) *ClassDef {
	key := sig.String()
	if _, exists := c.ctors[key]; exists {
		c.errs = append(c.errs, fmt.Errorf("class %s: duplicate constructor %s", c.name, key))
		return c
	}
	c.ctors[key] = fn
	return c
}

// Method declares an instance method.
func (c *ClassDef) Method(name string, sig entities.Signature, fn Method) *ClassDef {
	key := methodKey(name, sig)
	if name == "" {
		c.errs = append(c.errs, fmt.Errorf("class %s: method name cannot be empty", c.name))
		return c
	}
	if _, exists := c.methods[key]; exists {
		c.errs = append(c.errs, fmt.Errorf("class %s: duplicate method %s", c.name, key))
		return c
	}
	c.methods[key] = fn
	return c
}

func methodKey(name string, sig entities.Signature) string {
	return name + sig.String()
}

// classEntry is a registered class with its resolved identity.
type classEntry struct {
	def *ClassDef
	ref entities.ClassRef
}

// methodEntry is a resolved entry point.
type methodEntry struct {
	class *classEntry
	fn    Method
	ref   entities.MethodRef
	ctor  bool
}
