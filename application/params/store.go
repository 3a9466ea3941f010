// Package params accumulates the named parameters and string properties a
// caller sets before a validator operation.
package params

import (
	"context"

	"github.com/reglet-dev/xsd-bridge/xdm"
)

// ParamPrefix namespaces user parameters away from structural bindings such as SourceNodeKey.
const ParamPrefix = "param:"

// SourceNodeKey is the structural binding of the document to validate.
const SourceNodeKey = "node"

// Store holds parameters and properties. It is not safe for concurrent use.
type Store struct {
	parameters map[string]xdm.Value
	properties map[string]string
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		parameters: make(map[string]xdm.Value),
		properties: make(map[string]string),
	}
}

// SetParameter binds value under "param:"+name and takes a shared reference on it.
// A nil value is ignored.
func (s *Store) SetParameter(ctx context.Context, name string, value xdm.Value) {
	s.bind(ctx, ParamPrefix+name, value)
}

// SetSourceNode binds the document to validate under the structural key.
// A nil node is ignored.
func (s *Store) SetSourceNode(ctx context.Context, node *xdm.Node) {
	if node == nil {
		return
	}
	s.bind(ctx, SourceNodeKey, node)
}

func (s *Store) bind(ctx context.Context, key string, value xdm.Value) {
	if value == nil {
		return
	}
	value.IncRef()
	if old, ok := s.parameters[key]; ok && old != value {
		xdm.Release(ctx, old)
	} else if ok {
		value.DecRef()
	}
	s.parameters[key] = value
}

// RemoveParameter unbinds "param:"+name and reports whether a binding existed.
// The store's reference on the removed value passes to the caller, who is
// responsible for releasing it.
func (s *Store) RemoveParameter(name string) bool {
	key := ParamPrefix + name
	if _, ok := s.parameters[key]; !ok {
		return false
	}
	delete(s.parameters, key)
	return true
}

// Parameter returns the value bound under "param:"+name.
func (s *Store) Parameter(name string) (xdm.Value, bool) {
	v, ok := s.parameters[ParamPrefix+name]
	return v, ok
}

// SetProperty stores a copy of value under name, replacing any earlier value.
func (s *Store) SetProperty(name, value string) {
	s.properties[name] = value
}

// Property returns the property stored under name.
func (s *Store) Property(name string) (string, bool) {
	v, ok := s.properties[name]
	return v, ok
}

// ClearParameters empties the parameter map. With withDelete, every value's
// shared count is decremented first and values left without holders are destroyed.
func (s *Store) ClearParameters(ctx context.Context, withDelete bool) {
	if withDelete {
		for _, v := range s.parameters {
			xdm.Release(ctx, v)
		}
	}
	clear(s.parameters)
}

// ClearProperties empties the property map.
func (s *Store) ClearProperties() {
	clear(s.properties)
}

// Parameters returns the live parameter map. It must not be retained across a clear.
func (s *Store) Parameters() map[string]xdm.Value {
	return s.parameters
}

// Properties returns the live property map. It must not be retained across a clear.
func (s *Store) Properties() map[string]string {
	return s.properties
}

// Len returns the number of parameters plus properties.
func (s *Store) Len() int {
	return len(s.parameters) + len(s.properties)
}
