package bridge

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/reglet-dev/xsd-bridge/application/exception"
	"github.com/reglet-dev/xsd-bridge/application/marshal"
	"github.com/reglet-dev/xsd-bridge/application/params"
	"github.com/reglet-dev/xsd-bridge/application/result"
	"github.com/reglet-dev/xsd-bridge/domain/entities"
	bridgeerrors "github.com/reglet-dev/xsd-bridge/domain/errors"
	"github.com/reglet-dev/xsd-bridge/domain/ports"
	"github.com/reglet-dev/xsd-bridge/processor"
	"github.com/reglet-dev/xsd-bridge/xdm"
)

// ResourcesProperty is forced to the processor's resources directory before
// every call that compiles or validates.
const ResourcesProperty = "resources"

var validatorCtor = entities.Sig(entities.KindVoid, entities.KindProcessor)

// SchemaValidator is the native-side façade of the host validator.
// It is not safe for concurrent use; at most one call may be in flight.
type SchemaValidator struct {
	proc       *processor.Processor
	rt         ports.HostRuntime
	logger     *slog.Logger
	store      *params.Store
	exc        *exception.Bridge
	marshaller *marshal.Marshaller
	results    *result.Wrapper
	methods    map[string]entities.MethodRef
	class      entities.ClassRef
	handle     entities.Handle
	cwd        string
	outputFile string
}

// NewSchemaValidator creates the host validator object for p and resolves
// every entry point once. Entry points the host does not provide are logged
// and make the corresponding operation a no-op.
func NewSchemaValidator(ctx context.Context, p *processor.Processor, opts ...Option) (*SchemaValidator, error) {
	rt := p.Runtime()
	v := &SchemaValidator{
		proc:    p,
		rt:      rt,
		logger:  p.Logger(),
		store:   params.NewStore(),
		exc:     exception.NewBridge(rt),
		results: result.NewWrapper(p),
		methods: make(map[string]entities.MethodRef),
	}
	v.marshaller = marshal.New(p, v.exc)

	for _, opt := range opts {
		opt(v)
	}
	if v.cwd == "" {
		v.cwd = p.Cwd()
	}

	class, err := rt.FindClass(ctx, entities.ValidatorClassName)
	if err != nil {
		return nil, fmt.Errorf("failed to find validator class: %w", err)
	}
	if class.IsZero() {
		return nil, fmt.Errorf("failed to find validator class: host returned an unresolved reference")
	}
	v.class = class

	v.handle = rt.NewObject(ctx, class, validatorCtor, p.Handle())
	v.exc.CheckFault(ctx)
	if v.handle.IsNull() {
		if ferr := v.exc.Err(); ferr != nil {
			return nil, fmt.Errorf("failed to create validator: %w", ferr)
		}
		return nil, fmt.Errorf("failed to create validator: host returned null")
	}

	for _, ep := range marshal.ValidatorEntryPoints() {
		m, ok := rt.LookupMethod(ctx, class, ep.Name, ep.Signature)
		if !ok || m.IsZero() || m.Signature.Result != ep.Signature.Result {
			v.logger.WarnContext(ctx, "validator entry point not provided by host",
				"class", class.Name, "entry_point", ep.String())
			continue
		}
		v.methods[ep.Name] = m
	}

	return v, nil
}

// Processor returns the owning processor.
func (v *SchemaValidator) Processor() *processor.Processor {
	return v.proc
}

// SetCwd sets the working directory passed with every call. Empty is ignored.
func (v *SchemaValidator) SetCwd(dir string) {
	if dir != "" {
		v.cwd = dir
	}
}

// Cwd returns the working directory passed with every call.
func (v *SchemaValidator) Cwd() string {
	return v.cwd
}

// SetOutputFile sets the report output file; empty unsets it.
func (v *SchemaValidator) SetOutputFile(path string) {
	v.outputFile = path
}

// OutputFile returns the report output file.
func (v *SchemaValidator) OutputFile() string {
	return v.outputFile
}

// SetParameter binds value as parameter name. A nil value is ignored.
func (v *SchemaValidator) SetParameter(ctx context.Context, name string, value xdm.Value) {
	v.store.SetParameter(ctx, name, value)
}

// RemoveParameter unbinds parameter name and reports whether it was bound.
// The caller takes over the store's reference on the removed value.
func (v *SchemaValidator) RemoveParameter(name string) bool {
	return v.store.RemoveParameter(name)
}

// SetSourceNode binds the document to validate in place of a source file.
func (v *SchemaValidator) SetSourceNode(ctx context.Context, node *xdm.Node) {
	v.store.SetSourceNode(ctx, node)
}

// SetProperty sets a string property, replacing any earlier value.
func (v *SchemaValidator) SetProperty(name, value string) {
	v.store.SetProperty(name, value)
}

// ClearParameters unbinds every parameter; see params.Store.ClearParameters.
func (v *SchemaValidator) ClearParameters(ctx context.Context, withDelete bool) {
	v.store.ClearParameters(ctx, withDelete)
}

// ClearProperties removes every property.
func (v *SchemaValidator) ClearProperties() {
	v.store.ClearProperties()
}

// Parameters returns the live parameter map.
func (v *SchemaValidator) Parameters() map[string]xdm.Value {
	return v.store.Parameters()
}

// Properties returns the live property map.
func (v *SchemaValidator) Properties() map[string]string {
	return v.store.Properties()
}

// RegisterSchemaFromFile compiles the schema at sourceFile into the host validator.
func (v *SchemaValidator) RegisterSchemaFromFile(ctx context.Context, sourceFile string) error {
	if sourceFile == "" {
		return v.precondition(ctx, "RegisterSchemaFromFile", "sourceFile")
	}
	m, err := v.method(ctx, marshal.RegisterSchemaFromFile)
	if err != nil {
		return err
	}
	v.invoke(ctx, marshal.RegisterSchemaFromFile, m,
		marshal.String(v.cwd),
		marshal.String(sourceFile))
	return nil
}

// RegisterSchemaFromString compiles the schema document held in source.
func (v *SchemaValidator) RegisterSchemaFromString(ctx context.Context, source string) error {
	if source == "" {
		return v.precondition(ctx, "RegisterSchemaFromString", "source")
	}
	v.forceResources()
	m, err := v.method(ctx, marshal.RegisterSchemaFromString)
	if err != nil {
		return err
	}
	v.invoke(ctx, marshal.RegisterSchemaFromString, m,
		marshal.String(v.cwd),
		marshal.String(source))
	return nil
}

// Validate validates sourceFile against the registered schemas. An empty
// sourceFile asks the host to validate the bound source node instead. The
// report goes to the configured output file, if any.
func (v *SchemaValidator) Validate(ctx context.Context, sourceFile string) error {
	v.forceResources()
	m, err := v.method(ctx, marshal.Validate)
	if err != nil {
		return err
	}
	v.invoke(ctx, marshal.Validate, m,
		marshal.String(v.cwd),
		marshal.OrNull(sourceFile),
		marshal.OrNull(v.outputFile))
	return nil
}

// ValidateToNode validates sourceFile and returns the validated document.
// It returns nil without an error when the host produced no document, in
// particular after a host fault; check ExceptionOccurred.
func (v *SchemaValidator) ValidateToNode(ctx context.Context, sourceFile string) (*xdm.Node, error) {
	if sourceFile == "" {
		return nil, v.precondition(ctx, "ValidateToNode", "sourceFile")
	}
	v.forceResources()
	m, err := v.method(ctx, marshal.ValidateToNode)
	if err != nil {
		return nil, err
	}
	h := v.invoke(ctx, marshal.ValidateToNode, m,
		marshal.String(v.cwd),
		marshal.String(sourceFile))
	return v.results.Wrap(h), nil
}

// GetValidationReport returns the report of the last validation, or nil when
// the host has none.
func (v *SchemaValidator) GetValidationReport(ctx context.Context) (*xdm.Node, error) {
	m, err := v.method(ctx, marshal.GetValidationReport)
	if err != nil {
		return nil, err
	}
	return v.results.Wrap(v.marshaller.Call(ctx, v.handle, m)), nil
}

// ExceptionOccurred reports whether the host has a pending exception or a
// snapshot is held.
func (v *SchemaValidator) ExceptionOccurred(ctx context.Context) bool {
	return v.exc.Occurred(ctx)
}

// ExceptionCount returns the number of captured errors, 0 when clean.
func (v *SchemaValidator) ExceptionCount() int {
	return v.exc.Count()
}

// GetErrorCode returns the i-th captured error code.
func (v *SchemaValidator) GetErrorCode(i int) (string, bool) {
	return v.exc.Code(i)
}

// GetErrorMessage returns the i-th captured error message.
func (v *SchemaValidator) GetErrorMessage(i int) (string, bool) {
	return v.exc.Message(i)
}

// ExceptionClear returns the validator to the clean state.
func (v *SchemaValidator) ExceptionClear(ctx context.Context) {
	v.exc.Clear(ctx)
}

// CheckException probes the host's pending exception without capturing it.
func (v *SchemaValidator) CheckException(ctx context.Context) string {
	return v.exc.Probe(ctx)
}

// Err returns the captured snapshot as a *errors.HostFaultError, nil when clean.
func (v *SchemaValidator) Err() error {
	return v.exc.Err()
}

// Close releases every parameter the validator holds and the host validator object.
func (v *SchemaValidator) Close(ctx context.Context) {
	v.store.ClearParameters(ctx, true)
	v.store.ClearProperties()
	v.exc.Clear(ctx)
	if !v.handle.IsNull() {
		v.rt.DeleteRef(ctx, v.handle)
		v.handle = entities.NullHandle
	}
}

func (v *SchemaValidator) forceResources() {
	v.store.SetProperty(ResourcesProperty, v.proc.ResourcesDirectory())
}

func (v *SchemaValidator) method(ctx context.Context, ep marshal.EntryPoint) (entities.MethodRef, error) {
	m, ok := v.methods[ep.Name]
	if !ok {
		err := &bridgeerrors.EntryPointError{
			Class:     v.class.Name,
			Name:      ep.Name,
			Signature: ep.Signature.String(),
		}
		v.logger.ErrorContext(ctx, "validator entry point not found", "error", err)
		return m, err
	}
	return m, nil
}

// invoke runs ep with the bound parameters. A handle returned by a void entry
// point is released.
func (v *SchemaValidator) invoke(ctx context.Context, ep marshal.EntryPoint, m entities.MethodRef, literals ...marshal.Literal) entities.Handle {
	h := v.marshaller.Invoke(ctx, v.handle, m, v.store, literals...)
	if !ep.Returns() && !h.IsNull() {
		v.logger.DebugContext(ctx, "releasing result of void entry point", "entry_point", ep.Name)
		v.rt.DeleteRef(ctx, h)
		return entities.NullHandle
	}
	return h
}

func (v *SchemaValidator) precondition(ctx context.Context, op, arg string) error {
	err := &bridgeerrors.PreconditionError{Operation: op, Argument: arg}
	v.logger.ErrorContext(ctx, "validator precondition failed", "operation", op, "argument", arg)
	return err
}
