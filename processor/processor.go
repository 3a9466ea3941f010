// Package processor holds the host-side processor a validator is attached to:
// the runtime it talks through, the processor's host handle, the working
// directory, the resources directory and the diagnostics logger.
package processor

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/reglet-dev/xsd-bridge/domain/entities"
	"github.com/reglet-dev/xsd-bridge/domain/ports"
)

// ResourcesEnv names the environment variable consulted when no resources
// directory is configured.
const ResourcesEnv = "XSDBRIDGE_RESOURCES"

// ctorSignature is the processor constructor: (licensed bool).
var ctorSignature = entities.Sig(entities.KindVoid, entities.KindBool)

// Processor owns a host processor object and the settings shared by every
// validator created from it.
type Processor struct {
	rt           ports.HostRuntime
	logger       *slog.Logger
	cwd          string
	resourcesDir string
	handle       entities.Handle
	licensed     bool
}

// Option configures a Processor.
type Option func(*Processor)

// WithLogger sets the diagnostics logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(p *Processor) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithCwd sets the default working directory for validators.
func WithCwd(dir string) Option {
	return func(p *Processor) {
		p.cwd = dir
	}
}

// WithResourcesDirectory sets the directory forced into the "resources" property.
func WithResourcesDirectory(dir string) Option {
	return func(p *Processor) {
		p.resourcesDir = dir
	}
}

// WithLicensed requests the licensed (schema-aware) processor edition.
func WithLicensed(enabled bool) Option {
	return func(p *Processor) {
		p.licensed = enabled
	}
}

// New creates the host processor object.
func New(ctx context.Context, rt ports.HostRuntime, opts ...Option) (*Processor, error) {
	p := &Processor{
		rt:           rt,
		logger:       slog.Default(),
		resourcesDir: os.Getenv(ResourcesEnv),
		licensed:     true,
	}
	for _, opt := range opts {
		opt(p)
	}

	class, err := rt.FindClass(ctx, entities.ProcessorClassName)
	if err != nil {
		return nil, fmt.Errorf("failed to find processor class: %w", err)
	}

	flag := rt.NewAtomic(ctx, "xs:boolean", fmt.Sprintf("%t", p.licensed))
	defer rt.DeleteRef(ctx, flag)

	h := rt.NewObject(ctx, class, ctorSignature, flag)
	if rt.ExceptionCheck(ctx) || h.IsNull() {
		snapshot := entities.NewExceptionSnapshot(rt.DescribeException(ctx))
		rt.ExceptionClear(ctx)
		return nil, fmt.Errorf("failed to create processor: %s", snapshot.String())
	}
	p.handle = h
	return p, nil
}

// Runtime returns the host runtime this processor lives in.
func (p *Processor) Runtime() ports.HostRuntime {
	return p.rt
}

// Handle returns the host processor handle.
func (p *Processor) Handle() entities.Handle {
	return p.handle
}

// Cwd returns the default working directory.
func (p *Processor) Cwd() string {
	return p.cwd
}

// ResourcesDirectory returns the resources directory.
func (p *Processor) ResourcesDirectory() string {
	return p.resourcesDir
}

// SetResourcesDirectory replaces the resources directory.
func (p *Processor) SetResourcesDirectory(dir string) {
	p.resourcesDir = dir
}

// Logger returns the diagnostics logger.
func (p *Processor) Logger() *slog.Logger {
	return p.logger
}

// Close releases the host processor handle.
func (p *Processor) Close(ctx context.Context) {
	if p.handle.IsNull() {
		return
	}
	p.rt.DeleteRef(ctx, p.handle)
	p.handle = entities.NullHandle
}
