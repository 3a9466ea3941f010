package host

import (
	"log/slog"

	"github.com/reglet-dev/xsd-bridge/hostfuncs"
)

// config holds the settings applied while loading a guest engine.
type config struct {
	logger         *slog.Logger
	name           string
	cwd            string
	resourcesDir   string
	hostFuncs      []hostfuncs.RegistryOption
	maxRequestSize uint32
	maxResource    int
}

func defaultConfig() config {
	return config{
		logger:         slog.Default(),
		name:           "engine",
		maxRequestSize: hostfuncs.DefaultMaxRequestSize,
		maxResource:    hostfuncs.DefaultMaxResourceSize,
	}
}

// Option configures a Runtime.
type Option func(*config)

// WithLogger sets the logger used for runtime diagnostics and guest log records.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithName sets the guest name used in diagnostics (default: "engine").
func WithName(name string) Option {
	return func(c *config) {
		c.name = name
	}
}

// WithCwd adds dir as a root the guest may read resources from.
func WithCwd(dir string) Option {
	return func(c *config) {
		c.cwd = dir
	}
}

// WithResourcesDirectory adds dir as a root the guest may read resources from.
func WithResourcesDirectory(dir string) Option {
	return func(c *config) {
		c.resourcesDir = dir
	}
}

// WithHostFunctions adds handlers to the xsd_host module next to read_resource.
func WithHostFunctions(opts ...hostfuncs.RegistryOption) Option {
	return func(c *config) {
		c.hostFuncs = append(c.hostFuncs, opts...)
	}
}

// WithMaxRequestSize limits requests the guest sends to host functions.
func WithMaxRequestSize(size uint32) Option {
	return func(c *config) {
		if size > 0 {
			c.maxRequestSize = size
		}
	}
}

// WithMaxResourceSize limits the bytes returned by a single resource read.
func WithMaxResourceSize(size int) Option {
	return func(c *config) {
		if size > 0 {
			c.maxResource = size
		}
	}
}
