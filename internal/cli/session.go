package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	bridge "github.com/reglet-dev/xsd-bridge"
	apptemplate "github.com/reglet-dev/xsd-bridge/application/template"
	"github.com/reglet-dev/xsd-bridge/domain/entities"
	"github.com/reglet-dev/xsd-bridge/domain/ports"
	"github.com/reglet-dev/xsd-bridge/host"
	"github.com/reglet-dev/xsd-bridge/infrastructure/parser"
	"github.com/reglet-dev/xsd-bridge/processor"
	"github.com/reglet-dev/xsd-bridge/xdm"
)

// RuntimeFactory opens the host runtime described by cfg. The returned
// function releases it.
type RuntimeFactory func(ctx context.Context, cfg *entities.ProcessorConfig, logger *slog.Logger) (ports.HostRuntime, func(context.Context) error, error)

// LoadModule opens the WebAssembly engine named by cfg.Module.
func LoadModule(ctx context.Context, cfg *entities.ProcessorConfig, logger *slog.Logger) (ports.HostRuntime, func(context.Context) error, error) {
	if cfg.Module == "" {
		return nil, nil, fmt.Errorf("no engine module: use --module or set module in the config file")
	}
	rt, err := host.LoadFile(ctx, cfg.Module,
		host.WithLogger(logger),
		host.WithCwd(cfg.Cwd),
		host.WithResourcesDirectory(cfg.ResourcesDir),
		host.WithMaxRequestSize(cfg.MaxRequestSize),
	)
	if err != nil {
		return nil, nil, err
	}
	return rt, rt.Close, nil
}

// sessionFlags are the flags shared by commands that talk to an engine.
type sessionFlags struct {
	config     string
	module     string
	cwd        string
	resources  string
	schemas    []string
	params     []string
	properties []string
	vars       []string
}

// loadConfig reads the config file, if any, renders it with the environment
// and --var values, parses it and applies flag overrides.
func (s *sessionFlags) loadConfig() (*entities.ProcessorConfig, error) {
	cfg := &entities.ProcessorConfig{}
	if s.config != "" {
		raw, err := os.ReadFile(s.config)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		vars := make(map[string]any, len(s.vars))
		for _, kv := range s.vars {
			name, value, err := splitPair(kv)
			if err != nil {
				return nil, fmt.Errorf("invalid --var: %w", err)
			}
			vars[name] = value
		}
		data, err := apptemplate.NewGoTemplateEngine().Render(raw, vars)
		if err != nil {
			return nil, err
		}
		if cfg, err = parser.NewYamlConfigParser().Parse(data); err != nil {
			return nil, err
		}
	}
	if s.module != "" {
		cfg.Module = s.module
	}
	if s.cwd != "" {
		cfg.Cwd = s.cwd
	}
	if s.resources != "" {
		cfg.ResourcesDir = s.resources
	}
	return cfg, bridge.ValidateConfig(cfg)
}

// session is an open engine with one validator attached.
type session struct {
	v     *bridge.SchemaValidator
	proc  *processor.Processor
	close func(context.Context) error
}

func (s *sessionFlags) open(ctx context.Context, cfg *entities.ProcessorConfig, factory RuntimeFactory, logger *slog.Logger) (*session, error) {
	rt, closeRuntime, err := factory(ctx, cfg, logger)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load engine", err)
	}

	p, err := processor.New(ctx, rt,
		processor.WithLogger(logger),
		processor.WithCwd(cfg.Cwd),
		processor.WithResourcesDirectory(cfg.ResourcesDir))
	if err != nil {
		_ = closeRuntime(ctx)
		return nil, WrapExitError(ExitCommandError, "failed to create processor", err)
	}
	v, err := bridge.NewSchemaValidator(ctx, p)
	if err != nil {
		p.Close(ctx)
		_ = closeRuntime(ctx)
		return nil, WrapExitError(ExitCommandError, "failed to create validator", err)
	}
	sess := &session{v: v, proc: p, close: closeRuntime}

	if err := bridge.ApplyConfig(ctx, v, cfg); err != nil {
		sess.Close(ctx)
		return nil, WrapExitError(ExitCommandError, "invalid config", err)
	}
	for _, kv := range s.params {
		name, value, err := splitPair(kv)
		if err != nil {
			sess.Close(ctx)
			return nil, WrapExitError(ExitCommandError, "invalid --param", err)
		}
		v.SetParameter(ctx, name, xdm.NewString(value))
	}
	for _, kv := range s.properties {
		name, value, err := splitPair(kv)
		if err != nil {
			sess.Close(ctx)
			return nil, WrapExitError(ExitCommandError, "invalid --property", err)
		}
		v.SetProperty(name, value)
	}
	return sess, nil
}

// registerSchemas registers every --schema and reports the first fault.
func (s *sessionFlags) registerSchemas(ctx context.Context, sess *session) ([]entities.ExceptionEntry, error) {
	for _, schema := range s.schemas {
		if err := sess.v.RegisterSchemaFromFile(ctx, schema); err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to register "+schema, err)
		}
		if faults := sess.faults(ctx); len(faults) > 0 {
			return faults, nil
		}
	}
	return nil, nil
}

// faults returns and clears the captured fault.
func (s *session) faults(ctx context.Context) []entities.ExceptionEntry {
	n := s.v.ExceptionCount()
	if n == 0 {
		return nil
	}
	out := make([]entities.ExceptionEntry, 0, n)
	for i := range n {
		code, _ := s.v.GetErrorCode(i)
		msg, _ := s.v.GetErrorMessage(i)
		out = append(out, entities.ExceptionEntry{Code: code, Message: msg})
	}
	s.v.ExceptionClear(ctx)
	return out
}

// Close releases the validator, the processor and the engine.
func (s *session) Close(ctx context.Context) {
	s.v.Close(ctx)
	s.proc.Close(ctx)
	if s.close != nil {
		_ = s.close(ctx)
	}
}

func splitPair(kv string) (string, string, error) {
	name, value, ok := strings.Cut(kv, "=")
	if !ok || name == "" {
		return "", "", fmt.Errorf("%q is not name=value", kv)
	}
	return name, value, nil
}

func (s *sessionFlags) bind(flags interface {
	StringVar(p *string, name, value, usage string)
	StringArrayVar(p *[]string, name string, value []string, usage string)
}) {
	flags.StringVar(&s.config, "config", "", "YAML config file")
	flags.StringVar(&s.module, "module", "", "WebAssembly validation engine")
	flags.StringVar(&s.cwd, "cwd", "", "working directory passed to the engine")
	flags.StringVar(&s.resources, "resources", "", "engine resources directory")
	flags.StringArrayVar(&s.schemas, "schema", nil, "schema file to register (repeatable)")
	flags.StringArrayVar(&s.params, "param", nil, "xs:string parameter name=value (repeatable)")
	flags.StringArrayVar(&s.properties, "property", nil, "property name=value (repeatable)")
	flags.StringArrayVar(&s.vars, "var", nil, "config template variable name=value (repeatable)")
}
