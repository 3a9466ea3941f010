package bridge

import (
	"context"

	"github.com/reglet-dev/xsd-bridge/domain/entities"
	"github.com/reglet-dev/xsd-bridge/xdm"
)

// ApplyConfig validates cfg and applies its working directory, output file,
// parameters and properties to v. Parameters become atomic values owned by
// the validator and are destroyed by ClearParameters(ctx, true) or Close.
func ApplyConfig(ctx context.Context, v *SchemaValidator, cfg *entities.ProcessorConfig) error {
	if err := ValidateConfig(cfg); err != nil {
		return err
	}

	v.SetCwd(cfg.Cwd)
	if cfg.OutputFile != "" {
		v.SetOutputFile(cfg.OutputFile)
	}
	if cfg.ResourcesDir != "" {
		v.Processor().SetResourcesDirectory(cfg.ResourcesDir)
	}
	for name, p := range cfg.Parameters {
		v.SetParameter(ctx, name, xdm.NewAtomic(p.Type, p.Value))
	}
	for name, value := range cfg.Properties {
		v.SetProperty(name, value)
	}
	return nil
}
