package bridge

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/reglet-dev/xsd-bridge/domain/entities"
	bridgeerrors "github.com/reglet-dev/xsd-bridge/domain/errors"
)

// validate is a package-level singleton for better performance.
// Creating a new validator on each call is expensive; reusing is recommended.
var validate = validator.New()

// ValidateConfig checks cfg against its validation tags.
// The first failing field is reported as a *errors.ConfigError.
func ValidateConfig(cfg *entities.ProcessorConfig) error {
	if cfg == nil {
		return &bridgeerrors.ConfigError{Err: errors.New("config is nil")}
	}
	if err := validate.Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return &bridgeerrors.ConfigError{
				Field: fe.Namespace(),
				Err:   fmt.Errorf("failed on the '%s' rule", fe.Tag()),
			}
		}
		return &bridgeerrors.ConfigError{Err: err}
	}
	return nil
}
