package ports

import "github.com/reglet-dev/xsd-bridge/domain/entities"

// ConfigParser parses raw configuration bytes into a ProcessorConfig.
type ConfigParser interface {
	// Parse unmarshals configuration bytes into a ProcessorConfig struct.
	Parse(data []byte) (*entities.ProcessorConfig, error)
}
