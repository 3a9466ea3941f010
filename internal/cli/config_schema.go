package cli

import (
	"github.com/reglet-dev/xsd-bridge/application/schema"
	"github.com/spf13/cobra"
)

// NewConfigSchemaCommand creates the config-schema command.
func NewConfigSchemaCommand(_ *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "config-schema",
		Short: "Print the JSON schema of the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := schema.ConfigSchema()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(append(data, '\n'))
			return err
		},
	}
}
