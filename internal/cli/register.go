package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
)

// NewRegisterCommand creates the register command.
func NewRegisterCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &sessionFlags{}

	cmd := &cobra.Command{
		Use:   "register [flags]",
		Short: "Register schemas without validating",
		Long: `Register every --schema with the engine and report compile errors.
Useful as a smoke test for schema sets.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRegister(cmd, rootOpts, flags)
		},
	}

	flags.bind(cmd.Flags())

	return cmd
}

func runRegister(cmd *cobra.Command, opts *RootOptions, flags *sessionFlags) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if len(flags.schemas) == 0 {
		return WrapExitError(ExitCommandError, "nothing to register", errors.New("at least one --schema is required"))
	}

	cfg, err := flags.loadConfig()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid config", err)
	}
	sess, err := flags.open(ctx, cfg, opts.runtime, opts.logger(cmd.ErrOrStderr()))
	if err != nil {
		return err
	}
	defer sess.Close(ctx)

	faults, err := flags.registerSchemas(ctx, sess)
	if err != nil {
		return err
	}
	res := &Result{Step: "register", Faults: faults}
	if err := (&OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}).Write(res); err != nil {
		return err
	}
	if len(faults) > 0 {
		return NewExitError(ExitFailure, "registration failed")
	}
	return nil
}
