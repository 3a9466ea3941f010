package cli

import (
	"context"

	"github.com/spf13/cobra"
)

type validateFlags struct {
	sessionFlags
	output string
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &validateFlags{}

	cmd := &cobra.Command{
		Use:   "validate [flags] <instance.xml>",
		Short: "Register schemas and validate an instance document",
		Long: `Register every --schema with the engine, then validate the instance document.

The validation report goes to --output when given and is printed otherwise.
Exits with status 1 when the engine raised a fault.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, rootOpts, flags, args[0])
		},
	}

	flags.bind(cmd.Flags())
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "write the validation report to this file")

	return cmd
}

func runValidate(cmd *cobra.Command, opts *RootOptions, flags *validateFlags, instance string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	cfg, err := flags.loadConfig()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid config", err)
	}
	if flags.output != "" {
		cfg.OutputFile = flags.output
	}

	sess, err := flags.open(ctx, cfg, opts.runtime, opts.logger(cmd.ErrOrStderr()))
	if err != nil {
		return err
	}
	defer sess.Close(ctx)

	res, err := validateInstance(ctx, sess, &flags.sessionFlags, instance)
	if err != nil {
		return err
	}
	if err := formatter.Write(res); err != nil {
		return err
	}
	if len(res.Faults) > 0 {
		return NewExitError(ExitFailure, "validation failed")
	}
	return nil
}

func validateInstance(ctx context.Context, sess *session, flags *sessionFlags, instance string) (*Result, error) {
	faults, err := flags.registerSchemas(ctx, sess)
	if err != nil {
		return nil, err
	}
	if len(faults) > 0 {
		return &Result{Step: "register", Faults: faults}, nil
	}

	res := &Result{Step: "validate"}
	if sess.v.OutputFile() != "" {
		if err := sess.v.Validate(ctx, instance); err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to validate", err)
		}
		res.Faults = sess.faults(ctx)
		return res, nil
	}

	doc, err := sess.v.ValidateToNode(ctx, instance)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to validate", err)
	}
	if res.Faults = sess.faults(ctx); len(res.Faults) > 0 {
		return res, nil
	}
	if doc != nil {
		res.Document, _ = doc.Serialize(ctx)
		doc.Destroy(ctx)
	}
	report, err := sess.v.GetValidationReport(ctx)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to read the validation report", err)
	}
	if report != nil {
		res.Report, _ = report.Serialize(ctx)
		report.Destroy(ctx)
	}
	return res, nil
}
