// Package cli implements the xsdbridge command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	xcontext "github.com/reglet-dev/xsd-bridge/internal/context"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	// runtime opens the validation engine; tests substitute an in-process one.
	runtime RuntimeFactory
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the xsdbridge CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(LoadModule)
}

func newRootCommand(runtime RuntimeFactory) *cobra.Command {
	opts := &RootOptions{runtime: runtime}

	cmd := &cobra.Command{
		Use:   "xsdbridge",
		Short: "Validate XML documents with a WebAssembly schema engine",
		Long: `xsdbridge loads an XML Schema validation engine compiled to WebAssembly,
registers schemas with it and validates instance documents, reporting every
error the engine raised.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			// One request ID per invocation, carried to the guest with every call.
			cmd.SetContext(xcontext.WithRequestID(ctx))
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewRegisterCommand(opts))
	cmd.AddCommand(NewConfigSchemaCommand(opts))

	return cmd
}

// logger returns the diagnostics logger; records go to w so they never mix
// with JSON output.
func (o *RootOptions) logger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if o.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
