// firedoc - tagged document value converter
//
// Usage:
//
//	firedoc decode [--document] [--format json|yaml|cbor] [file]  Tagged fields to plain JSON
//	firedoc encode [--number-policy integer|fractional-double] [file]  Plain JSON to tagged fields
//	firedoc handle [--dry-run] [--memory] [file]               Run the trigger on an event
//	firedoc version                                            Print version info
//
// If no file is given, or the file is "-", input is read from stdin. Gzip
// and zstd input is decompressed and JSONC comments are stripped.
package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Neumenon/firedoc/config"
	"github.com/Neumenon/firedoc/internal/log"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("firedoc")
	}
}

func newRootCmd() *cobra.Command {
	var configFile string
	root := &cobra.Command{
		Use:          "firedoc",
		Short:        "Convert between tagged document values and plain JSON",
		Version:      version,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "configuration file (YAML or JSON)")
	root.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")

	load := func(cmd *cobra.Command) (*config.Config, error) {
		cfg, err := config.Load(configFile, cmd.Flags())
		if err != nil {
			return nil, err
		}
		if err := log.SetLevelString(cfg.LogLevel); err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
		return cfg, nil
	}

	root.AddCommand(
		newDecodeCmd(load),
		newEncodeCmd(load),
		newHandleCmd(load),
		newVersionCmd(),
	)
	return root
}

type loadFunc func(cmd *cobra.Command) (*config.Config, error)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version info",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "firedoc %s\n", version)
		},
	}
}

func fileArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
