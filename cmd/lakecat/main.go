package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/lakecat/lakecat/cmd/lakecat/commands"
)

var (
	// Version is set at build time
	Version = "dev"
	// Commit is set at build time
	Commit = "none"
)

func main() {
	var debug bool

	rootCmd := &cobra.Command{
		Use:   "lakecat",
		Short: "lakecat - format table catalog for plain-file tables",
		Long: `lakecat manages tables whose data lives as plain CSV or JSON files in a
warehouse directory, with schema metadata kept in an embedded metastore.

Point it at a warehouse and a metastore directory:
  lakecat --warehouse ./warehouse --metastore ./metastore database create demo

Or use a lakecat.yaml config file / LAKECAT_* environment variables.`,
		Version: fmt.Sprintf("%s (commit: %s)", Version, Commit),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

			if debug {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			} else {
				zerolog.SetGlobalLevel(zerolog.WarnLevel)
			}
		},
	}

	rootCmd.PersistentFlags().String("config", "", "Path to configuration file")
	rootCmd.PersistentFlags().String("warehouse", "", "Warehouse root directory")
	rootCmd.PersistentFlags().String("metastore", "", "Metastore directory")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(commands.NewDatabaseCmd())
	rootCmd.AddCommand(commands.NewTableCmd())
	rootCmd.AddCommand(commands.NewInsertCmd())
	rootCmd.AddCommand(commands.NewScanCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
