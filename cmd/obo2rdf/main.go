// Command obo2rdf converts OBO ontologies into Bio2RDF-style RDF.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "obo2rdf"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globalFlags are shared by every subcommand
type globalFlags struct {
	configPath string
	logLevel   string
}

func rootCmd() *cobra.Command {
	var g globalFlags

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Convert OBO ontologies to RDF",
		Long: `obo2rdf translates ontologies in the OBO flat-file format into RDF
following the Bio2RDF naming conventions.

Statements are written as N-Quads or N-Triples files and can also be
loaded into a local quad store, streamed to Kafka, and published to a
bucket together with a dataset description.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "Config file path (YAML); defaults to obo2rdf.yaml in the working directory or a parent")
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	cmd.AddCommand(convertCmd(&g))
	cmd.AddCommand(describeCmd(&g))
	cmd.AddCommand(graphsCmd(&g))
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})

	return cmd
}
