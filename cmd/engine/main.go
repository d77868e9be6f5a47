package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	dataDirFlag string
	noColor     bool
	version     = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "engine",
	Short: "LegalConnect lawyer directory engine",
	Long: `engine serves the LegalConnect API and manages its lawyer roster.

Example usage:
  engine serve                         # Run the API on the configured port
  engine import roster.json extra.html # Add lawyers from roster exports
  engine lawyers --practice-area family --location Parramatta
  engine export --email jamie@example.com > shortlist.csv`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor {
			color.NoColor = true
		}
	},
}

func init() {
	// Engine data dir: use env if provided (the desktop shell can pass one), else local folder.
	def := os.Getenv("LEGALCONNECT_DATA_DIR")
	if def == "" {
		def = "."
	}
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", def, "directory holding config.yml and the database")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		newPrinter().Fail("%v", err)
		os.Exit(1)
	}
}
