// Package cmd defines and implements the CLI for the course-harvester
// executable.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootFlags holds the parsed command-line surface.
type rootFlags struct {
	cfgFile   string
	siteKey   string
	runAll    bool
	listSites bool
	outPath   string
}

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "course-harvester",
		Short: "Scrapes e-learning platforms into a unified course CSV",
		Long: `course-harvester collects structured course listings from many
independent e-learning websites and normalizes them into one tabular
schema for downstream recommendation use.

Run a single source with --site <key>, or every registered source with
--all. Use --list-sites to see the available source keys.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := flags.validate(); err != nil {
				return err
			}
			return runHarvest(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.cfgFile, "config", "", "config file path (optional)")
	cmd.Flags().StringVar(&flags.siteKey, "site", "", "one site key to scrape (see --list-sites)")
	cmd.Flags().BoolVar(&flags.runAll, "all", false, "scrape all registered sites")
	cmd.Flags().BoolVar(&flags.listSites, "list-sites", false, "list available site keys and exit")
	cmd.Flags().StringVar(&flags.outPath, "out", "", "output CSV path (default data/courses.csv)")

	return cmd
}

// validate enforces the flag contract before anything touches the network.
func (f *rootFlags) validate() error {
	if f.listSites {
		return nil
	}
	if f.siteKey != "" && f.runAll {
		return errors.New("use either --site or --all, not both")
	}
	if f.siteKey == "" && !f.runAll {
		return errors.New("specify --site <key> or --all; use --list-sites to see keys")
	}
	return nil
}

// Execute is the main entry point. Every fatal condition prints one
// actionable line and exits non-zero.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
