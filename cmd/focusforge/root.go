package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var debug bool

	root := &cobra.Command{
		Use:           "focusforge",
		Short:         "Summarize browser focus sessions",
		Long:          `focusforge turns the browser activity captured during a focus session into a deterministic summary: time per workspace, focus score against the stated intent, where you stopped and what to do next.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(debug)
		},
	}
	root.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	root.AddCommand(newServeCmd(), newComputeCmd(), newTaxonomyCmd(), newStatusCmd(), newJournalCmd(), newPlanCmd())
	return root
}

// setupLogging logs to stderr so stdout stays clean for command output.
func setupLogging(debug bool) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true})
}
