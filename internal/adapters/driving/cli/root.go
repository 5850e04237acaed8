// Package cli implements the daysync command-line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/arcadia-labs/daysync/internal/core/ports/driven"
	"github.com/arcadia-labs/daysync/internal/core/ports/driving"
	"github.com/arcadia-labs/daysync/internal/logger"
)

// Services injected by the composition root before Execute.
var (
	syncRunner driving.SyncRunner
	scheduler  driving.Scheduler
	syncStore  driven.SyncStateStore
	credsStore driven.CredentialsStore
)

var verboseFlag bool

var rootCmd = &cobra.Command{
	Use:   "daysync",
	Short: "Mirror remote calendars into local storage",
	Long: `daysync keeps a local mirror of OAuth-protected remote calendars.
It syncs incrementally where possible, resumes interrupted full syncs
from a checkpoint, and leaves recoverable state behind on failure.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose logging")
}

// Configure injects the services the commands depend on.
func Configure(
	runner driving.SyncRunner,
	sched driving.Scheduler,
	states driven.SyncStateStore,
	creds driven.CredentialsStore,
) {
	syncRunner = runner
	scheduler = sched
	syncStore = states
	credsStore = creds
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
