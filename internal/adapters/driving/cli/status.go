package cli

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status [target-id]",
	Short: "Show sync state for targets",
	Long: `Shows the persisted sync state of registered targets: current
status, sync mode, checkpoint progress and the time of the last
successful run. With a target ID, shows only that target.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatusCmd,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatusCmd(cmd *cobra.Command, args []string) error {
	if syncStore == nil {
		return errors.New("sync store not configured")
	}

	ctx := context.Background()

	if len(args) > 0 {
		state, err := syncStore.Get(ctx, args[0])
		if err != nil {
			return err
		}
		printState(cmd, state.TargetID, state.CalendarID, string(state.Status),
			state.HasCursor(), state.InProgress, state.FullSyncCheckpoint, state.LastSyncedAt)
		return nil
	}

	states, err := syncStore.List(ctx)
	if err != nil {
		return err
	}
	if len(states) == 0 {
		cmd.Println("No targets registered.")
		return nil
	}

	for _, state := range states {
		printState(cmd, state.TargetID, state.CalendarID, string(state.Status),
			state.HasCursor(), state.InProgress, state.FullSyncCheckpoint, state.LastSyncedAt)
	}
	return nil
}

func printState(
	cmd *cobra.Command,
	targetID, calendarID, status string,
	hasCursor, inProgress bool,
	checkpoint, lastSynced *time.Time,
) {
	mode := "full"
	if hasCursor {
		mode = "incremental"
	}

	cmd.Printf("%s (calendar: %s)\n", targetID, calendarID)
	cmd.Printf("  status: %s  mode: %s\n", status, mode)
	if inProgress {
		cmd.Println("  a run is in progress (or was interrupted)")
	}
	if checkpoint != nil {
		cmd.Printf("  resume checkpoint: %s\n", checkpoint.Format(time.RFC3339))
	}
	if lastSynced != nil {
		cmd.Printf("  last synced: %s\n", lastSynced.Format(time.RFC3339))
	} else {
		cmd.Println("  last synced: never")
	}
}
