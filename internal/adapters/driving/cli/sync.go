package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync <target-id>",
	Short: "Synchronise a calendar target",
	Long: `Triggers one synchronisation run for a target. Incremental when a
cursor from a previous run is available, otherwise a full window sync.
Interrupting with Ctrl-C leaves a checkpoint behind so the next run
resumes where this one stopped.`,
	Args: cobra.ExactArgs(1),
	RunE: runSyncCmd,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSyncCmd(cmd *cobra.Command, args []string) error {
	if syncRunner == nil {
		return errors.New("sync service not configured")
	}

	targetID := args[0]

	// Cancel the run gracefully on interrupt so state stays resumable.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd.Printf("Synchronising target: %s...\n", targetID)

	if err := syncWithProgress(ctx, cmd, targetID); err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	cmd.Printf("Target %s synchronised successfully.\n", targetID)
	return nil
}

// syncWithProgress runs sync while displaying progress updates.
func syncWithProgress(ctx context.Context, cmd *cobra.Command, targetID string) error {
	// Start sync in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- syncRunner.RunSync(ctx, targetID)
	}()

	// Poll status every 500ms
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	lastCount := 0
	for {
		select {
		case err := <-errCh:
			// Print final status (ignore status error - best effort)
			status, statusErr := syncRunner.Status(ctx, targetID)
			if statusErr == nil && status != nil && status.Processed > 0 {
				cmd.Printf("\rProcessed %d events (%d errors)\n",
					status.Processed, status.Failed)
			}
			return err
		case <-ticker.C:
			// Check progress (ignore status error - best effort)
			status, statusErr := syncRunner.Status(ctx, targetID)
			if statusErr == nil && status != nil && status.Processed > lastCount {
				cmd.Printf("\rProcessing... %d events", status.Processed)
				lastCount = status.Processed
			}
		}
	}
}
