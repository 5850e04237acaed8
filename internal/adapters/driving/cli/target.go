package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/arcadia-labs/daysync/internal/core/domain"
)

var (
	targetCredentialID string
	targetCalendarID   string
)

var targetCmd = &cobra.Command{
	Use:   "target",
	Short: "Manage sync targets",
}

var targetAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a calendar as a sync target",
	Long: `Registers a new sync target pairing a stored credential with a
remote calendar. The target starts idle; the first sync run performs a
full window sync.`,
	RunE: runTargetAdd,
}

func init() {
	targetAddCmd.Flags().StringVar(&targetCredentialID, "credential", "", "credential ID to sync with (required)")
	targetAddCmd.Flags().StringVar(&targetCalendarID, "calendar", "primary", "remote calendar ID")
	_ = targetAddCmd.MarkFlagRequired("credential")

	targetCmd.AddCommand(targetAddCmd)
	rootCmd.AddCommand(targetCmd)
}

func runTargetAdd(cmd *cobra.Command, _ []string) error {
	if syncStore == nil || credsStore == nil {
		return errors.New("stores not configured")
	}

	ctx := context.Background()

	// Fail early on a dangling credential reference.
	creds, err := credsStore.Get(ctx, targetCredentialID)
	if err != nil {
		return fmt.Errorf("credential lookup failed: %w", err)
	}
	if !creds.Active {
		return domain.ErrCredentialInactive
	}

	state := domain.SyncState{
		TargetID:     uuid.New().String(),
		CredentialID: creds.ID,
		CalendarID:   targetCalendarID,
		Status:       domain.SyncStatusIdle,
	}
	if err := syncStore.Save(ctx, state); err != nil {
		return fmt.Errorf("failed to save target: %w", err)
	}

	cmd.Printf("Target registered: %s (calendar: %s, account: %s)\n",
		state.TargetID, state.CalendarID, creds.AccountEmail)
	return nil
}
