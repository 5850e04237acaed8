package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the periodic sync scheduler",
	Long: `Runs the scheduler in the foreground, synchronising every
registered target on its interval until interrupted.`,
	RunE: runDaemon,
}

func init() {
	rootCmd.AddCommand(daemonCmd)
}

func runDaemon(cmd *cobra.Command, _ []string) error {
	if scheduler == nil {
		return errors.New("scheduler not configured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start blocks until shutdown, so the loop runs in a goroutine and
	// this command owns the signal wait.
	errCh := make(chan error, 1)
	go func() {
		errCh <- scheduler.Start(ctx)
	}()

	cmd.Println("Scheduler running. Press Ctrl-C to stop.")

	var runErr error
	select {
	case <-ctx.Done():
		runErr = <-errCh
	case runErr = <-errCh:
	}

	cmd.Println("Stopping scheduler...")
	if err := scheduler.Stop(); err != nil {
		return err
	}
	// Cancellation is the expected shutdown path, not a failure.
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	return nil
}
