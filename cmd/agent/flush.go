package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/classmark/classmark/internal/agent/capture"
)

var flushCmd = &cobra.Command{
	Use:   "flush",
	Short: "Sync queued attendance events to the server",
	Long: `Drains the offline queue in one batch. Entries confirmed by the
server are removed; unresolved-identity entries are kept for manual
reconciliation.`,
	RunE: runFlush,
}

func init() {
	rootCmd.AddCommand(flushCmd)
}

func runFlush(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	q, err := openQueue(cfg)
	if err != nil {
		return fmt.Errorf("open offline queue: %w", err)
	}

	if q.Len() == 0 {
		fmt.Println("Queue is empty, nothing to sync")
		return nil
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	synced, err := capture.FlushQueue(cmd.Context(), q, newSyncClient(cfg), logger)
	if err != nil {
		return fmt.Errorf("flush queue: %w", err)
	}

	fmt.Printf("Synced %d event(s), %d still queued\n", synced, q.Len())
	return nil
}
