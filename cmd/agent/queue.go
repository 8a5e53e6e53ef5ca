package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "List attendance events waiting in the offline queue",
	RunE:  runQueue,
}

func init() {
	rootCmd.AddCommand(queueCmd)
}

func runQueue(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	q, err := openQueue(cfg)
	if err != nil {
		return fmt.Errorf("open offline queue: %w", err)
	}

	entries := q.Snapshot()
	if len(entries) == 0 {
		fmt.Println("Queue is empty")
		return nil
	}

	fmt.Printf("%d queued event(s):\n\n", len(entries))
	for _, entry := range entries {
		who := entry.Identity.Label
		if entry.Identity.Resolved() {
			who = fmt.Sprintf("%s (student %d)", who, *entry.Identity.StudentID)
		} else {
			who = fmt.Sprintf("%s (UNRESOLVED)", who)
		}
		fmt.Printf("  %s  %s  %s  queued %s\n",
			entry.ID,
			entry.Record.Date,
			who,
			entry.QueuedAt.Format("2006-01-02 15:04:05"),
		)
	}

	return nil
}
