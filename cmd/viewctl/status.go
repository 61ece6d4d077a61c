package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/viewengine/viewctl/internal/api"
	"github.com/viewengine/viewctl/internal/lifecycle"
	"github.com/viewengine/viewctl/internal/models"
)

var statusCmd = &cobra.Command{
	Use:   "status <request-id>",
	Short: "Show the status of a retrieval job",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

var statusWait bool

func init() {
	statusCmd.Flags().BoolVar(&statusWait, "wait", false, "Poll until the job reaches a terminal status")
}

func runStatus(cmd *cobra.Command, args []string) error {
	client, cfg, err := newClient()
	if err != nil {
		return err
	}

	if !statusWait {
		snap, err := client.JobStatus(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printSnapshot(snap)
		return nil
	}

	poller, err := lifecycle.NewPoller(client, cfg.PollPolicy())
	if err != nil {
		return err
	}

	handle := models.JobHandle{RequestID: args[0]}
	snap, err := poller.PollUntilTerminal(cmd.Context(), handle, func(attempt int, snap *models.JobStatusSnapshot) {
		line := fmt.Sprintf("  [%d/%d] %s", attempt, cfg.Poll.MaxAttempts, snap.Status)
		if snap.Message != "" {
			line += " - " + snap.Message
		}
		fmt.Println(line)
	})
	if err != nil {
		// Show what we last saw before the budget ran out.
		var svcErr *api.ServiceError
		if errors.As(err, &svcErr) && svcErr.LastSnapshot != nil {
			fmt.Println("Last known state:")
			printSnapshot(svcErr.LastSnapshot)
		}
		return err
	}

	printSnapshot(snap)
	return nil
}
