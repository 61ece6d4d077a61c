package main

import (
	"context"
	"fmt"
	"log"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/viewengine/viewctl/internal/lifecycle"
	"github.com/viewengine/viewctl/internal/models"
	"github.com/viewengine/viewctl/internal/tui"
)

var retrieveCmd = &cobra.Command{
	Use:   "retrieve <url>",
	Short: "Submit a page retrieval job and wait for the result",
	Args:  cobra.ExactArgs(1),
	RunE:  runRetrieve,
}

var (
	forceRefresh   bool
	retrieveMode   string
	retrieveWatch  bool
	downloadFlag   bool
	retrieveOutput string
)

func init() {
	retrieveCmd.Flags().BoolVar(&forceRefresh, "force-refresh", false, "Bypass the service cache and force a fresh retrieval")
	retrieveCmd.Flags().StringVar(&retrieveMode, "mode", "private", "Processing mode (private or community)")
	retrieveCmd.Flags().BoolVar(&retrieveWatch, "watch", false, "Show a live progress view while polling")
	retrieveCmd.Flags().BoolVar(&downloadFlag, "download", false, "Download the page content once complete")
	retrieveCmd.Flags().StringVar(&retrieveOutput, "output", "", "Write downloaded content to a file (implies --download)")
}

func runRetrieve(cmd *cobra.Command, args []string) error {
	client, cfg, err := newClient()
	if err != nil {
		return err
	}

	mode := models.RetrievalMode(retrieveMode)
	if mode != models.ModePrivate && mode != models.ModeCommunity {
		return fmt.Errorf("invalid mode %q, must be private or community", retrieveMode)
	}

	// Pre-flight contract check; a warning here does not block
	// submission, the service stays authoritative.
	if tools, err := client.ListTools(cmd.Context()); err != nil {
		log.Printf("Warning: tool discovery failed: %v", err)
	} else if !retrieveWatch {
		fmt.Printf("Service exposes %d tools\n", len(tools))
	}

	req := models.SubmissionRequest{
		URL:            args[0],
		TimeoutSeconds: cfg.TimeoutSeconds,
		ForceRefresh:   forceRefresh,
		Mode:           mode,
	}

	poller, err := lifecycle.NewPoller(client, cfg.PollPolicy())
	if err != nil {
		return err
	}

	var journal lifecycle.Journal
	store, err := openJournal()
	if err != nil {
		log.Printf("Warning: job history unavailable: %v", err)
	} else {
		defer store.Close()
		journal = store
	}

	runner := lifecycle.NewRunner(client, poller, journal)
	fetch := downloadFlag || retrieveOutput != ""

	var result *lifecycle.Result
	if retrieveWatch {
		result, err = runWithWatch(cmd.Context(), runner, req, fetch, cfg.Poll.MaxAttempts)
	} else {
		result, err = runner.Run(cmd.Context(), req, fetch, func(attempt int, snap *models.JobStatusSnapshot) {
			if attempt == 1 {
				fmt.Printf("Request %s accepted\n", snap.RequestID)
			}
			line := fmt.Sprintf("  [%d/%d] %s", attempt, cfg.Poll.MaxAttempts, snap.Status)
			if snap.Message != "" {
				line += " - " + snap.Message
			}
			fmt.Println(line)
		})
	}
	if err != nil {
		return err
	}

	snap := result.Snapshot
	switch snap.Status {
	case models.JobStatusComplete:
		fmt.Println("Retrieval completed!")
		printSnapshot(snap)
		if result.Artifact != nil {
			return writeArtifact(result.Artifact, retrieveOutput)
		}
		return nil
	default:
		detail := snap.ErrorDetail
		if detail == "" {
			detail = snap.Message
		}
		return fmt.Errorf("retrieval %s: %s", snap.Status, detail)
	}
}

// runWithWatch runs the lifecycle behind the live TUI. The poll loop
// runs in a goroutine feeding the view; ctrl+c cancels the context and
// the loop winds down on its own.
func runWithWatch(ctx context.Context, runner *lifecycle.Runner, req models.SubmissionRequest, fetch bool, maxAttempts int) (*lifecycle.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	updates := make(chan tea.Msg, 8)

	var result *lifecycle.Result
	var runErr error
	go func() {
		result, runErr = runner.Run(ctx, req, fetch, func(attempt int, snap *models.JobStatusSnapshot) {
			updates <- tui.Update{Attempt: attempt, Snapshot: snap}
		})
		var snap *models.JobStatusSnapshot
		if result != nil {
			snap = result.Snapshot
		}
		updates <- tui.Done{Snapshot: snap, Err: runErr}
		close(updates)
	}()

	watch := tui.NewWatch(req.URL, "", maxAttempts, updates, cancel)
	if err := watch.Run(); err != nil {
		return nil, fmt.Errorf("watch view: %w", err)
	}
	return result, runErr
}
