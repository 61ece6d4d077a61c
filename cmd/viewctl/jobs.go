package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Inspect the local submission journal",
}

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List journaled submissions",
	RunE:  runJobsList,
}

var jobsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one journaled submission",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobsShow,
}

var jobsLimit int

func init() {
	jobsCmd.AddCommand(jobsListCmd, jobsShowCmd)

	jobsListCmd.Flags().IntVar(&jobsLimit, "limit", 20, "Maximum number of records to show")
}

func runJobsList(cmd *cobra.Command, args []string) error {
	store, err := openJournal()
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.List(jobsLimit)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Println("No jobs recorded")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tURL\tSTATUS\tREQUEST\tUPDATED")
	for _, rec := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			truncateID(rec.ID),
			truncate(rec.URL, 40),
			rec.Status,
			truncateID(rec.RequestID),
			rec.UpdatedAt.Local().Format("2006-01-02 15:04"),
		)
	}
	w.Flush()
	return nil
}

func runJobsShow(cmd *cobra.Command, args []string) error {
	store, err := openJournal()
	if err != nil {
		return err
	}
	defer store.Close()

	rec, err := store.Get(args[0])
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("no job record for %q", args[0])
	}

	fmt.Printf("ID:            %s\n", rec.ID)
	fmt.Printf("URL:           %s\n", rec.URL)
	fmt.Printf("Mode:          %s\n", rec.Mode)
	fmt.Printf("Force Refresh: %t\n", rec.ForceRefresh)
	fmt.Printf("Request ID:    %s\n", rec.RequestID)
	fmt.Printf("Status:        %s\n", rec.Status)
	if rec.ErrorDetail != "" {
		fmt.Printf("Error:         %s\n", rec.ErrorDetail)
	}
	fmt.Printf("Created:       %s\n", rec.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Printf("Updated:       %s\n", rec.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
	return nil
}
