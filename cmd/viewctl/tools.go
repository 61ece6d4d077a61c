package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the operations the service exposes",
	Long:  `Queries the service's discovery endpoint. Useful as a pre-flight check that the API key works and the client/service contract has not drifted.`,
	RunE:  runTools,
}

func runTools(cmd *cobra.Command, args []string) error {
	client, _, err := newClient()
	if err != nil {
		return err
	}

	tools, err := client.ListTools(cmd.Context())
	if err != nil {
		return err
	}

	if len(tools) == 0 {
		fmt.Println("No tools reported")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tDESCRIPTION")
	for _, t := range tools {
		fmt.Fprintf(w, "%s\t%s\n", t.Name, truncate(t.Description, 70))
	}
	w.Flush()
	return nil
}
