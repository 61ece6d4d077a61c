package main

import (
	"github.com/spf13/cobra"
)

var contentCmd = &cobra.Command{
	Use:   "content <request-id>",
	Short: "Download the content of a completed retrieval job",
	Args:  cobra.ExactArgs(1),
	RunE:  runContent,
}

var contentOutput string

func init() {
	contentCmd.Flags().StringVar(&contentOutput, "output", "", "Write content to a file instead of previewing it")
}

func runContent(cmd *cobra.Command, args []string) error {
	client, _, err := newClient()
	if err != nil {
		return err
	}

	data, err := client.FetchContentByID(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	return writeArtifact(data, contentOutput)
}
