package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/viewengine/viewctl/internal/auth"
)

var rootCmd = &cobra.Command{
	Use:   "viewctl",
	Short: "ViewEngine retrieval CLI",
	Long:  `viewctl drives the ViewEngine page retrieval service: it submits retrieval jobs, polls them to completion, and downloads the resulting content.`,
}

var (
	baseURL    string
	apiKeyFlag string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "Service base URL (default from config)")
	rootCmd.PersistentFlags().StringVar(&apiKeyFlag, "api-key", "", "API key (default from stored credentials or "+auth.EnvAPIKey+")")

	// Add subcommands
	rootCmd.AddCommand(toolsCmd)
	rootCmd.AddCommand(retrieveCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(contentCmd)
	rootCmd.AddCommand(jobsCmd)
	rootCmd.AddCommand(authCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
