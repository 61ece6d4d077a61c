package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/viewengine/viewctl/internal/api"
	"github.com/viewengine/viewctl/internal/auth"
	"github.com/viewengine/viewctl/internal/config"
	"github.com/viewengine/viewctl/internal/history"
	"github.com/viewengine/viewctl/internal/models"
)

// newClient builds the API client from config, flags, and stored
// credentials. Flags override the config file.
func newClient() (*api.Client, *config.Config, error) {
	cfg, err := config.LoadConfigFromHome()
	if err != nil {
		return nil, nil, err
	}
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	key := apiKeyFlag
	if key == "" {
		mgr, err := auth.NewManager()
		if err != nil {
			return nil, nil, err
		}
		key = mgr.APIKey()
	}
	if key == "" {
		return nil, nil, fmt.Errorf("no API key configured; run 'viewctl auth set <key>' or set %s", auth.EnvAPIKey)
	}

	transport := api.NewTransport(cfg.BaseURL, key, cfg.RequestTimeout())
	return api.NewClient(transport), cfg, nil
}

// openJournal opens the local job journal at its default location.
func openJournal() (*history.Store, error) {
	path, err := history.DefaultPath()
	if err != nil {
		return nil, err
	}
	return history.New(path)
}

// printSnapshot renders a status snapshot for the console.
func printSnapshot(snap *models.JobStatusSnapshot) {
	fmt.Printf("Request ID: %s\n", snap.RequestID)
	fmt.Printf("Status:     %s\n", snap.Status)
	if snap.URL != "" {
		fmt.Printf("URL:        %s\n", snap.URL)
	}
	if snap.Message != "" {
		fmt.Printf("Message:    %s\n", snap.Message)
	}
	if snap.CompletedAt != nil {
		fmt.Printf("Completed:  %s\n", snap.CompletedAt.Format("2006-01-02 15:04:05 MST"))
	}
	if snap.ErrorDetail != "" {
		fmt.Printf("Error:      %s\n", snap.ErrorDetail)
	}
	if snap.Content != nil {
		printContentSummary(snap.Content)
	}
}

// printContentSummary renders the content reference of a completed job.
func printContentSummary(ref *models.ContentRef) {
	fmt.Println("Content:")
	fmt.Printf("  Page Data URL: %s\n", ref.PageDataURL)
	if ref.ContentHash != "" {
		fmt.Printf("  Content Hash:  %s\n", ref.ContentHash)
	}
	if len(ref.Artifacts) > 0 {
		fmt.Printf("  Artifacts:     %s\n", joinKeys(ref.Artifacts))
	}
	if len(ref.Metrics) > 0 {
		names := make([]string, 0, len(ref.Metrics))
		for name := range ref.Metrics {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Printf("  Metrics:       %s\n", joinStrings(names))
	}
}

// writeArtifact writes the payload to a file, or previews it on stdout
// when no output path is given.
func writeArtifact(data []byte, outputPath string) error {
	if outputPath != "" {
		if err := os.WriteFile(outputPath, data, 0o644); err != nil {
			return fmt.Errorf("write content: %w", err)
		}
		fmt.Printf("Wrote %d bytes to %s\n", len(data), outputPath)
		return nil
	}

	const previewLimit = 500
	fmt.Printf("Page content (%d bytes):\n", len(data))
	if len(data) > previewLimit {
		fmt.Printf("%s...\n", data[:previewLimit])
	} else {
		fmt.Printf("%s\n", data)
	}
	return nil
}

// --- Helpers ---

func joinKeys(m map[string]string) string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return joinStrings(names)
}

func joinStrings(xs []string) string {
	result := ""
	for i, x := range xs {
		if i > 0 {
			result += ", "
		}
		result += x
	}
	return result
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func truncateID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
