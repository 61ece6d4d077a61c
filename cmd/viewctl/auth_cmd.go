package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/viewengine/viewctl/internal/auth"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the ViewEngine API key",
}

var authSetCmd = &cobra.Command{
	Use:   "set <api-key>",
	Short: "Store the API key",
	Args:  cobra.ExactArgs(1),
	RunE:  runAuthSet,
}

var authShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the configured API key (masked)",
	RunE:  runAuthShow,
}

var authClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the stored API key",
	RunE:  runAuthClear,
}

func init() {
	authCmd.AddCommand(authSetCmd, authShowCmd, authClearCmd)
}

func runAuthSet(cmd *cobra.Command, args []string) error {
	mgr, err := auth.NewManager()
	if err != nil {
		return err
	}
	if err := mgr.SetKey(args[0]); err != nil {
		return err
	}
	fmt.Println("API key stored")
	return nil
}

func runAuthShow(cmd *cobra.Command, args []string) error {
	mgr, err := auth.NewManager()
	if err != nil {
		return err
	}
	key := mgr.APIKey()
	if key == "" {
		fmt.Println("No API key configured")
		return nil
	}
	fmt.Println(auth.MaskKey(key))
	return nil
}

func runAuthClear(cmd *cobra.Command, args []string) error {
	mgr, err := auth.NewManager()
	if err != nil {
		return err
	}
	if err := mgr.Clear(); err != nil {
		return err
	}
	fmt.Println("API key removed")
	return nil
}
