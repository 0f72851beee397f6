package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
	"github.com/oceanwatch/oceanwatch/internal/bluesky"
	"github.com/oceanwatch/oceanwatch/internal/config"
)

func newLoginCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store Bluesky credentials in the config file",
		Long: `Prompts for a Bluesky handle and app password (input hidden), verifies
them against the PDS, and writes them to the config file.

Create an app password at Settings > App Passwords — never use your
account password.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "oceanwatch.yaml", "path to config file")
	return cmd
}

func runLogin(cmd *cobra.Command, configPath string) error {
	out := cmd.OutOrStdout()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	handle := cfg.Bluesky.Handle
	fmt.Fprintf(out, "Bluesky handle [%s]: ", handle)
	scanner := bufio.NewScanner(cmd.InOrStdin())
	if scanner.Scan() {
		if entered := strings.TrimSpace(scanner.Text()); entered != "" {
			handle = entered
		}
	}
	if handle == "" {
		return fmt.Errorf("login: a handle is required")
	}

	fmt.Fprint(out, "App password: ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(out)
	if err != nil {
		return fmt.Errorf("login: read password: %w", err)
	}
	if len(password) == 0 {
		return fmt.Errorf("login: an app password is required")
	}

	cfg.Bluesky.Handle = handle
	cfg.Bluesky.AppPassword = string(password)

	// Verify before persisting.
	client := bluesky.New(cfg.Bluesky)
	if err := client.Login(cmd.Context()); err != nil {
		return fmt.Errorf("login: credentials rejected: %w", err)
	}
	fmt.Fprintf(out, "Authenticated as %s\n", handle)

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("login: marshal config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("login: write %s: %w", configPath, err)
	}
	fmt.Fprintf(out, "Credentials saved to %s\n", configPath)
	return nil
}
