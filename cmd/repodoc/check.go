package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/repodocai/repodoc/internal/config"
	"github.com/repodocai/repodoc/internal/provider"
)

// checkCmd returns the "check" command, which probes the configured
// model backend and reports its availability.
func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check the model backend",
		Long:  "Probe the configured model backend and report its status and available models.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			backend, err := provider.New(cfg.Backend)
			if err != nil {
				return err
			}

			checker, ok := backend.(provider.HealthChecker)
			if !ok {
				fmt.Fprintf(cmd.OutOrStdout(), "Backend %q does not report health.\n", cfg.Backend.Provider)
				return nil
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			health, err := checker.CheckHealth(ctx)
			if err != nil {
				return fmt.Errorf("checking backend: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Backend:  %s (%s)\n", cfg.Backend.Provider, cfg.Backend.BaseURL)
			fmt.Fprintf(cmd.OutOrStdout(), "Status:   %s\n", health.Status)
			if health.Message != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Message:  %s\n", health.Message)
			}
			if len(health.Models) > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Models:")
				for _, m := range health.Models {
					fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", m)
				}
			}
			if health.Status != "healthy" {
				return fmt.Errorf("backend is %s", health.Status)
			}
			return nil
		},
	}
}
