// cmd/repodoc/main.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	// Register backends via init() side effects.
	_ "github.com/repodocai/repodoc/internal/provider/ollama"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"

	configPath string
)

func versionString() string {
	return fmt.Sprintf("repodoc %s (commit: %s, built: %s)", version, commit, date)
}

func main() {
	rootCmd := &cobra.Command{
		Use:           "repodoc",
		Short:         "Generate documentation for a repository",
		Long:          "repodoc analyzes a git repository and generates documentation, health scores, and diagrams using a local LLM backend.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Println(versionString())
		},
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(checkCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
