package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/repodocai/repodoc/internal/assemble"
	"github.com/repodocai/repodoc/internal/config"
	"github.com/repodocai/repodoc/internal/provider"
	"github.com/repodocai/repodoc/internal/store"
	"github.com/repodocai/repodoc/internal/task"
)

// generateCmd returns the "generate" command, which runs the full
// pipeline for one repository and writes the result to a file.
func generateCmd() *cobra.Command {
	var (
		branch     string
		token      string
		outputPath string
		asJSON     bool
		timeout    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "generate <repository-url>",
		Short: "Generate documentation for a repository",
		Long:  "Clone a repository, analyze it, and generate full documentation. Writes markdown (or the raw result bundle with --json) to the output file.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			backend, err := provider.New(cfg.Backend)
			if err != nil {
				return err
			}

			var st *store.Store
			if cfg.Store.Path != "" {
				st, err = store.NewStore(cfg.Store.Path)
				if err != nil {
					return fmt.Errorf("opening store: %w", err)
				}
				defer st.Close()
			}

			orch := task.New(cfg, backend, st)
			defer orch.Close()

			id, err := orch.Submit(args[0], branch, token)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			bundle, err := watchTask(ctx, cmd, orch, id)
			if err != nil {
				return err
			}

			out := outputPath
			if out == "" {
				out = defaultOutputPath(bundle.RepoName, asJSON)
			}

			var content []byte
			if asJSON {
				content, err = json.MarshalIndent(bundle, "", "  ")
				if err != nil {
					return fmt.Errorf("encoding bundle: %w", err)
				}
			} else {
				content = []byte(assemble.Flatten(bundle))
			}

			if out == "-" {
				_, err = cmd.OutOrStdout().Write(content)
				return err
			}
			if err := os.WriteFile(out, content, 0o644); err != nil {
				return fmt.Errorf("writing output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Documentation written to %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVar(&branch, "branch", "", "branch to clone (default: the repository default)")
	cmd.Flags().StringVar(&token, "token", "", "access token for private repositories")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file path (default: <repo>_DOCUMENTATION.md, \"-\" for stdout)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "write the full result bundle as JSON")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Minute, "overall generation timeout")

	return cmd
}

// watchTask polls the task until it reaches a terminal state, printing
// stage changes along the way.
func watchTask(ctx context.Context, cmd *cobra.Command, orch *task.Orchestrator, id string) (*assemble.Bundle, error) {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	var lastMessage string
	for {
		snap, err := orch.Status(id)
		if err != nil {
			return nil, err
		}
		if snap.Message != lastMessage && snap.Message != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "[%3d%%] %s\n", snap.Progress, snap.Message)
			lastMessage = snap.Message
		}
		if snap.Status.Terminal() {
			return orch.Result(id)
		}
		select {
		case <-ctx.Done():
			_ = orch.Cancel(id)
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// defaultOutputPath derives the output file name from the repository name.
func defaultOutputPath(repoName string, asJSON bool) string {
	name := strings.ReplaceAll(repoName, "/", "_")
	if name == "" {
		name = "repository"
	}
	if asJSON {
		return name + "_documentation.json"
	}
	return name + "_DOCUMENTATION.md"
}
