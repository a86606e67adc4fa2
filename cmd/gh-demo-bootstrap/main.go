package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/atlasbot/gh-demo-bootstrap/internal/bootstrap"
	"github.com/atlasbot/gh-demo-bootstrap/internal/config"
	"github.com/atlasbot/gh-demo-bootstrap/internal/github"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var verboseLevel int

var rootCmd = &cobra.Command{
	Use:   "gh-demo-bootstrap <repo-name>",
	Short: "Provision a demo repository with a kanban board, labels and a seeded issue",
	Long: `gh-demo-bootstrap creates a repository from a template, copies a
pre-configured project board, reconciles the board's Stage field, seeds the
standard labels, opens a starter issue carrying the workflow control block,
and links the issue to the board.

There is no rollback: a failing stage aborts the run and leaves everything
created by earlier stages in place for inspection.`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Configure logging based on verbose level
		var level slog.Level
		switch verboseLevel {
		case 0:
			level = slog.LevelInfo
		default:
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)
	},
	RunE: runBootstrap,
}

func init() {
	rootCmd.Flags().CountVarP(&verboseLevel, "verbose", "v", "Verbosity level (-v for debug logs, -vv for debug logs and HTTP traffic)")
}

func runBootstrap(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	client, err := github.NewAPIClient(verboseLevel >= 2)
	if err != nil {
		return fmt.Errorf("failed to initialize GitHub client: %w", err)
	}

	service, err := bootstrap.NewService(client, cfg)
	if err != nil {
		return err
	}

	state, err := service.Run(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if state.StageSetFailed {
		slog.Warn("issue was linked but its stage could not be set; it will appear unstaged on the board")
	}

	fmt.Printf("Repository: %s\n", state.RepoURL)
	fmt.Printf("Project:    %s\n", state.ProjectURL)
	fmt.Printf("Issue:      %s\n", state.IssueURL)
	return nil
}
