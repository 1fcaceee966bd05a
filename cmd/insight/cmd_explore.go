package main

import (
	"context"
	"fmt"
	"strings"

	"insightvector/cmd/insight/explorer"
	"insightvector/internal/config"
	"insightvector/internal/logging"
	"insightvector/internal/provider"

	"github.com/spf13/cobra"
)

// exploreCmd launches the interactive explorer
var exploreCmd = &cobra.Command{
	Use:   "explore [problem]",
	Short: "Start the interactive explorer",
	Long: `Opens the full-screen explorer. With a problem argument the problem is
submitted immediately; otherwise type it and press enter.

Keys:
  enter        submit / drill into the focused vector
  1-4, tab     switch between map, vectors, principle and metaphor
  [ ]          move focus between map nodes
  b<n>         jump back to level n
  ctrl+r       reset the session
  esc          quit`,
	RunE: runExplore,
}

// newProvider assembles the provider stack; tests replace it.
var newProvider = func(ctx context.Context, o provider.Options) (*provider.Stack, error) {
	return provider.New(ctx, o)
}

func runExplore(cmd *cobra.Command, args []string) error {
	cfg, path, err := loadConfig()
	if err != nil {
		return err
	}

	if err := logging.Initialize(explorer.LoggingOptions(cfg, config.StateDir(path))); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logging.CloseAll()
	logging.Boot("insight explorer starting, config %s", path)

	ctx := commandContext(cmd)
	stack, err := newProvider(ctx, explorer.ProviderOptions(cfg))
	if err != nil {
		return fmt.Errorf("failed to build provider: %w", err)
	}
	defer stack.Close()

	return explorer.Run(ctx, explorer.Options{
		Config:     cfg,
		ConfigPath: path,
		Provider:   stack.Provider,
		Problem:    strings.TrimSpace(strings.Join(args, " ")),
	})
}
