package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"insightvector/cmd/insight/ui"
	"insightvector/internal/provider"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var historyLimit int

// historyCmd lists archived explorations
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List archived explorations, newest first",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum rows (0 for all)")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if !cfg.Archive.Enabled {
		fmt.Fprintln(out, "Archive disabled (archive.enabled: false)")
		return nil
	}
	if _, err := os.Stat(cfg.Archive.Path); errors.Is(err, os.ErrNotExist) {
		fmt.Fprintln(out, "No explorations archived yet")
		return nil
	}

	archive, err := provider.OpenArchive(cfg.Archive.Path, nil)
	if err != nil {
		return err
	}
	defer archive.Close()

	entries, err := archive.List(commandContext(cmd), historyLimit)
	if err != nil {
		return err
	}
	logger.Debug("Archive listed", zap.String("path", cfg.Archive.Path), zap.Int("entries", len(entries)))
	if len(entries) == 0 {
		fmt.Fprintln(out, "No explorations archived yet")
		return nil
	}

	table := ui.NewSimpleTable(fmt.Sprintf("History (%d)", len(entries)),
		[]string{"#", "Time", "Problem", "Context", "Provider", "First principle"})
	table.MaxCell = 32
	for _, e := range entries {
		principle := ""
		if e.Result != nil {
			principle = e.Result.FirstPrinciple
		}
		table.AddRow(
			fmt.Sprintf("%d", e.ID),
			e.CreatedAt.Local().Format("2006-01-02 15:04"),
			oneLine(e.Problem),
			oneLine(e.Scope),
			e.Provider,
			oneLine(principle),
		)
	}
	fmt.Fprint(out, table.View(ui.DefaultStyles()))
	return nil
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
