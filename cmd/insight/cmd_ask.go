package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"insightvector/cmd/insight/explorer"
	"insightvector/cmd/insight/ui"
	"insightvector/internal/insight"
	"insightvector/internal/textclean"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	askScope       string
	askConcurrency int
	askJSON        bool
	askWidth       int
)

// askCmd fetches insights without the explorer
var askCmd = &cobra.Command{
	Use:   "ask <problem>...",
	Short: "Deconstruct one or more problems and print the insights",
	Long: `Runs each problem through the configured provider chain and prints the
result as markdown, or as JSON with --json. Several problems are fetched
concurrently.

Example:
  insight ask "我担心AI会取代我的工作"
  insight ask --context "职业焦虑" "技能迁移" "收入结构" --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askScope, "context", "", "Parent keyword to analyze the problems within")
	askCmd.Flags().IntVar(&askConcurrency, "concurrency", 3, "Maximum concurrent fetches")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "Print JSON instead of markdown")
	askCmd.Flags().IntVar(&askWidth, "width", 100, "Markdown wrap width")
}

// askAnswer is one problem's outcome.
type askAnswer struct {
	Problem string          `json:"problem"`
	Context string          `json:"context,omitempty"`
	Result  *insight.Result `json:"result"`
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := commandContext(cmd)

	stack, err := newProvider(ctx, explorer.ProviderOptions(cfg))
	if err != nil {
		return fmt.Errorf("failed to build provider: %w", err)
	}
	defer stack.Close()

	answers := make([]askAnswer, len(args))
	g, gctx := errgroup.WithContext(ctx)
	if askConcurrency > 0 {
		g.SetLimit(askConcurrency)
	}
	for i, problem := range args {
		g.Go(func() error {
			start := time.Now()
			r, err := stack.Provider.FetchInsight(gctx, problem, askScope)
			if err != nil {
				return fmt.Errorf("ask %q: %w", problem, err)
			}
			logger.Info("Insight fetched",
				zap.String("problem", problem),
				zap.Int("vectors", len(r.Vectors)),
				zap.Duration("took", time.Since(start)))
			answers[i] = askAnswer{Problem: problem, Context: askScope, Result: r}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if askJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(answers)
	}

	md := ui.NewMarkdown(cfg.UI.DarkMode)
	for i, a := range answers {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintln(out, md.Render(answerMarkdown(a), askWidth))
	}
	return nil
}

// answerMarkdown lays out one answer the way the explorer's tabs do.
func answerMarkdown(a askAnswer) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", a.Problem)
	if a.Context != "" {
		fmt.Fprintf(&sb, "_context: %s_\n\n", a.Context)
	}

	r := a.Result
	sb.WriteString("## 特征向量\n\n")
	for _, v := range r.Vectors {
		fmt.Fprintf(&sb, "- **%s** (%.1f%%): %s\n", v.Keyword, v.Weight*100, v.Description)
	}

	fmt.Fprintf(&sb, "\n## 底层逻辑 / FIRST PRINCIPLE\n\n> %s\n", r.FirstPrinciple)

	sb.WriteString("\n## 认知重构\n\n")
	fmt.Fprintf(&sb, "- %s *%s* %s\n", textclean.OldPrefix, textclean.OldPattern(r.OldPattern), textclean.Suffix)
	fmt.Fprintf(&sb, "- %s **%s** %s\n", textclean.NewPrefix, textclean.NewMetaphor(r.NewMetaphor), textclean.Suffix)
	return sb.String()
}
