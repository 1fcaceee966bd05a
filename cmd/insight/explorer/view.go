package explorer

import (
	"fmt"
	"math"
	"strings"

	"insightvector/cmd/insight/ui"
	"insightvector/internal/explore"
	"insightvector/internal/insight"
	"insightvector/internal/textclean"

	"github.com/charmbracelet/lipgloss"
)

var tabTitles = map[explore.Tab]string{
	explore.TabMap:       "◈ 星状图谱",
	explore.TabData:      "▤ 特征向量",
	explore.TabPrinciple: "◎ 底层逻辑",
	explore.TabMetaphor:  "✦ 认知重构",
}

const protocolLine = "INSIGHT VECTOR PROTOCOL // MULTI-LEVEL COGNITION ENABLED"

// View renders the screen.
func (m Model) View() string {
	l := m.geometry()
	st := m.controller.Snapshot()

	var body string
	switch {
	case st.Stage == explore.StageInput:
		body = m.renderInput(l)
	case st.Stage == explore.StageVectorizing:
		body = m.renderVectorizing(st, l)
	case st.Result == nil:
		body = ""
	case m.tabsShown():
		body = m.renderTabs(st, l)
	case st.Stage == explore.StagePrinciple:
		body = m.renderPrincipleReveal(st, l)
	default:
		body = m.renderCanvas(st, l)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(st),
		fit(body, l.TerminalHeight-ui.HeaderHeight-ui.FooterHeight),
		m.renderFooter(st),
	)
}

// fit pads or truncates s to exactly h rows.
func fit(s string, h int) string {
	if h < 1 {
		h = 1
	}
	return lipgloss.NewStyle().Height(h).MaxHeight(h).Render(s)
}

func (m Model) renderHeader(st explore.State) string {
	s := m.styles
	left := " " + ui.Logo(s)

	right := "Waiting..."
	if st.Stage != explore.StageInput {
		right = fmt.Sprintf("DEPTH L%d // %s", st.Depth, st.Stage)
	}
	right = s.Muted.Render(right)
	if st.TabsVisible {
		right += "  " + s.Badge.Render("ctrl+r 重置认知协议")
	}
	right += " "

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	line := lipgloss.NewStyle().MaxWidth(m.width).Render(left + strings.Repeat(" ", gap) + right)
	return line + "\n" + s.RenderDivider(m.width)
}

func (m Model) renderFooter(st explore.State) string {
	s := m.styles
	path := "Root Context"
	if len(st.Path) > 0 {
		path = strings.Join(st.Path, " → ")
	}

	var hints []string
	switch {
	case m.crumbKey:
		hints = append(hints, fmt.Sprintf("回溯至 L1-L%d ?", st.Depth))
	case st.Stage == explore.StageInput:
		hints = append(hints, "enter 开启解构", "alt+enter 换行", "esc 退出")
	case m.graphShown() && m.tabsShown():
		hints = append(hints, fmt.Sprintf("点击图谱节点进入下一维度 (%d/%d)", st.Depth, st.MaxDepth), "b+数字 回溯级别", "滚轮缩放 拖拽平移")
	case m.tabsShown():
		hints = append(hints, "tab 切换视图", "b+数字 回溯级别")
	}
	line := s.Muted.Render(protocolLine)
	if len(hints) > 0 {
		line += "  " + s.Subtitle.Render(strings.Join(hints, " · "))
	}

	clamp := lipgloss.NewStyle().MaxWidth(m.width)
	return s.RenderDivider(m.width) + "\n" +
		clamp.Render(s.Footer.Render(path)) + "\n" +
		clamp.Render(s.Footer.Render(line))
}

// ---------------------------------------------------------------------------
// stages
// ---------------------------------------------------------------------------

func (m Model) renderInput(l ui.LayoutConfig) string {
	s := m.styles
	title := s.Title.Render("维度罗盘") + " " + s.Success.Render("/ Insight Vector")
	tagline := s.Muted.Render("超越认知的迷雾。将复杂混乱的思绪，") +
		s.Success.Render("压缩至第一性原理") + s.Muted.Render("。")

	action := s.Muted.Render("开启解构 / Deconstruct →")
	if strings.TrimSpace(m.input.Value()) != "" {
		action = s.Action.Render("enter 开启解构 / Deconstruct →")
	}

	steps := []string{
		s.PipOn.Render("●") + " " + s.Muted.Render("向量化"),
		s.PipOff.Render("●") + " " + s.Muted.Render("高维映射"),
		s.PipOff.Render("●") + " " + s.Muted.Render("第一性原理"),
		s.PipOff.Render("●") + " " + s.Muted.Render("降维隐喻"),
	}

	parts := []string{title, "", tagline, "", m.input.View(), "", action, "", strings.Join(steps, "    ")}
	if m.notice != "" {
		parts = append(parts, "", s.Error.Render(m.notice))
	}
	return lipgloss.Place(l.TerminalWidth, l.BodyHeight(), lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center, parts...))
}

func (m Model) renderVectorizing(st explore.State, l ui.LayoutConfig) string {
	s := m.styles
	line := m.spinner.View() + " " + s.Title.Render(st.LoadingText)
	return lipgloss.Place(l.TerminalWidth, l.BodyHeight(), lipgloss.Center, lipgloss.Center, line)
}

func (m Model) renderCanvas(st explore.State, l ui.LayoutConfig) string {
	cols, rows := l.CanvasSize()
	cv := ui.NewCanvas(cols, rows)
	ui.DrawGraph(cv, m.camera, m.engine.Snapshot(), ui.GraphOptions{
		Hovered:  m.hovered,
		Focused:  m.focused,
		CanDrill: st.CanDrillDown,
		Stars:    true,
	})
	return cv.Render(m.styles)
}

func (m Model) renderPrincipleReveal(st explore.State, l ui.LayoutConfig) string {
	s := m.styles
	w := min(l.ContentWidth(), 80)
	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Render(fmt.Sprintf("核心逻辑洞察 (L%d)...", st.Depth)),
		"",
		s.Principle.Width(w).Render(st.Result.FirstPrinciple),
	)
	return lipgloss.Place(l.TerminalWidth, l.BodyHeight(), lipgloss.Center, lipgloss.Center, content)
}

// ---------------------------------------------------------------------------
// tabs
// ---------------------------------------------------------------------------

// tabLabels renders one label per tab, in order.
func (m Model) tabLabels() []string {
	labels := make([]string, len(explore.Tabs))
	for i, t := range explore.Tabs {
		text := fmt.Sprintf("%d %s", i+1, tabTitles[t])
		if t == m.controller.Tab() {
			labels[i] = m.styles.TabActive.Render(text)
		} else {
			labels[i] = m.styles.Tab.Render(text)
		}
	}
	return labels
}

// spansOf lays labels out left to right from ContentIndent with sep
// between them.
func spansOf(labels []string, sep int) []span {
	spans := make([]span, len(labels))
	x := ui.ContentIndent
	for i, lbl := range labels {
		w := lipgloss.Width(lbl)
		spans[i] = span{from: x, to: x + w}
		x += w + sep
	}
	return spans
}

func (m Model) tabSpans() []span { return spansOf(m.tabLabels(), 1) }

func (m Model) renderTabs(st explore.State, l ui.LayoutConfig) string {
	bar := strings.Repeat(" ", ui.ContentIndent) + strings.Join(m.tabLabels(), " ")
	bar += "\n" + m.styles.RenderDivider(m.width)

	h := l.BodyHeight()
	var content string
	switch st.Tab {
	case explore.TabMap:
		content = fit(m.renderCrumbs(), ui.BreadcrumbHeight) + "\n" + m.renderCanvas(st, l)
	case explore.TabData:
		content = m.renderData(st, l)
	case explore.TabPrinciple:
		content = m.renderPrinciple(st, l)
	case explore.TabMetaphor:
		content = m.renderMetaphor(st, l)
	}
	return bar + "\n" + fit(content, h)
}

const crumbSep = " / "

// crumbLabels renders a breadcrumb per path level; the last is active.
func (m Model) crumbLabels() []string {
	path := m.controller.Path()
	labels := make([]string, len(path))
	for i, kw := range path {
		text := fmt.Sprintf("L%d: %s", i+1, insight.Shorten(kw, ui.BreadcrumbLimit, ui.BreadcrumbKeep))
		if i == len(path)-1 {
			labels[i] = m.styles.CrumbActive.Render(text)
		} else {
			labels[i] = m.styles.Crumb.Render(text)
		}
	}
	return labels
}

func (m Model) crumbSpans() []span { return spansOf(m.crumbLabels(), lipgloss.Width(crumbSep)) }

func (m Model) renderCrumbs() string {
	labels := m.crumbLabels()
	parts := make([]string, 0, 2*len(labels)+1)
	parts = append(parts, strings.Repeat(" ", ui.ContentIndent))
	for i, lbl := range labels {
		if i > 0 {
			parts = append(parts, m.styles.Muted.Render(crumbSep))
		}
		parts = append(parts, lbl)
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, parts...)
}

func weightBar(s ui.Styles, w float64) string {
	filled := int(math.Round(w * ui.WeightBarWidth))
	filled = max(0, min(ui.WeightBarWidth, filled))
	return s.WeightBar.Render(strings.Repeat("━", filled)) +
		s.WeightTrack.Render(strings.Repeat("─", ui.WeightBarWidth-filled))
}

// DrillActionLabel is the data tab's drill button text for a vector at depth.
func DrillActionLabel(cached bool, depth int) string {
	if cached {
		return "查看已钻取的分析"
	}
	return fmt.Sprintf("针对此维度进行钻取分析 (L%d)", depth+1)
}

func (m Model) renderData(st explore.State, l ui.LayoutConfig) string {
	s := m.styles
	listW, detailW := l.DataColumns()

	rows := []string{
		s.Title.Render(fmt.Sprintf("L%d 特征向量集", st.Depth)) + "  " + s.Muted.Render("j/k 选择 · enter 钻取"),
		"",
	}
	for _, v := range st.Result.Vectors {
		head := v.Keyword + "  " + s.Weight.Render(fmt.Sprintf("%.1f%%", v.Weight*100))
		if m.controller.Cached(v.Keyword) {
			head += " " + s.Badge.Render("已解构")
		}
		row := head + "\n" + weightBar(s, v.Weight)
		if v.ID == st.SelectedID {
			rows = append(rows, s.VectorSelected.Render(row))
		} else {
			rows = append(rows, s.VectorRow.Render(row))
		}
	}
	list := lipgloss.NewStyle().Width(listW).Render(strings.Join(rows, "\n"))

	var detail string
	if v, ok := m.controller.Selected(); ok {
		parts := []string{
			s.Badge.Render("深度解析") + " " + s.Bold.Render(v.Keyword),
			"",
			m.detail.View(),
		}
		if st.CanDrillDown {
			parts = append(parts, "", s.Action.Render("enter "+DrillActionLabel(m.controller.Cached(v.Keyword), st.Depth)))
		}
		detail = strings.Join(parts, "\n")
	} else {
		detail = s.Muted.Render("选择左侧向量以探索认知深义")
	}
	detail = lipgloss.NewStyle().Width(detailW).Render(detail)

	pad := strings.Repeat(" ", ui.ContentIndent)
	if l.IsCompact {
		return indent(list+"\n\n"+detail, pad)
	}
	return indent(lipgloss.JoinHorizontal(lipgloss.Top, list, " ", detail), pad)
}

func indent(s, pad string) string {
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = pad + lines[i]
	}
	return strings.Join(lines, "\n")
}

// depthPips draws one lit pip per explored level up to the maximum.
func depthPips(s ui.Styles, depth, maxDepth int) string {
	var sb strings.Builder
	for i := 0; i < maxDepth; i++ {
		if i > 0 {
			sb.WriteString(" ")
		}
		if i < depth {
			sb.WriteString(s.PipOn.Render("●"))
		} else {
			sb.WriteString(s.PipOff.Render("●"))
		}
	}
	return sb.String()
}

func (m Model) renderPrinciple(st explore.State, l ui.LayoutConfig) string {
	s := m.styles
	w := min(l.ContentWidth(), 90)
	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Render(fmt.Sprintf("L%d 底层逻辑 / FIRST PRINCIPLE", st.Depth)),
		s.RenderDivider(12),
		"",
		m.markdown.Render("> "+st.Result.FirstPrinciple, w),
		"",
		depthPips(s, st.Depth, st.MaxDepth),
	)
	return lipgloss.Place(l.TerminalWidth, l.BodyHeight(), lipgloss.Center, lipgloss.Center, content)
}

func (m Model) renderMetaphor(st explore.State, l ui.LayoutConfig) string {
	s := m.styles
	w := min(l.ContentWidth(), 90)
	old := textclean.OldPattern(st.Result.OldPattern)
	next := textclean.NewMetaphor(st.Result.NewMetaphor)

	parts := []string{
		s.MinusMark.Render("−") + " " + s.Muted.Render(fmt.Sprintf("停止固有思维模式 / OLD PATTERN (L%d)", st.Depth)),
		m.markdown.Render(fmt.Sprintf("%s *%s* %s", textclean.OldPrefix, old, textclean.Suffix), w),
		s.RenderDivider(w),
		s.PlusMark.Render("+") + " " + s.Title.Render(fmt.Sprintf("开启降维隐喻洞察 / NEW METAPHOR (L%d)", st.Depth)),
		m.markdown.Render(fmt.Sprintf("%s **%s** %s", textclean.NewPrefix, next, textclean.Suffix), w),
	}
	if st.Depth < st.MaxDepth {
		parts = append(parts, "", s.Subtitle.Render(fmt.Sprintf("切换至“星状图谱”探索更深层 (L%d) 的维度", st.Depth+1)))
	}
	return lipgloss.Place(l.TerminalWidth, l.BodyHeight(), lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Left, parts...))
}
