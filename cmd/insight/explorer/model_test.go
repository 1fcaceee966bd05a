package explorer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"insightvector/cmd/insight/ui"
	"insightvector/internal/config"
	"insightvector/internal/explore"
	"insightvector/internal/insight"
	"insightvector/internal/layout"
	"insightvector/internal/provider"
	"insightvector/internal/textclean"

	"github.com/benbjohnson/clock"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rootProblem = "我担心AI会取代我的工作"

type call struct{ problem, scope string }

// fakeProvider answers every request with a deterministic result unless
// the keyword is listed in fail.
type fakeProvider struct {
	calls []call
	ctxs  []context.Context
	fail  map[string]error
}

func (f *fakeProvider) fetch(ctx context.Context, problem, scope string) (*insight.Result, error) {
	f.calls = append(f.calls, call{problem, scope})
	f.ctxs = append(f.ctxs, ctx)
	if err, ok := f.fail[problem]; ok {
		return nil, err
	}
	r := &insight.Result{
		FirstPrinciple: "principle of " + problem,
		OldPattern:     "停止像 铁匠 一样思考",
		NewMetaphor:    "开始像 园丁 一样思考",
	}
	for i := 1; i <= 6; i++ {
		r.Vectors = append(r.Vectors, insight.Vector{
			ID:          fmt.Sprintf("v%d", i),
			Keyword:     fmt.Sprintf("%s/%d", problem, i),
			Weight:      float64(i) / 10,
			Description: "description " + problem,
		})
	}
	return r, nil
}

type harness struct {
	t     *testing.T
	m     Model
	mock  *clock.Mock
	fake  *fakeProvider
	queue []tea.Msg
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	mock := clock.NewMock()
	fake := &fakeProvider{fail: map[string]error{}}
	m, err := New(context.Background(), Options{
		Config:   config.DefaultConfig(),
		Provider: provider.Func(fake.fetch),
		Clock:    mock,
	})
	require.NoError(t, err)

	h := &harness{t: t, m: m, mock: mock, fake: fake}
	h.send(tea.WindowSizeMsg{Width: 120, Height: 40})
	return h
}

// send delivers msg and collects any provider outcomes its command yields.
// Commands issued while editing are cursor blinks and are not executed.
func (h *harness) send(msg tea.Msg) {
	h.t.Helper()
	next, cmd := h.m.Update(msg)
	h.m = next.(Model)
	if h.stage() != explore.StageInput {
		h.collect(cmd)
	}
}

func (h *harness) collect(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			h.collect(c)
		}
	case fetchDoneMsg:
		h.queue = append(h.queue, msg)
	}
}

// deliver feeds queued provider outcomes back into the model.
func (h *harness) deliver() {
	h.t.Helper()
	q := h.queue
	h.queue = nil
	for _, msg := range q {
		h.send(msg)
	}
}

func (h *harness) frame(d time.Duration) {
	h.t.Helper()
	h.mock.Add(d)
	next, _ := h.m.Update(frameMsg(h.mock.Now()))
	h.m = next.(Model)
}

func (h *harness) key(s string) {
	h.t.Helper()
	switch s {
	case "enter":
		h.send(tea.KeyMsg{Type: tea.KeyEnter})
	case "ctrl+r":
		h.send(tea.KeyMsg{Type: tea.KeyCtrlR})
	case "esc":
		h.send(tea.KeyMsg{Type: tea.KeyEsc})
	case "tab":
		h.send(tea.KeyMsg{Type: tea.KeyTab})
	default:
		h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	}
}

func (h *harness) stage() explore.Stage { return h.m.Controller().Stage() }

// toMetaphor submits the root problem and plays the timeline to the end.
func (h *harness) toMetaphor() {
	h.t.Helper()
	h.send(submitMsg(rootProblem))
	h.deliver()
	h.frame(3 * time.Second)
	h.frame(2500 * time.Millisecond)
	h.frame(2500 * time.Millisecond)
	require.Equal(h.t, explore.StageMetaphor, h.stage())
}

// leafCell settles the map and returns the screen cell of a visible leaf.
func (h *harness) leafCell() (id string, x, y int) {
	h.t.Helper()
	h.m.Engine().Step(300)
	l := h.m.geometry()
	cols, rows := l.CanvasSize()
	for _, n := range h.m.Engine().Snapshot().Nodes {
		if n.Kind != layout.KindLeaf {
			continue
		}
		c, r := h.m.camera.ToCell(n.X, n.Y)
		col, row := int(math.Round(c)), int(math.Round(r))
		if col >= 0 && col < cols && row >= 0 && row < rows {
			return n.ID, col, row + l.CanvasTop()
		}
	}
	h.t.Fatalf("no leaf inside the %dx%d canvas", cols, rows)
	return "", 0, 0
}

func (h *harness) mouse(action tea.MouseAction, button tea.MouseButton, x, y int) {
	h.t.Helper()
	h.send(tea.MouseMsg{X: x, Y: y, Action: action, Button: button})
}

func TestNewRequiresProvider(t *testing.T) {
	_, err := New(context.Background(), Options{})
	assert.ErrorIs(t, err, ErrNoProvider)
}

func TestRootTimeline(t *testing.T) {
	h := newHarness(t)
	assert.Contains(t, h.m.View(), "维度罗盘")

	h.send(submitMsg(rootProblem))
	assert.Equal(t, explore.StageVectorizing, h.stage())
	assert.Contains(t, h.m.View(), explore.LoadingInitial)
	require.Len(t, h.queue, 1)

	h.frame(800 * time.Millisecond)
	assert.Contains(t, h.m.View(), explore.LoadingRoot)

	h.deliver()
	assert.Equal(t, explore.StageMapping, h.stage())
	require.True(t, h.m.Engine().Loaded())
	assert.Equal(t, layout.ModeNormal, h.m.Engine().Mode())
	assert.Equal(t, []call{{rootProblem, ""}}, h.fake.calls)

	h.frame(3 * time.Second)
	assert.Equal(t, explore.StageCompressing, h.stage())
	assert.Equal(t, layout.ModeCompress, h.m.Engine().Mode())

	h.frame(2500 * time.Millisecond)
	assert.Equal(t, explore.StagePrinciple, h.stage())
	assert.False(t, h.m.Engine().Loaded(), "graph is hidden during the reveal")
	assert.Contains(t, h.m.View(), "principle of "+rootProblem)

	h.frame(2500 * time.Millisecond)
	assert.Equal(t, explore.StageMetaphor, h.stage())
	assert.Equal(t, explore.TabMetaphor, h.m.Controller().Tab())
	view := h.m.View()
	assert.Contains(t, view, "铁匠")
	assert.Contains(t, view, "园丁")

	// Nothing else is due.
	h.frame(10 * time.Second)
	assert.Equal(t, explore.StageMetaphor, h.stage())
}

func TestEnterSubmitsTypedProblem(t *testing.T) {
	h := newHarness(t)
	h.key("enter")
	assert.Equal(t, explore.StageInput, h.stage(), "empty input is refused")

	h.m.input.SetValue("  why  ")
	h.key("enter")
	assert.Equal(t, explore.StageVectorizing, h.stage())
	h.deliver()
	assert.Equal(t, []string{"why"}, h.m.Controller().Path())
}

func TestTabKeysIgnoredWhileHidden(t *testing.T) {
	h := newHarness(t)
	h.send(submitMsg(rootProblem))
	h.deliver()
	require.Equal(t, explore.StageMapping, h.stage())

	h.key("2")
	h.key("tab")
	assert.Equal(t, explore.TabMap, h.m.Controller().Tab())
	assert.False(t, h.m.tabsShown())
}

func TestTabSelection(t *testing.T) {
	h := newHarness(t)
	h.toMetaphor()

	h.key("2")
	assert.Equal(t, explore.TabData, h.m.Controller().Tab())
	assert.Contains(t, h.m.View(), "选择左侧向量以探索认知深义")

	h.key("j")
	sel, ok := h.m.Controller().Selected()
	require.True(t, ok)
	assert.Equal(t, "v1", sel.ID)
	h.key("j")
	h.key("j")
	h.key("k")
	sel, _ = h.m.Controller().Selected()
	assert.Equal(t, "v2", sel.ID)
	view := h.m.View()
	assert.Contains(t, view, "深度解析")
	assert.Contains(t, view, DrillActionLabel(false, 1))

	h.key("tab")
	assert.Equal(t, explore.TabPrinciple, h.m.Controller().Tab())
	assert.Contains(t, h.m.View(), "FIRST PRINCIPLE")

	spans := h.m.tabSpans()
	require.Len(t, spans, len(explore.Tabs))
	h.mouse(tea.MouseActionPress, tea.MouseButtonLeft, spans[0].from, ui.HeaderHeight)
	assert.Equal(t, explore.TabMap, h.m.Controller().Tab())
	assert.True(t, h.m.Engine().Loaded())
}

func TestClickLeafDrillsDown(t *testing.T) {
	h := newHarness(t)
	h.toMetaphor()
	h.key("1")

	id, x, y := h.leafCell()
	h.mouse(tea.MouseActionPress, tea.MouseButtonLeft, x, y)
	h.mouse(tea.MouseActionRelease, tea.MouseButtonLeft, x, y)
	require.Equal(t, explore.StageVectorizing, h.stage())
	require.Len(t, h.queue, 1)

	h.deliver()
	keyword := fmt.Sprintf("%s/%s", rootProblem, strings.TrimPrefix(id, "v"))
	assert.Equal(t, call{keyword, rootProblem}, h.fake.calls[1])
	assert.Equal(t, explore.StageMetaphor, h.stage())
	assert.Equal(t, explore.TabMap, h.m.Controller().Tab())
	assert.Equal(t, []string{rootProblem, keyword}, h.m.Controller().Path())
	assert.Contains(t, h.m.View(), "L2: ")
}

func TestDragDoesNotDrill(t *testing.T) {
	h := newHarness(t)
	h.toMetaphor()
	h.key("1")

	id, x, y := h.leafCell()
	h.mouse(tea.MouseActionPress, tea.MouseButtonLeft, x, y)
	h.mouse(tea.MouseActionMotion, tea.MouseButtonLeft, x+3, y+1)
	h.mouse(tea.MouseActionRelease, tea.MouseButtonLeft, x+3, y+1)

	assert.Equal(t, explore.StageMetaphor, h.stage())
	assert.Len(t, h.fake.calls, 1)
	for _, n := range h.m.Engine().Snapshot().Nodes {
		if n.ID == id {
			assert.False(t, n.Pinned, "released node is unpinned")
		}
	}
}

func TestHover(t *testing.T) {
	h := newHarness(t)
	h.toMetaphor()
	h.key("1")

	id, x, y := h.leafCell()
	h.mouse(tea.MouseActionMotion, tea.MouseButtonNone, x, y)
	assert.Equal(t, id, h.m.hovered)
	assert.NotEmpty(t, h.m.View())

	h.mouse(tea.MouseActionMotion, tea.MouseButtonNone, 0, 0)
	assert.Empty(t, h.m.hovered)
}

func TestClickRefusedWhileMapping(t *testing.T) {
	h := newHarness(t)
	h.send(submitMsg(rootProblem))
	h.deliver()
	require.Equal(t, explore.StageMapping, h.stage())

	_, x, y := h.leafCell()
	h.mouse(tea.MouseActionPress, tea.MouseButtonLeft, x, y)
	h.mouse(tea.MouseActionRelease, tea.MouseButtonLeft, x, y)
	assert.Equal(t, explore.StageMapping, h.stage())
	assert.Empty(t, h.queue)
}

func TestKeyboardFocusDrill(t *testing.T) {
	h := newHarness(t)
	h.toMetaphor()
	h.key("1")

	h.key("]")
	assert.Equal(t, "v1", h.m.focused)
	h.key("[")
	h.key("[")
	assert.Equal(t, "v5", h.m.focused)

	h.key("enter")
	require.Equal(t, explore.StageVectorizing, h.stage())
	h.deliver()
	assert.Equal(t, 2, h.m.Controller().Depth())
}

func TestJumpBack(t *testing.T) {
	h := newHarness(t)
	h.toMetaphor()
	h.key("1")
	h.key("]")
	h.key("enter")
	h.deliver()
	require.Equal(t, 2, h.m.Controller().Depth())

	h.key("b")
	assert.True(t, h.m.crumbKey)
	h.key("esc")
	assert.False(t, h.m.crumbKey)

	h.key("b")
	h.key("1")
	assert.Equal(t, 1, h.m.Controller().Depth())
	assert.Equal(t, explore.TabMap, h.m.Controller().Tab())

	// The leaf drilled earlier is now explored and served from the cache.
	h.key("]")
	h.key("enter")
	assert.Empty(t, h.queue)
	assert.Equal(t, 2, h.m.Controller().Depth())
	assert.Len(t, h.fake.calls, 2)

	crumbs := h.m.crumbSpans()
	require.Len(t, crumbs, 2)
	h.mouse(tea.MouseActionPress, tea.MouseButtonLeft, crumbs[0].from+1, ui.HeaderHeight+ui.TabBarHeight+1)
	assert.Equal(t, 1, h.m.Controller().Depth())
}

func TestFetchFailureShowsNotice(t *testing.T) {
	h := newHarness(t)
	h.fake.fail[rootProblem] = errors.New("quota exhausted")

	h.send(submitMsg(rootProblem))
	h.deliver()
	assert.Equal(t, explore.StageInput, h.stage())
	assert.Contains(t, h.m.View(), "解构失败：quota exhausted")
	assert.Empty(t, h.m.Controller().Path())

	delete(h.fake.fail, rootProblem)
	h.key("enter")
	assert.Empty(t, h.m.notice)
}

func TestResetDiscardsInflightFetch(t *testing.T) {
	h := newHarness(t)
	h.send(submitMsg(rootProblem))
	require.Len(t, h.queue, 1)

	h.key("ctrl+r")
	assert.Equal(t, explore.StageInput, h.stage())
	h.deliver()
	assert.Equal(t, explore.StageInput, h.stage())
	assert.Empty(t, h.m.Controller().Path())
	assert.Empty(t, h.m.notice)
}

func TestResetCancelsSupersededProviderCall(t *testing.T) {
	h := newHarness(t)
	h.send(submitMsg(rootProblem))
	require.Len(t, h.fake.ctxs, 1)
	require.NoError(t, h.fake.ctxs[0].Err(), "running call keeps its context")
	assert.Equal(t, 1, h.m.fetches.running())

	h.key("ctrl+r")
	assert.ErrorIs(t, h.fake.ctxs[0].Err(), context.Canceled)
	assert.Equal(t, 0, h.m.fetches.running())
	h.deliver()
	assert.Equal(t, explore.StageInput, h.stage())
}

func TestJumpCancelsDrillDownCall(t *testing.T) {
	h := newHarness(t)
	h.toMetaphor()
	require.ErrorIs(t, h.fake.ctxs[0].Err(), context.Canceled, "settled call is released")

	h.key("1")
	h.key("]")
	h.key("enter")
	require.Equal(t, explore.StageVectorizing, h.stage())
	require.Len(t, h.fake.ctxs, 2)
	require.NoError(t, h.fake.ctxs[1].Err())

	h.key("b")
	h.key("1")
	assert.Equal(t, explore.StageMetaphor, h.stage())
	assert.ErrorIs(t, h.fake.ctxs[1].Err(), context.Canceled)
	assert.Equal(t, 0, h.m.fetches.running())

	h.deliver()
	assert.Equal(t, []string{rootProblem}, h.m.Controller().Path())
}

func TestConfigReload(t *testing.T) {
	h := newHarness(t)
	require.False(t, h.m.styles.Theme.IsDark)

	h.send(configReloadedMsg{err: errors.New("bad yaml")})
	assert.False(t, h.m.styles.Theme.IsDark)

	cfg := config.DefaultConfig()
	cfg.UI.DarkMode = true
	cfg.UI.FPS = 60
	cfg.Layout.MaxZoom = 2
	h.send(configReloadedMsg{cfg: cfg})
	assert.True(t, h.m.styles.Theme.IsDark)
	assert.Equal(t, time.Second/60, h.m.frame)
	assert.Equal(t, 2.0, h.m.camera.MaxZoom)
}

func TestMapCameraKeys(t *testing.T) {
	h := newHarness(t)
	h.toMetaphor()
	h.key("1")

	h.key("+")
	assert.InDelta(t, zoomStep, h.m.camera.Zoom, 1e-9)
	h.key("h")
	assert.Equal(t, float64(panStepCols), h.m.camera.PanX)
	h.key("0")
	assert.Equal(t, 1.0, h.m.camera.Zoom)
	assert.Zero(t, h.m.camera.PanX)
}

func TestHitSpan(t *testing.T) {
	spans := []span{{2, 6}, {7, 12}}
	i, ok := hitSpan(spans, 8, 3, 2, 3)
	assert.True(t, ok)
	assert.Equal(t, 1, i)
	_, ok = hitSpan(spans, 6, 3, 2, 3)
	assert.False(t, ok)
	_, ok = hitSpan(spans, 3, 5, 2, 3)
	assert.False(t, ok)
}

func TestMetaphorHalvesAreCleaned(t *testing.T) {
	h := newHarness(t)
	h.toMetaphor()
	r := h.m.Controller().Current()
	assert.Equal(t, "铁匠", textclean.OldPattern(r.OldPattern))
	assert.Equal(t, "园丁", textclean.NewMetaphor(r.NewMetaphor))
}
