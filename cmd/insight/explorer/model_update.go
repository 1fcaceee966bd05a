package explorer

import (
	"errors"
	"fmt"

	"insightvector/cmd/insight/ui"
	"insightvector/internal/explore"
	"insightvector/internal/layout"
	"insightvector/internal/logging"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	panStepCols = 4
	panStepRows = 2
	zoomStep    = 1.25
	wheelStep   = 1.2
)

// Update handles one message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.input.SetWidth(min(m.width-2*ui.ContentIndent, 80))
		m.sync()
		return m, nil

	case frameMsg:
		m.advance()
		return m, m.tick()

	case spinner.TickMsg:
		if m.controller.Stage() != explore.StageVectorizing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case submitMsg:
		m.input.SetValue(string(msg))
		return m.submit()

	case fetchDoneMsg:
		return m.resolve(msg)

	case configReloadedMsg:
		m.applyConfig(msg)
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.controller.Stage() == explore.StageInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// advance runs one frame: due stage deadlines, graph sync, simulation
// steps, then the compression signal.
func (m *Model) advance() {
	m.controller.Tick()
	m.sync()
	m.engine.Advance()
	if m.engine.Poll() {
		if err := m.controller.CompressionComplete(); err != nil {
			m.log.Debug("compression signal ignored: %v", err)
		}
		m.sync()
	}
}

// tabsShown reports whether the tab bar is on screen.
func (m Model) tabsShown() bool {
	return m.controller.TabsVisible() && m.controller.Stage() == explore.StageMetaphor
}

// graphShown reports whether the current stage paints the graph.
func (m Model) graphShown() bool {
	if m.controller.Current() == nil {
		return false
	}
	switch m.controller.Stage() {
	case explore.StageMapping, explore.StageCompressing:
		return true
	case explore.StageMetaphor:
		return m.tabsShown() && m.controller.Tab() == explore.TabMap
	}
	return false
}

// geometry sizes the camera for the current screen and returns the layout.
func (m Model) geometry() ui.LayoutConfig {
	l := ui.NewLayoutConfig(m.width, m.height, m.tabsShown())
	cols, rows := l.CanvasSize()
	cfg := m.engine.Config()
	m.camera.Resize(cols, rows, cfg.Width, cfg.Height)
	return l
}

// sync brings the engine and the detail pane in line with the controller.
func (m *Model) sync() {
	m.syncGraph()
	m.refreshDetail()
}

// syncGraph rebuilds the engine's graph whenever the level or mode on
// display changes and drops it when the graph is hidden.
func (m *Model) syncGraph() {
	if !m.graphShown() {
		if m.graphKey != "" {
			m.engine.Clear()
			m.graphKey = ""
			m.hovered, m.ptr = "", pointer{}
		}
		return
	}

	st := m.controller.Snapshot()
	mode := layout.ModeNormal
	if st.Stage == explore.StageCompressing {
		mode = layout.ModeCompress
	}
	level := fmt.Sprintf("%d\x00%s", st.Depth, st.Keyword)
	key := level + "\x00" + mode.String()
	explored := m.controller.Explored()
	if key == m.graphKey {
		m.engine.Annotate(explored)
		return
	}

	m.engine.Load(st.Keyword, st.Result.Vectors, explored, mode)
	m.graphKey = key
	m.hovered, m.ptr = "", pointer{}
	if level != m.graphLevel {
		m.graphLevel = level
		m.focused = ""
		m.camera.Reset()
	}
}

func (m *Model) refreshDetail() {
	l := m.geometry()
	_, w := l.DataColumns()
	h := l.BodyHeight() - 8
	if h < 3 {
		h = 3
	}
	m.detail.Width, m.detail.Height = w, h

	content := ""
	if v, ok := m.controller.Selected(); ok {
		content = m.styles.Quote.Width(max(w-4, 10)).Render("“" + v.Description + "”")
	}
	if content != m.detailText {
		m.detailText = content
		m.detail.SetContent(content)
		m.detail.GotoTop()
	}
}

// ---------------------------------------------------------------------------
// actions
// ---------------------------------------------------------------------------

func (m Model) submit() (tea.Model, tea.Cmd) {
	req, err := m.controller.Submit(m.input.Value())
	if err != nil {
		m.log.Debug("submit ignored: %v", err)
		return m, nil
	}
	m.notice = ""
	m.input.Blur()
	m.sync()
	return m, m.fetch(req)
}

func (m Model) resolve(msg fetchDoneMsg) (tea.Model, tea.Cmd) {
	m.fetches.done(msg.req.Epoch)
	err := m.controller.Resolve(msg.req, msg.result, msg.err)
	if errors.Is(err, explore.ErrStaleFetch) {
		return m, nil
	}
	if m.controller.Stage() == explore.StageInput {
		m.notice = failureNotice(msg.err)
		m.log.Warn("fetch for %q failed: %v", msg.req.Keyword, msg.err)
		m.input.Focus()
		m.sync()
		return m, textarea.Blink
	}
	m.sync()
	return m, nil
}

func failureNotice(err error) string {
	if err == nil {
		return "解构失败：结果不可用"
	}
	return "解构失败：" + err.Error()
}

func (m Model) drill(id string) (tea.Model, tea.Cmd) {
	req, err := m.controller.DrillDown(id)
	if err != nil {
		m.log.Debug("drill-down on %q ignored: %v", id, err)
		return m, nil
	}
	m.sync()
	return m, m.fetch(req)
}

func (m Model) jump(index int) (tea.Model, tea.Cmd) {
	if err := m.controller.JumpToLevel(index); err != nil {
		m.log.Debug("jump to level %d ignored: %v", index+1, err)
		return m, nil
	}
	m.cancelSuperseded()
	m.sync()
	return m, nil
}

func (m Model) reset() (tea.Model, tea.Cmd) {
	m.controller.Reset()
	m.cancelSuperseded()
	m.input.Reset()
	m.input.Focus()
	m.notice = ""
	m.crumbKey = false
	m.focused = ""
	m.sync()
	return m, textarea.Blink
}

// cancelSuperseded stops provider calls the controller no longer waits for.
func (m Model) cancelSuperseded() {
	req, ok := m.controller.Inflight()
	m.fetches.cancelExcept(req.Epoch, ok)
}

func (m Model) selectTab(tab explore.Tab) (tea.Model, tea.Cmd) {
	if err := m.controller.SelectTab(tab); err != nil {
		return m, nil
	}
	m.sync()
	return m, nil
}

func (m Model) cycleTab(delta int) (tea.Model, tea.Cmd) {
	cur := 0
	for i, t := range explore.Tabs {
		if t == m.controller.Tab() {
			cur = i
		}
	}
	n := len(explore.Tabs)
	return m.selectTab(explore.Tabs[((cur+delta)%n+n)%n])
}

// leafIDs lists vector ids of the level on display.
func (m Model) leafIDs() []string {
	r := m.controller.Current()
	if r == nil {
		return nil
	}
	ids := make([]string, 0, len(r.Vectors))
	for _, v := range r.Vectors {
		ids = append(ids, v.ID)
	}
	return ids
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

// cycleFocus moves the keyboard focus around the leaves, wrapping.
func (m *Model) cycleFocus(delta int) {
	ids := m.leafIDs()
	if len(ids) == 0 {
		return
	}
	i := indexOf(ids, m.focused)
	switch {
	case i < 0 && delta > 0:
		i = 0
	case i < 0:
		i = len(ids) - 1
	default:
		i = ((i+delta)%len(ids) + len(ids)) % len(ids)
	}
	m.focused = ids[i]
}

// moveSelection steps the data tab selection, stopping at the ends.
func (m *Model) moveSelection(delta int) {
	ids := m.leafIDs()
	if len(ids) == 0 {
		return
	}
	i := -1
	if v, ok := m.controller.Selected(); ok {
		i = indexOf(ids, v.ID)
	}
	if i < 0 {
		i = 0
	} else {
		i = max(0, min(len(ids)-1, i+delta))
	}
	if err := m.controller.SelectVector(ids[i]); err == nil {
		m.refreshDetail()
	}
}

func (m *Model) applyConfig(msg configReloadedMsg) {
	log := logging.Get(logging.CategoryConfig)
	if msg.err != nil {
		log.Warn("config reload rejected: %v", msg.err)
		return
	}
	cfg := msg.cfg
	m.cfg = cfg
	m.styles = ui.NewStyles(ui.ThemeFor(cfg.UI.DarkMode))
	m.spinner.Style = m.styles.Spinner
	m.markdown.SetDark(m.styles.Theme.IsDark)
	m.engine.Configure(LayoutConfig(cfg))
	m.camera.SetZoomRange(cfg.Layout.MinZoom, cfg.Layout.MaxZoom)
	m.frame = FrameInterval(cfg)
	m.detailText = ""
	m.refreshDetail()
	log.Info("config reloaded: dark=%v fps=%d", cfg.UI.DarkMode, cfg.UI.FPS)
}

// ---------------------------------------------------------------------------
// keyboard
// ---------------------------------------------------------------------------

func digit(msg tea.KeyMsg) int {
	s := msg.String()
	if len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
		return int(s[0] - '0')
	}
	return 0
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		if m.crumbKey {
			m.crumbKey = false
			return m, nil
		}
		return m, tea.Quit
	case "ctrl+r":
		return m.reset()
	}

	stage := m.controller.Stage()
	if stage == explore.StageInput {
		if msg.Type == tea.KeyEnter {
			return m.submit()
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	if m.crumbKey {
		m.crumbKey = false
		if d := digit(msg); d > 0 {
			return m.jump(d - 1)
		}
		return m, nil
	}

	key := msg.String()
	switch key {
	case "b":
		if m.controller.Depth() > 0 {
			m.crumbKey = true
		}
		return m, nil
	case "tab":
		return m.cycleTab(1)
	case "shift+tab":
		return m.cycleTab(-1)
	case "1", "2", "3", "4":
		return m.selectTab(explore.Tabs[digit(msg)-1])
	}

	if m.graphShown() {
		return m.handleMapKey(key)
	}
	if m.tabsShown() && m.controller.Tab() == explore.TabData {
		return m.handleDataKey(msg)
	}
	return m, nil
}

func (m Model) handleMapKey(key string) (tea.Model, tea.Cmd) {
	l := m.geometry()
	cols, rows := l.CanvasSize()
	switch key {
	case "left", "h":
		m.camera.Pan(panStepCols, 0)
	case "right", "l":
		m.camera.Pan(-panStepCols, 0)
	case "up":
		m.camera.Pan(0, panStepRows)
	case "down":
		m.camera.Pan(0, -panStepRows)
	case "+", "=":
		m.camera.ZoomAt(cols/2, rows/2, zoomStep)
	case "-", "_":
		m.camera.ZoomAt(cols/2, rows/2, 1/zoomStep)
	case "0":
		m.camera.Reset()
	case "]":
		m.cycleFocus(1)
	case "[":
		m.cycleFocus(-1)
	case "enter":
		if m.focused != "" {
			return m.drill(m.focused)
		}
	}
	return m, nil
}

func (m Model) handleDataKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		m.moveSelection(1)
	case "k", "up":
		m.moveSelection(-1)
	case "enter":
		if v, ok := m.controller.Selected(); ok {
			return m.drill(v.ID)
		}
	case "pgup", "pgdown", "ctrl+u", "ctrl+d":
		var cmd tea.Cmd
		m.detail, cmd = m.detail.Update(msg)
		return m, cmd
	}
	return m, nil
}

// ---------------------------------------------------------------------------
// mouse
// ---------------------------------------------------------------------------

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	l := m.geometry()

	if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft && m.tabsShown() {
		if i, ok := hitSpan(m.tabSpans(), msg.X, msg.Y, ui.HeaderHeight, 1); ok {
			return m.selectTab(explore.Tabs[i])
		}
		if m.controller.Tab() == explore.TabMap {
			top := ui.HeaderHeight + ui.TabBarHeight
			if i, ok := hitSpan(m.crumbSpans(), msg.X, msg.Y, top, ui.BreadcrumbHeight); ok {
				return m.jump(i)
			}
		}
	}

	if !m.graphShown() {
		return m, nil
	}

	cols, rows := l.CanvasSize()
	col, row := msg.X, msg.Y-l.CanvasTop()
	inside := col >= 0 && col < cols && row >= 0 && row < rows
	wx, wy := m.camera.ToWorld(float64(col), float64(row))
	slack := m.camera.UnitsPerCell() * ui.HitSlackCells

	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		if inside {
			m.camera.ZoomAt(col, row, wheelStep)
		}

	case msg.Button == tea.MouseButtonWheelDown:
		if inside {
			m.camera.ZoomAt(col, row, 1/wheelStep)
		}

	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		if !inside {
			return m, nil
		}
		m.ptr = pointer{down: true, lastCol: col, lastRow: row}
		if id, hit := m.engine.NodeAt(wx, wy, slack); hit {
			if err := m.engine.DragStart(id); err == nil {
				m.ptr.nodeID = id
			}
		}

	case msg.Action == tea.MouseActionMotion:
		if !m.ptr.down {
			m.hovered = ""
			if inside {
				if id, hit := m.engine.NodeAt(wx, wy, slack); hit {
					m.hovered = id
				}
			}
			return m, nil
		}
		if col != m.ptr.lastCol || row != m.ptr.lastRow {
			m.ptr.moved = true
		}
		if m.ptr.nodeID != "" {
			_ = m.engine.DragTo(m.ptr.nodeID, wx, wy)
		} else {
			m.camera.Pan(float64(col-m.ptr.lastCol), float64(row-m.ptr.lastRow))
		}
		m.ptr.lastCol, m.ptr.lastRow = col, row

	case msg.Action == tea.MouseActionRelease:
		p := m.ptr
		m.ptr = pointer{}
		if p.nodeID == "" {
			return m, nil
		}
		_ = m.engine.DragEnd(p.nodeID)
		if !p.moved && p.nodeID != layout.HubID {
			return m.drill(p.nodeID)
		}
	}
	return m, nil
}

// span is the horizontal extent of one clickable label.
type span struct{ from, to int }

// hitSpan finds the span under (x, y) on rows [top, top+height).
func hitSpan(spans []span, x, y, top, height int) (int, bool) {
	if y < top || y >= top+height {
		return 0, false
	}
	for i, s := range spans {
		if x >= s.from && x < s.to {
			return i, true
		}
	}
	return 0, false
}
