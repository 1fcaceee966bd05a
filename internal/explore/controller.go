// Package explore implements the exploration stage machine. It owns the
// session's Insight Cache and Exploration Path, decides when the external
// insight provider must be called, and drives the timed stage transitions.
//
// The controller never performs I/O itself. Operations that need a fetch
// return a FetchRequest; the caller runs it and reports back through
// Resolve. Timed transitions are deadlines polled through Tick, so every
// pending timer is cancelled structurally when the stage it belongs to is
// left.
package explore

import (
	"fmt"
	"strings"
	"time"

	"insightvector/internal/insight"
	"insightvector/internal/logging"
	"insightvector/internal/schedule"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
)

// Deadline keys owned by the controller.
const (
	deadlineMapping     schedule.Key = "mapping"
	deadlinePrinciple   schedule.Key = "principle"
	deadlineLoadingText schedule.Key = "loading_text"
)

// Loading texts shown while a fetch is in flight.
const (
	LoadingInitial = "正在初始化认知矩阵..."
	LoadingRoot    = "解构语义维度空间..."
	LoadingDrill   = "深入钻取：%s..."
)

// Config holds the controller's tunables.
type Config struct {
	MaxDepth         int
	MappingDelay     time.Duration
	PrincipleDelay   time.Duration
	LoadingTextDelay time.Duration
}

// DefaultConfig returns the stock timings.
func DefaultConfig() Config {
	return Config{
		MaxDepth:         3,
		MappingDelay:     3000 * time.Millisecond,
		PrincipleDelay:   2500 * time.Millisecond,
		LoadingTextDelay: 800 * time.Millisecond,
	}
}

// FetchRequest is a work order for the insight provider. Epoch ties the
// eventual answer to the exploration that asked for it.
type FetchRequest struct {
	Epoch     uint64
	Keyword   string
	Context   string // keyword of the level being drilled from; empty for the root
	DrillDown bool
}

// State is a read-only snapshot for rendering.
type State struct {
	SessionID    string
	Stage        Stage
	Tab          Tab
	TabsVisible  bool
	Path         []string
	Depth        int
	MaxDepth     int
	Keyword      string
	Result       *insight.Result
	SelectedID   string
	LoadingText  string
	CanDrillDown bool
}

// Controller is the exploration stage machine. It is not safe for
// concurrent use; drive it from one event loop.
type Controller struct {
	cfg       Config
	deadlines *schedule.Deadlines
	log       *logging.Logger

	sessionID   string
	stage       Stage
	tab         Tab
	tabsVisible bool
	selectedID  string
	loadingText string

	path  *insight.Path
	cache *insight.Cache

	epoch    uint64
	inflight *FetchRequest
}

// New creates a controller in the Input stage. A nil clock uses wall time.
func New(cfg Config, clk clock.Clock) *Controller {
	def := DefaultConfig()
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = def.MaxDepth
	}
	c := &Controller{
		cfg:       cfg,
		deadlines: schedule.New(clk),
		stage:     StageInput,
		tab:       TabMap,
		path:      insight.NewPath(),
		cache:     insight.NewCache(),
	}
	c.newSession()
	return c
}

func (c *Controller) newSession() {
	c.sessionID = uuid.NewString()
	c.log = logging.Get(logging.CategoryExplore).With("session", c.sessionID)
}

// Submit starts a root exploration for problem. It is only accepted in the
// Input stage.
func (c *Controller) Submit(problem string) (*FetchRequest, error) {
	if c.stage == StageVectorizing {
		return nil, ErrBusy
	}
	if c.stage != StageInput {
		return nil, ErrWrongStage
	}
	problem = strings.TrimSpace(problem)
	if problem == "" {
		return nil, ErrEmptyProblem
	}
	return c.process(problem, false), nil
}

// DrillDown explores the vector with the given id in the current result.
// A keyword that was fetched before is served from the cache and no
// request is returned.
func (c *Controller) DrillDown(vectorID string) (*FetchRequest, error) {
	if c.stage == StageVectorizing {
		return nil, ErrBusy
	}
	if c.stage != StageMetaphor {
		return nil, ErrWrongStage
	}
	if c.path.Depth() >= c.cfg.MaxDepth {
		c.log.Debug("drill-down refused at depth %d", c.path.Depth())
		return nil, ErrDepthExceeded
	}
	v, ok := c.current().VectorByID(vectorID)
	if !ok {
		c.log.Debug("drill-down target %q not in current result", vectorID)
		return nil, ErrInvalidDrillTarget
	}
	return c.process(v.Keyword, true), nil
}

func (c *Controller) process(keyword string, drill bool) *FetchRequest {
	if c.cache.Has(keyword) {
		c.log.Info("cache hit for %q, depth %d -> %d", keyword, c.path.Depth(), c.path.Depth()+1)
		c.advancePath(keyword, drill)
		c.enter(StageMetaphor)
		c.tabsVisible = true
		c.tab = TabMap
		return nil
	}

	context := ""
	if drill {
		context, _ = c.path.Current()
	}
	c.epoch++
	req := &FetchRequest{Epoch: c.epoch, Keyword: keyword, Context: context, DrillDown: drill}
	c.inflight = req

	c.enter(StageVectorizing)
	c.selectedID = ""
	c.loadingText = LoadingInitial
	c.deadlines.Arm(deadlineLoadingText, c.cfg.LoadingTextDelay)
	c.log.Info("fetch #%d for %q (context %q)", req.Epoch, keyword, context)
	return req
}

func (c *Controller) advancePath(keyword string, drill bool) {
	if !drill {
		c.path.Reset()
	}
	c.path.Push(keyword)
}

// Resolve applies the outcome of req. The whole step is atomic: on success
// the result is cached before the path advances; on failure nothing is
// committed and the controller returns to Input. Outcomes for superseded
// requests are discarded with ErrStaleFetch.
func (c *Controller) Resolve(req FetchRequest, result *insight.Result, err error) error {
	if c.inflight == nil || req.Epoch != c.inflight.Epoch {
		c.log.Debug("discarding stale fetch #%d", req.Epoch)
		return ErrStaleFetch
	}
	c.inflight = nil

	if err != nil || result == nil || len(result.Vectors) == 0 {
		c.log.Warn("fetch #%d for %q failed: %v", req.Epoch, req.Keyword, err)
		c.enter(StageInput)
		return nil
	}

	c.cache.Put(req.Keyword, result)
	c.advancePath(req.Keyword, req.DrillDown)

	if req.DrillDown {
		c.enter(StageMetaphor)
		c.tabsVisible = true
		c.tab = TabMap
		return nil
	}
	c.enter(StageMapping)
	if c.path.Depth() == 1 {
		c.deadlines.Arm(deadlineMapping, c.cfg.MappingDelay)
	}
	return nil
}

// CompressionComplete is the layout engine's completion signal.
func (c *Controller) CompressionComplete() error {
	if c.stage != StageCompressing {
		return ErrWrongStage
	}
	c.enter(StagePrinciple)
	c.deadlines.Arm(deadlinePrinciple, c.cfg.PrincipleDelay)
	return nil
}

// JumpToLevel truncates the path to levels [0..index] and shows that level's
// map. It is valid from any stage and supersedes an in-flight fetch.
func (c *Controller) JumpToLevel(index int) error {
	if index < 0 || index >= c.path.Depth() {
		return ErrInvalidLevel
	}
	c.epoch++
	c.inflight = nil
	c.path.Truncate(index)
	c.enter(StageMetaphor)
	c.tabsVisible = true
	c.tab = TabMap
	c.log.Info("jumped to level %d (%v)", index+1, c.path.Keywords())
	return nil
}

// Reset discards the whole session and returns to Input. Any in-flight
// fetch is orphaned and its eventual result is ignored.
func (c *Controller) Reset() {
	c.epoch++
	c.inflight = nil
	c.path.Reset()
	c.cache.Clear()
	c.enter(StageInput)
	c.tabsVisible = false
	c.tab = TabMap
	c.selectedID = ""
	c.loadingText = ""
	c.log.Info("session reset")
	c.newSession()
}

// SelectTab switches the active tab once tabs are revealed.
func (c *Controller) SelectTab(tab Tab) error {
	if !tab.Valid() {
		return ErrUnknownTab
	}
	if !c.tabsVisible || !c.stage.ShowsResult() {
		return ErrTabsHidden
	}
	c.tab = tab
	return nil
}

// SelectVector points the data view at a vector of the current result.
func (c *Controller) SelectVector(id string) error {
	if !c.stage.ShowsResult() {
		return ErrWrongStage
	}
	if _, ok := c.current().VectorByID(id); !ok {
		return ErrInvalidDrillTarget
	}
	c.selectedID = id
	return nil
}

// Tick fires every deadline that has come due.
func (c *Controller) Tick() {
	for _, key := range c.deadlines.Due() {
		switch key {
		case deadlineLoadingText:
			if c.inflight != nil && c.inflight.DrillDown {
				c.loadingText = fmt.Sprintf(LoadingDrill, c.inflight.Keyword)
			} else {
				c.loadingText = LoadingRoot
			}
		case deadlineMapping:
			c.enter(StageCompressing)
		case deadlinePrinciple:
			c.enter(StageMetaphor)
			c.tabsVisible = true
			c.tab = TabMetaphor
		}
	}
}

// NextDeadline reports when Tick next has work to do.
func (c *Controller) NextDeadline() (time.Time, bool) {
	return c.deadlines.Next()
}

// enter moves to stage, cancelling every deadline owned by the stage being
// left.
func (c *Controller) enter(stage Stage) {
	if c.stage != stage {
		c.log.Info("stage %s -> %s", c.stage, stage)
	}
	c.deadlines.CancelAll()
	c.stage = stage
}

func (c *Controller) current() *insight.Result {
	kw, ok := c.path.Current()
	if !ok {
		return nil
	}
	r, _ := c.cache.Get(kw)
	return r
}

// ---- accessors -------------------------------------------------------------

// Stage returns the current stage.
func (c *Controller) Stage() Stage { return c.stage }

// Tab returns the active tab.
func (c *Controller) Tab() Tab { return c.tab }

// TabsVisible reports whether the tab bar is revealed.
func (c *Controller) TabsVisible() bool { return c.tabsVisible }

// Depth is the current path length.
func (c *Controller) Depth() int { return c.path.Depth() }

// MaxDepth is the drill-down ceiling.
func (c *Controller) MaxDepth() int { return c.cfg.MaxDepth }

// Path returns a copy of the exploration path.
func (c *Controller) Path() []string { return c.path.Keywords() }

// CurrentKeyword returns the keyword of the displayed level.
func (c *Controller) CurrentKeyword() string {
	kw, _ := c.path.Current()
	return kw
}

// Current returns a copy of the displayed level's result.
func (c *Controller) Current() *insight.Result { return c.current() }

// Cached reports whether keyword has been explored this session.
func (c *Controller) Cached(keyword string) bool { return c.cache.Has(keyword) }

// Explored freezes the explored keyword set for a render pass.
func (c *Controller) Explored() insight.KeywordSet { return c.cache.ExploredSet() }

// CacheSnapshot returns a deep copy of the cache.
func (c *Controller) CacheSnapshot() map[string]*insight.Result { return c.cache.Snapshot() }

// Inflight returns the pending request, if any.
func (c *Controller) Inflight() (FetchRequest, bool) {
	if c.inflight == nil {
		return FetchRequest{}, false
	}
	return *c.inflight, true
}

// CanDrillDown reports whether drill-down affordances are enabled.
func (c *Controller) CanDrillDown() bool {
	return c.stage == StageMetaphor && c.path.Depth() < c.cfg.MaxDepth
}

// Selected returns the selected vector of the current result.
func (c *Controller) Selected() (insight.Vector, bool) {
	if c.selectedID == "" {
		return insight.Vector{}, false
	}
	return c.current().VectorByID(c.selectedID)
}

// SessionID identifies the current session; it changes on Reset.
func (c *Controller) SessionID() string { return c.sessionID }

// Snapshot captures everything a view needs.
func (c *Controller) Snapshot() State {
	return State{
		SessionID:    c.sessionID,
		Stage:        c.stage,
		Tab:          c.tab,
		TabsVisible:  c.tabsVisible,
		Path:         c.path.Keywords(),
		Depth:        c.path.Depth(),
		MaxDepth:     c.cfg.MaxDepth,
		Keyword:      c.CurrentKeyword(),
		Result:       c.current(),
		SelectedID:   c.selectedID,
		LoadingText:  c.loadingText,
		CanDrillDown: c.CanDrillDown(),
	}
}
