// Package explorer is the interactive terminal front-end: a bubbletea
// program that drives the exploration controller and the force layout
// engine and paints every stage.
package explorer

import (
	"context"
	"errors"
	"time"

	"insightvector/cmd/insight/ui"
	"insightvector/internal/config"
	"insightvector/internal/explore"
	"insightvector/internal/insight"
	"insightvector/internal/layout"
	"insightvector/internal/logging"
	"insightvector/internal/provider"

	"github.com/benbjohnson/clock"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// Options configures a Model.
type Options struct {
	Config     *config.Config
	ConfigPath string            // watched for changes by Run; empty disables reloading
	Provider   provider.Provider // required
	Clock      clock.Clock       // nil uses wall time
	Problem    string            // submitted as soon as the program starts
}

// ErrNoProvider is returned by New without a provider.
var ErrNoProvider = errors.New("explorer needs an insight provider")

type (
	// frameMsg drives deadlines and the simulation.
	frameMsg time.Time

	// fetchDoneMsg carries a provider outcome back to the event loop.
	fetchDoneMsg struct {
		req    explore.FetchRequest
		result *insight.Result
		err    error
	}

	// configReloadedMsg is sent by the config watcher.
	configReloadedMsg struct {
		cfg *config.Config
		err error
	}
)

// fetches holds the cancel func of every provider call still running,
// keyed by request epoch. Model is copied by value on every Update, so it
// is shared through a pointer.
type fetches struct {
	cancels map[uint64]context.CancelFunc
}

func newFetches() *fetches {
	return &fetches{cancels: make(map[uint64]context.CancelFunc)}
}

// start derives the context a request runs under.
func (f *fetches) start(parent context.Context, epoch uint64) context.Context {
	ctx, cancel := context.WithCancel(parent)
	f.cancels[epoch] = cancel
	return ctx
}

// done cancels and forgets the request with the given epoch.
func (f *fetches) done(epoch uint64) {
	if cancel, ok := f.cancels[epoch]; ok {
		cancel()
		delete(f.cancels, epoch)
	}
}

// cancelExcept cancels every running request other than keep. With
// keepAny false everything is cancelled.
func (f *fetches) cancelExcept(keep uint64, keepAny bool) {
	for epoch := range f.cancels {
		if keepAny && epoch == keep {
			continue
		}
		f.done(epoch)
	}
}

// running returns the number of provider calls not yet settled.
func (f *fetches) running() int { return len(f.cancels) }

// pointer tracks an in-progress mouse gesture on the canvas.
type pointer struct {
	down    bool
	nodeID  string // empty while panning
	moved   bool
	lastCol int
	lastRow int
}

// Model is the bubbletea model of the explorer.
type Model struct {
	ctx      context.Context
	cfg      *config.Config
	provider provider.Provider
	clock    clock.Clock
	log      *logging.Logger

	controller *explore.Controller
	fetches    *fetches
	engine     *layout.Engine
	camera     *ui.Camera
	styles     ui.Styles
	markdown   *ui.Markdown

	input      textarea.Model
	spinner    spinner.Model
	detail     viewport.Model
	detailText string

	width, height int
	frame         time.Duration

	graphKey   string // identity of the graph loaded into the engine
	graphLevel string // keyword+depth the camera was last reset for
	hovered    string
	focused    string
	ptr        pointer
	crumbKey   bool // "b" pressed, waiting for a level digit

	pending string // problem to submit on Init
	notice  string // last fetch failure, shown on the input screen
}

// New builds a model in the Input stage.
func New(ctx context.Context, o Options) (Model, error) {
	if o.Provider == nil {
		return Model{}, ErrNoProvider
	}
	cfg := o.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	clk := o.Clock
	if clk == nil {
		clk = clock.New()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	styles := ui.NewStyles(ui.ThemeFor(cfg.UI.DarkMode))

	input := textarea.New()
	input.Placeholder = "今天你对什么感到困惑？(例如：我担心AI会取代我的工作)"
	input.ShowLineNumbers = false
	input.CharLimit = 2000
	input.SetHeight(4)
	input.KeyMap.InsertNewline.SetKeys("alt+enter", "ctrl+j")
	input.Focus()

	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(styles.Spinner),
	)

	m := Model{
		ctx:        ctx,
		cfg:        cfg,
		provider:   o.Provider,
		clock:      clk,
		log:        logging.Get(logging.CategorySession),
		controller: explore.New(ControllerConfig(cfg), clk),
		fetches:    newFetches(),
		engine:     layout.NewEngine(LayoutConfig(cfg), clk),
		camera:     ui.NewCamera(cfg.Layout.MinZoom, cfg.Layout.MaxZoom),
		styles:     styles,
		markdown:   ui.NewMarkdown(styles.Theme.IsDark),
		input:      input,
		spinner:    sp,
		detail:     viewport.New(40, 10),
		width:      ui.MinimumTerminalWidth,
		height:     ui.MinimumTerminalHeight,
		frame:      FrameInterval(cfg),
		pending:    o.Problem,
	}
	m.log.Info("explorer session %s started with provider %s", m.controller.SessionID(), provider.NameOf(o.Provider))
	return m, nil
}

// Init starts the frame loop and submits the initial problem, if any.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink, m.tick()}
	if m.pending != "" {
		problem := m.pending
		cmds = append(cmds, func() tea.Msg { return submitMsg(problem) })
	}
	return tea.Batch(cmds...)
}

// submitMsg submits a problem as if typed.
type submitMsg string

// Controller exposes the stage machine, mainly for tests.
func (m Model) Controller() *explore.Controller { return m.controller }

// Engine exposes the layout engine, mainly for tests.
func (m Model) Engine() *layout.Engine { return m.engine }

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.frame, func(t time.Time) tea.Msg { return frameMsg(t) })
}

// fetch runs the provider off the event loop.
func (m Model) fetch(req *explore.FetchRequest) tea.Cmd {
	if req == nil {
		return nil
	}
	r := *req
	ctx := provider.WithSession(m.fetches.start(m.ctx, r.Epoch), m.controller.SessionID())
	p := m.provider
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		result, err := p.FetchInsight(ctx, r.Keyword, r.Context)
		return fetchDoneMsg{req: r, result: result, err: err}
	})
}

// Run starts the program and blocks until the user quits. When
// o.ConfigPath is set the file is watched and changes are applied live.
func Run(ctx context.Context, o Options) error {
	m, err := New(ctx, o)
	if err != nil {
		return err
	}
	opts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	if m.cfg.UI.Mouse {
		opts = append(opts, tea.WithMouseAllMotion())
	}
	p := tea.NewProgram(m, opts...)

	if o.ConfigPath != "" {
		w, err := config.NewWatcher(o.ConfigPath, func(cfg *config.Config, err error) {
			p.Send(configReloadedMsg{cfg: cfg, err: err})
		})
		if err != nil {
			m.log.Warn("config watcher unavailable: %v", err)
		} else {
			if err := w.Start(ctx); err != nil {
				m.log.Warn("config watcher failed to start: %v", err)
			}
			defer w.Stop()
		}
	}

	_, err = p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
