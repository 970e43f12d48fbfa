package ui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/storefront/internal/catalog"
	"github.com/five82/storefront/internal/logtail"
	"github.com/five82/storefront/internal/prefs"
	"github.com/five82/storefront/internal/state"
)

// View represents the current active view.
type View int

const (
	ViewProducts View = iota
	ViewLogs
)

const (
	defaultTick  = 500 * time.Millisecond
	logTailLines = 400
	actionTimeout = 10 * time.Second
)

// Actions are the remote operations the UI can trigger.
type Actions interface {
	Refresh(ctx context.Context) error
	UpdateProduct(ctx context.Context, id int, patch catalog.ProductPatch) (catalog.Product, error)
}

// Options configures the UI.
type Options struct {
	Store     *state.Store
	Actions   Actions
	ThemeName string
	PrefsPath string
	LogPath   string
	PollTick  time.Duration
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx       context.Context
	store     *state.Store
	actions   Actions
	prefsPath string
	logPath   string
	pollTick  time.Duration
	keys      keyMap

	// UI state
	theme       Theme
	currentView View
	width       int
	height      int
	ready       bool
	focusDetail bool
	showHelp    bool

	// Data state
	snapshot   state.Snapshot
	rowIDs     []int
	selectedID int
	status     string
	statusErr  bool

	products table.Model
	detail   viewport.Model
	logs     viewport.Model
}

// New creates a new Bubble Tea model.
func New(ctx context.Context, opts Options) Model {
	if ctx == nil {
		ctx = context.Background()
	}
	pollTick := opts.PollTick
	if pollTick <= 0 {
		pollTick = defaultTick
	}
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	m := Model{
		ctx:       ctx,
		store:     opts.Store,
		actions:   opts.Actions,
		prefsPath: prefsPath,
		logPath:   opts.LogPath,
		pollTick:  pollTick,
		keys:      DefaultKeyMap(),
		theme:     GetTheme(opts.ThemeName),
		products: table.New(
			table.WithColumns(productColumns(80)),
			table.WithFocused(true),
		),
		detail: viewport.New(40, 10),
		logs:   viewport.New(80, 10),
	}
	m.applyTableStyles()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.pollTick)}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.layout()
		return m, nil

	case tickMsg:
		cmds := []tea.Cmd{tickCmd(m.pollTick)}
		if m.store != nil {
			cmds = append(cmds, fetchSnapshotCmd(m.store))
		}
		if m.currentView == ViewLogs {
			cmds = append(cmds, readLogsCmd(m.logPath))
		}
		return m, tea.Batch(cmds...)

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		m.syncRows()
		return m, nil

	case actionDoneMsg:
		m.status, m.statusErr = msg.describe()
		if m.store == nil {
			return m, nil
		}
		return m, fetchSnapshotCmd(m.store)

	case logLinesMsg:
		m.setLogContent(msg)
		return m, nil
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.applyTableStyles()
		m.syncRows()
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.Logs):
		if m.currentView == ViewLogs {
			m.currentView = ViewProducts
			return m, nil
		}
		m.currentView = ViewLogs
		return m, readLogsCmd(m.logPath)

	case key.Matches(msg, m.keys.Escape):
		m.currentView = ViewProducts
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		m.status, m.statusErr = "Refreshing...", false
		return m, m.runRefresh()
	}

	if m.currentView == ViewLogs {
		var cmd tea.Cmd
		m.logs, cmd = m.logs.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Tab):
		m.focusDetail = !m.focusDetail
		if m.focusDetail {
			m.products.Blur()
		} else {
			m.products.Focus()
		}
		return m, nil

	case key.Matches(msg, m.keys.ToggleStock):
		return m, m.toggleStock()

	case key.Matches(msg, m.keys.NextCategory):
		return m, m.cycleCategory(1)

	case key.Matches(msg, m.keys.PrevCategory):
		return m, m.cycleCategory(-1)
	}

	var cmd tea.Cmd
	if m.focusDetail {
		m.detail, cmd = m.detail.Update(msg)
		return m, cmd
	}
	m.products, cmd = m.products.Update(msg)
	m.trackCursor()
	return m, cmd
}

// selectedProduct returns the product under the cursor.
func (m Model) selectedProduct() (catalog.Product, bool) {
	if m.selectedID == 0 {
		return catalog.Product{}, false
	}
	return m.snapshot.Tables.Products.SelectByID(m.selectedID)
}

// toggleStock flips the selected product's stock flag. The change is
// applied optimistically by the coordinator before the request is sent.
func (m *Model) toggleStock() tea.Cmd {
	p, ok := m.selectedProduct()
	if !ok || m.actions == nil {
		return nil
	}
	ctx, actions := m.ctx, m.actions
	patch := catalog.ProductPatch{InStock: catalog.Ptr(!p.InStock)}
	m.status, m.statusErr = "Updating "+p.Name+"...", false
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, actionTimeout)
		defer cancel()
		_, err := actions.UpdateProduct(ctx, p.ID, patch)
		return actionDoneMsg{action: "update " + p.Name, err: err}
	}
}

func (m *Model) runRefresh() tea.Cmd {
	if m.actions == nil {
		return nil
	}
	ctx, actions := m.ctx, m.actions
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, actionTimeout)
		defer cancel()
		return actionDoneMsg{action: "refresh", err: actions.Refresh(ctx)}
	}
}

// cycleCategory moves the category filter by step through "all" followed
// by every cached category, and persists the choice.
func (m *Model) cycleCategory(step int) tea.Cmd {
	if m.store == nil {
		return nil
	}
	ids := []int{catalog.NoCategory}
	for _, c := range m.snapshot.Tables.Categories.SelectAll() {
		ids = append(ids, c.ID)
	}
	current := 0
	for i, id := range ids {
		if id == m.snapshot.SelectedCategory {
			current = i
			break
		}
	}
	next := ids[((current+step)%len(ids)+len(ids))%len(ids)]
	m.store.SelectCategory(next)
	m.snapshot.SelectedCategory = next
	m.syncRows()
	m.savePrefs()
	return fetchSnapshotCmd(m.store)
}

func (m *Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	_ = prefs.Save(m.prefsPath, prefs.Prefs{Theme: m.theme.Name, CategoryID: m.snapshot.SelectedCategory})
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type actionDoneMsg struct {
	action string
	err    error
}

func (a actionDoneMsg) describe() (string, bool) {
	if a.err == nil {
		return a.action + " done", false
	}
	var verr *catalog.ValidationError
	if errors.As(a.err, &verr) {
		return verr.Error(), true
	}
	return a.action + " failed: " + a.err.Error(), true
}

type logLinesMsg struct {
	lines []string
	err   error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

func readLogsCmd(path string) tea.Cmd {
	return func() tea.Msg {
		if path == "" {
			return logLinesMsg{}
		}
		lines, err := logtail.Read(path, logTailLines)
		return logLinesMsg{lines: lines, err: err}
	}
}

// Run starts the Bubble Tea program and blocks until the user quits or ctx
// is cancelled.
func Run(ctx context.Context, opts Options) error {
	if opts.Store == nil {
		return errors.New("ui requires a data store")
	}
	m := New(ctx, opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}
