// Package sail is a terminal viewer for the ocean. It feeds keyboard and
// mouse input from bubbletea into an explorer.Session and draws its HUD.
package sail

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kilupskalvis/vimlantis/internal/explorer"
	"github.com/kilupskalvis/vimlantis/internal/models"
)

// Frame is the tick interval of the viewer.
const Frame = time.Second / 30

// Terminals report key repeats but no releases, so a movement key counts
// as held for holdFor after its last repeat.
const holdFor = 150 * time.Millisecond

const reloadTimeout = 10 * time.Second

// TreeFunc fetches the current file tree.
type TreeFunc func(ctx context.Context) ([]models.TreeNode, error)

// EventMsg carries a push event from the server into the viewer.
type EventMsg models.Event

type tickMsg time.Time

type treeMsg struct {
	nodes []models.TreeNode
	err   error
}

// Model is the bubbletea model of the viewer.
type Model struct {
	session *explorer.Session
	fetch   TreeFunc
	logger  *slog.Logger
	now     func() time.Time

	start   time.Time
	held    map[explorer.Key]time.Time
	pressed explorer.KeySet

	pointerX, pointerY float32
	hasPointer         bool
	click              bool

	width, height int
	status        string
	generation    int
}

// New creates a viewer for session. fetch is used to reload the tree after
// a tree_changed event; nil disables reloading.
func New(session *explorer.Session, fetch TreeFunc, logger *slog.Logger) *Model {
	if logger == nil {
		logger = slog.Default()
	}
	return &Model{
		session:    session,
		fetch:      fetch,
		logger:     logger,
		now:        time.Now,
		start:      time.Now(),
		held:       make(map[explorer.Key]time.Time),
		generation: session.Generation(),
	}
}

func (m *Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(Frame, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	case tea.MouseMsg:
		m.handleMouse(msg)
	case tickMsg:
		m.step(time.Time(msg))
		return m, tick()
	case EventMsg:
		return m, m.handleEvent(models.Event(msg))
	case treeMsg:
		m.applyTree(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	name := msg.String()
	switch name {
	case "ctrl+c", "q":
		m.session.Close()
		return tea.Quit
	case "r":
		m.session.JumpToRoot()
		return nil
	case "ctrl+r":
		return m.reload()
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		m.selectBreadcrumb(name)
		return nil
	}

	k, ok := explorer.ParseKey(browserKey(name))
	if !ok {
		return nil
	}
	switch k {
	case explorer.KeyActivate, explorer.KeyBack:
		m.pressed = m.pressed.With(k)
	default:
		m.held[k] = m.now().Add(holdFor)
	}
	return nil
}

// browserKey maps bubbletea key names to the KeyboardEvent names the
// explorer understands.
func browserKey(name string) string {
	switch name {
	case "up":
		return "ArrowUp"
	case "down":
		return "ArrowDown"
	case "left":
		return "ArrowLeft"
	case "right":
		return "ArrowRight"
	case "esc":
		return "Escape"
	}
	return name
}

func (m *Model) selectBreadcrumb(digit string) {
	n, _ := strconv.Atoi(digit)
	crumbs := m.session.Breadcrumbs()
	if n < 1 || n > len(crumbs) {
		return
	}
	if err := m.session.SelectBreadcrumb(crumbs[n-1]); err != nil {
		m.status = err.Error()
	}
}

// handleMouse turns a cell position into normalized device coordinates
// over the whole terminal.
func (m *Model) handleMouse(msg tea.MouseMsg) {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	m.pointerX = (float32(msg.X)+0.5)/float32(m.width)*2 - 1
	m.pointerY = 1 - (float32(msg.Y)+0.5)/float32(m.height)*2
	m.hasPointer = true
	if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
		m.click = true
	}
}

func (m *Model) step(t time.Time) {
	in := explorer.Input{
		Time:       float32(t.Sub(m.start).Seconds()),
		PointerX:   m.pointerX,
		PointerY:   m.pointerY,
		HasPointer: m.hasPointer,
		Click:      m.click,
		Pressed:    m.pressed,
	}
	for k, until := range m.held {
		if t.Before(until) {
			in.Held = in.Held.With(k)
		} else {
			delete(m.held, k)
		}
	}
	m.session.Tick(in)
	m.pressed, m.click = 0, false

	if g := m.session.Generation(); g != m.generation {
		m.generation = g
		m.status = ""
	}
}

func (m *Model) handleEvent(ev models.Event) tea.Cmd {
	switch ev.Type {
	case models.EventTreeChanged:
		return m.reload()
	case models.EventOpenFile:
		m.status = "opened elsewhere: " + ev.Path
	}
	return nil
}

func (m *Model) reload() tea.Cmd {
	fetch := m.fetch
	if fetch == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), reloadTimeout)
		defer cancel()
		nodes, err := fetch(ctx)
		return treeMsg{nodes: nodes, err: err}
	}
}

func (m *Model) applyTree(msg treeMsg) {
	if msg.err != nil {
		m.logger.Warn("tree reload failed", "error", msg.err)
		m.status = "reload failed: " + msg.err.Error()
		return
	}
	m.session.Reload(msg.nodes)
	m.generation = m.session.Generation()
	m.status = fmt.Sprintf("tree reloaded, %d entries", models.CountNodes(msg.nodes))
}
