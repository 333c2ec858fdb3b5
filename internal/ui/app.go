package ui

import (
	"context"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/appengine-ltd/wendao/internal/game"
	"github.com/appengine-ltd/wendao/internal/parser"
)

// refreshInterval is how often the screen re-reads the session.
const refreshInterval = 100 * time.Millisecond

// Dispatcher runs a command line against the session and its storage.
type Dispatcher interface {
	Dispatch(ctx context.Context, line string) game.CommandResult
}

type AppConfig struct {
	Version   string
	Commit    string
	BuildDate string
	Slot      string
}

type App struct {
	cfg      AppConfig
	session  *game.Session
	dispatch Dispatcher
}

func NewApp(cfg AppConfig, session *game.Session, dispatch Dispatcher) *App {
	return &App{cfg: cfg, session: session, dispatch: dispatch}
}

func (a *App) Run(ctx context.Context) error {
	m := newModel(a.cfg, a.session, a.dispatch)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

type refreshMsg time.Time

type model struct {
	cfg      AppConfig
	session  *game.Session
	dispatch Dispatcher
	parser   *parser.Parser

	status game.Status
	logs   []game.LogLine

	input      string
	cursor     int
	notice     string
	clarify    []string
	lastEntity string
	width      int
	height     int
	quitting   bool
}

func newModel(cfg AppConfig, session *game.Session, dispatch Dispatcher) model {
	m := model{
		cfg:      cfg,
		session:  session,
		dispatch: dispatch,
		parser:   parser.New(),
		width:    100,
		height:   40,
	}
	m.refresh()
	return m
}

func (m *model) refresh() {
	m.status = m.session.Status()
	m.logs = m.session.Logs()
	if n := len(m.status.Scene.Choices); m.cursor >= n {
		m.cursor = 0
	}
}

func refreshCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return refreshMsg(t)
	})
}

func (m model) Init() tea.Cmd {
	return refreshCmd()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case refreshMsg:
		m.refresh()
		return m, refreshCmd()
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		return m.updateKey(msg)
	}
	return m, nil
}

func (m model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	choices := m.status.Scene.Choices
	switch msg.Type {
	case tea.KeyCtrlC:
		m.quitting = true
		return m, tea.Quit
	case tea.KeyEsc:
		m.input = ""
		m.clarify = nil
		return m, nil
	case tea.KeyUp:
		if len(choices) > 0 {
			m.cursor = (m.cursor + len(choices) - 1) % len(choices)
		}
		return m, nil
	case tea.KeyDown, tea.KeyTab:
		if len(choices) > 0 {
			m.cursor = (m.cursor + 1) % len(choices)
		}
		return m, nil
	case tea.KeyBackspace:
		if m.input != "" {
			r := []rune(m.input)
			m.input = string(r[:len(r)-1])
		}
		return m, nil
	case tea.KeyEnter:
		if strings.TrimSpace(m.input) == "" && len(choices) > 0 {
			m.input = "choose " + strconv.Itoa(m.cursor+1)
		}
		return m.submit()
	case tea.KeySpace:
		m.input += " "
		return m, nil
	case tea.KeyRunes:
		m.input += string(msg.Runes)
		return m, nil
	}
	return m, nil
}

func (m model) submit() (tea.Model, tea.Cmd) {
	raw := strings.TrimSpace(m.input)
	m.input = ""
	if n, err := strconv.Atoi(raw); err == nil && n >= 1 && n <= len(m.clarify) {
		raw = m.clarify[n-1]
	}
	m.clarify = nil
	if raw == "" {
		return m, nil
	}

	intent := m.parser.Parse(parser.ContextFor(m.status, m.lastEntity), raw)
	m.lastEntity = parser.LastEntity(intent, m.lastEntity)
	if intent.Clarify != nil {
		m.notice = intent.Clarify.Prompt
		for _, opt := range intent.Clarify.Options {
			if line := parser.IntentToCommandString(opt); line != "" {
				m.clarify = append(m.clarify, line)
			}
		}
		return m, nil
	}
	if intent.Verb == "quit" {
		m.quitting = true
		return m, tea.Quit
	}

	res := m.dispatch.Dispatch(context.Background(), parser.IntentToCommandString(intent))
	switch {
	case res.Message != "":
		m.notice = res.Message
	case res.Err != nil:
		m.notice = res.Err.Error()
	case !res.Handled:
		m.notice = "Nothing happens."
	default:
		m.notice = ""
	}
	m.refresh()
	return m, nil
}
