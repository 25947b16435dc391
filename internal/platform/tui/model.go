package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/pminvaders/internal/core"
)

// Game is the simulation the model drives.
type Game interface {
	Step(in core.Action) (core.StepResult, error)
	Render(dst *core.Screen)
	ScreenSize() (width, height int)
	State() core.GameState
}

var (
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	warningStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("3"))
)

// Model is the Bubble Tea model for running the game.
type Model struct {
	game     Game
	screen   *core.Screen
	config   core.RuntimeConfig
	keys     KeyMap
	help     help.Model
	input    core.InputQueue
	state    core.GameState
	err      error
	quitting bool

	backlog time.Duration    // Simulated time owed to the game
	clock   func() time.Time // Wall clock measuring the frame budget
}

// NewModel creates a new Bubble Tea model for the given game.
func NewModel(game Game, cfg core.RuntimeConfig) Model {
	w, h := game.ScreenSize()
	return Model{
		game:   game,
		screen: core.NewScreen(w, h),
		config: cfg,
		keys:   DefaultKeyMap(),
		help:   help.New(),
		state:  game.State(),
		clock:  time.Now,
	}
}

// Init starts the frame loop.
func (m Model) Init() tea.Cmd {
	return tickCmd(m.config.FrameInterval())
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case TickMsg:
		return m.handleTick()
	}

	return m, nil
}

// handleKey queues the action for the next free tick.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	action, isQuit := m.keys.MapKey(msg)
	if isQuit {
		m.quitting = true
		return m, tea.Quit
	}
	m.input.Push(action)
	return m, nil
}

// handleTick pays the game the simulated time of one frame, one tick per
// Step. Ticks stop once the frame's wall-clock time is spent, and what is left
// carries over to later frames up to MaxBacklog. Each tick takes at most one
// queued action. A store error ends the program.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	if m.quitting {
		return m, nil
	}

	frame := m.config.FrameInterval()
	step := m.config.TickDuration()
	m.backlog = min(m.backlog+frame, m.config.MaxBacklog())

	start := m.clock()
	for ran := 0; m.backlog >= step; ran++ {
		if ran > 0 && m.clock().Sub(start) >= frame {
			break
		}
		result, err := m.game.Step(m.input.Pop())
		if err != nil {
			m.err = err
			m.quitting = true
			return m, tea.Quit
		}
		m.state = result.State
		m.backlog -= step
	}

	return m, tickCmd(frame)
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	w, h := m.game.ScreenSize()
	if m.config.ScreenW > 0 && (m.config.ScreenW < w || m.config.ScreenH < h+1) {
		return warningStyle.Render(fmt.Sprintf("Terminal too small: need %dx%d, have %dx%d",
			w, h+1, m.config.ScreenW, m.config.ScreenH))
	}

	m.game.Render(m.screen)
	return RenderScreen(m.screen) + "\n" + helpStyle.Render(m.help.View(m.keys))
}

// State returns the last game state seen by the model.
func (m Model) State() core.GameState {
	return m.state
}

// Err returns the store error that ended the program, if any.
func (m Model) Err() error {
	return m.err
}

// Run starts the Bubble Tea program and blocks until the player quits or the
// game hits a store error. It returns the final game state.
func Run(game Game, cfg core.RuntimeConfig) (core.GameState, error) {
	model := NewModel(game, cfg)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(), // Use alternate screen buffer
	)

	final, err := p.Run()
	if err != nil {
		return model.State(), err
	}
	fm, ok := final.(Model)
	if !ok {
		return game.State(), nil
	}
	return fm.State(), fm.Err()
}
