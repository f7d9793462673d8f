package tui

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/wordwrap"

	"github.com/garyblankenship/cursorrules-game/engine"
	"github.com/garyblankenship/cursorrules-game/engine/save"
	"github.com/garyblankenship/cursorrules-game/store"
	"github.com/garyblankenship/cursorrules-game/types"
)

// rawLine stores an unstyled output line with its classification,
// so we can re-wrap and re-style when the terminal is resized.
type rawLine struct {
	text     string
	kind     lineKind
	isInput  bool // true for echoed player input
	isSystem bool // true for system messages
}

// Model is the Bubble Tea model for the full-screen host. Update runs
// on a single goroutine, so session mutation and store writes are
// naturally serialized per turn.
type Model struct {
	engine  *engine.Engine
	store   store.Store
	session *types.Session
	ctx     context.Context
	log     *slog.Logger

	viewport viewport.Model
	input    textinput.Model
	history  *History

	rawLines []rawLine // accumulated narrative lines (unstyled, for re-wrapping)

	width    int
	height   int
	ready    bool
	trace    bool
	quitting bool
	lastCmd  string
	saveDir  string
}

// gameOutputMsg carries output from the engine into the Update loop.
type gameOutputMsg struct {
	input    string   // echoed player input (empty for intro)
	lines    []string // output lines
	isSystem bool     // true for meta-command output
}

// New creates a TUI model wired to the given engine, store, and session.
// The context covers store writes made during Update.
func New(ctx context.Context, eng *engine.Engine, st store.Store, s *types.Session) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = 256
	ti.PromptStyle = styleInputPrompt

	return Model{
		engine:  eng,
		store:   st,
		session: s,
		ctx:     ctx,
		log:     slog.Default(),
		input:   ti,
		history: NewHistory(100),
		saveDir: "saves",
	}
}

// Run starts the Bubble Tea program.
func Run(ctx context.Context, eng *engine.Engine, st store.Store, s *types.Session, saveDir string, log *slog.Logger) error {
	m := New(ctx, eng, st, s)
	if saveDir != "" {
		m.saveDir = saveDir
	}
	if log != nil {
		m.log = log
	}
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

// Init returns the initial command that produces the title header and
// the opening narrative.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.initialOutput())
}

func (m Model) initialOutput() tea.Cmd {
	return func() tea.Msg {
		game := m.engine.Defs.Game
		header := game.Title
		if game.Version != "" {
			header += " v" + game.Version
		}
		if game.Author != "" {
			header += " by " + game.Author
		}

		lines := []string{header, ""}
		lines = append(lines, strings.Split(m.engine.Intro(m.session), "\n")...)
		return gameOutputMsg{lines: lines}
	}
}

// Update handles messages (key presses, window resize, game output).
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		vpHeight := m.height - 2 // 1 status bar + 1 input line
		if vpHeight < 1 {
			vpHeight = 1
		}

		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.KeyMap = viewportKeyMap()
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}

		m.refreshViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.persist()
			m.quitting = true
			return m, tea.Quit

		case "enter":
			return m.handleEnter()

		case "up":
			if prev, ok := m.history.Prev(); ok {
				m.input.SetValue(prev)
				m.input.CursorEnd()
			}
			return m, nil

		case "down":
			if next, ok := m.history.Next(); ok {
				m.input.SetValue(next)
				m.input.CursorEnd()
			} else {
				m.input.SetValue("")
				m.history.ResetCursor()
			}
			return m, nil

		case "pgup", "pgdown":
			var vpCmd tea.Cmd
			m.viewport, vpCmd = m.viewport.Update(msg)
			return m, vpCmd
		}

	case gameOutputMsg:
		m = m.appendOutput(msg)
	}

	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	cmds = append(cmds, inputCmd)

	return m, tea.Batch(cmds...)
}

// handleEnter processes the submitted input line.
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")

	if input == "" {
		return m, nil
	}

	// Handle "again" / "g". History records the command a repeat
	// resolved to, so arrow-up recalls the real command.
	lower := strings.ToLower(input)
	if lower == "again" || lower == "g" {
		if m.lastCmd == "" {
			m = m.appendOutput(gameOutputMsg{
				input: input, lines: []string{"Nothing to repeat."}, isSystem: true,
			})
			return m, nil
		}
		input = m.lastCmd
	} else {
		m.lastCmd = input
	}

	m.history.Push(input)
	m.history.ResetCursor()

	// Meta-commands.
	if strings.HasPrefix(input, "/") {
		output, quit := m.handleMeta(input)
		m = m.appendOutput(gameOutputMsg{input: input, lines: output, isSystem: true})
		if quit {
			m.persist()
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	// Game command.
	result := m.engine.ProcessCommand(m.session, input)
	lines := strings.Split(result.Text, "\n")
	if m.trace {
		lines = append(lines, m.formatTrace(result)...)
	}
	m = m.appendOutput(gameOutputMsg{input: input, lines: lines})
	m.persist()
	return m, nil
}

// persist writes the session back to the store after a turn. A store
// failure is logged and play continues on the in-memory session.
func (m *Model) persist() {
	if err := m.store.Save(m.ctx, m.session); err != nil {
		m.log.Warn("failed to persist session",
			"session_id", m.session.ID, "error", err)
	}
}

// appendOutput adds lines to the narrative and refreshes the viewport.
func (m Model) appendOutput(msg gameOutputMsg) Model {
	if msg.input != "" {
		m.rawLines = append(m.rawLines, rawLine{
			text: "> " + msg.input, isInput: true,
		})
	}

	for _, line := range msg.lines {
		rl := rawLine{text: line, isSystem: msg.isSystem}
		if !msg.isSystem {
			rl.kind = classifyLine(line)
		}
		m.rawLines = append(m.rawLines, rl)
	}

	// Blank line separator between turns.
	m.rawLines = append(m.rawLines, rawLine{})

	m.refreshViewport()

	return m
}

// refreshViewport re-wraps and re-styles all raw lines at the current width
// and updates the viewport content.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}

	width := m.width
	if width < 10 {
		width = 10
	}

	var styled []string
	for _, rl := range m.rawLines {
		if rl.text == "" {
			styled = append(styled, "")
			continue
		}

		wrapped := wordwrap.String(rl.text, width)

		switch {
		case rl.isInput:
			styled = append(styled, stylePlayerInput.Render(wrapped))
		case rl.isSystem:
			styled = append(styled, styledSystemMsg(wrapped))
		default:
			styled = append(styled, renderLineKind(wrapped, rl.kind))
		}
	}

	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoBottom()
}

// renderLineKind applies the style for a given lineKind.
func renderLineKind(line string, kind lineKind) string {
	switch kind {
	case kindYouSee:
		return styledYouSee(line)
	case kindExits:
		return styleExits.Render(line)
	case kindDialogue:
		return styleDialogue.Render(line)
	case kindSystem:
		return styleSystem.Render(line)
	case kindError:
		return styleError.Render(line)
	case kindTrace:
		return styleTrace.Render(line)
	default:
		return styleNarrative.Render(line)
	}
}

// View renders the full TUI layout: viewport + status bar + input.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	return m.viewport.View() + "\n" + m.renderStatusBar() + "\n" + m.input.View()
}

// handleMeta dispatches meta-commands. Returns output lines and quit flag.
func (m *Model) handleMeta(input string) ([]string, bool) {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		return []string{"Goodbye."}, true

	case "/save":
		return m.cmdSave(arg), false

	case "/load":
		return m.cmdLoad(arg), false

	case "/session":
		return []string{fmt.Sprintf("Session: %s", m.session.ID)}, false

	case "/state":
		return m.cmdState(), false

	case "/rules":
		return m.cmdRules(), false

	case "/help":
		return m.cmdHelp(), false

	case "/trace":
		m.trace = !m.trace
		if m.trace {
			return []string{"Trace output enabled."}, false
		}
		return []string{"Trace output disabled."}, false

	default:
		return []string{fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd)}, false
	}
}

func (m *Model) cmdSave(name string) []string {
	if name == "" {
		name = "quicksave"
	}

	data, err := save.Save(m.session, m.engine.Defs)
	if err != nil {
		return []string{fmt.Sprintf("Save failed: %v", err)}
	}

	if err := os.MkdirAll(m.saveDir, 0o755); err != nil {
		return []string{fmt.Sprintf("Save failed: %v", err)}
	}

	path := filepath.Join(m.saveDir, name+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return []string{fmt.Sprintf("Save failed: %v", err)}
	}

	return []string{fmt.Sprintf("Game saved to %s.", name)}
}

func (m *Model) cmdLoad(name string) []string {
	if name == "" {
		name = "quicksave"
	}

	path := filepath.Join(m.saveDir, name+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return []string{fmt.Sprintf("Load failed: %v", err)}
	}

	sd, err := save.Load(data)
	if err != nil {
		return []string{fmt.Sprintf("Load failed: %v", err)}
	}
	if sd.Game != "" && sd.Game != m.engine.Defs.Game.Title {
		return []string{fmt.Sprintf("Load failed: snapshot is from %q.", sd.Game)}
	}

	save.Apply(m.session, sd)
	m.persist()

	output := []string{fmt.Sprintf("Game loaded from %s.", name)}
	result := m.engine.ProcessCommand(m.session, "look")
	output = append(output, strings.Split(result.Text, "\n")...)
	return output
}

func (m *Model) cmdHelp() []string {
	return []string{
		"System:",
		"  /save [name]  - Save game to a file (default: quicksave)",
		"  /load [name]  - Load game from a file (default: quicksave)",
		"  /session      - Show the session ID for later resume",
		"  /state        - Debug: dump current state",
		"  /rules        - Debug: list rules in dispatch order",
		"  /trace        - Toggle debug trace output",
		"  /help         - Show this help",
		"  /quit         - Exit game",
		"",
		"Game commands:",
		"  look (l)              - Describe your surroundings",
		"  examine <thing> (x)   - Look closely at something",
		"  go <direction>        - Move (or just type north/n/s/e/w/up/down)",
		"  take <item>           - Pick something up",
		"  drop <item>           - Put something down",
		"  inventory (i)         - Check what you're carrying",
		"  again (g)             - Repeat your last command",
		"",
		"Each game adds its own commands on top of these.",
		"Navigation: PgUp/PgDn to scroll, Up/Down for command history",
	}
}

func (m *Model) cmdState() []string {
	s := m.session
	output := []string{
		fmt.Sprintf("Location: %s", s.Location),
		fmt.Sprintf("Inventory: %v", s.Inventory),
	}
	if len(s.Flags) > 0 {
		output = append(output, fmt.Sprintf("Flags: %v", s.Flags))
	}
	if len(s.Counters) > 0 {
		output = append(output, fmt.Sprintf("Counters: %v", s.Counters))
	}
	if len(s.Visited) > 0 {
		output = append(output, fmt.Sprintf("Visited: %v", s.Visited))
	}
	return output
}

func (m *Model) cmdRules() []string {
	names := m.engine.RuleNames()
	lines := make([]string, 0, len(names))
	for i, name := range names {
		lines = append(lines, fmt.Sprintf("%2d. %s", i+1, name))
	}
	return lines
}

func (m *Model) formatTrace(result types.Result) []string {
	if result.Rule == "" {
		return []string{"[trace] no rule claimed the input"}
	}
	return []string{fmt.Sprintf("[trace] claimed by rule %q", result.Rule)}
}

// viewportKeyMap returns a viewport keymap with Up/Down disabled
// (those are used for input history).
func viewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
}
