// Package cli provides the plain terminal host: prompt loop, output,
// meta-command dispatch, and per-turn session persistence.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/garyblankenship/cursorrules-game/engine"
	"github.com/garyblankenship/cursorrules-game/engine/save"
	"github.com/garyblankenship/cursorrules-game/store"
	"github.com/garyblankenship/cursorrules-game/types"
)

// CLI handles terminal interaction with the player. Every dispatched
// turn is written back to the session store before the next prompt, so
// a session can be resumed by ID after the process exits.
type CLI struct {
	Engine    *engine.Engine
	Store     store.Store
	Session   *types.Session
	In        io.Reader
	Out       io.Writer
	Log       *slog.Logger
	SaveDir   string
	Trace     bool
	EchoInput bool   // echo each input line after the prompt (for script playback)
	lastCmd   string // for "again"/"g" repeat
}

// New creates a CLI wired to the given engine, store, and session.
func New(eng *engine.Engine, st store.Store, s *types.Session) *CLI {
	return &CLI{
		Engine:  eng,
		Store:   st,
		Session: s,
		In:      os.Stdin,
		Out:     os.Stdout,
		Log:     slog.Default(),
		SaveDir: "saves",
	}
}

// Run starts the game loop. It shows the intro and the starting
// location, then loops: prompt → input → dispatch → persist → output.
func (c *CLI) Run(ctx context.Context) {
	c.printLine(c.Engine.Intro(c.Session))

	scanner := bufio.NewScanner(c.In)
	for {
		c.print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		// Skip comment lines (for script files).
		if strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}

		// Meta-commands start with '/'.
		if strings.HasPrefix(input, "/") {
			if c.handleMeta(ctx, input) {
				return // /quit
			}
			continue
		}

		// "again" / "g" repeats the last game command.
		lower := strings.ToLower(input)
		if lower == "again" || lower == "g" {
			if c.lastCmd == "" {
				c.printLine("Nothing to repeat.")
				continue
			}
			input = c.lastCmd
		} else {
			c.lastCmd = input
		}

		result := c.Engine.ProcessCommand(c.Session, input)
		c.printLine(result.Text)
		if c.Trace {
			c.printTrace(result)
		}
		c.persist(ctx)
	}
}

// persist writes the session back to the store after a turn. A store
// failure is logged and play continues on the in-memory session.
func (c *CLI) persist(ctx context.Context) {
	if err := c.Store.Save(ctx, c.Session); err != nil {
		c.Log.Warn("failed to persist session",
			"session_id", c.Session.ID, "error", err)
	}
}

// handleMeta dispatches meta-commands. Returns true if the game should exit.
func (c *CLI) handleMeta(ctx context.Context, input string) bool {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		c.persist(ctx)
		c.printSystem("Goodbye.")
		return true

	case "/save":
		c.cmdSave(arg)

	case "/load":
		c.cmdLoad(ctx, arg)

	case "/session":
		c.printSystem(fmt.Sprintf("Session: %s", c.Session.ID))

	case "/state":
		c.cmdState()

	case "/rules":
		c.cmdRules()

	case "/help":
		c.cmdHelp()

	case "/trace":
		c.Trace = !c.Trace
		if c.Trace {
			c.printSystem("Trace output enabled.")
		} else {
			c.printSystem("Trace output disabled.")
		}

	default:
		c.printSystem(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
	}

	return false
}

func (c *CLI) cmdSave(name string) {
	if name == "" {
		name = "quicksave"
	}

	data, err := save.Save(c.Session, c.Engine.Defs)
	if err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}

	if err := os.MkdirAll(c.SaveDir, 0o755); err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}

	path := filepath.Join(c.SaveDir, name+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}

	c.printSystem(fmt.Sprintf("Game saved to %s.", name))
}

func (c *CLI) cmdLoad(ctx context.Context, name string) {
	if name == "" {
		name = "quicksave"
	}

	path := filepath.Join(c.SaveDir, name+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}

	sd, err := save.Load(data)
	if err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}
	if sd.Game != "" && sd.Game != c.Engine.Defs.Game.Title {
		c.printSystem(fmt.Sprintf("Load failed: snapshot is from %q.", sd.Game))
		return
	}

	save.Apply(c.Session, sd)
	c.persist(ctx)
	c.printSystem(fmt.Sprintf("Game loaded from %s.", name))

	// Show the current location after loading.
	result := c.Engine.ProcessCommand(c.Session, "look")
	c.printLine(result.Text)
}

func (c *CLI) cmdHelp() {
	help := []string{
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
	}
	for _, line := range help {
		c.printLine(line)
	}
}

func (c *CLI) cmdState() {
	s := c.Session
	c.printSystem(fmt.Sprintf("Location: %s", s.Location))
	c.printSystem(fmt.Sprintf("Inventory: %v", s.Inventory))
	if len(s.Flags) > 0 {
		c.printSystem(fmt.Sprintf("Flags: %v", s.Flags))
	}
	if len(s.Counters) > 0 {
		c.printSystem(fmt.Sprintf("Counters: %v", s.Counters))
	}
	if len(s.Visited) > 0 {
		c.printSystem(fmt.Sprintf("Visited: %v", s.Visited))
	}
}

func (c *CLI) cmdRules() {
	for i, name := range c.Engine.RuleNames() {
		c.printLine(fmt.Sprintf("%2d. %s", i+1, name))
	}
}

func (c *CLI) printTrace(result types.Result) {
	if result.Rule == "" {
		c.printSystem("trace: no rule claimed the input")
		return
	}
	c.printSystem(fmt.Sprintf("trace: claimed by rule %q", result.Rule))
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}
