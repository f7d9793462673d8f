// cursorrules-game runs data-driven text adventures: an ordered rule
// list dispatches each command, a world graph with conditional exits
// scopes movement, and every playthrough is one persisted session.
// Usage: cursorrules-game [--version] [--plain] [--script <file>] [--trace] [--resume <id>] <game_directory>
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/garyblankenship/cursorrules-game/cli"
	"github.com/garyblankenship/cursorrules-game/config"
	"github.com/garyblankenship/cursorrules-game/engine"
	"github.com/garyblankenship/cursorrules-game/engine/state"
	"github.com/garyblankenship/cursorrules-game/loader"
	"github.com/garyblankenship/cursorrules-game/logger"
	"github.com/garyblankenship/cursorrules-game/store"
	"github.com/garyblankenship/cursorrules-game/tui"
	"github.com/garyblankenship/cursorrules-game/types"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	plain := false
	trace := false
	var gameDir string
	var scriptFile string
	var resumeID string

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version":
			fmt.Printf("cursorrules-game %s (commit %s, built %s)\n", version, commit, date)
			return
		case "--plain":
			plain = true
		case "--trace":
			trace = true
		case "--script":
			if i+1 >= len(args) {
				fmt.Fprintf(os.Stderr, "--script requires a file path\n")
				os.Exit(1)
			}
			i++
			scriptFile = args[i]
		case "--resume":
			if i+1 >= len(args) {
				fmt.Fprintf(os.Stderr, "--resume requires a session ID\n")
				os.Exit(1)
			}
			i++
			resumeID = args[i]
		default:
			if gameDir == "" {
				gameDir = args[i]
			}
		}
	}

	if gameDir == "" {
		fmt.Fprintf(os.Stderr, "Usage: cursorrules-game [--version] [--plain] [--script <file>] [--trace] [--resume <id>] <game_directory>\n")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.Setup(cfg)
	if scriptFile != "" {
		// Script transcripts must be reproducible, so no log lines.
		log = logger.Discard()
	}

	// Load and validate game content (Lua scripts or a YAML file).
	defs, err := loader.Load(gameDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading game: %v\n", err)
		os.Exit(1)
	}

	eng, err := engine.New(defs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error starting engine: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	st, err := newStore(ctx, cfg, defs, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to session store: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	sess, err := openSession(ctx, eng, st, resumeID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Script mode: read commands from the file, force plain output,
	// echo each command.
	if scriptFile != "" {
		f, err := os.Open(scriptFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening script: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		printHeader(defs)
		c := newCLI(eng, st, sess, cfg, log, trace)
		c.In = f
		c.EchoInput = true
		c.Run(ctx)
		return
	}

	// Use the plain CLI if --plain was given or stdout is not a terminal.
	if plain || !isTerminal() {
		printHeader(defs)
		c := newCLI(eng, st, sess, cfg, log, trace)
		c.Run(ctx)
		return
	}

	if err := tui.Run(ctx, eng, st, sess, cfg.SaveDir, log); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newStore selects Redis when an address is configured, otherwise the
// in-process store. The Redis path waits briefly for the server so the
// game can start while a container is still coming up.
func newStore(ctx context.Context, cfg *config.Config, defs *state.Defs, log *slog.Logger) (store.Store, error) {
	if cfg.RedisAddr == "" {
		return store.NewMemoryStore(defs), nil
	}

	rs := store.NewRedisStore(cfg.RedisAddr, cfg.SessionTTL, defs, log)
	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := rs.WaitForConnection(connectCtx); err != nil {
		return nil, fmt.Errorf("redis at %s: %w", cfg.RedisAddr, err)
	}
	return rs, nil
}

// openSession resumes a stored session or starts a fresh one.
func openSession(ctx context.Context, eng *engine.Engine, st store.Store, resumeID string) (*types.Session, error) {
	if resumeID == "" {
		return eng.NewSession(), nil
	}

	id, err := uuid.Parse(resumeID)
	if err != nil {
		return nil, fmt.Errorf("invalid session ID %q: %w", resumeID, err)
	}
	s, err := st.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	if s == nil {
		return nil, fmt.Errorf("no stored session %s", id)
	}
	return s, nil
}

func newCLI(eng *engine.Engine, st store.Store, sess *types.Session, cfg *config.Config, log *slog.Logger, trace bool) *cli.CLI {
	c := cli.New(eng, st, sess)
	c.Log = log
	c.SaveDir = cfg.SaveDir
	c.Trace = trace
	return c
}

func printHeader(defs *state.Defs) {
	header := defs.Game.Title
	if defs.Game.Version != "" {
		header += " v" + defs.Game.Version
	}
	if defs.Game.Author != "" {
		header += " by " + defs.Game.Author
	}
	fmt.Println(header)
	fmt.Println()
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
