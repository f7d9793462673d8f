// Package engine wires the loaded definitions and the compiled rule
// registry into the per-turn dispatch entry point.
package engine

import (
	"fmt"
	"strings"

	"github.com/garyblankenship/cursorrules-game/engine/format"
	"github.com/garyblankenship/cursorrules-game/engine/rules"
	"github.com/garyblankenship/cursorrules-game/engine/state"
	"github.com/garyblankenship/cursorrules-game/types"
)

// Engine holds the immutable definitions and the compiled rule
// registry. It carries no per-session state: one engine serves any
// number of sessions, one command at a time per session.
type Engine struct {
	Defs     *state.Defs
	registry *rules.Registry
}

// New compiles the rule registry for the given definitions.
// Definitions should already have passed loader validation; a pattern
// that fails to compile surfaces here as a configuration error and no
// engine is returned.
func New(defs *state.Defs) (*Engine, error) {
	reg, err := rules.Compile(defs)
	if err != nil {
		return nil, fmt.Errorf("compile rules: %w", err)
	}
	return &Engine{Defs: defs, registry: reg}, nil
}

// NewSession starts a fresh session at the game's starting location.
func (e *Engine) NewSession() *types.Session {
	return state.NewSession(e.Defs)
}

// ProcessCommand dispatches one command against a session, mutating
// the session in place, and returns the response. Deterministic: the
// same session state and the same input always produce the same text
// and the same resulting state.
func (e *Engine) ProcessCommand(s *types.Session, input string) types.Result {
	if strings.TrimSpace(input) == "" {
		return types.Result{Text: "What do you want to do?"}
	}
	return e.registry.Dispatch(input, s, e.Defs)
}

// Intro renders the opening text for a session: the game's intro
// paragraph, if any, followed by the current location description.
func (e *Engine) Intro(s *types.Session) string {
	desc := format.Describe(s, e.Defs, s.Location)
	if e.Defs.Game.Intro == "" {
		return desc
	}
	return e.Defs.Game.Intro + "\n\n" + desc
}

// RuleNames returns the dispatch order, for tracing and diagnostics.
func (e *Engine) RuleNames() []string {
	return e.registry.Names()
}
