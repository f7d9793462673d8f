package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/garyblankenship/cursorrules-game/engine/conditions"
	"github.com/garyblankenship/cursorrules-game/engine/effects"
	"github.com/garyblankenship/cursorrules-game/engine/state"
	"github.com/garyblankenship/cursorrules-game/types"
)

// FromDef compiles an authored rule definition into a dispatchable
// rule. The pattern is matched case-insensitively against the whole
// input; capture groups are available to effect templates as {1}..{9}.
// Conditions are checked before any effect runs, so a declined rule
// leaves no trace.
func FromDef(def types.RuleDef) (Rule, error) {
	re, err := regexp.Compile(`(?i)^(?:` + def.Pattern + `)$`)
	if err != nil {
		return Rule{}, fmt.Errorf("rule %q: bad pattern: %w", def.ID, err)
	}

	// The response is narrative output like any say effect; folding it
	// in up front gives it the same interpolation treatment.
	effs := def.Effects
	if def.Response != "" {
		effs = append([]types.Effect{{
			Type:   "say",
			Params: map[string]any{"text": def.Response},
		}}, def.Effects...)
	}

	return Rule{
		Name: def.ID,
		Handle: func(input string, s *types.Session, defs *state.Defs) (string, bool) {
			groups := re.FindStringSubmatch(input)
			if groups == nil {
				return "", false
			}
			if !conditions.EvalAll(def.Conditions, s, defs) {
				return "", false
			}
			ctx := effects.Context{Input: input, Captures: groups[1:]}
			out := effects.Apply(s, defs, effs, ctx)
			return strings.Join(out, "\n"), true
		},
	}, nil
}

// Compile builds the dispatch registry for a game: authored rules
// first, in source order, then the canonical command rules. Authored
// rules therefore shadow the canonical ones whenever both would match.
func Compile(defs *state.Defs) (*Registry, error) {
	reg := NewRegistry()
	for _, def := range defs.Rules {
		rule, err := FromDef(def)
		if err != nil {
			return nil, err
		}
		reg.Register(rule)
	}
	for _, rule := range Canonical(defs) {
		reg.Register(rule)
	}
	return reg, nil
}
