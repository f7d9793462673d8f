// Package rules implements the ordered command dispatch pipeline.
// Rules are tried strictly in registration order and the first one to
// claim the input wins; there is no ranking, no backtracking, and no
// second pass.
package rules

import (
	"strings"

	"github.com/garyblankenship/cursorrules-game/engine/state"
	"github.com/garyblankenship/cursorrules-game/types"
)

// DefaultResponse is returned when no registered rule claims the input.
const DefaultResponse = "I don't understand that."

// Handler inspects one command. It returns the response text and true
// when it claims the command. Returning false leaves the command for
// later rules, and a handler that does so must not have mutated the
// session: exploratory matching never corrupts state.
type Handler func(input string, s *types.Session, defs *state.Defs) (string, bool)

// Rule is a named matcher+effect unit. The name exists for tracing;
// dispatch only ever consults the handler.
type Rule struct {
	Name   string
	Handle Handler
}

// Registry holds rules in registration order. Registration order is
// precedence: the earliest matching rule wins, so authored rules
// registered before the canonical ones can override them.
type Registry struct {
	rules []Rule
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends a rule. Rules cannot be removed or reordered once
// registered.
func (r *Registry) Register(rule Rule) {
	r.rules = append(r.rules, rule)
}

// Len returns the number of registered rules.
func (r *Registry) Len() int {
	return len(r.rules)
}

// Names returns the rule names in dispatch order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.rules))
	for i, rule := range r.rules {
		names[i] = rule.Name
	}
	return names
}

// Dispatch runs the input through the rules in order and returns the
// first claimed response. Mutations made by the claiming rule are kept
// as-is; rules that decline must not have mutated. When nothing
// claims, the fixed default is returned and the session is untouched.
func (r *Registry) Dispatch(input string, s *types.Session, defs *state.Defs) types.Result {
	input = strings.TrimSpace(input)
	for _, rule := range r.rules {
		if text, ok := rule.Handle(input, s, defs); ok {
			return types.Result{Text: text, Rule: rule.Name}
		}
	}
	return types.Result{Text: DefaultResponse}
}
