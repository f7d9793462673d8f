package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/garyblankenship/cursorrules-game/engine/effects"
	"github.com/garyblankenship/cursorrules-game/engine/exits"
	"github.com/garyblankenship/cursorrules-game/engine/format"
	"github.com/garyblankenship/cursorrules-game/engine/state"
	"github.com/garyblankenship/cursorrules-game/types"
)

// Single-letter and short forms expand to full direction tokens before
// the exit lookup.
var directionExpansions = map[string]string{
	"n":  "north",
	"s":  "south",
	"e":  "east",
	"w":  "west",
	"ne": "northeast",
	"nw": "northwest",
	"se": "southeast",
	"sw": "southwest",
	"u":  "up",
	"d":  "down",
}

// Compass tokens that always count as movement, whether or not any
// location uses them.
var directionNames = map[string]bool{
	"north": true, "south": true, "east": true, "west": true,
	"northeast": true, "northwest": true, "southeast": true, "southwest": true,
	"up": true, "down": true,
}

// Verbs that make movement intent explicit, as in "go north" or
// "enter portal".
var goVerbs = map[string]bool{
	"go": true, "walk": true, "run": true, "move": true,
	"head": true, "proceed": true, "enter": true, "travel": true,
}

var (
	lookRe      = regexp.MustCompile(`(?i)^(?:look|l|look around)$`)
	examineRe   = regexp.MustCompile(`(?i)^(?:examine|x|inspect|check|read|look at)\s+(.+)$`)
	inventoryRe = regexp.MustCompile(`(?i)^(?:inventory|inv|i)$`)
	takeRe      = regexp.MustCompile(`(?i)^(?:take|get|grab|pick up)\s+(.+)$`)
	dropRe      = regexp.MustCompile(`(?i)^(?:drop|discard|put down)\s+(.+)$`)
)

// Canonical returns the built-in command rules in their standard
// order. They are ordinary rules: games register their own rules ahead
// of these and may shadow any of them.
func Canonical(defs *state.Defs) []Rule {
	return []Rule{
		movementRule(defs),
		{Name: "look", Handle: lookHandler},
		{Name: "examine", Handle: examineHandler},
		{Name: "inventory", Handle: inventoryHandler},
		{Name: "take", Handle: takeHandler},
		{Name: "drop", Handle: dropHandler},
	}
}

// movementRule recognizes a closed vocabulary: the compass tokens plus
// every direction token used by an exit anywhere in this game. A bare
// token outside that vocabulary is not a movement command and falls
// through; an explicit go-verb always claims.
func movementRule(defs *state.Defs) Rule {
	vocabulary := exits.Directions(defs)
	for dir := range directionNames {
		vocabulary[dir] = true
	}

	return Rule{
		Name: "movement",
		Handle: func(input string, s *types.Session, defs *state.Defs) (string, bool) {
			words := strings.Fields(strings.ToLower(input))
			if len(words) == 0 {
				return "", false
			}

			var token string
			switch {
			case goVerbs[words[0]]:
				if len(words) == 1 {
					return "Go where?", true
				}
				token = stripArticle(strings.Join(words[1:], " "))
			case len(words) == 1:
				token = words[0]
			default:
				return "", false
			}

			if full, ok := directionExpansions[token]; ok {
				token = full
			}
			if !goVerbs[words[0]] && !vocabulary[token] {
				return "", false
			}

			to, ok := exits.Resolve(s, defs, token)
			if !ok {
				return "You can't go that way.", true
			}
			effects.Apply(s, defs, []types.Effect{
				{Type: "move_player", Params: map[string]any{"location": to}},
			}, effects.Context{Input: input})
			return format.Describe(s, defs, to), true
		},
	}
}

func lookHandler(input string, s *types.Session, defs *state.Defs) (string, bool) {
	if !lookRe.MatchString(input) {
		return "", false
	}
	return format.Describe(s, defs, s.Location), true
}

func examineHandler(input string, s *types.Session, defs *state.Defs) (string, bool) {
	groups := examineRe.FindStringSubmatch(input)
	if groups == nil {
		return "", false
	}
	fragment := groups[1]

	// Location first, inventory second, matching take's policy.
	id, ok := findByName(defs, state.ItemsAt(s, s.Location), fragment)
	if !ok {
		id, ok = findByName(defs, s.Inventory, fragment)
	}
	if !ok {
		return "You don't see that here.", true
	}
	def := defs.Items[id]
	if def.Description == "" {
		return "You see nothing special about it.", true
	}
	return def.Description, true
}

func inventoryHandler(input string, s *types.Session, defs *state.Defs) (string, bool) {
	if !inventoryRe.MatchString(input) {
		return "", false
	}
	if len(s.Inventory) == 0 {
		return "You are carrying nothing.", true
	}
	names := make([]string, 0, len(s.Inventory))
	for _, id := range s.Inventory {
		names = append(names, state.ItemName(defs, id))
	}
	return "You are carrying: " + strings.Join(names, ", ") + ".", true
}

func takeHandler(input string, s *types.Session, defs *state.Defs) (string, bool) {
	groups := takeRe.FindStringSubmatch(input)
	if groups == nil {
		return "", false
	}

	// Only items physically present can be taken; the first name match
	// in placement order wins.
	id, ok := findByName(defs, state.ItemsAt(s, s.Location), groups[1])
	if !ok {
		return "You don't see that here.", true
	}
	if !defs.Items[id].Portable {
		return "You can't take that.", true
	}

	effs := []types.Effect{
		{Type: "give_item", Params: map[string]any{"item": id}},
	}
	effs = append(effs, defs.Items[id].OnTake...)
	out := effects.Apply(s, defs, effs, effects.Context{Input: input, Captures: groups[1:]})

	lines := append([]string{fmt.Sprintf("You take the %s.", state.ItemName(defs, id))}, out...)
	return strings.Join(lines, "\n"), true
}

func dropHandler(input string, s *types.Session, defs *state.Defs) (string, bool) {
	groups := dropRe.FindStringSubmatch(input)
	if groups == nil {
		return "", false
	}

	id, ok := findByName(defs, s.Inventory, groups[1])
	if !ok {
		return "You don't have that.", true
	}

	effects.Apply(s, defs, []types.Effect{
		{Type: "move_item", Params: map[string]any{"item": id, "location": s.Location}},
	}, effects.Context{Input: input})
	return fmt.Sprintf("You drop the %s.", state.ItemName(defs, id)), true
}

// findByName resolves a free-text fragment against a list of item IDs
// by case-insensitive substring match on display name. Deterministic:
// the first match in list order wins.
func findByName(defs *state.Defs, ids []string, fragment string) (string, bool) {
	fragment = stripArticle(strings.ToLower(strings.TrimSpace(fragment)))
	if fragment == "" {
		return "", false
	}
	for _, id := range ids {
		if strings.Contains(strings.ToLower(state.ItemName(defs, id)), fragment) {
			return id, true
		}
	}
	return "", false
}

// stripArticle drops a leading "the", "a", or "an" so "take the key"
// resolves the same item as "take key".
func stripArticle(fragment string) string {
	for _, article := range []string{"the ", "a ", "an "} {
		if strings.HasPrefix(fragment, article) {
			return strings.TrimSpace(fragment[len(article):])
		}
	}
	return fragment
}
