// Package effects implements centralized session mutation via the
// Apply function. Every effect type is one atomic operation. No logic
// in effects.
package effects

import (
	"strconv"
	"strings"

	"github.com/garyblankenship/cursorrules-game/engine/state"
	"github.com/garyblankenship/cursorrules-game/types"
)

// Context carries the matched command needed for template interpolation.
type Context struct {
	Input    string   // the raw command as typed
	Captures []string // pattern capture groups, 1-based in templates
}

// Apply applies a list of effects to the session, mutating it.
// Returns the output text collected from say effects.
func Apply(s *types.Session, defs *state.Defs, effects []types.Effect, ctx Context) []string {
	var output []string

	for _, eff := range effects {
		switch eff.Type {
		case "say":
			text, _ := eff.Params["text"].(string)
			output = append(output, interpolate(text, s, defs, ctx))

		case "set_flag":
			flag, _ := eff.Params["flag"].(string)
			value := true
			if v, ok := eff.Params["value"].(bool); ok {
				value = v
			}
			s.Flags[flag] = value

		case "inc_counter":
			counter, _ := eff.Params["counter"].(string)
			amount := 1
			if _, ok := eff.Params["amount"]; ok {
				amount = toInt(eff.Params["amount"])
			}
			s.Counters[counter] += amount

		case "set_counter":
			counter, _ := eff.Params["counter"].(string)
			s.Counters[counter] = toInt(eff.Params["value"])

		case "set_prop":
			item, _ := eff.Params["item"].(string)
			prop, _ := eff.Params["prop"].(string)
			if s.ItemProps[item] == nil {
				s.ItemProps[item] = map[string]any{}
			}
			s.ItemProps[item][prop] = eff.Params["value"]

		case "give_item":
			item, _ := eff.Params["item"].(string)
			item = interpolate(item, s, defs, ctx)
			removeEverywhere(s, item)
			s.Inventory = append(s.Inventory, item)

		case "remove_item":
			item, _ := eff.Params["item"].(string)
			item = interpolate(item, s, defs, ctx)
			removeEverywhere(s, item)

		case "move_item":
			item, _ := eff.Params["item"].(string)
			loc, _ := eff.Params["location"].(string)
			item = interpolate(item, s, defs, ctx)
			removeEverywhere(s, item)
			s.LocationItems[loc] = append(s.LocationItems[loc], item)

		case "move_player":
			loc, _ := eff.Params["location"].(string)
			s.Visited[s.Location] = true
			s.Location = loc

		default:
			// Unknown effect type: ignore silently. The loader rejects
			// these before play.
		}
	}

	return output
}

// interpolate replaces {input} with the raw command, {location} with
// the current location's name, and {1}..{9} with pattern capture
// groups.
func interpolate(text string, s *types.Session, defs *state.Defs, ctx Context) string {
	if !strings.Contains(text, "{") {
		return text
	}
	text = strings.ReplaceAll(text, "{input}", ctx.Input)
	if strings.Contains(text, "{location}") {
		name := s.Location
		if loc, ok := defs.Locations[s.Location]; ok && loc.Name != "" {
			name = loc.Name
		}
		text = strings.ReplaceAll(text, "{location}", name)
	}
	for i, group := range ctx.Captures {
		text = strings.ReplaceAll(text, "{"+strconv.Itoa(i+1)+"}", group)
	}
	return text
}

// removeEverywhere takes an item out of the inventory and out of every
// location, so placement effects always leave the item in one place.
func removeEverywhere(s *types.Session, itemID string) {
	s.Inventory = removeFromSlice(s.Inventory, itemID)
	for loc, items := range s.LocationItems {
		s.LocationItems[loc] = removeFromSlice(items, itemID)
	}
}

func removeFromSlice(slice []string, item string) []string {
	for i, v := range slice {
		if v == item {
			return append(slice[:i], slice[i+1:]...)
		}
	}
	return slice
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	case int64:
		return int(n)
	default:
		return 0
	}
}
