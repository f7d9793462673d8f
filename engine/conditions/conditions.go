// Package conditions evaluates serialized condition records against a
// session. Conditions are plain data; this interpreter is the only
// place their semantics live, so rules and exits agree on what a
// condition means.
package conditions

import (
	"github.com/garyblankenship/cursorrules-game/engine/state"
	"github.com/garyblankenship/cursorrules-game/types"
)

// Eval evaluates a single condition against the current session.
// Unknown condition types evaluate to false; the loader rejects them
// before play, so this is a belt for hand-built defs in tests.
func Eval(c types.Condition, s *types.Session, defs *state.Defs) bool {
	switch c.Type {
	case "flag_set":
		flag, _ := c.Params["flag"].(string)
		return state.GetFlag(s, flag)

	case "flag_not":
		flag, _ := c.Params["flag"].(string)
		return !state.GetFlag(s, flag)

	case "flag_is":
		flag, _ := c.Params["flag"].(string)
		value, _ := c.Params["value"].(bool)
		return state.GetFlag(s, flag) == value

	case "has_item":
		item, _ := c.Params["item"].(string)
		return state.HasItem(s, item)

	case "in_location":
		loc, _ := c.Params["location"].(string)
		return s.Location == loc

	case "visited":
		loc, _ := c.Params["location"].(string)
		return state.Visited(s, loc)

	case "counter_gt":
		counter, _ := c.Params["counter"].(string)
		value := toInt(c.Params["value"])
		return state.GetCounter(s, counter) > value

	case "counter_lt":
		counter, _ := c.Params["counter"].(string)
		value := toInt(c.Params["value"])
		return state.GetCounter(s, counter) < value

	case "prop_is":
		item, _ := c.Params["item"].(string)
		prop, _ := c.Params["prop"].(string)
		expected := c.Params["value"]
		actual, ok := state.GetItemProp(s, defs, item, prop)
		if !ok {
			return expected == nil
		}
		return equal(actual, expected)

	case "not":
		if c.Inner == nil {
			return true
		}
		return !Eval(*c.Inner, s, defs)

	case "any":
		for _, alt := range c.Of {
			if Eval(alt, s, defs) {
				return true
			}
		}
		return false

	default:
		return false
	}
}

// EvalAll returns true if all conditions pass (AND logic).
// An empty condition list is vacuously true.
func EvalAll(conditions []types.Condition, s *types.Session, defs *state.Defs) bool {
	for _, c := range conditions {
		if !Eval(c, s, defs) {
			return false
		}
	}
	return true
}

// equal compares prop values, treating numeric types as one family so
// that int props match float64 values decoded from JSON saves.
func equal(a, b any) bool {
	if a == b {
		return true
	}
	an, aok := asInt(a)
	bn, bok := asInt(b)
	return aok && bok && an == bn
}

// toInt converts an any value to int, handling float64 from JSON/Lua.
func toInt(v any) int {
	n, _ := asInt(v)
	return n
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
