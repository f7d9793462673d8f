// Package exits computes the effective exits of a location for a
// session. Conditional exits are filtered here and nowhere else, so
// movement and room descriptions can never disagree about which ways
// are open.
package exits

import (
	"sort"

	"github.com/garyblankenship/cursorrules-game/engine/conditions"
	"github.com/garyblankenship/cursorrules-game/engine/state"
	"github.com/garyblankenship/cursorrules-game/types"
)

// Visible returns the exits of a location whose conditions currently
// hold, keyed by direction. Unconditional exits are always included.
func Visible(s *types.Session, defs *state.Defs, locationID string) map[string]types.Exit {
	loc, ok := defs.Locations[locationID]
	if !ok {
		return nil
	}
	visible := make(map[string]types.Exit, len(loc.Exits))
	for dir, exit := range loc.Exits {
		if exit.Condition != nil && !conditions.Eval(*exit.Condition, s, defs) {
			continue
		}
		visible[dir] = exit
	}
	return visible
}

// Resolve returns the destination for a direction from the session's
// current location. A hidden exit resolves exactly like a missing one:
// the caller cannot tell whether the direction never existed or its
// condition does not hold.
func Resolve(s *types.Session, defs *state.Defs, direction string) (string, bool) {
	exit, ok := Visible(s, defs, s.Location)[direction]
	if !ok {
		return "", false
	}
	return exit.To, true
}

// VisibleDirections returns the currently open directions from a
// location in sorted order, for stable display.
func VisibleDirections(s *types.Session, defs *state.Defs, locationID string) []string {
	visible := Visible(s, defs, locationID)
	dirs := make([]string, 0, len(visible))
	for dir := range visible {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	return dirs
}

// Directions returns every direction token used by any exit in the
// definitions. The movement vocabulary is closed: a token outside this
// set (and the compass builtins) is not a movement command at all.
func Directions(defs *state.Defs) map[string]bool {
	dirs := map[string]bool{}
	for _, loc := range defs.Locations {
		for dir := range loc.Exits {
			dirs[dir] = true
		}
	}
	return dirs
}
