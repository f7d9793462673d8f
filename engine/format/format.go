// Package format composes the textual view of a location for a
// session. It is a pure reader of definitions and session state;
// nothing here mutates, so look and movement can share it safely.
package format

import (
	"strings"

	"github.com/garyblankenship/cursorrules-game/engine/exits"
	"github.com/garyblankenship/cursorrules-game/engine/state"
	"github.com/garyblankenship/cursorrules-game/types"
)

// Describe renders the standard multi-line description of a location:
// name, description, first-visit narrative while the location is
// unvisited, items present, and currently visible exits.
func Describe(s *types.Session, defs *state.Defs, locationID string) string {
	loc, ok := defs.Locations[locationID]
	if !ok {
		return "You are somewhere unknown."
	}

	var lines []string
	if loc.Name != "" {
		lines = append(lines, loc.Name)
	}
	if loc.Description != "" {
		lines = append(lines, loc.Description)
	}
	if loc.FirstVisit != "" && !state.Visited(s, locationID) {
		lines = append(lines, loc.FirstVisit)
	}
	if items := ItemLine(s, defs, locationID); items != "" {
		lines = append(lines, items)
	}
	if exitLine := ExitLine(s, defs, locationID); exitLine != "" {
		lines = append(lines, exitLine)
	}
	return strings.Join(lines, "\n")
}

// ItemLine renders the items present at a location in placement order,
// or "" when the location is empty.
func ItemLine(s *types.Session, defs *state.Defs, locationID string) string {
	ids := state.ItemsAt(s, locationID)
	if len(ids) == 0 {
		return ""
	}
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		names = append(names, state.ItemName(defs, id))
	}
	return "You see: " + strings.Join(names, ", ") + "."
}

// ExitLine renders the visible exits of a location in sorted order,
// or "" when no exit is currently open.
func ExitLine(s *types.Session, defs *state.Defs, locationID string) string {
	dirs := exits.VisibleDirections(s, defs, locationID)
	if len(dirs) == 0 {
		return ""
	}
	return "Exits: " + strings.Join(dirs, ", ") + "."
}
