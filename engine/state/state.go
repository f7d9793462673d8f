// Package state manages the mutable session state and property lookups
// with override layering (session state overrides base definitions).
package state

import (
	"time"

	"github.com/google/uuid"

	"github.com/garyblankenship/cursorrules-game/types"
)

// Defs holds the immutable game definitions produced by the loader.
// Nothing in the engine ever writes to a Defs after construction.
type Defs struct {
	Game      types.GameDef
	Locations map[string]types.LocationDef
	Items     map[string]types.ItemDef
	Rules     []types.RuleDef
}

// NewSession creates a fresh session positioned at the starting location.
// Declared initial state (item placement, starting inventory, starting
// flags) is deep-copied out of the definitions so that sessions never
// share mutable slices or maps with Defs or with each other.
func NewSession(defs *Defs) *types.Session {
	now := time.Now().UTC()
	placement := make(map[string][]string, len(defs.Locations))
	for id, loc := range defs.Locations {
		placement[id] = append([]string{}, loc.Items...)
	}
	flags := make(map[string]bool, len(defs.Game.Flags))
	for name, v := range defs.Game.Flags {
		flags[name] = v
	}
	return &types.Session{
		ID:            uuid.New(),
		Location:      defs.Game.Start,
		Inventory:     append([]string{}, defs.Game.Inventory...),
		Visited:       map[string]bool{},
		Flags:         flags,
		Counters:      map[string]int{},
		LocationItems: placement,
		ItemProps:     map[string]map[string]any{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// GetFlag returns the value of a flag. Unset flags return false.
func GetFlag(s *types.Session, name string) bool {
	return s.Flags[name]
}

// GetCounter returns the value of a counter. Unset counters return 0.
func GetCounter(s *types.Session, name string) int {
	return s.Counters[name]
}

// HasItem returns true if the given item is in the inventory.
func HasItem(s *types.Session, itemID string) bool {
	for _, id := range s.Inventory {
		if id == itemID {
			return true
		}
	}
	return false
}

// Visited returns true if the location has been marked visited.
func Visited(s *types.Session, locationID string) bool {
	return s.Visited[locationID]
}

// ItemsAt returns the item IDs present at a location, in placement order.
// The returned slice is the session's own; callers must not mutate it.
func ItemsAt(s *types.Session, locationID string) []string {
	return s.LocationItems[locationID]
}

// ItemHere returns true if the item is at the given location.
func ItemHere(s *types.Session, locationID, itemID string) bool {
	for _, id := range s.LocationItems[locationID] {
		if id == itemID {
			return true
		}
	}
	return false
}

// GetItemProp returns a property value for an item, checking session
// overrides first, then falling back to the base definition.
// Returns the value and whether it was found.
func GetItemProp(s *types.Session, defs *Defs, itemID, prop string) (any, bool) {
	if props, ok := s.ItemProps[itemID]; ok {
		if v, ok := props[prop]; ok {
			return v, true
		}
	}
	if def, ok := defs.Items[itemID]; ok {
		if v, ok := def.Props[prop]; ok {
			return v, true
		}
	}
	return nil, false
}

// ItemName returns the display name for an item, falling back to the ID
// for unknown items so callers always have something to print.
func ItemName(defs *Defs, itemID string) string {
	if def, ok := defs.Items[itemID]; ok && def.Name != "" {
		return def.Name
	}
	return itemID
}
