// Package save implements JSON serialization and deserialization of
// sessions. File snapshots and the session store share this format.
package save

import (
	"encoding/json"

	"github.com/garyblankenship/cursorrules-game/engine/state"
	"github.com/garyblankenship/cursorrules-game/types"
)

// SaveData is the JSON-serializable save envelope: game identity for
// sanity checks on restore, plus the full session.
type SaveData struct {
	Version string         `json:"version"`
	Game    string         `json:"game"`
	Session *types.Session `json:"session"`
}

// Save serializes a session to JSON bytes.
func Save(s *types.Session, defs *state.Defs) ([]byte, error) {
	data := SaveData{
		Version: defs.Game.Version,
		Game:    defs.Game.Title,
		Session: s,
	}
	return json.MarshalIndent(data, "", "  ")
}

// Load deserializes JSON bytes into SaveData. Maps and slices are
// never nil after a successful load, whatever the input omitted.
func Load(data []byte) (*SaveData, error) {
	var sd SaveData
	if err := json.Unmarshal(data, &sd); err != nil {
		return nil, err
	}
	if sd.Session == nil {
		sd.Session = &types.Session{}
	}
	Normalize(sd.Session)
	return &sd, nil
}

// Normalize ensures a session's maps and slices are non-nil so the
// engine never has to guard lookups against a sparse save file.
func Normalize(s *types.Session) {
	if s.Inventory == nil {
		s.Inventory = []string{}
	}
	if s.Visited == nil {
		s.Visited = map[string]bool{}
	}
	if s.Flags == nil {
		s.Flags = map[string]bool{}
	}
	if s.Counters == nil {
		s.Counters = map[string]int{}
	}
	if s.LocationItems == nil {
		s.LocationItems = map[string][]string{}
	}
	if s.ItemProps == nil {
		s.ItemProps = map[string]map[string]any{}
	}
}

// Apply copies loaded save data onto a session in place, preserving
// the session pointer callers already hold.
func Apply(s *types.Session, sd *SaveData) {
	*s = *sd.Session
}
