package loader

import (
	"fmt"
	"os"

	"github.com/garyblankenship/cursorrules-game/engine/state"
	"github.com/garyblankenship/cursorrules-game/types"
	"gopkg.in/yaml.v3"
)

// yamlGame is the top-level structure of a YAML game file.
type yamlGame struct {
	Game      types.GameDef           `yaml:"game"`
	Locations map[string]yamlLocation `yaml:"locations"`
	Items     map[string]yamlItem     `yaml:"items"`
	Rules     []yamlRule              `yaml:"rules"`
}

// yamlLocation mirrors a location block. IDs come from the map key.
type yamlLocation struct {
	Name        string              `yaml:"name"`
	Description string              `yaml:"description"`
	FirstVisit  string              `yaml:"first_visit"`
	Items       []string            `yaml:"items"`
	Exits       map[string]yamlExit `yaml:"exits"`
}

// yamlExit decodes either a bare destination id or a mapping carrying a
// destination and an optional condition.
type yamlExit struct {
	To        string
	Condition *types.Condition
}

func (e *yamlExit) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		return value.Decode(&e.To)
	}
	var full struct {
		To        string           `yaml:"to"`
		Condition *types.Condition `yaml:"condition"`
	}
	if err := value.Decode(&full); err != nil {
		return err
	}
	e.To = full.To
	e.Condition = full.Condition
	return nil
}

// yamlItem mirrors an item block. Portable is a pointer so that an
// omitted field defaults to true, matching the Lua loader.
type yamlItem struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Portable    *bool          `yaml:"portable"`
	Props       map[string]any `yaml:"props"`
	OnTake      []types.Effect `yaml:"on_take"`
}

type yamlRule struct {
	ID         string            `yaml:"id"`
	Pattern    string            `yaml:"pattern"`
	Conditions []types.Condition `yaml:"conditions"`
	Effects    []types.Effect    `yaml:"effects"`
	Response   string            `yaml:"response"`
}

// LoadYAML reads a single YAML game file, validates references, and
// returns the immutable Defs. The decoder rejects unknown fields so
// misspelled keys surface as errors instead of silently vanishing.
func LoadYAML(path string) (*state.Defs, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading game file %s: %w", path, err)
	}
	defer f.Close()

	var doc yamlGame
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	defs := &state.Defs{
		Game:      doc.Game,
		Locations: map[string]types.LocationDef{},
		Items:     map[string]types.ItemDef{},
	}

	for id, yl := range doc.Locations {
		loc := types.LocationDef{
			ID:          id,
			Name:        yl.Name,
			Description: yl.Description,
			FirstVisit:  yl.FirstVisit,
			Items:       yl.Items,
		}
		if loc.Name == "" {
			loc.Name = id
		}
		if len(yl.Exits) > 0 {
			loc.Exits = map[string]types.Exit{}
			for dir, ye := range yl.Exits {
				loc.Exits[dir] = types.Exit{To: ye.To, Condition: ye.Condition}
			}
		}
		defs.Locations[id] = loc
	}

	for id, yi := range doc.Items {
		item := types.ItemDef{
			ID:          id,
			Name:        yi.Name,
			Description: yi.Description,
			Portable:    true,
			Props:       yi.Props,
			OnTake:      yi.OnTake,
		}
		if yi.Portable != nil {
			item.Portable = *yi.Portable
		}
		if item.Name == "" {
			item.Name = id
		}
		defs.Items[id] = item
	}

	for i, yr := range doc.Rules {
		defs.Rules = append(defs.Rules, types.RuleDef{
			ID:          yr.ID,
			Pattern:     yr.Pattern,
			Conditions:  yr.Conditions,
			Effects:     yr.Effects,
			Response:    yr.Response,
			SourceOrder: i + 1,
		})
	}

	if err := validate(defs); err != nil {
		return nil, err
	}

	return defs, nil
}
