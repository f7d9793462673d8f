// Package loader turns game content on disk into immutable definitions.
// Lua scripts run inside a sandboxed VM that is thrown away once
// compilation finishes; YAML files decode into the same structures.
// Nothing is scripted at runtime.
package loader

import (
	"fmt"
	"sort"

	"github.com/garyblankenship/cursorrules-game/engine/state"
	"github.com/garyblankenship/cursorrules-game/types"
	lua "github.com/yuin/gopher-lua"
)

// rawLocation holds a location table before compilation.
type rawLocation struct {
	id    string
	table *lua.LTable
}

// rawItem holds an item table before compilation.
type rawItem struct {
	id    string
	table *lua.LTable
}

// rawRule holds a rule table before compilation.
type rawRule struct {
	id    string
	table *lua.LTable
	order int
}

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	v := tbl.RawGetString(key)
	if s, ok := v.(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getBool returns a bool field from a Lua table, or the default if missing.
func getBool(tbl *lua.LTable, key string, def bool) bool {
	v := tbl.RawGetString(key)
	if b, ok := v.(lua.LBool); ok {
		return bool(b)
	}
	return def
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	v := tbl.RawGetString(key)
	if t, ok := v.(*lua.LTable); ok {
		return t
	}
	return nil
}

// toGoValue converts a Lua value to a Go value recursively.
func toGoValue(v lua.LValue) any {
	switch val := v.(type) {
	case lua.LBool:
		return bool(val)
	case lua.LNumber:
		f := float64(val)
		if f == float64(int(f)) {
			return int(f)
		}
		return f
	case *lua.LNilType:
		return nil
	case lua.LString:
		return string(val)
	case *lua.LTable:
		// Check if it's an array (sequential integer keys starting at 1).
		maxN := val.MaxN()
		if maxN > 0 {
			arr := make([]any, 0, maxN)
			for i := 1; i <= maxN; i++ {
				arr = append(arr, toGoValue(val.RawGetInt(i)))
			}
			return arr
		}
		// Otherwise treat as map.
		m := map[string]any{}
		val.ForEach(func(k, v lua.LValue) {
			if ks, ok := k.(lua.LString); ok {
				m[string(ks)] = toGoValue(v)
			}
		})
		return m
	default:
		return nil
	}
}

// tableToStringSlice converts a Lua array table to a []string.
func tableToStringSlice(tbl *lua.LTable) []string {
	if tbl == nil {
		return nil
	}
	var out []string
	tbl.ForEach(func(k, v lua.LValue) {
		if _, ok := k.(lua.LNumber); !ok {
			return
		}
		if s, ok := v.(lua.LString); ok {
			out = append(out, string(s))
		}
	})
	return out
}

// compile converts all collected Lua data into a Defs struct.
func compile(coll *collector) (*state.Defs, error) {
	defs := &state.Defs{
		Locations: map[string]types.LocationDef{},
		Items:     map[string]types.ItemDef{},
	}

	// Game.
	if coll.game == nil {
		return nil, fmt.Errorf("no Game{} definition found")
	}
	defs.Game = compileGame(coll.game)

	// Locations.
	for _, raw := range coll.locations {
		loc, err := compileLocation(raw)
		if err != nil {
			return nil, fmt.Errorf("compiling location %s: %w", raw.id, err)
		}
		defs.Locations[loc.ID] = loc
	}

	// Items.
	for _, raw := range coll.items {
		item, err := compileItem(raw)
		if err != nil {
			return nil, fmt.Errorf("compiling item %s: %w", raw.id, err)
		}
		defs.Items[item.ID] = item
	}

	// Rules, in source order.
	for _, raw := range coll.rules {
		rule, err := compileRuleDef(raw)
		if err != nil {
			return nil, fmt.Errorf("compiling rule %s: %w", raw.id, err)
		}
		defs.Rules = append(defs.Rules, rule)
	}
	sort.SliceStable(defs.Rules, func(i, j int) bool {
		return defs.Rules[i].SourceOrder < defs.Rules[j].SourceOrder
	})

	return defs, nil
}

func compileGame(tbl *lua.LTable) types.GameDef {
	game := types.GameDef{
		Title:     getString(tbl, "title"),
		Author:    getString(tbl, "author"),
		Version:   getString(tbl, "version"),
		Start:     getString(tbl, "start"),
		Intro:     getString(tbl, "intro"),
		Inventory: tableToStringSlice(getTable(tbl, "inventory")),
	}
	if flagsTbl := getTable(tbl, "flags"); flagsTbl != nil {
		game.Flags = map[string]bool{}
		flagsTbl.ForEach(func(k, v lua.LValue) {
			ks, kok := k.(lua.LString)
			vb, vok := v.(lua.LBool)
			if kok && vok {
				game.Flags[string(ks)] = bool(vb)
			}
		})
	}
	return game
}

// compileLocation compiles a raw location into a LocationDef.
func compileLocation(raw rawLocation) (types.LocationDef, error) {
	tbl := raw.table
	loc := types.LocationDef{
		ID:          raw.id,
		Name:        getString(tbl, "name"),
		Description: getString(tbl, "description"),
		FirstVisit:  getString(tbl, "first_visit"),
		Items:       tableToStringSlice(getTable(tbl, "items")),
	}
	if loc.Name == "" {
		loc.Name = raw.id
	}

	exits, err := compileExits(getTable(tbl, "exits"))
	if err != nil {
		return loc, err
	}
	loc.Exits = exits

	return loc, nil
}

// compileExits compiles an exits table. Each entry is either a bare
// destination id or a table carrying a destination and an optional
// condition that gates the exit.
func compileExits(tbl *lua.LTable) (map[string]types.Exit, error) {
	if tbl == nil {
		return nil, nil
	}
	exits := map[string]types.Exit{}
	var badDir string
	tbl.ForEach(func(k, v lua.LValue) {
		dir, ok := k.(lua.LString)
		if !ok {
			return
		}
		switch val := v.(type) {
		case lua.LString:
			exits[string(dir)] = types.Exit{To: string(val)}
		case *lua.LTable:
			exit := types.Exit{To: getString(val, "to")}
			if condTbl := getTable(val, "condition"); condTbl != nil {
				cond := compileCondition(condTbl)
				exit.Condition = &cond
			}
			exits[string(dir)] = exit
		default:
			if badDir == "" {
				badDir = string(dir)
			}
		}
	})
	if badDir != "" {
		return nil, fmt.Errorf("exit %q must be a destination id or a table", badDir)
	}
	return exits, nil
}

// compileItem compiles a raw item into an ItemDef. Fields without a
// special meaning become props.
func compileItem(raw rawItem) (types.ItemDef, error) {
	tbl := raw.table
	item := types.ItemDef{
		ID:          raw.id,
		Name:        getString(tbl, "name"),
		Description: getString(tbl, "description"),
		Portable:    getBool(tbl, "portable", true),
	}
	if item.Name == "" {
		item.Name = raw.id
	}

	skip := map[string]bool{
		"name": true, "description": true, "portable": true, "on_take": true,
	}
	tbl.ForEach(func(k, v lua.LValue) {
		ks, ok := k.(lua.LString)
		if !ok {
			return
		}
		key := string(ks)
		if skip[key] {
			return
		}
		if item.Props == nil {
			item.Props = map[string]any{}
		}
		item.Props[key] = toGoValue(v)
	})

	if onTake := getTable(tbl, "on_take"); onTake != nil {
		item.OnTake = compileEffects(onTake)
	}

	return item, nil
}

func compileRuleDef(raw rawRule) (types.RuleDef, error) {
	tbl := raw.table
	rule := types.RuleDef{
		ID:          raw.id,
		Pattern:     getString(tbl, "pattern"),
		Response:    getString(tbl, "response"),
		SourceOrder: raw.order,
	}
	if condTbl := getTable(tbl, "conditions"); condTbl != nil {
		rule.Conditions = compileConditions(condTbl)
	}
	if effTbl := getTable(tbl, "effects"); effTbl != nil {
		rule.Effects = compileEffects(effTbl)
	}
	return rule, nil
}

func compileConditions(tbl *lua.LTable) []types.Condition {
	var conditions []types.Condition
	tbl.ForEach(func(k, v lua.LValue) {
		// Only process integer-keyed entries (array elements).
		if _, ok := k.(lua.LNumber); !ok {
			return
		}
		if condTbl, ok := v.(*lua.LTable); ok {
			conditions = append(conditions, compileCondition(condTbl))
		}
	})
	return conditions
}

func compileCondition(tbl *lua.LTable) types.Condition {
	condType := getString(tbl, "type")

	if condType == "not" {
		if innerTbl := getTable(tbl, "inner"); innerTbl != nil {
			inner := compileCondition(innerTbl)
			return types.Condition{
				Type:   "not",
				Negate: true,
				Inner:  &inner,
			}
		}
	}

	if condType == "any" {
		var of []types.Condition
		if ofTbl := getTable(tbl, "of"); ofTbl != nil {
			of = compileConditions(ofTbl)
		}
		return types.Condition{Type: "any", Of: of}
	}

	params := map[string]any{}
	tbl.ForEach(func(k, v lua.LValue) {
		if ks, ok := k.(lua.LString); ok {
			key := string(ks)
			if key != "type" {
				params[key] = toGoValue(v)
			}
		}
	})

	return types.Condition{
		Type:   condType,
		Params: params,
	}
}

func compileEffects(tbl *lua.LTable) []types.Effect {
	var effects []types.Effect
	tbl.ForEach(func(k, v lua.LValue) {
		if _, ok := k.(lua.LNumber); !ok {
			return
		}
		if effTbl, ok := v.(*lua.LTable); ok {
			effects = append(effects, compileEffect(effTbl))
		}
	})
	return effects
}

func compileEffect(tbl *lua.LTable) types.Effect {
	effType := getString(tbl, "type")
	params := map[string]any{}
	tbl.ForEach(func(k, v lua.LValue) {
		if ks, ok := k.(lua.LString); ok {
			key := string(ks)
			if key != "type" {
				params[key] = toGoValue(v)
			}
		}
	})
	return types.Effect{
		Type:   effType,
		Params: params,
	}
}

// sortedLuaFiles returns .lua files with game.lua first and the rest
// sorted alphabetically.
func sortedLuaFiles(files []string) []string {
	var gameFile string
	var others []string
	for _, f := range files {
		if f == "game.lua" {
			gameFile = f
		} else {
			others = append(others, f)
		}
	}
	sort.Strings(others)
	if gameFile != "" {
		return append([]string{gameFile}, others...)
	}
	return others
}
