package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/garyblankenship/cursorrules-game/engine/state"
	lua "github.com/yuin/gopher-lua"
)

// collector accumulates Lua definitions during file execution.
type collector struct {
	game      *lua.LTable
	locations []rawLocation
	items     []rawItem
	rules     []rawRule
	order     int
}

func (c *collector) nextSourceOrder() int {
	c.order++
	return c.order
}

// Load reads game content from dir, compiles it into definitions,
// validates references, and returns the immutable Defs. Directories
// holding .lua files load through a sandboxed Lua VM that is discarded
// after compilation; a directory with no Lua scripts falls back to a
// single YAML game file.
func Load(dir string) (*state.Defs, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading game directory %s: %w", dir, err)
	}

	var luaFiles, yamlFiles []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch {
		case strings.HasSuffix(e.Name(), ".lua"):
			luaFiles = append(luaFiles, e.Name())
		case strings.HasSuffix(e.Name(), ".yaml"), strings.HasSuffix(e.Name(), ".yml"):
			yamlFiles = append(yamlFiles, e.Name())
		}
	}

	switch {
	case len(luaFiles) > 0:
		return loadLua(dir, luaFiles)
	case len(yamlFiles) == 1:
		return LoadYAML(filepath.Join(dir, yamlFiles[0]))
	case len(yamlFiles) > 1:
		return nil, fmt.Errorf("%s holds %d YAML game files, expected one", dir, len(yamlFiles))
	default:
		return nil, fmt.Errorf("no game files found in %s", dir)
	}
}

func loadLua(dir string, luaFiles []string) (*state.Defs, error) {
	// Sort: game.lua first, rest alphabetical.
	luaFiles = sortedLuaFiles(luaFiles)

	// Create sandboxed VM.
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()

	// Open safe libs only.
	openSafeLibs(L)

	// Sandbox: remove dangerous globals.
	sandbox(L)

	// Register API.
	coll := &collector{}
	registerAPI(L, coll)

	// Execute each file.
	for _, f := range luaFiles {
		path := filepath.Join(dir, f)
		if err := L.DoFile(path); err != nil {
			return nil, fmt.Errorf("executing %s: %w", f, err)
		}
	}

	// Compile.
	defs, err := compile(coll)
	if err != nil {
		return nil, fmt.Errorf("compiling game data: %w", err)
	}

	// Validate.
	if err := validate(defs); err != nil {
		return nil, err
	}

	return defs, nil
}

// openSafeLibs opens only the safe subset of Lua standard libraries.
func openSafeLibs(L *lua.LState) {
	// Base library (print, type, tostring, tonumber, pairs, ipairs, etc.)
	lua.OpenBase(L)
	// Table library (table.insert, table.sort, etc.)
	lua.OpenTable(L)
	// String library (string.format, string.sub, etc.)
	lua.OpenString(L)
	// Math library (math.floor, math.max, etc.)
	lua.OpenMath(L)
}

// sandbox removes dangerous globals and functions.
func sandbox(L *lua.LState) {
	// Remove dangerous base globals.
	dangerous := []string{
		"dofile", "loadfile", "load", "loadstring",
		"rawset", "rawget", "rawequal",
		"collectgarbage",
	}
	for _, name := range dangerous {
		L.SetGlobal(name, lua.LNil)
	}

	// Remove math.randomseed to preserve determinism.
	if mathTbl := L.GetGlobal("math"); mathTbl != lua.LNil {
		if tbl, ok := mathTbl.(*lua.LTable); ok {
			tbl.RawSetString("randomseed", lua.LNil)
		}
	}
}
