package loader

import (
	lua "github.com/yuin/gopher-lua"
)

// registerAPI registers all Lua constructors and helpers as globals.
func registerAPI(L *lua.LState, coll *collector) {
	registerConstructors(L, coll)
	registerConditionHelpers(L)
	registerEffectHelpers(L)
}

func registerConstructors(L *lua.LState, coll *collector) {
	// Game { title = "...", ... }
	L.SetGlobal("Game", L.NewFunction(func(L *lua.LState) int {
		tbl := L.CheckTable(1)
		coll.game = tbl
		return 0
	}))

	// Location "id" { ... } is curried: Location("id") returns a function that takes a table.
	L.SetGlobal("Location", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.locations = append(coll.locations, rawLocation{id: id, table: tbl})
			return 0
		}))
		return 1
	}))

	// Item "id" { ... }, curried the same way.
	L.SetGlobal("Item", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.items = append(coll.items, rawItem{id: id, table: tbl})
			return 0
		}))
		return 1
	}))

	// Rule "id" { pattern = "...", conditions = {...}, effects = {...}, response = "..." }
	// Curried like Location and Item. Registration order across files decides
	// which rule answers when several patterns match the same input.
	L.SetGlobal("Rule", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.rules = append(coll.rules, rawRule{
				id:    id,
				table: tbl,
				order: coll.nextSourceOrder(),
			})
			return 0
		}))
		return 1
	}))
}

func registerConditionHelpers(L *lua.LState) {
	// HasItem("key")
	L.SetGlobal("HasItem", L.NewFunction(func(L *lua.LState) int {
		item := L.CheckString(1)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("has_item"))
		tbl.RawSetString("item", lua.LString(item))
		L.Push(tbl)
		return 1
	}))

	// FlagSet("flag")
	L.SetGlobal("FlagSet", L.NewFunction(func(L *lua.LState) int {
		flag := L.CheckString(1)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("flag_set"))
		tbl.RawSetString("flag", lua.LString(flag))
		L.Push(tbl)
		return 1
	}))

	// FlagNot("flag")
	L.SetGlobal("FlagNot", L.NewFunction(func(L *lua.LState) int {
		flag := L.CheckString(1)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("flag_not"))
		tbl.RawSetString("flag", lua.LString(flag))
		L.Push(tbl)
		return 1
	}))

	// FlagIs("flag", value)
	L.SetGlobal("FlagIs", L.NewFunction(func(L *lua.LState) int {
		flag := L.CheckString(1)
		value := L.CheckBool(2)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("flag_is"))
		tbl.RawSetString("flag", lua.LString(flag))
		tbl.RawSetString("value", lua.LBool(value))
		L.Push(tbl)
		return 1
	}))

	// InLocation("location_id")
	L.SetGlobal("InLocation", L.NewFunction(func(L *lua.LState) int {
		location := L.CheckString(1)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("in_location"))
		tbl.RawSetString("location", lua.LString(location))
		L.Push(tbl)
		return 1
	}))

	// Visited("location_id")
	L.SetGlobal("Visited", L.NewFunction(func(L *lua.LState) int {
		location := L.CheckString(1)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("visited"))
		tbl.RawSetString("location", lua.LString(location))
		L.Push(tbl)
		return 1
	}))

	// PropIs("item", "prop", value)
	L.SetGlobal("PropIs", L.NewFunction(func(L *lua.LState) int {
		item := L.CheckString(1)
		prop := L.CheckString(2)
		value := L.Get(3)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("prop_is"))
		tbl.RawSetString("item", lua.LString(item))
		tbl.RawSetString("prop", lua.LString(prop))
		tbl.RawSetString("value", value)
		L.Push(tbl)
		return 1
	}))

	// CounterGt("counter", value)
	L.SetGlobal("CounterGt", L.NewFunction(func(L *lua.LState) int {
		counter := L.CheckString(1)
		value := L.CheckNumber(2)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("counter_gt"))
		tbl.RawSetString("counter", lua.LString(counter))
		tbl.RawSetString("value", value)
		L.Push(tbl)
		return 1
	}))

	// CounterLt("counter", value)
	L.SetGlobal("CounterLt", L.NewFunction(func(L *lua.LState) int {
		counter := L.CheckString(1)
		value := L.CheckNumber(2)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("counter_lt"))
		tbl.RawSetString("counter", lua.LString(counter))
		tbl.RawSetString("value", value)
		L.Push(tbl)
		return 1
	}))

	// Not(condition)
	L.SetGlobal("Not", L.NewFunction(func(L *lua.LState) int {
		inner := L.CheckTable(1)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("not"))
		tbl.RawSetString("inner", inner)
		L.Push(tbl)
		return 1
	}))

	// Any(cond1, cond2, ...) is true when at least one alternative holds.
	L.SetGlobal("Any", L.NewFunction(func(L *lua.LState) int {
		of := L.NewTable()
		for i := 1; i <= L.GetTop(); i++ {
			of.Append(L.CheckTable(i))
		}
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("any"))
		tbl.RawSetString("of", of)
		L.Push(tbl)
		return 1
	}))
}

func registerEffectHelpers(L *lua.LState) {
	// Say("text")
	L.SetGlobal("Say", L.NewFunction(func(L *lua.LState) int {
		text := L.CheckString(1)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("say"))
		tbl.RawSetString("text", lua.LString(text))
		L.Push(tbl)
		return 1
	}))

	// GiveItem("id")
	L.SetGlobal("GiveItem", L.NewFunction(func(L *lua.LState) int {
		item := L.CheckString(1)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("give_item"))
		tbl.RawSetString("item", lua.LString(item))
		L.Push(tbl)
		return 1
	}))

	// RemoveItem("id")
	L.SetGlobal("RemoveItem", L.NewFunction(func(L *lua.LState) int {
		item := L.CheckString(1)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("remove_item"))
		tbl.RawSetString("item", lua.LString(item))
		L.Push(tbl)
		return 1
	}))

	// SetFlag("flag") or SetFlag("flag", false)
	L.SetGlobal("SetFlag", L.NewFunction(func(L *lua.LState) int {
		flag := L.CheckString(1)
		value := true
		if L.GetTop() >= 2 {
			value = L.CheckBool(2)
		}
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("set_flag"))
		tbl.RawSetString("flag", lua.LString(flag))
		tbl.RawSetString("value", lua.LBool(value))
		L.Push(tbl)
		return 1
	}))

	// IncCounter("counter") or IncCounter("counter", amount)
	L.SetGlobal("IncCounter", L.NewFunction(func(L *lua.LState) int {
		counter := L.CheckString(1)
		amount := lua.LNumber(1)
		if L.GetTop() >= 2 {
			amount = L.CheckNumber(2)
		}
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("inc_counter"))
		tbl.RawSetString("counter", lua.LString(counter))
		tbl.RawSetString("amount", amount)
		L.Push(tbl)
		return 1
	}))

	// SetCounter("counter", value)
	L.SetGlobal("SetCounter", L.NewFunction(func(L *lua.LState) int {
		counter := L.CheckString(1)
		value := L.CheckNumber(2)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("set_counter"))
		tbl.RawSetString("counter", lua.LString(counter))
		tbl.RawSetString("value", value)
		L.Push(tbl)
		return 1
	}))

	// SetProp("item", "prop", value)
	L.SetGlobal("SetProp", L.NewFunction(func(L *lua.LState) int {
		item := L.CheckString(1)
		prop := L.CheckString(2)
		value := L.Get(3)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("set_prop"))
		tbl.RawSetString("item", lua.LString(item))
		tbl.RawSetString("prop", lua.LString(prop))
		tbl.RawSetString("value", value)
		L.Push(tbl)
		return 1
	}))

	// MoveItem("item", "location")
	L.SetGlobal("MoveItem", L.NewFunction(func(L *lua.LState) int {
		item := L.CheckString(1)
		location := L.CheckString(2)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("move_item"))
		tbl.RawSetString("item", lua.LString(item))
		tbl.RawSetString("location", lua.LString(location))
		L.Push(tbl)
		return 1
	}))

	// MovePlayer("location")
	L.SetGlobal("MovePlayer", L.NewFunction(func(L *lua.LState) int {
		location := L.CheckString(1)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("move_player"))
		tbl.RawSetString("location", lua.LString(location))
		L.Push(tbl)
		return 1
	}))
}
