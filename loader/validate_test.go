package loader

import (
	"strings"
	"testing"

	"github.com/garyblankenship/cursorrules-game/engine/state"
	"github.com/garyblankenship/cursorrules-game/types"
)

// validDefs returns a minimal valid Defs for testing.
func validDefs() *state.Defs {
	return &state.Defs{
		Game: types.GameDef{
			Title: "Test",
			Start: "hall",
		},
		Locations: map[string]types.LocationDef{
			"hall": {
				ID:          "hall",
				Name:        "Hall",
				Description: "A hall.",
			},
		},
		Items: map[string]types.ItemDef{},
	}
}

func TestValidate_ValidDefs(t *testing.T) {
	defs := validDefs()
	if err := validate(defs); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
}

func TestValidate_MissingStartLocation(t *testing.T) {
	defs := validDefs()
	defs.Game.Start = "nonexistent"

	err := validate(defs)
	if err == nil {
		t.Fatal("expected error for missing start location")
	}
	ve, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	assertContains(t, ve.Errors, "start location")
}

func TestValidate_EmptyTitle(t *testing.T) {
	defs := validDefs()
	defs.Game.Title = ""

	err := validate(defs)
	if err == nil {
		t.Fatal("expected error for empty title")
	}
	ve := err.(*ValidationError)
	assertContains(t, ve.Errors, "Title")
}

func TestValidate_InvalidExitTarget(t *testing.T) {
	defs := validDefs()
	defs.Locations["hall"] = types.LocationDef{
		ID:    "hall",
		Name:  "Hall",
		Exits: map[string]types.Exit{"north": {To: "void"}},
	}

	err := validate(defs)
	if err == nil {
		t.Fatal("expected error for invalid exit target")
	}
	ve := err.(*ValidationError)
	assertContains(t, ve.Errors, "undefined location")
}

func TestValidate_ExitConditionChecked(t *testing.T) {
	defs := validDefs()
	defs.Locations["attic"] = types.LocationDef{ID: "attic", Name: "Attic"}
	defs.Locations["hall"] = types.LocationDef{
		ID:   "hall",
		Name: "Hall",
		Exits: map[string]types.Exit{
			"up": {
				To: "attic",
				Condition: &types.Condition{
					Type:   "has_item",
					Params: map[string]any{"item": "ghost_ladder"},
				},
			},
		},
	}

	err := validate(defs)
	if err == nil {
		t.Fatal("expected error for undefined item in exit condition")
	}
	ve := err.(*ValidationError)
	assertContains(t, ve.Errors, "undefined item")
}

func TestValidate_UndefinedItemInLocation(t *testing.T) {
	defs := validDefs()
	loc := defs.Locations["hall"]
	loc.Items = []string{"phantom"}
	defs.Locations["hall"] = loc

	err := validate(defs)
	if err == nil {
		t.Fatal("expected error for undefined item placement")
	}
	ve := err.(*ValidationError)
	assertContains(t, ve.Errors, "undefined item")
}

func TestValidate_DuplicateRuleID(t *testing.T) {
	defs := validDefs()
	defs.Rules = []types.RuleDef{
		{ID: "dup", Pattern: "sing"},
		{ID: "dup", Pattern: "dance"},
	}

	err := validate(defs)
	if err == nil {
		t.Fatal("expected error for duplicate rule ID")
	}
	ve := err.(*ValidationError)
	assertContains(t, ve.Errors, "duplicate rule ID")
}

func TestValidate_EmptyPattern(t *testing.T) {
	defs := validDefs()
	defs.Rules = []types.RuleDef{{ID: "r1"}}

	err := validate(defs)
	if err == nil {
		t.Fatal("expected error for empty pattern")
	}
	ve := err.(*ValidationError)
	assertContains(t, ve.Errors, "empty pattern")
}

func TestValidate_BadPattern(t *testing.T) {
	defs := validDefs()
	defs.Rules = []types.RuleDef{{ID: "r1", Pattern: "open (the drawer"}}

	err := validate(defs)
	if err == nil {
		t.Fatal("expected error for pattern that does not compile")
	}
	ve := err.(*ValidationError)
	assertContains(t, ve.Errors, "does not compile")
}

func TestValidate_UnknownEffectType(t *testing.T) {
	defs := validDefs()
	defs.Rules = []types.RuleDef{
		{
			ID:      "r1",
			Pattern: "detonate",
			Effects: []types.Effect{{Type: "explode", Params: map[string]any{}}},
		},
	}

	err := validate(defs)
	if err == nil {
		t.Fatal("expected error for unknown effect type")
	}
	ve := err.(*ValidationError)
	assertContains(t, ve.Errors, "unknown effect type")
}

func TestValidate_UnknownConditionType(t *testing.T) {
	defs := validDefs()
	defs.Rules = []types.RuleDef{
		{
			ID:      "r1",
			Pattern: "wait",
			Conditions: []types.Condition{
				{Type: "is_tuesday", Params: map[string]any{}},
			},
		},
	}

	err := validate(defs)
	if err == nil {
		t.Fatal("expected error for unknown condition type")
	}
	ve := err.(*ValidationError)
	assertContains(t, ve.Errors, "unknown condition type")
}

func TestValidate_UndefinedItemInEffect(t *testing.T) {
	defs := validDefs()
	defs.Rules = []types.RuleDef{
		{
			ID:      "r1",
			Pattern: "conjure",
			Effects: []types.Effect{
				{Type: "give_item", Params: map[string]any{"item": "ghost_item"}},
			},
		},
	}

	err := validate(defs)
	if err == nil {
		t.Fatal("expected error for undefined item in effect")
	}
	ve := err.(*ValidationError)
	assertContains(t, ve.Errors, "undefined item")
}

func TestValidate_TemplateItemRefAllowed(t *testing.T) {
	defs := validDefs()
	defs.Rules = []types.RuleDef{
		{
			ID:      "grab_anything",
			Pattern: "grab (.+)",
			Effects: []types.Effect{
				{Type: "give_item", Params: map[string]any{"item": "{1}"}},
			},
		},
	}

	if err := validate(defs); err != nil {
		t.Fatalf("capture template in give_item should pass validation, got: %v", err)
	}
}

func TestValidate_UndefinedLocationInEffect(t *testing.T) {
	defs := validDefs()
	defs.Rules = []types.RuleDef{
		{
			ID:      "r1",
			Pattern: "teleport",
			Effects: []types.Effect{
				{Type: "move_player", Params: map[string]any{"location": "abyss"}},
			},
		},
	}

	err := validate(defs)
	if err == nil {
		t.Fatal("expected error for undefined location in effect")
	}
	ve := err.(*ValidationError)
	assertContains(t, ve.Errors, "undefined location")
}

func TestValidate_UndefinedItemInCondition(t *testing.T) {
	defs := validDefs()
	defs.Rules = []types.RuleDef{
		{
			ID:      "r1",
			Pattern: "knock",
			Conditions: []types.Condition{
				{Type: "has_item", Params: map[string]any{"item": "ghost"}},
			},
		},
	}

	err := validate(defs)
	if err == nil {
		t.Fatal("expected error for undefined item in condition")
	}
	ve := err.(*ValidationError)
	assertContains(t, ve.Errors, "undefined item")
}

func TestValidate_UndefinedLocationInCondition(t *testing.T) {
	defs := validDefs()
	defs.Rules = []types.RuleDef{
		{
			ID:      "r1",
			Pattern: "listen",
			Conditions: []types.Condition{
				{Type: "in_location", Params: map[string]any{"location": "nowhere"}},
			},
		},
	}

	err := validate(defs)
	if err == nil {
		t.Fatal("expected error for undefined location in condition")
	}
	ve := err.(*ValidationError)
	assertContains(t, ve.Errors, "undefined location")
}

func TestValidate_NestedConditionsChecked(t *testing.T) {
	inner := types.Condition{
		Type:   "has_item",
		Params: map[string]any{"item": "ghost"},
	}
	defs := validDefs()
	defs.Rules = []types.RuleDef{
		{
			ID:      "r1",
			Pattern: "peek",
			Conditions: []types.Condition{
				{Type: "not", Negate: true, Inner: &inner},
				{Type: "any", Of: []types.Condition{inner}},
			},
		},
	}

	err := validate(defs)
	if err == nil {
		t.Fatal("expected errors for undefined items inside not and any")
	}
	ve := err.(*ValidationError)
	if len(ve.Errors) != 2 {
		t.Errorf("errors = %d, want 2 (one per nesting)", len(ve.Errors))
	}
	assertContains(t, ve.Errors, "undefined item")
}

func TestValidate_BadPropType(t *testing.T) {
	defs := validDefs()
	defs.Items["oddity"] = types.ItemDef{
		ID:   "oddity",
		Name: "oddity",
		Props: map[string]any{
			"layers": []any{"one", "two"},
		},
	}
	loc := defs.Locations["hall"]
	loc.Items = []string{"oddity"}
	defs.Locations["hall"] = loc

	err := validate(defs)
	if err == nil {
		t.Fatal("expected error for non-scalar prop value")
	}
	ve := err.(*ValidationError)
	assertContains(t, ve.Errors, "unsupported type")
}

func TestValidate_UnplacedItem_Warning(t *testing.T) {
	defs := validDefs()
	defs.Items["lost_sock"] = types.ItemDef{ID: "lost_sock", Name: "lost sock"}

	// Should not return an error (warning only).
	err := validate(defs)
	if err != nil {
		t.Fatalf("unplaced item should be a warning, got error: %v", err)
	}
}

func TestValidate_UppercaseExit_Warning(t *testing.T) {
	defs := validDefs()
	defs.Locations["attic"] = types.LocationDef{ID: "attic", Name: "Attic"}
	defs.Locations["hall"] = types.LocationDef{
		ID:    "hall",
		Name:  "Hall",
		Exits: map[string]types.Exit{"Up": {To: "attic"}},
	}

	// Should not return an error (warning only).
	err := validate(defs)
	if err != nil {
		t.Fatalf("mixed-case exit should be a warning, got error: %v", err)
	}
}

func TestValidate_StartingInventoryUnknownItem(t *testing.T) {
	defs := validDefs()
	defs.Game.Inventory = []string{"phantom"}

	err := validate(defs)
	if err == nil {
		t.Fatal("expected error for undefined starting item")
	}
	ve := err.(*ValidationError)
	assertContains(t, ve.Errors, "starting inventory")
}

func TestValidate_ItemPlacedInTwoLocations(t *testing.T) {
	defs := validDefs()
	defs.Items["coin"] = types.ItemDef{ID: "coin", Name: "coin"}
	defs.Locations["attic"] = types.LocationDef{
		ID: "attic", Name: "Attic", Items: []string{"coin"},
	}
	loc := defs.Locations["hall"]
	loc.Items = []string{"coin"}
	defs.Locations["hall"] = loc

	err := validate(defs)
	if err == nil {
		t.Fatal("expected error for item placed in two locations")
	}
	ve := err.(*ValidationError)
	assertContains(t, ve.Errors, "placed in both")
}

func TestValidate_ItemPlacedAndCarried(t *testing.T) {
	defs := validDefs()
	defs.Items["coin"] = types.ItemDef{ID: "coin", Name: "coin"}
	loc := defs.Locations["hall"]
	loc.Items = []string{"coin"}
	defs.Locations["hall"] = loc
	defs.Game.Inventory = []string{"coin"}

	err := validate(defs)
	if err == nil {
		t.Fatal("expected error for item both placed and carried")
	}
	ve := err.(*ValidationError)
	assertContains(t, ve.Errors, "starting inventory")
}

// assertContains checks that at least one string in the slice contains substr.
func assertContains(t *testing.T, strs []string, substr string) {
	t.Helper()
	for _, s := range strs {
		if strings.Contains(s, substr) {
			return
		}
	}
	t.Errorf("expected one of %v to contain %q", strs, substr)
}
