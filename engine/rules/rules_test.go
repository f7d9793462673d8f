package rules

import (
	"strings"
	"testing"

	"github.com/garyblankenship/cursorrules-game/engine/state"
	"github.com/garyblankenship/cursorrules-game/types"
)

func dispatchDefs() *state.Defs {
	return &state.Defs{
		Game: types.GameDef{Start: "entrance"},
		Locations: map[string]types.LocationDef{
			"entrance": {
				ID:          "entrance",
				Name:        "Entrance",
				Description: "A cold stone archway.",
				Items:       []string{"key", "statue"},
				Exits: map[string]types.Exit{
					"north": {To: "hall"},
					"portal": {
						To:        "sanctum",
						Condition: &types.Condition{Type: "flag_set", Params: map[string]any{"flag": "openedPortal"}},
					},
				},
			},
			"hall": {
				ID:          "hall",
				Name:        "Great Hall",
				Description: "Banners hang from the rafters.",
				FirstVisit:  "Your footsteps echo; no one has been here for years.",
				Exits:       map[string]types.Exit{"south": {To: "entrance"}},
			},
			"sanctum": {
				ID:          "sanctum",
				Name:        "Sanctum",
				Description: "A quiet inner chamber.",
			},
		},
		Items: map[string]types.ItemDef{
			"key": {
				ID:          "key",
				Name:        "brass key",
				Description: "A small brass key, green with age.",
				Portable:    true,
				OnTake: []types.Effect{
					{Type: "set_flag", Params: map[string]any{"flag": "has_key"}},
				},
			},
			"statue": {
				ID:          "statue",
				Name:        "marble statue",
				Description: "Twice your height and twice as stern.",
				Portable:    false,
			},
		},
	}
}

func newRegistry(t *testing.T, defs *state.Defs) *Registry {
	t.Helper()
	reg, err := Compile(defs)
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	return reg
}

func TestDispatch_FirstMatchWins(t *testing.T) {
	defs := dispatchDefs()
	defs.Rules = []types.RuleDef{
		{ID: "first", Pattern: "wave", Response: "The first rule answers."},
		{ID: "second", Pattern: "wave", Response: "The second rule answers.",
			Effects: []types.Effect{{Type: "set_flag", Params: map[string]any{"flag": "second_ran"}}}},
	}
	reg := newRegistry(t, defs)
	s := state.NewSession(defs)

	res := reg.Dispatch("wave", s, defs)
	if res.Text != "The first rule answers." {
		t.Errorf("Text = %q", res.Text)
	}
	if res.Rule != "first" {
		t.Errorf("Rule = %q, want first", res.Rule)
	}
	if s.Flags["second_ran"] {
		t.Error("later rule must not run once an earlier rule claims")
	}
}

func TestDispatch_AuthoredRuleShadowsCanonical(t *testing.T) {
	defs := dispatchDefs()
	defs.Rules = []types.RuleDef{
		{ID: "no_looking", Pattern: "look", Response: "It is far too dark to look at anything."},
	}
	reg := newRegistry(t, defs)
	s := state.NewSession(defs)

	res := reg.Dispatch("look", s, defs)
	if res.Rule != "no_looking" {
		t.Errorf("Rule = %q, want no_looking", res.Rule)
	}
	if res.Text != "It is far too dark to look at anything." {
		t.Errorf("Text = %q", res.Text)
	}
}

func TestDispatch_NoMatchDefault(t *testing.T) {
	defs := dispatchDefs()
	reg := newRegistry(t, defs)
	s := state.NewSession(defs)
	before := snapshot(s)

	res := reg.Dispatch("xyzzy", s, defs)
	if res.Text != DefaultResponse {
		t.Errorf("Text = %q, want %q", res.Text, DefaultResponse)
	}
	if res.Rule != "" {
		t.Errorf("Rule = %q, want empty", res.Rule)
	}
	if snapshot(s) != before {
		t.Error("unmatched input must not mutate the session")
	}
}

func TestDispatch_ConditionFailureFallsThrough(t *testing.T) {
	defs := dispatchDefs()
	defs.Rules = []types.RuleDef{
		{
			ID:      "locked_door",
			Pattern: "open door",
			Conditions: []types.Condition{
				{Type: "has_item", Params: map[string]any{"item": "key"}},
			},
			Response: "The key turns and the door swings open.",
		},
		{
			ID:       "locked_door_refusal",
			Pattern:  "open door",
			Response: "It's locked.",
		},
	}
	reg := newRegistry(t, defs)
	s := state.NewSession(defs)

	res := reg.Dispatch("open door", s, defs)
	if res.Rule != "locked_door_refusal" || res.Text != "It's locked." {
		t.Errorf("got rule %q text %q", res.Rule, res.Text)
	}

	s.Inventory = append(s.Inventory, "key")
	res = reg.Dispatch("open door", s, defs)
	if res.Rule != "locked_door" {
		t.Errorf("Rule = %q, want locked_door", res.Rule)
	}
}

func TestDispatch_EmptyResponseIsAClaim(t *testing.T) {
	defs := dispatchDefs()
	defs.Rules = []types.RuleDef{
		{ID: "silent", Pattern: "meditate",
			Effects: []types.Effect{{Type: "set_flag", Params: map[string]any{"flag": "calm"}}}},
	}
	reg := newRegistry(t, defs)
	s := state.NewSession(defs)

	res := reg.Dispatch("meditate", s, defs)
	if res.Rule != "silent" {
		t.Errorf("Rule = %q, want silent", res.Rule)
	}
	if res.Text != "" {
		t.Errorf("Text = %q, want empty claim", res.Text)
	}
	if !s.Flags["calm"] {
		t.Error("claiming rule's effects should be applied")
	}
}

func TestDispatch_CaseInsensitivePatterns(t *testing.T) {
	defs := dispatchDefs()
	defs.Rules = []types.RuleDef{
		{ID: "greet", Pattern: "hello( there)?", Response: "A distant voice answers."},
	}
	reg := newRegistry(t, defs)
	s := state.NewSession(defs)

	for _, input := range []string{"hello", "HELLO", "Hello There"} {
		res := reg.Dispatch(input, s, defs)
		if res.Rule != "greet" {
			t.Errorf("input %q: rule = %q, want greet", input, res.Rule)
		}
	}
}

func TestDispatch_CaptureInterpolation(t *testing.T) {
	defs := dispatchDefs()
	defs.Rules = []types.RuleDef{
		{ID: "shout", Pattern: `shout (.+)`, Response: `"{1}!" comes the echo.`},
	}
	reg := newRegistry(t, defs)
	s := state.NewSession(defs)

	res := reg.Dispatch("shout hello", s, defs)
	if res.Text != `"hello!" comes the echo.` {
		t.Errorf("Text = %q", res.Text)
	}
}

func TestFromDef_BadPattern(t *testing.T) {
	_, err := FromDef(types.RuleDef{ID: "broken", Pattern: "("})
	if err == nil {
		t.Fatal("expected error for unparseable pattern")
	}
	if !strings.Contains(err.Error(), "broken") {
		t.Errorf("error should name the rule: %v", err)
	}
}

func TestMovement_Succeeds(t *testing.T) {
	defs := dispatchDefs()
	reg := newRegistry(t, defs)
	s := state.NewSession(defs)

	res := reg.Dispatch("north", s, defs)
	if res.Rule != "movement" {
		t.Fatalf("Rule = %q, want movement", res.Rule)
	}
	if s.Location != "hall" {
		t.Errorf("location = %q, want hall", s.Location)
	}
	if !s.Visited["entrance"] {
		t.Error("movement should mark the origin visited")
	}
	if !strings.Contains(res.Text, "Great Hall") || !strings.Contains(res.Text, "Banners hang") {
		t.Errorf("response should describe the destination, got %q", res.Text)
	}
	if !strings.Contains(res.Text, "no one has been here for years") {
		t.Errorf("first arrival should include the first-visit narrative, got %q", res.Text)
	}
}

func TestMovement_FirstVisitShownOnce(t *testing.T) {
	defs := dispatchDefs()
	reg := newRegistry(t, defs)
	s := state.NewSession(defs)

	reg.Dispatch("north", s, defs)
	reg.Dispatch("south", s, defs)
	res := reg.Dispatch("north", s, defs)
	if strings.Contains(res.Text, "no one has been here for years") {
		t.Errorf("first-visit narrative should be suppressed on return, got %q", res.Text)
	}
}

func TestMovement_RefusalLeavesStateUnchanged(t *testing.T) {
	defs := dispatchDefs()
	reg := newRegistry(t, defs)
	s := state.NewSession(defs)
	before := snapshot(s)

	res := reg.Dispatch("south", s, defs)
	if res.Text != "You can't go that way." {
		t.Errorf("Text = %q", res.Text)
	}
	if snapshot(s) != before {
		t.Error("refused movement must not mutate the session")
	}
}

func TestMovement_Aliases(t *testing.T) {
	defs := dispatchDefs()
	reg := newRegistry(t, defs)

	for _, input := range []string{"n", "north", "go north", "GO NORTH", "walk north", "enter north"} {
		s := state.NewSession(defs)
		res := reg.Dispatch(input, s, defs)
		if res.Rule != "movement" {
			t.Errorf("input %q: rule = %q, want movement", input, res.Rule)
			continue
		}
		if s.Location != "hall" {
			t.Errorf("input %q: location = %q, want hall", input, s.Location)
		}
	}
}

func TestMovement_ConditionalExit(t *testing.T) {
	defs := dispatchDefs()
	reg := newRegistry(t, defs)
	s := state.NewSession(defs)

	res := reg.Dispatch("portal", s, defs)
	if res.Text != "You can't go that way." {
		t.Fatalf("hidden exit should refuse, got %q", res.Text)
	}
	if s.Location != "entrance" {
		t.Fatalf("location = %q, want entrance", s.Location)
	}

	s.Flags["openedPortal"] = true
	res = reg.Dispatch("portal", s, defs)
	if s.Location != "sanctum" {
		t.Errorf("location = %q, want sanctum", s.Location)
	}
	if !strings.Contains(res.Text, "Sanctum") {
		t.Errorf("response should describe the destination, got %q", res.Text)
	}
}

func TestMovement_UnknownBareTokenFallsThrough(t *testing.T) {
	defs := dispatchDefs()
	reg := newRegistry(t, defs)
	s := state.NewSession(defs)

	res := reg.Dispatch("flibber", s, defs)
	if res.Rule != "" || res.Text != DefaultResponse {
		t.Errorf("bare unknown token should reach the default, got rule %q text %q", res.Rule, res.Text)
	}

	res = reg.Dispatch("go flibber", s, defs)
	if res.Rule != "movement" || res.Text != "You can't go that way." {
		t.Errorf("explicit go-verb should claim, got rule %q text %q", res.Rule, res.Text)
	}
}

func TestLook_PureAndDescribes(t *testing.T) {
	defs := dispatchDefs()
	reg := newRegistry(t, defs)
	s := state.NewSession(defs)
	before := snapshot(s)

	res := reg.Dispatch("look", s, defs)
	if res.Rule != "look" {
		t.Fatalf("Rule = %q, want look", res.Rule)
	}
	for _, want := range []string{"Entrance", "cold stone archway", "You see: brass key, marble statue.", "Exits: north."} {
		if !strings.Contains(res.Text, want) {
			t.Errorf("look output missing %q:\n%s", want, res.Text)
		}
	}
	if snapshot(s) != before {
		t.Error("look must not mutate the session")
	}
}

func TestTake_ScenarioBrassKey(t *testing.T) {
	defs := dispatchDefs()
	reg := newRegistry(t, defs)
	s := state.NewSession(defs)

	res := reg.Dispatch("take key", s, defs)
	if res.Text != "You take the brass key." {
		t.Errorf("Text = %q, want %q", res.Text, "You take the brass key.")
	}
	if !state.HasItem(s, "key") {
		t.Error("key should be in inventory")
	}
	if state.ItemHere(s, "entrance", "key") {
		t.Error("key should leave the entrance")
	}
	if !s.Flags["has_key"] {
		t.Error("take should run the item's on-take effects")
	}
}

func TestTake_Refusals(t *testing.T) {
	defs := dispatchDefs()
	reg := newRegistry(t, defs)
	s := state.NewSession(defs)

	res := reg.Dispatch("take statue", s, defs)
	if res.Text != "You can't take that." {
		t.Errorf("non-portable: Text = %q", res.Text)
	}
	if state.HasItem(s, "statue") {
		t.Error("statue must stay put")
	}

	res = reg.Dispatch("take crown", s, defs)
	if res.Text != "You don't see that here." {
		t.Errorf("absent item: Text = %q", res.Text)
	}
}

func TestTakeDrop_RoundTrip(t *testing.T) {
	defs := dispatchDefs()
	reg := newRegistry(t, defs)
	s := state.NewSession(defs)

	reg.Dispatch("take key", s, defs)
	res := reg.Dispatch("drop key", s, defs)
	if res.Text != "You drop the brass key." {
		t.Errorf("Text = %q", res.Text)
	}
	if state.HasItem(s, "key") {
		t.Error("inventory should be empty again")
	}
	if !state.ItemHere(s, "entrance", "key") {
		t.Error("entrance should hold the key again")
	}
}

func TestDrop_NotCarried(t *testing.T) {
	defs := dispatchDefs()
	reg := newRegistry(t, defs)
	s := state.NewSession(defs)

	res := reg.Dispatch("drop statue", s, defs)
	if res.Text != "You don't have that." {
		t.Errorf("Text = %q", res.Text)
	}
}

func TestInventory_ListsAndEmpty(t *testing.T) {
	defs := dispatchDefs()
	reg := newRegistry(t, defs)
	s := state.NewSession(defs)

	res := reg.Dispatch("inventory", s, defs)
	if res.Text != "You are carrying nothing." {
		t.Errorf("Text = %q", res.Text)
	}

	reg.Dispatch("take key", s, defs)
	res = reg.Dispatch("i", s, defs)
	if res.Text != "You are carrying: brass key." {
		t.Errorf("Text = %q", res.Text)
	}
}

func TestExamine_LocationBeforeInventory(t *testing.T) {
	defs := dispatchDefs()
	reg := newRegistry(t, defs)
	s := state.NewSession(defs)

	res := reg.Dispatch("examine key", s, defs)
	if res.Text != "A small brass key, green with age." {
		t.Errorf("Text = %q", res.Text)
	}

	reg.Dispatch("take key", s, defs)
	res = reg.Dispatch("x key", s, defs)
	if res.Text != "A small brass key, green with age." {
		t.Errorf("carried item should still be examinable, got %q", res.Text)
	}

	res = reg.Dispatch("examine crown", s, defs)
	if res.Text != "You don't see that here." {
		t.Errorf("Text = %q", res.Text)
	}
}

func TestFragmentMatch_FirstMatchWins(t *testing.T) {
	defs := dispatchDefs()
	defs.Items["key2"] = types.ItemDef{ID: "key2", Name: "iron key", Portable: true}
	defs.Locations["entrance"] = types.LocationDef{
		ID:          "entrance",
		Name:        "Entrance",
		Description: "A cold stone archway.",
		Items:       []string{"key2", "key"},
		Exits:       map[string]types.Exit{"north": {To: "hall"}},
	}
	reg := newRegistry(t, defs)
	s := state.NewSession(defs)

	res := reg.Dispatch("take key", s, defs)
	if res.Text != "You take the iron key." {
		t.Errorf("ambiguous fragment should resolve to the first placed item, got %q", res.Text)
	}
}

func TestDispatch_Deterministic(t *testing.T) {
	defs := dispatchDefs()
	reg := newRegistry(t, defs)

	runScript := func() (string, string) {
		s := state.NewSession(defs)
		var out strings.Builder
		for _, in := range []string{"look", "take key", "north", "south", "inventory", "xyzzy"} {
			out.WriteString(reg.Dispatch(in, s, defs).Text)
			out.WriteString("\n")
		}
		return out.String(), snapshot(s)
	}

	text1, state1 := runScript()
	text2, state2 := runScript()
	if text1 != text2 {
		t.Error("same inputs should produce identical transcripts")
	}
	if state1 != state2 {
		t.Error("same inputs should produce identical final state")
	}
}

// snapshot flattens the mutable session fields into a comparable
// string so tests can assert "nothing changed".
func snapshot(s *types.Session) string {
	var b strings.Builder
	b.WriteString("loc=" + s.Location + ";inv=" + strings.Join(s.Inventory, ",") + ";")
	for _, loc := range []string{"entrance", "hall", "sanctum"} {
		b.WriteString(loc + "=" + strings.Join(s.LocationItems[loc], ",") + ";")
	}
	b.WriteString("flags=")
	for _, f := range []string{"openedPortal", "has_key", "calm", "second_ran"} {
		if s.Flags[f] {
			b.WriteString(f + ",")
		}
	}
	b.WriteString(";visited=")
	for _, loc := range []string{"entrance", "hall", "sanctum"} {
		if s.Visited[loc] {
			b.WriteString(loc + ",")
		}
	}
	return b.String()
}
