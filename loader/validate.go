package loader

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/garyblankenship/cursorrules-game/engine/state"
	"github.com/garyblankenship/cursorrules-game/types"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

// Known effect types.
var validEffectTypes = map[string]bool{
	"say":         true,
	"set_flag":    true,
	"inc_counter": true,
	"set_counter": true,
	"set_prop":    true,
	"give_item":   true,
	"remove_item": true,
	"move_item":   true,
	"move_player": true,
}

// Known condition types.
var validConditionTypes = map[string]bool{
	"flag_set":    true,
	"flag_not":    true,
	"flag_is":     true,
	"has_item":    true,
	"in_location": true,
	"visited":     true,
	"counter_gt":  true,
	"counter_lt":  true,
	"prop_is":     true,
	"not":         true,
	"any":         true,
}

// validate checks the compiled defs for referential integrity and consistency.
func validate(defs *state.Defs) error {
	ve := &ValidationError{}

	// Game title required.
	if defs.Game.Title == "" {
		ve.Errors = append(ve.Errors, "Game.Title is required")
	}

	// Start location exists.
	if defs.Game.Start == "" {
		ve.Errors = append(ve.Errors, "Game.Start is required")
	} else if _, ok := defs.Locations[defs.Game.Start]; !ok {
		ve.Errors = append(ve.Errors, fmt.Sprintf(
			"start location %q not found in defined locations", defs.Game.Start))
	}

	// Exit targets and initial item placements valid.
	for locID, loc := range defs.Locations {
		for dir, exit := range loc.Exits {
			if _, ok := defs.Locations[exit.To]; !ok {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"location %q exit %q points to undefined location %q", locID, dir, exit.To))
			}
			if exit.Condition != nil {
				validateConditions([]types.Condition{*exit.Condition}, defs, ve)
			}
			// Input is lowercased before matching, so a mixed-case
			// direction could never be typed.
			if dir != strings.ToLower(dir) {
				ve.Warnings = append(ve.Warnings, fmt.Sprintf(
					"location %q exit %q is not lowercase and cannot be reached", locID, dir))
			}
		}
		for _, itemID := range loc.Items {
			if _, ok := defs.Items[itemID]; !ok {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"location %q lists undefined item %q", locID, itemID))
			}
		}
	}

	// Initial placement: the starting inventory references real items,
	// and no item starts in two places at once.
	seen := map[string]string{}
	for locID, loc := range defs.Locations {
		for _, itemID := range loc.Items {
			place := fmt.Sprintf("location %q", locID)
			if prev, dup := seen[itemID]; dup {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"item %q is placed in both %s and %s", itemID, prev, place))
			}
			seen[itemID] = place
		}
	}
	for _, itemID := range defs.Game.Inventory {
		if _, ok := defs.Items[itemID]; !ok {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"starting inventory lists undefined item %q", itemID))
		}
		if prev, dup := seen[itemID]; dup {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"item %q is placed in both %s and the starting inventory", itemID, prev))
		}
		seen[itemID] = "the starting inventory"
	}

	// Item props hold plain scalars only; take effects reference real things.
	for itemID, item := range defs.Items {
		for prop, value := range item.Props {
			switch value.(type) {
			case bool, int, float64, string:
			default:
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"item %q prop %q has unsupported type %T", itemID, prop, value))
			}
		}
		validateEffects(item.OnTake, defs, ve)
	}

	// Rule IDs unique, patterns compile, references resolve.
	ruleIDs := map[string]bool{}
	for _, rule := range defs.Rules {
		if ruleIDs[rule.ID] {
			ve.Errors = append(ve.Errors, fmt.Sprintf("duplicate rule ID %q", rule.ID))
		}
		ruleIDs[rule.ID] = true

		if rule.Pattern == "" {
			ve.Errors = append(ve.Errors, fmt.Sprintf("rule %q has an empty pattern", rule.ID))
		} else if _, err := regexp.Compile(rule.Pattern); err != nil {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"rule %q pattern does not compile: %v", rule.ID, err))
		}

		validateConditions(rule.Conditions, defs, ve)
		validateEffects(rule.Effects, defs, ve)
	}

	// Warnings: items that exist but can never appear in play.
	placed := map[string]bool{}
	for _, loc := range defs.Locations {
		for _, itemID := range loc.Items {
			placed[itemID] = true
		}
	}
	for _, itemID := range defs.Game.Inventory {
		placed[itemID] = true
	}
	markGranted := func(effects []types.Effect) {
		for _, eff := range effects {
			if eff.Type == "give_item" || eff.Type == "move_item" {
				if item, ok := eff.Params["item"].(string); ok {
					placed[item] = true
				}
			}
		}
	}
	for _, rule := range defs.Rules {
		markGranted(rule.Effects)
	}
	for _, item := range defs.Items {
		markGranted(item.OnTake)
	}
	for itemID := range defs.Items {
		if !placed[itemID] {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf(
				"item %q is defined but never placed or granted", itemID))
		}
	}

	// Print warnings to stderr.
	for _, w := range ve.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

// isTemplate reports whether a param value is an interpolation
// template rather than a literal ID.
func isTemplate(s string) bool {
	return strings.Contains(s, "{") && strings.Contains(s, "}")
}

func validateConditions(conditions []types.Condition, defs *state.Defs, ve *ValidationError) {
	for _, cond := range conditions {
		if !validConditionTypes[cond.Type] {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"unknown condition type %q", cond.Type))
		}

		// Check item/location refs in conditions.
		switch cond.Type {
		case "has_item", "prop_is":
			if item, ok := cond.Params["item"].(string); ok {
				if _, ok := defs.Items[item]; !ok {
					ve.Errors = append(ve.Errors, fmt.Sprintf(
						"condition %s references undefined item %q", cond.Type, item))
				}
			}
		case "in_location", "visited":
			if loc, ok := cond.Params["location"].(string); ok {
				if _, ok := defs.Locations[loc]; !ok {
					ve.Errors = append(ve.Errors, fmt.Sprintf(
						"condition %s references undefined location %q", cond.Type, loc))
				}
			}
		case "not":
			if cond.Inner != nil {
				validateConditions([]types.Condition{*cond.Inner}, defs, ve)
			}
		case "any":
			validateConditions(cond.Of, defs, ve)
		}
	}
}

func validateEffects(effects []types.Effect, defs *state.Defs, ve *ValidationError) {
	for _, eff := range effects {
		if !validEffectTypes[eff.Type] {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"unknown effect type %q", eff.Type))
		}

		// Check item/location refs in effects. Item params of the
		// placement effects may be capture templates like {1} that only
		// resolve at dispatch time, so those are exempt.
		switch eff.Type {
		case "give_item", "remove_item", "move_item":
			if item, ok := eff.Params["item"].(string); ok && !isTemplate(item) {
				if _, ok := defs.Items[item]; !ok {
					ve.Errors = append(ve.Errors, fmt.Sprintf(
						"effect %s references undefined item %q", eff.Type, item))
				}
			}
		case "set_prop":
			if item, ok := eff.Params["item"].(string); ok {
				if _, ok := defs.Items[item]; !ok {
					ve.Errors = append(ve.Errors, fmt.Sprintf(
						"effect %s references undefined item %q", eff.Type, item))
				}
			}
		}
		switch eff.Type {
		case "move_item", "move_player":
			if loc, ok := eff.Params["location"].(string); ok {
				if _, ok := defs.Locations[loc]; !ok {
					ve.Errors = append(ve.Errors, fmt.Sprintf(
						"effect %s references undefined location %q", eff.Type, loc))
				}
			}
		}
	}
}
