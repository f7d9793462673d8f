package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/garyblankenship/cursorrules-game/engine/exits"
	"github.com/garyblankenship/cursorrules-game/engine/state"
)

// locationDisplayName derives a readable name from a location ID for
// definitions that have none. "great_hall" -> "Great Hall".
func locationDisplayName(id string) string {
	words := strings.Split(id, "_")
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// renderStatusBar produces a full-width inverted status line showing
// the current location, currently open exits, and inventory.
func (m Model) renderStatusBar() string {
	s := m.session
	defs := m.engine.Defs

	name := locationDisplayName(s.Location)
	if def, ok := defs.Locations[s.Location]; ok && def.Name != "" {
		name = def.Name
	}

	exitStr := strings.Join(exits.VisibleDirections(s, defs, s.Location), ",")
	if exitStr == "" {
		exitStr = "none"
	}

	left := fmt.Sprintf(" %s | Exits: %s", name, exitStr)

	// Show inventory item names if they fit, otherwise just the count.
	right := "Inv: nothing "
	if len(s.Inventory) > 0 {
		names := make([]string, 0, len(s.Inventory))
		for _, id := range s.Inventory {
			names = append(names, state.ItemName(defs, id))
		}
		candidate := fmt.Sprintf("Inv: %s ", strings.Join(names, ", "))
		if lipgloss.Width(left)+lipgloss.Width(candidate)+2 < m.width {
			right = candidate
		} else {
			right = fmt.Sprintf("Inv: %d ", len(s.Inventory))
		}
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return styleStatusBar.Width(m.width).Render(bar)
}
