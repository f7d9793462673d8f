// Package types defines the shared data structures for the game engine.
// This package contains only type definitions: no logic, no methods.
package types

import (
	"time"

	"github.com/google/uuid"
)

// Effect is a single atomic state mutation instruction.
type Effect struct {
	Type   string         `json:"type" yaml:"type"`
	Params map[string]any `json:"params,omitempty" yaml:"params,omitempty"`
}

// Condition is a predicate evaluated against a session.
type Condition struct {
	Type   string         `json:"type" yaml:"type"`                     // "flag_set", "has_item", "counter_gt", etc.
	Params map[string]any `json:"params,omitempty" yaml:"params,omitempty"` // condition-specific parameters
	Negate bool           `json:"negate,omitempty" yaml:"negate,omitempty"` // true if wrapped in Not()
	Inner  *Condition     `json:"inner,omitempty" yaml:"inner,omitempty"`   // for Not(): the negated inner condition
	Of     []Condition    `json:"of,omitempty" yaml:"of,omitempty"`         // for Any(): alternatives, true if one holds
}

// Exit connects a location to another. A nil Condition means the exit
// is always open; otherwise it is visible and usable only while the
// condition holds.
type Exit struct {
	To        string     `json:"to" yaml:"to"`
	Condition *Condition `json:"condition,omitempty" yaml:"condition,omitempty"`
}

// ItemDef is the base definition of an item.
type ItemDef struct {
	ID          string         `json:"id" yaml:"id"`
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description" yaml:"description"`
	Portable    bool           `json:"portable" yaml:"portable"`
	Props       map[string]any `json:"props,omitempty" yaml:"props,omitempty"`
	OnTake      []Effect       `json:"on_take,omitempty" yaml:"on_take,omitempty"`
}

// LocationDef is the base definition of a location.
type LocationDef struct {
	ID          string          `json:"id" yaml:"id"`
	Name        string          `json:"name" yaml:"name"`
	Description string          `json:"description" yaml:"description"`
	FirstVisit  string          `json:"first_visit,omitempty" yaml:"first_visit,omitempty"` // shown until the location has been visited
	Exits       map[string]Exit `json:"exits,omitempty" yaml:"exits,omitempty"`             // direction → exit
	Items       []string        `json:"items,omitempty" yaml:"items,omitempty"`             // item IDs initially here, in authored order
}

// RuleDef is a single authored rule: a command pattern guarded by
// conditions, producing effects and a response.
type RuleDef struct {
	ID          string      `json:"id" yaml:"id"`
	Pattern     string      `json:"pattern" yaml:"pattern"` // anchored, case-insensitive regular expression
	Conditions  []Condition `json:"conditions,omitempty" yaml:"conditions,omitempty"`
	Effects     []Effect    `json:"effects,omitempty" yaml:"effects,omitempty"`
	Response    string      `json:"response,omitempty" yaml:"response,omitempty"`
	SourceOrder int         `json:"source_order" yaml:"source_order"`
}

// GameDef holds game metadata and the declared initial session state.
type GameDef struct {
	Title     string          `json:"title" yaml:"title"`
	Author    string          `json:"author,omitempty" yaml:"author,omitempty"`
	Version   string          `json:"version,omitempty" yaml:"version,omitempty"`
	Start     string          `json:"start" yaml:"start"` // starting location ID
	Intro     string          `json:"intro,omitempty" yaml:"intro,omitempty"`
	Inventory []string        `json:"inventory,omitempty" yaml:"inventory,omitempty"` // item IDs the player starts with
	Flags     map[string]bool `json:"flags,omitempty" yaml:"flags,omitempty"`         // flags preset at session start
}

// Session is the complete mutable state of one playthrough. Definitions
// are never mutated; everything a command can change lives here.
type Session struct {
	ID            uuid.UUID                 `json:"id"`
	Location      string                    `json:"location"`
	Inventory     []string                  `json:"inventory"`
	Visited       map[string]bool           `json:"visited"`
	Flags         map[string]bool           `json:"flags"`
	Counters      map[string]int            `json:"counters"`
	LocationItems map[string][]string       `json:"location_items"` // location ID → item IDs present, in order
	ItemProps     map[string]map[string]any `json:"item_props"`     // overrides over ItemDef.Props
	CreatedAt     time.Time                 `json:"created_at"`
	UpdatedAt     time.Time                 `json:"updated_at"`
}

// Result is the outcome of dispatching one command.
type Result struct {
	Text string // player-visible response
	Rule string // name of the rule that claimed the command, for tracing
}
