package models

import (
	"strings"
	"time"
)

// Participant represents a person on the roster.
// IDs are unique within a session; names are free text and may repeat.
type Participant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DrawResult stores the outcome of a single lucky draw.
// Results are appended to the history log and never modified afterwards.
type DrawResult struct {
	Timestamp  time.Time   `json:"timestamp"`
	Winner     Participant `json:"winner"`
	PrizeLabel string      `json:"prizeLabel"`
}

// Group is one team produced by an auto grouping run.
type Group struct {
	ID      string        `json:"id"`
	Name    string        `json:"name"`
	Members []Participant `json:"members"`
}

// Announcement is the decorative sentence shown after a draw.
// Seq ties it to the draw that requested it so stale text can be discarded.
type Announcement struct {
	Seq    uint64 `json:"seq"`
	Winner string `json:"winner"`
	Text   string `json:"text"`
}

// NamingMode selects how group labels are produced.
type NamingMode string

const (
	NamingClassic  NamingMode = "classic"
	NamingCreative NamingMode = "creative"
)

// ParseNamingMode maps a form value to a NamingMode.
// Anything unrecognised falls back to creative, the default in the UI.
func ParseNamingMode(raw string) NamingMode {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "classic":
		return NamingClassic
	case "ai", "creative":
		return NamingCreative
	default:
		return NamingCreative
	}
}
