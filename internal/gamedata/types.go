package gamedata

import "strings"

// Direction is a player's guess for how the hidden value compares to the
// previous card.
type Direction string

const (
	Higher = Direction("higher")
	Lower  = Direction("lower")
)

func (d Direction) Valid() bool {
	return d == Higher || d == Lower
}

const maxNameLen = 16

// SafeName sanitizes a display name: trimmed, capped at 16 runes, defaulted
// when blank.
func SafeName(s string) string {
	t := strings.TrimSpace(s)
	if r := []rune(t); len(r) > maxNameLen {
		t = string(r[:maxNameLen])
	}
	if t == "" {
		return "PLAYER"
	}
	return t
}

// Player is one connected participant of a room. ID is the connection
// identity; it is lost forever on disconnect.
type Player struct {
	ID         string
	Name       string
	Score      int
	Streak     int
	BestStreak int
}

// StatOption is one (label, key) pair eligible for play.
type StatOption struct {
	Label string `json:"label"`
	Key   string `json:"key"`
}

// StatPool is the fixed set of stats the rotation modifier draws from.
var StatPool = []StatOption{
	{Label: "Points", Key: "pts"},
	{Label: "Minutes", Key: "min"},
	{Label: "Rebounds", Key: "reb"},
	{Label: "Assists", Key: "ast"},
	{Label: "Blocks", Key: "blk"},
	{Label: "Steals", Key: "stl"},
	{Label: "Turnovers", Key: "to"},
	{Label: "Fouls", Key: "pf"},
}
