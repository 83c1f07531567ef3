package gamedata

import (
	"encoding/json"
	"math"
)

// ZeroValue is the sentinel substituted for missing, non-numeric, or zero
// stat values. Raw zeroes in the source data are ambiguous between "did not
// play" and a true zero, so they are floored to keep comparisons orderable.
const ZeroValue = 0.5

// Game is one stat line for one player: who, when, against whom, and the
// numeric stats recorded for that game. Datasets are supplied by the host
// client at match start and are treated as unvalidated external input.
type Game struct {
	Player   string
	Date     string
	Opponent string
	Stats    map[string]float64
}

// UnmarshalJSON accepts the loosely-shaped records clients send: the three
// known string fields by name, and every other numeric field into Stats.
// Non-numeric extras are dropped.
func (g *Game) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	g.Stats = make(map[string]float64, len(raw))
	for k, v := range raw {
		switch k {
		case "player":
			g.Player, _ = v.(string)
		case "date":
			g.Date, _ = v.(string)
		case "opponent":
			g.Opponent, _ = v.(string)
		default:
			if f, ok := v.(float64); ok {
				g.Stats[k] = f
			}
		}
	}
	return nil
}

// Stat returns the comparable value of the named stat with the
// zero-substitution rule applied.
func (g Game) Stat(key string) float64 {
	v, ok := g.Stats[key]
	if !ok || v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return ZeroValue
	}
	return v
}

// Card is the revealed view of a game record: the record plus the extracted
// comparison value for the stat currently in play.
type Card struct {
	Player   string  `json:"player"`
	Date     string  `json:"date"`
	Opponent string  `json:"opponent"`
	Label    string  `json:"label"`
	Value    float64 `json:"value"`
}
