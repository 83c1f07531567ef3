package scoring

import (
	"math"

	"statduel/internal/gamedata"
)

// Bonus tags attached to a player's reveal result.
const (
	BonusClose    = "close"
	BonusStreak   = "streak"
	BonusComeback = "comeback"
	BonusPerfect  = "perfect"
)

// PlayerResult is one player's outcome for a single reveal.
type PlayerResult struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Guess      gamedata.Direction `json:"guess,omitempty"`
	Correct    bool               `json:"correct"`
	Gain       int                `json:"gain"`
	Bonuses    []string           `json:"bonuses,omitempty"`
	Score      int                `json:"score"`
	Streak     int                `json:"streak"`
	BestStreak int                `json:"bestStreak"`
}

// Outcome is the full result of scoring one round.
type Outcome struct {
	CorrectDir gamedata.Direction
	Perfect    bool
	Results    []PlayerResult
}

// Reveal scores the round: it compares the current card against the previous
// one, updates each player's score/streak fields in place, and reports the
// per-player outcomes. Results are ordered like players.
//
// Round 1 has no previous card: nobody scores and streaks are left untouched.
// Otherwise a missing or wrong guess resets the streak to zero. Ties resolve
// to "higher".
func Reveal(prev, cur *gamedata.Card, players []*gamedata.Player, guesses map[string]gamedata.Direction, mods gamedata.Modifiers) Outcome {
	var correctDir gamedata.Direction
	if prev != nil {
		if cur.Value >= prev.Value {
			correctDir = gamedata.Higher
		} else {
			correctDir = gamedata.Lower
		}
	}

	perfect := mods.PerfectRoundBonus && correctDir != "" && len(players) > 0
	results := make([]PlayerResult, 0, len(players))

	for _, p := range players {
		guess, guessed := guesses[p.ID]
		correct := correctDir != "" && guessed && guess == correctDir
		streakBefore := p.Streak

		gain := 0
		var bonuses []string
		if correct {
			gain = 1
			if math.Abs(cur.Value-prev.Value) <= mods.CloseCallThreshold {
				gain++
				bonuses = append(bonuses, BonusClose)
			}
			if streakBefore >= 2 {
				gain++
				bonuses = append(bonuses, BonusStreak)
			}
			if streakBefore == 0 {
				bonuses = append(bonuses, BonusComeback)
			}
			p.Streak++
			if p.Streak > p.BestStreak {
				p.BestStreak = p.Streak
			}
		} else if correctDir != "" {
			p.Streak = 0
		}
		if !correct {
			perfect = false
		}

		p.Score += gain
		results = append(results, PlayerResult{
			ID:         p.ID,
			Name:       p.Name,
			Guess:      guess,
			Correct:    correct,
			Gain:       gain,
			Bonuses:    bonuses,
			Score:      p.Score,
			Streak:     p.Streak,
			BestStreak: p.BestStreak,
		})
	}

	if perfect {
		for i, p := range players {
			p.Score++
			results[i].Gain++
			results[i].Score = p.Score
			results[i].Bonuses = append(results[i].Bonuses, BonusPerfect)
		}
	}

	return Outcome{CorrectDir: correctDir, Perfect: perfect, Results: results}
}
