package scoring

import (
	"testing"

	"statduel/internal/gamedata"
)

func card(value float64) *gamedata.Card {
	return &gamedata.Card{Player: "J. Carter", Label: "Points", Value: value}
}

func testMods() gamedata.Modifiers {
	return gamedata.Modifiers{
		CloseCallThreshold: 2,
		PerfectRoundBonus:  false,
		RotateStatEvery:    0,
		RoundTimeSec:       15,
	}
}

func hasBonus(r PlayerResult, tag string) bool {
	for _, b := range r.Bonuses {
		if b == tag {
			return true
		}
	}
	return false
}

func TestReveal_FirstRoundNoScoring(t *testing.T) {
	p := &gamedata.Player{ID: "a", Name: "Alice", Streak: 2}
	out := Reveal(nil, card(10), []*gamedata.Player{p}, map[string]gamedata.Direction{"a": gamedata.Higher}, testMods())

	if out.CorrectDir != "" {
		t.Errorf("CorrectDir = %q, want empty on round 1", out.CorrectDir)
	}
	if p.Score != 0 {
		t.Errorf("Score = %d, want 0", p.Score)
	}
	if p.Streak != 2 {
		t.Errorf("Streak = %d, want 2 (untouched on round 1)", p.Streak)
	}
	if out.Results[0].Correct {
		t.Error("result should not be correct on round 1")
	}
}

func TestReveal_TieResolvesHigher(t *testing.T) {
	out := Reveal(card(10), card(10), nil, nil, testMods())
	if out.CorrectDir != gamedata.Higher {
		t.Errorf("CorrectDir = %q, want %q on tie", out.CorrectDir, gamedata.Higher)
	}
}

func TestReveal_ZeroSubstitutedComparison(t *testing.T) {
	// previous raw 3, current raw 0 -> substituted 0.5, so "lower" wins.
	out := Reveal(card(3), card(gamedata.ZeroValue), nil, nil, testMods())
	if out.CorrectDir != gamedata.Lower {
		t.Errorf("CorrectDir = %q, want %q", out.CorrectDir, gamedata.Lower)
	}
}

func TestReveal_CorrectGuess(t *testing.T) {
	mods := testMods()
	mods.CloseCallThreshold = 0

	p := &gamedata.Player{ID: "a", Name: "Alice", Streak: 1, BestStreak: 1}
	out := Reveal(card(10), card(20), []*gamedata.Player{p}, map[string]gamedata.Direction{"a": gamedata.Higher}, mods)

	r := out.Results[0]
	if !r.Correct {
		t.Fatal("guess should be correct")
	}
	if r.Gain != 1 {
		t.Errorf("Gain = %d, want 1 (base only)", r.Gain)
	}
	if p.Score != 1 {
		t.Errorf("Score = %d, want 1", p.Score)
	}
	if p.Streak != 2 {
		t.Errorf("Streak = %d, want 2", p.Streak)
	}
	if p.BestStreak != 2 {
		t.Errorf("BestStreak = %d, want 2", p.BestStreak)
	}
}

func TestReveal_WrongGuessResetsStreak(t *testing.T) {
	p := &gamedata.Player{ID: "a", Name: "Alice", Score: 4, Streak: 3, BestStreak: 3}
	out := Reveal(card(10), card(20), []*gamedata.Player{p}, map[string]gamedata.Direction{"a": gamedata.Lower}, testMods())

	r := out.Results[0]
	if r.Correct {
		t.Fatal("guess should be wrong")
	}
	if r.Gain != 0 {
		t.Errorf("Gain = %d, want 0", r.Gain)
	}
	if p.Score != 4 {
		t.Errorf("Score = %d, want 4 (unchanged)", p.Score)
	}
	if p.Streak != 0 {
		t.Errorf("Streak = %d, want 0", p.Streak)
	}
	if p.BestStreak != 3 {
		t.Errorf("BestStreak = %d, want 3 (high-water mark kept)", p.BestStreak)
	}
}

func TestReveal_NoGuessResetsStreak(t *testing.T) {
	p := &gamedata.Player{ID: "a", Name: "Alice", Streak: 5, BestStreak: 5}
	Reveal(card(10), card(20), []*gamedata.Player{p}, map[string]gamedata.Direction{}, testMods())

	if p.Streak != 0 {
		t.Errorf("Streak = %d, want 0 after missing a guess", p.Streak)
	}
}

func TestReveal_CloseCallBonus(t *testing.T) {
	mods := testMods()
	mods.CloseCallThreshold = 2

	p := &gamedata.Player{ID: "a", Name: "Alice"}
	out := Reveal(card(10), card(11.5), []*gamedata.Player{p}, map[string]gamedata.Direction{"a": gamedata.Higher}, mods)

	r := out.Results[0]
	if r.Gain != 2 {
		t.Errorf("Gain = %d, want 2 (base + close)", r.Gain)
	}
	if !hasBonus(r, BonusClose) {
		t.Errorf("Bonuses = %v, want %q", r.Bonuses, BonusClose)
	}
}

func TestReveal_CloseCallExactBoundary(t *testing.T) {
	mods := testMods()
	mods.CloseCallThreshold = 2

	p := &gamedata.Player{ID: "a", Name: "Alice"}
	out := Reveal(card(10), card(12), []*gamedata.Player{p}, map[string]gamedata.Direction{"a": gamedata.Higher}, mods)

	if !hasBonus(out.Results[0], BonusClose) {
		t.Error("difference exactly at threshold should count as close call")
	}
}

func TestReveal_StreakBonusBoundary(t *testing.T) {
	mods := testMods()
	mods.CloseCallThreshold = 0

	// streak=2 entering the round: third consecutive correct guess pays the bonus.
	p := &gamedata.Player{ID: "a", Name: "Alice", Streak: 2, BestStreak: 2}
	out := Reveal(card(10), card(20), []*gamedata.Player{p}, map[string]gamedata.Direction{"a": gamedata.Higher}, mods)

	r := out.Results[0]
	if r.Gain != 2 {
		t.Errorf("Gain = %d, want 2 (base + streak)", r.Gain)
	}
	if !hasBonus(r, BonusStreak) {
		t.Errorf("Bonuses = %v, want %q", r.Bonuses, BonusStreak)
	}
	if p.Streak != 3 {
		t.Errorf("Streak = %d, want 3", p.Streak)
	}

	// streak=1 entering the round: no bonus yet.
	p2 := &gamedata.Player{ID: "b", Name: "Bob", Streak: 1, BestStreak: 1}
	out = Reveal(card(10), card(20), []*gamedata.Player{p2}, map[string]gamedata.Direction{"b": gamedata.Higher}, mods)
	if out.Results[0].Gain != 1 {
		t.Errorf("Gain = %d, want 1 (streak bonus needs streak >= 2)", out.Results[0].Gain)
	}
}

func TestReveal_ComebackTag(t *testing.T) {
	mods := testMods()
	mods.CloseCallThreshold = 0

	p := &gamedata.Player{ID: "a", Name: "Alice", Streak: 0}
	out := Reveal(card(10), card(20), []*gamedata.Player{p}, map[string]gamedata.Direction{"a": gamedata.Higher}, mods)

	r := out.Results[0]
	if !hasBonus(r, BonusComeback) {
		t.Errorf("Bonuses = %v, want %q", r.Bonuses, BonusComeback)
	}
	if r.Gain != 1 {
		t.Errorf("Gain = %d, want 1 (comeback is informational)", r.Gain)
	}
}

func TestReveal_PerfectRound(t *testing.T) {
	mods := testMods()
	mods.PerfectRoundBonus = true
	mods.CloseCallThreshold = 0

	players := []*gamedata.Player{
		{ID: "a", Name: "Alice"},
		{ID: "b", Name: "Bob"},
		{ID: "c", Name: "Carol"},
	}
	guesses := map[string]gamedata.Direction{
		"a": gamedata.Higher,
		"b": gamedata.Higher,
		"c": gamedata.Higher,
	}
	out := Reveal(card(10), card(20), players, guesses, mods)

	if !out.Perfect {
		t.Fatal("round should be perfect")
	}
	for i, r := range out.Results {
		if r.Gain != 2 {
			t.Errorf("player %d Gain = %d, want 2 (base + perfect)", i, r.Gain)
		}
		if !hasBonus(r, BonusPerfect) {
			t.Errorf("player %d Bonuses = %v, want %q", i, r.Bonuses, BonusPerfect)
		}
		if players[i].Score != 2 {
			t.Errorf("player %d Score = %d, want 2", i, players[i].Score)
		}
		if r.Score != players[i].Score {
			t.Errorf("player %d result Score = %d, out of sync with %d", i, r.Score, players[i].Score)
		}
	}
}

func TestReveal_PerfectRoundSpoiled(t *testing.T) {
	mods := testMods()
	mods.PerfectRoundBonus = true
	mods.CloseCallThreshold = 0

	players := []*gamedata.Player{
		{ID: "a", Name: "Alice"},
		{ID: "b", Name: "Bob"},
	}

	// One player didn't guess.
	out := Reveal(card(10), card(20), players, map[string]gamedata.Direction{"a": gamedata.Higher}, mods)
	if out.Perfect {
		t.Error("perfect round requires every player to guess")
	}
	if out.Results[0].Gain != 1 {
		t.Errorf("Gain = %d, want 1", out.Results[0].Gain)
	}

	// Everyone guessed, one was wrong.
	players[0].Score, players[1].Score = 0, 0
	guesses := map[string]gamedata.Direction{"a": gamedata.Higher, "b": gamedata.Lower}
	out = Reveal(card(10), card(20), players, guesses, mods)
	if out.Perfect {
		t.Error("perfect round requires every guess correct")
	}
}

func TestReveal_PerfectRoundDisabled(t *testing.T) {
	mods := testMods()
	mods.PerfectRoundBonus = false
	mods.CloseCallThreshold = 0

	p := &gamedata.Player{ID: "a", Name: "Alice"}
	out := Reveal(card(10), card(20), []*gamedata.Player{p}, map[string]gamedata.Direction{"a": gamedata.Higher}, mods)

	if out.Perfect {
		t.Error("perfect bonus should be off")
	}
	if out.Results[0].Gain != 1 {
		t.Errorf("Gain = %d, want 1", out.Results[0].Gain)
	}
}

func TestReveal_ResultsMatchPlayerOrder(t *testing.T) {
	players := []*gamedata.Player{
		{ID: "b", Name: "Bob"},
		{ID: "a", Name: "Alice"},
	}
	out := Reveal(card(10), card(20), players, nil, testMods())

	if len(out.Results) != 2 {
		t.Fatalf("got %d results, want 2", len(out.Results))
	}
	if out.Results[0].ID != "b" || out.Results[1].ID != "a" {
		t.Error("results should preserve player order")
	}
}
