package rooms

import (
	"log"
	"math"
	"math/rand"
	"sort"
	"time"

	"statduel/internal/gamedata"
	"statduel/internal/protocol"
	"statduel/internal/scoring"
)

// revealGrace pads the auto-reveal timer past the exact deadline so the timer
// never races the revealAt boundary it validates against.
const revealGrace = 50 * time.Millisecond

const pickAttempts = 10

// UpdateSettings applies host rule changes. Non-hosts and unknown rooms are
// silent no-ops, and changes are refused while a round is in flight. Present
// fields are clamped into range; non-finite values keep the prior setting.
func (s *Store) UpdateSettings(code, connID string, req protocol.UpdateSettings) error {
	room := s.Get(code)
	if room == nil {
		return ErrRoomNotFound
	}

	room.mu.Lock()
	if room.hostID != connID {
		room.mu.Unlock()
		return ErrNotHost
	}
	if room.state == stateRoundActive {
		room.mu.Unlock()
		return nil
	}

	if n, ok := finiteInt(req.TargetScore); ok {
		room.targetScore = gamedata.ClampTargetScore(n)
	}
	if n, ok := finiteInt(req.RoundTimeSec); ok {
		room.modifiers.RoundTimeSec = gamedata.ClampRoundTime(n)
	}
	if n, ok := finiteInt(req.RotateStatEvery); ok {
		room.modifiers.RotateStatEvery = gamedata.ClampRotateEvery(n)
	}
	if req.CloseCallThreshold != nil {
		room.modifiers.CloseCallThreshold = gamedata.ClampCloseCall(*req.CloseCallThreshold, room.modifiers.CloseCallThreshold)
	}
	if req.PerfectRoundBonus != nil {
		room.modifiers.PerfectRoundBonus = *req.PerfectRoundBonus
	}
	room.lastActive = time.Now()
	snap := room.snapshotLocked()
	room.mu.Unlock()

	s.emitter.Broadcast(code, protocol.TypeRoomUpdate, snap)
	s.emitter.Broadcast(code, protocol.TypeToast, protocol.Toast{Type: "info", Text: "Settings updated"})
	return nil
}

func finiteInt(v *float64) (int, bool) {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 0, false
	}
	return int(*v), true
}

// StartMatch resets scores and begins round 1. Host only. An empty dataset is
// a hard error surfaced to the caller instead of leaving the room stuck idle.
func (s *Store) StartMatch(code, connID string, dataset []gamedata.Game, stat *gamedata.StatOption, targetScore *float64) error {
	room := s.Get(code)
	if room == nil {
		return ErrRoomNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if room.hostID != connID {
		return ErrNotHost
	}
	if len(dataset) == 0 {
		return ErrEmptyDataset
	}

	room.dataset = dataset
	opt := gamedata.StatPool[rand.Intn(len(gamedata.StatPool))]
	if stat != nil && stat.Key != "" {
		opt = *stat
	}
	room.statKey = opt.Key
	room.statLabel = opt.Label
	if n, ok := finiteInt(targetScore); ok {
		room.targetScore = gamedata.ClampTargetScore(n)
	}

	for _, p := range room.players {
		p.Score = 0
		p.Streak = 0
		p.BestStreak = 0
	}
	room.round = 0
	room.current = nil
	room.previous = nil
	room.guesses = make(map[string]gamedata.Direction)
	room.lastActive = time.Now()

	log.Printf("[Room] Match started in %s (stat %s, target %d)\n", room.code, room.statKey, room.targetScore)
	s.emitter.Broadcast(room.code, protocol.TypeMatchStarted, room.snapshotLocked())
	s.startRoundLocked(room)
	return nil
}

// HostNextRound advances past a reveal to the next round. Host only, and only
// meaningful while the room sits on a revealed card.
func (s *Store) HostNextRound(code, connID string) error {
	room := s.Get(code)
	if room == nil {
		return ErrRoomNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if room.hostID != connID {
		return ErrNotHost
	}
	if room.state != stateRevealing {
		return nil
	}
	s.startRoundLocked(room)
	return nil
}

// startRoundLocked runs one round setup: advance the counter, rotate the stat
// if due, draw the next card, stamp revealAt, and arm the auto-reveal timer
// bound to that stamp.
func (s *Store) startRoundLocked(room *Room) {
	room.round++
	room.guesses = make(map[string]gamedata.Direction)
	room.previous = room.current

	mods := room.modifiers
	if mods.RotateStatEvery > 0 && room.round > 1 && (room.round-1)%mods.RotateStatEvery == 0 {
		opt := gamedata.StatPool[rand.Intn(len(gamedata.StatPool))]
		room.statKey = opt.Key
		room.statLabel = opt.Label
		s.emitter.Broadcast(room.code, protocol.TypeToast, protocol.Toast{Type: "info", Text: "Stat changed: " + opt.Label})
	}

	game := s.pickNextGameLocked(room)
	if game == nil {
		return
	}
	room.current = &gamedata.Card{
		Player:   game.Player,
		Date:     game.Date,
		Opponent: game.Opponent,
		Label:    room.statLabel,
		Value:    game.Stat(room.statKey),
	}

	timeout := time.Duration(mods.RoundTimeSec) * time.Second
	room.revealAt = time.Now().Add(timeout)
	room.state = stateRoundActive
	room.lastActive = time.Now()
	armed := room.revealAt

	s.emitter.Broadcast(room.code, protocol.TypeRoundStart, protocol.RoundStart{
		Room:      room.snapshotLocked(),
		RoundTime: mods.RoundTimeSec,
	})

	code := room.code
	time.AfterFunc(timeout+revealGrace, func() {
		s.autoReveal(code, armed)
	})
}

// pickNextGameLocked draws a uniform random record, resampling a bounded
// number of times to avoid repeating the previous card's subject. If every
// attempt collides the repeat is accepted.
func (s *Store) pickNextGameLocked(room *Room) *gamedata.Game {
	ds := room.dataset
	if len(ds) == 0 {
		return nil
	}
	var lastPlayer string
	if room.current != nil {
		lastPlayer = room.current.Player
	}
	for i := 0; i < pickAttempts; i++ {
		g := &ds[rand.Intn(len(ds))]
		if lastPlayer == "" || g.Player != lastPlayer {
			return g
		}
	}
	return &ds[rand.Intn(len(ds))]
}

// SubmitGuess records a player's direction while the round is open. Last
// write wins; a player may change their mind before the reveal. When every
// current member has guessed the reveal fires early.
func (s *Store) SubmitGuess(code, connID string, dir gamedata.Direction) error {
	if !dir.Valid() {
		return nil
	}
	room := s.Get(code)
	if room == nil {
		return ErrRoomNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if room.state != stateRoundActive {
		return nil
	}
	if room.playerLocked(connID) == nil {
		return nil
	}

	room.guesses[connID] = dir
	room.lastActive = time.Now()

	guessed := len(room.guesses)
	total := len(room.players)
	s.emitter.Broadcast(room.code, protocol.TypeGuessCount, protocol.GuessCount{Guessed: guessed, Total: total})

	if guessed >= total {
		// Advancing revealAt invalidates the pending auto-reveal timer.
		room.revealAt = time.Now()
		s.revealLocked(room)
	}
	return nil
}

// autoReveal is the deferred timer path. It re-validates that the room's
// current revealAt still equals the stamp captured when the timer was armed:
// an early reveal or a restarted match has moved the stamp, making this
// callback a stale no-op. This is what guarantees at-most-once reveal per
// round.
func (s *Store) autoReveal(code string, armed time.Time) {
	room := s.Get(code)
	if room == nil {
		return
	}
	room.mu.Lock()
	defer room.mu.Unlock()

	if room.state != stateRoundActive || !room.revealAt.Equal(armed) {
		return
	}
	s.revealLocked(room)
}

func (s *Store) revealLocked(room *Room) {
	if room.current == nil {
		return
	}
	room.state = stateRevealing

	out := scoring.Reveal(room.previous, room.current, room.players, room.guesses, room.modifiers)

	s.emitter.Broadcast(room.code, protocol.TypeRoundReveal, protocol.RoundReveal{
		Previous:   room.previous,
		Revealed:   room.current,
		CorrectDir: out.CorrectDir,
		Results:    out.Results,
		Meta:       protocol.RevealMeta{CloseThresh: room.modifiers.CloseCallThreshold},
	})
	s.emitter.Broadcast(room.code, protocol.TypeRoomUpdate, room.snapshotLocked())

	s.maybeEndMatchLocked(room)
}

// maybeEndMatchLocked ends the match when a player reaches the target. The
// winner is the first player in join order at or above the threshold, even if
// a later player crossed with a higher score on the same reveal.
func (s *Store) maybeEndMatchLocked(room *Room) {
	var winner *gamedata.Player
	for _, p := range room.players {
		if p.Score >= room.targetScore {
			winner = p
			break
		}
	}
	if winner == nil {
		return
	}

	room.state = stateMatchEnded
	log.Printf("[Room] Match ended in %s, winner %s (%d)\n", room.code, winner.Name, winner.Score)

	for _, p := range room.players {
		s.boards.Upsert(p.Name, p.Score, p.BestStreak)
	}

	s.emitter.Broadcast(room.code, protocol.TypeMatchEnded, protocol.MatchEnded{
		Winner: protocol.PlayerInfo{
			ID:         winner.ID,
			Name:       winner.Name,
			Score:      winner.Score,
			Streak:     winner.Streak,
			BestStreak: winner.BestStreak,
		},
		Leaderboard: s.boards.Top(20),
	})

	if s.history != nil {
		final := make([]gamedata.Player, 0, len(room.players))
		for _, p := range room.players {
			final = append(final, *p)
		}
		go s.recordMatch(room.code, room.hostID, room.targetScore, winner.ID, final)
	}
}

// recordMatch persists match history best-effort; failures are logged and
// never reach the room.
func (s *Store) recordMatch(code, hostID string, targetScore int, winnerID string, final []gamedata.Player) {
	matchID, err := s.history.CreateMatch(code, hostID, targetScore)
	if err != nil {
		log.Printf("[DB] CreateMatch error: %v\n", err)
		return
	}

	ranked := make([]gamedata.Player, len(final))
	copy(ranked, final)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	for i, p := range ranked {
		if err := s.history.AddMatchPlayer(matchID, p.ID, p.Name, p.Score, p.BestStreak, i+1); err != nil {
			log.Printf("[DB] AddMatchPlayer error: %v\n", err)
		}
	}
	if err := s.history.EndMatch(matchID, winnerID); err != nil {
		log.Printf("[DB] EndMatch error: %v\n", err)
	}
}

// Ping relays a lobby emote room-wide. Unrecognized kinds are coerced to the
// default rather than rejected.
func (s *Store) Ping(code, connID, kind string) {
	room := s.Get(code)
	if room == nil {
		return
	}

	room.mu.Lock()
	p := room.playerLocked(connID)
	room.mu.Unlock()
	if p == nil {
		return
	}

	if !protocol.PingKinds[kind] {
		kind = protocol.DefaultPing
	}
	s.emitter.Broadcast(code, protocol.TypePing, protocol.PingEvent{
		From: p.Name,
		Kind: kind,
		At:   time.Now().UnixMilli(),
	})
}
