package rooms

import (
	"errors"
	"sync"
	"time"

	"statduel/internal/gamedata"
	"statduel/internal/protocol"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrNotHost      = errors.New("not the host")
	ErrEmptyDataset = errors.New("dataset is empty")
)

// matchState is the round lifecycle of a room.
type matchState int

const (
	stateIdle matchState = iota
	stateRoundActive
	stateRevealing
	stateMatchEnded
)

// Emitter delivers outbound messages. The server wires this to the WebSocket
// hub; tests substitute a recorder.
type Emitter interface {
	Broadcast(code, event string, payload any)
	Send(connID, event string, payload any)
}

// MatchRecorder persists finished matches. Optional; a nil recorder disables
// history.
type MatchRecorder interface {
	CreateMatch(roomCode, hostID string, targetScore int) (string, error)
	AddMatchPlayer(matchID, playerID, name string, score, bestStreak, rank int) error
	EndMatch(matchID, winnerID string) error
}

// Room is one active match lobby. All fields are guarded by mu; every
// mutation goes through Store methods so no event ever observes a partial
// update.
type Room struct {
	mu sync.Mutex

	code        string
	hostID      string
	players     []*gamedata.Player // ordered by join time
	round       int
	targetScore int
	statKey     string
	statLabel   string
	dataset     []gamedata.Game
	current     *gamedata.Card
	previous    *gamedata.Card
	guesses     map[string]gamedata.Direction
	modifiers   gamedata.Modifiers
	revealAt    time.Time
	state       matchState

	createdAt  time.Time
	lastActive time.Time
}

func (r *Room) playerLocked(id string) *gamedata.Player {
	for _, p := range r.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// snapshotLocked builds the public room view. The raw dataset stays
// server-side.
func (r *Room) snapshotLocked() protocol.RoomSnapshot {
	players := make([]protocol.PlayerInfo, 0, len(r.players))
	for _, p := range r.players {
		players = append(players, protocol.PlayerInfo{
			ID:         p.ID,
			Name:       p.Name,
			Score:      p.Score,
			Streak:     p.Streak,
			BestStreak: p.BestStreak,
		})
	}
	return protocol.RoomSnapshot{
		Code:        r.code,
		HostID:      r.hostID,
		Round:       r.round,
		TargetScore: r.targetScore,
		StatKey:     r.statKey,
		StatLabel:   r.statLabel,
		Current:     r.current,
		Previous:    r.previous,
		Modifiers:   r.modifiers,
		Players:     players,
	}
}
