package rooms

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"statduel/internal/gamedata"
	"statduel/internal/leaderboard"
	"statduel/internal/protocol"
)

// Config holds the room defaults the server wires in at startup.
type Config struct {
	DefaultRoundTime int
	StaleTTL         time.Duration
}

type Store struct {
	mu    sync.Mutex
	rooms map[string]*Room
	cfg   Config

	emitter Emitter
	boards  *leaderboard.Store
	history MatchRecorder
}

func NewStore(cfg Config, emitter Emitter, boards *leaderboard.Store) *Store {
	if cfg.DefaultRoundTime == 0 {
		cfg.DefaultRoundTime = gamedata.DefaultModifiers().RoundTimeSec
	}
	s := &Store{
		rooms:   make(map[string]*Room),
		cfg:     cfg,
		emitter: emitter,
		boards:  boards,
	}
	if cfg.StaleTTL > 0 {
		go s.sweepStale()
	}
	return s
}

// SetMatchRecorder enables optional match-history persistence. Call before
// serving traffic.
func (s *Store) SetMatchRecorder(rec MatchRecorder) {
	s.history = rec
}

// Create registers a fresh room with the creator as sole player and host and
// returns its public snapshot. The caller announces it (roomJoined plus
// roomUpdate) once the connection is subscribed to the room channel.
func (s *Store) Create(connID, name string) (protocol.RoomSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Try up to 10 times to generate a unique code
	for i := 0; i < 10; i++ {
		code, err := GenerateCode()
		if err != nil {
			return protocol.RoomSnapshot{}, fmt.Errorf("generating room code: %w", err)
		}
		if _, exists := s.rooms[code]; exists {
			continue
		}

		mods := gamedata.DefaultModifiers()
		mods.RoundTimeSec = gamedata.ClampRoundTime(s.cfg.DefaultRoundTime)
		now := time.Now()
		room := &Room{
			code:        code,
			hostID:      connID,
			targetScore: 12,
			guesses:     make(map[string]gamedata.Direction),
			modifiers:   mods,
			createdAt:   now,
			lastActive:  now,
			players: []*gamedata.Player{
				{ID: connID, Name: gamedata.SafeName(name)},
			},
		}
		s.rooms[code] = room
		log.Printf("[Room] Created %s by %s\n", code, connID)
		return room.snapshotLocked(), nil
	}
	return protocol.RoomSnapshot{}, fmt.Errorf("failed to generate unique room code after 10 attempts")
}

// Join adds a player to the room with the given code. Re-joining with the
// same connection identity is a no-op rather than a duplicate.
func (s *Store) Join(code, connID, name string) (protocol.RoomSnapshot, error) {
	room := s.Get(code)
	if room == nil {
		return protocol.RoomSnapshot{}, ErrRoomNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if room.playerLocked(connID) == nil {
		room.players = append(room.players, &gamedata.Player{
			ID:   connID,
			Name: gamedata.SafeName(name),
		})
	}
	room.lastActive = time.Now()
	return room.snapshotLocked(), nil
}

func (s *Store) Get(code string) *Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rooms[strings.ToUpper(strings.TrimSpace(code))]
}

// RemovePlayer handles a disconnect: the player leaves whichever room holds
// them, an empty room is deleted, and a departing host hands off to the next
// player in join order. Safe mid-round: the player's pending guess is
// discarded so the guess set stays within current membership.
func (s *Store) RemovePlayer(connID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for code, room := range s.rooms {
		room.mu.Lock()
		idx := -1
		for i, p := range room.players {
			if p.ID == connID {
				idx = i
				break
			}
		}
		if idx == -1 {
			room.mu.Unlock()
			continue
		}

		room.players = append(room.players[:idx], room.players[idx+1:]...)
		delete(room.guesses, connID)

		if len(room.players) == 0 {
			room.mu.Unlock()
			delete(s.rooms, code)
			log.Printf("[Room] Deleted empty room %s\n", code)
			continue
		}

		if room.hostID == connID {
			room.hostID = room.players[0].ID
			log.Printf("[Room] Host left %s, promoted %s\n", code, room.hostID)
		}
		room.lastActive = time.Now()
		snap := room.snapshotLocked()
		room.mu.Unlock()
		s.emitter.Broadcast(code, protocol.TypeRoomUpdate, snap)
	}
}

func (s *Store) List() []*Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]*Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		list = append(list, r)
	}
	return list
}

func (s *Store) sweepStale() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		s.mu.Lock()
		now := time.Now()
		for code, room := range s.rooms {
			room.mu.Lock()
			stale := now.Sub(room.lastActive) > s.cfg.StaleTTL
			room.mu.Unlock()
			if stale {
				delete(s.rooms, code)
				log.Printf("[Room] Swept stale room %s\n", code)
			}
		}
		s.mu.Unlock()
	}
}
