package leaderboard

import (
	"encoding/json"
	"log"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

const maxEntries = 50

// Entry is one durable all-time record, unique by name (case-insensitive).
type Entry struct {
	Name       string    `json:"name"`
	BestScore  int       `json:"bestScore"`
	BestStreak int       `json:"bestStreak"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Store holds the capped all-time leaderboard. Persistence is best-effort: a
// failed write is logged and swallowed, and a missing or corrupt file on open
// degrades to an empty board. An empty path disables persistence entirely.
type Store struct {
	mu      sync.Mutex
	path    string
	entries []Entry
}

func Open(path string) *Store {
	s := &Store{path: path}
	if path == "" {
		return s
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[Leaderboard] Read %s: %v (starting empty)\n", path, err)
		}
		return s
	}
	if err := json.Unmarshal(data, &s.entries); err != nil {
		log.Printf("[Leaderboard] Parse %s: %v (starting empty)\n", path, err)
		s.entries = nil
		return s
	}
	s.sortLocked()
	return s
}

// Upsert records a finished match for one player, raising their bests to the
// max of old and new.
func (s *Store) Upsert(name string, score, streak int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	found := false
	for i := range s.entries {
		if strings.EqualFold(s.entries[i].Name, name) {
			if score > s.entries[i].BestScore {
				s.entries[i].BestScore = score
			}
			if streak > s.entries[i].BestStreak {
				s.entries[i].BestStreak = streak
			}
			s.entries[i].UpdatedAt = now
			found = true
			break
		}
	}
	if !found {
		s.entries = append(s.entries, Entry{
			Name:       name,
			BestScore:  score,
			BestStreak: streak,
			UpdatedAt:  now,
		})
	}

	s.sortLocked()
	if len(s.entries) > maxEntries {
		s.entries = s.entries[:maxEntries]
	}
	s.persistLocked()
}

// Top returns the first n entries of the sorted board.
func (s *Store) Top(n int) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n > len(s.entries) {
		n = len(s.entries)
	}
	out := make([]Entry, n)
	copy(out, s.entries[:n])
	return out
}

func (s *Store) sortLocked() {
	sort.SliceStable(s.entries, func(i, j int) bool {
		a, b := s.entries[i], s.entries[j]
		if a.BestScore != b.BestScore {
			return a.BestScore > b.BestScore
		}
		if a.BestStreak != b.BestStreak {
			return a.BestStreak > b.BestStreak
		}
		return a.UpdatedAt.After(b.UpdatedAt)
	})
}

func (s *Store) persistLocked() {
	if s.path == "" {
		return
	}
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		log.Printf("[Leaderboard] Marshal: %v\n", err)
		return
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		log.Printf("[Leaderboard] Write %s: %v\n", s.path, err)
	}
}
