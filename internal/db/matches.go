package db

import (
	"fmt"
	"time"
)

type MatchRecord struct {
	ID          string
	RoomCode    string
	HostID      string
	TargetScore int
	WinnerID    *string
	StartedAt   *time.Time
	EndedAt     *time.Time
	CreatedAt   time.Time
}

func (d *DB) CreateMatch(roomCode, hostID string, targetScore int) (string, error) {
	var id string
	err := d.conn.QueryRow(`
		INSERT INTO matches (room_code, host_id, target_score, started_at)
		VALUES ($1, $2, $3, now())
		RETURNING id
	`, roomCode, hostID, targetScore).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("creating match: %w", err)
	}
	return id, nil
}

func (d *DB) EndMatch(matchID, winnerID string) error {
	_, err := d.conn.Exec(`
		UPDATE matches SET ended_at = now(), winner_id = $2 WHERE id = $1
	`, matchID, winnerID)
	if err != nil {
		return fmt.Errorf("ending match: %w", err)
	}
	return nil
}

func (d *DB) GetMatch(matchID string) (MatchRecord, error) {
	var m MatchRecord
	err := d.conn.QueryRow(`
		SELECT id, room_code, host_id, target_score, winner_id, started_at, ended_at, created_at
		FROM matches WHERE id = $1
	`, matchID).Scan(&m.ID, &m.RoomCode, &m.HostID, &m.TargetScore, &m.WinnerID, &m.StartedAt, &m.EndedAt, &m.CreatedAt)
	if err != nil {
		return MatchRecord{}, fmt.Errorf("getting match: %w", err)
	}
	return m, nil
}

func (d *DB) AddMatchPlayer(matchID, playerID, name string, score, bestStreak, rank int) error {
	_, err := d.conn.Exec(`
		INSERT INTO match_players (match_id, player_id, name, final_score, best_streak, rank)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (match_id, player_id) DO UPDATE SET final_score = $4, best_streak = $5, rank = $6
	`, matchID, playerID, name, score, bestStreak, rank)
	if err != nil {
		return fmt.Errorf("adding match player: %w", err)
	}
	return nil
}
