package db

import (
	"os"
	"testing"
)

func getTestDB(t *testing.T) *DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping database tests")
	}
	database, err := Connect(dsn)
	if err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	if err := database.Migrate(); err != nil {
		t.Fatalf("Migrate() error: %v", err)
	}
	t.Cleanup(func() {
		// Clean up test data
		database.conn.Exec("DELETE FROM match_players")
		database.conn.Exec("DELETE FROM matches")
		database.Close()
	})
	return database
}

func TestConnect(t *testing.T) {
	database := getTestDB(t)
	if err := database.Ping(); err != nil {
		t.Errorf("Ping() error: %v", err)
	}
}

func TestMigrate(t *testing.T) {
	database := getTestDB(t)

	tables := []string{"matches", "match_players"}
	for _, table := range tables {
		var exists bool
		err := database.conn.QueryRow(`
			SELECT EXISTS (SELECT FROM information_schema.tables WHERE table_name = $1)
		`, table).Scan(&exists)
		if err != nil {
			t.Errorf("checking table %s: %v", table, err)
		}
		if !exists {
			t.Errorf("table %s does not exist", table)
		}
	}
}

func TestCreateAndEndMatch(t *testing.T) {
	database := getTestDB(t)

	matchID, err := database.CreateMatch("ABCDEF", "host-1", 12)
	if err != nil {
		t.Fatalf("CreateMatch() error: %v", err)
	}
	if matchID == "" {
		t.Error("CreateMatch() returned empty ID")
	}

	if err := database.EndMatch(matchID, "host-1"); err != nil {
		t.Fatalf("EndMatch() error: %v", err)
	}

	m, err := database.GetMatch(matchID)
	if err != nil {
		t.Fatalf("GetMatch() error: %v", err)
	}
	if m.EndedAt == nil {
		t.Error("ended_at should be set after EndMatch()")
	}
	if m.WinnerID == nil || *m.WinnerID != "host-1" {
		t.Errorf("winner_id = %v, want host-1", m.WinnerID)
	}
}

func TestAddMatchPlayer(t *testing.T) {
	database := getTestDB(t)

	matchID, _ := database.CreateMatch("GHIJKL", "host-2", 12)

	err := database.AddMatchPlayer(matchID, "p-1", "Alice", 12, 5, 1)
	if err != nil {
		t.Fatalf("AddMatchPlayer() error: %v", err)
	}

	// Upsert should work
	err = database.AddMatchPlayer(matchID, "p-1", "Alice", 13, 6, 1)
	if err != nil {
		t.Fatalf("AddMatchPlayer() upsert error: %v", err)
	}

	var score int
	database.conn.QueryRow("SELECT final_score FROM match_players WHERE match_id = $1 AND player_id = $2", matchID, "p-1").Scan(&score)
	if score != 13 {
		t.Errorf("final_score = %d, want 13", score)
	}
}
