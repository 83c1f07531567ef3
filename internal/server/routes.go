package server

import (
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"statduel/internal/config"
	"statduel/internal/db"
	"statduel/internal/leaderboard"
	"statduel/internal/rooms"
	"statduel/internal/wshub"
)

func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	boards := leaderboard.Open(cfg.LeaderboardFile)
	hub := wshub.NewHub()
	roomStore := rooms.NewStore(rooms.Config{
		DefaultRoundTime: cfg.RoundTimeSec,
		StaleTTL:         cfg.RoomTTL,
	}, hub, boards)

	srv := &Server{
		Rooms:  roomStore,
		Hub:    hub,
		Boards: boards,
	}

	// Optional database connection
	if cfg.DatabaseURL != "" {
		database, err := db.Connect(cfg.DatabaseURL)
		if err != nil {
			log.Printf("[DB] Failed to connect: %v (running without database)\n", err)
		} else {
			if err := database.Migrate(); err != nil {
				log.Printf("[DB] Migration failed: %v\n", err)
			}
			srv.DB = database
			roomStore.SetMatchRecorder(database)
			log.Println("[DB] Database connected and migrations applied")
		}
	} else {
		log.Println("[DB] DATABASE_URL not set, running without database")
	}

	r := chi.NewRouter()
	r.Get("/healthz", srv.handleHealth)
	r.Get("/leaderboard", srv.handleLeaderboard)
	r.Get("/ws", srv.handleWS)

	fmt.Printf("Server listening on %s\n", cfg.HTTPAddr)
	return http.ListenAndServe(cfg.HTTPAddr, r)
}
