package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"statduel/internal/db"
	"statduel/internal/leaderboard"
	"statduel/internal/protocol"
	"statduel/internal/rooms"
	"statduel/internal/wshub"
)

type Server struct {
	Rooms  *rooms.Store
	Hub    *wshub.Hub
	Boards *leaderboard.Store
	DB     *db.DB // nil if no database configured
}

// handleWS upgrades the connection and runs the session loop. Each connection
// gets a fresh player ID; everything after the upgrade is message-driven.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		log.Printf("[WS] Accept error: %v\n", err)
		return
	}
	defer conn.CloseNow()

	connID := uuid.New().String()
	client := &wshub.Client{
		ConnID: connID,
		Conn:   conn,
		Send:   make(chan []byte, 32),
	}
	s.Hub.Register(client)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go client.WritePump(ctx)

	defer func() {
		s.Hub.Unregister(connID)
		s.Rooms.RemovePlayer(connID)
	}()

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return
		}

		var env protocol.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			continue
		}
		s.dispatch(connID, env)
	}
}

// dispatch routes one inbound frame. Malformed payloads and unknown types are
// dropped; room errors the sender can act on go back as roomError.
func (s *Server) dispatch(connID string, env protocol.Envelope) {
	switch env.Type {
	case protocol.TypeCreateRoom:
		var req protocol.CreateRoom
		if err := json.Unmarshal(env.Data, &req); err != nil {
			return
		}
		snap, err := s.Rooms.Create(connID, req.Name)
		if err != nil {
			log.Printf("[WS] Create room failed: %v\n", err)
			s.Hub.Send(connID, protocol.TypeRoomError, protocol.RoomError{Message: "Failed to create room"})
			return
		}
		s.Hub.SetRoom(connID, snap.Code)
		s.Hub.Send(connID, protocol.TypeRoomJoined, protocol.RoomJoined{You: connID, Room: snap})

	case protocol.TypeJoinRoom:
		var req protocol.JoinRoom
		if err := json.Unmarshal(env.Data, &req); err != nil {
			return
		}
		snap, err := s.Rooms.Join(req.Code, connID, req.Name)
		if err != nil {
			s.Hub.Send(connID, protocol.TypeRoomError, protocol.RoomError{Message: "Room not found"})
			return
		}
		s.Hub.SetRoom(connID, snap.Code)
		s.Hub.Send(connID, protocol.TypeRoomJoined, protocol.RoomJoined{You: connID, Room: snap})
		s.Hub.Broadcast(snap.Code, protocol.TypeRoomUpdate, snap)

	case protocol.TypeUpdateSettings:
		var req protocol.UpdateSettings
		if err := json.Unmarshal(env.Data, &req); err != nil {
			return
		}
		// Non-host and unknown-room attempts are silent no-ops
		_ = s.Rooms.UpdateSettings(req.Code, connID, req)

	case protocol.TypeStartMatch:
		var req protocol.StartMatch
		if err := json.Unmarshal(env.Data, &req); err != nil {
			return
		}
		if err := s.Rooms.StartMatch(req.Code, connID, req.Dataset, req.Stat, req.TargetScore); err != nil {
			if err == rooms.ErrEmptyDataset {
				s.Hub.Send(connID, protocol.TypeRoomError, protocol.RoomError{Message: "Dataset is empty"})
			}
			return
		}

	case protocol.TypeGuess:
		var req protocol.Guess
		if err := json.Unmarshal(env.Data, &req); err != nil {
			return
		}
		_ = s.Rooms.SubmitGuess(req.Code, connID, req.Dir)

	case protocol.TypeHostNextRound:
		var req protocol.HostNextRound
		if err := json.Unmarshal(env.Data, &req); err != nil {
			return
		}
		_ = s.Rooms.HostNextRound(req.Code, connID)

	case protocol.TypePing:
		var req protocol.Ping
		if err := json.Unmarshal(env.Data, &req); err != nil {
			return
		}
		s.Rooms.Ping(req.Code, connID, req.Kind)

	case protocol.TypeGetLeaderboard:
		s.Hub.Send(connID, protocol.TypeLeaderboard, s.Boards.Top(20))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if s.DB != nil {
		if err := s.DB.Ping(); err != nil {
			status = "db_error"
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprintf(w, `{"status":"%s","error":"%s"}`, status, err.Error())
			return
		}
	}
	fmt.Fprintf(w, `{"status":"%s"}`, status)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.Boards.Top(20)); err != nil {
		log.Printf("[Handle:Leaderboard] Encode error: %v\n", err)
	}
}
