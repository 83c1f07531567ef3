// Package protocol defines the closed tagged-message contract spoken over the
// WebSocket channel. Every frame is an Envelope; unknown inbound types are
// ignored rather than trusted.
package protocol

import (
	"encoding/json"

	"statduel/internal/gamedata"
	"statduel/internal/leaderboard"
	"statduel/internal/scoring"
)

// Inbound message types.
const (
	TypeCreateRoom     = "createRoom"
	TypeJoinRoom       = "joinRoom"
	TypeUpdateSettings = "updateSettings"
	TypeStartMatch     = "startMatch"
	TypeGuess          = "guess"
	TypeHostNextRound  = "hostNextRound"
	TypePing           = "ping"
	TypeGetLeaderboard = "getLeaderboard"
)

// Outbound message types.
const (
	TypeRoomJoined   = "roomJoined"
	TypeRoomError    = "roomError"
	TypeRoomUpdate   = "roomUpdate"
	TypeMatchStarted = "matchStarted"
	TypeRoundStart   = "roundStart"
	TypeGuessCount   = "guessCount"
	TypeRoundReveal  = "roundReveal"
	TypeMatchEnded   = "matchEnded"
	TypeToast        = "toast"
	TypeLeaderboard  = "leaderboard"
)

// Envelope is the wire frame: a type tag plus an optional payload.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type CreateRoom struct {
	Name string `json:"name"`
}

type JoinRoom struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// UpdateSettings carries optional fields; absent values keep their prior
// state, present values are clamped on apply.
type UpdateSettings struct {
	Code               string   `json:"code"`
	TargetScore        *float64 `json:"targetScore,omitempty"`
	RoundTimeSec       *float64 `json:"roundTimeSec,omitempty"`
	RotateStatEvery    *float64 `json:"rotateStatEvery,omitempty"`
	CloseCallThreshold *float64 `json:"closeCallThreshold,omitempty"`
	PerfectRoundBonus  *bool    `json:"perfectRoundBonus,omitempty"`
}

type StartMatch struct {
	Code        string               `json:"code"`
	Dataset     []gamedata.Game      `json:"dataset"`
	Stat        *gamedata.StatOption `json:"stat,omitempty"`
	TargetScore *float64             `json:"targetScore,omitempty"`
}

type Guess struct {
	Code string             `json:"code"`
	Dir  gamedata.Direction `json:"dir"`
}

type HostNextRound struct {
	Code string `json:"code"`
}

type Ping struct {
	Code string `json:"code"`
	Kind string `json:"kind"`
}

// PingKinds is the fixed emote set; anything else is coerced to DefaultPing.
var PingKinds = map[string]bool{
	"fire":  true,
	"clap":  true,
	"laugh": true,
	"wow":   true,
	"gg":    true,
}

const DefaultPing = "gg"

// PlayerInfo is the client-visible view of a player.
type PlayerInfo struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Score      int    `json:"score"`
	Streak     int    `json:"streak"`
	BestStreak int    `json:"bestStreak"`
}

// RoomSnapshot is the public room state. The raw dataset is never included:
// after match start only scalar and derived fields go over the wire.
type RoomSnapshot struct {
	Code        string             `json:"code"`
	HostID      string             `json:"hostId"`
	Round       int                `json:"round"`
	TargetScore int                `json:"targetScore"`
	StatKey     string             `json:"statKey"`
	StatLabel   string             `json:"statLabel"`
	Current     *gamedata.Card     `json:"current"`
	Previous    *gamedata.Card     `json:"previous"`
	Modifiers   gamedata.Modifiers `json:"modifiers"`
	Players     []PlayerInfo       `json:"players"`
}

type RoomError struct {
	Message string `json:"message"`
}

// RoomJoined confirms entry to a room and tells the client which player ID is
// theirs.
type RoomJoined struct {
	You  string       `json:"you"`
	Room RoomSnapshot `json:"room"`
}

type RoundStart struct {
	Room      RoomSnapshot `json:"room"`
	RoundTime int          `json:"roundTime"`
}

type GuessCount struct {
	Guessed int `json:"guessed"`
	Total   int `json:"total"`
}

type RevealMeta struct {
	CloseThresh float64 `json:"closeThresh"`
}

type RoundReveal struct {
	Previous   *gamedata.Card         `json:"previous"`
	Revealed   *gamedata.Card         `json:"revealed"`
	CorrectDir gamedata.Direction     `json:"correctDir,omitempty"`
	Results    []scoring.PlayerResult `json:"results"`
	Meta       RevealMeta             `json:"meta"`
}

type MatchEnded struct {
	Winner      PlayerInfo          `json:"winner"`
	Leaderboard []leaderboard.Entry `json:"leaderboard"`
}

type Toast struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type PingEvent struct {
	From string `json:"from"`
	Kind string `json:"kind"`
	At   int64  `json:"at"`
}
