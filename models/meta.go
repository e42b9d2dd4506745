package models

import "time"

type GameState string

const (
	StateWaiting  GameState = "waiting"
	StateActive   GameState = "active"
	StateFinished GameState = "finished"
)

// GameMeta is the part of a game document shared by both game kinds. The
// store bumps Version on every successful compare-and-set write.
type GameMeta struct {
	ID        string    `json:"game_id"`
	State     GameState `json:"state"`
	CreatedAt time.Time `json:"created_at"`
	Version   int64     `json:"version"`
}

func (m *GameMeta) Meta() *GameMeta { return m }

// GameSummary is the lobby-listing view of a waiting game.
type GameSummary struct {
	GameID    string    `json:"game_id"`
	CreatedAt time.Time `json:"created_at"`
	Players   int       `json:"players"`
	Label     string    `json:"label"`
}
