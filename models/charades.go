package models

import "time"

type Team string

const (
	TeamA Team = "A"
	TeamB Team = "B"
)

func (t Team) Valid() bool {
	return t == TeamA || t == TeamB
}

func (t Team) Opponent() Team {
	if t == TeamA {
		return TeamB
	}
	return TeamA
}

type CharadesPlayer struct {
	ID       string    `json:"player_id"`
	Name     string    `json:"name"`
	Team     Team      `json:"team"`
	JoinedAt time.Time `json:"joined_at"`
}

// CharadesGame is the per-game document for the charades variant. The turn
// fields (CurrentPhrase, CurrentWord, TurnEndTime) are set only while a turn
// is running and cleared on handoff.
type CharadesGame struct {
	GameMeta

	Scores  map[Team]int              `json:"scores"`
	TeamA   []string                  `json:"team_a"`
	TeamB   []string                  `json:"team_b"`
	Players map[string]CharadesPlayer `json:"roster"`

	CurrentTeam   Team       `json:"current_team,omitempty"`
	CurrentTurn   string     `json:"current_turn,omitempty"`
	CurrentPhrase string     `json:"current_phrase,omitempty"`
	CurrentWord   string     `json:"current_word,omitempty"`
	TurnReady     bool       `json:"turn_ready"`
	TurnEndTime   *time.Time `json:"turn_end_time,omitempty"`

	// LastPlayerIndex holds each team's round-robin position, -1 before the
	// team has taken a turn.
	LastPlayerIndex map[Team]int `json:"last_player_index"`
}

func (g *CharadesGame) TeamPlayers(t Team) []string {
	if t == TeamA {
		return g.TeamA
	}
	return g.TeamB
}

func (g *CharadesGame) PlayerCount() int {
	return len(g.TeamA) + len(g.TeamB)
}

// FindPlayer returns the id of the player with the given name and team, if
// one already joined. Joins de-dupe on this pair.
func (g *CharadesGame) FindPlayer(name string, team Team) (string, bool) {
	for id, p := range g.Players {
		if p.Name == name && p.Team == team {
			return id, true
		}
	}
	return "", false
}
