package models

import "time"

type RoundStatus string

const (
	RoundSubmitting RoundStatus = "submitting"
	RoundVoting     RoundStatus = "voting"
	RoundFinished   RoundStatus = "finished"
)

type Submission struct {
	ID         string    `json:"submission_id"`
	FromPlayer string    `json:"from_player"`
	ToPlayer   string    `json:"to_player"`
	Phrase     string    `json:"phrase"`
	CreatedAt  time.Time `json:"created_at"`
	Voted      bool      `json:"voted"`
}

// VennGame is the per-game document for the word-pair voting variant. Word
// pairs, submissions and votes belong to the current round and are replaced
// wholesale when the next round starts.
type VennGame struct {
	GameMeta

	Players     []string          `json:"players"`
	PlayerNames map[string]string `json:"player_names"`
	Scores      map[string]int    `json:"scores"`

	Round       int                   `json:"round"`
	RoundStatus RoundStatus           `json:"round_status,omitempty"`
	WordPairs   map[string][2]string  `json:"word_pairs,omitempty"`
	Submissions map[string]Submission `json:"submissions,omitempty"`
	Votes       map[string]string     `json:"votes,omitempty"`
}

func (g *VennGame) HasPlayer(id string) bool {
	for _, p := range g.Players {
		if p == id {
			return true
		}
	}
	return false
}

// SubmissionCounts tallies incoming submissions per player.
func (g *VennGame) SubmissionCounts() map[string]int {
	counts := make(map[string]int, len(g.Players))
	for _, p := range g.Players {
		counts[p] = 0
	}
	for _, sub := range g.Submissions {
		if _, ok := counts[sub.ToPlayer]; ok {
			counts[sub.ToPlayer]++
		}
	}
	return counts
}

// AllSubmissionsIn reports whether every player has received at least min
// incoming submissions.
func (g *VennGame) AllSubmissionsIn(min int) bool {
	for _, count := range g.SubmissionCounts() {
		if count < min {
			return false
		}
	}
	return true
}

// AllVotesIn reports whether every listed player has cast a vote.
func (g *VennGame) AllVotesIn() bool {
	for _, p := range g.Players {
		if _, ok := g.Votes[p]; !ok {
			return false
		}
	}
	return true
}
