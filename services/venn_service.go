package services

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"partyhub/apperr"
	"partyhub/models"
)

const (
	vennMinPlayers = 3

	// submissionTarget is how many incoming submissions each player needs
	// before voting opens. Games smaller than target+1 players cap it at
	// roster size minus one, since each other player may submit only once
	// per target.
	submissionTarget = 3
)

// VennStore is the game-document collaborator for the venn engine.
// *store.VennGames satisfies it.
type VennStore interface {
	Create(ctx context.Context, g *models.VennGame) error
	Get(ctx context.Context, id string) (*models.VennGame, error)
	Update(ctx context.Context, id string, mutate func(*models.VennGame) error) (*models.VennGame, error)
	Waiting(ctx context.Context) ([]*models.VennGame, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type VennService struct {
	games    VennStore
	words    WordPairSource
	sessions SessionStore
	now      func() time.Time
}

func NewVennService(games VennStore, words WordPairSource, sessions SessionStore) *VennService {
	return &VennService{
		games:    games,
		words:    words,
		sessions: sessions,
		now:      time.Now,
	}
}

type SubmissionView struct {
	ID     string `json:"submission_id"`
	Phrase string `json:"phrase"`
}

func (s *VennService) Create(ctx context.Context) (*models.VennGame, error) {
	game := &models.VennGame{
		GameMeta: models.GameMeta{
			ID:        uuid.NewString(),
			State:     models.StateWaiting,
			CreatedAt: s.now().UTC(),
		},
		Players:     []string{},
		PlayerNames: map[string]string{},
		Scores:      map[string]int{},
	}
	if err := s.games.Create(ctx, game); err != nil {
		return nil, err
	}
	log.Info().Str("game_id", game.ID).Msg("venn game created")
	return game, nil
}

// Join always creates a new player; there is no de-dup in this variant.
func (s *VennService) Join(ctx context.Context, gameID, playerName string) (*JoinResult, error) {
	if playerName == "" {
		return nil, apperr.InvalidState("player name is required")
	}

	playerID := uuid.NewString()
	_, err := s.games.Update(ctx, gameID, func(g *models.VennGame) error {
		if g.State != models.StateWaiting {
			return apperr.InvalidState("game %s is %s, roster is frozen", gameID, g.State)
		}
		g.Players = append(g.Players, playerID)
		g.PlayerNames[playerID] = playerName
		g.Scores[playerID] = 0
		return nil
	})
	if err != nil {
		return nil, err
	}

	token := s.sessions.Issue(playerID, gameID)
	log.Info().Str("game_id", gameID).Str("player_id", playerID).Msg("venn join")
	return &JoinResult{PlayerID: playerID, SessionToken: token}, nil
}

func (s *VennService) ListWaiting(ctx context.Context) ([]models.GameSummary, error) {
	games, err := s.games.Waiting(ctx)
	if err != nil {
		return nil, err
	}
	summaries := make([]models.GameSummary, 0, len(games))
	for _, g := range games {
		summaries = append(summaries, models.GameSummary{
			GameID:    g.ID,
			CreatedAt: g.CreatedAt,
			Players:   len(g.Players),
			Label:     gameLabel(g.ID, len(g.Players)),
		})
	}
	return summaries, nil
}

func (s *VennService) Get(ctx context.Context, gameID string) (*models.VennGame, error) {
	return s.games.Get(ctx, gameID)
}

// Start assigns round-one word pairs and opens the submitting phase.
func (s *VennService) Start(ctx context.Context, gameID string) (*models.VennGame, error) {
	current, err := s.games.Get(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if current.State != models.StateWaiting {
		return nil, apperr.InvalidState("game %s is %s, not waiting", gameID, current.State)
	}
	if len(current.Players) < vennMinPlayers {
		return nil, apperr.InvalidState("need at least %d players, have %d", vennMinPlayers, len(current.Players))
	}

	pairs, err := s.words.PairsForPlayers(ctx, current.Players)
	if err != nil {
		return nil, err
	}

	game, err := s.games.Update(ctx, gameID, func(g *models.VennGame) error {
		if g.State != models.StateWaiting {
			return apperr.InvalidState("game %s is %s, not waiting", gameID, g.State)
		}
		if len(g.Players) != len(pairs) {
			return apperr.Conflict("roster changed while starting, retry")
		}
		g.State = models.StateActive
		g.Round = 1
		g.WordPairs = pairs
		g.Submissions = map[string]models.Submission{}
		g.Votes = map[string]string{}
		g.RoundStatus = models.RoundSubmitting
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("game_id", gameID).Int("players", len(game.Players)).Msg("venn game started")
	return game, nil
}

func (s *VennService) submissionThreshold(players int) int {
	if players-1 < submissionTarget {
		return players - 1
	}
	return submissionTarget
}

// Submit records one phrase guessed at the target's word pair. Submitting to
// yourself or twice to the same target is a Conflict. The phase advances to
// voting the moment every player has enough incoming submissions.
func (s *VennService) Submit(ctx context.Context, sess Session, targetPlayerID, phrase string) (*models.VennGame, error) {
	if targetPlayerID == "" || phrase == "" {
		return nil, apperr.InvalidState("target player and phrase are required")
	}

	game, err := s.games.Update(ctx, sess.GameID, func(g *models.VennGame) error {
		if g.State != models.StateActive || g.RoundStatus != models.RoundSubmitting {
			return apperr.InvalidState("cannot submit a phrase at this time")
		}
		if targetPlayerID == sess.PlayerID {
			return apperr.Conflict("cannot submit a phrase for your own word pair")
		}
		if !g.HasPlayer(targetPlayerID) {
			return apperr.NotFound("player %s", targetPlayerID)
		}
		for _, sub := range g.Submissions {
			if sub.FromPlayer == sess.PlayerID && sub.ToPlayer == targetPlayerID {
				return apperr.Conflict("already submitted a phrase for this player")
			}
		}
		id := uuid.NewString()
		g.Submissions[id] = models.Submission{
			ID:         id,
			FromPlayer: sess.PlayerID,
			ToPlayer:   targetPlayerID,
			Phrase:     phrase,
			CreatedAt:  s.now().UTC(),
		}
		if g.AllSubmissionsIn(s.submissionThreshold(len(g.Players))) {
			g.RoundStatus = models.RoundVoting
			log.Info().Str("game_id", g.ID).Int("round", g.Round).Msg("venn round advanced to voting")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return game, nil
}

// SubmissionsFor lists the phrases targeting the caller's word pair, oldest
// first. Submitters are never revealed.
func (s *VennService) SubmissionsFor(ctx context.Context, sess Session) ([]SubmissionView, error) {
	game, err := s.games.Get(ctx, sess.GameID)
	if err != nil {
		return nil, err
	}

	subs := make([]models.Submission, 0, len(game.Submissions))
	for _, sub := range game.Submissions {
		if sub.ToPlayer == sess.PlayerID {
			subs = append(subs, sub)
		}
	}
	sort.Slice(subs, func(i, j int) bool {
		if subs[i].CreatedAt.Equal(subs[j].CreatedAt) {
			return subs[i].ID < subs[j].ID
		}
		return subs[i].CreatedAt.Before(subs[j].CreatedAt)
	})

	views := make([]SubmissionView, len(subs))
	for i, sub := range subs {
		views[i] = SubmissionView{ID: sub.ID, Phrase: sub.Phrase}
	}
	return views, nil
}

// Vote casts the caller's single vote for a submission. Voting for your own
// submission is Forbidden and a second vote is a Conflict. When the last
// player votes, scoring and the flip to finished happen in the same
// compare-and-set, so points apply exactly once.
func (s *VennService) Vote(ctx context.Context, sess Session, submissionID string) (*models.VennGame, error) {
	if submissionID == "" {
		return nil, apperr.InvalidState("submission id is required")
	}

	game, err := s.games.Update(ctx, sess.GameID, func(g *models.VennGame) error {
		if g.State != models.StateActive || g.RoundStatus != models.RoundVoting {
			return apperr.InvalidState("cannot vote at this time")
		}
		sub, ok := g.Submissions[submissionID]
		if !ok {
			return apperr.NotFound("submission %s", submissionID)
		}
		if sub.FromPlayer == sess.PlayerID {
			return apperr.Forbidden("cannot vote for your own submission")
		}
		if _, voted := g.Votes[sess.PlayerID]; voted {
			return apperr.Conflict("already voted this round")
		}
		g.Votes[sess.PlayerID] = submissionID
		sub.Voted = true
		g.Submissions[submissionID] = sub

		if g.AllVotesIn() {
			for _, votedID := range g.Votes {
				if voted, ok := g.Submissions[votedID]; ok {
					g.Scores[voted.FromPlayer]++
				}
			}
			g.RoundStatus = models.RoundFinished
			log.Info().Str("game_id", g.ID).Int("round", g.Round).Msg("venn round finished")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return game, nil
}

// StartNextRound begins a fresh round: new disjoint word pairs, cleared
// submissions and votes, incremented round counter. Scores carry over.
func (s *VennService) StartNextRound(ctx context.Context, sess Session) (*models.VennGame, error) {
	current, err := s.games.Get(ctx, sess.GameID)
	if err != nil {
		return nil, err
	}
	if current.State != models.StateActive || current.RoundStatus != models.RoundFinished {
		return nil, apperr.InvalidState("cannot start the next round at this time")
	}

	pairs, err := s.words.PairsForPlayers(ctx, current.Players)
	if err != nil {
		return nil, err
	}

	game, err := s.games.Update(ctx, sess.GameID, func(g *models.VennGame) error {
		if g.State != models.StateActive || g.RoundStatus != models.RoundFinished {
			return apperr.InvalidState("cannot start the next round at this time")
		}
		g.Round++
		g.WordPairs = pairs
		g.Submissions = map[string]models.Submission{}
		g.Votes = map[string]string{}
		g.RoundStatus = models.RoundSubmitting
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("game_id", game.ID).Int("round", game.Round).Msg("venn next round started")
	return game, nil
}

// DeleteAll hard-deletes every venn game. Admin surface only.
func (s *VennService) DeleteAll(ctx context.Context) (int64, error) {
	return s.games.DeleteAll(ctx)
}
