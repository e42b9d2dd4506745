package services

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"partyhub/apperr"
	"partyhub/models"
)

const (
	// turnDuration is the charades turn timer. The deadline is evaluated
	// lazily on the next scoring call; nothing sweeps expired turns.
	turnDuration = 30 * time.Second

	charadesMinPlayers = 4
)

// CharadesStore is the game-document collaborator for the charades engine.
// *store.CharadesGames satisfies it.
type CharadesStore interface {
	Create(ctx context.Context, g *models.CharadesGame) error
	Get(ctx context.Context, id string) (*models.CharadesGame, error)
	Update(ctx context.Context, id string, mutate func(*models.CharadesGame) error) (*models.CharadesGame, error)
	Waiting(ctx context.Context) ([]*models.CharadesGame, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type CharadesService struct {
	games    CharadesStore
	phrases  PhraseDrawer
	sessions SessionStore
	now      func() time.Time
	pickTeam func() models.Team
}

func NewCharadesService(games CharadesStore, phrases PhraseDrawer, sessions SessionStore) *CharadesService {
	return &CharadesService{
		games:    games,
		phrases:  phrases,
		sessions: sessions,
		now:      time.Now,
		pickTeam: randomTeam,
	}
}

func randomTeam() models.Team {
	if rand.Intn(2) == 0 {
		return models.TeamA
	}
	return models.TeamB
}

type JoinResult struct {
	PlayerID     string `json:"player_id"`
	SessionToken string `json:"session_token"`
	Rejoined     bool   `json:"rejoined,omitempty"`
}

type ScoreResult struct {
	Scores  map[models.Team]int `json:"scores"`
	Expired bool                `json:"expired,omitempty"`
	Phrase  string              `json:"phrase,omitempty"`
	Word    string              `json:"word,omitempty"`
}

type TurnHandoff struct {
	NextTeam       models.Team `json:"next_team"`
	NextPlayer     string      `json:"next_player"`
	NextPlayerName string      `json:"next_player_name"`
}

type TurnStart struct {
	Phrase      string    `json:"phrase"`
	Word        string    `json:"word"`
	TurnEndTime time.Time `json:"turn_end_time"`
}

func (s *CharadesService) Create(ctx context.Context) (*models.CharadesGame, error) {
	game := &models.CharadesGame{
		GameMeta: models.GameMeta{
			ID:        uuid.NewString(),
			State:     models.StateWaiting,
			CreatedAt: s.now().UTC(),
		},
		Scores:          map[models.Team]int{models.TeamA: 0, models.TeamB: 0},
		TeamA:           []string{},
		TeamB:           []string{},
		Players:         map[string]models.CharadesPlayer{},
		LastPlayerIndex: map[models.Team]int{models.TeamA: -1, models.TeamB: -1},
	}
	if err := s.games.Create(ctx, game); err != nil {
		return nil, err
	}
	log.Info().Str("game_id", game.ID).Msg("charades game created")
	return game, nil
}

// Join adds a player to a waiting game and issues a session token. Joining
// with a (name, team) pair already on the roster returns the existing player
// id instead of growing the roster, so reconnects are idempotent.
func (s *CharadesService) Join(ctx context.Context, gameID, playerName string, team models.Team) (*JoinResult, error) {
	if playerName == "" {
		return nil, apperr.InvalidState("player name is required")
	}
	if !team.Valid() {
		return nil, apperr.InvalidState("unknown team %q", team)
	}

	var playerID string
	var rejoined bool
	_, err := s.games.Update(ctx, gameID, func(g *models.CharadesGame) error {
		if id, ok := g.FindPlayer(playerName, team); ok {
			playerID = id
			rejoined = true
			return nil
		}
		if g.State != models.StateWaiting {
			return apperr.InvalidState("game %s is %s, roster is frozen", gameID, g.State)
		}
		playerID = uuid.NewString()
		g.Players[playerID] = models.CharadesPlayer{
			ID:       playerID,
			Name:     playerName,
			Team:     team,
			JoinedAt: s.now().UTC(),
		}
		if team == models.TeamA {
			g.TeamA = append(g.TeamA, playerID)
		} else {
			g.TeamB = append(g.TeamB, playerID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	token := s.sessions.Issue(playerID, gameID)
	log.Info().Str("game_id", gameID).Str("player_id", playerID).Bool("rejoined", rejoined).Msg("charades join")
	return &JoinResult{PlayerID: playerID, SessionToken: token, Rejoined: rejoined}, nil
}

// ListWaiting summarizes joinable games with a live roster count.
func (s *CharadesService) ListWaiting(ctx context.Context) ([]models.GameSummary, error) {
	games, err := s.games.Waiting(ctx)
	if err != nil {
		return nil, err
	}
	summaries := make([]models.GameSummary, 0, len(games))
	for _, g := range games {
		summaries = append(summaries, models.GameSummary{
			GameID:    g.ID,
			CreatedAt: g.CreatedAt,
			Players:   g.PlayerCount(),
			Label:     gameLabel(g.ID, g.PlayerCount()),
		})
	}
	return summaries, nil
}

// Start flips a waiting game to active: picks the starting team uniformly at
// random, seats its first player, hands them a phrase and starts the turn
// timer. This is the single irreversible lobby transition.
func (s *CharadesService) Start(ctx context.Context, gameID string) (*models.CharadesGame, error) {
	current, err := s.games.Get(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if err := startableCharades(current); err != nil {
		return nil, err
	}

	phrase, err := s.phrases.Draw(ctx)
	if err != nil {
		return nil, err
	}
	team := s.pickTeam()

	game, err := s.games.Update(ctx, gameID, func(g *models.CharadesGame) error {
		if err := startableCharades(g); err != nil {
			return err
		}
		deadline := s.now().Add(turnDuration)
		g.State = models.StateActive
		g.CurrentTeam = team
		g.CurrentTurn = g.TeamPlayers(team)[0]
		g.CurrentPhrase = phrase.Text
		g.CurrentWord = phrase.Word
		g.TurnReady = true
		g.TurnEndTime = &deadline
		g.LastPlayerIndex[team] = 0
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("game_id", gameID).Str("team", string(team)).Msg("charades game started")
	return game, nil
}

func startableCharades(g *models.CharadesGame) error {
	if g.State != models.StateWaiting {
		return apperr.InvalidState("game %s is %s, not waiting", g.ID, g.State)
	}
	if g.PlayerCount() < charadesMinPlayers {
		return apperr.InvalidState("need at least %d players, have %d", charadesMinPlayers, g.PlayerCount())
	}
	if len(g.TeamA) == 0 || len(g.TeamB) == 0 {
		return apperr.InvalidState("both teams need at least one player")
	}
	return nil
}

func (s *CharadesService) Get(ctx context.Context, gameID string) (*models.CharadesGame, error) {
	return s.games.Get(ctx, gameID)
}

// ScorePoints applies the delta to the named team unconditionally; any player
// with a session may score for either side. Expiry only gates whether a fresh
// phrase is handed out, never whether the points count.
func (s *CharadesService) ScorePoints(ctx context.Context, sess Session, points int, team models.Team) (*ScoreResult, error) {
	if points != 1 && points != 3 && points != -1 {
		return nil, apperr.InvalidState("points must be 1, 3 or -1, got %d", points)
	}
	if !team.Valid() {
		return nil, apperr.InvalidState("unknown team %q", team)
	}

	var expired bool
	game, err := s.games.Update(ctx, sess.GameID, func(g *models.CharadesGame) error {
		g.Scores[team] += points
		expired = g.TurnEndTime != nil && s.now().After(*g.TurnEndTime)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if expired {
		return &ScoreResult{Scores: game.Scores, Expired: true}, nil
	}

	phrase, err := s.phrases.Draw(ctx)
	if err != nil {
		return nil, err
	}
	game, err = s.games.Update(ctx, sess.GameID, func(g *models.CharadesGame) error {
		g.CurrentPhrase = phrase.Text
		g.CurrentWord = phrase.Word
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ScoreResult{Scores: game.Scores, Phrase: phrase.Text, Word: phrase.Word}, nil
}

// EndTurn rotates control to the opposing team's next round-robin player and
// clears the turn fields. The new holder must call ReadyTurn before a fresh
// deadline starts.
func (s *CharadesService) EndTurn(ctx context.Context, sess Session) (*TurnHandoff, error) {
	game, err := s.games.Update(ctx, sess.GameID, func(g *models.CharadesGame) error {
		if g.State != models.StateActive {
			return apperr.InvalidState("game %s is %s, not active", g.ID, g.State)
		}
		next := g.CurrentTeam.Opponent()
		players := g.TeamPlayers(next)
		if len(players) == 0 {
			return apperr.InvalidState("no players in team %s", next)
		}
		idx := (g.LastPlayerIndex[next] + 1) % len(players)
		g.CurrentTeam = next
		g.CurrentTurn = players[idx]
		g.LastPlayerIndex[next] = idx
		g.TurnReady = false
		g.CurrentPhrase = ""
		g.CurrentWord = ""
		g.TurnEndTime = nil
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &TurnHandoff{
		NextTeam:       game.CurrentTeam,
		NextPlayer:     game.CurrentTurn,
		NextPlayerName: game.Players[game.CurrentTurn].Name,
	}, nil
}

// ReadyTurn is the new holder's acknowledgment after a handoff: it draws
// fresh content and starts the 30-second deadline. Only the player currently
// holding the turn may call it.
func (s *CharadesService) ReadyTurn(ctx context.Context, sess Session) (*TurnStart, error) {
	current, err := s.games.Get(ctx, sess.GameID)
	if err != nil {
		return nil, err
	}
	if current.CurrentTurn != sess.PlayerID {
		return nil, apperr.Forbidden("not your turn")
	}

	phrase, err := s.phrases.Draw(ctx)
	if err != nil {
		return nil, err
	}

	var deadline time.Time
	_, err = s.games.Update(ctx, sess.GameID, func(g *models.CharadesGame) error {
		if g.CurrentTurn != sess.PlayerID {
			return apperr.Forbidden("not your turn")
		}
		deadline = s.now().Add(turnDuration)
		g.TurnReady = true
		g.CurrentPhrase = phrase.Text
		g.CurrentWord = phrase.Word
		g.TurnEndTime = &deadline
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &TurnStart{Phrase: phrase.Text, Word: phrase.Word, TurnEndTime: deadline}, nil
}

// DeleteAll hard-deletes every charades game. Admin surface only.
func (s *CharadesService) DeleteAll(ctx context.Context) (int64, error) {
	return s.games.DeleteAll(ctx)
}

func gameLabel(id string, players int) string {
	short := id
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("Game %s (%d players)", short, players)
}
