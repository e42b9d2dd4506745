package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"partyhub/apperr"
	"partyhub/models"
)

func newCharadesFixture() (*CharadesService, *fakePhrases, *fakeClock) {
	phrases := &fakePhrases{}
	clock := newFakeClock()
	svc := NewCharadesService(newFakeCharadesStore(), phrases, NewMemorySessions())
	svc.now = clock.Now
	svc.pickTeam = func() models.Team { return models.TeamA }
	return svc, phrases, clock
}

// seedCharadesGame creates a game with two players per team and returns the
// game id and each player's session keyed by name.
func seedCharadesGame(t *testing.T, svc *CharadesService) (string, map[string]Session) {
	t.Helper()
	ctx := context.Background()

	game, err := svc.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	sessions := map[string]Session{}
	for _, p := range []struct {
		name string
		team models.Team
	}{
		{"Alice", models.TeamA},
		{"Bob", models.TeamA},
		{"Carol", models.TeamB},
		{"Dan", models.TeamB},
	} {
		res, err := svc.Join(ctx, game.ID, p.name, p.team)
		if err != nil {
			t.Fatalf("join %s: %v", p.name, err)
		}
		sessions[p.name] = Session{PlayerID: res.PlayerID, GameID: game.ID}
	}
	return game.ID, sessions
}

func TestCharadesJoinIsIdempotentPerNameAndTeam(t *testing.T) {
	svc, _, _ := newCharadesFixture()
	ctx := context.Background()

	game, err := svc.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	first, err := svc.Join(ctx, game.ID, "Alice", models.TeamA)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if first.Rejoined {
		t.Error("first join reported rejoined")
	}

	again, err := svc.Join(ctx, game.ID, "Alice", models.TeamA)
	if err != nil {
		t.Fatalf("rejoin: %v", err)
	}
	if !again.Rejoined {
		t.Error("second join with same name and team did not report rejoined")
	}
	if again.PlayerID != first.PlayerID {
		t.Errorf("rejoin got player %s, want %s", again.PlayerID, first.PlayerID)
	}
	if again.SessionToken == first.SessionToken {
		t.Error("rejoin reused the old session token")
	}

	// Same name on the other team is a different player.
	other, err := svc.Join(ctx, game.ID, "Alice", models.TeamB)
	if err != nil {
		t.Fatalf("join other team: %v", err)
	}
	if other.PlayerID == first.PlayerID {
		t.Error("same name on the other team reused the player id")
	}

	doc, err := svc.Get(ctx, game.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if doc.PlayerCount() != 2 {
		t.Errorf("roster has %d players, want 2", doc.PlayerCount())
	}
}

func TestCharadesJoinValidation(t *testing.T) {
	svc, _, _ := newCharadesFixture()
	ctx := context.Background()

	game, _ := svc.Create(ctx)

	if _, err := svc.Join(ctx, game.ID, "", models.TeamA); !errors.Is(err, apperr.ErrInvalidState) {
		t.Errorf("empty name: got %v, want invalid state", err)
	}
	if _, err := svc.Join(ctx, game.ID, "Alice", models.Team("C")); !errors.Is(err, apperr.ErrInvalidState) {
		t.Errorf("bad team: got %v, want invalid state", err)
	}
	if _, err := svc.Join(ctx, "missing", "Alice", models.TeamA); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("unknown game: got %v, want not found", err)
	}
}

func TestCharadesRosterFreezesOnStart(t *testing.T) {
	svc, _, _ := newCharadesFixture()
	ctx := context.Background()

	gameID, _ := seedCharadesGame(t, svc)
	if _, err := svc.Start(ctx, gameID); err != nil {
		t.Fatalf("start: %v", err)
	}

	if _, err := svc.Join(ctx, gameID, "Eve", models.TeamA); !errors.Is(err, apperr.ErrInvalidState) {
		t.Errorf("new join after start: got %v, want invalid state", err)
	}

	// Existing players can still rejoin for a fresh token.
	res, err := svc.Join(ctx, gameID, "Alice", models.TeamA)
	if err != nil {
		t.Fatalf("rejoin after start: %v", err)
	}
	if !res.Rejoined {
		t.Error("rejoin after start did not report rejoined")
	}
}

func TestCharadesStartValidation(t *testing.T) {
	svc, _, _ := newCharadesFixture()
	ctx := context.Background()

	game, _ := svc.Create(ctx)
	if _, err := svc.Start(ctx, game.ID); !errors.Is(err, apperr.ErrInvalidState) {
		t.Errorf("empty game: got %v, want invalid state", err)
	}

	// Four players but all on one team.
	for _, name := range []string{"Alice", "Bob", "Carol", "Dan"} {
		if _, err := svc.Join(ctx, game.ID, name, models.TeamA); err != nil {
			t.Fatalf("join %s: %v", name, err)
		}
	}
	if _, err := svc.Start(ctx, game.ID); !errors.Is(err, apperr.ErrInvalidState) {
		t.Errorf("one-sided game: got %v, want invalid state", err)
	}
}

func TestCharadesStartSeatsFirstPlayer(t *testing.T) {
	svc, phrases, clock := newCharadesFixture()
	ctx := context.Background()

	gameID, sessions := seedCharadesGame(t, svc)
	game, err := svc.Start(ctx, gameID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	if game.State != models.StateActive {
		t.Errorf("state is %s, want active", game.State)
	}
	if game.CurrentTeam != models.TeamA {
		t.Errorf("current team is %s, want A", game.CurrentTeam)
	}
	if game.CurrentTurn != sessions["Alice"].PlayerID {
		t.Errorf("current turn is %s, want Alice", game.CurrentTurn)
	}
	if !game.TurnReady {
		t.Error("turn not ready after start")
	}
	if game.CurrentPhrase == "" || game.CurrentWord == "" {
		t.Error("no phrase dealt on start")
	}
	if phrases.draws != 1 {
		t.Errorf("drew %d phrases, want 1", phrases.draws)
	}
	wantDeadline := clock.Now().Add(30 * time.Second)
	if game.TurnEndTime == nil || !game.TurnEndTime.Equal(wantDeadline) {
		t.Errorf("deadline is %v, want %v", game.TurnEndTime, wantDeadline)
	}
	if game.LastPlayerIndex[models.TeamA] != 0 {
		t.Errorf("team A rotation index is %d, want 0", game.LastPlayerIndex[models.TeamA])
	}
	if game.LastPlayerIndex[models.TeamB] != -1 {
		t.Errorf("team B rotation index is %d, want -1", game.LastPlayerIndex[models.TeamB])
	}

	if _, err := svc.Start(ctx, gameID); !errors.Is(err, apperr.ErrInvalidState) {
		t.Errorf("second start: got %v, want invalid state", err)
	}
}

func TestCharadesStartDoesNotDrawWhenNotStartable(t *testing.T) {
	svc, phrases, _ := newCharadesFixture()
	ctx := context.Background()

	game, _ := svc.Create(ctx)
	svc.Join(ctx, game.ID, "Alice", models.TeamA)

	if _, err := svc.Start(ctx, game.ID); !errors.Is(err, apperr.ErrInvalidState) {
		t.Fatalf("start: got %v, want invalid state", err)
	}
	if phrases.draws != 0 {
		t.Errorf("drew %d phrases on a failed start, want 0", phrases.draws)
	}
}

func TestCharadesScorePoints(t *testing.T) {
	svc, phrases, _ := newCharadesFixture()
	ctx := context.Background()

	gameID, sessions := seedCharadesGame(t, svc)
	if _, err := svc.Start(ctx, gameID); err != nil {
		t.Fatalf("start: %v", err)
	}

	res, err := svc.ScorePoints(ctx, sessions["Alice"], 3, models.TeamA)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if res.Expired {
		t.Error("score within the deadline reported expired")
	}
	if res.Scores[models.TeamA] != 3 || res.Scores[models.TeamB] != 0 {
		t.Errorf("scores are %v, want A=3 B=0", res.Scores)
	}
	if res.Phrase == "" {
		t.Error("no fresh phrase after scoring")
	}
	if phrases.draws != 2 {
		t.Errorf("drew %d phrases, want 2 (start + score)", phrases.draws)
	}

	// Steals land on the opposing team from the same session.
	res, err = svc.ScorePoints(ctx, sessions["Alice"], -1, models.TeamB)
	if err != nil {
		t.Fatalf("score opponent: %v", err)
	}
	if res.Scores[models.TeamB] != -1 {
		t.Errorf("team B score is %d, want -1", res.Scores[models.TeamB])
	}
}

func TestCharadesScoreRejectsUnknownPointValues(t *testing.T) {
	svc, _, _ := newCharadesFixture()
	ctx := context.Background()

	gameID, sessions := seedCharadesGame(t, svc)
	svc.Start(ctx, gameID)

	for _, points := range []int{0, 2, 5, -3} {
		if _, err := svc.ScorePoints(ctx, sessions["Alice"], points, models.TeamA); !errors.Is(err, apperr.ErrInvalidState) {
			t.Errorf("points=%d: got %v, want invalid state", points, err)
		}
	}
}

func TestCharadesScoreAfterDeadline(t *testing.T) {
	svc, phrases, clock := newCharadesFixture()
	ctx := context.Background()

	gameID, sessions := seedCharadesGame(t, svc)
	if _, err := svc.Start(ctx, gameID); err != nil {
		t.Fatalf("start: %v", err)
	}

	clock.Advance(31 * time.Second)

	res, err := svc.ScorePoints(ctx, sessions["Alice"], 1, models.TeamA)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if !res.Expired {
		t.Error("score past the deadline did not report expired")
	}
	if res.Scores[models.TeamA] != 1 {
		t.Errorf("expired score delta lost: scores are %v", res.Scores)
	}
	if res.Phrase != "" {
		t.Error("expired score still dealt a phrase")
	}
	if phrases.draws != 1 {
		t.Errorf("drew %d phrases, want 1 (start only)", phrases.draws)
	}
}

func TestCharadesEndTurnRotatesRoundRobin(t *testing.T) {
	svc, _, _ := newCharadesFixture()
	ctx := context.Background()

	gameID, sessions := seedCharadesGame(t, svc)
	if _, err := svc.Start(ctx, gameID); err != nil {
		t.Fatalf("start: %v", err)
	}

	// Starting turn: Alice (team A, index 0). Alternating handoffs walk each
	// team's roster independently and wrap.
	expected := []struct {
		team models.Team
		name string
	}{
		{models.TeamB, "Carol"},
		{models.TeamA, "Bob"},
		{models.TeamB, "Dan"},
		{models.TeamA, "Alice"},
		{models.TeamB, "Carol"},
	}
	for i, want := range expected {
		handoff, err := svc.EndTurn(ctx, sessions["Alice"])
		if err != nil {
			t.Fatalf("end turn %d: %v", i, err)
		}
		if handoff.NextTeam != want.team || handoff.NextPlayerName != want.name {
			t.Errorf("handoff %d went to %s/%s, want %s/%s",
				i, handoff.NextTeam, handoff.NextPlayerName, want.team, want.name)
		}
	}

	game, err := svc.Get(ctx, gameID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if game.TurnReady {
		t.Error("turn still ready after handoff")
	}
	if game.CurrentPhrase != "" || game.TurnEndTime != nil {
		t.Error("turn fields not cleared on handoff")
	}
}

func TestCharadesEndTurnRequiresActiveGame(t *testing.T) {
	svc, _, _ := newCharadesFixture()
	ctx := context.Background()

	_, sessions := seedCharadesGame(t, svc)
	if _, err := svc.EndTurn(ctx, sessions["Alice"]); !errors.Is(err, apperr.ErrInvalidState) {
		t.Errorf("end turn on waiting game: got %v, want invalid state", err)
	}
}

func TestCharadesReadyTurnOnlyForHolder(t *testing.T) {
	svc, _, clock := newCharadesFixture()
	ctx := context.Background()

	gameID, sessions := seedCharadesGame(t, svc)
	if _, err := svc.Start(ctx, gameID); err != nil {
		t.Fatalf("start: %v", err)
	}

	// Hand off to Carol, then have someone else try to ready the turn.
	if _, err := svc.EndTurn(ctx, sessions["Alice"]); err != nil {
		t.Fatalf("end turn: %v", err)
	}
	if _, err := svc.ReadyTurn(ctx, sessions["Bob"]); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("ready by non-holder: got %v, want forbidden", err)
	}

	start, err := svc.ReadyTurn(ctx, sessions["Carol"])
	if err != nil {
		t.Fatalf("ready by holder: %v", err)
	}
	if start.Phrase == "" || start.Word == "" {
		t.Error("ready turn dealt no phrase")
	}
	wantDeadline := clock.Now().Add(30 * time.Second)
	if !start.TurnEndTime.Equal(wantDeadline) {
		t.Errorf("deadline is %v, want %v", start.TurnEndTime, wantDeadline)
	}

	game, _ := svc.Get(ctx, gameID)
	if !game.TurnReady {
		t.Error("turn not ready after acknowledgment")
	}
}

func TestCharadesDrawFailurePropagates(t *testing.T) {
	svc, phrases, _ := newCharadesFixture()
	ctx := context.Background()

	gameID, sessions := seedCharadesGame(t, svc)
	svc.Start(ctx, gameID)

	phrases.empty = true
	if _, err := svc.ScorePoints(ctx, sessions["Alice"], 1, models.TeamA); !errors.Is(err, apperr.ErrResourceExhausted) {
		t.Errorf("score with empty pool: got %v, want resource exhausted", err)
	}
}

// TestCharadesFullGame walks a two-turn game end to end.
func TestCharadesFullGame(t *testing.T) {
	svc, _, clock := newCharadesFixture()
	ctx := context.Background()

	gameID, sessions := seedCharadesGame(t, svc)
	if _, err := svc.Start(ctx, gameID); err != nil {
		t.Fatalf("start: %v", err)
	}

	// Alice's turn: one +3 guess, then the timer runs out mid-guess.
	if _, err := svc.ScorePoints(ctx, sessions["Bob"], 3, models.TeamA); err != nil {
		t.Fatalf("score: %v", err)
	}
	clock.Advance(31 * time.Second)
	res, err := svc.ScorePoints(ctx, sessions["Bob"], 1, models.TeamA)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if !res.Expired {
		t.Fatal("expected the second guess to land after the deadline")
	}

	handoff, err := svc.EndTurn(ctx, sessions["Alice"])
	if err != nil {
		t.Fatalf("end turn: %v", err)
	}
	if handoff.NextTeam != models.TeamB || handoff.NextPlayerName != "Carol" {
		t.Fatalf("handoff went to %s/%s, want B/Carol", handoff.NextTeam, handoff.NextPlayerName)
	}

	if _, err := svc.ReadyTurn(ctx, sessions["Carol"]); err != nil {
		t.Fatalf("ready turn: %v", err)
	}

	// Carol's turn: a steal against team A and a +1 for her own side.
	if _, err := svc.ScorePoints(ctx, sessions["Dan"], -1, models.TeamA); err != nil {
		t.Fatalf("score: %v", err)
	}
	final, err := svc.ScorePoints(ctx, sessions["Dan"], 1, models.TeamB)
	if err != nil {
		t.Fatalf("score: %v", err)
	}

	if final.Scores[models.TeamA] != 3 || final.Scores[models.TeamB] != 1 {
		t.Errorf("final scores are %v, want A=3 B=1", final.Scores)
	}
}
