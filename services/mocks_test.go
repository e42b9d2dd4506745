package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"partyhub/apperr"
	"partyhub/models"
)

// The fakes below stand in for Redis and Postgres. Documents round-trip
// through JSON on every access, matching the real store, so a mutate func
// never aliases stored state.

type fakeCharadesStore struct {
	docs map[string][]byte
}

func newFakeCharadesStore() *fakeCharadesStore {
	return &fakeCharadesStore{docs: map[string][]byte{}}
}

func (f *fakeCharadesStore) Create(_ context.Context, g *models.CharadesGame) error {
	data, err := json.Marshal(g)
	if err != nil {
		return err
	}
	f.docs[g.ID] = data
	return nil
}

func (f *fakeCharadesStore) Get(_ context.Context, id string) (*models.CharadesGame, error) {
	data, ok := f.docs[id]
	if !ok {
		return nil, apperr.NotFound("game %s", id)
	}
	var g models.CharadesGame
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

func (f *fakeCharadesStore) Update(ctx context.Context, id string, mutate func(*models.CharadesGame) error) (*models.CharadesGame, error) {
	g, err := f.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := mutate(g); err != nil {
		return nil, err
	}
	g.Version++
	data, err := json.Marshal(g)
	if err != nil {
		return nil, err
	}
	f.docs[id] = data
	return g, nil
}

func (f *fakeCharadesStore) Waiting(ctx context.Context) ([]*models.CharadesGame, error) {
	var games []*models.CharadesGame
	for id := range f.docs {
		g, err := f.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if g.State == models.StateWaiting {
			games = append(games, g)
		}
	}
	return games, nil
}

func (f *fakeCharadesStore) DeleteAll(_ context.Context) (int64, error) {
	n := int64(len(f.docs))
	f.docs = map[string][]byte{}
	return n, nil
}

type fakeVennStore struct {
	docs map[string][]byte
}

func newFakeVennStore() *fakeVennStore {
	return &fakeVennStore{docs: map[string][]byte{}}
}

func (f *fakeVennStore) Create(_ context.Context, g *models.VennGame) error {
	data, err := json.Marshal(g)
	if err != nil {
		return err
	}
	f.docs[g.ID] = data
	return nil
}

func (f *fakeVennStore) Get(_ context.Context, id string) (*models.VennGame, error) {
	data, ok := f.docs[id]
	if !ok {
		return nil, apperr.NotFound("game %s", id)
	}
	var g models.VennGame
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

func (f *fakeVennStore) Update(ctx context.Context, id string, mutate func(*models.VennGame) error) (*models.VennGame, error) {
	g, err := f.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := mutate(g); err != nil {
		return nil, err
	}
	g.Version++
	data, err := json.Marshal(g)
	if err != nil {
		return nil, err
	}
	f.docs[id] = data
	return g, nil
}

func (f *fakeVennStore) Waiting(ctx context.Context) ([]*models.VennGame, error) {
	var games []*models.VennGame
	for id := range f.docs {
		g, err := f.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if g.State == models.StateWaiting {
			games = append(games, g)
		}
	}
	return games, nil
}

func (f *fakeVennStore) DeleteAll(_ context.Context) (int64, error) {
	n := int64(len(f.docs))
	f.docs = map[string][]byte{}
	return n, nil
}

// fakePhrases hands out numbered phrases and counts draws, so tests can
// assert exactly when content is consumed.
type fakePhrases struct {
	draws int
	empty bool
}

func (f *fakePhrases) Draw(_ context.Context) (*models.Phrase, error) {
	if f.empty {
		return nil, apperr.ResourceExhausted("phrase pool is empty")
	}
	f.draws++
	return &models.Phrase{
		Text: fmt.Sprintf("phrase %d", f.draws),
		Word: fmt.Sprintf("word %d", f.draws),
	}, nil
}

// fakeWords assigns deterministic disjoint pairs, numbered by round so
// next-round tests can see the pairs change.
type fakeWords struct {
	rounds int
}

func (f *fakeWords) PairsForPlayers(_ context.Context, players []string) (map[string][2]string, error) {
	f.rounds++
	pairs := make(map[string][2]string, len(players))
	for i, p := range players {
		pairs[p] = [2]string{
			fmt.Sprintf("left-%d-%d", f.rounds, i),
			fmt.Sprintf("right-%d-%d", f.rounds, i),
		}
	}
	return pairs, nil
}

type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.t = c.t.Add(d)
}
