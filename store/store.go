// Package store keeps each game as a single JSON document in Redis, one key
// per game, plus a set per game kind indexing ids still in the waiting state.
//
// Every mutation goes through Update, an optimistic compare-and-set: the key
// is WATCHed, the document decoded, the caller's mutate func applied, the
// version bumped, and the write committed in a MULTI/EXEC that fails if the
// key changed underneath. Phase transitions therefore apply exactly once even
// when two handlers race on the same game.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"partyhub/apperr"
	"partyhub/models"
)

// casRetries bounds how often an Update is retried after losing a race.
const casRetries = 5

// Doc is implemented by game documents via their embedded GameMeta.
type Doc interface {
	Meta() *models.GameMeta
}

// Games stores documents of one game kind. T is the document struct, PT its
// pointer type.
type Games[T any, PT interface {
	Doc
	*T
}] struct {
	rdb    *redis.Client
	prefix string
}

type CharadesGames = Games[models.CharadesGame, *models.CharadesGame]

type VennGames = Games[models.VennGame, *models.VennGame]

func NewCharadesGames(rdb *redis.Client) *CharadesGames {
	return &CharadesGames{rdb: rdb, prefix: "charades"}
}

func NewVennGames(rdb *redis.Client) *VennGames {
	return &VennGames{rdb: rdb, prefix: "venn"}
}

func (s *Games[T, PT]) key(id string) string {
	return s.prefix + ":game:" + id
}

func (s *Games[T, PT]) waitingKey() string {
	return s.prefix + ":waiting"
}

// Create writes a fresh document and indexes it as waiting.
func (s *Games[T, PT]) Create(ctx context.Context, doc PT) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal game %s: %w", doc.Meta().ID, err)
	}
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(doc.Meta().ID), data, 0)
		if doc.Meta().State == models.StateWaiting {
			pipe.SAdd(ctx, s.waitingKey(), doc.Meta().ID)
		}
		return nil
	})
	return err
}

func (s *Games[T, PT]) Get(ctx context.Context, id string) (PT, error) {
	data, err := s.rdb.Get(ctx, s.key(id)).Result()
	if err == redis.Nil {
		return nil, apperr.NotFound("game %s", id)
	}
	if err != nil {
		return nil, err
	}
	var doc T
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return nil, fmt.Errorf("unmarshal game %s: %w", id, err)
	}
	return PT(&doc), nil
}

// Update applies mutate to the current document under a compare-and-set. An
// error from mutate aborts without writing and is returned as-is. On success
// the updated document is returned.
func (s *Games[T, PT]) Update(ctx context.Context, id string, mutate func(PT) error) (PT, error) {
	key := s.key(id)
	var updated PT

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Result()
		if err == redis.Nil {
			return apperr.NotFound("game %s", id)
		}
		if err != nil {
			return err
		}
		var doc T
		if err := json.Unmarshal([]byte(data), &doc); err != nil {
			return fmt.Errorf("unmarshal game %s: %w", id, err)
		}
		pt := PT(&doc)
		wasWaiting := pt.Meta().State == models.StateWaiting
		if err := mutate(pt); err != nil {
			return err
		}
		pt.Meta().Version++
		raw, err := json.Marshal(pt)
		if err != nil {
			return fmt.Errorf("marshal game %s: %w", id, err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, raw, 0)
			if wasWaiting && pt.Meta().State != models.StateWaiting {
				pipe.SRem(ctx, s.waitingKey(), id)
			}
			return nil
		})
		if err == nil {
			updated = pt
		}
		return err
	}

	for i := 0; i < casRetries; i++ {
		err := s.rdb.Watch(ctx, txf, key)
		if err == nil {
			return updated, nil
		}
		if err == redis.TxFailedErr {
			continue
		}
		var zero PT
		return zero, err
	}
	var zero PT
	return zero, fmt.Errorf("update game %s: %w", id, redis.TxFailedErr)
}

// Waiting loads the documents of all games still in the waiting state. Ids
// whose document vanished are dropped from the index on the way through.
func (s *Games[T, PT]) Waiting(ctx context.Context) ([]PT, error) {
	ids, err := s.rdb.SMembers(ctx, s.waitingKey()).Result()
	if err != nil {
		return nil, err
	}
	games := make([]PT, 0, len(ids))
	for _, id := range ids {
		doc, err := s.Get(ctx, id)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				s.rdb.SRem(ctx, s.waitingKey(), id)
				continue
			}
			return nil, err
		}
		if doc.Meta().State != models.StateWaiting {
			s.rdb.SRem(ctx, s.waitingKey(), id)
			continue
		}
		games = append(games, doc)
	}
	return games, nil
}

// DeleteAll removes every document and index of this game kind.
func (s *Games[T, PT]) DeleteAll(ctx context.Context) (int64, error) {
	var deleted int64
	iter := s.rdb.Scan(ctx, 0, s.prefix+":*", 100).Iterator()
	for iter.Next(ctx) {
		n, err := s.rdb.Del(ctx, iter.Val()).Result()
		if err != nil {
			return deleted, err
		}
		deleted += n
	}
	return deleted, iter.Err()
}
