package services

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"partyhub/apperr"
	"partyhub/models"
)

const (
	// wordReuseWindow is how long a drawn word is deprioritized before it can
	// come up again.
	wordReuseWindow = 7 * 24 * time.Hour

	// drawBatchSize caps how many candidate words one draw loads.
	drawBatchSize = 100

	// pairRerolls bounds the disjointness re-roll loop per player.
	pairRerolls = 25
)

// fallbackWords keeps small or empty pools playable.
var fallbackWords = []string{
	"Toast", "Grandma", "Divorce", "Snakes", "Coffee", "Unicorn",
	"Pizza", "Beach", "Moon", "Computer", "Zombie", "Chocolate",
}

// WordPairSource is the venn content supplier contract: one disjoint word
// pair per player, usage stamped as a side effect.
type WordPairSource interface {
	PairsForPlayers(ctx context.Context, players []string) (map[string][2]string, error)
}

type WordService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewWordService(db *gorm.DB) *WordService {
	return &WordService{db: db, now: time.Now}
}

// PairsForPlayers assigns one word pair per player such that no word appears
// twice across the round, then stamps usage on every assigned word.
func (s *WordService) PairsForPlayers(ctx context.Context, players []string) (map[string][2]string, error) {
	pairs := make(map[string][2]string, len(players))
	used := make(map[string]bool, 2*len(players))

	for _, player := range players {
		assigned := false
		for attempt := 0; attempt < pairRerolls; attempt++ {
			pair, err := s.drawPair(ctx)
			if err != nil {
				return nil, err
			}
			if pairCollides(pair, used) {
				continue
			}
			pairs[player] = pair
			used[models.WordID(pair[0])] = true
			used[models.WordID(pair[1])] = true
			assigned = true
			break
		}
		if !assigned {
			return nil, apperr.ResourceExhausted("word pool too small for %d disjoint pairs", len(players))
		}
	}

	words := make([]string, 0, 2*len(pairs))
	for _, pair := range pairs {
		words = append(words, pair[0], pair[1])
	}
	if err := s.markUsed(ctx, words); err != nil {
		return nil, err
	}
	return pairs, nil
}

// drawPair returns two distinct words, preferring those unused within the
// reuse window, then the whole pool, then the fallback list.
func (s *WordService) drawPair(ctx context.Context) ([2]string, error) {
	cutoff := s.now().Add(-wordReuseWindow)

	var texts []string
	err := s.db.WithContext(ctx).Model(&models.Word{}).
		Where("last_used < ?", cutoff).
		Limit(drawBatchSize).
		Pluck("text", &texts).Error
	if err != nil {
		return [2]string{}, err
	}

	if len(texts) < 2 {
		texts = texts[:0]
		err = s.db.WithContext(ctx).Model(&models.Word{}).
			Limit(drawBatchSize).
			Pluck("text", &texts).Error
		if err != nil {
			return [2]string{}, err
		}
	}

	if len(texts) < 2 {
		texts = fallbackWords
	}

	return samplePair(texts), nil
}

// markUsed stamps last_used on each word, creating rows for words the pool
// has never seen (fallback words included).
func (s *WordService) markUsed(ctx context.Context, words []string) error {
	now := s.now()
	for _, text := range words {
		word := models.Word{
			ID:        models.WordID(text),
			Text:      text,
			CreatedAt: now,
			LastUsed:  now,
		}
		err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]any{"last_used": now}),
		}).Create(&word).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// Import bulk-loads words, stamped far enough in the past to be immediately
// drawable. Existing words are left untouched.
func (s *WordService) Import(ctx context.Context, words []string) (int, error) {
	now := s.now()
	count := 0
	for _, text := range words {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		word := models.Word{
			ID:        models.WordID(text),
			Text:      text,
			CreatedAt: now,
			LastUsed:  now.Add(-30 * 24 * time.Hour),
		}
		err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
			Create(&word).Error
		if err != nil {
			return count, err
		}
		count++
	}
	log.Info().Int("words", count).Msg("words imported")
	return count, nil
}

// samplePair picks two distinct entries from words, which must have at least
// two elements.
func samplePair(words []string) [2]string {
	i := rand.Intn(len(words))
	j := rand.Intn(len(words) - 1)
	if j >= i {
		j++
	}
	return [2]string{words[i], words[j]}
}

// pairCollides reports whether either word of the pair was already assigned
// this round. Comparison is by derived word id, so "Moon" and "moon" count
// as the same word.
func pairCollides(pair [2]string, used map[string]bool) bool {
	a, b := models.WordID(pair[0]), models.WordID(pair[1])
	return used[a] || used[b] || a == b
}
