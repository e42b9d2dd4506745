package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"partyhub/apperr"
	"partyhub/models"
)

// PhraseDrawer is the charades content supplier contract: each draw returns
// a phrase not yet marked used and marks it used as a side effect.
type PhraseDrawer interface {
	Draw(ctx context.Context) (*models.Phrase, error)
}

type PhraseService struct {
	db *gorm.DB
}

func NewPhraseService(db *gorm.DB) *PhraseService {
	return &PhraseService{db: db}
}

type PhraseImport struct {
	Text string `json:"text" binding:"required"`
	Word string `json:"word"`
}

// Draw picks a random unused phrase and marks it used in the same
// transaction. An empty pool maps to ResourceExhausted.
func (s *PhraseService) Draw(ctx context.Context) (*models.Phrase, error) {
	var phrase models.Phrase
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("used = ?", false).Order("RANDOM()").First(&phrase).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.ResourceExhausted("phrase pool is empty")
			}
			return err
		}
		return tx.Model(&phrase).Update("used", true).Error
	})
	if err != nil {
		return nil, err
	}
	return &phrase, nil
}

// ResetAll clears the used flag on every phrase, returning the pool to its
// full size. Admin surface only.
func (s *PhraseService) ResetAll(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.Phrase{}).
		Where("used = ?", true).
		Update("used", false)
	if res.Error != nil {
		return 0, res.Error
	}
	log.Info().Int64("phrases", res.RowsAffected).Msg("phrase pool reset")
	return res.RowsAffected, nil
}

// Import bulk-loads phrases. Blank texts are skipped; entries without a word
// default it to the first word of the text.
func (s *PhraseService) Import(ctx context.Context, entries []PhraseImport) (int, error) {
	phrases := make([]models.Phrase, 0, len(entries))
	for _, e := range entries {
		text := strings.TrimSpace(e.Text)
		if text == "" {
			continue
		}
		word := strings.TrimSpace(e.Word)
		if word == "" {
			word = strings.Fields(text)[0]
		}
		phrases = append(phrases, models.Phrase{Text: text, Word: word})
	}
	if len(phrases) == 0 {
		return 0, nil
	}
	if err := s.db.WithContext(ctx).CreateInBatches(phrases, 200).Error; err != nil {
		return 0, err
	}
	log.Info().Int("phrases", len(phrases)).Msg("phrases imported")
	return len(phrases), nil
}
