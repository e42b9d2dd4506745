package models

import (
	"strings"
	"time"
)

// Word is a venn pool entry. Draws prefer words whose LastUsed falls outside
// the trailing reuse window; assignment stamps LastUsed on every drawn word.
type Word struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Text      string    `json:"text" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	LastUsed  time.Time `json:"last_used" gorm:"index"`
}

// WordID derives the row key from the word text, matching how imported and
// usage-stamped words are stored.
func WordID(text string) string {
	return strings.ReplaceAll(strings.ToLower(text), " ", "-")
}
