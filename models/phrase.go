package models

import (
	"time"

	"gorm.io/gorm"
)

// Phrase is a single-use charades phrase. Drawing a phrase marks it used;
// only an admin reset makes it drawable again.
type Phrase struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Text      string         `json:"text" gorm:"not null"`
	Word      string         `json:"word" gorm:"not null"`
	Used      bool           `json:"used" gorm:"not null;default:false;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}
