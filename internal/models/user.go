package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID                   uuid.UUID `json:"id"`
	Email                string    `json:"email"`
	DisplayName          string    `json:"display_name"`
	PasswordHash         string    `json:"-"`
	DailyGenerationCount int       `json:"daily_generation_count"`
	// LastGenerationDate is a UTC calendar date (YYYY-MM-DD). Empty means the
	// user has never generated; quota logic treats that like a new day.
	LastGenerationDate string    `json:"last_generation_date"`
	IsProMember        bool      `json:"is_pro_member"`
	APIKeyEncrypted    *string   `json:"-"`
	CreatedAt          time.Time `json:"created_at"`
}
