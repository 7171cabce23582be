package models

import (
	"time"

	"github.com/google/uuid"
)

// Creation is one successful generation's output. Insert-only: rows are
// never updated or deleted.
type Creation struct {
	ID                uuid.UUID `json:"id"`
	UserID            uuid.UUID `json:"user_id"`
	Prompt            string    `json:"prompt"`
	GeneratedText     string    `json:"generated_text"`
	GeneratedImageURL string    `json:"generated_image_url"`
	CreatedAt         time.Time `json:"created_at"`
}
