package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/promptloom/backend/internal/models"
)

type CreationRepo struct {
	pool *pgxpool.Pool
}

func NewCreationRepo(pool *pgxpool.Pool) *CreationRepo {
	return &CreationRepo{pool: pool}
}

func (r *CreationRepo) Create(ctx context.Context, c *models.Creation) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO creations (id, user_id, prompt, generated_text, generated_image_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, c.ID, c.UserID, c.Prompt, c.GeneratedText, c.GeneratedImageURL).Scan(&c.CreatedAt)
}

// ListByUserID returns the user's creations newest-first. limit <= 0 means
// no limit.
func (r *CreationRepo) ListByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]*models.Creation, error) {
	query := `
		SELECT id, user_id, prompt, generated_text, generated_image_url, created_at
		FROM creations WHERE user_id = $1 ORDER BY created_at DESC`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []*models.Creation{}
	for rows.Next() {
		var c models.Creation
		if err := rows.Scan(&c.ID, &c.UserID, &c.Prompt, &c.GeneratedText, &c.GeneratedImageURL, &c.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}
