package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/promptloom/backend/internal/models"
)

// ErrAllowanceExhausted is returned by CommitGeneration when the conditional
// increment matched no row: another request consumed the last slot between
// the admission check and the commit.
var ErrAllowanceExhausted = errors.New("daily allowance exhausted")

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

// Create inserts a new user profile. Conflict-safe on identity: if the row
// already exists the insert is a no-op and the stored row is left untouched.
func (r *UserRepo) Create(ctx context.Context, u *models.User) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO users (id, email, display_name, password_hash, daily_generation_count, last_generation_date, is_pro_member)
		VALUES ($1, $2, $3, $4, 0, NULL, FALSE)
		ON CONFLICT (id) DO NOTHING
		RETURNING created_at
	`, u.ID, u.Email, u.DisplayName, u.PasswordHash).Scan(&u.CreatedAt)
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.scanOne(r.pool.QueryRow(ctx, `
		SELECT id, email, display_name, password_hash, daily_generation_count, last_generation_date, is_pro_member, api_key_encrypted, created_at
		FROM users WHERE id = $1
	`, id))
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.scanOne(r.pool.QueryRow(ctx, `
		SELECT id, email, display_name, password_hash, daily_generation_count, last_generation_date, is_pro_member, api_key_encrypted, created_at
		FROM users WHERE email = $1
	`, email))
}

func (r *UserRepo) scanOne(row pgx.Row) (*models.User, error) {
	var u models.User
	var lastDate *string
	err := row.Scan(&u.ID, &u.Email, &u.DisplayName, &u.PasswordHash, &u.DailyGenerationCount, &lastDate, &u.IsProMember, &u.APIKeyEncrypted, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	if lastDate != nil {
		u.LastGenerationDate = *lastDate
	}
	return &u, nil
}

// SetEncryptedAPIKey overwrites the stored credential blob.
func (r *UserRepo) SetEncryptedAPIKey(ctx context.Context, id uuid.UUID, blob string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE users SET api_key_encrypted = $2 WHERE id = $1
	`, id, blob)
	return err
}

// ClearEncryptedAPIKey nulls the stored credential blob. Idempotent.
func (r *UserRepo) ClearEncryptedAPIKey(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE users SET api_key_encrypted = NULL WHERE id = $1
	`, id)
	return err
}

// CommitGeneration charges one generation as a single atomic conditional
// update: the counter rolls over when the stored date is not today, and the
// increment is refused at the ceiling unless the user is a pro member. Two
// concurrent requests racing past the admission check therefore cannot both
// commit the last slot; the loser gets ErrAllowanceExhausted.
func (r *UserRepo) CommitGeneration(ctx context.Context, id uuid.UUID, today string, allowance int) (newCount int, err error) {
	err = r.pool.QueryRow(ctx, `
		UPDATE users
		SET daily_generation_count = CASE WHEN last_generation_date = $2 THEN daily_generation_count + 1 ELSE 1 END,
		    last_generation_date = $2
		WHERE id = $1
		  AND (is_pro_member
		       OR last_generation_date IS DISTINCT FROM $2
		       OR daily_generation_count < $3)
		RETURNING daily_generation_count
	`, id, today, allowance).Scan(&newCount)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrAllowanceExhausted
	}
	return newCount, err
}
