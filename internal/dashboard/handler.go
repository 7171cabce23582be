package dashboard

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/promptloom/backend/internal/middleware"
	"github.com/promptloom/backend/internal/models"
	"github.com/promptloom/backend/internal/quota"
)

// UserReader loads user profiles.
type UserReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// CreationLister lists a user's creations newest-first.
type CreationLister interface {
	ListByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]*models.Creation, error)
}

// Handler serves the read-only dashboard endpoints. Auth is provided by the
// JWT middleware upstream.
type Handler struct {
	users     UserReader
	creations CreationLister
	now       func() time.Time
	log       *slog.Logger
}

func NewHandler(users UserReader, creations CreationLister, now func() time.Time, log *slog.Logger) *Handler {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = slog.Default()
	}
	return &Handler{users: users, creations: creations, now: now, log: log}
}

// GET /api/v1/me
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromCtx(r.Context())
	if userID == uuid.Nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	u, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		h.log.Error("get user failed", "error", err)
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}
	today := h.now().UTC().Format(quota.DateLayout)
	writeJSON(w, http.StatusOK, map[string]any{
		"id":                     u.ID,
		"email":                  u.Email,
		"display_name":           u.DisplayName,
		"daily_generation_count": u.DailyGenerationCount,
		"last_generation_date":   u.LastGenerationDate,
		"is_pro_member":          u.IsProMember,
		"remaining_today":        quota.RemainingToday(u, today),
		"has_api_key":            u.APIKeyEncrypted != nil && *u.APIKeyEncrypted != "",
		"created_at":             u.CreatedAt,
	})
}

// GET /api/v1/creations?limit=N
func (h *Handler) ListCreations(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromCtx(r.Context())
	if userID == uuid.Nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}
	list, err := h.creations.ListByUserID(r.Context(), userID, limit)
	if err != nil {
		h.log.Error("list creations failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
