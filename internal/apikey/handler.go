package apikey

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/promptloom/backend/internal/auth"
)

type ManageRequest struct {
	Action string `json:"action"`
	APIKey string `json:"apiKey"`
}

type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type Handler struct {
	svc     *Service
	authSvc auth.Service
	log     *slog.Logger
}

func NewHandler(svc *Service, authSvc auth.Service, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{svc: svc, authSvc: authSvc, log: log}
}

// Manage handles POST /api/v1/api-key with {action: "save"|"delete"}.
func (h *Handler) Manage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, err := h.userIDFromRequest(r)
	if err != nil {
		writeFailure(w, "Unauthorized")
		return
	}

	var req ManageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, `Invalid action. Use "save" or "delete".`)
		return
	}

	switch req.Action {
	case "save":
		if err := h.svc.Save(r.Context(), userID, req.APIKey); err != nil {
			if errors.Is(err, ErrInvalidKey) {
				writeFailure(w, "A valid OpenAI API key is required.")
				return
			}
			h.log.Error("save api key failed", "error", err)
			writeFailure(w, "Failed to save API key.")
			return
		}
		writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "API key saved successfully"})
	case "delete":
		if err := h.svc.Delete(r.Context(), userID); err != nil {
			h.log.Error("delete api key failed", "error", err)
			writeFailure(w, "Failed to delete API key.")
			return
		}
		writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "API key deleted successfully"})
	default:
		writeFailure(w, `Invalid action. Use "save" or "delete".`)
	}
}

func (h *Handler) userIDFromRequest(r *http.Request) (uuid.UUID, error) {
	authz := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(authz, prefix) {
		return uuid.Nil, fmt.Errorf("missing authorization")
	}
	token := strings.TrimSpace(authz[len(prefix):])
	if token == "" {
		return uuid.Nil, fmt.Errorf("empty token")
	}
	return h.authSvc.ValidateToken(r.Context(), token)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeFailure(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Success: false, Error: msg})
}
