package router

import (
	"net/http"

	"github.com/promptloom/backend/internal/apikey"
	"github.com/promptloom/backend/internal/auth"
	"github.com/promptloom/backend/internal/dashboard"
	"github.com/promptloom/backend/internal/generation"
	"github.com/promptloom/backend/internal/middleware"
)

// New returns an http.Handler serving the API under /api/v1.
func New(
	authHandler *auth.Handler,
	genHandler *generation.Handler,
	apiKeyHandler *apikey.Handler,
	dashHandler *dashboard.Handler,
	validator middleware.TokenValidator,
) http.Handler {
	mux := http.NewServeMux()
	base := "/api/v1"
	mux.HandleFunc(base+"/auth/register", authHandler.Register)
	mux.HandleFunc(base+"/auth/login", authHandler.Login)

	// Generate and api-key do their own auth so failures share the uniform
	// {success,error} envelope.
	mux.HandleFunc(base+"/generate", genHandler.Generate)
	mux.HandleFunc(base+"/api-key", apiKeyHandler.Manage)

	authed := middleware.JWTAuth(validator)
	mux.Handle(base+"/me", authed(methodGET(dashHandler.GetMe)))
	mux.Handle(base+"/creations", authed(methodGET(dashHandler.ListCreations)))

	return mux
}

func methodGET(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h(w, r)
	}
}
