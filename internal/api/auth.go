package api

import (
	"encoding/json"
	"net/http"

	"github.com/starford/wunjo/internal/auth"
)

// AuthHandler serves the /api/auth routes.
type AuthHandler struct {
	store  *auth.Store
	issuer *auth.TokenIssuer
}

func NewAuthHandler(store *auth.Store, issuer *auth.TokenIssuer) *AuthHandler {
	return &AuthHandler{store: store, issuer: issuer}
}

func (h *AuthHandler) token(w http.ResponseWriter, username string) {
	token, err := h.issuer.Issue(username)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, TokenResponse{AccessToken: token, TokenType: "bearer"})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("username and password are required"))
		return
	}
	user, err := h.store.Authenticate(req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	h.token(w, user.Username)
}

// Register handles POST /api/auth/register. A successful registration logs
// the user straight in by returning a token.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("username and password are required"))
		return
	}
	user, err := h.store.Register(req.Username, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	h.token(w, user.Username)
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	username := usernameFrom(r.Context())
	if username == "" {
		writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
		return
	}
	user, err := h.store.Get(username)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Logout handles POST /api/auth/logout. Tokens are stateless, so this is a
// client-side acknowledgement only.
func (h *AuthHandler) Logout(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "successfully logged out"})
}
