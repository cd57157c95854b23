package auth

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"timewise-backend/internal/users"
)

// Handler serves registration, login, and Google token storage.
type Handler struct {
	Users  *users.Store
	Secret []byte
}

func NewHandler(store *users.Store, secret []byte) *Handler {
	return &Handler{Users: store, Secret: secret}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	UserID int    `json:"user_id"`
	Token  string `json:"token"`
}

// Register handles POST /auth/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var body credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if body.Email == "" || body.Password == "" {
		http.Error(w, "email & password required", http.StatusBadRequest)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "hash error", http.StatusInternalServerError)
		return
	}

	user, err := h.Users.Create(r.Context(), body.Email, string(hash))
	if err != nil {
		http.Error(w, "email already exists", http.StatusBadRequest)
		return
	}

	token, err := GenerateToken(h.Secret, user.ID)
	if err != nil {
		http.Error(w, "token error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(tokenResponse{UserID: user.ID, Token: token})
}

// Login handles POST /auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var body credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	user, hash, err := h.Users.ByEmail(r.Context(), body.Email)
	if err != nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(body.Password)) != nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := GenerateToken(h.Secret, user.ID)
	if err != nil {
		http.Error(w, "token error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(tokenResponse{UserID: user.ID, Token: token})
}

// Me handles GET /auth/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	uid, ok := UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := h.Users.Get(r.Context(), uid)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		log.Printf("auth: me: %v", err)
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(user)
}

// UpdatePreferences handles PUT /auth/preferences.
func (h *Handler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	uid, ok := UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	// Start from what is stored so a partial body keeps the rest.
	user, err := h.Users.Get(r.Context(), uid)
	if err != nil {
		log.Printf("auth: preferences: %v", err)
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}

	prefs := user.Preferences
	if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if prefs.WorkStartHour < 0 || prefs.WorkEndHour > 24 || prefs.WorkStartHour >= prefs.WorkEndHour {
		http.Error(w, "invalid working hours", http.StatusBadRequest)
		return
	}

	if err := h.Users.UpdatePreferences(r.Context(), uid, prefs); err != nil {
		log.Printf("auth: preferences: %v", err)
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(prefs)
}

// SaveGoogleTokens handles PUT /auth/google/tokens. The OAuth dance itself
// happens on the client; this endpoint only stores the resulting tokens so
// the calendar capability can be built from them.
func (h *Handler) SaveGoogleTokens(w http.ResponseWriter, r *http.Request) {
	uid, ok := UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var body struct {
		AccessToken  string    `json:"access_token"`
		RefreshToken string    `json:"refresh_token"`
		Expiry       time.Time `json:"expiry"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if body.AccessToken == "" {
		http.Error(w, "access_token required", http.StatusBadRequest)
		return
	}

	if err := h.Users.SaveGoogleTokens(r.Context(), uid, body.AccessToken, body.RefreshToken, body.Expiry); err != nil {
		log.Printf("auth: save google tokens: %v", err)
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
}
