package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ayush/user-auth-service/internal/models"
	"github.com/ayush/user-auth-service/internal/store"
)

// usernameRe allows letters, digits, spaces, hyphens, and underscores.
var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9\s\-_]+$`)

// UserStore defines the interface for identity persistence.
type UserStore interface {
	Ping(ctx context.Context) error
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error)
	FindByEmail(ctx context.Context, email string, includeCredential bool) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, username, email, hashedPassword string) (*models.User, error)
	DeleteByEmail(ctx context.Context, email string) (*models.User, error)
	ListAll(ctx context.Context) ([]models.User, error)
}

// Handler holds auth-related HTTP handlers.
type Handler struct {
	users  UserStore
	tokens *Tokens
}

func NewHandler(users UserStore, tokens *Tokens) *Handler {
	return &Handler{users: users, tokens: tokens}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeMsg writes the standard {"message": ...} error body.
func writeMsg(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// storeError logs a store failure and downgrades it to 503 or 500.
// Clients never see the raw error.
func storeError(w http.ResponseWriter, op string, err error) {
	log.Printf("%s: %v", op, err)
	if errors.Is(err, store.ErrStoreUnavailable) {
		writeMsg(w, http.StatusServiceUnavailable, "Database connection not available")
		return
	}
	writeMsg(w, http.StatusInternalServerError, "Internal server error")
}

// Register creates a new identity: validate, uniqueness-check, hash, persist.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMsg(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	password := req.Password

	switch {
	case username == "" || email == "" || password == "":
		writeMsg(w, http.StatusBadRequest, "Username, email and password are required")
		return
	case len(password) < 6:
		writeMsg(w, http.StatusBadRequest, "Password must be at least 6 characters long")
		return
	case len(username) < 3 || len(username) > 50:
		writeMsg(w, http.StatusBadRequest, "Username must be between 3 and 50 characters long")
		return
	case !usernameRe.MatchString(username):
		writeMsg(w, http.StatusBadRequest, "Username can only contain letters, numbers, spaces, hyphens, and underscores")
		return
	}

	if err := h.users.Ping(r.Context()); err != nil {
		writeMsg(w, http.StatusServiceUnavailable, "Database connection not available")
		return
	}

	existing, err := h.users.FindByUsernameOrEmail(r.Context(), username, email)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		storeError(w, "registration lookup", err)
		return
	}
	if existing != nil {
		if existing.Username == username {
			writeMsg(w, http.StatusConflict, "Username already exists")
		} else {
			writeMsg(w, http.StatusConflict, "Email already exists")
		}
		return
	}

	hashed, err := HashPassword(password)
	if err != nil {
		log.Printf("hash password: %v", err)
		writeMsg(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	user, err := h.users.Create(r.Context(), username, email, hashed)
	if err != nil {
		// The pre-check can lose the race; the store's unique indexes
		// are the final arbiter.
		var conflict *store.ConflictError
		if errors.As(err, &conflict) {
			if conflict.Field == "username" {
				writeMsg(w, http.StatusConflict, "Username already exists")
			} else {
				writeMsg(w, http.StatusConflict, "Email already exists")
			}
			return
		}
		storeError(w, "create user", err)
		return
	}

	log.Printf("new user created: %s", user.Email)
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "User registered successfully",
		"user":    user,
	})
}

// Login verifies credentials and issues a bearer token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMsg(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeMsg(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	if err := h.users.Ping(r.Context()); err != nil {
		writeMsg(w, http.StatusServiceUnavailable, "Database connection not available")
		return
	}

	user, err := h.users.FindByEmail(r.Context(), req.Email, true)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Printf("login failed: no user for %s", req.Email)
			writeMsg(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		storeError(w, "login lookup", err)
		return
	}
	if user.Password == "" {
		log.Printf("login failed: no credential stored for %s", req.Email)
		writeMsg(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	ok, err := VerifyPassword(req.Password, user.Password)
	if err != nil {
		// The stored value is not a bcrypt hash. Out-of-band-seeded
		// records may hold the plaintext itself; accept those but flag
		// them, the record needs a one-time rehash.
		if user.Password == req.Password {
			log.Printf("WARNING: user %s has a plaintext credential on record, rehash required", user.Email)
			ok = true
		} else {
			log.Printf("credential verification failed for %s: %v", user.Email, err)
			writeMsg(w, http.StatusInternalServerError, "Password verification failed")
			return
		}
	}
	if !ok {
		log.Printf("login failed: wrong password for %s", req.Email)
		writeMsg(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := h.tokens.Issue(user.ID.Hex())
	if err != nil {
		log.Printf("issue token: %v", err)
		writeMsg(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// Profile returns the identity resolved from the bearer token.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value("user_id").(string)
	if userID == "" {
		writeMsg(w, http.StatusUnauthorized, "Access token required")
		return
	}

	if err := h.users.Ping(r.Context()); err != nil {
		writeMsg(w, http.StatusServiceUnavailable, "Database connection not available")
		return
	}

	user, err := h.users.FindByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeMsg(w, http.StatusNotFound, "User not found")
			return
		}
		storeError(w, "profile lookup", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// ListUsers returns all identities without email or credential fields.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	if err := h.users.Ping(r.Context()); err != nil {
		writeMsg(w, http.StatusServiceUnavailable, "Database connection not available")
		return
	}

	users, err := h.users.ListAll(r.Context())
	if err != nil {
		storeError(w, "list users", err)
		return
	}
	if users == nil {
		users = []models.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

// DeleteUser removes an identity by email and returns a summary of it.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.users.Ping(r.Context()); err != nil {
		writeMsg(w, http.StatusServiceUnavailable, "Database connection not available")
		return
	}

	email := chi.URLParam(r, "email")
	user, err := h.users.DeleteByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeMsg(w, http.StatusNotFound, "User not found")
			return
		}
		storeError(w, "delete user", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "User deleted successfully",
		"deletedUser": map[string]string{
			"username": user.Username,
			"email":    user.Email,
		},
	})
}
