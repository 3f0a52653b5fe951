package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gatherly/server/internal/api/middleware"
	"github.com/gatherly/server/internal/api/problem"
	"github.com/gatherly/server/internal/domain/tokens"
	"github.com/gatherly/server/internal/domain/users"
	"github.com/gatherly/server/internal/metrics"
)

type AuthHandler struct {
	Users  *users.Service
	Tokens *tokens.Service
	Env    string
}

func NewAuthHandler(usersService *users.Service, tokensService *tokens.Service, env string) *AuthHandler {
	return &AuthHandler{Users: usersService, Tokens: tokensService, Env: env}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidationError, "Invalid request", err, h.Env)
		return
	}

	user, err := h.Users.Register(r.Context(), users.RegisterParams{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, users.ErrEmailTaken) {
			problem.Write(w, r, http.StatusBadRequest, problem.TypeEmailTaken, "Email already registered", err, h.Env)
			return
		}
		var verr users.ValidationError
		if errors.As(err, &verr) {
			problem.Write(w, r, http.StatusBadRequest, problem.TypeValidationError, "Invalid request", err, h.Env)
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		return
	}

	metrics.UsersRegisteredTotal.Inc()
	writeJSON(w, http.StatusCreated, user.Summary())
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenPairResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidationError, "Invalid request", err, h.Env)
		return
	}

	user, err := h.Users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			metrics.LoginsTotal.WithLabelValues("failure").Inc()
			problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Login failed", err, h.Env,
				problem.WithDetail("Invalid credentials"))
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		return
	}

	pair, err := h.Tokens.IssuePair(user.ID)
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		return
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	writeJSON(w, http.StatusOK, tokenPairResponse{Access: pair.Access, Refresh: pair.Refresh})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	user, err := h.Users.Get(r.Context(), userID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Unauthorized", err, h.Env)
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, user.Summary())
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidationError, "Invalid request", err, h.Env)
		return
	}

	if err := h.Tokens.Blacklist(r.Context(), req.Refresh); err != nil {
		if errors.Is(err, tokens.ErrInvalidToken) || errors.Is(err, tokens.ErrBlacklisted) {
			problem.Write(w, r, http.StatusBadRequest, problem.TypeInvalidToken, "Invalid token", err, h.Env,
				problem.WithDetail("Token is invalid or expired"))
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		return
	}

	metrics.TokensBlacklistedTotal.Inc()
	writeJSON(w, http.StatusResetContent, map[string]string{"detail": "Successfully logged out."})
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidationError, "Invalid request", err, h.Env)
		return
	}

	access, err := h.Tokens.Refresh(r.Context(), req.Refresh)
	if err != nil {
		// A blacklisted refresh token and a malformed one are equally dead
		// credentials from the caller's perspective.
		if errors.Is(err, tokens.ErrInvalidToken) || errors.Is(err, tokens.ErrBlacklisted) {
			problem.Write(w, r, http.StatusUnauthorized, problem.TypeInvalidToken, "Invalid token", err, h.Env,
				problem.WithDetail("Token is invalid or expired"))
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"access": access})
}
