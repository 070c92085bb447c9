package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/opsledger/internal/auth"
	"github.com/erazemk/opsledger/internal/model"
	"github.com/erazemk/opsledger/internal/store"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	DB     *sqlx.DB
	Issuer *auth.Issuer
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// Register handles POST /api/register. New accounts get the user role.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Username == "" || req.Password == "" {
		jsonError(w, http.StatusBadRequest, "username and password required")
		return
	}
	if err := model.ValidatePassword(req.Password); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	existing, err := store.GetUserByUsername(r.Context(), h.DB, req.Username)
	if err != nil {
		internalError(w, r, err, "register user")
		return
	}
	if existing != nil {
		jsonError(w, http.StatusConflict, "username already exists")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	user, err := store.CreateUser(r.Context(), h.DB, req.Username, string(hash), model.RoleUser)
	if store.IsUniqueViolation(err) {
		jsonError(w, http.StatusConflict, "username already exists")
		return
	}
	if err != nil {
		internalError(w, r, err, "register user")
		return
	}

	slog.Info("user registered", "user", user.Username)
	h.issue(w, r, user, http.StatusCreated)
}

// Login handles POST /api/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Username == "" || req.Password == "" {
		jsonError(w, http.StatusBadRequest, "username and password required")
		return
	}

	user, err := store.GetUserByUsername(r.Context(), h.DB, req.Username)
	if err != nil {
		internalError(w, r, err, "log in")
		return
	}
	if user == nil {
		jsonError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		slog.Warn("login failed", "username", req.Username, "remote", r.RemoteAddr)
		jsonError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	slog.Info("user logged in", "user", user.Username, "role", user.Role)
	h.issue(w, r, user, http.StatusOK)
}

// issue signs a token for user, sets the session cookie and writes the token.
func (h *AuthHandler) issue(w http.ResponseWriter, r *http.Request, user *model.User, status int) {
	token, err := h.Issuer.Generate(user.ID, user.Username, user.Role)
	if err != nil {
		internalError(w, r, err, "generate token")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.Issuer.TTL() / time.Second),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	jsonResponse(w, status, loginResponse{Token: token, User: user})
}

// Logout handles POST /api/logout by revoking the current token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	expires := time.Now().Add(h.Issuer.TTL())
	if claims.ExpiresAt != nil {
		expires = claims.ExpiresAt.Time
	}
	if err := store.RevokeToken(r.Context(), h.DB, claims.ID, expires); err != nil {
		internalError(w, r, err, "log out")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	slog.Info("user logged out", "user", claims.Username)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// User handles GET /api/user.
func (h *AuthHandler) User(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	user, err := store.GetUser(r.Context(), h.DB, claims.UserID)
	if err != nil {
		internalError(w, r, err, "get user")
		return
	}
	if user == nil || user.DeletedAt != nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	jsonResponse(w, http.StatusOK, user)
}

// ChangePassword handles PUT /api/user/password.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.CurrentPassword == "" || req.NewPassword == "" {
		jsonError(w, http.StatusBadRequest, "current and new password required")
		return
	}
	if err := model.ValidatePassword(req.NewPassword); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := store.GetUser(r.Context(), h.DB, claims.UserID)
	if err != nil || user == nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		jsonError(w, http.StatusUnauthorized, "current password is incorrect")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	if err := store.UpdateUserPassword(r.Context(), h.DB, claims.UserID, string(hash)); err != nil {
		internalError(w, r, err, "update password")
		return
	}

	slog.Info("user changed own password", "user", claims.Username)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "password updated"})
}
