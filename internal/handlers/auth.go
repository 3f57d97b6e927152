package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"alttabwell/internal/identity"
	"alttabwell/internal/models"
	"alttabwell/internal/store"
)

type IdentityProvider interface {
	AuthCodeURL(ctx context.Context) (string, error)
	Exchange(ctx context.Context, state, code string) (*identity.Identity, error)
}

type TokenIssuer interface {
	IssueToken(userID int, now time.Time) (string, error)
}

type AccountStore interface {
	UpsertUserFromProfile(ctx context.Context, p store.Profile) (*models.User, bool, error)
}

type AuthHandler struct {
	accounts AccountStore
	idp      IdentityProvider
	tokens   TokenIssuer
	logger   *zap.Logger
	now      func() time.Time
}

func NewAuthHandler(accounts AccountStore, idp IdentityProvider, tokens TokenIssuer, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{accounts: accounts, idp: idp, tokens: tokens, logger: logger, now: time.Now}
}

// GoogleLogin redirects to the Google consent page.
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	url, err := h.idp.AuthCodeURL(r.Context())
	if err != nil {
		h.logger.Error("start google login", zap.Error(err))
		http.Error(w, "could not start login", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

type loginResponse struct {
	Token           string  `json:"token"`
	User            UserDTO `json:"user"`
	NeedsDepartment bool    `json:"needs_department"`
	IsNewUser       bool    `json:"is_new_user"`
}

// GoogleCallback finishes the code flow, creates the user on first login and issues a session token.
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if e := q.Get("error"); e != "" {
		http.Error(w, "google login failed: "+e, http.StatusBadRequest)
		return
	}

	id, err := h.idp.Exchange(r.Context(), q.Get("state"), q.Get("code"))
	switch {
	case errors.Is(err, identity.ErrInvalidState):
		http.Error(w, "invalid or expired login state", http.StatusBadRequest)
		return
	case errors.Is(err, identity.ErrUnverifiedIdentity):
		http.Error(w, "google account could not be verified", http.StatusUnauthorized)
		return
	case err != nil:
		h.logger.Warn("google code exchange failed", zap.Error(err))
		http.Error(w, "could not complete google login", http.StatusBadGateway)
		return
	}

	user, created, err := h.accounts.UpsertUserFromProfile(r.Context(), store.Profile{
		GoogleID:  id.ExternalID,
		Email:     id.Email,
		Name:      id.Name,
		AvatarURL: id.AvatarURL,
	})
	if err != nil {
		h.logger.Error("upsert user", zap.String("google_id", id.ExternalID), zap.Error(err))
		http.Error(w, "could not save user", http.StatusInternalServerError)
		return
	}

	token, err := h.tokens.IssueToken(user.ID, h.now())
	if err != nil {
		h.logger.Error("issue token", zap.Int("user_id", user.ID), zap.Error(err))
		http.Error(w, "could not issue token", http.StatusInternalServerError)
		return
	}
	if created {
		h.logger.Info("user created", zap.Int("user_id", user.ID))
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Token:           token,
		User:            ToUserDTO(*user),
		NeedsDepartment: user.DepartmentID == nil,
		IsNewUser:       created,
	})
}
