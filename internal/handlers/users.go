package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/cliptube/backend/internal/auth"
	"github.com/cliptube/backend/internal/logging"
	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/pagination"
	"github.com/cliptube/backend/internal/repositories"
	"github.com/cliptube/backend/internal/storage"
)

const minPasswordLength = 8

// UserHandler serves registration, session management and account
// maintenance, plus the channel profile and watch history read models.
type UserHandler struct {
	Users    UserStore
	Sessions SessionManager
	Assets   AssetStore
	Uploads  UploadStaging
	NowFunc  func() time.Time
}

func (h *UserHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

// userResponse is the sanitized JSON shape of an account. Password and
// refresh-token material never appear in responses.
type userResponse struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	FullName      string    `json:"fullName"`
	AvatarURL     string    `json:"avatarUrl"`
	CoverImageURL string    `json:"coverImageUrl,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func newUserResponse(user models.User) userResponse {
	return userResponse{
		ID:            user.ID,
		Username:      user.Username,
		Email:         user.Email,
		FullName:      user.FullName,
		AvatarURL:     user.Avatar.URL,
		CoverImageURL: user.CoverImage.URL,
		CreatedAt:     user.CreatedAt,
		UpdatedAt:     user.UpdatedAt,
	}
}

// Register creates a new account from a multipart form carrying the
// profile fields, a required avatar image and an optional cover image.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	fullName := strings.TrimSpace(r.FormValue("fullName"))
	email := strings.TrimSpace(r.FormValue("email"))
	username := strings.ToLower(strings.TrimSpace(r.FormValue("username")))
	password := r.FormValue("password")

	switch {
	case fullName == "" || email == "" || username == "" || password == "":
		respondError(ctx, w, http.StatusBadRequest, "fullName, email, username and password are required")
		return
	case len(password) < minPasswordLength:
		respondError(ctx, w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}
	if _, err := mail.ParseAddress(email); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid email address")
		return
	}

	if _, err := h.Users.FindByLogin(ctx, username); err == nil {
		respondError(ctx, w, http.StatusConflict, "username already taken")
		return
	} else if !errors.Is(err, repositories.ErrNotFound) {
		respondError(ctx, w, http.StatusInternalServerError, "failed to check username")
		return
	}
	if _, err := h.Users.FindByLogin(ctx, email); err == nil {
		respondError(ctx, w, http.StatusConflict, "email already registered")
		return
	} else if !errors.Is(err, repositories.ErrNotFound) {
		respondError(ctx, w, http.StatusInternalServerError, "failed to check email")
		return
	}

	avatarPath, err := h.Uploads.Save(r, "avatar")
	if err != nil {
		if errors.Is(err, ErrMissingFile) {
			respondError(ctx, w, http.StatusBadRequest, "avatar is required")
			return
		}
		respondError(ctx, w, http.StatusBadRequest, "could not read avatar upload")
		return
	}
	defer os.Remove(avatarPath)

	coverPath, err := h.Uploads.SaveOptional(r, "coverImage")
	if err != nil {
		respondError(ctx, w, http.StatusBadRequest, "could not read coverImage upload")
		return
	}
	if coverPath != "" {
		defer os.Remove(coverPath)
	}

	avatarAsset, err := h.Assets.Store(ctx, avatarPath, storage.KindImage)
	if err != nil {
		respondError(ctx, w, http.StatusInternalServerError, "failed to store avatar")
		return
	}
	var coverAsset models.Asset
	if coverPath != "" {
		coverAsset, err = h.Assets.Store(ctx, coverPath, storage.KindImage)
		if err != nil {
			h.discardAsset(r, avatarAsset)
			respondError(ctx, w, http.StatusInternalServerError, "failed to store cover image")
			return
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		h.discardAsset(r, avatarAsset)
		h.discardAsset(r, coverAsset)
		respondError(ctx, w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	now := h.now()
	user := models.User{
		ID:         uuid.NewString(),
		Username:   username,
		Email:      email,
		FullName:   fullName,
		Avatar:     avatarAsset,
		CoverImage: coverAsset,
		Password:   string(hash),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := h.Users.Create(ctx, user); err != nil {
		h.discardAsset(r, avatarAsset)
		h.discardAsset(r, coverAsset)
		if errors.Is(err, repositories.ErrConflict) {
			respondError(ctx, w, http.StatusConflict, "username or email already registered")
			return
		}
		respondError(ctx, w, http.StatusInternalServerError, "failed to create user")
		return
	}
	respondData(ctx, w, http.StatusCreated, newUserResponse(user), "user registered")
}

// Login verifies credentials and issues a session token pair. The account
// may be addressed by username or email.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}
	login := strings.ToLower(strings.TrimSpace(req.Username))
	if login == "" {
		login = strings.ToLower(strings.TrimSpace(req.Email))
	}
	if login == "" || req.Password == "" {
		respondError(ctx, w, http.StatusBadRequest, "username or email, and password, are required")
		return
	}

	user, err := h.Users.FindByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		respondError(ctx, w, http.StatusInternalServerError, "failed to look up user")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		respondError(ctx, w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	tokens, err := h.Sessions.Issue(ctx, user)
	if err != nil {
		respondError(ctx, w, http.StatusInternalServerError, "failed to issue session")
		return
	}
	setSessionCookies(w, tokens)
	respondData(ctx, w, http.StatusOK, map[string]any{
		"user":   newUserResponse(user),
		"tokens": tokens,
	}, "logged in")
}

// Logout revokes the caller's refresh token and clears session cookies.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	if err := h.Sessions.Revoke(ctx, principal.ID); err != nil {
		respondError(ctx, w, http.StatusInternalServerError, "failed to revoke session")
		return
	}
	clearSessionCookies(w)
	respondData(ctx, w, http.StatusOK, nil, "logged out")
}

// Refresh rotates the token pair. The refresh token may arrive in the
// request body or the refreshToken cookie.
func (h *UserHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if r.Body != nil {
		// Body is optional; a decode failure only matters if no cookie is set.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	token := strings.TrimSpace(req.RefreshToken)
	if token == "" {
		if cookie, err := r.Cookie("refreshToken"); err == nil {
			token = cookie.Value
		}
	}
	if token == "" {
		respondError(ctx, w, http.StatusUnauthorized, "refresh token is required")
		return
	}

	user, tokens, err := h.Sessions.Refresh(ctx, token)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrSessionNotFound), errors.Is(err, auth.ErrRefreshTokenExpired):
			respondError(ctx, w, http.StatusUnauthorized, "invalid or expired refresh token")
		default:
			respondError(ctx, w, http.StatusInternalServerError, "failed to refresh session")
		}
		return
	}
	setSessionCookies(w, tokens)
	respondData(ctx, w, http.StatusOK, map[string]any{
		"user":   newUserResponse(user),
		"tokens": tokens,
	}, "session refreshed")
}

// Me returns the caller's own account.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	user, err := h.Users.FindByID(ctx, principal.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "user not found")
			return
		}
		respondError(ctx, w, http.StatusInternalServerError, "failed to fetch user")
		return
	}
	respondData(ctx, w, http.StatusOK, newUserResponse(user), "user fetched")
}

// ChangePassword verifies the old password and stores a new hash.
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req struct {
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.OldPassword == "" || req.NewPassword == "" {
		respondError(ctx, w, http.StatusBadRequest, "oldPassword and newPassword are required")
		return
	}
	if len(req.NewPassword) < minPasswordLength {
		respondError(ctx, w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	user, err := h.Users.FindByID(ctx, principal.ID)
	if err != nil {
		respondError(ctx, w, http.StatusInternalServerError, "failed to fetch user")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.OldPassword)); err != nil {
		respondError(ctx, w, http.StatusUnauthorized, "old password is incorrect")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		respondError(ctx, w, http.StatusInternalServerError, "failed to hash password")
		return
	}
	if err := h.Users.UpdatePassword(ctx, principal.ID, string(hash), h.now()); err != nil {
		respondError(ctx, w, http.StatusInternalServerError, "failed to update password")
		return
	}
	respondData(ctx, w, http.StatusOK, nil, "password changed")
}

// UpdateAccount changes the caller's full name and email.
func (h *UserHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req struct {
		FullName string `json:"fullName"`
		Email    string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.TrimSpace(req.Email)
	if req.FullName == "" || req.Email == "" {
		respondError(ctx, w, http.StatusBadRequest, "fullName and email are required")
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid email address")
		return
	}

	if err := h.Users.UpdateAccount(ctx, principal.ID, req.FullName, req.Email, h.now()); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			respondError(ctx, w, http.StatusConflict, "email already registered")
			return
		}
		respondError(ctx, w, http.StatusInternalServerError, "failed to update account")
		return
	}
	user, err := h.Users.FindByID(ctx, principal.ID)
	if err != nil {
		respondError(ctx, w, http.StatusInternalServerError, "failed to fetch user")
		return
	}
	respondData(ctx, w, http.StatusOK, newUserResponse(user), "account updated")
}

// UpdateAvatar replaces the caller's avatar image.
func (h *UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "avatar",
		func(user models.User) models.Asset { return user.Avatar },
		h.Users.UpdateAvatar)
}

// UpdateCover replaces the caller's cover image.
func (h *UserHandler) UpdateCover(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "coverImage",
		func(user models.User) models.Asset { return user.CoverImage },
		h.Users.UpdateCover)
}

func (h *UserHandler) updateImage(
	w http.ResponseWriter,
	r *http.Request,
	field string,
	current func(models.User) models.Asset,
	apply func(ctx context.Context, id string, asset models.Asset, updatedAt time.Time) error,
) {
	ctx := r.Context()
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	path, err := h.Uploads.Save(r, field)
	if err != nil {
		if errors.Is(err, ErrMissingFile) {
			respondError(ctx, w, http.StatusBadRequest, field+" is required")
			return
		}
		respondError(ctx, w, http.StatusBadRequest, "could not read "+field+" upload")
		return
	}
	defer os.Remove(path)

	user, err := h.Users.FindByID(ctx, principal.ID)
	if err != nil {
		respondError(ctx, w, http.StatusInternalServerError, "failed to fetch user")
		return
	}

	asset, err := h.Assets.Store(ctx, path, storage.KindImage)
	if err != nil {
		respondError(ctx, w, http.StatusInternalServerError, "failed to store "+field)
		return
	}
	if err := apply(ctx, user.ID, asset, h.now()); err != nil {
		h.discardAsset(r, asset)
		respondError(ctx, w, http.StatusInternalServerError, "failed to update "+field)
		return
	}
	h.discardAsset(r, current(user))

	updated, err := h.Users.FindByID(ctx, principal.ID)
	if err != nil {
		respondError(ctx, w, http.StatusInternalServerError, "failed to fetch user")
		return
	}
	respondData(ctx, w, http.StatusOK, newUserResponse(updated), field+" updated")
}

// Channel returns a user's public channel profile by username.
func (h *UserHandler) Channel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	username := strings.ToLower(strings.TrimSpace(r.PathValue("username")))
	if username == "" {
		respondError(ctx, w, http.StatusBadRequest, "username is required")
		return
	}

	profile, err := h.Users.ChannelProfile(ctx, username, viewerID(ctx))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "channel not found")
			return
		}
		respondError(ctx, w, http.StatusInternalServerError, "failed to fetch channel")
		return
	}
	respondData(ctx, w, http.StatusOK, profile, "channel fetched")
}

// History returns the caller's watch history, most recently watched first.
func (h *UserHandler) History(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	params := pagination.ParseParams(r.URL.Query())
	items, total, err := h.Users.WatchHistory(ctx, principal.ID, params)
	if err != nil {
		respondError(ctx, w, http.StatusInternalServerError, "failed to fetch watch history")
		return
	}
	respondData(ctx, w, http.StatusOK, pagination.NewPage(items, total, params), "watch history fetched")
}

func (h *UserHandler) discardAsset(r *http.Request, asset models.Asset) {
	if asset.PublicID == "" {
		return
	}
	if _, err := h.Assets.Remove(r.Context(), asset.PublicID, storage.KindImage); err != nil {
		logging.FromContext(r.Context()).Warn("failed to remove stored asset",
			"publicId", asset.PublicID, "error", err)
	}
}

func setSessionCookies(w http.ResponseWriter, tokens models.SessionTokens) {
	http.SetCookie(w, &http.Cookie{
		Name:     "accessToken",
		Value:    tokens.AccessToken,
		Path:     "/",
		Expires:  tokens.AccessExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     "refreshToken",
		Value:    tokens.RefreshToken,
		Path:     "/",
		Expires:  tokens.RefreshExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookies(w http.ResponseWriter) {
	for _, name := range []string{"accessToken", "refreshToken"} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
}
