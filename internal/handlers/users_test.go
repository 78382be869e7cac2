package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/cliptube/backend/internal/auth"
	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/repositories"
)

func TestUserHandlerRegisterSuccess(t *testing.T) {
	users := newUserStoreStub()
	assets := &assetStoreStub{}
	handler := &UserHandler{
		Users:   users,
		Assets:  assets,
		Uploads: UploadStaging{Dir: t.TempDir(), MaxBytes: 1 << 20},
		NowFunc: fixedNow,
	}

	body, contentType := multipartBody(t,
		map[string]string{
			"fullName": "Alice Example",
			"email":    "alice@example.com",
			"username": "Alice",
			"password": "correct-horse",
		},
		map[string]string{"avatar": "avatar.png"},
	)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.Register(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("unexpected status: got %d want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	if len(users.created) != 1 {
		t.Fatalf("expected one created user, got %d", len(users.created))
	}
	created := users.created[0]
	if created.Username != "alice" {
		t.Fatalf("username must be normalized to lowercase, got %q", created.Username)
	}
	if created.Avatar.PublicID == "" {
		t.Fatal("expected avatar asset to be stored")
	}
	if created.Password == "correct-horse" {
		t.Fatal("password must be hashed before storage")
	}

	var resp struct {
		Data userResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Data.Username != "alice" || resp.Data.Email != "alice@example.com" {
		t.Fatalf("unexpected response user: %+v", resp.Data)
	}
}

func TestUserHandlerRegisterShortPassword(t *testing.T) {
	handler := &UserHandler{
		Users:   newUserStoreStub(),
		Assets:  &assetStoreStub{},
		Uploads: UploadStaging{Dir: t.TempDir(), MaxBytes: 1 << 20},
	}

	body, contentType := multipartBody(t,
		map[string]string{
			"fullName": "Alice Example",
			"email":    "alice@example.com",
			"username": "alice",
			"password": "short",
		},
		map[string]string{"avatar": "avatar.png"},
	)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.Register(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestUserHandlerRegisterDuplicateUsername(t *testing.T) {
	users := newUserStoreStub(models.User{ID: ownerID, Username: "alice", Email: "old@example.com"})
	handler := &UserHandler{
		Users:   users,
		Assets:  &assetStoreStub{},
		Uploads: UploadStaging{Dir: t.TempDir(), MaxBytes: 1 << 20},
	}

	body, contentType := multipartBody(t,
		map[string]string{
			"fullName": "Alice Two",
			"email":    "new@example.com",
			"username": "alice",
			"password": "correct-horse",
		},
		map[string]string{"avatar": "avatar.png"},
	)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.Register(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusConflict)
	}
}

func seededUser(t *testing.T, password string) models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return models.User{
		ID:       ownerID,
		Username: "alice",
		Email:    "alice@example.com",
		FullName: "Alice Example",
		Password: string(hash),
	}
}

func TestUserHandlerLoginSuccessSetsCookies(t *testing.T) {
	sessions := &sessionManagerStub{tokens: models.SessionTokens{
		AccessToken:      "access-token",
		AccessExpiresAt:  fixedNow().Add(15 * time.Minute),
		RefreshToken:     "refresh-token",
		RefreshExpiresAt: fixedNow().Add(7 * 24 * time.Hour),
	}}
	handler := &UserHandler{
		Users:    newUserStoreStub(seededUser(t, "correct-horse")),
		Sessions: sessions,
	}

	body, _ := json.Marshal(map[string]string{"username": "alice", "password": "correct-horse"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	cookies := rec.Result().Cookies()
	var sawAccess, sawRefresh bool
	for _, c := range cookies {
		switch c.Name {
		case "accessToken":
			sawAccess = c.Value == "access-token" && c.HttpOnly
		case "refreshToken":
			sawRefresh = c.Value == "refresh-token" && c.HttpOnly
		}
	}
	if !sawAccess || !sawRefresh {
		t.Fatalf("expected both session cookies, got %v", cookies)
	}
}

func TestUserHandlerLoginWrongPassword(t *testing.T) {
	handler := &UserHandler{
		Users:    newUserStoreStub(seededUser(t, "correct-horse")),
		Sessions: &sessionManagerStub{},
	}

	body, _ := json.Marshal(map[string]string{"username": "alice", "password": "wrong"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestUserHandlerRefreshFromCookie(t *testing.T) {
	sessions := &sessionManagerStub{
		refreshed: models.User{ID: ownerID, Username: "alice"},
		tokens:    models.SessionTokens{AccessToken: "new-access", RefreshToken: "new-refresh"},
	}
	handler := &UserHandler{Users: newUserStoreStub(), Sessions: sessions}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh", nil)
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: "old-refresh"})
	rec := httptest.NewRecorder()

	handler.Refresh(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
}

func TestUserHandlerRefreshRejectsExpired(t *testing.T) {
	handler := &UserHandler{
		Users:    newUserStoreStub(),
		Sessions: &sessionManagerStub{refreshErr: auth.ErrRefreshTokenExpired},
	}

	body, _ := json.Marshal(map[string]string{"refreshToken": "stale"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Refresh(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestUserHandlerChangePasswordWrongOld(t *testing.T) {
	users := newUserStoreStub(seededUser(t, "correct-horse"))
	handler := &UserHandler{Users: users, NowFunc: fixedNow}

	body, _ := json.Marshal(map[string]string{"oldPassword": "wrong", "newPassword": "new-password-1"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/change-password", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.ChangePassword(rec, withPrincipal(req, ownerID, "alice"))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusUnauthorized)
	}
	if users.passwordHash != "" {
		t.Fatal("password must not change when old password is wrong")
	}
}

func TestUserHandlerUpdateAvatarSwapsAsset(t *testing.T) {
	user := seededUser(t, "correct-horse")
	user.Avatar = models.Asset{URL: "https://assets.example/old", PublicID: "old-avatar"}
	users := newUserStoreStub(user)
	assets := &assetStoreStub{}
	handler := &UserHandler{
		Users:   users,
		Assets:  assets,
		Uploads: UploadStaging{Dir: t.TempDir(), MaxBytes: 1 << 20},
		NowFunc: fixedNow,
	}

	body, contentType := multipartBody(t, nil, map[string]string{"avatar": "new.png"})
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/users/avatar", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.UpdateAvatar(rec, withPrincipal(req, ownerID, "alice"))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	if users.avatarUpdated.PublicID == "" {
		t.Fatal("expected avatar to be updated")
	}
	if len(assets.removed) != 1 || assets.removed[0] != "old-avatar" {
		t.Fatalf("expected old avatar removal, got %v", assets.removed)
	}
}

func TestUserHandlerChannelNotFound(t *testing.T) {
	users := newUserStoreStub()
	users.profileErr = repositories.ErrNotFound
	handler := &UserHandler{Users: users}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/channel/ghost", nil)
	req.SetPathValue("username", "ghost")
	rec := httptest.NewRecorder()

	handler.Channel(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusNotFound)
	}
}
