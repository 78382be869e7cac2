package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cliptube/backend/internal/models"
)

var (
	// ErrSessionNotFound indicates the provided refresh token does not map to a user.
	ErrSessionNotFound = errors.New("session not found")
	// ErrRefreshTokenExpired indicates the refresh token has expired and cannot be used.
	ErrRefreshTokenExpired = errors.New("refresh token expired")
	// ErrInvalidToken indicates an access token that failed validation.
	ErrInvalidToken = errors.New("invalid access token")
)

// RefreshStore persists refresh token hashes so sessions survive process
// restarts. The user row is the store: one active refresh token per user.
type RefreshStore interface {
	SetRefreshToken(ctx context.Context, userID, hash string, expiresAt *time.Time) error
	FindByRefreshHash(ctx context.Context, hash string) (models.User, error)
}

// Claims is the JWT payload carried by access tokens.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Manager issues signed access tokens and rotating opaque refresh tokens.
type Manager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	store      RefreshStore
	now        func() time.Time
}

// NewManager constructs a Manager that signs access tokens with the given
// secret and persists refresh token hashes in the provided store.
func NewManager(secret string, accessTTL, refreshTTL time.Duration, store RefreshStore) *Manager {
	if store == nil {
		panic("auth: refresh store must not be nil")
	}
	return &Manager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		store:      store,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithNowFunc overrides the time source, for tests.
func (m *Manager) WithNowFunc(now func() time.Time) {
	m.now = now
}

// Issue creates a new token pair for the user and stores the refresh
// token's hash on their record, replacing any previous session.
func (m *Manager) Issue(ctx context.Context, user models.User) (models.SessionTokens, error) {
	if user.ID == "" {
		return models.SessionTokens{}, errors.New("user id must be provided")
	}

	now := m.now()
	accessExpiry := now.Add(m.accessTTL)

	claims := Claims{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(accessExpiry),
		},
	}

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return models.SessionTokens{}, fmt.Errorf("sign access token: %w", err)
	}

	refreshToken, err := randomToken()
	if err != nil {
		return models.SessionTokens{}, err
	}
	refreshExpiry := now.Add(m.refreshTTL)

	if err := m.store.SetRefreshToken(ctx, user.ID, HashToken(refreshToken), &refreshExpiry); err != nil {
		return models.SessionTokens{}, fmt.Errorf("store refresh token: %w", err)
	}

	return models.SessionTokens{
		AccessToken:      accessToken,
		AccessExpiresAt:  accessExpiry,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: refreshExpiry,
	}, nil
}

// Refresh exchanges a refresh token for a new pair, rotating the stored
// hash. Expired tokens are cleared and rejected.
func (m *Manager) Refresh(ctx context.Context, refreshToken string) (models.User, models.SessionTokens, error) {
	if refreshToken == "" {
		return models.User{}, models.SessionTokens{}, ErrSessionNotFound
	}

	user, err := m.store.FindByRefreshHash(ctx, HashToken(refreshToken))
	if err != nil {
		return models.User{}, models.SessionTokens{}, ErrSessionNotFound
	}

	if user.RefreshExpiresAt == nil || m.now().After(*user.RefreshExpiresAt) {
		_ = m.store.SetRefreshToken(ctx, user.ID, "", nil)
		return models.User{}, models.SessionTokens{}, ErrRefreshTokenExpired
	}

	tokens, err := m.Issue(ctx, user)
	if err != nil {
		return models.User{}, models.SessionTokens{}, err
	}
	return user, tokens, nil
}

// Revoke clears the user's stored refresh token.
func (m *Manager) Revoke(ctx context.Context, userID string) error {
	return m.store.SetRefreshToken(ctx, userID, "", nil)
}

// Parse validates an access token and returns the principal it names.
func (m *Manager) Parse(accessToken string) (Principal, error) {
	token, err := jwt.ParseWithClaims(accessToken, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return m.now() }))
	if err != nil {
		return Principal{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return Principal{}, ErrInvalidToken
	}

	return Principal{ID: claims.Subject, Username: claims.Username}, nil
}

// HashToken produces the storable digest of an opaque refresh token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func randomToken() (string, error) {
	const size = 32
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
