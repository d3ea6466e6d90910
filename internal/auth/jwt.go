package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/autobreezebeats/breeze-hub-go/internal/config"
)

// TokenType separates short-lived access tokens from long-lived refresh ones.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

const (
	tokenIssuer   = "breeze-hub"
	tokenAudience = "breeze-hub-client"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenType    = errors.New("token has invalid type")
)

// Identity is the paired observer a token was issued to.
type Identity struct {
	ClientID   string
	ClientName string
	Type       TokenType
}

// TokenPair is handed out when an observer pairs.
type TokenPair struct {
	Access    string
	Refresh   string
	ExpiresIn int
}

// Tokens signs and verifies observer tokens with the configured secret.
type Tokens struct {
	secret        []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

func NewTokens(cfg config.Config) Tokens {
	return Tokens{
		secret:        []byte(cfg.JWTSecret),
		accessExpiry:  time.Duration(cfg.JWTAccessTokenExpirySec) * time.Second,
		refreshExpiry: time.Duration(cfg.JWTRefreshTokenExpirySec) * time.Second,
	}
}

type observerClaims struct {
	Client string    `json:"client"`
	Kind   TokenType `json:"kind"`
	jwt.RegisteredClaims
}

// Issue creates an access/refresh pair for a newly paired observer.
func (t Tokens) Issue(id Identity) (TokenPair, error) {
	access, err := t.sign(id, TokenTypeAccess, t.accessExpiry)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := t.sign(id, TokenTypeRefresh, t.refreshExpiry)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		Access:    access,
		Refresh:   refresh,
		ExpiresIn: int(t.accessExpiry / time.Second),
	}, nil
}

// Refresh exchanges a valid refresh token for a new access token.
func (t Tokens) Refresh(refreshToken string) (string, int, error) {
	id, err := t.Verify(refreshToken)
	if err != nil {
		return "", 0, err
	}
	if id.Type != TokenTypeRefresh {
		return "", 0, ErrTokenType
	}
	access, err := t.sign(id, TokenTypeAccess, t.accessExpiry)
	if err != nil {
		return "", 0, err
	}
	return access, int(t.accessExpiry / time.Second), nil
}

// Verify parses a token and returns the identity it carries.
func (t Tokens) Verify(token string) (Identity, error) {
	claims := &observerClaims{}
	parsed, err := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
	).ParseWithClaims(token, claims, func(_ *jwt.Token) (any, error) {
		return t.secret, nil
	})
	if errors.Is(err, jwt.ErrTokenExpired) {
		return Identity{}, ErrTokenExpired
	}
	if err != nil || parsed == nil || !parsed.Valid {
		return Identity{}, ErrTokenInvalid
	}

	id := Identity{
		ClientID:   claims.Subject,
		ClientName: claims.Client,
		Type:       claims.Kind,
	}
	if id.ClientID == "" || id.ClientName == "" {
		return Identity{}, ErrTokenInvalid
	}
	if id.Type != TokenTypeAccess && id.Type != TokenTypeRefresh {
		return Identity{}, ErrTokenInvalid
	}
	return id, nil
}

func (t Tokens) sign(id Identity, kind TokenType, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := observerClaims{
		Client: id.ClientName,
		Kind:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.ClientID,
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{tokenAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}
