package auth

import (
	"errors"
	"time"

	"connection-travels/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// Claims carries the caller identity. OwnerID is set for owners only.
type Claims struct {
	Role    domain.Role `json:"role,omitempty"`
	OwnerID string      `json:"ownerId,omitempty"`
	jwt.RegisteredClaims
}

// RequestContext returns the caller as seen by services.
func (c Claims) RequestContext() domain.RequestContext {
	return domain.RequestContext{UserID: c.Subject, Role: c.Role, OwnerID: c.OwnerID}
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Issuer signs and verifies HS256 tokens. Refresh tokens use their own secret and carry no role.
type Issuer struct {
	Secret        []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Now           func() time.Time
}

func (i Issuer) now() time.Time {
	if i.Now != nil {
		return i.Now()
	}
	return time.Now()
}

func (i Issuer) IssuePair(caller domain.RequestContext) (TokenPair, error) {
	access, err := i.sign(Claims{Role: caller.Role, OwnerID: caller.OwnerID}, caller.UserID, i.AccessTTL, i.Secret)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := i.sign(Claims{}, caller.UserID, i.RefreshTTL, i.refreshSecret())
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (i Issuer) sign(claims Claims, subject string, ttl time.Duration, secret []byte) (string, error) {
	now := i.now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (i Issuer) refreshSecret() []byte {
	if len(i.RefreshSecret) > 0 {
		return i.RefreshSecret
	}
	return i.Secret
}

// ParseAccess validates an access token and requires a known role.
func (i Issuer) ParseAccess(token string) (Claims, error) {
	claims, err := i.parse(token, i.Secret)
	if err != nil {
		return Claims{}, err
	}
	if !claims.Role.Valid() || claims.Subject == "" {
		return Claims{}, ErrInvalidToken
	}
	if claims.Role == domain.RoleOwner && claims.OwnerID == "" {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}

func (i Issuer) parse(token string, secret []byte) (Claims, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrExpiredToken
		}
		return Claims{}, ErrInvalidToken
	}
	if !parsed.Valid {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}
