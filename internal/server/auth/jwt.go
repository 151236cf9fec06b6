// Package auth issues and verifies the signed access/refresh token pair.
//
// Tokens are stateless HS256 JWTs. Access and refresh tokens are signed with
// different secrets and carry a "typ" claim, so a token of one class never
// verifies as the other.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hynorvixx/backend/internal/common"
)

// Token classes carried in the "typ" claim.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// jtiBytes is the entropy of the token id. The id is not tracked anywhere yet
// but gives a denylist something to key on.
const jtiBytes = 16

// Claims are the JWT claims of both token classes.
type Claims struct {
	jwt.RegisteredClaims
	Type string `json:"typ"`
}

// TokenPair is the result of a successful signup, login or refresh.
type TokenPair struct {
	AccessToken      string    `json:"accessToken"`
	RefreshToken     string    `json:"refreshToken"`
	AccessExpiresAt  time.Time `json:"-"`
	RefreshExpiresAt time.Time `json:"-"`
}

// TokenService signs and verifies tokens. It holds no mutable state and is
// safe for concurrent use.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

func NewTokenService(accessSecret, refreshSecret []byte, accessTTL, refreshTTL time.Duration) *TokenService {
	return &TokenService{
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
}

// WithClock returns a copy of s that reads the current time from now.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	c := *s
	c.now = now
	return &c
}

func (s *TokenService) AccessTTL() time.Duration  { return s.accessTTL }
func (s *TokenService) RefreshTTL() time.Duration { return s.refreshTTL }

// Issue signs a fresh access and refresh token for subjectID.
func (s *TokenService) Issue(subjectID string) (TokenPair, error) {
	now := s.now()

	access, accessExp, err := s.sign(subjectID, TypeAccess, s.accessSecret, now, s.accessTTL)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}
	refresh, refreshExp, err := s.sign(subjectID, TypeRefresh, s.refreshSecret, now, s.refreshTTL)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}

	return TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// VerifyAccess returns the subject of a valid access token.
func (s *TokenService) VerifyAccess(token string) (string, error) {
	return s.verify(token, TypeAccess, s.accessSecret)
}

// VerifyRefresh returns the subject of a valid refresh token.
func (s *TokenService) VerifyRefresh(token string) (string, error) {
	return s.verify(token, TypeRefresh, s.refreshSecret)
}

// Decode parses token without checking its signature or expiry. The result
// must never be used to authorize anything.
func (s *TokenService) Decode(token string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, common.Malformed(err)
	}
	return claims, nil
}

func (s *TokenService) sign(subjectID, typ string, secret []byte, now time.Time, ttl time.Duration) (string, time.Time, error) {
	jti, err := common.MakeRandHexString(jtiBytes)
	if err != nil {
		return "", time.Time{}, err
	}

	exp := now.Add(ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        jti,
		},
		Type: typ,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

func (s *TokenService) verify(token, typ string, secret []byte) (string, error) {
	claims := &Claims{}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)

	_, err := parser.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.Expired(err)
		}
		return "", common.Malformed(err)
	}

	if claims.Type != typ {
		return "", common.Malformed(fmt.Errorf("unexpected token type %q", claims.Type))
	}
	if claims.Subject == "" {
		return "", common.Malformed(errors.New("missing subject"))
	}

	return claims.Subject, nil
}
