package auth // package auth provides password hashing and session token handling

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens

	"github.com/campusbuzz/event-registration/internal/model"
)

// ErrInvalidToken is returned by Verify for every failure mode: bad
// signature, malformed token, unknown role claim or expired token. The
// caller cannot tell which check failed, so a response built from this
// error leaks nothing about why the token was rejected.
var ErrInvalidToken = errors.New("invalid or expired token")

// Principal is the authenticated identity extracted from a verified
// session token. It is the sole source of identity for a request; no
// server-side session state exists.
type Principal struct {
	UserID uint64
	Role   model.Role
}

// TokenService issues and verifies signed session tokens. The signing
// secret and TTL are injected at construction rather than read from
// ambient state so that tests and callers control both.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService builds a TokenService from the signing secret and the
// session TTL.
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: ttl}
}

// Issue builds and signs an HS256 JWT for the user. The claim set is
// {sub, role, iat, exp}; the signature covers all of it, so tampering
// with any claim (the role included) is detectable at verification.
func (s *TokenService) Issue(u model.User) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":  u.ID,
		"role": u.Role.String(),
		"iat":  now.Unix(),
		"exp":  now.Add(s.ttl).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

// Verify parses a raw token string and returns the Principal it proves.
// Signature integrity is checked first, then expiry (the jwt library
// validates exp during Parse); both failures surface as ErrInvalidToken.
func (s *TokenService) Verify(raw string) (Principal, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		// Reject tokens signed with anything but HMAC to prevent
		// algorithm-substitution tricks.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil || !tok.Valid {
		return Principal{}, ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Principal{}, ErrInvalidToken
	}

	// Numeric claims come back as float64 from the JSON decoder.
	sub, ok := claims["sub"].(float64)
	if !ok || sub <= 0 {
		return Principal{}, ErrInvalidToken
	}
	roleStr, ok := claims["role"].(string)
	if !ok {
		return Principal{}, ErrInvalidToken
	}
	role := model.Role(roleStr)
	if !role.Valid() {
		return Principal{}, ErrInvalidToken
	}
	return Principal{UserID: uint64(sub), Role: role}, nil
}
