// Package session turns a backend login result into the pair of HTTP-only
// cookies the portal uses, and back.
//
// The auth-token cookie carries the backend bearer sealed with
// XChaCha20-Poly1305. The user cookie carries the citizen profile as an
// HS256 JWT so it can be read without a backend round trip but not forged.
package session

import (
	"errors"
	"fmt"
	"time"

	"eportal/internal/model"

	"github.com/golang-jwt/jwt/v5"
)

const (
	TokenCookie   = "auth-token"
	UserCookie    = "user"
	CaptchaCookie = "captcha-id"
)

var (
	ErrNoSession      = errors.New("no session")
	ErrInvalidSession = errors.New("invalid session")
	ErrExpired        = errors.New("session expired")
)

type Session struct {
	Token     string
	User      model.User
	ExpiresAt time.Time
}

type userClaims struct {
	User model.User `json:"user"`
	jwt.RegisteredClaims
}

type Codec struct {
	sealer *Sealer
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewCodec(secret string, ttl time.Duration) (*Codec, error) {
	sealer, err := NewSealer(secret)
	if err != nil {
		return nil, err
	}
	return &Codec{sealer: sealer, secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Encode returns the auth-token and user cookie values plus the cookie
// max-age in seconds.
func (c *Codec) Encode(token string, user model.User) (tokenValue, userValue string, maxAge int, err error) {
	exp := c.TokenExpiry(token)
	maxAge = int(exp.Sub(c.now()).Seconds())
	if maxAge <= 0 {
		return "", "", 0, ErrExpired
	}

	// the sealed token only opens next to this citizen's user cookie
	tokenValue, err = c.sealer.Seal([]byte(token), []byte(user.IdentityID))
	if err != nil {
		return "", "", 0, fmt.Errorf("seal token: %w", err)
	}

	userValue, err = jwt.NewWithClaims(jwt.SigningMethodHS256, userClaims{
		User: user,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.IdentityID,
			IssuedAt:  jwt.NewNumericDate(c.now()),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}).SignedString(c.secret)
	if err != nil {
		return "", "", 0, fmt.Errorf("sign user: %w", err)
	}
	return tokenValue, userValue, maxAge, nil
}

func (c *Codec) Decode(tokenValue, userValue string) (*Session, error) {
	if tokenValue == "" || userValue == "" {
		return nil, ErrNoSession
	}

	var claims userClaims
	_, err := jwt.ParseWithClaims(userValue, &claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(c.now), jwt.WithExpirationRequired())
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, ErrExpired
	}
	if err != nil {
		return nil, ErrInvalidSession
	}

	token, err := c.sealer.Open(tokenValue, []byte(claims.User.IdentityID))
	if err != nil || len(token) == 0 {
		return nil, ErrInvalidSession
	}

	return &Session{Token: string(token), User: claims.User, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// TokenExpiry reads exp from the backend bearer when it is a JWT, capped at
// now+ttl. Opaque tokens get now+ttl.
func (c *Codec) TokenExpiry(token string) time.Time {
	limit := c.now().Add(c.ttl)
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return limit
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return limit
	}
	if exp.Time.Before(limit) {
		return exp.Time
	}
	return limit
}
