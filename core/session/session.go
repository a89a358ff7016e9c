// Package session issues and verifies the signed tokens carried by the session cookie.
package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	pkgerrors "github.com/pkg/errors"

	"github.com/trezcool/kazi/core"
)

var ErrInvalidToken = errors.New("invalid or expired session token")

// Claims binds a token to a single user id.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"userId"`
}

type Manager struct {
	secret  []byte
	issuer  string
	ttl     time.Duration
	nowFunc func() time.Time // mockable
}

func NewManager(conf *core.Config) *Manager {
	return &Manager{
		secret:  []byte(conf.SecretKey),
		issuer:  conf.AppName,
		ttl:     conf.Server.SessionExpirationDelta,
		nowFunc: time.Now,
	}
}

// TTL is the lifetime of the tokens issued by the Manager.
func (m *Manager) TTL() time.Duration { return m.ttl }

// Generate issues a signed token for userID.
func (m *Manager) Generate(userID string) (string, error) {
	now := m.nowFunc()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
		UserID: userID,
	}
	ss, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", pkgerrors.Wrap(err, "signing token")
	}
	return ss, nil
}

// Verify returns the user id bound to token.
// Any decoding, signature or expiry problem yields ErrInvalidToken.
func (m *Manager) Verify(token string) (string, error) {
	if token == "" {
		return "", ErrInvalidToken
	}
	claims := new(Claims)
	parsed, err := jwt.ParseWithClaims(
		token, claims,
		func(*jwt.Token) (interface{}, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(m.issuer),
		jwt.WithTimeFunc(m.nowFunc),
	)
	if err != nil || !parsed.Valid || claims.UserID == "" {
		return "", ErrInvalidToken
	}
	return claims.UserID, nil
}
