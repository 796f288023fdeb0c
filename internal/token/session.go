package token

import (
	"errors"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"atrangi/pkg/domain"
)

const defaultIssuer = "atrangi-api"

// Claims are the identity facts a session token carries. Every request is
// resolved to this triple before authorization runs.
type Claims struct {
	UserID string
	Role   domain.Role
	Email  string
}

type sessionClaims struct {
	Role  string `json:"role"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies HS256 session tokens.
//
// TTL of zero issues tokens without an exp claim, preserving the upstream
// contract of non-expiring credentials. Deployments should set sessionTTL in
// config; the zero default is a documented compatibility gap, not a
// recommendation.
type Issuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// New builds a token issuer from a shared secret.
func New(secret string, ttl time.Duration) (*Issuer, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errors.New("session token secret is required")
	}
	return &Issuer{secret: []byte(secret), issuer: defaultIssuer, ttl: ttl}, nil
}

// Issue signs a token for the user carrying (sub, role, email).
func (i *Issuer) Issue(user domain.User) (string, error) {
	now := time.Now().UTC()
	claims := sessionClaims{
		Role:  string(user.Role),
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  user.ID,
			Issuer:   i.issuer,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if i.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(i.ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// Verify validates the token signature and claims and returns the identity
// triple. Any failure is an authentication failure; callers must not
// distinguish the causes to the client.
func (i *Issuer) Verify(tokenStr string) (Claims, error) {
	claims := sessionClaims{}
	parsed, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.issuer),
		jwt.WithIssuedAt(),
	)
	if err != nil || !parsed.Valid {
		if err == nil {
			err = errors.New("invalid token")
		}
		return Claims{}, err
	}
	subject := strings.TrimSpace(claims.Subject)
	if subject == "" {
		return Claims{}, errors.New("token subject missing")
	}
	return Claims{
		UserID: subject,
		Role:   domain.Role(claims.Role),
		Email:  claims.Email,
	}, nil
}
