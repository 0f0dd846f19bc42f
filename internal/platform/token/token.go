package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	clockport "github.com/Beacon-Coaching/coach-portal-api/internal/ports/out/clock"
)

var ErrUnauthorized = errors.New("unauthorized")

// Issuer mints and verifies HS256 session tokens.
//
// The portal has no external identity provider; the session token only binds
// a bearer to the single active session slot, keyed by the coach's email in
// the `sub` claim.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	clk    clockport.Clock
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

func NewIssuer(secret []byte, ttl time.Duration, clk clockport.Clock) *Issuer {
	if clk == nil {
		clk = realClock{}
	}
	return &Issuer{secret: secret, ttl: ttl, clk: clk}
}

// Issue mints a token for subject.
func (i *Issuer) Issue(subject string) (string, error) {
	if subject == "" {
		return "", errors.New("empty subject")
	}
	now := i.clk.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// Verify validates raw and returns the subject. Any failure maps to
// ErrUnauthorized; callers don't branch on the cause.
func (i *Issuer) Verify(raw string) (string, error) {
	parsed, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrUnauthorized
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.clk.Now), jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !parsed.Valid {
		return "", ErrUnauthorized
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", ErrUnauthorized
	}
	return claims.Subject, nil
}
