package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rotisserie/eris"

	"github.com/myrtlewealth/blueprint/internal/model"
)

var (
	// ErrTokenExpired means the token was well formed but is past its expiry.
	ErrTokenExpired = eris.New("auth: token expired")
	// ErrTokenInvalid covers every other parse or signature failure.
	ErrTokenInvalid = eris.New("auth: token invalid")
)

const defaultTokenTTL = 24 * time.Hour

// Claims identify the admin a token was issued to.
type Claims struct {
	jwt.RegisteredClaims
	AdminID  string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// TokenManager signs and parses HS256 admin tokens.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager creates a TokenManager. A zero ttl means 24 hours.
func NewTokenManager(secret, issuer string, ttl time.Duration) (*TokenManager, error) {
	if secret == "" {
		return nil, eris.New("auth: jwt secret not configured")
	}
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &TokenManager{secret: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}, nil
}

// TTL returns the lifetime of issued tokens.
func (m *TokenManager) TTL() time.Duration { return m.ttl }

// Issue signs a token for admin and returns it with its expiry.
func (m *TokenManager) Issue(admin *model.Admin) (string, time.Time, error) {
	now := m.now()
	expires := now.Add(m.ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   admin.ID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		AdminID:  admin.ID,
		Username: admin.Username,
		Email:    admin.Email,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, eris.Wrap(err, "auth: sign token")
	}
	return signed, expires, nil
}

// Parse validates raw and returns its claims. Failures wrap ErrTokenExpired
// or ErrTokenInvalid.
func (m *TokenManager) Parse(raw string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	}, opts...)
	switch {
	case err == nil:
		return &claims, nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, eris.Wrap(ErrTokenExpired, err.Error())
	default:
		return nil, eris.Wrap(ErrTokenInvalid, err.Error())
	}
}
