package jwt

import (
	"errors"
	"fmt"
	"time"

	"pokedex_service/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

const defaultTTL = time.Hour

var (
	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Issuer signs and verifies bearer tokens. New tokens are always signed with
// the active key; verification also accepts retired keys, selected by the
// "kid" header.
type Issuer struct {
	keyID string
	keys  map[string][]byte
	ttl   time.Duration
	now   func() time.Time
}

func New(cfg config.Tokens) (*Issuer, error) {
	const op = "jwt.New"

	if cfg.SigningKey == "" {
		return nil, fmt.Errorf("%s: signing key is empty", op)
	}
	if cfg.SigningKeyID == "" {
		return nil, fmt.Errorf("%s: signing key id is empty", op)
	}

	keys := make(map[string][]byte, len(cfg.RetiredKeys)+1)

	for id, secret := range cfg.RetiredKeys {
		if secret == "" {
			return nil, fmt.Errorf("%s: retired key %q is empty", op, id)
		}
		keys[id] = []byte(secret)
	}

	keys[cfg.SigningKeyID] = []byte(cfg.SigningKey)

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}

	return &Issuer{
		keyID: cfg.SigningKeyID,
		keys:  keys,
		ttl:   ttl,
		now:   time.Now,
	}, nil
}

// NewToken issues a token for uid that expires after the configured TTL.
func (i *Issuer) NewToken(uid string) (string, error) {
	now := i.now()

	claims := jwt.RegisteredClaims{
		Subject:   uid,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header["kid"] = i.keyID

	signed, err := token.SignedString(i.keys[i.keyID])
	if err != nil {
		return "", fmt.Errorf("jwt.NewToken: %w", err)
	}

	return signed, nil
}

// ParseToken verifies the signature and expiry of tokenStr and returns the
// subject it carries.
func (i *Issuer) ParseToken(tokenStr string) (string, error) {
	const op = "jwt.ParseToken"

	var claims jwt.RegisteredClaims

	token, err := jwt.ParseWithClaims(tokenStr, &claims, i.key,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("%s: %w", op, ErrTokenExpired)
		}

		return "", fmt.Errorf("%s: %w: %w", op, ErrTokenInvalid, err)
	}

	if !token.Valid || claims.Subject == "" {
		return "", fmt.Errorf("%s: %w", op, ErrTokenInvalid)
	}

	return claims.Subject, nil
}

func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

func (i *Issuer) key(t *jwt.Token) (interface{}, error) {
	kid, _ := t.Header["kid"].(string)

	secret, ok := i.keys[kid]
	if !ok {
		return nil, fmt.Errorf("unknown signing key %q", kid)
	}

	return secret, nil
}
