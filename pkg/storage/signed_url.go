package storage

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken covers malformed tokens and bad signatures.
	ErrInvalidToken = errors.New("invalid download token")
	// ErrTokenExpired is returned once a token's expiry has passed.
	ErrTokenExpired = errors.New("download token expired")
)

// downloadAudience keeps session tokens signed with a shared secret from
// being accepted as download links.
const downloadAudience = "backup-download"

// Claims is the metadata carried by a signed download token.
type Claims struct {
	JobID     string
	Path      string
	ExpiresAt time.Time
}

type downloadClaims struct {
	File string `json:"file"`
	jwt.RegisteredClaims
}

// SignedURLSigner issues short-lived HS256 tokens naming one archived file.
type SignedURLSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSignedURLSigner(secret string, ttl time.Duration) *SignedURLSigner {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SignedURLSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Generate signs a token for relPath and reports when it stops being valid.
func (s *SignedURLSigner) Generate(jobID, relPath string) (string, time.Time, error) {
	switch {
	case jobID == "" || relPath == "":
		return "", time.Time{}, errors.New("job id and path required")
	case len(s.secret) == 0:
		return "", time.Time{}, errors.New("signing secret missing")
	}

	issuedAt := s.now()
	expiresAt := issuedAt.Add(s.ttl).Truncate(time.Second)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, downloadClaims{
		File: relPath,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jobID,
			Audience:  jwt.ClaimStrings{downloadAudience},
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign download token: %w", err)
	}
	return signed, expiresAt, nil
}

// Parse verifies token. An expired but authentic token returns its claims
// together with ErrTokenExpired.
func (s *SignedURLSigner) Parse(token string) (Claims, error) {
	var dc downloadClaims
	_, err := jwt.ParseWithClaims(token, &dc,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(downloadAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)

	claims := Claims{JobID: dc.ID, Path: dc.File}
	if dc.ExpiresAt != nil {
		claims.ExpiresAt = dc.ExpiresAt.Time
	}
	switch {
	case err == nil && claims.JobID != "" && claims.Path != "":
		return claims, nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return claims, ErrTokenExpired
	default:
		return Claims{}, ErrInvalidToken
	}
}
