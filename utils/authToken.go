package utils

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/o1egl/paseto"
)

// AccessTokenExpiry is the fixed token lifetime. There is no refresh
// mechanism; clients re-login after expiry.
const AccessTokenExpiry = 1440 * time.Minute

// SymmetricKeySize is the required key length for PASETO v2 local tokens.
const SymmetricKeySize = 32

var ErrInvalidToken = errors.New("invalid or expired token")

// TokenClaims is the payload carried inside an access token.
type TokenClaims struct {
	Subject string    `json:"sub"`
	Name    string    `json:"name"`
	Email   string    `json:"email"`
	Expiry  time.Time `json:"expiry"`
}

// TokenMaker issues and verifies access tokens. Verification is pure and
// stateless; any process holding the same key can verify tokens issued here.
type TokenMaker struct {
	key []byte
}

// NewTokenMaker builds a TokenMaker from the configured symmetric key.
// The key comes from configuration, never a source literal.
func NewTokenMaker(key []byte) (*TokenMaker, error) {
	if len(key) != SymmetricKeySize {
		return nil, fmt.Errorf("symmetric key must be %d bytes long, got %d", SymmetricKeySize, len(key))
	}
	return &TokenMaker{key: key}, nil
}

// Issue creates an access token for the given doctor with the fixed lifetime.
func (m *TokenMaker) Issue(doctorID int64, name, email string) (string, time.Time, error) {
	return m.issue(doctorID, name, email, AccessTokenExpiry)
}

func (m *TokenMaker) issue(doctorID int64, name, email string, lifetime time.Duration) (string, time.Time, error) {
	expiry := time.Now().Add(lifetime)
	claims := TokenClaims{
		Subject: strconv.FormatInt(doctorID, 10),
		Name:    name,
		Email:   email,
		Expiry:  expiry,
	}

	token, err := paseto.NewV2().Encrypt(m.key, claims, nil)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate token: %w", err)
	}
	return token, expiry, nil
}

// Verify decrypts and validates a token, returning the doctor ID it was
// issued for. Bad key, malformed token, missing subject, and expiry all
// collapse into ErrInvalidToken; the distinction only reaches the logs.
func (m *TokenMaker) Verify(tokenString string) (int64, error) {
	var claims TokenClaims
	if err := paseto.NewV2().Decrypt(tokenString, m.key, &claims, nil); err != nil {
		log.Printf("Token decryption failed: %v", err)
		return 0, ErrInvalidToken
	}

	if time.Now().After(claims.Expiry) {
		log.Printf("Token expired at %s for subject %q", claims.Expiry.Format(time.RFC3339), claims.Subject)
		return 0, ErrInvalidToken
	}

	if claims.Subject == "" {
		log.Println("Token missing subject claim")
		return 0, ErrInvalidToken
	}

	doctorID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		log.Printf("Token subject is not a doctor ID: %v", err)
		return 0, ErrInvalidToken
	}

	return doctorID, nil
}
