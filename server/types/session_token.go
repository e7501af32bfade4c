package types

import (
	"crypto/sha256"
	b64 "encoding/base64"
	"fmt"
	"hash/crc32"
	"time"

	b "github.com/hashicorp/go-secure-stdlib/base62"
	"github.com/rs/xid"

	"github.com/keystrand/usermeta/base62"
)

const (
	// SessionTokenPrefix is the globally used, 4 character prefix for session tokens
	SessionTokenPrefix = "ums_"
	// SessionTokenSecretLength number of characters used for the secret inside the token
	SessionTokenSecretLength = 30
	// SessionTokenChecksumLength number of characters used for the encoded checksum
	SessionTokenChecksumLength = 6
	// SessionTokenLength total number of characters used for a plain text token
	SessionTokenLength = 40
)

// SessionToken is an opaque API token issued to a user. Only the hash of the
// plain text token is persisted.
type SessionToken struct {
	ID             string `gorm:"primaryKey"`
	UserID         string `gorm:"index"`
	Name           string
	HashedToken    string `gorm:"index"`
	ExpirationDate *time.Time
	CreatedBy      string
	CreatedAt      time.Time
	LastUsed       *time.Time
}

// IsExpired reports whether the token carries an expiration date that has passed.
func (t *SessionToken) IsExpired() bool {
	return t.ExpirationDate != nil && t.ExpirationDate.Before(time.Now().UTC())
}

// Copy returns a copy of the token.
func (t *SessionToken) Copy() *SessionToken {
	token := &SessionToken{
		ID:          t.ID,
		UserID:      t.UserID,
		Name:        t.Name,
		HashedToken: t.HashedToken,
		CreatedBy:   t.CreatedBy,
		CreatedAt:   t.CreatedAt,
	}

	if t.ExpirationDate != nil {
		expiration := *t.ExpirationDate
		token.ExpirationDate = &expiration
	}

	if t.LastUsed != nil {
		lastUsed := *t.LastUsed
		token.LastUsed = &lastUsed
	}

	return token
}

// SessionTokenGenerated holds the new SessionToken along with its plain text
// form. The plain text token is shown to the user once and never persisted.
type SessionTokenGenerated struct {
	PlainToken string
	SessionToken
}

// CreateNewSessionToken creates a new usable SessionToken for the target user.
// A non-positive expirationInDays produces a token that never expires.
func CreateNewSessionToken(name string, expirationInDays int, targetID, createdBy string) (*SessionTokenGenerated, error) {
	hashedToken, plainToken, err := generateNewToken()
	if err != nil {
		return nil, err
	}

	currentTime := time.Now().UTC()
	token := SessionToken{
		ID:          xid.New().String(),
		UserID:      targetID,
		Name:        name,
		HashedToken: hashedToken,
		CreatedBy:   createdBy,
		CreatedAt:   currentTime,
	}
	if expirationInDays > 0 {
		expiration := currentTime.AddDate(0, 0, expirationInDays)
		token.ExpirationDate = &expiration
	}

	return &SessionTokenGenerated{
		SessionToken: token,
		PlainToken:   plainToken,
	}, nil
}

func generateNewToken() (string, string, error) {
	secret, err := b.Random(SessionTokenSecretLength)
	if err != nil {
		return "", "", err
	}

	checksum := crc32.ChecksumIEEE([]byte(secret))
	encodedChecksum := base62.Encode(checksum)
	paddedChecksum := fmt.Sprintf("%06s", encodedChecksum)
	plainToken := SessionTokenPrefix + secret + paddedChecksum
	hashedToken := sha256.Sum256([]byte(plainToken))
	encodedHashedToken := b64.StdEncoding.EncodeToString(hashedToken[:])
	return encodedHashedToken, plainToken, nil
}
