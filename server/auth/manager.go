package auth

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"hash/crc32"

	"github.com/golang-jwt/jwt/v5"
	log "github.com/sirupsen/logrus"

	"github.com/keystrand/usermeta/base62"
	"github.com/keystrand/usermeta/server/cache"
	"github.com/keystrand/usermeta/server/store"
	"github.com/keystrand/usermeta/server/types"
	"github.com/keystrand/usermeta/shared/auth"
	umjwt "github.com/keystrand/usermeta/shared/auth/jwt"
)

var _ Manager = (*manager)(nil)

type Manager interface {
	ValidateAndParseToken(ctx context.Context, value string) (auth.UserAuth, *jwt.Token, error)
	MarkSessionTokenUsed(ctx context.Context, tokenID string) error
	GetSessionTokenInfo(ctx context.Context, token string) (user *types.User, sessionToken *types.SessionToken, err error)
}

type manager struct {
	store        store.Store
	sessionCache cache.SessionCache

	groupsClaim string
	validator   *umjwt.Validator
	extractor   *umjwt.ClaimsExtractor
}

// NewManager builds a manager that validates framework session JWTs with the
// shared secret and resolves opaque session tokens against the store.
// @note if invalid/missing parameters are sent the validator will instantiate
// but it will fail when validating and parsing the token
func NewManager(store store.Store, sessionCache cache.SessionCache, issuer string, audiences []string, secret []byte, userIdClaim, groupsClaim string) Manager {
	jwtValidator := umjwt.NewValidator(issuer, audiences, secret)

	claimsExtractor := umjwt.NewClaimsExtractor(
		umjwt.WithUserIDClaim(userIdClaim),
	)

	return &manager{
		store:        store,
		sessionCache: sessionCache,

		groupsClaim: groupsClaim,
		validator:   jwtValidator,
		extractor:   claimsExtractor,
	}
}

func (m *manager) ValidateAndParseToken(ctx context.Context, value string) (auth.UserAuth, *jwt.Token, error) {
	token, err := m.validator.ValidateAndParse(ctx, value)
	if err != nil {
		return auth.UserAuth{}, nil, err
	}

	userAuth, err := m.extractor.ToUserAuth(token)
	if err != nil {
		return auth.UserAuth{}, nil, err
	}

	if m.groupsClaim != "" {
		if groups := m.extractor.ToGroups(token, m.groupsClaim); len(groups) > 0 {
			userAuth.Groups = groups
		}
	}

	return userAuth, token, nil
}

// MarkSessionTokenUsed marks a session token as used
func (am *manager) MarkSessionTokenUsed(ctx context.Context, tokenID string) error {
	return am.store.MarkSessionTokenUsed(ctx, tokenID)
}

// GetSessionTokenInfo retrieves the user and token details for a presented
// opaque session token.
func (am *manager) GetSessionTokenInfo(ctx context.Context, token string) (*types.User, *types.SessionToken, error) {
	return am.extractSessionTokenFromToken(ctx, token)
}

// extractSessionTokenFromToken validates the token structure and retrieves the
// associated User and SessionToken, going through the session cache first.
func (am *manager) extractSessionTokenFromToken(ctx context.Context, token string) (*types.User, *types.SessionToken, error) {
	if len(token) != types.SessionTokenLength {
		return nil, nil, fmt.Errorf("session token has incorrect length")
	}

	prefix := token[:len(types.SessionTokenPrefix)]
	if prefix != types.SessionTokenPrefix {
		return nil, nil, fmt.Errorf("session token has wrong prefix")
	}
	secret := token[len(types.SessionTokenPrefix) : len(types.SessionTokenPrefix)+types.SessionTokenSecretLength]
	encodedChecksum := token[len(types.SessionTokenPrefix)+types.SessionTokenSecretLength : len(types.SessionTokenPrefix)+types.SessionTokenSecretLength+types.SessionTokenChecksumLength]

	verificationChecksum, err := base62.Decode(encodedChecksum)
	if err != nil {
		return nil, nil, fmt.Errorf("session token checksum decoding failed: %w", err)
	}

	secretChecksum := crc32.ChecksumIEEE([]byte(secret))
	if secretChecksum != verificationChecksum {
		return nil, nil, fmt.Errorf("session token checksum does not match")
	}

	hashedToken := sha256.Sum256([]byte(token))
	encodedHashedToken := base64.StdEncoding.EncodeToString(hashedToken[:])

	if data, err := am.sessionCache.Get(ctx, encodedHashedToken); err == nil {
		user, sessionToken := sessionFromCachedData(data)
		if !sessionToken.IsExpired() {
			return user, sessionToken, nil
		}
		// evict and fall through to the store for the authoritative record
		if err := am.sessionCache.Delete(ctx, encodedHashedToken); err != nil {
			log.WithContext(ctx).Warnf("failed to evict expired session token from cache: %v", err)
		}
	}

	sessionToken, err := am.store.GetSessionTokenByHashedToken(ctx, encodedHashedToken)
	if err != nil {
		return nil, nil, err
	}

	user, err := am.store.GetUserBySessionTokenID(ctx, sessionToken.ID)
	if err != nil {
		return nil, nil, err
	}

	if err := am.sessionCache.Set(ctx, encodedHashedToken, sessionTokenData(user, sessionToken), cache.EntryExpiration()); err != nil {
		log.WithContext(ctx).Warnf("failed to cache session token data: %v", err)
	}

	return user, sessionToken, nil
}

func sessionTokenData(user *types.User, sessionToken *types.SessionToken) *cache.SessionTokenData {
	return &cache.SessionTokenData{
		TokenID:        sessionToken.ID,
		TokenName:      sessionToken.Name,
		UserID:         user.ID,
		UserEmail:      user.Email,
		ExpirationDate: sessionToken.ExpirationDate,
	}
}

// sessionFromCachedData rebuilds the subset of the user and token records the
// request path needs from a cache entry.
func sessionFromCachedData(data *cache.SessionTokenData) (*types.User, *types.SessionToken) {
	user := &types.User{
		ID:    data.UserID,
		Email: data.UserEmail,
	}
	sessionToken := &types.SessionToken{
		ID:             data.TokenID,
		UserID:         data.UserID,
		Name:           data.TokenName,
		ExpirationDate: data.ExpirationDate,
	}
	return user, sessionToken
}
