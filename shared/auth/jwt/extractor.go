package jwt

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"

	"github.com/keystrand/usermeta/shared/auth"
)

const (
	// UserIDClaim claim for the user id
	UserIDClaim = "sub"
	// EmailClaim claim for the user email
	EmailClaim = "email"
)

// ClaimsExtractor reads the usermeta relevant claims from a validated token
type ClaimsExtractor struct {
	userIDClaim string
}

// ClaimsExtractorOption is a function that configures the ClaimsExtractor
type ClaimsExtractorOption func(*ClaimsExtractor)

// WithUserIDClaim sets the user id claim for the extractor
func WithUserIDClaim(userIDClaim string) ClaimsExtractorOption {
	return func(c *ClaimsExtractor) {
		c.userIDClaim = userIDClaim
	}
}

// NewClaimsExtractor returns an extractor for the configured user id claim,
// falling back to the standard subject claim
func NewClaimsExtractor(options ...ClaimsExtractorOption) *ClaimsExtractor {
	ce := &ClaimsExtractor{}
	for _, option := range options {
		option(ce)
	}
	if ce.userIDClaim == "" {
		ce.userIDClaim = UserIDClaim
	}
	return ce
}

// ToUserAuth builds a UserAuth from the claims of a validated token
func (c *ClaimsExtractor) ToUserAuth(token *jwt.Token) (auth.UserAuth, error) {
	claims := token.Claims.(jwt.MapClaims)
	userAuth := auth.UserAuth{}

	userID, ok := claims[c.userIDClaim].(string)
	if !ok {
		return userAuth, errors.New("user id claim absent in the token")
	}
	userAuth.UserId = userID

	if email, ok := claims[EmailClaim].(string); ok {
		userAuth.Email = email
	}

	if issuedAt, err := claims.GetIssuedAt(); err == nil && issuedAt != nil {
		userAuth.LastLogin = issuedAt.UTC()
	}

	return userAuth, nil
}

// ToGroups returns the groups of the given claim of a validated token
func (c *ClaimsExtractor) ToGroups(token *jwt.Token, claimName string) []string {
	claims := token.Claims.(jwt.MapClaims)
	userJWTGroups := make([]string, 0)

	if claim, ok := claims[claimName]; ok {
		if claimGroups, ok := claim.([]interface{}); ok {
			for _, g := range claimGroups {
				if group, ok := g.(string); ok {
					userJWTGroups = append(userJWTGroups, group)
				}
			}
		}
	}

	return userJWTGroups
}

// ToEmail returns the email claim of a validated token, empty when absent
func (c *ClaimsExtractor) ToEmail(token *jwt.Token) string {
	claims := token.Claims.(jwt.MapClaims)
	if email, ok := claims[EmailClaim].(string); ok {
		return email
	}
	return ""
}
