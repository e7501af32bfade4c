package jwt

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	log "github.com/sirupsen/logrus"
)

// Validator validates and parses session JWTs issued by the host
// authentication framework. Tokens are signed with the framework's
// shared HMAC secret.
type Validator struct {
	parser  *jwt.Parser
	keyFunc jwt.Keyfunc
}

// NewValidator constructor
// @note if an empty secret is passed the validator will instantiate
// but it will fail when validating and parsing the token
func NewValidator(issuer string, audienceList []string, secret []byte) *Validator {
	keyFunc := func(token *jwt.Token) (interface{}, error) {
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return nil, errors.New("unexpected token claims type")
		}

		if err := checkAudience(claims, audienceList); err != nil {
			return nil, err
		}

		return secret, nil
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
	)

	return &Validator{
		parser:  parser,
		keyFunc: keyFunc,
	}
}

// ValidateAndParse validates the token and returns the parsed token
func (v *Validator) ValidateAndParse(ctx context.Context, token string) (*jwt.Token, error) {
	if token == "" {
		return nil, errors.New("required authorization token not found")
	}

	parsedToken, err := v.parser.Parse(token, v.keyFunc)
	if err != nil {
		log.WithContext(ctx).Debugf("error parsing token: %v", err)
		return nil, fmt.Errorf("error parsing token: %w", err)
	}

	if !parsedToken.Valid {
		return nil, errors.New("token is invalid")
	}

	return parsedToken, nil
}

// checkAudience accepts a token when it carries no audience claim or when any
// of its audiences matches one of the configured audiences.
func checkAudience(claims jwt.MapClaims, audienceList []string) error {
	tokenAudiences, err := claims.GetAudience()
	if err != nil {
		return fmt.Errorf("invalid audience claim: %w", err)
	}

	if len(tokenAudiences) == 0 {
		return nil
	}

	for _, tokenAudience := range tokenAudiences {
		for _, audience := range audienceList {
			if tokenAudience == audience {
				return nil
			}
		}
	}

	return errors.New("invalid audience")
}
