package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/keystrand/usermeta/server/auth"
	umcontext "github.com/keystrand/usermeta/server/context"
	"github.com/keystrand/usermeta/server/http/util"
	"github.com/keystrand/usermeta/server/status"
	"github.com/keystrand/usermeta/server/types"
	umauth "github.com/keystrand/usermeta/shared/auth"
)

// AuthMiddleware middleware to verify session tokens and JWT tokens
type AuthMiddleware struct {
	authManager      auth.Manager
	tokenRateLimiter *APIRateLimiter
}

// NewAuthMiddleware instance constructor. Session token requests are rate
// limited per token, a nil rateLimiterConfig applies the default limits.
// JWT requests are not rate limited.
func NewAuthMiddleware(authManager auth.Manager, rateLimiterConfig *RateLimiterConfig) *AuthMiddleware {
	return &AuthMiddleware{
		authManager:      authManager,
		tokenRateLimiter: NewAPIRateLimiter(rateLimiterConfig),
	}
}

// Handler method of the middleware which authenticates a user either by JWT claims or by session token
func (m *AuthMiddleware) Handler(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authParts := strings.Split(r.Header.Get("Authorization"), " ")
		authType := strings.ToLower(authParts[0])

		// fallback to token when receive a session token as bearer
		if len(authParts) >= 2 && authType == "bearer" && strings.HasPrefix(authParts[1], types.SessionTokenPrefix) {
			authType = "token"
			authParts[0] = authType
		}

		switch authType {
		case "bearer":
			request, err := m.checkJWTFromRequest(r, authParts)
			if err != nil {
				log.WithContext(r.Context()).Errorf("Error when validating JWT claims: %s", err.Error())
				util.WriteError(r.Context(), status.Errorf(status.Unauthorized, "token invalid"), w)
				return
			}
			h.ServeHTTP(w, request)
		case "token":
			if len(authParts) == 2 && !m.tokenRateLimiter.Allow(authParts[1]) {
				util.WriteErrorResponse("rate limit exceeded, please try again later", http.StatusTooManyRequests, w)
				return
			}
			request, err := m.checkSessionTokenFromRequest(r, authParts)
			if err != nil {
				log.WithContext(r.Context()).Debugf("Error when validating session token: %s", err.Error())
				util.WriteError(r.Context(), status.Errorf(status.Unauthorized, "token invalid"), w)
				return
			}
			h.ServeHTTP(w, request)
		default:
			util.WriteError(r.Context(), status.Errorf(status.Unauthorized, "no valid authentication provided"), w)
		}
	})
}

// checkJWTFromRequest checks if the JWT is valid
func (m *AuthMiddleware) checkJWTFromRequest(r *http.Request, authParts []string) (*http.Request, error) {
	token, err := getTokenFromJWTRequest(authParts)
	if err != nil {
		return r, fmt.Errorf("error extracting token: %w", err)
	}

	ctx := r.Context()
	userAuth, _, err := m.authManager.ValidateAndParseToken(ctx, token)
	if err != nil {
		return r, err
	}

	return umcontext.SetUserAuthInRequest(r, userAuth), nil
}

// checkSessionTokenFromRequest checks if the session token is valid
func (m *AuthMiddleware) checkSessionTokenFromRequest(r *http.Request, authParts []string) (*http.Request, error) {
	token, err := getTokenFromSessionTokenRequest(authParts)
	if err != nil {
		return r, fmt.Errorf("error extracting token: %w", err)
	}

	ctx := r.Context()
	user, sessionToken, err := m.authManager.GetSessionTokenInfo(ctx, token)
	if err != nil {
		return r, err
	}

	if sessionToken.IsExpired() {
		return r, status.NewSessionExpiredError()
	}

	err = m.authManager.MarkSessionTokenUsed(ctx, sessionToken.ID)
	if err != nil {
		return r, err
	}

	userAuth := umauth.UserAuth{
		UserId:         user.ID,
		Email:          user.Email,
		IsSessionToken: true,
	}

	return umcontext.SetUserAuthInRequest(r, userAuth), nil
}

// getTokenFromJWTRequest is a "TokenExtractor" that takes auth header parts and extracts
// the JWT token from the Authorization header.
func getTokenFromJWTRequest(authHeaderParts []string) (string, error) {
	if len(authHeaderParts) != 2 || strings.ToLower(authHeaderParts[0]) != "bearer" {
		return "", errors.New("Authorization header format must be Bearer {token}")
	}

	return authHeaderParts[1], nil
}

// getTokenFromSessionTokenRequest is a "TokenExtractor" that takes auth header parts and extracts
// the session token from the Authorization header.
func getTokenFromSessionTokenRequest(authHeaderParts []string) (string, error) {
	if len(authHeaderParts) != 2 || strings.ToLower(authHeaderParts[0]) != "token" {
		return "", errors.New("Authorization header format must be Token {token}")
	}

	return authHeaderParts[1], nil
}
