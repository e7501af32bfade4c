package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keystrand/usermeta/server/auth"
	umcontext "github.com/keystrand/usermeta/server/context"
	"github.com/keystrand/usermeta/server/types"
	"github.com/keystrand/usermeta/util"
	umauth "github.com/keystrand/usermeta/shared/auth"
)

const (
	userID              = "userID"
	userEmail           = "user@example.com"
	tokenID             = "tokenID"
	expiredTokenID      = "expiredTokenID"
	sessionToken        = "ums_sessionToken"
	expiredSessionToken = "ums_expiredSessionToken"
	JWT                 = "JWT"
	wrongToken          = "wrongToken"
)

var testUser = &types.User{
	ID:    userID,
	Email: userEmail,
}

var testSessionToken = &types.SessionToken{
	ID:             tokenID,
	UserID:         userID,
	Name:           "My first token",
	HashedToken:    "someHash",
	ExpirationDate: util.ToPtr(time.Now().UTC().AddDate(0, 0, 7)),
	CreatedBy:      userID,
	CreatedAt:      time.Now().UTC(),
	LastUsed:       util.ToPtr(time.Now().UTC()),
}

var testExpiredSessionToken = &types.SessionToken{
	ID:             expiredTokenID,
	UserID:         userID,
	Name:           "My expired token",
	HashedToken:    "someOtherHash",
	ExpirationDate: util.ToPtr(time.Now().UTC().AddDate(0, 0, -7)),
	CreatedBy:      userID,
	CreatedAt:      time.Now().UTC().AddDate(0, 0, -14),
	LastUsed:       util.ToPtr(time.Now().UTC().AddDate(0, 0, -8)),
}

func mockGetSessionTokenInfo(_ context.Context, token string) (*types.User, *types.SessionToken, error) {
	if token == sessionToken {
		return testUser, testSessionToken, nil
	}
	if token == expiredSessionToken {
		return testUser, testExpiredSessionToken, nil
	}
	return nil, nil, fmt.Errorf("session token invalid")
}

func mockValidateAndParseToken(_ context.Context, token string) (umauth.UserAuth, *jwt.Token, error) {
	if token == JWT {
		return umauth.UserAuth{
				UserId: userID,
				Email:  userEmail,
			},
			&jwt.Token{
				Claims: jwt.MapClaims{
					"sub":   userID,
					"email": userEmail,
				},
				Valid: true,
			}, nil
	}
	return umauth.UserAuth{}, nil, fmt.Errorf("JWT invalid")
}

func mockMarkSessionTokenUsed(_ context.Context, id string) error {
	if id == tokenID {
		return nil
	}
	return fmt.Errorf("should never get reached")
}

func TestAuthMiddleware_Handler(t *testing.T) {
	tt := []struct {
		name               string
		authHeader         string
		expectedStatusCode int
	}{
		{
			name:               "Valid Session Token",
			authHeader:         "Token " + sessionToken,
			expectedStatusCode: 200,
		},
		{
			name:               "Invalid Session Token",
			authHeader:         "Token " + wrongToken,
			expectedStatusCode: 401,
		},
		{
			name:               "Expired Session Token",
			authHeader:         "Token " + expiredSessionToken,
			expectedStatusCode: 401,
		},
		{
			name:               "Fallback to Session Token",
			authHeader:         "Bearer " + sessionToken,
			expectedStatusCode: 200,
		},
		{
			name:               "Valid JWT Token",
			authHeader:         "Bearer " + JWT,
			expectedStatusCode: 200,
		},
		{
			name:               "Invalid JWT Token",
			authHeader:         "Bearer " + wrongToken,
			expectedStatusCode: 401,
		},
		{
			name:               "Basic Auth",
			authHeader:         "Basic  " + sessionToken,
			expectedStatusCode: 401,
		},
		{
			name:               "No Authorization Header",
			authHeader:         "",
			expectedStatusCode: 401,
		},
	}

	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

	})

	mockAuth := &auth.MockManager{
		ValidateAndParseTokenFunc: mockValidateAndParseToken,
		MarkSessionTokenUsedFunc:  mockMarkSessionTokenUsed,
		GetSessionTokenInfoFunc:   mockGetSessionTokenInfo,
	}

	authMiddleware := NewAuthMiddleware(mockAuth, nil)
	handlerToTest := authMiddleware.Handler(nextHandler)

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "http://testing/test", nil)
			req.Header.Set("Authorization", tc.authHeader)
			rec := httptest.NewRecorder()

			handlerToTest.ServeHTTP(rec, req)

			result := rec.Result()
			defer result.Body.Close()

			if result.StatusCode != tc.expectedStatusCode {
				t.Errorf("expected status code %d, got %d", tc.expectedStatusCode, result.StatusCode)
			}
		})
	}
}

func TestAuthMiddleware_UserAuthContext(t *testing.T) {
	mockAuth := &auth.MockManager{
		ValidateAndParseTokenFunc: mockValidateAndParseToken,
		MarkSessionTokenUsedFunc:  mockMarkSessionTokenUsed,
		GetSessionTokenInfoFunc:   mockGetSessionTokenInfo,
	}

	var captured umauth.UserAuth
	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAuth, err := umcontext.GetUserAuthFromRequest(r)
		require.NoError(t, err)
		captured = userAuth
	})

	authMiddleware := NewAuthMiddleware(mockAuth, nil)
	handlerToTest := authMiddleware.Handler(nextHandler)

	t.Run("Session Token Identity", func(t *testing.T) {
		req := httptest.NewRequest("GET", "http://testing/test", nil)
		req.Header.Set("Authorization", "Token "+sessionToken)

		handlerToTest.ServeHTTP(httptest.NewRecorder(), req)

		assert.Equal(t, umauth.UserAuth{UserId: userID, Email: userEmail, IsSessionToken: true}, captured)
	})

	t.Run("JWT Identity", func(t *testing.T) {
		req := httptest.NewRequest("GET", "http://testing/test", nil)
		req.Header.Set("Authorization", "Bearer "+JWT)

		handlerToTest.ServeHTTP(httptest.NewRecorder(), req)

		assert.Equal(t, umauth.UserAuth{UserId: userID, Email: userEmail}, captured)
	})
}

func TestAuthMiddleware_RateLimiting(t *testing.T) {
	mockAuth := &auth.MockManager{
		ValidateAndParseTokenFunc: mockValidateAndParseToken,
		MarkSessionTokenUsedFunc:  mockMarkSessionTokenUsed,
		GetSessionTokenInfoFunc:   mockGetSessionTokenInfo,
	}

	t.Run("Session Token Rate Limiting - Burst Works", func(t *testing.T) {
		rateLimitConfig := &RateLimiterConfig{
			RequestsPerMinute: 10,
			Burst:             5,
			CleanupInterval:   5 * time.Minute,
			LimiterTTL:        10 * time.Minute,
		}

		authMiddleware := NewAuthMiddleware(mockAuth, rateLimitConfig)
		handler := authMiddleware.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		successCount := 0
		for i := 0; i < 5; i++ {
			req := httptest.NewRequest("GET", "http://testing/test", nil)
			req.Header.Set("Authorization", "Token "+sessionToken)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)
			if rec.Code == http.StatusOK {
				successCount++
			}
		}

		assert.Equal(t, 5, successCount, "All burst requests should succeed")

		req := httptest.NewRequest("GET", "http://testing/test", nil)
		req.Header.Set("Authorization", "Token "+sessionToken)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusTooManyRequests, rec.Code, "Request beyond burst should be rate limited")
	})

	t.Run("Session Token Rate Limiting - Rate Limit Enforced", func(t *testing.T) {
		rateLimitConfig := &RateLimiterConfig{
			RequestsPerMinute: 1,
			Burst:             1,
			CleanupInterval:   5 * time.Minute,
			LimiterTTL:        10 * time.Minute,
		}

		authMiddleware := NewAuthMiddleware(mockAuth, rateLimitConfig)
		handler := authMiddleware.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest("GET", "http://testing/test", nil)
		req.Header.Set("Authorization", "Token "+sessionToken)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, "First request should succeed")

		req = httptest.NewRequest("GET", "http://testing/test", nil)
		req.Header.Set("Authorization", "Token "+sessionToken)
		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusTooManyRequests, rec.Code, "Second request should be rate limited")
	})

	t.Run("Bearer Token Not Rate Limited", func(t *testing.T) {
		rateLimitConfig := &RateLimiterConfig{
			RequestsPerMinute: 1,
			Burst:             1,
			CleanupInterval:   5 * time.Minute,
			LimiterTTL:        10 * time.Minute,
		}

		authMiddleware := NewAuthMiddleware(mockAuth, rateLimitConfig)
		handler := authMiddleware.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		successCount := 0
		for i := 0; i < 10; i++ {
			req := httptest.NewRequest("GET", "http://testing/test", nil)
			req.Header.Set("Authorization", "Bearer "+JWT)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)
			if rec.Code == http.StatusOK {
				successCount++
			}
		}

		assert.Equal(t, 10, successCount, "All Bearer token requests should succeed (not rate limited)")
	})
}
