package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/keystrand/usermeta/shared/auth"
)

func newTestToken(claims jwt.MapClaims) *jwt.Token {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
}

func TestClaimsExtractor_ToUserAuth(t *testing.T) {
	issuedAt := time.Date(2023, 8, 17, 9, 30, 40, 0, time.UTC)

	tests := []struct {
		name        string
		options     []ClaimsExtractorOption
		claims      jwt.MapClaims
		expected    auth.UserAuth
		expectError bool
	}{
		{
			name: "All claim fields",
			claims: jwt.MapClaims{
				"sub":   "test",
				"email": "test@example.com",
				"iat":   float64(issuedAt.Unix()),
			},
			expected: auth.UserAuth{
				UserId:    "test",
				Email:     "test@example.com",
				LastLogin: issuedAt,
			},
		},
		{
			name: "Only user id is set",
			claims: jwt.MapClaims{
				"sub": "test",
			},
			expected: auth.UserAuth{
				UserId: "test",
			},
		},
		{
			name:    "Custom user id claim",
			options: []ClaimsExtractorOption{WithUserIDClaim("customUserId")},
			claims: jwt.MapClaims{
				"customUserId": "test",
			},
			expected: auth.UserAuth{
				UserId: "test",
			},
		},
		{
			name: "User id claim missing",
			claims: jwt.MapClaims{
				"email": "test@example.com",
			},
			expectError: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			extractor := NewClaimsExtractor(tc.options...)
			userAuth, err := extractor.ToUserAuth(newTestToken(tc.claims))
			if tc.expectError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.EqualValues(t, tc.expected, userAuth)
		})
	}
}

func TestClaimsExtractor_ToGroups(t *testing.T) {
	extractor := NewClaimsExtractor()

	tests := []struct {
		name     string
		claims   jwt.MapClaims
		expected []string
	}{
		{
			name:     "Groups claim present",
			claims:   jwt.MapClaims{"groups": []interface{}{"group1", "group2"}},
			expected: []string{"group1", "group2"},
		},
		{
			name:     "Groups claim missing",
			claims:   jwt.MapClaims{"sub": "test"},
			expected: []string{},
		},
		{
			name:     "Groups claim has wrong type",
			claims:   jwt.MapClaims{"groups": "group1"},
			expected: []string{},
		},
		{
			name:     "Non string group entries are skipped",
			claims:   jwt.MapClaims{"groups": []interface{}{"group1", 42}},
			expected: []string{"group1"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			groups := extractor.ToGroups(newTestToken(tc.claims), "groups")
			require.Equal(t, tc.expected, groups)
		})
	}
}

func TestClaimsExtractor_ToEmail(t *testing.T) {
	extractor := NewClaimsExtractor()

	token := newTestToken(jwt.MapClaims{"email": "test@example.com"})
	require.Equal(t, "test@example.com", extractor.ToEmail(token))

	token = newTestToken(jwt.MapClaims{"sub": "test"})
	require.Equal(t, "", extractor.ToEmail(token))
}

func TestClaimsExtractorSetOptions(t *testing.T) {
	extractor := NewClaimsExtractor()
	if extractor.userIDClaim != UserIDClaim {
		t.Errorf("user id claim should be default, expected %s, got %s", UserIDClaim, extractor.userIDClaim)
	}

	extractor = NewClaimsExtractor(WithUserIDClaim("customUserId"))
	if extractor.userIDClaim != "customUserId" {
		t.Errorf("user id claim expected %s, got %s", "customUserId", extractor.userIDClaim)
	}
}
