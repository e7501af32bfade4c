package auth

import (
	"context"

	"github.com/golang-jwt/jwt/v5"

	"github.com/keystrand/usermeta/server/types"
	"github.com/keystrand/usermeta/shared/auth"
)

var (
	_ Manager = (*MockManager)(nil)
)

type MockManager struct {
	ValidateAndParseTokenFunc func(ctx context.Context, value string) (auth.UserAuth, *jwt.Token, error)
	MarkSessionTokenUsedFunc  func(ctx context.Context, tokenID string) error
	GetSessionTokenInfoFunc   func(ctx context.Context, token string) (*types.User, *types.SessionToken, error)
}

// ValidateAndParseToken implements Manager.
func (m *MockManager) ValidateAndParseToken(ctx context.Context, value string) (auth.UserAuth, *jwt.Token, error) {
	if m.ValidateAndParseTokenFunc != nil {
		return m.ValidateAndParseTokenFunc(ctx, value)
	}
	return auth.UserAuth{}, &jwt.Token{}, nil
}

// MarkSessionTokenUsed implements Manager.
func (m *MockManager) MarkSessionTokenUsed(ctx context.Context, tokenID string) error {
	if m.MarkSessionTokenUsedFunc != nil {
		return m.MarkSessionTokenUsedFunc(ctx, tokenID)
	}
	return nil
}

// GetSessionTokenInfo implements Manager.
func (m *MockManager) GetSessionTokenInfo(ctx context.Context, token string) (*types.User, *types.SessionToken, error) {
	if m.GetSessionTokenInfoFunc != nil {
		return m.GetSessionTokenInfoFunc(ctx, token)
	}
	return &types.User{}, &types.SessionToken{}, nil
}
