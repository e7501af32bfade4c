package metadata

import (
	"context"

	"github.com/keystrand/usermeta/server/activity"
)

var (
	_ Manager = (*MockManager)(nil)
)

type MockManager struct {
	GetUserMetadataFunc    func(ctx context.Context, userID string) (map[string]any, error)
	SetUserMetadataFunc    func(ctx context.Context, userID string, metadata map[string]any, merge bool) (map[string]any, error)
	UpdateUserMetadataFunc func(ctx context.Context, userID string, path string, value any) (map[string]any, error)
	DeleteUserMetadataFunc func(ctx context.Context, userID string) error
	GetEventsFunc          func(ctx context.Context, userID string) ([]*activity.Event, error)
}

// GetUserMetadata implements Manager.
func (m *MockManager) GetUserMetadata(ctx context.Context, userID string) (map[string]any, error) {
	if m.GetUserMetadataFunc != nil {
		return m.GetUserMetadataFunc(ctx, userID)
	}
	return nil, nil
}

// SetUserMetadata implements Manager.
func (m *MockManager) SetUserMetadata(ctx context.Context, userID string, metadata map[string]any, merge bool) (map[string]any, error) {
	if m.SetUserMetadataFunc != nil {
		return m.SetUserMetadataFunc(ctx, userID, metadata, merge)
	}
	return metadata, nil
}

// UpdateUserMetadata implements Manager.
func (m *MockManager) UpdateUserMetadata(ctx context.Context, userID string, path string, value any) (map[string]any, error) {
	if m.UpdateUserMetadataFunc != nil {
		return m.UpdateUserMetadataFunc(ctx, userID, path, value)
	}
	return nil, nil
}

// DeleteUserMetadata implements Manager.
func (m *MockManager) DeleteUserMetadata(ctx context.Context, userID string) error {
	if m.DeleteUserMetadataFunc != nil {
		return m.DeleteUserMetadataFunc(ctx, userID)
	}
	return nil
}

// GetEvents implements Manager.
func (m *MockManager) GetEvents(ctx context.Context, userID string) ([]*activity.Event, error) {
	if m.GetEventsFunc != nil {
		return m.GetEventsFunc(ctx, userID)
	}
	return []*activity.Event{}, nil
}
