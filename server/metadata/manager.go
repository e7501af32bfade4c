package metadata

import (
	"context"
	"encoding/json"
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/keystrand/usermeta/server/activity"
	"github.com/keystrand/usermeta/server/status"
	"github.com/keystrand/usermeta/server/store"
)

var _ Manager = (*DefaultManager)(nil)

// Manager is the domain API for per user metadata objects and their activity
// trail. Writes follow a last write wins model, concurrent callers are not
// serialized.
type Manager interface {
	GetUserMetadata(ctx context.Context, userID string) (map[string]any, error)
	SetUserMetadata(ctx context.Context, userID string, metadata map[string]any, merge bool) (map[string]any, error)
	UpdateUserMetadata(ctx context.Context, userID string, path string, value any) (map[string]any, error)
	DeleteUserMetadata(ctx context.Context, userID string) error
	GetEvents(ctx context.Context, userID string) ([]*activity.Event, error)
}

// DefaultManager is a Manager backed by a relational store and an activity
// event sink.
type DefaultManager struct {
	store      store.Store
	eventStore activity.Store
}

func NewManager(store store.Store, eventStore activity.Store) *DefaultManager {
	return &DefaultManager{
		store:      store,
		eventStore: eventStore,
	}
}

func eventsEnabled() bool {
	response := os.Getenv("UM_EVENT_ACTIVITY_LOG_ENABLED")
	return response == "" || response == "true"
}

// GetUserMetadata returns the stored metadata object of the user, nil when the
// user is unknown or has no metadata stored.
func (m *DefaultManager) GetUserMetadata(ctx context.Context, userID string) (map[string]any, error) {
	raw, err := m.store.GetUserMetadata(ctx, userID)
	if err != nil {
		if e, ok := status.FromError(err); ok && e.Type() == status.NotFound {
			return nil, nil
		}
		return nil, err
	}

	return unmarshalMetadata(raw)
}

// SetUserMetadata stores the given metadata object for the user and returns
// the stored object. With merge enabled the incoming top-level keys are laid
// over the existing object, otherwise the existing object is replaced.
func (m *DefaultManager) SetUserMetadata(ctx context.Context, userID string, metadata map[string]any, merge bool) (map[string]any, error) {
	result := metadata
	if merge {
		existing, err := m.GetUserMetadata(ctx, userID)
		if err != nil {
			return nil, err
		}
		result = Merge(existing, metadata)
	}

	raw, err := marshalMetadata(result)
	if err != nil {
		return nil, err
	}

	if err := m.store.SaveUserMetadata(ctx, userID, raw); err != nil {
		return nil, err
	}

	m.storeEvent(ctx, userID, activity.MetadataSet, map[string]any{"merge": merge})

	return result, nil
}

// UpdateUserMetadata assigns value at the dot-separated path inside the user's
// metadata object and returns the updated object. Missing or non-object
// intermediate segments are replaced with empty objects.
func (m *DefaultManager) UpdateUserMetadata(ctx context.Context, userID string, path string, value any) (map[string]any, error) {
	existing, err := m.GetUserMetadata(ctx, userID)
	if err != nil {
		return nil, err
	}

	updated, err := SetPath(existing, path, value)
	if err != nil {
		return nil, err
	}

	raw, err := marshalMetadata(updated)
	if err != nil {
		return nil, err
	}

	if err := m.store.SaveUserMetadata(ctx, userID, raw); err != nil {
		return nil, err
	}

	m.storeEvent(ctx, userID, activity.MetadataUpdated, map[string]any{"path": path})

	return updated, nil
}

// DeleteUserMetadata removes the metadata object of the user. Deleting for a
// user without stored metadata succeeds.
func (m *DefaultManager) DeleteUserMetadata(ctx context.Context, userID string) error {
	if err := m.store.SaveUserMetadata(ctx, userID, nil); err != nil {
		return err
	}

	m.storeEvent(ctx, userID, activity.MetadataDeleted, nil)

	return nil
}

// GetEvents returns the metadata activity events recorded for the user, most
// recent first.
func (m *DefaultManager) GetEvents(ctx context.Context, userID string) ([]*activity.Event, error) {
	return m.eventStore.Get(ctx, userID, 0, 10000, true)
}

func (m *DefaultManager) storeEvent(ctx context.Context, userID string, activityID activity.Activity, meta map[string]any) {
	if !eventsEnabled() {
		return
	}

	go func() {
		_, err := m.eventStore.Save(ctx, &activity.Event{
			Timestamp:   time.Now().UTC(),
			Activity:    activityID,
			InitiatorID: userID,
			TargetID:    userID,
			Meta:        meta,
		})
		if err != nil {
			log.WithContext(ctx).Errorf("received an error while storing an activity event, error: %s", err)
		}
	}()
}

func marshalMetadata(metadata map[string]any) (*string, error) {
	data, err := json.Marshal(metadata)
	if err != nil {
		return nil, status.Errorf(status.Internal, "failed to serialize metadata object")
	}
	raw := string(data)
	return &raw, nil
}

func unmarshalMetadata(raw *string) (map[string]any, error) {
	if raw == nil {
		return nil, nil
	}

	var metadata map[string]any
	if err := json.Unmarshal([]byte(*raw), &metadata); err != nil {
		return nil, status.Errorf(status.Internal, "failed to parse stored metadata object")
	}
	return metadata, nil
}
