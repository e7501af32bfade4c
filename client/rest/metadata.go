package rest

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/keystrand/usermeta/server/http/api"
)

// MetadataAPI APIs for the user metadata object, do not use directly
type MetadataAPI struct {
	c *Client
}

// Set replaces or merges the metadata object of the authenticated user.
// Merging is the default, set Merge to false to replace the stored object.
func (a *MetadataAPI) Set(ctx context.Context, request api.SetMetadataRequest) (*api.MetadataResponse, error) {
	requestBytes, err := json.Marshal(request)
	if err != nil {
		return nil, err
	}
	resp, err := a.c.newRequest(ctx, "POST", "/api/metadata/set", bytes.NewReader(requestBytes))
	if err != nil {
		return nil, err
	}
	if resp.Body != nil {
		defer resp.Body.Close()
	}
	ret, err := parseResponse[api.MetadataResponse](resp)
	return &ret, err
}

// Get retrieves the metadata object of the authenticated user. The returned
// metadata is nil when the user has none stored.
func (a *MetadataAPI) Get(ctx context.Context) (*api.GetMetadataResponse, error) {
	resp, err := a.c.newRequest(ctx, "GET", "/api/metadata/get", nil)
	if err != nil {
		return nil, err
	}
	if resp.Body != nil {
		defer resp.Body.Close()
	}
	ret, err := parseResponse[api.GetMetadataResponse](resp)
	return &ret, err
}

// Update sets a single value inside the metadata object of the authenticated
// user, addressed by a dot separated path
func (a *MetadataAPI) Update(ctx context.Context, request api.UpdateMetadataRequest) (*api.MetadataResponse, error) {
	requestBytes, err := json.Marshal(request)
	if err != nil {
		return nil, err
	}
	resp, err := a.c.newRequest(ctx, "POST", "/api/metadata/update", bytes.NewReader(requestBytes))
	if err != nil {
		return nil, err
	}
	if resp.Body != nil {
		defer resp.Body.Close()
	}
	ret, err := parseResponse[api.MetadataResponse](resp)
	return &ret, err
}

// Delete removes the metadata object of the authenticated user
func (a *MetadataAPI) Delete(ctx context.Context) error {
	resp, err := a.c.newRequest(ctx, "POST", "/api/metadata/delete", nil)
	if err != nil {
		return err
	}
	if resp.Body != nil {
		defer resp.Body.Close()
	}

	return nil
}
