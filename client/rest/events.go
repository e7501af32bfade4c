package rest

import (
	"context"

	"github.com/keystrand/usermeta/server/http/api"
)

// EventsAPI APIs for metadata activity events, do not use directly
type EventsAPI struct {
	c *Client
}

// List lists the metadata activity events of the authenticated user
func (a *EventsAPI) List(ctx context.Context) ([]api.Event, error) {
	resp, err := a.c.newRequest(ctx, "GET", "/api/events", nil)
	if err != nil {
		return nil, err
	}
	if resp.Body != nil {
		defer resp.Body.Close()
	}
	ret, err := parseResponse[[]api.Event](resp)
	return ret, err
}
