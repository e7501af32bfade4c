package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/keystrand/usermeta/server/http/util"
)

// Client metadata service HTTP REST API client
type Client struct {
	serviceURL string
	authHeader string
	httpClient *http.Client

	// Metadata APIs for the metadata object of the authenticated user
	Metadata *MetadataAPI
	// Events APIs for the metadata activity of the authenticated user
	Events *EventsAPI
}

// New creates a REST API client authenticating with a session token
func New(serviceURL, sessionToken string, options ...option) *Client {
	return newClient(serviceURL, "Token "+sessionToken, options)
}

// NewWithBearerToken creates a REST API client authenticating with a JWT bearer token
func NewWithBearerToken(serviceURL, jwtToken string, options ...option) *Client {
	return newClient(serviceURL, "Bearer "+jwtToken, options)
}

func newClient(serviceURL, authHeader string, options []option) *Client {
	client := &Client{
		serviceURL: serviceURL,
		authHeader: authHeader,
		httpClient: http.DefaultClient,
	}

	for _, option := range options {
		option(client)
	}

	client.Metadata = &MetadataAPI{c: client}
	client.Events = &EventsAPI{c: client}

	return client
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.serviceURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode > 299 {
		defer resp.Body.Close()
		parsedErr, pErr := parseResponse[util.ErrorResponse](resp)
		if pErr != nil {
			return nil, pErr
		}
		return nil, errors.New(parsedErr.Message)
	}

	return resp, nil
}

func parseResponse[T any](resp *http.Response) (T, error) {
	var ret T
	if resp.Body == nil {
		return ret, errors.New("no response body")
	}

	bs, err := io.ReadAll(resp.Body)
	if err != nil {
		return ret, err
	}

	err = json.Unmarshal(bs, &ret)
	return ret, err
}
