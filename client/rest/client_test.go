package rest_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keystrand/usermeta/client/rest"
)

func withMockClient(callback func(*rest.Client, *http.ServeMux)) {
	mux := &http.ServeMux{}
	server := httptest.NewServer(mux)
	defer server.Close()
	c := rest.New(server.URL, "ABC")
	callback(c, mux)
}

func ptr[T any, PT *T](x T) PT {
	return &x
}

func TestClient_AuthHeaders(t *testing.T) {
	mux := &http.ServeMux{}
	server := httptest.NewServer(mux)
	defer server.Close()

	var gotAuthHeader string
	mux.HandleFunc("/api/metadata/get", func(w http.ResponseWriter, r *http.Request) {
		gotAuthHeader = r.Header.Get("Authorization")
		_, err := w.Write([]byte(`{"metadata":null}`))
		require.NoError(t, err)
	})

	t.Run("Session Token", func(t *testing.T) {
		c := rest.New(server.URL, "ums_sessionToken")
		_, err := c.Metadata.Get(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "Token ums_sessionToken", gotAuthHeader)
	})

	t.Run("Bearer Token", func(t *testing.T) {
		c := rest.NewWithBearerToken(server.URL, "someJWT")
		_, err := c.Metadata.Get(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "Bearer someJWT", gotAuthHeader)
	})
}

type countingTransport struct {
	calls int
}

func (t *countingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.calls++
	return http.DefaultTransport.RoundTrip(req)
}

func TestClient_WithHttpClient(t *testing.T) {
	mux := &http.ServeMux{}
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/api/metadata/get", func(w http.ResponseWriter, r *http.Request) {
		_, err := w.Write([]byte(`{"metadata":null}`))
		require.NoError(t, err)
	})

	transport := &countingTransport{}
	c := rest.New(server.URL, "ABC", rest.WithHttpClient(&http.Client{Transport: transport}))

	_, err := c.Metadata.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, transport.calls)
}
