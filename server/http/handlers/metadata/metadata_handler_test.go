package metadata

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	umcontext "github.com/keystrand/usermeta/server/context"
	"github.com/keystrand/usermeta/server/metadata"
	"github.com/keystrand/usermeta/server/status"
	umauth "github.com/keystrand/usermeta/shared/auth"
)

const (
	testUserID  = "test_user"
	otherUserID = "other_user"
)

func initMetadataTestData() *handler {
	return &handler{
		metadataManager: &metadata.MockManager{
			GetUserMetadataFunc: func(_ context.Context, userID string) (map[string]any, error) {
				if userID == testUserID {
					return map[string]any{"theme": "dark"}, nil
				}
				return nil, nil
			},
			SetUserMetadataFunc: func(_ context.Context, _ string, object map[string]any, _ bool) (map[string]any, error) {
				return object, nil
			},
			UpdateUserMetadataFunc: func(_ context.Context, _ string, path string, value any) (map[string]any, error) {
				if path == "" {
					return nil, status.Errorf(status.InvalidArgument, "path must not be empty")
				}
				return map[string]any{"prefs": map[string]any{"theme": value}}, nil
			},
			DeleteUserMetadataFunc: func(_ context.Context, _ string) error {
				return nil
			},
		},
	}
}

func newTestRouter(h *handler) *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/api/metadata/set", h.setMetadata).Methods("POST", "OPTIONS")
	router.HandleFunc("/api/metadata/get", h.getMetadata).Methods("GET", "OPTIONS")
	router.HandleFunc("/api/metadata/update", h.updateMetadata).Methods("POST", "OPTIONS")
	router.HandleFunc("/api/metadata/delete", h.deleteMetadata).Methods("POST", "OPTIONS")
	return router
}

func TestMetadataHandlers(t *testing.T) {
	tt := []struct {
		name             string
		requestType      string
		requestPath      string
		requestBody      io.Reader
		user             string
		expectedStatus   int
		expectedBody     bool
		expectedMetadata map[string]any
		expectedSuccess  bool
		expectedRaw      string
	}{
		{
			name:             "Set Metadata",
			requestType:      http.MethodPost,
			requestPath:      "/api/metadata/set",
			requestBody:      bytes.NewBuffer([]byte(`{"metadata":{"theme":"dark","beta":true}}`)),
			expectedStatus:   http.StatusOK,
			expectedBody:     true,
			expectedMetadata: map[string]any{"theme": "dark", "beta": true},
			expectedSuccess:  true,
		},
		{
			name:           "Set Metadata Malformed JSON",
			requestType:    http.MethodPost,
			requestPath:    "/api/metadata/set",
			requestBody:    bytes.NewBuffer([]byte(`{"metadata":`)),
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Set Metadata Missing Object",
			requestType:    http.MethodPost,
			requestPath:    "/api/metadata/set",
			requestBody:    bytes.NewBuffer([]byte(`{}`)),
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name:           "Set Metadata Null Object",
			requestType:    http.MethodPost,
			requestPath:    "/api/metadata/set",
			requestBody:    bytes.NewBuffer([]byte(`{"metadata":null}`)),
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name:             "Get Metadata",
			requestType:      http.MethodGet,
			requestPath:      "/api/metadata/get",
			expectedStatus:   http.StatusOK,
			expectedBody:     true,
			expectedMetadata: map[string]any{"theme": "dark"},
		},
		{
			name:           "Get Metadata None Stored",
			requestType:    http.MethodGet,
			requestPath:    "/api/metadata/get",
			user:           otherUserID,
			expectedStatus: http.StatusOK,
			expectedBody:   true,
			expectedRaw:    `{"metadata":null}`,
		},
		{
			name:             "Update Metadata",
			requestType:      http.MethodPost,
			requestPath:      "/api/metadata/update",
			requestBody:      bytes.NewBuffer([]byte(`{"path":"prefs.theme","value":"light"}`)),
			expectedStatus:   http.StatusOK,
			expectedBody:     true,
			expectedMetadata: map[string]any{"prefs": map[string]any{"theme": "light"}},
			expectedSuccess:  true,
		},
		{
			name:           "Update Metadata Empty Path",
			requestType:    http.MethodPost,
			requestPath:    "/api/metadata/update",
			requestBody:    bytes.NewBuffer([]byte(`{"path":"","value":1}`)),
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name:           "Update Metadata Malformed JSON",
			requestType:    http.MethodPost,
			requestPath:    "/api/metadata/update",
			requestBody:    bytes.NewBuffer([]byte(`{"path":`)),
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:            "Delete Metadata",
			requestType:     http.MethodPost,
			requestPath:     "/api/metadata/delete",
			expectedStatus:  http.StatusOK,
			expectedBody:    true,
			expectedSuccess: true,
		},
	}

	handler := initMetadataTestData()
	router := newTestRouter(handler)

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			req := httptest.NewRequest(tc.requestType, tc.requestPath, tc.requestBody)

			user := tc.user
			if user == "" {
				user = testUserID
			}
			req = umcontext.SetUserAuthInRequest(req, umauth.UserAuth{UserId: user})

			router.ServeHTTP(recorder, req)

			res := recorder.Result()
			defer res.Body.Close()

			content, err := io.ReadAll(res.Body)
			if err != nil {
				t.Fatalf("I don't know what I expected; %v", err)
			}

			if status := recorder.Code; status != tc.expectedStatus {
				t.Errorf("handler returned wrong status code: got %v want %v, content: %s",
					status, tc.expectedStatus, string(content))
				return
			}

			if !tc.expectedBody {
				return
			}

			if tc.expectedRaw != "" {
				assert.Equal(t, tc.expectedRaw, strings.TrimSpace(string(content)))
				return
			}

			got := &struct {
				Metadata map[string]any `json:"metadata"`
				Success  bool           `json:"success"`
			}{}
			if err = json.Unmarshal(content, got); err != nil {
				t.Fatalf("Sent content is not in correct json format; %v", err)
			}

			assert.Equal(t, tc.expectedMetadata, got.Metadata)
			assert.Equal(t, tc.expectedSuccess, got.Success)
		})
	}
}

func TestMetadataHandlers_MergeFlag(t *testing.T) {
	var gotMerge []bool
	h := &handler{
		metadataManager: &metadata.MockManager{
			SetUserMetadataFunc: func(_ context.Context, _ string, object map[string]any, merge bool) (map[string]any, error) {
				gotMerge = append(gotMerge, merge)
				return object, nil
			},
		},
	}
	router := newTestRouter(h)

	for _, body := range []string{
		`{"metadata":{"a":"b"}}`,
		`{"metadata":{"a":"b"},"merge":true}`,
		`{"metadata":{"a":"b"},"merge":false}`,
	} {
		recorder := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/metadata/set", strings.NewReader(body))
		req = umcontext.SetUserAuthInRequest(req, umauth.UserAuth{UserId: testUserID})

		router.ServeHTTP(recorder, req)
		require.Equal(t, http.StatusOK, recorder.Code)
	}

	// merging is the default when the flag is absent
	assert.Equal(t, []bool{true, true, false}, gotMerge)
}

func TestMetadataHandlers_Unauthenticated(t *testing.T) {
	storageCalls := 0
	h := &handler{
		metadataManager: &metadata.MockManager{
			GetUserMetadataFunc: func(_ context.Context, _ string) (map[string]any, error) {
				storageCalls++
				return nil, nil
			},
			SetUserMetadataFunc: func(_ context.Context, _ string, object map[string]any, _ bool) (map[string]any, error) {
				storageCalls++
				return object, nil
			},
			UpdateUserMetadataFunc: func(_ context.Context, _ string, _ string, _ any) (map[string]any, error) {
				storageCalls++
				return map[string]any{}, nil
			},
			DeleteUserMetadataFunc: func(_ context.Context, _ string) error {
				storageCalls++
				return nil
			},
		},
	}
	router := newTestRouter(h)

	tt := []struct {
		requestType string
		requestPath string
		requestBody io.Reader
	}{
		{http.MethodPost, "/api/metadata/set", strings.NewReader(`{"metadata":{"a":"b"}}`)},
		{http.MethodGet, "/api/metadata/get", nil},
		{http.MethodPost, "/api/metadata/update", strings.NewReader(`{"path":"a","value":1}`)},
		{http.MethodPost, "/api/metadata/delete", nil},
	}

	for _, tc := range tt {
		t.Run(tc.requestPath, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			req := httptest.NewRequest(tc.requestType, tc.requestPath, tc.requestBody)

			router.ServeHTTP(recorder, req)

			assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		})
	}

	// a request without a caller identity must never reach the store
	assert.Zero(t, storageCalls)
}
