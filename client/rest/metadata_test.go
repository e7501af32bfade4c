package rest_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keystrand/usermeta/client/rest"
	"github.com/keystrand/usermeta/server/http/api"
	"github.com/keystrand/usermeta/server/http/util"
)

var testMetadataResponse = api.MetadataResponse{
	Metadata: map[string]interface{}{
		"theme": "dark",
	},
	Success: true,
}

func TestMetadata_Set_200(t *testing.T) {
	withMockClient(func(c *rest.Client, mux *http.ServeMux) {
		mux.HandleFunc("/api/metadata/set", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "POST", r.Method)
			var req api.SetMetadataRequest
			err := json.NewDecoder(r.Body).Decode(&req)
			require.NoError(t, err)
			assert.Equal(t, map[string]interface{}{"theme": "dark"}, req.Metadata)
			assert.Nil(t, req.Merge)
			retBytes, _ := json.Marshal(testMetadataResponse)
			_, err = w.Write(retBytes)
			require.NoError(t, err)
		})
		ret, err := c.Metadata.Set(context.Background(), api.SetMetadataRequest{
			Metadata: map[string]interface{}{"theme": "dark"},
		})
		require.NoError(t, err)
		assert.Equal(t, testMetadataResponse, *ret)
	})
}

func TestMetadata_Set_MergeFalse(t *testing.T) {
	withMockClient(func(c *rest.Client, mux *http.ServeMux) {
		mux.HandleFunc("/api/metadata/set", func(w http.ResponseWriter, r *http.Request) {
			var req api.SetMetadataRequest
			err := json.NewDecoder(r.Body).Decode(&req)
			require.NoError(t, err)
			require.NotNil(t, req.Merge)
			assert.False(t, *req.Merge)
			retBytes, _ := json.Marshal(testMetadataResponse)
			_, err = w.Write(retBytes)
			require.NoError(t, err)
		})
		_, err := c.Metadata.Set(context.Background(), api.SetMetadataRequest{
			Metadata: map[string]interface{}{"theme": "dark"},
			Merge:    ptr(false),
		})
		require.NoError(t, err)
	})
}

func TestMetadata_Set_Err(t *testing.T) {
	withMockClient(func(c *rest.Client, mux *http.ServeMux) {
		mux.HandleFunc("/api/metadata/set", func(w http.ResponseWriter, r *http.Request) {
			retBytes, _ := json.Marshal(util.ErrorResponse{Message: "No", Code: 400})
			w.WriteHeader(400)
			_, err := w.Write(retBytes)
			require.NoError(t, err)
		})
		_, err := c.Metadata.Set(context.Background(), api.SetMetadataRequest{
			Metadata: map[string]interface{}{"theme": "dark"},
		})
		assert.Error(t, err)
		assert.Equal(t, "No", err.Error())
	})
}

func TestMetadata_Get_200(t *testing.T) {
	withMockClient(func(c *rest.Client, mux *http.ServeMux) {
		mux.HandleFunc("/api/metadata/get", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "GET", r.Method)
			retBytes, _ := json.Marshal(api.GetMetadataResponse{
				Metadata: map[string]interface{}{"theme": "dark"},
			})
			_, err := w.Write(retBytes)
			require.NoError(t, err)
		})
		ret, err := c.Metadata.Get(context.Background())
		require.NoError(t, err)
		assert.Equal(t, map[string]interface{}{"theme": "dark"}, ret.Metadata)
	})
}

func TestMetadata_Get_NoneStored(t *testing.T) {
	withMockClient(func(c *rest.Client, mux *http.ServeMux) {
		mux.HandleFunc("/api/metadata/get", func(w http.ResponseWriter, r *http.Request) {
			_, err := w.Write([]byte(`{"metadata":null}`))
			require.NoError(t, err)
		})
		ret, err := c.Metadata.Get(context.Background())
		require.NoError(t, err)
		assert.Nil(t, ret.Metadata)
	})
}

func TestMetadata_Update_200(t *testing.T) {
	withMockClient(func(c *rest.Client, mux *http.ServeMux) {
		mux.HandleFunc("/api/metadata/update", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "POST", r.Method)
			var req api.UpdateMetadataRequest
			err := json.NewDecoder(r.Body).Decode(&req)
			require.NoError(t, err)
			assert.Equal(t, "prefs.theme", req.Path)
			assert.Equal(t, "light", req.Value)
			retBytes, _ := json.Marshal(api.MetadataResponse{
				Metadata: map[string]interface{}{
					"prefs": map[string]interface{}{"theme": "light"},
				},
				Success: true,
			})
			_, err = w.Write(retBytes)
			require.NoError(t, err)
		})
		ret, err := c.Metadata.Update(context.Background(), api.UpdateMetadataRequest{
			Path:  "prefs.theme",
			Value: "light",
		})
		require.NoError(t, err)
		assert.True(t, ret.Success)
		assert.Equal(t, map[string]interface{}{"theme": "light"}, ret.Metadata["prefs"])
	})
}

func TestMetadata_Update_Err(t *testing.T) {
	withMockClient(func(c *rest.Client, mux *http.ServeMux) {
		mux.HandleFunc("/api/metadata/update", func(w http.ResponseWriter, r *http.Request) {
			retBytes, _ := json.Marshal(util.ErrorResponse{Message: "path must not be empty", Code: 422})
			w.WriteHeader(422)
			_, err := w.Write(retBytes)
			require.NoError(t, err)
		})
		_, err := c.Metadata.Update(context.Background(), api.UpdateMetadataRequest{
			Path:  "",
			Value: "light",
		})
		assert.Error(t, err)
		assert.Equal(t, "path must not be empty", err.Error())
	})
}

func TestMetadata_Delete_200(t *testing.T) {
	withMockClient(func(c *rest.Client, mux *http.ServeMux) {
		mux.HandleFunc("/api/metadata/delete", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "POST", r.Method)
			retBytes, _ := json.Marshal(api.DeleteMetadataResponse{Success: true})
			_, err := w.Write(retBytes)
			require.NoError(t, err)
		})
		err := c.Metadata.Delete(context.Background())
		require.NoError(t, err)
	})
}

func TestMetadata_Delete_Err(t *testing.T) {
	withMockClient(func(c *rest.Client, mux *http.ServeMux) {
		mux.HandleFunc("/api/metadata/delete", func(w http.ResponseWriter, r *http.Request) {
			retBytes, _ := json.Marshal(util.ErrorResponse{Message: "token invalid", Code: 401})
			w.WriteHeader(401)
			_, err := w.Write(retBytes)
			require.NoError(t, err)
		})
		err := c.Metadata.Delete(context.Background())
		assert.Error(t, err)
		assert.Equal(t, "token invalid", err.Error())
	})
}
