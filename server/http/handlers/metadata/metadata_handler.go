package metadata

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	umcontext "github.com/keystrand/usermeta/server/context"
	"github.com/keystrand/usermeta/server/http/api"
	"github.com/keystrand/usermeta/server/http/util"
	"github.com/keystrand/usermeta/server/metadata"
	"github.com/keystrand/usermeta/server/status"
)

// handler HTTP handler
type handler struct {
	metadataManager metadata.Manager
}

func AddEndpoints(metadataManager metadata.Manager, router *mux.Router) {
	metadataHandler := newHandler(metadataManager)
	router.HandleFunc("/metadata/set", metadataHandler.setMetadata).Methods("POST", "OPTIONS")
	router.HandleFunc("/metadata/get", metadataHandler.getMetadata).Methods("GET", "OPTIONS")
	router.HandleFunc("/metadata/update", metadataHandler.updateMetadata).Methods("POST", "OPTIONS")
	router.HandleFunc("/metadata/delete", metadataHandler.deleteMetadata).Methods("POST", "OPTIONS")
}

// newHandler creates a new metadata handler
func newHandler(metadataManager metadata.Manager) *handler {
	return &handler{metadataManager: metadataManager}
}

// setMetadata replaces or merges the metadata object of the requesting user
func (h *handler) setMetadata(w http.ResponseWriter, r *http.Request) {
	userAuth, err := umcontext.GetUserAuthFromContext(r.Context())
	if err != nil {
		util.WriteError(r.Context(), err, w)
		return
	}

	var req api.SetMetadataRequest
	err = json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		util.WriteErrorResponse("couldn't parse JSON request", http.StatusBadRequest, w)
		return
	}

	if req.Metadata == nil {
		util.WriteError(r.Context(), status.Errorf(status.InvalidArgument, "metadata object is required"), w)
		return
	}

	// merging is the default, callers opt out by sending merge=false
	merge := true
	if req.Merge != nil {
		merge = *req.Merge
	}

	updated, err := h.metadataManager.SetUserMetadata(r.Context(), userAuth.UserId, req.Metadata, merge)
	if err != nil {
		util.WriteError(r.Context(), err, w)
		return
	}

	util.WriteJSONObject(r.Context(), w, &api.MetadataResponse{
		Metadata: updated,
		Success:  true,
	})
}

// getMetadata returns the metadata object of the requesting user, or null
// when the user has none
func (h *handler) getMetadata(w http.ResponseWriter, r *http.Request) {
	userAuth, err := umcontext.GetUserAuthFromContext(r.Context())
	if err != nil {
		util.WriteError(r.Context(), err, w)
		return
	}

	obj, err := h.metadataManager.GetUserMetadata(r.Context(), userAuth.UserId)
	if err != nil {
		util.WriteError(r.Context(), err, w)
		return
	}

	util.WriteJSONObject(r.Context(), w, &api.GetMetadataResponse{
		Metadata: obj,
	})
}

// updateMetadata sets a single value inside the metadata object of the
// requesting user, addressed by a dot separated path
func (h *handler) updateMetadata(w http.ResponseWriter, r *http.Request) {
	userAuth, err := umcontext.GetUserAuthFromContext(r.Context())
	if err != nil {
		util.WriteError(r.Context(), err, w)
		return
	}

	var req api.UpdateMetadataRequest
	err = json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		util.WriteErrorResponse("couldn't parse JSON request", http.StatusBadRequest, w)
		return
	}

	updated, err := h.metadataManager.UpdateUserMetadata(r.Context(), userAuth.UserId, req.Path, req.Value)
	if err != nil {
		util.WriteError(r.Context(), err, w)
		return
	}

	util.WriteJSONObject(r.Context(), w, &api.MetadataResponse{
		Metadata: updated,
		Success:  true,
	})
}

// deleteMetadata removes the metadata object of the requesting user
func (h *handler) deleteMetadata(w http.ResponseWriter, r *http.Request) {
	userAuth, err := umcontext.GetUserAuthFromContext(r.Context())
	if err != nil {
		util.WriteError(r.Context(), err, w)
		return
	}

	err = h.metadataManager.DeleteUserMetadata(r.Context(), userAuth.UserId)
	if err != nil {
		util.WriteError(r.Context(), err, w)
		return
	}

	util.WriteJSONObject(r.Context(), w, &api.DeleteMetadataResponse{
		Success: true,
	})
}
