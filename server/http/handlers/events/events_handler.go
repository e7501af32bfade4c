package events

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/keystrand/usermeta/server/activity"
	umcontext "github.com/keystrand/usermeta/server/context"
	"github.com/keystrand/usermeta/server/http/api"
	"github.com/keystrand/usermeta/server/http/util"
	"github.com/keystrand/usermeta/server/metadata"
)

// handler HTTP handler
type handler struct {
	metadataManager metadata.Manager
}

func AddEndpoints(metadataManager metadata.Manager, router *mux.Router) {
	eventsHandler := newHandler(metadataManager)
	router.HandleFunc("/events", eventsHandler.getAllEvents).Methods("GET", "OPTIONS")
}

// newHandler creates a new events handler
func newHandler(metadataManager metadata.Manager) *handler {
	return &handler{metadataManager: metadataManager}
}

// getAllEvents lists the metadata activity of the requesting user
func (h *handler) getAllEvents(w http.ResponseWriter, r *http.Request) {
	userAuth, err := umcontext.GetUserAuthFromContext(r.Context())
	if err != nil {
		util.WriteError(r.Context(), err, w)
		return
	}

	userEvents, err := h.metadataManager.GetEvents(r.Context(), userAuth.UserId)
	if err != nil {
		util.WriteError(r.Context(), err, w)
		return
	}

	events := make([]*api.Event, len(userEvents))
	for i, e := range userEvents {
		events[i] = toEventResponse(e)
	}

	util.WriteJSONObject(r.Context(), w, events)
}

func toEventResponse(event *activity.Event) *api.Event {
	meta := make(map[string]string)
	if event.Meta != nil {
		for s, a := range event.Meta {
			meta[s] = fmt.Sprintf("%v", a)
		}
	}
	e := &api.Event{
		Id:           fmt.Sprint(event.ID),
		InitiatorId:  event.InitiatorID,
		Activity:     event.Activity.Message(),
		ActivityCode: api.EventActivityCode(event.Activity.StringCode()),
		TargetId:     event.TargetID,
		Timestamp:    event.Timestamp,
		Meta:         meta,
	}
	return e
}
