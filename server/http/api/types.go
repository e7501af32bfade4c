// Package api defines the request and response bodies of the metadata HTTP API.
package api

import (
	"time"
)

// SetMetadataRequest replaces or merges the caller's metadata object
type SetMetadataRequest struct {
	// Metadata the metadata object to store
	Metadata map[string]interface{} `json:"metadata"`

	// Merge lay the incoming top-level keys over the stored object instead of
	// replacing it. Defaults to true when omitted.
	Merge *bool `json:"merge,omitempty"`
}

// UpdateMetadataRequest sets a single value inside the caller's metadata object
type UpdateMetadataRequest struct {
	// Path dot-separated path of the entry to set
	Path string `json:"path"`

	// Value the value to store at Path
	Value interface{} `json:"value"`
}

// MetadataResponse is returned by the mutating metadata endpoints
type MetadataResponse struct {
	// Metadata the stored metadata object after the operation
	Metadata map[string]interface{} `json:"metadata"`

	// Success reports that the operation was applied
	Success bool `json:"success"`
}

// GetMetadataResponse carries the stored metadata object
type GetMetadataResponse struct {
	// Metadata the stored metadata object, null when nothing is stored
	Metadata map[string]interface{} `json:"metadata"`
}

// DeleteMetadataResponse reports the deletion outcome
type DeleteMetadataResponse struct {
	// Success reports that the stored metadata object was removed
	Success bool `json:"success"`
}

// EventActivityCode defines the string codes for Event activities
type EventActivityCode string

const (
	// EventActivityCodeUserMetadataSet the metadata object was replaced or merged
	EventActivityCodeUserMetadataSet EventActivityCode = "user.metadata.set"

	// EventActivityCodeUserMetadataUpdate a single metadata entry was set
	EventActivityCodeUserMetadataUpdate EventActivityCode = "user.metadata.update"

	// EventActivityCodeUserMetadataDelete the metadata object was removed
	EventActivityCodeUserMetadataDelete EventActivityCode = "user.metadata.delete"
)

// Event defines a single recorded activity
type Event struct {
	// Activity human readable description of the activity
	Activity string `json:"activity"`

	// ActivityCode stable string code of the activity
	ActivityCode EventActivityCode `json:"activity_code"`

	// Id of the event
	Id string `json:"id"`

	// InitiatorId the id of the user that initiated the activity
	InitiatorId string `json:"initiator_id"`

	// Meta of the event
	Meta map[string]string `json:"meta"`

	// TargetId the id of the user the activity affected
	TargetId string `json:"target_id"`

	// Timestamp of the event
	Timestamp time.Time `json:"timestamp"`
}
