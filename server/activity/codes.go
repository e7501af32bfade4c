package activity

const (
	// MetadataSet indicates that a user replaced or merged their metadata object
	MetadataSet Activity = iota
	// MetadataUpdated indicates that a user updated a single path inside their metadata object
	MetadataUpdated
	// MetadataDeleted indicates that a user deleted their metadata object
	MetadataDeleted
)

const (
	// MetadataSetMessage is a human-readable text message of the MetadataSet activity
	MetadataSetMessage string = "Metadata set"
	// MetadataUpdatedMessage is a human-readable text message of the MetadataUpdated activity
	MetadataUpdatedMessage string = "Metadata updated"
	// MetadataDeletedMessage is a human-readable text message of the MetadataDeleted activity
	MetadataDeletedMessage string = "Metadata deleted"
)

// Activity that triggered an Event
type Activity int

// Message returns a string representation of an activity
func (a Activity) Message() string {
	switch a {
	case MetadataSet:
		return MetadataSetMessage
	case MetadataUpdated:
		return MetadataUpdatedMessage
	case MetadataDeleted:
		return MetadataDeletedMessage
	default:
		return "UNKNOWN_ACTIVITY"
	}
}

// StringCode returns a string code of the activity
func (a Activity) StringCode() string {
	switch a {
	case MetadataSet:
		return "user.metadata.set"
	case MetadataUpdated:
		return "user.metadata.update"
	case MetadataDeleted:
		return "user.metadata.delete"
	default:
		return "UNKNOWN_ACTIVITY"
	}
}
