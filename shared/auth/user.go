package auth

import (
	"time"
)

type UserAuth struct {
	// The user id as issued by the host authentication framework
	UserId string
	// The user's email address (optional, may be empty if not in token)
	Email string
	// Last login time for this user
	LastLogin time.Time
	// The Groups the user belongs to, when the token carries them
	Groups []string

	// Indicates whether this user has authenticated with an opaque session token
	IsSessionToken bool
}
