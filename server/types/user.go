package types

import (
	"time"
)

// User represents a user record of the host application. The metadata column
// carries the serialized metadata object managed by this service and is nil
// until the first write.
type User struct {
	ID        string `gorm:"primaryKey"`
	Email     string `gorm:"index"`
	Metadata  *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Copy returns a copy of the user.
func (u *User) Copy() *User {
	user := &User{
		ID:        u.ID,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}

	if u.Metadata != nil {
		metadata := *u.Metadata
		user.Metadata = &metadata
	}

	return user
}
