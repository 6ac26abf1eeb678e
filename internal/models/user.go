package models

import (
	"time"

	"github.com/google/uuid"
)

// User is synced from the identity provider via webhooks. HashedPassword is
// only set for accounts created through the legacy register endpoint.
type User struct {
	ID              uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ClerkUserID     *string    `gorm:"type:text;uniqueIndex" json:"clerk_user_id,omitempty"`
	Email           string     `gorm:"type:text;uniqueIndex;not null" json:"email"`
	FirstName       string     `gorm:"type:text" json:"first_name"`
	LastName        string     `gorm:"type:text" json:"last_name"`
	ProfileImageURL string     `gorm:"type:text" json:"profile_image_url,omitempty"`
	HashedPassword  *string    `gorm:"type:text" json:"-"`
	IsActive        bool       `gorm:"not null;default:true" json:"is_active"`
	CreatedAt       time.Time  `gorm:"type:timestamp;default:now()" json:"created_at"`
	UpdatedAt       *time.Time `gorm:"type:timestamp" json:"updated_at,omitempty"`
}

func (User) TableName() string {
	return "users"
}
