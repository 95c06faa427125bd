package entities

import (
	"time"
)

// User is the gateway's own record of an account. The external identity
// provider owns the canonical account; ExternalUID links the two. Email is
// the sole authentication key and is stored normalized lower-case.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	ExternalUID  string    `gorm:"index;size:128" json:"external_uid,omitempty"`
	Name         string    `gorm:"size:255" json:"name,omitempty"`
	PasswordHash string    `gorm:"size:255" json:"-"`
	IsActive     bool      `gorm:"default:false" json:"is_active"`
	IsStaff      bool      `gorm:"default:false" json:"is_staff"`
	IsSuperuser  bool      `gorm:"default:false" json:"is_superuser"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
