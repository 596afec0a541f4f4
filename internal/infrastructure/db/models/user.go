package models

import (
	"time"

	"github.com/lib/pq"
)

// User is a row of the identity store.
type User struct {
	ID             string         `gorm:"type:text;primaryKey"`
	Username       string         `gorm:"size:255;not null;uniqueIndex:uq_users_username"`
	Email          string         `gorm:"size:320;not null;uniqueIndex:uq_users_email"`
	FirstName      string         `gorm:"size:255;not null"`
	LastName       string         `gorm:"size:255;not null"`
	Roles          pq.StringArray `gorm:"type:text[];not null;default:'{}'"`
	ActivationDate *time.Time     `gorm:"type:date"`
	Enabled        bool           `gorm:"not null;default:true"`
	CreatedAt      time.Time
}

func (User) TableName() string {
	return "users"
}

// WaitlistEntry is a deferred import record waiting for its activation date.
type WaitlistEntry struct {
	ID             string    `gorm:"type:text;primaryKey"`
	FirstName      string    `gorm:"size:255;not null"`
	LastName       string    `gorm:"size:255;not null"`
	Email          string    `gorm:"size:320;not null;index"`
	ActivationDate time.Time `gorm:"type:date;not null;index"`
	Roles          string    `gorm:"type:text;not null"`
	Notify         bool      `gorm:"not null;default:false"`
	CreatedAt      time.Time
}

func (WaitlistEntry) TableName() string {
	return "user_import_waitlist"
}
