package model

import "time"

// PushSubscription holds a browser push subscription together with the
// resources its owner wants booking updates for.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`

	// Associations
	Resources []*Resource `gorm:"many2many:subscription_resource_mapping;"`
}