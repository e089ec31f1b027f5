package model

import "time"

// ResourceKind distinguishes the two bookable asset families, which
// differ in booking granularity: rooms take sub-day time ranges, desks
// are booked per whole calendar day.
type ResourceKind string

const (
	KindRoom ResourceKind = "ROOM"
	KindDesk ResourceKind = "DESK"
)

// Resource is a bookable shared asset: a meeting room or a desk.
type Resource struct {
	ID         uint         `gorm:"primaryKey" json:"id"`
	Kind       ResourceKind `gorm:"size:8;index;not null" json:"kind"`
	Number     string       `gorm:"size:50;uniqueIndex;not null" json:"number"`
	Name       string       `gorm:"size:128;not null" json:"name"`
	Floor      int          `json:"floor"`
	Department string       `gorm:"size:64;index" json:"department"`

	// Capacity attributes, meaningful for rooms only.
	Seats              int  `json:"seats"`
	HasProjector       bool `json:"hasProjector"`
	HasVideoConference bool `json:"hasVideoConference"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
