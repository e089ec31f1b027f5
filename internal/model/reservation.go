package model

import (
	"time"

	"deskmate-backend/internal/interval"
)

// Reservation is a committed claim on a resource for an interval.
// Rows are append-only: created by a successful booking transaction,
// removed by cancellation, never updated.
type Reservation struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	ResourceID uint   `gorm:"not null;index:idx_reservation_resource_date" json:"resourceId"`
	Date       string `gorm:"size:10;not null;index:idx_reservation_resource_date" json:"date"`

	// Minute-of-day range for room bookings; zero with WholeDay set
	// for desk bookings.
	StartMinute int  `gorm:"not null" json:"startMinute"`
	EndMinute   int  `gorm:"not null" json:"endMinute"`
	WholeDay    bool `gorm:"not null" json:"wholeDay"`

	BookerName  string `gorm:"size:100;not null" json:"bookerName"`
	Designation string `gorm:"size:50;not null" json:"designation"`
	Department  string `gorm:"size:50;not null" json:"department"`
	Contact     string `gorm:"size:20;not null" json:"contact"`
	Email       string `gorm:"size:50;not null;index" json:"email"`

	// Delegate identity for "book on behalf of" reservations.
	ForDelegate   bool   `gorm:"not null" json:"forDelegate"`
	DelegateName  string `gorm:"size:100" json:"delegateName,omitempty"`
	DelegateEmail string `gorm:"size:50" json:"delegateEmail,omitempty"`

	CreatedAt time.Time `json:"createdAt"`

	Resource Resource `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// Interval returns the reservation's temporal extent.
func (r Reservation) Interval() interval.Interval {
	if r.WholeDay {
		return interval.Day(r.Date)
	}
	return interval.Range(r.Date, r.StartMinute, r.EndMinute)
}
