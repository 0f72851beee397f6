package models

import "time"

// Conversation states for Session.State.
const (
	StateIdle             = "idle"
	StateAwaitingPlate    = "awaiting_plate"
	StateAwaitingLocation = "awaiting_location"
	StateAwaitingName     = "awaiting_name"
)

// Session holds the conversation state for one phone number. There is at
// most one row per number; a session is never deleted, only reset to idle.
// The pending fields are meaningful only in the states that need them and
// are cleared when the conversation resets or restarts.
type Session struct {
	ID               uint      `gorm:"primaryKey;autoIncrement"`
	PhoneNumber      string    `gorm:"size:32;not null;uniqueIndex"`
	State            string    `gorm:"size:32;default:idle"`
	PendingImagePath *string   `gorm:"size:512"`
	PendingPlate     *string   `gorm:"size:16"`
	PendingLatitude  *float64
	PendingLongitude *float64
	PendingTimestamp *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
