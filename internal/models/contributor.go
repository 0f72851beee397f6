package models

import "time"

// Contributor is the identity credited for a sighting, keyed by phone number
// for SMS submissions or by Bluesky handle for social submissions.
type Contributor struct {
	ID            uint    `gorm:"primaryKey;autoIncrement"`
	PhoneNumber   *string `gorm:"size:32;uniqueIndex"`
	BlueskyHandle *string `gorm:"size:128;uniqueIndex"`
	PreferredName *string `gorm:"size:64"`
	CreatedAt     time.Time
}

// DisplayName returns the name to credit in posts: preferred name first,
// then Bluesky handle. A phone-number-only contributor stays anonymous.
func (c *Contributor) DisplayName() string {
	if c.PreferredName != nil && *c.PreferredName != "" {
		return *c.PreferredName
	}
	if c.BlueskyHandle != nil && *c.BlueskyHandle != "" {
		return *c.BlueskyHandle
	}
	return ""
}
