package models

import "time"

// Sighting is one logged observation of a vehicle. Rows are immutable after
// insert except for PostURI, which the publisher sets exactly once. The
// unique index on ImagePath is the exact-duplicate rejection mechanism:
// image files are stored under content-addressed names, so submitting the
// same bytes twice collides here.
type Sighting struct {
	ID                  uint    `gorm:"primaryKey;autoIncrement"`
	LicensePlate        *string `gorm:"size:16;index"` // nil = unreadable, never posted
	Timestamp           time.Time
	Latitude            *float64
	Longitude           *float64
	ImagePath           string  `gorm:"size:512;not null;uniqueIndex"`
	ImageHashSHA256     string  `gorm:"size:64;index"`
	ImageHashPerceptual string  `gorm:"size:32"`
	ContributorID       uint    `gorm:"index"`
	PostURI             *string `gorm:"size:256"` // nil = not yet published
	CreatedAt           time.Time

	Contributor Contributor `gorm:"foreignKey:ContributorID"`
}
