package models

import "time"

// Vehicle is one row of the TLC registry snapshot: a licensed vehicle keyed
// by its DMV plate. The chat flow treats this table as read-only; it is
// refreshed out-of-band by the CSV importer.
type Vehicle struct {
	ID                   uint   `gorm:"primaryKey;autoIncrement"`
	Plate                string `gorm:"size:16;not null;uniqueIndex"`
	VIN                  string `gorm:"size:32;index"`
	VehicleYear          string `gorm:"size:8"`
	OwnerName            string `gorm:"size:128"`
	LicenseType          string `gorm:"size:32"`
	VehicleLicenseNumber string `gorm:"size:32"`
	PermitLicenseNumber  string `gorm:"size:32"`
	BaseNumber           string `gorm:"size:32"`
	BaseName             string `gorm:"size:128"`
	BaseType             string `gorm:"size:32"`
	WheelchairAccessible string `gorm:"size:8"`
	Active               string `gorm:"size:8"`
	ExpirationDate       string `gorm:"size:32"`
	ImportDate           time.Time
}
