package db

import (
	"errors"
	"fmt"
	"time"

	"github.com/oceanwatch/oceanwatch/internal/models"
	"gorm.io/gorm"
)

// ErrDuplicateImage is returned by InsertSighting when the image path is
// already recorded. This is an expected domain condition, not a fault: the
// caller tells the user the photo was already submitted.
var ErrDuplicateImage = errors.New("db: image already recorded")

// Store wraps a GORM connection with the sighting domain operations.
type Store struct {
	db *gorm.DB
}

// NewStore creates a Store.
func NewStore(gdb *gorm.DB) *Store {
	return &Store{db: gdb}
}

// DB exposes the underlying connection for packages that run their own
// queries (registry search, similarity scans).
func (s *Store) DB() *gorm.DB {
	return s.db
}

// ---------------------------------------------------------------------------
// Contributors
// ---------------------------------------------------------------------------

// GetOrCreateContributorByPhone returns the contributor for a phone number,
// creating one if none exists. Idempotent per phone number.
func (s *Store) GetOrCreateContributorByPhone(phone string) (*models.Contributor, error) {
	var c models.Contributor
	err := s.db.Where("phone_number = ?", phone).
		Attrs(models.Contributor{PhoneNumber: &phone}).
		FirstOrCreate(&c).Error
	if err != nil {
		return nil, fmt.Errorf("db: get or create contributor %s: %w", phone, err)
	}
	return &c, nil
}

// ContributorByPhone returns the contributor for a phone number, or nil if
// none exists.
func (s *Store) ContributorByPhone(phone string) (*models.Contributor, error) {
	var c models.Contributor
	err := s.db.Where("phone_number = ?", phone).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("db: contributor by phone %s: %w", phone, err)
	}
	return &c, nil
}

// ContributorByID returns the contributor with the given id, or nil.
func (s *Store) ContributorByID(id uint) (*models.Contributor, error) {
	var c models.Contributor
	err := s.db.First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("db: contributor %d: %w", id, err)
	}
	return &c, nil
}

// SetPreferredName updates a contributor's preferred name.
func (s *Store) SetPreferredName(id uint, name string) error {
	err := s.db.Model(&models.Contributor{}).Where("id = ?", id).
		Update("preferred_name", name).Error
	if err != nil {
		return fmt.Errorf("db: set preferred name for %d: %w", id, err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Sightings
// ---------------------------------------------------------------------------

// NewSighting carries the fields for InsertSighting.
type NewSighting struct {
	LicensePlate        *string
	Timestamp           time.Time
	Latitude            *float64
	Longitude           *float64
	ImagePath           string
	ImageHashSHA256     string
	ImageHashPerceptual string
	ContributorID       uint
}

// InsertSighting records a sighting. Returns ErrDuplicateImage when the
// image path collides with an existing row; every other failure is fatal
// and propagates wrapped.
func (s *Store) InsertSighting(ns NewSighting) (*models.Sighting, error) {
	sighting := models.Sighting{
		LicensePlate:        ns.LicensePlate,
		Timestamp:           ns.Timestamp,
		Latitude:            ns.Latitude,
		Longitude:           ns.Longitude,
		ImagePath:           ns.ImagePath,
		ImageHashSHA256:     ns.ImageHashSHA256,
		ImageHashPerceptual: ns.ImageHashPerceptual,
		ContributorID:       ns.ContributorID,
	}
	err := s.db.Create(&sighting).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, ErrDuplicateImage
	}
	if err != nil {
		return nil, fmt.Errorf("db: insert sighting: %w", err)
	}
	return &sighting, nil
}

// PlateSightingCount returns how many times a plate has been sighted.
func (s *Store) PlateSightingCount(plate string) (int64, error) {
	var n int64
	err := s.db.Model(&models.Sighting{}).
		Where("license_plate = ?", plate).Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("db: sighting count for %s: %w", plate, err)
	}
	return n, nil
}

// TotalSightingCount returns the total number of sightings logged.
func (s *Store) TotalSightingCount() (int64, error) {
	var n int64
	if err := s.db.Model(&models.Sighting{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("db: total sighting count: %w", err)
	}
	return n, nil
}

// ContributorSightingCount returns how many sightings a contributor has
// submitted.
func (s *Store) ContributorSightingCount(id uint) (int64, error) {
	var n int64
	err := s.db.Model(&models.Sighting{}).
		Where("contributor_id = ?", id).Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("db: contributor sighting count for %d: %w", id, err)
	}
	return n, nil
}

// UniquePlateCount returns the number of distinct plates with at least one
// sighting. Unreadable-plate sightings are excluded.
func (s *Store) UniquePlateCount() (int64, error) {
	var n int64
	err := s.db.Model(&models.Sighting{}).
		Where("license_plate IS NOT NULL").
		Distinct("license_plate").Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("db: unique plate count: %w", err)
	}
	return n, nil
}

// VehicleCount returns the number of vehicles in the registry snapshot.
func (s *Store) VehicleCount() (int64, error) {
	var n int64
	if err := s.db.Model(&models.Vehicle{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("db: vehicle count: %w", err)
	}
	return n, nil
}

// ContributorCount returns the number of registered contributors.
func (s *Store) ContributorCount() (int64, error) {
	var n int64
	if err := s.db.Model(&models.Contributor{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("db: contributor count: %w", err)
	}
	return n, nil
}

// UnpostedSightings returns up to limit sightings that have a readable plate
// and no post URI yet, oldest first, with contributor preloaded for the
// thanks line. limit <= 0 means no limit.
func (s *Store) UnpostedSightings(limit int) ([]models.Sighting, error) {
	q := s.db.Preload("Contributor").
		Where("post_uri IS NULL AND license_plate IS NOT NULL").
		Order("timestamp ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var sightings []models.Sighting
	if err := q.Find(&sightings).Error; err != nil {
		return nil, fmt.Errorf("db: unposted sightings: %w", err)
	}
	return sightings, nil
}

// MarkPosted records the post URI on a sighting. Set exactly once by the
// publisher.
func (s *Store) MarkPosted(id uint, uri string) error {
	err := s.db.Model(&models.Sighting{}).Where("id = ?", id).
		Update("post_uri", uri).Error
	if err != nil {
		return fmt.Errorf("db: mark sighting %d posted: %w", id, err)
	}
	return nil
}

// SightingsMissingHashes returns sightings without a stored SHA-256 hash,
// for the backfill command.
func (s *Store) SightingsMissingHashes() ([]models.Sighting, error) {
	var sightings []models.Sighting
	err := s.db.Where("image_hash_sha256 = '' OR image_hash_sha256 IS NULL").
		Find(&sightings).Error
	if err != nil {
		return nil, fmt.Errorf("db: sightings missing hashes: %w", err)
	}
	return sightings, nil
}

// UpdateSightingHashes stores computed hashes on an existing sighting.
func (s *Store) UpdateSightingHashes(id uint, sha256Hex, perceptualHex string) error {
	err := s.db.Model(&models.Sighting{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"image_hash_sha256":     sha256Hex,
			"image_hash_perceptual": perceptualHex,
		}).Error
	if err != nil {
		return fmt.Errorf("db: update hashes for sighting %d: %w", id, err)
	}
	return nil
}
