package chat

import (
	"fmt"
	"time"

	"github.com/oceanwatch/oceanwatch/internal/models"
	"gorm.io/gorm"
)

// SessionStore persists per-phone-number conversation state. Session rows
// are the single source of truth between webhook invocations: every
// transition is a single UPDATE keyed by phone number, so two concurrent
// deliveries for the same number cannot interleave a read-compute-write.
type SessionStore struct {
	db *gorm.DB
}

// NewSessionStore creates a SessionStore.
func NewSessionStore(db *gorm.DB) *SessionStore {
	return &SessionStore{db: db}
}

// Get returns the session for a phone number, creating an idle one on
// first contact. The second return value reports whether the row was just
// created.
func (ss *SessionStore) Get(phone string) (*models.Session, bool, error) {
	var s models.Session
	result := ss.db.Where("phone_number = ?", phone).
		Attrs(models.Session{PhoneNumber: phone, State: models.StateIdle}).
		FirstOrCreate(&s)
	if result.Error != nil {
		return nil, false, fmt.Errorf("chat: get session %s: %w", phone, result.Error)
	}
	return &s, result.RowsAffected > 0, nil
}

// SetAwaitingPlate stores a freshly ingested photo and moves to the
// awaiting-plate state. Latitude and longitude are written even when nil:
// entering this state starts a new sighting, and coordinates from a prior
// conversation must never leak into it.
func (ss *SessionStore) SetAwaitingPlate(phone, imagePath string, lat, lon *float64, ts time.Time) error {
	return ss.update(phone, map[string]interface{}{
		"state":              models.StateAwaitingPlate,
		"pending_image_path": imagePath,
		"pending_latitude":   lat,
		"pending_longitude":  lon,
		"pending_timestamp":  ts,
	})
}

// SetAwaitingPlateWithLocation records geocoded coordinates and moves to
// the awaiting-plate state. Used when the location arrived before the
// plate.
func (ss *SessionStore) SetAwaitingPlateWithLocation(phone string, lat, lon float64) error {
	return ss.update(phone, map[string]interface{}{
		"state":             models.StateAwaitingPlate,
		"pending_latitude":  lat,
		"pending_longitude": lon,
	})
}

// SetAwaitingLocation records a validated plate and moves to the
// awaiting-location state.
func (ss *SessionStore) SetAwaitingLocation(phone, plate string) error {
	return ss.update(phone, map[string]interface{}{
		"state":         models.StateAwaitingLocation,
		"pending_plate": plate,
	})
}

// SetAwaitingName moves to the name opt-in state. Pending sighting fields
// are no longer needed once the commit has happened, so they are cleared.
func (ss *SessionStore) SetAwaitingName(phone string) error {
	return ss.update(phone, map[string]interface{}{
		"state":              models.StateAwaitingName,
		"pending_image_path": nil,
		"pending_plate":      nil,
		"pending_latitude":   nil,
		"pending_longitude":  nil,
		"pending_timestamp":  nil,
	})
}

// Reset returns the session to idle and clears every pending field.
func (ss *SessionStore) Reset(phone string) error {
	return ss.update(phone, map[string]interface{}{
		"state":              models.StateIdle,
		"pending_image_path": nil,
		"pending_plate":      nil,
		"pending_latitude":   nil,
		"pending_longitude":  nil,
		"pending_timestamp":  nil,
	})
}

func (ss *SessionStore) update(phone string, fields map[string]interface{}) error {
	err := ss.db.Model(&models.Session{}).
		Where("phone_number = ?", phone).
		Updates(fields).Error
	if err != nil {
		return fmt.Errorf("chat: update session %s: %w", phone, err)
	}
	return nil
}
