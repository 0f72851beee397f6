// Package chat implements the SMS conversation that walks a contributor
// from a photo to a committed sighting. Each inbound message is one
// stateless invocation: the handler loads the sender's session, applies one
// transition, persists the new state, and returns the reply text.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oceanwatch/oceanwatch/internal/db"
	"github.com/oceanwatch/oceanwatch/internal/exifmeta"
	"github.com/oceanwatch/oceanwatch/internal/imagehash"
	"github.com/oceanwatch/oceanwatch/internal/models"
	"github.com/oceanwatch/oceanwatch/internal/registry"
)

// maxPreferredNameLen caps contributor display names.
const maxPreferredNameLen = 50

// Extractor reads capture metadata from a stored image.
type Extractor interface {
	Extract(path string) (exifmeta.Metadata, error)
}

// ExtractorFunc adapts a function to the Extractor interface.
type ExtractorFunc func(path string) (exifmeta.Metadata, error)

// Extract calls f.
func (f ExtractorFunc) Extract(path string) (exifmeta.Metadata, error) { return f(path) }

// Geocoder resolves free-text locations to coordinates. ok=false with a
// nil error is a normal miss (re-prompt); an error is a collaborator
// failure.
type Geocoder interface {
	Forward(ctx context.Context, text string) (lat, lon float64, ok bool, err error)
}

// Notifier delivers fire-and-forget operational notifications.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// InboundMessage is one SMS/MMS received by the webhook.
type InboundMessage struct {
	From      string
	Body      string
	MediaURLs []string
}

// Handler is the conversation state machine.
type Handler struct {
	store      *db.Store
	sessions   *SessionStore
	registry   *registry.Registry
	downloader MediaDownloader
	extractor  Extractor
	geocoder   Geocoder
	notifier   Notifier

	imagesDir          string
	similarThreshold   int
	adminContributorID uint
}

// HandlerOpts holds parameters for creating a Handler.
type HandlerOpts struct {
	Store      *db.Store
	Sessions   *SessionStore
	Registry   *registry.Registry
	Downloader MediaDownloader
	Extractor  Extractor
	Geocoder   Geocoder
	Notifier   Notifier

	ImagesDir          string
	SimilarThreshold   int
	AdminContributorID uint
}

// NewHandler creates a Handler.
func NewHandler(opts HandlerOpts) (*Handler, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("chat: handler: store is required")
	}
	if opts.Sessions == nil {
		return nil, fmt.Errorf("chat: handler: session store is required")
	}
	if opts.Registry == nil {
		return nil, fmt.Errorf("chat: handler: registry is required")
	}
	if opts.Downloader == nil {
		return nil, fmt.Errorf("chat: handler: media downloader is required")
	}
	if opts.Extractor == nil {
		opts.Extractor = ExtractorFunc(exifmeta.Extract)
	}
	if opts.Geocoder == nil {
		return nil, fmt.Errorf("chat: handler: geocoder is required")
	}
	if opts.ImagesDir == "" {
		opts.ImagesDir = "images"
	}
	if opts.SimilarThreshold <= 0 {
		opts.SimilarThreshold = 5
	}
	if opts.AdminContributorID == 0 {
		opts.AdminContributorID = 1
	}
	return &Handler{
		store:              opts.Store,
		sessions:           opts.Sessions,
		registry:           opts.Registry,
		downloader:         opts.Downloader,
		extractor:          opts.Extractor,
		geocoder:           opts.Geocoder,
		notifier:           opts.Notifier,
		imagesDir:          opts.ImagesDir,
		similarThreshold:   opts.SimilarThreshold,
		adminContributorID: opts.AdminContributorID,
	}, nil
}

// Handle processes one inbound message and returns the reply text. It
// never returns an error: anything unexpected resets the session to idle
// and replies with a generic failure, so the conversation cannot get stuck
// in a dead state.
func (h *Handler) Handle(ctx context.Context, msg InboundMessage) (reply string) {
	command := strings.ToUpper(strings.TrimSpace(msg.Body))

	// Global commands apply in every state.
	if command == "HELP" {
		return helpMessage()
	}
	if command == "CANCEL" {
		if _, _, err := h.sessions.Get(msg.From); err != nil {
			log.Printf("chat: cancel from %s: %v", msg.From, err)
			return errorGeneral()
		}
		if err := h.sessions.Reset(msg.From); err != nil {
			log.Printf("chat: cancel from %s: %v", msg.From, err)
			return errorGeneral()
		}
		return cancelledMessage()
	}

	sess, created, err := h.sessions.Get(msg.From)
	if err != nil {
		log.Printf("chat: session for %s: %v", msg.From, err)
		return errorGeneral()
	}

	if created {
		h.notifyNewSession(ctx, msg.From)
	}

	// A panic or error inside a transition must not strand the session.
	defer func() {
		if r := recover(); r != nil {
			log.Printf("chat: panic handling message from %s: %v", msg.From, r)
			h.resetQuietly(msg.From)
			reply = errorGeneral()
		}
	}()

	reply, err = h.transition(ctx, sess, msg)
	if err != nil {
		log.Printf("chat: transition from %s in state %s: %v", msg.From, sess.State, err)
		h.resetQuietly(msg.From)
		return errorGeneral()
	}
	return reply
}

// transition dispatches one message to the current state's handler.
func (h *Handler) transition(ctx context.Context, sess *models.Session, msg InboundMessage) (string, error) {
	switch sess.State {
	case models.StateIdle:
		return h.handleIdle(ctx, sess, msg)
	case models.StateAwaitingPlate:
		return h.handleAwaitingPlate(ctx, sess, msg)
	case models.StateAwaitingLocation:
		return h.handleAwaitingLocation(ctx, sess, msg)
	case models.StateAwaitingName:
		return h.handleAwaitingName(sess, msg)
	default:
		// Unknown or corrupted state value. Start over.
		if err := h.sessions.Reset(sess.PhoneNumber); err != nil {
			return "", err
		}
		return helpMessage(), nil
	}
}

// handleIdle expects a photo. Text without media just gets the help text.
func (h *Handler) handleIdle(ctx context.Context, sess *models.Session, msg InboundMessage) (string, error) {
	if len(msg.MediaURLs) == 0 {
		return helpMessage(), nil
	}

	data, err := h.downloader.Download(ctx, msg.MediaURLs[0])
	if err != nil {
		log.Printf("chat: download media for %s: %v", msg.From, err)
		return errorGeneral(), nil
	}

	// Content-addressed filename: identical bytes land on the same path,
	// which is what makes the sighting table's unique path constraint catch
	// exact duplicates at commit time.
	sum := imagehash.SHA256Bytes(data)
	if err := os.MkdirAll(h.imagesDir, 0755); err != nil {
		return "", fmt.Errorf("create images dir: %w", err)
	}
	imagePath := filepath.Join(h.imagesDir, "sighting_"+sum[:16]+".jpg")
	if err := os.WriteFile(imagePath, data, 0644); err != nil {
		return "", fmt.Errorf("store image: %w", err)
	}

	meta, err := h.extractor.Extract(imagePath)
	if err != nil {
		// Unreadable image. Remove it and start over.
		log.Printf("chat: extract metadata for %s: %v", msg.From, err)
		os.Remove(imagePath)
		return errorGeneral(), nil
	}

	if meta.Latitude == nil {
		log.Printf("chat: no GPS in photo from %s, will ask for location after plate", msg.From)
	}

	if err := h.sessions.SetAwaitingPlate(msg.From, imagePath, meta.Latitude, meta.Longitude, meta.Timestamp); err != nil {
		return "", err
	}

	return welcomeWithImage(h.displayName(msg.From)), nil
}

// handleAwaitingPlate expects a plate string for the pending photo.
func (h *Handler) handleAwaitingPlate(ctx context.Context, sess *models.Session, msg InboundMessage) (string, error) {
	body := strings.TrimSpace(msg.Body)
	if body == "" {
		return requestPlate(), nil
	}

	plate := registry.Normalize(body)
	_, found, err := h.registry.Validate(plate)
	if err != nil {
		return "", err
	}

	if !found {
		suggestions, err := h.registry.Suggest(plate, 5)
		if err != nil {
			log.Printf("chat: suggest for %s: %v", plate, err)
			suggestions = nil
		}
		return plateNotFound(plate, suggestions), nil
	}

	hasGPS := sess.PendingLatitude != nil && sess.PendingLongitude != nil
	if !hasGPS {
		if err := h.sessions.SetAwaitingLocation(msg.From, plate); err != nil {
			return "", err
		}
		return requestLocationAfterPlate(), nil
	}

	return h.commit(ctx, sess, msg.From, plate, sess.PendingLatitude, sess.PendingLongitude)
}

// handleAwaitingLocation expects a free-text location because the photo
// carried no GPS.
func (h *Handler) handleAwaitingLocation(ctx context.Context, sess *models.Session, msg InboundMessage) (string, error) {
	body := strings.TrimSpace(msg.Body)
	if body == "" {
		return requestLocation(), nil
	}

	lat, lon, ok, err := h.geocoder.Forward(ctx, body)
	if err != nil {
		return "", fmt.Errorf("geocode %q: %w", body, err)
	}
	if !ok {
		return locationNotFound(), nil
	}

	if sess.PendingPlate != nil {
		return h.commit(ctx, sess, msg.From, *sess.PendingPlate, &lat, &lon)
	}

	// Location arrived before the plate. Keep the coordinates and ask for
	// the plate next.
	if err := h.sessions.SetAwaitingPlateWithLocation(msg.From, lat, lon); err != nil {
		return "", err
	}
	return requestPlate(), nil
}

// handleAwaitingName runs the optional post-commit name opt-in.
func (h *Handler) handleAwaitingName(sess *models.Session, msg InboundMessage) (string, error) {
	name := strings.TrimSpace(msg.Body)
	if name == "" || strings.EqualFold(name, "SKIP") {
		if err := h.sessions.Reset(msg.From); err != nil {
			return "", err
		}
		return nameSkipped(), nil
	}

	if len(name) > maxPreferredNameLen {
		// Stay in state so they can retry.
		return nameTooLong(), nil
	}

	contributor, err := h.store.ContributorByPhone(msg.From)
	if err != nil {
		return "", err
	}
	if contributor == nil {
		// A name arrived with no contributor on record; nothing to credit.
		if err := h.sessions.Reset(msg.From); err != nil {
			return "", err
		}
		return errorGeneral(), nil
	}

	if err := h.store.SetPreferredName(contributor.ID, name); err != nil {
		return "", err
	}
	if err := h.sessions.Reset(msg.From); err != nil {
		return "", err
	}
	return nameConfirmed(name), nil
}

// commit durably records the pending sighting. Called once plate,
// coordinates, timestamp, and image are all known.
func (h *Handler) commit(ctx context.Context, sess *models.Session, phone, plate string, lat, lon *float64) (string, error) {
	if sess.PendingImagePath == nil {
		// Session lost its photo somehow; start over.
		if err := h.sessions.Reset(phone); err != nil {
			return "", err
		}
		return helpMessage(), nil
	}
	imagePath := *sess.PendingImagePath

	timestamp := time.Now()
	if sess.PendingTimestamp != nil {
		timestamp = *sess.PendingTimestamp
	}

	contributor, err := h.store.GetOrCreateContributorByPhone(phone)
	if err != nil {
		return "", err
	}

	// Hash failures degrade to "hash unavailable": they never block the
	// commit.
	sha256Hex, err := imagehash.SHA256File(imagePath)
	if err != nil {
		log.Printf("chat: sha256 for %s: %v", imagePath, err)
		sha256Hex = ""
	}
	perceptualHex, err := imagehash.PerceptualHash(imagePath)
	if err != nil {
		log.Printf("chat: perceptual hash for %s: %v", imagePath, err)
		perceptualHex = ""
	}

	sighting, err := h.store.InsertSighting(db.NewSighting{
		LicensePlate:        &plate,
		Timestamp:           timestamp,
		Latitude:            lat,
		Longitude:           lon,
		ImagePath:           imagePath,
		ImageHashSHA256:     sha256Hex,
		ImageHashPerceptual: perceptualHex,
		ContributorID:       contributor.ID,
	})
	if errors.Is(err, db.ErrDuplicateImage) {
		if resetErr := h.sessions.Reset(phone); resetErr != nil {
			return "", resetErr
		}
		return duplicateImage(), nil
	}
	if err != nil {
		return "", err
	}

	// Near-duplicate scan is informational only: flagged for the operator,
	// never surfaced to the contributor.
	if perceptualHex != "" {
		h.flagNearDuplicates(sighting.ID, perceptualHex)
	}

	if contributor.ID != h.adminContributorID {
		h.notify(ctx, fmt.Sprintf("Successful submission from %s", h.displayNameOrPhone(contributor, phone)))
	}

	plateCount, err := h.store.PlateSightingCount(plate)
	if err != nil {
		return "", err
	}
	totalCount, err := h.store.TotalSightingCount()
	if err != nil {
		return "", err
	}
	contributorCount, err := h.store.ContributorSightingCount(contributor.ID)
	if err != nil {
		return "", err
	}

	reply := sightingConfirmed(plate, plateCount, totalCount, contributorCount)

	if contributor.PreferredName == nil || *contributor.PreferredName == "" {
		if err := h.sessions.SetAwaitingName(phone); err != nil {
			return "", err
		}
		return reply + "\n\n" + namePrompt(), nil
	}

	if err := h.sessions.Reset(phone); err != nil {
		return "", err
	}
	return reply, nil
}

// flagNearDuplicates logs stored sightings perceptually close to the new
// image. Failures are swallowed.
func (h *Handler) flagNearDuplicates(newSightingID uint, perceptualHex string) {
	matches, err := imagehash.FindSimilar(h.store.DB(), perceptualHex, h.similarThreshold)
	if err != nil {
		log.Printf("chat: near-duplicate scan: %v", err)
		return
	}
	for _, m := range matches {
		if m.SightingID == newSightingID {
			continue
		}
		log.Printf("chat: sighting %d is a near-duplicate of sighting %d (%s, distance %d), keeping both",
			newSightingID, m.SightingID, m.ImagePath, m.Distance)
	}
}

// notifyNewSession announces a first-time sender to the operational
// channel, unless the sender is the admin contributor.
func (h *Handler) notifyNewSession(ctx context.Context, phone string) {
	contributor, err := h.store.ContributorByPhone(phone)
	if err != nil {
		log.Printf("chat: new session contributor lookup for %s: %v", phone, err)
		return
	}
	if contributor == nil || contributor.ID == h.adminContributorID {
		return
	}
	h.notify(ctx, fmt.Sprintf("New chat session from %s", h.displayNameOrPhone(contributor, phone)))
}

func (h *Handler) notify(ctx context.Context, text string) {
	if h.notifier == nil {
		return
	}
	if err := h.notifier.Notify(ctx, text); err != nil {
		log.Printf("chat: notify: %v", err)
	}
}

// displayName returns the sender's preferred name, or "" when unknown.
func (h *Handler) displayName(phone string) string {
	contributor, err := h.store.ContributorByPhone(phone)
	if err != nil || contributor == nil || contributor.PreferredName == nil {
		return ""
	}
	return *contributor.PreferredName
}

func (h *Handler) displayNameOrPhone(c *models.Contributor, phone string) string {
	if name := c.DisplayName(); name != "" {
		return name
	}
	return phone
}

func (h *Handler) resetQuietly(phone string) {
	if err := h.sessions.Reset(phone); err != nil {
		log.Printf("chat: reset session %s: %v", phone, err)
	}
}
