package bluesky

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/oceanwatch/oceanwatch/internal/db"
)

// Poster is the slice of Client the publisher needs. Satisfied by *Client;
// mocked in tests.
type Poster interface {
	Login(ctx context.Context) error
	UploadBlob(ctx context.Context, data []byte, contentType string) (json.RawMessage, error)
	CreatePost(ctx context.Context, record map[string]interface{}) (string, error)
}

// Publisher drains unposted sightings into batch posts.
type Publisher struct {
	store  *db.Store
	poster Poster
	limit  int
}

// PublisherOpts configures NewPublisher.
type PublisherOpts struct {
	Store  *db.Store
	Poster Poster
	// Limit is the batch size, at most 4 (the per-post image cap).
	Limit int
}

// NewPublisher validates opts and creates a Publisher.
func NewPublisher(opts PublisherOpts) (*Publisher, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("bluesky: store is required")
	}
	if opts.Poster == nil {
		return nil, fmt.Errorf("bluesky: poster is required")
	}
	limit := opts.Limit
	if limit <= 0 || limit > 4 {
		limit = 4
	}
	return &Publisher{store: opts.Store, poster: opts.Poster, limit: limit}, nil
}

// PublishBatch posts the oldest unposted sightings as one batch and marks
// them posted with the returned AT-URI. Returns the number of sightings
// published; zero with a nil error means nothing was pending.
func (p *Publisher) PublishBatch(ctx context.Context) (int, error) {
	sightings, err := p.store.UnpostedSightings(p.limit)
	if err != nil {
		return 0, err
	}
	if len(sightings) == 0 {
		return 0, nil
	}

	uniquePlates, err := p.store.UniquePlateCount()
	if err != nil {
		return 0, err
	}
	totalVehicles, err := p.store.VehicleCount()
	if err != nil {
		return 0, err
	}
	stats := Stats{UniquePlatesSighted: uniquePlates, TotalVehicles: totalVehicles}

	if err := p.poster.Login(ctx); err != nil {
		return 0, err
	}

	images := make([]map[string]interface{}, 0, len(sightings))
	for _, s := range sightings {
		data, err := PrepareImage(s.ImagePath)
		if err != nil {
			// A lost or corrupt file should not wedge the queue forever;
			// post the batch without this image.
			log.Printf("bluesky: skipping image for sighting %d: %v", s.ID, err)
			continue
		}
		blob, err := p.poster.UploadBlob(ctx, data, "image/jpeg")
		if err != nil {
			return 0, fmt.Errorf("bluesky: upload image for sighting %d: %w", s.ID, err)
		}
		images = append(images, map[string]interface{}{
			"alt":   ImageAlt(s),
			"image": blob,
		})
	}

	record := map[string]interface{}{
		"text": FormatBatchText(sightings, stats),
	}
	if len(images) > 0 {
		record["embed"] = map[string]interface{}{
			"$type":  "app.bsky.embed.images",
			"images": images,
		}
	}

	uri, err := p.poster.CreatePost(ctx, record)
	if err != nil {
		return 0, err
	}

	for _, s := range sightings {
		if err := p.store.MarkPosted(s.ID, uri); err != nil {
			return 0, fmt.Errorf("bluesky: mark sighting %d posted: %w", s.ID, err)
		}
	}

	log.Printf("bluesky: published %d sighting(s) as %s", len(sightings), uri)
	return len(sightings), nil
}
