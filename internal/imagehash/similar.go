package imagehash

import (
	"fmt"
	"sort"

	"github.com/oceanwatch/oceanwatch/internal/models"
	"gorm.io/gorm"
)

// Similar is one near-duplicate match from FindSimilar.
type Similar struct {
	SightingID uint
	ImagePath  string
	Distance   int
}

// FindSimilar scans stored sightings with a perceptual hash and returns
// those within threshold Hamming distance of the given hash, closest first.
// Ties keep insertion order. Sightings with malformed stored hashes are
// skipped. This runs only as an informational check after a commit has
// already succeeded; it never blocks a submission.
func FindSimilar(db *gorm.DB, perceptualHash string, threshold int) ([]Similar, error) {
	var rows []models.Sighting
	err := db.Select("id", "image_path", "image_hash_perceptual").
		Where("image_hash_perceptual IS NOT NULL AND image_hash_perceptual != ''").
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("imagehash: load stored hashes: %w", err)
	}

	var matches []Similar
	for _, row := range rows {
		d, err := HammingDistance(perceptualHash, row.ImageHashPerceptual)
		if err != nil {
			continue
		}
		if d <= threshold {
			matches = append(matches, Similar{
				SightingID: row.ID,
				ImagePath:  row.ImagePath,
				Distance:   d,
			})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})
	return matches, nil
}
