// Package registry validates license plates against the TLC vehicle
// registry snapshot and generates "did you mean" suggestions for plates
// that miss.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/oceanwatch/oceanwatch/internal/models"
	"gorm.io/gorm"
)

// Registry performs plate lookups against the vehicles table. The snapshot
// is read-only from here; the importer refreshes it out-of-band.
type Registry struct {
	db *gorm.DB
}

// New creates a Registry.
func New(db *gorm.DB) *Registry {
	return &Registry{db: db}
}

// Normalize uppercases and trims a user-submitted plate. A bare 6-digit
// body is coerced into the registry's canonical TLC shape: T######C.
func Normalize(plate string) string {
	p := strings.ToUpper(strings.TrimSpace(plate))
	if len(p) == 6 && isDigits(p) {
		return "T" + p + "C"
	}
	return p
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

// Validate looks up a plate by exact (case-normalized) match. Absence is a
// normal result: (nil, false, nil).
func (r *Registry) Validate(plate string) (*models.Vehicle, bool, error) {
	var v models.Vehicle
	err := r.db.Where("plate = ?", Normalize(plate)).First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("registry: validate %s: %w", plate, err)
	}
	return &v, true, nil
}

// SearchWildcard matches plates against a pattern where each '*' stands for
// exactly one unknown character. Results are ordered lexicographically by
// plate. A pattern with no '*' degenerates to an exact match.
func (r *Registry) SearchWildcard(pattern string) ([]models.Vehicle, error) {
	// '*' means one character, which is SQL LIKE's '_'.
	like := strings.ReplaceAll(Normalize(pattern), "*", "_")

	var vehicles []models.Vehicle
	err := r.db.Where("plate LIKE ?", like).
		Order("plate ASC").Find(&vehicles).Error
	if err != nil {
		return nil, fmt.Errorf("registry: wildcard search %s: %w", pattern, err)
	}
	return vehicles, nil
}

// FindSimilar returns registry plates that differ from the given plate in
// 1–2 character positions, most similar first. Only plates of identical
// length are considered: TLC plates are fixed-width, so a positional
// comparison is enough and transpositions are not handled.
func (r *Registry) FindSimilar(plate string, max int) ([]string, error) {
	norm := Normalize(plate)

	var plates []string
	err := r.db.Model(&models.Vehicle{}).
		Order("plate ASC").Pluck("plate", &plates).Error
	if err != nil {
		return nil, fmt.Errorf("registry: find similar %s: %w", plate, err)
	}

	type scored struct {
		plate string
		diffs int
	}
	var candidates []scored
	for _, candidate := range plates {
		if len(candidate) != len(norm) {
			continue
		}
		diffs := 0
		for i := 0; i < len(norm); i++ {
			if norm[i] != candidate[i] {
				diffs++
			}
		}
		if diffs >= 1 && diffs <= 2 {
			candidates = append(candidates, scored{plate: candidate, diffs: diffs})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].diffs < candidates[j].diffs
	})

	result := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if max > 0 && len(result) >= max {
			break
		}
		result = append(result, c.plate)
	}
	return result, nil
}

// Suggest returns up to max candidate plates for a failed lookup. Patterns
// containing '*' go through the wildcard search; everything else is treated
// as a possible typo and goes through the similarity search.
func (r *Registry) Suggest(pattern string, max int) ([]string, error) {
	if strings.Contains(pattern, "*") {
		vehicles, err := r.SearchWildcard(pattern)
		if err != nil {
			return nil, err
		}
		plates := make([]string, 0, len(vehicles))
		for _, v := range vehicles {
			if max > 0 && len(plates) >= max {
				break
			}
			plates = append(plates, v.Plate)
		}
		return plates, nil
	}
	return r.FindSimilar(pattern, max)
}
