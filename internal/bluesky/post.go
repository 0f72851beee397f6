package bluesky

import (
	"fmt"
	"sort"
	"strings"

	"github.com/oceanwatch/oceanwatch/internal/models"
)

// progressBarLength is the width of the fleet-coverage bar in characters.
const progressBarLength = 10

// Stats holds the fleet-wide counters every post reports against.
type Stats struct {
	UniquePlatesSighted int64
	TotalVehicles       int64
}

// ProgressBar renders fleet coverage like "1.5% █▒▒▒▒▒▒▒▒▒ (30 out of 2053)".
func ProgressBar(current, total int64) string {
	var percentage float64
	filled := 0
	if total > 0 {
		percentage = float64(current) / float64(total) * 100
		filled = int(progressBarLength * current / total)
	}
	if filled > progressBarLength {
		filled = progressBarLength
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("▒", progressBarLength-filled)
	return fmt.Sprintf("%.1f%% %s (%d out of %d)", percentage, bar, current, total)
}

// Ordinal converts 1 to "1st", 2 to "2nd", 11 to "11th", and so on.
func Ordinal(n int64) string {
	suffix := "th"
	if n%100 < 11 || n%100 > 13 {
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}

// FormatSightingText composes the single-sighting post text used by the
// post command's dry-run preview.
func FormatSightingText(s models.Sighting, plateCount int64, locationText string, stats Stats) string {
	plate := ""
	if s.LicensePlate != nil {
		plate = *s.LicensePlate
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🌊 Fisker Ocean, plate %s spotted for the %s time\n", plate, Ordinal(plateCount))
	fmt.Fprintf(&b, "📈 %s\n\n", ProgressBar(stats.UniquePlatesSighted, stats.TotalVehicles))
	fmt.Fprintf(&b, "📅 %s", s.Timestamp.Format("January 02, 2006 at 3:04 PM"))

	if locationText != "" {
		// Raw coordinates read better with "at", place names with "in".
		if strings.Contains(locationText, ",") && strings.Contains(locationText, ".") {
			fmt.Fprintf(&b, "\n📍 Spotted at %s", locationText)
		} else {
			fmt.Fprintf(&b, "\n📍 Spotted in %s", locationText)
		}
	}

	if name := s.Contributor.DisplayName(); name != "" {
		fmt.Fprintf(&b, "\n\n🙏 Contributed by %s", name)
	}
	return b.String()
}

// FormatBatchText composes the batch post text: header with sighting and
// contributor counts, progress bar, plate list, and a thanks line naming
// every contributor who opted in.
func FormatBatchText(sightings []models.Sighting, stats Stats) string {
	plates := make([]string, 0, len(sightings))
	contributorIDs := make(map[uint]struct{})
	nameSet := make(map[string]struct{})
	for _, s := range sightings {
		if s.LicensePlate != nil {
			plates = append(plates, *s.LicensePlate)
		}
		if s.ContributorID != 0 {
			contributorIDs[s.ContributorID] = struct{}{}
		}
		if name := s.Contributor.DisplayName(); name != "" {
			nameSet[name] = struct{}{}
		}
	}

	var b strings.Builder

	sightingWord := "sightings"
	if len(sightings) == 1 {
		sightingWord = "sighting"
	}
	fmt.Fprintf(&b, "🌊 %d new %s", len(sightings), sightingWord)
	if n := len(contributorIDs); n > 0 {
		contributorWord := "contributors"
		if n == 1 {
			contributorWord = "contributor"
		}
		fmt.Fprintf(&b, " from %d %s", n, contributorWord)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "📈 %s\n\n", ProgressBar(stats.UniquePlatesSighted, stats.TotalVehicles))
	fmt.Fprintf(&b, "🚗 %s", strings.Join(plates, ", "))

	if len(nameSet) > 0 {
		names := make([]string, 0, len(nameSet))
		for name := range nameSet {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Fprintf(&b, "\n\n🙏 Thanks to: %s", strings.Join(names, ", "))
	}
	return b.String()
}

// ImageAlt is the accessibility description attached to each embedded
// sighting photo.
func ImageAlt(s models.Sighting) string {
	if s.LicensePlate != nil {
		return fmt.Sprintf("Fisker Ocean with plate %s", *s.LicensePlate)
	}
	return "Fisker Ocean"
}
