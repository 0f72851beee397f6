package chat

import (
	"fmt"
	"strings"
)

// Reply text templates for the SMS conversation. Kept in one place so the
// tone stays consistent across states.

func helpMessage() string {
	return strings.Join([]string{
		"Fisker Ocean Sightings Bot",
		"",
		"Send a photo of a Fisker Ocean to log a sighting. I'll extract the location and ask you for the license plate.",
		"",
		"Commands:",
		"- Send a photo to start",
		"- Reply CANCEL to abort",
		"- Reply HELP for this message",
	}, "\n")
}

func cancelledMessage() string {
	return "Sighting cancelled. Send a new photo anytime!"
}

func errorGeneral() string {
	return "Sorry, something went wrong. Please try again or contact support."
}

func requestPlate() string {
	return "Please send the license plate number."
}

func welcomeWithImage(name string) string {
	if name != "" {
		return fmt.Sprintf("Great photo, %s! What's the license plate number?", name)
	}
	return "Great photo! What's the license plate number?"
}

func requestLocationAfterPlate() string {
	return "Got it! Where did you see this vehicle? (Send a street address or neighborhood in NYC)"
}

func requestLocation() string {
	return "Where did you see this vehicle? (Send a street address or neighborhood in NYC)"
}

func locationNotFound() string {
	return "Sorry, I couldn't find that location. Please try a street address or neighborhood in NYC (e.g., 'Astoria' or '123 Main St, Brooklyn')"
}

func plateNotFound(plate string, suggestions []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Plate %s not found in the NYC TLC database.", plate)

	if len(suggestions) == 0 {
		b.WriteString(" Please double-check and send the correct plate number.")
		return b.String()
	}

	b.WriteString("\n\nDid you mean one of these?\n")
	for i, s := range suggestions {
		if i >= 5 {
			break
		}
		fmt.Fprintf(&b, "%d. %s\n", i+1, s)
	}
	b.WriteString("\nSend the correct plate number.")
	return b.String()
}

func duplicateImage() string {
	return "You've already submitted this exact photo. Send a new photo to log another sighting!"
}

func sightingConfirmed(plate string, plateCount, totalCount, contributorCount int64) string {
	return fmt.Sprintf(
		"Sighting saved! That's the %s sighting of %s, the %s overall, and your %s contribution. It will be posted to Bluesky soon. Thanks!",
		ordinal(plateCount), plate, ordinal(totalCount), ordinal(contributorCount))
}

func namePrompt() string {
	return "Would you like to set a name for future posts? Reply with your name, or SKIP to remain anonymous."
}

func nameTooLong() string {
	return "Name is too long (max 50 characters). Please try again or reply SKIP."
}

func nameSkipped() string {
	return "No problem, you'll remain anonymous. Send a new photo anytime!"
}

func nameConfirmed(name string) string {
	return fmt.Sprintf("Great! Future posts will credit you as '%s'. Send a new photo anytime!", name)
}

// ordinal renders 1 → "1st", 2 → "2nd", 11 → "11th", and so on.
func ordinal(n int64) string {
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
