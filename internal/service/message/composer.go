// internal/service/message/composer.go

package message

import (
	"fmt"
	"strings"

	"gathering/internal/domain/plan"
)

// DefaultStartTime is used when a plan has no start time
const DefaultStartTime = "19:00"

// Closing is the last line of every message
const Closing = "Looking forward to seeing you there!"

// Compose renders p as the shareable announcement text. It fails with an
// incomplete plan error when the date or the venue name is missing.
func Compose(p plan.EventPlan) (string, error) {
	const op = "message.compose"

	if p.Date.IsZero() {
		return "", plan.E(plan.KindIncompletePlan, op, "choose a date before composing the message", nil)
	}
	venue := strings.TrimSpace(p.Venue.Name)
	if venue == "" {
		return "", plan.E(plan.KindIncompletePlan, op, "select a venue before composing the message", nil)
	}

	start := strings.TrimSpace(p.StartTime)
	if start == "" {
		start = DefaultStartTime
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Our next gathering is on %s (%s) from %s at \"%s\".\n",
		p.Date, p.Date.Weekday(), start, venue)
	fmt.Fprintf(&b, "Address: %s\n", p.Venue.AddressOrFallback())
	fmt.Fprintf(&b, "Phone: %s\n", p.Venue.PhoneOrFallback())
	fmt.Fprintf(&b, "Website: %s\n", p.Venue.WebsiteOrFallback())
	if game := optional(p.SuggestedGame); game != "" {
		fmt.Fprintf(&b, "Game: %s\n", game)
	}
	if weather := optional(p.WeatherSummary); weather != "" {
		fmt.Fprintf(&b, "Weather: %s\n", weather)
	}
	b.WriteString(Closing)

	return b.String(), nil
}

func optional(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
