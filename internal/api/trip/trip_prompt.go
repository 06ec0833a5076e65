package trip

import (
	"fmt"
	"strings"

	"github.com/FACorreiaa/trip-tailor/internal/types"
)

// buildItineraryPrompt renders a preference snapshot into the generation
// instruction. The strict per-day format contract exists solely to keep the
// response parseable; the parser still copes when the producer drifts from
// it.
func buildItineraryPrompt(prefs *types.TripPreferences) string {
	return fmt.Sprintf(`You are an AI travel assistant. Create a %d-day itinerary for a trip to %s, starting from %s. Travelers: %s. Budget: %s. Food: %s.
Activities of interest: %s.

STRICT FORMAT REQUIRED - no intro or summary, just this format:

Day 1:
- Activity 1: ...
- Activity 2: ...
- Activity 3: ...
Day 2:
- Activity 1: ...
- Activity 2: ...
...

Each day MUST begin with "Day X:", and include 3-5 activities (morning, afternoon, evening). Do not skip days. Do not repeat "Activity 1" without a new Day heading.`,
		prefs.Days,
		prefs.Destination,
		prefs.StartDate.Format("2006-01-02"),
		prefs.Companions,
		prefs.Budget,
		prefs.Food,
		strings.Join(prefs.Activities, ", "),
	)
}
