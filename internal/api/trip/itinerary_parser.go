package trip

import (
	"regexp"
	"strings"

	"github.com/FACorreiaa/trip-tailor/internal/types"
)

// dayHeadingRe matches "Day N" headings with an optional colon, case
// insensitively. The recovered number is deliberately ignored: ordinals come
// from split order so a producer that mislabels or skips numbers cannot
// corrupt the sequence.
var dayHeadingRe = regexp.MustCompile(`(?i)\bday\s*\d+\s*:?`)

// activityMarker opens a new day in marker-delimited text.
const activityMarker = "- activity 1"

// ParseItinerary converts raw generated text of unknown structure into an
// ordered day sequence. It first splits on "Day N" headings; when the text
// has no headings at all it falls back to scanning for "- Activity 1"
// markers. It is total over all inputs: the worst it returns is a single
// unstructured day, and an empty input yields an empty sequence.
func ParseItinerary(text string) []types.ItineraryDay {
	if days := parseDayHeadings(text); days != nil {
		return days
	}
	return parseActivityMarkers(text)
}

// parseDayHeadings splits on "Day N" headings. Any preamble before the first
// heading is discarded; each remaining fragment becomes one day, numbered by
// its position in the split order. Returns nil when the text contains no
// headings so the caller can fall back to marker scanning.
func parseDayHeadings(text string) []types.ItineraryDay {
	if !dayHeadingRe.MatchString(text) {
		return nil
	}

	fragments := dayHeadingRe.Split(text, -1)
	days := make([]types.ItineraryDay, 0, len(fragments)-1)
	for _, fragment := range fragments[1:] {
		content := strings.TrimSpace(fragment)
		days = append(days, types.ItineraryDay{
			Day:     len(days) + 1,
			Content: content,
			Lines:   splitActivityLines(content),
		})
	}
	return days
}

// parseActivityMarkers scans line by line; a line beginning with
// "- activity 1" (case-insensitive, after trimming) starts a new day. Lines
// accumulated before the first marker become their own leading day, text with
// no markers at all becomes a single day, and the final open day is always
// flushed so input ending mid-day never drops it.
func parseActivityMarkers(text string) []types.ItineraryDay {
	var days []types.ItineraryDay
	var current []string

	flush := func() {
		if len(current) == 0 {
			return
		}
		content := strings.Join(current, "\n")
		days = append(days, types.ItineraryDay{
			Day:     len(days) + 1,
			Content: content,
			Lines:   splitActivityLines(content),
		})
		current = nil
	}

	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(line)), activityMarker) {
			flush()
		}
		current = append(current, line)
	}
	flush()

	return days
}

// splitActivityLines breaks day content into cleaned activity lines: blank
// lines dropped, one leading bullet stripped per line, remainder trimmed.
func splitActivityLines(content string) []string {
	lines := []string{}
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = strings.TrimSpace(stripBullet(line))
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// stripBullet removes at most one leading dash, asterisk or bullet character.
func stripBullet(line string) string {
	for _, prefix := range []string{"-", "*", "•"} {
		if strings.HasPrefix(line, prefix) {
			return line[len(prefix):]
		}
	}
	return line
}

// categoryKeywords maps keywords to the advisory category of an activity
// line, checked in order. Classification is cosmetic: it never affects
// parsing order or day boundaries.
var categoryKeywords = []struct {
	keywords []string
	category types.ActivityCategory
}{
	{[]string{"food", "restaurant", "dinner"}, types.CategoryFood},
	{[]string{"museum", "history"}, types.CategoryHistory},
	{[]string{"nature", "park"}, types.CategoryNature},
	{[]string{"hike", "trail"}, types.CategoryHike},
	{[]string{"relax", "spa"}, types.CategoryRelaxation},
	{[]string{"shopping", "market"}, types.CategoryShopping},
	{[]string{"nightlife", "bar", "club"}, types.CategoryNightlife},
	{[]string{"beach", "sea", "coast"}, types.CategoryBeach},
}

// CategorizeLine classifies an activity line by case-insensitive keyword
// matching. Total: unknown lines get the generic category.
func CategorizeLine(line string) types.ActivityCategory {
	l := strings.ToLower(line)
	for _, entry := range categoryKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(l, kw) {
				return entry.category
			}
		}
	}
	return types.CategoryGeneric
}

// RenderDays maps parsed days to their presentation shape, attaching the
// advisory category to every line.
func RenderDays(days []types.ItineraryDay) []types.ItineraryDayView {
	views := make([]types.ItineraryDayView, 0, len(days))
	for _, day := range days {
		activities := make([]types.ActivityLine, 0, len(day.Lines))
		for _, line := range day.Lines {
			activities = append(activities, types.ActivityLine{
				Text:     line,
				Category: CategorizeLine(line),
			})
		}
		views = append(views, types.ItineraryDayView{
			Day:        day.Day,
			Activities: activities,
		})
	}
	return views
}

// JoinDays re-serializes parsed days into the storage blob: the concatenation
// of per-day content. Structure is re-derived from it on read.
func JoinDays(days []types.ItineraryDay) string {
	contents := make([]string, 0, len(days))
	for _, day := range days {
		contents = append(contents, day.Content)
	}
	return strings.Join(contents, "\n")
}
