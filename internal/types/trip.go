package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type BudgetTier string

const (
	BudgetLow    BudgetTier = "low"
	BudgetMedium BudgetTier = "medium"
	BudgetHigh   BudgetTier = "high"
)

type CompanionType string

const (
	CompanionSolo    CompanionType = "solo"
	CompanionCouple  CompanionType = "couple"
	CompanionFamily  CompanionType = "family"
	CompanionFriends CompanionType = "friends"
)

type FoodPreference string

const (
	FoodVegetarian    FoodPreference = "vegetarian"
	FoodNonVegetarian FoodPreference = "non-vegetarian"
)

const (
	MinTripDays     = 1
	MaxTripDays     = 30
	DefaultTripDays = 3
)

// ActivityCatalog is the fixed set of activity interests a traveler can pick.
var ActivityCatalog = []string{
	"Sightseeing",
	"Museums & Galleries",
	"Food Tours",
	"Adventure Sports",
	"Shopping",
	"Nightlife",
	"Beach Activities",
	"Cultural Experiences",
	"Nature & Wildlife",
	"Photography",
	"Wellness & Spa",
	"Local Markets",
}

// TripPreferences is the immutable set of trip parameters used to produce one
// generation request.
type TripPreferences struct {
	Destination string         `json:"destination"`
	StartDate   time.Time      `json:"start_date"`
	Days        int            `json:"days"`
	Budget      BudgetTier     `json:"budget"`
	Companions  CompanionType  `json:"companions"`
	Activities  []string       `json:"activities,omitempty"`
	Food        FoodPreference `json:"food"`
}

// Validate reports the first constraint the preference set violates. A
// generation request is only issuable once this returns nil.
func (p *TripPreferences) Validate(now time.Time) error {
	if strings.TrimSpace(p.Destination) == "" {
		return fmt.Errorf("destination is required")
	}
	if p.StartDate.IsZero() {
		return fmt.Errorf("start date is required")
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if p.StartDate.Before(today) {
		return fmt.Errorf("start date must not be in the past")
	}
	if p.Days == 0 {
		p.Days = DefaultTripDays
	}
	if p.Days < MinTripDays || p.Days > MaxTripDays {
		return fmt.Errorf("days must be between %d and %d", MinTripDays, MaxTripDays)
	}
	switch p.Budget {
	case BudgetLow, BudgetMedium, BudgetHigh:
	default:
		return fmt.Errorf("budget must be one of low, medium, high")
	}
	switch p.Companions {
	case CompanionSolo, CompanionCouple, CompanionFamily, CompanionFriends:
	default:
		return fmt.Errorf("companions must be one of solo, couple, family, friends")
	}
	switch p.Food {
	case FoodVegetarian, FoodNonVegetarian:
	default:
		return fmt.Errorf("food must be one of vegetarian, non-vegetarian")
	}
	for _, a := range p.Activities {
		if !isCatalogActivity(a) {
			return fmt.Errorf("unknown activity interest %q", a)
		}
	}
	return nil
}

func isCatalogActivity(name string) bool {
	for _, a := range ActivityCatalog {
		if strings.EqualFold(a, name) {
			return true
		}
	}
	return false
}

// ItineraryDay is one parsed day: a 1-based ordinal assigned in parse order,
// the raw text fragment the day was recovered from, and the cleaned activity
// lines extracted from it. Content is what gets re-serialized for storage;
// Lines are for rendering.
type ItineraryDay struct {
	Day     int      `json:"day"`
	Content string   `json:"content"`
	Lines   []string `json:"lines"`
}

// ActivityCategory is the advisory classification attached to a rendered
// activity line. It never affects parsing.
type ActivityCategory string

const (
	CategoryFood       ActivityCategory = "food"
	CategoryHistory    ActivityCategory = "history"
	CategoryNature     ActivityCategory = "nature"
	CategoryHike       ActivityCategory = "hike"
	CategoryRelaxation ActivityCategory = "relaxation"
	CategoryShopping   ActivityCategory = "shopping"
	CategoryNightlife  ActivityCategory = "nightlife"
	CategoryBeach      ActivityCategory = "beach"
	CategoryGeneric    ActivityCategory = "generic"
)

// ActivityLine pairs an activity line with its advisory category for views.
type ActivityLine struct {
	Text     string           `json:"text"`
	Category ActivityCategory `json:"category"`
}

// ItineraryDayView is the presentation shape of one day.
type ItineraryDayView struct {
	Day        int            `json:"day"`
	Activities []ActivityLine `json:"activities"`
}

// Trip is the persisted record of one saved generation cycle.
type Trip struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"user_id"`
	City       string     `json:"city"`
	Days       int        `json:"days"`
	Budget     BudgetTier `json:"budget"`
	Companions string     `json:"companions,omitempty"`
	Activities []string   `json:"activities"`
	Itinerary  string     `json:"itinerary"`
	IsPublic   bool       `json:"is_public"`
	PublicID   *uuid.UUID `json:"public_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// TripStats summarizes a user's saved trips.
type TripStats struct {
	TotalTrips  int `json:"total_trips"`
	DaysPlanned int `json:"days_planned"`
	PublicTrips int `json:"public_trips"`
}

type SaveTripRequest struct {
	City       string     `json:"city"`
	Days       int        `json:"days"`
	Budget     BudgetTier `json:"budget"`
	Companions string     `json:"companions,omitempty"`
	Activities []string   `json:"activities,omitempty"`
	Itinerary  string     `json:"itinerary"`
}

type SetVisibilityRequest struct {
	IsPublic bool `json:"is_public"`
}

// GeneratedItinerary is the response of one generation cycle, returned to the
// client before any save happens.
type GeneratedItinerary struct {
	RawText string             `json:"raw_text"`
	Days    []ItineraryDayView `json:"days"`
	// RequestedDays lets the caller surface a mismatch between requested
	// duration and parsed day count; the pipeline never rejects it.
	RequestedDays int `json:"requested_days"`
}
