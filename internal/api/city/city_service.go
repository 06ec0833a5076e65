package city

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/FACorreiaa/trip-tailor/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// minQueryLength is the shortest partial name worth resolving. Anything
// shorter returns no results without hitting the remote service.
const minQueryLength = 2

const maxResults = 10

// fallbackCities is served when the remote lookup fails or returns nothing.
// Lookup degradation is silent: callers always get a usable list.
var fallbackCities = []types.Place{
	{Name: "Paris", Region: "Ile-de-France", Country: "France", Latitude: 48.8566, Longitude: 2.3522, Population: 2161000},
	{Name: "Tokyo", Region: "Tokyo", Country: "Japan", Latitude: 35.6762, Longitude: 139.6503, Population: 13960000},
	{Name: "New York", Region: "New York", Country: "United States", Latitude: 40.7128, Longitude: -74.0060, Population: 8336000},
	{Name: "London", Region: "England", Country: "United Kingdom", Latitude: 51.5074, Longitude: -0.1278, Population: 8982000},
	{Name: "Rome", Region: "Lazio", Country: "Italy", Latitude: 41.9028, Longitude: 12.4964, Population: 2873000},
	{Name: "Bangkok", Region: "Bangkok", Country: "Thailand", Latitude: 13.7563, Longitude: 100.5018, Population: 10539000},
	{Name: "Barcelona", Region: "Catalonia", Country: "Spain", Latitude: 41.3851, Longitude: 2.1734, Population: 1620000},
	{Name: "Amsterdam", Region: "North Holland", Country: "Netherlands", Latitude: 52.3676, Longitude: 4.9041, Population: 872000},
	{Name: "Sydney", Region: "New South Wales", Country: "Australia", Latitude: -33.8688, Longitude: 151.2093, Population: 5312000},
	{Name: "Dubai", Region: "Dubai", Country: "United Arab Emirates", Latitude: 25.2048, Longitude: 55.2708, Population: 3331000},
	{Name: "Mumbai", Region: "Maharashtra", Country: "India", Latitude: 19.0760, Longitude: 72.8777, Population: 12442000},
	{Name: "Delhi", Region: "Delhi", Country: "India", Latitude: 28.7041, Longitude: 77.1025, Population: 16787000},
	{Name: "Bangalore", Region: "Karnataka", Country: "India", Latitude: 12.9716, Longitude: 77.5946, Population: 8443000},
	{Name: "Chennai", Region: "Tamil Nadu", Country: "India", Latitude: 13.0827, Longitude: 80.2707, Population: 7088000},
}

type Service interface {
	SearchPlaces(ctx context.Context, query string) ([]types.Place, error)
}

type ServiceImpl struct {
	logger     *slog.Logger
	httpClient *http.Client
	baseURL    string
	username   string
}

func NewServiceImpl(baseURL, username string, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:     logger,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    baseURL,
		username:   username,
	}
}

// geoNamesResult mirrors the subset of the GeoNames searchJSON payload we
// consume. Coordinates arrive as strings.
type geoNamesResult struct {
	Geonames []struct {
		Name       string `json:"name"`
		AdminName1 string `json:"adminName1"`
		Country    string `json:"countryName"`
		Lat        string `json:"lat"`
		Lng        string `json:"lng"`
		Population int64  `json:"population"`
	} `json:"geonames"`
}

// SearchPlaces resolves a partial place name to a ranked list of places.
// Remote failures and empty remote results degrade to the static fallback
// list filtered by substring; the error return is reserved for context
// cancellation.
func (s *ServiceImpl) SearchPlaces(ctx context.Context, query string) ([]types.Place, error) {
	ctx, span := otel.Tracer("CityService").Start(ctx, "SearchPlaces")
	defer span.End()
	span.SetAttributes(attribute.String("query", query))
	l := s.logger.With(slog.String("method", "SearchPlaces"))

	query = strings.TrimSpace(query)
	if len(query) < minQueryLength {
		return []types.Place{}, nil
	}

	places, err := s.queryGeoNames(ctx, query)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		l.WarnContext(ctx, "Place lookup failed, using fallback list", slog.Any("error", err))
		span.SetStatus(codes.Ok, "Served from fallback")
		return filterFallback(query), nil
	}
	if len(places) == 0 {
		l.DebugContext(ctx, "Empty lookup result, using fallback list")
		span.SetStatus(codes.Ok, "Served from fallback")
		return filterFallback(query), nil
	}

	span.SetStatus(codes.Ok, "Places resolved")
	return places, nil
}

func (s *ServiceImpl) queryGeoNames(ctx context.Context, query string) ([]types.Place, error) {
	params := url.Values{}
	params.Set("name_startsWith", query)
	params.Set("maxRows", strconv.Itoa(maxResults))
	params.Set("featureClass", "P")
	params.Add("featureClass", "A")
	params.Set("orderby", "relevance")
	params.Set("username", s.username)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build place lookup request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("place lookup request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("place lookup returned status %d", resp.StatusCode)
	}

	var result geoNamesResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode place lookup response: %w", err)
	}

	places := make([]types.Place, 0, len(result.Geonames))
	for _, g := range result.Geonames {
		lat, _ := strconv.ParseFloat(g.Lat, 64)
		lng, _ := strconv.ParseFloat(g.Lng, 64)
		places = append(places, types.Place{
			Name:       g.Name,
			Region:     g.AdminName1,
			Country:    g.Country,
			Latitude:   lat,
			Longitude:  lng,
			Population: g.Population,
		})
	}
	return places, nil
}

func filterFallback(query string) []types.Place {
	q := strings.ToLower(query)
	matched := make([]types.Place, 0, len(fallbackCities))
	for _, p := range fallbackCities {
		if strings.Contains(strings.ToLower(p.Name), q) {
			matched = append(matched, p)
		}
	}
	return matched
}
