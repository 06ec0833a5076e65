package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	GenerationRequestsTotal   metric.Int64Counter
	GenerationFailuresTotal   metric.Int64Counter
	GenerationDurationSeconds metric.Float64Histogram
	ParsedDaysTotal           metric.Int64Counter
	TripSavesTotal            metric.Int64Counter
	PublicTripReadsTotal      metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metric instruments exactly once.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("trip-tailor")
		var err error
		m := &AppMetrics{}

		m.GenerationRequestsTotal, err = meter.Int64Counter(
			"itinerary_generation_requests_total",
			metric.WithDescription("Total number of itinerary generation requests"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create itinerary_generation_requests_total: %v", err)
		}

		m.GenerationFailuresTotal, err = meter.Int64Counter(
			"itinerary_generation_failures_total",
			metric.WithDescription("Total number of failed generation attempts"),
			metric.WithUnit("{error}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create itinerary_generation_failures_total: %v", err)
		}

		m.GenerationDurationSeconds, err = meter.Float64Histogram(
			"itinerary_generation_duration_seconds",
			metric.WithDescription("Duration of generation calls in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create itinerary_generation_duration_seconds: %v", err)
		}

		m.ParsedDaysTotal, err = meter.Int64Counter(
			"itinerary_parsed_days_total",
			metric.WithDescription("Total number of day records produced by the parser"),
			metric.WithUnit("{day}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create itinerary_parsed_days_total: %v", err)
		}

		m.TripSavesTotal, err = meter.Int64Counter(
			"trip_saves_total",
			metric.WithDescription("Total number of trips saved"),
			metric.WithUnit("{trip}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create trip_saves_total: %v", err)
		}

		m.PublicTripReadsTotal, err = meter.Int64Counter(
			"public_trip_reads_total",
			metric.WithDescription("Total number of anonymous public trip reads"),
			metric.WithUnit("{read}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create public_trip_reads_total: %v", err)
		}

		appMetrics = m
	})
}

// Get returns the globally initialized AppMetrics instance.
// Panics if InitAppMetrics was not called first.
func Get() *AppMetrics {
	if appMetrics == nil {
		panic("metrics instruments not initialized. Call metrics.InitAppMetrics() first.")
	}
	return appMetrics
}
