package types

// Place is one ranked result from the place lookup service.
type Place struct {
	Name       string  `json:"name"`
	Region     string  `json:"region,omitempty"`
	Country    string  `json:"country"`
	Latitude   float64 `json:"latitude,omitempty"`
	Longitude  float64 `json:"longitude,omitempty"`
	Population int64   `json:"population,omitempty"`
}
