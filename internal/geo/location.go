package geo

// Confidence expresses how trustworthy a resolved location is.
type Confidence string

const (
	ConfidenceHigh      Confidence = "high"
	ConfidenceMedium    Confidence = "medium"
	ConfidenceLow       Confidence = "low"
	ConfidenceEstimated Confidence = "estimated"
)

// Resolver identifies which resolution stage produced a location.
type Resolver string

const (
	ResolverGazetteer Resolver = "gazetteer"
	ResolverExternal  Resolver = "external"
	ResolverInferred  Resolver = "inferred"
	ResolverCurated   Resolver = "curated"
)

// Location is an immutable GeoJSON-style point with resolution metadata.
// Coordinates are [longitude, latitude].
type Location struct {
	Type             string     `json:"type"`
	Coordinates      [2]float64 `json:"coordinates"`
	Confidence       Confidence `json:"confidence"`
	Resolver         Resolver   `json:"geocoder"`
	PlaceName        string     `json:"placeName"`
	ModernEquivalent string     `json:"modernEquivalent,omitempty"`
}

// NewPoint builds a Point location from a longitude/latitude pair.
func NewPoint(lng, lat float64) Location {
	return Location{
		Type:        "Point",
		Coordinates: [2]float64{lng, lat},
	}
}

// Lng returns the longitude component.
func (l Location) Lng() float64 { return l.Coordinates[0] }

// Lat returns the latitude component.
func (l Location) Lat() float64 { return l.Coordinates[1] }

// Valid reports whether the coordinates are within WGS84 bounds.
func (l Location) Valid() bool {
	return l.Lng() >= -180 && l.Lng() <= 180 && l.Lat() >= -90 && l.Lat() <= 90
}
