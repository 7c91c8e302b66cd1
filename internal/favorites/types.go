package favorites

// PropertyData is the listing snapshot stored with a saved property
type PropertyData struct {
	ID               string  `json:"id" yaml:"id"`
	FormattedAddress string  `json:"formattedAddress" yaml:"formatted_address"`
	Price            float64 `json:"price" yaml:"price"`
	Bedrooms         float64 `json:"bedrooms" yaml:"bedrooms"`
	Bathrooms        float64 `json:"bathrooms" yaml:"bathrooms"`
	SquareFootage    float64 `json:"squareFootage" yaml:"square_footage"`
	PropertyType     string  `json:"propertyType" yaml:"property_type"`
	City             string  `json:"city,omitempty" yaml:"city,omitempty"`
	ZipCode          string  `json:"zipCode,omitempty" yaml:"zip_code,omitempty"`
	DaysOnMarket     *int    `json:"daysOnMarket,omitempty" yaml:"days_on_market,omitempty"`
	Source           string  `json:"source,omitempty" yaml:"source,omitempty"`
	SourceURL        string  `json:"sourceUrl,omitempty" yaml:"source_url,omitempty"`
	ListingDate      string  `json:"listingDate,omitempty" yaml:"listing_date,omitempty"`
	ImageURL         string  `json:"imageUrl,omitempty" yaml:"image_url,omitempty"`
}

// SavedProperty is a property the user favorited or marked for a visit
type SavedProperty struct {
	PropertyData     `yaml:",inline"`
	PropertyID       string  `json:"property_id" yaml:"property_id"`
	IsVisitCandidate bool    `json:"is_visit_candidate" yaml:"is_visit_candidate"`
	FavoritedAt      string  `json:"favorited_at" yaml:"favorited_at"`
	LastRefreshedAt  string  `json:"last_refreshed_at" yaml:"last_refreshed_at"`
	SnapshotPrice    float64 `json:"snapshot_price" yaml:"snapshot_price"`
	SnapshotAt       string  `json:"snapshot_timestamp,omitempty" yaml:"snapshot_timestamp,omitempty"`
}

// FavoritesCountResponse counts saved properties
type FavoritesCountResponse struct {
	Total     int `json:"total" yaml:"total"`
	Favorites int `json:"favorites" yaml:"favorites"`
	Visit     int `json:"visit" yaml:"visit"`
}

type savePropertyRequest struct {
	PropertyID   string       `json:"property_id"`
	PropertyData PropertyData `json:"property_data"`
	IsVisit      bool         `json:"is_visit"`
}

type visitRequest struct {
	IsVisit bool `json:"is_visit"`
}

type mergeSessionRequest struct {
	SessionID string `json:"sessionId"`
}

type mergeSessionResponse struct {
	MergedCount int `json:"merged_count"`
}
