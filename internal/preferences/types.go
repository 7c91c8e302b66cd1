package preferences

// Range is an optional lower and upper bound
type Range struct {
	Min *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max *float64 `json:"max,omitempty" yaml:"max,omitempty"`
}

// UserPreferences are the search criteria a user saved
type UserPreferences struct {
	UserID       string   `json:"userId" yaml:"user_id"`
	Email        *string  `json:"email,omitempty" yaml:"email,omitempty"`
	PriceRange   *Range   `json:"priceRange,omitempty" yaml:"price_range,omitempty"`
	ZipCodes     []string `json:"zipCodes,omitempty" yaml:"zip_codes,omitempty"`
	Bedrooms     *Range   `json:"bedrooms,omitempty" yaml:"bedrooms,omitempty"`
	Bathrooms    *Range   `json:"bathrooms,omitempty" yaml:"bathrooms,omitempty"`
	Sqft         *Range   `json:"sqft,omitempty" yaml:"sqft,omitempty"`
	PropertyType *string  `json:"propertyType,omitempty" yaml:"property_type,omitempty"`
	UpdatedAt    string   `json:"updatedAt,omitempty" yaml:"updated_at,omitempty"`
}

// PropertySuggestion is a listing matching the saved preferences
type PropertySuggestion struct {
	ID           *string `json:"id,omitempty" yaml:"id,omitempty"`
	Address      string  `json:"address" yaml:"address"`
	Price        float64 `json:"price" yaml:"price"`
	Beds         float64 `json:"beds" yaml:"beds"`
	Baths        float64 `json:"baths" yaml:"baths"`
	Sqft         float64 `json:"sqft" yaml:"sqft"`
	DaysOnMarket float64 `json:"daysOnMarket" yaml:"days_on_market"`
	Source       string  `json:"source" yaml:"source"`
	SourceURL    string  `json:"sourceUrl" yaml:"source_url"`
}

// PropertySuggestionsResponse wraps the suggested listings
type PropertySuggestionsResponse struct {
	Suggestions    []PropertySuggestion `json:"suggestions" yaml:"suggestions"`
	Count          int                  `json:"count" yaml:"count"`
	HasPreferences bool                 `json:"hasPreferences" yaml:"has_preferences"`
	Message        string               `json:"message,omitempty" yaml:"message,omitempty"`
	Error          string               `json:"error,omitempty" yaml:"error,omitempty"`
}

// PreferencesResponse is returned after saving preferences
type PreferencesResponse struct {
	Success        bool   `json:"success,omitempty" yaml:"success"`
	UserID         string `json:"userId,omitempty" yaml:"user_id,omitempty"`
	UpdatedAt      string `json:"updatedAt,omitempty" yaml:"updated_at,omitempty"`
	Error          string `json:"error,omitempty" yaml:"error,omitempty"`
	HasPreferences bool   `json:"hasPreferences,omitempty" yaml:"has_preferences"`
}
