package models

// PriceNotAvailable marks a listing whose price element was empty.
const PriceNotAvailable = "-"

// Listing is one ad as shown on a search results page, with every field
// already normalized.
type Listing struct {
	Name         string `json:"name"`
	ID           string `json:"id"`
	ImageURL     string `json:"image_url"`
	Price        string `json:"price"`
	Date         string `json:"date"`
	City         string `json:"city"`
	Neighborhood string `json:"neighborhood"`
	State        string `json:"state"`
	Link         string `json:"link"`
}

// AdDetails is the normalized subset of the JSON payload embedded in a
// single ad page. Location stays a single composite line.
type AdDetails struct {
	Name        string `json:"name"`
	ID          string `json:"id"`
	ImageURL    string `json:"image_url"`
	Price       string `json:"price"`
	Description string `json:"description"`
	DatetimeUTC string `json:"datetime_utc"`
	AuthorName  string `json:"author_name"`
	Phone       string `json:"phone"`
	Type        string `json:"type"`
	Category    string `json:"category"`
	Location    string `json:"location"`
}

// InsightReport holds summary statistics over a set of listings.
type InsightReport struct {
	TotalListings  int
	PricedListings int
	AveragePrice   float64
	MinPrice       float64
	MaxPrice       float64
	Cheapest       *Listing
	MostExpensive  *Listing
	ByState        map[string]int
	ByCity         map[string]int
}
