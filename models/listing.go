package models

// RawListing is a property record exactly as scraped, before any
// normalization. Prices and sizes are kept as site text ("$ 150.000",
// "85 m²") so the cleaner owns all parsing rules.
type RawListing struct {
	Title       string
	PriceRaw    string
	ExpensesRaw string
	SizeRaw     string
	Address     string
	Date        string // YYYY-MM-DD scrape date
	URL         string
	Source      string
}

// CleanListing is a normalized, filtered record ready for alerting.
// SizeM2 is nil when the listing did not publish a size.
type CleanListing struct {
	Title    string
	PriceUSD float64
	SizeM2   *float64
	Address  string
	Date     string
	URL      string
	Source   string
}

// PageJob is one result page to fetch from a paginated source.
type PageJob struct {
	PageNumber int
	URL        string
}

// PageResult carries the listings parsed from one result page.
type PageResult struct {
	Listings   []RawListing
	Error      error
	PageNumber int
}
