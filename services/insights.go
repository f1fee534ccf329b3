package services

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"baires-rentals/models"
)

// Report is an ad hoc market summary over a clean result set. It is not
// part of the daily pipeline contract; the report subcommand runs it on
// demand against whatever clean file is on disk.
type Report struct {
	TotalListings    int
	ListingsBySource map[string]int
	AveragePriceUSD  float64
	MedianPriceUSD   float64
	MinPriceUSD      float64
	MaxPriceUSD      float64
	MostExpensive    models.CleanListing
	ListingsByBarrio map[string]int
	ListingsWithSize int
	AverageSizeM2    float64
}

// GenerateReport computes summary statistics over the clean listings.
func GenerateReport(listings []models.CleanListing) Report {
	report := Report{
		TotalListings:    len(listings),
		ListingsBySource: make(map[string]int),
		ListingsByBarrio: make(map[string]int),
	}

	if len(listings) == 0 {
		return report
	}

	var (
		priceSum float64
		prices   []float64
		sizeSum  float64
		maxPrice = -1.0
		minPrice = math.MaxFloat64
	)

	for _, l := range listings {
		report.ListingsBySource[l.Source]++
		report.ListingsByBarrio[normalizeBarrio(l.Address)]++

		priceSum += l.PriceUSD
		prices = append(prices, l.PriceUSD)

		if l.PriceUSD > maxPrice {
			maxPrice = l.PriceUSD
			report.MostExpensive = l
		}
		if l.PriceUSD < minPrice {
			minPrice = l.PriceUSD
		}

		if l.SizeM2 != nil {
			report.ListingsWithSize++
			sizeSum += *l.SizeM2
		}
	}

	report.AveragePriceUSD = priceSum / float64(len(listings))
	report.MedianPriceUSD = median(prices)
	report.MinPriceUSD = minPrice
	report.MaxPriceUSD = maxPrice
	if report.ListingsWithSize > 0 {
		report.AverageSizeM2 = sizeSum / float64(report.ListingsWithSize)
	}

	return report
}

func PrintReport(report Report) {
	fmt.Println()
	fmt.Println("┌──────────────────────────────────────────────────────────────┐")
	fmt.Println("│                 Buenos Aires Rental Market Summary           │")
	fmt.Println("├───────────────────────────────┬──────────────────────────────┤")
	fmt.Printf("│ %-29s │ %-28d │\n", "Total Listings", report.TotalListings)
	fmt.Printf("│ %-29s │ %-28.2f │\n", "Average Price (USD)", report.AveragePriceUSD)
	fmt.Printf("│ %-29s │ %-28.2f │\n", "Median Price (USD)", report.MedianPriceUSD)
	fmt.Printf("│ %-29s │ %-28.2f │\n", "Minimum Price (USD)", report.MinPriceUSD)
	fmt.Printf("│ %-29s │ %-28.2f │\n", "Maximum Price (USD)", report.MaxPriceUSD)
	fmt.Printf("│ %-29s │ %-28.1f │\n", "Average Size (m²)", report.AverageSizeM2)
	fmt.Println("└───────────────────────────────┴──────────────────────────────┘")

	if report.MostExpensive.URL != "" {
		fmt.Println()
		fmt.Println("┌──────────────────────────────────────────────────────────────┐")
		fmt.Println("│                    Most Expensive Listing                    │")
		fmt.Println("├───────────────────────────────┬──────────────────────────────┤")
		fmt.Printf("│ %-29s │ %-28.2f │\n", "Price (USD)", report.MostExpensive.PriceUSD)
		fmt.Printf("│ %-29s │ %-28s │\n", "Neighborhood", truncateText(normalizeBarrio(report.MostExpensive.Address), 28))
		fmt.Println("└───────────────────────────────┴──────────────────────────────┘")
		fmt.Printf("URL: %s\n", report.MostExpensive.URL)
	}

	fmt.Println()
	fmt.Println("┌──────────────────────────────────────────────┬───────────────┐")
	fmt.Println("│ Listings per Neighborhood                    │ Count         │")
	fmt.Println("├──────────────────────────────────────────────┼───────────────┤")
	for _, barrio := range sortedKeys(report.ListingsByBarrio) {
		fmt.Printf("│ %-44s │ %-13d │\n", truncateText(barrio, 44), report.ListingsByBarrio[barrio])
	}
	fmt.Println("└──────────────────────────────────────────────┴───────────────┘")

	fmt.Println()
	fmt.Println("┌──────────────────────────────────────────────┬───────────────┐")
	fmt.Println("│ Listings per Source                          │ Count         │")
	fmt.Println("├──────────────────────────────────────────────┼───────────────┤")
	for _, src := range sortedKeys(report.ListingsBySource) {
		fmt.Printf("│ %-44s │ %-13d │\n", src, report.ListingsBySource[src])
	}
	fmt.Println("└──────────────────────────────────────────────┴───────────────┘")
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// normalizeBarrio reduces "Gorriti 4300, Palermo Soho" to its
// neighborhood part when the address carries one.
func normalizeBarrio(address string) string {
	address = strings.TrimSpace(address)
	if address == "" {
		return "Unknown"
	}
	if i := strings.LastIndex(address, ","); i >= 0 {
		if barrio := strings.TrimSpace(address[i+1:]); barrio != "" {
			return barrio
		}
	}
	return address
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func truncateText(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
