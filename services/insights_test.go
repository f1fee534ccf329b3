package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"baires-rentals/models"
)

func TestGenerateReport(t *testing.T) {
	size := 95.0
	listings := []models.CleanListing{
		{Title: "a", PriceUSD: 400, SizeM2: &size, Address: "Gorriti 4300, Palermo", Date: testRunDate, URL: "https://x/1", Source: "argenprop"},
		{Title: "b", PriceUSD: 800, Address: "Juramento 2300, Belgrano", Date: testRunDate, URL: "https://x/2", Source: "zonaprop"},
		{Title: "c", PriceUSD: 1200, Address: "Thames 1800, Palermo", Date: testRunDate, URL: "https://x/3", Source: "argenprop"},
	}

	report := GenerateReport(listings)

	assert.Equal(t, 3, report.TotalListings)
	assert.Equal(t, 800.0, report.AveragePriceUSD)
	assert.Equal(t, 800.0, report.MedianPriceUSD)
	assert.Equal(t, 400.0, report.MinPriceUSD)
	assert.Equal(t, 1200.0, report.MaxPriceUSD)
	assert.Equal(t, "https://x/3", report.MostExpensive.URL)
	assert.Equal(t, 2, report.ListingsByBarrio["Palermo"])
	assert.Equal(t, 1, report.ListingsByBarrio["Belgrano"])
	assert.Equal(t, 2, report.ListingsBySource["argenprop"])
	assert.Equal(t, 1, report.ListingsWithSize)
	assert.Equal(t, 95.0, report.AverageSizeM2)
}

func TestGenerateReport_Empty(t *testing.T) {
	report := GenerateReport(nil)

	assert.Zero(t, report.TotalListings)
	assert.Zero(t, report.AveragePriceUSD)
	assert.Empty(t, report.ListingsByBarrio)
}

func TestMedian_EvenCount(t *testing.T) {
	assert.Equal(t, 600.0, median([]float64{400, 800}))
}

func TestNormalizeBarrio(t *testing.T) {
	assert.Equal(t, "Palermo", normalizeBarrio("Gorriti 4300, Palermo"))
	assert.Equal(t, "Belgrano", normalizeBarrio("Belgrano"))
	assert.Equal(t, "Unknown", normalizeBarrio("  "))
}
