package zonaprop

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToRawListing(t *testing.T) {
	b := &Browser{cfg: testConfig()}

	l := b.toRawListing(card{
		Title:    "Hermoso 3 ambientes con balcón",
		Price:    "$ 950.000",
		Expenses: "$ 25.000 Expensas",
		Features: "95 m² tot. 3 amb. 2 dorm. 1 baño",
		Address:  "Gorriti 4300, Palermo",
		URL:      "/departamentos/depto-1.html",
	}, testRunDate)

	assert.Equal(t, "https://www.zonaprop.com.ar/departamentos/depto-1.html", l.URL)
	assert.Equal(t, "$ 950.000", l.PriceRaw)
	assert.Equal(t, "$ 25.000", l.ExpensesRaw)
	assert.Equal(t, "95 m²", l.SizeRaw)
	assert.Equal(t, "Gorriti 4300, Palermo", l.Address)
	assert.Equal(t, testRunDate, l.Date)
	assert.Equal(t, "zonaprop", l.Source)
}

func TestToRawListing_AbsoluteURLAndMissingFields(t *testing.T) {
	b := &Browser{cfg: testConfig()}

	l := b.toRawListing(card{
		Title: "Sin datos",
		URL:   "https://www.zonaprop.com.ar/depto-2.html",
	}, testRunDate)

	assert.Equal(t, "https://www.zonaprop.com.ar/depto-2.html", l.URL)
	assert.Empty(t, l.PriceRaw)
	assert.Empty(t, l.SizeRaw)
	assert.Empty(t, l.ExpensesRaw)
}
