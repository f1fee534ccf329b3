package services

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"baires-rentals/models"
	"baires-rentals/utils"
)

// Filter holds the cleaning thresholds for one run. The exchange rate is
// passed in explicitly so the same raw inputs produce the same clean file
// for a fixed rate.
type Filter struct {
	ExchangeRate float64 // ARS per USD
	MinPriceUSD  float64
	MaxPriceUSD  float64
	MinSizeM2    float64
}

type currency int

const (
	currencyNone currency = iota
	currencyARS
	currencyUSD
)

var (
	digitsRe    = regexp.MustCompile(`[\d\.]+`)
	sizeValueRe = regexp.MustCompile(`(\d+(?:[.,]\d+)?)`)
)

// CleanListings merges the raw rows from both sources into the clean
// result set: dedupe by URL, normalize price to USD, coerce size, then
// keep only rows inside the configured bounds and dated runDate.
//
// Rows with no parsable price or no URL are dropped, never failed: one
// garbled card must not abort the daily run.
func CleanListings(raw []models.RawListing, f Filter, runDate string) []models.CleanListing {
	seen := make(map[string]bool)
	clean := make([]models.CleanListing, 0, len(raw))
	dropped := 0

	for _, r := range raw {
		url := strings.TrimSpace(r.URL)
		if url == "" || seen[url] {
			continue
		}
		seen[url] = true

		cur, amount, ok := parseMoney(r.PriceRaw)
		if !ok {
			dropped++
			continue
		}

		// Expenses are always quoted in pesos; fold them into the
		// monthly total the way the listing's tenant would pay it.
		_, expenses, _ := parseMoney(r.ExpensesRaw)

		var priceUSD float64
		switch cur {
		case currencyARS:
			priceUSD = (amount + expenses) / f.ExchangeRate
		case currencyUSD:
			priceUSD = amount + expenses/f.ExchangeRate
		}
		priceUSD = math.Round(priceUSD*100) / 100

		size := parseSize(r.SizeRaw)

		if r.Date != runDate {
			continue
		}
		if priceUSD < f.MinPriceUSD || priceUSD > f.MaxPriceUSD {
			continue
		}
		// Missing size means unconstrained: plenty of qualifying listings
		// simply don't publish square meters.
		if size != nil && *size < f.MinSizeM2 {
			continue
		}

		clean = append(clean, models.CleanListing{
			Title:    strings.TrimSpace(r.Title),
			PriceUSD: priceUSD,
			SizeM2:   size,
			Address:  strings.TrimSpace(r.Address),
			Date:     r.Date,
			URL:      url,
			Source:   strings.TrimSpace(strings.ToLower(r.Source)),
		})
	}

	if dropped > 0 {
		utils.Warn("Dropped %d rows with unparseable prices", dropped)
	}
	return clean
}

// parseMoney reads site price text like "$ 150.000", "USD 1.200" or
// "$150.000". The dot is a thousands separator on both sites. A bare "$"
// means pesos; "USD" or "U$S" means dollars.
func parseMoney(raw string) (currency, float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return currencyNone, 0, false
	}

	cur := currencyNone
	switch {
	case strings.HasPrefix(raw, "USD"), strings.HasPrefix(raw, "U$S"):
		cur = currencyUSD
	case strings.HasPrefix(raw, "$"):
		cur = currencyARS
	default:
		return currencyNone, 0, false
	}

	m := digitsRe.FindString(raw)
	if m == "" {
		return currencyNone, 0, false
	}

	v, err := strconv.ParseFloat(strings.ReplaceAll(m, ".", ""), 64)
	if err != nil || v == 0 {
		return currencyNone, 0, false
	}
	return cur, v, true
}

// parseSize reads "85 m²" style text. Nil means the listing published no
// usable size.
func parseSize(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "N/A") {
		return nil
	}
	m := sizeValueRe.FindStringSubmatch(raw)
	if m == nil {
		return nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
	if err != nil {
		return nil
	}
	return &v
}
