package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"baires-rentals/models"
)

func TestRawCSV_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "raw.csv")

	in := []models.RawListing{
		{
			Title:       "Depto 3 amb, con \"balcón\"",
			PriceRaw:    "$ 900.000",
			ExpensesRaw: "$ 15.000",
			SizeRaw:     "95 m²",
			Address:     "Gorriti 4300, Palermo",
			Date:        "2026-08-30",
			URL:         "https://www.argenprop.com/depto/1",
			Source:      "argenprop",
		},
		{
			Title:    "Depto en Belgrano",
			PriceRaw: "USD 1.200",
			Date:     "2026-08-30",
			URL:      "https://www.zonaprop.com.ar/depto/2",
			Source:   "zonaprop",
		},
	}

	require.NoError(t, WriteRawCSV(path, in))

	out, err := ReadRawCSV(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestReadRawCSV_MissingFileIsEmpty(t *testing.T) {
	out, err := ReadRawCSV(filepath.Join(t.TempDir(), "nope.csv"))
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestReadRawCSV_SkipsMalformedRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "raw.csv")
	content := "title,price_raw,expenses_raw,size_raw,address,date,url,source\n" +
		"ok,$ 900.000,,95 m²,Palermo,2026-08-30,https://x/1,argenprop\n" +
		"truncated,row\n" +
		"ok2,USD 800,,,Belgrano,2026-08-30,https://x/2,argenprop\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	out, err := ReadRawCSV(path)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "https://x/1", out[0].URL)
	assert.Equal(t, "https://x/2", out[1].URL)
}

func TestCleanCSV_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clean.csv")
	size := 95.0

	in := []models.CleanListing{
		{
			Title:    "Depto 3 amb",
			PriceUSD: 600,
			SizeM2:   &size,
			Address:  "Palermo",
			Date:     "2026-08-30",
			URL:      "https://x/1",
			Source:   "argenprop",
		},
		{
			Title:    "Sin superficie publicada",
			PriceUSD: 1200.5,
			Address:  "Belgrano",
			Date:     "2026-08-30",
			URL:      "https://x/2",
			Source:   "zonaprop",
		},
	}

	require.NoError(t, WriteCleanCSV(path, in))

	out, err := ReadCleanCSV(path)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, 600.0, out[0].PriceUSD)
	require.NotNil(t, out[0].SizeM2)
	assert.Equal(t, 95.0, *out[0].SizeM2)
	assert.Nil(t, out[1].SizeM2)
	assert.Equal(t, 1200.5, out[1].PriceUSD)
}

func TestWriteCleanCSV_OverwritesPreviousRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clean.csv")

	require.NoError(t, WriteCleanCSV(path, []models.CleanListing{
		{Title: "old", PriceUSD: 500, Date: "2026-08-29", URL: "https://x/old", Source: "argenprop"},
		{Title: "old2", PriceUSD: 600, Date: "2026-08-29", URL: "https://x/old2", Source: "argenprop"},
	}))
	require.NoError(t, WriteCleanCSV(path, []models.CleanListing{
		{Title: "new", PriceUSD: 700, Date: "2026-08-30", URL: "https://x/new", Source: "zonaprop"},
	}))

	out, err := ReadCleanCSV(path)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "https://x/new", out[0].URL)
}

func TestReadCleanCSV_SkipsBadNumericRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clean.csv")
	content := "title,price_usd,size_m2,address,date,url,source\n" +
		"ok,600.00,95,Palermo,2026-08-30,https://x/1,argenprop\n" +
		"bad,not-a-price,95,Palermo,2026-08-30,https://x/2,argenprop\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	out, err := ReadCleanCSV(path)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "https://x/1", out[0].URL)
}
