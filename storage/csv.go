package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"baires-rentals/models"
	"baires-rentals/utils"
)

var rawHeader = []string{"title", "price_raw", "expenses_raw", "size_raw", "address", "date", "url", "source"}

var cleanHeader = []string{"title", "price_usd", "size_m2", "address", "date", "url", "source"}

// WriteRawCSV writes one source's scraped listings, replacing any file
// from an earlier run. Creates the output directory if needed.
func WriteRawCSV(path string, listings []models.RawListing) error {
	file, err := createWithDir(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	writer.Write(rawHeader)
	for _, l := range listings {
		writer.Write([]string{l.Title, l.PriceRaw, l.ExpensesRaw, l.SizeRaw, l.Address, l.Date, l.URL, l.Source})
	}

	if err := writer.Error(); err != nil {
		return fmt.Errorf("csv write error: %w", err)
	}

	utils.Success("Saved %d raw listings → %s", len(listings), path)
	return nil
}

// ReadRawCSV loads a raw-listing file. Rows with the wrong column count
// are skipped, not failed: a partially written row from an interrupted
// fetch must not sink the cleaning run. A missing file reads as empty so
// the cleaner can proceed with whichever source succeeded.
func ReadRawCSV(path string) ([]models.RawListing, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			utils.Warn("Raw file %s missing — treating source as empty", path)
			return nil, nil
		}
		return nil, fmt.Errorf("open raw csv: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read raw csv: %w", err)
	}

	var listings []models.RawListing
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		if len(row) != len(rawHeader) {
			utils.Warn("Skipping malformed row %d in %s (%d columns)", i+1, path, len(row))
			continue
		}
		listings = append(listings, models.RawListing{
			Title:       row[0],
			PriceRaw:    row[1],
			ExpensesRaw: row[2],
			SizeRaw:     row[3],
			Address:     row[4],
			Date:        row[5],
			URL:         row[6],
			Source:      row[7],
		})
	}
	return listings, nil
}

// WriteCleanCSV overwrites the clean-listing file with this run's result
// set. size_m2 is written empty when the listing published no size.
func WriteCleanCSV(path string, listings []models.CleanListing) error {
	file, err := createWithDir(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	writer.Write(cleanHeader)
	for _, l := range listings {
		size := ""
		if l.SizeM2 != nil {
			size = strconv.FormatFloat(*l.SizeM2, 'f', -1, 64)
		}
		writer.Write([]string{
			l.Title,
			strconv.FormatFloat(l.PriceUSD, 'f', 2, 64),
			size,
			l.Address,
			l.Date,
			l.URL,
			l.Source,
		})
	}

	if err := writer.Error(); err != nil {
		return fmt.Errorf("csv write error: %w", err)
	}

	utils.Success("Saved %d clean listings → %s", len(listings), path)
	return nil
}

// ReadCleanCSV loads the clean-listing file for the notifier. Rows that
// fail numeric parsing are skipped with a warning.
func ReadCleanCSV(path string) ([]models.CleanListing, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open clean csv: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read clean csv: %w", err)
	}

	var listings []models.CleanListing
	for i, row := range rows {
		if i == 0 {
			continue
		}
		if len(row) != len(cleanHeader) {
			utils.Warn("Skipping malformed row %d in %s (%d columns)", i+1, path, len(row))
			continue
		}
		price, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			utils.Warn("Skipping row %d in %s: bad price_usd %q", i+1, path, row[1])
			continue
		}
		var size *float64
		if row[2] != "" {
			v, err := strconv.ParseFloat(row[2], 64)
			if err != nil {
				utils.Warn("Skipping row %d in %s: bad size_m2 %q", i+1, path, row[2])
				continue
			}
			size = &v
		}
		listings = append(listings, models.CleanListing{
			Title:    row[0],
			PriceUSD: price,
			SizeM2:   size,
			Address:  row[3],
			Date:     row[4],
			URL:      row[5],
			Source:   row[6],
		})
	}
	return listings, nil
}

func createWithDir(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("could not create output dir: %w", err)
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("could not create file: %w", err)
	}
	return file, nil
}
