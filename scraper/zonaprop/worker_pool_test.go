package zonaprop

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"baires-rentals/config"
	"baires-rentals/models"
)

const testRunDate = "2026-08-30"

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Zonaprop.BaseURL = "https://www.zonaprop.com.ar"
	cfg.Zonaprop.SearchPath = "/departamentos-alquiler-palermo"
	cfg.Zonaprop.MaxPages = 4
	cfg.Zonaprop.MaxWorkers = 2
	cfg.RequestTimeout = 5 * time.Second
	cfg.MinDelay = time.Millisecond
	cfg.MaxDelay = 2 * time.Millisecond
	cfg.MaxRetries = 1
	return cfg
}

// fixtureFetcher stands in for the real browser: listings per page, with
// selected pages failing.
type fixtureFetcher struct {
	mu        sync.Mutex
	failPages map[int]bool
	fetched   []string
}

func (f *fixtureFetcher) FetchPage(ctx context.Context, pageURL, runDate string) ([]models.RawListing, error) {
	f.mu.Lock()
	f.fetched = append(f.fetched, pageURL)
	f.mu.Unlock()

	for page := range f.failPages {
		if pageURL == PageURL(testConfig(), page) {
			return nil, fmt.Errorf("blocked")
		}
	}
	return []models.RawListing{{
		Title:    "Depto",
		PriceRaw: "$ 900.000",
		Date:     runDate,
		URL:      pageURL + "#listing",
		Source:   "zonaprop",
	}}, nil
}

func TestPageURL(t *testing.T) {
	cfg := testConfig()

	assert.Equal(t,
		"https://www.zonaprop.com.ar/departamentos-alquiler-palermo.html",
		PageURL(cfg, 1))
	assert.Equal(t,
		"https://www.zonaprop.com.ar/departamentos-alquiler-palermo-pagina-3.html",
		PageURL(cfg, 3))
}

func TestWorkerPool_FetchesAllPages(t *testing.T) {
	fetcher := &fixtureFetcher{}
	pool := NewWorkerPool(fetcher, testConfig())

	listings, err := pool.Run(context.Background(), testRunDate)
	require.NoError(t, err)
	assert.Len(t, listings, 4)

	sort.Strings(fetcher.fetched)
	assert.Len(t, fetcher.fetched, 4)
	for _, l := range listings {
		assert.Equal(t, testRunDate, l.Date)
	}
}

func TestWorkerPool_PartialPageFailureContinues(t *testing.T) {
	fetcher := &fixtureFetcher{failPages: map[int]bool{2: true}}
	pool := NewWorkerPool(fetcher, testConfig())

	listings, err := pool.Run(context.Background(), testRunDate)
	require.NoError(t, err)
	assert.Len(t, listings, 3)
}

func TestWorkerPool_AllPagesFailingIsFatal(t *testing.T) {
	fetcher := &fixtureFetcher{failPages: map[int]bool{1: true, 2: true, 3: true, 4: true}}
	pool := NewWorkerPool(fetcher, testConfig())

	_, err := pool.Run(context.Background(), testRunDate)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all 4 pages failed")
}

func TestWorkerPool_CapsWorkersAtPageCount(t *testing.T) {
	cfg := testConfig()
	cfg.Zonaprop.MaxPages = 1
	cfg.Zonaprop.MaxWorkers = 8

	fetcher := &fixtureFetcher{}
	pool := NewWorkerPool(fetcher, cfg)

	listings, err := pool.Run(context.Background(), testRunDate)
	require.NoError(t, err)
	assert.Len(t, listings, 1)
}
