package zonaprop

import (
	"context"
	"fmt"
	"sync"

	"baires-rentals/config"
	"baires-rentals/models"
	"baires-rentals/utils"
)

// WorkerPool fans result-page fetches out over a small number of browser
// tabs. Pages are independent, so order does not matter; the cleaner
// dedupes by URL anyway.
type WorkerPool struct {
	fetcher PageFetcher
	cfg     *config.Config
	jobs    chan models.PageJob
	results chan models.PageResult
	wg      sync.WaitGroup
}

func NewWorkerPool(fetcher PageFetcher, cfg *config.Config) *WorkerPool {
	return &WorkerPool{
		fetcher: fetcher,
		cfg:     cfg,
	}
}

// Run fetches every configured result page and returns all parsed
// listings. It fails only when no page at all could be fetched; partial
// page failures are logged and the rest of the run continues.
func (p *WorkerPool) Run(ctx context.Context, runDate string) ([]models.RawListing, error) {
	pages := p.cfg.Zonaprop.MaxPages
	p.jobs = make(chan models.PageJob, pages)
	p.results = make(chan models.PageResult, pages)

	workerCount := p.cfg.Zonaprop.MaxWorkers
	if pages < workerCount {
		workerCount = pages
	}

	utils.Info("zonaprop: fetching %d pages with %d workers", pages, workerCount)

	p.wg.Add(workerCount)
	for i := 1; i <= workerCount; i++ {
		go p.worker(ctx, i, runDate)
	}

	for page := 1; page <= pages; page++ {
		p.jobs <- models.PageJob{PageNumber: page, URL: PageURL(p.cfg, page)}
	}
	close(p.jobs)

	go func() {
		p.wg.Wait()
		close(p.results)
	}()

	return p.collect()
}

func (p *WorkerPool) worker(ctx context.Context, id int, runDate string) {
	defer p.wg.Done()

	for job := range p.jobs {
		utils.RandomDelay(p.cfg.MinDelay, p.cfg.MaxDelay)

		var listings []models.RawListing
		err := utils.Retry(ctx, p.cfg.MaxRetries, func() error {
			var ferr error
			listings, ferr = p.fetcher.FetchPage(ctx, job.URL, runDate)
			return ferr
		})

		p.results <- models.PageResult{
			Listings:   listings,
			Error:      err,
			PageNumber: job.PageNumber,
		}
	}
}

func (p *WorkerPool) collect() ([]models.RawListing, error) {
	var all []models.RawListing
	failed := 0
	total := 0

	for result := range p.results {
		total++
		if result.Error != nil {
			utils.Error("zonaprop: page %d failed: %v", result.PageNumber, result.Error)
			failed++
			continue
		}
		utils.Success("zonaprop: page %d → %d listings", result.PageNumber, len(result.Listings))
		all = append(all, result.Listings...)
	}

	if failed == total {
		return nil, fmt.Errorf("zonaprop: all %d pages failed", total)
	}

	utils.Success("zonaprop: pages fetched: %d | failed: %d | listings: %d", total-failed, failed, len(all))
	return all, nil
}
