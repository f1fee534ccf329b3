package zonaprop

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"baires-rentals/config"
	"baires-rentals/models"
	"baires-rentals/utils"
)

const sourceName = "zonaprop"

var sizeRe = regexp.MustCompile(`(\d+)\s*m²`)

// PageFetcher fetches one search-result page and returns its listings.
// The worker pool only knows this interface, so tests drive the pool
// with a fixture fetcher instead of a real browser.
type PageFetcher interface {
	FetchPage(ctx context.Context, pageURL, runDate string) ([]models.RawListing, error)
}

// card mirrors the object the in-page extraction script builds for each
// result card.
type card struct {
	Title    string `json:"title"`
	Price    string `json:"price"`
	Expenses string `json:"expenses"`
	Features string `json:"features"`
	Address  string `json:"address"`
	URL      string `json:"url"`
}

// Browser is a stateful Chrome session. Zonaprop renders result cards
// client-side and fingerprints plain HTTP clients, so every page load
// goes through a real browser tab with the stealth options applied.
type Browser struct {
	cfg         *config.Config
	allocCtx    context.Context
	allocCancel context.CancelFunc
	browserCtx  context.Context
	browserStop context.CancelFunc
}

// NewBrowser launches Chrome and verifies it actually started; a broken
// Chrome install must fail the source up front rather than on page one.
func NewBrowser(cfg *config.Config) (*Browser, error) {
	utils.Info("zonaprop: launching Chrome browser...")

	allocCtx, allocCancel := chromedp.NewExecAllocator(
		context.Background(),
		utils.StealthOpts(cfg.Zonaprop.Headless)...,
	)
	browserCtx, browserStop := chromedp.NewContext(allocCtx)

	startCtx, cancel := context.WithTimeout(browserCtx, 30*time.Second)
	defer cancel()
	if err := chromedp.Run(startCtx); err != nil {
		browserStop()
		allocCancel()
		return nil, fmt.Errorf("browser startup failed: %w", err)
	}

	utils.Success("zonaprop: browser ready")
	return &Browser{
		cfg:         cfg,
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		browserCtx:  browserCtx,
		browserStop: browserStop,
	}, nil
}

func (b *Browser) Close() {
	utils.Info("zonaprop: closing browser...")
	b.browserStop()
	b.allocCancel()
}

// FetchPage opens pageURL in a fresh tab, waits for cards to render and
// extracts them in-page.
func (b *Browser) FetchPage(ctx context.Context, pageURL, runDate string) ([]models.RawListing, error) {
	tabCtx, tabCancel := chromedp.NewContext(b.browserCtx)
	defer tabCancel()

	runCtx, cancel := context.WithTimeout(tabCtx, b.cfg.RequestTimeout)
	defer cancel()

	// Honor cancellation of the caller's context too.
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-runCtx.Done():
		}
	}()

	var cards []card

	err := chromedp.Run(runCtx,
		chromedp.Navigate(pageURL),
		utils.HideWebDriver(),
		chromedp.WaitVisible(`div[data-qa="posting PROPERTY"]`, chromedp.ByQuery),
		chromedp.Sleep(2*time.Second),
		chromedp.Evaluate(`
			Array.from(document.querySelectorAll('div[data-qa="posting PROPERTY"]')).map(card => {
				const text = (sel) => {
					const el = card.querySelector(sel);
					return el ? el.textContent.replace(/\s+/g, ' ').trim() : '';
				};
				const href = card.getAttribute('data-to-posting') || '';
				return {
					title: text('[data-qa="POSTING_CARD_DESCRIPTION"]'),
					price: text('[data-qa="POSTING_CARD_PRICE"]'),
					expenses: text('[data-qa="expensas"]'),
					features: text('[data-qa="POSTING_CARD_FEATURES"]'),
					address: text('[data-qa="POSTING_CARD_LOCATION"]'),
					url: href
				};
			}).filter(c => c.url !== '')
		`, &cards),
	)
	if err != nil {
		return nil, fmt.Errorf("chromedp failed on %s: %w", pageURL, err)
	}

	listings := make([]models.RawListing, 0, len(cards))
	for _, c := range cards {
		listings = append(listings, b.toRawListing(c, runDate))
	}
	return listings, nil
}

func (b *Browser) toRawListing(c card, runDate string) models.RawListing {
	url := c.URL
	if strings.HasPrefix(url, "/") {
		url = b.cfg.Zonaprop.BaseURL + url
	}

	// The features blob reads like "85 m² tot. 3 amb. 2 dorm."; only the
	// square meters survive into the raw record.
	sizeRaw := ""
	if m := sizeRe.FindStringSubmatch(c.Features); m != nil {
		sizeRaw = m[1] + " m²"
	}

	return models.RawListing{
		Title:       strings.TrimSpace(c.Title),
		PriceRaw:    strings.TrimSpace(c.Price),
		ExpensesRaw: strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(c.Expenses), "Expensas")),
		SizeRaw:     sizeRaw,
		Address:     strings.TrimSpace(c.Address),
		Date:        runDate,
		URL:         url,
		Source:      sourceName,
	}
}

// PageURL builds the result-page URL for a page number. Zonaprop
// enumerates pages in the path, which is what lets the worker pool fan
// out instead of walking a next-link chain.
func PageURL(cfg *config.Config, page int) string {
	if page <= 1 {
		return cfg.Zonaprop.BaseURL + cfg.Zonaprop.SearchPath + ".html"
	}
	return fmt.Sprintf("%s%s-pagina-%d.html", cfg.Zonaprop.BaseURL, cfg.Zonaprop.SearchPath, page)
}
