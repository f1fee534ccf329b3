package argenprop

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"baires-rentals/config"
	"baires-rentals/models"
	"baires-rentals/utils"
)

const sourceName = "argenprop"

// Field patterns applied to each card's HTML. Argenprop renders these
// server-side, so a plain GET plus parse is enough for this site.
var (
	expensesRe = regexp.MustCompile(`\+\s*\$\s*([\d\.]+)\s*expensas`)
	sizeRe     = regexp.MustCompile(`(\d+)\s*m²\s*cubie`)
	priceRe    = regexp.MustCompile(`(?s)card__currency[^>]*>\s*(\$|USD|U\$S)\s*</span>\s*([\d\.]+)`)
)

// Fetcher scrapes argenprop search-result pages over plain HTTP,
// following the "Siguiente" link until the results run out or the page
// cap is hit.
type Fetcher struct {
	cfg    *config.Config
	client *http.Client
}

func NewFetcher(cfg *config.Config) *Fetcher {
	return &Fetcher{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
	}
}

// FetchAll walks the paginated search results and returns every card it
// could parse, stamped with runDate. A page that keeps failing after
// retries ends the walk; listings collected up to that point are still
// returned so the run can continue with partial data.
func (f *Fetcher) FetchAll(ctx context.Context, runDate string) ([]models.RawListing, error) {
	pageURL := f.cfg.Argenprop.BaseURL + f.cfg.Argenprop.SearchPath
	var all []models.RawListing

	for page := 1; page <= f.cfg.Argenprop.MaxPages; page++ {
		utils.Info("argenprop: fetching page %d: %s", page, pageURL)

		var doc *goquery.Document
		err := utils.Retry(ctx, f.cfg.MaxRetries, func() error {
			var ferr error
			doc, ferr = f.fetchPage(ctx, pageURL)
			return ferr
		})
		if err != nil {
			if page == 1 {
				return nil, fmt.Errorf("argenprop page 1: %w", err)
			}
			utils.Warn("argenprop: page %d failed, keeping %d listings from earlier pages: %v", page, len(all), err)
			break
		}

		listings := f.parsePage(doc, runDate)
		utils.Success("argenprop: page %d → %d listings", page, len(listings))
		all = append(all, listings...)

		next, ok := nextPageURL(doc, f.cfg.Argenprop.BaseURL)
		if !ok {
			break
		}
		pageURL = next

		utils.RandomDelay(f.cfg.MinDelay, f.cfg.MaxDelay)
	}

	if len(all) == 0 {
		return nil, fmt.Errorf("argenprop: no listings parsed")
	}
	return all, nil
}

func (f *Fetcher) fetchPage(ctx context.Context, pageURL string) (*goquery.Document, error) {
	reqCtx, cancel := context.WithTimeout(ctx, f.cfg.RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", utils.RandomUserAgent())
	req.Header.Set("Accept-Language", "es-AR,es;q=0.9")

	res, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", pageURL, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get %s: status %d", pageURL, res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", pageURL, err)
	}
	return doc, nil
}

// parsePage extracts one RawListing per result card. Cards missing a
// link are skipped; every other field is best-effort because the cleaner
// owns validation.
func (f *Fetcher) parsePage(doc *goquery.Document, runDate string) []models.RawListing {
	var listings []models.RawListing

	doc.Find("div.listing__item").Each(func(i int, s *goquery.Selection) {
		href, ok := s.Find("a[href]").First().Attr("href")
		if !ok || href == "" {
			utils.Warn("argenprop: card %d has no link, skipping", i)
			return
		}

		cardHTML, err := goquery.OuterHtml(s)
		if err != nil {
			utils.Warn("argenprop: card %d render failed, skipping: %v", i, err)
			return
		}

		l := models.RawListing{
			Title:   strings.TrimSpace(s.Find("p.card__info").Text()),
			Address: strings.TrimSpace(s.Find(".card__address").Text()),
			Date:    runDate,
			URL:     f.cfg.Argenprop.BaseURL + href,
			Source:  sourceName,
		}

		// Price sits as a text node right after the currency span, so the
		// site's own markup decides whether the listing is in pesos or
		// dollars ("consultar precio" cards have neither).
		if m := priceRe.FindStringSubmatch(cardHTML); m != nil {
			l.PriceRaw = m[1] + " " + m[2]
		}
		if m := expensesRe.FindStringSubmatch(cardHTML); m != nil {
			l.ExpensesRaw = "$ " + m[1]
		}
		if m := sizeRe.FindStringSubmatch(cardHTML); m != nil {
			l.SizeRaw = m[1] + " m²"
		}

		listings = append(listings, l)
	})

	return listings
}

func nextPageURL(doc *goquery.Document, baseURL string) (string, bool) {
	href, ok := doc.Find(`a[aria-label="Siguiente"]`).First().Attr("href")
	if !ok || href == "" {
		return "", false
	}
	return baseURL + href, true
}
