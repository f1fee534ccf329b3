// Package notifier alerts new clean listings over Telegram, using the
// persisted alert state to guarantee a URL is never announced twice.
package notifier

import (
	"context"

	"baires-rentals/models"
	"baires-rentals/utils"
)

// Sender delivers one message. Satisfied by TelegramNotifier; tests plug
// in a recorder.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// State is the persisted set of already-alerted listing URLs.
type State interface {
	Contains(url string) (bool, error)
	MarkNotified(url string) error
}

// Result summarizes one alert run.
type Result struct {
	Sent       int
	Skipped    int
	Failed     int
	FailedURLs []string
}

// Run sends one alert per listing not yet in the state and records each
// successful send. A failed send is logged and skipped over; the listing
// stays out of the state so the next run retries it. Only state-level
// errors count as failures here, and they too never stop the batch.
func Run(ctx context.Context, listings []models.CleanListing, state State, sender Sender, maxRetries int) Result {
	var res Result

	for _, l := range listings {
		already, err := state.Contains(l.URL)
		if err != nil {
			utils.Error("Alert state lookup failed for %s: %v", l.URL, err)
			res.Failed++
			res.FailedURLs = append(res.FailedURLs, l.URL)
			continue
		}
		if already {
			res.Skipped++
			continue
		}

		if err := sender.SendWithRetry(ctx, FormatListing(l), maxRetries); err != nil {
			utils.Error("Alert send failed for %s: %v", l.URL, err)
			res.Failed++
			res.FailedURLs = append(res.FailedURLs, l.URL)
			continue
		}

		if err := state.MarkNotified(l.URL); err != nil {
			// The message went out but the state write failed; report it
			// loudly because the next run will re-alert this URL.
			utils.Error("Could not persist alert state for %s: %v", l.URL, err)
			res.Failed++
			res.FailedURLs = append(res.FailedURLs, l.URL)
			continue
		}

		utils.Success("Alerted: %s", l.URL)
		res.Sent++
	}

	return res
}
