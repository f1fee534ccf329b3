package utils

import (
	"math/rand"
	"time"
)

// RandomDelay sleeps for a random duration between min and max. Fixed
// intervals between page fetches are an easy bot signature; jitter looks
// like a person paging through results.
func RandomDelay(min, max time.Duration) {
	diff := max - min
	sleep := min + time.Duration(rand.Int63n(int64(diff)))
	time.Sleep(sleep)
}
