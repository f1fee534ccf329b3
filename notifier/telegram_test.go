package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"baires-rentals/models"
)

func TestTelegramNotifier_Send(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bottest-token/sendMessage", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewTelegramNotifier("test-token", "12345")
	n.APIBase = srv.URL

	require.NoError(t, n.Send("hola"))
	assert.Equal(t, "12345", got["chat_id"])
	assert.Equal(t, "hola", got["text"])
	assert.Equal(t, "HTML", got["parse_mode"])
}

func TestTelegramNotifier_SendAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"ok":false,"description":"Unauthorized"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	n := NewTelegramNotifier("bad-token", "12345")
	n.APIBase = srv.URL

	err := n.Send("hola")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestTelegramNotifier_SendWithRetryRecovers(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			http.Error(w, "temporarily unavailable", http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewTelegramNotifier("test-token", "12345")
	n.APIBase = srv.URL

	require.NoError(t, n.SendWithRetry(context.Background(), "hola", 2))
	assert.Equal(t, 2, attempts)
}

func TestFormatListing(t *testing.T) {
	size := 95.0
	msg := FormatListing(models.CleanListing{
		Title:    "Depto 3 amb <balcón>",
		PriceUSD: 850,
		SizeM2:   &size,
		Address:  "Gorriti 4300, Palermo",
		Date:     "2026-08-30",
		URL:      "https://www.argenprop.com/depto/1",
		Source:   "argenprop",
	})

	assert.Contains(t, msg, "<b>Depto 3 amb &lt;balcón&gt;</b>")
	assert.Contains(t, msg, "$850 USD/month")
	assert.Contains(t, msg, "95 m²")
	assert.Contains(t, msg, "Gorriti 4300, Palermo")
	assert.Contains(t, msg, "https://www.argenprop.com/depto/1")
}

func TestFormatListing_OmitsMissingSize(t *testing.T) {
	msg := FormatListing(models.CleanListing{
		Title:    "Depto",
		PriceUSD: 850,
		URL:      "https://x/1",
		Date:     "2026-08-30",
		Source:   "zonaprop",
	})

	assert.NotContains(t, msg, "m²")
}
