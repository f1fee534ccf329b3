package notifier

import (
	"fmt"
	"html"
	"strings"

	"baires-rentals/models"
)

// FormatListing renders one clean listing as a Telegram HTML message.
func FormatListing(l models.CleanListing) string {
	var b strings.Builder

	title := strings.TrimSpace(l.Title)
	if title == "" {
		title = "Nuevo alquiler"
	}
	fmt.Fprintf(&b, "<b>%s</b>\n", html.EscapeString(title))
	fmt.Fprintf(&b, "💵 $%.0f USD/month\n", l.PriceUSD)
	if l.SizeM2 != nil {
		fmt.Fprintf(&b, "📏 %.0f m²\n", *l.SizeM2)
	}
	if l.Address != "" {
		fmt.Fprintf(&b, "📍 %s\n", html.EscapeString(l.Address))
	}
	fmt.Fprintf(&b, "🏠 %s | %s\n", l.Source, l.Date)
	fmt.Fprintf(&b, "🔗 %s", l.URL)

	return b.String()
}
