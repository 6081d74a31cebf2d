package notify

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"stockwatch/internal/models"
)

// ComposeAlert renders the alert subject and body for a triggered watch.
// The subject stays short because SMS gateways truncate aggressively.
func ComposeAlert(w *models.ActiveWatch, q *models.Quote, chartBaseURL string) (subject, body string) {
	subject = fmt.Sprintf("%s Alert", w.Symbol)

	name := w.Name
	if name == "" {
		name = w.Symbol
	}

	body = strings.TrimSpace(fmt.Sprintf(
		"🔔 %s Alert: $%s (%s)\n%s\nThreshold: $%s\n📊 Chart: %s/chart/%s",
		w.Symbol,
		q.Price.StringFixed(2),
		formatChangePercent(q.ChangePercent),
		name,
		w.Threshold.StringFixed(2),
		chartBaseURL,
		w.Symbol,
	))
	return subject, body
}

// formatChangePercent renders a percent change with an explicit sign
func formatChangePercent(cp decimal.Decimal) string {
	if cp.IsNegative() {
		return cp.StringFixed(2) + "%"
	}
	return "+" + cp.StringFixed(2) + "%"
}
