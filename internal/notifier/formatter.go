package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"StockSentinel/internal/model"
)

var severityIcon = map[model.Severity]string{
	model.SeverityCritical: "🚨",
	model.SeverityWarning:  "⚠️",
	model.SeverityInfo:     "ℹ️",
}

// NeedsAttention reports whether any alert is critical or a warning.
func NeedsAttention(alerts []model.Alert) bool {
	for _, a := range alerts {
		if a.Severity == model.SeverityCritical || a.Severity == model.SeverityWarning {
			return true
		}
	}
	return false
}

// FormatAlertDigest formats alerts into a Telegram message, grouped by severity.
func FormatAlertDigest(alerts []model.Alert, now time.Time) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📦 <b>StockSentinel inventory report</b> | %s\n\n", now.Format("2006-01-02 15:04")))
	if len(alerts) == 0 {
		b.WriteString("All products within healthy stock levels ✅")
		return b.String()
	}

	counts := map[model.Severity]int{}
	for _, a := range alerts {
		counts[a.Severity]++
	}
	b.WriteString(fmt.Sprintf("Critical: %d | Warning: %d | Info: %d\n",
		counts[model.SeverityCritical], counts[model.SeverityWarning], counts[model.SeverityInfo]))

	for _, sev := range []model.Severity{model.SeverityCritical, model.SeverityWarning, model.SeverityInfo} {
		if counts[sev] == 0 {
			continue
		}
		b.WriteString(fmt.Sprintf("\n%s <b>%s</b>\n", severityIcon[sev], strings.ToUpper(string(sev))))
		for _, a := range alerts {
			if a.Severity != sev {
				continue
			}
			b.WriteString(fmt.Sprintf("• %s (stock %d, reorder %d, max %d)\n",
				html.EscapeString(a.ProductName), a.CurrentStock, a.ReorderLevel, a.MaxStockLevel))
			if line := headline(a.Recommendation); line != "" {
				b.WriteString(fmt.Sprintf("   ↳ %s\n", line))
			}
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// headline is a one-line summary of a recommendation for digests.
func headline(r model.Recommendation) string {
	switch r := r.(type) {
	case model.StockoutRestock:
		return fmt.Sprintf("order %d units now (minimum %d), cost %s", r.SafeQty, r.UrgentQty, r.Cost.StringFixed(0))
	case model.EmergencyRestock:
		return fmt.Sprintf("order %d units immediately, cost %s", r.Quantity, r.Cost.StringFixed(0))
	case model.LowStockRestock:
		return fmt.Sprintf("order %d-%d units within 3-5 days", r.StandardQty, r.OptimalQty)
	case model.ReorderTopUp:
		return fmt.Sprintf("order %d units within a week", r.Quantity)
	case model.ClearanceDiscount:
		return fmt.Sprintf("%d%% discount (%s), %d excess units", r.DiscountPercent, r.Urgency, r.Excess)
	case model.FlatClearance:
		return fmt.Sprintf("%d%% discount, %d excess units", r.DiscountPercent, r.Excess)
	case model.ReorderPlan:
		return fmt.Sprintf("reorder %d units in %d days", r.SuggestedQty, r.ReorderInDays)
	default:
		return ""
	}
}

// FormatForecast summarizes one product forecast and its advisories.
func FormatForecast(p model.Product, points []model.ForecastPoint, m model.AccuracyMetrics, advisories []model.Advisory) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📈 <b>Forecast: %s</b>\n\n", html.EscapeString(p.Name)))
	if len(points) == 0 {
		b.WriteString("No forecast available.")
		return b.String()
	}
	total := model.TotalDemand(points)
	b.WriteString(fmt.Sprintf("Horizon: %s to %s (%d days)\n",
		points[0].Date.Format(model.DateLayout), points[len(points)-1].Date.Format(model.DateLayout), len(points)))
	b.WriteString(fmt.Sprintf("Total demand: %.0f units (avg %.1f/day)\n", total, total/float64(len(points))))
	b.WriteString(fmt.Sprintf("Current stock: %d units\n", p.CurrentQuantity))
	b.WriteString(fmt.Sprintf("Accuracy: %.1f%% | MAE %.2f | R² %.3f\n", m.Accuracy, m.MAE, m.R2))

	if len(advisories) > 0 {
		b.WriteString("\n<b>Recommendations:</b>\n")
		for _, a := range advisories {
			b.WriteString(fmt.Sprintf("• [%s] %s\n", a.Priority(), html.EscapeString(a.Message())))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatError formats a failure report.
func FormatError(what string, err error) string {
	return fmt.Sprintf("❌ <b>StockSentinel error</b>\n\n%s: %s", html.EscapeString(what), html.EscapeString(err.Error()))
}

// FormatHelp lists the chat commands.
func FormatHelp() string {
	return "🤖 <b>StockSentinel</b>\n\n" +
		"/alerts - unresolved alerts\n" +
		"/analyze - run inventory analysis now\n" +
		"/forecast &lt;id&gt; - forecast one product\n" +
		"/help - this message"
}
