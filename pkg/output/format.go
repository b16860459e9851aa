// Package output provides utilities for formatting and displaying quotes.
package output

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/osamarehman/hex-docs/internal/offer"
	"github.com/osamarehman/hex-docs/pkg/format"
	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

const monthsKey = "%d months"

var messages = newMessages()

func newMessages() catalog.Catalog {
	b := catalog.NewBuilder()
	_ = b.Set(language.English, monthsKey,
		plural.Selectf(1, "%d", "=1", "%d month", "other", "%d months"))
	return b
}

func newPrinter() *message.Printer {
	return message.NewPrinter(language.English, message.Catalog(messages))
}

// PrettyFormat writes a human-readable rather than machine-readable table.
func PrettyFormat(w io.Writer, result offer.CatalogResult) {
	p := newPrinter()
	_, _ = p.Fprintf(w, "--- Starting at, %g%% down payment over %s ---\n",
		result.Terms.DownPaymentPercent, p.Sprintf(monthsKey, result.Terms.TermMonths))
	_, _ = fmt.Fprintf(w, "Slot | Product | Total price | Monthly payment | Notes\n")
	_, _ = fmt.Fprintf(w, "____ | _______ | ___________ | _______________ | _____\n")
	for _, q := range result.Quotes {
		_, _ = fmt.Fprintf(w, "%s | %s | %s | %s | %s\n",
			q.Slot, productLabel(q), q.Display.TotalPrice, q.Display.MonthlyPayment, q.Error)
	}
}

// QuoteFormat writes the details of a single quote, including the monthly
// cost breakdown behind the payment.
func QuoteFormat(w io.Writer, q offer.Quote) {
	p := newPrinter()
	_, _ = fmt.Fprintf(w, "--- Product %s: %s ---\n", q.Slot, productLabel(q))
	_, _ = fmt.Fprintf(w, "Total price     | %s\n", q.Display.TotalPrice)
	_, _ = p.Fprintf(w, "Down payment    | CHF %s (%g%%)\n", q.Display.DownPayment, q.Terms.DownPaymentPercent)
	_, _ = fmt.Fprintf(w, "Term            | %s\n", p.Sprintf(monthsKey, q.Terms.TermMonths))
	_, _ = p.Fprintf(w, "Interest rate   | %.2f%%\n", q.Input.AnnualInterestRatePercent)
	_, _ = fmt.Fprintf(w, "Base payment    | CHF %s\n", format.SwissDecimal(q.Result.MonthlyBasePayment))
	_, _ = fmt.Fprintf(w, "Service fee     | CHF %s\n", format.SwissDecimal(q.Result.ServiceFeeAmount))
	_, _ = fmt.Fprintf(w, "Running costs   | CHF %s\n", format.SwissDecimal(q.Input.MaintenanceAbsolute+q.Input.EnergyManagementAbsolute))
	_, _ = fmt.Fprintf(w, "Insurance       | CHF %s\n", format.SwissDecimal(q.Result.InsuranceAmount))
	_, _ = fmt.Fprintf(w, "Monthly payment | %s\n", q.Display.MonthlyPayment)
}

// CsvFormat writes the catalog in comma-separated value format.
func CsvFormat(w io.Writer, result offer.CatalogResult) {
	_, _ = fmt.Fprintf(w, `"slot","manufacturer","product type","total price","down payment (%%)","term (months)","base payment","monthly payment (raw)","monthly payment","error"`)
	_, _ = fmt.Fprintf(w, "\n")
	for _, q := range result.Quotes {
		_, _ = fmt.Fprintf(w, `%s,%s,%s,"%.2f","%g","%d","%.2f","%.2f","%d",%s`,
			quote(q.Slot), quote(q.Manufacturer), quote(q.ProductType),
			q.Input.TotalCost, q.Terms.DownPaymentPercent, q.Terms.TermMonths,
			q.Result.MonthlyBasePayment, q.Result.FinalMonthlyPaymentRaw, q.Result.FinalMonthlyPayment,
			quote(q.Error))
		_, _ = fmt.Fprintf(w, "\n")
	}
}

// CsvString returns the CSV rendering of the catalog.
func CsvString(result offer.CatalogResult) string {
	var buf bytes.Buffer
	CsvFormat(&buf, result)
	return buf.String()
}

func productLabel(q offer.Quote) string {
	parts := make([]string, 0, 2)
	for _, part := range []string{q.Manufacturer, q.ProductType} {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " ")
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
