package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/osamarehman/hex-docs/internal/offer"
	"github.com/osamarehman/hex-docs/pkg/annuity"
)

func testCatalog() offer.CatalogResult {
	terms := offer.Terms{DownPaymentPercent: 0, TermMonths: 60}
	return offer.CatalogResult{
		Terms: terms,
		Quotes: []offer.Quote{
			{
				Slot:         "A",
				Mode:         offer.ModeCatalog,
				Manufacturer: "Alpha",
				ProductType:  "Luft/Wasser",
				Terms:        terms,
				Input: annuity.Input{TotalCost: 50000, TermMonths: 60, AnnualInterestRatePercent: 3.5,
					MaintenanceAbsolute: 20, EnergyManagementAbsolute: 10},
				Result: annuity.Result{
					Principal:              50000,
					MonthlyBasePayment:     909.5872,
					ServiceFeeAmount:       45.4794,
					InsuranceAmount:        19.7013,
					FinalMonthlyPaymentRaw: 1082.1351,
					FinalMonthlyPayment:    1082,
				},
				Display: offer.Display{TotalPrice: "CHF 50'000", DownPayment: "0", MonthlyPayment: "CHF 1'082"},
			},
			{
				Slot:         "B",
				Mode:         offer.ModeCatalog,
				Manufacturer: `Beta "Plus"`,
				Terms:        terms,
				Error:        "invalid argument: negative total cost",
			},
		},
	}
}

func TestPrettyFormat(t *testing.T) {
	var buf bytes.Buffer
	PrettyFormat(&buf, testCatalog())
	output := buf.String()

	if !strings.Contains(output, "--- Starting at, 0% down payment over 60 months ---") {
		t.Errorf("PrettyFormat missing header, got:\n%s", output)
	}
	if !strings.Contains(output, "Slot | Product | Total price | Monthly payment | Notes") {
		t.Errorf("PrettyFormat missing table header")
	}
	if !strings.Contains(output, "A | Alpha Luft/Wasser | CHF 50'000 | CHF 1'082 | ") {
		t.Errorf("PrettyFormat missing slot A row, got:\n%s", output)
	}
	if !strings.Contains(output, "invalid argument: negative total cost") {
		t.Errorf("PrettyFormat missing error note for slot B")
	}
}

func TestQuoteFormat(t *testing.T) {
	q := testCatalog().Quotes[0]
	q.Terms = offer.Terms{DownPaymentPercent: 10, TermMonths: 48}
	q.Display.DownPayment = "5'000"

	var buf bytes.Buffer
	QuoteFormat(&buf, q)
	output := buf.String()

	for _, want := range []string{
		"--- Product A: Alpha Luft/Wasser ---",
		"Down payment    | CHF 5'000 (10%)",
		"Term            | 48 months",
		"Interest rate   | 3.50%",
		"Base payment    | CHF 909.59",
		"Service fee     | CHF 45.48",
		"Running costs   | CHF 30.00",
		"Insurance       | CHF 19.70",
		"Monthly payment | CHF 1'082",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("QuoteFormat missing %q, got:\n%s", want, output)
		}
	}
}

func TestFractionalTermsAndSingularMonth(t *testing.T) {
	result := testCatalog()
	result.Terms = offer.Terms{DownPaymentPercent: 12.5, TermMonths: 1}

	var buf bytes.Buffer
	PrettyFormat(&buf, result)
	if want := "--- Starting at, 12.5% down payment over 1 month ---"; !strings.Contains(buf.String(), want) {
		t.Errorf("PrettyFormat missing %q, got:\n%s", want, buf.String())
	}

	q := result.Quotes[0]
	q.Terms = result.Terms
	q.Display.DownPayment = "6'250"
	q.Result.MonthlyBasePayment = 43750

	buf.Reset()
	QuoteFormat(&buf, q)
	for _, want := range []string{
		"Down payment    | CHF 6'250 (12.5%)",
		"Term            | 1 month\n",
		"Base payment    | CHF 43'750.00",
	} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("QuoteFormat missing %q, got:\n%s", want, buf.String())
		}
	}
}

func TestCsvFormat(t *testing.T) {
	output := CsvString(testCatalog())
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got %d lines:\n%s", len(lines), output)
	}

	if !strings.HasPrefix(lines[0], `"slot","manufacturer","product type","total price","down payment (%)"`) {
		t.Errorf("unexpected CSV header %s", lines[0])
	}
	if want := `"A","Alpha","Luft/Wasser","50000.00","0","60","909.59","1082.14","1082",""`; lines[1] != want {
		t.Errorf("row A = %s, want %s", lines[1], want)
	}
	if !strings.Contains(lines[2], `"Beta ""Plus"""`) {
		t.Errorf("expected escaped quotes in row B, got %s", lines[2])
	}
}

func TestProductLabelFallback(t *testing.T) {
	if got := productLabel(offer.Quote{}); got != "-" {
		t.Errorf("productLabel() = %q, want -", got)
	}
}
