// Package constants provides shared constants for the hex-docs offer calculator.
package constants

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// ZeroRateSubstitute replaces a zero monthly interest rate wherever a
	// non-zero periodic rate is required by the annuity factor.
	ZeroRateSubstitute = 1e-9
)

// Financing defaults
const (
	// CatalogDownPaymentPercent is the down payment applied to every product
	// when computing the "starting at" figure.
	CatalogDownPaymentPercent = 0.0

	// CatalogTermMonths is the amortization horizon of the catalog figure.
	CatalogTermMonths = 60

	// InteractiveDownPaymentPercent is the initial down payment offered for
	// the selected product.
	InteractiveDownPaymentPercent = 10.0

	// InteractiveTermMonths is the initial term offered for the selected product.
	InteractiveTermMonths = 60

	// CurrencyLabel prefixes formatted amounts.
	CurrencyLabel = "CHF"

	// ThousandsSeparator is the Swiss grouping character.
	ThousandsSeparator = '\''
)

// Product slots in the order the upstream returns products.
var ProductSlots = []string{"A", "B", "C"}

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Upstream API defaults
const (
	// DefaultAPIBaseURL is the base of the heating-offer API.
	DefaultAPIBaseURL = "https://hex-api.climartis.ch/api"

	// DefaultAPITimeoutSeconds bounds a single upstream request.
	DefaultAPITimeoutSeconds = 15

	// DefaultAPIMaxRetries is the number of retries after the first attempt.
	DefaultAPIMaxRetries = 3

	// DefaultCacheTTLSeconds is how long address and house lookups are cached.
	DefaultCacheTTLSeconds = 3600

	// MinAddressQueryLength is the shortest address query sent upstream.
	MinAddressQueryLength = 3
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address
	DefaultServerAddress = ":8080"

	// DefaultMaxBodySizeBytes is the default maximum request body size (256 KB)
	DefaultMaxBodySizeBytes int64 = 256 * 1024
)
