// Package server exposes the offer calculator and the heating-offer API
// lookups as a JSON HTTP API.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/osamarehman/hex-docs/internal/hexapi"
	"github.com/osamarehman/hex-docs/internal/metrics"
	"github.com/osamarehman/hex-docs/internal/offer"
	"github.com/osamarehman/hex-docs/pkg/annuity"
	"github.com/osamarehman/hex-docs/pkg/constants"
	"github.com/osamarehman/hex-docs/pkg/input"
	"github.com/osamarehman/hex-docs/pkg/output"
	"github.com/osamarehman/hex-docs/pkg/validation"
	"go.uber.org/zap"
)

// Upstream is the part of the heating-offer API the server needs.
type Upstream interface {
	PossibleAddresses(ctx context.Context, query string) ([]hexapi.Address, error)
	HouseInfo(ctx context.Context, eingangID string) (*hexapi.HouseInfo, error)
	Calculation(ctx context.Context, req hexapi.CalculationRequest) ([]offer.Product, error)
}

// Options configure the handler.
type Options struct {
	MaxBodySize int64
	Version     string
	// InteractiveTerms apply to /api/quote fields the request leaves out.
	InteractiveTerms offer.Terms
}

type handler struct {
	logger      *zap.Logger
	calculator  *offer.Calculator
	upstream    Upstream
	maxBodySize int64
	version     string
	interactive offer.Terms
}

// NewHandler constructs the HTTP handler that serves the quote API. upstream
// may be nil, in which case the routes that need it answer 503.
func NewHandler(logger *zap.Logger, calculator *offer.Calculator, upstream Upstream, opts Options) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if calculator == nil {
		calculator = offer.NewCalculator(logger, offer.Terms{
			DownPaymentPercent: constants.CatalogDownPaymentPercent,
			TermMonths:         constants.CatalogTermMonths,
		})
	}

	maxBodySize := opts.MaxBodySize
	if maxBodySize <= 0 {
		maxBodySize = constants.DefaultMaxBodySizeBytes
	}

	trimmedVersion := strings.TrimSpace(opts.Version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	interactive := opts.InteractiveTerms
	if interactive.TermMonths <= 0 {
		interactive = offer.Terms{
			DownPaymentPercent: constants.InteractiveDownPaymentPercent,
			TermMonths:         constants.InteractiveTermMonths,
		}
	}

	h := &handler{
		logger:      logger,
		calculator:  calculator,
		upstream:    upstream,
		maxBodySize: maxBodySize,
		version:     trimmedVersion,
		interactive: interactive,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/catalog", h.handleCatalog)
	mux.HandleFunc("/api/quote", h.handleQuote)
	mux.HandleFunc("/api/offer", h.handleOffer)
	mux.HandleFunc("/api/address", h.handleAddress)
	mux.HandleFunc("/api/house", h.handleHouse)
	mux.HandleFunc("/api/version", h.handleVersion)
	mux.Handle("/metrics", metrics.Handler())

	return mux
}

type catalogRequest struct {
	Products           json.RawMessage `json:"products"`
	DownPaymentPercent any             `json:"downPaymentPercent"`
	TermMonths         any             `json:"termMonths"`
}

type quoteRequest struct {
	Products           json.RawMessage `json:"products"`
	Product            string          `json:"product"`
	DownPaymentPercent any             `json:"downPaymentPercent"`
	TermMonths         any             `json:"termMonths"`
}

type catalogResponse struct {
	offer.CatalogResult
	CSV      string `json:"csv"`
	Duration string `json:"duration"`
}

type offerResponse struct {
	Products         []offer.Product     `json:"products"`
	Catalog          offer.CatalogResult `json:"catalog"`
	InteractiveTerms offer.Terms         `json:"interactiveTerms"`
	Duration         string              `json:"duration"`
}

type addressResponse struct {
	hexapi.Address
	Label string `json:"label"`
}

type houseResponse struct {
	*hexapi.HouseInfo
	FullAddress    string `json:"fullAddress"`
	HasCoordinates bool   `json:"hasCoordinates"`
}

func (h *handler) handleCatalog(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleCatalog"
	if !h.allowMethod(w, r, http.MethodPost, op) {
		return
	}

	start := time.Now()
	body, err := h.readBody(w, r)
	if err != nil {
		h.respondErr(w, err, op)
		return
	}

	var (
		products []offer.Product
		terms    = h.calculator.CatalogTerms()
	)
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		products, err = offer.DecodeProducts(trimmed)
		if err != nil {
			h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
			return
		}
	} else {
		var req catalogRequest
		if err := decodeJSON(trimmed, &req); err != nil {
			h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
			return
		}
		products, err = offer.DecodeProducts(req.Products)
		if err != nil {
			h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
			return
		}
		terms, err = parseTerms(req.DownPaymentPercent, req.TermMonths, terms)
		if err != nil {
			h.respondErr(w, err, op)
			return
		}
	}

	result, err := h.calculator.CatalogWithTerms(products, terms)
	if err != nil {
		h.respondErr(w, err, op)
		return
	}

	elapsed := time.Since(start)
	h.logger.Info("catalog computed",
		zap.String("op", op),
		zap.Int("quotes", len(result.Quotes)),
		zap.Bool("failed", result.Failed()),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, catalogResponse{
		CatalogResult: result,
		CSV:           output.CsvString(result),
		Duration:      elapsed.String(),
	})
}

func (h *handler) handleQuote(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleQuote"
	if !h.allowMethod(w, r, http.MethodPost, op) {
		return
	}

	body, err := h.readBody(w, r)
	if err != nil {
		h.respondErr(w, err, op)
		return
	}

	var req quoteRequest
	if err := decodeJSON(body, &req); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	products, err := offer.DecodeProducts(req.Products)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	terms, err := parseTerms(req.DownPaymentPercent, req.TermMonths, h.interactive)
	if err != nil {
		h.respondErr(w, err, op)
		return
	}

	slot := strings.ToUpper(strings.TrimSpace(req.Product))
	if slot == "" {
		slot = constants.ProductSlots[0]
	}

	quote, err := h.calculator.Interactive(products, offer.Selection{Slot: slot, Terms: terms})
	if err != nil {
		h.respondErr(w, err, op)
		return
	}

	h.logger.Info("quote computed",
		zap.String("op", op),
		zap.String("slot", quote.Slot),
		zap.Int64("monthlyPayment", quote.Result.FinalMonthlyPayment),
	)
	h.writeJSON(w, http.StatusOK, quote)
}

func (h *handler) handleOffer(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleOffer"
	if !h.allowMethod(w, r, http.MethodPost, op) || !h.requireUpstream(w, op) {
		return
	}

	start := time.Now()
	body, err := h.readBody(w, r)
	if err != nil {
		h.respondErr(w, err, op)
		return
	}

	var req hexapi.CalculationRequest
	if err := decodeJSON(body, &req); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	products, err := h.upstream.Calculation(r.Context(), req)
	if err != nil {
		h.respondErr(w, err, op)
		return
	}

	result, err := h.calculator.Catalog(products)
	if err != nil {
		h.respondErr(w, err, op)
		return
	}

	elapsed := time.Since(start)
	h.logger.Info("offer computed",
		zap.String("op", op),
		zap.String("eingangId", req.EingangID),
		zap.Int("products", len(products)),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, offerResponse{
		Products:         products,
		Catalog:          result,
		InteractiveTerms: h.interactive,
		Duration:         elapsed.String(),
	})
}

func (h *handler) handleAddress(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleAddress"
	if !h.allowMethod(w, r, http.MethodGet, op) || !h.requireUpstream(w, op) {
		return
	}

	query := r.URL.Query().Get("q")
	if !validation.ValidateAddressQuery(query) {
		// Short queries answer with no suggestions like the autocomplete does.
		h.writeJSON(w, http.StatusOK, []addressResponse{})
		return
	}

	addresses, err := h.upstream.PossibleAddresses(r.Context(), query)
	if err != nil {
		h.respondErr(w, err, op)
		return
	}

	response := make([]addressResponse, 0, len(addresses))
	for _, a := range addresses {
		response = append(response, addressResponse{Address: a, Label: a.Label()})
	}
	h.writeJSON(w, http.StatusOK, response)
}

func (h *handler) handleHouse(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleHouse"
	if !h.allowMethod(w, r, http.MethodGet, op) || !h.requireUpstream(w, op) {
		return
	}

	info, err := h.upstream.HouseInfo(r.Context(), r.URL.Query().Get("eingangId"))
	if err != nil {
		h.respondErr(w, err, op)
		return
	}

	h.writeJSON(w, http.StatusOK, houseResponse{
		HouseInfo:      info,
		FullAddress:    info.FullAddress(),
		HasCoordinates: info.HasCoordinates(),
	})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !h.allowMethod(w, r, http.MethodGet, "server.handleVersion") {
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

// parseTerms reads user-supplied terms strictly. Absent values keep the
// defaults; present values must be numeric and in range.
func parseTerms(rawDownPayment, rawTerm any, defaults offer.Terms) (offer.Terms, error) {
	terms := defaults

	if rawDownPayment != nil {
		value, err := input.Field("downPaymentPercent", rawDownPayment)
		if err != nil {
			return offer.Terms{}, err
		}
		terms.DownPaymentPercent = value
	}
	if rawTerm != nil {
		value, err := input.Int("termMonths", rawTerm)
		if err != nil {
			return offer.Terms{}, err
		}
		terms.TermMonths = value
	}

	if err := validation.ValidateTerms(terms.DownPaymentPercent, terms.TermMonths); err != nil {
		return offer.Terms{}, fmt.Errorf("%w: %w", annuity.ErrInvalidArgument, err)
	}
	return terms, nil
}

func decodeJSON(data []byte, v any) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("failed to decode request: %w", err)
	}
	return nil
}

func (h *handler) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	return io.ReadAll(r.Body)
}

func (h *handler) allowMethod(w http.ResponseWriter, r *http.Request, method, op string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	h.respondErrorWithOp(w, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed), op)
	return false
}

func (h *handler) requireUpstream(w http.ResponseWriter, op string) bool {
	if h.upstream != nil {
		return true
	}
	h.respondErrorWithOp(w, http.StatusServiceUnavailable, "heating-offer API is not configured", op)
	return false
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var (
		maxBytesErr *http.MaxBytesError
		missingErr  *input.MissingInputError
	)
	switch {
	case errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, hexapi.ErrDownstreamUnavailable):
		return http.StatusBadGateway
	case errors.As(err, &missingErr),
		errors.Is(err, annuity.ErrInvalidArgument),
		errors.Is(err, hexapi.ErrInvalidRequest),
		errors.Is(err, offer.ErrNoProducts),
		errors.Is(err, offer.ErrUnknownSlot):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *handler) respondErr(w http.ResponseWriter, err error, op string) {
	status := statusFor(err)
	msg := err.Error()

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		msg = fmt.Sprintf("request body exceeds limit of %d bytes", maxBytesErr.Limit)
	}
	h.respondErrorWithOp(w, status, msg, op)
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
