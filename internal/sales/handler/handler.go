// Package handler provides HTTP handlers for sales cost computation.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/abgdnv/salescost/internal/platform/contextkeys"
	"github.com/abgdnv/salescost/internal/platform/web"
	"github.com/abgdnv/salescost/internal/sales"
	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 10 << 20

// Calculator computes a sales summary from typed inputs.
type Calculator interface {
	Compute(ctx context.Context, catalog []sales.ProductCatalogEntry, items []sales.SaleLineItem) (*sales.Summary, error)
}

// SalesAPI defines HTTP handlers for sales endpoints.
type SalesAPI interface {
	Total(w http.ResponseWriter, r *http.Request)
	HealthCheck(w http.ResponseWriter, r *http.Request)
}

// TotalRequest is the body of a total computation request.
type TotalRequest struct {
	Catalog []sales.CatalogRecord `json:"catalog" validate:"required"`
	Sales   []sales.SaleRecord    `json:"sales" validate:"required"`
}

type missingFieldResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
	Index int    `json:"index"`
	Field string `json:"field"`
}

type api struct {
	calc     Calculator
	validate *validator.Validate
	logger   *slog.Logger
}

// NewAPI creates a SalesAPI backed by calc.
func NewAPI(calc Calculator, logger *slog.Logger) SalesAPI {
	return &api{
		calc:     calc,
		validate: validator.New(),
		logger:   logger.With("component", "api"),
	}
}

// Total joins the posted sales against the posted catalog and returns the summary.
func (a *api) Total(w http.ResponseWriter, r *http.Request) {
	mLogger := a.loggerWithReqID(r)
	var req TotalRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		mLogger.WarnContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := a.validate.Struct(req); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			errorResponse := make(map[string]string)
			for _, fieldErr := range validationErrors {
				errorResponse[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
			}
			mLogger.WarnContext(r.Context(), "Validation errors occurred", "errors", errorResponse)
			web.RespondJSON(w, mLogger, http.StatusBadRequest, map[string]any{"validation_errors": errorResponse})
			return
		}
		mLogger.ErrorContext(r.Context(), "Error validating request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	mLogger.DebugContext(r.Context(), "Received total request", "catalog_entries", len(req.Catalog), "sales_records", len(req.Sales))

	catalog, err := sales.CatalogFromRecords(req.Catalog)
	if err != nil {
		a.respondMissingField(w, r, mLogger, err)
		return
	}
	items, err := sales.SalesFromRecords(req.Sales)
	if err != nil {
		a.respondMissingField(w, r, mLogger, err)
		return
	}

	summary, err := a.calc.Compute(r.Context(), catalog, items)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error computing total", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to compute total")
		return
	}
	mLogger.InfoContext(r.Context(), "Total computed", "total", summary.Total, "matched", summary.Matched)
	web.RespondJSON(w, mLogger, http.StatusOK, summary)
}

// HealthCheck is a simple health check endpoint.
func (a *api) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (a *api) respondMissingField(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var mfErr *sales.MissingFieldError
	if !errors.As(err, &mfErr) {
		logger.ErrorContext(r.Context(), "Error converting records", "error", err)
		web.RespondError(w, logger, http.StatusBadRequest, "Invalid request body")
		return
	}
	logger.WarnContext(r.Context(), "Record is missing a field", "kind", mfErr.Kind, "index", mfErr.Index, "field", mfErr.Field)
	web.RespondJSON(w, logger, http.StatusUnprocessableEntity, missingFieldResponse{
		Error: mfErr.Error(),
		Kind:  mfErr.Kind,
		Index: mfErr.Index,
		Field: mfErr.Field,
	})
}

// loggerWithReqID creates a logger with the request ID from the context.
func (a *api) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID, found := contextkeys.GetRequestID(r.Context())
	if !found {
		reqID = "unknown"
	}
	return a.logger.With("request_id", reqID)
}
