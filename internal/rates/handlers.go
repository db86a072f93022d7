package rates

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	validator "github.com/go-playground/validator/v10"

	"github.com/noah-isme/rate-matrix/internal/common"
	"github.com/noah-isme/rate-matrix/internal/matrix"
	"github.com/noah-isme/rate-matrix/internal/money"
	"github.com/noah-isme/rate-matrix/internal/obs"
	"github.com/noah-isme/rate-matrix/internal/store"
)

// Handler exposes HTTP endpoints for matrix administration and shipping quotes.
type Handler struct {
	Svc             *Service
	Validate        *validator.Validate
	DefaultCurrency string
	MaxRows         int
	HistoryLimit    int
}

// Upload ingests a CSV price matrix and installs it as the active one.
// The body is either raw comma-separated text or a multipart form with a
// "file" field; the matrix currency comes from the "currency" form value or
// query parameter, falling back to the service default.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "rates service not configured", nil)
		return
	}
	body := r.Body
	currency := strings.TrimSpace(r.URL.Query().Get("currency"))

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		file, _, err := r.FormFile("file")
		if err != nil {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "multipart field 'file' is required", nil)
			return
		}
		defer func() { _ = file.Close() }()
		body = file
		if v := strings.TrimSpace(r.FormValue("currency")); v != "" {
			currency = v
		}
	}
	if currency == "" {
		currency = h.DefaultCurrency
	}
	if currency == "" {
		common.JSONError(w, http.StatusBadRequest, "CURRENCY_REQUIRED", "matrix currency is required", nil)
		return
	}

	rows, err := DecodeRows(body, h.MaxRows)
	if err != nil {
		switch {
		case errors.Is(err, ErrTooManyRows):
			uploadResult("rejected")
			common.JSONError(w, http.StatusRequestEntityTooLarge, "TOO_MANY_ROWS", err.Error(), nil)
		default:
			uploadResult("rejected")
			common.JSONError(w, http.StatusBadRequest, "INVALID_CSV", "failed to decode csv payload", nil)
		}
		return
	}

	stored, err := h.Svc.Upload(r.Context(), rows, currency)
	if err != nil {
		if rowErrs, ok := matrix.AsRowErrors(err); ok {
			uploadResult("rejected")
			if obs.MatrixUploadRowErrors != nil {
				obs.MatrixUploadRowErrors.Observe(float64(len(rowErrs)))
			}
			common.RenderError(w, &common.AppError{
				Code:       "INVALID_MATRIX",
				Message:    "matrix validation failed",
				HTTPStatus: http.StatusUnprocessableEntity,
				Err:        err,
				Details:    rowErrs,
			})
			return
		}
		switch {
		case errors.Is(err, matrix.ErrCurrencyRequired):
			uploadResult("rejected")
			common.RenderError(w, common.NewAppError("CURRENCY_REQUIRED", err.Error(), http.StatusBadRequest, err))
		case errors.Is(err, store.ErrConcurrentReplace):
			uploadResult("error")
			common.RenderError(w, common.NewAppError("CONFLICT", err.Error(), http.StatusConflict, err))
		default:
			uploadResult("error")
			common.RenderError(w, err)
		}
		return
	}

	uploadResult("accepted")
	common.JSONData(w, http.StatusCreated, map[string]any{
		"id":        stored.ID,
		"currency":  stored.Matrix.Currency,
		"rowCount":  stored.RowCount,
		"createdAt": stored.CreatedAt,
	})
}

// Current returns the active matrix including its tiers.
func (h *Handler) Current(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "rates service not configured", nil)
		return
	}
	stored, err := h.Svc.ActiveMatrix(r.Context())
	if err != nil {
		if errors.Is(err, store.ErrNoActiveMatrix) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "no rate matrix uploaded yet", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to load matrix", nil)
		return
	}
	common.JSONData(w, http.StatusOK, map[string]any{
		"id":        stored.ID,
		"currency":  stored.Matrix.Currency,
		"rowCount":  stored.RowCount,
		"createdAt": stored.CreatedAt,
		"tiers":     stored.Matrix.Tiers,
	})
}

// History lists recent uploads, newest first.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "rates service not configured", nil)
		return
	}
	limit := h.HistoryLimit
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	summaries, err := h.Svc.History(r.Context(), limit)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to list uploads", nil)
		return
	}
	common.JSONData(w, http.StatusOK, summaries)
}

type quoteRequest struct {
	Amount   string `json:"amount" validate:"required"`
	Currency string `json:"currency" validate:"required,iso4217"`
}

// Quote computes the shipping charge for an order subtotal.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "rates service not configured", nil)
		return
	}
	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(req); err != nil {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "amount and an ISO 4217 currency are required", nil)
			return
		}
	}
	subtotal, err := money.Parse(req.Amount, req.Currency)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_AMOUNT", "amount must be a decimal number", nil)
		return
	}

	start := time.Now()
	charge, err := h.Svc.Quote(r.Context(), subtotal)
	if obs.ShippingQuoteDuration != nil {
		obs.ShippingQuoteDuration.Observe(obs.DurationMillis(time.Since(start)))
	}
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNoActiveMatrix):
			quoteResult("no_matrix")
			common.RenderError(w, common.NewAppError("NO_MATRIX", "no rate matrix uploaded yet", http.StatusNotFound, err))
		case errors.Is(err, matrix.ErrCurrencyMismatch):
			quoteResult("currency_mismatch")
			common.RenderError(w, common.NewAppError("CURRENCY_MISMATCH", err.Error(), http.StatusUnprocessableEntity, err))
		case errors.Is(err, matrix.ErrNegativePrice):
			quoteResult("negative_price")
			common.RenderError(w, common.NewAppError("NEGATIVE_AMOUNT", err.Error(), http.StatusUnprocessableEntity, err))
		default:
			quoteResult("error")
			common.RenderError(w, err)
		}
		return
	}

	quoteResult("ok")
	common.JSONData(w, http.StatusOK, map[string]any{
		"amount":   charge.Amount.String(),
		"currency": charge.Currency,
	})
}

func uploadResult(result string) {
	if obs.MatrixUploadTotal != nil {
		obs.MatrixUploadTotal.WithLabelValues(result).Inc()
	}
}

func quoteResult(result string) {
	if obs.ShippingQuoteTotal != nil {
		obs.ShippingQuoteTotal.WithLabelValues(result).Inc()
	}
}
