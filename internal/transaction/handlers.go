package transaction

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/noah-isme/pos-api/internal/checkout"
	"github.com/noah-isme/pos-api/internal/common"
	"github.com/noah-isme/pos-api/internal/obs"
)

// reader is the store surface the handler depends on.
type reader interface {
	List(ctx context.Context, limit, offset int) ([]checkout.Receipt, error)
	Get(ctx context.Context, id uuid.UUID) (checkout.Receipt, error)
	Void(ctx context.Context, id uuid.UUID) (checkout.Receipt, error)
}

// Handler exposes transaction history endpoints.
type Handler struct {
	Store reader
}

// List handles GET /api/v1/transactions.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "transaction store not configured", nil)
		return
	}
	page, perPage := common.ParsePagination(r, 50)
	rows, err := h.Store.List(r.Context(), perPage, (page-1)*perPage)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to list transactions", nil)
		return
	}
	if rows == nil {
		rows = []checkout.Receipt{}
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"data":       rows,
		"pagination": common.Pagination{Page: page, PerPage: perPage},
	})
}

// Get handles GET /api/v1/transactions/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "transaction store not configured", nil)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid transaction id", nil)
		return
	}
	rec, err := h.Store.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": rec})
}

// Void handles PATCH /api/v1/transactions/{id}/void.
func (h *Handler) Void(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "transaction store not configured", nil)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid transaction id", nil)
		return
	}
	rec, err := h.Store.Void(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if obs.VoidsTotal != nil {
		obs.VoidsTotal.Inc()
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": rec})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "transaction not found", nil)
	case errors.Is(err, ErrAlreadyVoided):
		common.JSONError(w, http.StatusConflict, "ALREADY_VOIDED", "transaction is not in a voidable state", nil)
	default:
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "transaction operation failed", nil)
	}
}
