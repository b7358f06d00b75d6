package promotion

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/pos-api/internal/common"
	"github.com/noah-isme/pos-api/internal/pricing"
	"github.com/noah-isme/pos-api/internal/promo"
)

// lister is the store surface the handler depends on.
type lister interface {
	List(ctx context.Context) ([]promo.Promotion, error)
	Active(ctx context.Context, now time.Time) ([]promo.Promotion, error)
}

// View is the wire representation of a promotion snapshot.
type View struct {
	ID          uuid.UUID     `json:"id"`
	Name        string        `json:"name"`
	Kind        promo.Kind    `json:"kind"`
	Value       pricing.Money `json:"value"`
	PercentBps  int64         `json:"percentBps"`
	MinPurchase pricing.Money `json:"minPurchase"`
	ProductIDs  []uuid.UUID   `json:"productIds,omitempty"`
	CategoryIDs []uuid.UUID   `json:"categoryIds,omitempty"`
	Active      bool          `json:"active"`
	StartsAt    time.Time     `json:"startsAt"`
	EndsAt      time.Time     `json:"endsAt"`
}

func toView(p promo.Promotion) View {
	return View{
		ID:          p.ID,
		Name:        p.Name,
		Kind:        p.Kind,
		Value:       p.Value,
		PercentBps:  p.PercentBps,
		MinPurchase: p.MinPurchase,
		ProductIDs:  p.Scope.ProductIDs(),
		CategoryIDs: p.Scope.CategoryIDs(),
		Active:      p.Active,
		StartsAt:    p.StartsAt,
		EndsAt:      p.EndsAt,
	}
}

// Handler exposes promotion read endpoints.
type Handler struct {
	Store lister
	Now   func() time.Time
}

// List handles GET /api/v1/promotions.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "promotion store not configured", nil)
		return
	}
	rows, err := h.Store.List(r.Context())
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to list promotions", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": views(rows)})
}

// ListActive handles GET /api/v1/promotions/active.
func (h *Handler) ListActive(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "promotion store not configured", nil)
		return
	}
	now := time.Now()
	if h.Now != nil {
		now = h.Now()
	}
	rows, err := h.Store.Active(r.Context(), now)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to list promotions", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": views(rows)})
}

func views(rows []promo.Promotion) []View {
	out := make([]View, 0, len(rows))
	for _, p := range rows {
		out = append(out, toView(p))
	}
	return out
}
