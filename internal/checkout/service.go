package checkout

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/noah-isme/pos-api/internal/cart"
	"github.com/noah-isme/pos-api/internal/catalog"
	"github.com/noah-isme/pos-api/internal/common"
	"github.com/noah-isme/pos-api/internal/obs"
	"github.com/noah-isme/pos-api/internal/pricing"
	"github.com/noah-isme/pos-api/internal/promo"
)

// CatalogProvider supplies product snapshots for the requested ids.
type CatalogProvider interface {
	ProductsByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]catalog.Product, error)
}

// PromotionProvider supplies promotion snapshots. The engine re-checks the
// activity window itself rather than trusting the provider's filtering.
type PromotionProvider interface {
	Active(ctx context.Context, now time.Time) ([]promo.Promotion, error)
}

// Receipt is the persisted record returned by the transaction sink.
type Receipt struct {
	ID            uuid.UUID         `json:"id"`
	Number        string            `json:"transactionNumber"`
	Status        string            `json:"status"`
	PaymentMethod PaymentMethod     `json:"paymentMethod"`
	CashierID     uuid.UUID         `json:"cashierId"`
	Subtotal      pricing.Money     `json:"subtotal"`
	Tax           pricing.Money     `json:"tax"`
	Discount      pricing.Money     `json:"discount"`
	Total         pricing.Money     `json:"total"`
	Tendered      pricing.Money     `json:"tendered"`
	Change        pricing.Money     `json:"change"`
	Notes         string            `json:"notes,omitempty"`
	Lines         []TransactionLine `json:"lines"`
	CreatedAt     time.Time         `json:"createdAt"`
}

// Sink persists a finalized transaction.
type Sink interface {
	Save(ctx context.Context, tx FinalizedTransaction) (Receipt, error)
}

// LineInput is one requested cart line.
type LineInput struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Quantity  int       `json:"quantity" validate:"gt=0"`
}

// QuoteInput describes a cart to price without committing it.
type QuoteInput struct {
	Lines          []LineInput   `json:"lines" validate:"required,min=1,dive"`
	PaymentMethod  PaymentMethod `json:"paymentMethod" validate:"required"`
	ManualDiscount pricing.Money `json:"manualDiscount" validate:"gte=0"`
}

// CompleteInput finalizes a cart into a stored transaction.
type CompleteInput struct {
	QuoteInput
	Tendered pricing.Money `json:"tendered" validate:"gte=0"`
	Notes    string        `json:"notes"`
}

// Quote is a priced cart plus the breakdown the register displays.
type Quote struct {
	Lines     []TransactionLine `json:"lines"`
	Breakdown Breakdown         `json:"breakdown"`
	Currency  string            `json:"currency,omitempty"`
}

// Service drives a checkout session: it resolves snapshots, prices the cart,
// and hands finalized transactions to the sink. All I/O lives in the
// providers; the pricing itself is pure.
type Service struct {
	Catalog  CatalogProvider
	Promos   PromotionProvider
	Sink     Sink
	Validate *validator.Validate
	Currency string
	Now      func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Quote prices a cart for the given tender without persisting anything.
func (s *Service) Quote(ctx context.Context, in QuoteInput) (Quote, error) {
	if err := s.validateInput(in); err != nil {
		return Quote{}, err
	}
	c, err := s.buildCart(ctx, in.Lines)
	if err != nil {
		return Quote{}, err
	}
	b, err := s.compute(ctx, c, in.PaymentMethod, in.ManualDiscount)
	if err != nil {
		return Quote{}, err
	}
	lines := make([]TransactionLine, 0, c.Len())
	for _, l := range c.Lines() {
		lines = append(lines, TransactionLine{
			ProductID: l.Product.ID,
			Name:      l.Product.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.Product.Price,
			LineTotal: l.Total(),
		})
	}
	if obs.QuotesTotal != nil {
		obs.QuotesTotal.Inc()
	}
	return Quote{Lines: lines, Breakdown: b, Currency: s.Currency}, nil
}

// Complete validates the tender against the cart, persists the transaction,
// and returns the stored receipt.
func (s *Service) Complete(ctx context.Context, cashierID uuid.UUID, in CompleteInput) (Receipt, error) {
	if s.Sink == nil {
		return Receipt{}, errors.New("checkout service not configured")
	}
	if err := s.validateInput(in.QuoteInput); err != nil {
		return Receipt{}, err
	}
	c, err := s.buildCart(ctx, in.Lines)
	if err != nil {
		return Receipt{}, err
	}
	b, err := s.compute(ctx, c, in.PaymentMethod, in.ManualDiscount)
	if err != nil {
		return Receipt{}, err
	}
	fin := NewFinalizer()
	tx, err := fin.Finalize(c, b, in.PaymentMethod, in.Tendered, cashierID, in.Notes)
	if err != nil {
		appErr := finalizeError(err)
		countRejection(appErr)
		return Receipt{}, appErr
	}
	receipt, err := s.Sink.Save(ctx, tx)
	if err != nil {
		if obs.TransactionsTotal != nil {
			obs.TransactionsTotal.WithLabelValues(string(in.PaymentMethod), "error").Inc()
		}
		return Receipt{}, err
	}
	if obs.TransactionsTotal != nil {
		obs.TransactionsTotal.WithLabelValues(string(in.PaymentMethod), "ok").Inc()
	}
	if obs.TransactionAmount != nil {
		obs.TransactionAmount.WithLabelValues(string(in.PaymentMethod)).Observe(float64(tx.Total))
	}
	if obs.PromotionsAppliedTotal != nil {
		for _, applied := range b.AppliedPromotions {
			obs.PromotionsAppliedTotal.WithLabelValues(string(applied.Kind)).Inc()
		}
	}
	return receipt, nil
}

func (s *Service) validateInput(in QuoteInput) error {
	if s.Validate != nil {
		if err := s.Validate.Struct(in); err != nil {
			return common.NewAppError("VALIDATION", "invalid request", http.StatusUnprocessableEntity, err)
		}
	}
	if !in.PaymentMethod.Valid() {
		return common.NewAppError("INVALID_PAYMENT_METHOD", "unknown payment method", http.StatusUnprocessableEntity, ErrInvalidPaymentMethod)
	}
	return nil
}

func (s *Service) buildCart(ctx context.Context, lines []LineInput) (*cart.Cart, error) {
	if s.Catalog == nil {
		return nil, errors.New("checkout service not configured")
	}
	ids := make([]uuid.UUID, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}
	products, err := s.Catalog.ProductsByID(ctx, ids)
	if err != nil {
		return nil, err
	}
	c := cart.New()
	for _, l := range lines {
		p, ok := products[l.ProductID]
		if !ok || !p.Active {
			return nil, common.NewAppError("PRODUCT_NOT_FOUND", "product not found: "+l.ProductID.String(), http.StatusNotFound, nil)
		}
		if err := c.Add(p, l.Quantity); err != nil {
			return nil, cartError(err, p)
		}
	}
	return c, nil
}

func (s *Service) compute(ctx context.Context, c *cart.Cart, method PaymentMethod, manualDiscount pricing.Money) (Breakdown, error) {
	if s.Promos == nil {
		return Breakdown{}, errors.New("checkout service not configured")
	}
	now := s.now()
	promotions, err := s.Promos.Active(ctx, now)
	if err != nil {
		return Breakdown{}, err
	}
	return Compute(c, promotions, method, manualDiscount, now), nil
}

func countRejection(err error) {
	if obs.CheckoutRejectionsTotal == nil {
		return
	}
	reason := "INTERNAL"
	var appErr *common.AppError
	if errors.As(err, &appErr) && appErr.Code != "" {
		reason = appErr.Code
	}
	obs.CheckoutRejectionsTotal.WithLabelValues(reason).Inc()
}

func cartError(err error, p catalog.Product) error {
	switch {
	case errors.Is(err, cart.ErrOutOfStock):
		return common.NewAppError("OUT_OF_STOCK", p.Name+" is out of stock", http.StatusConflict, err)
	case errors.Is(err, cart.ErrInsufficientStock):
		return common.NewAppError("INSUFFICIENT_STOCK", "not enough stock for "+p.Name, http.StatusConflict, err)
	case errors.Is(err, cart.ErrInvalidQuantity):
		return common.NewAppError("VALIDATION", "quantity must be positive", http.StatusUnprocessableEntity, err)
	}
	return err
}

func finalizeError(err error) error {
	var mixed *MixedCartError
	switch {
	case errors.As(err, &mixed):
		return common.NewAppError(
			"SPLIT_PAYMENT_REQUIRED",
			"cart mixes eligible and non-eligible items; pay the non-eligible portion separately",
			http.StatusUnprocessableEntity,
			err,
		).WithDetails(map[string]any{"nonEligibleTotal": mixed.NonEligibleTotal})
	case errors.Is(err, ErrEmptyCart):
		return common.NewAppError("EMPTY_CART", "cart is empty", http.StatusUnprocessableEntity, err)
	case errors.Is(err, ErrNoEligibleItems):
		return common.NewAppError("NO_ELIGIBLE_ITEMS", "no food-assistance-eligible items in cart", http.StatusUnprocessableEntity, err)
	case errors.Is(err, ErrInsufficientPayment):
		return common.NewAppError("INSUFFICIENT_PAYMENT", "tendered amount does not cover the total", http.StatusUnprocessableEntity, err)
	case errors.Is(err, ErrInvalidPaymentMethod):
		return common.NewAppError("INVALID_PAYMENT_METHOD", "unknown payment method", http.StatusUnprocessableEntity, err)
	}
	return err
}
