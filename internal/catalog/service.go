package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/noah-isme/pos-api/internal/common"
)

// queryProvider is the store surface the service depends on.
type queryProvider interface {
	ListProducts(ctx context.Context, params ListParams) ([]Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (Product, error)
	GetProductByBarcode(ctx context.Context, barcode string) (Product, error)
	ProductsByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Product, error)
	ListCategories(ctx context.Context) ([]Category, error)
}

// Service serves catalog reads with a Redis snapshot cache in front of the
// plain listings the register hits on every screen.
type Service struct {
	queries      queryProvider
	cache        *Cache
	defaultLimit int
	maxLimit     int
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Queries      queryProvider
	Cache        *Cache
	DefaultLimit int
	MaxLimit     int
}

// NewService constructs a Service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Queries == nil {
		return nil, errors.New("catalog: queries provider is required")
	}
	defaultLimit := cfg.DefaultLimit
	if defaultLimit < 1 {
		defaultLimit = 50
	}
	maxLimit := cfg.MaxLimit
	if maxLimit < 1 {
		maxLimit = 200
	}
	if defaultLimit > maxLimit {
		defaultLimit = maxLimit
	}
	return &Service{
		queries:      cfg.Queries,
		cache:        cfg.Cache,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}, nil
}

// ParseListParams normalises raw query values into typed filters.
func (s *Service) ParseListParams(values url.Values) (ListParams, error) {
	params := ListParams{Limit: s.defaultLimit, ActiveOnly: true}
	params.Query = strings.TrimSpace(values.Get("q"))
	if v := strings.TrimSpace(values.Get("category")); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return params, badRequest("category", "category must be a valid id", err)
		}
		params.CategoryID = &id
	}
	if v := strings.TrimSpace(values.Get("includeInactive")); v == "true" || v == "1" {
		params.ActiveOnly = false
	}
	if v := strings.TrimSpace(values.Get("limit")); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil || l < 1 {
			return params, badRequest("limit", "limit must be a positive integer", err)
		}
		if l > s.maxLimit {
			l = s.maxLimit
		}
		params.Limit = l
	}
	if v := strings.TrimSpace(values.Get("offset")); v != "" {
		o, err := strconv.Atoi(v)
		if err != nil || o < 0 {
			return params, badRequest("offset", "offset must be a non-negative integer", err)
		}
		params.Offset = o
	}
	return params, nil
}

// ListProducts returns the filtered product list. The unfiltered first page
// is cached; anything else goes straight to the store.
func (s *Service) ListProducts(ctx context.Context, params ListParams) ([]Product, error) {
	key, cacheable := s.listCacheKey(params)
	if cacheable {
		var cached []Product
		if ok, err := s.cache.GetJSON(ctx, key, &cached); err == nil && ok {
			return cached, nil
		}
	}
	products, err := s.queries.ListProducts(ctx, params)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []Product{}
	}
	if cacheable {
		_ = s.cache.SetJSON(ctx, key, products)
	}
	return products, nil
}

// GetProduct fetches a single product by id.
func (s *Service) GetProduct(ctx context.Context, id uuid.UUID) (Product, error) {
	p, err := s.queries.GetProduct(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return Product{}, notFound(err)
	}
	return p, err
}

// GetProductByBarcode resolves a scanned code to a product.
func (s *Service) GetProductByBarcode(ctx context.Context, barcode string) (Product, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return Product{}, badRequest("barcode", "barcode is required", nil)
	}
	p, err := s.queries.GetProductByBarcode(ctx, barcode)
	if errors.Is(err, ErrNotFound) {
		return Product{}, notFound(err)
	}
	return p, err
}

// ProductsByID resolves a batch of ids into snapshots for checkout.
func (s *Service) ProductsByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Product, error) {
	return s.queries.ProductsByID(ctx, ids)
}

// ListCategories returns all categories, cached.
func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	const key = "catalog:categories"
	var cached []Category
	if ok, err := s.cache.GetJSON(ctx, key, &cached); err == nil && ok {
		return cached, nil
	}
	categories, err := s.queries.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []Category{}
	}
	_ = s.cache.SetJSON(ctx, key, categories)
	return categories, nil
}

func (s *Service) listCacheKey(params ListParams) (string, bool) {
	if params.Query != "" || params.CategoryID != nil || !params.ActiveOnly || params.Offset != 0 {
		return "", false
	}
	if params.Limit != s.defaultLimit {
		return "", false
	}
	return "catalog:products:list", true
}

func notFound(err error) *common.AppError {
	return &common.AppError{Code: "NOT_FOUND", Message: "product not found", HTTPStatus: http.StatusNotFound, Err: err}
}

func badRequest(field, message string, err error) *common.AppError {
	return &common.AppError{
		Code:       "BAD_REQUEST",
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
		Err:        err,
		Details:    map[string]any{"field": field},
	}
}
