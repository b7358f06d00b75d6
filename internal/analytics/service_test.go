package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type stubQueries struct {
	dailyCalls  int
	methodCalls int
	topCalls    int
}

func (s *stubQueries) SalesDaily(context.Context, time.Time, time.Time) ([]DailySales, error) {
	s.dailyCalls++
	return []DailySales{{
		Day:          time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		Transactions: 12,
		GrossSales:   45210,
		Tax:          2890,
		Discount:     500,
	}}, nil
}

func (s *stubQueries) SalesByMethod(context.Context, time.Time, time.Time) ([]MethodSales, error) {
	s.methodCalls++
	return []MethodSales{
		{PaymentMethod: "CASH", Transactions: 8, GrossSales: 30000},
		{PaymentMethod: "EBT", Transactions: 4, GrossSales: 15210},
	}, nil
}

func (s *stubQueries) TopProducts(_ context.Context, _, _ time.Time, limit int) ([]TopProduct, error) {
	s.topCalls++
	rows := []TopProduct{{ProductID: uuid.New(), Name: "Cola 20oz", Quantity: 40, Revenue: 7560}}
	if limit < len(rows) {
		rows = rows[:limit]
	}
	return rows, nil
}

func newTestService(t *testing.T, q Querier) *Service {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return &Service{
		Q:   q,
		R:   client,
		TTL: time.Minute,
		Now: func() time.Time { return time.Date(2026, 3, 16, 9, 0, 0, 0, time.UTC) },
	}
}

func TestSalesRangeCachesResults(t *testing.T) {
	stub := &stubQueries{}
	svc := newTestService(t, stub)
	ctx := context.Background()
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)

	first, err := svc.SalesRange(ctx, from, to)
	if err != nil {
		t.Fatalf("sales range: %v", err)
	}
	second, err := svc.SalesRange(ctx, from, to)
	if err != nil {
		t.Fatalf("sales range cached: %v", err)
	}
	if stub.dailyCalls != 1 {
		t.Fatalf("db hit %d times, want 1", stub.dailyCalls)
	}
	if len(first) != 1 || len(second) != 1 || second[0].GrossSales != 45210 {
		t.Fatalf("unexpected rows: %+v / %+v", first, second)
	}
}

func TestSalesByMethodSegments(t *testing.T) {
	stub := &stubQueries{}
	svc := newTestService(t, stub)
	rows, err := svc.SalesByMethod(context.Background(), time.Now().Add(-24*time.Hour), time.Now())
	if err != nil {
		t.Fatalf("sales by method: %v", err)
	}
	if len(rows) != 2 || rows[1].PaymentMethod != "EBT" {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}

func TestTopProductsDefaultsLimit(t *testing.T) {
	stub := &stubQueries{}
	svc := newTestService(t, stub)
	if _, err := svc.TopProducts(context.Background(), time.Now().Add(-24*time.Hour), time.Now(), 0); err != nil {
		t.Fatalf("top products: %v", err)
	}
	if stub.topCalls != 1 {
		t.Fatalf("db hit %d times, want 1", stub.topCalls)
	}
}

func TestTodayOverviewCombinesAggregates(t *testing.T) {
	stub := &stubQueries{}
	svc := newTestService(t, stub)
	ctx := context.Background()

	out, err := svc.TodayOverview(ctx)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if out.Transactions != 12 || out.GrossSales != 45210 {
		t.Fatalf("unexpected totals: %+v", out)
	}
	if len(out.ByMethod) != 2 || out.ByMethod[0].PaymentMethod != "CASH" {
		t.Fatalf("unexpected method rows: %+v", out.ByMethod)
	}
	if got, want := out.Day, time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("day = %v, want %v", got, want)
	}

	if _, err := svc.TodayOverview(ctx); err != nil {
		t.Fatalf("overview cached: %v", err)
	}
	if stub.dailyCalls != 1 || stub.methodCalls != 1 {
		t.Fatalf("db hit daily=%d method=%d, want 1 each", stub.dailyCalls, stub.methodCalls)
	}
}

func TestUnconfiguredService(t *testing.T) {
	var svc *Service
	if _, err := svc.SalesRange(context.Background(), time.Now().Add(-time.Hour), time.Now()); err == nil {
		t.Fatal("expected error from unconfigured service")
	}
}
