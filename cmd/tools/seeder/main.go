package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping DB: %v", err)
	}

	catIDs := seedCategories(db)
	seedProducts(db, catIDs)
	seedPromotions(db, catIDs)

	log.Println("Seeding completed successfully!")
}

func seedCategories(db *sql.DB) map[string]string {
	categories := []struct {
		Name       string
		TaxRateBps int
	}{
		{"Beverages", 825},
		{"Snacks", 825},
		{"Tobacco", 1550},
		{"Automotive", 750},
		{"Food", 600},
	}

	fmt.Println("Seeding Categories...")
	ids := make(map[string]string)
	for _, c := range categories {
		_, err := db.Exec(`
			INSERT INTO categories (name, tax_rate_bps)
			VALUES ($1, $2)
			ON CONFLICT (name) DO UPDATE SET tax_rate_bps = EXCLUDED.tax_rate_bps;
		`, c.Name, c.TaxRateBps)
		if err != nil {
			log.Printf("Failed to upsert category %s: %v", c.Name, err)
		}

		var id string
		if err := db.QueryRow("SELECT id FROM categories WHERE name = $1", c.Name).Scan(&id); err != nil {
			log.Printf("Failed to get ID for category %s: %v", c.Name, err)
			continue
		}
		ids[c.Name] = id
	}
	return ids
}

func seedProducts(db *sql.DB, catIDs map[string]string) {
	products := []struct {
		Name     string
		Barcode  string
		Category string
		Price    int64
		Cost     int64
		Stock    int
		Eligible bool
	}{
		{"Coca Cola 20oz", "049000042566", "Beverages", 189, 95, 120, true},
		{"Red Bull 8.4oz", "611269991000", "Beverages", 399, 210, 80, false},
		{"Bottled Water 1L", "073430000010", "Beverages", 129, 40, 200, true},
		{"Lays Classic", "028400090858", "Snacks", 249, 130, 150, true},
		{"Snickers Bar", "040000424314", "Snacks", 159, 80, 300, true},
		{"Marlboro Red Pack", "028200003546", "Tobacco", 899, 620, 90, false},
		{"Motor Oil 5W-30 1qt", "071924259201", "Automotive", 749, 420, 40, false},
		{"Bread Loaf", "072250007307", "Food", 299, 140, 35, true},
		{"Milk Gallon", "041900076610", "Food", 349, 220, 50, true},
		{"Hot Dog (Prepared)", "000000000101", "Food", 199, 60, 60, false},
		{"Monster Energy 16oz", "070847811169", "Beverages", 329, 180, 0, false},
	}

	fmt.Println("Seeding Products...")
	for _, p := range products {
		catID, ok := catIDs[p.Category]
		if !ok {
			log.Printf("Missing category ID for %s", p.Category)
			continue
		}

		_, err := db.Exec(`
			INSERT INTO products
				(name, barcode, price, cost, current_stock, category_id, food_assistance_eligible, active)
			VALUES ($1, $2, $3, $4, $5, $6, $7, true)
			ON CONFLICT (barcode) DO UPDATE SET
				price = EXCLUDED.price,
				cost = EXCLUDED.cost,
				current_stock = EXCLUDED.current_stock,
				category_id = EXCLUDED.category_id,
				food_assistance_eligible = EXCLUDED.food_assistance_eligible,
				updated_at = now();
		`, p.Name, p.Barcode, p.Price, p.Cost, p.Stock, catID, p.Eligible)
		if err != nil {
			log.Printf("Failed to seed product %s: %v", p.Name, err)
		}
	}
}

func seedPromotions(db *sql.DB, catIDs map[string]string) {
	fmt.Println("Seeding Promotions...")

	_, err := db.Exec(`
		INSERT INTO promotions
			(name, kind, value, percent_bps, min_purchase, category_ids, active, starts_at, ends_at)
		VALUES ('10% Off Snacks', 'PERCENTAGE', 0, 1000, 0,
			ARRAY[$1]::uuid[], true, now() - INTERVAL '1 day', now() + INTERVAL '90 days')
		ON CONFLICT DO NOTHING;
	`, catIDs["Snacks"])
	if err != nil {
		log.Printf("Failed to seed snack promotion: %v", err)
	}

	_, err = db.Exec(`
		INSERT INTO promotions
			(name, kind, value, percent_bps, min_purchase, active, starts_at, ends_at)
		VALUES ('$2 Off Orders Over $20', 'FIXED_AMOUNT', 200, 0, 2000,
			true, now() - INTERVAL '1 day', now() + INTERVAL '30 days')
		ON CONFLICT DO NOTHING;
	`)
	if err != nil {
		log.Printf("Failed to seed basket promotion: %v", err)
	}

	var colaID string
	if err := db.QueryRow("SELECT id FROM products WHERE barcode = '049000042566'").Scan(&colaID); err != nil {
		log.Printf("Skipping BOGO seed: cola product not found: %v", err)
		return
	}
	_, err = db.Exec(`
		INSERT INTO promotions
			(name, kind, value, percent_bps, min_purchase, product_ids, active, starts_at, ends_at)
		VALUES ('Cola BOGO', 'BUY_ONE_GET_ONE', 189, 0, 0,
			ARRAY[$1]::uuid[], true, now() - INTERVAL '1 day', now() + INTERVAL '14 days')
		ON CONFLICT DO NOTHING;
	`, colaID)
	if err != nil {
		log.Printf("Failed to seed BOGO promotion: %v", err)
	}
}
