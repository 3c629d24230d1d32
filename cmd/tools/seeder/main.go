package main

import (
	"database/sql"
	"flag"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/noah-isme/repairshop-api/internal/auth"
)

type variationSeed struct {
	SKU      string
	Name     string
	Price    int64
	Quantity map[string]int
}

type componentSeed struct {
	SKU      string
	Quantity int
}

func main() {
	printToken := flag.Bool("token", false, "print an admin bearer token signed with JWT_SECRET")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("ping db: %v", err)
	}

	tx, err := db.Begin()
	if err != nil {
		log.Fatalf("begin: %v", err)
	}
	defer func() { _ = tx.Rollback() }()

	locations := seedLocations(tx)
	categoryID := seedCategory(tx, "Repair Kits", "repair-kits")
	variations := seedVariations(tx, locations)
	seedBundle(tx, categoryID, variations)
	seedTaxRates(tx)
	seedTransactions(tx, locations["Main Street"])

	if err := tx.Commit(); err != nil {
		log.Fatalf("commit: %v", err)
	}
	log.Println("seeding completed")

	if *printToken {
		issueToken()
	}
}

func seedLocations(tx *sql.Tx) map[string]string {
	names := []string{"Main Street", "Harbor Mall"}
	ids := make(map[string]string, len(names))
	for _, name := range names {
		var id string
		err := tx.QueryRow(`SELECT id FROM locations WHERE name = $1`, name).Scan(&id)
		if err == sql.ErrNoRows {
			err = tx.QueryRow(`INSERT INTO locations (name) VALUES ($1) RETURNING id`, name).Scan(&id)
		}
		if err != nil {
			log.Fatalf("seed location %s: %v", name, err)
		}
		ids[name] = id
	}
	log.Printf("seeded %d locations", len(ids))
	return ids
}

func seedCategory(tx *sql.Tx, name, slug string) string {
	var id string
	err := tx.QueryRow(`
		INSERT INTO categories (name, slug) VALUES ($1, $2)
		ON CONFLICT (slug) DO UPDATE SET name = EXCLUDED.name
		RETURNING id`, name, slug).Scan(&id)
	if err != nil {
		log.Fatalf("seed category %s: %v", slug, err)
	}
	return id
}

func seedVariations(tx *sql.Tx, locations map[string]string) map[string]string {
	seeds := []variationSeed{
		{SKU: "SCR-IP12", Name: "iPhone 12 Screen", Price: 8999, Quantity: map[string]int{"Main Street": 10, "Harbor Mall": 3}},
		{SKU: "ADH-IP12", Name: "iPhone 12 Adhesive Strip", Price: 499, Quantity: map[string]int{"Main Street": 25, "Harbor Mall": 4}},
		{SKU: "TLK-PENTA", Name: "Pentalobe Screwdriver", Price: 1299, Quantity: map[string]int{"Main Street": 6}},
	}
	ids := make(map[string]string, len(seeds))
	for _, v := range seeds {
		var id string
		err := tx.QueryRow(`
			INSERT INTO inventory_variations (sku, name, price) VALUES ($1, $2, $3)
			ON CONFLICT (sku) DO UPDATE SET name = EXCLUDED.name, price = EXCLUDED.price, updated_at = now()
			RETURNING id`, v.SKU, v.Name, v.Price).Scan(&id)
		if err != nil {
			log.Fatalf("seed variation %s: %v", v.SKU, err)
		}
		for location, qty := range v.Quantity {
			_, err := tx.Exec(`
				INSERT INTO stock_levels (variation_id, location_id, quantity) VALUES ($1, $2, $3)
				ON CONFLICT (variation_id, location_id) DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = now()`,
				id, locations[location], qty)
			if err != nil {
				log.Fatalf("seed stock %s@%s: %v", v.SKU, location, err)
			}
		}
		ids[v.SKU] = id
	}
	log.Printf("seeded %d inventory variations", len(ids))
	return ids
}

func seedBundle(tx *sql.Tx, categoryID string, variations map[string]string) {
	const name = "iPhone 12 Screen Kit"
	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS (SELECT 1 FROM bundles WHERE name = $1)`, name).Scan(&exists); err != nil {
		log.Fatalf("check bundle: %v", err)
	}
	if exists {
		log.Printf("bundle %q already present", name)
		return
	}

	var bundleID string
	err := tx.QueryRow(`INSERT INTO bundles (name, description) VALUES ($1, $2) RETURNING id`,
		name, "Screen, adhesive and driver for a full iPhone 12 screen swap").Scan(&bundleID)
	if err != nil {
		log.Fatalf("seed bundle: %v", err)
	}
	if _, err := tx.Exec(`INSERT INTO bundle_categories (bundle_id, category_id) VALUES ($1, $2)`, bundleID, categoryID); err != nil {
		log.Fatalf("seed bundle category: %v", err)
	}

	components := []componentSeed{{SKU: "SCR-IP12", Quantity: 1}, {SKU: "ADH-IP12", Quantity: 2}, {SKU: "TLK-PENTA", Quantity: 1}}
	for i, c := range components {
		_, err := tx.Exec(`
			INSERT INTO bundle_components (bundle_id, component_variation_id, quantity, display_order, is_highlight)
			VALUES ($1, $2, $3, $4, $5)`, bundleID, variations[c.SKU], c.Quantity, i, i == 0)
		if err != nil {
			log.Fatalf("seed component %s: %v", c.SKU, err)
		}
	}
	if _, err := tx.Exec(`INSERT INTO bundle_variations (bundle_id, sku, name, selling_price) VALUES ($1, $2, $3, $4)`,
		bundleID, "KIT-IP12-SCR", "Standard", 10999); err != nil {
		log.Fatalf("seed bundle variation: %v", err)
	}
	log.Printf("seeded bundle %q", name)
}

func seedTaxRates(tx *sql.Tx) {
	rates := []struct {
		Name     string
		Rate     string
		Category string
	}{
		{"State Sales Tax", "6.0000", "STATE"},
		{"City Surcharge", "2.0000", "LOCAL"},
	}
	for _, r := range rates {
		_, err := tx.Exec(`
			INSERT INTO tax_rates (name, rate, category)
			SELECT $1, $2::numeric, $3
			WHERE NOT EXISTS (SELECT 1 FROM tax_rates WHERE name = $1)`, r.Name, r.Rate, r.Category)
		if err != nil {
			log.Fatalf("seed tax rate %s: %v", r.Name, err)
		}
	}
	log.Printf("seeded %d tax rates", len(rates))
}

func seedTransactions(tx *sql.Tx, locationID string) {
	if _, err := tx.Exec(`INSERT INTO orders (external_ref, subtotal) VALUES ($1, $2)`, "SEED-ORDER-1", 20000); err != nil {
		log.Fatalf("seed order: %v", err)
	}
	opened := time.Now().Add(-8 * time.Hour)
	if _, err := tx.Exec(`INSERT INTO register_sessions (location_id, subtotal, opened_at, closed_at) VALUES ($1, $2, $3, $4)`,
		locationID, 5000, opened, time.Now()); err != nil {
		log.Fatalf("seed register session: %v", err)
	}
	log.Println("seeded sample order and register session")
}

func issueToken() {
	verifier, err := auth.NewVerifier(auth.Config{
		Secret:   os.Getenv("JWT_SECRET"),
		Issuer:   os.Getenv("JWT_ISSUER"),
		Audience: os.Getenv("JWT_AUDIENCE"),
	})
	if err != nil {
		log.Fatalf("token verifier: %v", err)
	}
	token, err := verifier.Issue("seed-admin", []string{"admin", "accountant"}, 12*time.Hour)
	if err != nil {
		log.Fatalf("issue token: %v", err)
	}
	log.Printf("admin token (12h): %s", token)
}
