// Command seed-db populates the database with demo categories, products,
// coupons, and a demo account. Safe to run repeatedly: every insert is an
// upsert keyed on the natural identifier.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/xenking/shopline/internal/repository"
)

const (
	upsertCategorySQL = `INSERT INTO categories (id, name, description)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET description = EXCLUDED.description
		RETURNING id`

	upsertProductSQL = `INSERT INTO products
		(id, name, description, price, stock, weight, category_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			price = EXCLUDED.price,
			stock = EXCLUDED.stock,
			weight = EXCLUDED.weight,
			category_id = EXCLUDED.category_id`

	upsertCouponSQL = `INSERT INTO coupons
		(id, code, discount_percentage, discount_amount, is_active, max_uses, expiry_date)
		VALUES ($1, $2, $3, $4, $5, $6, NULL)
		ON CONFLICT (code) DO UPDATE SET
			discount_percentage = EXCLUDED.discount_percentage,
			discount_amount = EXCLUDED.discount_amount,
			is_active = EXCLUDED.is_active,
			max_uses = EXCLUDED.max_uses`

	upsertUserSQL = `INSERT INTO users (id, email, username, password_hash)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO NOTHING`
)

type seedProduct struct {
	name        string
	description string
	price       string
	stock       int
	weight      string
	category    string
}

type seedCoupon struct {
	code       string
	percentage string
	amount     string
	maxUses    *int
}

var seedCategories = map[string]string{
	"Electronics": "Gadgets, devices, and accessories",
	"Books":       "Paper and electronic books",
	"Clothing":    "Apparel for all seasons",
	"Home":        "Furniture and household goods",
}

var seedProducts = []seedProduct{
	{"Wireless Headphones", "Over-ear noise cancelling headphones", "79.99", 120, "0.350", "Electronics"},
	{"Mechanical Keyboard", "Tenkeyless board with hot-swap switches", "129.00", 45, "0.900", "Electronics"},
	{"USB-C Charger 65W", "GaN fast charger with two ports", "39.50", 300, "0.120", "Electronics"},
	{"The Go Programming Language", "Donovan and Kernighan", "44.95", 80, "0.700", "Books"},
	{"Designing Data-Intensive Applications", "Kleppmann", "54.99", 60, "1.100", "Books"},
	{"Cotton T-Shirt", "Plain crew neck, unisex", "14.99", 500, "0.200", "Clothing"},
	{"Wool Sweater", "Merino, machine washable", "69.00", 90, "0.450", "Clothing"},
	{"Desk Lamp", "Dimmable LED with USB port", "32.00", 150, "1.300", "Home"},
	{"French Press", "8-cup borosilicate glass", "24.50", 70, "0.850", "Home"},
	{"Standing Desk Mat", "Anti-fatigue, 76x50cm", "49.00", 40, "2.400", "Home"},
}

var seedCoupons = []seedCoupon{
	{code: "SAVE10", percentage: "10"},
	{code: "WELCOME5", amount: "5.00"},
	{code: "LAUNCH25", percentage: "25", maxUses: intPtr(100)},
}

func intPtr(v int) *int { return &v }

func main() {
	var (
		databaseURL  string
		demoEmail    string
		demoPassword string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&demoEmail, "demo-email", "demo@example.com", "email for the demo account")
	flag.StringVar(&demoPassword, "demo-password", "demo1234", "password for the demo account")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, demoEmail, demoPassword); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, demoEmail, demoPassword string) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	categoryIDs, err := upsertCategories(ctx, pool)
	if err != nil {
		return errors.Wrap(err, "seed categories")
	}

	if err := upsertProducts(ctx, pool, categoryIDs); err != nil {
		return errors.Wrap(err, "seed products")
	}

	if err := upsertCoupons(ctx, pool); err != nil {
		return errors.Wrap(err, "seed coupons")
	}

	if err := upsertDemoUser(ctx, pool, demoEmail, demoPassword); err != nil {
		return errors.Wrap(err, "seed demo user")
	}

	return nil
}

func upsertCategories(ctx context.Context, pool *pgxpool.Pool) (map[string]string, error) {
	slog.Info("upserting categories", slog.Int("count", len(seedCategories)))

	ids := make(map[string]string, len(seedCategories))
	for name, description := range seedCategories {
		var id string
		err := pool.QueryRow(ctx, upsertCategorySQL, uuid.New().String(), name, description).Scan(&id)
		if err != nil {
			return nil, errors.Wrapf(err, "upsert category %s", name)
		}
		ids[name] = id

		slog.Info("upserted category", slog.String("id", id), slog.String("name", name))
	}
	return ids, nil
}

func upsertProducts(ctx context.Context, pool *pgxpool.Pool, categoryIDs map[string]string) error {
	slog.Info("upserting products", slog.Int("count", len(seedProducts)))

	for _, p := range seedProducts {
		categoryID, ok := categoryIDs[p.category]
		if !ok {
			return errors.Errorf("unknown category %s for product %s", p.category, p.name)
		}

		// Deterministic IDs keep reruns from duplicating products.
		id := uuid.NewSHA1(uuid.NameSpaceOID, []byte("product:"+p.name)).String()
		_, err := pool.Exec(ctx, upsertProductSQL,
			id, p.name, p.description,
			decimal.RequireFromString(p.price), p.stock,
			decimal.RequireFromString(p.weight), categoryID,
		)
		if err != nil {
			return errors.Wrapf(err, "upsert product %s", p.name)
		}

		slog.Info("upserted product", slog.String("id", id), slog.String("name", p.name))
	}
	return nil
}

func upsertCoupons(ctx context.Context, pool *pgxpool.Pool) error {
	slog.Info("upserting coupons", slog.Int("count", len(seedCoupons)))

	for _, c := range seedCoupons {
		var percentage, amount *decimal.Decimal
		if c.percentage != "" {
			d := decimal.RequireFromString(c.percentage)
			percentage = &d
		}
		if c.amount != "" {
			d := decimal.RequireFromString(c.amount)
			amount = &d
		}

		id := uuid.NewSHA1(uuid.NameSpaceOID, []byte("coupon:"+c.code)).String()
		_, err := pool.Exec(ctx, upsertCouponSQL, id, c.code, percentage, amount, true, c.maxUses)
		if err != nil {
			return errors.Wrapf(err, "upsert coupon %s", c.code)
		}

		slog.Info("upserted coupon", slog.String("code", c.code))
	}
	return nil
}

func upsertDemoUser(ctx context.Context, pool *pgxpool.Pool, email, password string) error {
	slog.Info("upserting demo user", slog.String("email", email))

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hash password")
	}

	_, err = pool.Exec(ctx, upsertUserSQL, uuid.New().String(), email, "demo", string(hash))
	if err != nil {
		return errors.Wrapf(err, "upsert user %s", email)
	}
	return nil
}
