// Command coupon-ingest loads promo codes from large gzip dumps into the
// coupons table. A code counts as valid when it appears in at least two of
// the three dump files; membership across files is tested with bloom filters
// so the multi-gigabyte dumps never need to fit in memory.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/bits"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/shopline/internal/repository"
)

const (
	bloomCapacity = 120_000_000
	bloomFPR      = 0.001
	dumpCount     = 3
	logEvery      = 10_000_000
	minCodeLen    = 8
	maxCodeLen    = 10

	upsertCouponSQL = `INSERT INTO coupons
		(id, code, discount_percentage, discount_amount, is_active)
		VALUES ($1, $2, $3, $4, TRUE)
		ON CONFLICT (code) DO UPDATE SET
			discount_percentage = EXCLUDED.discount_percentage,
			discount_amount = EXCLUDED.discount_amount,
			is_active = TRUE`
)

// codeRule describes the discount to apply for a known promo code. Exactly
// one of percentage or amount is set.
type codeRule struct {
	percentage string
	amount     string
}

var codeRules = map[string]codeRule{
	"FIFTYOFF": {percentage: "50"},
	"SIXTYOFF": {percentage: "60"},
	"GNULINUX": {percentage: "15"},
	"HAPPYHRS": {percentage: "18"},
	"OVER9000": {amount: "9.00"},
	"TENSPOT1": {amount: "10.00"},
}

// Codes without a dedicated rule get a flat 10% off.
var defaultRule = codeRule{percentage: "10"}

func main() {
	var (
		dataDir     string
		databaseURL string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing couponbaseN.gz files")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
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

	if err := run(ctx, dataDir, databaseURL); err != nil {
		slog.Error("coupon ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("coupon ingest completed successfully")
}

func run(ctx context.Context, dataDir, databaseURL string) error {
	dumps := make([]string, dumpCount)
	for i := range dumps {
		dumps[i] = filepath.Join(dataDir, fmt.Sprintf("couponbase%d.gz", i+1))
	}
	for _, d := range dumps {
		if _, err := os.Stat(d); err != nil {
			return errors.Wrapf(err, "check file %s", d)
		}
	}

	slog.Info("pass 1: building bloom filters", slog.Int("files", dumpCount))
	filters, err := buildFilters(ctx, dumps)
	if err != nil {
		return errors.Wrap(err, "build bloom filters")
	}

	slog.Info("pass 2: cross-referencing dumps")
	codes, err := collectValidCodes(ctx, dumps, filters)
	if err != nil {
		return errors.Wrap(err, "collect valid codes")
	}
	slog.Info("valid codes found", slog.Int("count", len(codes)))

	if len(codes) == 0 {
		slog.Info("nothing to insert")
		return nil
	}

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	return writeCoupons(ctx, pool, codes)
}

// wellFormed filters obvious garbage lines before they hit the filters.
func wellFormed(code string) bool {
	return len(code) >= minCodeLen && len(code) <= maxCodeLen
}

// buildFilters streams every dump once and builds one bloom filter per dump,
// all dumps in parallel.
func buildFilters(ctx context.Context, dumps []string) ([]*bloom.BloomFilter, error) {
	filters := make([]*bloom.BloomFilter, len(dumps))

	g, ctx := errgroup.WithContext(ctx)
	for i, d := range dumps {
		g.Go(func() error {
			filter := bloom.NewWithEstimates(bloomCapacity, bloomFPR)
			var seen uint64

			err := forEachLine(ctx, d, func(code string) {
				if !wellFormed(code) {
					return
				}
				filter.AddString(code)
				if seen++; seen%logEvery == 0 {
					slog.Info("pass 1 progress", slog.Int("file", i+1), slog.Uint64("codes", seen))
				}
			})
			if err != nil {
				return errors.Wrapf(err, "build filter for file %d", i+1)
			}

			slog.Info("pass 1 file done", slog.Int("file", i+1), slog.Uint64("codes", seen))
			filters[i] = filter
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return filters, nil
}

// collectValidCodes streams every dump a second time, testing each code
// against the other dumps' filters. Per dump it records a bitmask of which
// file the code was seen in; merged masks with two or more bits set mark a
// code present in at least two dumps.
func collectValidCodes(ctx context.Context, dumps []string, filters []*bloom.BloomFilter) ([]string, error) {
	perDump := make([]map[string]uint, len(dumps))

	g, ctx := errgroup.WithContext(ctx)
	for i, d := range dumps {
		g.Go(func() error {
			candidates := make(map[string]uint)
			bit := uint(1) << uint(i)
			var seen uint64

			err := forEachLine(ctx, d, func(code string) {
				if !wellFormed(code) {
					return
				}
				if seen++; seen%logEvery == 0 {
					slog.Info("pass 2 progress", slog.Int("file", i+1), slog.Uint64("codes", seen))
				}
				for j, f := range filters {
					if j == i {
						continue
					}
					if f.TestString(code) {
						candidates[code] |= bit
						break
					}
				}
			})
			if err != nil {
				return errors.Wrapf(err, "scan file %d", i+1)
			}

			slog.Info("pass 2 file done",
				slog.Int("file", i+1),
				slog.Uint64("codes", seen),
				slog.Int("candidates", len(candidates)),
			)
			perDump[i] = candidates
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make(map[string]uint)
	for _, candidates := range perDump {
		for code, mask := range candidates {
			merged[code] |= mask
		}
	}

	var valid []string
	for code, mask := range merged {
		if bits.OnesCount(mask) >= 2 {
			valid = append(valid, code)
		}
	}
	return valid, nil
}

// forEachLine streams a gzip dump line by line.
func forEachLine(ctx context.Context, path string, fn func(code string)) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	scanner := bufio.NewScanner(gz)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		fn(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "scan %s", path)
	}
	return nil
}

// writeCoupons upserts every valid code with its discount rule. Ids are
// derived from the code so reruns hit the same rows.
func writeCoupons(ctx context.Context, pool *pgxpool.Pool, codes []string) error {
	slog.Info("writing coupons", slog.Int("count", len(codes)))

	for i, code := range codes {
		rule, ok := codeRules[code]
		if !ok {
			rule = defaultRule
		}

		var percentage, amount *decimal.Decimal
		if rule.percentage != "" {
			d, err := decimal.NewFromString(rule.percentage)
			if err != nil {
				return errors.Wrapf(err, "parse percentage for code %s", code)
			}
			percentage = &d
		} else {
			d, err := decimal.NewFromString(rule.amount)
			if err != nil {
				return errors.Wrapf(err, "parse amount for code %s", code)
			}
			amount = &d
		}

		id := uuid.NewSHA1(uuid.NameSpaceOID, []byte("coupon:"+code)).String()
		if _, err := pool.Exec(ctx, upsertCouponSQL, id, code, percentage, amount); err != nil {
			return errors.Wrapf(err, "upsert coupon %s", code)
		}

		if (i+1)%100 == 0 || i+1 == len(codes) {
			slog.Info("write progress", slog.Int("written", i+1), slog.Int("total", len(codes)))
		}
	}
	return nil
}
