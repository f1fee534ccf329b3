package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"baires-rentals/models"
)

// PostgresArchive keeps a long-term record of every clean listing the
// pipeline has ever produced. The daily clean file is overwritten each
// run; the archive is where history accumulates for later analysis.
type PostgresArchive struct {
	pool *pgxpool.Pool
}

func NewPostgresArchive(databaseURL string) (*PostgresArchive, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect postgres: %w", err)
	}

	return &PostgresArchive{pool: pool}, nil
}

func (a *PostgresArchive) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
}

func (a *PostgresArchive) EnsureSchema() error {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	sql := `
	CREATE TABLE IF NOT EXISTS listings (
		id BIGSERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		price_usd NUMERIC(12,2) NOT NULL,
		size_m2 NUMERIC(8,1),
		address TEXT,
		listing_date DATE NOT NULL,
		url TEXT NOT NULL UNIQUE,
		source TEXT NOT NULL,
		archived_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_listings_price_usd ON listings(price_usd);
	CREATE INDEX IF NOT EXISTS idx_listings_listing_date ON listings(listing_date);
	`

	if _, err := a.pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}

	return nil
}

// ArchiveBatch inserts the run's clean listings, silently skipping URLs
// already archived on earlier days.
func (a *PostgresArchive) ArchiveBatch(listings []models.CleanListing) error {
	if len(listings) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	batch := &pgx.Batch{}
	insertSQL := `
	INSERT INTO listings (title, price_usd, size_m2, address, listing_date, url, source)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (url) DO NOTHING;
	`

	enqueued := 0
	for _, l := range listings {
		title := strings.TrimSpace(l.Title)
		url := strings.TrimSpace(l.URL)
		if title == "" || url == "" {
			continue
		}

		var size interface{}
		if l.SizeM2 != nil {
			size = *l.SizeM2
		}

		batch.Queue(
			insertSQL,
			title,
			l.PriceUSD,
			size,
			strings.TrimSpace(l.Address),
			l.Date,
			url,
			strings.TrimSpace(strings.ToLower(l.Source)),
		)
		enqueued++
	}

	if enqueued == 0 {
		return nil
	}

	results := a.pool.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < enqueued; i++ {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("batch insert failed at row %d: %w", i, err)
		}
	}

	return nil
}
