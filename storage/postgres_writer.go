package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"olx-scraper/models"
)

const listingColumns = 9

// PostgresWriter persists extracted listings to PostgreSQL.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS olx_listings (
			list_id      TEXT PRIMARY KEY,
			name         TEXT        NOT NULL,
			price        TEXT        NOT NULL DEFAULT '-',
			date         TEXT        NOT NULL DEFAULT '',
			city         TEXT        NOT NULL DEFAULT '',
			neighborhood TEXT        NOT NULL DEFAULT '',
			state        TEXT        NOT NULL DEFAULT '',
			image_url    TEXT        NOT NULL DEFAULT '',
			link         TEXT        NOT NULL,
			scraped_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_olx_listings_state ON olx_listings(state);
		CREATE INDEX IF NOT EXISTS idx_olx_listings_city  ON olx_listings(city);
	`)
	return err
}

// Write batch-inserts listings. Ads already stored are left untouched.
func (pw *PostgresWriter) Write(listings []*models.Listing) error {
	const batchSize = 50
	for i := 0; i < len(listings); i += batchSize {
		end := i + batchSize
		if end > len(listings) {
			end = len(listings)
		}
		query, args := insertBatchQuery(listings[i:end])
		if _, err := pw.db.Exec(query, args...); err != nil {
			return fmt.Errorf("postgres: insert batch: %w", err)
		}
	}
	return nil
}

func insertBatchQuery(batch []*models.Listing) (string, []interface{}) {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*listingColumns)

	for idx, l := range batch {
		base := idx * listingColumns
		placeholders := make([]string, listingColumns)
		for c := range placeholders {
			placeholders[c] = fmt.Sprintf("$%d", base+c+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")
		valueArgs = append(valueArgs,
			l.ID, l.Name, l.Price, l.Date, l.City, l.Neighborhood, l.State, l.ImageURL, l.Link)
	}

	query := fmt.Sprintf(`
		INSERT INTO olx_listings (list_id, name, price, date, city, neighborhood, state, image_url, link)
		VALUES %s
		ON CONFLICT (list_id) DO NOTHING
	`, strings.Join(valueStrings, ","))
	return query, valueArgs
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

// FetchAll retrieves all stored listings in insertion order.
func (pw *PostgresWriter) FetchAll() ([]*models.Listing, error) {
	rows, err := pw.db.Query(`
		SELECT list_id, name, price, date, city, neighborhood, state, image_url, link
		FROM olx_listings
		ORDER BY scraped_at, list_id
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch all: %w", err)
	}
	defer rows.Close()

	var listings []*models.Listing
	for rows.Next() {
		l := &models.Listing{}
		if err := rows.Scan(
			&l.ID, &l.Name, &l.Price, &l.Date, &l.City,
			&l.Neighborhood, &l.State, &l.ImageURL, &l.Link,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}
