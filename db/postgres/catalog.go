// Package postgres serves the supplier product catalog from PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq"

	"rfq-engine/pkg/api"
)

// CatalogStore reads catalog products from the products table. Features are
// stored as a jsonb array so new spec columns never need a migration.
type CatalogStore struct {
	db *sql.DB
}

// NewCatalogStore opens a connection pool against the given DSN.
func NewCatalogStore(dsn string) (*CatalogStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	return &CatalogStore{db: db}, nil
}

// Ping checks database connectivity.
func (s *CatalogStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the connection pool.
func (s *CatalogStore) Close() error {
	return s.db.Close()
}

// LoadCatalog reads every product in insertion order. The result feeds the
// in-memory retriever; catalog order is the retrieval tie-break order, so
// the ORDER BY here is part of the contract.
func (s *CatalogStore) LoadCatalog(ctx context.Context) ([]api.CandidateProduct, error) {
	query := `
		SELECT sku_id, product_name, category, features
		FROM products
		ORDER BY id
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var catalog []api.CandidateProduct
	for rows.Next() {
		var product api.CandidateProduct
		var featuresJSON []byte
		if err := rows.Scan(&product.SKUID, &product.ProductName, &product.Category, &featuresJSON); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		if len(featuresJSON) > 0 {
			if err := json.Unmarshal(featuresJSON, &product.Features); err != nil {
				return nil, fmt.Errorf("bad features for %s: %w", product.SKUID, err)
			}
		}
		catalog = append(catalog, product)
	}
	return catalog, rows.Err()
}

// UpsertProduct inserts or replaces one catalog product.
func (s *CatalogStore) UpsertProduct(ctx context.Context, product api.CandidateProduct) error {
	featuresJSON, err := json.Marshal(product.Features)
	if err != nil {
		return fmt.Errorf("failed to marshal features for %s: %w", product.SKUID, err)
	}
	query := `
		INSERT INTO products (sku_id, product_name, category, features)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (sku_id) DO UPDATE
		SET product_name = EXCLUDED.product_name,
		    category = EXCLUDED.category,
		    features = EXCLUDED.features
	`
	if _, err := s.db.ExecContext(ctx, query, product.SKUID, product.ProductName, product.Category, featuresJSON); err != nil {
		return fmt.Errorf("failed to upsert product %s: %w", product.SKUID, err)
	}
	return nil
}
