// Package clickhouse stores SKU and ancillary-service price tables as
// point-in-time snapshots. One snapshot is active at a time; quotation runs
// read the active snapshot into an immutable in-memory table.
package clickhouse

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"rfq-engine/decision/pricing"
)

// PriceSnapshot is one point-in-time capture of the full price list.
type PriceSnapshot struct {
	ID        uuid.UUID `ch:"id"`
	Source    string    `ch:"source"`
	LoadedAt  time.Time `ch:"loaded_at"`
	IsActive  bool      `ch:"is_active"`
	CreatedAt time.Time `ch:"created_at"`
}

// SKUPrice is one product unit price within a snapshot.
type SKUPrice struct {
	SnapshotID uuid.UUID       `ch:"snapshot_id"`
	SKUID      string          `ch:"sku_id"`
	UnitPrice  decimal.Decimal `ch:"unit_price"`
	CreatedAt  time.Time       `ch:"created_at"`
}

// ServicePrice is one ancillary-service batch price within a snapshot.
type ServicePrice struct {
	SnapshotID  uuid.UUID       `ch:"snapshot_id"`
	ServiceName string          `ch:"service_name"`
	Price       decimal.Decimal `ch:"price"`
	CreatedAt   time.Time       `ch:"created_at"`
}

// Config holds ClickHouse connection configuration.
type Config struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	Debug    bool
}

// DefaultConfig returns default development configuration.
func DefaultConfig() *Config {
	return &Config{
		Host:     "localhost",
		Port:     9000,
		Database: "rfq",
		Username: "default",
		Password: "",
		Debug:    false,
	}
}

// Store implements snapshot-versioned price storage on ClickHouse.
type Store struct {
	conn clickhouse.Conn
	cfg  *Config
}

// NewStore creates a new ClickHouse pricing store.
func NewStore(cfg *Config) (*Store, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Debug: cfg.Debug,
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}
	return &Store{conn: conn, cfg: cfg}, nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.conn.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// =============================================================================
// SNAPSHOT OPERATIONS
// =============================================================================

// CreateSnapshot inserts a new, inactive price snapshot.
func (s *Store) CreateSnapshot(ctx context.Context, snapshot *PriceSnapshot) error {
	if snapshot.ID == uuid.Nil {
		snapshot.ID = uuid.New()
	}
	query := `
		INSERT INTO price_snapshots (id, source, loaded_at, is_active, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	return s.conn.Exec(ctx, query,
		snapshot.ID,
		snapshot.Source,
		snapshot.LoadedAt,
		boolToUInt8(snapshot.IsActive),
		time.Now(),
	)
}

// GetSnapshot retrieves a snapshot by ID, or nil when absent.
func (s *Store) GetSnapshot(ctx context.Context, id uuid.UUID) (*PriceSnapshot, error) {
	query := `
		SELECT id, source, loaded_at, is_active, created_at
		FROM price_snapshots FINAL
		WHERE id = ? AND _deleted = 0
	`
	return s.scanSnapshot(s.conn.QueryRow(ctx, query, id))
}

// GetActiveSnapshot retrieves the currently active snapshot, or nil when no
// snapshot has been activated yet.
func (s *Store) GetActiveSnapshot(ctx context.Context) (*PriceSnapshot, error) {
	query := `
		SELECT id, source, loaded_at, is_active, created_at
		FROM price_snapshots FINAL
		WHERE is_active = 1 AND _deleted = 0
		ORDER BY created_at DESC
		LIMIT 1
	`
	return s.scanSnapshot(s.conn.QueryRow(ctx, query))
}

// ActivateSnapshot marks a snapshot active and deactivates every other one.
func (s *Store) ActivateSnapshot(ctx context.Context, id uuid.UUID) error {
	snapshot, err := s.GetSnapshot(ctx, id)
	if err != nil {
		return err
	}
	if snapshot == nil {
		return fmt.Errorf("snapshot not found: %s", id)
	}

	deactivateQuery := `
		INSERT INTO price_snapshots
		SELECT id, source, loaded_at, 0 as is_active, created_at,
			   _version + 1 as _version, _deleted
		FROM price_snapshots FINAL
		WHERE is_active = 1 AND _deleted = 0 AND id != ?
	`
	if err := s.conn.Exec(ctx, deactivateQuery, id); err != nil {
		return fmt.Errorf("failed to deactivate snapshots: %w", err)
	}

	activateQuery := `
		INSERT INTO price_snapshots
		SELECT id, source, loaded_at, 1 as is_active, created_at,
			   _version + 1 as _version, _deleted
		FROM price_snapshots FINAL
		WHERE id = ?
	`
	return s.conn.Exec(ctx, activateQuery, id)
}

// ListSnapshots lists all snapshots, newest first.
func (s *Store) ListSnapshots(ctx context.Context) ([]*PriceSnapshot, error) {
	query := `
		SELECT id, source, loaded_at, is_active, created_at
		FROM price_snapshots FINAL
		WHERE _deleted = 0
		ORDER BY created_at DESC
	`
	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []*PriceSnapshot
	for rows.Next() {
		var snap PriceSnapshot
		var isActive uint8
		if err := rows.Scan(&snap.ID, &snap.Source, &snap.LoadedAt, &isActive, &snap.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snap.IsActive = isActive == 1
		snapshots = append(snapshots, &snap)
	}
	return snapshots, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (s *Store) scanSnapshot(row rowScanner) (*PriceSnapshot, error) {
	var snap PriceSnapshot
	var isActive uint8
	err := row.Scan(&snap.ID, &snap.Source, &snap.LoadedAt, &isActive, &snap.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}
	snap.IsActive = isActive == 1
	return &snap, nil
}

// =============================================================================
// PRICE OPERATIONS
// =============================================================================

// BulkInsertSKUPrices batch-inserts unit prices for a snapshot.
func (s *Store) BulkInsertSKUPrices(ctx context.Context, snapshotID uuid.UUID, prices map[string]decimal.Decimal) error {
	if len(prices) == 0 {
		return nil
	}
	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO sku_prices (snapshot_id, sku_id, unit_price, created_at)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare batch: %w", err)
	}
	now := time.Now()
	for sku, price := range prices {
		if err := batch.Append(snapshotID, sku, price, now); err != nil {
			return fmt.Errorf("failed to append to batch: %w", err)
		}
	}
	return batch.Send()
}

// BulkInsertServicePrices batch-inserts ancillary-service prices for a
// snapshot.
func (s *Store) BulkInsertServicePrices(ctx context.Context, snapshotID uuid.UUID, prices map[string]decimal.Decimal) error {
	if len(prices) == 0 {
		return nil
	}
	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO service_prices (snapshot_id, service_name, price, created_at)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare batch: %w", err)
	}
	now := time.Now()
	for name, price := range prices {
		if err := batch.Append(snapshotID, name, price, now); err != nil {
			return fmt.Errorf("failed to append to batch: %w", err)
		}
	}
	return batch.Send()
}

// CountSKUPrices returns the number of unit prices in a snapshot.
func (s *Store) CountSKUPrices(ctx context.Context, snapshotID uuid.UUID) (int, error) {
	query := `SELECT count() FROM sku_prices FINAL WHERE snapshot_id = ? AND _deleted = 0`
	var count uint64
	if err := s.conn.QueryRow(ctx, query, snapshotID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count sku prices: %w", err)
	}
	return int(count), nil
}

// LoadTable reads the active snapshot into an immutable in-memory pricing
// table. Returns an error when no snapshot is active; callers decide whether
// to fall back to file-based prices.
func (s *Store) LoadTable(ctx context.Context) (*pricing.Table, error) {
	snapshot, err := s.GetActiveSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		return nil, fmt.Errorf("no active price snapshot")
	}
	return s.LoadTableAt(ctx, snapshot.ID)
}

// LoadTableAt reads a specific snapshot into an in-memory pricing table.
func (s *Store) LoadTableAt(ctx context.Context, snapshotID uuid.UUID) (*pricing.Table, error) {
	unitPrices, err := s.querySKUPrices(ctx, snapshotID)
	if err != nil {
		return nil, err
	}
	servicePrices, err := s.queryServicePrices(ctx, snapshotID)
	if err != nil {
		return nil, err
	}
	return pricing.NewTable(unitPrices, servicePrices), nil
}

func (s *Store) querySKUPrices(ctx context.Context, snapshotID uuid.UUID) (map[string]decimal.Decimal, error) {
	query := `
		SELECT sku_id, unit_price
		FROM sku_prices FINAL
		WHERE snapshot_id = ? AND _deleted = 0
	`
	rows, err := s.conn.Query(ctx, query, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sku prices: %w", err)
	}
	defer rows.Close()

	prices := make(map[string]decimal.Decimal)
	for rows.Next() {
		var sku string
		var price decimal.Decimal
		if err := rows.Scan(&sku, &price); err != nil {
			return nil, fmt.Errorf("failed to scan sku price: %w", err)
		}
		prices[sku] = price
	}
	return prices, nil
}

func (s *Store) queryServicePrices(ctx context.Context, snapshotID uuid.UUID) (map[string]decimal.Decimal, error) {
	query := `
		SELECT service_name, price
		FROM service_prices FINAL
		WHERE snapshot_id = ? AND _deleted = 0
	`
	rows, err := s.conn.Query(ctx, query, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("failed to query service prices: %w", err)
	}
	defer rows.Close()

	prices := make(map[string]decimal.Decimal)
	for rows.Next() {
		var name string
		var price decimal.Decimal
		if err := rows.Scan(&name, &price); err != nil {
			return nil, fmt.Errorf("failed to scan service price: %w", err)
		}
		prices[name] = price
	}
	return prices, nil
}

func boolToUInt8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
