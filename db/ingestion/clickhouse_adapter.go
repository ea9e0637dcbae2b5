// Package ingestion pushes loaded price tables into ClickHouse as fresh
// snapshots and activates them once fully written.
package ingestion

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"rfq-engine/db/clickhouse"
)

// ClickHouseAdapter writes price tables into the snapshot store.
type ClickHouseAdapter struct {
	store *clickhouse.Store
}

// NewClickHouseAdapter creates a new ClickHouse adapter.
func NewClickHouseAdapter(store *clickhouse.Store) *ClickHouseAdapter {
	return &ClickHouseAdapter{store: store}
}

// Input is one price load: the unit and service tables plus where they came
// from.
type Input struct {
	Source        string
	LoadedAt      time.Time
	UnitPrices    map[string]decimal.Decimal
	ServicePrices map[string]decimal.Decimal
}

// Result tracks the outcome of a price ingestion.
type Result struct {
	SnapshotID        uuid.UUID
	UnitPriceCount    int
	ServicePriceCount int
	Duration          time.Duration
	Success           bool
	ErrorMessage      string
}

// IngestPrices creates an inactive snapshot, bulk-inserts both price tables
// and activates the snapshot only after everything landed. A half-written
// snapshot therefore never becomes visible to quotation runs.
func (a *ClickHouseAdapter) IngestPrices(ctx context.Context, input *Input) (*Result, error) {
	started := time.Now()
	result := &Result{}

	snapshot := &clickhouse.PriceSnapshot{
		ID:       uuid.New(),
		Source:   input.Source,
		LoadedAt: input.LoadedAt,
		IsActive: false,
	}
	if err := a.store.CreateSnapshot(ctx, snapshot); err != nil {
		result.ErrorMessage = fmt.Sprintf("failed to create snapshot: %v", err)
		return result, err
	}
	result.SnapshotID = snapshot.ID

	if err := a.store.BulkInsertSKUPrices(ctx, snapshot.ID, input.UnitPrices); err != nil {
		result.ErrorMessage = fmt.Sprintf("failed to insert sku prices: %v", err)
		return result, err
	}
	result.UnitPriceCount = len(input.UnitPrices)

	if err := a.store.BulkInsertServicePrices(ctx, snapshot.ID, input.ServicePrices); err != nil {
		result.ErrorMessage = fmt.Sprintf("failed to insert service prices: %v", err)
		return result, err
	}
	result.ServicePriceCount = len(input.ServicePrices)

	if err := a.store.ActivateSnapshot(ctx, snapshot.ID); err != nil {
		result.ErrorMessage = fmt.Sprintf("failed to activate snapshot: %v", err)
		return result, err
	}

	result.Success = true
	result.Duration = time.Since(started)
	return result, nil
}
