package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotConfigured indicates the storage pool was not initialised.
	ErrNotConfigured = errors.New("storage: pool not configured")
)

const (
	insertOpportunitySQL = `INSERT INTO opportunities (
        dex1,
        dex2,
        token_in,
        token_out,
        amount_in,
        gross_output,
        expected_profit,
        profit_pct,
        gas_cost,
        is_profitable,
        detected_at
    ) VALUES (
        $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11
    );`

	listRecentOpportunitiesSQL = `SELECT
        id,
        dex1,
        dex2,
        token_in,
        token_out,
        amount_in,
        gross_output,
        expected_profit,
        profit_pct,
        gas_cost,
        is_profitable,
        detected_at,
        created_at
    FROM opportunities
    ORDER BY detected_at DESC, id DESC
    LIMIT $1;`

	listOpportunitiesBetweenSQL = `SELECT
        id,
        dex1,
        dex2,
        token_in,
        token_out,
        amount_in,
        gross_output,
        expected_profit,
        profit_pct,
        gas_cost,
        is_profitable,
        detected_at,
        created_at
    FROM opportunities
    WHERE detected_at >= $1
      AND detected_at < $2
    ORDER BY detected_at;`

	countOpportunitiesSQL = `SELECT COUNT(*) FROM opportunities;`

	deleteOpportunitiesBeforeSQL = `DELETE FROM opportunities WHERE detected_at < $1;`

	insertBundleSQL = `INSERT INTO bundles (
        merkle_root,
        hash_algo,
        tx_count,
        target_block,
        relays,
        submitted
    ) VALUES (
        $1,$2,$3,$4,$5,$6
    )
    RETURNING id;`

	markBundleSubmittedSQL = `UPDATE bundles
    SET submitted = TRUE
    WHERE id = $1;`

	listRecentBundlesSQL = `SELECT
        id,
        merkle_root,
        hash_algo,
        tx_count,
        target_block,
        relays,
        submitted,
        created_at
    FROM bundles
    ORDER BY created_at DESC
    LIMIT $1;`

	tryAdvisoryLockSQL = `SELECT pg_try_advisory_lock($1);`
	advisoryUnlockSQL  = `SELECT pg_advisory_unlock($1);`
)

// OpportunityStore defines operations for opportunity persistence.
type OpportunityStore interface {
	InsertOpportunities(ctx context.Context, records []OpportunityRecord) (int64, error)
	ListRecentOpportunities(ctx context.Context, limit int) ([]OpportunityRecord, error)
	ListOpportunitiesBetween(ctx context.Context, from, to time.Time) ([]OpportunityRecord, error)
	CountOpportunities(ctx context.Context) (int64, error)
	DeleteOpportunitiesBefore(ctx context.Context, olderThan time.Time) (int64, error)
}

// BundleStore defines operations for bundle auditing.
type BundleStore interface {
	InsertBundle(ctx context.Context, rec BundleRecord) (int64, error)
	MarkBundleSubmitted(ctx context.Context, id int64) error
	ListRecentBundles(ctx context.Context, limit int) ([]BundleRecord, error)
}

// AdvisoryLocker exposes advisory lock helpers.
type AdvisoryLocker interface {
	TryAdvisoryLock(ctx context.Context, key int64) (unlock func(), acquired bool, err error)
}

// Store aggregates access to opportunities and bundles.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wires a pgx pool into a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// TryAdvisoryLock attempts to acquire a postgres advisory lock and returns a release func.
func (s *Store) TryAdvisoryLock(ctx context.Context, key int64) (func(), bool, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, false, err
	}

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("acquire connection: %w", err)
	}

	var acquired bool
	if err := conn.QueryRow(ctx, tryAdvisoryLockSQL, key).Scan(&acquired); err != nil {
		conn.Release()
		return nil, false, fmt.Errorf("try advisory lock: %w", err)
	}
	if !acquired {
		conn.Release()
		return nil, false, nil
	}

	unlock := func() {
		ctxUnlock, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if _, err := conn.Exec(ctxUnlock, advisoryUnlockSQL, key); err != nil {
			// unlock best effort; log omitted in storage package
		}
		conn.Release()
	}
	return unlock, true, nil
}

func (s *Store) getPool() (*pgxpool.Pool, error) {
	if s == nil || s.pool == nil {
		return nil, ErrNotConfigured
	}
	return s.pool, nil
}

// InsertOpportunities persists a batch of evaluated records and reports how
// many rows were written.
func (s *Store) InsertOpportunities(ctx context.Context, records []OpportunityRecord) (int64, error) {
	pool, err := s.getPool()
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(insertOpportunitySQL,
			rec.Dex1,
			rec.Dex2,
			rec.TokenIn,
			rec.TokenOut,
			rec.AmountIn.String(),
			rec.GrossOutput.String(),
			rec.ExpectedProfit.String(),
			rec.ProfitPercent.String(),
			rec.GasCost.String(),
			rec.Profitable,
			rec.DetectedAt,
		)
	}

	results := pool.SendBatch(ctx, batch)
	defer results.Close()

	var inserted int64
	for range records {
		tag, execErr := results.Exec()
		if execErr != nil {
			return inserted, fmt.Errorf("insert opportunity: %w", execErr)
		}
		inserted += tag.RowsAffected()
	}
	return inserted, nil
}

// ListRecentOpportunities lists the most recent records ordered by descending detection time.
func (s *Store) ListRecentOpportunities(ctx context.Context, limit int) ([]OpportunityRecord, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listRecentOpportunitiesSQL, limit)
	if queryErr != nil {
		return nil, fmt.Errorf("list recent opportunities: %w", queryErr)
	}
	defer rows.Close()

	records := make([]OpportunityRecord, 0, limit)
	for rows.Next() {
		rec, scanErr := scanOpportunity(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		records = append(records, rec)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return records, nil
}

// ListOpportunitiesBetween lists records within a detection-time window.
func (s *Store) ListOpportunitiesBetween(ctx context.Context, from, to time.Time) ([]OpportunityRecord, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listOpportunitiesBetweenSQL, from, to)
	if queryErr != nil {
		return nil, fmt.Errorf("list opportunities between: %w", queryErr)
	}
	defer rows.Close()

	records := make([]OpportunityRecord, 0)
	for rows.Next() {
		rec, scanErr := scanOpportunity(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		records = append(records, rec)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return records, nil
}

// CountOpportunities counts stored records.
func (s *Store) CountOpportunities(ctx context.Context) (int64, error) {
	pool, err := s.getPool()
	if err != nil {
		return 0, err
	}
	var count int64
	if scanErr := pool.QueryRow(ctx, countOpportunitiesSQL).Scan(&count); scanErr != nil {
		return 0, fmt.Errorf("count opportunities: %w", scanErr)
	}
	return count, nil
}

// DeleteOpportunitiesBefore removes historical records and reports how many went.
func (s *Store) DeleteOpportunitiesBefore(ctx context.Context, olderThan time.Time) (int64, error) {
	pool, err := s.getPool()
	if err != nil {
		return 0, err
	}
	tag, execErr := pool.Exec(ctx, deleteOpportunitiesBeforeSQL, olderThan)
	if execErr != nil {
		return 0, fmt.Errorf("delete opportunities before: %w", execErr)
	}
	return tag.RowsAffected(), nil
}

// InsertBundle persists a bundle audit row and returns its id.
func (s *Store) InsertBundle(ctx context.Context, rec BundleRecord) (int64, error) {
	pool, err := s.getPool()
	if err != nil {
		return 0, err
	}

	var id int64
	scanErr := pool.QueryRow(ctx, insertBundleSQL,
		rec.MerkleRoot,
		rec.HashAlgo,
		rec.TxCount,
		rec.TargetBlock,
		rec.Relays,
		rec.Submitted,
	).Scan(&id)
	if scanErr != nil {
		return 0, fmt.Errorf("insert bundle: %w", scanErr)
	}
	return id, nil
}

// MarkBundleSubmitted flags a bundle as delivered to its relays.
func (s *Store) MarkBundleSubmitted(ctx context.Context, id int64) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}
	cmdTag, execErr := pool.Exec(ctx, markBundleSubmittedSQL, id)
	if execErr != nil {
		return fmt.Errorf("mark bundle submitted: %w", execErr)
	}
	if cmdTag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ListRecentBundles lists most recent bundles.
func (s *Store) ListRecentBundles(ctx context.Context, limit int) ([]BundleRecord, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listRecentBundlesSQL, limit)
	if queryErr != nil {
		return nil, fmt.Errorf("list recent bundles: %w", queryErr)
	}
	defer rows.Close()

	bundles := make([]BundleRecord, 0, limit)
	for rows.Next() {
		var rec BundleRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.MerkleRoot,
			&rec.HashAlgo,
			&rec.TxCount,
			&rec.TargetBlock,
			&rec.Relays,
			&rec.Submitted,
			&rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		bundles = append(bundles, rec)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return bundles, nil
}

func scanOpportunity(rows pgx.Rows) (OpportunityRecord, error) {
	var (
		rec          OpportunityRecord
		amountStr    string
		grossStr     string
		profitStr    string
		profitPctStr string
		gasStr       string
	)

	if err := rows.Scan(
		&rec.ID,
		&rec.Dex1,
		&rec.Dex2,
		&rec.TokenIn,
		&rec.TokenOut,
		&amountStr,
		&grossStr,
		&profitStr,
		&profitPctStr,
		&gasStr,
		&rec.Profitable,
		&rec.DetectedAt,
		&rec.CreatedAt,
	); err != nil {
		return OpportunityRecord{}, err
	}

	var err error
	rec.AmountIn, err = decimal.NewFromString(amountStr)
	if err != nil {
		return OpportunityRecord{}, fmt.Errorf("parse amount in: %w", err)
	}
	rec.GrossOutput, err = decimal.NewFromString(grossStr)
	if err != nil {
		return OpportunityRecord{}, fmt.Errorf("parse gross output: %w", err)
	}
	rec.ExpectedProfit, err = decimal.NewFromString(profitStr)
	if err != nil {
		return OpportunityRecord{}, fmt.Errorf("parse expected profit: %w", err)
	}
	rec.ProfitPercent, err = decimal.NewFromString(profitPctStr)
	if err != nil {
		return OpportunityRecord{}, fmt.Errorf("parse profit pct: %w", err)
	}
	rec.GasCost, err = decimal.NewFromString(gasStr)
	if err != nil {
		return OpportunityRecord{}, fmt.Errorf("parse gas cost: %w", err)
	}

	return rec, nil
}
