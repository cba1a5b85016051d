package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/gold-envelope/internal/database"
	"github.com/yourusername/gold-envelope/internal/models"
)

// PostgresOddsRepository implements OddsRepository for PostgreSQL
type PostgresOddsRepository struct {
	db *database.DB
}

// NewPostgresOddsRepository creates a new odds repository
func NewPostgresOddsRepository(db *database.DB) OddsRepository {
	return &PostgresOddsRepository{db: db}
}

const oddsColumns = "category_id, nominee_id, nominee_name, nominee_film, odds_percentage, snapshot_time"

// Insert appends a single odds snapshot. No dedup: every refresh cycle adds
// a row even if the percentage is unchanged.
func (o *PostgresOddsRepository) Insert(ctx context.Context, snapshot *models.OddsSnapshot) error {
	query := `
		INSERT INTO odds_snapshots (category_id, nominee_id, nominee_name, nominee_film, odds_percentage, snapshot_time)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := o.db.GetPool().Exec(ctx, query,
		snapshot.CategoryID, snapshot.NomineeID, snapshot.NomineeName,
		snapshot.NomineeFilm, snapshot.OddsPercentage, snapshot.SnapshotTime,
	)
	if err != nil {
		return fmt.Errorf("failed to insert odds snapshot: %w", err)
	}

	return nil
}

// InsertBatch appends multiple odds snapshots using high-performance batch insert
func (o *PostgresOddsRepository) InsertBatch(ctx context.Context, snapshots []*models.OddsSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	// Use COPY for high-performance bulk insert
	columns := []string{"category_id", "nominee_id", "nominee_name", "nominee_film", "odds_percentage", "snapshot_time"}

	copyFromSource := make([][]interface{}, len(snapshots))
	for i, s := range snapshots {
		copyFromSource[i] = []interface{}{
			s.CategoryID, s.NomineeID, s.NomineeName, s.NomineeFilm, s.OddsPercentage, s.SnapshotTime,
		}
	}

	count, err := o.db.GetPool().CopyFrom(ctx, pgx.Identifier{"odds_snapshots"}, columns, pgx.CopyFromRows(copyFromSource))
	if err != nil {
		return fmt.Errorf("failed to batch insert odds snapshots: %w", err)
	}

	if count != int64(len(snapshots)) {
		return fmt.Errorf("inserted %d rows, expected %d", count, len(snapshots))
	}

	return nil
}

// GetLatest retrieves the most recent snapshot for a (category, nominee) pair
func (o *PostgresOddsRepository) GetLatest(ctx context.Context, categoryID, nomineeID string) (*models.OddsSnapshot, error) {
	query := `
		SELECT ` + oddsColumns + `
		FROM odds_snapshots
		WHERE category_id = $1 AND nominee_id = $2
		ORDER BY snapshot_time DESC
		LIMIT 1
	`

	return o.scanOne(o.db.GetPool().QueryRow(ctx, query, categoryID, nomineeID))
}

// GetAtTime retrieves the latest snapshot taken at or before the given time
func (o *PostgresOddsRepository) GetAtTime(ctx context.Context, categoryID, nomineeID string, at time.Time) (*models.OddsSnapshot, error) {
	query := `
		SELECT ` + oddsColumns + `
		FROM odds_snapshots
		WHERE category_id = $1 AND nominee_id = $2 AND snapshot_time <= $3
		ORDER BY snapshot_time DESC
		LIMIT 1
	`

	return o.scanOne(o.db.GetPool().QueryRow(ctx, query, categoryID, nomineeID, at))
}

// GetLatestForPairs retrieves the most recent snapshot per distinct pair in
// one round trip. DISTINCT ON with the (category_id, nominee_id,
// snapshot_time DESC) index keeps this O(distinct pairs), not O(rows).
func (o *PostgresOddsRepository) GetLatestForPairs(ctx context.Context, pairs []models.CategoryNominee) (map[models.CategoryNominee]*models.OddsSnapshot, error) {
	result := make(map[models.CategoryNominee]*models.OddsSnapshot, len(pairs))
	if len(pairs) == 0 {
		return result, nil
	}

	categoryIDs := make([]string, len(pairs))
	nomineeIDs := make([]string, len(pairs))
	for i, p := range pairs {
		categoryIDs[i] = p.CategoryID
		nomineeIDs[i] = p.NomineeID
	}

	query := `
		SELECT DISTINCT ON (o.category_id, o.nominee_id)
			o.category_id, o.nominee_id, o.nominee_name, o.nominee_film, o.odds_percentage, o.snapshot_time
		FROM odds_snapshots o
		JOIN unnest($1::text[], $2::text[]) AS p(category_id, nominee_id)
			ON o.category_id = p.category_id AND o.nominee_id = p.nominee_id
		ORDER BY o.category_id, o.nominee_id, o.snapshot_time DESC
	`

	rows, err := o.db.GetPool().Query(ctx, query, categoryIDs, nomineeIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest odds for pairs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		snapshot := &models.OddsSnapshot{}
		err := rows.Scan(
			&snapshot.CategoryID, &snapshot.NomineeID, &snapshot.NomineeName,
			&snapshot.NomineeFilm, &snapshot.OddsPercentage, &snapshot.SnapshotTime,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan odds snapshot: %w", err)
		}
		result[snapshot.Pair()] = snapshot
	}

	return result, rows.Err()
}

// GetTimeSeries retrieves snapshots for a pair within a time range, oldest first
func (o *PostgresOddsRepository) GetTimeSeries(ctx context.Context, categoryID, nomineeID string, start, end time.Time) ([]*models.OddsSnapshot, error) {
	query := `
		SELECT ` + oddsColumns + `
		FROM odds_snapshots
		WHERE category_id = $1 AND nominee_id = $2 AND snapshot_time >= $3 AND snapshot_time <= $4
		ORDER BY snapshot_time ASC
	`

	rows, err := o.db.GetPool().Query(ctx, query, categoryID, nomineeID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query odds time series: %w", err)
	}
	defer rows.Close()

	var snapshots []*models.OddsSnapshot
	for rows.Next() {
		snapshot := &models.OddsSnapshot{}
		err := rows.Scan(
			&snapshot.CategoryID, &snapshot.NomineeID, &snapshot.NomineeName,
			&snapshot.NomineeFilm, &snapshot.OddsPercentage, &snapshot.SnapshotTime,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan odds snapshot: %w", err)
		}
		snapshots = append(snapshots, snapshot)
	}

	return snapshots, rows.Err()
}

func (o *PostgresOddsRepository) scanOne(row pgx.Row) (*models.OddsSnapshot, error) {
	snapshot := &models.OddsSnapshot{}
	err := row.Scan(
		&snapshot.CategoryID, &snapshot.NomineeID, &snapshot.NomineeName,
		&snapshot.NomineeFilm, &snapshot.OddsPercentage, &snapshot.SnapshotTime,
	)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get odds snapshot: %w", err)
	}

	return snapshot, nil
}
