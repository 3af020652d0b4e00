package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tryvailo/carehome-etl/internal/domain"
)

// Postgres persists normalized facilities, keyed by location ID. It
// implements pipeline.BatchLoader.
//
// Scalar columns cover the query/view surface; the three list aggregates and
// the full normalized record are stored as JSONB so nested attributes ride
// alongside the scalars without extra tables.
type Postgres struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewPostgres connects a pool and verifies the connection.
func NewPostgres(ctx context.Context, dsn string, logger *slog.Logger) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Postgres{pool: pool, logger: logger}, nil
}

// Close releases the connection pool.
func (p *Postgres) Close() {
	p.pool.Close()
}

// EnsureSchema creates the facilities table and the read-only reporting
// views if they do not exist.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := p.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// LoadBatch upserts the whole batch inside one transaction so a failed run
// never leaves the destination with a mix of old and new rows.
func (p *Postgres) LoadBatch(ctx context.Context, facilities []*domain.Facility) error {
	if len(facilities) == 0 {
		return nil
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin load transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	batch := &pgx.Batch{}
	for _, f := range facilities {
		args, err := upsertArgs(f)
		if err != nil {
			return err
		}
		batch.Queue(upsertFacilitySQL, args...)
	}

	results := tx.SendBatch(ctx, batch)
	for range facilities {
		if _, err := results.Exec(); err != nil {
			results.Close() //nolint:errcheck
			return fmt.Errorf("upsert facility: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit load transaction: %w", err)
	}

	p.logger.Info("batch loaded", "facilities", len(facilities))
	return nil
}

// AnomalySeverityCount is one row of the reporting view.
type AnomalySeverityCount struct {
	Severity string
	Count    int
}

// AnomalySeverityCounts reads the per-severity findings view.
func (p *Postgres) AnomalySeverityCounts(ctx context.Context) ([]AnomalySeverityCount, error) {
	rows, err := p.pool.Query(ctx, `SELECT severity, findings FROM facility_anomaly_severity_counts`)
	if err != nil {
		return nil, fmt.Errorf("query severity counts: %w", err)
	}
	defer rows.Close()

	var counts []AnomalySeverityCount
	for rows.Next() {
		var c AnomalySeverityCount
		if err := rows.Scan(&c.Severity, &c.Count); err != nil {
			return nil, fmt.Errorf("scan severity counts: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// QualityDistribution reads the quality-score reporting view.
func (p *Postgres) QualityDistribution(ctx context.Context) (map[string]int, error) {
	rows, err := p.pool.Query(ctx, `SELECT band, facilities FROM facility_quality_distribution`)
	if err != nil {
		return nil, fmt.Errorf("query quality distribution: %w", err)
	}
	defer rows.Close()

	dist := make(map[string]int)
	for rows.Next() {
		var band string
		var n int
		if err := rows.Scan(&band, &n); err != nil {
			return nil, fmt.Errorf("scan quality distribution: %w", err)
		}
		dist[band] = n
	}
	return dist, rows.Err()
}

const upsertFacilitySQL = `
INSERT INTO facilities (
	location_id, provider_id, name, city, postcode, region, local_authority,
	latitude, longitude,
	registration_status, is_active, year_registered,
	beds_total, beds_available,
	overall_rating, quality_score,
	has_nursing_license, has_personal_care_license,
	regulated_activities, service_types, service_user_bands,
	record, updated_at
) VALUES (
	$1, $2, $3, $4, $5, $6, $7,
	$8, $9,
	$10, $11, $12,
	$13, $14,
	$15, $16,
	$17, $18,
	$19, $20, $21,
	$22, $23
)
ON CONFLICT (location_id) DO UPDATE SET
	provider_id = EXCLUDED.provider_id,
	name = EXCLUDED.name,
	city = EXCLUDED.city,
	postcode = EXCLUDED.postcode,
	region = EXCLUDED.region,
	local_authority = EXCLUDED.local_authority,
	latitude = EXCLUDED.latitude,
	longitude = EXCLUDED.longitude,
	registration_status = EXCLUDED.registration_status,
	is_active = EXCLUDED.is_active,
	year_registered = EXCLUDED.year_registered,
	beds_total = EXCLUDED.beds_total,
	beds_available = EXCLUDED.beds_available,
	overall_rating = EXCLUDED.overall_rating,
	quality_score = EXCLUDED.quality_score,
	has_nursing_license = EXCLUDED.has_nursing_license,
	has_personal_care_license = EXCLUDED.has_personal_care_license,
	regulated_activities = EXCLUDED.regulated_activities,
	service_types = EXCLUDED.service_types,
	service_user_bands = EXCLUDED.service_user_bands,
	record = EXCLUDED.record,
	updated_at = EXCLUDED.updated_at
`

func upsertArgs(f *domain.Facility) ([]any, error) {
	record, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("marshal facility %s: %w", f.LocationID, err)
	}
	activities, err := json.Marshal(f.RegulatedActivities)
	if err != nil {
		return nil, fmt.Errorf("marshal activities %s: %w", f.LocationID, err)
	}
	serviceTypes, err := json.Marshal(f.ServiceTypes)
	if err != nil {
		return nil, fmt.Errorf("marshal service types %s: %w", f.LocationID, err)
	}
	bands, err := json.Marshal(f.ServiceUserBands)
	if err != nil {
		return nil, fmt.Errorf("marshal user bands %s: %w", f.LocationID, err)
	}

	return []any{
		f.LocationID, f.ProviderID, f.Name, f.City, f.Postcode, f.Region, f.LocalAuthority,
		f.Latitude, f.Longitude,
		f.RegistrationStatus, f.IsActive, f.YearRegistered,
		f.BedsTotal, f.BedsAvailable,
		f.OverallRating, f.QualityScore,
		f.HasNursingLicense, f.HasPersonalCareLicense,
		activities, serviceTypes, bands,
		record, f.UpdatedAt,
	}, nil
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS facilities (
		location_id TEXT PRIMARY KEY,
		provider_id TEXT,
		name TEXT,
		city TEXT,
		postcode TEXT,
		region TEXT,
		local_authority TEXT,
		latitude DOUBLE PRECISION,
		longitude DOUBLE PRECISION,
		registration_status TEXT,
		is_active BOOLEAN NOT NULL DEFAULT FALSE,
		year_registered INTEGER,
		beds_total INTEGER,
		beds_available INTEGER,
		overall_rating TEXT,
		quality_score INTEGER NOT NULL DEFAULT 0,
		has_nursing_license BOOLEAN NOT NULL DEFAULT FALSE,
		has_personal_care_license BOOLEAN NOT NULL DEFAULT FALSE,
		regulated_activities JSONB NOT NULL DEFAULT '[]',
		service_types JSONB NOT NULL DEFAULT '[]',
		service_user_bands JSONB NOT NULL DEFAULT '[]',
		record JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS facilities_postcode_idx ON facilities (postcode)`,
	`CREATE INDEX IF NOT EXISTS facilities_quality_idx ON facilities (quality_score)`,
	`CREATE OR REPLACE VIEW facility_quality_distribution AS
		SELECT width_bucket(quality_score, 0, 100, 5)::TEXT AS band,
		       count(*)::INTEGER AS facilities
		FROM facilities
		GROUP BY band
		ORDER BY band`,
	`CREATE OR REPLACE VIEW facility_anomaly_severity_counts AS
		SELECT finding->>'severity' AS severity,
		       count(*)::INTEGER AS findings
		FROM facilities, jsonb_array_elements(coalesce(record->'anomalies', '[]'::jsonb)) AS finding
		GROUP BY severity`,
}
