// Package postgres implements the remote replica: a single JSONB document
// table keyed by (warung_id, entity, id). Records are mirrored
// last-writer-wins from the local store; the version column is carried along
// so stale mirror attempts never clobber a newer row.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"warungpos/backend/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS warung_records (
	warung_id  TEXT        NOT NULL,
	entity     TEXT        NOT NULL,
	id         TEXT        NOT NULL,
	version    BIGINT      NOT NULL DEFAULT 0,
	doc        JSONB       NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (warung_id, entity, id)
);
CREATE INDEX IF NOT EXISTS idx_warung_records_entity
	ON warung_records (warung_id, entity);
`

// Replica is a PostgreSQL-backed store.Replica.
type Replica struct {
	db *sql.DB
}

// New opens a connection pool, verifies connectivity and ensures the schema.
func New(ctx context.Context, databaseURL string) (*Replica, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &Replica{db: db}, nil
}

func (r *Replica) Close() error {
	return r.db.Close()
}

// UpsertRecord mirrors one committed local write. The WHERE guard keeps an
// out-of-order retry from overwriting a newer version; facts carry version 0
// and match on the equality branch.
func (r *Replica) UpsertRecord(ctx context.Context, warungID string, entity store.EntityType, id string, version int64, doc []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO warung_records (warung_id, entity, id, version, doc, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (warung_id, entity, id) DO UPDATE
		SET version = EXCLUDED.version, doc = EXCLUDED.doc, updated_at = now()
		WHERE warung_records.version <= EXCLUDED.version`,
		warungID, string(entity), id, version, doc)
	if err != nil {
		return fmt.Errorf("upsert %s/%s: %w", entity, id, err)
	}
	return nil
}

func (r *Replica) DeleteRecord(ctx context.Context, warungID string, entity store.EntityType, id string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM warung_records
		WHERE warung_id = $1 AND entity = $2 AND id = $3`,
		warungID, string(entity), id)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", entity, id, err)
	}
	return nil
}

// LoadEntity returns every mirrored record of one entity for a warung,
// oldest first. Used to rebuild the local store on startup.
func (r *Replica) LoadEntity(ctx context.Context, warungID string, entity store.EntityType) ([]store.RecordSnapshot, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, version, doc
		FROM warung_records
		WHERE warung_id = $1 AND entity = $2
		ORDER BY updated_at ASC`,
		warungID, string(entity))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", entity, err)
	}
	defer rows.Close()

	var result []store.RecordSnapshot
	for rows.Next() {
		var rec store.RecordSnapshot
		if err := rows.Scan(&rec.ID, &rec.Version, &rec.Doc); err != nil {
			return nil, fmt.Errorf("scan %s: %w", entity, err)
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}
