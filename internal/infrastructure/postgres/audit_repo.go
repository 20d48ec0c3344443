package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/ddx2r/vk-telegram-bot-sub000/internal/audit"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditRepository is the relational mirror of the audit stream. Insert-only;
// rows are pruned out of band.
type AuditRepository struct {
	pool *pgxpool.Pool
}

func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

// Record implements audit.Sink.
func (r *AuditRepository) Record(ctx context.Context, rec audit.Record) error {
	const sql = `
		INSERT INTO audit_events (id, event_type, group_id, outcome, detail, occurred_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6)
	`

	_, err := r.pool.Exec(ctx, sql,
		rec.ID, rec.EventType, rec.GroupID, rec.Outcome, rec.Detail, rec.OccurredAt)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}

	return nil
}

// Entry is a row read back by the operational CLI.
type Entry struct {
	ID         string
	EventType  string
	GroupID    int64
	Outcome    string
	Detail     string
	OccurredAt time.Time
}

// Recent returns the latest audit rows, newest first.
func (r *AuditRepository) Recent(ctx context.Context, limit int) ([]Entry, error) {
	const sql = `
		SELECT id, event_type, group_id, outcome, COALESCE(detail, ''), occurred_at
		FROM audit_events
		ORDER BY occurred_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, sql, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.EventType, &e.GroupID, &e.Outcome, &e.Detail, &e.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, nil
}
