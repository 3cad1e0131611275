package audit

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Recorder persists events into audit_logs.
type Recorder struct {
	pool *pgxpool.Pool
}

// NewRecorder returns a Recorder over the privileged store client.
func NewRecorder(pool *pgxpool.Pool) *Recorder {
	return &Recorder{pool: pool}
}

// Record writes one event row.
func (r *Recorder) Record(ctx context.Context, event Event) error {
	if r == nil || r.pool == nil {
		return errors.New("audit: recorder not initialised")
	}
	if event.Action == "" {
		return errors.New("audit: event requires an action")
	}
	at := event.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	metaJSON, err := json.Marshal(event.Meta)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO audit_logs (actor_id, organization_id, action, path, meta, occurred_at)
		 VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6)`,
		event.ActorID, event.TenantID, event.Action, event.Path, metaJSON, at)
	return err
}
