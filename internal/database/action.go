// internal/database/action.go
package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/stax-cards/stax/internal/cache"
)

// InsertActionBatch persists a batch of action records drained from the
// Redis queue. Used by the historian binary; batching keeps the insert rate
// decoupled from gameplay.
func InsertActionBatch(ctx context.Context, records []cache.ActionRecord) error {
	if DB == nil || len(records) == 0 {
		return nil
	}
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		q := `
			INSERT INTO room_actions (room_code, actor_id, action_type, payload, occurred_at)
			VALUES ($1, $2, $3, $4, to_timestamp($5 / 1000.0))
		`
		for _, rec := range records {
			payload, err := json.Marshal(rec.Payload)
			if err != nil {
				return fmt.Errorf("marshal action payload: %w", err)
			}
			if _, err := tx.Exec(ctx, q, rec.RoomCode, rec.ActorID, rec.ActionType, payload, rec.Timestamp); err != nil {
				return fmt.Errorf("insert room action: %w", err)
			}
		}
		return nil
	})
}
