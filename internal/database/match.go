// internal/database/match.go
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MatchResult is the immutable record of one finished room.
type MatchResult struct {
	RoomCode    string
	WinnerID    uuid.UUID
	WinnerName  string
	PlayerCount int
	StartedAt   time.Time
	EndedAt     time.Time
}

// RecordMatchResult inserts the outcome of a finished room. No-op while
// persistence is disabled.
func RecordMatchResult(ctx context.Context, m MatchResult) error {
	if DB == nil {
		return nil
	}
	q := `
		INSERT INTO matches (room_code, winner_id, winner_name, player_count, started_at, ended_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := DB.Exec(ctx, q, m.RoomCode, m.WinnerID, m.WinnerName, m.PlayerCount, m.StartedAt, m.EndedAt); err != nil {
		return fmt.Errorf("insert match result: %w", err)
	}
	return nil
}
