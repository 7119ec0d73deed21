package datastore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"tradebot/internal/database"
)

// Timestamps are fixed-width so that text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000Z07:00"

func now() time.Time {
	return time.Now().UTC()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func formatTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func encodeJSON(column string, v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", &database.SerializationError{Column: column, Err: err}
	}
	return string(b), nil
}

// decodeColumn parses one composite column. A corrupt value is logged and
// replaced with empty so that the rest of the record is still usable.
func decodeColumn[T any](ctx context.Context, row database.Row, column string, empty T) T {
	raw := row.String(column)
	if raw == "" || raw == "null" {
		return empty
	}

	var v T
	if err := row.JSON(column, &v); err != nil {
		logx.WithContext(ctx).Errorw("corrupt column, using empty value",
			logx.Field("id", row.String("id")),
			logx.Field("column", column),
			logx.Field("error", err.Error()),
		)
		return empty
	}
	return v
}

func clampLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	return limit
}

func notFound(entity, id string) error {
	return fmt.Errorf("%s %q: %w", entity, id, database.ErrNoRows)
}
