package redis_store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
	"github.com/zeromicro/go-zero/core/logx"

	"tradebot/internal/models"
)

const TRIGGERED_ALERTS_MAX_LEN = 10000

func dbKeyTriggeredAlerts(platform string) string {
	return fmt.Sprintf("alerts:triggered:%s", platform)
}

// TriggeredAlert is what the notifier of a chat platform needs to tell the
// user that an alert fired.
type TriggeredAlert struct {
	AlertID        string    `msgpack:"alert_id"`
	UserPlatformID string    `msgpack:"user_platform_id"`
	TokenSymbol    string    `msgpack:"token_symbol"`
	TargetPrice    float64   `msgpack:"target_price"`
	IsAbove        bool      `msgpack:"is_above"`
	Price          float64   `msgpack:"price"`
	TriggeredAt    time.Time `msgpack:"triggered_at"`
}

func NewTriggeredAlert(alert *models.PriceAlert, price float64) *TriggeredAlert {
	triggeredAt := time.Now().UTC()
	if alert.TriggeredAt != nil {
		triggeredAt = *alert.TriggeredAt
	}
	return &TriggeredAlert{
		AlertID:        alert.ID,
		UserPlatformID: alert.UserPlatformID,
		TokenSymbol:    alert.TokenSymbol,
		TargetPrice:    alert.TargetPrice,
		IsAbove:        alert.IsAbove,
		Price:          price,
		TriggeredAt:    triggeredAt,
	}
}

func encodeTriggeredAlert(v *TriggeredAlert) ([]byte, error) {
	return msgpack.Marshal(v)
}

func decodeTriggeredAlert(b []byte) (*TriggeredAlert, error) {
	var v *TriggeredAlert
	err := msgpack.Unmarshal(b, &v)
	return v, err
}

// PushTriggeredAlert queues a fired alert for the notifier of platform. The
// queue is capped at TRIGGERED_ALERTS_MAX_LEN; the oldest entries go first.
func PushTriggeredAlert(ctx context.Context, cmd redis.Cmdable, platform string, v *TriggeredAlert) error {
	if v.AlertID == "" || v.UserPlatformID == "" {
		return errors.New("invalid triggered alert")
	}

	b, err := encodeTriggeredAlert(v)
	if err != nil {
		return err
	}

	key := dbKeyTriggeredAlerts(platform)
	_, err = cmd.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, key, b)
		pipe.LTrim(ctx, key, 0, TRIGGERED_ALERTS_MAX_LEN-1)
		return nil
	})
	return err
}

// PopTriggeredAlerts takes up to limit queued alerts, oldest first. Entries
// that cannot be decoded are dropped.
func PopTriggeredAlerts(ctx context.Context, cmd redis.Cmdable, platform string, limit int) ([]*TriggeredAlert, error) {
	values, err := cmd.RPopCount(ctx, dbKeyTriggeredAlerts(platform), limit).Result()
	if errors.Is(err, redis.Nil) {
		return []*TriggeredAlert{}, nil
	}
	if err != nil {
		return nil, err
	}

	return decodeTriggeredAlerts(ctx, values), nil
}

func decodeTriggeredAlerts(ctx context.Context, values []string) []*TriggeredAlert {
	alerts := make([]*TriggeredAlert, 0, len(values))
	for _, value := range values {
		v, err := decodeTriggeredAlert([]byte(value))
		if err != nil || v == nil {
			logx.WithContext(ctx).Errorw("drop undecodable triggered alert", logx.Field("error", fmt.Sprint(err)))
			continue
		}
		alerts = append(alerts, v)
	}
	return alerts
}
