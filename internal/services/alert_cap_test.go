package services

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/samber/do"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"tradebot/internal/database"
	"tradebot/internal/datastore"
	"tradebot/internal/models"
)

func TestServiceAlert_CapHoldsUnderConcurrentCreates(t *testing.T) {
	const (
		user     = "telegram:7"
		prefill  = MAX_ACTIVE_ALERTS_PER_USER - 5
		creators = 20
	)

	ctx := context.Background()
	injector := newTestContainer(t)
	service := do.MustInvoke[*ServiceAlert](injector)
	db := do.MustInvoke[*database.Adapter](injector)

	_, err := do.MustInvoke[*ServiceToken](injector).Import(ctx, []byte(`[{"symbol": "HEX", "address": "0x2b591e99afe9f32eaa6214f7b7629768c40eeb39"}]`))
	require.NoError(t, err)

	for i := 0; i < prefill; i++ {
		_, err := datastore.CreatePriceAlert(ctx, db, &models.PriceAlert{
			UserPlatformID: user,
			TokenSymbol:    "HEX",
			TargetPrice:    1,
			IsActive:       true,
		})
		require.NoError(t, err)
	}

	var created, rejected atomic.Int32
	var wg errgroup.Group
	for i := 0; i < creators; i++ {
		wg.Go(func() error {
			_, err := service.CreateAlert(ctx, &models.PriceAlert{UserPlatformID: user, TokenSymbol: "HEX", TargetPrice: 2})
			if err != nil {
				rejected.Add(1)
				return nil
			}
			created.Add(1)
			return nil
		})
	}
	require.NoError(t, wg.Wait())

	assert.Equal(t, int32(5), created.Load())
	assert.Equal(t, int32(creators-5), rejected.Load())

	active, err := service.ActiveAlerts(ctx, user)
	require.NoError(t, err)
	assert.Len(t, active, MAX_ACTIVE_ALERTS_PER_USER)
}

func TestServiceAlert_TakeTriggeredWithoutRedis(t *testing.T) {
	service := do.MustInvoke[*ServiceAlert](newTestContainer(t))

	alerts, err := service.TakeTriggered(context.Background(), models.PLATFORM_TELEGRAM, 10)
	require.NoError(t, err)
	assert.Empty(t, alerts)
}
