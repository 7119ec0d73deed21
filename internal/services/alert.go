package services

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/go-redis/redis_rate/v10"
	"github.com/go-redsync/redsync/v4"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/zeromicro/go-zero/core/logx"

	"tradebot/internal/database"
	"tradebot/internal/datastore"
	"tradebot/internal/datastore/redis_store"
	"tradebot/internal/interfaces"
	"tradebot/internal/models"
	"tradebot/internal/pkg"
	"tradebot/internal/pkg/limiter"
)

type ServiceAlert struct {
	container    *do.Injector
	db           *database.Adapter
	redisDB      redis.UniversalClient
	limiter      interfaces.Limiter
	rs           *redsync.Redsync
	serviceToken *ServiceToken
}

func NewServiceAlert(container *do.Injector) (*ServiceAlert, error) {
	db, err := do.Invoke[*database.Adapter](container)
	if err != nil {
		return nil, err
	}

	serviceToken, err := do.Invoke[*ServiceToken](container)
	if err != nil {
		return nil, err
	}

	service := &ServiceAlert{container: container, db: db, serviceToken: serviceToken}

	// the outbox and the rate limit need redis; both are skipped without it
	if redisDB, err := do.InvokeNamed[redis.UniversalClient](container, "redis-alerts"); err == nil {
		service.redisDB = redisDB
	}
	if l, err := do.Invoke[interfaces.Limiter](container); err == nil {
		service.limiter = l
	}
	// without it only the transaction guards the per-user cap
	if rs, err := do.Invoke[*redsync.Redsync](container); err == nil {
		service.rs = rs
	}

	return service, nil
}

// CreateAlert validates and stores a new active alert on a known token.
func (service *ServiceAlert) CreateAlert(ctx context.Context, alert *models.PriceAlert) (*models.PriceAlert, error) {
	alert.TokenSymbol = pkg.NormalizeSymbol(alert.TokenSymbol)
	if alert.UserPlatformID == "" || alert.TokenSymbol == "" {
		return nil, errorx.Wrap(ErrInvalidAlert, errorx.Validation)
	}
	if alert.TargetPrice <= 0 || math.IsInf(alert.TargetPrice, 0) || math.IsNaN(alert.TargetPrice) {
		return nil, errorx.Wrap(ErrInvalidAlert, errorx.Validation)
	}
	if alert.Platform == "" {
		alert.Platform, _, _ = strings.Cut(alert.UserPlatformID, ":")
	}

	if service.limiter != nil {
		err := service.limiter.Allow(ctx, LimitKeyUserAlert(alert.UserPlatformID), redis_rate.PerMinute(ALERT_RATE_LIMIT_PER_MINUTE))
		if err != nil {
			if errors.Is(err, limiter.ErrRateLimited) {
				return nil, errorx.Wrap(err, errorx.RateLimiting)
			}
			return nil, err
		}
	}

	if _, err := service.serviceToken.ResolveToken(ctx, alert.TokenSymbol, ""); err != nil {
		return nil, err
	}

	unlock, err := lockKey(ctx, service.rs, LockKeyUserAlert(alert.UserPlatformID), ALERT_LOCK_EXPIRY, ErrAlertLock)
	if err != nil {
		return nil, err
	}
	defer unlock()

	// count and insert together so concurrent creates cannot pass the cap
	return database.InTransaction(ctx, service.db, func(ctx context.Context, tx database.Querier) (*models.PriceAlert, error) {
		active, err := datastore.GetActivePriceAlerts(ctx, tx, alert.UserPlatformID)
		if err != nil {
			return nil, err
		}
		if len(active) >= MAX_ACTIVE_ALERTS_PER_USER {
			return nil, errorx.Wrap(ErrTooManyAlerts, errorx.Invalid)
		}

		alert.IsActive = true
		alert.TriggeredAt = nil
		if _, err := datastore.CreatePriceAlert(ctx, tx, alert); err != nil {
			return nil, err
		}
		return alert, nil
	})
}

// ActiveAlerts lists active alerts of one user, or of all users when
// userPlatformID is empty.
func (service *ServiceAlert) ActiveAlerts(ctx context.Context, userPlatformID string) ([]*models.PriceAlert, error) {
	return datastore.GetActivePriceAlerts(ctx, service.db, userPlatformID)
}

func (service *ServiceAlert) UserAlerts(ctx context.Context, userPlatformID string) ([]*models.PriceAlert, error) {
	return datastore.GetUserPriceAlerts(ctx, service.db, userPlatformID)
}

func (service *ServiceAlert) Remove(ctx context.Context, userPlatformID, id string) error {
	removed, err := datastore.RemovePriceAlert(ctx, service.db, userPlatformID, id)
	if err != nil {
		return err
	}
	if !removed {
		return errorx.Wrap(ErrAlertNotFound, errorx.NotExist)
	}
	return nil
}

// Trigger fires one alert. It reports false when the alert was already
// inactive, so a notification is only sent once.
func (service *ServiceAlert) Trigger(ctx context.Context, alert *models.PriceAlert, price float64) (bool, error) {
	fired, err := datastore.TriggerPriceAlert(ctx, service.db, alert.ID)
	if err != nil || !fired {
		return false, err
	}

	alert.IsActive = false
	if stored, err := datastore.GetPriceAlert(ctx, service.db, alert.ID); err == nil && stored != nil {
		*alert = *stored
	}

	service.publish(ctx, alert, price)
	return true, nil
}

// Evaluate checks the active alerts on symbol against price and fires those
// whose condition holds. It returns the alerts this call fired.
func (service *ServiceAlert) Evaluate(ctx context.Context, symbol string, price float64) ([]*models.PriceAlert, error) {
	alerts, err := datastore.GetActiveAlertsForToken(ctx, service.db, symbol)
	if err != nil {
		return nil, err
	}

	fired := make([]*models.PriceAlert, 0)
	for _, alert := range alerts {
		if !alert.Crossed(price) {
			continue
		}
		ok, err := service.Trigger(ctx, alert, price)
		if err != nil {
			return fired, err
		}
		if ok {
			fired = append(fired, alert)
		}
	}
	return fired, nil
}

// TakeTriggered hands up to limit queued notifications of platform to the
// notifier, oldest first. Without the alerts redis the queue is always empty.
func (service *ServiceAlert) TakeTriggered(ctx context.Context, platform string, limit int) ([]*redis_store.TriggeredAlert, error) {
	if service.redisDB == nil || limit <= 0 {
		return []*redis_store.TriggeredAlert{}, nil
	}
	return redis_store.PopTriggeredAlerts(ctx, service.redisDB, platform, limit)
}

func (service *ServiceAlert) publish(ctx context.Context, alert *models.PriceAlert, price float64) {
	if service.redisDB == nil {
		return
	}

	err := redis_store.PushTriggeredAlert(ctx, service.redisDB, alert.Platform, redis_store.NewTriggeredAlert(alert, price))
	if err != nil {
		logx.WithContext(ctx).Errorw("queue triggered alert",
			logx.Field("alert_id", alert.ID),
			logx.Field("error", err.Error()),
		)
	}
}
