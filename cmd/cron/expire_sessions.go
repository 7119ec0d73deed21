package main

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/zeromicro/go-zero/core/logx"

	"tradebot/internal/database"
	"tradebot/internal/datastore"
)

const (
	DEFAULT_EXPIRE_SESSIONS_SPEC = "@every 10m"

	expireSessionsTimeout = time.Minute
)

type ExpireSessionsJob struct {
	db database.Querier
}

func NewExpireSessionsJob(db database.Querier) *ExpireSessionsJob {
	return &ExpireSessionsJob{db: db}
}

func (job *ExpireSessionsJob) Start(c *cron.Cron, spec string) error {
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), expireSessionsTimeout)
		defer cancel()
		job.Run(ctx, time.Now())
	})
	return err
}

func (job *ExpireSessionsJob) Run(ctx context.Context, now time.Time) int64 {
	n, err := datastore.ExpireStaleSessions(ctx, job.db, now)
	if err != nil {
		logx.WithContext(ctx).Errorw("expire sessions", logx.Field("error", err.Error()))
		return 0
	}
	if n > 0 {
		logx.WithContext(ctx).Infow("expired sessions", logx.Field("count", n))
	}
	return n
}
