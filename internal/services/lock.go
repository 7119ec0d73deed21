package services

import (
	"context"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
)

// lockKey takes the redsync mutex named key, failing fast with errLocked
// when someone else holds it. Without redsync it is a no-op.
func lockKey(ctx context.Context, rs *redsync.Redsync, key string, expiry time.Duration, errLocked error) (func(), error) {
	if rs == nil {
		return func() {}, nil
	}

	mutex := rs.NewMutex(key, redsync.WithExpiry(expiry))
	if err := mutex.TryLockContext(ctx); err != nil {
		return nil, errorx.Wrap(errLocked, errorx.Invalid)
	}

	return func() {
		// nolint:errcheck
		mutex.UnlockContext(ctx)
	}, nil
}
