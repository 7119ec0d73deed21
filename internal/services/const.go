package services

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrWalletNotFound = errors.New("wallet not found")
var ErrWalletLock = errors.New("wallet locked")
var ErrTokenNotFound = errors.New("token not found")
var ErrInvalidAlert = errors.New("invalid price alert")
var ErrAlertNotFound = errors.New("price alert not found")
var ErrTooManyAlerts = errors.New("too many active price alerts")
var ErrAlertLock = errors.New("price alerts locked")
var ErrSessionNotFound = errors.New("session not found")

// NAME_SESSION_TTL names the time.Duration registered in the container.
const NAME_SESSION_TTL = "session-ttl"

const (
	CACHE_TTL_5_MINS = 5 * time.Minute

	WALLET_LOCK_EXPIRY = 10 * time.Second
	ALERT_LOCK_EXPIRY  = 10 * time.Second

	ALERT_RATE_LIMIT_PER_MINUTE = 20
	MAX_ACTIVE_ALERTS_PER_USER  = 50
)

func KeyToken(symbol, chain string) string {
	return fmt.Sprintf("token:%s:%s", strings.ToLower(chain), strings.ToUpper(strings.TrimSpace(symbol)))
}

func LockKeyUserWallet(userPlatformID string) string {
	return fmt.Sprintf("lock:wallet:%s", userPlatformID)
}

func LockKeyUserAlert(userPlatformID string) string {
	return fmt.Sprintf("lock:alert:%s", userPlatformID)
}

func LimitKeyUserAlert(userPlatformID string) string {
	return fmt.Sprintf("limit:alert:%s", userPlatformID)
}
