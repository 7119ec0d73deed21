package models

import "time"

// UserSession is the conversation state kept between chat messages.
type UserSession struct {
	ID             string         `json:"id"`
	UserPlatformID string         `json:"user_platform_id"`
	Platform       string         `json:"platform"`
	Context        map[string]any `json:"context"`
	LastIntent     string         `json:"last_intent"`
	IsActive       bool           `json:"is_active"`
	CreatedAt      time.Time      `json:"created_at"`
	LastActivityAt time.Time      `json:"last_activity_at"`
	ExpiresAt      time.Time      `json:"expires_at"`
}
