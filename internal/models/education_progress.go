package models

import "time"

type EducationProgress struct {
	ID               string         `json:"id"`
	UserPlatformID   string         `json:"user_platform_id"`
	Topic            string         `json:"topic"`
	LessonsCompleted []string       `json:"lessons_completed"`
	QuizScores       map[string]int `json:"quiz_scores"`
	Completed        bool           `json:"completed"`
	StartedAt        time.Time      `json:"started_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	CompletedAt      *time.Time     `json:"completed_at"`
}
