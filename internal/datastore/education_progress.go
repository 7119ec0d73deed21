package datastore

import (
	"context"
	"slices"

	"tradebot/internal/database"
	"tradebot/internal/models"
	"tradebot/internal/pkg"
)

const PREFIX_EDUCATION = "edu"

var educationProgressSchema = tableSchema{
	name: "education_progress",
	create: `CREATE TABLE IF NOT EXISTS education_progress (
		id TEXT PRIMARY KEY,
		user_platform_id TEXT NOT NULL,
		topic TEXT NOT NULL,
		lessons_completed TEXT NOT NULL DEFAULT '[]',
		quiz_scores TEXT NOT NULL DEFAULT '{}',
		completed INTEGER NOT NULL DEFAULT 0,
		started_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		completed_at TEXT
	);`,
	indexes: []string{
		`CREATE INDEX IF NOT EXISTS idx_education_progress_user_platform_id ON education_progress (user_platform_id);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_education_progress_user_topic ON education_progress (user_platform_id, topic);`,
	},
}

const educationProgressColumns = `id, user_platform_id, topic, lessons_completed, quiz_scores, completed, started_at, updated_at, completed_at`

func educationProgressFromRow(ctx context.Context, row database.Row) *models.EducationProgress {
	return &models.EducationProgress{
		ID:               row.String("id"),
		UserPlatformID:   row.String("user_platform_id"),
		Topic:            row.String("topic"),
		LessonsCompleted: decodeColumn(ctx, row, "lessons_completed", []string{}),
		QuizScores:       decodeColumn(ctx, row, "quiz_scores", map[string]int{}),
		Completed:        row.Bool("completed"),
		StartedAt:        row.Time("started_at"),
		UpdatedAt:        row.Time("updated_at"),
		CompletedAt:      row.TimePtr("completed_at"),
	}
}

func GetEducationProgress(ctx context.Context, db database.Querier, userPlatformID string) ([]*models.EducationProgress, error) {
	result, err := db.Query(ctx, `SELECT `+educationProgressColumns+` FROM education_progress
		WHERE user_platform_id = $1 ORDER BY started_at ASC, id ASC`, userPlatformID)
	if err != nil {
		return nil, err
	}

	progress := make([]*models.EducationProgress, 0, result.RowCount)
	for _, row := range result.Rows {
		progress = append(progress, educationProgressFromRow(ctx, row))
	}
	return progress, nil
}

// GetTopicProgress returns nil when the user has not started topic.
func GetTopicProgress(ctx context.Context, db database.Querier, userPlatformID, topic string) (*models.EducationProgress, error) {
	row, err := db.QueryOne(ctx, `SELECT `+educationProgressColumns+` FROM education_progress
		WHERE user_platform_id = $1 AND topic = $2`, userPlatformID, topic)
	if err != nil || row == nil {
		return nil, err
	}
	return educationProgressFromRow(ctx, row), nil
}

func CompleteLesson(ctx context.Context, db database.Querier, userPlatformID, topic, lesson string) (*models.EducationProgress, error) {
	return updateTopicProgress(ctx, db, userPlatformID, topic, func(p *models.EducationProgress) {
		if !slices.Contains(p.LessonsCompleted, lesson) {
			p.LessonsCompleted = append(p.LessonsCompleted, lesson)
		}
	})
}

// RecordQuizScore keeps the best score per quiz.
func RecordQuizScore(ctx context.Context, db database.Querier, userPlatformID, topic, quiz string, score int) (*models.EducationProgress, error) {
	return updateTopicProgress(ctx, db, userPlatformID, topic, func(p *models.EducationProgress) {
		if best, ok := p.QuizScores[quiz]; !ok || score > best {
			p.QuizScores[quiz] = score
		}
	})
}

func CompleteTopic(ctx context.Context, db database.Querier, userPlatformID, topic string) (*models.EducationProgress, error) {
	return updateTopicProgress(ctx, db, userPlatformID, topic, func(p *models.EducationProgress) {
		if p.Completed {
			return
		}
		ts := now()
		p.Completed = true
		p.CompletedAt = &ts
	})
}

// updateTopicProgress starts the topic if needed, applies change and writes
// the row back.
func updateTopicProgress(ctx context.Context, db database.Querier, userPlatformID, topic string, change func(*models.EducationProgress)) (*models.EducationProgress, error) {
	progress, err := GetTopicProgress(ctx, db, userPlatformID, topic)
	if err != nil {
		return nil, err
	}

	isNew := progress == nil
	if isNew {
		ts := now()
		progress = &models.EducationProgress{
			ID:               pkg.NewID(PREFIX_EDUCATION),
			UserPlatformID:   userPlatformID,
			Topic:            topic,
			LessonsCompleted: []string{},
			QuizScores:       map[string]int{},
			StartedAt:        ts,
		}
	}

	change(progress)
	progress.UpdatedAt = now()

	lessons, err := encodeJSON("lessons_completed", progress.LessonsCompleted)
	if err != nil {
		return nil, err
	}
	scores, err := encodeJSON("quiz_scores", progress.QuizScores)
	if err != nil {
		return nil, err
	}

	if isNew {
		_, err = db.Insert(ctx, `INSERT INTO education_progress (`+educationProgressColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			progress.ID, progress.UserPlatformID, progress.Topic, lessons, scores,
			boolToInt(progress.Completed), formatTime(progress.StartedAt), formatTime(progress.UpdatedAt),
			formatTimePtr(progress.CompletedAt),
		)
	} else {
		_, err = db.Update(ctx, `UPDATE education_progress
			SET lessons_completed = $1, quiz_scores = $2, completed = $3, updated_at = $4, completed_at = $5
			WHERE id = $6`,
			lessons, scores, boolToInt(progress.Completed), formatTime(progress.UpdatedAt),
			formatTimePtr(progress.CompletedAt), progress.ID,
		)
	}
	if err != nil {
		return nil, err
	}
	return progress, nil
}
