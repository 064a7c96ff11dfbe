// Package progress keeps each learner's append-only attempt history per lesson.
package progress

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"quizcore/apperrors"
	"quizcore/models"
	"quizcore/services/evaluator"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultMaxRetries = 5

// errVersionConflict means another writer appended to the same record first
var errVersionConflict = errors.New("progress version conflict")

// RecordOptions carries the per submission extras of RecordAttempt
type RecordOptions struct {
	ClientTimestamp *time.Time
	// MaxAttempts caps attempts per quiz; zero or negative means unlimited
	MaxAttempts int
}

// AttemptWithLesson is an attempt joined with the lesson it was recorded against
type AttemptWithLesson struct {
	models.Attempt
	LessonID    string                  `json:"lesson_id"`
	LessonTitle models.MultilingualText `json:"lesson_title"`
	Subject     string                  `json:"subject"`
	Class       int                     `json:"class"`
}

// Ledger records attempts into Progress records
type Ledger struct {
	db         *gorm.DB
	maxRetries int
	now        func() time.Time
}

func NewLedger(db *gorm.DB, maxRetries int) *Ledger {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	return &Ledger{db: db, maxRetries: maxRetries, now: time.Now}
}

// RecordAttempt appends graded to the learner's progress for lessonID and
// returns the stored attempt with its sequence number.
//
// Attempt numbers count the learner's earlier attempts on the quiz across all
// of their progress records, so moving a quiz to another lesson neither
// restarts the sequence nor resets the attempt allowance. Appending and
// raising the best score happen in one conditional update guarded by the
// record version. A writer that loses the race re-reads and tries again, so
// attempt numbers never repeat.
func (l *Ledger) RecordAttempt(ctx context.Context, userID, lessonID string, graded evaluator.GradedAttempt, opts RecordOptions) (models.Attempt, error) {
	for try := 0; try < l.maxRetries; try++ {
		attempt, err := l.tryAppend(ctx, userID, lessonID, graded, opts)
		if errors.Is(err, errVersionConflict) {
			continue
		}
		return attempt, err
	}
	return models.Attempt{}, fmt.Errorf("record attempt for user %s lesson %s: %w", userID, lessonID, apperrors.ErrConflict)
}

func (l *Ledger) tryAppend(ctx context.Context, userID, lessonID string, graded evaluator.GradedAttempt, opts RecordOptions) (models.Attempt, error) {
	db := l.db.WithContext(ctx)

	var records []models.Progress
	if err := db.Where("user_id = ?", userID).Find(&records).Error; err != nil {
		return models.Attempt{}, fmt.Errorf("load progress: %w", err)
	}
	var record *models.Progress
	prior := 0
	for i := range records {
		prior += records[i].CountAttempts(graded.QuizID)
		if records[i].LessonID == lessonID {
			record = &records[i]
		}
	}
	if opts.MaxAttempts > 0 && prior >= opts.MaxAttempts {
		return models.Attempt{}, fmt.Errorf("quiz %s allows %d attempts: %w", graded.QuizID, opts.MaxAttempts, apperrors.ErrAttemptsExhausted)
	}

	if record == nil {
		created, err := ensureProgress(db, userID, lessonID)
		if err != nil {
			return models.Attempt{}, err
		}
		if created.Version != 0 {
			// another writer created and appended first
			return models.Attempt{}, errVersionConflict
		}
		record = created
	}
	attempt := graded.ToAttempt(prior + 1)

	attempts := make([]models.Attempt, 0, len(record.QuizAttempts)+1)
	attempts = append(attempts, record.QuizAttempts...)
	attempts = append(attempts, attempt)

	best := record.BestQuizScore
	if attempt.Percentage > best {
		best = attempt.Percentage
	}

	now := l.now()
	columns := map[string]interface{}{
		"quiz_attempts":   datatypes.JSONSlice[models.Attempt](attempts),
		"best_quiz_score": best,
		"sync_status":     models.SyncSynced,
		"last_synced_at":  now,
		"version":         record.Version + 1,
		"updated_at":      now,
	}
	if ts := opts.ClientTimestamp; ts != nil {
		// last write wins by client clock
		if record.ClientTimestamp == nil || ts.After(*record.ClientTimestamp) {
			columns["client_timestamp"] = *ts
		}
	}

	result := db.Model(&models.Progress{}).
		Where("id = ? AND version = ?", record.ID, record.Version).
		UpdateColumns(columns)
	if result.Error != nil {
		return models.Attempt{}, fmt.Errorf("append attempt: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return models.Attempt{}, errVersionConflict
	}
	return attempt, nil
}

// ensureProgress loads the (user, lesson) record, creating an empty one first
// when none exists. Concurrent creators collapse onto the unique index.
func ensureProgress(db *gorm.DB, userID, lessonID string) (*models.Progress, error) {
	fresh := models.Progress{
		ID:           uuid.NewString(),
		UserID:       userID,
		LessonID:     lessonID,
		QuizAttempts: []models.Attempt{},
		SyncStatus:   models.SyncPending,
	}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "lesson_id"}},
		DoNothing: true,
	}).Create(&fresh).Error
	if err != nil {
		return nil, fmt.Errorf("create progress: %w", err)
	}

	var record models.Progress
	if err := db.Where("user_id = ? AND lesson_id = ?", userID, lessonID).First(&record).Error; err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}
	return &record, nil
}

// Get returns the learner's progress for one lesson
func (l *Ledger) Get(ctx context.Context, userID, lessonID string) (*models.Progress, error) {
	var record models.Progress
	err := l.db.WithContext(ctx).Where("user_id = ? AND lesson_id = ?", userID, lessonID).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("progress for user %s lesson %s: %w", userID, lessonID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("get progress: %w", err)
	}
	return &record, nil
}

// ListAttempts returns every attempt of the learner across lessons, newest first
func (l *Ledger) ListAttempts(ctx context.Context, userID string) ([]AttemptWithLesson, error) {
	db := l.db.WithContext(ctx)

	var records []models.Progress
	if err := db.Where("user_id = ?", userID).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	if len(records) == 0 {
		return []AttemptWithLesson{}, nil
	}

	lessonIDs := make([]string, 0, len(records))
	for _, r := range records {
		lessonIDs = append(lessonIDs, r.LessonID)
	}
	var lessons []models.Lesson
	if err := db.Where("id IN ?", lessonIDs).Find(&lessons).Error; err != nil {
		return nil, fmt.Errorf("load lessons: %w", err)
	}
	lessonByID := make(map[string]models.Lesson, len(lessons))
	for _, lesson := range lessons {
		lessonByID[lesson.ID] = lesson
	}

	out := make([]AttemptWithLesson, 0)
	for _, r := range records {
		lesson := lessonByID[r.LessonID]
		for _, a := range r.QuizAttempts {
			out = append(out, AttemptWithLesson{
				Attempt:     a,
				LessonID:    r.LessonID,
				LessonTitle: lesson.Title.Data(),
				Subject:     lesson.Subject,
				Class:       lesson.Class,
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SubmittedAt.After(out[j].SubmittedAt)
	})
	return out, nil
}
