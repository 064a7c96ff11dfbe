package progress

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"quizcore/apperrors"
	"quizcore/database"
	"quizcore/models"
	"quizcore/services/evaluator"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func graded(quizID string, percentage float64, at time.Time) evaluator.GradedAttempt {
	return evaluator.GradedAttempt{
		QuizID:      quizID,
		Score:       int(percentage),
		TotalPoints: 100,
		Percentage:  percentage,
		Passed:      percentage >= 60,
		Answers:     []models.AnswerResult{{QuestionID: "q1", IsCorrect: percentage > 0, Points: int(percentage)}},
		SubmittedAt: at,
	}
}

func TestRecordAttemptSequenceAndBestScore(t *testing.T) {
	ledger := NewLedger(newTestDB(t), 0)
	ctx := context.Background()
	now := time.Now().UTC()

	first, err := ledger.RecordAttempt(ctx, "u1", "lesson-1", graded("quiz-1", 40, now), RecordOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, first.AttemptNumber)

	second, err := ledger.RecordAttempt(ctx, "u1", "lesson-1", graded("quiz-1", 80, now.Add(time.Minute)), RecordOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, second.AttemptNumber)

	third, err := ledger.RecordAttempt(ctx, "u1", "lesson-1", graded("quiz-1", 50, now.Add(2*time.Minute)), RecordOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, third.AttemptNumber)

	record, err := ledger.Get(ctx, "u1", "lesson-1")
	require.NoError(t, err)
	assert.Len(t, record.QuizAttempts, 3)
	assert.Equal(t, 80.0, record.BestQuizScore, "best score never decreases")
	assert.Equal(t, models.SyncSynced, record.SyncStatus)
	assert.NotNil(t, record.LastSyncedAt)
	assert.Equal(t, 3, record.Version)
}

func TestRecordAttemptNumbersArePerQuiz(t *testing.T) {
	ledger := NewLedger(newTestDB(t), 0)
	ctx := context.Background()
	now := time.Now().UTC()

	a1, err := ledger.RecordAttempt(ctx, "u1", "lesson-1", graded("quiz-a", 10, now), RecordOptions{})
	require.NoError(t, err)
	b1, err := ledger.RecordAttempt(ctx, "u1", "lesson-1", graded("quiz-b", 10, now), RecordOptions{})
	require.NoError(t, err)
	a2, err := ledger.RecordAttempt(ctx, "u1", "lesson-1", graded("quiz-a", 10, now), RecordOptions{})
	require.NoError(t, err)
	other, err := ledger.RecordAttempt(ctx, "u2", "lesson-1", graded("quiz-a", 10, now), RecordOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, a1.AttemptNumber)
	assert.Equal(t, 1, b1.AttemptNumber)
	assert.Equal(t, 2, a2.AttemptNumber)
	assert.Equal(t, 1, other.AttemptNumber)
}

func TestRecordAttemptConcurrentSubmissions(t *testing.T) {
	ledger := NewLedger(newTestDB(t), 20)
	ctx := context.Background()
	now := time.Now().UTC()

	const submissions = 12
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		numbers []int
		errs    []error
	)
	for i := 0; i < submissions; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			attempt, err := ledger.RecordAttempt(ctx, "u1", "lesson-1", graded("quiz-1", float64(i*5), now), RecordOptions{})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			numbers = append(numbers, attempt.AttemptNumber)
		}(i)
	}
	wg.Wait()

	require.Empty(t, errs)
	sort.Ints(numbers)
	want := make([]int, submissions)
	for i := range want {
		want[i] = i + 1
	}
	assert.Equal(t, want, numbers, "attempt numbers are exactly 1..N")

	record, err := ledger.Get(ctx, "u1", "lesson-1")
	require.NoError(t, err)
	assert.Len(t, record.QuizAttempts, submissions)
	assert.Equal(t, float64((submissions-1)*5), record.BestQuizScore)
}

func TestRecordAttemptRetriesAfterVersionConflict(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedger(db, 3)
	ctx := context.Background()
	now := time.Now().UTC()

	_, err := ledger.RecordAttempt(ctx, "u1", "lesson-1", graded("quiz-1", 10, now), RecordOptions{})
	require.NoError(t, err)

	// a second writer appends between our read and our conditional update
	var (
		raced    bool
		rival    models.Attempt
		rivalErr error
	)
	require.NoError(t, db.Callback().Update().Before("gorm:begin_transaction").Register("test:rival_append", func(tx *gorm.DB) {
		if raced || tx.Statement.Table != "progresses" {
			return
		}
		raced = true
		rival, rivalErr = ledger.RecordAttempt(ctx, "u1", "lesson-1", graded("quiz-1", 70, now), RecordOptions{})
	}))

	attempt, err := ledger.RecordAttempt(ctx, "u1", "lesson-1", graded("quiz-1", 40, now), RecordOptions{})
	require.NoError(t, err)
	require.NoError(t, rivalErr)
	assert.Equal(t, 2, rival.AttemptNumber)
	assert.Equal(t, 3, attempt.AttemptNumber)

	record, err := ledger.Get(ctx, "u1", "lesson-1")
	require.NoError(t, err)
	require.Len(t, record.QuizAttempts, 3)
	assert.Equal(t, 70.0, record.BestQuizScore)
	assert.Equal(t, 3, record.Version)
}

func TestRecordAttemptGivesUpAfterMaxRetries(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedger(db, 3)
	ctx := context.Background()
	now := time.Now().UTC()

	_, err := ledger.RecordAttempt(ctx, "u1", "lesson-1", graded("quiz-1", 10, now), RecordOptions{})
	require.NoError(t, err)

	bumps := 0
	require.NoError(t, db.Callback().Update().Before("gorm:begin_transaction").Register("test:bump_version", func(tx *gorm.DB) {
		if tx.Statement.Table != "progresses" {
			return
		}
		bumps++
		require.NoError(t, db.Exec("UPDATE progresses SET version = version + 1 WHERE user_id = ?", "u1").Error)
	}))

	_, err = ledger.RecordAttempt(ctx, "u1", "lesson-1", graded("quiz-1", 90, now), RecordOptions{})
	assert.True(t, errors.Is(err, apperrors.ErrConflict))
	assert.Equal(t, 3, bumps)

	record, err := ledger.Get(ctx, "u1", "lesson-1")
	require.NoError(t, err)
	assert.Len(t, record.QuizAttempts, 1, "conflicting attempt is not stored")
	assert.Equal(t, 10.0, record.BestQuizScore)
}

func TestRecordAttemptRespectsMaxAttempts(t *testing.T) {
	ledger := NewLedger(newTestDB(t), 0)
	ctx := context.Background()
	now := time.Now().UTC()
	opts := RecordOptions{MaxAttempts: 2}

	_, err := ledger.RecordAttempt(ctx, "u1", "lesson-1", graded("quiz-1", 10, now), opts)
	require.NoError(t, err)
	_, err = ledger.RecordAttempt(ctx, "u1", "lesson-1", graded("quiz-1", 20, now), opts)
	require.NoError(t, err)

	_, err = ledger.RecordAttempt(ctx, "u1", "lesson-1", graded("quiz-1", 30, now), opts)
	assert.True(t, errors.Is(err, apperrors.ErrAttemptsExhausted))
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))

	record, err := ledger.Get(ctx, "u1", "lesson-1")
	require.NoError(t, err)
	assert.Len(t, record.QuizAttempts, 2, "rejected attempt is not stored")
	assert.Equal(t, 20.0, record.BestQuizScore)
}

func TestAttemptsCountAcrossLessons(t *testing.T) {
	ledger := NewLedger(newTestDB(t), 0)
	ctx := context.Background()
	opts := RecordOptions{MaxAttempts: 2}

	first, err := ledger.RecordAttempt(ctx, "u1", "lesson-1", graded("quiz-1", 10, time.Now()), opts)
	require.NoError(t, err)
	assert.Equal(t, 1, first.AttemptNumber)

	// the quiz moved to lesson-2: numbering continues and the allowance holds
	second, err := ledger.RecordAttempt(ctx, "u1", "lesson-2", graded("quiz-1", 20, time.Now()), opts)
	require.NoError(t, err)
	assert.Equal(t, 2, second.AttemptNumber)

	_, err = ledger.RecordAttempt(ctx, "u1", "lesson-3", graded("quiz-1", 30, time.Now()), opts)
	assert.True(t, errors.Is(err, apperrors.ErrAttemptsExhausted))

	_, err = ledger.Get(ctx, "u1", "lesson-3")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound), "rejected attempt creates no record")
}

func TestExhaustedAttemptAddsNoRecord(t *testing.T) {
	ledger := NewLedger(newTestDB(t), 0)
	ctx := context.Background()

	_, err := ledger.RecordAttempt(ctx, "u1", "lesson-1", graded("quiz-1", 10, time.Now()), RecordOptions{MaxAttempts: 1})
	require.NoError(t, err)
	_, err = ledger.RecordAttempt(ctx, "u1", "lesson-1", graded("quiz-1", 10, time.Now()), RecordOptions{MaxAttempts: 1})
	require.Error(t, err)

	var count int64
	require.NoError(t, ledger.db.Model(&models.Progress{}).Where("user_id = ?", "u1").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRecordAttemptClientTimestampLastWriteWins(t *testing.T) {
	ledger := NewLedger(newTestDB(t), 0)
	ctx := context.Background()
	now := time.Now().UTC()

	later := time.Date(2026, 5, 2, 10, 0, 0, 0, time.UTC)
	earlier := later.Add(-time.Hour)

	_, err := ledger.RecordAttempt(ctx, "u1", "lesson-1", graded("quiz-1", 10, now), RecordOptions{ClientTimestamp: &later})
	require.NoError(t, err)
	_, err = ledger.RecordAttempt(ctx, "u1", "lesson-1", graded("quiz-1", 10, now), RecordOptions{ClientTimestamp: &earlier})
	require.NoError(t, err)
	_, err = ledger.RecordAttempt(ctx, "u1", "lesson-1", graded("quiz-1", 10, now), RecordOptions{})
	require.NoError(t, err)

	record, err := ledger.Get(ctx, "u1", "lesson-1")
	require.NoError(t, err)
	require.NotNil(t, record.ClientTimestamp)
	assert.True(t, later.Equal(*record.ClientTimestamp))
}

func TestGetMissingProgress(t *testing.T) {
	ledger := NewLedger(newTestDB(t), 0)

	_, err := ledger.Get(context.Background(), "nobody", "lesson-1")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestListAttemptsNewestFirstWithLesson(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedger(db, 0)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.Lesson{
		ID:      "lesson-1",
		Title:   datatypes.NewJSONType(models.Text("Fractions")),
		Subject: "math",
		Class:   5,
	}).Error)
	require.NoError(t, db.Create(&models.Lesson{
		ID:      "lesson-2",
		Title:   datatypes.NewJSONType(models.Text("Plants")),
		Subject: "science",
		Class:   5,
	}).Error)

	base := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	_, err := ledger.RecordAttempt(ctx, "u1", "lesson-1", graded("quiz-1", 10, base), RecordOptions{})
	require.NoError(t, err)
	_, err = ledger.RecordAttempt(ctx, "u1", "lesson-2", graded("quiz-2", 20, base.Add(2*time.Hour)), RecordOptions{})
	require.NoError(t, err)
	_, err = ledger.RecordAttempt(ctx, "u1", "lesson-1", graded("quiz-1", 30, base.Add(time.Hour)), RecordOptions{})
	require.NoError(t, err)
	_, err = ledger.RecordAttempt(ctx, "u2", "lesson-1", graded("quiz-1", 90, base.Add(3*time.Hour)), RecordOptions{})
	require.NoError(t, err)

	attempts, err := ledger.ListAttempts(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, attempts, 3)

	assert.Equal(t, "quiz-2", attempts[0].QuizID)
	assert.Equal(t, "Plants", attempts[0].LessonTitle.En)
	assert.Equal(t, "science", attempts[0].Subject)

	assert.Equal(t, "quiz-1", attempts[1].QuizID)
	assert.Equal(t, 2, attempts[1].AttemptNumber)
	assert.Equal(t, "Fractions", attempts[1].LessonTitle.En)

	assert.Equal(t, 1, attempts[2].AttemptNumber)

	none, err := ledger.ListAttempts(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)
}
