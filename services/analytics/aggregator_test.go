package analytics

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"quizcore/apperrors"
	"quizcore/database"
	"quizcore/models"
	"quizcore/services/evaluator"
	"quizcore/services/progress"

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

// seedQuiz stores a two question quiz linked to lesson-1
func seedQuiz(t *testing.T, db *gorm.DB) *models.Quiz {
	t.Helper()
	paris := models.Text("Paris")
	quiz := &models.Quiz{
		ID:           "quiz-1",
		Title:        datatypes.NewJSONType(models.Text("Capitals")),
		Subject:      "geography",
		Class:        6,
		Type:         models.QuizTypePractice,
		PassingScore: 50,
		Questions: []models.Question{
			{
				ID:       "q1",
				Type:     models.QuestionMultipleChoice,
				Question: models.Text("Capital of India?"),
				Points:   1,
				Options: []models.Option{
					{ID: "delhi", Text: models.Text("Delhi"), IsCorrect: true},
					{ID: "mumbai", Text: models.Text("Mumbai")},
				},
			},
			{
				ID:            "q2",
				Type:          models.QuestionFillBlank,
				Question:      models.Text("Capital of France is ____"),
				CorrectAnswer: &paris,
				Points:        1,
			},
		},
		IsActive:    true,
		IsPublished: true,
	}
	require.NoError(t, db.Create(quiz).Error)

	quizID := quiz.ID
	require.NoError(t, db.Create(&models.Lesson{
		ID:      "lesson-1",
		Title:   datatypes.NewJSONType(models.Text("Capitals")),
		Subject: "geography",
		Class:   6,
		QuizID:  &quizID,
	}).Error)
	return quiz
}

func submit(t *testing.T, ledger *progress.Ledger, quiz *models.Quiz, userID string, at time.Time, answers ...evaluator.SubmittedAnswer) {
	t.Helper()
	started := at.Add(-time.Minute)
	graded := evaluator.Evaluate(quiz, evaluator.Submission{Answers: answers, StartedAt: &started}, at)
	_, err := ledger.RecordAttempt(context.Background(), userID, "lesson-1", graded, progress.RecordOptions{})
	require.NoError(t, err)
}

func TestAggregateMissingQuiz(t *testing.T) {
	agg := NewAggregator(newTestDB(t))

	_, err := agg.Aggregate(context.Background(), "missing")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestAggregateWithoutAttempts(t *testing.T) {
	db := newTestDB(t)
	seedQuiz(t, db)

	result, err := NewAggregator(db).Aggregate(context.Background(), "quiz-1")
	require.NoError(t, err)

	assert.Equal(t, "quiz-1", result.QuizID)
	assert.Equal(t, 0, result.TotalAttempts)
	assert.Equal(t, 0.0, result.AverageScore)
	assert.Equal(t, 0.0, result.PassRate)
	require.Len(t, result.QuestionStats, 2)
	for _, stat := range result.QuestionStats {
		assert.Equal(t, 0, stat.AttemptCount)
		assert.Equal(t, 0, stat.CorrectCount)
		assert.Equal(t, 0.0, stat.CorrectPercentage)
	}
	assert.Equal(t, "q1", result.QuestionStats[0].QuestionID)
}

func TestAggregateComputesTotals(t *testing.T) {
	db := newTestDB(t)
	quiz := seedQuiz(t, db)
	ledger := progress.NewLedger(db, 0)
	at := time.Now()

	// s1: both right (100), then only q1 right (50)
	submit(t, ledger, quiz, "s1", at,
		evaluator.SubmittedAnswer{QuestionID: "q1", SelectedOption: "delhi"},
		evaluator.SubmittedAnswer{QuestionID: "q2", Answer: " paris "},
	)
	submit(t, ledger, quiz, "s1", at,
		evaluator.SubmittedAnswer{QuestionID: "q1", SelectedOption: "delhi"},
		evaluator.SubmittedAnswer{QuestionID: "q2", Answer: "rome"},
	)
	// s2: nothing right (0)
	submit(t, ledger, quiz, "s2", at,
		evaluator.SubmittedAnswer{QuestionID: "q1", SelectedOption: "mumbai"},
	)

	result, err := NewAggregator(db).Aggregate(context.Background(), "quiz-1")
	require.NoError(t, err)

	assert.Equal(t, 3, result.TotalAttempts)
	assert.Equal(t, 2, result.UniqueStudents)
	assert.InDelta(t, 50.0, result.AverageScore, 0.001)
	assert.InDelta(t, 200.0/3, result.PassRate, 0.001)
	assert.Equal(t, 100.0, result.HighestScore)
	assert.Equal(t, 0.0, result.LowestScore)
	assert.InDelta(t, 60.0, result.AverageDuration, 0.001)
	assert.Equal(t, 3, result.AttemptsToday)

	require.Len(t, result.QuestionStats, 2)
	q1, q2 := result.QuestionStats[0], result.QuestionStats[1]
	assert.Equal(t, 3, q1.AttemptCount)
	assert.Equal(t, 2, q1.CorrectCount)
	assert.InDelta(t, 200.0/3, q1.CorrectPercentage, 0.001)
	// unanswered questions are still graded, so they count as attempted
	assert.Equal(t, 3, q2.AttemptCount)
	assert.Equal(t, 1, q2.CorrectCount)
}

func TestAggregateCountsAttemptsOnAnyLesson(t *testing.T) {
	db := newTestDB(t)
	quiz := seedQuiz(t, db)
	ledger := progress.NewLedger(db, 0)
	at := time.Now()

	submit(t, ledger, quiz, "s1", at, evaluator.SubmittedAnswer{QuestionID: "q1", SelectedOption: "delhi"})

	other := *quiz
	other.ID = "quiz-2"
	graded := evaluator.Evaluate(&other, evaluator.Submission{
		Answers: []evaluator.SubmittedAnswer{{QuestionID: "q1", SelectedOption: "delhi"}},
	}, at)
	_, err := ledger.RecordAttempt(context.Background(), "s1", "lesson-1", graded, progress.RecordOptions{})
	require.NoError(t, err)
	graded.QuizID = "quiz-1"
	_, err = ledger.RecordAttempt(context.Background(), "s3", "unlinked-lesson", graded, progress.RecordOptions{})
	require.NoError(t, err)

	result, err := NewAggregator(db).Aggregate(context.Background(), "quiz-1")
	require.NoError(t, err)
	assert.Equal(t, 2, result.TotalAttempts, "quiz-2 attempt is ignored")
	assert.Equal(t, 2, result.UniqueStudents)
}

func TestAggregateKeepsAttemptsAfterRelink(t *testing.T) {
	db := newTestDB(t)
	quiz := seedQuiz(t, db)
	ledger := progress.NewLedger(db, 0)
	at := time.Now()

	submit(t, ledger, quiz, "s1", at, evaluator.SubmittedAnswer{QuestionID: "q1", SelectedOption: "delhi"})
	submit(t, ledger, quiz, "s1", at, evaluator.SubmittedAnswer{QuestionID: "q1", SelectedOption: "mumbai"})

	require.NoError(t, db.Model(&models.Lesson{}).Where("id = ?", "lesson-1").UpdateColumn("quiz_id", "quiz-2").Error)

	result, err := NewAggregator(db).Aggregate(context.Background(), "quiz-1")
	require.NoError(t, err)
	assert.Equal(t, 2, result.TotalAttempts)
	assert.InDelta(t, 25.0, result.AverageScore, 0.001)
	assert.InDelta(t, 50.0, result.PassRate, 0.001)
}

func TestAttemptsTodayUsesStartOfDay(t *testing.T) {
	quiz := &models.Quiz{ID: "quiz-1"}
	dayStart := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)

	result := summarize(quiz, []learnerAttempt{
		{userID: "a", attempt: models.Attempt{QuizID: "quiz-1", SubmittedAt: dayStart.Add(-time.Second)}},
		{userID: "a", attempt: models.Attempt{QuizID: "quiz-1", SubmittedAt: dayStart}},
		{userID: "b", attempt: models.Attempt{QuizID: "quiz-1", SubmittedAt: dayStart.Add(5 * time.Hour), Passed: true, Percentage: 80}},
	}, dayStart)

	assert.Equal(t, 2, result.AttemptsToday)
	assert.Equal(t, 0.0, result.AverageDuration, "no attempt carried a duration")
	assert.InDelta(t, 100.0/3, result.PassRate, 0.001)
	assert.Empty(t, result.QuestionStats)
}
