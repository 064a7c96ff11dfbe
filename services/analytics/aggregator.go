// Package analytics computes per quiz statistics from recorded attempts.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"quizcore/apperrors"
	"quizcore/models"

	"github.com/jinzhu/now"
	"gorm.io/gorm"
)

const scanBatchSize = 200

// Aggregator reads progress records without locking them; attempts appended
// while it scans may or may not be counted.
type Aggregator struct {
	db  *gorm.DB
	now func() time.Time
}

func NewAggregator(db *gorm.DB) *Aggregator {
	return &Aggregator{db: db, now: time.Now}
}

// learnerAttempt pairs an attempt with the learner who made it
type learnerAttempt struct {
	userID  string
	attempt models.Attempt
}

// Aggregate returns the analytics of quizID. A quiz nobody has attempted yet
// yields zeroed totals and one zeroed row per question.
func (a *Aggregator) Aggregate(ctx context.Context, quizID string) (models.QuizAnalytics, error) {
	db := a.db.WithContext(ctx)

	var quiz models.Quiz
	if err := db.Where("id = ?", quizID).First(&quiz).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.QuizAnalytics{}, fmt.Errorf("quiz %s: %w", quizID, apperrors.ErrNotFound)
		}
		return models.QuizAnalytics{}, fmt.Errorf("get quiz %s: %w", quizID, err)
	}

	attempts, err := a.collect(db, quizID)
	if err != nil {
		return models.QuizAnalytics{}, err
	}
	return summarize(&quiz, attempts, now.With(a.now()).BeginningOfDay()), nil
}

// collect walks every progress record in batches and keeps only the attempts
// made on quizID. Attempts stay counted after the quiz moves to another lesson.
func (a *Aggregator) collect(db *gorm.DB, quizID string) ([]learnerAttempt, error) {
	var (
		out   []learnerAttempt
		batch []models.Progress
	)
	result := db.Model(&models.Progress{}).
		FindInBatches(&batch, scanBatchSize, func(tx *gorm.DB, _ int) error {
			for _, record := range batch {
				for _, attempt := range record.QuizAttempts {
					if attempt.QuizID == quizID {
						out = append(out, learnerAttempt{userID: record.UserID, attempt: attempt})
					}
				}
			}
			return nil
		})
	if result.Error != nil {
		return nil, fmt.Errorf("scan progress for quiz %s: %w", quizID, result.Error)
	}
	return out, nil
}

// summarize folds attempts into analytics. Answers to questions no longer in
// the quiz are not reported.
func summarize(quiz *models.Quiz, attempts []learnerAttempt, dayStart time.Time) models.QuizAnalytics {
	stats := make([]models.QuestionStat, len(quiz.Questions))
	index := make(map[string]int, len(quiz.Questions))
	for i, q := range quiz.Questions {
		stats[i] = models.QuestionStat{QuestionID: q.ID, Question: q.Question}
		index[q.ID] = i
	}

	result := models.QuizAnalytics{
		QuizID:        quiz.ID,
		TotalAttempts: len(attempts),
		QuestionStats: stats,
	}
	if len(attempts) == 0 {
		return result
	}

	var (
		students      = make(map[string]struct{})
		sumPercentage float64
		passed        int
		sumDuration   int
		withDuration  int
	)
	result.HighestScore = attempts[0].attempt.Percentage
	result.LowestScore = attempts[0].attempt.Percentage

	for _, la := range attempts {
		at := la.attempt
		students[la.userID] = struct{}{}
		sumPercentage += at.Percentage
		if at.Passed {
			passed++
		}
		if at.Percentage > result.HighestScore {
			result.HighestScore = at.Percentage
		}
		if at.Percentage < result.LowestScore {
			result.LowestScore = at.Percentage
		}
		if at.Duration != nil {
			sumDuration += *at.Duration
			withDuration++
		}
		if !at.SubmittedAt.Before(dayStart) {
			result.AttemptsToday++
		}

		for _, ans := range at.Answers {
			i, ok := index[ans.QuestionID]
			if !ok {
				continue
			}
			stats[i].AttemptCount++
			if ans.IsCorrect {
				stats[i].CorrectCount++
			}
		}
	}

	total := float64(len(attempts))
	result.UniqueStudents = len(students)
	result.AverageScore = sumPercentage / total
	result.PassRate = float64(passed) / total * 100
	if withDuration > 0 {
		result.AverageDuration = float64(sumDuration) / float64(withDuration)
	}
	for i := range stats {
		if stats[i].AttemptCount > 0 {
			stats[i].CorrectPercentage = float64(stats[i].CorrectCount) / float64(stats[i].AttemptCount) * 100
		}
	}
	return result
}
