// Package assessment wires the quiz store, evaluator, progress ledger and
// analytics aggregator behind the caller's role.
package assessment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"quizcore/apperrors"
	"quizcore/models"
	"quizcore/services/analytics"
	"quizcore/services/evaluator"
	"quizcore/services/lessons"
	"quizcore/services/progress"
	"quizcore/services/quizstore"

	"gorm.io/gorm"
)

// Notifier is told about every persisted attempt. It must not block the
// caller for long; its failures are its own concern.
type Notifier interface {
	AttemptRecorded(ctx context.Context, event models.AttemptRecorded)
}

// SubmitResult is what a learner gets back after submitting a quiz.
// Graded is nil when the quiz hides scores from students. Review carries the
// answer key, so it is only sent alongside Graded.
type SubmitResult struct {
	QuizID        string                     `json:"quiz_id"`
	LessonID      string                     `json:"lesson_id,omitempty"`
	Recorded      bool                       `json:"recorded"`
	AttemptNumber int                        `json:"attempt_number,omitempty"`
	Graded        *evaluator.GradedAttempt   `json:"graded,omitempty"`
	Review        []evaluator.QuestionReview `json:"review,omitempty"`
}

type Service struct {
	Quizzes   *quizstore.Store
	Lessons   *lessons.Store
	Ledger    *progress.Ledger
	Analytics *analytics.Aggregator

	notifier Notifier
	now      func() time.Time
}

// NewService builds the service over db. notifier may be nil.
func NewService(db *gorm.DB, maxRetries int, notifier Notifier) *Service {
	return &Service{
		Quizzes:   quizstore.NewStore(db),
		Lessons:   lessons.NewStore(db),
		Ledger:    progress.NewLedger(db, maxRetries),
		Analytics: analytics.NewAggregator(db),
		notifier:  notifier,
		now:       time.Now,
	}
}

// SubmitQuiz grades the submission and, when the quiz belongs to a lesson,
// appends the attempt to the learner's progress.
func (s *Service) SubmitQuiz(ctx context.Context, principal models.Principal, quizID string, sub evaluator.Submission) (*SubmitResult, error) {
	quiz, err := s.visibleQuiz(ctx, principal, quizID)
	if err != nil {
		return nil, err
	}
	if !quiz.IsActive {
		return nil, fmt.Errorf("quiz %s is inactive: %w", quizID, apperrors.ErrNotFound)
	}

	graded := evaluator.Evaluate(quiz, sub, s.now())
	result := &SubmitResult{QuizID: quiz.ID}

	lesson, err := s.Lessons.ForQuiz(ctx, quiz.ID)
	switch {
	case err == nil:
		attempt, err := s.Ledger.RecordAttempt(ctx, principal.UserID, lesson.ID, graded, progress.RecordOptions{
			ClientTimestamp: sub.ClientTimestamp,
			MaxAttempts:     quiz.AttemptsAllowed,
		})
		if err != nil {
			return nil, err
		}
		result.LessonID = lesson.ID
		result.Recorded = true
		result.AttemptNumber = attempt.AttemptNumber
		s.notify(ctx, principal, lesson.ID, attempt, sub.ClientTimestamp)
	case errors.Is(err, apperrors.ErrNotFound):
		// no lesson: grading only
	default:
		return nil, err
	}

	if quiz.ShowScore || principal.CanManageQuizzes() {
		result.Graded = &graded
	}
	if quiz.ShowCorrect && result.Graded != nil {
		result.Review = evaluator.Review(quiz)
	}
	return result, nil
}

func (s *Service) notify(ctx context.Context, principal models.Principal, lessonID string, attempt models.Attempt, clientTS *time.Time) {
	if s.notifier == nil {
		return
	}
	s.notifier.AttemptRecorded(ctx, models.AttemptRecorded{
		UserID:          principal.UserID,
		LessonID:        lessonID,
		QuizID:          attempt.QuizID,
		AttemptNumber:   attempt.AttemptNumber,
		Percentage:      attempt.Percentage,
		Passed:          attempt.Passed,
		ClientTimestamp: clientTS,
		RecordedAt:      attempt.SubmittedAt,
	})
}

// GetQuiz returns the view of the quiz the principal may see
func (s *Service) GetQuiz(ctx context.Context, principal models.Principal, quizID string) (quizstore.QuizView, error) {
	quiz, err := s.visibleQuiz(ctx, principal, quizID)
	if err != nil {
		return nil, err
	}
	return quizstore.Project(quiz, principal.Role), nil
}

// ListQuizzes lists quizzes as views. Students only ever see published ones.
func (s *Service) ListQuizzes(ctx context.Context, principal models.Principal, filter quizstore.Filter) ([]quizstore.QuizView, error) {
	if !principal.CanManageQuizzes() {
		filter.PublishedOnly = true
	}
	quizzes, err := s.Quizzes.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	views := make([]quizstore.QuizView, 0, len(quizzes))
	for i := range quizzes {
		views = append(views, quizstore.Project(&quizzes[i], principal.Role))
	}
	return views, nil
}

func (s *Service) CreateQuiz(ctx context.Context, principal models.Principal, def quizstore.Definition) (*models.Quiz, error) {
	if !principal.CanManageQuizzes() {
		return nil, fmt.Errorf("create quiz: %w", apperrors.ErrForbidden)
	}
	return s.Quizzes.Create(ctx, def, principal.UserID)
}

func (s *Service) UpdateQuiz(ctx context.Context, principal models.Principal, quizID string, patch quizstore.Patch) (*models.Quiz, error) {
	if _, err := s.ownedQuiz(ctx, principal, quizID); err != nil {
		return nil, err
	}
	return s.Quizzes.Update(ctx, quizID, patch)
}

func (s *Service) DeleteQuiz(ctx context.Context, principal models.Principal, quizID string) (*models.Quiz, error) {
	if _, err := s.ownedQuiz(ctx, principal, quizID); err != nil {
		return nil, err
	}
	return s.Quizzes.SoftDelete(ctx, quizID)
}

func (s *Service) PublishQuiz(ctx context.Context, principal models.Principal, quizID string, published bool) (*models.Quiz, error) {
	if _, err := s.ownedQuiz(ctx, principal, quizID); err != nil {
		return nil, err
	}
	return s.Quizzes.SetPublished(ctx, quizID, published)
}

// QuizAnalytics returns the aggregate for quizID. With cached set a stored
// snapshot is served when one exists.
func (s *Service) QuizAnalytics(ctx context.Context, principal models.Principal, quizID string, cached bool) (models.QuizAnalytics, error) {
	if !principal.CanManageQuizzes() {
		return models.QuizAnalytics{}, fmt.Errorf("analytics for quiz %s: %w", quizID, apperrors.ErrForbidden)
	}
	if cached {
		snapshot, err := s.Analytics.Snapshot(ctx, quizID)
		if err == nil {
			return snapshot.Analytics.Data(), nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return models.QuizAnalytics{}, err
		}
	}
	return s.Analytics.Aggregate(ctx, quizID)
}

// MyAttempts lists the principal's attempts across lessons, newest first
func (s *Service) MyAttempts(ctx context.Context, principal models.Principal) ([]progress.AttemptWithLesson, error) {
	return s.Ledger.ListAttempts(ctx, principal.UserID)
}

func (s *Service) CreateLesson(ctx context.Context, principal models.Principal, def lessons.Definition) (*models.Lesson, error) {
	if !principal.CanManageQuizzes() {
		return nil, fmt.Errorf("create lesson: %w", apperrors.ErrForbidden)
	}
	return s.Lessons.Create(ctx, def)
}

func (s *Service) GetLesson(ctx context.Context, lessonID string) (*models.Lesson, error) {
	return s.Lessons.Get(ctx, lessonID)
}

// AttachQuiz links a quiz the principal owns to a lesson
func (s *Service) AttachQuiz(ctx context.Context, principal models.Principal, lessonID, quizID string) (*models.Lesson, error) {
	if _, err := s.ownedQuiz(ctx, principal, quizID); err != nil {
		return nil, err
	}
	return s.Lessons.AttachQuiz(ctx, lessonID, quizID)
}

// visibleQuiz loads a quiz. Students cannot see unpublished or inactive
// quizzes; to them such quizzes do not exist.
func (s *Service) visibleQuiz(ctx context.Context, principal models.Principal, quizID string) (*models.Quiz, error) {
	quiz, err := s.Quizzes.Get(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if !principal.CanManageQuizzes() && (!quiz.IsPublished || !quiz.IsActive) {
		return nil, fmt.Errorf("quiz %s: %w", quizID, apperrors.ErrNotFound)
	}
	return quiz, nil
}

func (s *Service) ownedQuiz(ctx context.Context, principal models.Principal, quizID string) (*models.Quiz, error) {
	if !principal.CanManageQuizzes() {
		return nil, fmt.Errorf("modify quiz %s: %w", quizID, apperrors.ErrForbidden)
	}
	quiz, err := s.Quizzes.Get(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if !principal.Owns(quiz.CreatedBy) {
		return nil, fmt.Errorf("quiz %s belongs to another teacher: %w", quizID, apperrors.ErrForbidden)
	}
	return quiz, nil
}
