// Package lessons links quizzes to the lessons whose progress records hold
// their attempts.
package lessons

import (
	"context"
	"errors"
	"fmt"

	"quizcore/apperrors"
	"quizcore/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Definition is the caller supplied shape of a new lesson
type Definition struct {
	Title      models.MultilingualText `json:"title" validate:"required"`
	Subject    string                  `json:"subject" validate:"required,max=100"`
	Class      int                     `json:"class" validate:"min=1,max=12"`
	OrderIndex int                     `json:"order_index" validate:"min=0"`
}

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, def Definition) (*models.Lesson, error) {
	lesson := models.Lesson{
		ID:         uuid.NewString(),
		Title:      datatypes.NewJSONType(def.Title),
		Subject:    def.Subject,
		Class:      def.Class,
		OrderIndex: def.OrderIndex,
	}
	if err := s.db.WithContext(ctx).Create(&lesson).Error; err != nil {
		return nil, fmt.Errorf("create lesson: %w", err)
	}
	return &lesson, nil
}

func (s *Store) Get(ctx context.Context, id string) (*models.Lesson, error) {
	var lesson models.Lesson
	err := s.db.WithContext(ctx).Where("id = ? AND is_deleted = ?", id, false).First(&lesson).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("lesson %s: %w", id, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("get lesson %s: %w", id, err)
	}
	return &lesson, nil
}

// AttachQuiz makes quizID the quiz of the lesson. Both must exist, and a quiz
// already carried by another lesson is a conflict: its attempts would
// otherwise be split across progress records.
func (s *Store) AttachQuiz(ctx context.Context, lessonID, quizID string) (*models.Lesson, error) {
	var lesson *models.Lesson
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var quizCount int64
		if err := tx.Model(&models.Quiz{}).Where("id = ? AND is_deleted = ?", quizID, false).Count(&quizCount).Error; err != nil {
			return fmt.Errorf("check quiz %s: %w", quizID, err)
		}
		if quizCount == 0 {
			return fmt.Errorf("quiz %s: %w", quizID, apperrors.ErrNotFound)
		}

		found, err := (&Store{db: tx}).Get(ctx, lessonID)
		if err != nil {
			return err
		}

		var linked int64
		if err := tx.Model(&models.Lesson{}).Where("quiz_id = ? AND id <> ?", quizID, lessonID).Count(&linked).Error; err != nil {
			return fmt.Errorf("check lessons of quiz %s: %w", quizID, err)
		}
		if linked > 0 {
			return fmt.Errorf("quiz %s: %w", quizID, apperrors.ErrQuizLinked)
		}
		found.QuizID = &quizID
		if err := tx.Model(found).UpdateColumn("quiz_id", quizID).Error; err != nil {
			return fmt.Errorf("attach quiz to lesson %s: %w", lessonID, err)
		}
		lesson = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return lesson, nil
}

// ForQuiz returns the lesson a quiz's attempts are recorded against.
// A quiz without a lesson reports ErrNotFound.
func (s *Store) ForQuiz(ctx context.Context, quizID string) (*models.Lesson, error) {
	var lesson models.Lesson
	err := s.db.WithContext(ctx).
		Where("quiz_id = ? AND is_deleted = ?", quizID, false).
		First(&lesson).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("lesson for quiz %s: %w", quizID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("lesson for quiz %s: %w", quizID, err)
	}
	return &lesson, nil
}
