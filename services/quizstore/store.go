// Package quizstore owns the authoritative quiz definitions.
package quizstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"quizcore/apperrors"
	"quizcore/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Definition is the caller supplied shape of a new quiz.
// TotalPoints is accepted for wire compatibility and always ignored. A
// question whose points are zero or absent is stored with the default weight
// of 1; negative points are rejected by validation.
type Definition struct {
	Title                models.MultilingualText `json:"title" validate:"required"`
	Description          models.MultilingualText `json:"description" validate:"-"`
	Subject              string                  `json:"subject" validate:"required,max=100"`
	Class                int                     `json:"class" validate:"min=1,max=12"`
	Type                 models.QuizType         `json:"type" validate:"required,oneof=practice assessment certification"`
	TimeLimit            *int                    `json:"time_limit" validate:"omitempty,min=1"`
	PassingScore         *float64                `json:"passing_score" validate:"omitempty,min=0,max=100"`
	AttemptsAllowed      *int                    `json:"attempts_allowed" validate:"omitempty,min=-1"`
	ShuffleQuestions     bool                    `json:"shuffle_questions"`
	ShuffleOptions       bool                    `json:"shuffle_options"`
	ShowCorrectAnswers   *bool                   `json:"show_correct_answers"`
	ShowScoreImmediately *bool                   `json:"show_score_immediately"`
	Questions            []models.Question       `json:"questions" validate:"required,min=1,dive"`
	TotalPoints          int                     `json:"total_points"`
}

// Patch is a partial update; nil fields are left untouched
type Patch struct {
	Title                *models.MultilingualText `json:"title"`
	Description          *models.MultilingualText `json:"description" validate:"-"`
	Subject              *string                  `json:"subject" validate:"omitempty,max=100"`
	Class                *int                     `json:"class" validate:"omitempty,min=1,max=12"`
	Type                 *models.QuizType         `json:"type" validate:"omitempty,oneof=practice assessment certification"`
	TimeLimit            *int                     `json:"time_limit" validate:"omitempty,min=1"`
	PassingScore         *float64                 `json:"passing_score" validate:"omitempty,min=0,max=100"`
	AttemptsAllowed      *int                     `json:"attempts_allowed" validate:"omitempty,min=-1"`
	ShuffleQuestions     *bool                    `json:"shuffle_questions"`
	ShuffleOptions       *bool                    `json:"shuffle_options"`
	ShowCorrectAnswers   *bool                    `json:"show_correct_answers"`
	ShowScoreImmediately *bool                    `json:"show_score_immediately"`
	IsActive             *bool                    `json:"is_active"`
	Questions            []models.Question        `json:"questions" validate:"omitempty,min=1,dive"`
	TotalPoints          *int                     `json:"total_points"`
}

// Filter narrows List. Zero values match everything.
type Filter struct {
	Subject       string
	Class         int
	Type          models.QuizType
	CreatedBy     string
	PublishedOnly bool
}

// Store persists quizzes through GORM
type Store struct {
	db  *gorm.DB
	now func() time.Time
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Create stores a new quiz owned by ownerID
func (s *Store) Create(ctx context.Context, def Definition, ownerID string) (*models.Quiz, error) {
	quiz := models.Quiz{
		ID:               uuid.NewString(),
		Title:            datatypes.NewJSONType(def.Title),
		Description:      datatypes.NewJSONType(def.Description),
		Subject:          def.Subject,
		Class:            def.Class,
		Type:             def.Type,
		TimeLimit:        def.TimeLimit,
		PassingScore:     models.DefaultPassingScore,
		AttemptsAllowed:  models.UnlimitedAttempts,
		ShuffleQuestions: def.ShuffleQuestions,
		ShuffleOptions:   def.ShuffleOptions,
		ShowCorrect:      boolOr(def.ShowCorrectAnswers, true),
		ShowScore:        boolOr(def.ShowScoreImmediately, true),
		Questions:        normalizeQuestions(def.Questions),
		CreatedBy:        ownerID,
		IsActive:         true,
	}
	if def.PassingScore != nil {
		quiz.PassingScore = *def.PassingScore
	}
	if def.AttemptsAllowed != nil {
		quiz.AttemptsAllowed = *def.AttemptsAllowed
	}

	if err := s.db.WithContext(ctx).Create(&quiz).Error; err != nil {
		return nil, fmt.Errorf("create quiz: %w", err)
	}
	return &quiz, nil
}

// Get returns the canonical quiz record. Soft deleted quizzes are not found.
func (s *Store) Get(ctx context.Context, id string) (*models.Quiz, error) {
	return getQuiz(s.db.WithContext(ctx), id)
}

// Update applies patch to the quiz. Changing questions recomputes total points.
func (s *Store) Update(ctx context.Context, id string, patch Patch) (*models.Quiz, error) {
	var updated *models.Quiz
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		quiz, err := getQuiz(tx, id)
		if err != nil {
			return err
		}

		applyPatch(quiz, patch)
		if err := tx.Save(quiz).Error; err != nil {
			return fmt.Errorf("update quiz %s: %w", id, err)
		}
		updated = quiz
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// SetPublished publishes or withdraws a quiz
func (s *Store) SetPublished(ctx context.Context, id string, published bool) (*models.Quiz, error) {
	return s.updateFlags(ctx, id, map[string]interface{}{"is_published": published})
}

// SoftDelete hides the quiz from listings and blocks further attempts.
// The record itself is kept.
func (s *Store) SoftDelete(ctx context.Context, id string) (*models.Quiz, error) {
	return s.updateFlags(ctx, id, map[string]interface{}{
		"is_deleted": true,
		"is_active":  false,
	})
}

// List returns quizzes matching filter, newest first, never soft deleted ones
func (s *Store) List(ctx context.Context, filter Filter) ([]models.Quiz, error) {
	query := s.db.WithContext(ctx).Model(&models.Quiz{}).Where("is_deleted = ?", false)

	if filter.Subject != "" {
		query = query.Where("subject = ?", filter.Subject)
	}
	if filter.Class > 0 {
		query = query.Where("class = ?", filter.Class)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.CreatedBy != "" {
		query = query.Where("created_by = ?", filter.CreatedBy)
	}
	if filter.PublishedOnly {
		query = query.Where("is_published = ? AND is_active = ?", true, true)
	}

	var quizzes []models.Quiz
	if err := query.Order("created_at desc").Find(&quizzes).Error; err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	return quizzes, nil
}

func (s *Store) updateFlags(ctx context.Context, id string, columns map[string]interface{}) (*models.Quiz, error) {
	columns["updated_at"] = s.now()

	db := s.db.WithContext(ctx)
	result := db.Model(&models.Quiz{}).
		Where("id = ? AND is_deleted = ?", id, false).
		UpdateColumns(columns)
	if result.Error != nil {
		return nil, fmt.Errorf("update quiz %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("quiz %s: %w", id, apperrors.ErrNotFound)
	}

	var quiz models.Quiz
	if err := db.Where("id = ?", id).First(&quiz).Error; err != nil {
		return nil, fmt.Errorf("reload quiz %s: %w", id, err)
	}
	return &quiz, nil
}

func getQuiz(db *gorm.DB, id string) (*models.Quiz, error) {
	var quiz models.Quiz
	err := db.Where("id = ? AND is_deleted = ?", id, false).First(&quiz).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("quiz %s: %w", id, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("get quiz %s: %w", id, err)
	}
	return &quiz, nil
}

func applyPatch(quiz *models.Quiz, patch Patch) {
	if patch.Title != nil {
		quiz.Title = datatypes.NewJSONType(*patch.Title)
	}
	if patch.Description != nil {
		quiz.Description = datatypes.NewJSONType(*patch.Description)
	}
	if patch.Subject != nil {
		quiz.Subject = *patch.Subject
	}
	if patch.Class != nil {
		quiz.Class = *patch.Class
	}
	if patch.Type != nil {
		quiz.Type = *patch.Type
	}
	if patch.TimeLimit != nil {
		quiz.TimeLimit = patch.TimeLimit
	}
	if patch.PassingScore != nil {
		quiz.PassingScore = *patch.PassingScore
	}
	if patch.AttemptsAllowed != nil {
		quiz.AttemptsAllowed = *patch.AttemptsAllowed
	}
	if patch.ShuffleQuestions != nil {
		quiz.ShuffleQuestions = *patch.ShuffleQuestions
	}
	if patch.ShuffleOptions != nil {
		quiz.ShuffleOptions = *patch.ShuffleOptions
	}
	if patch.ShowCorrectAnswers != nil {
		quiz.ShowCorrect = *patch.ShowCorrectAnswers
	}
	if patch.ShowScoreImmediately != nil {
		quiz.ShowScore = *patch.ShowScoreImmediately
	}
	if patch.IsActive != nil {
		quiz.IsActive = *patch.IsActive
	}
	if patch.Questions != nil {
		quiz.Questions = normalizeQuestions(patch.Questions)
	}
	// patch.TotalPoints is ignored; BeforeSave derives it from the questions
}

// normalizeQuestions gives every question and option a stable id and a
// positive point weight. Existing ids are kept so answers keep matching.
func normalizeQuestions(in []models.Question) []models.Question {
	out := make([]models.Question, len(in))
	for i, q := range in {
		if q.ID == "" {
			q.ID = uuid.NewString()
		}
		if q.Points <= 0 {
			q.Points = models.DefaultQuestionPoints
		}
		if q.Type == models.QuestionFillBlank {
			q.Options = nil
		} else {
			q.CorrectAnswer = nil
		}

		options := make([]models.Option, len(q.Options))
		for j, opt := range q.Options {
			if opt.ID == "" {
				opt.ID = uuid.NewString()
			}
			options[j] = opt
		}
		if len(options) > 0 {
			q.Options = options
		}
		out[i] = q
	}
	return out
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}
