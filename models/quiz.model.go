package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type QuizType string

const (
	QuizTypePractice      QuizType = "practice"
	QuizTypeAssessment    QuizType = "assessment"
	QuizTypeCertification QuizType = "certification"
)

type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionTrueFalse      QuestionType = "true_false"
	QuestionFillBlank      QuestionType = "fill_blank"
	QuestionImageChoice    QuestionType = "image_choice"
)

const (
	DefaultPassingScore    = 60
	DefaultQuestionPoints  = 1
	UnlimitedAttempts      = -1
	MinClass, MaxClass     = 1, 12
	MinPassing, MaxPassing = 0, 100
)

// Quiz is an assessment definition owned by an instructor
type Quiz struct {
	ID               string                               `json:"id" gorm:"type:varchar(36);primaryKey"`
	Title            datatypes.JSONType[MultilingualText] `json:"title"`
	Description      datatypes.JSONType[MultilingualText] `json:"description"`
	Subject          string                               `json:"subject" gorm:"index"`
	Class            int                                  `json:"class" gorm:"index"`
	Type             QuizType                             `json:"type" gorm:"type:varchar(20);index"`
	TimeLimit        *int                                 `json:"time_limit,omitempty"` // minutes
	PassingScore     float64                              `json:"passing_score"`
	AttemptsAllowed  int                                  `json:"attempts_allowed"` // -1 = unlimited
	ShuffleQuestions bool                                 `json:"shuffle_questions"`
	ShuffleOptions   bool                                 `json:"shuffle_options"`
	ShowCorrect      bool                                 `json:"show_correct_answers" gorm:"column:show_correct_answers"`
	ShowScore        bool                                 `json:"show_score_immediately" gorm:"column:show_score_immediately"`
	Questions        datatypes.JSONSlice[Question]        `json:"questions"`
	TotalPoints      int                                  `json:"total_points"`
	CreatedBy        string                               `json:"created_by" gorm:"type:varchar(64);index"`
	IsPublished      bool                                 `json:"is_published"`
	IsActive         bool                                 `json:"is_active"`
	IsDeleted        bool                                 `json:"is_deleted" gorm:"index"`
	CreatedAt        time.Time                            `json:"created_at"`
	UpdatedAt        time.Time                            `json:"updated_at"`
}

// Question is owned by its quiz and stored inline with it
type Question struct {
	ID            string            `json:"id"`
	Type          QuestionType      `json:"type"`
	Question      MultilingualText  `json:"question"`
	ImageKey      string            `json:"image_key,omitempty"`
	Options       []Option          `json:"options,omitempty"`
	CorrectAnswer *MultilingualText `json:"correct_answer,omitempty"` // fill_blank only
	Explanation   *MultilingualText `json:"explanation,omitempty"`
	Points        int               `json:"points"` // zero or absent means DefaultQuestionPoints
}

// Option is one selectable answer of a choice question
type Option struct {
	ID        string           `json:"id"`
	Text      MultilingualText `json:"text"`
	ImageKey  string           `json:"image_key,omitempty"`
	IsCorrect bool             `json:"is_correct"`
}

// IsChoice reports whether the question is answered by selecting an option
func (t QuestionType) IsChoice() bool {
	return t == QuestionMultipleChoice || t == QuestionTrueFalse || t == QuestionImageChoice
}

// SumPoints returns the sum of question points
func SumPoints(questions []Question) int {
	total := 0
	for _, q := range questions {
		total += q.Points
	}
	return total
}

// OptionByID finds an option by its stable id
func (q Question) OptionByID(id string) (Option, bool) {
	for _, opt := range q.Options {
		if opt.ID == id {
			return opt, true
		}
	}
	return Option{}, false
}

// BeforeSave keeps total_points in step with the questions on every write
func (q *Quiz) BeforeSave(tx *gorm.DB) error {
	q.TotalPoints = SumPoints(q.Questions)
	return nil
}

// AfterFind keeps total_points in step with the questions on every read
func (q *Quiz) AfterFind(tx *gorm.DB) error {
	q.TotalPoints = SumPoints(q.Questions)
	return nil
}
