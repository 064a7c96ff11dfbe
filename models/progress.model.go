package models

import (
	"time"

	"gorm.io/datatypes"
)

type SyncStatus string

const (
	SyncSynced   SyncStatus = "synced"
	SyncPending  SyncStatus = "pending"
	SyncConflict SyncStatus = "conflict"
)

// Progress is the per learner, per lesson record that accumulates quiz attempts
type Progress struct {
	ID              string                       `json:"id" gorm:"type:varchar(36);primaryKey"`
	UserID          string                       `json:"user_id" gorm:"type:varchar(64);not null;uniqueIndex:idx_progress_user_lesson"`
	LessonID        string                       `json:"lesson_id" gorm:"type:varchar(36);not null;uniqueIndex:idx_progress_user_lesson;index"`
	QuizAttempts    datatypes.JSONSlice[Attempt] `json:"quiz_attempts"`
	BestQuizScore   float64                      `json:"best_quiz_score"`
	SyncStatus      SyncStatus                   `json:"sync_status" gorm:"type:varchar(16)"`
	LastSyncedAt    *time.Time                   `json:"last_synced_at"`
	ClientTimestamp *time.Time                   `json:"client_timestamp,omitempty"`
	Version         int                          `json:"-" gorm:"not null"`
	CreatedAt       time.Time                    `json:"created_at"`
	UpdatedAt       time.Time                    `json:"updated_at"`
}

// Attempt is one graded submission. Attempts are appended, never edited.
type Attempt struct {
	QuizID        string         `json:"quiz_id"`
	AttemptNumber int            `json:"attempt_number"`
	Score         int            `json:"score"`
	TotalPoints   int            `json:"total_points"`
	Percentage    float64        `json:"percentage"`
	Passed        bool           `json:"passed"`
	Answers       []AnswerResult `json:"answers"`
	StartedAt     *time.Time     `json:"started_at,omitempty"`
	SubmittedAt   time.Time      `json:"submitted_at"`
	Duration      *int           `json:"duration,omitempty"` // seconds
}

// AnswerResult is the graded outcome of one question inside an attempt
type AnswerResult struct {
	QuestionID     string `json:"question_id"`
	SelectedOption string `json:"selected_option,omitempty"`
	Answer         string `json:"answer,omitempty"`
	IsCorrect      bool   `json:"is_correct"`
	Points         int    `json:"points"`
}

// CountAttempts returns how many attempts this record holds for quizID
func (p *Progress) CountAttempts(quizID string) int {
	count := 0
	for _, a := range p.QuizAttempts {
		if a.QuizID == quizID {
			count++
		}
	}
	return count
}

// AttemptRecorded describes a persisted attempt to downstream sync consumers
type AttemptRecorded struct {
	UserID          string     `json:"user_id"`
	LessonID        string     `json:"lesson_id"`
	QuizID          string     `json:"quiz_id"`
	AttemptNumber   int        `json:"attempt_number"`
	Percentage      float64    `json:"percentage"`
	Passed          bool       `json:"passed"`
	ClientTimestamp *time.Time `json:"client_timestamp,omitempty"`
	RecordedAt      time.Time  `json:"recorded_at"`
}
