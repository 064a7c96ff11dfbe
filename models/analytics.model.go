package models

import (
	"time"

	"gorm.io/datatypes"
)

// QuizAnalytics summarises all attempts made on a quiz
type QuizAnalytics struct {
	QuizID          string         `json:"quiz_id"`
	TotalAttempts   int            `json:"total_attempts"`
	UniqueStudents  int            `json:"unique_students"`
	AverageScore    float64        `json:"average_score"`
	PassRate        float64        `json:"pass_rate"`
	HighestScore    float64        `json:"highest_score"`
	LowestScore     float64        `json:"lowest_score"`
	AverageDuration float64        `json:"average_duration"` // seconds, over attempts that carry one
	AttemptsToday   int            `json:"attempts_today"`
	QuestionStats   []QuestionStat `json:"question_stats"`
}

// QuestionStat is the per question row of QuizAnalytics
type QuestionStat struct {
	QuestionID        string           `json:"question_id"`
	Question          MultilingualText `json:"question"`
	AttemptCount      int              `json:"attempt_count"`
	CorrectCount      int              `json:"correct_count"`
	CorrectPercentage float64          `json:"correct_percentage"`
}

// QuizAnalyticsSnapshot caches the last computed analytics of a quiz
type QuizAnalyticsSnapshot struct {
	QuizID        string                            `json:"quiz_id" gorm:"type:varchar(36);primaryKey"`
	Analytics     datatypes.JSONType[QuizAnalytics] `json:"analytics"`
	TotalAttempts int                               `json:"total_attempts"`
	CalculatedAt  time.Time                         `json:"calculated_at"`
}
