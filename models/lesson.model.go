package models

import (
	"time"

	"gorm.io/datatypes"
)

// Lesson is a unit of study. A lesson may carry one quiz and a quiz belongs to
// at most one lesson; attempts on that quiz are recorded against the lesson's
// progress.
type Lesson struct {
	ID         string                               `json:"id" gorm:"type:varchar(36);primaryKey"`
	Title      datatypes.JSONType[MultilingualText] `json:"title"`
	Subject    string                               `json:"subject"`
	Class      int                                  `json:"class"`
	QuizID     *string                              `json:"quiz_id,omitempty" gorm:"type:varchar(36);uniqueIndex:idx_lessons_quiz"`
	OrderIndex int                                  `json:"order_index"`
	IsDeleted  bool                                 `json:"is_deleted" gorm:"index"`
	CreatedAt  time.Time                            `json:"created_at"`
	UpdatedAt  time.Time                            `json:"updated_at"`
}
