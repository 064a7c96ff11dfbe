package quizstore

import (
	"time"

	"quizcore/models"
)

// QuizView is a read projection of one canonical quiz record.
// It is either a FullQuiz or a StudentQuiz.
type QuizView interface {
	QuizID() string
	Redacted() bool
}

// FullQuiz is the unredacted record served to teachers and admins
type FullQuiz struct {
	models.Quiz
}

func (v FullQuiz) QuizID() string { return v.ID }
func (v FullQuiz) Redacted() bool { return false }

// StudentQuiz omits the answer key: no is_correct, correct_answer or explanation
type StudentQuiz struct {
	ID                   string                  `json:"id"`
	Title                models.MultilingualText `json:"title"`
	Description          models.MultilingualText `json:"description"`
	Subject              string                  `json:"subject"`
	Class                int                     `json:"class"`
	Type                 models.QuizType         `json:"type"`
	TimeLimit            *int                    `json:"time_limit,omitempty"`
	PassingScore         float64                 `json:"passing_score"`
	AttemptsAllowed      int                     `json:"attempts_allowed"`
	ShuffleQuestions     bool                    `json:"shuffle_questions"`
	ShuffleOptions       bool                    `json:"shuffle_options"`
	ShowCorrectAnswers   bool                    `json:"show_correct_answers"`
	ShowScoreImmediately bool                    `json:"show_score_immediately"`
	Questions            []StudentQuestion       `json:"questions"`
	TotalPoints          int                     `json:"total_points"`
	CreatedAt            time.Time               `json:"created_at"`
}

type StudentQuestion struct {
	ID       string                  `json:"id"`
	Type     models.QuestionType     `json:"type"`
	Question models.MultilingualText `json:"question"`
	ImageKey string                  `json:"image_key,omitempty"`
	Options  []StudentOption         `json:"options,omitempty"`
	Points   int                     `json:"points"`
}

type StudentOption struct {
	ID       string                  `json:"id"`
	Text     models.MultilingualText `json:"text"`
	ImageKey string                  `json:"image_key,omitempty"`
}

func (v StudentQuiz) QuizID() string { return v.ID }
func (v StudentQuiz) Redacted() bool { return true }

// Project picks the view for role. Anything but teacher or admin is redacted.
func Project(quiz *models.Quiz, role models.Role) QuizView {
	if role == models.RoleTeacher || role == models.RoleAdmin {
		return FullView(quiz)
	}
	return StudentView(quiz)
}

func FullView(quiz *models.Quiz) FullQuiz {
	return FullQuiz{Quiz: *quiz}
}

func StudentView(quiz *models.Quiz) StudentQuiz {
	view := StudentQuiz{
		ID:                   quiz.ID,
		Title:                quiz.Title.Data(),
		Description:          quiz.Description.Data(),
		Subject:              quiz.Subject,
		Class:                quiz.Class,
		Type:                 quiz.Type,
		TimeLimit:            quiz.TimeLimit,
		PassingScore:         quiz.PassingScore,
		AttemptsAllowed:      quiz.AttemptsAllowed,
		ShuffleQuestions:     quiz.ShuffleQuestions,
		ShuffleOptions:       quiz.ShuffleOptions,
		ShowCorrectAnswers:   quiz.ShowCorrect,
		ShowScoreImmediately: quiz.ShowScore,
		Questions:            make([]StudentQuestion, 0, len(quiz.Questions)),
		TotalPoints:          quiz.TotalPoints,
		CreatedAt:            quiz.CreatedAt,
	}

	for _, q := range quiz.Questions {
		sq := StudentQuestion{
			ID:       q.ID,
			Type:     q.Type,
			Question: q.Question,
			ImageKey: q.ImageKey,
			Points:   q.Points,
		}
		for _, opt := range q.Options {
			sq.Options = append(sq.Options, StudentOption{
				ID:       opt.ID,
				Text:     opt.Text,
				ImageKey: opt.ImageKey,
			})
		}
		view.Questions = append(view.Questions, sq)
	}
	return view
}
