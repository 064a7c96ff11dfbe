// Package evaluator grades a learner's answers against a quiz's answer key.
// Grading is a pure function of its inputs and never touches storage.
package evaluator

import (
	"strings"
	"time"

	"quizcore/models"
)

// SubmittedAnswer is the learner's answer to one question
type SubmittedAnswer struct {
	QuestionID     string `json:"question_id" validate:"required"`
	SelectedOption string `json:"selected_option,omitempty"`
	Answer         string `json:"answer,omitempty"`
}

// Submission is a validated set of answers for one quiz
type Submission struct {
	Answers         []SubmittedAnswer `json:"answers" validate:"required,min=1,dive"`
	StartedAt       *time.Time        `json:"started_at,omitempty"`
	ClientTimestamp *time.Time        `json:"client_timestamp,omitempty"`
}

// GradedAttempt is the outcome of grading one submission
type GradedAttempt struct {
	QuizID      string                `json:"quiz_id"`
	Score       int                   `json:"score"`
	TotalPoints int                   `json:"total_points"`
	Percentage  float64               `json:"percentage"`
	Passed      bool                  `json:"passed"`
	Answers     []models.AnswerResult `json:"answers"`
	StartedAt   *time.Time            `json:"started_at,omitempty"`
	SubmittedAt time.Time             `json:"submitted_at"`
	Duration    *int                  `json:"duration,omitempty"`
}

// Evaluate grades sub against quiz, question by question in quiz order.
//
// A question without an answer, or with an answer that matches nothing, is
// scored incorrect with zero points; it never aborts grading of the others.
// When a question is answered more than once the first answer counts.
func Evaluate(quiz *models.Quiz, sub Submission, now time.Time) GradedAttempt {
	byQuestion := make(map[string]SubmittedAnswer, len(sub.Answers))
	for _, ans := range sub.Answers {
		if _, seen := byQuestion[ans.QuestionID]; !seen {
			byQuestion[ans.QuestionID] = ans
		}
	}

	graded := GradedAttempt{
		QuizID:      quiz.ID,
		Answers:     make([]models.AnswerResult, 0, len(quiz.Questions)),
		StartedAt:   sub.StartedAt,
		SubmittedAt: now,
	}

	for _, question := range quiz.Questions {
		var result models.AnswerResult
		if ans, ok := byQuestion[question.ID]; ok {
			result = GradeAnswer(question, ans)
		} else {
			result = models.AnswerResult{QuestionID: question.ID}
		}
		graded.Score += result.Points
		graded.Answers = append(graded.Answers, result)
	}

	graded.TotalPoints = quiz.TotalPoints
	if graded.TotalPoints <= 0 {
		graded.TotalPoints = models.SumPoints(quiz.Questions)
	}
	graded.Percentage = Percentage(graded.Score, graded.TotalPoints)
	graded.Passed = graded.Percentage >= quiz.PassingScore

	if sub.StartedAt != nil {
		seconds := int(now.Sub(*sub.StartedAt).Seconds())
		if seconds < 0 {
			seconds = 0
		}
		graded.Duration = &seconds
	}

	return graded
}

// GradeAnswer scores a single answer
func GradeAnswer(question models.Question, ans SubmittedAnswer) models.AnswerResult {
	result := models.AnswerResult{
		QuestionID:     question.ID,
		SelectedOption: ans.SelectedOption,
		Answer:         ans.Answer,
	}

	switch {
	case question.Type.IsChoice():
		if ans.SelectedOption == "" {
			break
		}
		if opt, ok := question.OptionByID(ans.SelectedOption); ok && opt.IsCorrect {
			result.IsCorrect = true
		}
	case question.Type == models.QuestionFillBlank:
		if question.CorrectAnswer == nil || strings.TrimSpace(ans.Answer) == "" {
			break
		}
		result.IsCorrect = MatchesBlank(ans.Answer, question.CorrectAnswer.En)
	}

	if result.IsCorrect {
		result.Points = question.Points
	}
	return result
}

// MatchesBlank compares a free text answer with the English reference,
// ignoring surrounding whitespace and case.
func MatchesBlank(answer, reference string) bool {
	return strings.EqualFold(strings.TrimSpace(answer), strings.TrimSpace(reference))
}

// Percentage returns score as a percentage of total, or 0 when total is 0
func Percentage(score, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(score) / float64(total) * 100
}

// ToAttempt fixes the graded result at a position in the learner's history
func (g GradedAttempt) ToAttempt(attemptNumber int) models.Attempt {
	return models.Attempt{
		QuizID:        g.QuizID,
		AttemptNumber: attemptNumber,
		Score:         g.Score,
		TotalPoints:   g.TotalPoints,
		Percentage:    g.Percentage,
		Passed:        g.Passed,
		Answers:       g.Answers,
		StartedAt:     g.StartedAt,
		SubmittedAt:   g.SubmittedAt,
		Duration:      g.Duration,
	}
}
