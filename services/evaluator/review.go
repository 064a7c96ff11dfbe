package evaluator

import "quizcore/models"

// QuestionReview is the post submission answer key of one question
type QuestionReview struct {
	QuestionID       string                   `json:"question_id"`
	CorrectOptionIDs []string                 `json:"correct_option_ids,omitempty"`
	CorrectAnswer    *models.MultilingualText `json:"correct_answer,omitempty"`
	Explanation      *models.MultilingualText `json:"explanation,omitempty"`
}

// Review lists the answer key of every question in quiz order
func Review(quiz *models.Quiz) []QuestionReview {
	reviews := make([]QuestionReview, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		review := QuestionReview{
			QuestionID:  q.ID,
			Explanation: q.Explanation,
		}
		if q.Type == models.QuestionFillBlank {
			review.CorrectAnswer = q.CorrectAnswer
		}
		for _, opt := range q.Options {
			if opt.IsCorrect {
				review.CorrectOptionIDs = append(review.CorrectOptionIDs, opt.ID)
			}
		}
		reviews = append(reviews, review)
	}
	return reviews
}
