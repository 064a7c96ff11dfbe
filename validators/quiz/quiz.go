package quizValidator

import (
	"strconv"
	"strings"

	"quizcore/middleware"
	"quizcore/models"
	"quizcore/services/evaluator"
	"quizcore/services/lessons"
	"quizcore/services/quizstore"
	"quizcore/validators"

	"github.com/gofiber/fiber/v2"
)

// ============ Quiz Validators ============

// CreateQuiz validates a new quiz definition
func CreateQuiz() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(quizstore.Definition)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		reqData.Subject = strings.TrimSpace(reqData.Subject)
		if err := validators.Validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, validators.Errors(err))
		}
		if errors := duplicateIDs(reqData.Questions); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedQuiz", reqData)
		return c.Next()
	}
}

// UpdateQuiz validates a partial quiz update
func UpdateQuiz() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if strings.TrimSpace(c.Params("id")) == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Quiz ID is required!", nil)
		}

		reqData := new(quizstore.Patch)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := validators.Validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, validators.Errors(err))
		}
		if errors := duplicateIDs(reqData.Questions); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedQuizPatch", reqData)
		return c.Next()
	}
}

// PublishQuiz reads {"published": bool}; an empty body publishes
func PublishQuiz() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Published *bool `json:"published"`
		})
		if len(c.Body()) > 0 {
			if err := c.BodyParser(reqData); err != nil {
				return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
			}
		}

		published := true
		if reqData.Published != nil {
			published = *reqData.Published
		}
		c.Locals("validatedPublished", published)
		return c.Next()
	}
}

// SubmitQuiz validates a learner's answers
func SubmitQuiz() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(evaluator.Submission)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		for i := range reqData.Answers {
			reqData.Answers[i].QuestionID = strings.TrimSpace(reqData.Answers[i].QuestionID)
		}
		if err := validators.Validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, validators.Errors(err))
		}

		c.Locals("validatedSubmission", reqData)
		return c.Next()
	}
}

// ListQuizzes reads the optional subject, class, type and mine query filters
func ListQuizzes() fiber.Handler {
	return func(c *fiber.Ctx) error {
		filter := quizstore.Filter{
			Subject: strings.TrimSpace(c.Query("subject")),
			Type:    models.QuizType(strings.TrimSpace(c.Query("type"))),
		}
		errors := make(map[string]string)

		if raw := strings.TrimSpace(c.Query("class")); raw != "" {
			class, err := strconv.Atoi(raw)
			if err != nil || class < models.MinClass || class > models.MaxClass {
				errors["class"] = "Class must be between 1 and 12!"
			}
			filter.Class = class
		}
		switch filter.Type {
		case "", models.QuizTypePractice, models.QuizTypeAssessment, models.QuizTypeCertification:
		default:
			errors["type"] = "Type must be one of: practice assessment certification!"
		}
		if c.QueryBool("mine") {
			if principal, ok := middleware.CurrentPrincipal(c); ok {
				filter.CreatedBy = principal.UserID
			}
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedQuizFilter", filter)
		return c.Next()
	}
}

// ============ Lesson Validators ============

// CreateLesson validates a new lesson
func CreateLesson() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(lessons.Definition)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		reqData.Subject = strings.TrimSpace(reqData.Subject)
		if err := validators.Validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, validators.Errors(err))
		}

		c.Locals("validatedLesson", reqData)
		return c.Next()
	}
}

// AttachQuiz validates {"quiz_id": "..."}
func AttachQuiz() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			QuizID string `json:"quiz_id"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		reqData.QuizID = strings.TrimSpace(reqData.QuizID)
		if reqData.QuizID == "" {
			return middleware.ValidationErrorResponse(c, map[string]string{"quiz_id": "Quiz ID is required!"})
		}

		c.Locals("validatedQuizID", reqData.QuizID)
		return c.Next()
	}
}

// duplicateIDs rejects question or option ids supplied twice
func duplicateIDs(questions []models.Question) map[string]string {
	errors := make(map[string]string)
	seen := make(map[string]bool, len(questions))
	for i, q := range questions {
		if q.ID != "" {
			if seen[q.ID] {
				errors["questions["+strconv.Itoa(i)+"].id"] = "Duplicate question ID!"
			}
			seen[q.ID] = true
		}
		options := make(map[string]bool, len(q.Options))
		for j, opt := range q.Options {
			if opt.ID == "" {
				continue
			}
			if options[opt.ID] {
				errors["questions["+strconv.Itoa(i)+"].options["+strconv.Itoa(j)+"].id"] = "Duplicate option ID!"
			}
			options[opt.ID] = true
		}
	}
	return errors
}
