package controllers

import (
	"quizcore/middleware"
	"quizcore/services/assessment"
	"quizcore/services/evaluator"
	"quizcore/services/quizstore"

	"github.com/gofiber/fiber/v2"
)

// Assessment serves every quiz and lesson handler; set it with Init
var Assessment *assessment.Service

func Init(svc *assessment.Service) {
	Assessment = svc
}

// CreateQuiz stores a new quiz owned by the caller
func CreateQuiz(c *fiber.Ctx) error {
	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	reqData, ok := c.Locals("validatedQuiz").(*quizstore.Definition)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	quiz, err := Assessment.CreateQuiz(c.UserContext(), principal, *reqData)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Quiz created successfully!", quiz)
}

// ListQuizzes lists the quizzes visible to the caller, newest first
func ListQuizzes(c *fiber.Ctx) error {
	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	filter, _ := c.Locals("validatedQuizFilter").(quizstore.Filter)

	views, err := Assessment.ListQuizzes(c.UserContext(), principal, filter)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quizzes fetched successfully!", fiber.Map{
		"quizzes": views,
		"count":   len(views),
	})
}

// GetQuiz returns the quiz as the caller's role may see it
func GetQuiz(c *fiber.Ctx) error {
	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	view, err := Assessment.GetQuiz(c.UserContext(), principal, c.Params("id"))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz fetched successfully!", view)
}

func UpdateQuiz(c *fiber.Ctx) error {
	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	reqData, ok := c.Locals("validatedQuizPatch").(*quizstore.Patch)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	quiz, err := Assessment.UpdateQuiz(c.UserContext(), principal, c.Params("id"), *reqData)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz updated successfully!", quiz)
}

func DeleteQuiz(c *fiber.Ctx) error {
	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	if _, err := Assessment.DeleteQuiz(c.UserContext(), principal, c.Params("id")); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz deleted successfully!", nil)
}

func PublishQuiz(c *fiber.Ctx) error {
	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	published, _ := c.Locals("validatedPublished").(bool)

	quiz, err := Assessment.PublishQuiz(c.UserContext(), principal, c.Params("id"), published)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	message := "Quiz published successfully!"
	if !published {
		message = "Quiz unpublished successfully!"
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, message, quiz)
}

// SubmitQuiz grades the caller's answers and records the attempt
func SubmitQuiz(c *fiber.Ctx) error {
	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	reqData, ok := c.Locals("validatedSubmission").(*evaluator.Submission)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	result, err := Assessment.SubmitQuiz(c.UserContext(), principal, c.Params("id"), *reqData)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz submitted successfully!", result)
}

// QuizAnalytics returns attempt statistics; ?cached=true serves the last snapshot
func QuizAnalytics(c *fiber.Ctx) error {
	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	result, err := Assessment.QuizAnalytics(c.UserContext(), principal, c.Params("id"), c.QueryBool("cached"))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Analytics fetched successfully!", result)
}

// MyAttempts lists the caller's attempts across lessons, newest first
func MyAttempts(c *fiber.Ctx) error {
	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	attempts, err := Assessment.MyAttempts(c.UserContext(), principal)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Attempts fetched successfully!", fiber.Map{
		"attempts": attempts,
		"count":    len(attempts),
	})
}
