package controllers

import (
	"quizcore/middleware"
	"quizcore/services/lessons"

	"github.com/gofiber/fiber/v2"
)

func CreateLesson(c *fiber.Ctx) error {
	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	reqData, ok := c.Locals("validatedLesson").(*lessons.Definition)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	lesson, err := Assessment.CreateLesson(c.UserContext(), principal, *reqData)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Lesson created successfully!", lesson)
}

func GetLesson(c *fiber.Ctx) error {
	lesson, err := Assessment.GetLesson(c.UserContext(), c.Params("id"))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson fetched successfully!", lesson)
}

// AttachQuiz makes a quiz the caller owns the lesson's quiz
func AttachQuiz(c *fiber.Ctx) error {
	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	quizID, _ := c.Locals("validatedQuizID").(string)

	lesson, err := Assessment.AttachQuiz(c.UserContext(), principal, c.Params("id"), quizID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz attached to lesson successfully!", lesson)
}
