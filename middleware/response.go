package middleware

import (
	"errors"
	"log"

	"quizcore/apperrors"

	"github.com/gofiber/fiber/v2"
)

func JsonResponse(c *fiber.Ctx, statusCode int, status bool, message string, data interface{}) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

func ValidationErrorResponse(c *fiber.Ctx, errors map[string]string) error {
	return JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Validation failed!", errors)
}

// ErrorResponse answers with the status matching err's category.
// Unexpected errors are logged and reported without detail.
func ErrorResponse(c *fiber.Ctx, err error) error {
	status := apperrors.HTTPStatus(err)

	var message string
	switch {
	case errors.Is(err, apperrors.ErrAttemptsExhausted):
		message = "No attempts remaining for this quiz"
	case errors.Is(err, apperrors.ErrQuizLinked):
		message = "Quiz is already attached to another lesson"
	case status == fiber.StatusNotFound:
		message = "Resource not found"
	case status == fiber.StatusForbidden:
		message = "You do not have permission to access this resource!"
	case status == fiber.StatusConflict:
		message = "The record was changed concurrently, please retry"
	case status == fiber.StatusUnprocessableEntity:
		message = "Validation failed!"
	default:
		log.Printf("[API] %s %s failed: %v", c.Method(), c.Path(), err)
		message = "Internal server error"
	}
	return JsonResponse(c, status, false, message, nil)
}
