package controllers

import (
	"errors"
	"log"
	"path/filepath"

	"quizcore/config"
	"quizcore/middleware"
	"quizcore/utils"

	"github.com/gofiber/fiber/v2"
)

// UploadImage stores a question or option image and returns its image key
func UploadImage(c *fiber.Ctx) error {
	file, err := c.FormFile("image")
	if err != nil {
		return middleware.ValidationErrorResponse(c, map[string]string{"image": "Image file is required!"})
	}

	key, err := utils.SaveQuizImage(file, filepath.Join(config.AppConfig.UploadDir, "quiz-images"))
	if err != nil {
		if errors.Is(err, utils.ErrUnsupportedImage) {
			return middleware.ValidationErrorResponse(c, map[string]string{"image": "Only png, jpg, gif and webp images are allowed!"})
		}
		log.Printf("[API] Failed to save quiz image: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save image!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Image uploaded successfully!", fiber.Map{
		"image_key": key,
		"url":       utils.GetImageURL(key),
	})
}
