package quizRoutes

import (
	controllers "quizcore/controllers/quiz"
	"quizcore/middleware"
	"quizcore/models"
	validators "quizcore/validators/quiz"

	"github.com/gofiber/fiber/v2"
)

var staff = middleware.RequireRole(models.RoleTeacher, models.RoleAdmin)

// SetupQuizRoutes sets up quiz authoring, submission and analytics routes
func SetupQuizRoutes(app *fiber.App) {
	quizGroup := app.Group("/quiz", middleware.JWTMiddleware)

	// Static paths before /:id
	quizGroup.Get("/list", validators.ListQuizzes(), controllers.ListQuizzes)
	quizGroup.Get("/attempts/me", controllers.MyAttempts)

	// Authoring
	quizGroup.Post("/", staff, validators.CreateQuiz(), controllers.CreateQuiz)
	quizGroup.Put("/:id", staff, validators.UpdateQuiz(), controllers.UpdateQuiz)
	quizGroup.Delete("/:id", staff, controllers.DeleteQuiz)
	quizGroup.Post("/:id/publish", staff, validators.PublishQuiz(), controllers.PublishQuiz)
	quizGroup.Post("/image", staff, controllers.UploadImage)

	// Taking and reviewing
	quizGroup.Get("/:id", controllers.GetQuiz)
	quizGroup.Post("/:id/submit", validators.SubmitQuiz(), controllers.SubmitQuiz)
	quizGroup.Get("/:id/analytics", staff, controllers.QuizAnalytics)
}

// SetupLessonRoutes sets up lesson routes
func SetupLessonRoutes(app *fiber.App) {
	lessonGroup := app.Group("/lesson", middleware.JWTMiddleware)

	lessonGroup.Post("/", staff, validators.CreateLesson(), controllers.CreateLesson)
	lessonGroup.Get("/:id", controllers.GetLesson)
	lessonGroup.Post("/:id/quiz", staff, validators.AttachQuiz(), controllers.AttachQuiz)
}
