package api

import (
	_ "comply-rag/docs"
	"comply-rag/internal/api/handlers"
	"comply-rag/pkg/auth"
	"comply-rag/pkg/config"
	"comply-rag/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

func SetupRouter(
	answerHandler *handlers.AnswerHandler,
	docHandler *handlers.DocumentHandler,
	jwtManager *auth.JWTManager,
	serverCfg *config.ServerConfig,
	appLogger *zap.Logger,
) *fiber.App {
	// WriteTimeout stays 0 by default: auto-answer streams can run for minutes
	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler,
		ReadTimeout:  serverCfg.ReadTimeout,
		WriteTimeout: serverCfg.WriteTimeout,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))
	app.Use(logger.New())

	// Swagger; the docs package registers itself in init()
	app.Get("/swagger/*", swagger.HandlerDefault)

	check := app.Group("/check")
	check.Get("/healthy", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"result": "ok"})
	})

	// Protected routes
	protected := app.Group("/api/v1", middleware.AuthMiddleware(jwtManager, appLogger))

	documents := protected.Group("/documents")
	documents.Get("/:id", docHandler.GetDocument)
	documents.Get("/:id/questions/:questionId/versions", docHandler.ListVersions)
	documents.Post("/:id/auto-answer", answerHandler.AutoAnswer)

	return app
}
