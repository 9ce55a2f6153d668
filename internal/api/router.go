package api

import (
	_ "finbook/docs"
	"finbook/internal/api/handlers"
	"finbook/pkg/auth"
	"finbook/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

func SetupRouter(
	authHandler *handlers.AuthHandler,
	uploadHandler *handlers.UploadHandler,
	batchHandler *handlers.BatchHandler,
	expenseHandler *handlers.ExpenseHandler,
	jwtManager *auth.JWTManager,
	appLogger *zap.Logger,
) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))
	app.Use(logger.New())

	app.Get("/swagger/*", swagger.HandlerDefault)

	// Auth routes (public)
	authGroup := app.Group("/user/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/refresh", authHandler.RefreshToken)

	// Protected routes
	protected := app.Group("/api/v1", middleware.AuthMiddleware(jwtManager, appLogger))

	statements := protected.Group("/statements")
	statements.Post("/upload", uploadHandler.Upload)
	statements.Get("/uploads/:id", uploadHandler.Status)
	statements.Delete("/uploads/:id", uploadHandler.Cancel)
	statements.Post("/commit", batchHandler.Commit)

	batches := protected.Group("/batches")
	batches.Get("/orphans", batchHandler.Orphans)
	batches.Post("/:id/aggregate", batchHandler.Aggregate)

	expenses := protected.Group("/expenses")
	expenses.Get("", expenseHandler.List)
	expenses.Get("/summary", expenseHandler.Summary)

	return app
}
