package api

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jackc/pgx/v5/pgxpool"

	swagger "github.com/go-swagno/swagno-fiber/swagger"

	"github.com/classmark/classmark/internal/api/docs"
	"github.com/classmark/classmark/internal/api/handler"
	"github.com/classmark/classmark/internal/api/middleware"
	"github.com/classmark/classmark/internal/repository"
	"github.com/classmark/classmark/internal/service"
)

type Dependencies struct {
	StudentRepo    *repository.StudentRepository
	AttendanceRepo *repository.AttendanceRepository
	EmbeddingRepo  *repository.EmbeddingRepository
	DB             *pgxpool.Pool
	APIKey         string
}

type Router struct {
	app    *fiber.App
	logger *slog.Logger
	deps   *Dependencies
}

func NewRouter(logger *slog.Logger, deps *Dependencies) *Router {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(logger),
		AppName:      "Classmark API",
	})

	return &Router{
		app:    app,
		logger: logger,
		deps:   deps,
	}
}

func (r *Router) Setup() {
	// Global middlewares
	r.app.Use(requestid.New())
	r.app.Use(middleware.Recover(r.logger))
	r.app.Use(middleware.Logger(r.logger))
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept," + middleware.HeaderAPIKey,
	}))

	// Swagger documentation (no auth required)
	sw := docs.NewSwagger()
	swagger.SwaggerHandler(r.app, sw.MustToJson())

	// Health check endpoints (no auth required)
	var pinger handler.Pinger
	if r.deps != nil && r.deps.DB != nil {
		pinger = r.deps.DB
	}
	healthHandler := handler.NewHealthHandler(pinger)
	r.app.Get("/health", healthHandler.Health)
	r.app.Get("/ready", healthHandler.Ready)

	// API v1 group with authentication
	v1 := r.app.Group("/api/v1")

	// Only configure authenticated routes if dependencies were provided
	if r.deps != nil {
		v1.Use(middleware.Auth(r.deps.APIKey))

		// Attendance service and routes
		attendanceService := service.NewAttendanceService(r.deps.AttendanceRepo)
		attendanceHandler := handler.NewAttendanceHandler(attendanceService, r.logger)

		v1.Post("/attendance/mark", attendanceHandler.Mark)
		v1.Post("/attendance/sync", attendanceHandler.Sync)
		v1.Get("/attendance", attendanceHandler.List)

		// Student service and routes
		studentService := service.NewStudentService(r.deps.StudentRepo, r.deps.EmbeddingRepo)
		studentHandler := handler.NewStudentHandler(studentService, r.logger)

		v1.Get("/students", studentHandler.List)
		v1.Post("/students", studentHandler.Create)
		v1.Get("/students/:id", studentHandler.Get)
		v1.Put("/students/:id", studentHandler.Update)
		v1.Delete("/students/:id", studentHandler.Delete)

		// Reference embedding routes
		embeddingHandler := handler.NewEmbeddingHandler(studentService, r.logger)

		v1.Get("/embeddings", embeddingHandler.List)
		v1.Post("/face/register", embeddingHandler.Register)
	}
}

func (r *Router) App() *fiber.App {
	return r.app
}

func (r *Router) Listen(addr string) error {
	return r.app.Listen(addr)
}

func (r *Router) Shutdown() error {
	return r.app.Shutdown()
}
