package handler

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"userapi/internal/interactor"
)

// Pinger is implemented by stores that can report their own reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// store may be nil when the backing repository has nothing to ping.
func RegisterRoutes(app *fiber.App, store Pinger, users interactor.UserUseCase, exporter interactor.ExportUseCase) {
	app.Get("/health", HealthCheck(store))
	app.Get("/healthz", LivenessProbe())

	app.Get("/users", ListUsers(users))
	app.Post("/users", CreateUser(users))
	app.Post("/users/export", ExportUsers(exporter))
	app.Get("/users/:id", GetUser(users))
	app.Put("/users/:id", UpdateUser(users))
	app.Delete("/users/:id", DeleteUser(users))
}

// HealthCheck reports whether the backing store is reachable.
func HealthCheck(store Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if store != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			if err := store.Ping(ctx); err != nil {
				return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
			}
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe always answers 200 while the process is serving.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// ExportUsers godoc
// @Summary Export all users to object storage
// @Tags users
// @Produce json
// @Success 201 {object} interactor.ExportResult
// @Failure 503 {object} errorPayload
// @Router /users/export [post]
func ExportUsers(exporter interactor.ExportUseCase) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := exporter.Export(c.UserContext())
		if err != nil {
			if errors.Is(err, interactor.ErrExportDisabled) {
				return writeError(c, fiber.StatusServiceUnavailable, "EXPORT_DISABLED", "export is not configured")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	}
}
