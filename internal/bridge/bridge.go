// Package bridge exposes viewpoint import and export over HTTP for the browser
// based review app.
package bridge

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/philipparndt/gobcf/internal/dispatch"
	"github.com/philipparndt/gobcf/internal/logging"
	"github.com/philipparndt/gobcf/pkg/bcf"
)

// Source names the bridge as the origin of requests it raises
const Source = "bridge"

// ApplyRequest is a viewpoint waiting to be applied together with the entry
// point it arrived through
type ApplyRequest struct {
	Source    string
	Viewpoint *bcf.Viewpoint
}

// ExportRequest carries the exported viewpoint back from the dispatch loop
type ExportRequest struct {
	Viewpoint *bcf.Viewpoint
}

// Config holds the server timeouts
type Config struct {
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	ExportTimeout time.Duration
}

// Server is the HTTP bridge
type Server struct {
	app    *fiber.App
	apply  *dispatch.Event[*ApplyRequest]
	export *dispatch.Event[*ExportRequest]
	cfg    Config
}

// New creates the server and registers its routes
func New(apply *dispatch.Event[*ApplyRequest], export *dispatch.Event[*ExportRequest], cfg Config) *Server {
	s := &Server{
		app: fiber.New(fiber.Config{
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			AppName:      "gobcf bridge",
		}),
		apply:  apply,
		export: export,
		cfg:    cfg,
	}

	s.app.Use(recover.New())
	s.app.Use(accessLog())
	s.app.Use(allowReviewApp())

	s.app.Get("/health/live", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "alive"})
	})
	s.app.Get("/health/ready", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ready"})
	})

	api := s.app.Group("/api/v1")
	api.Post("/viewpoints", s.postViewpoint)
	api.Get("/viewpoints/current", s.getCurrent)

	return s
}

// App returns the fiber app
func (s *Server) App() *fiber.App { return s.app }

// Listen serves on addr until Shutdown
func (s *Server) Listen(addr string) error {
	logging.Logger().Info("Starting bridge", "addr", addr)
	return s.app.Listen(addr, fiber.ListenConfig{DisableStartupMessage: true})
}

// Shutdown stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) postViewpoint(c fiber.Ctx) error {
	if len(c.Body()) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "empty body"})
	}
	vp, err := bcf.Parse(c.Body())
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	result := s.apply.Raise(&ApplyRequest{Source: Source, Viewpoint: vp})
	go func() {
		if err := <-result; err != nil {
			if errors.Is(err, dispatch.ErrSuperseded) {
				logging.Logger().Warn("Viewpoint replaced before it was applied", "guid", vp.GUID)
				return
			}
			logging.Logger().Error("Viewpoint from bridge failed", "guid", vp.GUID, "error", err)
		}
	}()

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "accepted", "guid": vp.GUID})
}

func (s *Server) getCurrent(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ExportTimeout)
	defer cancel()

	req := &ExportRequest{}
	if err := s.export.Call(ctx, req); err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(req.Viewpoint)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, dispatch.ErrSuperseded):
		return fiber.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout
	case errors.Is(err, dispatch.ErrClosed):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}
