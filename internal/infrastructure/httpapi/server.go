package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server wraps echo with the scoring routes and a graceful shutdown hook.
type Server struct {
	echo *echo.Echo
	port string
}

func NewServer(handler *Handler, port string) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomiddleware.Recover())

	registerRoutes(e, handler)

	return &Server{echo: e, port: port}
}

func registerRoutes(e *echo.Echo, handler *Handler) {
	e.GET("/healthz", handler.Healthz)
	e.GET("/score", handler.Score)
	e.POST("/feedback", handler.Feedback)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// Start blocks until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	if err := s.echo.Start(fmt.Sprintf(":%s", s.port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
