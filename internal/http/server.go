package http

import (
	"context"
	"log"

	"github.com/labstack/echo/v4"
	echoMid "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pushgate/internal/config"
	"pushgate/internal/http/middleware"
	"pushgate/internal/queue"
)

type Server struct{ e *echo.Echo }

func NewServer(cfg config.Config, q queue.Queue) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(echoMid.Recover(), echoMid.Logger())

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// liveness probe, no auth
	e.GET("/health", healthHandler(q))

	// routes
	authMW := middleware.BearerAuth(cfg.Auth.Token)
	e.POST("/send", sendHandler(q, cfg.Delivery.DefaultUMO), authMW)

	return &Server{e: e}
}

func (s *Server) Start(addr string) error {
	log.Printf("http: listening on %s", addr)
	return s.e.Start(addr)
}
func (s *Server) Shutdown(ctx context.Context) error { return s.e.Shutdown(ctx) }
func (s *Server) Close() error                       { return s.e.Close() }
