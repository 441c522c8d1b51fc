package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/ecmbridge/tracelog/internal/config"
	"github.com/ecmbridge/tracelog/internal/engine"
	"github.com/ecmbridge/tracelog/internal/handler"
	"github.com/ecmbridge/tracelog/internal/response"
)

// sonicSerializer plugs sonic in as Echo's JSON codec.
type sonicSerializer struct{}

func (sonicSerializer) Serialize(c echo.Context, i interface{}, indent string) error {
	var (
		data []byte
		err  error
	)
	if indent != "" {
		data, err = sonic.MarshalIndent(i, "", indent)
	} else {
		data, err = sonic.Marshal(i)
	}
	if err != nil {
		return err
	}
	_, err = c.Response().Write(data)
	return err
}

func (sonicSerializer) Deserialize(c echo.Context, i interface{}) error {
	return sonic.ConfigDefault.NewDecoder(c.Request().Body).Decode(i)
}

// Server holds the Echo app and its dependencies.
type Server struct {
	Echo   *echo.Echo
	Config *config.Config
	log    zerolog.Logger
}

// New builds the Echo server and registers the query facade routes.
func New(cfg *config.Config, eng *engine.Engine, log zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.JSONSerializer = sonicSerializer{}
	e.Server.ReadTimeout = time.Duration(cfg.Server.ReadTimeout) * time.Second
	e.Server.WriteTimeout = time.Duration(cfg.Server.WriteTimeout) * time.Second

	e.Use(middleware.Recover(), middleware.Logger())
	if len(cfg.Server.CORSAllowedOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: cfg.Server.CORSAllowedOrigins,
		}))
	}

	traceHandler := &handler.TraceHandler{
		Engine:   eng,
		Validate: validator.New(),
	}

	e.GET("/api/traces", traceHandler.ListTraces)
	e.GET("/api/traces/options", traceHandler.FilterOptions)
	e.GET("/api/traces/:id", traceHandler.GetTrace)
	e.GET("/api/files", traceHandler.GetFile)
	e.GET("/healthz", func(c echo.Context) error {
		return response.OK(c, map[string]any{"status": "ok"})
	})

	return &Server{Echo: e, Config: cfg, log: log.With().Str("component", "server").Logger()}
}

// Start runs the HTTP server until the context is cancelled or the server
// fails. On cancel the server is shut down gracefully.
func (s *Server) Start(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			s.log.Error().Err(err).Msg("shutdown failed")
		}
	}()
	addr := ":" + s.Config.Server.Port
	s.log.Info().Str("addr", addr).Msg("listening")
	if err := s.Echo.Start(addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the HTTP server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.Echo.Shutdown(ctx)
}
