package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/elskow/transcendence/internal/api"
	"github.com/elskow/transcendence/internal/auth"
	"github.com/elskow/transcendence/internal/channel"
	"github.com/elskow/transcendence/internal/config"
	"github.com/elskow/transcendence/internal/database"
	"github.com/elskow/transcendence/internal/game"
	"github.com/elskow/transcendence/internal/httpx"
	"github.com/elskow/transcendence/internal/social"
)

// Authenticator guards routes with the session cookie.
type Authenticator interface {
	Require(next http.Handler) http.Handler
	RequireFirstFactor(next http.Handler) http.Handler
}

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	config     *config.AppConfig
	log        *zap.Logger
	httpServer *http.Server
}

type Params struct {
	fx.In

	Config         *config.AppConfig
	Logger         *zap.Logger
	Database       *database.Manager
	AuthMiddleware *auth.AuthMiddleware
	AuthHandler    *auth.Handler
	ChannelHandler *channel.Handler
	GameHandler    *game.Handler
	SocialHandler  *social.Handler
}

func NewServer(p Params) *Server {
	handler := NewRouter(&p.Config.HTTP, p.AuthMiddleware, p.Database, p.Logger,
		p.AuthHandler.Routes(),
		p.ChannelHandler.Routes(),
		p.GameHandler.Routes(),
		p.SocialHandler.Routes(),
	)

	return &Server{
		config: p.Config,
		log:    p.Logger,
		httpServer: &http.Server{
			Addr:              net.JoinHostPort(p.Config.Server.Host, p.Config.Server.Port),
			Handler:           handler,
			ReadHeaderTimeout: p.Config.HTTP.ReadHeaderTimeout,
			ReadTimeout:       p.Config.HTTP.ReadTimeout,
			WriteTimeout:      p.Config.HTTP.WriteTimeout,
			IdleTimeout:       p.Config.HTTP.IdleTimeout,
			ErrorLog:          zap.NewStdLog(p.Logger.Named("http")),
		},
	}
}

// NewRouter mounts every route group behind the guard its pattern calls for
// and wraps the mux with body limits, timeouts and access logging.
func NewRouter(cfg *config.HTTPConfig, guard Authenticator, db Pinger, log *zap.Logger, groups ...[]api.Route) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(api.HealthCheck, healthCheck(db, log))

	for _, routes := range groups {
		for _, route := range routes {
			var h http.Handler = route.Handler
			switch {
			case api.IsPublic(route.Pattern):
			case api.AllowsFirstFactor(route.Pattern):
				h = guard.RequireFirstFactor(h)
			default:
				h = guard.Require(h)
			}
			mux.Handle(route.Pattern, h)
		}
	}

	var handler http.Handler = mux
	if cfg.MaxBodyBytes > 0 {
		handler = limitBody(handler, cfg.MaxBodyBytes)
	}
	if cfg.HandlerTimeout > 0 {
		handler = http.TimeoutHandler(handler, cfg.HandlerTimeout, `{"statusCode":503,"message":"request timed out"}`)
	}
	return accessLog(handler, log.Named("access"))
}

func healthCheck(db Pinger, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			log.Warn("health check failed", zap.Error(err))
			httpx.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func limitBody(next http.Handler, limit int64) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, limit)
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func accessLog(next http.Handler, log *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}

// Start binds the listener before returning so address errors fail the fx
// start hook; serving continues in the background.
func (s *Server) Start() error {
	lis, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	s.log.Info("starting HTTP server",
		zap.String("address", lis.Addr().String()),
		zap.Object("config", serverConfigToField(s.config)),
	)

	go func() {
		if err := s.httpServer.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("HTTP server stopped", zap.Error(err))
		}
	}()
	return nil
}

func serverConfigToField(config *config.AppConfig) zapcore.ObjectMarshaler {
	return zapcore.ObjectMarshalerFunc(func(enc zapcore.ObjectEncoder) error {
		enc.AddString("environment", os.Getenv("APP_ENV"))
		enc.AddDuration("handler_timeout", config.HTTP.HandlerTimeout)
		enc.AddInt64("max_body_bytes", config.HTTP.MaxBodyBytes)
		enc.AddBool("oauth_enabled", config.OAuth.Enabled())
		enc.AddBool("secure_cookies", config.Auth.CookieSecure)
		return nil
	})
}

func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("shutting down HTTP server")
	if timeout := s.config.HTTP.ShutdownTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return s.httpServer.Shutdown(ctx)
}
