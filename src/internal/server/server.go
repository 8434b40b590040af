package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blog-admin-svc/src/clients"
	"blog-admin-svc/src/internal/config"
	"blog-admin-svc/src/internal/dependency"
	"blog-admin-svc/src/internal/metrics"
	"blog-admin-svc/src/internal/web"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var log = logrus.StandardLogger()

type Server struct {
	cfg *config.Configuration
}

func New(cfg *config.Configuration) *Server {
	return &Server{cfg: cfg}
}

// Start connects the backing services, serves HTTP and blocks until
// SIGINT or SIGTERM, then shuts down gracefully.
func (s *Server) Start() error {
	cfg := s.cfg

	mongodb, err := clients.NewMongoDB(&cfg.Database)
	if err != nil {
		return err
	}

	redisClient, err := clients.NewRedisClient(&cfg.Redis)
	if err != nil {
		return err
	}

	var rabbitMQ *clients.RabbitMQ
	if cfg.Queue.RabbitMQ.Enabled {
		rabbitMQ, err = clients.NewRabbitMQ(&cfg.Queue.RabbitMQ)
		if err != nil {
			return err
		}
		if err := rabbitMQ.SetupExchange(); err != nil {
			return err
		}
	}

	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(), metrics.Middleware())

	tmpl, err := web.Templates()
	if err != nil {
		return fmt.Errorf("failed to parse templates: %w", err)
	}
	router.SetHTMLTemplate(tmpl)

	deps, err := dependency.NewDependencyManager(router, mongodb, redisClient, rabbitMQ, cfg)
	if err != nil {
		return err
	}

	indexCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.Timeout)*time.Second)
	if err := deps.BlogRepository.EnsureIndexes(indexCtx); err != nil {
		log.WithError(err).Warn("Failed to ensure blog indexes")
	}
	cancel()

	SetupRoutes(deps)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		log.Infof("Server listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		s.closeClients(mongodb, redisClient, rabbitMQ)
		return fmt.Errorf("server failed: %w", err)
	case sig := <-sigChan:
		log.WithField("signal", sig.String()).Info("Shutdown signal received, initiating graceful shutdown...")
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server shutdown error")
	}

	s.closeClients(mongodb, redisClient, rabbitMQ)
	log.Info("Server stopped")
	return nil
}

func (s *Server) closeClients(mongodb *clients.MongoDB, redisClient *clients.RedisClient, rabbitMQ *clients.RabbitMQ) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_ = mongodb.Close(ctx)
	_ = redisClient.Close()
	if rabbitMQ != nil {
		_ = rabbitMQ.Close()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := log.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
			"ip":       c.ClientIP(),
		})
		if name, ok := c.Get("route_name"); ok {
			entry = entry.WithField("route", name)
		}

		if len(c.Errors) > 0 {
			entry.WithError(c.Errors.Last()).Error("Request failed")
			return
		}
		entry.Debug("Request handled")
	}
}
