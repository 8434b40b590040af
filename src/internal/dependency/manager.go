package dependency

import (
	"fmt"
	"time"

	"blog-admin-svc/src/clients"
	"blog-admin-svc/src/internal/auth"
	"blog-admin-svc/src/internal/blog"
	"blog-admin-svc/src/internal/cache"
	"blog-admin-svc/src/internal/config"
	"blog-admin-svc/src/internal/middleware"
	"blog-admin-svc/src/internal/notify"
	"blog-admin-svc/src/internal/session"
	"blog-admin-svc/src/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Manager struct {
	Router            *gin.Engine
	Config            *config.Configuration
	Mongodb           *clients.MongoDB
	Redis             *clients.RedisClient
	RabbitMQ          *clients.RabbitMQ
	CacheService      cache.Service
	BlogRepository    blog.Repository
	BlogService       blog.Service
	BlogHandler       blog.Handler
	AdminHandler      blog.AdminHandler
	AuthHandler       auth.Handler
	AuthMiddleware    *middleware.AuthMiddleware
	Sessions          session.Provider
	Notifier          notify.Notifier
	ActivityPublisher clients.ActivityPublisher
}

func NewDependencyManager(router *gin.Engine,
	mongodb *clients.MongoDB,
	redisClient *clients.RedisClient,
	rabbitMQ *clients.RabbitMQ,
	cfg *config.Configuration) (*Manager, error) {
	secure := cfg.Server.Mode != gin.DebugMode

	sessions, err := NewSessionProvider(cfg, redisClient, secure)
	if err != nil {
		return nil, err
	}

	uploader, err := NewUploader(&cfg.Storage)
	if err != nil {
		return nil, err
	}

	var publisher clients.ActivityPublisher = clients.NoopActivityPublisher{}
	if rabbitMQ != nil {
		publisher = clients.NewActivityPublisher(&cfg.Queue.RabbitMQ, rabbitMQ.Channel)
	}

	notifier := notify.NewFlashNotifier(secure)
	cacheService := cache.NewCacheService(redisClient.Client, cfg)
	blogRepo := blog.NewBlogRepository(mongodb, cfg.Database.BlogCollection, cfg.Database.TagCollection)
	blogService := blog.NewBlogService(blogRepo, cacheService, uploader, publisher, cfg)

	credentials := auth.Credentials{
		Identifier: cfg.Security.AdminEmail,
		Secret:     cfg.Security.AdminPassword,
	}

	return &Manager{
		Router:            router,
		Config:            cfg,
		Mongodb:           mongodb,
		Redis:             redisClient,
		RabbitMQ:          rabbitMQ,
		CacheService:      cacheService,
		BlogRepository:    blogRepo,
		BlogService:       blogService,
		BlogHandler:       blog.NewHandler(cfg, blogService),
		AdminHandler:      blog.NewAdminHandler(cfg, blogService, notifier),
		AuthHandler:       auth.NewHandler(credentials, sessions, notifier, publisher, cfg.Session.LoginPath, cfg.Session.LandingPath),
		AuthMiddleware:    middleware.NewAuthMiddleware(sessions, cfg.Session.LoginPath),
		Sessions:          sessions,
		Notifier:          notifier,
		ActivityPublisher: publisher,
	}, nil
}

// NewSessionProvider selects the slot backend and record codec from config.
func NewSessionProvider(cfg *config.Configuration, redisClient *clients.RedisClient, secure bool) (session.Provider, error) {
	maxAge := cfg.Session.CookieMaxAgeDays * 24 * 60 * 60
	opts := session.CookieOptions{
		MaxAge: maxAge,
		Secure: secure,
	}

	var codec session.Codec
	switch cfg.Session.Codec {
	case "", "json":
		codec = session.JSONCodec{}
	case "jwt":
		codec = session.NewJWTCodec(cfg.Security.SessionSigningKey)
	default:
		return nil, fmt.Errorf("unknown session codec %q", cfg.Session.Codec)
	}

	var slots session.SlotFactory
	switch cfg.Session.Backend {
	case "", "cookie":
		slots = session.CookieSlots(opts)
	case "redis":
		if redisClient == nil {
			return nil, fmt.Errorf("redis session backend requires a redis client")
		}
		slots = session.RedisSlots(redisClient.Client, opts, time.Duration(maxAge)*time.Second)
	case "memory":
		logrus.Warn("Using in-memory session backend, sessions are lost on restart")
		slots = session.MemorySlots(opts)
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Session.Backend)
	}

	logrus.WithFields(logrus.Fields{
		"backend": cfg.Session.Backend,
		"codec":   cfg.Session.Codec,
	}).Info("Session provider configured")

	return session.NewProvider(slots, codec, time.Now), nil
}

// NewUploader selects the image storage from config.
func NewUploader(cfg *config.StorageConfig) (storage.Uploader, error) {
	maxSize := int64(cfg.MaxUploadMB) << 20

	switch cfg.Provider {
	case "", "local":
		uploader, err := storage.NewLocalUploader(cfg.Local.Path, cfg.Local.BaseURL, maxSize)
		if err != nil {
			return nil, err
		}
		return uploader, nil
	case "s3":
		return storage.NewS3Uploader(&cfg.S3, maxSize), nil
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.Provider)
	}
}
