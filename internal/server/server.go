// Package server builds the gin engine, its routes and every service the handlers need.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"jobportal-backend/internal/access"
	"jobportal-backend/internal/cache"
	"jobportal-backend/internal/config"
	"jobportal-backend/internal/credential"
	"jobportal-backend/internal/database"
	"jobportal-backend/internal/mailer"
	"jobportal-backend/internal/notify"
	"jobportal-backend/internal/service/account"
	"jobportal-backend/internal/service/application"
	"jobportal-backend/internal/service/job"
	"jobportal-backend/internal/service/resume"
	"jobportal-backend/internal/storage"
	"jobportal-backend/internal/utilities"
)

// MyServer holds the configuration, connections and services behind the HTTP routes.
type MyServer struct {
	cfg    config.Config
	logger *slog.Logger

	DB    *database.DBinstanceStruct
	redis *redis.Client
	store storage.ObjectStore

	creds        *credential.Manager
	accounts     *account.Service
	jobs         *job.Service
	applications *application.Service
	resumes      *resume.Service
	inbox        *notify.Store

	dispatcher *notify.Dispatcher
	publisher  *notify.AMQPPublisher
}

// New connects to every backing service and wires the application services.
// Optional backends (Redis, AMQP, Google, SMTP) are skipped when they are not configured.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*MyServer, error) {
	s := &MyServer{cfg: cfg, logger: logger}

	db, err := database.NewDBInstance(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("database failed to initialize: %w", err)
	}
	s.DB = db

	s.creds = credential.NewManager(credential.Config{
		Secret:     cfg.Auth.Secret,
		Issuer:     cfg.Auth.Issuer,
		AccessTTL:  cfg.Auth.AccessTTL,
		RefreshTTL: cfg.Auth.RefreshTTL,
		OTPTTL:     cfg.Auth.OTPTTL,
		ResetTTL:   cfg.Auth.ResetTTL,
		BcryptCost: cfg.Auth.BcryptCost,
	}, db.DB)

	if err := s.seedAdmin(ctx); err != nil {
		s.closeQuietly(ctx)
		return nil, err
	}

	var jobCache cache.JobCache = cache.NopJobCache{}
	if cfg.Redis.Addr != "" {
		s.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := s.redis.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, job reads will hit the database", "addr", cfg.Redis.Addr, "err", err)
		}
		jobCache = cache.NewRedisJobCache(s.redis, cfg.Redis.JobTTL)
	}

	s.store, err = storage.New(ctx, cfg.Storage)
	if err != nil {
		s.closeQuietly(ctx)
		return nil, fmt.Errorf("object storage: %w", err)
	}

	s.inbox = notify.NewStore(db.DB)
	sinks := []notify.Sink{s.inbox}
	if cfg.AMQP.URL != "" {
		s.publisher, err = notify.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			s.closeQuietly(ctx)
			return nil, fmt.Errorf("amqp publisher: %w", err)
		}
		sinks = append(sinks, s.publisher)
	}
	s.dispatcher = notify.NewDispatcher(logger, 0, sinks...)
	s.dispatcher.Start()

	resolver := access.NewResolver(db.DB)
	deps := account.Deps{
		DB:          db.DB,
		Credentials: s.creds,
		Mail:        mailer.New(cfg.Mail, logger),
		Store:       s.store,
		Access:      resolver,
		Jobs:        jobCache,
		Logger:      logger,
	}
	if google := account.NewGoogleOAuth(cfg.Google); google != nil {
		deps.Google = google
	}
	s.accounts = account.NewService(deps, cfg)
	s.jobs = job.NewService(db.DB, resolver, jobCache, logger)
	s.applications = application.NewService(db.DB, resolver, s.dispatcher, logger)
	s.resumes = resume.NewService(db.DB, resolver, s.store, cfg.Resume, logger)

	if err := utilities.RegisterValidators(); err != nil {
		s.closeQuietly(ctx)
		return nil, fmt.Errorf("register validators: %w", err)
	}
	return s, nil
}

func (s *MyServer) seedAdmin(ctx context.Context) error {
	if s.cfg.Admin.Email == "" || s.cfg.Admin.Password == "" {
		return nil
	}
	hash, err := s.creds.HashPassword(s.cfg.Admin.Password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	created, err := s.DB.EnsureAdmin(ctx, s.cfg.Admin.Email, hash)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if created {
		s.logger.Info("admin account created", "email", s.cfg.Admin.Email)
	}
	return nil
}

// HTTPServer returns the listener configuration serving RegisterRoutes.
func (s *MyServer) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.HTTP.Port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  s.cfg.HTTP.ReadTimeout,
		WriteTimeout: s.cfg.HTTP.WriteTimeout,
	}
}

// Close drains queued notifications and releases every connection.
func (s *MyServer) Close(ctx context.Context) error {
	var errs []error
	if s.dispatcher != nil {
		errs = append(errs, s.dispatcher.Close(ctx))
	}
	if s.publisher != nil {
		errs = append(errs, s.publisher.Close())
	}
	if c, ok := s.store.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	if s.redis != nil {
		errs = append(errs, s.redis.Close())
	}
	if s.DB != nil {
		errs = append(errs, s.DB.Close())
	}
	return errors.Join(errs...)
}

func (s *MyServer) closeQuietly(ctx context.Context) {
	if err := s.Close(ctx); err != nil {
		s.logger.Warn("cleanup after failed start", "err", err)
	}
}
