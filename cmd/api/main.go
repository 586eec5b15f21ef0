package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"fieldjobs/internal/config"
	"fieldjobs/internal/database"
	"fieldjobs/internal/domain"
	"fieldjobs/internal/domain/approval"
	"fieldjobs/internal/domain/auth"
	"fieldjobs/internal/domain/evidence"
	"fieldjobs/internal/domain/export"
	"fieldjobs/internal/domain/job"
	"fieldjobs/internal/domain/notification"
	"fieldjobs/internal/domain/proxy"
	"fieldjobs/internal/logging"
	"fieldjobs/internal/middleware"
	"fieldjobs/internal/pkg/geocode"
	jwtsvc "fieldjobs/internal/pkg/jwt"
	"fieldjobs/internal/realtime"
	"fieldjobs/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		logrus.Fatalf("logging: %v", err)
	}
	if cfg.IsProdLike() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal(err)
	}

	store, err := storage.New(cfg.Storage)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTAccessTTL)

	var push notification.PushSender
	if cfg.PushEnabled() {
		push = notification.NewWebPush(notification.WebPushConfig{
			PublicKey:  cfg.VAPIDPublicKey,
			PrivateKey: cfg.VAPIDPrivateKey,
			Subject:    cfg.VAPIDSubject,
		})
	} else {
		log.Warn("VAPID keys not set, web push disabled")
	}

	guard, err := proxy.NewOriginGuard(cfg.ProxyAllowedOrigin)
	if err != nil {
		log.Fatalf("proxy: %v", err)
	}
	fetcher := proxy.NewFetcher(guard, nil)

	geocoder := geocode.New(geocode.Config{
		BaseURL:   cfg.GeocoderURL,
		UserAgent: cfg.GeocoderUserAgent,
		Timeout:   cfg.GeocoderTimeout,
	})

	// The hub needs job lookups and the job service needs the hub, so
	// the lookup is bound after construction.
	jobLookup := &lateJobLookup{}
	hub := realtime.NewHub(jobLookup, log)

	authService := auth.NewService(auth.NewUserRepository(db), j, log)
	notificationService := notification.NewService(notification.NewRepository(db), push, hub, log)
	evidenceService := evidence.NewService(evidence.NewRepository(db), store, hub, log)
	jobService := job.NewService(job.NewRepository(db), evidenceService, notificationService, geocoder, hub, log)
	jobLookup.svc = jobService
	approvalService := approval.NewService(jobService, evidenceService, log)
	exportService := export.NewService(jobService, evidenceService, fetcher, log)

	authHandler := auth.NewHandler(authService)
	jobHandler := job.NewHandler(jobService)
	evidenceHandler := evidence.NewHandler(evidenceService)
	notificationHandler := notification.NewHandler(notificationService, cfg.VAPIDPublicKey)
	approvalHandler := approval.NewHandler(approvalService)
	exportHandler := export.NewHandler(exportService, log)
	proxyHandler := proxy.NewHandler(fetcher, log)
	wsHandler := realtime.NewHandler(hub, j, cfg.CORSAllowedOrigins, log)

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if fs, ok := store.(*storage.FileSystem); ok {
		r.Static("/static/evidence", fs.Dir())
	}
	realtime.RegisterRoutes(r, wsHandler)

	api := r.Group("/api")
	{
		proxy.RegisterRoutes(api, proxyHandler)
		api.GET("/pending-jobs", middleware.JWTAuth(j), jobHandler.PendingJobIDs)
	}

	v1 := r.Group("/api/v1")
	{
		// public
		authHandler.RegisterPublicRoutes(v1)
		notification.RegisterPublicRoutes(v1, notificationHandler)

		protected := v1.Group("")
		protected.Use(middleware.JWTAuth(j))
		{
			authHandler.RegisterProtectedRoutes(protected)
			notification.RegisterRoutes(protected, notificationHandler)

			admin := protected.Group("/admin")
			admin.Use(middleware.AdminOnly())
			{
				job.RegisterAdminRoutes(admin, jobHandler)
				export.RegisterAdminRoutes(admin, exportHandler)
				approval.RegisterAdminRoutes(admin, approvalHandler)
				authHandler.RegisterAdminRoutes(admin)
			}

			installer := protected.Group("/installer")
			installer.Use(middleware.InstallerOnly())
			{
				job.RegisterInstallerRoutes(installer, jobHandler)
				evidence.RegisterInstallerRoutes(installer, evidenceHandler)
			}
		}
	}

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("forced shutdown")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

type lateJobLookup struct {
	svc *job.Service
}

func (l *lateJobLookup) Get(ctx context.Context, id string) (*domain.Job, error) {
	return l.svc.Get(ctx, id)
}
