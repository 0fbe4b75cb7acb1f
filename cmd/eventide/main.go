package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/eventide-agency/eventide/internal/app"
	"github.com/eventide-agency/eventide/internal/audit"
	"github.com/eventide-agency/eventide/internal/auth"
	"github.com/eventide-agency/eventide/internal/authz"
	"github.com/eventide-agency/eventide/internal/clients"
	"github.com/eventide-agency/eventide/internal/contact"
	"github.com/eventide-agency/eventide/internal/devis"
	"github.com/eventide-agency/eventide/internal/events"
	"github.com/eventide-agency/eventide/internal/platform/cache"
	"github.com/eventide-agency/eventide/internal/platform/db"
	"github.com/eventide-agency/eventide/internal/prospects"
	"github.com/eventide-agency/eventide/internal/reviews"
	"github.com/eventide-agency/eventide/internal/tasks"
	"github.com/eventide-agency/eventide/jobs"
	"github.com/eventide-agency/eventide/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	validate := validator.New()
	policy := authz.NewPolicy()

	tokens := auth.NewTokenStore(redisClient, cfg.AuthTokenTTL)
	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo, tokens, logger)
	authHandler := auth.NewHandler(authService, validate)

	auditRepo := audit.NewRepository(pool)
	auditService := audit.NewService(auditRepo, logger)
	auditHandler := audit.NewHandler(logger, auditService)

	clientsRepo := clients.NewRepository(pool)
	clientsService := clients.NewService(clientsRepo)
	clientsHandler := clients.NewHandler(logger, clientsService, validate)

	eventsRepo := events.NewRepository(pool)
	eventsService := events.NewService(eventsRepo)
	eventsHandler := events.NewHandler(logger, eventsService, validate)

	prospectsRepo := prospects.NewRepository(pool)
	prospectsService := prospects.NewService(prospectsRepo, logger)
	prospectsHandler := prospects.NewHandler(logger, prospectsService, validate)

	tasksRepo := tasks.NewRepository(pool)
	tasksService := tasks.NewService(tasksRepo)
	tasksHandler := tasks.NewHandler(logger, tasksService, validate)

	reviewsRepo := reviews.NewRepository(pool)
	reviewsService := reviews.NewService(reviewsRepo)
	reviewsHandler := reviews.NewHandler(logger, reviewsService, validate)

	jobsClient := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()
	notifier := jobs.NewNotifier(jobsClient, clientsService, cfg.StaffInbox)

	reportClient := report.NewClient(cfg.GotenbergURL)
	renderer := report.NewDevisRenderer(reportClient)

	devisRepo := devis.NewRepository(pool)
	devisService := devis.NewService(devisRepo, clientsService, notifier, renderer, auditService, logger)
	devisHandler := devis.NewHandler(logger, devisService, validate)

	contactRepo := contact.NewRepository(pool)
	contactService := contact.NewService(contactRepo, notifier, logger)
	contactHandler := contact.NewHandler(logger, contactService, validate)

	router := app.NewRouter(app.RouterParams{
		Logger: logger,
		Config: cfg,
		Tokens: tokens,
		Policy: policy,

		AuthHandler:      authHandler,
		ProspectsHandler: prospectsHandler,
		ClientsHandler:   clientsHandler,
		EventsHandler:    eventsHandler,
		DevisHandler:     devisHandler,
		TasksHandler:     tasksHandler,
		ReviewsHandler:   reviewsHandler,
		ContactHandler:   contactHandler,
		AuditHandler:     auditHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		logger.Error("server exit", slog.Any("error", err))
		os.Exit(1)
	}
}
