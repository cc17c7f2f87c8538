package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/enterprise-workflow/workflowd/internal/analytics"
	"github.com/enterprise-workflow/workflowd/internal/audit"
	"github.com/enterprise-workflow/workflowd/internal/auth"
	"github.com/enterprise-workflow/workflowd/internal/config"
	"github.com/enterprise-workflow/workflowd/internal/database"
	"github.com/enterprise-workflow/workflowd/internal/middleware"
	"github.com/enterprise-workflow/workflowd/internal/notifications"
	"github.com/enterprise-workflow/workflowd/internal/uploads"
	"github.com/enterprise-workflow/workflowd/internal/users"
	workflowrouter "github.com/enterprise-workflow/workflowd/internal/workflow/router"
	"github.com/enterprise-workflow/workflowd/internal/workflow/service"
)

func main() {
	// A missing .env is fine in containerized deployments
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	slog.Info("configuration loaded successfully",
		"db_host", cfg.Database.Host,
		"db_port", cfg.Database.Port,
		"db_name", cfg.Database.Name,
		"storage_type", cfg.Storage.Type,
		"allow_resubmit", cfg.Workflow.AllowResubmit,
	)

	db, err := database.New(&cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			slog.Error("failed to close database", "error", err)
		}
	}()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to migrate schema: %v", err)
	}

	recorder := audit.NewRecorder(db)
	if err := database.Seed(context.Background(), db, recorder); err != nil {
		log.Fatalf("failed to seed default data: %v", err)
	}

	storage, err := uploads.NewStorageFromConfig(context.Background(), cfg.Storage)
	if err != nil {
		log.Fatalf("failed to initialize attachment storage: %v", err)
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		slog.Info("analytics cache enabled", "addr", cfg.Redis.Addr)
	}

	// Services
	accounts := users.NewService(db, recorder)
	tokens := auth.NewTokenManager(&cfg.Auth)
	authService := auth.NewService(accounts, tokens, recorder)
	notificationService := notifications.NewService(db)

	instanceRepo := service.NewInstanceRepository(db)
	templateRepo := service.NewTemplateRepository(db)
	engine := service.NewInstanceEngine(instanceRepo, templateRepo, recorder, notificationService,
		service.NewReviewPolicy(), cfg.Workflow.AllowResubmit)
	instanceService := service.NewInstanceService(instanceRepo, engine, accounts)
	templateService := service.NewTemplateService(templateRepo)

	attachmentService := uploads.NewAttachmentService(db, storage, recorder, cfg.Storage.MaxUploadBytes)

	analyticsService := analytics.NewService(analytics.NewDatabaseSource(db), cfg.Analytics)
	reporter := analytics.NewCachedReporter(analyticsService, redisClient,
		time.Duration(cfg.Analytics.CacheTTLSeconds)*time.Second)

	// Routers
	actor := func(r *http.Request) *users.Actor { return auth.ActorFromContext(r.Context()) }
	authRouter := auth.NewRouter(authService)
	userRouter := users.NewRouter(accounts, actor)
	workflowRouter := workflowrouter.NewRouter(templateService, instanceService, actor)
	uploadRouter := uploads.NewRouter(attachmentService, actor, cfg.Storage.MaxUploadBytes)
	notificationRouter := notifications.NewRouter(notificationService, actor)
	auditRouter := audit.NewRouter(recorder)
	analyticsRouter := analytics.NewRouter(reporter)

	requireAdmin := auth.RequireRole(users.RoleAdmin)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := database.HealthCheck(db); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.HandleFunc("POST /api/auth/register", authRouter.HandleRegister)
	mux.HandleFunc("POST /api/auth/login", authRouter.HandleLogin)

	mux.Handle("GET /api/users", requireAdmin(http.HandlerFunc(userRouter.HandleList)))
	mux.Handle("POST /api/users", requireAdmin(http.HandlerFunc(userRouter.HandleCreate)))
	mux.Handle("PUT /api/users/{userID}", requireAdmin(http.HandlerFunc(userRouter.HandleUpdate)))
	mux.Handle("DELETE /api/users/{userID}", requireAdmin(http.HandlerFunc(userRouter.HandleDelete)))
	mux.Handle("GET /api/profile", auth.RequireAuth(http.HandlerFunc(userRouter.HandleGetProfile)))
	mux.Handle("PUT /api/profile", auth.RequireAuth(http.HandlerFunc(userRouter.HandleUpdateProfile)))

	mux.Handle("GET /api/workflows", auth.RequireAuth(http.HandlerFunc(workflowRouter.HandleListTemplates)))
	mux.Handle("POST /api/workflows", auth.RequireReviewer(http.HandlerFunc(workflowRouter.HandleCreateTemplate)))

	mux.Handle("POST /api/instances", auth.RequireAuth(http.HandlerFunc(workflowRouter.HandleCreateInstance)))
	mux.Handle("GET /api/instances", auth.RequireReviewer(http.HandlerFunc(workflowRouter.HandleListAll)))
	mux.Handle("GET /api/instances/mine", auth.RequireAuth(http.HandlerFunc(workflowRouter.HandleListMine)))
	mux.Handle("GET /api/instances/assigned", auth.RequireReviewer(http.HandlerFunc(workflowRouter.HandleListAssigned)))
	mux.Handle("GET /api/instances/{instanceID}", auth.RequireAuth(http.HandlerFunc(workflowRouter.HandleGetInstance)))
	mux.Handle("PUT /api/instances/{instanceID}", auth.RequireAuth(http.HandlerFunc(workflowRouter.HandleUpdateDetails)))
	mux.Handle("PUT /api/instances/{instanceID}/status", auth.RequireAuth(http.HandlerFunc(workflowRouter.HandleTransition)))
	mux.Handle("PUT /api/instances/{instanceID}/assign", auth.RequireReviewer(http.HandlerFunc(workflowRouter.HandleAssign)))

	mux.Handle("POST /api/instances/{instanceID}/files", auth.RequireAuth(http.HandlerFunc(uploadRouter.HandleUpload)))
	mux.Handle("GET /api/instances/{instanceID}/files", auth.RequireAuth(http.HandlerFunc(uploadRouter.HandleList)))
	mux.Handle("GET /api/files/{attachmentID}", auth.RequireAuth(http.HandlerFunc(uploadRouter.HandleDownload)))

	mux.Handle("GET /api/notifications", auth.RequireAuth(http.HandlerFunc(notificationRouter.HandleList)))
	mux.Handle("PUT /api/notifications/{notificationID}/read", auth.RequireAuth(http.HandlerFunc(notificationRouter.HandleMarkRead)))

	mux.Handle("GET /api/audit", requireAdmin(http.HandlerFunc(auditRouter.HandleList)))
	mux.Handle("GET /api/admin/analytics", auth.RequireReviewer(http.HandlerFunc(analyticsRouter.HandleReport)))

	// Middleware wraps outermost-first: CORS answers preflight before auth.
	handler := middleware.CORS(&cfg.CORS)(auth.Middleware(tokens, accounts)(mux))

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: handler,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("starting server", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to start server", "error", err)
			quit <- syscall.SIGTERM
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	} else {
		slog.Info("server gracefully stopped")
	}

	slog.Info("server stopped")
}
