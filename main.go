package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bitirgenalperen/ilkevim-sub000/handlers"
	"github.com/bitirgenalperen/ilkevim-sub000/initializers"
	"github.com/bitirgenalperen/ilkevim-sub000/job"
	"github.com/bitirgenalperen/ilkevim-sub000/middleware"
	"github.com/bitirgenalperen/ilkevim-sub000/pkg/appenv"
	"github.com/bitirgenalperen/ilkevim-sub000/pkg/notify"
	"github.com/bitirgenalperen/ilkevim-sub000/repository"
	"github.com/bitirgenalperen/ilkevim-sub000/websocket"

	"github.com/gin-gonic/gin"
)

func requireEnv(name string) string {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		log.Fatalf("%s is not set", name)
	}
	return v
}

func main() {
	dbURL := requireEnv("DATABASE_URL")
	mongoURI := requireEnv("MONGODB_URI")
	mongoDB := os.Getenv("MONGODB_DATABASE")
	if mongoDB == "" {
		mongoDB = "ilkevim"
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if len(jwtSecret) < 32 {
		log.Fatal("JWT_SECRET must be set and at least 32 characters")
	}
	adminUser := requireEnv("ADMIN_USERNAME")
	adminHash := requireEnv("ADMIN_PASSWORD_HASH")

	slog.SetLogLoggerLevel(appenv.LogLevel())
	if os.Getenv("GIN_MODE") == "release" || appenv.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	db, err := initializers.ConnectPostgres(dbURL)
	if err != nil {
		log.Fatal("Could not connect to database:", err)
	}
	defer db.Close()
	if err := initializers.RunMigrations(db, "migrations"); err != nil {
		log.Fatal("Migration failed:", err)
	}

	mongoClient, err := initializers.ConnectMongo(ctx, mongoURI)
	if err != nil {
		log.Fatal("Could not connect to MongoDB:", err)
	}
	propertiesRepo := repository.NewPropertiesRepository(mongoClient.Database(mongoDB))
	if err := propertiesRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal("Failed to create property indexes:", err)
	}

	storageConf := initializers.LoadStorageConfig()
	storage, err := initializers.NewObjectStorage(ctx, storageConf)
	if err != nil {
		log.Fatal("Failed to initialize object storage:", err)
	}

	eventsRepo := repository.NewEventsRepository(db)
	submissionsRepo := repository.NewSubmissionsRepository(db)
	chatRepo := repository.NewChatRepository(db)

	scheduler, err := job.Start(job.NewMaintenance(eventsRepo, chatRepo, job.RetentionDaysFromEnv()))
	if err != nil {
		log.Fatal("Failed to schedule jobs:", err)
	}

	r := gin.New()
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(gin.Recovery())

	// Loopback only unless TRUSTED_PROXIES says otherwise.
	if trustedProxies := os.Getenv("TRUSTED_PROXIES"); trustedProxies != "" {
		parts := strings.Split(trustedProxies, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		if err := r.SetTrustedProxies(parts); err != nil {
			log.Fatalf("Invalid TRUSTED_PROXIES: %v", err)
		}
	} else {
		_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})
	}

	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.RateLimitMiddleware())

	handlers.RegisterRoutes(r, handlers.Dependencies{
		Properties:        propertiesRepo,
		Events:            eventsRepo,
		Submissions:       submissionsRepo,
		Chat:              chatRepo,
		Images:            storage,
		Notifier:          notify.FromEnv(),
		Hub:               websocket.NewHub(),
		MaxUploadSize:     storageConf.MaxSize,
		JWTSecret:         jwtSecret,
		AdminUsername:     adminUser,
		AdminPasswordHash: adminHash,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{Addr: ":" + port, Handler: r, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		slog.Info("listening", "addr", srv.Addr, "env", string(appenv.Current()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed:", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown", "err", err)
	}
	<-scheduler.Stop().Done()
	if err := mongoClient.Disconnect(shutdownCtx); err != nil {
		slog.Error("mongo disconnect", "err", err)
	}
}
