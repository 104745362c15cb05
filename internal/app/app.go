package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	_ "chats/docs"
	"chats/internal/authz"
	"chats/internal/config"
	"chats/internal/database"
	"chats/internal/handlers"
	"chats/internal/logger"
	"chats/internal/metrics"
	"chats/internal/middleware"
	"chats/internal/realtime"
	"chats/internal/repositories"
	"chats/internal/repositories/memory"
	"chats/internal/routes"
	"chats/internal/services"
	"chats/internal/storage"
)

const usage = `usage:
  chats [serve]                 apply migrations, then serve HTTP
  chats migrate up              apply all pending migrations
  chats migrate down            revert the latest migration
  chats migrate version         print the current schema version
  chats migrate force VERSION   mark VERSION as applied without running it
`

type schemaMigrator interface {
	Up() error
	Version() (uint, bool, error)
	Close() error
}

// replaced in tests
var (
	openDB      = database.Open
	newMigrator = func(cfg config.DatabaseConfig) (schemaMigrator, error) {
		return database.NewMigrator(cfg)
	}
	listen = func(srv *http.Server) error { return srv.ListenAndServe() }
)

// Run executes the command in args and returns the process exit code.
func Run(args []string) int {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Error().Err(err).Msg("load config")
		return 1
	}
	closer, err := logger.Init(cfg.Logging)
	if err != nil {
		log.Error().Err(err).Str("file", cfg.Logging.FilePath).Msg("open log file")
		return 1
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := "serve"
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}
	switch cmd {
	case "serve":
		return serve(ctx, cfg)
	case "migrate":
		return runMigrate(ctx, cfg, args)
	case "help", "-h", "--help":
		fmt.Fprint(os.Stdout, usage)
		return 0
	default:
		fmt.Fprint(os.Stderr, usage)
		return 2
	}
}

func serve(ctx context.Context, cfg *config.Config) int {
	var (
		users    repositories.UserRepository
		chats    repositories.ChatRepository
		messages repositories.MessageRepository
		pinger   handlers.Pinger
	)

	// === Storage ===
	if cfg.Database.Engine == config.EngineMemory {
		log.Warn().Msg("DB_ENGINE=memory: nothing is persisted")
		store := memory.NewStore()
		users, chats, messages = store.Users(), store.Chats(), store.Messages()
	} else {
		db, err := openDB(ctx, cfg.Database)
		if err != nil {
			log.Error().Err(err).Msg("connect database")
			return 1
		}
		defer db.Close()

		if err := migrateUp(cfg.Database); err != nil {
			log.Error().Err(err).Msg("migrations failed, not starting the server")
			return 1
		}
		users = repositories.NewUserRepository(db)
		chats = repositories.NewChatRepository(db)
		messages = repositories.NewMessageRepository(db)
		pinger = db
	}

	files, err := storage.NewFileStorage(cfg.FileStoragePath)
	if err != nil {
		log.Error().Err(err).Str("path", cfg.FileStoragePath).Msg("prepare file storage")
		return 1
	}

	// === Services ===
	tokens, err := authz.NewTokenManager(cfg.TokenSigningKey, cfg.TokenSigningAlgorithm, cfg.TokenTTL())
	if err != nil {
		log.Error().Err(err).Msg("token manager")
		return 1
	}
	authService := services.NewAuthService(users, tokens)
	emailService := services.NewEmailService(cfg.Email, cfg.AppName)
	userService := services.NewUserService(users, authService, emailService, files, cfg.DefaultProfilePicPath)
	chatService := services.NewChatService(chats, messages, users, files)

	// === Realtime ===
	hub := realtime.NewChatHub()
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		broker := realtime.NewRedisBroker(rdb, cfg.Redis.Channel, hub)
		chatService.SetPublisher(broker)
		go broker.Run(ctx)
	} else {
		chatService.SetPublisher(hub)
	}

	// === Background jobs ===
	limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	jobs := cron.New()
	if _, err := jobs.AddFunc("@every 5m", func() {
		if n := limiter.Prune(10 * time.Minute); n > 0 {
			log.Debug().Int("removed", n).Msg("pruned idle rate limiters")
		}
	}); err != nil {
		log.Error().Err(err).Msg("schedule limiter pruning")
		return 1
	}
	jobs.Start()
	defer jobs.Stop()

	// === Handlers ===
	authHandler := handlers.NewAuthHandler(userService, authService)
	chatHandler := handlers.NewChatHandler(chatService, authService, hub, cfg.AllowedOrigins)
	adminHandler := handlers.NewAdminHandler(userService)
	healthHandler := handlers.NewHealthHandler(pinger)

	// === Gin ===
	if zerolog.GlobalLevel() > zerolog.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger())
	router.Use(metrics.Middleware())
	router.Use(middleware.CORS(cfg.AllowedOrigins))

	routes.SetupRoutes(router, authHandler, chatHandler, adminHandler, healthHandler, authService, limiter)

	// === Run ===
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("engine", cfg.Database.Engine).Msg("server listening")
		serveErr <- listen(srv)
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server failed")
			return 1
		}
		return 0
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown")
		return 1
	}
	return 0
}

func migrateUp(cfg config.DatabaseConfig) error {
	m, err := newMigrator(cfg)
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.Up(); err != nil {
		return err
	}
	v, dirty, err := m.Version()
	if err != nil {
		return err
	}
	log.Info().Uint("version", v).Bool("dirty", dirty).Msg("schema is up to date")
	return nil
}

func runMigrate(ctx context.Context, cfg *config.Config, args []string) int {
	if cfg.Database.Engine == config.EngineMemory {
		log.Error().Msg("DB_ENGINE=memory has no schema to migrate")
		return 1
	}
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return 2
	}

	// wait for the database the same way serve does
	db, err := openDB(ctx, cfg.Database)
	if err != nil {
		log.Error().Err(err).Msg("connect database")
		return 1
	}
	_ = db.Close()

	m, err := database.NewMigrator(cfg.Database)
	if err != nil {
		log.Error().Err(err).Msg("prepare migrations")
		return 1
	}
	defer m.Close()

	switch args[0] {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	case "version":
		var (
			v     uint
			dirty bool
		)
		if v, dirty, err = m.Version(); err == nil {
			fmt.Fprintf(os.Stdout, "%d dirty=%t\n", v, dirty)
		}
	case "force":
		if len(args) < 2 {
			fmt.Fprint(os.Stderr, usage)
			return 2
		}
		var version int
		if version, err = strconv.Atoi(args[1]); err == nil {
			err = m.Force(version)
		}
	default:
		fmt.Fprint(os.Stderr, usage)
		return 2
	}
	if err != nil {
		log.Error().Err(err).Str("command", args[0]).Msg("migrate")
		return 1
	}
	return 0
}
