package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/crewchat/internal/api"
	"github.com/Rrens/crewchat/internal/config"
	"github.com/Rrens/crewchat/internal/domain"
	"github.com/Rrens/crewchat/internal/logging"
	"github.com/Rrens/crewchat/internal/realtime"
	"github.com/Rrens/crewchat/internal/repository/mongo"
	"github.com/Rrens/crewchat/internal/repository/postgres"
	"github.com/Rrens/crewchat/internal/repository/redis"
	"github.com/Rrens/crewchat/internal/repository/sqlite"
	"github.com/Rrens/crewchat/internal/service"
)

func main() {
	// Load .env file - try multiple locations
	for _, p := range []string{".env", "../.env", "../../.env"} {
		if err := godotenv.Load(p); err == nil {
			break
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logging.Setup(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}

	log.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Str("driver", cfg.Database.Driver).
		Msg("Starting crewchat server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := openStore(ctx, cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open chat store")
	}
	defer store.Close()

	deps := api.Dependencies{
		Store: store,
		Hub:   realtime.NewHub(),
	}

	var (
		bus   realtime.Bus = realtime.NewLocalBus()
		cache service.ChatListCache
	)

	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer redisClient.Close()

		bus = redis.NewBus(redisClient, cfg.Redis.Channel)
		cache = redis.NewChatListCache(redisClient)

		deps.RateLimiter = redis.NewRateLimiter(
			redisClient,
			cfg.Security.RateLimit.RequestsPerMinute,
			cfg.Security.RateLimit.Burst,
		)
	}
	defer bus.Close()

	if err := bus.StartForwarder(ctx, deps.Hub.Broadcast); err != nil {
		log.Fatal().Err(err).Msg("Failed to start event forwarder")
	}

	deps.Chats = service.NewChatService(store.Chats(), store.Messages(), bus, cache)

	server := newHTTPServer(ctx, cfg.Server, api.NewRouter(cfg, deps))

	go func() {
		log.Info().Msgf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Stops the forwarder and ends open streams, whose request contexts derive from ctx
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}

func openStore(ctx context.Context, cfg config.DatabaseConfig) (domain.Store, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		if cfg.Migrate {
			if err := postgres.RunMigrations(cfg.DSN()); err != nil {
				return nil, err
			}
		}
		return postgres.NewDB(ctx, cfg)
	case config.DriverSQLite:
		return sqlite.Open(ctx, cfg.Path)
	case config.DriverMongo:
		return mongo.Open(ctx, cfg.URI, cfg.Database)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// newHTTPServer builds the server. Request contexts derive from ctx, so
// cancelling it ends long-lived streams before Shutdown waits on them.
func newHTTPServer(ctx context.Context, cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}
}
