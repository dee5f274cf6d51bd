// Package streamer runs one stream connection, fans its lines out to the
// configured sinks and serves health, metrics and the relay over HTTP.
package streamer

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/kp666/twitter-stream/internal/api"
	"github.com/kp666/twitter-stream/internal/config"
	"github.com/kp666/twitter-stream/internal/services/database"
	"github.com/kp666/twitter-stream/internal/services/relay"
	"github.com/kp666/twitter-stream/internal/services/stream/handlers"
	"github.com/kp666/twitter-stream/internal/services/stream/writers"
	"github.com/kp666/twitter-stream/pkg/builder"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 30 * time.Second

// Streamer represents one streaming session and its HTTP surface
type Streamer struct {
	config *config.Config
	output io.Writer
	redis  *redis.Client
	db     *database.DB
	hub    *relay.Hub
}

// New creates a Streamer. Lines are written to output, one per line, unless
// output is nil.
func New(cfg *config.Config, output io.Writer) *Streamer {
	if cfg == nil {
		panic("config cannot be nil - use config.LoadFromFile() to create config")
	}
	return &Streamer{
		config: cfg,
		output: output,
	}
}

// Run connects and consumes the stream until it terminates or ctx is done.
// The returned *contracts.StreamError says how the stream ended.
func (s *Streamer) Run(ctx context.Context) error {
	if err := s.config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	setupLogLevel(s.config)

	// === Infrastructure Setup ===
	if err := s.initializeInfrastructure(); err != nil {
		return err
	}
	defer s.closeInfrastructure()

	// === Connect ===
	b, err := builder.FromConfig(s.config)
	if err != nil {
		return err
	}
	stream, err := b.Listen(ctx)
	if err != nil {
		return err
	}

	orchestrator := handlers.NewStreamOrchestrator(stream, s.config.Stream.ShouldSkipHeartbeats(), s.sinks(ctx, stream.SessionID())...)

	// === HTTP Server ===
	var app *fiber.App
	var ln net.Listener
	if s.config.Server.Listen != "" {
		app = createFiberApp(s.config)
		setupMiddleware(app, s.config)
		s.setupRoutes(app, stream)

		ln, err = net.Listen("tcp", s.config.Server.Listen)
		if err != nil {
			stream.Close()
			return fmt.Errorf("failed to listen on %s: %w", s.config.Server.Listen, err)
		}
		fiberlog.Infof("Serving on %s (Go %s, GOMAXPROCS %d)", ln.Addr(), runtime.Version(), runtime.GOMAXPROCS(0))
	}

	g, gctx := errgroup.WithContext(ctx)
	streamDone := make(chan struct{})
	var result error

	g.Go(func() error {
		defer close(streamDone)
		result = orchestrator.Handle(gctx)
		return nil
	})

	if app != nil {
		g.Go(func() error {
			if err := app.Listener(ln); err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			select {
			case <-streamDone:
			case <-gctx.Done():
			}
			fiberlog.Info("Server shutting down gracefully...")
			err := app.ShutdownWithTimeout(shutdownTimeout)
			// Unblocks Listener if shutdown raced its start
			_ = ln.Close()
			if err != nil {
				return fmt.Errorf("shutdown error: %w", err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return result
}

func (s *Streamer) initializeInfrastructure() error {
	if s.config.Redis != nil {
		client, err := createRedisClient(s.config.Redis.URL)
		if err != nil {
			return fmt.Errorf("failed to create Redis client: %w", err)
		}
		s.redis = client
	} else {
		fiberlog.Info("Redis not configured - redis sink disabled")
	}

	if s.config.Database != nil {
		db, err := database.New(*s.config.Database)
		if err != nil {
			s.closeInfrastructure()
			return fmt.Errorf("failed to create database connection: %w", err)
		}
		s.db = db

		if err := db.Migrate(); err != nil {
			s.closeInfrastructure()
			return fmt.Errorf("failed to run database migrations: %w", err)
		}
		fiberlog.Info("Database migrations completed successfully")
	} else {
		fiberlog.Info("Database not configured - database sink disabled")
	}

	if s.config.Relay.Enabled {
		s.hub = relay.NewHub(s.config.Relay.SubscriberBuffer)
	}
	return nil
}

func (s *Streamer) closeInfrastructure() {
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			fiberlog.Errorf("Failed to close Redis client: %v", err)
		}
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			fiberlog.Errorf("Failed to close database connection: %v", err)
		}
	}
}

// sinks lists the configured line destinations
func (s *Streamer) sinks(ctx context.Context, sessionID string) []handlers.Sink {
	var sinks []handlers.Sink

	if s.output != nil {
		sinks = append(sinks, handlers.Sink{
			Name:   "output",
			Writer: writers.NewLineStreamWriter(bufio.NewWriter(s.output), sessionID),
		})
	}
	if s.redis != nil {
		sinks = append(sinks, handlers.Sink{
			Name:   "redis",
			Writer: writers.NewRedisStreamWriter(ctx, s.redis, *s.config.Redis, sessionID),
		})
	}
	if s.db != nil {
		sinks = append(sinks, handlers.Sink{
			Name:   "database",
			Writer: writers.NewDatabaseStreamWriter(s.db.DB, sessionID, s.db.BatchSize()),
		})
	}
	if s.hub != nil {
		sinks = append(sinks, handlers.Sink{
			Name:   "relay",
			Writer: s.hub,
		})
	}

	names := make([]string, len(sinks))
	for i, sink := range sinks {
		names[i] = sink.Name
	}
	fiberlog.Infof("[%s] Sinks: %s", sessionID, strings.Join(names, ", "))
	return sinks
}

func createFiberApp(cfg *config.Config) *fiber.App {
	return fiber.New(fiber.Config{
		AppName:     "twitter-stream",
		ReadTimeout: 30 * time.Second,
		// Relay responses stay open for the life of the stream
		WriteTimeout:          0,
		IdleTimeout:           5 * time.Minute,
		CaseSensitive:         true,
		Network:               "tcp",
		ServerHeader:          "twitter-stream",
		DisableStartupMessage: true,
		EnablePrintRoutes:     false,
	})
}

func setupMiddleware(app *fiber.App, cfg *config.Config) {
	isProd := cfg.IsProduction()

	// Recover middleware (must be first)
	app.Use(recover.New(recover.Config{
		EnableStackTrace: !isProd,
	}))

	// Logging goes to stderr, stdout may carry the stream
	if isProd {
		app.Use(logger.New(logger.Config{
			Format: "${time} ${status} ${method} ${path} ${latency} ${bytesSent}b\n",
			Output: os.Stderr,
		}))
	} else {
		app.Use(logger.New(logger.Config{
			Format: "[${time}] ${status} - ${latency} ${method} ${path} ${error}\n",
			Output: os.Stderr,
		}))
	}

	allowedOrigins := cfg.Server.AllowedOrigins
	if allowedOrigins == "" {
		allowedOrigins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, OPTIONS",
		MaxAge:       86400,
	}))

	// Profiler (dev only)
	if !isProd {
		app.Use(pprof.New())
	}
}

func (s *Streamer) setupRoutes(app *fiber.App, stream *handlers.Stream) {
	var redisClient redis.Cmdable
	if s.redis != nil {
		redisClient = s.redis
	}
	healthHandler := api.NewHealthHandler(stream, redisClient, s.db)

	app.Get("/", welcomeHandler(s.hub != nil))
	app.Get("/health", healthHandler.HealthCheck)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	if s.hub != nil {
		relayHandler := api.NewRelayHandler(s.hub, s.config.Relay.HeartbeatInterval)
		app.Group("/v1").Get("/stream", relayHandler.Stream)
	}
}

func welcomeHandler(relayEnabled bool) fiber.Handler {
	endpoints := fiber.Map{
		"health":  "/health",
		"metrics": "/metrics",
	}
	if relayEnabled {
		endpoints["stream"] = "/v1/stream"
	}
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message":    "twitter-stream",
			"go_version": runtime.Version(),
			"status":     "running",
			"endpoints":  endpoints,
		})
	}
}

func setupLogLevel(cfg *config.Config) {
	logLevel := cfg.GetNormalizedLogLevel()

	switch logLevel {
	case "trace":
		fiberlog.SetLevel(fiberlog.LevelTrace)
	case "debug":
		fiberlog.SetLevel(fiberlog.LevelDebug)
	case "info", "":
		fiberlog.SetLevel(fiberlog.LevelInfo)
	case "warn", "warning":
		fiberlog.SetLevel(fiberlog.LevelWarn)
	case "error":
		fiberlog.SetLevel(fiberlog.LevelError)
	case "fatal":
		fiberlog.SetLevel(fiberlog.LevelFatal)
	case "panic":
		fiberlog.SetLevel(fiberlog.LevelPanic)
	default:
		fiberlog.SetLevel(fiberlog.LevelInfo)
		fiberlog.Warnf("Unknown log level '%s', defaulting to 'info'", logLevel)
	}

	fiberlog.Infof("Log level set to: %s", logLevel)
}
