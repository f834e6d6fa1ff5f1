package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"

	"golfcam/internal/config"
	"golfcam/internal/events"
	"golfcam/internal/server"
	"golfcam/internal/store/postgres"
	"golfcam/internal/telemetry"

	_ "golfcam/docs"
)

// @title GolfCam API
// @version 1.0
// @description Camera logistics for golf tournament broadcasts.

// @host localhost:3000
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	log.Println("[API] Starting GolfCam API Server...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[API] Invalid configuration: %v", err)
	}

	shutdownTracing := telemetry.Setup(context.Background(), cfg.Telemetry)

	if err := postgres.MigrateUp(cfg.DatabaseURL); err != nil {
		log.Fatalf("[API] Failed to migrate database: %v", err)
	}
	log.Println("[API] Database migrated")

	st, err := postgres.Open(cfg.DatabaseURL, postgres.Options{
		MaxOpenConns: cfg.DBMaxOpenConns,
		MaxIdleConns: cfg.DBMaxIdleConns,
	})
	if err != nil {
		log.Fatalf("[API] Failed to connect to database: %v", err)
	}
	defer st.Close()
	log.Println("[API] Connected to database")

	redisClient := connectRedis(cfg.RedisURL)
	if redisClient != nil {
		defer redisClient.Close()
	}

	natsConn, publisher := connectNATS(cfg.NATSURL, cfg.JetStreamEnabled)
	if natsConn != nil {
		defer natsConn.Close()
	}

	srv := server.NewServer(cfg, st, st.Users(), redisClient, natsConn, publisher)
	if err := srv.Setup(); err != nil {
		log.Fatalf("[API] Failed to set up server: %v", err)
	}

	go func() {
		if err := srv.Run(); err != nil {
			log.Fatalf("[API] Failed to start server: %v", err)
		}
	}()
	log.Printf("[API] Server ready on %s", cfg.Addr())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	log.Println("[API] Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	srv.Shutdown(ctx)
	if err := shutdownTracing(ctx); err != nil {
		log.Printf("[API] Tracing shutdown: %v", err)
	}
	log.Println("[API] Server stopped")
}

// connectRedis returns nil when Redis is not configured or unreachable.
// Rate limiting and report caching are off without it.
func connectRedis(addr string) *redis.Client {
	if addr == "" {
		log.Println("[API] Redis not configured, rate limiting and report cache disabled")
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr, DB: 0})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("[API] Redis unavailable, continuing without it: %v", err)
		client.Close()
		return nil
	}
	log.Println("[API] Connected to Redis")
	return client
}

// connectNATS returns nil values when NATS is not configured or
// unreachable. Events then reach WebSocket clients in process only.
func connectNATS(url string, jetstream bool) (*nats.Conn, *events.NATSPublisher) {
	if url == "" {
		log.Println("[API] NATS not configured, events stay in process")
		return nil, nil
	}
	nc, err := nats.Connect(url,
		nats.Name("golfcam-api"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		log.Printf("[API] NATS unavailable, events stay in process: %v", err)
		return nil, nil
	}
	log.Println("[API] Connected to NATS")

	publisher, err := events.NewNATSPublisher(nc, jetstream)
	if err != nil {
		log.Printf("[API] JetStream unavailable, publishing without persistence: %v", err)
		publisher, _ = events.NewNATSPublisher(nc, false)
	} else if jetstream {
		log.Printf("[API] JetStream stream %s ready", events.StreamName)
	}
	return nc, publisher
}
