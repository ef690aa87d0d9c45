// Command server runs the YouTube WebSub notifier daemon: it subscribes to
// the configured channels, serves the hub callback endpoint, and relays
// verified notifications to the configured sinks.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/daggieblanqx/youtube-notification/internal/config"
	"github.com/daggieblanqx/youtube-notification/internal/metrics"
	"github.com/daggieblanqx/youtube-notification/internal/queue"
	"github.com/daggieblanqx/youtube-notification/internal/relay"
	"github.com/daggieblanqx/youtube-notification/internal/store"
	"github.com/daggieblanqx/youtube-notification/notifier"
	"github.com/daggieblanqx/youtube-notification/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	n, err := notifier.New(notifier.Config{
		HubCallback: cfg.Hub.Callback,
		HubURL:      cfg.Hub.URL,
		Secret:      cfg.Hub.Secret,
		Path:        cfg.Hub.Path,
		Middleware:  true,
		Logger:      log,
	})
	if err != nil {
		return fmt.Errorf("create notifier: %w", err)
	}

	// Optional sinks.
	var repo store.NotificationRepository
	if cfg.Database.Enabled {
		pool, err := store.NewPool(ctx, &cfg.Database)
		if err != nil {
			return fmt.Errorf("init database: %w", err)
		}
		defer pool.Close()

		if err := store.CreateSchema(ctx, pool); err != nil {
			return err
		}
		repo = store.NewNotificationRepository(pool)
		log.Info("database sink enabled", zap.String("database", cfg.Database.Name))
	}

	var publisher *queue.Publisher
	if cfg.RabbitMQ.Enabled {
		publisher, err = queue.NewPublisher(&cfg.RabbitMQ, log)
		if err != nil {
			return fmt.Errorf("init rabbitmq: %w", err)
		}
		defer publisher.Close()
	}

	rl := newRelay(repo, publisher, log)
	n.OnNotified(rl.HandleNotification)
	n.OnSubscribe(rl.HandleIntent)
	n.OnUnsubscribe(rl.HandleIntent)

	router := newRouter(n, cfg, publisher, log)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("server starting",
			zap.Int("port", cfg.Server.Port),
			zap.String("callback_path", cfg.Hub.Path),
		)
		serverErrors <- server.ListenAndServe()
	}()

	// Register with the hub once the server is up, then keep leases fresh.
	if len(cfg.Hub.Channels) > 0 {
		go maintainSubscriptions(ctx, n, cfg, log)
	} else {
		log.Warn("no channels configured, serving callbacks only")
	}

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		log.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			_ = server.Close()
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}

		log.Info("server stopped gracefully")
		return nil
	}
}

func newRelay(repo store.NotificationRepository, publisher *queue.Publisher, log *zap.Logger) *relay.Relay {
	var st relay.Store
	if repo != nil {
		st = repo
	}
	var pub relay.Publisher
	if publisher != nil {
		pub = publisher
	}
	return relay.New(st, pub, log)
}

func newRouter(n *notifier.Notifier, cfg *config.Config, publisher *queue.Publisher, log *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(log))
	router.Use(metrics.Middleware())

	router.Any(cfg.Hub.Path, gin.WrapH(n.Handler()))
	router.GET("/metrics", metrics.Handler())
	router.GET("/healthz", func(c *gin.Context) {
		if publisher != nil && !publisher.IsHealthy() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "DOWN", "queue": "disconnected"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "UP", "time": time.Now()})
	})

	return router
}

// requestLogger logs one line per request with status and latency.
func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		log.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			zap.String("remote_addr", c.ClientIP()),
		)
	}
}

// maintainSubscriptions subscribes to every configured channel and renews
// on an interval shorter than the hub's lease so subscriptions never lapse.
func maintainSubscriptions(ctx context.Context, n *notifier.Notifier, cfg *config.Config, log *zap.Logger) {
	subscribe := func() {
		reqCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		if err := n.Subscribe(reqCtx, cfg.Hub.Channels...); err != nil {
			log.Error("subscription request failed", zap.Error(err))
			return
		}
		log.Info("subscription requests sent",
			zap.Int("channels", len(cfg.Hub.Channels)),
		)
	}

	subscribe()

	ticker := time.NewTicker(cfg.Hub.RenewInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			subscribe()
		}
	}
}
