// cmd/relay-server/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	awsclients "growify-relay/internal/common/aws"
	"growify-relay/internal/common/config"
	"growify-relay/internal/common/database"
	httpclient "growify-relay/internal/common/http"
	"growify-relay/internal/common/logger"
	"growify-relay/internal/common/observability"
	"growify-relay/internal/common/zoho"
	"growify-relay/internal/notify"
	"growify-relay/internal/relay"
	"growify-relay/internal/results"
	"growify-relay/internal/server"
	"growify-relay/internal/session"
	"growify-relay/pkg/registry"

	ba "growify-relay/internal/handlers/automations/business-analyzer"
	ar "growify-relay/internal/handlers/demo/appointment-relay"
	lr "growify-relay/internal/handlers/demo/lead-relay"
	ac "growify-relay/internal/handlers/webhook/agent-callback"
)

const userAgent = "growify-relay/1.0"

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	registryPath := flag.String("registry", "", "Path to an endpoint registry JSON file (defaults to the built-in catalog)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting relay server",
		zap.String("environment", cfg.App.Environment),
		zap.Bool("demoMode", cfg.App.DemoMode),
		zap.String("fallback", cfg.Relay.Fallback),
	)

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		zapLog.Warn("otel exporter unavailable, continuing without it", zap.Error(err))
	}
	defer obs.Shutdown()

	ctx := context.Background()
	var readyChecks []func(context.Context) error

	// --- Session registry ---
	var sessions session.Registry = session.NewMemoryRegistry()
	if cfg.Session.Backend == "redis" {
		var rdb *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			rdb, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return rdb.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer rdb.Close()
		sessions = session.NewRedisRegistry(rdb.Client)
		readyChecks = append(readyChecks, rdb.Ping)
		zapLog.Info("Redis session registry connected")
	}

	// --- Call results store ---
	var store results.Store = results.NopStore{}
	if cfg.Callback.StoreResults {
		var pg *database.PostgresClient
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()

		pgStore := results.NewPostgresStore(pg.DB)
		if err := pgStore.EnsureSchema(ctx); err != nil {
			zapLog.Fatal("call_results schema", zap.Error(err))
		}
		store = pgStore
		readyChecks = append(readyChecks, pg.Ping)
		zapLog.Info("PostgreSQL results store connected")
	}

	// --- Notification channels ---
	notifier := buildNotifier(ctx, cfg, log, zapLog)

	// --- Handlers ---
	relayer := relay.NewRelayer(relay.Options{
		Client: httpclient.NewClient(60*time.Second,
			httpclient.WithBearerToken(cfg.Relay.BearerToken),
			httpclient.WithUserAgent(userAgent),
		),
		Fallback:   relay.PolicyFor(cfg.Relay.Fallback),
		Sessions:   sessions,
		SessionTTL: time.Duration(cfg.Session.TTL) * time.Second,
		Logger:     log,
	})

	leadHandler, err := lr.NewHandler(lr.HandlerOptions{AppConfig: cfg, Relayer: relayer, Logger: log})
	if err != nil {
		zapLog.Fatal("failed to create lead-relay handler", zap.Error(err))
	}

	appointmentHandler, err := ar.NewHandler(ar.HandlerOptions{AppConfig: cfg, Relayer: relayer, Logger: log})
	if err != nil {
		zapLog.Fatal("failed to create appointment-relay handler", zap.Error(err))
	}

	analyzerHandler, err := ba.NewHandler(ba.HandlerOptions{AppConfig: cfg, Logger: log})
	if err != nil {
		zapLog.Fatal("failed to create business-analyzer handler", zap.Error(err))
	}

	callbackOpts := ac.HandlerOptions{
		AppConfig: cfg,
		Forwarder: httpclient.NewClient(60*time.Second, httpclient.WithUserAgent(userAgent)),
		Store:     store,
		Sessions:  sessions,
		Observer:  obs,
		Logger:    log,
	}
	if notifier.Enabled() {
		callbackOpts.Notifier = notifier
	}
	callbackHandler, err := ac.NewHandler(callbackOpts)
	if err != nil {
		zapLog.Fatal("failed to create agent-callback handler", zap.Error(err))
	}

	// --- Router ---
	catalog := registry.Default()
	if *registryPath != "" {
		catalog, err = registry.LoadCatalog(*registryPath)
		if err != nil {
			zapLog.Fatal("failed to load endpoint registry", zap.String("path", *registryPath), zap.Error(err))
		}
	}

	router, err := server.NewRouter(server.Options{
		Config:  cfg,
		Catalog: catalog,
		Handlers: map[string]http.Handler{
			lr.Endpoint: leadHandler,
			ar.Endpoint: appointmentHandler,
			ba.Endpoint: analyzerHandler,
			ac.Endpoint: callbackHandler,
		},
		Observability: obs,
		Ready: func(ctx context.Context) error {
			for _, check := range readyChecks {
				if err := check(ctx); err != nil {
					return err
				}
			}
			return nil
		},
		Logger: log,
	})
	if err != nil {
		zapLog.Fatal("failed to build router", zap.Error(err))
	}

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	go func() {
		zapLog.Info("Relay server listening", zap.String("address", cfg.Server.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	zapLog.Info("Shutting down relay server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("graceful shutdown failed", zap.Error(err))
	}
	zapLog.Info("Relay server stopped")
}

func buildNotifier(ctx context.Context, cfg *config.Config, log logger.Logger, zapLog *zap.Logger) *notify.Notifier {
	opts := notify.Options{
		AlertPhone: cfg.Integrations.AWS.SNS.AlertPhone,
		Logger:     log,
	}

	if cfg.Integrations.AWS.SES.Enabled {
		ses, err := awsclients.NewSESClient(ctx, cfg.Integrations.AWS.Region, cfg.Integrations.AWS.SES.FromEmail)
		if err != nil {
			zapLog.Warn("SES disabled", zap.Error(err))
		} else {
			opts.Email = ses
		}
	}

	if cfg.Integrations.AWS.SNS.Enabled {
		sns, err := awsclients.NewSNSClient(ctx, cfg.Integrations.AWS.Region, cfg.Integrations.AWS.SNS.SenderID)
		if err != nil {
			zapLog.Warn("SNS disabled", zap.Error(err))
		} else {
			opts.SMS = sns
		}
	}

	if cfg.Integrations.Zoho.Enabled {
		opts.CRM = zoho.NewCRMClient(cfg.Integrations.Zoho.BaseURL, cfg.Integrations.Zoho.AuthToken, nil)
	}

	return notify.New(opts)
}
