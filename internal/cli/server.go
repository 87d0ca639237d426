package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"answerhub-service/internal/app"
	"answerhub-service/internal/auth"
	"answerhub-service/internal/config"
	"answerhub-service/internal/infra/memory"
	pgstore "answerhub-service/internal/infra/postgres"
	redisinfra "answerhub-service/internal/infra/redis"
	transport "answerhub-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the answer collection server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

// resolvePort picks the listen port: the --port flag (whose default carries
// the PORT env var), then the config file, then 8080.
func resolvePort(flagPort, cfgPort string) string {
	if flagPort != "" {
		return flagPort
	}
	if cfgPort != "" {
		return cfgPort
	}
	return "8080"
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := resolvePort(portFlag, cfg.Server.Port)

	var store app.Store = memory.NewStore()
	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		store = pgstore.NewStore(pool, config.TTLDuration(cfg.Postgres.Timeout, pgstore.DefaultTimeout))
	}

	generator := app.NewStaticPromptGenerator(cfg.Submission.SeedPromptText)
	service := app.NewService(store, generator, app.Options{
		DailyCap:            cfg.Submission.DailyCap,
		SimilarityThreshold: cfg.Submission.SimilarityThreshold,
		SubmissionPoints:    cfg.Submission.SubmissionPoints,
		ValidationPoints:    cfg.Submission.ValidationPoints,
		RejectClosedPrompts: cfg.Submission.RejectClosedPrompts,
		SeedTopic:           cfg.Submission.SeedTopic,
	})

	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		promptTTL := config.TTLDuration(cfg.Redis.PromptTTL, 30*time.Second)
		service.UseOpenPromptCache(redisinfra.NewPromptCache(redisClient, store, promptTTL))
	}

	secret := cfg.Auth.Secret
	if secret == "" {
		secret = "supersecret"
	}
	verifier := auth.NewHS256Verifier(secret)

	handler := transport.NewHandler(service, verifier)
	feedHandler := transport.NewFeedHandler(service.Feed(), verifier)

	mux := http.NewServeMux()
	handler.Register(mux)
	mux.HandleFunc("GET /ws/feed", feedHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting answerhub service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
