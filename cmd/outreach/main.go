package main

import (
	"context"
	"database/sql"
	"log"
	"log/slog"
	"net/http"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/rbalint/candidate-outreach/internal/api"
	"github.com/rbalint/candidate-outreach/internal/cache"
	"github.com/rbalint/candidate-outreach/internal/client"
	"github.com/rbalint/candidate-outreach/internal/config"
	"github.com/rbalint/candidate-outreach/internal/mapper"
	"github.com/rbalint/candidate-outreach/internal/mirror"
	"github.com/rbalint/candidate-outreach/internal/model"
	"github.com/rbalint/candidate-outreach/internal/repo"
	"github.com/rbalint/candidate-outreach/internal/roster"
	"github.com/rbalint/candidate-outreach/internal/service"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadAll()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()

	store := buildStore(ctx, cfg)

	var mappingCache cache.MappingCache
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		mappingCache = cache.NewRedisCache(rdb, cfg.Redis.TTL)
	}

	gen, err := mapper.NewGeminiGenerator(ctx, cfg.GenAI.APIKey, cfg.GenAI.Model)
	if err != nil {
		log.Fatal(err)
	}

	rst := roster.New()

	dispatcher := service.NewDispatcher(rst, client.NewBrowserOpener(), cfg.Dispatch.SendDelay, cfg.Dispatch.Throttle).
		WithStatusHook(func(ctx context.Context, id string, status model.Status) {
			if err := store.UpdateStatus(ctx, id, status); err != nil {
				slog.Warn("failed to persist status", "id", id, "error", err)
			}
		})

	mir, err := mirror.New(cfg.Mirror.Interval, store, rst.All)
	if err != nil {
		log.Fatal(err)
	}
	mir.Start()
	defer mir.Stop()

	h := api.NewHandler(rst, dispatcher, mapper.New(gen, mappingCache), store, mir, defaultTemplate())

	slog.Info("candidate-outreach starting",
		"addr", cfg.Server.Address,
		"store", cfg.Database.PostgresURL != "",
		"redis", cfg.Redis.Enabled,
		"model", cfg.GenAI.Model,
	)

	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           loggingMiddleware(api.Router(h)),
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

func buildStore(ctx context.Context, cfg *config.Config) repo.CandidateStore {
	if cfg.Database.PostgresURL == "" {
		slog.Info("no POSTGRES_URL configured, roster is memory-only")
		return repo.NewMemoryCandidateStore()
	}

	db, err := sql.Open("pgx", cfg.Database.PostgresURL)
	if err != nil {
		log.Fatal(err)
	}

	store := repo.NewPostgresCandidateStore(db)
	if err := store.Verify(ctx); err != nil {
		// Persistence is best effort: start offline, keep working.
		slog.Warn("backing store unavailable, starting offline", "error", err)
	}
	return store
}

func defaultTemplate() model.MessageTemplate {
	return model.MessageTemplate{
		Intro: "Hi {{name}}, I came across your profile and think you could be a great fit for a role we're hiring for.",
		Questions: []string{
			"Are you open to new opportunities at the moment?",
			"What kind of role would interest you most?",
		},
		Outro: "Looking forward to hearing from you!",
	}
}
