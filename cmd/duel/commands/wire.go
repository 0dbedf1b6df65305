package commands

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/duelist/stockduel/internal/ai"
	"github.com/duelist/stockduel/internal/bracket"
	"github.com/duelist/stockduel/internal/marketdata"
	"github.com/duelist/stockduel/internal/personality"
	"github.com/duelist/stockduel/pkg/config"
	"github.com/duelist/stockduel/pkg/database"
	"github.com/duelist/stockduel/pkg/logger"
	"github.com/duelist/stockduel/pkg/redis"
)

// app bundles the wired engine shared by the api and scheduler commands
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	db       *database.DB
	rdb      *redis.Client
	service  *bracket.Service
	registry *personality.Registry
	usage    *marketdata.UsageStats
}

// newApp loads config and wires the full bracket engine
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	rdb, err := redis.New(cfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	store := bracket.NewRepository(db.Pool)
	if err := store.EnsureSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	market := marketdata.NewClient(cfg, rdb, log)
	usage := marketdata.NewUsageStats()

	rng := rand.New(rand.NewSource(rand.Int63()))
	registry := personality.NewRegistry(rng)
	sourcer := ai.NewSourcer(market, usage, log)
	picker := ai.NewPicker(registry, sourcer, ai.NewRanker(rng), ai.NewDirectionAssigner(rng), market, rng, log)

	service := bracket.NewService(store, market, registry, picker, usage, log, cfg.Duel.RefreshRetries)

	return &app{
		cfg:      cfg,
		log:      log,
		db:       db,
		rdb:      rdb,
		service:  service,
		registry: registry,
		usage:    usage,
	}, nil
}

func (a *app) close() {
	if a.rdb != nil {
		a.rdb.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}
