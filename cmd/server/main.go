package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/railmiles/rewards-service/internal/config"
	"github.com/railmiles/rewards-service/internal/httpapi"
	"github.com/railmiles/rewards-service/internal/metrics"
	"github.com/railmiles/rewards-service/internal/rider"
	sharedauth "github.com/railmiles/rewards-service/internal/shared/auth"
	"github.com/railmiles/rewards-service/internal/shared/logging"
	"github.com/railmiles/rewards-service/internal/shared/pubsub"
	sharedserver "github.com/railmiles/rewards-service/internal/shared/server"
)

const serviceName = "rewards-service"

func main() {
	ctx := context.Background()
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Errorf("config error: %w", err))
	}

	logger := logging.NewLogger(serviceName, cfg.LogLevel)
	slog.SetDefault(logger)

	repo, closeRepo, err := newRepository(ctx, cfg)
	if err != nil {
		panic(fmt.Errorf("repository init error: %w", err))
	}

	collector := metrics.NewCollector()

	publisher, err := newPublisher(cfg, logger, collector)
	if err != nil {
		panic(fmt.Errorf("publisher init error: %w", err))
	}

	riderService, err := rider.NewService(repo, rider.NewSystemClock(), rider.NewUUIDGenerator(),
		rider.WithPublisher(publisher),
		rider.WithMetrics(collector),
		rider.WithLogger(logger),
		rider.WithLocation(cfg.Location),
	)
	if err != nil {
		panic(fmt.Errorf("rider service init error: %w", err))
	}

	verifier, err := sharedauth.NewVerifier(sharedauth.Config{
		Mode:     cfg.Auth.Mode,
		JWKSURL:  cfg.Auth.JWKSURL,
		Audience: cfg.Auth.Audience,
		Issuer:   cfg.Auth.Issuer,

		AuthorizedParties: cfg.Auth.AuthorizedParties,
	})
	if err != nil {
		panic(fmt.Errorf("auth verifier error: %w", err))
	}

	opts := sharedserver.RouterOptions{Service: serviceName, DataStore: string(cfg.DataStore)}
	if cfg.Metrics.Enabled {
		opts.Metrics = collector.Handler()
	}

	router := sharedserver.NewRouter(opts, func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(sharedauth.Middleware(verifier))

			httpapi.RegisterRoutes(r, riderService, logger)
		})
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info("rewards service configured",
		slog.String("datastore", string(cfg.DataStore)),
		slog.String("auth_mode", string(cfg.Auth.Mode)),
		slog.String("timezone", cfg.Location.String()),
		slog.Bool("events", cfg.NATS.URL != ""),
	)

	if err := sharedserver.Run(ctx, srv, logger, publisher.Close, closeRepo); err != nil && !errors.Is(err, http.ErrServerClosed) {
		panic(err)
	}
}

func newRepository(ctx context.Context, cfg config.Config) (rider.Repository, func(), error) {
	switch cfg.DataStore {
	case config.DataStoreFirestore:
		if cfg.Firestore.EmulatorHost != "" {
			if err := os.Setenv("FIRESTORE_EMULATOR_HOST", cfg.Firestore.EmulatorHost); err != nil {
				return nil, nil, fmt.Errorf("set FIRESTORE_EMULATOR_HOST: %w", err)
			}
		}

		var (
			client *firestore.Client
			err    error
		)
		if cfg.Firestore.Database != "" {
			client, err = firestore.NewClientWithDatabase(ctx, cfg.GCPProjectID, cfg.Firestore.Database)
		} else {
			client, err = firestore.NewClient(ctx, cfg.GCPProjectID)
		}
		if err != nil {
			return nil, nil, fmt.Errorf("firestore client: %w", err)
		}

		repo := rider.NewFirestoreRepository(client)
		cleanup := func() {
			_ = client.Close()
		}
		return repo, cleanup, nil
	case config.DataStorePostgres:
		pool, err := pgxpool.New(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("postgres ping: %w", err)
		}
		if err := rider.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return rider.NewPostgresRepository(pool), pool.Close, nil
	default:
		repo := rider.NewMemoryRepository()
		return repo, func() {}, nil
	}
}

func newPublisher(cfg config.Config, logger *slog.Logger, m pubsub.Metrics) (pubsub.Publisher, error) {
	if cfg.NATS.URL == "" {
		return pubsub.NewNoopPublisher(), nil
	}
	p, err := pubsub.NewNATSPublisher(cfg.NATS.URL, serviceName, logger, m)
	if err != nil {
		return nil, err
	}
	return p, nil
}
