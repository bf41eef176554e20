package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"

	"perfeval/internal/domain/chat"
	"perfeval/internal/domain/contact"
	"perfeval/internal/domain/evaluations"
	"perfeval/internal/domain/goals"
	"perfeval/internal/domain/users"
	"perfeval/internal/platform/config"
	"perfeval/internal/platform/db"
	"perfeval/internal/platform/mongodb"
)

// Stores bundles one store per domain for the configured driver.
type Stores struct {
	Users       users.StoreAPI
	Goals       goals.StoreAPI
	Evaluations evaluations.StoreAPI
	Chat        chat.StoreAPI
	Contact     contact.StoreAPI

	ping  func(context.Context) error
	close func()
}

func MemoryStores() Stores {
	return Stores{
		Users:       users.NewMemoryStore(),
		Goals:       goals.NewMemoryStore(),
		Evaluations: evaluations.NewMemoryStore(),
		Chat:        chat.NewMemoryStore(),
		Contact:     contact.NewMemoryStore(),
	}
}

func openStores(ctx context.Context, cfg config.Config, logger *slog.Logger) (Stores, error) {
	switch cfg.DBDriver {
	case config.DriverMongo:
		client, err := mongodb.Connect(ctx, cfg)
		if err != nil {
			return Stores{}, err
		}
		database := client.Database(cfg.MongoDatabase)
		if err := mongodb.EnsureIndexes(ctx, database); err != nil {
			_ = mongodb.Disconnect(client)
			return Stores{}, err
		}
		logger.Info("connected to mongodb", "database", cfg.MongoDatabase)
		return mongoStores(client, database), nil
	case config.DriverPostgres:
		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return Stores{}, err
		}
		if cfg.RunMigrations {
			if err := db.Migrate(ctx, pool); err != nil {
				pool.Close()
				return Stores{}, fmt.Errorf("migrations failed: %w", err)
			}
		}
		logger.Info("connected to postgres")
		return postgresStores(pool), nil
	case config.DriverMemory:
		logger.Warn("using in-memory stores; data is lost on restart")
		return MemoryStores(), nil
	}
	return Stores{}, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
}

func mongoStores(client *mongo.Client, database *mongo.Database) Stores {
	return Stores{
		Users:       users.NewMongoStore(database),
		Goals:       goals.NewMongoStore(database),
		Evaluations: evaluations.NewMongoStore(database),
		Chat:        chat.NewMongoStore(database),
		Contact:     contact.NewMongoStore(database),
		ping: func(ctx context.Context) error {
			return client.Ping(ctx, nil)
		},
		close: func() { _ = mongodb.Disconnect(client) },
	}
}

func postgresStores(pool *pgxpool.Pool) Stores {
	return Stores{
		Users:       users.NewStore(pool),
		Goals:       goals.NewStore(pool),
		Evaluations: evaluations.NewStore(pool),
		Chat:        chat.NewStore(pool),
		Contact:     contact.NewStore(pool),
		ping:        pool.Ping,
		close:       pool.Close,
	}
}

func (s Stores) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

func (s Stores) Close() {
	if s.close != nil {
		s.close()
	}
}
