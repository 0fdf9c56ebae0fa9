package store

import (
	"context"
	"fmt"

	"github.com/akolanti/GoSummary/internal/config"
	"github.com/akolanti/GoSummary/internal/domain/summaryModel"
)

type summaryStoreFactory func(ctx context.Context, settings config.StoreSettings, redisPassword string) (summaryModel.SummaryStore, error)

var summaryStoreFactories = map[config.StoreService]summaryStoreFactory{
	config.StoreMongoDB: func(ctx context.Context, s config.StoreSettings, _ string) (summaryModel.SummaryStore, error) {
		return OpenMongoSummaryStore(ctx, s)
	},
	config.StoreRedis: func(ctx context.Context, s config.StoreSettings, password string) (summaryModel.SummaryStore, error) {
		return GetRedisSummaryStore(ctx, s, password)
	},
	config.StorePostgres: func(ctx context.Context, s config.StoreSettings, _ string) (summaryModel.SummaryStore, error) {
		return OpenPostgresSummaryStore(ctx, s.DSN)
	},
	config.StoreSQLite: func(ctx context.Context, s config.StoreSettings, _ string) (summaryModel.SummaryStore, error) {
		return OpenSQLiteSummaryStore(ctx, s.DSN)
	},
	config.StoreMemory: func(context.Context, config.StoreSettings, string) (summaryModel.SummaryStore, error) {
		return InitInMemorySummaryStore(), nil
	},
}

// NewSummaryStore builds the configured backend.
func NewSummaryStore(ctx context.Context, settings config.StoreSettings, redisPassword string) (summaryModel.SummaryStore, error) {
	factory, ok := summaryStoreFactories[settings.Service]
	if !ok {
		_, err := config.ParseStoreService(string(settings.Service))
		return nil, err
	}
	s, err := factory(ctx, settings, redisPassword)
	if err != nil {
		return nil, summaryModel.WithCollaborator(summaryModel.CollaboratorStore, fmt.Errorf("open %s store: %w", settings.Service, err))
	}
	return s, nil
}
