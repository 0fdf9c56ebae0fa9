package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/akolanti/GoSummary/internal/config"
	"github.com/akolanti/GoSummary/internal/data/redisStore"
	"github.com/akolanti/GoSummary/internal/domain/summaryModel"
	"github.com/akolanti/GoSummary/pkg/logger_i"
)

const (
	summaryKeyPrefix  = "summary:"
	feedbackKeyPrefix = "feedback:"
)

// RedisSummaryStore keeps the record and its feedback under separate keys.
// Records are never deleted, so the feedback existence check cannot race with a removal.
type RedisSummaryStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisSummaryStore(ctx context.Context, settings config.StoreSettings, password string) (*RedisSummaryStore, error) {
	s, err := redisStore.GetRedisStore(ctx, redisStore.Options{
		Addr:     settings.RedisAddr,
		Password: password,
		DB:       config.RedisSummaryStore,
	})
	if err != nil {
		return nil, err
	}
	return NewRedisSummaryStore(s), nil
}

func NewRedisSummaryStore(store *redisStore.Store) *RedisSummaryStore {
	return &RedisSummaryStore{
		store:  store,
		logger: logger_i.NewLogger("SummaryStore"),
	}
}

func (s *RedisSummaryStore) StoreSummary(ctx context.Context, record summaryModel.StoredSummaryRecord) (string, bool, error) {
	log := s.logger.WithTrace(ctx, config.TRACE_ID_KEY).With("summaryId", record.ID)
	record.Feedback = nil
	data, err := json.Marshal(record)
	if err != nil {
		return "", false, err
	}

	created, err := s.store.SetNX(ctx, summaryKeyPrefix+record.ID, data, 0)
	if err != nil {
		return "", false, summaryModel.WrapError(summaryModel.ErrTemporary, "redis store summary", err)
	}
	if created {
		log.Debug("Saved summary to Redis")
	} else {
		log.Debug("Summary already in Redis")
	}
	return record.ID, created, nil
}

func (s *RedisSummaryStore) StoreSummaryFeedback(ctx context.Context, feedback summaryModel.FeedbackRecord) error {
	exists, err := s.store.Exists(ctx, summaryKeyPrefix+feedback.DocumentID)
	if err != nil {
		return summaryModel.WrapError(summaryModel.ErrTemporary, "redis store feedback", err)
	}
	if !exists {
		return summaryModel.NotFound(feedback.DocumentID)
	}
	data, err := json.Marshal(feedback.ToFeedback())
	if err != nil {
		return err
	}
	if err = s.store.Set(ctx, feedbackKeyPrefix+feedback.DocumentID, data, 0); err != nil {
		return summaryModel.WrapError(summaryModel.ErrTemporary, "redis store feedback", err)
	}
	return nil
}

func (s *RedisSummaryStore) GetSummary(ctx context.Context, id string) (summaryModel.StoredSummaryRecord, error) {
	var record summaryModel.StoredSummaryRecord
	values, err := s.store.MGet(ctx, summaryKeyPrefix+id, feedbackKeyPrefix+id)
	if err != nil {
		return record, summaryModel.WrapError(summaryModel.ErrTemporary, "redis get summary", err)
	}
	raw, ok := values[0].(string)
	if !ok {
		return record, summaryModel.NotFound(id)
	}
	if err = json.Unmarshal([]byte(raw), &record); err != nil {
		return record, fmt.Errorf("decode summary %q: %w", id, err)
	}
	if rawFeedback, ok := values[1].(string); ok {
		var f summaryModel.Feedback
		if err = json.Unmarshal([]byte(rawFeedback), &f); err != nil {
			return record, fmt.Errorf("decode feedback %q: %w", id, err)
		}
		record.Feedback = &f
	}
	return record, nil
}

func (s *RedisSummaryStore) Close(ctx context.Context) error {
	return s.store.Close()
}
