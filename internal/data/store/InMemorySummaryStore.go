package store

import (
	"context"
	"maps"
	"sync"

	"github.com/akolanti/GoSummary/internal/domain/summaryModel"
	"github.com/akolanti/GoSummary/pkg/logger_i"
)

var inMemLogger = logger_i.NewLogger("InMem SummaryStore")

type InMemorySummaryStore struct {
	mutex   *sync.RWMutex
	records map[string]summaryModel.StoredSummaryRecord
}

func InitInMemorySummaryStore() *InMemorySummaryStore {
	return &InMemorySummaryStore{
		mutex:   new(sync.RWMutex),
		records: make(map[string]summaryModel.StoredSummaryRecord),
	}
}

func (store *InMemorySummaryStore) StoreSummary(ctx context.Context, record summaryModel.StoredSummaryRecord) (string, bool, error) {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	if _, exists := store.records[record.ID]; exists {
		inMemLogger.Debug("summary already stored", "summaryId", record.ID)
		return record.ID, false, nil
	}
	record.Feedback = nil
	store.records[record.ID] = cloneRecord(record)
	inMemLogger.Debug("saved summary", "summaryId", record.ID)
	return record.ID, true, nil
}

func (store *InMemorySummaryStore) StoreSummaryFeedback(ctx context.Context, feedback summaryModel.FeedbackRecord) error {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	record, exists := store.records[feedback.DocumentID]
	if !exists {
		return summaryModel.NotFound(feedback.DocumentID)
	}
	f := feedback.ToFeedback()
	record.Feedback = &f
	store.records[feedback.DocumentID] = record
	return nil
}

func (store *InMemorySummaryStore) GetSummary(ctx context.Context, id string) (summaryModel.StoredSummaryRecord, error) {
	store.mutex.RLock()
	defer store.mutex.RUnlock()

	record, exists := store.records[id]
	if !exists {
		return summaryModel.StoredSummaryRecord{}, summaryModel.NotFound(id)
	}
	return cloneRecord(record), nil
}

func (store *InMemorySummaryStore) Close(ctx context.Context) error {
	return nil
}

func cloneRecord(record summaryModel.StoredSummaryRecord) summaryModel.StoredSummaryRecord {
	record.Metadata = maps.Clone(record.Metadata)
	if record.OriginalDocument != nil {
		record.OriginalDocument = append([]byte(nil), record.OriginalDocument...)
	}
	if record.Feedback != nil {
		f := *record.Feedback
		record.Feedback = &f
	}
	return record
}
