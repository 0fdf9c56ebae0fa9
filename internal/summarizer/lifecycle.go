package summarizer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/akolanti/GoSummary/internal/config"
	"github.com/akolanti/GoSummary/internal/domain/summaryModel"
	"github.com/akolanti/GoSummary/internal/metrics"
	"github.com/akolanti/GoSummary/pkg/logger_i"
	"github.com/google/uuid"
)

// ResultManager owns the stored summaries: at most one record per id, written only after
// generation completed.
type ResultManager struct {
	store     summaryModel.SummaryStore
	publisher summaryModel.EventPublisher
	logger    *logger_i.Logger
	now       func() time.Time
}

func NewResultManager(store summaryModel.SummaryStore, publisher summaryModel.EventPublisher) *ResultManager {
	return &ResultManager{
		store:     store,
		publisher: publisher,
		logger:    logger_i.NewLogger("ResultManager"),
		now:       time.Now,
	}
}

// SummaryID is the content identity of a request: same variant, model and bytes give the same id.
func SummaryID(variant config.SummarizerVariant, model string, document []byte) string {
	h := sha256.New()
	h.Write([]byte(variant))
	h.Write([]byte{0})
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write(document)
	return hex.EncodeToString(h.Sum(nil))
}

// Existing returns the stored record for id, if there is one.
func (m *ResultManager) Existing(ctx context.Context, id string) (summaryModel.StoredSummaryRecord, bool, error) {
	record, err := m.store.GetSummary(ctx, id)
	if summaryModel.IsKind(err, summaryModel.ErrSummaryNotFound) {
		return summaryModel.StoredSummaryRecord{}, false, nil
	}
	if err != nil {
		return summaryModel.StoredSummaryRecord{}, false, summaryModel.WithCollaborator(summaryModel.CollaboratorStore, err)
	}
	metrics.CaptureStoredSummary(true)
	return record, true, nil
}

// StoreSummary inserts the record unless id is already present, in which case nothing changes
// and created is false. Documents above the size ceiling are stored as null.
func (m *ResultManager) StoreSummary(ctx context.Context, id string, summary string, metadata map[string]any, document []byte) (string, bool, error) {
	log := m.logger.WithTrace(ctx, config.TRACE_ID_KEY).With("summaryId", id)
	if len(document) > config.MaxDocumentSizeInBytes {
		log.Info("document above size ceiling, storing summary without it", "bytes", len(document))
		document = nil
	}

	storedID, created, err := m.store.StoreSummary(ctx, summaryModel.StoredSummaryRecord{
		ID:               id,
		Metadata:         metadata,
		Summary:          summary,
		OriginalDocument: document,
	})
	if err != nil {
		return "", false, summaryModel.WithCollaborator(summaryModel.CollaboratorStore, err)
	}
	metrics.CaptureStoredSummary(!created)
	if !created {
		log.Debug("summary already stored by another generation")
		return storedID, false, nil
	}
	m.publish(ctx, summaryModel.EventSummaryStored, storedID, "")
	log.Debug("summary stored")
	return storedID, true, nil
}

// Persist stores a completed generation and returns the summary text held under the id. The text
// differs from summary only when a concurrent generation of the same document was stored first.
func (m *ResultManager) Persist(ctx context.Context, id string, summary string, metadata map[string]any, document []byte) (string, string, error) {
	storedID, created, err := m.StoreSummary(ctx, id, summary, metadata, document)
	if err != nil || created {
		return storedID, summary, err
	}
	record, err := m.GetSummary(ctx, storedID)
	if err != nil {
		return "", "", err
	}
	return storedID, record.Summary, nil
}

// StoreSummaryFeedback replaces the feedback of an existing record.
func (m *ResultManager) StoreSummaryFeedback(ctx context.Context, feedback summaryModel.FeedbackRecord) error {
	if feedback.DocumentID == "" {
		return summaryModel.WrapError(summaryModel.ErrInvalidInput, "feedback", nil)
	}
	if err := m.store.StoreSummaryFeedback(ctx, feedback); err != nil {
		return summaryModel.WithCollaborator(summaryModel.CollaboratorStore, err)
	}
	m.publish(ctx, summaryModel.EventFeedbackUpdated, feedback.DocumentID, feedback.User)
	return nil
}

func (m *ResultManager) GetSummary(ctx context.Context, id string) (summaryModel.StoredSummaryRecord, error) {
	record, err := m.store.GetSummary(ctx, id)
	if err != nil {
		return record, summaryModel.WithCollaborator(summaryModel.CollaboratorStore, err)
	}
	return record, nil
}

func (m *ResultManager) publish(ctx context.Context, eventType summaryModel.EventType, id string, user string) {
	if m.publisher == nil {
		return
	}
	trace, _ := ctx.Value(config.TRACE_ID_KEY).(string)
	m.publisher.Publish(ctx, summaryModel.LifecycleEvent{
		EventID:    uuid.NewString(),
		Type:       eventType,
		SummaryID:  id,
		User:       user,
		TraceID:    trace,
		OccurredAt: m.now().UTC(),
	})
}
