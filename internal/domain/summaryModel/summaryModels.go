package summaryModel

import (
	"context"
	"time"
)

type SegmentSource struct {
	Page      int    `json:"page,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Sheet     string `json:"sheet,omitempty"`
	Section   string `json:"section,omitempty"`
}

// DocumentSegment is one ordered piece of loaded text.
type DocumentSegment struct {
	Ordinal int
	Text    string
	Source  SegmentSource
}

type GenerationInfo struct {
	ID               string         `json:"id,omitempty"`
	Model            string         `json:"model,omitempty"`
	FinishReason     string         `json:"finish_reason,omitempty"`
	PromptTokens     int64          `json:"prompt_tokens"`
	CompletionTokens int64          `json:"completion_tokens"`
	TotalTokens      int64          `json:"total_tokens"`
	ResponseMetadata map[string]any `json:"response_metadata,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
}

// SummaryFragment is one incremental piece of model output.
// Generation is only set on the terminal fragment.
type SummaryFragment struct {
	Delta      string
	Final      bool
	Generation *GenerationInfo
}

type Feedback struct {
	User            string  `json:"user" bson:"user"`
	Feedback        *string `json:"feedback,omitempty" bson:"feedback"`
	WrittenFeedback *string `json:"written_feedback,omitempty" bson:"written_feedback"`
}

type FeedbackRecord struct {
	User            string
	DocumentID      string
	Feedback        *string
	WrittenFeedback *string
}

func (f FeedbackRecord) ToFeedback() Feedback {
	return Feedback{
		User:            f.User,
		Feedback:        f.Feedback,
		WrittenFeedback: f.WrittenFeedback,
	}
}

// StoredSummaryRecord is the persisted shape {_id, metadata, summary, original_document_in_bytes, feedback}.
type StoredSummaryRecord struct {
	ID               string         `json:"_id" bson:"_id"`
	Metadata         map[string]any `json:"metadata" bson:"metadata"`
	Summary          string         `json:"summary" bson:"summary"`
	OriginalDocument []byte         `json:"original_document_in_bytes" bson:"original_document_in_bytes"`
	Feedback         *Feedback      `json:"feedback" bson:"feedback"`
}

// SummaryStore persists summaries. StoreSummary must be an atomic insert-if-absent and
// reports false when a record with the id was already there.
type SummaryStore interface {
	StoreSummary(ctx context.Context, record StoredSummaryRecord) (string, bool, error)
	StoreSummaryFeedback(ctx context.Context, feedback FeedbackRecord) error
	GetSummary(ctx context.Context, id string) (StoredSummaryRecord, error)
	Close(ctx context.Context) error
}

type PromptCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string) error
	Close() error
}

type EventType string

const (
	EventSummaryStored   EventType = "summary.stored"
	EventFeedbackUpdated EventType = "summary.feedback"
)

// LifecycleEvent announces a change to a stored summary.
type LifecycleEvent struct {
	EventID    string    `json:"event_id"`
	Type       EventType `json:"type"`
	SummaryID  string    `json:"summary_id"`
	User       string    `json:"user,omitempty"`
	TraceID    string    `json:"trace_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventPublisher must not block the caller.
type EventPublisher interface {
	Publish(ctx context.Context, event LifecycleEvent)
}
