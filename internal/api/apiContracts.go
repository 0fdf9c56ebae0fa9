package api

import "time"

// SummarizeChunk is one message of a summary response. The terminal message of a stream
// has empty content and carries the record id.
type SummarizeChunk struct {
	Content   string `json:"content" example:"The report describes..."`
	SummaryID string `json:"summary_id,omitempty" example:"9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08"`
}

type SummaryRecordResponse struct {
	ID                  string            `json:"id"`
	Summary             string            `json:"summary"`
	Metadata            map[string]any    `json:"metadata"`
	HasOriginalDocument bool              `json:"has_original_document"`
	Feedback            *FeedbackResponse `json:"feedback,omitempty"`
}

type FeedbackResponse struct {
	User            string  `json:"user" example:"jane"`
	DocumentID      string  `json:"document_id,omitempty"`
	Feedback        *string `json:"feedback,omitempty"`
	WrittenFeedback *string `json:"written_feedback,omitempty"`
}

type ErrorResponse struct {
	Code         int    `json:"code" example:"415"`
	Message      string `json:"message" example:"unsupported media type"`
	Collaborator string `json:"collaborator,omitempty" example:"loader"`
}

type HealthResponse struct {
	Status string    `json:"status" example:"ok"`
	Time   time.Time `json:"time"`
}

// requests---------------------

type FeedbackRequest struct {
	User            string  `json:"user" validate:"required"`
	DocumentID      string  `json:"document_id" validate:"required"`
	Feedback        *string `json:"feedback"`
	WrittenFeedback *string `json:"written_feedback"`
}
