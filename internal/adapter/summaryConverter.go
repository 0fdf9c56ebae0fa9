package adapter

import (
	"errors"
	"net/http"

	"github.com/akolanti/GoSummary/internal/api"
	"github.com/akolanti/GoSummary/internal/domain/summaryModel"
	"github.com/akolanti/GoSummary/internal/summarizer/llm"
)

func ToFeedbackRecord(req api.FeedbackRequest) summaryModel.FeedbackRecord {
	return summaryModel.FeedbackRecord{
		User:            req.User,
		DocumentID:      req.DocumentID,
		Feedback:        req.Feedback,
		WrittenFeedback: req.WrittenFeedback,
	}
}

func ToFeedbackResponse(record summaryModel.FeedbackRecord) api.FeedbackResponse {
	return api.FeedbackResponse{
		User:            record.User,
		DocumentID:      record.DocumentID,
		Feedback:        record.Feedback,
		WrittenFeedback: record.WrittenFeedback,
	}
}

// ToSummaryRecordResponse drops the original bytes, only their presence is reported.
func ToSummaryRecordResponse(record summaryModel.StoredSummaryRecord) api.SummaryRecordResponse {
	response := api.SummaryRecordResponse{
		ID:                  record.ID,
		Summary:             record.Summary,
		Metadata:            record.Metadata,
		HasOriginalDocument: record.OriginalDocument != nil,
	}
	if record.Feedback != nil {
		feedback := ToFeedbackResponse(summaryModel.FeedbackRecord{
			User:            record.Feedback.User,
			DocumentID:      record.ID,
			Feedback:        record.Feedback.Feedback,
			WrittenFeedback: record.Feedback.WrittenFeedback,
		})
		response.Feedback = &feedback
	}
	return response
}

// ToErrorResponse maps a pipeline error to the status code and body returned to clients.
func ToErrorResponse(err error) api.ErrorResponse {
	c, _ := summaryModel.CollaboratorOf(err)
	collaborator := string(c)
	code := http.StatusInternalServerError
	switch {
	case summaryModel.IsKind(err, summaryModel.ErrSummaryNotFound):
		code = http.StatusNotFound
	case summaryModel.IsKind(err, summaryModel.ErrUnsupportedMedia):
		code = http.StatusUnsupportedMediaType
	case summaryModel.IsKind(err, summaryModel.ErrInvalidInput):
		code = http.StatusBadRequest
	case summaryModel.IsKind(err, summaryModel.ErrUnauthorized):
		code = http.StatusUnauthorized
	case errors.Is(err, http.ErrHandlerTimeout):
		code = http.StatusGatewayTimeout
	case llm.IsCircuitOpen(err):
		code = http.StatusServiceUnavailable
	case collaborator == string(summaryModel.CollaboratorModel), collaborator == string(summaryModel.CollaboratorStore):
		code = http.StatusBadGateway
	}
	return BadRequest(err.Error(), code, collaborator)
}

func BadRequest(message string, code int, collaborator string) api.ErrorResponse {
	return api.ErrorResponse{
		Code:         code,
		Message:      message,
		Collaborator: collaborator,
	}
}
