package mcpserver

import (
	"context"
	"strings"

	"github.com/akolanti/GoSummary/internal/adapter"
	"github.com/akolanti/GoSummary/internal/api"
	"github.com/akolanti/GoSummary/internal/config"
	"github.com/akolanti/GoSummary/internal/domain/summaryModel"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type GetSummaryInput struct {
	ID string `json:"id" jsonschema:"the summary id returned by the summarize endpoint"`
}

type SubmitFeedbackInput struct {
	User            string  `json:"user" jsonschema:"who gives the feedback"`
	DocumentID      string  `json:"document_id" jsonschema:"the summary id the feedback is about"`
	Feedback        *string `json:"feedback,omitempty" jsonschema:"short rating such as good or bad"`
	WrittenFeedback *string `json:"written_feedback,omitempty" jsonschema:"free text feedback"`
}

type SubmitFeedbackOutput struct {
	User       string `json:"user"`
	DocumentID string `json:"document_id"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_summary",
		Description: "Fetch a stored document summary with its metadata and feedback",
	}, s.handleGetSummary)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "submit_feedback",
		Description: "Record feedback for a stored summary, replacing earlier feedback",
	}, s.handleSubmitFeedback)
}

func (s *Server) handleGetSummary(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetSummaryInput,
) (*mcp.CallToolResult, api.SummaryRecordResponse, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, api.SummaryRecordResponse{}, summaryModel.WrapError(summaryModel.ErrInvalidInput, "get_summary", nil)
	}
	record, err := s.service.GetSummary(ctx, id)
	if err != nil {
		s.logger.WithTrace(ctx, config.TRACE_ID_KEY).Warn("get_summary failed", "summaryId", id, "error", err)
		return nil, api.SummaryRecordResponse{}, err
	}
	return nil, adapter.ToSummaryRecordResponse(record), nil
}

func (s *Server) handleSubmitFeedback(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SubmitFeedbackInput,
) (*mcp.CallToolResult, SubmitFeedbackOutput, error) {
	if strings.TrimSpace(input.User) == "" || strings.TrimSpace(input.DocumentID) == "" {
		return nil, SubmitFeedbackOutput{}, summaryModel.WrapError(summaryModel.ErrInvalidInput, "submit_feedback: user and document_id are required", nil)
	}
	record := adapter.ToFeedbackRecord(api.FeedbackRequest{
		User:            input.User,
		DocumentID:      input.DocumentID,
		Feedback:        input.Feedback,
		WrittenFeedback: input.WrittenFeedback,
	})
	if err := s.service.StoreFeedback(ctx, record); err != nil {
		return nil, SubmitFeedbackOutput{}, err
	}
	return nil, SubmitFeedbackOutput{User: record.User, DocumentID: record.DocumentID}, nil
}
