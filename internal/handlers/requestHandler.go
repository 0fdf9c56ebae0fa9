package handlers

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/akolanti/GoSummary/internal/adapter"
	"github.com/akolanti/GoSummary/internal/adapter/utils"
	"github.com/akolanti/GoSummary/internal/api"
	"github.com/akolanti/GoSummary/internal/config"
)

// GetHandler godoc
// @Summary      Liveness probe
// @Tags         Health
// @Produce      json
// @Success      200  {object}  api.HealthResponse
// @Router       /healthz [get]
func GetHandler(w http.ResponseWriter, r *http.Request) {
	writeJsonResponse(w, http.StatusOK, api.HealthResponse{Status: "ok", Time: time.Now().UTC()})
}

// SummarizeHandler godoc
// @Summary      Summarize a document
// @Description  Uploads a document and summarizes it with the configured execution mode, or the one given in mode.
// @Description  Streaming answers with NDJSON: one {"content"} object per fragment, then {"content":"","summary_id"}.
// @Tags         Summaries
// @Accept       multipart/form-data
// @Produce      json
// @Produce      application/x-ndjson
// @Param        file  formData  file    true   "Document to summarize"
// @Param        mode  query     string  false  "stream or invoke"
// @Success      200   {object}  api.SummarizeChunk
// @Failure      400   {object}  api.ErrorResponse  "Missing file or unknown mode"
// @Failure      415   {object}  api.ErrorResponse  "Unsupported document type"
// @Failure      502   {object}  api.ErrorResponse  "Model or store failure"
// @Router       /summarize [post]
func SummarizeHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid Context by request", "remote", r.RemoteAddr)
		return
	}
	mode := handlerInstance.service.DefaultMode()
	if raw := r.URL.Query().Get("mode"); raw != "" {
		parsed, err := config.ParseExecutionMode(raw)
		if err != nil {
			WriteErrorResponse(w, http.StatusBadRequest, err.Error(), "")
			return
		}
		mode = parsed
	}
	summarize(w, r, mode)
}

// SummarizeStreamHandler godoc
// @Summary      Summarize a document, always streaming
// @Tags         Summaries
// @Accept       multipart/form-data
// @Produce      application/x-ndjson
// @Param        file  formData  file  true  "Document to summarize"
// @Success      200   {object}  api.SummarizeChunk
// @Failure      400   {object}  api.ErrorResponse
// @Failure      415   {object}  api.ErrorResponse
// @Router       /summarize/stream [post]
func SummarizeStreamHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid Context by request", "remote", r.RemoteAddr)
		return
	}
	summarize(w, r, config.ModeStream)
}

func summarize(w http.ResponseWriter, r *http.Request, mode config.ExecutionMode) {
	log := logRH.WithTrace(r.Context(), config.TRACE_ID_KEY)

	doc, status, err := saveUpload(w, r)
	if err != nil {
		log.Warn("Bad upload", "error", err)
		WriteErrorResponse(w, status, err.Error(), "")
		return
	}
	defer func() {
		if err := os.Remove(doc.Path); err != nil {
			log.Error("Couldn't remove temporary upload", "path", doc.Path, "error", err)
		}
	}()
	log.Debug("Summarize request", "file", doc.FileName, "mode", mode, "bytes", len(doc.Content))

	if mode == config.ModeInvoke {
		emitter := &bufferedEmitter{}
		if _, err = handlerInstance.service.Summarize(r.Context(), doc, mode, emitter); err != nil {
			writeError(w, err)
			return
		}
		writeJsonResponse(w, http.StatusOK, emitter.chunk)
		return
	}

	emitter := newNDJSONEmitter(w)
	if _, err = handlerInstance.service.Summarize(r.Context(), doc, mode, emitter); err != nil {
		if emitter.started {
			// the status line is gone, the stream just ends without its terminal message
			log.Error("Stream aborted", "error", err)
			return
		}
		writeError(w, err)
	}
}

// FeedbackHandler godoc
// @Summary      Record feedback for a stored summary
// @Description  Replaces any earlier feedback of the summary.
// @Tags         Summaries
// @Accept       json
// @Produce      json
// @Param        request  body      api.FeedbackRequest   true  "Feedback"
// @Success      200      {object}  api.FeedbackResponse  "user and document_id echoed"
// @Failure      400      {object}  api.ErrorResponse
// @Failure      404      {object}  api.ErrorResponse     "Unknown document_id"
// @Router       /summarize/feedback [post]
func FeedbackHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid Context by request", "remote", r.RemoteAddr)
		return
	}
	defer r.Body.Close()

	var request api.FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logRH.Warn("Bad feedback request", "error", err)
		WriteErrorResponse(w, http.StatusBadRequest, "Bad Request", "")
		return
	}
	if strings.TrimSpace(request.User) == "" || strings.TrimSpace(request.DocumentID) == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "user and document_id are required", "")
		return
	}

	record := adapter.ToFeedbackRecord(request)
	if err := handlerInstance.service.StoreFeedback(r.Context(), record); err != nil {
		writeError(w, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, api.FeedbackResponse{User: record.User, DocumentID: record.DocumentID})
}

// GetSummaryHandler godoc
// @Summary      Get a stored summary
// @Description  Returns the record without the original document bytes.
// @Tags         Summaries
// @Produce      json
// @Param        id   path      string  true  "Summary id"
// @Success      200  {object}  api.SummaryRecordResponse
// @Failure      404  {object}  api.ErrorResponse
// @Router       /summarize/{id} [get]
func GetSummaryHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid Context by request", "remote", r.RemoteAddr)
		return
	}
	id := utils.GetChiURLParam(r, "id")
	if id == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "id is required", "")
		return
	}
	record, err := handlerInstance.service.GetSummary(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToSummaryRecordResponse(record))
}
