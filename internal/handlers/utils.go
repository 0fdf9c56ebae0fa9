package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/akolanti/GoSummary/internal/adapter"
	"github.com/akolanti/GoSummary/internal/config"
	"github.com/akolanti/GoSummary/internal/summarizer"
)

func writeJsonResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but can't send a clean status code now
		logRH.Error("Error encoding response", "error", err)
	}
}

func validateContext(ctx context.Context) bool {
	if ctx.Err() != nil {
		logRH.WithTrace(ctx, config.TRACE_ID_KEY).Warn("context error", "error", ctx.Err())
		return false
	}
	return handlerInstance != nil
}

func WriteErrorResponse(w http.ResponseWriter, httpCode int, message string, collaborator string) {
	writeJsonResponse(w, httpCode, adapter.BadRequest(message, httpCode, collaborator))
}

func writeError(w http.ResponseWriter, err error) {
	response := adapter.ToErrorResponse(err)
	if response.Code >= http.StatusInternalServerError {
		logRH.Error("Request failed", "code", response.Code, "collaborator", response.Collaborator, "error", err)
	}
	writeJsonResponse(w, response.Code, response)
}

func getTargetDirectory() (string, error) {
	root, err := os.Getwd()
	if err != nil {
		return "", err
	}

	targetDir := filepath.Join(root, config.TemporaryUploadDir)
	if err := os.MkdirAll(targetDir, 0750); err != nil {
		return "", err
	}
	return targetDir, nil
}

// saveUpload copies the multipart file to the temporary directory. The original name's extension is kept
// since the loaders use it to tell zip based formats apart.
func saveUpload(w http.ResponseWriter, r *http.Request) (summarizer.Document, int, error) {
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadSize)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return summarizer.Document{}, http.StatusRequestEntityTooLarge, errors.New("file too large")
		}
		return summarizer.Document{}, http.StatusBadRequest, errors.New("multipart form expected")
	}
	defer r.MultipartForm.RemoveAll()

	fileReader, fileMetadata, err := r.FormFile(config.UploadFormField)
	if err != nil {
		return summarizer.Document{}, http.StatusBadRequest, fmt.Errorf("could not retrieve form field %q", config.UploadFormField)
	}
	defer fileReader.Close()

	content, err := io.ReadAll(fileReader)
	if err != nil {
		return summarizer.Document{}, http.StatusBadRequest, errors.New("could not read upload")
	}

	targetDir, err := getTargetDirectory()
	if err != nil {
		logRH.Error("Couldn't get target directory", "error", err)
		return summarizer.Document{}, http.StatusInternalServerError, errors.New("storage error")
	}
	originalName := filepath.Base(fileMetadata.Filename)
	tempFilePath := filepath.Join(targetDir, fmt.Sprintf("%d-%s", time.Now().UnixNano(), originalName))
	if err = os.WriteFile(tempFilePath, content, 0o600); err != nil {
		logRH.Error("Couldn't write upload", "error", err)
		return summarizer.Document{}, http.StatusInternalServerError, errors.New("write error")
	}

	return summarizer.Document{Path: tempFilePath, FileName: originalName, Content: content}, http.StatusOK, nil
}
