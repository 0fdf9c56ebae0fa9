package loader

import (
	"context"
	"os"

	"github.com/akolanti/GoSummary/internal/domain/summaryModel"
	"github.com/openai/openai-go"
)

type Transcriber interface {
	Transcribe(ctx context.Context, path string) (string, error)
}

type audioLoader struct {
	transcriber Transcriber
}

func NewAudioLoader(t Transcriber) Loader {
	return &audioLoader{transcriber: t}
}

// Load yields the whole transcript as a single segment.
func (a *audioLoader) Load(ctx context.Context, path string) ([]summaryModel.DocumentSegment, error) {
	transcript, err := a.transcriber.Transcribe(ctx, path)
	if err != nil {
		return nil, summaryModel.WrapError(summaryModel.ErrTemporary, "transcribe audio", err)
	}
	return []summaryModel.DocumentSegment{{
		Text:   transcript,
		Source: summaryModel.SegmentSource{Timestamp: "00:00:00"},
	}}, nil
}

// OpenAITranscriber calls the audio transcription endpoint of an OpenAI compatible server.
type OpenAITranscriber struct {
	client *openai.Client
	model  string
}

func NewOpenAITranscriber(client *openai.Client, model string) *OpenAITranscriber {
	return &OpenAITranscriber{client: client, model: model}
}

func (t *OpenAITranscriber) Transcribe(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	resp, err := t.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		File:  f,
		Model: openai.AudioModel(t.model),
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}
