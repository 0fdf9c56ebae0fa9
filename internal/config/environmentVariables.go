package config

import (
	"time"
)

type contextKey string

const (
	// TRACE_ID_KEY is the context key carrying the request trace id.
	TRACE_ID_KEY contextKey = "traceId"

	RATE_LIMIT_PER_SECOND       = 2
	BURST_RATE_LIMIT_PER_SECOND = 5

	// MaxDocumentSizeInBytes is the document ceiling of the record store (mongodb BSON limit).
	// Larger originals are stored as null, the summary is still kept.
	MaxDocumentSizeInBytes = 16_793_598

	//upload handling
	MaxUploadSize      = 64 << 20 //64mb
	UploadFormField    = "file"
	TemporaryUploadDir = "temporary_data"

	//serverTimeouts
	ReadTimeout            = 15 * time.Second
	WriteTimeout           = 0 //streams can outlive any fixed write deadline
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	//server listening port
	ServerListenAddr = ":3000"

	//llm
	DefaultOllamaBaseURL = "http://ollama-server:11434"
	LLMConnectionTimeout = 30 * time.Second
	LLMRequestTimeout    = 5 * time.Minute
	ModelTemperature     = 0.2

	//pdf page extraction guard
	PageExtractTimeout = 10 * time.Second

	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second

	//redis has 16 DB we can use
	RedisSummaryStore = 0
	RedisPromptCache  = 1

	RedisPingTimeout = 3 * time.Second
	RedisIOTimeout   = 30 * time.Second

	//events
	EventBufferLimit     = 100
	EventWorkerCount     = 2
	EventDeliveryTimeout = 5 * time.Second
	NATSConnectTimeout   = 2 * time.Second
	NATSReconnectWait    = 2 * time.Second
	NATSMaxReconnects    = 60
	SummaryStoredSubject = "summaries.stored"
	FeedbackSubject      = "summaries.feedback"
)

// PromptInstructions are the fixed instruction lines sent ahead of the document text.
var PromptInstructions = []string{
	"You are an expert multi-language AI summary writer.",
	"Produce a summary of the provided text.",
	"Do not provide an introduction, just the summary.",
	"The summary must contain ~25% of the length of the original",
	"Summary language must be the same as the original",
	"Tailor the summary to what you assume to be the document audience",
	"Don't ask for follow-up questions.",
}
