package handlers

import (
	"sync"

	"github.com/akolanti/GoSummary/internal/summarizer"
	"github.com/akolanti/GoSummary/pkg/logger_i"
)

var (
	handlerInstance *SummaryHandler //private singleton
	once            sync.Once
	logRH           = logger_i.NewLogger("RequestHandler")
)

type SummaryHandler struct {
	service summarizer.Service
}

func InitSummaryHandler(service summarizer.Service) {
	once.Do(func() {
		handlerInstance = &SummaryHandler{service: service}
		logRH.Info("Starting summary handler", "defaultMode", service.DefaultMode())
	})
}
