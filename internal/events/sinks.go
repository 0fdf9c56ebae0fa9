package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/akolanti/GoSummary/internal/config"
	"github.com/akolanti/GoSummary/internal/domain/summaryModel"
	"github.com/akolanti/GoSummary/pkg/logger_i"
	"github.com/nats-io/nats.go"
)

// Publisher is the part of *nats.Conn used by the sink.
type Publisher interface {
	Publish(subject string, data []byte) error
}

type NATSSink struct {
	conn     Publisher
	subjects map[summaryModel.EventType]string
	close    func()
}

// ConnectNATS dials the server and returns a sink publishing each event type on its own subject.
func ConnectNATS(url string) (*NATSSink, error) {
	logger := logger_i.NewLogger("NATS")
	conn, err := nats.Connect(
		url,
		nats.Name("go-summary"),
		nats.Timeout(config.NATSConnectTimeout),
		nats.ReconnectWait(config.NATSReconnectWait),
		nats.MaxReconnects(config.NATSMaxReconnects),
		nats.RetryOnFailedConnect(true),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("nats disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	sink := NewNATSSink(conn)
	sink.close = func() {
		if err := conn.Drain(); err != nil {
			logger.Error("nats drain failed", "error", err)
			conn.Close()
		}
	}
	return sink, nil
}

func NewNATSSink(conn Publisher) *NATSSink {
	return &NATSSink{
		conn: conn,
		subjects: map[summaryModel.EventType]string{
			summaryModel.EventSummaryStored:   config.SummaryStoredSubject,
			summaryModel.EventFeedbackUpdated: config.FeedbackSubject,
		},
	}
}

func (s *NATSSink) Deliver(ctx context.Context, event summaryModel.LifecycleEvent) error {
	subject, ok := s.subjects[event.Type]
	if !ok {
		return fmt.Errorf("no subject for event type %q", event.Type)
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err = ctx.Err(); err != nil {
		return err
	}
	if err = s.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("nats publish: %w", err)
	}
	return nil
}

func (s *NATSSink) Close() {
	if s.close != nil {
		s.close()
	}
}

// LogSink writes every event to the structured log.
type LogSink struct {
	logger *logger_i.Logger
}

func NewLogSink() *LogSink {
	return &LogSink{logger: logger_i.NewLogger("LifecycleEvents")}
}

func (s *LogSink) Deliver(ctx context.Context, event summaryModel.LifecycleEvent) error {
	s.logger.WithTrace(ctx, config.TRACE_ID_KEY).Info("lifecycle event",
		"eventId", event.EventID,
		"type", event.Type,
		"summaryId", event.SummaryID,
		"user", event.User,
	)
	return nil
}
