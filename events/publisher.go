// Package events publishes validation report events to NATS. A nil
// publisher is valid and publishes nothing, so callers degrade
// gracefully when no NATS URL is configured.
package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/dislovemartin/prompts/validator"
)

// ReportEvent is the published message for one validated template.
type ReportEvent struct {
	ID             string    `json:"id"`
	Source         string    `json:"source"`
	Total          float64   `json:"total"`
	Max            float64   `json:"max"`
	Percent        int       `json:"percent"`
	Recommendation string    `json:"recommendation"`
	Timestamp      time.Time `json:"timestamp"`
}

// Publisher sends report events to a NATS subject.
type Publisher struct {
	conn    *nats.Conn
	subject string
	logger  *slog.Logger
}

// Connect dials NATS and returns a publisher. An empty URL returns a
// nil publisher and no error: publishing is simply disabled.
func Connect(url, subjectPrefix string, logger *slog.Logger) (*Publisher, error) {
	if url == "" {
		return nil, nil
	}
	if subjectPrefix == "" {
		subjectPrefix = "prompts"
	}

	conn, err := nats.Connect(url,
		nats.Name("prompts-watch"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	return &Publisher{
		conn:    conn,
		subject: subjectPrefix + ".validate.report",
		logger:  logger,
	}, nil
}

// Publish sends one report event. A nil publisher skips silently.
func (p *Publisher) Publish(rep *validator.DocumentReport) error {
	if p == nil {
		return nil
	}

	event := ReportEvent{
		ID:             uuid.New().String(),
		Source:         rep.Source,
		Total:          rep.Total,
		Max:            rep.Max,
		Percent:        rep.Percent,
		Recommendation: string(rep.Recommendation),
		Timestamp:      time.Now().UTC(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal report event: %w", err)
	}

	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("publish report event: %w", err)
	}

	p.logger.Debug("published report event",
		"subject", p.subject, "source", rep.Source, "percent", rep.Percent)
	return nil
}

// Close drains and closes the connection. Safe on a nil publisher.
func (p *Publisher) Close() {
	if p == nil || p.conn == nil {
		return
	}
	if err := p.conn.Drain(); err != nil {
		p.logger.Warn("drain NATS connection", "error", err)
	}
}
