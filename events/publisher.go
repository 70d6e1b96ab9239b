// Package events announces stored and deleted analyses on NATS.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"autodamage/models"
)

const (
	SubjectCompleted = "analyses.completed"
	SubjectDeleted   = "analyses.deleted"
)

// AnalysisCompleted is published once an analysis has been stored.
type AnalysisCompleted struct {
	ID        string         `json:"id"`
	Filename  string         `json:"filename"`
	CreatedAt time.Time      `json:"created_at"`
	Summary   models.Summary `json:"summary"`
}

// AnalysisDeleted is published once an analysis has been removed.
type AnalysisDeleted struct {
	ID        string    `json:"id"`
	DeletedAt time.Time `json:"deleted_at"`
}

func CompletedFrom(a *models.Analysis) AnalysisCompleted {
	return AnalysisCompleted{
		ID:        a.ID,
		Filename:  a.Filename,
		CreatedAt: a.CreatedAt,
		Summary:   a.Results.Summary,
	}
}

type Publisher struct {
	conn   *nats.Conn
	logger *zap.Logger
}

func NewPublisher(natsURL string, logger *zap.Logger) (*Publisher, error) {
	conn, err := nats.Connect(natsURL,
		nats.Name("autodamage"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(10),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, err
	}

	logger = logger.Named("events")
	logger.Info("connected to NATS", zap.String("url", natsURL))

	return &Publisher{conn: conn, logger: logger}, nil
}

func (p *Publisher) PublishCompleted(event AnalysisCompleted) error {
	return p.publish(SubjectCompleted, event.ID, event)
}

func (p *Publisher) PublishDeleted(id string) error {
	return p.publish(SubjectDeleted, id, AnalysisDeleted{ID: id, DeletedAt: time.Now().UTC()})
}

func (p *Publisher) publish(subject, id string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", subject, err)
	}

	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}

	p.logger.Debug("published event", zap.String("subject", subject), zap.String("id", id))
	return nil
}

func (p *Publisher) Close() {
	if p.conn != nil {
		p.conn.Drain()
		p.logger.Info("disconnected from NATS")
	}
}

func (p *Publisher) IsConnected() bool {
	return p.conn != nil && p.conn.IsConnected()
}
