// Package queue publishes downstream specification updates to the platform
// message bus. The original platform consumed these from Kafka to open pull
// requests; here they ride the same NATS JetStream deployment the service
// already stores analyses in.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// StreamName is the JetStream stream holding spec-update messages.
const StreamName = "COMPLIANCE_SPEC_UPDATES"

// DefaultSubject is the subject spec updates are published on.
const DefaultSubject = "compliance.spec-updates"

// SpecUpdate describes a specification change triggered by a regulatory event.
type SpecUpdate struct {
	WorkspaceID        string   `json:"workspace_id"`
	SpecificationID    string   `json:"specification_id"`
	RegulatoryEventID  string   `json:"regulatory_event_id"`
	OldRequirements    []string `json:"old_requirements"`
	NewRequirements    []string `json:"new_requirements"`
	ImpactSummary      string   `json:"impact_summary"`
	UpdatedSpecContent string   `json:"updated_spec"`
}

// specUpdateMessage is the wire format consumed by the platform.
type specUpdateMessage struct {
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
	SpecUpdate
	Action string `json:"action"`
}

// PublishResult reports where a spec update ended up.
type PublishResult struct {
	MessageID string
	// Local is true when no broker is configured and the update was only
	// logged locally.
	Local bool
}

// Publisher sends spec updates over JetStream. A nil JetStream context puts
// the publisher in degraded local-only mode: updates are logged and
// acknowledged with a synthetic message ID so callers keep functioning
// without a broker.
type Publisher struct {
	js      jetstream.JetStream
	subject string
	logger  *slog.Logger
}

// NewPublisher creates a Publisher. js may be nil for local-only mode.
// If the broker is available, the backing stream is created when missing.
func NewPublisher(ctx context.Context, js jetstream.JetStream, subject string, logger *slog.Logger) (*Publisher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if subject == "" {
		subject = DefaultSubject
	}

	if js != nil {
		_, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
			Name:        StreamName,
			Description: "Compliance specification updates",
			Subjects:    []string{subject},
			Retention:   jetstream.LimitsPolicy,
			MaxAge:      30 * 24 * time.Hour,
		})
		if err != nil {
			return nil, fmt.Errorf("create spec-update stream: %w", err)
		}
	}

	return &Publisher{js: js, subject: subject, logger: logger}, nil
}

// key builds the message deduplication key for an update.
func key(u SpecUpdate) string {
	return fmt.Sprintf("%s-%s", u.WorkspaceID, u.SpecificationID)
}

// buildMessage assembles the wire payload for an update.
func buildMessage(u SpecUpdate, now time.Time) ([]byte, error) {
	return json.Marshal(specUpdateMessage{
		Type:       "SPEC_UPDATE",
		Timestamp:  now.UTC().Format(time.RFC3339),
		SpecUpdate: u,
		Action:     "CREATE_PR",
	})
}

// PublishSpecUpdate sends one spec update. In local-only mode the update is
// logged and a synthetic message ID is returned.
func (p *Publisher) PublishSpecUpdate(ctx context.Context, update SpecUpdate) (*PublishResult, error) {
	p.logger.Info("Publishing spec update",
		"workspace_id", update.WorkspaceID,
		"specification_id", update.SpecificationID,
		"regulatory_event_id", update.RegulatoryEventID)

	if p.js == nil {
		p.logger.Debug("No broker configured, spec update logged locally only")
		return &PublishResult{
			MessageID: fmt.Sprintf("local-%d", time.Now().UnixMilli()),
			Local:     true,
		}, nil
	}

	data, err := buildMessage(update, time.Now())
	if err != nil {
		return nil, fmt.Errorf("marshal spec update: %w", err)
	}

	msg := &nats.Msg{
		Subject: p.subject,
		Data:    data,
		Header: nats.Header{
			"Nats-Msg-Id":  []string{key(update)},
			"content-type": []string{"application/json"},
			"x-source":     []string{"assure-code-compliance"},
		},
	}

	ack, err := p.js.PublishMsg(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("publish spec update: %w", err)
	}

	return &PublishResult{
		MessageID: fmt.Sprintf("%s-%d", ack.Stream, ack.Sequence),
	}, nil
}
