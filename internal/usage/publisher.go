package usage

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
)

// Publisher serializes change messages onto the usage-events topic.
type Publisher struct {
	publisher *pubsub.Publisher
}

// NewPublisher wraps the topic publisher used by Submit.
func NewPublisher(p *pubsub.Publisher) (*Publisher, error) {
	if p == nil {
		return nil, fmt.Errorf("usage topic publisher required")
	}
	return &Publisher{publisher: p}, nil
}

// PublishChange sends one change message and waits for the server id.
func (p *Publisher) PublishChange(ctx context.Context, msg ChangeMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal change message: %w", err)
	}
	result := p.publisher.Publish(ctx, &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"node_id":   msg.NodeID.String(),
			"unit_type": msg.UnitType,
		},
	})
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("publish change message: %w", err)
	}
	return nil
}
