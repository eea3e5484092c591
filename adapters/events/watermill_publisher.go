// Package events publishes auth events over watermill so other instances
// can react to registrations and logouts.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/sattisvar/live-bootcamp-project/ports"
)

const (
	// TopicUserRegistered carries signup notifications
	TopicUserRegistered = "auth.user_registered"

	// TopicLogout carries session revocation notifications
	TopicLogout = "auth.logout"
)

// UserRegisteredEvent represents a completed signup
type UserRegisteredEvent struct {
	Email string `json:"email"`
}

// LogoutEvent represents a revoked session
type LogoutEvent struct {
	Email   string `json:"email"`
	TokenID string `json:"token_id"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill
type WatermillPublisher struct {
	publisher message.Publisher
}

// NewWatermillPublisher creates a new Watermill publisher
func NewWatermillPublisher(publisher message.Publisher) ports.EventPublisher {
	return &WatermillPublisher{publisher: publisher}
}

// PublishUserRegistered publishes a signup event
func (p *WatermillPublisher) PublishUserRegistered(ctx context.Context, email string) error {
	return p.publish(TopicUserRegistered, uuid.New().String(), UserRegisteredEvent{Email: email})
}

// PublishLogout publishes a logout event
func (p *WatermillPublisher) PublishLogout(ctx context.Context, email string, tokenID string) error {
	return p.publish(TopicLogout, tokenID, LogoutEvent{Email: email, TokenID: tokenID})
}

func (p *WatermillPublisher) publish(topic, id string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(id, payload)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}
