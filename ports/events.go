package ports

import "context"

// EventPublisher publishes auth events to notify other instances
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, email string) error
	PublishLogout(ctx context.Context, email string, tokenID string) error
}
