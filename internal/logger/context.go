package logger

import (
	"context"

	"github.com/google/uuid"
)

// WithTaskID adds a task ID to the context.
func WithTaskID(ctx context.Context, taskID string) context.Context {
	return context.WithValue(ctx, ContextKeyTaskID, taskID)
}

// WithDeliveryID adds a delivery attempt ID to the context.
func WithDeliveryID(ctx context.Context, deliveryID string) context.Context {
	return context.WithValue(ctx, ContextKeyDeliveryID, deliveryID)
}

// WithOperation adds an operation name to the context.
func WithOperation(ctx context.Context, operation string) context.Context {
	return context.WithValue(ctx, ContextKeyOperation, operation)
}

// GenerateDeliveryID generates a new delivery attempt ID.
func GenerateDeliveryID() string {
	return uuid.New().String()
}
