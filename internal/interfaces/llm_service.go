package interfaces

import (
	"context"

	"github.com/ternarybob/moneypulse/internal/models"
)

// Message represents a single message in a chat conversation
type Message struct {
	// Role identifies the message sender: "user", "assistant", or "system"
	Role string

	// Content contains the text content of the message
	Content string
}

// TextGenerator is the external text-completion collaborator used to word the
// advice. It returns the provider's response document unmodified; callers
// are responsible for interpreting it.
type TextGenerator interface {
	// Generate performs exactly one outbound call. It must honour ctx
	// cancellation and never retry on its own.
	Generate(ctx context.Context, request *models.AdviceRequest) ([]byte, error)

	// Name identifies the backing provider in logs.
	Name() string
}
