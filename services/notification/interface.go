package notification

import (
	"context"
	"fmt"

	"doctordash/models"
)

// NotificationChannel delivers a message over one transport. Channels are
// best-effort: a failed send is logged by the caller, never retried to
// exhaustion, and never blocks another channel.
type NotificationChannel interface {
	Kind() models.Channel
	Send(ctx context.Context, to models.Recipient, msg models.Message) error
}

// Registry maps channel kinds to their implementations.
type Registry map[models.Channel]NotificationChannel

// NewRegistry builds a Registry from the given channels.
func NewRegistry(channels ...NotificationChannel) Registry {
	reg := make(Registry, len(channels))
	for _, ch := range channels {
		reg[ch.Kind()] = ch
	}
	return reg
}

// Get returns the implementation for a channel kind.
func (r Registry) Get(kind models.Channel) (NotificationChannel, error) {
	ch, ok := r[kind]
	if !ok {
		return nil, fmt.Errorf("no notification channel registered for %q", kind)
	}
	return ch, nil
}
