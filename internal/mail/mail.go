// Package mail provides outbound email for action agents.
package mail

import "context"

// Message is one outbound email.
type Message struct {
	To      []string
	CC      []string
	Subject string
	Body    string
}

// Sender delivers email and returns the provider's message id.
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}
