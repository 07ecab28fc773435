package email

import "context"

// Message is one outbound email with provider-level metadata.
type Message struct {
	To        string
	Subject   string
	TextBody  string
	HTMLBody  string
	Headers   map[string]string
	Tags      map[string]string
	RequestID string
}

// Result reports the provider-side outcome of a send.
type Result struct {
	MessageID string
}

type Provider interface {
	Send(ctx context.Context, msg Message) (Result, error)
}

// NoOpProvider drops messages. Used when SMTP is not configured and in
// dry-run environments.
type NoOpProvider struct{}

func (p *NoOpProvider) Send(ctx context.Context, msg Message) (Result, error) {
	_ = ctx
	_ = msg
	return Result{MessageID: "noop"}, nil
}
