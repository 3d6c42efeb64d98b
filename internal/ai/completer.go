// Package ai is the boundary to generative text-completion endpoints.
package ai

import (
	"context"
	"errors"
	"strings"
)

// ErrorMarker is embedded by upstream proxies in payloads that actually carry a failure.
const ErrorMarker = "[ERROR]"

var (
	// ErrMarkerResponse is returned when a payload contains ErrorMarker.
	ErrMarkerResponse = errors.New("completion returned an error marker")
	// ErrEmptyResponse is returned when the endpoint produced no text.
	ErrEmptyResponse = errors.New("completion returned no content")
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ResponseFormat selects free text or a JSON object payload.
type ResponseFormat string

const (
	FormatText ResponseFormat = "text"
	FormatJSON ResponseFormat = "json_object"
)

// Request is a single completion call.
type Request struct {
	Messages       []Message
	Stream         bool
	Temperature    float64
	ResponseFormat ResponseFormat
	MaxTokens      int
}

// StreamEvent is one chunk of a streamed completion. Err is set on the last event when the stream failed.
type StreamEvent struct {
	Delta string
	Err   error
}

// Completer is implemented by every generative backend.
type Completer interface {
	Name() string
	Complete(ctx context.Context, req Request) (string, error)
	Stream(ctx context.Context, req Request) (<-chan StreamEvent, error)
}

// Generate runs req in the mode it asks for and returns the full text.
// Any transport error, an empty payload or a payload carrying ErrorMarker is a failure.
func Generate(ctx context.Context, c Completer, req Request) (string, error) {
	var (
		text string
		err  error
	)
	if req.Stream {
		var ch <-chan StreamEvent
		ch, err = c.Stream(ctx, req)
		if err == nil {
			text, err = Collect(ctx, ch)
		}
	} else {
		text, err = c.Complete(ctx, req)
	}
	if err != nil {
		return "", err
	}
	if strings.Contains(text, ErrorMarker) {
		return "", ErrMarkerResponse
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// Collect drains a stream, concatenating deltas.
// A stream that closes after ctx is done is a failure even when no error event arrived.
func Collect(ctx context.Context, ch <-chan StreamEvent) (string, error) {
	var sb strings.Builder
	for ev := range ch {
		if ev.Err != nil {
			return sb.String(), ev.Err
		}
		sb.WriteString(ev.Delta)
	}
	if err := ctx.Err(); err != nil {
		return sb.String(), err
	}
	return sb.String(), nil
}

// System builds a system message.
func System(content string) Message { return Message{Role: RoleSystem, Content: content} }

// User builds a user message.
func User(content string) Message { return Message{Role: RoleUser, Content: content} }

// Assistant builds an assistant message.
func Assistant(content string) Message { return Message{Role: RoleAssistant, Content: content} }
