package ai

import (
	"context"
	"errors"
	"testing"
)

type stubCompleter struct {
	name   string
	text   string
	err    error
	chunks []string
	calls  int
}

func (s *stubCompleter) Name() string { return s.name }

func (s *stubCompleter) Complete(ctx context.Context, req Request) (string, error) {
	s.calls++
	return s.text, s.err
}

func (s *stubCompleter) Stream(ctx context.Context, req Request) (<-chan StreamEvent, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	ch := make(chan StreamEvent, len(s.chunks))
	for _, c := range s.chunks {
		ch <- StreamEvent{Delta: c}
	}
	close(ch)
	return ch, nil
}

func TestGenerateRejectsErrorMarker(t *testing.T) {
	c := &stubCompleter{text: `{"intent":"GENERAL_CHAT"} [ERROR] upstream`}
	if _, err := Generate(context.Background(), c, Request{}); !errors.Is(err, ErrMarkerResponse) {
		t.Fatalf("expected ErrMarkerResponse, got %v", err)
	}
}

func TestGenerateRejectsBlank(t *testing.T) {
	c := &stubCompleter{text: "  \n"}
	if _, err := Generate(context.Background(), c, Request{}); !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestGenerateStreamConcatenatesChunks(t *testing.T) {
	c := &stubCompleter{chunks: []string{"Hel", "lo", "!"}}
	got, err := Generate(context.Background(), c, Request{Stream: true})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "Hello!" {
		t.Fatalf("got %q", got)
	}
}

func TestCollectStopsOnError(t *testing.T) {
	ch := make(chan StreamEvent, 3)
	ch <- StreamEvent{Delta: "part"}
	ch <- StreamEvent{Err: errors.New("broken pipe")}
	close(ch)
	text, err := Collect(context.Background(), ch)
	if err == nil {
		t.Fatalf("expected error")
	}
	if text != "part" {
		t.Fatalf("text = %q", text)
	}
}

func TestCollectFailsWhenContextEndsWithoutErrorEvent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan StreamEvent, 1)
	ch <- StreamEvent{Delta: "half an ans"}
	close(ch)
	cancel()

	text, err := Collect(ctx, ch)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if text != "half an ans" {
		t.Fatalf("text = %q", text)
	}
}
