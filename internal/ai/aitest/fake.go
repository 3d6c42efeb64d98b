// Package aitest provides a scripted ai.Completer for tests.
package aitest

import (
	"context"
	"sync"

	"github.com/kayz/dobby/internal/ai"
)

// Reply is one scripted answer.
type Reply struct {
	Text string
	Err  error
}

// Fake answers requests from a script, or through Func when set.
// The last scripted reply repeats once the script is exhausted.
// Func sees the call's context, so it can model a model that hangs.
type Fake struct {
	Func func(ctx context.Context, req ai.Request) (string, error)

	mu       sync.Mutex
	script   []Reply
	requests []ai.Request
}

// New returns a Fake answering with texts in order.
func New(texts ...string) *Fake {
	f := &Fake{}
	for _, t := range texts {
		f.script = append(f.script, Reply{Text: t})
	}
	return f
}

// Failing returns a Fake whose every call fails with err.
func Failing(err error) *Fake {
	return &Fake{script: []Reply{{Err: err}}}
}

func (f *Fake) Name() string { return "fake" }

func (f *Fake) next(ctx context.Context, req ai.Request) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	fn := f.Func
	var r Reply
	switch {
	case fn != nil:
	case len(f.script) == 0:
		r = Reply{}
	case len(f.script) == 1:
		r = f.script[0]
	default:
		r, f.script = f.script[0], f.script[1:]
	}
	f.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	return r.Text, r.Err
}

func (f *Fake) Complete(ctx context.Context, req ai.Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return f.next(ctx, req)
}

func (f *Fake) Stream(ctx context.Context, req ai.Request) (<-chan ai.StreamEvent, error) {
	text, err := f.next(ctx, req)
	if err != nil {
		return nil, err
	}
	ch := make(chan ai.StreamEvent, 1)
	ch <- ai.StreamEvent{Delta: text}
	close(ch)
	return ch, nil
}

// Calls reports how many requests were made.
func (f *Fake) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

// Requests returns a copy of every request received.
func (f *Fake) Requests() []ai.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ai.Request(nil), f.requests...)
}
