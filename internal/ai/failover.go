package ai

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kayz/dobby/internal/logger"
)

// FailoverCompleter tries providers in order, cooling down the ones that fail.
type FailoverCompleter struct {
	providers    []Completer
	stats        map[string]*ProviderStats
	cooldowns    map[string]time.Time
	cooldownTime time.Duration
	now          func() time.Time
	mu           sync.RWMutex
}

type ProviderStats struct {
	SuccessCount int
	FailureCount int
	LastSuccess  time.Time
	LastFailure  time.Time
}

func NewFailoverCompleter(cooldownTime time.Duration, providers ...Completer) *FailoverCompleter {
	return &FailoverCompleter{
		providers:    providers,
		stats:        make(map[string]*ProviderStats),
		cooldowns:    make(map[string]time.Time),
		cooldownTime: cooldownTime,
		now:          time.Now,
	}
}

func (f *FailoverCompleter) Name() string {
	if len(f.providers) == 0 {
		return "failover"
	}
	return "failover:" + f.providers[0].Name()
}

func (f *FailoverCompleter) RecordSuccess(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	s := f.statsFor(name)
	s.SuccessCount++
	s.LastSuccess = f.now()
	delete(f.cooldowns, name)
}

func (f *FailoverCompleter) RecordFailure(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	s := f.statsFor(name)
	s.FailureCount++
	s.LastFailure = f.now()
	f.cooldowns[name] = f.now().Add(f.cooldownTime)
}

func (f *FailoverCompleter) statsFor(name string) *ProviderStats {
	s, ok := f.stats[name]
	if !ok {
		s = &ProviderStats{}
		f.stats[name] = s
	}
	return s
}

// Stats returns a copy of the counters for one provider.
func (f *FailoverCompleter) Stats(name string) ProviderStats {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if s, ok := f.stats[name]; ok {
		return *s
	}
	return ProviderStats{}
}

func (f *FailoverCompleter) IsInCooldown(name string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	until, ok := f.cooldowns[name]
	if !ok {
		return false
	}
	return f.now().Before(until)
}

// candidates lists providers outside cooldown, falling back to all of them
// so a fully cooled-down chain still gets a chance.
func (f *FailoverCompleter) candidates() []Completer {
	var out []Completer
	for _, p := range f.providers {
		if !f.IsInCooldown(p.Name()) {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return f.providers
	}
	return out
}

func (f *FailoverCompleter) Complete(ctx context.Context, req Request) (string, error) {
	if len(f.providers) == 0 {
		return "", fmt.Errorf("no providers configured")
	}
	var errs []error
	for _, p := range f.candidates() {
		text, err := p.Complete(ctx, req)
		if err == nil {
			f.RecordSuccess(p.Name())
			return text, nil
		}
		f.RecordFailure(p.Name())
		errs = append(errs, err)
		logger.Warn("[AI] %s failed, trying next provider: %v", p.Name(), err)
		if ctx.Err() != nil {
			break
		}
	}
	return "", errors.Join(errs...)
}

// Stream fails over only while opening the stream; a stream that breaks midway is not retried.
func (f *FailoverCompleter) Stream(ctx context.Context, req Request) (<-chan StreamEvent, error) {
	if len(f.providers) == 0 {
		return nil, fmt.Errorf("no providers configured")
	}
	var errs []error
	for _, p := range f.candidates() {
		ch, err := p.Stream(ctx, req)
		if err == nil {
			f.RecordSuccess(p.Name())
			return ch, nil
		}
		f.RecordFailure(p.Name())
		errs = append(errs, err)
		logger.Warn("[AI] %s stream failed, trying next provider: %v", p.Name(), err)
		if ctx.Err() != nil {
			break
		}
	}
	return nil, errors.Join(errs...)
}
