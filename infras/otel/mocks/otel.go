package mocks

import (
	"context"
	"roombook/infras/otel"
	"sync"
)

// Recorder is an otel.Otel that keeps every span it opened.
type Recorder struct {
	mu    sync.Mutex
	spans []*Span
}

// NewOtel returns a recorder. Tests that do not care about spans can ignore it.
func NewOtel() *Recorder {
	return &Recorder{}
}

func (r *Recorder) NewScope(ctx context.Context, _, spanName string) (context.Context, otel.Scope) {
	scope := &scopeImpl{mu: &r.mu, span: &Span{Name: spanName, Attributes: map[string]any{}}}

	r.mu.Lock()
	r.spans = append(r.spans, scope.span)
	r.mu.Unlock()

	return ctx, scope
}

func (r *Recorder) Shutdown(_ context.Context) error {
	return nil
}

// Span returns the last span opened under name, or nil.
func (r *Recorder) Span(name string) *Span {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := len(r.spans) - 1; i >= 0; i-- {
		if r.spans[i].Name == name {
			return r.spans[i]
		}
	}

	return nil
}
