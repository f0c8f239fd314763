package mocks

import (
	"roombook/infras/otel"
	"sync"
)

// Span is what a recording scope saw.
type Span struct {
	Name       string
	Errors     []error
	Attributes map[string]any
	Ended      bool
}

type scopeImpl struct {
	mu   *sync.Mutex
	span *Span
}

func NewScope() otel.Scope {
	return &scopeImpl{mu: &sync.Mutex{}, span: &Span{Attributes: map[string]any{}}}
}

func (s *scopeImpl) End() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.span.Ended = true
}

func (s *scopeImpl) TraceError(err error) {
	if err == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.span.Errors = append(s.span.Errors, err)
}

func (s *scopeImpl) TraceIfError(err error) {
	s.TraceError(err)
}

func (s *scopeImpl) AddEvent(_ string) {}

func (s *scopeImpl) SetAttribute(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.span.Attributes[key] = value
}

func (s *scopeImpl) SetAttributes(attributes map[string]any) {
	for key, value := range attributes {
		s.SetAttribute(key, value)
	}
}
