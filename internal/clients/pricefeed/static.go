package pricefeed

import (
	"context"
	"sync"
)

// StaticSource serves a fixed quote. It backs local mode and tests.
type StaticSource struct {
	mu    sync.RWMutex
	quote Quote
}

func NewStaticSource(quote Quote) *StaticSource {
	return &StaticSource{quote: quote}
}

func (s *StaticSource) LatestPrice(ctx context.Context) (Quote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.quote, nil
}

func (s *StaticSource) SetQuote(quote Quote) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quote = quote
}
