package view

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/marcheligne/storefront/internal/catalog"
)

// DebounceInterval is how long input must pause before a search fires.
const DebounceInterval = 300 * time.Millisecond

// SearchFunc performs the actual catalog query.
type SearchFunc func(ctx context.Context, query string) ([]catalog.Product, error)

// Result is one delivered search outcome. An empty Query signals that the
// input was cleared and the caller should fall back to the category grid.
type Result struct {
	Query    string
	Products []catalog.Product
	Err      error
}

// Searcher turns a stream of keystrokes into at most one in-flight search.
// Input below MinQueryLength never fetches; a fired search is tagged with a
// generation, and only results of the latest generation are ever delivered,
// so a slow stale query can never overwrite a faster newer one. Superseded
// fetches are additionally cancelled through their context.
type Searcher struct {
	search SearchFunc
	delay  time.Duration

	mu         sync.Mutex
	timer      *time.Timer
	generation uint64
	cancel     context.CancelFunc
	closed     bool

	results chan Result
}

// NewSearcher creates a Searcher. A non-positive delay uses DebounceInterval.
func NewSearcher(search SearchFunc, delay time.Duration) *Searcher {
	if delay <= 0 {
		delay = DebounceInterval
	}
	return &Searcher{
		search:  search,
		delay:   delay,
		results: make(chan Result, 1),
	}
}

// Results delivers the latest search outcome. The channel holds at most one
// result; a newer one displaces an unconsumed older one.
func (s *Searcher) Results() <-chan Result { return s.results }

// Input feeds one edit of the search box. The pending debounce timer, if
// any, is cancelled and rearmed.
func (s *Searcher) Input(ctx context.Context, query string) {
	query = strings.TrimSpace(query)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}

	if len([]rune(query)) < MinQueryLength {
		// too short to search; invalidate anything in flight
		s.supersedeLocked()
		if query == "" {
			s.deliver(Result{})
		}
		return
	}

	s.timer = time.AfterFunc(s.delay, func() {
		s.fire(ctx, query)
	})
}

// Close stops the debounce timer and cancels any in-flight fetch.
func (s *Searcher) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.supersedeLocked()
}

// fire launches the fetch for a debounced query under a fresh generation.
func (s *Searcher) fire(ctx context.Context, query string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.supersedeLocked()
	gen := s.generation
	fetchCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	go func() {
		products, err := s.search(fetchCtx, query)

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed || gen != s.generation {
			// a newer query was issued while this one ran; discard
			return
		}
		s.deliver(Result{Query: query, Products: products, Err: err})
	}()
}

// supersedeLocked advances the generation and cancels the in-flight fetch.
func (s *Searcher) supersedeLocked() {
	s.generation++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// deliver replaces any unconsumed result with the newest one.
func (s *Searcher) deliver(r Result) {
	select {
	case <-s.results:
	default:
	}
	s.results <- r
}
