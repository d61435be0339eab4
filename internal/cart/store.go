package cart

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Cart mutation actions carried on change events.
const (
	ActionAdd    = "ADD"
	ActionChange = "CHANGE_QUANTITY"
	ActionRemove = "REMOVE"
	ActionClear  = "CLEAR"
)

// Event describes one committed cart mutation. Subscribers receive it after
// the new state has been persisted.
type Event struct {
	CartID    string `json:"cart_id"`
	Action    string `json:"action"`
	ProductID string `json:"product_id,omitempty"`
	ItemCount int    `json:"item_count"`
	Total     float64 `json:"total"`
}

// Storage persists the ordered line list under a cart id.
// Load must fail open: a missing or corrupt record yields an empty cart.
type Storage interface {
	Load(ctx context.Context, cartID string) ([]Line, error)
	Save(ctx context.Context, cartID string, lines []Line) error
	Delete(ctx context.Context, cartID string) error
}

// Store is the single source of truth for carts. Every mutation is a
// serialized read-modify-write: persisted synchronously, then announced to
// subscribers, so by the time any refresh renders, the new state is durable.
type Store struct {
	storage Storage
	logger  zerolog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex

	subMu   sync.RWMutex
	subs    map[int]func(context.Context, Event)
	nextSub int
}

// NewStore creates a cart Store over the given storage.
func NewStore(storage Storage, logger zerolog.Logger) *Store {
	return &Store{
		storage: storage,
		logger:  logger,
		locks:   map[string]*sync.Mutex{},
		subs:    map[int]func(context.Context, Event){},
	}
}

// Subscribe registers fn for change events and returns an unsubscribe func.
// Views subscribe on mount and unsubscribe on unmount instead of being
// re-rendered unconditionally.
func (s *Store) Subscribe(fn func(context.Context, Event)) (unsubscribe func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

// Get returns the current lines for a cart. Storage failures degrade to an
// empty cart: availability over strict consistency.
func (s *Store) Get(ctx context.Context, cartID string) []Line {
	lines, err := s.storage.Load(ctx, cartID)
	if err != nil {
		s.logger.Warn().Err(err).Str("cart_id", cartID).Msg("cart load failed, treating as empty")
		return nil
	}
	return lines
}

// Add increments an existing line by qty or appends a new one with the given
// name/price snapshot.
func (s *Store) Add(ctx context.Context, cartID, productID, name string, unitPrice float64, qty int) ([]Line, error) {
	if qty <= 0 {
		qty = 1
	}
	return s.mutate(ctx, cartID, ActionAdd, productID, func(lines []Line) []Line {
		return addLine(lines, productID, name, unitPrice, qty)
	})
}

// ChangeQuantity applies delta to a line; dropping to 0 removes it, an absent
// id is a no-op.
func (s *Store) ChangeQuantity(ctx context.Context, cartID, productID string, delta int) ([]Line, error) {
	return s.mutate(ctx, cartID, ActionChange, productID, func(lines []Line) []Line {
		return changeQuantity(lines, productID, delta)
	})
}

// Remove drops a line unconditionally; an absent id is a no-op.
func (s *Store) Remove(ctx context.Context, cartID, productID string) ([]Line, error) {
	return s.mutate(ctx, cartID, ActionRemove, productID, func(lines []Line) []Line {
		return removeLine(lines, productID)
	})
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context, cartID string) error {
	lock := s.lockFor(cartID)
	lock.Lock()
	defer lock.Unlock()

	if err := s.storage.Delete(ctx, cartID); err != nil {
		return err
	}
	s.notify(ctx, Event{CartID: cartID, Action: ActionClear})
	return nil
}

func (s *Store) mutate(ctx context.Context, cartID, action, productID string, apply func([]Line) []Line) ([]Line, error) {
	lock := s.lockFor(cartID)
	lock.Lock()
	defer lock.Unlock()

	// a mutation must never rewrite the cart from a base it could not read;
	// fail-open is for plain reads only
	lines, err := s.storage.Load(ctx, cartID)
	if err != nil {
		return nil, err
	}
	lines = apply(lines)
	if err := s.storage.Save(ctx, cartID, lines); err != nil {
		return nil, err
	}
	s.notify(ctx, Event{
		CartID:    cartID,
		Action:    action,
		ProductID: productID,
		ItemCount: ItemCount(lines),
		Total:     Total(lines),
	})
	return lines, nil
}

func (s *Store) notify(ctx context.Context, ev Event) {
	s.subMu.RLock()
	defer s.subMu.RUnlock()
	for _, fn := range s.subs {
		fn(ctx, ev)
	}
}

func (s *Store) lockFor(cartID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[cartID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[cartID] = lock
	}
	return lock
}
