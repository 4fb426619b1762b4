package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Remote is the server-side cart, the single source of truth. The
// store never mutates its local collection before the remote call
// confirms.
type Remote interface {
	ListLines(ctx context.Context) ([]Line, error)
	AddLine(ctx context.Context, productID string, quantity int) (Line, error)
	UpdateLine(ctx context.Context, lineID string, quantity int) (int, error)
	DeleteLine(ctx context.Context, lineID string) error
}

// Stocker reports current available stock for a product.
type Stocker interface {
	Stock(ctx context.Context, productID string) (int, error)
}

// Notifier receives reconciliation outcomes: at most one CartAdjusted
// per pass, plus a line-scoped notice per failed stock check.
type Notifier interface {
	CartAdjusted()
	StockCheckFailed(productID string, err error)
}

// Emitter publishes domain events after confirmed add and delete.
// Increment, decrement and reconciliation never emit.
type Emitter interface {
	CartAdded(productName string)
	CartRemoved(productName string)
}

type Config struct {
	// BackgroundReconcile detaches the post-fetch reconciliation pass
	// from Fetch instead of running it inline. Inline is the default.
	BackgroundReconcile bool
}

// User-facing failure messages surfaced through LastError and Alert.
const (
	msgLoadFailed      = "Failed to load cart items."
	msgAddFailed       = "Failed to add to cart."
	msgIncrementFailed = "Failed to increment quantity."
	msgDecrementFailed = "Failed to decrement quantity."
	msgUpdateFailed    = "Failed to update quantity."
	msgRemoveFailed    = "Failed to remove item."
	msgOutOfStock      = "This item is out of stock."
)

func capacityAlert(stock int) string {
	return fmt.Sprintf("Cannot add more. Only %d in stock.", stock)
}

// Store owns the locally cached cart: the ordered line collection,
// the per-product single-flight flags and the per-product stock
// alerts. All mutation goes through its operations; the mutex is
// never held across a remote call.
type Store struct {
	remote Remote
	stock  Stocker
	notify Notifier
	events Emitter
	log    *zap.Logger
	cfg    Config

	mu      sync.Mutex
	lines   []Line
	busy    map[string]bool
	alerts  map[string]string
	lastErr string
}

func NewStore(remote Remote, stock Stocker, notify Notifier, events Emitter, log *zap.Logger, cfg Config) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		remote: remote,
		stock:  stock,
		notify: notify,
		events: events,
		log:    log,
		cfg:    cfg,
		busy:   map[string]bool{},
		alerts: map[string]string{},
	}
}

// Fetch replaces the whole collection with the server snapshot and
// reconciles it against current stock. On failure the collection is
// cleared: an empty, consistent cart beats a stale one.
func (s *Store) Fetch(ctx context.Context) error {
	lines, err := s.remote.ListLines(ctx)
	if err != nil {
		s.mu.Lock()
		s.lines = nil
		s.lastErr = msgLoadFailed
		s.mu.Unlock()
		return fmt.Errorf("fetch cart: %w", err)
	}

	s.mu.Lock()
	s.lines = lines
	s.lastErr = ""
	s.mu.Unlock()

	if s.cfg.BackgroundReconcile {
		go s.reconcile(context.WithoutCancel(ctx), lines)
		return nil
	}
	s.reconcile(ctx, lines)
	return nil
}

// Add puts one unit of a product in the cart. Rejected outright when
// an operation for the product is already in flight, out of stock, or
// at capacity; the confirmed created line is patched in locally
// without a full re-fetch.
func (s *Store) Add(ctx context.Context, productID string) error {
	if !s.begin(productID) {
		return nil
	}
	defer s.end(productID)

	stock := s.availableStock(ctx, productID)
	if stock <= 0 {
		s.setAlert(productID, msgOutOfStock)
		return nil
	}

	if ln, ok := s.lineForProduct(productID); ok && ln.Quantity >= stock {
		s.setAlert(productID, capacityAlert(stock))
		return nil
	}

	created, err := s.remote.AddLine(ctx, productID, 1)
	if err != nil {
		s.fail(msgAddFailed)
		return fmt.Errorf("add %s: %w", productID, err)
	}
	s.upsertLine(created)

	if s.events != nil {
		s.events.CartAdded(created.Product.Name)
	}
	return nil
}

// Increment raises an existing line's quantity by one after re-checking
// stock. Absent line: no-op.
func (s *Store) Increment(ctx context.Context, productID string) error {
	if !s.begin(productID) {
		return nil
	}
	defer s.end(productID)

	ln, ok := s.lineForProduct(productID)
	if !ok {
		return nil
	}

	stock := s.availableStock(ctx, productID)
	if ln.Quantity >= stock {
		s.setAlert(productID, capacityAlert(stock))
		return nil
	}

	got, err := s.remote.UpdateLine(ctx, ln.ID, ln.Quantity+1)
	if err != nil {
		s.fail(msgIncrementFailed)
		return fmt.Errorf("increment %s: %w", productID, err)
	}
	if got < 1 {
		got = ln.Quantity + 1
	}
	s.setQuantity(ln.ID, got)
	return nil
}

// Decrement lowers an existing line's quantity by one. A line at
// quantity 1 is deleted instead; quantity never reaches zero on a
// live line.
func (s *Store) Decrement(ctx context.Context, productID string) error {
	if !s.begin(productID) {
		return nil
	}
	defer s.end(productID)

	ln, ok := s.lineForProduct(productID)
	if !ok {
		return nil
	}

	if ln.Quantity > 1 {
		got, err := s.remote.UpdateLine(ctx, ln.ID, ln.Quantity-1)
		if err != nil {
			s.fail(msgDecrementFailed)
			return fmt.Errorf("decrement %s: %w", productID, err)
		}
		if got < 1 {
			got = ln.Quantity - 1
		}
		s.setQuantity(ln.ID, got)
		return nil
	}

	if err := s.remote.DeleteLine(ctx, ln.ID); err != nil && !errors.Is(err, ErrLineNotFound) {
		s.fail(msgDecrementFailed)
		return fmt.Errorf("decrement %s: %w", productID, err)
	}
	s.removeLine(ln.ID)
	return nil
}

// UpdateQuantity sets a line's quantity directly. Callers keep the
// quantity >= 1; the store does not clamp here.
func (s *Store) UpdateQuantity(ctx context.Context, lineID string, quantity int) error {
	got, err := s.remote.UpdateLine(ctx, lineID, quantity)
	if err != nil {
		s.fail(msgUpdateFailed)
		return fmt.Errorf("update quantity: %w", err)
	}
	if got < 1 {
		got = quantity
	}
	s.setQuantity(lineID, got)
	return nil
}

// DeleteLine removes a line once the server confirms. A 404 means the
// line is already gone server-side and counts as confirmation.
func (s *Store) DeleteLine(ctx context.Context, lineID string) error {
	ln, ok := s.lineByID(lineID)
	if !ok {
		return nil
	}

	if !s.begin(ln.Product.ID) {
		return nil
	}
	defer s.end(ln.Product.ID)

	if err := s.remote.DeleteLine(ctx, lineID); err != nil && !errors.Is(err, ErrLineNotFound) {
		s.fail(msgRemoveFailed)
		return fmt.Errorf("delete line %s: %w", lineID, err)
	}
	s.removeLine(lineID)

	if s.events != nil {
		s.events.CartRemoved(ln.Product.Name)
	}
	return nil
}

// reconcile heals drift between the fetched snapshot and current
// stock: quantities above stock are clamped remotely, lines for
// zero-stock products are deleted remotely. Corrections merge into the
// live collection by line ID; a line that moved since the snapshot was
// taken belongs to a fresher confirmed mutation and is left alone, so
// a background pass never erases it. One aggregate notice fires per
// pass no matter how many lines moved, and a failed stock check skips
// only the offending line.
func (s *Store) reconcile(ctx context.Context, lines []Line) {
	adjusted := false

	for _, snap := range lines {
		stock, err := s.stock.Stock(ctx, snap.Product.ID)
		if err != nil {
			s.log.Warn("stock check failed",
				zap.String("product_id", snap.Product.ID), zap.Error(err))
			if s.notify != nil {
				s.notify.StockCheckFailed(snap.Product.ID, err)
			}
			continue
		}

		if snap.Quantity <= stock || !s.lineUnchanged(snap) {
			continue
		}

		if stock > 0 {
			if _, err := s.remote.UpdateLine(ctx, snap.ID, stock); err != nil {
				s.log.Warn("clamp failed",
					zap.String("line_id", snap.ID), zap.Error(err))
				continue
			}
			if s.clampLine(snap, stock) {
				adjusted = true
			}
			continue
		}

		if err := s.remote.DeleteLine(ctx, snap.ID); err != nil && !errors.Is(err, ErrLineNotFound) {
			s.log.Warn("drop failed",
				zap.String("line_id", snap.ID), zap.Error(err))
			continue
		}
		if s.dropLine(snap) {
			adjusted = true
		}
	}

	if adjusted && s.notify != nil {
		s.notify.CartAdjusted()
	}
}

// lineUnchanged reports whether a line still matches its snapshot,
// meaning no confirmed mutation landed on it since the fetch.
func (s *Store) lineUnchanged(snap Line) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ln := range s.lines {
		if ln.ID == snap.ID {
			return ln.Quantity == snap.Quantity
		}
	}
	return false
}

// clampLine applies a confirmed clamp unless the line moved since the
// snapshot.
func (s *Store) clampLine(snap Line, stock int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.lines {
		if s.lines[i].ID == snap.ID {
			if s.lines[i].Quantity != snap.Quantity {
				return false
			}
			s.lines[i].Quantity = stock
			s.lines[i].Product.Stock = stock
			return true
		}
	}
	return false
}

// dropLine removes a zero-stock line unless it moved since the
// snapshot.
func (s *Store) dropLine(snap Line) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.lines {
		if s.lines[i].ID == snap.ID {
			if s.lines[i].Quantity != snap.Quantity {
				return false
			}
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			return true
		}
	}
	return false
}

// availableStock treats an unreachable oracle as zero: a false "out
// of stock" is cheaper than an oversold line.
func (s *Store) availableStock(ctx context.Context, productID string) int {
	n, err := s.stock.Stock(ctx, productID)
	if err != nil {
		s.log.Warn("stock check failed",
			zap.String("product_id", productID), zap.Error(err))
		return 0
	}
	return n
}

// begin claims the single-flight slot for a product and resets its
// alert and the store error. A second caller while an operation is
// outstanding gets false and must no-op.
func (s *Store) begin(productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.busy[productID] {
		return false
	}
	s.busy[productID] = true
	delete(s.alerts, productID)
	s.lastErr = ""
	return true
}

// end releases the slot. Callers defer it immediately after begin so
// no exit path leaves the flag held.
func (s *Store) end(productID string) {
	s.mu.Lock()
	delete(s.busy, productID)
	s.mu.Unlock()
}

func (s *Store) lineForProduct(productID string) (Line, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ln := range s.lines {
		if ln.Product.ID == productID {
			return ln, true
		}
	}
	return Line{}, false
}

func (s *Store) lineByID(lineID string) (Line, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ln := range s.lines {
		if ln.ID == lineID {
			return ln, true
		}
	}
	return Line{}, false
}

// upsertLine replaces the line for the same product or appends,
// preserving arrival order.
func (s *Store) upsertLine(ln Line) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.lines {
		if s.lines[i].Product.ID == ln.Product.ID {
			s.lines[i] = ln
			return
		}
	}
	s.lines = append(s.lines, ln)
}

func (s *Store) setQuantity(lineID string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.lines {
		if s.lines[i].ID == lineID {
			s.lines[i].Quantity = quantity
			return
		}
	}
}

func (s *Store) removeLine(lineID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.lines {
		if s.lines[i].ID == lineID {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			return
		}
	}
}

func (s *Store) setAlert(productID, msg string) {
	s.mu.Lock()
	s.alerts[productID] = msg
	s.mu.Unlock()
}

func (s *Store) fail(msg string) {
	s.mu.Lock()
	s.lastErr = msg
	s.mu.Unlock()
}

// Lines returns a copy of the collection in arrival order.
func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

// Alert reports the pending stock alert for a product, if any.
func (s *Store) Alert(productID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg, ok := s.alerts[productID]
	return msg, ok
}

// Alerts returns a copy of all pending stock alerts.
func (s *Store) Alerts() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.alerts) == 0 {
		return nil
	}
	out := make(map[string]string, len(s.alerts))
	for k, v := range s.alerts {
		out[k] = v
	}
	return out
}

// Busy reports whether a mutation for the product is in flight.
func (s *Store) Busy(productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy[productID]
}

// LastError is the user-facing message of the most recent failure,
// empty after a successful operation.
func (s *Store) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}
