package cartsync

import (
	"context"
	"sync"
	"time"

	"github.com/vitrine/checkout-service/internal/application/ports"
	"github.com/vitrine/checkout-service/internal/domain/cart"
	"github.com/vitrine/checkout-service/internal/domain/errors"
	"github.com/vitrine/checkout-service/internal/domain/promotion"
	"github.com/vitrine/checkout-service/internal/pkg/debounce"
	"github.com/vitrine/checkout-service/internal/pkg/logger"
)

type State int

const (
	StateUninitialized State = iota
	StateHydrating
	StateIdle
	StateDirty
	StateSyncing
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateHydrating:
		return "hydrating"
	case StateIdle:
		return "idle"
	case StateDirty:
		return "dirty"
	case StateSyncing:
		return "syncing"
	default:
		return "unknown"
	}
}

// Manager owns one visitor's cart and writes it through to the remote
// record store behind a trailing-edge debounce, so a burst of
// mutations coalesces into a single remote write. Mutations never
// block on the write; the cart stays usable locally even when syncing
// fails.
type Manager struct {
	mu    sync.Mutex
	state State
	c     *cart.Cart

	storeID   string
	sessionID string

	carts    ports.CartRepository
	sessions ports.SessionStore
	stores   ports.StoreRepository

	coupon *promotion.AppliedCoupon

	log         *logger.Logger
	deb         *debounce.Debouncer
	delay       time.Duration
	syncTimeout time.Duration

	pendingWrite bool
	observers    []func(State)
	onSyncResult func(err error, itemCount int)
}

func NewManager(
	storeID, sessionID string,
	carts ports.CartRepository,
	sessions ports.SessionStore,
	stores ports.StoreRepository,
	log *logger.Logger,
	delay time.Duration,
) *Manager {
	return &Manager{
		state:       StateUninitialized,
		c:           cart.NewCart(storeID),
		storeID:     storeID,
		sessionID:   sessionID,
		carts:       carts,
		sessions:    sessions,
		stores:      stores,
		log:         log,
		deb:         debounce.New(),
		delay:       delay,
		syncTimeout: 8 * time.Second,
	}
}

// Subscribe registers an observer called on every state transition.
// Observers run under the manager lock and must not call back in.
func (m *Manager) Subscribe(fn func(State)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, fn)
}

// OnSyncResult registers a callback invoked after every remote write
// attempt, used for metrics wiring.
func (m *Manager) OnSyncResult(fn func(err error, itemCount int)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onSyncResult = fn
}

func (m *Manager) setStateLocked(s State) {
	if m.state == s {
		return
	}
	m.state = s
	for _, fn := range m.observers {
		fn(s)
	}
}

// Hydrate binds the manager to its store context: it reads the
// durably stored cart identifier and fetches the remote cart. A
// missing or unfetchable cart clears the stale identifier and starts
// empty; hydration is never fatal.
func (m *Manager) Hydrate(ctx context.Context) error {
	m.mu.Lock()
	if m.state != StateUninitialized {
		m.mu.Unlock()
		return nil
	}
	m.setStateLocked(StateHydrating)
	m.mu.Unlock()

	cartID, err := m.sessions.GetCartID(ctx, m.storeID, m.sessionID)
	if err != nil {
		m.log.Warn("Failed to read stored cart id", "error", err, "store_id", m.storeID)
		cartID = ""
	}

	if cartID != "" {
		remote, err := m.carts.GetCart(ctx, cartID)
		if err != nil {
			m.log.Warn("Stored cart could not be fetched, starting empty",
				"error", err,
				"cart_id", cartID,
			)
			if err := m.sessions.RemoveCartID(ctx, m.storeID, m.sessionID); err != nil {
				m.log.Warn("Failed to clear stale cart id", "error", err)
			}
		} else {
			m.mu.Lock()
			m.c.ExternalID = remote.ExternalID
			m.c.DisplayID = remote.DisplayID
			m.c.Items = remote.Items
			m.setStateLocked(StateIdle)
			m.mu.Unlock()
			return nil
		}
	}

	m.mu.Lock()
	m.setStateLocked(StateIdle)
	m.mu.Unlock()
	return nil
}

// AddItem merges the item into the cart, clamping the resulting
// quantity to the stock available for that exact attribute
// combination.
func (m *Manager) AddItem(ctx context.Context, item cart.Item) error {
	maxStock, err := m.stores.GetStock(ctx, m.storeID, item.ProductID, cart.AttributeKey(item.Attributes))
	if err != nil {
		m.log.Warn("Stock lookup failed, skipping clamp", "error", err, "product_id", item.ProductID)
		maxStock = -1
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.c.Add(item, maxStock)
	m.markDirtyLocked()
	return nil
}

// SetQuantity updates a line's quantity; zero or below removes it.
func (m *Manager) SetQuantity(productID string, attrs map[string]string, quantity int) error {
	key := cart.Item{ProductID: productID, Attributes: attrs}.Key()

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.c.SetQuantity(key, quantity) {
		return errors.ErrCartItemNotFound
	}
	m.markDirtyLocked()
	return nil
}

func (m *Manager) RemoveItem(productID string, attrs map[string]string) error {
	return m.SetQuantity(productID, attrs, 0)
}

// Clear empties the cart. The write is only pending when a remote
// identity already exists, so the remote record reflects emptiness.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.c.Clear()
	if m.c.ExternalID != "" {
		m.markDirtyLocked()
	}
}

// markDirtyLocked restarts the debounce timer; when it fires with the
// pending-write flag still set, the cart is flushed remotely.
func (m *Manager) markDirtyLocked() {
	m.pendingWrite = true
	m.setStateLocked(StateDirty)
	m.deb.Trigger(m.delay, func(uint64) {
		m.flush(context.Background())
	})
}

// SyncNow forces an immediate flush, used by checkout submission.
func (m *Manager) SyncNow(ctx context.Context) error {
	m.mu.Lock()
	if !m.pendingWrite && m.c.ExternalID != "" {
		m.mu.Unlock()
		return nil
	}
	m.pendingWrite = true
	m.mu.Unlock()

	m.deb.Cancel()
	return m.flush(ctx)
}

func (m *Manager) flush(ctx context.Context) error {
	m.mu.Lock()
	if !m.pendingWrite {
		m.mu.Unlock()
		return nil
	}
	m.pendingWrite = false
	m.setStateLocked(StateSyncing)
	items := make([]cart.Item, len(m.c.Items))
	copy(items, m.c.Items)
	total := m.c.Subtotal()
	externalID := m.c.ExternalID
	m.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, m.syncTimeout)
	defer cancel()

	var err error
	if externalID == "" {
		var newID string
		var displayID int64
		newID, displayID, err = m.carts.CreateCart(ctx, &cart.Cart{StoreID: m.storeID, Items: items}, total)
		if err == nil {
			m.mu.Lock()
			m.c.ExternalID = newID
			m.c.DisplayID = displayID
			m.mu.Unlock()

			if serr := m.sessions.SaveCartID(ctx, m.storeID, m.sessionID, newID); serr != nil {
				m.log.Warn("Failed to store cart id", "error", serr, "cart_id", newID)
			}
		}
	} else {
		err = m.carts.UpdateCart(ctx, externalID, items, total)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.onSyncResult != nil {
		m.onSyncResult(err, len(items))
	}

	if err != nil {
		m.log.Error("Cart sync failed, will retry",
			"error", err,
			"store_id", m.storeID,
			"items", len(items),
		)
		m.pendingWrite = true
		m.setStateLocked(StateDirty)
		m.deb.Trigger(m.delay, func(uint64) {
			m.flush(context.Background())
		})
		return errors.ErrCartSyncFailed
	}

	// A mutation that landed mid-flight keeps the cart dirty; its own
	// debounce timer is already running.
	if m.pendingWrite {
		m.setStateLocked(StateDirty)
	} else {
		m.setStateLocked(StateIdle)
	}
	return nil
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Items returns a copy of the current cart lines.
func (m *Manager) Items() []cart.Item {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := make([]cart.Item, len(m.c.Items))
	copy(items, m.c.Items)
	return items
}

func (m *Manager) Subtotal() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.c.Subtotal()
}

func (m *Manager) ExternalID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.c.ExternalID
}

func (m *Manager) DisplayID() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.c.DisplayID
}

// ApplyCoupon installs the single applied coupon for the cart,
// replacing any previous one.
func (m *Manager) ApplyCoupon(c *promotion.AppliedCoupon) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.coupon = c
}

func (m *Manager) RemoveCoupon() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.coupon = nil
}

func (m *Manager) Coupon() *promotion.AppliedCoupon {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.coupon
}
