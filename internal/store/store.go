// Package store is the per-session application state container.
//
// A Store is the only writer of session state. Views read snapshots or
// subscribe to changes and request mutations through the named actions.
// Network calls run outside the lock; their results are applied under it and
// dropped when a newer call for the same list has already been applied.
package store

import (
	"context"
	"io"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/your-org/donate-storefront/internal/api"
	"github.com/your-org/donate-storefront/internal/domain/catalog"
	"github.com/your-org/donate-storefront/internal/domain/order"
	"github.com/your-org/donate-storefront/internal/domain/user"
	"github.com/your-org/donate-storefront/internal/pkg/i18n"
	"github.com/your-org/donate-storefront/internal/pkg/logger"
	"github.com/your-org/donate-storefront/internal/platform"
	"github.com/your-org/donate-storefront/internal/theme"
)

// DefaultMaxQuantity is the cart quantity ceiling per product
const DefaultMaxQuantity = 99

// Backend is the part of the upstream API the store calls
type Backend interface {
	Authenticate(ctx context.Context, initData string) *api.Response[api.AuthResult]
	GetGames(ctx context.Context) *api.Response[[]catalog.Game]
	GetPopularGames(ctx context.Context) *api.Response[[]catalog.Game]
	GetProducts(ctx context.Context, gameID uint, filters catalog.FilterOptions) *api.Response[api.Paginated[catalog.Product]]
	GetCategories(ctx context.Context, gameID uint) *api.Response[[]catalog.Category]
	GetUserOrders(ctx context.Context) *api.Response[[]order.Order]
	CreateOrder(ctx context.Context, req order.CreateRequest) *api.Response[order.Order]
}

// Persister stores the persisted subset of one session
type Persister interface {
	// Load returns nil when nothing has been saved yet
	Load(ctx context.Context) (*Persisted, error)
	Save(ctx context.Context, p Persisted) error
}

// Deps are the collaborators of a Store
type Deps struct {
	Backend     Backend
	Bridge      platform.Bridge
	Persister   Persister
	Tokens      api.TokenStore
	Logger      logrus.FieldLogger
	OnTheme     func(theme.Theme)
	MaxQuantity int
}

type list int

const (
	listAuth list = iota
	listGames
	listPopularGames
	listProducts
	listCategories
	listOrders
	listCount
)

// Store holds the state of one session
type Store struct {
	mu     sync.Mutex
	state  State
	stored bool

	issued  [listCount]uint64
	applied [listCount]uint64
	loading int

	notifyMu    sync.Mutex
	notified    *sync.Cond
	subscribers map[int]func(State)
	nextSub     int
	changes     uint64
	delivered   uint64

	backend     Backend
	bridge      platform.Bridge
	persister   Persister
	tokens      api.TokenStore
	log         logrus.FieldLogger
	onTheme     func(theme.Theme)
	maxQuantity int
}

// New creates a store with the initial state: light theme, signed out, empty lists
func New(deps Deps) *Store {
	s := &Store{
		state:       State{Theme: theme.Light()},
		subscribers: make(map[int]func(State)),
		backend:     deps.Backend,
		bridge:      deps.Bridge,
		persister:   deps.Persister,
		tokens:      deps.Tokens,
		log:         deps.Logger,
		onTheme:     deps.OnTheme,
		maxQuantity: deps.MaxQuantity,
	}
	s.notified = sync.NewCond(&s.notifyMu)

	if s.bridge == nil {
		s.bridge = platform.Noop{}
	}
	if s.persister == nil {
		s.persister = &MemoryPersister{}
	}
	if s.tokens == nil {
		s.tokens = &api.MemoryTokens{}
	}
	if s.log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		s.log = discard
	}
	if s.maxQuantity <= 0 {
		s.maxQuantity = DefaultMaxQuantity
	}
	s.log = logger.WithCategory(s.log, logger.CategoryStore)

	return s
}

// Restore loads the persisted subset saved by an earlier process
func (s *Store) Restore(ctx context.Context) error {
	p, err := s.persister.Load(ctx)
	if err != nil {
		return err
	}
	if p == nil {
		return nil
	}

	s.update(ctx, false, func(st *State) bool {
		if p.Theme.Mode.Valid() {
			st.Theme = p.Theme
		}
		st.Cart = sanitizeCart(p.Cart, s.maxQuantity)
		st.User = p.User
		st.IsAuthenticated = p.IsAuthenticated && p.User != nil
		s.stored = true
		return true
	})
	return nil
}

// SetBridge replaces the platform bridge, used when the shell relaunches the app
func (s *Store) SetBridge(b platform.Bridge) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b == nil {
		b = platform.Noop{}
	}
	s.bridge = b
}

// Bridge returns the current platform bridge
func (s *Store) Bridge() platform.Bridge {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bridge
}

// Snapshot returns a copy of the current state
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn to receive every new state. Callbacks run in the
// order changes happen and may read the store, but must not call mutating
// store methods synchronously.
func (s *Store) Subscribe(fn func(State)) (cancel func()) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			s.notifyMu.Lock()
			defer s.notifyMu.Unlock()
			delete(s.subscribers, id)
		})
	}
}

// update applies fn under the lock. When fn reports a change, the persisted
// subset is saved if persist is set and subscribers are notified. Each change
// takes a sequence number under mu and is delivered after mu is released, in
// sequence order.
func (s *Store) update(ctx context.Context, persist bool, fn func(st *State) bool) {
	s.mu.Lock()
	if !fn(&s.state) {
		s.mu.Unlock()
		return
	}
	s.state.IsLoading = s.loading > 0
	if persist {
		s.save(ctx)
	}
	snapshot := s.state
	s.changes++
	seq := s.changes
	s.mu.Unlock()

	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	for s.delivered+1 != seq {
		s.notified.Wait()
	}
	defer func() {
		s.delivered = seq
		s.notified.Broadcast()
	}()

	for _, sub := range s.subscribers {
		sub(snapshot)
	}
}

// save writes the persisted subset; s.mu must be held
func (s *Store) save(ctx context.Context) {
	if err := s.persister.Save(context.WithoutCancel(ctx), s.state.persisted()); err != nil {
		s.log.WithError(err).Warn("Failed to persist state")
	}
}

// begin issues a ticket for a list fetch and marks the store as loading
func (s *Store) begin(l list) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued[l]++
	s.loading++
	return s.issued[l]
}

// finish applies a fetch result when its ticket is newer than the last applied one
func (s *Store) finish(ctx context.Context, l list, ticket uint64, persist bool, apply func(st *State)) bool {
	applied := false
	s.update(ctx, persist, func(st *State) bool {
		s.loading--
		if apply != nil && ticket > s.applied[l] {
			s.applied[l] = ticket
			apply(st)
			applied = true
		}
		return true
	})
	return applied
}

// invalidate drops the results of calls in flight for the given lists; s.mu must be held
func (s *Store) invalidate(lists ...list) {
	for _, l := range lists {
		s.applied[l] = s.issued[l]
	}
}

func validationError(message string) error {
	return &api.Error{Kind: api.KindValidation, Message: message}
}

// Authentication

// Authenticate exchanges the platform init data for a session. Failures leave
// the store signed out and are returned, never raised.
func (s *Store) Authenticate(ctx context.Context) error {
	initData := s.Bridge().InitData()
	if initData == "" {
		s.update(ctx, true, func(st *State) bool {
			st.IsAuthenticated = false
			return true
		})
		s.log.Warn("No init data available")
		return &api.Error{Kind: api.KindUnauthorized, Message: i18n.T("errors.unauthorized")}
	}

	ticket := s.begin(listAuth)
	resp := s.backend.Authenticate(ctx, initData)

	if resp.Success && resp.Data.Token != "" {
		authenticated := resp.Data
		s.finish(ctx, listAuth, ticket, true, func(st *State) {
			if err := s.tokens.SaveToken(ctx, authenticated.Token); err != nil {
				s.log.WithError(err).Warn("Failed to store session token")
			}
			u := authenticated.User
			st.User = &u
			st.IsAuthenticated = true
			st.ReloadRequired = false
		})
		logger.WithCategory(s.log, logger.CategoryAuth).WithField("user_id", resp.Data.User.ID).Info("Authenticated")
		return nil
	}

	err := resp.Err()
	if resp.Success {
		err = &api.Error{Kind: api.KindDecode, Message: "authentication response has no token"}
	}
	s.finish(ctx, listAuth, ticket, true, func(st *State) {
		st.IsAuthenticated = false
	})
	logger.WithCategory(s.log, logger.CategoryAuth).WithError(err).Warn("Authentication failed")
	return err
}

// Logout clears the session token, user, cart and orders. It never fails.
func (s *Store) Logout(ctx context.Context) {
	if err := s.tokens.ClearToken(ctx); err != nil {
		s.log.WithError(err).Warn("Failed to clear session token")
	}
	s.update(ctx, true, func(st *State) bool {
		s.invalidate(listAuth, listOrders)
		st.User = nil
		st.IsAuthenticated = false
		st.Cart = nil
		st.Orders = nil
		return true
	})
}

// HandleUnauthorized reacts to a 401 from the upstream API. The session is
// dropped and, if one was active, the shell is asked to reload, which
// authenticates again. The cart is kept.
func (s *Store) HandleUnauthorized() {
	s.update(context.Background(), true, func(st *State) bool {
		s.invalidate(listAuth)
		st.ReloadRequired = st.ReloadRequired || st.IsAuthenticated
		st.User = nil
		st.IsAuthenticated = false
		return true
	})
	logger.WithCategory(s.log, logger.CategoryAuth).Warn("Session rejected by upstream, reload requested")
}

// ConsumeReload reports and clears a pending reload request
func (s *Store) ConsumeReload() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	reload := s.state.ReloadRequired
	s.state.ReloadRequired = false
	return reload
}

// SetUser replaces the signed in user after a profile change. It is ignored
// when the session is signed out.
func (s *Store) SetUser(ctx context.Context, u user.User) {
	s.update(ctx, true, func(st *State) bool {
		if !st.IsAuthenticated {
			return false
		}
		st.User = &u
		return true
	})
}

// Theme

// ToggleTheme flips between light and dark and applies the result
func (s *Store) ToggleTheme(ctx context.Context) theme.Theme {
	var next theme.Theme
	s.update(ctx, true, func(st *State) bool {
		next = st.Theme.Toggle()
		st.Theme = next
		return true
	})
	s.applyTheme(next)
	return next
}

// SetTheme sets and applies the theme
func (s *Store) SetTheme(ctx context.Context, t theme.Theme) error {
	if !t.Mode.Valid() {
		return validationError("unknown theme mode " + string(t.Mode))
	}
	s.update(ctx, true, func(st *State) bool {
		st.Theme = t
		return true
	})
	s.applyTheme(t)
	return nil
}

func (s *Store) applyTheme(t theme.Theme) {
	if s.onTheme != nil {
		s.onTheme(t)
	}
}

// Catalog and orders

func fetch[T any](ctx context.Context, s *Store, l list, name string, call func() *api.Response[T], apply func(st *State, data T)) error {
	ticket := s.begin(l)
	resp := call()

	if !resp.Success {
		s.finish(ctx, l, ticket, false, nil)
		err := resp.Err()
		s.log.WithError(err).WithField("list", name).Warn("Fetch failed")
		return err
	}

	data := resp.Data
	if !s.finish(ctx, l, ticket, false, func(st *State) { apply(st, data) }) {
		s.log.WithField("list", name).Debug("Dropped stale fetch result")
	}
	return nil
}

// FetchGames replaces the game list
func (s *Store) FetchGames(ctx context.Context) error {
	return fetch(ctx, s, listGames, "games",
		func() *api.Response[[]catalog.Game] { return s.backend.GetGames(ctx) },
		func(st *State, games []catalog.Game) { st.Games = games })
}

// FetchPopularGames replaces the popular game list
func (s *Store) FetchPopularGames(ctx context.Context) error {
	return fetch(ctx, s, listPopularGames, "popularGames",
		func() *api.Response[[]catalog.Game] { return s.backend.GetPopularGames(ctx) },
		func(st *State, games []catalog.Game) { st.PopularGames = games })
}

// FetchProducts replaces the product list with one game's products
func (s *Store) FetchProducts(ctx context.Context, gameID uint, filters catalog.FilterOptions) error {
	return fetch(ctx, s, listProducts, "products",
		func() *api.Response[api.Paginated[catalog.Product]] { return s.backend.GetProducts(ctx, gameID, filters) },
		func(st *State, page api.Paginated[catalog.Product]) { st.Products = page.Data })
}

// FetchCategories replaces the category list with one game's categories
func (s *Store) FetchCategories(ctx context.Context, gameID uint) error {
	return fetch(ctx, s, listCategories, "categories",
		func() *api.Response[[]catalog.Category] { return s.backend.GetCategories(ctx, gameID) },
		func(st *State, categories []catalog.Category) { st.Categories = categories })
}

// FetchOrders replaces the order history
func (s *Store) FetchOrders(ctx context.Context) error {
	return fetch(ctx, s, listOrders, "orders",
		func() *api.Response[[]order.Order] { return s.backend.GetUserOrders(ctx) },
		func(st *State, orders []order.Order) { st.Orders = orders })
}

// Cart

// AddToCart adds quantity units of product, merging with an existing entry.
// The resulting quantity is clamped to the ceiling and returned.
func (s *Store) AddToCart(ctx context.Context, product catalog.Product, quantity int) (int, error) {
	if quantity < 1 {
		return 0, validationError("quantity must be at least 1")
	}

	result := 0
	s.update(ctx, true, func(st *State) bool {
		cart := make([]CartItem, 0, len(st.Cart)+1)
		found := false
		for _, item := range st.Cart {
			if item.Product.ID == product.ID {
				item.Quantity = s.clamp(item.Quantity + quantity)
				result = item.Quantity
				found = true
			}
			cart = append(cart, item)
		}
		if !found {
			result = s.clamp(quantity)
			cart = append(cart, CartItem{Product: product, Quantity: result})
		}
		st.Cart = cart
		return true
	})

	logger.UserAction(s.log, "add to cart", logrus.Fields{"product_id": product.ID, "quantity": quantity})
	return result, nil
}

// RemoveFromCart removes a product's entry; absent products are ignored
func (s *Store) RemoveFromCart(ctx context.Context, productID uint) {
	s.update(ctx, true, func(st *State) bool {
		cart := make([]CartItem, 0, len(st.Cart))
		for _, item := range st.Cart {
			if item.Product.ID != productID {
				cart = append(cart, item)
			}
		}
		if len(cart) == len(st.Cart) {
			return false
		}
		st.Cart = cart
		return true
	})
}

// UpdateCartItemQuantity replaces a product's quantity, removing it when quantity <= 0.
// Absent products are ignored. The resulting quantity is returned.
func (s *Store) UpdateCartItemQuantity(ctx context.Context, productID uint, quantity int) int {
	if quantity <= 0 {
		s.RemoveFromCart(ctx, productID)
		return 0
	}

	result := 0
	s.update(ctx, true, func(st *State) bool {
		index := -1
		for i, item := range st.Cart {
			if item.Product.ID == productID {
				index = i
				break
			}
		}
		if index < 0 {
			return false
		}

		cart := make([]CartItem, len(st.Cart))
		copy(cart, st.Cart)
		cart[index].Quantity = s.clamp(quantity)
		result = cart[index].Quantity
		st.Cart = cart
		return true
	})
	return result
}

// ClearCart empties the cart
func (s *Store) ClearCart(ctx context.Context) {
	s.update(ctx, true, func(st *State) bool {
		st.Cart = nil
		return true
	})
}

// CartTotal returns the sum of price times quantity over the cart
func (s *Store) CartTotal() decimal.Decimal {
	return s.Snapshot().CartTotal()
}

// CartItemCount returns the sum of quantities in the cart
func (s *Store) CartItemCount() int {
	return s.Snapshot().CartItemCount()
}

func (s *Store) clamp(quantity int) int {
	if quantity > s.maxQuantity {
		return s.maxQuantity
	}
	return quantity
}

// CreateOrder places an order. On success the order is prepended to the
// history and the cart is emptied in one change; on failure nothing changes.
func (s *Store) CreateOrder(ctx context.Context, req order.CreateRequest) (*order.Order, error) {
	resp := s.backend.CreateOrder(ctx, req)
	if !resp.Success {
		err := resp.Err()
		logger.WithCategory(s.log, logger.CategoryPurchase).WithError(err).Warn("Order creation failed")
		return nil, err
	}

	created := resp.Data
	s.update(ctx, true, func(st *State) bool {
		// an earlier FetchOrders would drop the new order
		s.invalidate(listOrders)
		orders := make([]order.Order, 0, len(st.Orders)+1)
		orders = append(orders, created)
		orders = append(orders, st.Orders...)
		st.Orders = orders
		st.Cart = nil
		return true
	})

	logger.Purchase(s.log, created.OrderNumber, created.TotalPrice.String())
	return &created, nil
}

// Bootstrap runs the launch sequence: platform init, theme, authentication
// and the initial catalog fetch. Only the authentication error is returned.
func (s *Store) Bootstrap(ctx context.Context) error {
	bridge := s.Bridge()
	bridge.Init()

	var applied theme.Theme
	s.update(ctx, true, func(st *State) bool {
		var stored *theme.Theme
		if s.stored {
			stored = &st.Theme
		}
		st.Theme = theme.Initial(stored, bridge.ColorScheme())
		applied = st.Theme
		return true
	})
	s.applyTheme(applied)

	var authErr error
	if !s.Snapshot().IsAuthenticated {
		authErr = s.Authenticate(ctx)
	}

	if s.Snapshot().IsAuthenticated {
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = s.FetchGames(ctx)
		}()
		go func() {
			defer wg.Done()
			_ = s.FetchPopularGames(ctx)
		}()
		wg.Wait()
	}

	return authErr
}

func sanitizeCart(items []CartItem, max int) []CartItem {
	if len(items) == 0 {
		return nil
	}
	cart := make([]CartItem, 0, len(items))
	index := make(map[uint]int, len(items))
	for _, item := range items {
		if item.Quantity < 1 {
			continue
		}
		if i, ok := index[item.Product.ID]; ok {
			cart[i].Quantity += item.Quantity
		} else {
			index[item.Product.ID] = len(cart)
			cart = append(cart, item)
		}
	}
	for i := range cart {
		if cart[i].Quantity > max {
			cart[i].Quantity = max
		}
	}
	return cart
}

// MemoryPersister keeps the persisted subset in process memory
type MemoryPersister struct {
	mu    sync.Mutex
	saved *Persisted
	saves int
}

func (m *MemoryPersister) Load(context.Context) (*Persisted, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saved == nil {
		return nil, nil
	}
	p := *m.saved
	return &p, nil
}

func (m *MemoryPersister) Save(_ context.Context, p Persisted) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = &p
	m.saves++
	return nil
}

// Saves returns how many times the state was written
func (m *MemoryPersister) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
