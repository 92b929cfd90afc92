package store

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/donate-storefront/internal/api"
	"github.com/your-org/donate-storefront/internal/domain/catalog"
	"github.com/your-org/donate-storefront/internal/domain/order"
	"github.com/your-org/donate-storefront/internal/domain/user"
	"github.com/your-org/donate-storefront/internal/platform"
	"github.com/your-org/donate-storefront/internal/theme"
)

type fakeBackend struct {
	mu sync.Mutex

	auth        *api.Response[api.AuthResult]
	games       func() *api.Response[[]catalog.Game]
	popular     *api.Response[[]catalog.Game]
	products    *api.Response[api.Paginated[catalog.Product]]
	categories  *api.Response[[]catalog.Category]
	orders      *api.Response[[]order.Order]
	ordersFn    func() *api.Response[[]order.Order]
	createOrder *api.Response[order.Order]

	authCalls int
	lastOrder order.CreateRequest
}

func (f *fakeBackend) Authenticate(_ context.Context, _ string) *api.Response[api.AuthResult] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.authCalls++
	if f.auth == nil {
		return api.Fail[api.AuthResult](api.KindUnauthorized, http.StatusUnauthorized, "invalid init data")
	}
	return f.auth
}

func (f *fakeBackend) GetGames(context.Context) *api.Response[[]catalog.Game] {
	if f.games == nil {
		return api.OK([]catalog.Game{})
	}
	return f.games()
}

func (f *fakeBackend) GetPopularGames(context.Context) *api.Response[[]catalog.Game] {
	if f.popular == nil {
		return api.OK([]catalog.Game{})
	}
	return f.popular
}

func (f *fakeBackend) GetProducts(context.Context, uint, catalog.FilterOptions) *api.Response[api.Paginated[catalog.Product]] {
	return f.products
}

func (f *fakeBackend) GetCategories(context.Context, uint) *api.Response[[]catalog.Category] {
	return f.categories
}

func (f *fakeBackend) GetUserOrders(context.Context) *api.Response[[]order.Order] {
	if f.ordersFn != nil {
		return f.ordersFn()
	}
	return f.orders
}

func (f *fakeBackend) CreateOrder(_ context.Context, req order.CreateRequest) *api.Response[order.Order] {
	f.lastOrder = req
	return f.createOrder
}

type fakeBridge struct {
	platform.Noop
	initData string
	scheme   theme.Mode
	inits    int
}

func (b *fakeBridge) Init()                   { b.inits++ }
func (b *fakeBridge) InitData() string        { return b.initData }
func (b *fakeBridge) ColorScheme() theme.Mode { return b.scheme }

func product(id uint, price int64) catalog.Product {
	return catalog.Product{ID: id, Name: "Товар", Price: decimal.NewFromInt(price), IsAvailable: true}
}

func newTestStore(backend *fakeBackend) (*Store, *MemoryPersister) {
	persister := &MemoryPersister{}
	s := New(Deps{Backend: backend, Persister: persister})
	return s, persister
}

func TestAddToCartMergesSameProduct(t *testing.T) {
	s, _ := newTestStore(&fakeBackend{})
	ctx := context.Background()

	for _, qty := range []int{1, 4, 2, 10} {
		_, err := s.AddToCart(ctx, product(7, 100), qty)
		require.NoError(t, err)
	}

	cart := s.Snapshot().Cart
	require.Len(t, cart, 1)
	assert.Equal(t, uint(7), cart[0].Product.ID)
	assert.Equal(t, 17, cart[0].Quantity)
}

func TestAddToCartClampsToCeiling(t *testing.T) {
	s, _ := newTestStore(&fakeBackend{})
	ctx := context.Background()

	qty, err := s.AddToCart(ctx, product(1, 10), 60)
	require.NoError(t, err)
	assert.Equal(t, 60, qty)

	qty, err = s.AddToCart(ctx, product(1, 10), 60)
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxQuantity, qty)

	assert.Equal(t, DefaultMaxQuantity, s.UpdateCartItemQuantity(ctx, 1, 500))
	assert.Equal(t, DefaultMaxQuantity, s.CartItemCount())
}

func TestAddToCartRejectsNonPositiveQuantity(t *testing.T) {
	s, persister := newTestStore(&fakeBackend{})

	_, err := s.AddToCart(context.Background(), product(1, 10), 0)
	require.Error(t, err)
	assert.True(t, api.IsKind(err, api.KindValidation))
	assert.Empty(t, s.Snapshot().Cart)
	assert.Zero(t, persister.Saves())
}

func TestCartTotals(t *testing.T) {
	s, _ := newTestStore(&fakeBackend{})
	ctx := context.Background()

	assert.True(t, s.CartTotal().IsZero())
	assert.Zero(t, s.CartItemCount())

	_, _ = s.AddToCart(ctx, product(1, 100), 2)
	_, _ = s.AddToCart(ctx, product(2, 50), 1)

	assert.True(t, decimal.NewFromInt(250).Equal(s.CartTotal()))
	assert.Equal(t, 3, s.CartItemCount())

	s.ClearCart(ctx)
	assert.True(t, s.CartTotal().IsZero())
	assert.Zero(t, s.CartItemCount())
}

func TestCartItemCountSumsQuantities(t *testing.T) {
	s, _ := newTestStore(&fakeBackend{})
	ctx := context.Background()

	_, _ = s.AddToCart(ctx, product(1, 10), 2)
	_, _ = s.AddToCart(ctx, product(2, 10), 3)

	assert.Len(t, s.Snapshot().Cart, 2)
	assert.Equal(t, 5, s.CartItemCount())
}

func TestUpdateToZeroEqualsRemove(t *testing.T) {
	ctx := context.Background()
	fill := func(s *Store) {
		_, _ = s.AddToCart(ctx, product(1, 10), 2)
		_, _ = s.AddToCart(ctx, product(2, 20), 1)
	}

	updated, _ := newTestStore(&fakeBackend{})
	fill(updated)
	assert.Zero(t, updated.UpdateCartItemQuantity(ctx, 1, 0))

	removed, _ := newTestStore(&fakeBackend{})
	fill(removed)
	removed.RemoveFromCart(ctx, 1)

	assert.Equal(t, removed.Snapshot().Cart, updated.Snapshot().Cart)
}

func TestUpdateReplacesQuantity(t *testing.T) {
	s, _ := newTestStore(&fakeBackend{})
	ctx := context.Background()

	_, _ = s.AddToCart(ctx, product(1, 10), 5)
	assert.Equal(t, 2, s.UpdateCartItemQuantity(ctx, 1, 2))
	assert.Equal(t, 2, s.Snapshot().CartQuantity(1))

	assert.Zero(t, s.UpdateCartItemQuantity(ctx, 42, 3))
	assert.Len(t, s.Snapshot().Cart, 1)
}

func TestRemoveAbsentProductIsNoop(t *testing.T) {
	s, persister := newTestStore(&fakeBackend{})
	ctx := context.Background()

	_, _ = s.AddToCart(ctx, product(1, 10), 1)
	before := s.Snapshot().Cart
	saves := persister.Saves()

	s.RemoveFromCart(ctx, 99)

	assert.Equal(t, before, s.Snapshot().Cart)
	assert.Equal(t, saves, persister.Saves())
}

func TestCreateOrderSuccess(t *testing.T) {
	created := order.Order{ID: 2, OrderNumber: "ORD-2", TotalPrice: decimal.NewFromInt(200)}
	backend := &fakeBackend{
		orders:      api.OK([]order.Order{{ID: 1, OrderNumber: "ORD-1"}}),
		createOrder: api.OK(created),
	}
	s, _ := newTestStore(backend)
	ctx := context.Background()

	require.NoError(t, s.FetchOrders(ctx))
	_, _ = s.AddToCart(ctx, product(1, 100), 2)

	var observed []State
	cancel := s.Subscribe(func(st State) { observed = append(observed, st) })
	defer cancel()

	got, err := s.CreateOrder(ctx, order.CreateRequest{
		Items:         []order.ItemRequest{{ProductID: 1, Quantity: 2}},
		PaymentMethod: "card",
	})
	require.NoError(t, err)
	assert.Equal(t, "ORD-2", got.OrderNumber)

	snapshot := s.Snapshot()
	assert.Empty(t, snapshot.Cart)
	require.Len(t, snapshot.Orders, 2)
	assert.Equal(t, uint(2), snapshot.Orders[0].ID)
	assert.Equal(t, uint(1), snapshot.Orders[1].ID)

	require.Len(t, observed, 1)
	assert.Empty(t, observed[0].Cart)
	assert.Len(t, observed[0].Orders, 2)
}

func TestCreateOrderFailureLeavesStateUnchanged(t *testing.T) {
	backend := &fakeBackend{
		orders:      api.OK([]order.Order{{ID: 1}}),
		createOrder: api.Fail[order.Order](api.KindValidation, http.StatusBadRequest, "Неверные данные"),
	}
	s, _ := newTestStore(backend)
	ctx := context.Background()

	require.NoError(t, s.FetchOrders(ctx))
	_, _ = s.AddToCart(ctx, product(1, 100), 2)
	before := s.Snapshot()

	got, err := s.CreateOrder(ctx, order.CreateRequest{})
	require.Error(t, err)
	assert.Nil(t, got)
	assert.True(t, api.IsKind(err, api.KindValidation))

	after := s.Snapshot()
	assert.Equal(t, before.Cart, after.Cart)
	assert.Equal(t, before.Orders, after.Orders)
}

func TestToggleThemeTwiceRestores(t *testing.T) {
	var applied []theme.Mode
	s := New(Deps{Backend: &fakeBackend{}, OnTheme: func(t theme.Theme) { applied = append(applied, t.Mode) }})
	ctx := context.Background()

	original := s.Snapshot().Theme
	s.ToggleTheme(ctx)
	assert.Equal(t, theme.ModeDark, s.Snapshot().Theme.Mode)
	s.ToggleTheme(ctx)

	assert.Equal(t, original, s.Snapshot().Theme)
	assert.Equal(t, []theme.Mode{theme.ModeDark, theme.ModeLight}, applied)
}

func TestSetThemeRejectsUnknownMode(t *testing.T) {
	s, _ := newTestStore(&fakeBackend{})

	require.Error(t, s.SetTheme(context.Background(), theme.Theme{Mode: "sepia"}))
	require.NoError(t, s.SetTheme(context.Background(), theme.Theme{Mode: theme.ModeDark}))
	assert.Equal(t, theme.ModeDark, s.Snapshot().Theme.Mode)
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()

	t.Run("missing init data", func(t *testing.T) {
		backend := &fakeBackend{}
		s, _ := newTestStore(backend)

		err := s.Authenticate(ctx)
		require.Error(t, err)
		assert.True(t, api.IsKind(err, api.KindUnauthorized))
		assert.False(t, s.Snapshot().IsAuthenticated)
		assert.Zero(t, backend.authCalls)
	})

	t.Run("success stores token and user", func(t *testing.T) {
		backend := &fakeBackend{auth: api.OK(api.AuthResult{Token: "jwt", User: user.User{ID: 42, FirstName: "Иван"}})}
		tokens := &api.MemoryTokens{}
		s := New(Deps{Backend: backend, Bridge: &fakeBridge{initData: "query_id=1"}, Tokens: tokens})

		require.NoError(t, s.Authenticate(ctx))
		require.NoError(t, s.Authenticate(ctx))

		snapshot := s.Snapshot()
		assert.True(t, snapshot.IsAuthenticated)
		require.NotNil(t, snapshot.User)
		assert.Equal(t, int64(42), snapshot.User.ID)

		token, err := tokens.LoadToken(ctx)
		require.NoError(t, err)
		assert.Equal(t, "jwt", token)
	})

	t.Run("rejection signs out", func(t *testing.T) {
		s := New(Deps{Backend: &fakeBackend{}, Bridge: &fakeBridge{initData: "bad"}})

		err := s.Authenticate(ctx)
		require.Error(t, err)
		assert.True(t, api.IsKind(err, api.KindUnauthorized))
		assert.False(t, s.Snapshot().IsAuthenticated)
	})
}

func TestLogoutClearsSession(t *testing.T) {
	backend := &fakeBackend{
		auth:   api.OK(api.AuthResult{Token: "jwt", User: user.User{ID: 1}}),
		orders: api.OK([]order.Order{{ID: 1}}),
	}
	tokens := &api.MemoryTokens{}
	s := New(Deps{Backend: backend, Bridge: &fakeBridge{initData: "x"}, Tokens: tokens})
	ctx := context.Background()

	require.NoError(t, s.Authenticate(ctx))
	require.NoError(t, s.FetchOrders(ctx))
	_, _ = s.AddToCart(ctx, product(1, 10), 1)

	s.Logout(ctx)

	snapshot := s.Snapshot()
	assert.False(t, snapshot.IsAuthenticated)
	assert.Nil(t, snapshot.User)
	assert.Empty(t, snapshot.Cart)
	assert.Empty(t, snapshot.Orders)

	token, _ := tokens.LoadToken(ctx)
	assert.Empty(t, token)
}

func TestFetchFailureKeepsList(t *testing.T) {
	calls := 0
	backend := &fakeBackend{games: func() *api.Response[[]catalog.Game] {
		calls++
		if calls == 1 {
			return api.OK([]catalog.Game{{ID: 1, Name: "Genshin Impact"}})
		}
		return api.Fail[[]catalog.Game](api.KindNetwork, 0, "Ошибка сети")
	}}
	s, _ := newTestStore(backend)
	ctx := context.Background()

	require.NoError(t, s.FetchGames(ctx))
	err := s.FetchGames(ctx)
	require.Error(t, err)
	assert.True(t, api.IsKind(err, api.KindNetwork))

	games := s.Snapshot().Games
	require.Len(t, games, 1)
	assert.Equal(t, "Genshin Impact", games[0].Name)
	assert.False(t, s.Snapshot().IsLoading)
}

func TestFetchReplacesLists(t *testing.T) {
	backend := &fakeBackend{
		popular:    api.OK([]catalog.Game{{ID: 3, IsPopular: true}}),
		products:   api.OK(api.Paginated[catalog.Product]{Data: []catalog.Product{product(1, 10), product(2, 20)}, Total: 2}),
		categories: api.OK([]catalog.Category{{ID: 5, GameID: 1, Name: "Кристаллы"}}),
	}
	s, _ := newTestStore(backend)
	ctx := context.Background()

	require.NoError(t, s.FetchPopularGames(ctx))
	require.NoError(t, s.FetchProducts(ctx, 1, catalog.FilterOptions{}))
	require.NoError(t, s.FetchCategories(ctx, 1))

	snapshot := s.Snapshot()
	assert.Len(t, snapshot.PopularGames, 1)
	assert.Len(t, snapshot.Products, 2)
	assert.Len(t, snapshot.Categories, 1)
}

func TestCreateOrderSurvivesEarlierOrdersFetch(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	backend := &fakeBackend{
		ordersFn: func() *api.Response[[]order.Order] {
			close(started)
			<-release
			return api.OK([]order.Order{{ID: 1, OrderNumber: "ORD-1"}})
		},
		createOrder: api.OK(order.Order{ID: 2, OrderNumber: "ORD-2"}),
	}
	s, _ := newTestStore(backend)
	ctx := context.Background()

	done := make(chan error)
	go func() { done <- s.FetchOrders(ctx) }()
	<-started

	_, err := s.CreateOrder(ctx, order.CreateRequest{PaymentMethod: "card"})
	require.NoError(t, err)
	close(release)
	require.NoError(t, <-done)

	orders := s.Snapshot().Orders
	require.Len(t, orders, 1)
	assert.Equal(t, "ORD-2", orders[0].OrderNumber)
	assert.False(t, s.Snapshot().IsLoading)
}

func TestStaleFetchIsDropped(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var mu sync.Mutex
	calls := 0

	backend := &fakeBackend{games: func() *api.Response[[]catalog.Game] {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			close(started)
			<-release
			return api.OK([]catalog.Game{{ID: 1, Name: "old"}})
		}
		return api.OK([]catalog.Game{{ID: 2, Name: "new"}})
	}}
	s, _ := newTestStore(backend)
	ctx := context.Background()

	done := make(chan error)
	go func() { done <- s.FetchGames(ctx) }()
	<-started

	require.NoError(t, s.FetchGames(ctx))
	close(release)
	require.NoError(t, <-done)

	games := s.Snapshot().Games
	require.Len(t, games, 1)
	assert.Equal(t, "new", games[0].Name)
}

func TestPersistsOnEveryCartChange(t *testing.T) {
	s, persister := newTestStore(&fakeBackend{})
	ctx := context.Background()

	_, _ = s.AddToCart(ctx, product(1, 10), 1)
	_, _ = s.AddToCart(ctx, product(1, 10), 1)
	s.UpdateCartItemQuantity(ctx, 1, 5)
	assert.Equal(t, 3, persister.Saves())

	saved, err := persister.Load(ctx)
	require.NoError(t, err)
	require.Len(t, saved.Cart, 1)
	assert.Equal(t, 5, saved.Cart[0].Quantity)
}

func TestRestore(t *testing.T) {
	ctx := context.Background()
	persister := &MemoryPersister{}
	require.NoError(t, persister.Save(ctx, Persisted{
		Theme: theme.Theme{Mode: theme.ModeDark},
		Cart: []CartItem{
			{Product: product(1, 10), Quantity: 2},
			{Product: product(1, 10), Quantity: 3},
			{Product: product(2, 10), Quantity: 0},
		},
		User:            &user.User{ID: 9},
		IsAuthenticated: true,
	}))

	s := New(Deps{Backend: &fakeBackend{}, Persister: persister})
	require.NoError(t, s.Restore(ctx))

	snapshot := s.Snapshot()
	assert.Equal(t, theme.ModeDark, snapshot.Theme.Mode)
	require.Len(t, snapshot.Cart, 1)
	assert.Equal(t, 5, snapshot.Cart[0].Quantity)
	assert.True(t, snapshot.IsAuthenticated)
}

func TestBootstrap(t *testing.T) {
	backend := &fakeBackend{
		auth:    api.OK(api.AuthResult{Token: "jwt", User: user.User{ID: 1}}),
		games:   func() *api.Response[[]catalog.Game] { return api.OK([]catalog.Game{{ID: 1}, {ID: 2}}) },
		popular: api.OK([]catalog.Game{{ID: 2, IsPopular: true}}),
	}
	bridge := &fakeBridge{initData: "x", scheme: theme.ModeDark}
	var applied theme.Theme
	s := New(Deps{Backend: backend, Bridge: bridge, OnTheme: func(t theme.Theme) { applied = t }})

	require.NoError(t, s.Bootstrap(context.Background()))

	snapshot := s.Snapshot()
	assert.Equal(t, 1, bridge.inits)
	assert.Equal(t, theme.ModeDark, applied.Mode)
	assert.True(t, snapshot.IsAuthenticated)
	assert.Len(t, snapshot.Games, 2)
	assert.Len(t, snapshot.PopularGames, 1)
	assert.False(t, snapshot.IsLoading)
}

func TestBootstrapPrefersStoredTheme(t *testing.T) {
	ctx := context.Background()
	persister := &MemoryPersister{}
	require.NoError(t, persister.Save(ctx, Persisted{Theme: theme.Theme{Mode: theme.ModeLight}}))

	s := New(Deps{Backend: &fakeBackend{}, Bridge: &fakeBridge{scheme: theme.ModeDark}, Persister: persister})
	require.NoError(t, s.Restore(ctx))

	err := s.Bootstrap(ctx)
	require.Error(t, err)
	assert.Equal(t, theme.ModeLight, s.Snapshot().Theme.Mode)
	assert.Empty(t, s.Snapshot().Games)
}

func TestHandleUnauthorizedRequestsReload(t *testing.T) {
	backend := &fakeBackend{auth: api.OK(api.AuthResult{Token: "jwt", User: user.User{ID: 1}})}
	s := New(Deps{Backend: backend, Bridge: &fakeBridge{initData: "x"}})
	ctx := context.Background()

	require.NoError(t, s.Authenticate(ctx))
	_, _ = s.AddToCart(ctx, product(1, 10), 2)

	s.HandleUnauthorized()

	snapshot := s.Snapshot()
	assert.False(t, snapshot.IsAuthenticated)
	assert.Nil(t, snapshot.User)
	assert.Len(t, snapshot.Cart, 1)
	assert.True(t, s.ConsumeReload())
	assert.False(t, s.ConsumeReload())
}

func TestSubscribeCancel(t *testing.T) {
	s, _ := newTestStore(&fakeBackend{})
	ctx := context.Background()

	count := 0
	cancel := s.Subscribe(func(State) { count++ })
	_, _ = s.AddToCart(ctx, product(1, 10), 1)
	cancel()
	cancel()
	_, _ = s.AddToCart(ctx, product(1, 10), 1)

	assert.Equal(t, 1, count)
}

func TestSubscriberMayReadDuringConcurrentUpdates(t *testing.T) {
	s, _ := newTestStore(&fakeBackend{})
	ctx := context.Background()

	var mu sync.Mutex
	seen := 0
	cancel := s.Subscribe(func(State) {
		_ = s.Snapshot()
		_ = s.Bridge()
		mu.Lock()
		seen++
		mu.Unlock()
	})
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		var wg sync.WaitGroup
		for w := 0; w < 2; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < 20; i++ {
					s.ClearCart(ctx)
				}
			}()
		}
		wg.Wait()
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("updates did not finish while a subscriber read the store")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 40, seen)
}

func TestSubscribersSeeChangesInOrder(t *testing.T) {
	s, _ := newTestStore(&fakeBackend{})
	ctx := context.Background()

	var counts []int
	cancel := s.Subscribe(func(st State) { counts = append(counts, st.CartItemCount()) })
	defer cancel()

	for i := 0; i < 5; i++ {
		_, _ = s.AddToCart(ctx, product(1, 10), 1)
	}

	assert.Equal(t, []int{1, 2, 3, 4, 5}, counts)
}

func TestSessionRoutesUnauthorizedToStore(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/telegram":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"success":true,"data":{"token":"jwt","user":{"id":5}}}`))
		default:
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"success":false,"error":"token expired"}`))
		}
	}))
	defer server.Close()

	session := NewSession("s1", SessionConfig{BaseURL: server.URL})
	session.Store.SetBridge(&fakeBridge{initData: "x"})
	ctx := context.Background()

	require.NoError(t, session.Store.Authenticate(ctx))
	err := session.Store.FetchOrders(ctx)
	require.Error(t, err)
	assert.True(t, api.IsKind(err, api.KindUnauthorized))

	assert.False(t, session.Store.Snapshot().IsAuthenticated)
	assert.True(t, session.Store.ConsumeReload())

	token, _ := session.API.Tokens().LoadToken(ctx)
	assert.Empty(t, token)
}

func TestManager(t *testing.T) {
	ctx := context.Background()
	created := 0
	m := NewManager(func(_ context.Context, id string) (*Session, error) {
		created++
		return NewSession(id, SessionConfig{BaseURL: "http://upstream.invalid"}), nil
	})
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	first, err := m.Get(ctx, "a")
	require.NoError(t, err)
	again, err := m.Get(ctx, "a")
	require.NoError(t, err)
	assert.Same(t, first, again)
	assert.Equal(t, 1, created)

	now = now.Add(time.Hour)
	_, err = m.Get(ctx, "b")
	require.NoError(t, err)

	assert.Equal(t, 1, m.Prune(30*time.Minute))
	assert.Equal(t, 1, m.Len())
}

func TestManagerCreatesSessionsOutsideLock(t *testing.T) {
	ctx := context.Background()
	release := make(chan struct{})
	started := make(chan struct{})
	m := NewManager(func(_ context.Context, id string) (*Session, error) {
		if id == "slow" {
			close(started)
			<-release
		}
		return NewSession(id, SessionConfig{BaseURL: "http://upstream.invalid"}), nil
	})

	slow := make(chan *Session)
	go func() {
		session, _ := m.Get(ctx, "slow")
		slow <- session
	}()
	<-started

	fast := make(chan error)
	go func() {
		_, err := m.Get(ctx, "fast")
		fast <- err
	}()

	select {
	case err := <-fast:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("a new session waited for another session's creation")
	}

	close(release)
	first := <-slow
	require.NotNil(t, first)
	again, err := m.Get(ctx, "slow")
	require.NoError(t, err)
	assert.Same(t, first, again)
	assert.Equal(t, 2, m.Len())
}
