package cart

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-cinema-client/internal/domain"
	"github.com/go-cinema-client/internal/infrastructure/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockCartAPI struct{ mock.Mock }

func (m *mockCartAPI) SyncCart(ctx context.Context, items []domain.CartItem) ([]domain.CartItem, error) {
	args := m.Called(ctx, items)
	if r, _ := args.Get(0).([]domain.CartItem); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockCartAPI) FetchCart(ctx context.Context) ([]domain.CartItem, error) {
	args := m.Called(ctx)
	if r, _ := args.Get(0).([]domain.CartItem); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockCartAPI) ValidateCart(ctx context.Context, items []domain.CartItem) (*domain.CartValidation, error) {
	args := m.Called(ctx, items)
	if r, _ := args.Get(0).(*domain.CartValidation); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	return store.New(store.NewMemoryTier(), store.NewFileTier(t.TempDir()+"/state.json"), 30*24*time.Hour, nil)
}

// newLoggedIn builds a cart bound to an identity without a full auth
// stack, by driving the login hook directly.
func newLoggedIn(t *testing.T, st *store.Store, client CartAPI, userID string) *service {
	t.Helper()
	svc := NewService(st, client, nil).(*service)
	svc.handleLogin(userID)
	return svc
}

func addReq(productID string, qty int) domain.AddCartItemRequest {
	return domain.AddCartItemRequest{
		ProductID: productID,
		Name:      "Dune ticket",
		UnitPrice: 1500,
		Quantity:  qty,
	}
}

// --- Add ---

func TestAdd_AccumulatesInsteadOfDuplicating(t *testing.T) {
	svc := newLoggedIn(t, newTestStore(t), &mockCartAPI{}, "u1")
	ctx := context.Background()

	require.NoError(t, svc.Add(ctx, addReq("p1", 2)))
	require.NoError(t, svc.Add(ctx, addReq("p1", 3)))

	assert.Equal(t, 1, svc.Count())
	assert.Equal(t, 5, svc.Quantity("p1"))
}

func TestAdd_RejectsWholeAddOverLimit(t *testing.T) {
	svc := newLoggedIn(t, newTestStore(t), &mockCartAPI{}, "u1")
	ctx := context.Background()

	require.NoError(t, svc.Add(ctx, addReq("p1", 9)))

	// 9+2 exceeds the global ceiling of 10; nothing is partially filled.
	err := svc.Add(ctx, addReq("p1", 2))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCapacity)
	assert.Equal(t, 9, svc.Quantity("p1"))
}

func TestAdd_RespectsMaxStockBelowGlobalCeiling(t *testing.T) {
	svc := newLoggedIn(t, newTestStore(t), &mockCartAPI{}, "u1")
	ctx := context.Background()

	req := addReq("p1", 4)
	req.MaxStock = 3
	err := svc.Add(ctx, req)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCapacity)
	assert.False(t, svc.Has("p1"))
}

func TestAdd_InvalidRequestRejected(t *testing.T) {
	svc := newLoggedIn(t, newTestStore(t), &mockCartAPI{}, "u1")

	err := svc.Add(context.Background(), domain.AddCartItemRequest{ProductID: "p1", Name: "x", Quantity: 0})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

// --- UpdateQuantity / Remove ---

func TestUpdateQuantity_ZeroRemovesLine(t *testing.T) {
	svc := newLoggedIn(t, newTestStore(t), &mockCartAPI{}, "u1")
	ctx := context.Background()

	require.NoError(t, svc.Add(ctx, addReq("p1", 2)))
	require.NoError(t, svc.UpdateQuantity(ctx, "p1", 0))

	assert.False(t, svc.Has("p1"))
	assert.Equal(t, 0, svc.Count())
}

func TestUpdateQuantity_ClampsToLimit(t *testing.T) {
	svc := newLoggedIn(t, newTestStore(t), &mockCartAPI{}, "u1")
	ctx := context.Background()

	require.NoError(t, svc.Add(ctx, addReq("p1", 2)))

	err := svc.UpdateQuantity(ctx, "p1", domain.MaxQuantityPerItem+1)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCapacity)
	assert.Equal(t, 2, svc.Quantity("p1"))
}

func TestRemove_UnknownProduct(t *testing.T) {
	svc := newLoggedIn(t, newTestStore(t), &mockCartAPI{}, "u1")

	err := svc.Remove(context.Background(), "missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// --- persistence across identity transitions ---

func TestGuestCart_IsMemoryOnly(t *testing.T) {
	st := newTestStore(t)
	svc := NewService(st, &mockCartAPI{}, nil).(*service)
	ctx := context.Background()

	require.NoError(t, svc.Add(ctx, addReq("p1", 2)))

	assert.Equal(t, 2, svc.Quantity("p1"))
	assert.False(t, st.Has(ctx, store.CartKey("")), "no key for the empty identity")
}

func TestLogoutLogin_RestoresPersistedCart(t *testing.T) {
	st := newTestStore(t)
	svc := newLoggedIn(t, st, &mockCartAPI{}, "u1")
	ctx := context.Background()

	require.NoError(t, svc.Add(ctx, addReq("p1", 3)))

	svc.handleLogout()
	assert.Equal(t, 0, svc.Count(), "logout drops the in-memory copy")

	svc.handleLogin("u1")
	assert.Equal(t, 3, svc.Quantity("p1"), "login restores the persisted copy")
}

func TestLogin_DifferentUserSeesOwnCart(t *testing.T) {
	st := newTestStore(t)
	svc := newLoggedIn(t, st, &mockCartAPI{}, "u1")
	ctx := context.Background()

	require.NoError(t, svc.Add(ctx, addReq("p1", 3)))

	svc.handleLogout()
	svc.handleLogin("u2")

	assert.Equal(t, 0, svc.Count())
}

// --- merge ---

func TestMergeCarts_SumsAndClampsOnConflict(t *testing.T) {
	server := []domain.CartItem{
		{ItemID: "s1", ProductID: "p1", Name: "Dune", Quantity: 2, MaxStock: 5},
	}
	local := []domain.CartItem{
		{ItemID: "l1", ProductID: "p1", Name: "Dune", Quantity: 4},
		{ItemID: "l2", ProductID: "p2", Name: "Arrival", Quantity: 1},
	}

	merged := mergeCarts(server, local)

	require.Len(t, merged, 2)
	// 2+4 clamped to the server-side stock ceiling of 5.
	assert.Equal(t, "p1", merged[0].ProductID)
	assert.Equal(t, 5, merged[0].Quantity)
	assert.Equal(t, "p2", merged[1].ProductID)
	assert.Equal(t, 1, merged[1].Quantity)
}

func TestMergeCarts_LocalStockCeilingWinsWhenKnown(t *testing.T) {
	server := []domain.CartItem{{ProductID: "p1", Quantity: 2, MaxStock: 8}}
	local := []domain.CartItem{{ProductID: "p1", Quantity: 4, MaxStock: 3}}

	merged := mergeCarts(server, local)

	require.Len(t, merged, 1)
	assert.Equal(t, 3, merged[0].Quantity)
}

func TestMergeCarts_GlobalCeilingAlwaysApplies(t *testing.T) {
	server := []domain.CartItem{{ProductID: "p1", Quantity: 8, MaxStock: 50}}
	local := []domain.CartItem{{ProductID: "p1", Quantity: 8, MaxStock: 50}}

	merged := mergeCarts(server, local)

	require.Len(t, merged, 1)
	assert.Equal(t, domain.MaxQuantityPerItem, merged[0].Quantity)
}

func TestMergeCarts_IsDeterministic(t *testing.T) {
	server := []domain.CartItem{
		{ProductID: "p1", Quantity: 1},
		{ProductID: "p2", Quantity: 2},
	}
	local := []domain.CartItem{
		{ProductID: "p3", Quantity: 3},
		{ProductID: "p1", Quantity: 1},
	}

	first := mergeCarts(server, local)
	second := mergeCarts(server, local)

	assert.Equal(t, first, second)
	// Server order first, local-only appended in local order.
	assert.Equal(t, "p1", first[0].ProductID)
	assert.Equal(t, "p2", first[1].ProductID)
	assert.Equal(t, "p3", first[2].ProductID)
}

func TestMergeOnLogin_AdoptsAndPersistsMergedCart(t *testing.T) {
	st := newTestStore(t)
	client := &mockCartAPI{}
	client.On("FetchCart", mock.Anything).Return([]domain.CartItem{
		{ItemID: "s1", ProductID: "p1", Name: "Dune", Quantity: 2, MaxStock: 5},
	}, nil)
	client.On("SyncCart", mock.Anything, mock.Anything).Return([]domain.CartItem{}, nil).Maybe()

	svc := newLoggedIn(t, st, client, "u1")
	require.NoError(t, svc.Add(context.Background(), addReq("p1", 4)))

	merged := svc.MergeOnLogin(context.Background())

	require.Len(t, merged, 1)
	assert.Equal(t, 5, merged[0].Quantity)

	var persisted []domain.CartItem
	require.True(t, st.Get(context.Background(), store.CartKey("u1"), &persisted))
	assert.Equal(t, 5, persisted[0].Quantity)
}

func TestMergeOnLogin_FetchFailureKeepsLocal(t *testing.T) {
	client := &mockCartAPI{}
	client.On("FetchCart", mock.Anything).Return(nil, errors.New("network down"))

	svc := newLoggedIn(t, newTestStore(t), client, "u1")
	require.NoError(t, svc.Add(context.Background(), addReq("p1", 4)))

	merged := svc.MergeOnLogin(context.Background())

	require.Len(t, merged, 1)
	assert.Equal(t, 4, merged[0].Quantity)
	assert.Equal(t, 4, svc.Quantity("p1"))
}

// --- sync / load ---

func TestSyncWithBackend_AdoptsServerReply(t *testing.T) {
	client := &mockCartAPI{}
	client.On("SyncCart", mock.Anything, mock.Anything).Return([]domain.CartItem{
		{ItemID: "s1", ProductID: "p1", Name: "Dune", Quantity: 1},
	}, nil)

	svc := newLoggedIn(t, newTestStore(t), client, "u1")
	require.NoError(t, svc.Add(context.Background(), addReq("p1", 4)))

	items := svc.SyncWithBackend(context.Background())

	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Quantity, "server is authoritative post-sync")
	assert.Equal(t, 1, svc.Quantity("p1"))
}

func TestSyncWithBackend_FailureKeepsInMemoryCopy(t *testing.T) {
	client := &mockCartAPI{}
	client.On("SyncCart", mock.Anything, mock.Anything).Return(nil, errors.New("network down"))

	svc := newLoggedIn(t, newTestStore(t), client, "u1")
	require.NoError(t, svc.Add(context.Background(), addReq("p1", 4)))

	items := svc.SyncWithBackend(context.Background())

	require.Len(t, items, 1)
	assert.Equal(t, 4, items[0].Quantity)
	assert.Equal(t, 4, svc.Quantity("p1"))
}

func TestLoadFromBackend_FailureLeavesMemoryUntouched(t *testing.T) {
	client := &mockCartAPI{}
	client.On("FetchCart", mock.Anything).Return(nil, errors.New("network down"))

	svc := newLoggedIn(t, newTestStore(t), client, "u1")
	require.NoError(t, svc.Add(context.Background(), addReq("p1", 4)))

	items := svc.LoadFromBackend(context.Background())

	assert.Empty(t, items)
	assert.Equal(t, 4, svc.Quantity("p1"))
}

func TestSyncWithBackend_ResultAfterLogoutIsDropped(t *testing.T) {
	st := newTestStore(t)
	client := &mockCartAPI{}
	svc := newLoggedIn(t, st, client, "user-a")
	ctx := context.Background()
	require.NoError(t, svc.Add(ctx, addReq("pA", 2)))

	// The identity logs out while the request is in flight; the reply
	// must not be installed for whoever comes next.
	client.On("SyncCart", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { svc.handleLogout() }).
		Return([]domain.CartItem{{ItemID: "l1", ProductID: "pA", Name: "Dune ticket", Quantity: 2}}, nil)

	items := svc.SyncWithBackend(ctx)

	assert.Empty(t, items)
	assert.Equal(t, 0, svc.Count())
	assert.False(t, st.Has(ctx, store.CartKey("")))
}

func TestSyncWithBackend_IdentitySwitchMidFlightDropsResult(t *testing.T) {
	st := newTestStore(t)
	client := &mockCartAPI{}
	svc := newLoggedIn(t, st, client, "user-a")
	ctx := context.Background()
	require.NoError(t, svc.Add(ctx, addReq("pA", 2)))

	client.On("SyncCart", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			svc.handleLogout()
			svc.handleLogin("user-b")
		}).
		Return([]domain.CartItem{{ItemID: "l1", ProductID: "pA", Name: "Dune ticket", Quantity: 2}}, nil)

	svc.SyncWithBackend(ctx)

	assert.Equal(t, 0, svc.Quantity("pA"), "user B never sees user A's lines")
	assert.False(t, st.Has(ctx, store.CartKey("user-b")), "nothing persisted under user B's key")

	var persisted []domain.CartItem
	require.True(t, st.Get(ctx, store.CartKey("user-a"), &persisted))
	require.Len(t, persisted, 1)
	assert.Equal(t, "pA", persisted[0].ProductID, "user A's persisted copy is untouched")
}

func TestMergeOnLogin_IdentitySwitchMidFlightDropsResult(t *testing.T) {
	st := newTestStore(t)
	client := &mockCartAPI{}
	svc := newLoggedIn(t, st, client, "user-a")
	ctx := context.Background()
	require.NoError(t, svc.Add(ctx, addReq("pA", 2)))

	client.On("FetchCart", mock.Anything).
		Run(func(mock.Arguments) {
			svc.handleLogout()
			svc.handleLogin("user-b")
		}).
		Return([]domain.CartItem{{ItemID: "s1", ProductID: "pServer", Quantity: 1}}, nil)

	merged := svc.MergeOnLogin(ctx)

	assert.Empty(t, merged)
	assert.Equal(t, 0, svc.Count())
	assert.False(t, st.Has(ctx, store.CartKey("user-b")))
}

func TestValidate_WrapsRemoteFailure(t *testing.T) {
	client := &mockCartAPI{}
	client.On("ValidateCart", mock.Anything, mock.Anything).Return(nil, domain.ErrRemote)

	svc := newLoggedIn(t, newTestStore(t), client, "u1")

	_, err := svc.Validate(context.Background())
	assert.ErrorIs(t, err, domain.ErrRemote)
}

// --- queries ---

func TestQueries(t *testing.T) {
	svc := newLoggedIn(t, newTestStore(t), &mockCartAPI{}, "u1")
	ctx := context.Background()

	cheap := addReq("p1", 2)
	cheap.Name = "Arrival"
	cheap.UnitPrice = 500
	pricey := addReq("p2", 1)
	pricey.Name = "Dune Part Two"
	pricey.UnitPrice = 2500
	require.NoError(t, svc.Add(ctx, cheap))
	require.NoError(t, svc.Add(ctx, pricey))

	assert.Equal(t, 2, svc.Count())
	assert.Equal(t, 3, svc.TotalQuantity())
	assert.Equal(t, int64(2*500+1*2500), svc.Total())

	inRange := svc.FilterByPrice(0, 1000)
	require.Len(t, inRange, 1)
	assert.Equal(t, "p1", inRange[0].ProductID)

	found := svc.Search("dune")
	require.Len(t, found, 1)
	assert.Equal(t, "p2", found[0].ProductID)

	recent := svc.SortedByRecency()
	require.Len(t, recent, 2)
	assert.GreaterOrEqual(t, recent[0].AddedAt, recent[1].AddedAt)
}
