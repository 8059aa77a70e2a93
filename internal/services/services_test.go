package services_test

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusmart/internal/domain"
	"campusmart/internal/repos"
	"campusmart/internal/services"
	"campusmart/internal/store"
	"campusmart/internal/validate"
)

// flakyBackend fails writes to the named document while fail is set.
type flakyBackend struct {
	store.Backend
	doc  string
	fail atomic.Bool
}

var errDiskFull = errors.New("disk full")

func (b *flakyBackend) Write(name string, data []byte, expect int64) error {
	if name == b.doc && b.fail.Load() {
		return errDiskFull
	}
	return b.Backend.Write(name, data, expect)
}

type env struct {
	backend  *flakyBackend
	stores   *repos.Stores
	inv      *services.InventoryService
	cart     *services.CartService
	orders   *services.OrderService
	pickups  *services.PickupService
	checkout *services.CheckoutService
}

func newEnv(t *testing.T, flakyDoc string) *env {
	t.Helper()
	fb, err := store.NewFileBackend(t.TempDir())
	require.NoError(t, err)
	b := &flakyBackend{Backend: fb, doc: flakyDoc}
	st, err := repos.Open(b)
	require.NoError(t, err)

	prods := repos.NewProductRepo(st.Products)
	inv := repos.NewInventoryRepo(st.Products)
	require.NoError(t, prods.Add(domain.Product{ID: "p1", Name: "Widget", Price: 1000, Stock: 5, Phone: "081111111"}))
	require.NoError(t, prods.Add(domain.Product{ID: "p2", Name: "Gadget", Price: 2500, Stock: 2}))

	e := &env{backend: b, stores: st}
	e.inv = services.NewInventoryService(inv, prods)
	e.cart = services.NewCartService(repos.NewCartRepo(st.Carts), prods, inv)
	e.orders = services.NewOrderService(repos.NewOrderRepo(st.Orders))
	e.pickups = services.NewPickupService(repos.NewLocationRepo(st.Locations))
	e.checkout = services.NewCheckoutService(e.cart, e.orders, e.pickups)
	return e
}

func TestChangeStock_RejectsOverdraw(t *testing.T) {
	e := newEnv(t, "")

	require.NoError(t, e.inv.ChangeStock("p1", -3))
	assert.Equal(t, 2, e.inv.GetStock("p1"))

	err := e.inv.ChangeStock("p1", -3)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 2, e.inv.GetStock("p1"))

	require.NoError(t, e.inv.ChangeStock("p1", 3))
	assert.Equal(t, 5, e.inv.GetStock("p1"))
}

func TestChangeStock_LastUnitRace(t *testing.T) {
	e := newEnv(t, "")
	require.NoError(t, e.inv.SetStock("p1", 1))

	var ok atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if e.inv.ChangeStock("p1", -1) == nil {
				ok.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), ok.Load())
	assert.Equal(t, 0, e.inv.GetStock("p1"))
}

func TestCheckAvailability(t *testing.T) {
	e := newEnv(t, "")
	e.inv.LowStockAt = 3

	a, err := e.inv.CheckAvailability("p1")
	require.NoError(t, err)
	assert.Equal(t, domain.Availability{Status: "IN_STOCK", Qty: 5}, a)

	a, err = e.inv.CheckAvailability("p2")
	require.NoError(t, err)
	assert.Equal(t, "LOW_STOCK", a.Status)

	require.NoError(t, e.inv.SetStock("p2", 0))
	a, err = e.inv.CheckAvailability("p2")
	require.NoError(t, err)
	assert.Equal(t, "OUT_OF_STOCK", a.Status)

	_, err = e.inv.CheckAvailability("nope")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestCart_AddMergesLines(t *testing.T) {
	e := newEnv(t, "")
	require.NoError(t, e.inv.SetStock("p1", 10))

	v, err := e.cart.Add("s1", "p1", 2)
	require.NoError(t, err)
	require.Len(t, v.Lines, 1)
	assert.Equal(t, int64(2000), v.Total)

	v, err = e.cart.Add("s1", "p1", 3)
	require.NoError(t, err)
	require.Len(t, v.Lines, 1)
	assert.Equal(t, 5, v.Lines[0].Quantity)
	assert.Equal(t, int64(5000), v.Total)
	assert.Equal(t, "Widget", v.Lines[0].Name)
	assert.Equal(t, 5, e.inv.GetStock("p1"))
}

func TestCart_AddRemoveRoundTrip(t *testing.T) {
	e := newEnv(t, "")

	_, err := e.cart.Add("s1", "p1", 4)
	require.NoError(t, err)
	assert.Equal(t, 1, e.inv.GetStock("p1"))

	v, err := e.cart.Remove("s1", "p1")
	require.NoError(t, err)
	assert.Empty(t, v.Lines)
	assert.Equal(t, 5, e.inv.GetStock("p1"))

	// removing again is a no-op
	_, err = e.cart.Remove("s1", "p1")
	assert.NoError(t, err)
	assert.Equal(t, 5, e.inv.GetStock("p1"))
}

func TestCart_AddRejections(t *testing.T) {
	e := newEnv(t, "")

	_, err := e.cart.Add("s1", "p1", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = e.cart.Add("s1", "p1", 6)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Empty(t, e.cart.View("s1").Lines)
	assert.Equal(t, 5, e.inv.GetStock("p1"))

	_, err = e.cart.Add("s1", "ghost", 1)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	e.cart.MaxItems = 1
	_, err = e.cart.Add("s1", "p1", 1)
	require.NoError(t, err)
	_, err = e.cart.Add("s1", "p2", 1)
	assert.ErrorIs(t, err, domain.ErrCartFull)
	assert.Equal(t, 2, e.inv.GetStock("p2"))
}

func TestCart_AddCompensatesFailedSave(t *testing.T) {
	e := newEnv(t, "carts")
	e.backend.fail.Store(true)

	_, err := e.cart.Add("s1", "p1", 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, errDiskFull)
	assert.Equal(t, 5, e.inv.GetStock("p1"))
	assert.Empty(t, e.cart.View("s1").Lines)
}

func TestCart_RemoveKeepsStockWhenSaveFails(t *testing.T) {
	e := newEnv(t, "carts")
	_, err := e.cart.Add("s1", "p1", 2)
	require.NoError(t, err)

	e.backend.fail.Store(true)
	_, err = e.cart.Remove("s1", "p1")
	assert.ErrorIs(t, err, errDiskFull)
	assert.Equal(t, 3, e.inv.GetStock("p1"))
	assert.Len(t, e.cart.View("s1").Lines, 1)
}

func TestCart_ClearReleasesAll(t *testing.T) {
	e := newEnv(t, "")
	_, err := e.cart.Add("s1", "p1", 2)
	require.NoError(t, err)
	_, err = e.cart.Add("s1", "p2", 2)
	require.NoError(t, err)

	require.NoError(t, e.cart.Clear("s1"))
	assert.Empty(t, e.cart.View("s1").Lines)
	assert.Equal(t, 5, e.inv.GetStock("p1"))
	assert.Equal(t, 2, e.inv.GetStock("p2"))
}

func TestCart_ClearDropsOrphanLines(t *testing.T) {
	e := newEnv(t, "")
	_, err := e.cart.Add("s1", "p1", 1)
	require.NoError(t, err)
	_, err = e.cart.Add("s1", "p2", 1)
	require.NoError(t, err)

	// p2 leaves the catalog while reserved
	require.NoError(t, e.stores.Products.Update(func(c *repos.Catalog) error {
		delete(*c, "p2")
		return nil
	}))

	require.NoError(t, e.cart.Clear("s1"))
	assert.Empty(t, e.cart.View("s1").Lines)
	assert.Equal(t, 5, e.inv.GetStock("p1"))
}

func TestCart_ClearFailedSaveRestoresReservations(t *testing.T) {
	e := newEnv(t, "carts")
	_, err := e.cart.Add("s1", "p1", 2)
	require.NoError(t, err)

	e.backend.fail.Store(true)
	err = e.cart.Clear("s1")
	assert.ErrorIs(t, err, errDiskFull)
	assert.Len(t, e.cart.View("s1").Lines, 1)
	assert.Equal(t, 3, e.inv.GetStock("p1"))
}

func TestCart_RemoveKeepsLineWhenRestoreFails(t *testing.T) {
	e := newEnv(t, "products")
	_, err := e.cart.Add("s1", "p1", 2)
	require.NoError(t, err)

	e.backend.fail.Store(true)
	_, err = e.cart.Remove("s1", "p1")
	assert.ErrorIs(t, err, errDiskFull)
	assert.Len(t, e.cart.View("s1").Lines, 1)

	e.backend.fail.Store(false)
	assert.Equal(t, 3, e.inv.GetStock("p1"))
}

func TestCart_ClearKeepsLinesWhoseRestoreFailed(t *testing.T) {
	e := newEnv(t, "products")
	_, err := e.cart.Add("s1", "p1", 2)
	require.NoError(t, err)
	_, err = e.cart.Add("s1", "p2", 1)
	require.NoError(t, err)

	e.backend.fail.Store(true)
	err = e.cart.Clear("s1")
	assert.ErrorIs(t, err, errDiskFull)
	assert.Len(t, e.cart.View("s1").Lines, 2)

	e.backend.fail.Store(false)
	assert.Equal(t, 3, e.inv.GetStock("p1"))
	assert.Equal(t, 1, e.inv.GetStock("p2"))

	// once the store recovers the retained lines release normally
	require.NoError(t, e.cart.Clear("s1"))
	assert.Empty(t, e.cart.View("s1").Lines)
	assert.Equal(t, 5, e.inv.GetStock("p1"))
	assert.Equal(t, 2, e.inv.GetStock("p2"))
}

func TestCart_ConcurrentAddsSameSession(t *testing.T) {
	e := newEnv(t, "")
	require.NoError(t, e.inv.SetStock("p1", 50))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = e.cart.Add("s1", "p1", 1)
		}()
	}
	wg.Wait()

	v := e.cart.View("s1")
	require.Len(t, v.Lines, 1)
	assert.Equal(t, 20, v.Lines[0].Quantity)
	assert.Equal(t, 30, e.inv.GetStock("p1"))
}

func TestCart_ReleaseStale(t *testing.T) {
	e := newEnv(t, "")
	_, err := e.cart.Add("old", "p1", 3)
	require.NoError(t, err)

	n, err := e.cart.ReleaseStale(0)
	require.NoError(t, err)
	assert.Zero(t, n)

	time.Sleep(20 * time.Millisecond)
	n, err = e.cart.ReleaseStale(10 * time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 5, e.inv.GetStock("p1"))
	assert.Empty(t, e.cart.View("old").Lines)
}

func TestOrders_CreateRecomputesTotal(t *testing.T) {
	e := newEnv(t, "")
	o, err := e.orders.Create(domain.Order{
		ID: "ORD-1", UserID: "u1", Fullname: "Sari", Phone: "081234567", PickupLocation: "loc_library",
		Items: []domain.OrderItem{{Name: "Widget", Price: 1000, Quantity: 2}, {Name: "Gadget", Price: 2500, Quantity: 2}},
		Total: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7000), o.Total)
	assert.Equal(t, domain.StatusPending, o.Status)
	assert.Equal(t, domain.PaymentPending, o.PaymentStatus)
	assert.False(t, o.CreatedAt.IsZero())

	stored, err := e.orders.Get("ORD-1")
	require.NoError(t, err)
	assert.Equal(t, int64(7000), stored.Total)
}

func TestOrders_CreateValidation(t *testing.T) {
	e := newEnv(t, "")
	base := domain.Order{
		ID: "ORD-2", UserID: "u1", Fullname: "Sari", Phone: "081234567", PickupLocation: "loc_library",
		Items: []domain.OrderItem{{Name: "Widget", Price: 1000, Quantity: 1}},
	}

	cases := map[string]func(o *domain.Order){
		"fullname":          func(o *domain.Order) { o.Fullname = "" },
		"items":             func(o *domain.Order) { o.Items = nil },
		"items[0].quantity": func(o *domain.Order) { o.Items = []domain.OrderItem{{Name: "x", Price: 1}} },
		"pickup_location":   func(o *domain.Order) { o.PickupLocation = " " },
	}
	for field, mut := range cases {
		o := base
		mut(&o)
		_, err := e.orders.Create(o)
		var ve *domain.ValidationError
		require.ErrorAs(t, err, &ve, field)
		assert.Equal(t, field, ve.Field)
	}
	assert.Empty(t, e.orders.ListAll())

	_, err := e.orders.Create(base)
	require.NoError(t, err)
	_, err = e.orders.Create(base)
	assert.ErrorIs(t, err, domain.ErrDuplicateOrder)
}

func TestOrders_StatusTransitions(t *testing.T) {
	e := newEnv(t, "")
	_, err := e.orders.Create(domain.Order{
		ID: "ORD-3", UserID: "u1", Fullname: "Sari", Phone: "081234567", PickupLocation: "loc_library",
		Items: []domain.OrderItem{{Name: "Widget", Price: 1000, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = e.orders.UpdateStatus("ORD-3", "delivered")
	assert.ErrorIs(t, err, domain.ErrIllegalTransition)

	o, err := e.orders.UpdateStatus("ORD-3", "confirmed")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, o.Status)
	require.NotNil(t, o.UpdatedAt)

	o, err = e.orders.UpdateStatus("ORD-3", "delivered")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDelivered, o.Status)

	_, err = e.orders.UpdateStatus("ORD-3", "pending")
	assert.ErrorIs(t, err, domain.ErrIllegalTransition)

	_, err = e.orders.UpdateStatus("ORD-3", "shipped")
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	_, err = e.orders.UpdateStatus("ORD-404", "confirmed")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)

	o, err = e.orders.UpdatePaymentStatus("ORD-3", "paid")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, o.PaymentStatus)

	_, err = e.orders.UpdatePaymentStatus("ORD-3", "refunded")
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestOrders_Statistics(t *testing.T) {
	e := newEnv(t, "")
	for i, id := range []string{"ORD-A", "ORD-B"} {
		_, err := e.orders.Create(domain.Order{
			ID: id, UserID: "u1", Fullname: "Sari", Phone: "081234567", PickupLocation: "loc_library",
			Items: []domain.OrderItem{{Name: "Widget", Price: 1000, Quantity: i + 1}},
		})
		require.NoError(t, err)
	}
	_, err := e.orders.UpdateStatus("ORD-B", "cancelled")
	require.NoError(t, err)

	st := e.orders.Statistics()
	assert.Equal(t, 2, st.TotalOrders)
	assert.Equal(t, int64(3000), st.TotalRevenue)
	assert.Equal(t, 1, st.StatusBreakdown[domain.StatusPending])
	assert.Equal(t, 1, st.StatusBreakdown[domain.StatusCancelled])
	assert.Equal(t, 2, st.PaymentBreakdown[domain.PaymentPending])

	require.NoError(t, e.orders.Delete("ORD-A"))
	require.NoError(t, e.orders.Delete("ORD-A"))
	assert.Len(t, e.orders.ListAll(), 1)
}

func TestPickups(t *testing.T) {
	e := newEnv(t, "")

	assert.Len(t, e.pickups.List(), 3)
	assert.True(t, e.pickups.Exists("loc_library"))
	assert.Equal(t, "Unknown Location", e.pickups.Name("loc_mars"))

	l, err := e.pickups.Update("loc_canteen", validate.LocationPatch{Name: "Kantin Baru"})
	require.NoError(t, err)
	assert.Equal(t, "Kantin Baru", l.Name)
	assert.Equal(t, "Gedung Student Center, Lantai 2", l.Address)

	require.NoError(t, e.pickups.Delete("loc_canteen"))
	assert.ErrorIs(t, e.pickups.Delete("loc_canteen"), domain.ErrLocationNotFound)
	_, err = e.pickups.Get("loc_canteen")
	assert.ErrorIs(t, err, domain.ErrLocationNotFound)
}

func TestCatalog_Search(t *testing.T) {
	e := newEnv(t, "")
	cat := services.NewCatalogService(repos.NewProductRepo(e.stores.Products))

	all, total := cat.Search("", 1, 0)
	assert.Equal(t, 6, total)
	assert.Len(t, all, 6)

	hits, total := cat.Search("  GADGET ", 1, 10)
	require.Equal(t, 1, total)
	assert.Equal(t, "p2", hits[0].ID)

	page2, total := cat.Search("", 2, 4)
	assert.Equal(t, 6, total)
	assert.Len(t, page2, 2)

	past, _ := cat.Search("", 9, 4)
	assert.Empty(t, past)

	far, total := cat.Search("", (1<<61)+1, 12)
	assert.Equal(t, 6, total)
	assert.Empty(t, far)

	_, err := cat.GetProduct("nope")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestInventory_AddAndCreateProduct(t *testing.T) {
	e := newEnv(t, "")

	assert.ErrorIs(t, e.inv.AddProduct(domain.Product{ID: "p3", Name: "Mug", Price: -1}), domain.ErrInvalidProduct)
	require.NoError(t, e.inv.AddProduct(domain.Product{ID: "p3", Name: "Mug", Price: 15000, Stock: 4}))
	assert.ErrorIs(t, e.inv.AddProduct(domain.Product{ID: "p3", Name: "Mug"}), domain.ErrDuplicateProduct)

	next := e.inv.GenerateProductID()
	p, err := e.inv.CreateProduct(validate.ProductForm{Name: " Totebag ", Price: 30000, Stock: 2})
	require.NoError(t, err)
	assert.Equal(t, next, p.ID)
	assert.Equal(t, "Totebag", p.Name)
	assert.Equal(t, 2, e.inv.GetStock(p.ID))

	_, err = e.inv.CreateProduct(validate.ProductForm{Name: "", Price: 1})
	var ve *domain.ValidationError
	assert.ErrorAs(t, err, &ve)
}
