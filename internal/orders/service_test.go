package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	product "github.com/gouravrajak985/project45/internal/products"
	"github.com/gouravrajak985/project45/pkg/db/models"
	"github.com/gouravrajak985/project45/pkg/enums"
	pkgerrors "github.com/gouravrajak985/project45/pkg/errors"
	"github.com/gouravrajak985/project45/pkg/types"
)

type testTxRunner struct {
	db *gorm.DB
}

func (r *testTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

type serviceHarness struct {
	db       *gorm.DB
	svc      *service
	products product.Repository
}

func newServiceHarness(t *testing.T) *serviceHarness {
	t.Helper()
	db := newTestDB(t)
	productsRepo := product.NewRepository(db)
	svc, err := NewService(NewRepository(db), productsRepo, &testTxRunner{db: db}, nil)
	require.NoError(t, err)
	return &serviceHarness{
		db:       db,
		svc:      svc.(*service),
		products: productsRepo,
	}
}

func completeAddress() *types.Address {
	return &types.Address{
		Address:    "1 Main St",
		City:       "Tulsa",
		PostalCode: "74104",
		Country:    "US",
	}
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "expected typed error, got %v", err)
	require.Equal(t, code, typed.Code())
}

func TestServiceCreate_RecomputesTotalsServerSide(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()

	buyer := mustCreateUser(t, h.db, enums.UserRoleBuyer)
	seller := mustCreateUser(t, h.db, enums.UserRoleSeller)
	listing := mustCreateListing(t, h.db, seller.ID, 1500, enums.ProductTypePhysical)

	order, err := h.svc.Create(ctx, Actor{UserID: buyer.ID, Role: enums.UserRoleBuyer}, CreateOrderInput{
		Items:           []CreateOrderItemInput{{ProductID: listing.ID, Qty: 2}},
		ShippingAddress: completeAddress(),
		PaymentMethod:   "stripe",
		TotalPrice:      decimal.RequireFromString("44.50"),
	})
	require.NoError(t, err)

	assert.Equal(t, 3000, order.ItemsCents)
	assert.Equal(t, 1000, order.ShippingCents)
	assert.Equal(t, 450, order.TaxCents)
	assert.Equal(t, 4450, order.TotalCents)
	assert.False(t, order.IsPaid)
	assert.False(t, order.IsDelivered)
	assert.Equal(t, enums.ShippingStatusProcessing, order.ShippingStatus)
	require.Len(t, order.Items, 1)
	assert.Equal(t, seller.ID, order.Items[0].SellerID)
	assert.Equal(t, 1500, order.Items[0].UnitPriceCents)
	require.NotNil(t, order.Buyer)
	assert.Equal(t, buyer.Email, order.Buyer.Email)
}

func TestServiceCreate_AssignsIdentifiers(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()

	buyer := mustCreateUser(t, h.db, enums.UserRoleBuyer)
	seller := mustCreateUser(t, h.db, enums.UserRoleSeller)
	listing := mustCreateListing(t, h.db, seller.ID, 1500, enums.ProductTypePhysical)

	order, err := h.svc.Create(ctx, Actor{UserID: buyer.ID, Role: enums.UserRoleBuyer}, CreateOrderInput{
		Items:           []CreateOrderItemInput{{ProductID: listing.ID, Qty: 2}},
		ShippingAddress: completeAddress(),
		PaymentMethod:   "stripe",
		TotalPrice:      decimal.RequireFromString("44.50"),
	})
	require.NoError(t, err)

	// IDs come from the service, not from a backend-specific column default.
	assert.NotEqual(t, uuid.Nil, order.ID)
	require.Len(t, order.Items, 1)
	assert.NotEqual(t, uuid.Nil, order.Items[0].ID)
	assert.Equal(t, order.ID, order.Items[0].OrderID)

	reloaded, err := h.svc.Get(ctx, Actor{UserID: buyer.ID, Role: enums.UserRoleBuyer}, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, reloaded.ID)
}

func TestServiceCreate_RejectsTotalMismatch(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()

	buyer := mustCreateUser(t, h.db, enums.UserRoleBuyer)
	seller := mustCreateUser(t, h.db, enums.UserRoleSeller)
	listing := mustCreateListing(t, h.db, seller.ID, 1500, enums.ProductTypePhysical)

	_, err := h.svc.Create(ctx, Actor{UserID: buyer.ID}, CreateOrderInput{
		Items:           []CreateOrderItemInput{{ProductID: listing.ID, Qty: 2}},
		ShippingAddress: completeAddress(),
		PaymentMethod:   "stripe",
		TotalPrice:      decimal.RequireFromString("9.99"),
	})
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestServiceCreate_EmptyItems(t *testing.T) {
	h := newServiceHarness(t)
	buyer := mustCreateUser(t, h.db, enums.UserRoleBuyer)

	_, err := h.svc.Create(context.Background(), Actor{UserID: buyer.ID}, CreateOrderInput{
		PaymentMethod: "stripe",
		TotalPrice:    decimal.Zero,
	})
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestServiceCreate_PhysicalRequiresAddress(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()

	buyer := mustCreateUser(t, h.db, enums.UserRoleBuyer)
	seller := mustCreateUser(t, h.db, enums.UserRoleSeller)
	listing := mustCreateListing(t, h.db, seller.ID, 1500, enums.ProductTypePhysical)

	_, err := h.svc.Create(ctx, Actor{UserID: buyer.ID}, CreateOrderInput{
		Items:         []CreateOrderItemInput{{ProductID: listing.ID, Qty: 2}},
		PaymentMethod: "stripe",
		TotalPrice:    decimal.RequireFromString("44.50"),
	})
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestServiceCreate_DigitalOnlySkipsShipping(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()

	buyer := mustCreateUser(t, h.db, enums.UserRoleBuyer)
	seller := mustCreateUser(t, h.db, enums.UserRoleSeller)
	listing := mustCreateListing(t, h.db, seller.ID, 2000, enums.ProductTypeDigital)

	order, err := h.svc.Create(ctx, Actor{UserID: buyer.ID}, CreateOrderInput{
		Items:         []CreateOrderItemInput{{ProductID: listing.ID, Qty: 1}},
		PaymentMethod: "stripe",
		TotalPrice:    decimal.RequireFromString("33.00"), // 20 + 10 shipping + 3 tax
	})
	require.NoError(t, err)
	assert.Equal(t, enums.ShippingStatusNotApplicable, order.ShippingStatus)
	assert.Nil(t, order.ShippingAddress)
}

func TestServiceCreate_UnknownProduct(t *testing.T) {
	h := newServiceHarness(t)
	buyer := mustCreateUser(t, h.db, enums.UserRoleBuyer)

	_, err := h.svc.Create(context.Background(), Actor{UserID: buyer.ID}, CreateOrderInput{
		Items:           []CreateOrderItemInput{{ProductID: uuid.New(), Qty: 1}},
		ShippingAddress: completeAddress(),
		PaymentMethod:   "stripe",
		TotalPrice:      decimal.RequireFromString("10.00"),
	})
	requireCode(t, err, pkgerrors.CodeValidation)
}

func createPaidableOrder(t *testing.T, h *serviceHarness) (*models.Order, *models.User, *models.Product) {
	t.Helper()
	ctx := context.Background()
	buyer := mustCreateUser(t, h.db, enums.UserRoleBuyer)
	seller := mustCreateUser(t, h.db, enums.UserRoleSeller)
	listing := mustCreateListing(t, h.db, seller.ID, 1500, enums.ProductTypePhysical)

	order, err := h.svc.Create(ctx, Actor{UserID: buyer.ID, Role: enums.UserRoleBuyer}, CreateOrderInput{
		Items:           []CreateOrderItemInput{{ProductID: listing.ID, Qty: 2}},
		ShippingAddress: completeAddress(),
		PaymentMethod:   "stripe",
		TotalPrice:      decimal.RequireFromString("44.50"),
	})
	require.NoError(t, err)
	return order, buyer, listing
}

func TestServicePay_IncrementsSalesExactlyOnce(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()
	order, buyer, listing := createPaidableOrder(t, h)

	actor := Actor{UserID: buyer.ID, Role: enums.UserRoleBuyer}
	first := models.PaymentResult{ID: "pi_1", Status: "succeeded", PayerEmail: "buyer@example.com"}
	paid, err := h.svc.Pay(ctx, &actor, order.ID, first)
	require.NoError(t, err)
	assert.True(t, paid.IsPaid)
	require.NotNil(t, paid.PaidAt)
	require.NotNil(t, paid.PaymentID)
	assert.Equal(t, "pi_1", *paid.PaymentID)

	reloaded, err := h.products.FindByID(ctx, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.SalesCount)

	// Replay: still success, counters and confirmation untouched.
	again, err := h.svc.Pay(ctx, &actor, order.ID, models.PaymentResult{ID: "pi_2", Status: "succeeded"})
	require.NoError(t, err)
	assert.Equal(t, "pi_1", *again.PaymentID)
	assert.Equal(t, paid.PaidAt.Unix(), again.PaidAt.Unix())

	reloaded, err = h.products.FindByID(ctx, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.SalesCount)
}

func TestServicePay_BuyerOnlyOnInteractivePath(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()
	order, _, _ := createPaidableOrder(t, h)

	stranger := Actor{UserID: uuid.New(), Role: enums.UserRoleBuyer}
	_, err := h.svc.Pay(ctx, &stranger, order.ID, models.PaymentResult{ID: "pi_1", Status: "succeeded"})
	requireCode(t, err, pkgerrors.CodeUnauthorized)

	// The webhook path carries no actor and is not subject to the buyer check.
	paid, err := h.svc.Pay(ctx, nil, order.ID, models.PaymentResult{ID: "pi_1", Status: "succeeded"})
	require.NoError(t, err)
	assert.True(t, paid.IsPaid)
}

func TestServicePay_UnknownOrder(t *testing.T) {
	h := newServiceHarness(t)
	_, err := h.svc.Pay(context.Background(), nil, uuid.New(), models.PaymentResult{ID: "pi_1"})
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestServiceMarkDelivered(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()
	order, buyer, listing := createPaidableOrder(t, h)
	seller := Actor{UserID: listing.SellerID, Role: enums.UserRoleSeller}

	// Not paid yet.
	_, err := h.svc.MarkDelivered(ctx, seller, order.ID, nil)
	requireCode(t, err, pkgerrors.CodeStateConflict)

	_, err = h.svc.Pay(ctx, nil, order.ID, models.PaymentResult{ID: "pi_1", Status: "succeeded"})
	require.NoError(t, err)

	// Buyer cannot fulfill.
	_, err = h.svc.MarkDelivered(ctx, Actor{UserID: buyer.ID, Role: enums.UserRoleBuyer}, order.ID, nil)
	requireCode(t, err, pkgerrors.CodeUnauthorized)

	tracking := "TRACK-1"
	delivered, err := h.svc.MarkDelivered(ctx, seller, order.ID, &tracking)
	require.NoError(t, err)
	assert.True(t, delivered.IsDelivered)
	require.NotNil(t, delivered.DeliveredAt)
	assert.Equal(t, enums.ShippingStatusDelivered, delivered.ShippingStatus)
	require.NotNil(t, delivered.TrackingNumber)
	assert.Equal(t, "TRACK-1", *delivered.TrackingNumber)

	// Repeat delivery is a no-op, not an error.
	firstDeliveredAt := *delivered.DeliveredAt
	again, err := h.svc.MarkDelivered(ctx, seller, order.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, firstDeliveredAt.Unix(), again.DeliveredAt.Unix())
}

func TestServiceMarkDelivered_LateTrackingNumber(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()
	order, _, listing := createPaidableOrder(t, h)
	seller := Actor{UserID: listing.SellerID, Role: enums.UserRoleSeller}

	_, err := h.svc.Pay(ctx, nil, order.ID, models.PaymentResult{ID: "pi_1", Status: "succeeded"})
	require.NoError(t, err)

	delivered, err := h.svc.MarkDelivered(ctx, seller, order.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, delivered.TrackingNumber)

	// A tracking number arriving after delivery still lands, through either
	// transition path.
	late := "TRACK-LATE"
	again, err := h.svc.UpdateShippingStatus(ctx, seller, order.ID, "Delivered", &late)
	require.NoError(t, err)
	assert.Equal(t, delivered.DeliveredAt.Unix(), again.DeliveredAt.Unix())
	require.NotNil(t, again.TrackingNumber)
	assert.Equal(t, "TRACK-LATE", *again.TrackingNumber)

	// An empty value never clears the stored number.
	blank := ""
	final, err := h.svc.MarkDelivered(ctx, seller, order.ID, &blank)
	require.NoError(t, err)
	require.NotNil(t, final.TrackingNumber)
	assert.Equal(t, "TRACK-LATE", *final.TrackingNumber)
}

func TestServiceUpdateShippingStatus(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()
	order, _, listing := createPaidableOrder(t, h)
	seller := Actor{UserID: listing.SellerID, Role: enums.UserRoleSeller}

	// Closed enum.
	_, err := h.svc.UpdateShippingStatus(ctx, seller, order.ID, "Teleported", nil)
	requireCode(t, err, pkgerrors.CodeStateConflict)

	// Advancing an unpaid order is refused.
	_, err = h.svc.UpdateShippingStatus(ctx, seller, order.ID, "Shipped", nil)
	requireCode(t, err, pkgerrors.CodeStateConflict)

	_, err = h.svc.Pay(ctx, nil, order.ID, models.PaymentResult{ID: "pi_1", Status: "succeeded"})
	require.NoError(t, err)

	tracking := "TRACK-7"
	shipped, err := h.svc.UpdateShippingStatus(ctx, seller, order.ID, "Shipped", &tracking)
	require.NoError(t, err)
	assert.Equal(t, enums.ShippingStatusShipped, shipped.ShippingStatus)
	assert.False(t, shipped.IsDelivered)

	// Delivered via the shipping path mirrors the dedicated transition.
	delivered, err := h.svc.UpdateShippingStatus(ctx, seller, order.ID, "Delivered", nil)
	require.NoError(t, err)
	assert.True(t, delivered.IsDelivered)
	require.NotNil(t, delivered.DeliveredAt)
	assert.Equal(t, enums.ShippingStatusDelivered, delivered.ShippingStatus)

	// No backward transition.
	_, err = h.svc.UpdateShippingStatus(ctx, seller, order.ID, "Processing", nil)
	requireCode(t, err, pkgerrors.CodeStateConflict)
}

func TestServiceUpdateShippingStatus_DigitalOnlyOrder(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()

	buyer := mustCreateUser(t, h.db, enums.UserRoleBuyer)
	seller := mustCreateUser(t, h.db, enums.UserRoleSeller)
	listing := mustCreateListing(t, h.db, seller.ID, 2000, enums.ProductTypeDigital)

	order, err := h.svc.Create(ctx, Actor{UserID: buyer.ID}, CreateOrderInput{
		Items:         []CreateOrderItemInput{{ProductID: listing.ID, Qty: 1}},
		PaymentMethod: "stripe",
		TotalPrice:    decimal.RequireFromString("33.00"),
	})
	require.NoError(t, err)

	_, err = h.svc.UpdateShippingStatus(ctx, Actor{UserID: seller.ID, Role: enums.UserRoleSeller}, order.ID, "Shipped", nil)
	requireCode(t, err, pkgerrors.CodeStateConflict)
}

func TestServiceGet_Authorization(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()
	order, buyer, listing := createPaidableOrder(t, h)

	got, err := h.svc.Get(ctx, Actor{UserID: buyer.ID, Role: enums.UserRoleBuyer}, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	_, err = h.svc.Get(ctx, Actor{UserID: listing.SellerID, Role: enums.UserRoleSeller}, order.ID)
	require.NoError(t, err)

	_, err = h.svc.Get(ctx, Actor{UserID: uuid.New(), Role: enums.UserRoleBuyer}, order.ID)
	requireCode(t, err, pkgerrors.CodeUnauthorized)

	_, err = h.svc.Get(ctx, Actor{UserID: uuid.New(), Role: enums.UserRoleAdmin}, uuid.New())
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestServiceListings(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()
	order, buyer, listing := createPaidableOrder(t, h)

	mine, err := h.svc.ListMine(ctx, Actor{UserID: buyer.ID, Role: enums.UserRoleBuyer})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, order.ID, mine[0].ID)

	bySeller, err := h.svc.ListSeller(ctx, Actor{UserID: listing.SellerID, Role: enums.UserRoleSeller})
	require.NoError(t, err)
	require.Len(t, bySeller, 1)

	empty, err := h.svc.ListMine(ctx, Actor{UserID: uuid.New(), Role: enums.UserRoleBuyer})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestServicePay_FrozenClock(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()
	order, _, _ := createPaidableOrder(t, h)

	frozen := time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC)
	h.svc.now = func() time.Time { return frozen }

	paid, err := h.svc.Pay(ctx, nil, order.ID, models.PaymentResult{ID: "pi_1", Status: "succeeded"})
	require.NoError(t, err)
	require.NotNil(t, paid.PaidAt)
	assert.Equal(t, frozen.Unix(), paid.PaidAt.Unix())
}
