package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	product "github.com/gouravrajak985/project45/internal/products"
	"github.com/gouravrajak985/project45/pkg/db/models"
	"github.com/gouravrajak985/project45/pkg/enums"
	pkgerrors "github.com/gouravrajak985/project45/pkg/errors"
	"github.com/gouravrajak985/project45/pkg/logger"
	"github.com/gouravrajak985/project45/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service orchestrates the order lifecycle. All mutation of orders and sales
// counters goes through here; repositories are never written to directly by
// the API layer.
type Service interface {
	Create(ctx context.Context, actor Actor, input CreateOrderInput) (*models.Order, error)
	Get(ctx context.Context, actor Actor, orderID uuid.UUID) (*models.Order, error)
	Pay(ctx context.Context, actor *Actor, orderID uuid.UUID, result models.PaymentResult) (*models.Order, error)
	MarkDelivered(ctx context.Context, actor Actor, orderID uuid.UUID, trackingNumber *string) (*models.Order, error)
	UpdateShippingStatus(ctx context.Context, actor Actor, orderID uuid.UUID, status string, trackingNumber *string) (*models.Order, error)
	ListMine(ctx context.Context, actor Actor) ([]models.Order, error)
	ListSeller(ctx context.Context, actor Actor) ([]models.Order, error)
	ListAll(ctx context.Context, params pagination.Params) (*OrderPage, error)
}

type service struct {
	repo     Repository
	products product.Repository
	tx       txRunner
	logg     *logger.Logger
	now      func() time.Time
}

// NewService builds an order lifecycle service with the required dependencies.
func NewService(repo Repository, products product.Repository, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:     repo,
		products: products,
		tx:       tx,
		logg:     logg,
		now:      time.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, actor Actor, input CreateOrderInput) (*models.Order, error) {
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order items required")
	}
	if input.PaymentMethod == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment method required")
	}

	productIDs := make([]uuid.UUID, 0, len(input.Items))
	for _, item := range input.Items {
		if item.ProductID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required on every item")
		}
		if item.Qty <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive")
		}
		productIDs = append(productIDs, item.ProductID)
	}

	catalog, err := s.products.FindByIDs(ctx, productIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}
	byID := make(map[uuid.UUID]*models.Product, len(catalog))
	for i := range catalog {
		byID[catalog[i].ID] = &catalog[i]
	}

	snapshots := make([]models.OrderItem, 0, len(input.Items))
	lines := make([]QuoteLine, 0, len(input.Items))
	hasPhysical := false
	for _, item := range input.Items {
		listing, ok := byID[item.ProductID]
		if !ok || !listing.IsActive {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product unavailable").
				WithDetails(map[string]any{"product_id": item.ProductID})
		}
		if listing.ProductType == enums.ProductTypePhysical {
			hasPhysical = true
		}
		if listing.ProductType == enums.ProductTypeDigital && listing.DownloadLink == nil && s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "product_id", listing.ID.String()), "digital product ordered without download link")
		}
		snapshots = append(snapshots, models.OrderItem{
			ID:             uuid.New(),
			ProductID:      listing.ID,
			SellerID:       listing.SellerID,
			Title:          listing.Title,
			ImageURL:       listing.ImageURL,
			UnitPriceCents: listing.PriceCents,
			Qty:            item.Qty,
			ProductType:    listing.ProductType,
			DownloadLink:   listing.DownloadLink,
		})
		lines = append(lines, QuoteLine{UnitPriceCents: listing.PriceCents, Qty: item.Qty})
	}

	quote := ComputeQuote(lines)
	if !quote.MatchesTotal(input.TotalPrice) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "total price mismatch").
			WithDetails(map[string]any{
				"submitted": input.TotalPrice.StringFixed(2),
				"computed":  quote.TotalPrice.StringFixed(2),
			})
	}

	shippingStatus := enums.ShippingStatusNotApplicable
	if hasPhysical {
		if input.ShippingAddress == nil || !input.ShippingAddress.Complete() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping address required for physical items")
		}
		shippingStatus = enums.ShippingStatusProcessing
	}

	// IDs are assigned here rather than left to the column default so the
	// insert behaves the same on every backend.
	order := &models.Order{
		ID:              uuid.New(),
		BuyerID:         actor.UserID,
		Items:           snapshots,
		ShippingAddress: input.ShippingAddress,
		PaymentMethod:   input.PaymentMethod,
		ItemsCents:      quote.ItemsCents(),
		ShippingCents:   quote.ShippingCents(),
		TaxCents:        quote.TaxCents(),
		TotalCents:      quote.TotalCents(),
		ShippingStatus:  shippingStatus,
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		_, createErr := s.repo.WithTx(tx).Create(ctx, order)
		return createErr
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order")
	}

	return s.load(ctx, order.ID)
}

func (s *service) Get(ctx context.Context, actor Actor, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !CanRead(actor, order) {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "not authorized to view this order")
	}
	return order, nil
}

// Pay applies the paid transition exactly once. actor is nil on the webhook
// path; the interactive path requires the order's buyer. A repeat call on an
// already-paid order succeeds without touching counters or the original
// confirmation record.
func (s *service) Pay(ctx context.Context, actor *Actor, orderID uuid.UUID, result models.PaymentResult) (*models.Order, error) {
	if result.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment confirmation id required")
	}

	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if actor != nil && !CanPay(*actor, order) {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "not authorized to pay this order")
	}

	paidAt := s.now().UTC()
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		swapped, txErr := s.repo.WithTx(tx).MarkPaid(ctx, order.ID, result, paidAt)
		if txErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, txErr, "mark order paid")
		}
		if !swapped {
			// Already paid; the original confirmation and counters stand.
			return nil
		}
		productsTx := s.products.WithTx(tx)
		for _, item := range order.Items {
			if incErr := productsTx.IncrementSalesCount(ctx, item.ProductID, item.Qty); incErr != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, incErr, "increment sales count")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.load(ctx, order.ID)
}

func (s *service) MarkDelivered(ctx context.Context, actor Actor, orderID uuid.UUID, trackingNumber *string) (*models.Order, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !CanFulfill(actor, order) {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "not authorized to fulfill this order")
	}
	if err := s.deliver(ctx, order, trackingNumber); err != nil {
		return nil, err
	}
	return s.load(ctx, order.ID)
}

func (s *service) UpdateShippingStatus(ctx context.Context, actor Actor, orderID uuid.UUID, status string, trackingNumber *string) (*models.Order, error) {
	target, err := enums.ParseShippingStatus(status)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "invalid shipping status").
			WithDetails(map[string]any{"status": status})
	}

	order, loadErr := s.load(ctx, orderID)
	if loadErr != nil {
		return nil, loadErr
	}
	if !CanFulfill(actor, order) {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "not authorized to fulfill this order")
	}

	if order.ShippingStatus == enums.ShippingStatusNotApplicable {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order has no shipping to update")
	}
	if target == enums.ShippingStatusNotApplicable {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "shipping status cannot move to N/A")
	}
	if shippingRank(target) < shippingRank(order.ShippingStatus) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "shipping status cannot move backwards")
	}

	if target == enums.ShippingStatusDelivered {
		if err := s.deliver(ctx, order, trackingNumber); err != nil {
			return nil, err
		}
		return s.load(ctx, order.ID)
	}

	if !order.IsPaid {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is not paid")
	}
	if err := s.repo.UpdateShipping(ctx, order.ID, target, trackingNumber); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update shipping status")
	}
	return s.load(ctx, order.ID)
}

func (s *service) ListMine(ctx context.Context, actor Actor) ([]models.Order, error) {
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	records, err := s.repo.ListByBuyer(ctx, actor.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list buyer orders")
	}
	return records, nil
}

func (s *service) ListSeller(ctx context.Context, actor Actor) ([]models.Order, error) {
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	records, err := s.repo.ListBySeller(ctx, actor.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list seller orders")
	}
	return records, nil
}

func (s *service) ListAll(ctx context.Context, params pagination.Params) (*OrderPage, error) {
	page, err := s.repo.ListAll(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return page, nil
}

// deliver is the single transition shared by the dedicated mark-delivered
// endpoint and shipping-status=Delivered, so the two paths cannot drift.
func (s *service) deliver(ctx context.Context, order *models.Order, trackingNumber *string) error {
	if !order.IsPaid {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "order is not paid")
	}
	if order.IsDelivered {
		// Repeat deliveries stay no-ops, but a late tracking number still
		// replaces the stored one.
		if trackingNumber != nil && *trackingNumber != "" {
			if err := s.repo.UpdateShipping(ctx, order.ID, order.ShippingStatus, trackingNumber); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update tracking number")
			}
		}
		return nil
	}
	if err := s.repo.MarkDelivered(ctx, order.ID, s.now().UTC(), trackingNumber); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark order delivered")
	}
	return nil
}

func (s *service) load(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func shippingRank(status enums.ShippingStatus) int {
	switch status {
	case enums.ShippingStatusProcessing:
		return 0
	case enums.ShippingStatusShipped:
		return 1
	case enums.ShippingStatusDelivered:
		return 2
	default:
		return -1
	}
}
