package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gouravrajak985/project45/pkg/db/models"
	"github.com/gouravrajak985/project45/pkg/enums"
	"github.com/gouravrajak985/project45/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Buyer").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// MarkPaid flips is_paid exactly once via compare-and-swap on the unpaid row.
// It reports whether this call won the swap; a false return means the order
// was already paid and the confirmation columns were left untouched.
func (r *repository) MarkPaid(ctx context.Context, orderID uuid.UUID, result models.PaymentResult, paidAt time.Time) (bool, error) {
	updates := map[string]any{
		"is_paid":        true,
		"paid_at":        paidAt,
		"payment_id":     result.ID,
		"payment_status": result.Status,
		"payment_time":   result.UpdateTime,
		"payer_email":    result.PayerEmail,
	}
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND is_paid = ?", orderID, false).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) MarkDelivered(ctx context.Context, orderID uuid.UUID, deliveredAt time.Time, trackingNumber *string) error {
	updates := map[string]any{
		"is_delivered":    true,
		"delivered_at":    deliveredAt,
		"shipping_status": enums.ShippingStatusDelivered,
	}
	if trackingNumber != nil && *trackingNumber != "" {
		updates["tracking_number"] = *trackingNumber
	}
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(updates).Error
}

func (r *repository) UpdateShipping(ctx context.Context, orderID uuid.UUID, status enums.ShippingStatus, trackingNumber *string) error {
	updates := map[string]any{
		"shipping_status": status,
	}
	if trackingNumber != nil && *trackingNumber != "" {
		updates["tracking_number"] = *trackingNumber
	}
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(updates).Error
}

func (r *repository) ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]models.Order, error) {
	var records []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("buyer_id = ?", buyerID).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repository) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]models.Order, error) {
	subquery := r.db.
		Model(&models.OrderItem{}).
		Select("order_id").
		Where("seller_id = ?", sellerID)

	var records []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Buyer").
		Where("id IN (?)", subquery).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repository) ListAll(ctx context.Context, params pagination.Params) (*OrderPage, error) {
	limit := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Buyer").
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit))

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where(
			"created_at < ? OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var records []models.Order
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}

	page := &OrderPage{Orders: records}
	if len(records) > limit {
		page.Orders = records[:limit]
		last := page.Orders[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return page, nil
}
