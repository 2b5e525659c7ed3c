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

// Repository defines persistence operations for the orders tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	MarkPaid(ctx context.Context, orderID uuid.UUID, result models.PaymentResult, paidAt time.Time) (bool, error)
	MarkDelivered(ctx context.Context, orderID uuid.UUID, deliveredAt time.Time, trackingNumber *string) error
	UpdateShipping(ctx context.Context, orderID uuid.UUID, status enums.ShippingStatus, trackingNumber *string) error
	ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]models.Order, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]models.Order, error)
	ListAll(ctx context.Context, params pagination.Params) (*OrderPage, error)
}
