package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/gouravrajak985/project45/pkg/enums"
)

// OrderItem captures the snapshot of a single product within an order. Price,
// seller and download link are fixed at order creation and never follow later
// catalog edits.
type OrderItem struct {
	ID             uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID         `gorm:"column:order_id;type:uuid;not null"`
	ProductID      uuid.UUID         `gorm:"column:product_id;type:uuid;not null"`
	SellerID       uuid.UUID         `gorm:"column:seller_id;type:uuid;not null"`
	Title          string            `gorm:"column:title;not null"`
	ImageURL       string            `gorm:"column:image_url;not null"`
	UnitPriceCents int               `gorm:"column:unit_price_cents;not null"`
	Qty            int               `gorm:"column:qty;not null"`
	ProductType    enums.ProductType `gorm:"column:product_type;type:text;not null"`
	DownloadLink   *string           `gorm:"column:download_link"`
	CreatedAt      time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
