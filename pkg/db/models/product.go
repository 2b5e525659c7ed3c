package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/gouravrajak985/project45/pkg/enums"
)

// Product is the canonical seller listing. The order core reads it for price
// snapshots at checkout and writes back nothing except sales_count.
type Product struct {
	ID           uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SellerID     uuid.UUID         `gorm:"column:seller_id;type:uuid;not null"`
	Title        string            `gorm:"column:title;not null"`
	ImageURL     string            `gorm:"column:image_url;not null"`
	PriceCents   int               `gorm:"column:price_cents;not null"`
	ProductType  enums.ProductType `gorm:"column:product_type;type:text;not null"`
	DownloadLink *string           `gorm:"column:download_link"`
	SalesCount   int               `gorm:"column:sales_count;not null;default:0"`
	IsActive     bool              `gorm:"column:is_active;not null;default:true"`
	CreatedAt    time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
