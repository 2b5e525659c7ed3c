package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/gouravrajak985/project45/pkg/enums"
	"github.com/gouravrajak985/project45/pkg/types"
)

// Order is a buyer's purchase record. Monetary fields are integer cents; the
// breakdown columns are persisted alongside total_cents so the computed
// contract price stays auditable after catalog prices move.
type Order struct {
	ID              uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BuyerID         uuid.UUID            `gorm:"column:buyer_id;type:uuid;not null"`
	Buyer           *User                `gorm:"foreignKey:BuyerID"`
	Items           []OrderItem          `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	ShippingAddress *types.Address       `gorm:"column:shipping_address;type:jsonb;serializer:json"`
	PaymentMethod   string               `gorm:"column:payment_method;not null"`
	ItemsCents      int                  `gorm:"column:items_cents;not null"`
	ShippingCents   int                  `gorm:"column:shipping_cents;not null"`
	TaxCents        int                  `gorm:"column:tax_cents;not null"`
	TotalCents      int                  `gorm:"column:total_cents;not null"`
	IsPaid          bool                 `gorm:"column:is_paid;not null;default:false"`
	PaidAt          *time.Time           `gorm:"column:paid_at"`
	PaymentID       *string              `gorm:"column:payment_id"`
	PaymentStatus   *string              `gorm:"column:payment_status"`
	PaymentTime     *time.Time           `gorm:"column:payment_time"`
	PayerEmail      *string              `gorm:"column:payer_email"`
	IsDelivered     bool                 `gorm:"column:is_delivered;not null;default:false"`
	DeliveredAt     *time.Time           `gorm:"column:delivered_at"`
	ShippingStatus  enums.ShippingStatus `gorm:"column:shipping_status;type:text;not null;default:'Processing'"`
	TrackingNumber  *string              `gorm:"column:tracking_number"`
	CreatedAt       time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// PaymentResult groups the provider confirmation columns for callers that
// want them as a unit.
type PaymentResult struct {
	ID         string     `json:"id"`
	Status     string     `json:"status"`
	UpdateTime *time.Time `json:"update_time,omitempty"`
	PayerEmail string     `json:"email_address,omitempty"`
}

// HasPaymentResult reports whether the provider confirmation columns are set.
func (o *Order) HasPaymentResult() bool {
	return o.PaymentID != nil && o.PaymentStatus != nil
}
