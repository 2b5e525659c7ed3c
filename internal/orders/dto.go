package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gouravrajak985/project45/pkg/db/models"
	"github.com/gouravrajak985/project45/pkg/enums"
	"github.com/gouravrajak985/project45/pkg/types"
)

// CreateOrderItemInput is one requested cart line.
type CreateOrderItemInput struct {
	ProductID uuid.UUID
	Qty       int
}

// CreateOrderInput carries everything the Create transition needs. TotalPrice
// is the client's claimed contract price; the service recomputes and rejects
// mismatches.
type CreateOrderInput struct {
	Items           []CreateOrderItemInput
	ShippingAddress *types.Address
	PaymentMethod   string
	TotalPrice      decimal.Decimal
}

// BuyerSummary is the buyer contact block attached to order reads.
type BuyerSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// OrderItemView is the snapshot line as rendered to API consumers.
type OrderItemView struct {
	ID           uuid.UUID         `json:"id"`
	ProductID    uuid.UUID         `json:"product"`
	SellerID     uuid.UUID         `json:"seller"`
	Title        string            `json:"title"`
	ImageURL     string            `json:"image"`
	Price        decimal.Decimal   `json:"price"`
	Qty          int               `json:"qty"`
	ProductType  enums.ProductType `json:"productType"`
	DownloadLink *string           `json:"downloadLink,omitempty"`
}

// OrderView is the API shape of a full order.
type OrderView struct {
	ID              uuid.UUID             `json:"id"`
	Buyer           *BuyerSummary         `json:"buyer,omitempty"`
	Items           []OrderItemView       `json:"orderItems"`
	ShippingAddress *types.Address        `json:"shippingAddress,omitempty"`
	PaymentMethod   string                `json:"paymentMethod"`
	ItemsPrice      decimal.Decimal       `json:"itemsPrice"`
	ShippingPrice   decimal.Decimal       `json:"shippingPrice"`
	TaxPrice        decimal.Decimal       `json:"taxPrice"`
	TotalPrice      decimal.Decimal       `json:"totalPrice"`
	IsPaid          bool                  `json:"isPaid"`
	PaidAt          *time.Time            `json:"paidAt,omitempty"`
	PaymentResult   *models.PaymentResult `json:"paymentResult,omitempty"`
	IsDelivered     bool                  `json:"isDelivered"`
	DeliveredAt     *time.Time            `json:"deliveredAt,omitempty"`
	ShippingStatus  enums.ShippingStatus  `json:"shippingStatus"`
	TrackingNumber  *string               `json:"trackingNumber,omitempty"`
	CreatedAt       time.Time             `json:"createdAt"`
}

// OrderPage is one page of the admin listing.
type OrderPage struct {
	Orders     []models.Order
	NextCursor string
}

// OrderListView is the paginated API shape of the admin listing.
type OrderListView struct {
	Orders     []OrderView `json:"orders"`
	NextCursor string      `json:"nextCursor,omitempty"`
}

// NewOrderView maps the persisted record onto the API shape.
func NewOrderView(order *models.Order) OrderView {
	view := OrderView{
		ID:              order.ID,
		Items:           make([]OrderItemView, 0, len(order.Items)),
		ShippingAddress: order.ShippingAddress,
		PaymentMethod:   order.PaymentMethod,
		ItemsPrice:      centsToDecimal(order.ItemsCents),
		ShippingPrice:   centsToDecimal(order.ShippingCents),
		TaxPrice:        centsToDecimal(order.TaxCents),
		TotalPrice:      centsToDecimal(order.TotalCents),
		IsPaid:          order.IsPaid,
		PaidAt:          order.PaidAt,
		IsDelivered:     order.IsDelivered,
		DeliveredAt:     order.DeliveredAt,
		ShippingStatus:  order.ShippingStatus,
		TrackingNumber:  order.TrackingNumber,
		CreatedAt:       order.CreatedAt,
	}

	if order.Buyer != nil {
		view.Buyer = &BuyerSummary{
			ID:    order.Buyer.ID,
			Name:  order.Buyer.Name,
			Email: order.Buyer.Email,
		}
	}

	if order.HasPaymentResult() {
		result := models.PaymentResult{
			ID:         *order.PaymentID,
			Status:     *order.PaymentStatus,
			UpdateTime: order.PaymentTime,
		}
		if order.PayerEmail != nil {
			result.PayerEmail = *order.PayerEmail
		}
		view.PaymentResult = &result
	}

	for _, item := range order.Items {
		view.Items = append(view.Items, OrderItemView{
			ID:           item.ID,
			ProductID:    item.ProductID,
			SellerID:     item.SellerID,
			Title:        item.Title,
			ImageURL:     item.ImageURL,
			Price:        centsToDecimal(item.UnitPriceCents),
			Qty:          item.Qty,
			ProductType:  item.ProductType,
			DownloadLink: item.DownloadLink,
		})
	}

	return view
}

// NewOrderViews maps a slice of persisted records.
func NewOrderViews(records []models.Order) []OrderView {
	views := make([]OrderView, 0, len(records))
	for i := range records {
		views = append(views, NewOrderView(&records[i]))
	}
	return views
}

func centsToDecimal(cents int) decimal.Decimal {
	return decimal.NewFromInt(int64(cents)).Div(centsPerUnit)
}
