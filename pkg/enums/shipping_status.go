package enums

import "fmt"

// ShippingStatus tracks fulfillment progress for an order. The values match
// the strings the storefront has always displayed, including the
// not-applicable marker used for digital-only orders.
type ShippingStatus string

const (
	ShippingStatusProcessing    ShippingStatus = "Processing"
	ShippingStatusShipped       ShippingStatus = "Shipped"
	ShippingStatusDelivered     ShippingStatus = "Delivered"
	ShippingStatusNotApplicable ShippingStatus = "N/A"
)

var validShippingStatuses = []ShippingStatus{
	ShippingStatusProcessing,
	ShippingStatusShipped,
	ShippingStatusDelivered,
	ShippingStatusNotApplicable,
}

// String implements fmt.Stringer.
func (s ShippingStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ShippingStatus.
func (s ShippingStatus) IsValid() bool {
	for _, candidate := range validShippingStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseShippingStatus converts raw input into a ShippingStatus.
func ParseShippingStatus(value string) (ShippingStatus, error) {
	for _, candidate := range validShippingStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid shipping status %q", value)
}
