package models

import "github.com/google/uuid"

// Order statuses. NEW is the only state an order can be created in; the move
// to PAID happens exclusively through payment verification (or an explicit
// admin override). Fulfillment states are set by the tracking flow.
const (
	OrderStatusNew       = "NEW"
	OrderStatusPaid      = "PAID"
	OrderStatusShipped   = "SHIPPED"
	OrderStatusDelivered = "DELIVERED"
	OrderStatusCancelled = "CANCELLED"
)

// AllOrderStatuses lists every status the tracking UI can filter by.
var AllOrderStatuses = []string{
	OrderStatusNew,
	OrderStatusPaid,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// Order is a checkout record owned by one user. Address and line items are
// snapshots taken at purchase time, so later product or price edits never
// change historical orders.
type Order struct {
	BaseModel
	UserID       uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	User         *User     `json:"user,omitempty"`
	CustomerName string    `json:"name"`
	Address      Address   `gorm:"embedded;embeddedPrefix:address_" json:"address"`
	Lat          string    `json:"lat"`
	Lng          string    `json:"lng"`

	Items      []OrderItem `json:"items,omitempty"`
	TotalPrice float64     `json:"total_price"`
	Discount   float64     `json:"discount"`
	CouponCode string      `json:"coupon_code"`

	Status          string `gorm:"index" json:"status"`
	PaymentID       string `json:"payment_id"`
	RazorpayOrderID string `gorm:"index" json:"razorpay_order_id"`
	PayPalOrderID   string `gorm:"index" json:"paypal_order_id"`
}

// OrderItem snapshots one purchased product/size at its price at the time of
// checkout.
type OrderItem struct {
	BaseModel
	OrderID     uuid.UUID `gorm:"type:uuid;index" json:"order_id"`
	ProductRef  uuid.UUID `gorm:"type:uuid;index" json:"product_ref"`
	ProductID   string    `json:"product_id"`
	ProductName string    `json:"product_name"`
	Size        string    `json:"size"`
	UnitPrice   float64   `json:"unit_price"`
	Quantity    int       `json:"quantity"`
	LineTotal   float64   `json:"line_total"`
}
