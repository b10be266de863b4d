package model

import "time"

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusProcessing PaymentStatus = "processing"
	PaymentStatusCompleted  PaymentStatus = "completed"
	PaymentStatusFailed     PaymentStatus = "failed"
)

// ステータスが既知の値かどうか。
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// チェックアウト時点のスナップショット。金額はセント単位。
// Totalは作成時に確定し、以後カタログ価格から再計算しない。
type Order struct {
	ID          int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      int64       `gorm:"not null;index" json:"user_id"`
	OrderNumber string      `gorm:"type:varchar(50);not null;uniqueIndex" json:"order_number"`
	Status      OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`

	Subtotal     int64 `gorm:"not null" json:"subtotal"`
	Tax          int64 `gorm:"not null" json:"tax"`
	ShippingCost int64 `gorm:"not null;default:0" json:"shipping_cost"`
	Total        int64 `gorm:"not null" json:"total"`

	ShippingName    string `gorm:"type:varchar(120);not null" json:"shipping_name"`
	ShippingEmail   string `gorm:"type:varchar(120);not null" json:"shipping_email"`
	ShippingPhone   string `gorm:"type:varchar(20)" json:"shipping_phone"`
	ShippingAddress string `gorm:"type:varchar(255);not null" json:"shipping_address"`
	ShippingCity    string `gorm:"type:varchar(100);not null" json:"shipping_city"`
	ShippingState   string `gorm:"type:varchar(100)" json:"shipping_state"`
	ShippingZip     string `gorm:"type:varchar(20);not null" json:"shipping_zip"`
	ShippingCountry string `gorm:"type:varchar(100);not null" json:"shipping_country"`

	PaymentMethod string        `gorm:"type:varchar(50);not null" json:"payment_method"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(20);not null;index" json:"payment_status"`
	TransactionID string        `gorm:"type:varchar(100)" json:"transaction_id"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
