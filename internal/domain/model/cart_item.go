package model

import "time"

// カートの明細。
// 追加時点の価格を必ず保存（後からBook.Priceを読み直さない）。
// 同一(cart, book)は1行のみ。追加は数量加算になる。
type CartItem struct {
	ID                int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CartID            int64     `gorm:"not null;index;uniqueIndex:idx_cart_items_cart_book" json:"cart_id"`
	BookID            int64     `gorm:"not null;index;uniqueIndex:idx_cart_items_cart_book" json:"book_id"`
	Quantity          int64     `gorm:"not null" json:"quantity"`
	UnitPriceSnapshot int64     `gorm:"not null;column:unit_price_snapshot" json:"unit_price_snapshot"`
	CreatedAt         time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
