package model

import "time"

// 注文明細。タイトルと単価は注文時点のスナップショット。
// book_idは表示用の参照で、Bookが消えても明細は独立して残る。
type OrderItem struct {
	ID                int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID           int64     `gorm:"not null;index" json:"order_id"`
	BookID            int64     `gorm:"not null;index" json:"book_id"`
	TitleSnapshot     string    `gorm:"type:varchar(200);not null" json:"title_snapshot"`
	UnitPriceSnapshot int64     `gorm:"not null" json:"unit_price_snapshot"`
	Quantity          int64     `gorm:"not null" json:"quantity"`
	CreatedAt         time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
