package model

import (
	"time"

	"gorm.io/gorm"
)

// 書籍カタログ。Priceはセント単位（現在価格）。
// 注文側は価格をスナップショットで持つので、ここを消しても履歴は壊れない。
type Book struct {
	ID            int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Title         string         `gorm:"type:varchar(200);not null" json:"title"`
	Description   string         `gorm:"type:text" json:"description"`
	PublishedDate *time.Time     `gorm:"type:date" json:"published_date"`
	ISBN          string         `gorm:"type:varchar(13);uniqueIndex" json:"isbn"`
	Price         int64          `gorm:"not null" json:"price"`
	AuthorID      int64          `gorm:"not null;index" json:"author_id"`
	CategoryID    int64          `gorm:"not null;index" json:"category_id"`
	CreatedAt     time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}
