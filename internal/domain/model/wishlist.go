package model

import "time"

// ほしい物リストの1行。同一(user, book)は1行のみ。
type Wishlist struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"not null;index;uniqueIndex:idx_wishlists_user_book" json:"user_id"`
	BookID    int64     `gorm:"not null;index;uniqueIndex:idx_wishlists_user_book" json:"book_id"`
	Notes     string    `gorm:"type:varchar(500)" json:"notes"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
