package model

import "time"

type ContactMessageStatus string

const (
	ContactMessageStatusNew     ContactMessageStatus = "new"
	ContactMessageStatusRead    ContactMessageStatus = "read"
	ContactMessageStatusReplied ContactMessageStatus = "replied"
)

func (s ContactMessageStatus) Valid() bool {
	switch s {
	case ContactMessageStatusNew, ContactMessageStatusRead, ContactMessageStatusReplied:
		return true
	}
	return false
}

// 問い合わせフォームの投稿。未ログインでも送れる。
type ContactMessage struct {
	ID        int64                `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string               `gorm:"type:varchar(100);not null" json:"name"`
	Email     string               `gorm:"type:varchar(120);not null" json:"email"`
	Subject   string               `gorm:"type:varchar(200);not null" json:"subject"`
	Message   string               `gorm:"type:text;not null" json:"message"`
	Status    ContactMessageStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	CreatedAt time.Time            `gorm:"not null;autoCreateTime" json:"created_at"`
}
