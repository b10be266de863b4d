package model

import "time"

// 1ユーザーにつきカートは1つ（user_idのunique制約で保証）。
// チェックアウトでは消さず、支払い完了時に明細を空にする。
type Cart struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"not null;uniqueIndex" json:"user_id"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
