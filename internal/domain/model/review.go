package model

import "time"

type ReviewStatus string

const (
	ReviewStatusPending  ReviewStatus = "pending"
	ReviewStatusApproved ReviewStatus = "approved"
	ReviewStatusRejected ReviewStatus = "rejected"
)

// モデレーション後の値かどうか。pendingへは戻せない。
func (s ReviewStatus) ValidModeration() bool {
	return s == ReviewStatusApproved || s == ReviewStatusRejected
}

// 書籍レビュー。Ratingは1〜5。
// 投稿直後はpendingで、承認されたものだけ一覧に出る。
// VerifiedPurchaseは投稿時点で支払い済み注文の有無から確定する。
type Review struct {
	ID               int64        `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID           int64        `gorm:"not null;index;uniqueIndex:idx_reviews_user_book" json:"user_id"`
	BookID           int64        `gorm:"not null;index;uniqueIndex:idx_reviews_user_book" json:"book_id"`
	Title            string       `gorm:"type:varchar(200)" json:"title"`
	Content          string       `gorm:"type:text;not null" json:"content"`
	Rating           int          `gorm:"not null" json:"rating"`
	VerifiedPurchase bool         `gorm:"not null;default:false" json:"verified_purchase"`
	HelpfulCount     int64        `gorm:"not null;default:0" json:"helpful_count"`
	UnhelpfulCount   int64        `gorm:"not null;default:0" json:"unhelpful_count"`
	Status           ReviewStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	CreatedAt        time.Time    `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time    `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// helpful投票。同一ユーザーは同一レビューに1回だけ。
type ReviewVote struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"not null;uniqueIndex:idx_review_votes_user_review" json:"user_id"`
	ReviewID  int64     `gorm:"not null;index;uniqueIndex:idx_review_votes_user_review" json:"review_id"`
	IsHelpful bool      `gorm:"not null" json:"is_helpful"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
