package repository

import (
	"context"
	"time"

	"bookstore/internal/domain/model"
)

type AdminOrderListFilter struct {
	Page   int
	Limit  int
	Status string
	UserID *int64
	From   *time.Time
	To     *time.Time
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error)
	Create(ctx context.Context, order model.Order) (int64, error)
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error
	SetTransactionID(ctx context.Context, orderID int64, transactionID string) error

	// 支払い確定のcompare-and-set。
	// payment_statusがまだcompletedでない行だけを更新し、
	// 実際に更新できたか（=このcallerが勝者か）を返す。
	MarkPaymentCompleted(ctx context.Context, orderID int64) (bool, error)
	// 失敗側のcompare-and-set。completed/failed済みの行には触らない。
	MarkPaymentFailed(ctx context.Context, orderID int64) (bool, error)
	// processing中間状態（succeededでもfailedでもないとき）。
	MarkPaymentProcessing(ctx context.Context, orderID int64) error

	//管理者用の注文一覧
	ListAdmin(ctx context.Context, f AdminOrderListFilter) ([]model.Order, int64, error)

	// 支払い済み注文にその書籍が含まれるか（レビューのverified判定用）
	HasPurchased(ctx context.Context, userID int64, bookID int64) (bool, error)
}
