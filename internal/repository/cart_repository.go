package repository

import (
	"context"

	"bookstore/internal/domain/model"
)

type CartRepository interface {
	// 無ければ作る。user_idのunique制約で同時作成は片方が勝ち、
	// 負けた側は再取得して同じカートを返す。
	GetOrCreateByUserID(ctx context.Context, userID int64) (model.Cart, error)
	FindByUserID(ctx context.Context, userID int64) (model.Cart, error)
	// 明細を全削除。空のカートに対してはno-op。
	Clear(ctx context.Context, cartID int64) error
}
