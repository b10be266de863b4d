package repository

import (
	"context"

	"bookstore/internal/domain/model"
)

type WishlistRepository interface {
	Add(ctx context.Context, item model.Wishlist) (model.Wishlist, error)
	ListByUserID(ctx context.Context, userID int64) ([]model.Wishlist, error)
	ExistsByUserAndBook(ctx context.Context, userID int64, bookID int64) (bool, error)
	// 行が無ければErrNotFound
	DeleteByUserAndBook(ctx context.Context, userID int64, bookID int64) error
}
