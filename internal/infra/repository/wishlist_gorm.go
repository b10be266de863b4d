package repository

import (
	"context"

	"gorm.io/gorm"

	"bookstore/internal/domain/model"
	repo "bookstore/internal/repository"
)

type WishlistGormRepository struct {
	db *gorm.DB
}

// DI
func NewWishlistGormRepository(db *gorm.DB) *WishlistGormRepository {
	return &WishlistGormRepository{db: db}
}

func (r *WishlistGormRepository) Add(ctx context.Context, item model.Wishlist) (model.Wishlist, error) {
	if err := r.db.WithContext(ctx).Create(&item).Error; err != nil {
		return model.Wishlist{}, err
	}
	return item, nil
}

func (r *WishlistGormRepository) ListByUserID(ctx context.Context, userID int64) ([]model.Wishlist, error) {
	var items []model.Wishlist

	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id desc").
		Find(&items).Error; err != nil {
		return []model.Wishlist{}, err
	}

	return items, nil
}

func (r *WishlistGormRepository) ExistsByUserAndBook(ctx context.Context, userID int64, bookID int64) (bool, error) {
	var count int64

	err := r.db.WithContext(ctx).
		Model(&model.Wishlist{}).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Count(&count).Error

	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *WishlistGormRepository) DeleteByUserAndBook(ctx context.Context, userID int64, bookID int64) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Delete(&model.Wishlist{})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
