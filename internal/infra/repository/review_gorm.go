package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"bookstore/internal/domain/model"
	repo "bookstore/internal/repository"
)

type ReviewGormRepository struct {
	db *gorm.DB
}

// DI
func NewReviewGormRepository(db *gorm.DB) *ReviewGormRepository {
	return &ReviewGormRepository{db: db}
}

func (r *ReviewGormRepository) Create(ctx context.Context, review model.Review) (model.Review, error) {
	if err := r.db.WithContext(ctx).Create(&review).Error; err != nil {
		return model.Review{}, err
	}
	return review, nil
}

func (r *ReviewGormRepository) FindByID(ctx context.Context, reviewID int64) (model.Review, error) {
	var review model.Review

	err := r.db.WithContext(ctx).
		Where("id = ?", reviewID).
		First(&review).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Review{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Review{}, err
	}
	return review, nil
}

func (r *ReviewGormRepository) List(ctx context.Context, f repo.ReviewListFilter) ([]model.Review, int64, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}

	q := r.db.WithContext(ctx).Model(&model.Review{})

	if f.BookID > 0 {
		q = q.Where("book_id = ?", f.BookID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return []model.Review{}, 0, err
	}

	var items []model.Review
	offset := (f.Page - 1) * f.Limit
	if err := q.Order("id desc").Limit(f.Limit).Offset(offset).Find(&items).Error; err != nil {
		return []model.Review{}, 0, err
	}

	return items, total, nil
}

func (r *ReviewGormRepository) ExistsByUserAndBook(ctx context.Context, userID int64, bookID int64) (bool, error) {
	var count int64

	err := r.db.WithContext(ctx).
		Model(&model.Review{}).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Count(&count).Error

	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *ReviewGormRepository) UpdateStatus(ctx context.Context, reviewID int64, status model.ReviewStatus) error {
	res := r.db.WithContext(ctx).
		Model(&model.Review{}).
		Where("id = ?", reviewID).
		Update("status", status)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 承認済みレビューの平均と件数。レビューが無ければ(0, 0)。
func (r *ReviewGormRepository) ApprovedRating(ctx context.Context, bookID int64) (float64, int64, error) {
	var row struct {
		Avg   *float64
		Count int64
	}

	err := r.db.WithContext(ctx).
		Model(&model.Review{}).
		Select("avg(rating) as avg, count(*) as count").
		Where("book_id = ? AND status = ?", bookID, model.ReviewStatusApproved).
		Scan(&row).Error

	if err != nil {
		return 0, 0, err
	}
	if row.Avg == nil {
		return 0, 0, nil
	}
	return *row.Avg, row.Count, nil
}

// 投票行の作成とレビュー側カウンタの加算をまとめて行う。
// (user_id, review_id)のunique indexが二重投票の最後の砦。
func (r *ReviewGormRepository) AddVote(ctx context.Context, vote model.ReviewVote) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&vote).Error; err != nil {
			return err
		}

		column := "unhelpful_count"
		if vote.IsHelpful {
			column = "helpful_count"
		}

		res := tx.Model(&model.Review{}).
			Where("id = ?", vote.ReviewID).
			Update(column, gorm.Expr(column+" + 1"))

		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repo.ErrNotFound
		}
		return nil
	})
}

func (r *ReviewGormRepository) HasVoted(ctx context.Context, userID int64, reviewID int64) (bool, error) {
	var count int64

	err := r.db.WithContext(ctx).
		Model(&model.ReviewVote{}).
		Where("user_id = ? AND review_id = ?", userID, reviewID).
		Count(&count).Error

	if err != nil {
		return false, err
	}
	return count > 0, nil
}
