package repository

import (
	"context"

	"gorm.io/gorm"

	"bookstore/internal/domain/model"
	repo "bookstore/internal/repository"
)

type ContactMessageGormRepository struct {
	db *gorm.DB
}

// DI
func NewContactMessageGormRepository(db *gorm.DB) *ContactMessageGormRepository {
	return &ContactMessageGormRepository{db: db}
}

func (r *ContactMessageGormRepository) Create(ctx context.Context, msg model.ContactMessage) (model.ContactMessage, error) {
	if err := r.db.WithContext(ctx).Create(&msg).Error; err != nil {
		return model.ContactMessage{}, err
	}
	return msg, nil
}

func (r *ContactMessageGormRepository) List(ctx context.Context, f repo.ContactMessageListFilter) ([]model.ContactMessage, int64, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}

	q := r.db.WithContext(ctx).Model(&model.ContactMessage{})

	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return []model.ContactMessage{}, 0, err
	}

	var items []model.ContactMessage
	offset := (f.Page - 1) * f.Limit
	if err := q.Order("id desc").Limit(f.Limit).Offset(offset).Find(&items).Error; err != nil {
		return []model.ContactMessage{}, 0, err
	}

	return items, total, nil
}

func (r *ContactMessageGormRepository) UpdateStatus(ctx context.Context, msgID int64, status model.ContactMessageStatus) error {
	res := r.db.WithContext(ctx).
		Model(&model.ContactMessage{}).
		Where("id = ?", msgID).
		Update("status", status)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
