package repository

import (
	"context"

	"bookstore/internal/domain/model"
)

type ContactMessageListFilter struct {
	Status string
	Page   int
	Limit  int
}

type ContactMessageRepository interface {
	Create(ctx context.Context, msg model.ContactMessage) (model.ContactMessage, error)
	List(ctx context.Context, f ContactMessageListFilter) ([]model.ContactMessage, int64, error)
	UpdateStatus(ctx context.Context, msgID int64, status model.ContactMessageStatus) error
}
