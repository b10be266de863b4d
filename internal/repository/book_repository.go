package repository

import (
	"context"
	"errors"

	"bookstore/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// 一覧検索
type BookListQuery struct {
	Page     int
	Limit    int
	Q        string
	Category string
	Sort     string
}

// 書籍の永続化（保存・取得）だけを約束。
type BookRepository interface {
	List(ctx context.Context, q BookListQuery) ([]model.Book, int64, error)
	FindByID(ctx context.Context, id int64) (model.Book, error)
	FindByISBN(ctx context.Context, isbn string) (model.Book, error)

	Create(ctx context.Context, b model.Book) (model.Book, error)
	Update(ctx context.Context, b model.Book) error
	SoftDelete(ctx context.Context, id int64) error
}

// 著者・カテゴリは表示用の結合先。名前でget-or-createできれば十分。
type AuthorRepository interface {
	FindByID(ctx context.Context, id int64) (model.Author, error)
	GetOrCreateByName(ctx context.Context, name string) (model.Author, error)
}

type CategoryRepository interface {
	FindByID(ctx context.Context, id int64) (model.Category, error)
	GetOrCreateByName(ctx context.Context, name string) (model.Category, error)
}
